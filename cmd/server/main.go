// bazaarbot — a Telegram shopping assistant for WooCommerce stores.
//
// One webhook in, one structured plan from the model, at most one catalog
// search, one reply out. Nothing is persisted between messages.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/bazaarbot/bazaarbot/internal/api"
	"github.com/bazaarbot/bazaarbot/internal/assistant"
	"github.com/bazaarbot/bazaarbot/internal/catalog"
	"github.com/bazaarbot/bazaarbot/internal/config"
	"github.com/bazaarbot/bazaarbot/internal/format"
	"github.com/bazaarbot/bazaarbot/internal/planner"
	"github.com/bazaarbot/bazaarbot/internal/telegram"
	"github.com/bazaarbot/bazaarbot/internal/telemetry"
)

func main() {
	// Load .env file if it exists (for development)
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file, using process environment")
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg := config.Load()
	for _, warning := range cfg.Warnings() {
		log.Warn().Msg(warning)
	}

	shutdownTelemetry, err := telemetry.Init(cfg.Telemetry)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}

	// Process-wide capability handles, shared across concurrent messages.
	bot := telegram.NewBot(cfg.Telegram.BotToken, "", cfg.Telegram.DisableWebPreview)
	plan := planner.New(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	store := catalog.NewClient(cfg.Store.BaseURL, cfg.Store.Key, cfg.Store.Secret, cfg.Store.Timeout)
	render := format.New(cfg.Pricing.Divisor, cfg.Pricing.CurrencyLabel)

	shop := assistant.New(plan, store, render, cfg.ResultsLimit)
	webhook := api.NewWebhookHandler(shop, bot)
	router := api.NewRouter(cfg, webhook)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info().Msg("shutting down gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
		shutdownTelemetry(shutdownCtx)
	}()

	log.Info().
		Int("port", cfg.Port).
		Str("model", cfg.OpenAI.Model).
		Int("results_limit", cfg.ResultsLimit).
		Msg("bazaarbot is listening")

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server failed")
	}
}
