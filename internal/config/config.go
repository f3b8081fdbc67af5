package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the bazaarbot service.
type Config struct {
	Port    int
	Version string

	Telegram  TelegramConfig
	OpenAI    OpenAIConfig
	Store     StoreConfig
	Pricing   PricingConfig
	Telemetry TelemetryConfig

	// ResultsLimit caps how many products a single reply may list.
	ResultsLimit int
}

type TelegramConfig struct {
	BotToken          string
	DisableWebPreview bool
}

type OpenAIConfig struct {
	APIKey string
	Model  string
}

// StoreConfig points at the WooCommerce store the assistant sells from.
type StoreConfig struct {
	BaseURL string
	Key     string
	Secret  string
	Timeout time.Duration
}

// PricingConfig controls price presentation. The store keeps prices in a
// minor currency unit; Divisor converts to the display unit.
type PricingConfig struct {
	Divisor       float64
	CurrencyLabel string
}

type TelemetryConfig struct {
	Enabled      bool
	OTLPEndpoint string
	ServiceName  string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Port:    envInt("PORT", 8080),
		Version: envStr("BAZAARBOT_VERSION", "0.1.0"),
		Telegram: TelegramConfig{
			BotToken:          strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")),
			DisableWebPreview: envBool("TELEGRAM_DISABLE_WEB_PREVIEW", false),
		},
		OpenAI: OpenAIConfig{
			APIKey: strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
			Model:  envStr("OPENAI_MODEL_NAME", "gpt-5"),
		},
		Store: StoreConfig{
			BaseURL: strings.TrimRight(envStr("WC_BASE_URL", ""), "/"),
			Key:     strings.TrimSpace(os.Getenv("WC_KEY")),
			Secret:  strings.TrimSpace(os.Getenv("WC_SECRET")),
			Timeout: envDuration("WC_TIMEOUT", 20*time.Second),
		},
		Pricing: PricingConfig{
			Divisor:       envFloat("PRICE_DIVISOR", 10),
			CurrencyLabel: envStr("CURRENCY_LABEL", "تومان"),
		},
		Telemetry: TelemetryConfig{
			Enabled:      envBool("OTEL_ENABLED", false),
			OTLPEndpoint: envStr("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			ServiceName:  envStr("OTEL_SERVICE_NAME", "bazaarbot"),
		},
		ResultsLimit: envInt("RESULTS_LIMIT", 5),
	}
}

// Warnings lists missing credentials. A missing credential degrades the
// affected capability at call time instead of halting startup.
func (c *Config) Warnings() []string {
	var w []string
	if c.Telegram.BotToken == "" {
		w = append(w, "TELEGRAM_BOT_TOKEN is empty")
	}
	if c.OpenAI.APIKey == "" {
		w = append(w, "OPENAI_API_KEY is empty")
	}
	if c.Store.BaseURL == "" {
		w = append(w, "WC_BASE_URL is empty")
	}
	if c.Store.Key == "" || c.Store.Secret == "" {
		w = append(w, "WooCommerce credentials are empty")
	}
	return w
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
