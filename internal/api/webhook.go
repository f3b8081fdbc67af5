package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/bazaarbot/bazaarbot/internal/telegram"
)

// Orchestrator handles one inbound message and always returns reply text.
type Orchestrator interface {
	HandleMessage(ctx context.Context, userText string) string
}

// Responder delivers outbound chat messages.
type Responder interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// WebhookHandler receives Telegram updates and replies in-band. The
// webhook response is a fixed acknowledgment regardless of outcome; user
// visible failure only ever appears as chat text.
type WebhookHandler struct {
	assistant Orchestrator
	bot       Responder
}

// NewWebhookHandler creates the webhook handler.
func NewWebhookHandler(assistant Orchestrator, bot Responder) *WebhookHandler {
	return &WebhookHandler{assistant: assistant, bot: bot}
}

// HandleUpdate decodes one update, runs the pipeline and acknowledges.
func (h *WebhookHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	defer acknowledge(w)

	var update telegram.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log.Warn().Err(err).Msg("undecodable webhook payload")
		return
	}

	chatID := update.ChatID()
	if chatID == 0 {
		// Not a chat message (edited message, channel post, ...); nothing
		// to reply to.
		return
	}

	reply := h.assistant.HandleMessage(r.Context(), update.Text())

	if err := h.bot.SendMessage(r.Context(), chatID, reply); err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send reply")
	}
}

func acknowledge(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}
