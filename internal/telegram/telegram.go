// Package telegram is a minimal Bot API adapter: the webhook update shapes
// the service reads, plus outbound sendMessage. Replies are HTML-formatted
// and addressed to the originating chat.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const defaultAPIBase = "https://api.telegram.org"

// Update is one inbound webhook payload. Only the fields the assistant
// reads are declared; everything else in the update is ignored.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

// Message is the inbound chat message within an update.
type Message struct {
	MessageID int64  `json:"message_id"`
	Text      string `json:"text"`
	Chat      Chat   `json:"chat"`
}

// Chat identifies where the reply goes.
type Chat struct {
	ID int64 `json:"id"`
}

// Text returns the update's message text, empty when absent.
func (u *Update) Text() string {
	if u.Message == nil {
		return ""
	}
	return u.Message.Text
}

// ChatID returns the originating chat id, zero when absent.
func (u *Update) ChatID() int64 {
	if u.Message == nil {
		return 0
	}
	return u.Message.Chat.ID
}

// Bot sends messages through the Telegram Bot API. Safe for concurrent
// use; each send builds its own request.
type Bot struct {
	token             string
	apiBase           string
	disableWebPreview bool
	client            *http.Client
}

// NewBot creates a Bot API client. An empty apiBase uses the public
// endpoint; tests point it at a local server.
func NewBot(token, apiBase string, disableWebPreview bool) *Bot {
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	return &Bot{
		token:             token,
		apiBase:           apiBase,
		disableWebPreview: disableWebPreview,
		client:            &http.Client{Timeout: 30 * time.Second},
	}
}

type sendMessageRequest struct {
	ChatID                int64  `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// SendMessage posts text as HTML to a chat. The error is for the caller to
// log; webhook acknowledgment does not depend on it.
func (b *Bot) SendMessage(ctx context.Context, chatID int64, text string) error {
	if b.token == "" {
		return errors.New("telegram bot token not configured")
	}

	body, err := json.Marshal(sendMessageRequest{
		ChatID:                chatID,
		Text:                  text,
		ParseMode:             "HTML",
		DisableWebPagePreview: b.disableWebPreview,
	})
	if err != nil {
		return fmt.Errorf("marshal sendMessage: %w", err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", b.apiBase, b.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build sendMessage request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("sendMessage request: %w", err)
	}
	defer resp.Body.Close()

	var result apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode sendMessage response (status %d): %w", resp.StatusCode, err)
	}
	if !result.OK {
		return fmt.Errorf("telegram API rejected sendMessage: %s", result.Description)
	}
	return nil
}
