// Package assistant orchestrates one inbound chat message end to end:
// plan, optionally search the catalog, compose the reply. Each call is a
// single linear pass; no state survives between messages.
package assistant

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/bazaarbot/bazaarbot/internal/format"
	"github.com/bazaarbot/bazaarbot/internal/models"
)

// Composition strings.
const (
	// ResultsHeader precedes a non-empty product listing.
	ResultsHeader = "<b>پیشنهادهای موجود:</b>"

	// NoMatchPrompt replaces the listing when a search matched nothing.
	NoMatchPrompt = "فعلاً موردی مطابق معیارها موجود نیست. مایل هستی معیارها را کمی تغییر دهیم؟"

	// FallbackAck is the last-resort reply when everything else is empty.
	FallbackAck = "پیامت دریافت شد."
)

// Planner produces a plan for one message. Implementations must degrade
// internally; PlanFromText has no error return by design.
type Planner interface {
	PlanFromText(ctx context.Context, userText string) *models.Plan
}

// Searcher is the catalog-read capability. Failures collapse to an empty
// result inside the implementation.
type Searcher interface {
	SearchProducts(ctx context.Context, criteria *models.Criteria, limit int) []models.ProductRecord
}

// Assistant wires the planner, the catalog and the formatter into the
// plan-then-fetch pipeline.
type Assistant struct {
	planner   Planner
	catalog   Searcher
	formatter *format.Formatter
	limit     int
}

// New creates an Assistant with the given collaborators.
func New(p Planner, s Searcher, f *format.Formatter, limit int) *Assistant {
	return &Assistant{planner: p, catalog: s, formatter: f, limit: limit}
}

// HandleMessage runs the pipeline for one message and returns the reply
// text. The result is never empty: every upstream failure already degraded
// to text, and an all-empty composition falls back to a fixed ack.
func (a *Assistant) HandleMessage(ctx context.Context, userText string) string {
	msgID := uuid.NewString()

	plan := a.planner.PlanFromText(ctx, userText)
	log.Info().
		Str("message_id", msgID).
		Str("action", plan.Action).
		Msg("plan resolved")

	parts := []string{strings.TrimSpace(plan.Reply)}

	if plan.Action == models.ActionSearchProducts {
		criteria := plan.Criteria
		if criteria == nil {
			criteria = &models.Criteria{}
		}

		products := a.catalog.SearchProducts(ctx, criteria, a.limit)
		log.Debug().
			Str("message_id", msgID).
			Int("results", len(products)).
			Msg("catalog search completed")

		if len(products) > 0 {
			parts = append(parts, ResultsHeader+"\n"+a.formatter.RenderProducts(products))
		} else {
			parts = append(parts, NoMatchPrompt)
		}
	}

	nonEmpty := parts[:0]
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}

	text := strings.TrimSpace(strings.Join(nonEmpty, "\n\n"))
	if text == "" {
		return FallbackAck
	}
	return text
}
