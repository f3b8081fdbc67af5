package planner_test

import (
	"context"
	"errors"
	"testing"

	"github.com/tmc/langchaingo/llms"

	"github.com/bazaarbot/bazaarbot/internal/models"
	"github.com/bazaarbot/bazaarbot/internal/planner"
)

// fakeModel is a canned ChatModel.
type fakeModel struct {
	resp *llms.ContentResponse
	err  error
	got  []llms.MessageContent
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	f.got = messages
	return f.resp, f.err
}

func contentResponse(texts ...string) *llms.ContentResponse {
	choices := make([]*llms.ContentChoice, 0, len(texts))
	for _, text := range texts {
		choices = append(choices, &llms.ContentChoice{Content: text})
	}
	return &llms.ContentResponse{Choices: choices}
}

func TestPlanFromText_OfflineWithoutAPIKey(t *testing.T) {
	p := planner.New("", "gpt-5")

	plan := p.PlanFromText(context.Background(), "یک گوشی می‌خواهم")

	if plan.Action != models.ActionNone {
		t.Errorf("Action = %q, want %q", plan.Action, models.ActionNone)
	}
	if plan.Reply != planner.OfflineReply {
		t.Errorf("Reply = %q, want %q", plan.Reply, planner.OfflineReply)
	}
}

func TestPlanFromText_StructuredOutput(t *testing.T) {
	m := &fakeModel{resp: contentResponse(
		`{"reply":"این گزینه‌ها موجود است:","action":"search_products","criteria":{"query":"گوشی","max_price":50000000}}`,
	)}
	p := planner.NewWithModel(m)

	plan := p.PlanFromText(context.Background(), "گوشی زیر پنجاه میلیون")

	if plan.Action != models.ActionSearchProducts {
		t.Fatalf("Action = %q, want %q", plan.Action, models.ActionSearchProducts)
	}
	if plan.Criteria == nil {
		t.Fatal("Criteria = nil, want populated")
	}
	if plan.Criteria.Query != "گوشی" {
		t.Errorf("Criteria.Query = %q, want %q", plan.Criteria.Query, "گوشی")
	}
	if plan.Criteria.MaxPrice != 50000000 {
		t.Errorf("Criteria.MaxPrice = %v, want 50000000", plan.Criteria.MaxPrice)
	}

	// One system instruction plus the raw user text.
	if len(m.got) != 2 {
		t.Fatalf("model received %d messages, want 2", len(m.got))
	}
	if m.got[0].Role != llms.ChatMessageTypeSystem {
		t.Errorf("first message role = %q, want system", m.got[0].Role)
	}
	if m.got[1].Role != llms.ChatMessageTypeHuman {
		t.Errorf("second message role = %q, want human", m.got[1].Role)
	}
}

func TestPlanFromText_ProseWrappedJSON(t *testing.T) {
	m := &fakeModel{resp: contentResponse(
		"Sure, here is the plan:\n{\"reply\":\"سلام!\",\"action\":\"none\"}\nHope that helps.",
	)}
	p := planner.NewWithModel(m)

	plan := p.PlanFromText(context.Background(), "سلام")

	if plan.Action != models.ActionNone || plan.Reply != "سلام!" {
		t.Errorf("plan = {%q %q}, want extracted from wrapped JSON", plan.Reply, plan.Action)
	}
}

func TestPlanFromText_ModelErrorDegrades(t *testing.T) {
	p := planner.NewWithModel(&fakeModel{err: errors.New("connection refused")})

	plan := p.PlanFromText(context.Background(), "hi")

	if plan.Action != models.ActionNone {
		t.Errorf("Action = %q, want %q", plan.Action, models.ActionNone)
	}
	if plan.Reply != planner.FallbackReply {
		t.Errorf("Reply = %q, want %q", plan.Reply, planner.FallbackReply)
	}
}

func TestPlanFromText_SchemaViolationsDegrade(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown action", `{"reply":"ok","action":"buy_now"}`},
		{"missing reply", `{"action":"none"}`},
		{"missing action", `{"reply":"ok"}`},
		{"not JSON at all", `sorry, I cannot help with that`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := planner.NewWithModel(&fakeModel{resp: contentResponse(tt.content)})

			plan := p.PlanFromText(context.Background(), "hi")

			if plan.Reply != planner.FallbackReply || plan.Action != models.ActionNone {
				t.Errorf("plan = {%q %q}, want degraded fallback", plan.Reply, plan.Action)
			}
		})
	}
}

func TestPlanFromText_EmptyResponseDegrades(t *testing.T) {
	p := planner.NewWithModel(&fakeModel{resp: contentResponse()})

	plan := p.PlanFromText(context.Background(), "hi")

	if plan.Reply != planner.FallbackReply {
		t.Errorf("Reply = %q, want %q", plan.Reply, planner.FallbackReply)
	}
}

func TestPlanFromText_AlwaysNonEmptyReply(t *testing.T) {
	planners := map[string]*planner.Planner{
		"offline":      planner.New("", "gpt-5"),
		"failing":      planner.NewWithModel(&fakeModel{err: errors.New("down")}),
		"garbage":      planner.NewWithModel(&fakeModel{resp: contentResponse("{{{")}),
		"valid output": planner.NewWithModel(&fakeModel{resp: contentResponse(`{"reply":"باشه","action":"none"}`)}),
	}
	for name, p := range planners {
		for _, input := range []string{"", "سلام", "a phone under 5,000,000"} {
			plan := p.PlanFromText(context.Background(), input)
			if plan == nil || plan.Reply == "" {
				t.Errorf("%s: PlanFromText(%q) returned empty reply", name, input)
			}
			if plan.Action != models.ActionNone && plan.Action != models.ActionSearchProducts {
				t.Errorf("%s: PlanFromText(%q) action = %q, not a valid action", name, input, plan.Action)
			}
		}
	}
}
