// Package planner turns free-form user text into a structured shopping
// plan via an OpenAI structured-output call. Planning failures never reach
// the caller: every error path collapses into a degraded plan with a fixed
// apologetic reply.
package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/bazaarbot/bazaarbot/internal/models"
)

// SystemPrompt fixes the assistant persona: a concise, respectful sales
// assistant that fills criteria whenever a purchase is plausible.
const SystemPrompt = `تو یک دستیار فروش حرفه‌ای برای فروشگاه هستی.
- پاسخ‌هایت کوتاه، دقیق و محترمانه باشد.
- اگر برای توصیه خرید به اطلاعات بیشتری نیاز داری، حداکثر ۲ سؤال روشن‌کننده بپرس.
- هر زمان احتمال خرید وجود دارد، action=search_products و criteria را دقیق پر کن.
- بودجه را اگر کاربر گفت، در criteria بنویس (min_price/max_price)؛ واحد همان واحد ووکامرس است. نمایش تومان را بک‌اند انجام می‌دهد.
- اگر نتیجه جستجو خالی شد، جایگزین‌های نزدیک پیشنهاد بده.
`

// Degraded replies.
const (
	// OfflineReply is returned when no inference capability is configured.
	OfflineReply = "لطفاً یک ویژگی از محصول بگو تا جستجو کنم."

	// FallbackReply is returned when planning fails for any other reason.
	FallbackReply = "در پردازش درخواست مشکلی پیش آمد. لطفاً دوباره تلاش کن یا ویژگی‌های بیشتری بگو."
)

// ChatModel is the slice of llms.Model the planner needs. Tests substitute
// a fake; production uses the langchaingo OpenAI client.
type ChatModel interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// advisorResponseFormat is the strict schema the model must answer in:
// reply and action are mandatory, criteria is a sparse filter, nothing
// outside this set may appear.
var advisorResponseFormat = &openai.ResponseFormat{
	Type: "json_schema",
	JSONSchema: &openai.ResponseFormatJSONSchema{
		Name:   "ProductAdvisorSchema",
		Strict: true,
		Schema: &openai.ResponseFormatJSONSchemaProperty{
			Type:                 "object",
			AdditionalProperties: false,
			Required:             []string{"reply", "action"},
			Properties: map[string]*openai.ResponseFormatJSONSchemaProperty{
				"reply":  {Type: "string", Description: "Natural language advice in Persian."},
				"action": {Type: "string", Enum: []any{models.ActionNone, models.ActionSearchProducts}},
				"criteria": {
					Type:                 "object",
					AdditionalProperties: false,
					Properties: map[string]*openai.ResponseFormatJSONSchemaProperty{
						"query":     {Type: "string"},
						"category":  {Type: "string"},
						"brand":     {Type: "string"},
						"min_price": {Type: "number"},
						"max_price": {Type: "number"},
						"attributes": {
							Type: "array",
							Items: &openai.ResponseFormatJSONSchemaProperty{
								Type:                 "object",
								AdditionalProperties: false,
								Required:             []string{"name", "value"},
								Properties: map[string]*openai.ResponseFormatJSONSchemaProperty{
									"name":  {Type: "string"},
									"value": {Type: "string"},
								},
							},
						},
					},
				},
			},
		},
	},
}

// Planner produces one Plan per inbound message.
type Planner struct {
	model    ChatModel
	validate *validator.Validate
}

// New creates a planner backed by the OpenAI chat API. An empty API key
// yields an offline planner whose plans ask the user for more detail; this
// is the designed dry-run behavior, not an error.
func New(apiKey, model string) *Planner {
	p := &Planner{validate: validator.New()}
	if apiKey == "" {
		return p
	}

	llm, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithModel(model),
		openai.WithResponseFormat(advisorResponseFormat),
	)
	if err != nil {
		log.Warn().Err(err).Msg("openai client init failed, planner runs offline")
		return p
	}
	p.model = llm
	return p
}

// NewWithModel builds a planner on an explicit chat model.
func NewWithModel(m ChatModel) *Planner {
	return &Planner{model: m, validate: validator.New()}
}

// PlanFromText asks the model for a plan. The returned plan always carries
// a non-empty reply and a valid action.
func (p *Planner) PlanFromText(ctx context.Context, userText string) *models.Plan {
	if p.model == nil {
		return &models.Plan{Reply: OfflineReply, Action: models.ActionNone}
	}

	resp, err := p.model.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, SystemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userText),
	})
	if err != nil {
		log.Error().Err(err).Msg("plan generation failed")
		return degradedPlan()
	}

	plan, err := p.extractPlan(resp)
	if err != nil {
		log.Error().Err(err).Msg("plan extraction failed")
		return degradedPlan()
	}
	return plan
}

func (p *Planner) extractPlan(resp *llms.ContentResponse) (*models.Plan, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return nil, errors.New("empty model response")
	}

	var plan models.Plan
	if err := json.Unmarshal([]byte(resp.Choices[0].Content), &plan); err != nil {
		// Some responses wrap the object in prose. Fall back to the first
		// JSON object found in any choice.
		raw := firstJSONObject(resp)
		if raw == "" {
			return nil, fmt.Errorf("no JSON object in model response: %w", err)
		}
		if err := json.Unmarshal([]byte(raw), &plan); err != nil {
			return nil, fmt.Errorf("parse model response: %w", err)
		}
	}

	if err := p.validate.Struct(&plan); err != nil {
		return nil, fmt.Errorf("plan failed validation: %w", err)
	}
	return &plan, nil
}

func firstJSONObject(resp *llms.ContentResponse) string {
	for _, choice := range resp.Choices {
		if choice == nil {
			continue
		}
		start := strings.Index(choice.Content, "{")
		end := strings.LastIndex(choice.Content, "}")
		if start >= 0 && end > start {
			return choice.Content[start : end+1]
		}
	}
	return ""
}

func degradedPlan() *models.Plan {
	return &models.Plan{Reply: FallbackReply, Action: models.ActionNone}
}
