package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/ajschmidt2/bluebeam-consolidator/internal/bootstrap/config"
	"github.com/ajschmidt2/bluebeam-consolidator/internal/errs"
	"github.com/ajschmidt2/bluebeam-consolidator/internal/ports"
)

const systemPrompt = "You help a real estate development manager triage drawing review comments. " +
	"Return ONLY valid JSON matching the schema. Be concise."

var allowedTags = map[string]struct{}{
	"RFI": {}, "DECISION": {}, "COORD": {}, "CODE": {},
	"COST": {}, "SCHED": {}, "QA": {}, "OTHER": {},
}

// OpenAIClassifier implements ports.Classifier over the chat completions
// API with a strict JSON-schema response format. Constructing it without an
// API key is valid; Classify then reports ErrClassifierUnavailable so the
// caller can surface triage as disabled instead of crashing.
type OpenAIClassifier struct {
	client  openai.Client
	model   string
	enabled bool
	schema  map[string]any
}

var _ ports.Classifier = (*OpenAIClassifier)(nil)

func NewOpenAIClassifier(cfg config.OpenAIConfig) *OpenAIClassifier {
	c := &OpenAIClassifier{
		model:   cfg.Model,
		enabled: strings.TrimSpace(cfg.APIKey) != "",
		schema:  triageSchema(),
	}
	if !c.enabled {
		return c
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	c.client = openai.NewClient(opts...)
	return c
}

func (c *OpenAIClassifier) Available() bool {
	return c.enabled
}

func (c *OpenAIClassifier) Classify(ctx context.Context, input ports.ClassifyInput) (ports.TriageResult, error) {
	if ctx == nil {
		return ports.TriageResult{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return ports.TriageResult{}, errs.Wrap(err, "check context")
	}
	if !c.enabled {
		return ports.TriageResult{}, ports.ErrClassifierUnavailable
	}

	userPrompt := fmt.Sprintf(
		"Discipline: %s\nSheet: %s\nMilestone: %s\nComment: %s\n\nDecide whether to TRACK this, assign a TAG + RISK, and rewrite a clear REQUIRED RESPONSE.",
		input.Discipline, input.Sheet, input.Milestone, input.CommentText,
	)

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Temperature: openai.Float(0.2),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   "triage_result",
					Schema: c.schema,
					Strict: openai.Bool(true),
				},
			},
		},
	})
	if err != nil {
		return ports.TriageResult{}, errs.Wrap(err, "chat completion")
	}
	if len(resp.Choices) == 0 {
		return ports.TriageResult{}, errors.New("empty completion response")
	}

	result, err := parseTriageJSON(resp.Choices[0].Message.Content)
	if err != nil {
		return ports.TriageResult{}, err
	}

	result.Tag = normalizeTag(result.Tag)
	result.Risk = normalizeRisk(result.Risk)
	result.RequiredResponse = strings.TrimSpace(result.RequiredResponse)
	return result, nil
}

// parseTriageJSON tolerates prose around the JSON object; models sometimes
// wrap the payload even under a schema-constrained response format.
func parseTriageJSON(text string) (ports.TriageResult, error) {
	var result ports.TriageResult
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return result, errors.New("empty completion content")
	}

	if err := json.Unmarshal([]byte(trimmed), &result); err == nil {
		return result, nil
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start < 0 || end <= start {
		return result, fmt.Errorf("no JSON object in completion: %q", truncate(trimmed, 120))
	}
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), &result); err != nil {
		return result, errs.Wrap(err, "decode triage result")
	}
	return result, nil
}

func normalizeTag(tag string) string {
	t := strings.ToUpper(strings.TrimSpace(tag))
	if t == "" {
		return ""
	}
	if _, ok := allowedTags[t]; ok {
		return t
	}
	return "OTHER"
}

func normalizeRisk(risk string) string {
	r := strings.ToUpper(strings.TrimSpace(risk))
	switch r {
	case "LOW", "MED", "HIGH":
		return r
	case "MEDIUM":
		return "MED"
	default:
		return ""
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// triageSchema reflects ports.TriageResult into a strict-mode JSON schema:
// every property required, no additional properties.
func triageSchema() map[string]any {
	reflector := jsonschema.Reflector{
		Anonymous:      true,
		DoNotReference: true,
		ExpandedStruct: true,
	}

	schema := reflector.Reflect(&ports.TriageResult{})
	raw, err := json.Marshal(schema)
	if err != nil {
		return map[string]any{"type": "object"}
	}

	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return map[string]any{"type": "object"}
	}
	delete(out, "$schema")
	delete(out, "$id")
	out["additionalProperties"] = false
	return out
}
