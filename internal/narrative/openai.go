package narrative

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/rs/zerolog"
)

const instructions = `You name a person's current physical state after a car model that matches it,
given health scores between 0 and 100. Higher is better. Use the tier as the overall mood.
If a previous name is given and still fits, keep it. Reply with JSON only.`

// OpenAIConfig configures the OpenAI narrator.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// OpenAI generates narratives with the Responses API and a strict JSON
// schema derived from Narrative.
type OpenAI struct {
	client openai.Client
	model  string
	format responses.ResponseFormatTextConfigUnionParam
	log    zerolog.Logger

	// waits between attempts, indexed by attempt.
	rateLimitWaits   []time.Duration
	serverErrorWaits []time.Duration
}

// NewOpenAI creates an OpenAI narrator. The SDK's own retries are
// disabled; OpenAI retries rate limits and server errors itself.
func NewOpenAI(cfg OpenAIConfig, log zerolog.Logger) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai narrator: api key is empty")
	}
	if cfg.Model == "" {
		return nil, errors.New("openai narrator: model is empty")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	schema, err := generateSchema[Narrative]()
	if err != nil {
		return nil, fmt.Errorf("openai narrator: build schema: %w", err)
	}

	return &OpenAI{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
		format: responses.ResponseFormatTextConfigUnionParam{
			OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
				Name:        "Narrative",
				Schema:      schema,
				Strict:      openai.Bool(true),
				Description: openai.String("Narrative JSON"),
				Type:        "json_schema",
			},
		},
		log:              log.With().Str("component", "narrative").Logger(),
		rateLimitWaits:   []time.Duration{20 * time.Second, 60 * time.Second},
		serverErrorWaits: []time.Duration{2 * time.Second, 10 * time.Second},
	}, nil
}

// Generate asks the model for a narrative of req.
func (o *OpenAI) Generate(ctx context.Context, req Request) (Narrative, error) {
	input, err := json.Marshal(req)
	if err != nil {
		return Narrative{}, fmt.Errorf("encode narrative request: %w", err)
	}

	params := responses.ResponseNewParams{
		Model:           o.model,
		MaxOutputTokens: openai.Int(400),
		Instructions:    openai.String(instructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(string(input), responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: o.format,
		},
	}

	resp, err := o.callWithRetry(ctx, params)
	if err != nil {
		return Narrative{}, err
	}

	var out Narrative
	if err := json.Unmarshal([]byte(strings.TrimSpace(resp.OutputText())), &out); err != nil {
		return Narrative{}, fmt.Errorf("decode narrative: %w", err)
	}
	out = out.Normalize()
	if err := out.Validate(); err != nil {
		return Narrative{}, err
	}
	return out, nil
}

func (o *OpenAI) callWithRetry(ctx context.Context, params responses.ResponseNewParams) (*responses.Response, error) {
	maxAttempts := 1 + max(len(o.rateLimitWaits), len(o.serverErrorWaits))

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		resp, err := o.client.Responses.New(ctx, params)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		var waits []time.Duration
		switch {
		case isRateLimitError(err):
			waits = o.rateLimitWaits
		case isServerError(err):
			waits = o.serverErrorWaits
		default:
			return nil, fmt.Errorf("openai responses: %w", err)
		}
		if attempt >= len(waits) {
			break
		}

		o.log.Warn().Err(err).Int("attempt", attempt+1).Dur("wait", waits[attempt]).Msg("retrying narrative request")
		select {
		case <-time.After(waits[attempt]):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("openai responses: giving up: %w", lastErr)
}

func statusCode(err error) int {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func isRateLimitError(err error) bool {
	if statusCode(err) == http.StatusTooManyRequests {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests")
}

func isServerError(err error) bool {
	return statusCode(err) >= 500
}

// generateSchema reflects T into the strict schema shape OpenAI accepts:
// no additional properties and every property required.
func generateSchema[T any]() (map[string]any, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	data, err := reflector.Reflect(v).MarshalJSON()
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	strict(m)
	return m, nil
}

func strict(schema map[string]any) {
	delete(schema, "$schema")
	delete(schema, "$id")
	if t, ok := schema["type"].(string); ok && t == "object" {
		schema["additionalProperties"] = false
		if props, ok := schema["properties"].(map[string]any); ok {
			required := make([]string, 0, len(props))
			for name, p := range props {
				required = append(required, name)
				if pm, ok := p.(map[string]any); ok {
					strict(pm)
				}
			}
			schema["required"] = required
		}
	}
	if items, ok := schema["items"].(map[string]any); ok {
		strict(items)
	}
}
