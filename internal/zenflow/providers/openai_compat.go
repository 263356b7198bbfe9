package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/zenflow/zenflow-mcp/internal/zenflow/models"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/tokens"
)

// OpenAICompatible backs every provider kind whose wire format is the
// OpenAI chat-completions API: OpenAI itself, X.AI, OpenRouter, DIAL, and
// user-declared Custom endpoints. Only the base URL, auth header, and
// model-name conventions differ between them.
type OpenAICompatible struct {
	kind    models.ProviderKind
	client  *openai.Client
	catalog *models.Catalog
	retry   RetryConfig

	// deploymentModel holds the apiVersion string passed to NewDIAL; it is
	// empty for every other kind, and no request path reads it.
	deploymentModel string
}

// NewOpenAICompatible constructs an adapter for kind using apiKey and
// baseURL (empty baseURL uses the provider's default endpoint).
func NewOpenAICompatible(kind models.ProviderKind, apiKey, baseURL string, catalog *models.Catalog) *OpenAICompatible {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)
	return &OpenAICompatible{
		kind:    kind,
		client:  &client,
		catalog: catalog,
		retry:   DefaultRetryConfig(),
	}
}

// NewDIAL constructs the DIAL adapter, whose base URL is scoped per
// deployment: "{base}/openai/deployments/{model}/chat/completions". The
// openai-go client handles the path suffix itself; we only need to
// substitute the deployment segment per request, which DIAL's own
// compatibility shim derives from the Model field, so no special casing
// is required beyond pointing baseURL at "{host}/openai/deployments".
func NewDIAL(apiKey, host, apiVersion string, catalog *models.Catalog) *OpenAICompatible {
	base := strings.TrimRight(host, "/") + "/openai/deployments"
	a := NewOpenAICompatible(models.DIAL, apiKey, base, catalog)
	a.deploymentModel = apiVersion
	return a
}

func (a *OpenAICompatible) Kind() models.ProviderKind { return a.kind }

func (a *OpenAICompatible) ValidateModel(name string) bool {
	_, ok := a.catalog.Capabilities(name)
	if ok {
		cap, _ := a.catalog.Capabilities(name)
		return cap.ProviderKind == a.kind
	}
	// OpenRouter and Custom accept models outside the static catalog
	// (vendor-prefixed names, or an arbitrary custom deployment).
	return a.kind == models.OpenRouter || a.kind == models.Custom
}

func (a *OpenAICompatible) CountTokens(name, text string) int {
	return tokens.Estimate(text)
}

func (a *OpenAICompatible) Capabilities(name string) (models.Capability, bool) {
	return a.catalog.Capabilities(name)
}

// RemoteModelID is one entry from a provider's /models listing endpoint.
type RemoteModelID struct {
	ID string
}

// ListRemoteModels queries the provider's model-listing endpoint directly,
// bypassing the static catalog. OpenRouter and Custom endpoints carry
// deployment-specific model sets the static catalog cannot enumerate in
// advance, mirroring GetEndpointModels in the teacher's broader corpus.
func (a *OpenAICompatible) ListRemoteModels(ctx context.Context) ([]RemoteModelID, error) {
	page, err := a.client.Models.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list remote models: %w", err)
	}
	out := make([]RemoteModelID, 0, len(page.Data))
	for _, m := range page.Data {
		out = append(out, RemoteModelID{ID: m.ID})
	}
	return out, nil
}

func (a *OpenAICompatible) Generate(ctx context.Context, req GenerationRequest) (ModelResponse, error) {
	cap, known := a.catalog.Capabilities(req.ModelName)
	meta := map[string]interface{}{}

	temperature := req.Temperature
	if known && cap.TemperatureConstraint == models.TemperatureConstraintFixed && cap.TemperatureRange != nil {
		if temperature != cap.TemperatureRange.Min {
			meta = addWarning(meta, fmt.Sprintf(
				"model %s enforces a fixed temperature of %v; overriding caller value %v",
				req.ModelName, cap.TemperatureRange.Min, temperature))
		}
		temperature = cap.TemperatureRange.Min
	}

	isReasoningModel := strings.HasPrefix(req.ModelName, "o1") || strings.HasPrefix(req.ModelName, "o3") || strings.HasPrefix(req.ModelName, "o4")

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(req.ModelName),
		Messages: a.buildMessages(req),
	}
	if !isReasoningModel {
		params.Temperature = openai.Float(temperature)
	}
	if req.MaxOutputTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxOutputTokens))
	}
	if isReasoningModel && req.ThinkingMode != "" {
		params.ReasoningEffort = reasoningEffortFor(req.ThinkingMode)
	}
	if req.JSONSchema != nil {
		meta = addWarning(meta, "json_schema requested but this provider path uses best-effort JSON mode, not strict schema enforcement")
	}

	resp, err := withRetry(ctx, a.retry, func(ctx context.Context) (ModelResponse, error) {
		completion, err := a.client.Chat.Completions.New(ctx, params)
		if err != nil {
			return ModelResponse{}, classifyError(err)
		}
		return a.convertResponse(completion, meta), nil
	})
	if err != nil {
		return ModelResponse{}, err
	}
	return resp, nil
}

func (a *OpenAICompatible) buildMessages(req GenerationRequest) []openai.ChatCompletionMessageParamUnion {
	var msgs []openai.ChatCompletionMessageParamUnion
	if req.SystemPrompt != "" {
		msgs = append(msgs, openai.SystemMessage(req.SystemPrompt))
	}
	msgs = append(msgs, openai.UserMessage(req.Prompt))
	return msgs
}

func (a *OpenAICompatible) convertResponse(completion *openai.ChatCompletion, meta map[string]interface{}) ModelResponse {
	resp := ModelResponse{
		ModelName:    string(completion.Model),
		ProviderKind: a.kind,
		Metadata:     meta,
	}
	if len(completion.Choices) > 0 {
		resp.Content = completion.Choices[0].Message.Content
	}
	resp.Usage = Usage{
		InputTokens:  int(completion.Usage.PromptTokens),
		OutputTokens: int(completion.Usage.CompletionTokens),
		TotalTokens:  int(completion.Usage.TotalTokens),
	}
	return resp
}

func reasoningEffortFor(mode models.ThinkingMode) openai.ReasoningEffort {
	switch mode {
	case models.ThinkingMinimal, models.ThinkingLow:
		return openai.ReasoningEffortLow
	case models.ThinkingHigh, models.ThinkingMax:
		return openai.ReasoningEffortHigh
	default:
		return openai.ReasoningEffortMedium
	}
}

// classifyError converts an openai-go error into a *TransportError so the
// shared retry loop can decide whether to retry.
func classifyError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &TransportError{StatusCode: apiErr.StatusCode, Err: err}
	}
	return &TransportError{StatusCode: 0, Err: err}
}

var _ Provider = (*OpenAICompatible)(nil)
