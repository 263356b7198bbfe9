package providers

import (
	"context"
	"fmt"
	"os"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/zenflow/zenflow-mcp/internal/zenflow/models"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/tokens"
)

// Google is the native-SDK adapter for the Gemini family. It maps
// thinking-mode fractions to Gemini's thinkingBudget knob and passes
// images through as inline data rather than uploading them out of band.
type Google struct {
	client  *genai.Client
	catalog *models.Catalog
	retry   RetryConfig
}

// NewGoogle constructs the Google adapter. The underlying client is
// lazily connected on first use; callers should Close it at shutdown.
func NewGoogle(ctx context.Context, apiKey string, catalog *models.Catalog) (*Google, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Google{client: client, catalog: catalog, retry: DefaultRetryConfig()}, nil
}

func (g *Google) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

func (g *Google) Kind() models.ProviderKind { return models.Google }

func (g *Google) ValidateModel(name string) bool {
	cap, ok := g.catalog.Capabilities(name)
	return ok && cap.ProviderKind == models.Google
}

func (g *Google) CountTokens(name, text string) int {
	return tokens.Estimate(text)
}

func (g *Google) Capabilities(name string) (models.Capability, bool) {
	return g.catalog.Capabilities(name)
}

func (g *Google) Generate(ctx context.Context, req GenerationRequest) (ModelResponse, error) {
	cap, known := g.catalog.Capabilities(req.ModelName)
	if !known {
		return ModelResponse{}, fmt.Errorf("gemini: unknown model %q: %w", req.ModelName, &TransportError{StatusCode: 404})
	}

	meta := map[string]interface{}{}
	model := g.client.GenerativeModel(req.ModelName)
	g.configureModel(model, req, cap, meta)

	parts, err := g.convertParts(req)
	if err != nil {
		return ModelResponse{}, err
	}

	resp, err := withRetry(ctx, g.retry, func(ctx context.Context) (ModelResponse, error) {
		out, err := model.GenerateContent(ctx, parts...)
		if err != nil {
			return ModelResponse{}, classifyGoogleError(err)
		}
		return g.convertResponse(out, req.ModelName, meta), nil
	})
	return resp, err
}

func (g *Google) configureModel(model *genai.GenerativeModel, req GenerationRequest, cap models.Capability, meta map[string]interface{}) {
	if req.SystemPrompt != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.SystemPrompt)}}
	}

	temp := req.Temperature
	if cap.TemperatureRange != nil && temp > cap.TemperatureRange.Max {
		temp = cap.TemperatureRange.Max
	}
	model.SetTemperature(float32(temp))

	if req.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxOutputTokens))
	}

	if req.ThinkingMode != "" {
		if !cap.SupportsThinkingMode {
			addWarning(meta, fmt.Sprintf("model %s does not support thinking mode; %q discarded", req.ModelName, req.ThinkingMode))
		} else {
			budget := models.ThinkingBudget(cap, req.ThinkingMode)
			model.SetCandidateCount(1)
			// genai's GenerationConfig exposes ThinkingConfig for budgeted
			// reasoning; the budget is set through that typed field.
			model.GenerationConfig.ThinkingConfig = &genai.ThinkingConfig{
				ThinkingBudget: int32(budget),
			}
		}
	}
}

func (g *Google) convertParts(req GenerationRequest) ([]genai.Part, error) {
	parts := []genai.Part{genai.Text(req.Prompt)}
	for _, img := range req.Images {
		if img.Path != "" {
			data, err := os.ReadFile(img.Path)
			if err != nil {
				return nil, fmt.Errorf("reading image %s: %w", img.Path, err)
			}
			parts = append(parts, genai.ImageData(mimeFromPath(img.Path), data))
		}
	}
	return parts, nil
}

func mimeFromPath(path string) string {
	switch {
	case len(path) > 4 && path[len(path)-4:] == ".png":
		return "png"
	case len(path) > 5 && path[len(path)-5:] == ".webp":
		return "webp"
	default:
		return "jpeg"
	}
}

func (g *Google) convertResponse(resp *genai.GenerateContentResponse, modelName string, meta map[string]interface{}) ModelResponse {
	out := ModelResponse{ModelName: modelName, ProviderKind: models.Google, Metadata: meta}
	if len(resp.Candidates) > 0 {
		for _, part := range resp.Candidates[0].Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				out.Content += string(txt)
			}
		}
	}
	if resp.UsageMetadata != nil {
		out.Usage = Usage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int(resp.UsageMetadata.TotalTokenCount),
		}
	}
	return out
}

func classifyGoogleError(err error) error {
	if ge, ok := err.(*genai.BlockedError); ok {
		return &TransportError{StatusCode: 400, Err: ge}
	}
	return &TransportError{StatusCode: 0, Err: err}
}

var _ Provider = (*Google)(nil)
