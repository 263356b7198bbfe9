// Package providers implements the per-provider adapters that speak to
// the external LLM APIs behind a single uniform contract. Every adapter
// implements Provider regardless of whether it wraps a native SDK
// (Google) or an OpenAI-compatible HTTP surface (OpenAI, X.AI,
// OpenRouter, DIAL, Custom).
package providers

import (
	"context"

	"github.com/zenflow/zenflow-mcp/internal/zenflow/models"
)

// Image is an inline image attachment, either a filesystem path the
// adapter reads itself or an already-decoded data URL.
type Image struct {
	Path    string // absolute path, or empty if DataURL is set
	DataURL string
}

// GenerationRequest is the uniform request shape every adapter accepts.
// Fields a given provider cannot honor are dropped rather than rejected.
// A warning is recorded in the response metadata only for some drops
// (thinking mode on a Google model without it, JSONSchema or an overridden
// fixed temperature on the OpenAI-compatible path); Images on the
// OpenAI-compatible path, JSONSchema and data-URL images on Google, and
// Streaming on both are dropped with no warning.
type GenerationRequest struct {
	Prompt          string
	ModelName       string
	SystemPrompt    string
	Temperature     float64
	MaxOutputTokens int
	ThinkingMode    models.ThinkingMode
	Images          []Image
	JSONSchema      map[string]interface{}
	Streaming       bool
}

// Usage reports token consumption for a single generation call.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// ModelResponse is the uniform response shape every adapter returns.
type ModelResponse struct {
	Content      string
	Usage        Usage
	ModelName    string
	FriendlyName string
	ProviderKind models.ProviderKind
	Metadata     map[string]interface{}
}

// Provider is the capability set every per-provider adapter implements.
type Provider interface {
	// Kind identifies which provider family this adapter serves.
	Kind() models.ProviderKind

	// ValidateModel reports whether name is one this provider can serve.
	ValidateModel(name string) bool

	// Generate performs a single (blocking) completion call. It never
	// streams partial output back up through this interface.
	Generate(ctx context.Context, req GenerationRequest) (ModelResponse, error)

	// CountTokens estimates the token count text would consume for model
	// name. Implementations may delegate to the cheap character-based
	// estimator; the result is never used for billing.
	CountTokens(name, text string) int

	// Capabilities returns the declarative metadata for model name.
	Capabilities(name string) (models.Capability, bool)
}

// addWarning appends a warning string to a metadata map, creating the map
// and the "warnings" slice lazily.
func addWarning(meta map[string]interface{}, warning string) map[string]interface{} {
	if meta == nil {
		meta = map[string]interface{}{}
	}
	existing, _ := meta["warnings"].([]string)
	meta["warnings"] = append(existing, warning)
	return meta
}
