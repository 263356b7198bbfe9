package tools

import (
	"context"

	"github.com/zenflow/zenflow-mcp/internal/zenflow/models"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/server"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/simpletool"
)

// ChatArgs is the chat tool's input: an open-ended technical conversation
// turn, the simplest possible simple-tool wiring.
type ChatArgs struct {
	Prompt string `json:"prompt" jsonschema:"required,description=The question or message to send."`
	CommonArgs
}

// RegisterChat installs the chat tool.
func RegisterChat(s *server.Server, deps Deps) error {
	return server.Register(s, "chat", "General technical chat with an LLM, with optional file/image context and conversation continuation.",
		func(ctx context.Context, args ChatArgs) (server.Envelope, error) {
			resp, err := simpletool.Run(ctx, simpletool.Deps{Registry: deps.Registry, Store: deps.Store}, simpletool.Request{
				ToolName:       "chat",
				Prompt:         args.Prompt,
				SystemPrompt:   buildSystemPrompt(chatSystemPrompt, deps.Locale) + websearchHint(args.UseWebsearch),
				ModelName:      args.Model,
				Category:       models.Balanced,
				Temperature:    args.Temperature,
				HasTemperature: args.hasTemperature(),
				ThinkingMode:   thinkingMode(args.ThinkingMode),
				Files:          args.Files,
				Images:         args.Images,
				ContinuationID: args.ContinuationID,
			})
			if err != nil {
				return toolError(err)
			}
			env := server.SuccessWithContinuation(resp.Content, resp.ContinuationID)
			if len(resp.Warnings) > 0 {
				env.Metadata = map[string]interface{}{"warnings": resp.Warnings}
			}
			env.Metadata = withModelMetadata(env.Metadata, resp)
			return env, nil
		})
}

// withModelMetadata attaches the resolved model/provider to an envelope's
// metadata map, creating it if necessary.
func withModelMetadata(meta map[string]interface{}, resp simpletool.Response) map[string]interface{} {
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["model_name"] = resp.ModelName
	meta["provider_kind"] = string(resp.ProviderKind)
	return meta
}
