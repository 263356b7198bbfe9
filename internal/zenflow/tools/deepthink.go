package tools

import (
	"context"

	"github.com/zenflow/zenflow-mcp/internal/zenflow/models"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/server"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/simpletool"
)

// DeepThinkArgs is the deep-think tool's input: a single prompt routed to
// an extended-reasoning-category model with a thinking-mode default of
// "high" when the caller doesn't specify one.
type DeepThinkArgs struct {
	Prompt string `json:"prompt" jsonschema:"required,description=The problem to reason through deeply."`
	CommonArgs
}

// RegisterDeepThink installs the deep-think tool.
func RegisterDeepThink(s *server.Server, deps Deps) error {
	return server.Register(s, "deepthink", "Extended-reasoning analysis of a single hard problem, using a thinking-capable model.",
		func(ctx context.Context, args DeepThinkArgs) (server.Envelope, error) {
			mode := thinkingMode(args.ThinkingMode)
			if mode == "" {
				mode = models.ThinkingHigh
			}
			resp, err := simpletool.Run(ctx, simpletool.Deps{Registry: deps.Registry, Store: deps.Store}, simpletool.Request{
				ToolName:       "deepthink",
				Prompt:         args.Prompt,
				SystemPrompt:   buildSystemPrompt(deepThinkSystemPrompt, deps.Locale) + websearchHint(args.UseWebsearch),
				ModelName:      args.Model,
				Category:       models.ExtendedReasoning,
				Temperature:    args.Temperature,
				HasTemperature: args.hasTemperature(),
				ThinkingMode:   mode,
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
