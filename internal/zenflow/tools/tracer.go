package tools

import (
	"context"

	"github.com/zenflow/zenflow-mcp/internal/zenflow/models"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/server"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/workflow"
)

// TracerArgs is the tracer tool's input. trace_mode consolidates what
// were originally two overlapping tools (tracer and tracepath) behind
// one name, per the Open Question decision recorded in DESIGN.md.
type TracerArgs struct {
	TraceMode string `json:"trace_mode,omitempty" jsonschema:"description=Which kind of trace to perform.,enum=precision,enum=dependencies"`
	TargetDescription string `json:"target_description,omitempty" jsonschema:"description=The function\\, method\\, or module to trace."`
	WorkflowArgs
}

var tracerStatusMap = map[string]string{
	"investigation_in_progress":         "pause_for_trace",
	"skipped_due_to_certain_confidence": "certain_confidence_trace_complete",
	"calling_expert_analysis":           "trace_complete",
}

// RegisterTracer installs the tracer tool. trace_mode="precision" asks
// the model to trace a single execution path call-by-call; "dependencies"
// asks it to map a module's inbound/outbound dependency edges instead.
// Both modes ride the same workflow contract; only the instruction text
// handed to the model differs.
func RegisterTracer(s *server.Server, deps Deps) error {
	return server.Register(s, "tracer", "Traces either a precise call path or a module's dependency graph through static reasoning.",
		func(ctx context.Context, args TracerArgs) (server.Envelope, error) {
			mode := args.TraceMode
			if mode == "" {
				mode = "precision"
			}
			instruction := tracerExpertInstruction
			if mode == "dependencies" {
				instruction = "You are validating a dependency-graph trace assembled by an agent. Confirm every inbound and outbound edge is real and flag anything that looks like a guess rather than a traced reference."
			}
			spec := workflow.Spec{
				ToolName:          "tracer",
				Category:          models.Balanced,
				ExpertGate:        workflow.ExpertGate{SkipOnCertainConfidence: true},
				ExpertInstruction: buildSystemPrompt(instruction, deps.Locale),
				PausedStatus:      "pause_for_trace",
				CompleteStatusKey: "complete_trace",
				RequiredActionsFor: func(f *workflow.Findings, step workflow.Step) []string {
					if !step.NextStepRequired {
						return nil
					}
					if mode == "dependencies" {
						return []string{"Enumerate every import/call edge touching the target before the next step."}
					}
					return []string{"Follow the target call to its next hop, noting any branch or dynamic dispatch point."}
				},
			}
			if err := args.validatePaths(); err != nil {
				return toolError(err)
			}
			res, err := deps.Engine.Step(ctx, spec, args.toStep())
			if err != nil {
				return toolError(err)
			}
			env := workflowEnvelope(res, tracerStatusMap)
			if env.Metadata == nil {
				env.Metadata = map[string]interface{}{}
			}
			env.Metadata["trace_mode"] = mode
			if args.TargetDescription != "" {
				env.Metadata["target_description"] = args.TargetDescription
			}
			return env, nil
		})
}
