package tools

import (
	"context"

	"github.com/zenflow/zenflow-mcp/internal/zenflow/models"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/server"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/workflow"
)

// DebugArgs is the debug tool's input.
type DebugArgs struct {
	WorkflowArgs
}

var debugStatusMap = map[string]string{
	"investigation_in_progress":         "pause_for_debug",
	"skipped_due_to_certain_confidence": "certain_confidence_proceed_with_fix",
	"calling_expert_analysis":           "debug_complete",
}

// RegisterDebug installs the debug tool: a multi-step root-cause
// investigation that skips expert validation once confidence reaches
// "certain" (scenario S4).
func RegisterDebug(s *server.Server, deps Deps) error {
	spec := workflow.Spec{
		ToolName:          "debug",
		Category:          models.ExtendedReasoning,
		ExpertGate:        workflow.ExpertGate{SkipOnCertainConfidence: true},
		ExpertInstruction: buildSystemPrompt(debugExpertInstruction, deps.Locale),
		PausedStatus:      "pause_for_debug",
		CompleteStatusKey: "complete_investigation",
		RequiredActionsFor: func(f *workflow.Findings, step workflow.Step) []string {
			if !step.NextStepRequired {
				return nil
			}
			return []string{
				"Trace the failure to its root cause before the next step, not just its symptom.",
				"Check whether the hypothesis from this step is falsifiable and try to falsify it.",
			}
		},
	}
	return server.Register(s, "debug", "Multi-step root-cause debugging investigation with optional expert validation.",
		func(ctx context.Context, args DebugArgs) (server.Envelope, error) {
			if err := args.validatePaths(); err != nil {
				return toolError(err)
			}
			res, err := deps.Engine.Step(ctx, spec, args.toStep())
			if err != nil {
				return toolError(err)
			}
			return workflowEnvelope(res, debugStatusMap), nil
		})
}
