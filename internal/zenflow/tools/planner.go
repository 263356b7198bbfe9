package tools

import (
	"context"

	"github.com/zenflow/zenflow-mcp/internal/zenflow/models"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/server"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/workflow"
)

// PlannerArgs is the planner tool's input: a pure workflow-args tool with
// no tool-specific fields beyond the shared step contract.
type PlannerArgs struct {
	WorkflowArgs
}

var plannerStatusMap = map[string]string{
	"skipped_due_to_certain_confidence": "planning_success",
	"expert_analysis_skipped":           "planning_success",
}

// RegisterPlanner installs the planner tool. Planner never resolves a
// model or calls a provider (spec section 4.5's requires_model()==false
// carve-out, confirmed by scenario S6): the calling agent does the actual
// planning reasoning itself, and the engine only tracks step structure.
func RegisterPlanner(s *server.Server, deps Deps) error {
	spec := workflow.Spec{
		ToolName:          "planner",
		Category:          models.FastResponse,
		ExpertGate:        workflow.ExpertGate{}, // zero value; the step below sets SkipAssistantModel, so the gate always skips
		PausedStatus:      "planning_in_progress",
		CompleteStatusKey: "complete_plan",
		RequiredActionsFor: func(f *workflow.Findings, step workflow.Step) []string {
			if step.NextStepRequired {
				return []string{"Break the remaining work into the next concrete step and submit it."}
			}
			return nil
		},
	}
	return server.Register(s, "planner", "Breaks a task into an ordered sequence of steps without calling a model.",
		func(ctx context.Context, args PlannerArgs) (server.Envelope, error) {
			if err := args.validatePaths(); err != nil {
				return toolError(err)
			}
			step := args.toStep()
			step.SkipAssistantModel = true // planner never dispatches an expert call
			res, err := deps.Engine.Step(ctx, spec, step)
			if err != nil {
				return toolError(err)
			}
			return workflowEnvelope(res, plannerStatusMap), nil
		})
}
