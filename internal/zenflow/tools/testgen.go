package tools

import (
	"context"

	"github.com/zenflow/zenflow-mcp/internal/zenflow/models"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/server"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/workflow"
)

// TestgenArgs is the test-gen tool's input.
type TestgenArgs struct {
	TestFramework string `json:"test_framework,omitempty" jsonschema:"description=Test framework the generated tests should target."`
	WorkflowArgs
}

var testgenStatusMap = map[string]string{
	"investigation_in_progress":         "pause_for_test_generation",
	"skipped_due_to_certain_confidence": "certain_confidence_test_plan_complete",
	"calling_expert_analysis":           "test_generation_complete",
}

// RegisterTestgen installs the test-gen tool.
func RegisterTestgen(s *server.Server, deps Deps) error {
	spec := workflow.Spec{
		ToolName:          "testgen",
		Category:          models.Balanced,
		ExpertGate:        workflow.ExpertGate{SkipOnCertainConfidence: true},
		ExpertInstruction: buildSystemPrompt(testgenExpertInstruction, deps.Locale),
		PausedStatus:      "pause_for_test_generation",
		CompleteStatusKey: "complete_test_plan",
		RequiredActionsFor: func(f *workflow.Findings, step workflow.Step) []string {
			if !step.NextStepRequired {
				return nil
			}
			return []string{"Enumerate edge cases and failure modes for the code under test before the next step."}
		},
	}
	return server.Register(s, "testgen", "Multi-step test plan generation covering edge cases and failure modes.",
		func(ctx context.Context, args TestgenArgs) (server.Envelope, error) {
			if err := args.validatePaths(); err != nil {
				return toolError(err)
			}
			res, err := deps.Engine.Step(ctx, spec, args.toStep())
			if err != nil {
				return toolError(err)
			}
			env := workflowEnvelope(res, testgenStatusMap)
			if args.TestFramework != "" {
				if env.Metadata == nil {
					env.Metadata = map[string]interface{}{}
				}
				env.Metadata["test_framework"] = args.TestFramework
			}
			return env, nil
		})
}
