package tools

import (
	"context"

	"github.com/zenflow/zenflow-mcp/internal/zenflow/models"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/server"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/workflow"
)

// PrecommitArgs is the pre-commit tool's input.
type PrecommitArgs struct {
	CommitMessage string `json:"commit_message,omitempty" jsonschema:"description=Draft commit message\\, if one exists yet."`
	WorkflowArgs
}

var precommitStatusMap = map[string]string{
	"investigation_in_progress":         "pause_for_precommit",
	"skipped_due_to_certain_confidence": "certain_confidence_precommit_complete",
	"calling_expert_analysis":           "precommit_complete",
}

// RegisterPrecommit installs the pre-commit tool.
func RegisterPrecommit(s *server.Server, deps Deps) error {
	spec := workflow.Spec{
		ToolName:          "precommit",
		Category:          models.Balanced,
		ExpertGate:        workflow.ExpertGate{SkipOnCertainConfidence: true},
		ExpertInstruction: buildSystemPrompt(precommitExpertInstruction, deps.Locale),
		PausedStatus:      "pause_for_precommit",
		CompleteStatusKey: "complete_precommit",
		RequiredActionsFor: func(f *workflow.Findings, step workflow.Step) []string {
			if !step.NextStepRequired {
				return nil
			}
			return []string{"Check the staged diff against the stated intent before the next step; flag scope creep."}
		},
	}
	return server.Register(s, "precommit", "Multi-step pre-commit review validating a pending change before it lands.",
		func(ctx context.Context, args PrecommitArgs) (server.Envelope, error) {
			if err := args.validatePaths(); err != nil {
				return toolError(err)
			}
			res, err := deps.Engine.Step(ctx, spec, args.toStep())
			if err != nil {
				return toolError(err)
			}
			env := workflowEnvelope(res, precommitStatusMap)
			if args.CommitMessage != "" {
				if env.Metadata == nil {
					env.Metadata = map[string]interface{}{}
				}
				env.Metadata["commit_message"] = args.CommitMessage
			}
			return env, nil
		})
}
