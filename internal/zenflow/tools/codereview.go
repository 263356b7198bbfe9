package tools

import (
	"context"

	"github.com/zenflow/zenflow-mcp/internal/zenflow/models"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/server"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/workflow"
)

// CodeReviewArgs is the code review tool's input.
type CodeReviewArgs struct {
	ReviewType string `json:"review_type,omitempty" jsonschema:"description=Scope of review.,enum=full,enum=security,enum=performance,enum=quick"`
	WorkflowArgs
}

var codeReviewStatusMap = map[string]string{
	"investigation_in_progress":         "pause_for_code_review",
	"skipped_due_to_certain_confidence": "certain_confidence_code_review_complete",
	"calling_expert_analysis":           "code_review_complete",
}

// RegisterCodeReview installs the code review tool.
func RegisterCodeReview(s *server.Server, deps Deps) error {
	spec := workflow.Spec{
		ToolName:          "codereview",
		Category:          models.Balanced,
		ExpertGate:        workflow.ExpertGate{SkipOnCertainConfidence: true},
		ExpertInstruction: buildSystemPrompt(codeReviewExpertInstruction, deps.Locale),
		PausedStatus:      "pause_for_code_review",
		CompleteStatusKey: "complete_code_review",
		RequiredActionsFor: func(f *workflow.Findings, step workflow.Step) []string {
			if !step.NextStepRequired {
				return nil
			}
			return []string{
				"Read the files named in relevant_files before the next step; don't review from memory.",
				"Classify every issue found by severity before submitting the next step.",
			}
		},
	}
	return server.Register(s, "codereview", "Multi-step code review with severity-classified findings and optional expert validation.",
		func(ctx context.Context, args CodeReviewArgs) (server.Envelope, error) {
			if err := args.validatePaths(); err != nil {
				return toolError(err)
			}
			res, err := deps.Engine.Step(ctx, spec, args.toStep())
			if err != nil {
				return toolError(err)
			}
			env := workflowEnvelope(res, codeReviewStatusMap)
			if args.ReviewType != "" {
				if env.Metadata == nil {
					env.Metadata = map[string]interface{}{}
				}
				env.Metadata["review_type"] = args.ReviewType
			}
			return env, nil
		})
}
