package tools

import (
	"context"

	"github.com/zenflow/zenflow-mcp/internal/zenflow/models"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/server"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/toolbase"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/workflow"
)

// RefactorArgs is the refactor tool's input.
type RefactorArgs struct {
	RefactorType       string   `json:"refactor_type,omitempty" jsonschema:"description=Kind of refactor being planned.,enum=decompose,enum=extract,enum=rename,enum=modernize"`
	FocusAreas         []string `json:"focus_areas,omitempty" jsonschema:"description=Specific areas to focus on (e.g. performance\\, readability\\, maintainability\\, security)."`
	StyleGuideExamples []string `json:"style_guide_examples,omitempty" jsonschema:"description=Absolute paths of existing files to use as style/pattern reference."`
	WorkflowArgs
}

var refactorStatusMap = map[string]string{
	"investigation_in_progress":         "pause_for_refactor_analysis",
	"skipped_due_to_certain_confidence": "certain_confidence_refactor_plan_complete",
	"calling_expert_analysis":           "refactor_plan_complete",
}

// RegisterRefactor installs the refactor tool.
func RegisterRefactor(s *server.Server, deps Deps) error {
	spec := workflow.Spec{
		ToolName:          "refactor",
		Category:          models.Balanced,
		ExpertGate:        workflow.ExpertGate{SkipOnCertainConfidence: true},
		ExpertInstruction: buildSystemPrompt(refactorExpertInstruction, deps.Locale),
		PausedStatus:      "pause_for_refactor_analysis",
		CompleteStatusKey: "complete_refactor_plan",
		RequiredActionsFor: func(f *workflow.Findings, step workflow.Step) []string {
			if !step.NextStepRequired {
				return nil
			}
			return []string{"Identify every call site the planned change touches before the next step."}
		},
	}
	return server.Register(s, "refactor", "Multi-step refactoring analysis producing a validated change plan.",
		func(ctx context.Context, args RefactorArgs) (server.Envelope, error) {
			if err := args.validatePaths(); err != nil {
				return toolError(err)
			}
			if err := toolbase.ValidateAbsolutePaths(args.StyleGuideExamples); err != nil {
				return toolError(err)
			}
			res, err := deps.Engine.Step(ctx, spec, args.toStep())
			if err != nil {
				return toolError(err)
			}
			env := workflowEnvelope(res, refactorStatusMap)
			if args.RefactorType != "" {
				setMeta(&env, "refactor_type", args.RefactorType)
			}
			if len(args.FocusAreas) > 0 {
				setMeta(&env, "focus_areas", args.FocusAreas)
			}
			if len(args.StyleGuideExamples) > 0 {
				setMeta(&env, "style_guide_examples", args.StyleGuideExamples)
			}
			return env, nil
		})
}
