package tools

import (
	"context"

	"github.com/zenflow/zenflow-mcp/internal/zenflow/models"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/server"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/workflow"
)

// AnalyzeArgs is the analyze tool's input.
type AnalyzeArgs struct {
	AnalysisScope string `json:"analysis_scope,omitempty" jsonschema:"description=What to focus the analysis on.,enum=architecture,enum=dependencies,enum=quality,enum=performance"`
	OutputFormat  string `json:"output_format,omitempty" jsonschema:"description=How to shape the final analysis.,enum=summary,enum=detailed,enum=actionable"`
	WorkflowArgs
}

var analyzeStatusMap = map[string]string{
	"investigation_in_progress": "pause_for_analysis",
	"calling_expert_analysis":   "analysis_complete",
	"expert_analysis_skipped":   "analysis_complete",
}

// RegisterAnalyze installs the analyze tool. Unlike debug, code review,
// and security audit, analyze never skips on certain confidence alone
// (spec section 4.11): it always consults the expert model unless the
// caller explicitly opts out with use_assistant_model=false.
func RegisterAnalyze(s *server.Server, deps Deps) error {
	spec := workflow.Spec{
		ToolName:          "analyze",
		Category:          models.Balanced,
		ExpertGate:        workflow.ExpertGate{SkipOnCertainConfidence: false},
		ExpertInstruction: buildSystemPrompt(analyzeExpertInstruction, deps.Locale),
		PausedStatus:      "pause_for_analysis",
		CompleteStatusKey: "complete_analysis",
		RequiredActionsFor: func(f *workflow.Findings, step workflow.Step) []string {
			if !step.NextStepRequired {
				return nil
			}
			return []string{"Map the module boundaries and their dependencies before the next step."}
		},
	}
	return server.Register(s, "analyze", "Multi-step codebase analysis producing an architectural assessment.",
		func(ctx context.Context, args AnalyzeArgs) (server.Envelope, error) {
			if err := args.validatePaths(); err != nil {
				return toolError(err)
			}
			res, err := deps.Engine.Step(ctx, spec, args.toStep())
			if err != nil {
				return toolError(err)
			}
			env := workflowEnvelope(res, analyzeStatusMap)
			if args.AnalysisScope != "" {
				setMeta(&env, "analysis_scope", args.AnalysisScope)
			}
			if args.OutputFormat != "" {
				setMeta(&env, "output_format", args.OutputFormat)
			}
			return env, nil
		})
}
