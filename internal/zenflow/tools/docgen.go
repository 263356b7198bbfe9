package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/zenflow/zenflow-mcp/internal/zenflow/models"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/server"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/workflow"
)

// boolFieldDefaultTrue lets the docgen tool distinguish "caller omitted
// this field" (nil, falls back to true) from an explicit false, since a
// bare Go bool can't represent "not set" the way the wire schema's
// optional boolean can.
type boolFieldDefaultTrue = *bool

// DocgenArgs is the docgen tool's input, adding the counter pair the
// engine's counter-driven completion gate checks (spec section 4.11) and
// the toggles controlling what the generated documentation covers.
type DocgenArgs struct {
	NumFilesDocumented      int                  `json:"num_files_documented,omitempty" jsonschema:"description=How many files have been documented so far."`
	TotalFilesToDocument    int                  `json:"total_files_to_document,omitempty" jsonschema:"description=Total files this documentation pass must cover."`
	DocumentComplexity      boolFieldDefaultTrue `json:"document_complexity,omitempty" jsonschema:"description=Include Big-O complexity analysis in function/method docs. Default true."`
	DocumentFlow            boolFieldDefaultTrue `json:"document_flow,omitempty" jsonschema:"description=Document call flow: what this function calls and what calls it. Default true."`
	UpdateExisting          boolFieldDefaultTrue `json:"update_existing,omitempty" jsonschema:"description=Update existing documentation found to be incorrect or incomplete, rather than only adding new docs. Default true."`
	CommentsOnComplexLogic  boolFieldDefaultTrue `json:"comments_on_complex_logic,omitempty" jsonschema:"description=Add inline comments around non-obvious algorithmic steps. Default true."`
	WorkflowArgs
}

// docgenToggle reads a *bool field, defaulting to true when unset.
func docgenToggle(v *bool) bool {
	return v == nil || *v
}

// docgenInstructionFor appends the caller's documentation-scope toggles
// to the base expert instruction, so a caller that turns a toggle off
// (e.g. comments_on_complex_logic=false for a codebase with a
// no-inline-comments style guide) actually changes what the expert model
// is asked to produce.
func docgenInstructionFor(base string, args DocgenArgs) string {
	var disabled []string
	if !docgenToggle(args.DocumentComplexity) {
		disabled = append(disabled, "algorithmic complexity (Big O) analysis")
	}
	if !docgenToggle(args.DocumentFlow) {
		disabled = append(disabled, "call flow / dependency documentation")
	}
	if !docgenToggle(args.UpdateExisting) {
		disabled = append(disabled, "updating existing documentation found to be incorrect")
	}
	if !docgenToggle(args.CommentsOnComplexLogic) {
		disabled = append(disabled, "inline comments around complex logic")
	}
	if len(disabled) == 0 {
		return base
	}
	return fmt.Sprintf("%s\n\nSkip the following for this run: %s.", base, strings.Join(disabled, "; "))
}

var docgenStatusMap = map[string]string{
	"investigation_in_progress": "pause_for_docgen",
	"forced_continuation":       "docgen_incomplete",
	"calling_expert_analysis":   "docgen_complete",
	"expert_analysis_skipped":   "docgen_complete",
}

// buildDocgenSpec constructs the docgen workflow spec for one call,
// closing over this call's completion counters. Extracted from
// RegisterDocgen so the completion-gate logic can be exercised directly
// in tests without a running server.
func buildDocgenSpec(locale string, documented, total int) workflow.Spec {
	return workflow.Spec{
		ToolName:          "docgen",
		Category:          models.Balanced,
		ExpertGate:        workflow.ExpertGate{SkipOnCertainConfidence: false},
		ExpertInstruction: buildSystemPrompt(docgenExpertInstruction, locale),
		PausedStatus:      "pause_for_docgen",
		CompleteStatusKey: "complete_docgen",
		RequiredActionsFor: func(f *workflow.Findings, step workflow.Step) []string {
			if !step.NextStepRequired {
				return nil
			}
			return []string{"Document the next undocumented file before submitting the next step."}
		},
		CompletionGate: func(f *workflow.Findings, step workflow.Step) (bool, string) {
			if total > 0 && documented < total {
				return true, fmt.Sprintf("%d of %d files documented", documented, total)
			}
			return false, ""
		},
	}
}

// RegisterDocgen installs the docgen tool. It refuses to finish (even
// when the caller sets next_step_required=false) until
// num_files_documented equals total_files_to_document, overriding the
// step with a forced continuation instead.
func RegisterDocgen(s *server.Server, deps Deps) error {
	return server.Register(s, "docgen", "Multi-step documentation generation that tracks file-by-file completion.",
		func(ctx context.Context, args DocgenArgs) (server.Envelope, error) {
			documented, total := args.NumFilesDocumented, args.TotalFilesToDocument
			spec := buildDocgenSpec(deps.Locale, documented, total)
			spec.ExpertInstruction = docgenInstructionFor(spec.ExpertInstruction, args)
			if err := args.validatePaths(); err != nil {
				return toolError(err)
			}
			res, err := deps.Engine.Step(ctx, spec, args.toStep())
			if err != nil {
				return toolError(err)
			}
			env := workflowEnvelope(res, docgenStatusMap)
			setMeta(&env, "num_files_documented", documented)
			setMeta(&env, "total_files_to_document", total)
			return env, nil
		})
}
