// Package tools implements the fourteen concrete tool surfaces (chat,
// deep-think, code review, debug, refactor, security audit, consensus,
// planner, tracer, docgen, analyze, pre-commit, test-gen, challenge),
// wiring each one's typed argument struct against the shared simpletool,
// workflow, and consensus runners. Prompt text lives in prompts.go as
// data; this file and the per-tool files hold only wiring logic.
package tools

import (
	"fmt"
	"strings"

	"github.com/zenflow/zenflow-mcp/internal/zenflow/consensus"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/convo"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/models"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/registry"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/server"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/toolbase"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/workflow"
)

// CommonArgs is embedded into every tool's argument struct. Field names
// and jsonschema tags mirror toolbase.CommonFields() (C9), so the two
// stay in lockstep even though mcp-golang reflects directly off this
// struct rather than off toolbase.Schema at registration time.
type CommonArgs struct {
	Model          string   `json:"model,omitempty" jsonschema:"description=Model name\\, or \"auto\" to let the server choose."`
	Temperature    float64  `json:"temperature,omitempty" jsonschema:"description=Sampling temperature."`
	ThinkingMode   string   `json:"thinking_mode,omitempty" jsonschema:"description=Thinking-budget level.,enum=minimal,enum=low,enum=medium,enum=high,enum=max"`
	UseWebsearch   bool     `json:"use_websearch,omitempty" jsonschema:"description=Whether the model should be instructed to consider web search."`
	ContinuationID string   `json:"continuation_id,omitempty" jsonschema:"description=UUID of a prior thread to continue."`
	Images         []string `json:"images,omitempty" jsonschema:"description=Absolute paths or data URLs of images to attach."`
	Files          []string `json:"files,omitempty" jsonschema:"description=Absolute paths of files to attach."`
}

// hasTemperature reports whether the caller set a non-zero temperature.
// mcp-golang's typed args have no separate "was this field set" bit, so
// (matching the teacher's own JSON-number handling) a bare zero is
// treated as "not set" and the tool falls back to the model's default.
func (a CommonArgs) hasTemperature() bool { return a.Temperature != 0 }

// IssueArg is the wire shape of one workflow step's issues_found entry.
type IssueArg struct {
	Severity    string `json:"severity" jsonschema:"required,description=How serious the issue is (e.g. critical\\, high\\, medium\\, low)."`
	Description string `json:"description" jsonschema:"required,description=What the issue is."`
}

// WorkflowArgs is embedded into every workflow tool's argument struct,
// mirroring the multi-step request contract of spec section 4.11.
type WorkflowArgs struct {
	Step              string     `json:"step" jsonschema:"required,description=What this step investigated or concluded."`
	StepNumber        int        `json:"step_number" jsonschema:"required,description=1-based index of this step."`
	TotalSteps        int        `json:"total_steps" jsonschema:"required,description=Current estimate of how many steps this investigation will take."`
	NextStepRequired  bool       `json:"next_step_required" jsonschema:"required,description=Whether another step must follow before this investigation is complete."`
	Findings          string     `json:"findings,omitempty" jsonschema:"description=What this step discovered."`
	FilesChecked      []string   `json:"files_checked,omitempty" jsonschema:"description=Absolute paths examined so far."`
	RelevantFiles     []string   `json:"relevant_files,omitempty" jsonschema:"description=Absolute paths judged relevant to the investigation."`
	RelevantContext   []string   `json:"relevant_context,omitempty" jsonschema:"description=Symbols\\, functions\\, or identifiers judged relevant."`
	IssuesFound       []IssueArg `json:"issues_found,omitempty" jsonschema:"description=Concrete problems surfaced so far."`
	Confidence        string     `json:"confidence,omitempty" jsonschema:"description=Current confidence level.,enum=exploring,enum=low,enum=medium,enum=high,enum=certain"`
	Hypothesis        string     `json:"hypothesis,omitempty" jsonschema:"description=Current working theory."`
	BacktrackFromStep int        `json:"backtrack_from_step,omitempty" jsonschema:"description=Re-investigate from this step number\\, discarding later findings."`
	UseAssistantModel *bool      `json:"use_assistant_model,omitempty" jsonschema:"description=Set false to skip the expert-analysis provider call entirely."`
	CommonArgs
}

// validatePaths enforces the absolute-path contract (spec section 6) on
// every file-carrying field a workflow step can set, before the step ever
// reaches the engine. Matches the hard validation simpletool.Run and
// consensus.buildBasePrompt already apply to their own Files/Images.
func (a WorkflowArgs) validatePaths() error {
	if err := toolbase.ValidateAbsolutePaths(a.FilesChecked); err != nil {
		return err
	}
	if err := toolbase.ValidateAbsolutePaths(a.RelevantFiles); err != nil {
		return err
	}
	if err := toolbase.ValidateAbsolutePaths(a.Files); err != nil {
		return err
	}
	return toolbase.ValidateImagePaths(a.Images)
}

// toStep converts the wire args into the workflow engine's Step type.
func (a WorkflowArgs) toStep() workflow.Step {
	issues := make([]workflow.Issue, 0, len(a.IssuesFound))
	for _, i := range a.IssuesFound {
		issues = append(issues, workflow.Issue{Severity: i.Severity, Description: i.Description})
	}
	skip := false
	if a.UseAssistantModel != nil {
		skip = !*a.UseAssistantModel
	}
	return workflow.Step{
		StepText:           a.Step,
		StepNumber:         a.StepNumber,
		TotalSteps:         a.TotalSteps,
		NextStepRequired:   a.NextStepRequired,
		Findings:           a.Findings,
		FilesChecked:       a.FilesChecked,
		RelevantFiles:      a.RelevantFiles,
		RelevantContext:    a.RelevantContext,
		IssuesFound:        issues,
		Confidence:         a.Confidence,
		Hypothesis:         a.Hypothesis,
		BacktrackFromStep:  a.BacktrackFromStep,
		Images:             a.Images,
		ContinuationID:     a.ContinuationID,
		SkipAssistantModel: skip,
		ModelName:          a.Model,
	}
}

// Deps bundles the shared infrastructure every tool registers against.
type Deps struct {
	Registry *registry.Registry
	Store    *convo.Store
	Engine   *workflow.Engine
	Locale   string
}

// buildSystemPrompt appends the locale instruction to base, matching the
// teacher's own env-driven prompt augmentation (LOCALE environment
// variable, spec section 6).
func buildSystemPrompt(base, locale string) string {
	if locale == "" {
		return base
	}
	return fmt.Sprintf("%s\n\nAlways answer in %s.", base, locale)
}

func thinkingMode(raw string) models.ThinkingMode {
	return models.ThinkingMode(strings.ToLower(strings.TrimSpace(raw)))
}

// toolError converts an error from a runner into the Envelope the MCP
// host should see, special-casing toolbase's requires_file_prompt signal
// since it isn't a generic failure.
func toolError(err error) (server.Envelope, error) {
	if toolbase.RequiresFilePrompt(err) {
		return server.RequiresFilePrompt(err.Error()), nil
	}
	return server.Envelope{}, err
}

// workflowEnvelope converts a workflow.Result into the uniform Envelope,
// applying statusMap to rename the engine's generic status names into
// the tool-specific ones spec section 4.11 step 6 calls for (e.g.
// "skipped_due_to_certain_confidence" -> "certain_confidence_proceed_with_fix").
func workflowEnvelope(res workflow.Result, statusMap map[string]string) server.Envelope {
	status := res.Status
	if mapped, ok := statusMap[status]; ok {
		status = mapped
	}
	next := res.NextStepRequired
	env := server.Envelope{
		Status:           status,
		ContentType:      "json",
		ContinuationID:   res.ContinuationID,
		StepNumber:       res.StepNumber,
		TotalSteps:       res.TotalSteps,
		NextStepRequired: &next,
		RequiredActions:  res.RequiredActions,
		NextSteps:        res.NextSteps,
		ExpertAnalysis:   res.ExpertAnalysis,
		Complete:         res.Complete,
	}
	if len(res.Warnings) > 0 {
		env.Metadata = map[string]interface{}{"warnings": res.Warnings}
	}
	if res.ExpertAnalysis == "" && (res.Status == "skipped_due_to_certain_confidence" || res.Status == "expert_analysis_skipped") {
		if env.Metadata == nil {
			env.Metadata = map[string]interface{}{}
		}
		env.Metadata["expert_analysis"] = map[string]interface{}{"status": res.Status}
	}
	switch {
	case res.ExpertAnalysis != "":
		env.Content = res.ExpertAnalysis
	case res.NextSteps != "":
		env.Content = res.NextSteps
	default:
		env.Content = status
	}
	return env
}

// setMeta assigns key in env.Metadata, allocating the map on first use.
func setMeta(env *server.Envelope, key string, value interface{}) {
	if env.Metadata == nil {
		env.Metadata = map[string]interface{}{}
	}
	env.Metadata[key] = value
}

// consensusEnvelope converts a consensus.Response into the uniform
// Envelope.
func consensusEnvelope(resp consensus.Response) server.Envelope {
	var sb strings.Builder
	for _, r := range resp.Responses {
		fmt.Fprintf(&sb, "--- %s (%s) ---\n", r.ModelName, r.Stance)
		if r.Err != nil {
			fmt.Fprintf(&sb, "error: %s\n\n", r.Err.Error())
			continue
		}
		fmt.Fprintf(&sb, "%s\n\n", r.Content)
	}
	return server.Envelope{
		Status:        resp.Status,
		Content:       sb.String(),
		ContentType:   "text",
		NextSteps:     resp.NextSteps,
		ModelsUsed:    resp.ModelsUsed,
		ModelsSkipped: resp.ModelsSkipped,
		ModelsErrored: resp.ModelsErrored,
	}
}
