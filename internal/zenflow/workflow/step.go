package workflow

// Step is one request into the workflow engine's multi-step contract.
type Step struct {
	StepText          string
	StepNumber        int
	TotalSteps        int
	NextStepRequired  bool
	Findings          string
	FilesChecked      []string
	RelevantFiles     []string
	RelevantContext   []string
	IssuesFound       []Issue
	Confidence        string
	Hypothesis        string
	BacktrackFromStep int // 0 means "not set"
	Images            []string
	ContinuationID    string
	// SkipAssistantModel is the negation of the request's use_assistant_model
	// flag. Zero value (false) is "use the assistant model", matching the
	// request-level default of use_assistant_model=true.
	SkipAssistantModel bool
	ModelName          string
}

// State is the per-thread workflow state machine position.
type State string

const (
	StateInit                   State = "init"
	StateInvestigating          State = "investigating"
	StatePausedForInvestigation State = "paused_for_investigation"
	StateExpertPending          State = "expert_pending"
	StateComplete               State = "complete"
)

// CompletionGate lets a tool override the engine's default
// next_step_required/should_call_expert decision with a counter-driven
// rule (docgen's num_files_documented == total_files_to_document).
type CompletionGate func(findings *Findings, step Step) (forceContinue bool, reason string)

// ExpertGate decides whether a finishing step should dispatch to the
// expert model, given the tool's skip-confidence setting (false means the
// tool never skips on confidence alone, e.g. analyze).
type ExpertGate struct {
	SkipOnCertainConfidence bool
}

// ShouldCallExpert implements spec section 4.11's expert-analysis
// short-circuit: debug/codereview/secaudit/refactor/testgen/precommit/
// tracer skip the expert call when confidence has reached "certain" and
// the step isn't asking to continue; an explicit use_assistant_model=false
// always skips regardless of confidence.
func (g ExpertGate) ShouldCallExpert(step Step) (call bool, skipReason string) {
	if step.SkipAssistantModel {
		return false, "use_assistant_model_false"
	}
	if g.SkipOnCertainConfidence && step.Confidence == "certain" {
		return false, "skipped_due_to_certain_confidence"
	}
	return true, ""
}
