package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zenflow/zenflow-mcp/internal/zenflow/budget"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/convo"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/models"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/providers"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/registry"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/zerr"
)

// Spec is a tool's customization of the generic engine: the status names
// it reports at each stage, its expert-skip posture, its completion gate,
// and the prompt instruction handed to the expert model.
type Spec struct {
	ToolName           string
	Category           models.ToolCategory
	ExpertGate         ExpertGate
	CompletionGate     CompletionGate // nil means "no counter-driven override"
	ExpertInstruction  string
	PausedStatus       string // e.g. "pause_for_code_review"
	RequiredActionsFor func(findings *Findings, step Step) []string
	CompleteStatusKey  string // e.g. "complete_code_review"
}

// Result is the structured response the engine hands back to the MCP
// layer for one step.
type Result struct {
	Status           string
	StepNumber       int
	TotalSteps       int
	NextStepRequired bool
	ContinuationID   string
	RequiredActions  []string
	NextSteps        string
	ExpertAnalysis   string
	Complete         map[string]interface{}
	Warnings         []string
}

// threadState is the engine's bookkeeping attached to a thread via its
// InitialContext, keyed so multiple workflow tools can share a store. Its
// own mutex serializes concurrent Step calls against the same
// continuation_id, separately from Engine.mu which only guards the
// states map itself.
type threadState struct {
	mu         sync.Mutex
	findings   *Findings
	totalSteps int
	steps      []Step // every step applied so far, for backtrack replay
}

// Engine drives one tool's workflow state machine across steps, backed
// by the shared conversation store for persistence and thread chaining.
// One Engine is shared across every workflow tool registration (spec
// section 5's concurrent-invocation requirement), so states is guarded
// by mu the same way registry.Registry guards its provider maps.
type Engine struct {
	Store    *convo.Store
	Registry *registry.Registry

	mu     sync.Mutex
	states map[string]*threadState
}

// NewEngine constructs an Engine bound to the shared store and registry.
func NewEngine(store *convo.Store, reg *registry.Registry) *Engine {
	return &Engine{Store: store, Registry: reg, states: map[string]*threadState{}}
}

// stateFor returns (creating if absent) the bookkeeping for threadID,
// guarding the shared map against concurrent Step calls on different
// continuation_ids.
func (e *Engine) stateFor(threadID string, totalSteps int) *threadState {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, ok := e.states[threadID]
	if !ok {
		st = &threadState{findings: NewFindings(), totalSteps: totalSteps}
		e.states[threadID] = st
	}
	return st
}

// Step advances spec's workflow by one step, returning the structured
// response the calling tool should forward to the MCP host.
func (e *Engine) Step(ctx context.Context, spec Spec, step Step) (Result, error) {
	threadID := step.ContinuationID
	var th *convo.Thread
	if threadID == "" {
		threadID = e.Store.CreateThread(spec.ToolName, nil, "")
		th = e.Store.GetThread(threadID)
	} else {
		th = e.Store.GetThread(threadID)
		if th == nil {
			return Result{}, zerr.ThreadExpired(threadID)
		}
	}
	state := e.stateFor(threadID, step.TotalSteps)
	state.mu.Lock()
	defer state.mu.Unlock()

	if step.BacktrackFromStep > 0 {
		th.TruncateAfter(step.BacktrackFromStep)
		kept := state.steps[:0:0]
		for _, s := range state.steps {
			if s.StepNumber < step.BacktrackFromStep {
				kept = append(kept, s)
			}
		}
		state.steps = kept
		state.findings = NewFindings()
		for _, s := range state.steps {
			state.findings.Merge(s)
		}
	}

	if step.StepNumber > state.totalSteps {
		state.totalSteps = step.StepNumber
	}
	if step.TotalSteps > state.totalSteps {
		state.totalSteps = step.TotalSteps
	}

	state.findings.Merge(step)
	state.steps = append(state.steps, step)

	requiredActions := []string{}
	if spec.RequiredActionsFor != nil {
		requiredActions = spec.RequiredActionsFor(state.findings, step)
	}

	forceContinue := false
	forceReason := ""
	if spec.CompletionGate != nil {
		forceContinue, forceReason = spec.CompletionGate(state.findings, step)
	}

	nextRequired := step.NextStepRequired || forceContinue

	result := Result{
		StepNumber:       step.StepNumber,
		TotalSteps:       state.totalSteps,
		NextStepRequired: nextRequired,
		ContinuationID:   threadID,
		RequiredActions:  requiredActions,
	}

	if nextRequired {
		if forceContinue {
			result.Status = "forced_continuation"
			result.NextSteps = fmt.Sprintf("Completion criteria not yet met (%s); call again with next_step_required=true and address the outstanding work before finishing.", forceReason)
		} else {
			result.Status = spec.PausedStatus
			if result.Status == "" {
				result.Status = "investigation_in_progress"
			}
			result.NextSteps = "Do not call this tool again until you have performed the investigation work this step asked for; then submit the next step with your actual findings."
		}
		e.appendTurn(threadID, spec, step, result.Status)
		return result, nil
	}

	call, skipReason := spec.ExpertGate.ShouldCallExpert(step)
	if !call {
		result.Status = "skipped_due_to_certain_confidence"
		if skipReason == "use_assistant_model_false" {
			result.Status = "expert_analysis_skipped"
		}
		result.Complete = e.completionPacket(spec, state.findings, "")
		e.appendTurn(threadID, spec, step, result.Status)
		return result, nil
	}

	provider, kind, ok := e.Registry.GetProviderForModel(step.ModelName)
	if !ok {
		fallback, fbOk := e.Registry.PreferredFallback(spec.Category)
		if !fbOk {
			return Result{}, zerr.New(zerr.CodeModelUnavailable, "no expert model available for this workflow", nil)
		}
		provider, kind, ok = e.Registry.GetProviderForModel(fallback)
		if !ok {
			return Result{}, zerr.New(zerr.CodeModelUnavailable, "no expert model available for this workflow", nil)
		}
	}
	cap, _ := provider.Capabilities(step.ModelName)

	if err := e.Registry.Wait(ctx, kind); err != nil {
		return Result{}, err
	}

	contextBlock := e.buildExpertContext(th, cap, state.findings, spec)
	start := time.Now()
	resp, genErr := provider.Generate(ctx, providers.GenerationRequest{
		Prompt:          contextBlock,
		ModelName:       step.ModelName,
		SystemPrompt:    spec.ExpertInstruction,
		MaxOutputTokens: cap.MaxOutputTokens,
	})
	e.Registry.RecordCall(kind, time.Since(start), genErr)
	if genErr != nil {
		return Result{}, genErr
	}

	result.Status = "calling_expert_analysis"
	result.ExpertAnalysis = resp.Content
	result.Complete = e.completionPacket(spec, state.findings, resp.Content)
	e.appendTurn(threadID, spec, step, "complete")
	return result, nil
}

func (e *Engine) completionPacket(spec Spec, f *Findings, expertAnalysis string) map[string]interface{} {
	key := spec.CompleteStatusKey
	if key == "" {
		key = "complete_" + spec.ToolName
	}
	packet := map[string]interface{}{
		key:               true,
		"findings_summary": f.Findings,
		"relevant_files":    sortedKeys(f.RelevantFiles),
		"issues_found":      f.Issues,
		"confidence":        f.Confidence,
	}
	if expertAnalysis != "" {
		packet["expert_analysis"] = expertAnalysis
	}
	return packet
}

func (e *Engine) appendTurn(threadID string, spec Spec, step Step, status string) {
	e.Store.AddStepTurn(threadID, "assistant", fmt.Sprintf("[%s step %d] %s", spec.ToolName, step.StepNumber, status),
		step.RelevantFiles, step.Images, spec.ToolName, "", step.ModelName, map[string]interface{}{"status": status}, step.StepNumber)
}

func (e *Engine) buildExpertContext(th *convo.Thread, cap models.Capability, f *Findings, spec Spec) string {
	summary := fmt.Sprintf("Investigation summary for %s:\n", spec.ToolName)
	for _, line := range f.Findings {
		summary += "- " + line + "\n"
	}
	for _, h := range f.Hypotheses {
		summary += fmt.Sprintf("Hypothesis at step %d (%s): %s\n", h.Step, h.Confidence, h.Text)
	}

	files := sortedKeys(f.RelevantFiles)
	fileBlock, err := budget.PrepareFileContent(files, e.Store, th, cap, 0, "relevant files")
	if err != nil {
		return summary
	}
	return summary + "\n" + fileBlock.Text
}
