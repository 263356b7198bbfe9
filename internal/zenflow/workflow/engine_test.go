package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenflow/zenflow-mcp/internal/zenflow/convo"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/models"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/providers"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/registry"
)

type fakeExpert struct {
	cap models.Capability
}

func (f *fakeExpert) Kind() models.ProviderKind          { return models.Google }
func (f *fakeExpert) ValidateModel(name string) bool     { return name == f.cap.Name || name == "" }
func (f *fakeExpert) CountTokens(name, text string) int  { return len(text) / 4 }
func (f *fakeExpert) Capabilities(name string) (models.Capability, bool) {
	return f.cap, true
}
func (f *fakeExpert) Generate(ctx context.Context, req providers.GenerationRequest) (providers.ModelResponse, error) {
	return providers.ModelResponse{Content: "expert verdict"}, nil
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	catalog := models.NewCatalog()
	cap := models.Capability{Name: "expert-model", ProviderKind: models.Google, Category: models.ExtendedReasoning, ContextWindowTokens: 100000, MaxOutputTokens: 4000}
	catalog.Register(cap)
	reg := registry.New(catalog)
	reg.Register(models.Google, &fakeExpert{cap: cap})
	store := convo.New(convo.DefaultConfig())
	return NewEngine(store, reg)
}

func TestEngineFirstStepPausesWhenMoreRequired(t *testing.T) {
	e := newTestEngine(t)
	spec := Spec{ToolName: "debug", Category: models.ExtendedReasoning, PausedStatus: "pause_for_debug"}

	res, err := e.Step(context.Background(), spec, Step{
		StepNumber: 1, TotalSteps: 3, NextStepRequired: true, Findings: "looked at logs",
	})
	require.NoError(t, err)
	assert.Equal(t, "pause_for_debug", res.Status)
	assert.True(t, res.NextStepRequired)
	assert.NotEmpty(t, res.ContinuationID)
	assert.NotEmpty(t, res.NextSteps)
}

func TestEngineFinalStepDispatchesExpert(t *testing.T) {
	e := newTestEngine(t)
	spec := Spec{ToolName: "debug", Category: models.ExtendedReasoning, PausedStatus: "pause_for_debug"}

	first, err := e.Step(context.Background(), spec, Step{
		StepNumber: 1, TotalSteps: 2, NextStepRequired: true, Findings: "step one",
	})
	require.NoError(t, err)

	second, err := e.Step(context.Background(), spec, Step{
		StepNumber: 2, TotalSteps: 2, NextStepRequired: false, Findings: "step two",
		ContinuationID: first.ContinuationID, ModelName: "expert-model",
	})
	require.NoError(t, err)
	assert.Equal(t, "calling_expert_analysis", second.Status)
	assert.Equal(t, "expert verdict", second.ExpertAnalysis)
	assert.NotNil(t, second.Complete)
}

func TestEngineSkipsExpertOnCertainConfidence(t *testing.T) {
	e := newTestEngine(t)
	spec := Spec{
		ToolName: "debug", Category: models.ExtendedReasoning,
		ExpertGate: ExpertGate{SkipOnCertainConfidence: true},
	}

	res, err := e.Step(context.Background(), spec, Step{
		StepNumber: 1, TotalSteps: 1, NextStepRequired: false, Confidence: "certain",
		ModelName: "expert-model",
	})
	require.NoError(t, err)
	assert.Equal(t, "skipped_due_to_certain_confidence", res.Status)
	assert.Empty(t, res.ExpertAnalysis)
}

func TestEngineSkipsExpertOnUseAssistantModelFalse(t *testing.T) {
	e := newTestEngine(t)
	spec := Spec{ToolName: "codereview", Category: models.ExtendedReasoning}

	res, err := e.Step(context.Background(), spec, Step{
		StepNumber: 1, TotalSteps: 1, NextStepRequired: false, SkipAssistantModel: true,
		ModelName: "expert-model",
	})
	require.NoError(t, err)
	assert.Equal(t, "expert_analysis_skipped", res.Status)
}

func TestEngineCompletionGateForcesContinuation(t *testing.T) {
	e := newTestEngine(t)
	gate := func(f *Findings, step Step) (bool, string) {
		return true, "num_files_documented != total_files_to_document"
	}
	spec := Spec{ToolName: "docgen", Category: models.Balanced, CompletionGate: gate}

	res, err := e.Step(context.Background(), spec, Step{
		StepNumber: 1, TotalSteps: 1, NextStepRequired: false,
	})
	require.NoError(t, err)
	assert.Equal(t, "forced_continuation", res.Status)
	assert.True(t, res.NextStepRequired)
}

func TestEngineBacktrackTruncatesAndResetsFindings(t *testing.T) {
	e := newTestEngine(t)
	spec := Spec{ToolName: "debug", Category: models.ExtendedReasoning, PausedStatus: "pause_for_debug"}

	first, err := e.Step(context.Background(), spec, Step{
		StepNumber: 1, TotalSteps: 3, NextStepRequired: true, Findings: "wrong theory", RelevantFiles: []string{"/a.go"},
	})
	require.NoError(t, err)

	_, err = e.Step(context.Background(), spec, Step{
		StepNumber: 2, TotalSteps: 3, NextStepRequired: true, Findings: "dead end",
		ContinuationID: first.ContinuationID,
	})
	require.NoError(t, err)

	backtrack, err := e.Step(context.Background(), spec, Step{
		StepNumber: 2, TotalSteps: 3, NextStepRequired: true, Findings: "better theory",
		ContinuationID: first.ContinuationID, BacktrackFromStep: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, "pause_for_debug", backtrack.Status)

	state := e.states[first.ContinuationID]
	require.NotNil(t, state)
	assert.Contains(t, state.findings.Findings, "better theory")
	assert.NotContains(t, state.findings.Findings, "dead end")
}

func TestEngineStepNumberBumpsTotalSteps(t *testing.T) {
	e := newTestEngine(t)
	spec := Spec{ToolName: "debug", Category: models.ExtendedReasoning, PausedStatus: "pause_for_debug"}

	res, err := e.Step(context.Background(), spec, Step{
		StepNumber: 5, TotalSteps: 3, NextStepRequired: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, res.TotalSteps)
}
