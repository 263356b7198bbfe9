package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenflow/zenflow-mcp/internal/zenflow/consensus"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/convo"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/models"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/providers"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/registry"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/workflow"
)

func TestWorkflowArgsToStepConvertsUseAssistantModel(t *testing.T) {
	no := false
	args := WorkflowArgs{
		Step: "looked at logs", StepNumber: 1, TotalSteps: 2, NextStepRequired: true,
		IssuesFound:       []IssueArg{{Severity: "high", Description: "nil deref"}},
		UseAssistantModel: &no,
	}
	step := args.toStep()
	assert.True(t, step.SkipAssistantModel)
	require.Len(t, step.IssuesFound, 1)
	assert.Equal(t, "high", step.IssuesFound[0].Severity)
}

func TestWorkflowArgsToStepDefaultsToUsingAssistantModel(t *testing.T) {
	args := WorkflowArgs{Step: "s", StepNumber: 1, TotalSteps: 1, NextStepRequired: false}
	step := args.toStep()
	assert.False(t, step.SkipAssistantModel)
}

func TestWorkflowEnvelopeAppliesStatusMap(t *testing.T) {
	next := false
	res := workflow.Result{Status: "skipped_due_to_certain_confidence", NextStepRequired: next, Complete: map[string]interface{}{"confidence": "certain"}}
	env := workflowEnvelope(res, debugStatusMap)
	assert.Equal(t, "certain_confidence_proceed_with_fix", env.Status)
	require.NotNil(t, env.Metadata)
	detail, ok := env.Metadata["expert_analysis"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "skipped_due_to_certain_confidence", detail["status"])
}

func TestWorkflowEnvelopePassesThroughUnmappedStatus(t *testing.T) {
	res := workflow.Result{Status: "some_unmapped_status"}
	env := workflowEnvelope(res, debugStatusMap)
	assert.Equal(t, "some_unmapped_status", env.Status)
}

func TestConsensusEnvelopeFormatsEachParticipant(t *testing.T) {
	resp := consensus.Response{
		Status:     "consensus_success",
		ModelsUsed: []string{"model-a"},
		Responses: []consensus.ParticipantResult{
			{ModelName: "model-a", Stance: consensus.StanceFor, Content: "looks solid"},
		},
	}
	env := consensusEnvelope(resp)
	assert.Equal(t, "consensus_success", env.Status)
	assert.Contains(t, env.Content, "model-a")
	assert.Contains(t, env.Content, "looks solid")
}

func TestBuildDocgenSpecForcesContinuationUntilCounterMatches(t *testing.T) {
	store := convo.New(convo.DefaultConfig())
	catalog := models.NewCatalog()
	reg := registry.New(catalog)
	engine := workflow.NewEngine(store, reg)

	spec := buildDocgenSpec("", 1, 3)
	res, err := engine.Step(context.Background(), spec, workflow.Step{
		StepNumber: 1, TotalSteps: 1, NextStepRequired: false,
	})
	require.NoError(t, err)
	assert.Equal(t, "forced_continuation", res.Status)
	assert.True(t, res.NextStepRequired)
}

func TestBuildDocgenSpecAllowsCompletionWhenCounterMatches(t *testing.T) {
	store := convo.New(convo.DefaultConfig())
	catalog := models.NewCatalog()
	cap := models.Capability{Name: "doc-model", ProviderKind: models.Google, Category: models.Balanced, ContextWindowTokens: 50000, MaxOutputTokens: 2000}
	catalog.Register(cap)
	reg := registry.New(catalog)
	reg.Register(models.Google, &fakeDocModel{cap: cap})
	engine := workflow.NewEngine(store, reg)

	spec := buildDocgenSpec("", 3, 3)
	res, err := engine.Step(context.Background(), spec, workflow.Step{
		StepNumber: 1, TotalSteps: 1, NextStepRequired: false, ModelName: "doc-model",
	})
	require.NoError(t, err)
	assert.NotEqual(t, "forced_continuation", res.Status)
}

type fakeDocModel struct {
	cap models.Capability
}

func (f *fakeDocModel) Kind() models.ProviderKind      { return models.Google }
func (f *fakeDocModel) ValidateModel(name string) bool { return name == f.cap.Name }
func (f *fakeDocModel) CountTokens(name, text string) int { return len(text) / 4 }
func (f *fakeDocModel) Capabilities(name string) (models.Capability, bool) {
	return f.cap, true
}
func (f *fakeDocModel) Generate(ctx context.Context, req providers.GenerationRequest) (providers.ModelResponse, error) {
	return providers.ModelResponse{Content: "draft docs"}, nil
}
