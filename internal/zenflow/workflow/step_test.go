package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldCallExpertSkipsOnUseAssistantModelFalse(t *testing.T) {
	gate := ExpertGate{}
	call, reason := gate.ShouldCallExpert(Step{SkipAssistantModel: true})
	assert.False(t, call)
	assert.Equal(t, "use_assistant_model_false", reason)
}

func TestShouldCallExpertHonorsSkipOnCertainConfidence(t *testing.T) {
	gate := ExpertGate{SkipOnCertainConfidence: true}
	call, reason := gate.ShouldCallExpert(Step{Confidence: "certain"})
	assert.False(t, call)
	assert.Equal(t, "skipped_due_to_certain_confidence", reason)
}

func TestShouldCallExpertCallsWhenConfidenceBelowCertain(t *testing.T) {
	gate := ExpertGate{SkipOnCertainConfidence: true}
	call, reason := gate.ShouldCallExpert(Step{Confidence: "high"})
	assert.True(t, call)
	assert.Empty(t, reason)
}

func TestShouldCallExpertIgnoresCertainConfidenceWhenGateDisabled(t *testing.T) {
	gate := ExpertGate{SkipOnCertainConfidence: false}
	call, _ := gate.ShouldCallExpert(Step{Confidence: "certain"})
	assert.True(t, call, "analyze must always call the expert regardless of confidence")
}
