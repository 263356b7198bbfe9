package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenflow/zenflow-mcp/internal/zenflow/convo"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/models"
)

func smallCap() models.Capability {
	return models.Capability{
		Name:                "test-model",
		ContextWindowTokens: 10000,
		MaxOutputTokens:     2000,
	}
}

func TestReservedOutputFlooredAtMinimum(t *testing.T) {
	cap := models.Capability{ContextWindowTokens: 1000, MaxOutputTokens: 100}
	assert.Equal(t, minReservedOutput, ReservedOutput(cap))
}

func TestReservedOutputUsesSmallerOfMaxOutputAndTenPercent(t *testing.T) {
	cap := models.Capability{ContextWindowTokens: 1_000_000, MaxOutputTokens: 5000}
	assert.Equal(t, 5000, ReservedOutput(cap))
}

func TestComputeBudgetSplitsFractions(t *testing.T) {
	cap := smallCap()
	b := ComputeBudget(cap)
	total := cap.ContextWindowTokens - ReservedOutput(cap)
	assert.Equal(t, total, b.Total)
	assert.Equal(t, int(0.6*float64(total)), b.History)
	assert.Equal(t, int(0.3*float64(total)), b.File)
	assert.Equal(t, int(0.1*float64(total)), b.User)
}

func TestBuildRespectsHistoryBudgetMonotonicity(t *testing.T) {
	store := convo.New(convo.DefaultConfig())
	id := store.CreateThread("chat", nil, "")
	for i := 0; i < 20; i++ {
		store.AddTurn(id, "user", "this is a reasonably long turn of conversation text", nil, nil, "chat", "", "", nil)
	}
	th := store.GetThread(id)
	cap := smallCap()
	res := Build(store, th, cap)

	budget := ComputeBudget(cap)
	assert.LessOrEqual(t, res.Tokens, budget.History+200) // small slack for delimiters/omission note
}

func TestBuildEmitsOmittedNoteWhenTruncated(t *testing.T) {
	store := convo.New(convo.DefaultConfig())
	id := store.CreateThread("chat", nil, "")
	long := make([]byte, 2000)
	for i := range long {
		long[i] = 'x'
	}
	for i := 0; i < 10; i++ {
		store.AddTurn(id, "user", string(long), nil, nil, "chat", "", "", nil)
	}
	th := store.GetThread(id)
	res := Build(store, th, smallCap())
	assert.Contains(t, res.Text, "earlier turns omitted")
}

func TestBuildEmitsOldestToNewestOrder(t *testing.T) {
	store := convo.New(convo.DefaultConfig())
	id := store.CreateThread("chat", nil, "")
	store.AddTurn(id, "user", "first", nil, nil, "chat", "", "", nil)
	store.AddTurn(id, "assistant", "second", nil, nil, "chat", "", "", nil)
	th := store.GetThread(id)
	res := Build(store, th, smallCap())

	require.Contains(t, res.Text, "first")
	require.Contains(t, res.Text, "second")
	assert.Less(t, indexOf(res.Text, "first"), indexOf(res.Text, "second"))
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
