package convo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndGetThread(t *testing.T) {
	s := New(DefaultConfig())
	id := s.CreateThread("chat", nil, "")
	th := s.GetThread(id)
	require.NotNil(t, th)
	assert.Equal(t, "chat", th.ToolName)
	assert.Empty(t, th.ParentThreadID)
}

func TestAddTurnCapsAtMaxTurns(t *testing.T) {
	s := New(Config{TTL: time.Hour, MaxTurns: 2})
	id := s.CreateThread("chat", nil, "")
	assert.True(t, s.AddTurn(id, "user", "a", nil, nil, "chat", "", "", nil))
	assert.True(t, s.AddTurn(id, "assistant", "b", nil, nil, "chat", "", "", nil))
	assert.False(t, s.AddTurn(id, "user", "c", nil, nil, "chat", "", "", nil))
	assert.Len(t, s.GetThread(id).Turns(), 2)
}

func TestAddTurnOnMissingThreadReturnsFalseWithoutPanic(t *testing.T) {
	s := New(DefaultConfig())
	assert.False(t, s.AddTurn("does-not-exist", "user", "x", nil, nil, "chat", "", "", nil))
}

func TestThreadExpiresAfterTTL(t *testing.T) {
	s := New(Config{TTL: time.Millisecond, MaxTurns: 50})
	id := s.CreateThread("chat", nil, "")
	time.Sleep(5 * time.Millisecond)
	assert.Nil(t, s.GetThread(id))
}

func TestParentChainOrdersOldestFirst(t *testing.T) {
	s := New(DefaultConfig())
	parentID := s.CreateThread("chat", nil, "")
	s.AddTurn(parentID, "user", "parent-turn", nil, nil, "chat", "", "", nil)

	childID := s.CreateThread("chat", nil, parentID)
	s.AddTurn(childID, "user", "child-turn", nil, nil, "chat", "", "", nil)

	child := s.GetThread(childID)
	all := s.AllTurns(child)
	require.Len(t, all, 2)
	assert.Equal(t, "parent-turn", all[0].Content)
	assert.Equal(t, "child-turn", all[1].Content)
}

func TestGetConversationFileListDedupsNewestFirst(t *testing.T) {
	s := New(DefaultConfig())
	id := s.CreateThread("chat", nil, "")
	s.AddTurn(id, "user", "turn1", []string{"/a.go", "/b.go"}, nil, "chat", "", "", nil)
	s.AddTurn(id, "user", "turn2", []string{"/a.go"}, nil, "chat", "", "", nil)

	files := s.GetConversationFileList(s.GetThread(id))
	assert.ElementsMatch(t, []string{"/a.go", "/b.go"}, files)
}

func TestTruncateAfterDropsLaterSteps(t *testing.T) {
	s := New(DefaultConfig())
	id := s.CreateThread("debug", nil, "")
	s.AddStepTurn(id, "user", "step1", nil, nil, "debug", "", "", nil, 1)
	s.AddStepTurn(id, "user", "step2", nil, nil, "debug", "", "", nil, 2)
	s.AddStepTurn(id, "user", "step3", nil, nil, "debug", "", "", nil, 3)

	th := s.GetThread(id)
	th.TruncateAfter(2)
	turns := th.Turns()
	require.Len(t, turns, 1)
	assert.Equal(t, "step1", turns[0].Content)
}
