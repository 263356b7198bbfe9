package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAliasAndCapabilities(t *testing.T) {
	c := DefaultCatalog()
	assert.Equal(t, "gemini-2.5-flash", c.ResolveAlias("flash"))

	cap, ok := c.Capabilities("flash")
	require.True(t, ok)
	assert.Equal(t, Google, cap.ProviderKind)

	_, ok = c.Capabilities("does-not-exist")
	assert.False(t, ok)
}

func TestListModelsFiltersByKind(t *testing.T) {
	c := DefaultCatalog()
	googleModels := c.ListModels(Google)
	for _, name := range googleModels {
		cap, ok := c.Capabilities(name)
		require.True(t, ok)
		assert.Equal(t, Google, cap.ProviderKind)
	}
	assert.NotEmpty(t, googleModels)
}

func TestIsThinkingCapable(t *testing.T) {
	c := DefaultCatalog()
	assert.True(t, c.IsThinkingCapable("gemini-2.5-pro"))
	assert.False(t, c.IsThinkingCapable("gpt-4o-mini"))
}

func TestThinkingBudget(t *testing.T) {
	c := DefaultCatalog()
	cap, _ := c.Capabilities("gemini-2.5-pro")
	assert.Equal(t, int(0.33*float64(cap.MaxThinkingTokens)), ThinkingBudget(cap, ThinkingMedium))

	nonThinking, _ := c.Capabilities("gpt-4o-mini")
	assert.Equal(t, 0, ThinkingBudget(nonThinking, ThinkingHigh))
}

func TestPreferredByCategory(t *testing.T) {
	c := DefaultCatalog()
	name, ok := c.PreferredByCategory(ExtendedReasoning, []ProviderKind{Google, OpenAI})
	require.True(t, ok)
	cap, _ := c.Capabilities(name)
	assert.Equal(t, ExtendedReasoning, cap.Category)
}
