package registry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenflow/zenflow-mcp/internal/zenflow/appcache"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/models"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/providers"
)

type fakeProvider struct {
	kind  models.ProviderKind
	known map[string]bool
}

func (f *fakeProvider) Kind() models.ProviderKind        { return f.kind }
func (f *fakeProvider) ValidateModel(name string) bool   { return f.known[name] }
func (f *fakeProvider) CountTokens(_, text string) int    { return len(text) }
func (f *fakeProvider) Capabilities(name string) (models.Capability, bool) {
	return models.Capability{Name: name, ProviderKind: f.kind}, f.known[name]
}
func (f *fakeProvider) Generate(ctx context.Context, req providers.GenerationRequest) (providers.ModelResponse, error) {
	return providers.ModelResponse{Content: "ok", ModelName: req.ModelName, ProviderKind: f.kind}, nil
}

func newCatalog() *models.Catalog {
	c := models.NewCatalog()
	c.Register(models.Capability{Name: "gemini-2.5-flash", ProviderKind: models.Google, Category: models.FastResponse, ContextWindowTokens: 1000})
	c.Register(models.Capability{Name: "gpt-4o-mini", ProviderKind: models.OpenAI, Category: models.FastResponse, ContextWindowTokens: 500})
	return c
}

func TestGetProviderForModelRespectsPrecedence(t *testing.T) {
	r := New(newCatalog())
	r.Register(models.Google, &fakeProvider{kind: models.Google, known: map[string]bool{"gemini-2.5-flash": true}})
	r.Register(models.OpenAI, &fakeProvider{kind: models.OpenAI, known: map[string]bool{"gpt-4o-mini": true}})

	p, kind, ok := r.GetProviderForModel("gemini-2.5-flash")
	require.True(t, ok)
	assert.Equal(t, models.Google, kind)
	assert.NotNil(t, p)

	_, _, ok = r.GetProviderForModel("does-not-exist")
	assert.False(t, ok)
}

func TestRestrictionListFiltersResolution(t *testing.T) {
	r := New(newCatalog())
	r.Register(models.OpenAI, &fakeProvider{kind: models.OpenAI, known: map[string]bool{"gpt-4o-mini": true}})
	r.SetRestrictions(models.OpenAI, []string{"some-other-model"})

	_, _, ok := r.GetProviderForModel("gpt-4o-mini")
	assert.False(t, ok)
	assert.Equal(t, []string{"some-other-model"}, r.RestrictionNames(models.OpenAI))
}

func TestCircuitBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	r := New(newCatalog())
	r.breaker = BreakerConfig{FailureThreshold: 2, Cooldown: time.Hour}
	r.Register(models.OpenAI, &fakeProvider{kind: models.OpenAI, known: map[string]bool{"gpt-4o-mini": true}})

	r.RecordCall(models.OpenAI, time.Millisecond, errors.New("boom"))
	_, _, ok := r.GetProviderForModel("gpt-4o-mini")
	assert.True(t, ok, "breaker should still be closed after one failure")

	r.RecordCall(models.OpenAI, time.Millisecond, errors.New("boom again"))
	_, _, ok = r.GetProviderForModel("gpt-4o-mini")
	assert.False(t, ok, "breaker should open after reaching the failure threshold")
}

func TestAvailableModelsExcludesRestrictedAndOpenBreaker(t *testing.T) {
	r := New(newCatalog())
	r.Register(models.Google, &fakeProvider{kind: models.Google, known: map[string]bool{"gemini-2.5-flash": true}})
	r.Register(models.OpenAI, &fakeProvider{kind: models.OpenAI, known: map[string]bool{"gpt-4o-mini": true}})
	r.SetRestrictions(models.OpenAI, []string{"only-this-one"})

	available := r.AvailableModels()
	_, hasGemini := available["gemini-2.5-flash"]
	_, hasGPT := available["gpt-4o-mini"]
	assert.True(t, hasGemini)
	assert.False(t, hasGPT)
}

func TestPreferredFallback(t *testing.T) {
	r := New(newCatalog())
	r.Register(models.Google, &fakeProvider{kind: models.Google, known: map[string]bool{"gemini-2.5-flash": true}})
	name, ok := r.PreferredFallback(models.FastResponse)
	require.True(t, ok)
	assert.Equal(t, "gemini-2.5-flash", name)
}

type fakeRemoteLister struct {
	fakeProvider
	calls int
	ids   []string
}

func (f *fakeRemoteLister) ListRemoteModels(ctx context.Context) ([]providers.RemoteModelID, error) {
	f.calls++
	out := make([]providers.RemoteModelID, 0, len(f.ids))
	for _, id := range f.ids {
		out = append(out, providers.RemoteModelID{ID: id})
	}
	return out, nil
}

func TestRefreshRemoteModelsRegistersUncatalogedNames(t *testing.T) {
	r := New(newCatalog())
	lister := &fakeRemoteLister{fakeProvider: fakeProvider{kind: models.OpenRouter}, ids: []string{"vendor/new-model"}}
	r.Register(models.OpenRouter, lister)
	cache := appcache.NewWithBackend(appcache.NewMemoryCache(8, time.Hour))

	err := r.RefreshRemoteModels(context.Background(), models.OpenRouter, cache)
	require.NoError(t, err)

	cap, ok := r.catalog.Capabilities("vendor/new-model")
	require.True(t, ok)
	assert.Equal(t, models.OpenRouter, cap.ProviderKind)
}

func TestRefreshRemoteModelsUsesCacheOnSecondCall(t *testing.T) {
	r := New(newCatalog())
	lister := &fakeRemoteLister{fakeProvider: fakeProvider{kind: models.OpenRouter}, ids: []string{"vendor/cached-model"}}
	r.Register(models.OpenRouter, lister)
	cache := appcache.NewWithBackend(appcache.NewMemoryCache(8, time.Hour))

	require.NoError(t, r.RefreshRemoteModels(context.Background(), models.OpenRouter, cache))
	require.NoError(t, r.RefreshRemoteModels(context.Background(), models.OpenRouter, cache))
	assert.Equal(t, 1, lister.calls, "second refresh should be served from cache, not the provider")
}

func TestRefreshRemoteModelsSkipsProvidersWithoutListing(t *testing.T) {
	r := New(newCatalog())
	r.Register(models.Google, &fakeProvider{kind: models.Google, known: map[string]bool{"gemini-2.5-flash": true}})
	cache := appcache.NewWithBackend(appcache.NewMemoryCache(8, time.Hour))

	err := r.RefreshRemoteModels(context.Background(), models.Google, cache)
	assert.NoError(t, err)
}

func TestWaitIsNoopForUnregisteredKind(t *testing.T) {
	r := New(newCatalog())
	err := r.Wait(context.Background(), models.OpenAI)
	assert.NoError(t, err)
}

func TestWaitThrottlesBurstBeyondConfiguredRate(t *testing.T) {
	r := New(newCatalog())
	r.SetRateLimit(1000, 1) // one token in the bucket, refilling fast but not instantly
	r.Register(models.OpenAI, &fakeProvider{kind: models.OpenAI, known: map[string]bool{"gpt-4o-mini": true}})

	require.NoError(t, r.Wait(context.Background(), models.OpenAI))

	start := time.Now()
	require.NoError(t, r.Wait(context.Background(), models.OpenAI))
	assert.Greater(t, time.Since(start), time.Duration(0))
}

func TestWaitRespectsContextCancellation(t *testing.T) {
	r := New(newCatalog())
	r.SetRateLimit(1, 1)
	r.Register(models.OpenAI, &fakeProvider{kind: models.OpenAI, known: map[string]bool{"gpt-4o-mini": true}})
	require.NoError(t, r.Wait(context.Background(), models.OpenAI))

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	err := r.Wait(ctx, models.OpenAI)
	assert.Error(t, err)
}
