// Package registry implements the process-wide provider registry: it maps
// provider kinds to live Provider clients, resolves a caller-supplied
// model name to the right one, and applies env-driven restriction lists
// and category-based fallback.
package registry

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/zenflow/zenflow-mcp/internal/zenflow/appcache"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/models"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/providers"
)

// defaultProviderRateLimit and defaultProviderRateBurst bound how often
// this process calls a single provider kind, independent of whatever
// limit the provider itself enforces server-side — pacing outbound
// calls here means a burst of concurrent tool calls degrades to queued
// waits instead of a wave of 429s that the retry loop then has to eat.
const (
	defaultProviderRateLimit = 5 // requests per second
	defaultProviderRateBurst = 5
)

// remoteModelLister is implemented by provider adapters whose model set is
// deployment-specific (OpenRouter, Custom) rather than fixed at build time.
type remoteModelLister interface {
	ListRemoteModels(ctx context.Context) ([]providers.RemoteModelID, error)
}

// PrecedenceOrder lists provider kinds in fallback precedence: native
// kinds ahead of aggregators, per spec.
var PrecedenceOrder = []models.ProviderKind{
	models.Google, models.OpenAI, models.XAI, models.DIAL, models.Custom, models.OpenRouter,
}

// breakerState tracks consecutive-failure circuit breaking for one
// provider kind. This supplements the spec's restriction-list filtering
// with operational hardening adapted from the teacher's multi-provider
// fallback design.
type breakerState struct {
	mu              sync.Mutex
	consecutiveFail int
	openUntil       time.Time
}

func (b *breakerState) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.consecutiveFail = 0
	b.openUntil = time.Time{}
}

func (b *breakerState) recordFailure(threshold int, cooldown time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.consecutiveFail++
	if b.consecutiveFail >= threshold {
		b.openUntil = time.Now().Add(cooldown)
	}
}

func (b *breakerState) open() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.openUntil.IsZero() && time.Now().Before(b.openUntil)
}

// Metrics is a read-only snapshot of a provider's recent call history.
type Metrics struct {
	Requests     int64
	Failures     int64
	LastError    string
	AvgLatencyMS int64
}

type metricsState struct {
	mu           sync.Mutex
	requests     int64
	failures     int64
	lastError    string
	totalLatency time.Duration
}

func (m *metricsState) record(d time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests++
	m.totalLatency += d
	if err != nil {
		m.failures++
		m.lastError = err.Error()
	}
}

func (m *metricsState) snapshot() Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	avg := int64(0)
	if m.requests > 0 {
		avg = m.totalLatency.Milliseconds() / m.requests
	}
	return Metrics{Requests: m.requests, Failures: m.failures, LastError: m.lastError, AvgLatencyMS: avg}
}

// BreakerConfig controls the circuit breaker's trip threshold and cooldown.
type BreakerConfig struct {
	FailureThreshold int
	Cooldown         time.Duration
}

// DefaultBreakerConfig trips after 5 consecutive failures and cools down
// for 30 seconds, matching the teacher's own default posture of erring on
// the side of availability over aggressive circuit-opening.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{FailureThreshold: 5, Cooldown: 30 * time.Second}
}

// Registry is the process-wide singleton mapping provider kind to client.
type Registry struct {
	mu        sync.RWMutex
	providers map[models.ProviderKind]providers.Provider
	catalog   *models.Catalog
	breakers  map[models.ProviderKind]*breakerState
	metrics   map[models.ProviderKind]*metricsState
	breaker   BreakerConfig
	limiters  map[models.ProviderKind]*rate.Limiter
	rateLimit rate.Limit
	rateBurst int

	// restrictions is a per-kind allow-list snapshot from env vars at
	// process start; empty means "no restriction".
	restrictions map[models.ProviderKind]map[string]bool
}

// New constructs an empty Registry bound to catalog for capability
// lookups.
func New(catalog *models.Catalog) *Registry {
	return &Registry{
		providers:    make(map[models.ProviderKind]providers.Provider),
		catalog:      catalog,
		breakers:     make(map[models.ProviderKind]*breakerState),
		metrics:      make(map[models.ProviderKind]*metricsState),
		breaker:      DefaultBreakerConfig(),
		limiters:     make(map[models.ProviderKind]*rate.Limiter),
		rateLimit:    rate.Limit(defaultProviderRateLimit),
		rateBurst:    defaultProviderRateBurst,
		restrictions: make(map[models.ProviderKind]map[string]bool),
	}
}

// SetRateLimit overrides the default per-kind outbound call pacing. A
// zero or negative limit disables pacing entirely (rate.Inf).
func (r *Registry) SetRateLimit(requestsPerSecond float64, burst int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if requestsPerSecond <= 0 {
		r.rateLimit = rate.Inf
	} else {
		r.rateLimit = rate.Limit(requestsPerSecond)
	}
	r.rateBurst = burst
	for kind := range r.limiters {
		r.limiters[kind] = rate.NewLimiter(r.rateLimit, r.rateBurst)
	}
}

// Register installs (or replaces) the client for kind. Idempotent.
func (r *Registry) Register(kind models.ProviderKind, p providers.Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[kind] = p
	if _, ok := r.breakers[kind]; !ok {
		r.breakers[kind] = &breakerState{}
	}
	if _, ok := r.metrics[kind]; !ok {
		r.metrics[kind] = &metricsState{}
	}
	if _, ok := r.limiters[kind]; !ok {
		r.limiters[kind] = rate.NewLimiter(r.rateLimit, r.rateBurst)
	}
}

// Wait blocks until kind's outbound call budget admits one more request,
// or ctx is cancelled first. Call immediately before dispatching to the
// provider so a burst of concurrent tool invocations queues here rather
// than arriving at the provider all at once and tripping its own
// rate limiting (which the retry loop would otherwise have to absorb).
func (r *Registry) Wait(ctx context.Context, kind models.ProviderKind) error {
	r.mu.RLock()
	limiter, ok := r.limiters[kind]
	r.mu.RUnlock()
	if !ok {
		return nil
	}
	return limiter.Wait(ctx)
}

// SetRestrictions installs the allow-list for kind (nil or empty clears
// any restriction). Snapshots are taken once at process start per the
// concurrency model; reloading requires a fresh Registry.
func (r *Registry) SetRestrictions(kind models.ProviderKind, allowed []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(allowed) == 0 {
		delete(r.restrictions, kind)
		return
	}
	set := make(map[string]bool, len(allowed))
	for _, m := range allowed {
		set[m] = true
	}
	r.restrictions[kind] = set
}

// GetProvider returns the registered client for kind, if any.
func (r *Registry) GetProvider(kind models.ProviderKind) (providers.Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[kind]
	return p, ok
}

// allowedFor reports whether model is permitted under kind's restriction
// list (true when there is no restriction list at all).
func (r *Registry) allowedFor(kind models.ProviderKind, model string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set, restricted := r.restrictions[kind]
	if !restricted {
		return true
	}
	return set[model]
}

// RestrictionNames returns the configured allow-list for kind, for error
// messages naming the restriction a caller ran afoul of.
func (r *Registry) RestrictionNames(kind models.ProviderKind) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set, ok := r.restrictions[kind]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(set))
	for m := range set {
		names = append(names, m)
	}
	return names
}

// GetProviderForModel iterates provider kinds in precedence order and
// returns the first whose ValidateModel(name) is true, whose circuit
// breaker is closed, and whose restriction list (if any) permits name.
func (r *Registry) GetProviderForModel(name string) (providers.Provider, models.ProviderKind, bool) {
	canon := r.catalog.ResolveAlias(name)
	r.mu.RLock()
	order := append([]models.ProviderKind(nil), PrecedenceOrder...)
	r.mu.RUnlock()

	for _, kind := range order {
		r.mu.RLock()
		p, ok := r.providers[kind]
		breaker := r.breakers[kind]
		r.mu.RUnlock()
		if !ok {
			continue
		}
		if breaker != nil && breaker.open() {
			continue
		}
		if !r.allowedFor(kind, canon) {
			continue
		}
		if p.ValidateModel(canon) {
			return p, kind, true
		}
	}
	return nil, "", false
}

// RecordCall updates the breaker and metrics state for kind after a call
// completes (err nil on success).
func (r *Registry) RecordCall(kind models.ProviderKind, latency time.Duration, err error) {
	r.mu.RLock()
	breaker := r.breakers[kind]
	metrics := r.metrics[kind]
	r.mu.RUnlock()
	if metrics != nil {
		metrics.record(latency, err)
	}
	if breaker == nil {
		return
	}
	if err != nil {
		breaker.recordFailure(r.breaker.FailureThreshold, r.breaker.Cooldown)
	} else {
		breaker.recordSuccess()
	}
}

// GetMetrics returns a snapshot of per-kind call metrics.
func (r *Registry) GetMetrics(kind models.ProviderKind) Metrics {
	r.mu.RLock()
	m, ok := r.metrics[kind]
	r.mu.RUnlock()
	if !ok {
		return Metrics{}
	}
	return m.snapshot()
}

// AvailableModels returns every model name currently resolvable to a
// registered, non-breaker-open, restriction-permitted provider.
func (r *Registry) AvailableModels() map[string]models.ProviderKind {
	out := make(map[string]models.ProviderKind)
	r.mu.RLock()
	kinds := make([]models.ProviderKind, 0, len(r.providers))
	for k := range r.providers {
		kinds = append(kinds, k)
	}
	r.mu.RUnlock()

	for _, kind := range kinds {
		r.mu.RLock()
		breaker := r.breakers[kind]
		r.mu.RUnlock()
		if breaker != nil && breaker.open() {
			continue
		}
		for _, name := range r.catalog.ListModels(kind) {
			if r.allowedFor(kind, name) {
				out[name] = kind
			}
		}
	}
	return out
}

// RefreshRemoteModels fetches kind's current model listing (through cache,
// refetching through the provider only on a cache miss) and registers any
// name not already in the catalog as a generic Balanced-category entry, so
// OpenRouter and Custom deployments stay usable without a hand-maintained
// capability file for every model they might expose.
func (r *Registry) RefreshRemoteModels(ctx context.Context, kind models.ProviderKind, cache *appcache.ModelsCache) error {
	r.mu.RLock()
	p, ok := r.providers[kind]
	r.mu.RUnlock()
	if !ok {
		return nil
	}
	lister, ok := p.(remoteModelLister)
	if !ok {
		return nil
	}

	namespace := string(kind)
	if cached, hit, err := cache.Get(ctx, namespace); err == nil && hit {
		for _, entry := range cached {
			r.registerRemoteIfAbsent(kind, entry.ID, entry.ContextWindowTokens, entry.SupportsImages)
		}
		return nil
	}

	remote, err := lister.ListRemoteModels(ctx)
	if err != nil {
		return err
	}
	entries := make([]appcache.RemoteModelEntry, 0, len(remote))
	for _, m := range remote {
		entries = append(entries, appcache.RemoteModelEntry{ID: m.ID, Name: m.ID})
		r.registerRemoteIfAbsent(kind, m.ID, 0, false)
	}
	return cache.Set(ctx, namespace, entries)
}

func (r *Registry) registerRemoteIfAbsent(kind models.ProviderKind, name string, contextWindow int, supportsImages bool) {
	if _, ok := r.catalog.Capabilities(name); ok {
		return
	}
	r.catalog.Register(models.Capability{
		Name:                  name,
		ProviderKind:          kind,
		Category:              models.Balanced,
		ContextWindowTokens:   contextWindow,
		MaxOutputTokens:       4096,
		SupportsTemperature:   true,
		TemperatureRange:      &models.TemperatureRange{Min: 0, Max: 2},
		TemperatureConstraint: models.TemperatureConstraintRange,
		SupportsImages:        supportsImages,
		SupportsSystemPrompt:  true,
	})
}

// PreferredFallback returns the highest-priority model matching category
// among currently available providers (breaker-closed, restriction-
// permitted), or "" if none qualify.
func (r *Registry) PreferredFallback(category models.ToolCategory) (string, bool) {
	r.mu.RLock()
	var live []models.ProviderKind
	for kind, breaker := range r.breakers {
		if breaker == nil || !breaker.open() {
			if _, registered := r.providers[kind]; registered {
				live = append(live, kind)
			}
		}
	}
	r.mu.RUnlock()

	best, bestWindow := "", -1
	for _, kind := range live {
		for _, name := range r.catalog.ListModels(kind) {
			cap, ok := r.catalog.Capabilities(name)
			if !ok || cap.Category != category || !r.allowedFor(kind, name) {
				continue
			}
			if cap.ContextWindowTokens > bestWindow {
				best, bestWindow = name, cap.ContextWindowTokens
			}
		}
	}
	return best, best != ""
}
