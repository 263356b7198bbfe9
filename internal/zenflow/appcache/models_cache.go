package appcache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// modelsListTTL controls how long a fetched OpenRouter/Custom model
// listing is trusted before the next startup refetches it. OpenRouter's
// catalog changes at most a few times a day, so this favors fewer
// outbound calls over freshness.
const modelsListTTL = 6 * time.Hour

// RemoteModelEntry is one row of an OpenRouter-style /models response,
// trimmed to the fields the capability catalog needs.
type RemoteModelEntry struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	ContextWindowTokens int    `json:"context_length"`
	SupportsImages      bool   `json:"supports_images"`
}

// ModelsCache wraps a Cache with the one key this server ever stores in
// it: the remote model listing for a given provider kind, keyed by a
// caller-supplied namespace (e.g. "openrouter" or "custom").
type ModelsCache struct {
	backend Cache
}

// New picks the cache backend the way the teacher's builder wiring does:
// Redis when REDIS_URL is set (so the listing survives restarts and is
// shared across replicas of this server), in-memory otherwise. A failed
// Redis dial falls back to memory rather than failing startup, since the
// model listing cache is an optimization, not a dependency.
func New() *ModelsCache {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return &ModelsCache{backend: NewMemoryCache(64, modelsListTTL)}
	}
	addr, password, db := parseRedisURL(redisURL)
	cache, err := NewRedisCache(addr, password, db, "zenflow", modelsListTTL)
	if err != nil {
		return &ModelsCache{backend: NewMemoryCache(64, modelsListTTL)}
	}
	return &ModelsCache{backend: cache}
}

// NewWithBackend lets callers (tests, or a process that already has a
// *RedisCache/*MemoryCache wired) supply the backend directly.
func NewWithBackend(backend Cache) *ModelsCache {
	return &ModelsCache{backend: backend}
}

// Get returns the cached listing for namespace, or ok=false on a miss or
// expired entry.
func (m *ModelsCache) Get(ctx context.Context, namespace string) ([]RemoteModelEntry, bool, error) {
	raw, ok, err := m.backend.Get(ctx, namespace)
	if err != nil || !ok {
		return nil, false, err
	}
	var entries []RemoteModelEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, false, fmt.Errorf("appcache: corrupt cached model listing for %q: %w", namespace, err)
	}
	return entries, true, nil
}

// Set stores entries under namespace using the cache's default TTL.
func (m *ModelsCache) Set(ctx context.Context, namespace string, entries []RemoteModelEntry) error {
	body, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("appcache: failed to marshal model listing for %q: %w", namespace, err)
	}
	return m.backend.Set(ctx, namespace, string(body), 0)
}

// Stats exposes the underlying backend's hit/miss counters.
func (m *ModelsCache) Stats() Stats {
	return m.backend.Stats()
}

// parseRedisURL accepts the common redis://[:password@]host:port[/db]
// form. It is deliberately lenient: a DB suffix that is not a number is
// ignored (DB 0) while the host and password are kept, and an empty host
// falls back to localhost:6379.
func parseRedisURL(raw string) (addr, password string, db int) {
	s := strings.TrimPrefix(raw, "redis://")
	s = strings.TrimPrefix(s, "rediss://")

	if at := strings.LastIndex(s, "@"); at != -1 {
		userinfo := s[:at]
		s = s[at+1:]
		if colon := strings.Index(userinfo, ":"); colon != -1 {
			password = userinfo[colon+1:]
		}
	}

	if slash := strings.Index(s, "/"); slash != -1 {
		addr = s[:slash]
		if n, err := strconv.Atoi(s[slash+1:]); err == nil {
			db = n
		}
	} else {
		addr = s
	}
	if addr == "" {
		addr = "localhost:6379"
	}
	return addr, password, db
}
