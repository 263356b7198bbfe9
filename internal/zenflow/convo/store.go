// Package convo implements the process-wide, in-memory conversation
// store: a UUID-keyed thread table with TTL-based lazy eviction, parent
// chains forming a DAG, and newest-first file/image deduplication across
// a chain. Deliberately not persisted across process restarts.
package convo

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Turn is one entry in a thread's append-only history.
type Turn struct {
	Role           string // "user" | "assistant"
	Content        string
	Timestamp      time.Time
	Files          []string
	Images         []string
	ToolName       string
	ProviderKind   string
	ModelName      string
	ModelMetadata  map[string]interface{}
	StepNumber     int
}

// Thread is a multi-turn conversation context, optionally chained to a
// parent thread.
type Thread struct {
	ID             string
	ParentThreadID string
	CreatedAt      time.Time
	LastUpdatedAt  time.Time
	ToolName       string
	InitialContext map[string]interface{}

	mu    sync.Mutex
	turns []Turn
}

// Turns returns a snapshot copy of the thread's turns.
func (t *Thread) Turns() []Turn {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Turn, len(t.turns))
	copy(out, t.turns)
	return out
}

// TruncateAfter drops every turn with StepNumber >= k, used by the
// workflow engine's backtrack handling.
func (t *Thread) TruncateAfter(k int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	kept := t.turns[:0:0]
	for _, turn := range t.turns {
		if turn.StepNumber == 0 || turn.StepNumber < k {
			kept = append(kept, turn)
		}
	}
	t.turns = kept
}

// Config controls store-wide defaults.
type Config struct {
	TTL          time.Duration
	MaxTurns     int
}

// DefaultConfig matches the spec's defaults: 3-hour TTL, 50-turn cap.
func DefaultConfig() Config {
	return Config{TTL: 3 * time.Hour, MaxTurns: 50}
}

// Store is the thread-safe, process-wide thread table.
type Store struct {
	cfg Config

	mu      sync.Mutex
	threads map[string]*Thread
}

// New constructs an empty Store.
func New(cfg Config) *Store {
	return &Store{cfg: cfg, threads: make(map[string]*Thread)}
}

// CreateThread allocates a fresh v4-UUID thread, optionally chained to
// parentID (empty string for a root thread).
func (s *Store) CreateThread(toolName string, initialContext map[string]interface{}, parentID string) string {
	id := uuid.NewString()
	now := time.Now()
	th := &Thread{
		ID:             id,
		ParentThreadID: parentID,
		CreatedAt:      now,
		LastUpdatedAt:  now,
		ToolName:       toolName,
		InitialContext: initialContext,
	}
	s.mu.Lock()
	s.threads[id] = th
	s.mu.Unlock()
	return id
}

// GetThread returns the thread for id, or nil if it does not exist or has
// expired. Eviction is lazy: an expired thread is removed from the map on
// this access.
func (s *Store) GetThread(id string) *Thread {
	s.mu.Lock()
	th, ok := s.threads[id]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	if s.expired(th) {
		delete(s.threads, id)
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()
	return th
}

func (s *Store) expired(th *Thread) bool {
	th.mu.Lock()
	last := th.LastUpdatedAt
	th.mu.Unlock()
	return time.Since(last) > s.cfg.TTL
}

// AddTurn appends a turn to thread id. Returns false (without raising)
// when the thread is missing/expired or already at the per-thread turn
// cap; callers proceed without storing in that case.
func (s *Store) AddTurn(id, role, content string, files, images []string, toolName, providerKind, modelName string, modelMetadata map[string]interface{}) bool {
	th := s.GetThread(id)
	if th == nil {
		return false
	}
	th.mu.Lock()
	defer th.mu.Unlock()
	if len(th.turns) >= s.cfg.MaxTurns {
		return false
	}
	th.turns = append(th.turns, Turn{
		Role:          role,
		Content:       content,
		Timestamp:     time.Now(),
		Files:         files,
		Images:        images,
		ToolName:      toolName,
		ProviderKind:  providerKind,
		ModelName:     modelName,
		ModelMetadata: modelMetadata,
	})
	th.LastUpdatedAt = time.Now()
	return true
}

// AddStepTurn is AddTurn with an explicit step number, used by the
// workflow engine so backtrack can truncate precisely.
func (s *Store) AddStepTurn(id, role, content string, files, images []string, toolName, providerKind, modelName string, modelMetadata map[string]interface{}, stepNumber int) bool {
	th := s.GetThread(id)
	if th == nil {
		return false
	}
	th.mu.Lock()
	defer th.mu.Unlock()
	if len(th.turns) >= s.cfg.MaxTurns {
		return false
	}
	th.turns = append(th.turns, Turn{
		Role:          role,
		Content:       content,
		Timestamp:     time.Now(),
		Files:         files,
		Images:        images,
		ToolName:      toolName,
		ProviderKind:  providerKind,
		ModelName:     modelName,
		ModelMetadata: modelMetadata,
		StepNumber:    stepNumber,
	})
	th.LastUpdatedAt = time.Now()
	return true
}

// chain walks parent links from th up to (and including) the root, with
// a visited set to guard against a cycle, returning oldest-first.
func (s *Store) chain(th *Thread) []*Thread {
	var chain []*Thread
	visited := map[string]bool{}
	cur := th
	for cur != nil && !visited[cur.ID] {
		visited[cur.ID] = true
		chain = append(chain, cur)
		if cur.ParentThreadID == "" {
			break
		}
		cur = s.GetThread(cur.ParentThreadID)
	}
	// chain is currently leaf-to-root; reverse to root-to-leaf.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// AllTurns returns every turn across th's parent chain, oldest-first
// (parent turns before the thread's own turns), with turn numbering
// global across the chain.
func (s *Store) AllTurns(th *Thread) []Turn {
	var all []Turn
	for _, t := range s.chain(th) {
		all = append(all, t.Turns()...)
	}
	return all
}

// GetConversationFileList deduplicates file paths newest-first across
// th's parent chain: for each path, only the latest turn mentioning it is
// kept, and the returned list is ordered by that latest mention, least
// recent first (paths listed in the same turn come out in reverse order).
func (s *Store) GetConversationFileList(th *Thread) []string {
	return dedupNewestFirst(s.AllTurns(th), func(t Turn) []string { return t.Files })
}

// GetConversationImageList is GetConversationFileList's analog for images.
func (s *Store) GetConversationImageList(th *Thread) []string {
	return dedupNewestFirst(s.AllTurns(th), func(t Turn) []string { return t.Images })
}

func dedupNewestFirst(turns []Turn, get func(Turn) []string) []string {
	// Walk newest-to-oldest so the first time we see a path is its latest
	// mention; record that newest-mention-first order.
	seen := map[string]bool{}
	var order []string
	for i := len(turns) - 1; i >= 0; i-- {
		for _, p := range get(turns[i]) {
			if !seen[p] {
				seen[p] = true
				order = append(order, p)
			}
		}
	}
	// order is newest-mention-first; spec doesn't mandate final ordering
	// beyond "keep only the latest occurrence", so we reverse it to emit
	// least-recent-mention first, matching history builder's oldest->newest
	// emission.
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order
}
