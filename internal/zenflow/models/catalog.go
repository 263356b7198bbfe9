// Package models holds the static model capability catalog: declarative
// metadata about context window, output limits, thinking-mode support,
// and temperature constraints for every model this server knows about.
package models

import "sync"

// ProviderKind enumerates the provider families a model can belong to.
// Ordering matters: native kinds precede aggregators for fallback
// precedence (see registry.PrecedenceOrder).
type ProviderKind string

const (
	Google     ProviderKind = "google"
	OpenAI     ProviderKind = "openai"
	XAI        ProviderKind = "xai"
	DIAL       ProviderKind = "dial"
	Custom     ProviderKind = "custom"
	OpenRouter ProviderKind = "openrouter"
)

// TemperatureConstraint describes how a model's temperature knob behaves.
type TemperatureConstraint string

const (
	TemperatureConstraintFixed    TemperatureConstraint = "fixed"
	TemperatureConstraintRange    TemperatureConstraint = "range"
	TemperatureConstraintDiscrete TemperatureConstraint = "discrete"
)

// TemperatureRange is an inclusive [Min, Max] band.
type TemperatureRange struct {
	Min float64
	Max float64
}

// ToolCategory groups models by how they should be picked for a given
// tool's needs when resolving a fallback.
type ToolCategory string

const (
	FastResponse      ToolCategory = "fast_response"
	Balanced          ToolCategory = "balanced"
	ExtendedReasoning ToolCategory = "extended_reasoning"
)

// ThinkingMode is a qualitative thinking-budget level a caller may
// request; it maps to a fraction of a model's max thinking-token budget.
type ThinkingMode string

const (
	ThinkingMinimal ThinkingMode = "minimal"
	ThinkingLow     ThinkingMode = "low"
	ThinkingMedium  ThinkingMode = "medium"
	ThinkingHigh    ThinkingMode = "high"
	ThinkingMax     ThinkingMode = "max"
)

// ThinkingFractions maps each ThinkingMode to the fraction of a model's
// max thinking-token budget it requests.
var ThinkingFractions = map[ThinkingMode]float64{
	ThinkingMinimal: 0.005,
	ThinkingLow:     0.08,
	ThinkingMedium:  0.33,
	ThinkingHigh:    0.67,
	ThinkingMax:     1.0,
}

// Capability is the immutable declarative metadata for one canonical
// model name.
type Capability struct {
	Name                 string
	FriendlyName         string
	Aliases              []string
	ProviderKind         ProviderKind
	Category             ToolCategory
	ContextWindowTokens  int
	MaxOutputTokens      int
	MaxThinkingTokens    int
	SupportsThinkingMode bool
	SupportsTemperature  bool
	TemperatureRange     *TemperatureRange
	TemperatureConstraint TemperatureConstraint
	SupportsImages       bool
	MaxImageSizeMB       float64
	SupportsJSONMode     bool
	SupportsSystemPrompt bool
	Description          string
}

// Catalog is a registration table of Capability entries, safe for
// concurrent reads after Register calls complete (typically all done at
// process start).
type Catalog struct {
	mu      sync.RWMutex
	byName  map[string]Capability
	aliases map[string]string
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		byName:  make(map[string]Capability),
		aliases: make(map[string]string),
	}
}

// Register adds or replaces a Capability entry and its aliases.
// Capability is immutable once looked up by callers; Register is only
// meant to run during catalog construction.
func (c *Catalog) Register(cap Capability) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byName[cap.Name] = cap
	for _, a := range cap.Aliases {
		c.aliases[a] = cap.Name
	}
}

// ResolveAlias maps an alias or canonical name to its canonical name.
// Returns the input unchanged if it is not a known alias.
func (c *Catalog) ResolveAlias(name string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if canon, ok := c.aliases[name]; ok {
		return canon
	}
	return name
}

// Capabilities looks up a model's Capability, resolving aliases first.
func (c *Catalog) Capabilities(name string) (Capability, bool) {
	canon := c.ResolveAlias(name)
	c.mu.RLock()
	defer c.mu.RUnlock()
	cap, ok := c.byName[canon]
	return cap, ok
}

// ListModels returns every canonical model name registered for kind. If
// kind is empty, every registered model is returned.
func (c *Catalog) ListModels(kind ProviderKind) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []string
	for name, cap := range c.byName {
		if kind == "" || cap.ProviderKind == kind {
			out = append(out, name)
		}
	}
	return out
}

// IsThinkingCapable reports whether a model supports thinking mode.
func (c *Catalog) IsThinkingCapable(name string) bool {
	cap, ok := c.Capabilities(name)
	return ok && cap.SupportsThinkingMode
}

// PreferredByCategory returns the model matching category (and one of
// kinds, when kinds is non-empty) with the largest context window; which
// of several models with an equal window is returned is not defined.
func (c *Catalog) PreferredByCategory(category ToolCategory, kinds []ProviderKind) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	allowed := make(map[ProviderKind]bool, len(kinds))
	for _, k := range kinds {
		allowed[k] = true
	}
	best := ""
	bestWindow := -1
	for name, cap := range c.byName {
		if cap.Category != category {
			continue
		}
		if len(kinds) > 0 && !allowed[cap.ProviderKind] {
			continue
		}
		if cap.ContextWindowTokens > bestWindow {
			best = name
			bestWindow = cap.ContextWindowTokens
		}
	}
	return best, best != ""
}

// ThinkingBudget returns the absolute thinking-token budget for a model
// given a qualitative mode, or 0 if the model or mode is unrecognized.
func ThinkingBudget(cap Capability, mode ThinkingMode) int {
	if !cap.SupportsThinkingMode {
		return 0
	}
	frac, ok := ThinkingFractions[mode]
	if !ok {
		return 0
	}
	return int(frac * float64(cap.MaxThinkingTokens))
}
