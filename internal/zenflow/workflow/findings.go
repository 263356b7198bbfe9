// Package workflow implements the multi-step workflow engine (C11): the
// finite-state machine driving tools that expose an investigate-then-
// report contract (debug, code review, refactor, security audit,
// analyze, docgen, pre-commit, test-gen, tracer, planner).
package workflow

import "sort"

// Hypothesis is one step's working theory, retained step-indexed so a
// later step (or a human reading the trace) can see how confidence
// evolved.
type Hypothesis struct {
	Step       int
	Confidence string
	Text       string
}

// Issue is one concrete problem surfaced during investigation.
type Issue struct {
	Severity    string
	Description string
}

// Findings is the ConsolidatedFindings accumulator, mutated only by the
// engine and reset at the start of each new workflow invocation (i.e.
// each fresh thread, not each step).
type Findings struct {
	FilesChecked    map[string]bool
	RelevantFiles   map[string]bool
	RelevantContext map[string]bool
	Findings        []string
	Hypotheses      []Hypothesis
	Issues          []Issue
	Images          []string
	Confidence      string
}

// NewFindings returns an empty Findings accumulator.
func NewFindings() *Findings {
	return &Findings{
		FilesChecked:    map[string]bool{},
		RelevantFiles:   map[string]bool{},
		RelevantContext: map[string]bool{},
	}
}

// Merge folds one step's contribution into f: set fields take a union,
// the findings list is appended to, hypotheses are appended with their
// step index, and images are appended uniquely.
func (f *Findings) Merge(step Step) {
	for _, p := range step.FilesChecked {
		f.FilesChecked[p] = true
	}
	for _, p := range step.RelevantFiles {
		f.RelevantFiles[p] = true
	}
	for _, c := range step.RelevantContext {
		f.RelevantContext[c] = true
	}
	if step.Findings != "" {
		f.Findings = append(f.Findings, step.Findings)
	}
	if step.Hypothesis != "" {
		f.Hypotheses = append(f.Hypotheses, Hypothesis{
			Step:       step.StepNumber,
			Confidence: step.Confidence,
			Text:       step.Hypothesis,
		})
	}
	for _, issue := range step.IssuesFound {
		f.Issues = append(f.Issues, issue)
	}
	seen := make(map[string]bool, len(f.Images))
	for _, img := range f.Images {
		seen[img] = true
	}
	for _, img := range step.Images {
		if !seen[img] {
			seen[img] = true
			f.Images = append(f.Images, img)
		}
	}
	if step.Confidence != "" {
		f.Confidence = step.Confidence
	}
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
