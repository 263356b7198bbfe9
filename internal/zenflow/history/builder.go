// Package history reconstructs a thread's conversation as a single
// budgeted text block for inclusion in a provider prompt, splitting the
// model's context window across retained history, embedded files, and
// headroom for the caller's own prompt.
package history

import (
	"fmt"
	"strings"

	"github.com/zenflow/zenflow-mcp/internal/zenflow/convo"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/fileio"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/models"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/tokens"
)

// Budget fractions are treated as process-wide constants per the design
// notes: the source material does not make these independently tunable.
const (
	HistoryFraction = 0.6
	FileFraction    = 0.3
	UserFraction    = 0.1

	minReservedOutput = 4096
)

// ReservedOutput computes the output-token headroom a model reserves:
// min(max_output_tokens, 10% of context window), floored at 4,096.
func ReservedOutput(cap models.Capability) int {
	tenPercent := int(0.1 * float64(cap.ContextWindowTokens))
	reserved := cap.MaxOutputTokens
	if tenPercent < reserved {
		reserved = tenPercent
	}
	if reserved < minReservedOutput {
		reserved = minReservedOutput
	}
	return reserved
}

// Budget is the token allocation for one history_builder invocation.
type Budget struct {
	Total   int
	History int
	File    int
	User    int
}

// ComputeBudget derives the three-way split for cap.
func ComputeBudget(cap models.Capability) Budget {
	reserved := ReservedOutput(cap)
	total := cap.ContextWindowTokens - reserved
	if total < 0 {
		total = 0
	}
	return Budget{
		Total:   total,
		History: int(HistoryFraction * float64(total)),
		File:    int(FileFraction * float64(total)),
		User:    int(UserFraction * float64(total)),
	}
}

// Result is the output of Build: the assembled text and its estimated
// token cost, plus the portion of File budget actually spent on inlined
// file/image content (needed by the file-content preparer to avoid
// double-charging the same budget).
type Result struct {
	Text           string
	Tokens         int
	FileTokensUsed int
}

// Build reconstructs thread's history for target model capability cap.
func Build(store *convo.Store, th *convo.Thread, cap models.Capability) Result {
	budget := ComputeBudget(cap)
	allTurns := store.AllTurns(th)
	if len(allTurns) == 0 {
		return Result{}
	}

	// Walk newest -> oldest, accumulating formatted blocks until the
	// history budget would be exceeded.
	type block struct {
		text   string
		tokens int
	}
	var blocks []block
	historyUsed := 0
	omitted := 0
	seenFiles := map[string]bool{}
	seenImages := map[string]bool{}
	fileTokensUsed := 0

	for i := len(allTurns) - 1; i >= 0; i-- {
		turn := allTurns[i]
		text, fileTokens := formatTurn(turn, seenFiles, seenImages, budget.File-fileTokensUsed)
		cost := tokens.Estimate(text)
		if historyUsed+cost > budget.History && len(blocks) > 0 {
			omitted = i + 1
			break
		}
		blocks = append(blocks, block{text: text, tokens: cost})
		historyUsed += cost
		fileTokensUsed += fileTokens
	}

	// blocks is newest-first; reverse to oldest-first for emission.
	for i, j := 0, len(blocks)-1; i < j; i, j = i+1, j-1 {
		blocks[i], blocks[j] = blocks[j], blocks[i]
	}

	var sb strings.Builder
	if omitted > 0 {
		fmt.Fprintf(&sb, "[%d earlier turns omitted]\n\n", omitted)
	}
	for _, b := range blocks {
		sb.WriteString(b.text)
		sb.WriteString("\n")
	}

	text := sb.String()
	return Result{Text: text, Tokens: tokens.Estimate(text), FileTokensUsed: fileTokensUsed}
}

// formatTurn renders one turn as a delimited block. File/image paths not
// yet seen (walking newest-to-oldest, so "not yet seen" means "this is
// the newest occurrence") are inlined via fileio; paths already seen are
// listed as a referenced-earlier note without re-embedding content.
func formatTurn(turn convo.Turn, seenFiles, seenImages map[string]bool, remainingFileBudget int) (string, int) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- %s turn", turn.Role)
	if turn.ToolName != "" {
		fmt.Fprintf(&sb, " (%s)", turn.ToolName)
	}
	if turn.StepNumber > 0 {
		fmt.Fprintf(&sb, " [step %d]", turn.StepNumber)
	}
	sb.WriteString(" ---\n")
	sb.WriteString(turn.Content)
	sb.WriteString("\n")

	fileTokens := 0
	for _, p := range turn.Files {
		if seenFiles[p] {
			fmt.Fprintf(&sb, "(file %s referenced earlier)\n", p)
			continue
		}
		seenFiles[p] = true
		text, est, err := fileio.ReadFile(p, false)
		if err != nil || fileTokens+est > remainingFileBudget {
			fmt.Fprintf(&sb, "(file %s omitted: over budget)\n", p)
			continue
		}
		fmt.Fprintf(&sb, "=== FILE: %s ===\n%s\n=== END FILE ===\n", p, text)
		fileTokens += est
	}
	for _, p := range turn.Images {
		if seenImages[p] {
			fmt.Fprintf(&sb, "(image %s referenced earlier)\n", p)
			continue
		}
		seenImages[p] = true
		fmt.Fprintf(&sb, "(image %s)\n", p)
	}

	return sb.String(), fileTokens
}
