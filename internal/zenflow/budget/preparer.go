// Package budget implements the token budgeter / file-content preparer:
// it dedups candidate files against whatever the conversation history
// already embedded, then reads the remainder in priority order until the
// file budget is exhausted.
package budget

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/zenflow/zenflow-mcp/internal/zenflow/convo"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/fileio"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/history"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/models"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/zerr"
)

// Result is the output of PrepareFileContent.
type Result struct {
	Text             string
	ActuallyIncluded []string
}

// PrepareFileContent implements C8. thread may be nil when continuationID
// does not resolve to a live thread, in which case no history-file dedup
// occurs. historyFileTokensUsed is the portion of the file budget the
// history builder already spent (0 when there was no history, or the
// caller is not chaining history.Build's Result into this call).
func PrepareFileContent(paths []string, store *convo.Store, thread *convo.Thread, cap models.Capability, historyFileTokensUsed int, label string) (Result, error) {
	for _, p := range paths {
		if !fileio.IsAbsolute(p) {
			return Result{}, zerr.Validation(fmt.Sprintf("All file paths must be absolute. Received: %s", p))
		}
	}

	var historyFiles map[string]bool
	var latestUserText string
	if thread != nil && store != nil {
		historyFiles = make(map[string]bool)
		for _, p := range store.GetConversationFileList(thread) {
			historyFiles[p] = true
		}
		latestUserText = latestUserTurnText(thread)
	}

	var candidates []string
	for _, p := range paths {
		if historyFiles != nil && historyFiles[p] {
			continue
		}
		candidates = append(candidates, p)
	}
	if latestUserText != "" {
		candidates = orderByRelevance(candidates, latestUserText)
	}

	fileBudget := history.ComputeBudget(cap).File - historyFileTokensUsed
	if fileBudget < 0 {
		fileBudget = 0
	}

	text, included, err := fileio.ReadFiles(candidates, fileBudget, true)
	if err != nil {
		return Result{}, err
	}

	wrapped := fmt.Sprintf("--- %s ---\n%s--- end %s ---\n", label, text, label)
	return Result{Text: wrapped, ActuallyIncluded: included}, nil
}

func latestUserTurnText(thread *convo.Thread) string {
	turns := thread.Turns()
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == "user" {
			return turns[i].Content
		}
	}
	return ""
}

var wordPattern = regexp.MustCompile(`[a-zA-Z0-9_]+`)

// orderByRelevance stable-sorts candidates by cosine-similarity score
// against queryText, highest first, breaking ties by leaving the
// original relative order intact. The "document" for each candidate is
// its path (directories and basename both carry signal: a file under
// auth/ scores higher against a query mentioning "auth" than one under
// vendor/; words match whole, so "authentication" would not count), not
// its contents, since scoring doesn't read the
// file — that happens afterward, budget-gated, in fileio.ReadFiles.
func orderByRelevance(candidates []string, queryText string) []string {
	if len(candidates) < 2 {
		return candidates
	}
	queryVec, vocab := termVector(queryText, nil)
	if len(vocab) == 0 {
		return candidates
	}

	scoredPaths := make([]scoredFile, len(candidates))
	for i, p := range candidates {
		docVec, _ := termVector(filepath.ToSlash(p), vocab)
		scoredPaths[i] = scoredFile{path: p, score: cosineSimilarity(queryVec, docVec)}
	}

	sort.SliceStable(scoredPaths, func(i, j int) bool {
		return scoredPaths[i].score > scoredPaths[j].score
	})

	out := make([]string, len(scoredPaths))
	for i, s := range scoredPaths {
		out[i] = s.path
	}
	return out
}

type scoredFile struct {
	path  string
	score float64
}

// termVector builds a bag-of-words frequency vector for text. When vocab
// is non-nil, the vector is projected onto that fixed vocabulary (used
// for the candidate documents, so they share the query's dimensions);
// otherwise a fresh vocabulary is built from text's own words and
// returned alongside the vector.
func termVector(text string, vocab map[string]int) ([]float64, map[string]int) {
	words := wordPattern.FindAllString(strings.ToLower(text), -1)
	if vocab == nil {
		vocab = make(map[string]int, len(words))
		for _, w := range words {
			if _, ok := vocab[w]; !ok {
				vocab[w] = len(vocab)
			}
		}
	}
	vec := make([]float64, len(vocab))
	for _, w := range words {
		if idx, ok := vocab[w]; ok {
			vec[idx]++
		}
	}
	return vec, vocab
}

func cosineSimilarity(a, b []float64) float64 {
	normA := floats.Norm(a, 2)
	normB := floats.Norm(b, 2)
	if normA == 0 || normB == 0 {
		return 0
	}
	return floats.Dot(a, b) / (normA * normB)
}
