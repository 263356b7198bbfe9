// Package fileio implements the absolute-path-only file reader that backs
// every tool's file embedding. It never accepts relative paths and never
// truncates a file mid-stream.
package fileio

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zenflow/zenflow-mcp/internal/zenflow/tokens"
)

// ErrNotAbsolute is returned when a caller passes a relative path to a
// function that requires one.
var ErrNotAbsolute = errors.New("path is not absolute")

const lineMarkerWidth = 4

// IsAbsolute reports whether path is an absolute POSIX or Windows
// drive-rooted path.
func IsAbsolute(path string) bool {
	if filepath.IsAbs(path) {
		return true
	}
	// Windows drive-rooted paths (e.g. "C:\foo") are absolute even when
	// the host OS considers them relative, since callers may run on Linux
	// while describing a Windows workspace.
	if len(path) >= 3 && path[1] == ':' && (path[2] == '\\' || path[2] == '/') {
		return true
	}
	return false
}

// ReadFile reads a single file and returns its text (optionally prefixed
// with 1-based line-number markers) and an estimated token count. Non-
// absolute paths are a hard error; unreadable files degrade to an inline
// "<read error: reason>" marker so callers can continue processing the
// rest of a file list.
func ReadFile(path string, wantLineNumbers bool) (string, int, error) {
	if !IsAbsolute(path) {
		return "", 0, fmt.Errorf("%w: %s", ErrNotAbsolute, path)
	}

	f, err := os.Open(path)
	if err != nil {
		text := fmt.Sprintf("<read error: %s>", err.Error())
		return text, tokens.Estimate(text), nil
	}
	defer f.Close()

	if !wantLineNumbers {
		data, err := os.ReadFile(path)
		if err != nil {
			text := fmt.Sprintf("<read error: %s>", err.Error())
			return text, tokens.Estimate(text), nil
		}
		text := string(data)
		return text, tokens.Estimate(text), nil
	}

	var sb strings.Builder
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	n := 1
	for scanner.Scan() {
		fmt.Fprintf(&sb, "%*d│ %s\n", lineMarkerWidth, n, scanner.Text())
		n++
	}
	if err := scanner.Err(); err != nil {
		text := fmt.Sprintf("<read error: %s>", err.Error())
		return text, tokens.Estimate(text), nil
	}
	text := sb.String()
	return text, tokens.Estimate(text), nil
}

// StripLineMarkers removes the "{n:>4}│ " prefix from every line of text,
// restoring the content as if it had been read with wantLineNumbers=false
// (modulo a final newline the marker path adds when the file lacks one,
// and "\r" line endings the scanner strips, both of which ReadFile's
// no-marker path preserves verbatim).
func StripLineMarkers(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = stripOneMarker(l)
	}
	return strings.Join(out, "\n")
}

func stripOneMarker(line string) string {
	idx := strings.Index(line, "│ ")
	if idx < 0 || idx > lineMarkerWidth+2 {
		return line
	}
	prefix := strings.TrimLeft(line[:idx], " ")
	for _, r := range prefix {
		if r < '0' || r > '9' {
			return line
		}
	}
	if prefix == "" {
		return line
	}
	return line[idx+len("│ "):]
}

// ReadFiles concatenates the content of paths, each wrapped in a
// "=== FILE: <path> ===" / "=== END FILE ===" delimiter, stopping before
// any file whose inclusion would exceed the remaining token budget. It
// never truncates a file mid-content: a file is either included whole or
// not included at all.
func ReadFiles(paths []string, reserveTokens int, wantLineNumbers bool) (string, []string, error) {
	var sb strings.Builder
	used := 0
	included := make([]string, 0, len(paths))

	for _, p := range paths {
		if !IsAbsolute(p) {
			return "", nil, fmt.Errorf("%w: %s", ErrNotAbsolute, p)
		}
		text, _, err := ReadFile(p, wantLineNumbers)
		if err != nil {
			return "", nil, err
		}
		header := fmt.Sprintf("=== FILE: %s ===\n", p)
		footer := "=== END FILE ===\n"
		blockTokens := tokens.EstimateAll(header, text, footer)
		if used+blockTokens > reserveTokens {
			break
		}
		sb.WriteString(header)
		sb.WriteString(text)
		if !strings.HasSuffix(text, "\n") {
			sb.WriteByte('\n')
		}
		sb.WriteString(footer)
		used += blockTokens
		included = append(included, p)
	}

	return sb.String(), included, nil
}
