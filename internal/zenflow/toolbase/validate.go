package toolbase

import (
	"fmt"
	"strings"

	"github.com/zenflow/zenflow-mcp/internal/zenflow/fileio"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/models"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/zerr"
)

// DefaultPromptSizeThreshold is the character count above which a tool
// asks the caller to resubmit the prompt as a file rather than inline text.
const DefaultPromptSizeThreshold = 50000

// ValidateAbsolutePaths rejects any path in paths that is not absolute.
// Used for files, images, and any other filesystem-reference field.
func ValidateAbsolutePaths(paths []string) error {
	for _, p := range paths {
		if !fileio.IsAbsolute(p) {
			return zerr.Validation(fmt.Sprintf("All file paths must be absolute. Received: %s", p))
		}
	}
	return nil
}

// ValidateImagePaths rejects any non-"data:" image reference that is not
// an absolute path, the same hard check ValidateAbsolutePaths applies to
// files/relevant_files/files_checked. Unlike the capability-support check
// in ValidateImages, a malformed path is a caller error, not something the
// model can gracefully degrade around.
func ValidateImagePaths(images []string) error {
	for _, img := range images {
		if strings.HasPrefix(img, "data:") {
			continue
		}
		if !fileio.IsAbsolute(img) {
			return zerr.Validation(fmt.Sprintf("All file paths must be absolute. Received: %s", img))
		}
	}
	return nil
}

// ValidateImages checks images against a capability's image support. It
// returns warnings for unsupported images rather than erroring outright,
// mirroring the model's own graceful-degradation behavior: a tool call
// with images against a non-multimodal model still proceeds text-only.
// Callers must run ValidateImagePaths first; this function assumes paths
// are already well-formed.
func ValidateImages(images []string, cap models.Capability) (warnings []string) {
	if len(images) == 0 {
		return nil
	}
	if !cap.SupportsImages {
		return []string{fmt.Sprintf("model %s does not support images; %d image(s) ignored", cap.Name, len(images))}
	}
	return nil
}

// ValidateTemperature clamps or rejects temperature against cap's
// constraint kind, returning the effective value to use plus any warning
// explaining an override.
func ValidateTemperature(requested float64, hasRequested bool, cap models.Capability) (effective float64, warning string) {
	if !hasRequested {
		return defaultTemperature(cap), ""
	}
	if cap.TemperatureRange == nil {
		return requested, ""
	}
	switch cap.TemperatureConstraint {
	case models.TemperatureConstraintFixed:
		if requested != cap.TemperatureRange.Min {
			return cap.TemperatureRange.Min, fmt.Sprintf(
				"model %s only supports a fixed temperature of %.2f; requested %.2f ignored",
				cap.Name, cap.TemperatureRange.Min, requested)
		}
		return requested, ""
	case models.TemperatureConstraintRange:
		if requested < cap.TemperatureRange.Min {
			return cap.TemperatureRange.Min, fmt.Sprintf("temperature %.2f below model minimum, clamped to %.2f", requested, cap.TemperatureRange.Min)
		}
		if requested > cap.TemperatureRange.Max {
			return cap.TemperatureRange.Max, fmt.Sprintf("temperature %.2f above model maximum, clamped to %.2f", requested, cap.TemperatureRange.Max)
		}
		return requested, ""
	default:
		return requested, ""
	}
}

func defaultTemperature(cap models.Capability) float64 {
	if cap.TemperatureConstraint == models.TemperatureConstraintFixed && cap.TemperatureRange != nil {
		return cap.TemperatureRange.Min
	}
	return 0.5
}

// PromptTooLarge is returned by CheckPromptSize when the caller should
// resubmit the prompt via a prompt.txt/prompt.md file instead.
type PromptTooLarge struct {
	CharCount int
	Threshold int
}

func (e *PromptTooLarge) Error() string {
	return fmt.Sprintf("prompt is %d characters, over the %d threshold; resubmit as a prompt.txt/prompt.md file", e.CharCount, e.Threshold)
}

// RequiresFilePrompt reports whether err is a PromptTooLarge, for callers
// that want to render the requires_file_prompt envelope without a type
// assertion of their own.
func RequiresFilePrompt(err error) bool {
	_, ok := err.(*PromptTooLarge)
	return ok
}

// CheckPromptSize enforces DefaultPromptSizeThreshold on prompt text.
func CheckPromptSize(prompt string) error {
	if len(prompt) > DefaultPromptSizeThreshold {
		return &PromptTooLarge{CharCount: len(prompt), Threshold: DefaultPromptSizeThreshold}
	}
	return nil
}

const (
	promptFileBase1 = "prompt.txt"
	promptFileBase2 = "prompt.md"
)

// HandlePromptFile looks for a prompt.txt or prompt.md entry in files. If
// found, its content replaces/augments the inline prompt and it is
// removed from the file list returned to the caller (it has already been
// consumed as the prompt, not as attached reference material).
func HandlePromptFile(files []string) (promptFromFile string, remaining []string, found bool, err error) {
	remaining = make([]string, 0, len(files))
	for _, p := range files {
		base := p
		if idx := strings.LastIndexAny(p, "/\\"); idx >= 0 {
			base = p[idx+1:]
		}
		if !found && (base == promptFileBase1 || base == promptFileBase2) {
			text, _, readErr := fileio.ReadFile(p, false)
			if readErr != nil {
				return "", nil, false, readErr
			}
			promptFromFile = text
			found = true
			continue
		}
		remaining = append(remaining, p)
	}
	return promptFromFile, remaining, found, nil
}
