package toolbase

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zenflow/zenflow-mcp/internal/zenflow/models"
)

func TestValidateAbsolutePathsRejectsRelative(t *testing.T) {
	if err := ValidateAbsolutePaths([]string{"relative/path.go"}); err == nil {
		t.Fatal("expected error for relative path")
	}
	if err := ValidateAbsolutePaths([]string{"/abs/path.go"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateImagesWarnsWhenUnsupported(t *testing.T) {
	cap := models.Capability{Name: "text-only", SupportsImages: false}
	warnings := ValidateImages([]string{"/abs/img.png"}, cap)
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(warnings))
	}
}

func TestValidateImagesAllowsDataURL(t *testing.T) {
	cap := models.Capability{Name: "vision", SupportsImages: true}
	warnings := ValidateImages([]string{"data:image/png;base64,abc"}, cap)
	if len(warnings) != 0 {
		t.Fatalf("expected no warnings for data URL, got %v", warnings)
	}
}

func TestValidateImagesFlagsRelativePath(t *testing.T) {
	err := ValidateImagePaths([]string{"relative.png"})
	if err == nil {
		t.Fatalf("expected an error for relative image path, got nil")
	}
}

func TestValidateTemperatureFixedOverride(t *testing.T) {
	cap := models.Capability{
		Name:                  "o3",
		TemperatureConstraint: models.TemperatureConstraintFixed,
		TemperatureRange:      &models.TemperatureRange{Min: 1, Max: 1},
	}
	eff, warn := ValidateTemperature(0.7, true, cap)
	if eff != 1 {
		t.Fatalf("expected effective temperature 1, got %v", eff)
	}
	if warn == "" {
		t.Fatal("expected override warning")
	}
}

func TestValidateTemperatureRangeClamps(t *testing.T) {
	cap := models.Capability{
		TemperatureConstraint: models.TemperatureConstraintRange,
		TemperatureRange:      &models.TemperatureRange{Min: 0, Max: 2},
	}
	eff, warn := ValidateTemperature(5, true, cap)
	if eff != 2 {
		t.Fatalf("expected clamp to max 2, got %v", eff)
	}
	if warn == "" {
		t.Fatal("expected clamp warning")
	}
}

func TestValidateTemperatureDefaultsWhenUnset(t *testing.T) {
	cap := models.Capability{
		TemperatureConstraint: models.TemperatureConstraintFixed,
		TemperatureRange:      &models.TemperatureRange{Min: 1, Max: 1},
	}
	eff, warn := ValidateTemperature(0, false, cap)
	if eff != 1 || warn != "" {
		t.Fatalf("expected silent default of 1, got eff=%v warn=%q", eff, warn)
	}
}

func TestCheckPromptSizeThreshold(t *testing.T) {
	short := strings.Repeat("a", 100)
	if err := CheckPromptSize(short); err != nil {
		t.Fatalf("unexpected error for short prompt: %v", err)
	}
	long := strings.Repeat("a", DefaultPromptSizeThreshold+1)
	err := CheckPromptSize(long)
	if err == nil {
		t.Fatal("expected error for oversized prompt")
	}
	if !RequiresFilePrompt(err) {
		t.Fatal("expected RequiresFilePrompt to recognize the error")
	}
}

func TestHandlePromptFileExtractsAndRemoves(t *testing.T) {
	dir := t.TempDir()
	promptPath := filepath.Join(dir, "prompt.txt")
	otherPath := filepath.Join(dir, "other.go")
	if err := os.WriteFile(promptPath, []byte("the real prompt"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(otherPath, []byte("package other"), 0o644); err != nil {
		t.Fatal(err)
	}

	prompt, remaining, found, err := HandlePromptFile([]string{promptPath, otherPath})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found {
		t.Fatal("expected prompt file to be found")
	}
	if prompt != "the real prompt" {
		t.Fatalf("unexpected prompt content: %q", prompt)
	}
	if len(remaining) != 1 || remaining[0] != otherPath {
		t.Fatalf("expected only other.go to remain, got %v", remaining)
	}
}

func TestHandlePromptFileNotFound(t *testing.T) {
	_, remaining, found, err := HandlePromptFile([]string{"/abs/a.go", "/abs/b.go"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Fatal("did not expect a prompt file to be found")
	}
	if len(remaining) != 2 {
		t.Fatalf("expected both files to remain, got %v", remaining)
	}
}
