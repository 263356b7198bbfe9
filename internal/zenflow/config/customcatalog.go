package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zenflow/zenflow-mcp/internal/zenflow/models"
)

// customModelEntry mirrors one entry in a custom/OpenRouter capability
// registry file, the YAML analog of the teacher's AgentConfig load path
// in agent/config_loader.go.
type customModelEntry struct {
	Name                 string  `yaml:"name"`
	FriendlyName         string  `yaml:"friendly_name"`
	Aliases              []string `yaml:"aliases"`
	ContextWindowTokens  int     `yaml:"context_window_tokens"`
	MaxOutputTokens      int     `yaml:"max_output_tokens"`
	SupportsImages       bool    `yaml:"supports_images"`
	SupportsJSONMode     bool    `yaml:"supports_json_mode"`
	SupportsThinkingMode bool    `yaml:"supports_thinking_mode"`
	Description          string  `yaml:"description"`
}

type customCatalogFile struct {
	Models []customModelEntry `yaml:"models"`
}

// LoadCustomCatalog reads a YAML file describing extra model capabilities
// (for Custom and OpenRouter providers, whose model sets are deployment-
// specific) and registers them against kind in catalog.
func LoadCustomCatalog(path string, kind models.ProviderKind, catalog *models.Catalog) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read custom catalog file: %w", err)
	}
	var file customCatalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse custom catalog YAML: %w", err)
	}
	for _, m := range file.Models {
		catalog.Register(models.Capability{
			Name:                  m.Name,
			FriendlyName:          m.FriendlyName,
			Aliases:               m.Aliases,
			ProviderKind:          kind,
			Category:              models.Balanced,
			ContextWindowTokens:   m.ContextWindowTokens,
			MaxOutputTokens:       m.MaxOutputTokens,
			SupportsThinkingMode:  m.SupportsThinkingMode,
			SupportsTemperature:   true,
			TemperatureRange:      &models.TemperatureRange{Min: 0, Max: 2},
			TemperatureConstraint: models.TemperatureConstraintRange,
			SupportsImages:        m.SupportsImages,
			SupportsJSONMode:      m.SupportsJSONMode,
			SupportsSystemPrompt:  true,
			Description:           m.Description,
		})
	}
	return nil
}
