package models

// DefaultCatalog returns a Catalog pre-populated with the model families
// this server ships capability metadata for out of the box. Deployments
// extend it with Custom-provider entries loaded from a JSON/YAML registry
// file at startup (see internal/zenflow/config).
func DefaultCatalog() *Catalog {
	c := NewCatalog()

	c.Register(Capability{
		Name:                  "gemini-2.5-pro",
		FriendlyName:          "Gemini 2.5 Pro",
		Aliases:               []string{"pro", "gemini-pro"},
		ProviderKind:          Google,
		Category:              ExtendedReasoning,
		ContextWindowTokens:   1_048_576,
		MaxOutputTokens:       65_536,
		MaxThinkingTokens:     32_768,
		SupportsThinkingMode:  true,
		SupportsTemperature:   true,
		TemperatureRange:      &TemperatureRange{Min: 0, Max: 2},
		TemperatureConstraint: TemperatureConstraintRange,
		SupportsImages:        true,
		MaxImageSizeMB:        20,
		SupportsJSONMode:      true,
		SupportsSystemPrompt:  true,
		Description:           "Google's most capable reasoning model.",
	})
	c.Register(Capability{
		Name:                  "gemini-2.5-flash",
		FriendlyName:          "Gemini 2.5 Flash",
		Aliases:               []string{"flash", "gemini-flash"},
		ProviderKind:          Google,
		Category:              FastResponse,
		ContextWindowTokens:   1_048_576,
		MaxOutputTokens:       65_536,
		MaxThinkingTokens:     24_576,
		SupportsThinkingMode:  true,
		SupportsTemperature:   true,
		TemperatureRange:      &TemperatureRange{Min: 0, Max: 2},
		TemperatureConstraint: TemperatureConstraintRange,
		SupportsImages:        true,
		MaxImageSizeMB:        20,
		SupportsJSONMode:      true,
		SupportsSystemPrompt:  true,
		Description:           "Google's fast, low-latency model.",
	})
	c.Register(Capability{
		Name:                  "gpt-4o",
		FriendlyName:          "GPT-4o",
		Aliases:               []string{"4o"},
		ProviderKind:          OpenAI,
		Category:              Balanced,
		ContextWindowTokens:   128_000,
		MaxOutputTokens:       16_384,
		SupportsThinkingMode:  false,
		SupportsTemperature:   true,
		TemperatureRange:      &TemperatureRange{Min: 0, Max: 2},
		TemperatureConstraint: TemperatureConstraintRange,
		SupportsImages:        true,
		MaxImageSizeMB:        20,
		SupportsJSONMode:      true,
		SupportsSystemPrompt:  true,
		Description:           "OpenAI's balanced multimodal flagship.",
	})
	c.Register(Capability{
		Name:                  "gpt-4o-mini",
		FriendlyName:          "GPT-4o mini",
		Aliases:               []string{"4o-mini", "mini"},
		ProviderKind:          OpenAI,
		Category:              FastResponse,
		ContextWindowTokens:   128_000,
		MaxOutputTokens:       16_384,
		SupportsThinkingMode:  false,
		SupportsTemperature:   true,
		TemperatureRange:      &TemperatureRange{Min: 0, Max: 2},
		TemperatureConstraint: TemperatureConstraintRange,
		SupportsImages:        true,
		MaxImageSizeMB:        20,
		SupportsJSONMode:      true,
		SupportsSystemPrompt:  true,
		Description:           "OpenAI's low-cost fast model.",
	})
	c.Register(Capability{
		Name:                  "o3",
		FriendlyName:          "o3",
		Aliases:               nil,
		ProviderKind:          OpenAI,
		Category:              ExtendedReasoning,
		ContextWindowTokens:   200_000,
		MaxOutputTokens:       100_000,
		MaxThinkingTokens:     100_000,
		SupportsThinkingMode:  true,
		SupportsTemperature:   true,
		TemperatureRange:      &TemperatureRange{Min: 1, Max: 1},
		TemperatureConstraint: TemperatureConstraintFixed,
		SupportsImages:        true,
		MaxImageSizeMB:        20,
		SupportsJSONMode:      true,
		SupportsSystemPrompt:  true,
		Description:           "OpenAI reasoning model; fixed temperature=1.",
	})
	c.Register(Capability{
		Name:                  "grok-4",
		FriendlyName:          "Grok 4",
		Aliases:               []string{"grok"},
		ProviderKind:          XAI,
		Category:              Balanced,
		ContextWindowTokens:   256_000,
		MaxOutputTokens:       32_768,
		SupportsThinkingMode:  false,
		SupportsTemperature:   true,
		TemperatureRange:      &TemperatureRange{Min: 0, Max: 2},
		TemperatureConstraint: TemperatureConstraintRange,
		SupportsImages:        true,
		MaxImageSizeMB:        20,
		SupportsJSONMode:      true,
		SupportsSystemPrompt:  true,
		Description:           "X.AI's flagship model.",
	})

	return c
}
