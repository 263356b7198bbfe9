// Package config bootstraps the server's environment-driven
// configuration: which providers are enabled, model allow-lists,
// conversation store sizing, and logging verbosity. Unlike the teacher's
// YAML-file configuration, this server is driven by env vars per the
// external-interface contract (MCP hosts configure subprocesses via
// environment, not a sidecar file) — YAML is reserved for the optional
// custom-provider capability registry.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/zenflow/zenflow-mcp/internal/zenflow/logging"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/models"
)

// ProviderEnv is one provider's resolved credentials/endpoint, populated
// only when its required env vars are present.
type ProviderEnv struct {
	Enabled bool
	APIKey  string
	Host    string // DIAL host / Custom base URL
	Extra   string // DIAL API version / Custom model name
}

// Config is everything the process needs at startup.
type Config struct {
	Google     ProviderEnv
	OpenAI     ProviderEnv
	XAI        ProviderEnv
	OpenRouter ProviderEnv
	DIAL       ProviderEnv
	Custom     ProviderEnv

	DefaultModel string
	Locale       string

	AllowedModels map[models.ProviderKind][]string

	ConversationTimeout time.Duration
	MaxConversationTurns int

	LogLevel logging.Level
}

// Load reads a `.env` file (if present, ignoring a missing file) and then
// the process environment, mirroring the teacher's env-override pattern
// in agent/config_loader.go but environment-first rather than YAML-first.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Google:     providerFromEnv("GEMINI_API_KEY", "GOOGLE_API_KEY", "", ""),
		OpenAI:     providerFromEnv("OPENAI_API_KEY", "", "", ""),
		XAI:        providerFromEnv("XAI_API_KEY", "", "", ""),
		OpenRouter: providerFromEnv("OPENROUTER_API_KEY", "", "", ""),
		DIAL:       providerFromEnv("DIAL_API_KEY", "", "DIAL_API_HOST", "DIAL_API_VERSION"),
		Custom:     providerFromEnv("CUSTOM_API_KEY", "", "CUSTOM_API_URL", "CUSTOM_MODEL_NAME"),

		DefaultModel: envOr("DEFAULT_MODEL", "auto"),
		Locale:       os.Getenv("LOCALE"),

		AllowedModels: map[models.ProviderKind][]string{
			models.Google:     allowedList("GOOGLE_ALLOWED_MODELS"),
			models.OpenAI:     allowedList("OPENAI_ALLOWED_MODELS"),
			models.XAI:        allowedList("XAI_ALLOWED_MODELS"),
			models.OpenRouter: allowedList("OPENROUTER_ALLOWED_MODELS"),
			models.DIAL:       allowedList("DIAL_ALLOWED_MODELS"),
			models.Custom:     allowedList("CUSTOM_ALLOWED_MODELS"),
		},

		ConversationTimeout:  envOrDurationHours("CONVERSATION_TIMEOUT_HOURS", 3),
		MaxConversationTurns: envOrInt("MAX_CONVERSATION_TURNS", 50),

		LogLevel: logging.ParseLevel(os.Getenv("LOG_LEVEL")),
	}
	return cfg
}

func providerFromEnv(primaryKeyVar, fallbackKeyVar, hostVar, extraVar string) ProviderEnv {
	key := os.Getenv(primaryKeyVar)
	if key == "" && fallbackKeyVar != "" {
		key = os.Getenv(fallbackKeyVar)
	}
	if key == "" {
		return ProviderEnv{}
	}
	env := ProviderEnv{Enabled: true, APIKey: key}
	if hostVar != "" {
		env.Host = os.Getenv(hostVar)
	}
	if extraVar != "" {
		env.Extra = os.Getenv(extraVar)
	}
	return env
}

func allowedList(envVar string) []string {
	raw := os.Getenv(envVar)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envOr(envVar, fallback string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return fallback
}

func envOrInt(envVar string, fallback int) int {
	if v := os.Getenv(envVar); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envOrDurationHours(envVar string, fallbackHours int) time.Duration {
	hours := envOrInt(envVar, fallbackHours)
	return time.Duration(hours) * time.Hour
}
