// Command zenflowmcp runs the MCP server: it loads configuration from
// the environment, wires every enabled LLM provider into the registry,
// and registers the full tool surface before serving the stdio
// transport until it closes.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/zenflow/zenflow-mcp/internal/zenflow/appcache"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/config"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/convo"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/logging"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/models"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/providers"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/registry"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/server"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/tools"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/workflow"
)

func main() {
	cfg := config.Load()
	logger := logging.NewStdLogger(cfg.LogLevel)
	ctx := context.Background()

	catalog := models.DefaultCatalog()
	if path := os.Getenv("CUSTOM_CATALOG_FILE"); path != "" {
		if err := config.LoadCustomCatalog(path, models.Custom, catalog); err != nil {
			logger.Warn(ctx, "failed to load custom catalog file", logging.F("path", path), logging.F("error", err.Error()))
		}
	}

	reg := registry.New(catalog)
	registerProviders(ctx, reg, catalog, cfg, logger)
	for kind, allowed := range cfg.AllowedModels {
		if len(allowed) > 0 {
			reg.SetRestrictions(kind, allowed)
		}
	}

	modelsCache := appcache.New()
	for _, kind := range []models.ProviderKind{models.OpenRouter, models.Custom} {
		if err := reg.RefreshRemoteModels(ctx, kind, modelsCache); err != nil {
			logger.Warn(ctx, "failed to refresh remote model listing", logging.F("provider", string(kind)), logging.F("error", err.Error()))
		}
	}

	store := convo.New(convo.Config{
		TTL:      cfg.ConversationTimeout,
		MaxTurns: cfg.MaxConversationTurns,
	})
	engine := workflow.NewEngine(store, reg)

	srv := server.New(logger)
	deps := tools.Deps{Registry: reg, Store: store, Engine: engine, Locale: cfg.Locale}
	if err := tools.RegisterAll(srv, deps); err != nil {
		log.Fatalf("zenflowmcp: failed to register tools: %v", err)
	}

	logger.Info(ctx, "zenflowmcp starting", logging.F("default_model", cfg.DefaultModel))
	if err := srv.Serve(); err != nil {
		log.Fatalf("zenflowmcp: server exited: %v", err)
	}
}

// registerProviders constructs one adapter per enabled provider and
// registers it against reg. A provider whose client construction fails
// (NewGoogle is the only constructor here that can fail) is logged and skipped rather than
// aborting startup, so a misconfigured provider doesn't take down every
// other one.
func registerProviders(ctx context.Context, reg *registry.Registry, catalog *models.Catalog, cfg config.Config, logger logging.Logger) {
	if cfg.Google.Enabled {
		g, err := providers.NewGoogle(ctx, cfg.Google.APIKey, catalog)
		if err != nil {
			logger.Error(ctx, "failed to construct google provider", logging.F("error", err.Error()))
		} else {
			reg.Register(models.Google, g)
		}
	}
	if cfg.OpenAI.Enabled {
		reg.Register(models.OpenAI, providers.NewOpenAICompatible(models.OpenAI, cfg.OpenAI.APIKey, "", catalog))
	}
	if cfg.XAI.Enabled {
		reg.Register(models.XAI, providers.NewOpenAICompatible(models.XAI, cfg.XAI.APIKey, "https://api.x.ai/v1", catalog))
	}
	if cfg.OpenRouter.Enabled {
		reg.Register(models.OpenRouter, providers.NewOpenAICompatible(models.OpenRouter, cfg.OpenRouter.APIKey, "https://openrouter.ai/api/v1", catalog))
	}
	if cfg.DIAL.Enabled {
		reg.Register(models.DIAL, providers.NewDIAL(cfg.DIAL.APIKey, cfg.DIAL.Host, cfg.DIAL.Extra, catalog))
	}
	if cfg.Custom.Enabled {
		if cfg.Custom.Host == "" {
			logger.Warn(ctx, "CUSTOM_API_KEY set without CUSTOM_API_URL; skipping custom provider")
		} else {
			reg.Register(models.Custom, providers.NewOpenAICompatible(models.Custom, cfg.Custom.APIKey, cfg.Custom.Host, catalog))
		}
	}
	if len(reg.AvailableModels()) == 0 {
		fmt.Fprintln(os.Stderr, "zenflowmcp: warning: no provider is enabled; every model-backed tool call will fail")
	}
}
