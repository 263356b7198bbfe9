package tools

import (
	"fmt"

	"github.com/zenflow/zenflow-mcp/internal/zenflow/server"
)

// RegisterAll installs every tool this server exposes against s, bailing
// out on the first registration failure so a name collision or transport
// error surfaces at startup rather than silently dropping a tool.
func RegisterAll(s *server.Server, deps Deps) error {
	registrars := []func(*server.Server, Deps) error{
		RegisterChat,
		RegisterDeepThink,
		RegisterCodeReview,
		RegisterDebug,
		RegisterRefactor,
		RegisterSecaudit,
		RegisterConsensus,
		RegisterPlanner,
		RegisterTracer,
		RegisterDocgen,
		RegisterAnalyze,
		RegisterPrecommit,
		RegisterTestgen,
		RegisterChallenge,
	}
	for _, register := range registrars {
		if err := register(s, deps); err != nil {
			return fmt.Errorf("tools: failed to register tool: %w", err)
		}
	}
	return nil
}
