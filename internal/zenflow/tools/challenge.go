package tools

import (
	"context"
	"fmt"

	"github.com/zenflow/zenflow-mcp/internal/zenflow/server"
)

// ChallengeArgs is the challenge tool's input. Unlike every other tool,
// challenge never calls a provider (spec section 4.5's requires_model()
// == false carve-out): it exists to make the calling agent itself think
// critically, by wrapping the statement in a skeptical framing instruction
// and handing that back for the agent's own next turn.
type ChallengeArgs struct {
	Statement string `json:"statement" jsonschema:"required,description=The claim or statement to critically evaluate."`
}

// RegisterChallenge installs the challenge tool.
func RegisterChallenge(s *server.Server, deps Deps) error {
	return server.Register(s, "challenge", "Wraps a statement in a critical-thinking framing instead of simply agreeing with it. Calls no model.",
		func(ctx context.Context, args ChallengeArgs) (server.Envelope, error) {
			content := fmt.Sprintf("%s%s", challengePrefix, args.Statement)
			return server.Success(content), nil
		})
}
