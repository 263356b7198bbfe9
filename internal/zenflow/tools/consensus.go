package tools

import (
	"context"

	"github.com/zenflow/zenflow-mcp/internal/zenflow/consensus"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/server"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/zerr"
)

// ConsensusParticipant is one requested model entry in the consensus
// tool's input.
type ConsensusParticipant struct {
	Model        string `json:"model" jsonschema:"required,description=Model name to query."`
	Stance       string `json:"stance,omitempty" jsonschema:"description=Debating posture.,enum=for,enum=against,enum=neutral,enum=support,enum=oppose"`
	StancePrompt string `json:"stance_prompt,omitempty" jsonschema:"description=Override the default stance framing for this participant."`
}

// ConsensusArgs is the consensus tool's input.
type ConsensusArgs struct {
	Prompt         string                  `json:"prompt" jsonschema:"required,description=The proposal or question to put to the panel."`
	Models         []ConsensusParticipant  `json:"models" jsonschema:"required,description=Panel of models to query\\, in the order responses should be reported."`
	FocusAreas     []string                `json:"focus_areas,omitempty" jsonschema:"description=Specific aspects participants should weigh in on."`
	Files          []string                `json:"files,omitempty" jsonschema:"description=Absolute paths of files to attach to the shared base prompt."`
	ContinuationID string                  `json:"continuation_id,omitempty" jsonschema:"description=UUID of a prior thread to continue."`
}

// RegisterConsensus installs the consensus tool.
func RegisterConsensus(s *server.Server, deps Deps) error {
	return server.Register(s, "consensus", "Sequential multi-model consensus fan-out with per-model stance steering.",
		func(ctx context.Context, args ConsensusArgs) (server.Envelope, error) {
			participants := make([]consensus.ParticipantSpec, 0, len(args.Models))
			for _, m := range args.Models {
				participants = append(participants, consensus.ParticipantSpec{
					ModelName:    m.Model,
					Stance:       m.Stance,
					StancePrompt: m.StancePrompt,
				})
			}
			resp, err := consensus.Run(ctx, consensus.Deps{Registry: deps.Registry, Store: deps.Store}, consensus.Request{
				Prompt:           args.Prompt,
				BaseSystemPrompt: buildSystemPrompt(consensusBaseSystemPrompt, deps.Locale),
				Participants:     participants,
				Files:            args.Files,
				FocusAreas:       args.FocusAreas,
				ContinuationID:   args.ContinuationID,
			})
			if err != nil {
				if zerr.Is(err, zerr.CodeConsensusAllFailed) {
					return consensusEnvelope(resp), nil
				}
				return toolError(err)
			}
			return consensusEnvelope(resp), nil
		})
}
