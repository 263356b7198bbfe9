// Package consensus implements the sequential multi-model fan-out
// orchestrator (C12): normalize stances, resolve each model to a
// provider, inject a stance-specific system prompt into a shared base
// prompt, and call every participant in input order, preserving that
// order in the response regardless of individual failures.
package consensus

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/zenflow/zenflow-mcp/internal/zenflow/convo"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/fileio"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/providers"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/registry"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/toolbase"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/zerr"
)

// Stance is the normalized position a participant model argues from.
type Stance string

const (
	StanceFor     Stance = "for"
	StanceAgainst Stance = "against"
	StanceNeutral Stance = "neutral"
)

// NormalizeStance maps synonyms to the three canonical stances.
func NormalizeStance(raw string) Stance {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "for", "support", "favor":
		return StanceFor
	case "against", "oppose", "critical":
		return StanceAgainst
	default:
		return StanceNeutral
	}
}

// ParticipantSpec is one requested model entry before resolution.
type ParticipantSpec struct {
	ModelName    string
	Stance       string // raw, normalized internally
	StancePrompt string // replaces BaseSystemPrompt's {stance_prompt} placeholder; empty uses the stance's default
}

// Request is the orchestrator's input.
type Request struct {
	Prompt           string
	BaseSystemPrompt string // must contain exactly one "{stance_prompt}" placeholder
	Participants      []ParticipantSpec
	Files            []string
	FocusAreas       []string
	ContinuationID   string

	// DuplicateCap bounds how many participants may share the same
	// (model, stance) pair; 0 means the spec default of 2.
	DuplicateCap int
}

// ParticipantResult is one participant's outcome, in input order.
type ParticipantResult struct {
	ModelName string
	Stance    Stance
	Content   string
	Err       error
}

// Response is the orchestrator's output envelope.
type Response struct {
	Status        string // "consensus_success" | "consensus_failed"
	ModelsUsed    []string
	ModelsSkipped []string
	ModelsErrored []string
	Responses     []ParticipantResult
	NextSteps     string
}

// Deps bundles the shared infrastructure the orchestrator runs against.
type Deps struct {
	Registry *registry.Registry
	Store    *convo.Store
}

const defaultDuplicateCap = 2

// Run executes the full consensus flow described in spec section 4.12.
func Run(ctx context.Context, deps Deps, req Request) (Response, error) {
	if strings.Count(req.BaseSystemPrompt, "{stance_prompt}") != 1 {
		return Response{}, zerr.Validation("base system prompt must contain exactly one {stance_prompt} placeholder")
	}

	cap := req.DuplicateCap
	if cap <= 0 {
		cap = defaultDuplicateCap
	}

	var thread *convo.Thread
	if req.ContinuationID != "" {
		thread = deps.Store.GetThread(req.ContinuationID)
	}

	type resolved struct {
		spec     ParticipantSpec
		stance   Stance
		skip     bool
		skipWhy  string
	}
	seenPairs := map[string]int{}
	entries := make([]resolved, 0, len(req.Participants))
	for _, p := range req.Participants {
		stance := NormalizeStance(p.Stance)
		key := p.ModelName + "|" + string(stance)
		seenPairs[key]++
		if seenPairs[key] > cap {
			entries = append(entries, resolved{spec: p, stance: stance, skip: true,
				skipWhy: fmt.Sprintf("duplicate (%s, %s) pair beyond cap of %d", p.ModelName, stance, cap)})
			continue
		}
		entries = append(entries, resolved{spec: p, stance: stance})
	}

	basePrompt, err := buildBasePrompt(deps, req, thread)
	if err != nil {
		return Response{}, err
	}

	var (
		used, skipped, errored []string
		results                []ParticipantResult
	)

	for _, e := range entries {
		if e.skip {
			skipped = append(skipped, e.spec.ModelName)
			results = append(results, ParticipantResult{ModelName: e.spec.ModelName, Stance: e.stance, Err: fmt.Errorf(e.skipWhy)})
			continue
		}

		provider, kind, ok := deps.Registry.GetProviderForModel(e.spec.ModelName)
		if !ok {
			errored = append(errored, e.spec.ModelName)
			results = append(results, ParticipantResult{ModelName: e.spec.ModelName, Stance: e.stance, Err: zerr.ModelUnavailable(e.spec.ModelName, nil)})
			continue
		}

		stancePrompt := e.spec.StancePrompt
		if stancePrompt == "" {
			stancePrompt = defaultStancePrompt(e.stance)
		}
		systemPrompt := strings.Replace(req.BaseSystemPrompt, "{stance_prompt}", stancePrompt, 1)

		if waitErr := deps.Registry.Wait(ctx, kind); waitErr != nil {
			errored = append(errored, e.spec.ModelName)
			results = append(results, ParticipantResult{ModelName: e.spec.ModelName, Stance: e.stance, Err: waitErr})
			continue
		}

		start := time.Now()
		resp, genErr := provider.Generate(ctx, providers.GenerationRequest{
			Prompt:       basePrompt,
			ModelName:    e.spec.ModelName,
			SystemPrompt: systemPrompt,
		})
		deps.Registry.RecordCall(kind, time.Since(start), genErr)
		if genErr != nil {
			errored = append(errored, e.spec.ModelName)
			results = append(results, ParticipantResult{ModelName: e.spec.ModelName, Stance: e.stance, Err: genErr})
			continue
		}

		used = append(used, e.spec.ModelName)
		results = append(results, ParticipantResult{ModelName: e.spec.ModelName, Stance: e.stance, Content: resp.Content})
	}

	if len(used) == 0 {
		return Response{
			Status:        "consensus_failed",
			ModelsUsed:    used,
			ModelsSkipped: skipped,
			ModelsErrored: errored,
			Responses:     results,
		}, zerr.ConsensusAllFailed()
	}

	return Response{
		Status:        "consensus_success",
		ModelsUsed:    used,
		ModelsSkipped: skipped,
		ModelsErrored: errored,
		Responses:     results,
		NextSteps:     "Synthesize the participant responses into a single recommendation, noting any disagreement.",
	}, nil
}

// consensusFileBudget is a fixed, generous token budget for files embedded
// in the shared base prompt: unlike the simple-tool and workflow paths,
// consensus has no single target model whose context window should drive
// the split, since participants may have wildly different capacities.
const consensusFileBudget = 20000

func buildBasePrompt(deps Deps, req Request, thread *convo.Thread) (string, error) {
	out := req.Prompt
	if len(req.FocusAreas) > 0 {
		out = fmt.Sprintf("Focus areas: %s\n\n%s", strings.Join(req.FocusAreas, ", "), out)
	}
	if thread != nil {
		var sb strings.Builder
		for _, t := range deps.Store.AllTurns(thread) {
			fmt.Fprintf(&sb, "--- %s turn ---\n%s\n", t.Role, t.Content)
		}
		if sb.Len() > 0 {
			out = fmt.Sprintf("--- conversation history ---\n%s--- end history ---\n\n%s", sb.String(), out)
		}
	}
	if len(req.Files) > 0 {
		if err := toolbase.ValidateAbsolutePaths(req.Files); err != nil {
			return "", err
		}
		text, _, err := fileio.ReadFiles(req.Files, consensusFileBudget, true)
		if err != nil {
			return "", err
		}
		out = fmt.Sprintf("--- referenced files ---\n%s--- end referenced files ---\n\n%s", text, out)
	}
	return out, nil
}

func defaultStancePrompt(s Stance) string {
	switch s {
	case StanceFor:
		return "Argue in favor of the proposal, surfacing its strongest supporting points."
	case StanceAgainst:
		return "Argue against the proposal, surfacing its strongest risks and weaknesses."
	default:
		return "Give a balanced, neutral assessment of the proposal."
	}
}
