package contextpack

import (
	"context"
	"fmt"
)

// DurableRecallHit is one durable memory returned by a DurableRecaller.
type DurableRecallHit struct {
	Content string
	Score   float32
}

// DurableRecaller looks up durable (validated, non-quarantined) memories
// by type and query text. The memory service implements this; Service
// accepts nil when no memory store is wired yet, skipping guardrails.
type DurableRecaller interface {
	RecallDurable(ctx context.Context, projectName, query, memType string, limit int) ([]DurableRecallHit, error)
}

// guardrailScoreFloor is the minimum recall score a durable hit needs to
// be surfaced as a guardrail; weaker matches are noise, not guidance.
const guardrailScoreFloor = 0.5

// guardrailContentCap bounds how much of each guardrail hit's content is
// kept, so a handful of verbose decisions can't crowd out retrieved code.
const guardrailContentCap = 200

const guardrailADRLimit = 3
const guardrailTestLimit = 3

func (s *Service) buildGuardrails(ctx context.Context, req Request) (Guardrails, error) {
	var g Guardrails
	if s.memory == nil {
		return g, nil
	}

	if req.IncludeADRs {
		hits, err := s.memory.RecallDurable(ctx, req.ProjectName, "decision "+req.Query, "decision", guardrailADRLimit)
		if err != nil {
			return g, fmt.Errorf("recalling decisions: %w", err)
		}
		g.RelatedDecisions = filterGuardrailHits(hits)
	}

	if req.IncludeTests {
		hits, err := s.memory.RecallDurable(ctx, req.ProjectName, "test command "+req.Query, "context", guardrailTestLimit)
		if err != nil {
			return g, fmt.Errorf("recalling test commands: %w", err)
		}
		g.TestCommands = filterGuardrailHits(hits)
	}

	return g, nil
}

func filterGuardrailHits(hits []DurableRecallHit) []string {
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		if h.Score < guardrailScoreFloor {
			continue
		}
		content := h.Content
		if len(content) > guardrailContentCap {
			content = content[:guardrailContentCap]
		}
		out = append(out, content)
	}
	return out
}
