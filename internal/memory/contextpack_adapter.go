package memory

import (
	"context"

	"github.com/kiverlab/codegraph/internal/contextpack"
)

// ContextPackRecaller adapts Service to contextpack.DurableRecaller.
// Guardrail enrichment must only ever reach the durable collection,
// never quarantine, so this type exposes nothing else.
type ContextPackRecaller struct {
	service *Service
}

// NewContextPackRecaller wraps svc for use as a contextpack.DurableRecaller.
func NewContextPackRecaller(svc *Service) *ContextPackRecaller {
	return &ContextPackRecaller{service: svc}
}

// RecallDurable satisfies contextpack.DurableRecaller.
func (r *ContextPackRecaller) RecallDurable(ctx context.Context, projectName, query, memType string, limit int) ([]contextpack.DurableRecallHit, error) {
	hits, err := r.service.RecallDurable(ctx, projectName, query, Type(memType), nil, limit)
	if err != nil {
		return nil, err
	}
	out := make([]contextpack.DurableRecallHit, 0, len(hits))
	for _, h := range hits {
		out = append(out, contextpack.DurableRecallHit{Content: h.Content, Score: h.Score})
	}
	return out, nil
}
