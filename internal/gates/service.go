package gates

import (
	"context"

	"github.com/kiverlab/codegraph/internal/graph"
)

// Service runs quality gates ahead of a memory promotion.
type Service struct {
	graph *graph.Service
}

// NewService builds a gates Service. graphSvc may be nil, in which case
// the blast_radius gate reports itself skipped.
func NewService(graphSvc *graph.Service) *Service {
	return &Service{graph: graphSvc}
}

// RunGates executes every non-skipped gate and ANDs the required ones
// (typecheck, test) into the overall pass/fail; blast_radius is carried
// in the report but never blocks it.
func (s *Service) RunGates(ctx context.Context, req Request) Report {
	var results []Result

	if !skipped(req.Skip, Typecheck) {
		results = append(results, runTypecheck(ctx, req))
	}
	if !skipped(req.Skip, Test) {
		results = append(results, runTest(ctx, req))
	}
	if !skipped(req.Skip, BlastRadius) {
		results = append(results, runBlastRadius(ctx, s.graph, req))
	}

	passed := true
	for _, r := range results {
		if !IsRequired(r.Gate) {
			continue
		}
		if !r.Passed {
			passed = false
		}
	}

	return Report{Passed: passed, Results: results}
}

// IsRequired reports whether gate is one of the mandatory gates whose
// failure fails an entire Report.
func IsRequired(gate Name) bool {
	for _, g := range requiredGates {
		if g == gate {
			return true
		}
	}
	return false
}
