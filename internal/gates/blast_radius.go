package gates

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kiverlab/codegraph/internal/graph"
)

const blastRadiusHops = 3
const blastRadiusThreshold = 20

type blastRadiusDetails struct {
	AffectedFiles  int      `json:"affectedFiles"`
	Files          []string `json:"files"`
	DepthReached   int      `json:"depthReached"`
	EdgesTraversed int      `json:"edgesTraversed"`
	Warning        string   `json:"warning,omitempty"`
}

// runBlastRadius is informational: it never blocks a promotion, but its
// result is always carried in the report.
func runBlastRadius(ctx context.Context, graphSvc *graph.Service, req Request) Result {
	start := time.Now()
	if graphSvc == nil || len(req.AffectedFiles) == 0 {
		return Result{Gate: BlastRadius, Passed: true, Details: "no affected files, skipped", DurationMs: elapsedMs(start)}
	}

	radius, err := graphSvc.BlastRadius(ctx, req.Project, req.AffectedFiles, blastRadiusHops)
	if err != nil {
		return Result{Gate: BlastRadius, Passed: true, Details: truncateDetails(err.Error()), DurationMs: elapsedMs(start)}
	}

	details := blastRadiusDetails{
		AffectedFiles:  len(radius.AffectedFiles),
		Files:          radius.AffectedFiles,
		DepthReached:   radius.DepthReached,
		EdgesTraversed: radius.EdgesTraversed,
	}
	passed := len(radius.AffectedFiles) <= blastRadiusThreshold
	if !passed {
		details.Warning = "blast radius exceeds the review threshold"
	}

	payload, err := json.Marshal(details)
	if err != nil {
		return Result{Gate: BlastRadius, Passed: passed, Details: "", DurationMs: elapsedMs(start)}
	}
	return Result{Gate: BlastRadius, Passed: passed, Details: truncateDetails(string(payload)), DurationMs: elapsedMs(start)}
}
