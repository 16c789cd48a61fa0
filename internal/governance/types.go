package governance

import (
	"errors"
	"strings"

	"github.com/kiverlab/codegraph/internal/gates"
)

// Reason explains why a quarantined memory is being promoted.
type Reason string

const (
	ReasonHumanValidated Reason = "human_validated"
	ReasonPRMerged       Reason = "pr_merged"
	ReasonTestsPassed    Reason = "tests_passed"
)

func validReason(r Reason) bool {
	switch r {
	case ReasonHumanValidated, ReasonPRMerged, ReasonTestsPassed:
		return true
	default:
		return false
	}
}

// ErrInvalidReason is returned when Promote is called with a reason
// outside the known enum.
var ErrInvalidReason = errors.New("governance: invalid promotion reason")

// PromoteOptions controls whether Promote runs quality gates before
// accepting a memory as durable.
type PromoteOptions struct {
	RunGates      bool
	ProjectPath   string
	AffectedFiles []string
}

// GateFailedError reports a mandatory gate failure that aborted a
// promotion.
type GateFailedError struct {
	Results []gates.Result
}

func (e *GateFailedError) Error() string {
	details := make([]string, 0, len(e.Results))
	for _, r := range e.Results {
		details = append(details, string(r.Gate)+": "+r.Details)
	}
	return "governance: gate failed: " + strings.Join(details, "; ")
}

func failedRequiredGates(results []gates.Result) []gates.Result {
	var failed []gates.Result
	for _, r := range results {
		if gates.IsRequired(r.Gate) && !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
