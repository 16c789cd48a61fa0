package gates

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"
)

const typecheckTimeout = 30 * time.Second

// runTypecheck spawns `tsc --noEmit` in projectPath when a TypeScript
// manifest is present. A timeout is treated as a non-blocking pass: the
// project is assumed type-safe until a faster check can confirm it.
func runTypecheck(ctx context.Context, req Request) Result {
	start := time.Now()
	if !hasTSConfig(req.ProjectPath) {
		return Result{Gate: Typecheck, Passed: true, Details: "no tsconfig.json, skipped", DurationMs: elapsedMs(start)}
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, typecheckTimeout)
	defer cancel()

	cmd := exec.CommandContext(timeoutCtx, "tsc", "--noEmit")
	cmd.Dir = req.ProjectPath
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()

	if timeoutCtx.Err() == context.DeadlineExceeded {
		return Result{Gate: Typecheck, Passed: true, Details: "timed out", DurationMs: elapsedMs(start)}
	}
	if err == nil {
		return Result{Gate: Typecheck, Passed: true, Details: "", DurationMs: elapsedMs(start)}
	}

	details := filterToAffected(out.String(), req.AffectedFiles)
	return Result{Gate: Typecheck, Passed: false, Details: truncateDetails(details), DurationMs: elapsedMs(start)}
}

// filterToAffected keeps only lines mentioning one of the affected files;
// if nothing matches, the full output is reported instead.
func filterToAffected(output string, affected []string) string {
	if len(affected) == 0 {
		return output
	}
	var kept []string
	for _, line := range strings.Split(output, "\n") {
		for _, f := range affected {
			if f != "" && strings.Contains(line, f) {
				kept = append(kept, line)
				break
			}
		}
	}
	if len(kept) == 0 {
		return output
	}
	return strings.Join(kept, "\n")
}

func elapsedMs(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
