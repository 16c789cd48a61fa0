package gates

import (
	"bytes"
	"context"
	"os/exec"
	"time"
)

const testTimeout = 60 * time.Second

// runTest detects a runner from package.json (vitest > jest > a generic
// "test" script) and executes it, scoping to affected files when given.
// A timeout is a non-blocking pass, same as typecheck.
func runTest(ctx context.Context, req Request) Result {
	start := time.Now()
	manifest, ok := readPackageManifest(req.ProjectPath)
	runner := testRunner(manifest)
	if !ok || runner == "" {
		return Result{Gate: Test, Passed: true, Details: "no test runner detected, skipped", DurationMs: elapsedMs(start)}
	}

	bin, args := testCommand(runner, req.AffectedFiles)
	timeoutCtx, cancel := context.WithTimeout(ctx, testTimeout)
	defer cancel()

	cmd := exec.CommandContext(timeoutCtx, bin, args...)
	cmd.Dir = req.ProjectPath
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()

	if timeoutCtx.Err() == context.DeadlineExceeded {
		return Result{Gate: Test, Passed: true, Details: "timed out", DurationMs: elapsedMs(start)}
	}
	if err == nil {
		return Result{Gate: Test, Passed: true, Details: "", DurationMs: elapsedMs(start)}
	}
	return Result{Gate: Test, Passed: false, Details: truncateDetails(out.String()), DurationMs: elapsedMs(start)}
}

func testCommand(runner string, affected []string) (string, []string) {
	switch runner {
	case "vitest":
		args := []string{"vitest", "run"}
		if len(affected) > 0 {
			args = append(args, "--related")
			args = append(args, affected...)
		}
		return "npx", args
	case "jest":
		args := []string{"jest"}
		if len(affected) > 0 {
			args = append(args, "--findRelatedTests")
			args = append(args, affected...)
		}
		return "npx", args
	default:
		return "npm", []string{"test"}
	}
}
