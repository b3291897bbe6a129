// Package main provides the aigov CLI: pre-commit and CI checks that keep the
// governance index (.ai/AI_INDEX.yml) current for every changed package and
// keep task-local AI artifacts out of version control.
//
// Commands:
//   - check-index   : validate the index and enforce owners/invariants on
//     packages touched by the change (staged files locally, diff against the
//     base ref in CI)
//   - forbid        : fail if working-state or packet files exist
//   - packet-budget : fail if the context packet has too many chunks or tokens
//   - scope         : print the packages touched by the change
//
// Exit status is 0 on success and 1 on any failure.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"aigov/internal/report"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, report.ErrFailed) {
			fmt.Fprintln(stderr, "ERROR:", err)
		}
		return 1
	}
	return 0
}
