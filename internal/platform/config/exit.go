package config

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// ExitInterrupted is the status reported when a run was cancelled by a signal.
const ExitInterrupted = 130

// ExitCode maps a command error to a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	default:
		return 1
	}
}

// Exit reports err on stderr and exits with ExitCode(err). It returns when err
// is nil.
func Exit(err error) {
	if err == nil {
		return
	}
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "interrupted")
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(ExitCode(err))
}
