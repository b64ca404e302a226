package cmd

import (
	"errors"
	"fmt"
	"os"
)

// Semantic exit codes. Scripts branch on these.
const (
	ExitOK            = 0
	ExitError         = 1
	ExitUsage         = 2
	ExitConfigInvalid = 3
	ExitStoreFailure  = 4
)

// Sentinel errors commands wrap so the process exit code reflects the
// failure class.
var (
	ErrUsage         = errors.New("invalid usage")
	ErrConfigInvalid = errors.New("invalid configuration")
	ErrStoreFailure  = errors.New("store failure")
)

// ExitCodeFor maps a command error to its exit code.
func ExitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrUsage):
		return ExitUsage
	case errors.Is(err, ErrConfigInvalid):
		return ExitConfigInvalid
	case errors.Is(err, ErrStoreFailure):
		return ExitStoreFailure
	default:
		return ExitError
	}
}

// ExitWith prints a fatal message to stderr and exits with the given code.
func ExitWith(code int, msg string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %s: %v\n", msg, err)
	} else {
		fmt.Fprintf(os.Stderr, "FATAL: %s\n", msg)
	}
	os.Exit(code)
}
