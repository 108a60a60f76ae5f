package cli

import (
	"errors"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/blimu-dev/stripegen/pkg/generrors"
	"github.com/blimu-dev/stripegen/pkg/writer"
)

// Exit codes of the stripe-gen command.
const (
	ExitOK    = 0
	ExitError = 1
	ExitDrift = 2
	ExitUsage = 64
)

// UsageError marks bad flags or arguments.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string { return e.Err.Error() }

func (e *UsageError) Unwrap() error { return e.Err }

func (e *UsageError) Is(target error) bool { return target == generrors.ErrUsage }

// ExitCode maps err onto the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, writer.ErrDrift):
		return ExitDrift
	case errors.Is(err, generrors.ErrUsage):
		return ExitUsage
	default:
		return ExitError
	}
}

// NewLogger returns a text logger writing to w, at Debug level when verbose.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// utility
func absPath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	abs, _ := filepath.Abs(p)
	return abs
}
