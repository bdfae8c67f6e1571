// Package cli provides the command-line interface for psxlens
package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/dyike/psxlens/internal/display"
	"github.com/dyike/psxlens/internal/models"
)

const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitFetch    = 2
	ExitRender   = 3
	ExitSchema   = 4
	ExitNotFound = 5
)

// Run executes the CLI and returns the process exit code.
func Run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		display.Error(os.Stderr, err)
	}
	return ExitCode(err)
}

// ExitCode maps pipeline errors to process exit codes.
func ExitCode(err error) int {
	var (
		fetchErr    *models.FetchError
		renderErr   *models.RenderError
		schemaErr   *models.SchemaError
		notFoundErr *models.NotFoundError
	)
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &renderErr):
		return ExitRender
	case errors.As(err, &fetchErr):
		return ExitFetch
	case errors.As(err, &schemaErr):
		return ExitSchema
	case errors.As(err, &notFoundErr):
		return ExitNotFound
	default:
		return ExitFailure
	}
}
