package cli

import (
	"errors"
	"fmt"

	"github.com/andrescamacho/kanban-go/internal/domain/process"
	"github.com/andrescamacho/kanban-go/internal/domain/shared"
)

// ExitError carries a process exit code through cobra
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func usageError(err error) error {
	return &ExitError{Code: process.ExitUsage, Err: err}
}

// ExitCode maps an error returned by a command to the process exit code
func ExitCode(err error) int {
	if err == nil {
		return process.ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	var validationErr *shared.ValidationError
	if errors.As(err, &validationErr) {
		return process.ExitUsage
	}
	return process.ExitFatal
}
