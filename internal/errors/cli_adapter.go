package errors

import (
	"fmt"
	"log/slog"
)

// CLIErrorAdapter handles error presentation and exit code determination for
// the dispatchmon CLI.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{verbose: verbose, logger: logger}
}

// ExitCodeFor determines the process exit code for an error.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	if c, ok := AsClassified(err); ok {
		switch c.Category() {
		case CategoryValidation, CategoryPrecondition:
			return 2 // Invalid usage
		case CategoryConfig:
			return 7 // Configuration error
		case CategoryReader, CategoryNotify, CategoryNetwork:
			return 8 // External system error
		case CategoryTagDB, CategoryEventStore:
			return 9 // Storage error
		case CategoryDaemon, CategoryRuntime:
			return 12 // Runtime error
		case CategoryInternal:
			return 10 // Internal error
		default:
			return 1
		}
	}
	return 1
}

// FormatError formats an error for terminal display.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	c, ok := AsClassified(err)
	if !ok {
		return fmt.Sprintf("Error: %v", err)
	}
	if a.verbose {
		return c.Error()
	}
	msg := c.Message()
	if reason, ok := c.Context().Get("reason"); ok {
		return fmt.Sprintf("Error: %s (%v)", msg, reason)
	}
	return fmt.Sprintf("Error: %s", msg)
}
