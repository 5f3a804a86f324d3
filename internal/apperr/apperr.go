// Package apperr defines the error categories used across hsc-to-lci.
//
// Error taxonomy
//
//	UserError  – caused by missing or invalid user input (wrong flag, bad value, …).
//	             The CLI prints only the message; usage help is NOT repeated.
//	             Exit code: 1.
//
//	ErrCancelled – the user deliberately aborted an interactive flow (the
//	               export-overwrite confirmation).
//	               Exit code: 0 (not a failure).
//
//	ConfigError, SchemaError, ParseError, ResolutionError, LinkError – the
//	fatal pipeline errors. Each one identifies the offending flow, cell or
//	configuration key so the user can fix the mapping file or the chosen
//	background database. None of them is retried: a run either produces a
//	fully-linked inventory or aborts before writing anything.
//
// Everything else is a plain Go error (I/O, workbook decoding, …) and is
// propagated with fmt.Errorf("context: %w", err) wrapping.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCancelled is returned when the user explicitly aborts an interactive
// operation.  The CLI should exit 0 rather than 1 when it sees this error.
var ErrCancelled = errors.New("operation cancelled")

// UserError represents an error caused by invalid or missing user input.
// Cobra command handlers return this instead of a bare fmt.Errorf so that
// the root command can suppress repeated usage output and format the message
// in a user-friendly way.
type UserError struct {
	Message string
}

func (e *UserError) Error() string { return e.Message }

// User creates a UserError with the given message.
func User(msg string) error { return &UserError{Message: msg} }

// Userf creates a formatted UserError.
func Userf(format string, args ...any) error {
	return &UserError{Message: fmt.Sprintf(format, args...)}
}

// IsUser reports whether err is (or wraps) a *UserError.
func IsUser(err error) bool {
	var u *UserError
	return errors.As(err, &u)
}

// ConfigError reports missing or malformed configuration, including
// duplicated stream names in the mapping file.
type ConfigError struct {
	Key     string // configuration key or mapping index concerned
	Message string
}

func (e *ConfigError) Error() string {
	if e.Key == "" {
		return "config: " + e.Message
	}
	return fmt.Sprintf("config: %s: %s", e.Key, e.Message)
}

// Config creates a ConfigError for the given key.
func Config(key, format string, args ...any) error {
	return &ConfigError{Key: key, Message: fmt.Sprintf(format, args...)}
}

// SchemaError reports an unexpected spreadsheet layout (missing sheet or
// missing required columns).
type SchemaError struct {
	Sheet   string
	Missing []string
}

func (e *SchemaError) Error() string {
	if len(e.Missing) == 0 {
		return fmt.Sprintf("schema: unexpected layout in sheet %q", e.Sheet)
	}
	return fmt.Sprintf("schema: sheet %q is missing %s", e.Sheet, strings.Join(e.Missing, ", "))
}

// ParseError reports a non-numeric cell where a number is required.
type ParseError struct {
	UnitProcess string
	Stream      string
	Value       string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse: unit process %q, stream %q: cannot parse %q as a number",
		e.UnitProcess, e.Stream, e.Value)
}

// ResolutionError reports that no background dataset was found for a
// technosphere request after the full geographic fallback.
type ResolutionError struct {
	Name     string
	Product  string
	Unit     string
	Location string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolution: no background dataset available for %q (product %q, unit %q) at %q or any containing location",
		e.Name, e.Product, e.Unit, e.Location)
}

// LinkError reports an exchange that could not be matched to exactly one
// target during the final linking pass.
type LinkError struct {
	Kind       string // "technosphere" or "biosphere"
	Name       string
	Product    string
	Location   string
	Unit       string
	Categories []string
	Matches    int
}

func (e *LinkError) Error() string {
	if e.Kind == "biosphere" {
		return fmt.Sprintf("link: biosphere exchange %q (unit %q, categories %v) matched %d flows, want 1",
			e.Name, e.Unit, e.Categories, e.Matches)
	}
	return fmt.Sprintf("link: technosphere exchange %q (product %q, location %q) matched %d datasets, want 1",
		e.Name, e.Product, e.Location, e.Matches)
}
