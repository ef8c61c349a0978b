package errors

import (
	"fmt"
)

// ParseError represents a manifest or definition-file parsing failure with
// optional line metadata.
type ParseError struct {
	Path    string
	Line    int
	Message string
	Err     error
}

// NewParseError constructs a ParseError.
func NewParseError(path string, line int, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ParseError{Path: path, Line: line, Message: message, Err: err}
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}

	if e.Line > 0 {
		return fmt.Sprintf("parse error: %s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error: %s: %s", e.Path, e.Message)
}

// Unwrap exposes the underlying error.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValidationError captures a single configuration field failure.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError constructs a ValidationError.
func NewValidationError(field, message string, err error) error {
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// DefinitionError indicates a mistake by a plugin author: a manifest without a
// name or entry class, a duplicate catalog registration, a database syncer that
// never establishes a connection. These are fatal, surface at registration or
// first use, and are meant to be caught during plugin development rather than
// handled at runtime.
type DefinitionError struct {
	Plugin  string
	Message string
}

// NewDefinitionError constructs a DefinitionError for the given plugin.
func NewDefinitionError(plugin, message string) error {
	return &DefinitionError{Plugin: plugin, Message: message}
}

func (e *DefinitionError) Error() string {
	if e == nil {
		return ""
	}
	if e.Plugin != "" {
		return fmt.Sprintf("definition error in syncer '%s': %s\nHint: this is a plugin authoring mistake, not a configuration problem", e.Plugin, e.Message)
	}
	return fmt.Sprintf("definition error: %s\nHint: this is a plugin authoring mistake, not a configuration problem", e.Message)
}

// ResolutionError indicates the named plugin could not be resolved: the
// manifest is missing or malformed, the shared object cannot be loaded, the
// entry symbol is absent, or a declared dependency failed to install. The
// resolver never retries; callers may invoke resolution again explicitly.
type ResolutionError struct {
	Plugin   string
	Location string
	Err      error
}

// NewResolutionError constructs a ResolutionError.
func NewResolutionError(plugin, location string, err error) error {
	return &ResolutionError{Plugin: plugin, Location: location, Err: err}
}

func (e *ResolutionError) Error() string {
	if e == nil {
		return ""
	}
	if e.Location != "" {
		return fmt.Sprintf("cannot resolve syncer '%s' (%s): %v", e.Plugin, e.Location, e.Err)
	}
	return fmt.Sprintf("cannot resolve syncer '%s': %v", e.Plugin, e.Err)
}

// Unwrap exposes the underlying error.
func (e *ResolutionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// InitError wraps a configuration validation failure with the identity of the
// syncer that rejected it, so callers can report which plugin failed. It is
// distinct from a bare ValidationError raised elsewhere in the tool.
type InitError struct {
	Plugin string
	Err    error
}

// NewInitError constructs an InitError for the given plugin.
func NewInitError(plugin string, err error) error {
	return &InitError{Plugin: plugin, Err: err}
}

func (e *InitError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("syncer '%s' rejected its configuration: %v\nHint: run 'sgtool syncer describe %s' to see the fields it accepts", e.Plugin, e.Err, e.Plugin)
}

// Unwrap exposes the underlying validation error.
func (e *InitError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// CapabilityError is returned when a syncer is asked for an operation its
// plugin does not implement.
type CapabilityError struct {
	Plugin    string
	Operation string
}

// NewCapabilityError constructs a CapabilityError.
func NewCapabilityError(plugin, operation string) error {
	return &CapabilityError{Plugin: plugin, Operation: operation}
}

func (e *CapabilityError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("syncer '%s' does not implement %s", e.Plugin, e.Operation)
}
