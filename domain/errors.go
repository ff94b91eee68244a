package domain

import (
	"errors"
	"fmt"
)

// PathError reports a scan root that does not exist or is not a directory
type PathError struct {
	Path   string
	Reason string
	Err    error
}

// Error implements the error interface
func (e *PathError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid scan root %q: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid scan root %q: %s", e.Path, e.Reason)
}

// Unwrap returns the underlying error
func (e *PathError) Unwrap() error {
	return e.Err
}

// NewPathError creates a PathError
func NewPathError(path, reason string, err error) error {
	return &PathError{Path: path, Reason: reason, Err: err}
}

// ConfigError reports an invalid configuration file or flag combination
type ConfigError struct {
	Message string
	Err     error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a ConfigError
func NewConfigError(message string, err error) error {
	return &ConfigError{Message: message, Err: err}
}

// AnalysisError reports an internal failure of a pipeline stage
type AnalysisError struct {
	Stage string
	Err   error
}

// Error implements the error interface
func (e *AnalysisError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error
func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// NewAnalysisError creates an AnalysisError for the named stage
func NewAnalysisError(stage string, err error) error {
	return &AnalysisError{Stage: stage, Err: err}
}

// IsUserError reports whether err was caused by invalid input rather than an internal failure
func IsUserError(err error) bool {
	var pathErr *PathError
	var cfgErr *ConfigError
	return errors.As(err, &pathErr) || errors.As(err, &cfgErr)
}
