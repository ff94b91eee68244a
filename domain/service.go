package domain

import (
	"context"
	"fmt"
	"strings"
)

// OutputFormat represents the supported output formats
type OutputFormat string

const (
	OutputFormatText     OutputFormat = "text"
	OutputFormatJSON     OutputFormat = "json"
	OutputFormatYAML     OutputFormat = "yaml"
	OutputFormatMarkdown OutputFormat = "markdown"
)

// ParseOutputFormat converts a flag value into an OutputFormat
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return OutputFormatText, nil
	case "json":
		return OutputFormatJSON, nil
	case "yaml", "yml":
		return OutputFormatYAML, nil
	case "markdown", "md":
		return OutputFormatMarkdown, nil
	default:
		return "", NewConfigError(fmt.Sprintf("unsupported output format %q (want text, json, yaml or markdown)", s), nil)
	}
}

// IsMachineReadable reports whether the format is meant for programs rather than terminals
func (f OutputFormat) IsMachineReadable() bool {
	return f == OutputFormatJSON || f == OutputFormatYAML
}

// ProgressManager creates progress trackers for long-running stages
type ProgressManager interface {
	StartTask(description string, total int) TaskProgress
	IsInteractive() bool
	Close()
}

// TaskProgress tracks a single stage
type TaskProgress interface {
	Increment(n int)
	Describe(description string)
	Complete()
}

// ExecutableTask is a named unit of work run by a ParallelExecutor
type ExecutableTask interface {
	Name() string
	Execute(ctx context.Context) (interface{}, error)
	IsEnabled() bool
}

// ParallelExecutor runs tasks with bounded concurrency
type ParallelExecutor interface {
	Execute(ctx context.Context, tasks []ExecutableTask) error
	ForEach(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error
}
