package service

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/ludo-technologies/vibescan/domain"
	"golang.org/x/sync/errgroup"
)

// TaskError represents a single task failure
type TaskError struct {
	TaskName string
	Err      error
}

// Error implements the error interface
func (e TaskError) Error() string {
	return fmt.Sprintf("[%s] %v", e.TaskName, e.Err)
}

// Unwrap returns the underlying error
func (e TaskError) Unwrap() error {
	return e.Err
}

// AggregatedError collects all task failures in task order
type AggregatedError struct {
	Errors []TaskError
}

// Error implements the error interface
func (e *AggregatedError) Error() string {
	switch len(e.Errors) {
	case 0:
		return "no errors"
	case 1:
		return e.Errors[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d tasks failed:\n", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// Unwrap returns the first error for errors.Is/As compatibility
func (e *AggregatedError) Unwrap() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e.Errors[0].Err
}

// ParallelExecutorImpl implements domain.ParallelExecutor on top of errgroup
type ParallelExecutorImpl struct {
	workers  int
	progress domain.ProgressManager
}

// NewParallelExecutor creates an executor running at most workers goroutines.
// workers <= 0 uses runtime.NumCPU().
func NewParallelExecutor(workers int) *ParallelExecutorImpl {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &ParallelExecutorImpl{workers: workers}
}

// NewParallelExecutorWithProgress creates an executor reporting task completion to pm
func NewParallelExecutorWithProgress(workers int, pm domain.ProgressManager) *ParallelExecutorImpl {
	executor := NewParallelExecutor(workers)
	executor.progress = pm
	return executor
}

// Execute runs every enabled task to completion. Task failures do not stop
// the others; they are returned together as an *AggregatedError.
func (e *ParallelExecutorImpl) Execute(ctx context.Context, tasks []domain.ExecutableTask) error {
	enabled := make([]domain.ExecutableTask, 0, len(tasks))
	for _, t := range tasks {
		if t.IsEnabled() {
			enabled = append(enabled, t)
		}
	}
	if len(enabled) == 0 {
		return nil
	}

	progress := e.startTask("Running detectors", len(enabled))
	defer progress.Complete()

	errs := make([]error, len(enabled))
	var g errgroup.Group
	g.SetLimit(e.workers)
	for i, t := range enabled {
		g.Go(func() error {
			defer progress.Increment(1)
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			_, errs[i] = t.Execute(ctx)
			return nil
		})
	}
	_ = g.Wait()

	var failed []TaskError
	for i, err := range errs {
		if err != nil {
			failed = append(failed, TaskError{TaskName: enabled[i].Name(), Err: err})
		}
	}
	if len(failed) > 0 {
		return &AggregatedError{Errors: failed}
	}
	return nil
}

// ForEach calls fn for every index in [0, n) with bounded concurrency. The
// first error cancels the context passed to the remaining calls and is returned.
func (e *ParallelExecutorImpl) ForEach(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	if n <= 0 {
		return nil
	}
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			return fn(gCtx, i)
		})
	}
	return g.Wait()
}

func (e *ParallelExecutorImpl) startTask(description string, total int) domain.TaskProgress {
	if e.progress == nil {
		return noOpTaskProgress{}
	}
	return e.progress.StartTask(description, total)
}
