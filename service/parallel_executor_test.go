package service

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ludo-technologies/vibescan/domain"
	"go.uber.org/goleak"
)

// mockTask implements domain.ExecutableTask for testing
type mockTask struct {
	name     string
	enabled  bool
	execFunc func(ctx context.Context) (interface{}, error)
}

func (t *mockTask) Name() string    { return t.name }
func (t *mockTask) IsEnabled() bool { return t.enabled }

func (t *mockTask) Execute(ctx context.Context) (interface{}, error) {
	if t.execFunc != nil {
		return t.execFunc(ctx)
	}
	return nil, nil
}

func counting(name string, enabled bool, counter *atomic.Int32) *mockTask {
	return &mockTask{name: name, enabled: enabled, execFunc: func(context.Context) (interface{}, error) {
		counter.Add(1)
		return nil, nil
	}}
}

func TestNewParallelExecutor(t *testing.T) {
	if got := NewParallelExecutor(0).workers; got != runtime.NumCPU() {
		t.Errorf("Expected NumCPU workers by default, got %d", got)
	}
	if got := NewParallelExecutor(3).workers; got != 3 {
		t.Errorf("Expected 3 workers, got %d", got)
	}
}

func TestExecute_RunsEnabledTasks(t *testing.T) {
	defer goleak.VerifyNone(t)

	var ran atomic.Int32
	tasks := []domain.ExecutableTask{
		counting("a", true, &ran),
		counting("b", false, &ran),
		counting("c", true, &ran),
	}
	if err := NewParallelExecutor(2).Execute(context.Background(), tasks); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if ran.Load() != 2 {
		t.Errorf("Expected 2 enabled tasks to run, got %d", ran.Load())
	}
}

func TestExecute_NoTasks(t *testing.T) {
	if err := NewParallelExecutor(2).Execute(context.Background(), nil); err != nil {
		t.Errorf("Expected nil for no tasks, got %v", err)
	}
}

func TestExecute_RespectsWorkerLimit(t *testing.T) {
	defer goleak.VerifyNone(t)

	var current, peak atomic.Int32
	tasks := make([]domain.ExecutableTask, 10)
	for i := range tasks {
		tasks[i] = &mockTask{name: "t", enabled: true, execFunc: func(context.Context) (interface{}, error) {
			n := current.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			current.Add(-1)
			return nil, nil
		}}
	}
	if err := NewParallelExecutor(2).Execute(context.Background(), tasks); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if peak.Load() > 2 {
		t.Errorf("Expected at most 2 concurrent tasks, saw %d", peak.Load())
	}
}

func TestExecute_AggregatesFailuresInTaskOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	errBoom := errors.New("boom")
	fail := func(name string, err error) *mockTask {
		return &mockTask{name: name, enabled: true, execFunc: func(context.Context) (interface{}, error) {
			return nil, err
		}}
	}
	var ran atomic.Int32
	tasks := []domain.ExecutableTask{
		counting("a", true, &ran),
		fail("b", errBoom),
		counting("c", true, &ran),
		fail("d", errors.New("bad input")),
	}

	err := NewParallelExecutor(4).Execute(context.Background(), tasks)
	var agg *AggregatedError
	if !errors.As(err, &agg) {
		t.Fatalf("Expected *AggregatedError, got %T: %v", err, err)
	}
	if len(agg.Errors) != 2 || agg.Errors[0].TaskName != "b" || agg.Errors[1].TaskName != "d" {
		t.Errorf("Unexpected failures: %+v", agg.Errors)
	}
	if !errors.Is(err, errBoom) {
		t.Error("Expected errors.Is to reach the first failure")
	}
	if ran.Load() != 2 {
		t.Errorf("Expected failures not to stop other tasks, %d ran", ran.Load())
	}
	if !strings.HasPrefix(err.Error(), "2 tasks failed:") {
		t.Errorf("Unexpected message %q", err.Error())
	}
}

func TestExecute_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran atomic.Int32
	err := NewParallelExecutor(2).Execute(ctx, []domain.ExecutableTask{counting("a", true, &ran)})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if ran.Load() != 0 {
		t.Error("Expected no task to run after cancellation")
	}
}

func TestForEach_WritesByIndex(t *testing.T) {
	defer goleak.VerifyNone(t)

	out := make([]int, 100)
	err := NewParallelExecutor(4).ForEach(context.Background(), len(out), func(_ context.Context, i int) error {
		out[i] = i * i
		return nil
	})
	if err != nil {
		t.Fatalf("ForEach returned error: %v", err)
	}
	for i, v := range out {
		if v != i*i {
			t.Fatalf("Expected out[%d] = %d, got %d", i, i*i, v)
		}
	}
}

func TestForEach_StopsOnError(t *testing.T) {
	defer goleak.VerifyNone(t)

	errStop := errors.New("stop")
	var calls atomic.Int32
	err := NewParallelExecutor(1).ForEach(context.Background(), 50, func(ctx context.Context, i int) error {
		calls.Add(1)
		if i == 3 {
			return errStop
		}
		return nil
	})
	if !errors.Is(err, errStop) {
		t.Errorf("Expected the first error, got %v", err)
	}
	if calls.Load() == 50 {
		t.Error("Expected remaining calls to be skipped after the error")
	}
}

func TestForEach_Empty(t *testing.T) {
	err := NewParallelExecutor(2).ForEach(context.Background(), 0, func(context.Context, int) error {
		t.Fatal("fn must not be called")
		return nil
	})
	if err != nil {
		t.Errorf("Expected nil, got %v", err)
	}
}

func TestAggregatedError(t *testing.T) {
	if got := (&AggregatedError{}).Error(); got != "no errors" {
		t.Errorf("Unexpected empty message %q", got)
	}
	single := &AggregatedError{Errors: []TaskError{{TaskName: "dup", Err: errors.New("x")}}}
	if got := single.Error(); got != "[dup] x" {
		t.Errorf("Unexpected single message %q", got)
	}
	if (&AggregatedError{}).Unwrap() != nil {
		t.Error("Expected nil unwrap without errors")
	}
}
