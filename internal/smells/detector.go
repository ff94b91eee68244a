// Package smells runs lexical code-smell detectors over extracted file metrics.
package smells

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/ludo-technologies/vibescan/domain"
	"github.com/ludo-technologies/vibescan/internal/config"
	"github.com/ludo-technologies/vibescan/internal/logging"
)

// Input is the read-only view every detector receives
type Input struct {
	// Files holds metrics of primary and basic support files, sorted by path
	Files []*domain.FileMetrics
}

// Detector is the interface for all smell detectors
type Detector interface {
	// Name returns the detector name used in signals
	Name() string

	// Confidence returns the fixed tier of every signal the detector emits
	Confidence() domain.Confidence

	// Enabled reports whether the detector should run
	Enabled() bool

	// Detect inspects the input and returns its signals
	Detect(in *Input) ([]domain.Signal, error)
}

// NewDetectors returns every smell detector configured from cfg, in a fixed order
func NewDetectors(cfg config.SmellsConfig) []Detector {
	return []Detector{
		NewExcessiveCommentsDetector(cfg.ExcessiveComments),
		NewVerboseNamingDetector(cfg.VerboseNaming),
		NewBoilerplateDetector(cfg.Boilerplate),
		NewInconsistentNamingDetector(cfg.InconsistentNaming),
		NewDeadCodeDetector(cfg.DeadCode),
		NewOverEngineeringDetector(cfg.OverEngineering),
		NewMissingErrorHandlingDetector(cfg.ErrorHandling),
		NewCopyPasteDetector(cfg.CopyPaste),
		NewLongFunctionDetector(cfg.LongFunctions),
		NewTodoMarkersDetector(cfg.TodoMarkers),
	}
}

// Runner evaluates detectors in isolation: a failing detector becomes a
// detector_unavailable signal and the others still report
type Runner struct {
	detectors []Detector
	executor  domain.ParallelExecutor
	logger    *logging.Logger
}

// NewRunner creates a runner. A nil executor runs detectors sequentially.
func NewRunner(detectors []Detector, executor domain.ParallelExecutor, logger *logging.Logger) *Runner {
	return &Runner{detectors: detectors, executor: executor, logger: logger}
}

// detectorTask adapts a Detector to domain.ExecutableTask and keeps its own result slot
type detectorTask struct {
	detector Detector
	input    *Input
	signals  []domain.Signal
	err      error
}

func (t *detectorTask) Name() string    { return t.detector.Name() }
func (t *detectorTask) IsEnabled() bool { return t.detector.Enabled() }

func (t *detectorTask) Execute(ctx context.Context) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
		t.err = err
	}()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	signals, err := t.detector.Detect(t.input)
	if err != nil {
		return nil, err
	}
	t.signals = signals
	return signals, nil
}

// Run executes every enabled detector and returns the combined signals in detector order
func (r *Runner) Run(ctx context.Context, in *Input) []domain.Signal {
	tasks := make([]*detectorTask, 0, len(r.detectors))
	executable := make([]domain.ExecutableTask, 0, len(r.detectors))
	for _, d := range r.detectors {
		if !d.Enabled() {
			r.logger.Debugf("skipping disabled detector %s", d.Name())
			continue
		}
		t := &detectorTask{detector: d, input: in}
		tasks = append(tasks, t)
		executable = append(executable, t)
	}

	if r.executor != nil {
		if err := r.executor.Execute(ctx, executable); err != nil {
			r.logger.Debugf("detector execution reported: %v", err)
		}
	} else {
		for _, t := range tasks {
			_, _ = t.Execute(ctx)
		}
	}

	var signals []domain.Signal
	for _, t := range tasks {
		if t.err != nil {
			r.logger.Warnf("detector %s failed: %v", t.Name(), t.err)
			signals = append(signals, unavailable(t.Name(), t.err))
			continue
		}
		r.logger.Debugf("detector %s produced %d signals", t.Name(), len(t.signals))
		signals = append(signals, t.signals...)
	}
	return signals
}

func unavailable(name string, err error) domain.Signal {
	msg, _, _ := strings.Cut(err.Error(), "\n")
	return domain.Signal{
		Detector:    domain.DetectorUnavailable,
		Confidence:  domain.ConfidenceMedium,
		Severity:    1,
		Description: fmt.Sprintf("detector %s could not run: %s", name, msg),
	}
}

// sourceFiles returns the files a detector should inspect
func sourceFiles(in *Input, includeTests bool) []*domain.FileMetrics {
	files := make([]*domain.FileMetrics, 0, len(in.Files))
	for _, f := range in.Files {
		if f == nil || !f.Support.CountsAsCode() {
			continue
		}
		if f.IsTest && !includeTests {
			continue
		}
		files = append(files, f)
	}
	return files
}

func fileRef(path string, line int) []domain.FileRef {
	return []domain.FileRef{{Path: path, Line: line}}
}
