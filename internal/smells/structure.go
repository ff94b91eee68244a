package smells

import (
	"fmt"

	"github.com/ludo-technologies/vibescan/domain"
	"github.com/ludo-technologies/vibescan/internal/config"
)

// BoilerplateDetector flags files whose imports dwarf the functions that use them
type BoilerplateDetector struct {
	cfg config.BoilerplateConfig
}

// NewBoilerplateDetector creates the detector from its config section
func NewBoilerplateDetector(cfg config.BoilerplateConfig) *BoilerplateDetector {
	return &BoilerplateDetector{cfg: cfg}
}

func (d *BoilerplateDetector) Name() string                  { return domain.DetectorBoilerplateHeavy }
func (d *BoilerplateDetector) Confidence() domain.Confidence { return domain.ConfidenceLow }
func (d *BoilerplateDetector) Enabled() bool                 { return d.cfg.Enabled }

// Detect emits one signal per file with at least MinImports imports and more
// than MaxImportRatio imports per function
func (d *BoilerplateDetector) Detect(in *Input) ([]domain.Signal, error) {
	var signals []domain.Signal
	for _, f := range sourceFiles(in, true) {
		functions := len(f.Functions)
		if functions == 0 || f.ImportCount < d.cfg.MinImports {
			continue
		}
		ratio := float64(f.ImportCount) / float64(functions)
		if ratio <= d.cfg.MaxImportRatio {
			continue
		}
		signals = append(signals, domain.Signal{
			Detector:    d.Name(),
			Confidence:  d.Confidence(),
			Severity:    float64(f.ImportCount),
			Description: fmt.Sprintf("%d imports for %d functions (%.1f per function)", f.ImportCount, functions, ratio),
			Files:       fileRef(f.Path, 0),
			Evidence:    domain.Measure(ratio),
			Threshold:   domain.Measure(d.cfg.MaxImportRatio),
		})
	}
	return signals, nil
}

// OverEngineeringDetector flags files declaring many classes for little code
type OverEngineeringDetector struct {
	cfg config.OverEngineeringConfig
}

// NewOverEngineeringDetector creates the detector from its config section
func NewOverEngineeringDetector(cfg config.OverEngineeringConfig) *OverEngineeringDetector {
	return &OverEngineeringDetector{cfg: cfg}
}

func (d *OverEngineeringDetector) Name() string                  { return domain.DetectorOverEngineering }
func (d *OverEngineeringDetector) Confidence() domain.Confidence { return domain.ConfidenceLow }
func (d *OverEngineeringDetector) Enabled() bool                 { return d.cfg.Enabled }

// Detect emits one signal per file of at least MinCodeLines lines whose class
// density exceeds MaxClassRatio
func (d *OverEngineeringDetector) Detect(in *Input) ([]domain.Signal, error) {
	var signals []domain.Signal
	for _, f := range sourceFiles(in, true) {
		if f.CodeLines < d.cfg.MinCodeLines || len(f.Classes) == 0 {
			continue
		}
		ratio := float64(len(f.Classes)) / float64(f.CodeLines)
		if ratio <= d.cfg.MaxClassRatio {
			continue
		}
		signals = append(signals, domain.Signal{
			Detector:    d.Name(),
			Confidence:  d.Confidence(),
			Severity:    float64(len(f.Classes)),
			Description: fmt.Sprintf("%d classes in %d lines of code", len(f.Classes), f.CodeLines),
			Files:       fileRef(f.Path, f.Classes[0].Line),
			Evidence:    domain.Measure(ratio),
			Threshold:   domain.Measure(d.cfg.MaxClassRatio),
		})
	}
	return signals, nil
}

// LongFunctionDetector flags functions whose span exceeds MaxLines
type LongFunctionDetector struct {
	cfg config.LongFunctionsConfig
}

// NewLongFunctionDetector creates the detector from its config section
func NewLongFunctionDetector(cfg config.LongFunctionsConfig) *LongFunctionDetector {
	return &LongFunctionDetector{cfg: cfg}
}

func (d *LongFunctionDetector) Name() string                  { return domain.DetectorLongFunction }
func (d *LongFunctionDetector) Confidence() domain.Confidence { return domain.ConfidenceMedium }
func (d *LongFunctionDetector) Enabled() bool                 { return d.cfg.Enabled }

// Detect emits one signal per function longer than MaxLines
func (d *LongFunctionDetector) Detect(in *Input) ([]domain.Signal, error) {
	var signals []domain.Signal
	for _, f := range sourceFiles(in, true) {
		for _, fn := range f.Functions {
			if fn.Lines <= d.cfg.MaxLines {
				continue
			}
			signals = append(signals, domain.Signal{
				Detector:    d.Name(),
				Confidence:  d.Confidence(),
				Severity:    float64(fn.Lines),
				Description: fmt.Sprintf("function %s spans %d lines (limit %d)", fn.Name, fn.Lines, d.cfg.MaxLines),
				Files:       fileRef(f.Path, fn.StartLine),
				Evidence:    domain.Measure(float64(fn.Lines)),
				Threshold:   domain.Measure(float64(d.cfg.MaxLines)),
			})
		}
	}
	return signals, nil
}
