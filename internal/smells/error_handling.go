package smells

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ludo-technologies/vibescan/domain"
	"github.com/ludo-technologies/vibescan/internal/config"
	"github.com/ludo-technologies/vibescan/internal/metrics"
)

const maxListedFunctions = 5

// MissingErrorHandlingDetector flags non-test files whose substantial
// functions contain no error-handling construct
type MissingErrorHandlingDetector struct {
	cfg config.ErrorHandlingConfig
}

// NewMissingErrorHandlingDetector creates the detector from its config section
func NewMissingErrorHandlingDetector(cfg config.ErrorHandlingConfig) *MissingErrorHandlingDetector {
	return &MissingErrorHandlingDetector{cfg: cfg}
}

func (d *MissingErrorHandlingDetector) Name() string                  { return domain.DetectorMissingErrorHandling }
func (d *MissingErrorHandlingDetector) Confidence() domain.Confidence { return domain.ConfidenceMedium }
func (d *MissingErrorHandlingDetector) Enabled() bool                 { return d.cfg.Enabled }

// Detect emits one signal per file. Functions whose names suggest payments,
// authentication or destructive operations are listed first.
func (d *MissingErrorHandlingDetector) Detect(in *Input) ([]domain.Signal, error) {
	var signals []domain.Signal
	for _, f := range sourceFiles(in, false) {
		var unhandled []domain.FunctionSignature
		for _, fn := range f.Functions {
			// Lines includes the declaration line
			if fn.Lines-1 >= d.cfg.MinBodyLines && !fn.HasErrorHandling {
				unhandled = append(unhandled, fn)
			}
		}
		if len(unhandled) == 0 {
			continue
		}

		sort.SliceStable(unhandled, func(i, j int) bool {
			si, sj := isSensitive(unhandled[i].Name), isSensitive(unhandled[j].Name)
			if si != sj {
				return si
			}
			return unhandled[i].StartLine < unhandled[j].StartLine
		})

		names := make([]string, 0, maxListedFunctions)
		for i, fn := range unhandled {
			if i == maxListedFunctions {
				names = append(names, fmt.Sprintf("and %d more", len(unhandled)-maxListedFunctions))
				break
			}
			names = append(names, fn.Name)
		}

		share := float64(len(unhandled)) / float64(len(f.Functions))
		signals = append(signals, domain.Signal{
			Detector:   d.Name(),
			Confidence: d.Confidence(),
			Severity:   float64(len(unhandled)),
			Description: fmt.Sprintf("%d of %d functions have no error handling: %s",
				len(unhandled), len(f.Functions), strings.Join(names, ", ")),
			Files:    fileRef(f.Path, unhandled[0].StartLine),
			Evidence: domain.Measure(share),
		})
	}
	return signals, nil
}

func isSensitive(name string) bool {
	lower := strings.ToLower(name)
	for _, pattern := range metrics.SensitiveNamePatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}
