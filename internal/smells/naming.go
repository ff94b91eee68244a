package smells

import (
	"fmt"

	"github.com/ludo-technologies/vibescan/domain"
	"github.com/ludo-technologies/vibescan/internal/config"
)

// VerboseNamingDetector flags declared identifiers longer than the configured limit
type VerboseNamingDetector struct {
	cfg config.VerboseNamingConfig
}

// NewVerboseNamingDetector creates the detector from its config section
func NewVerboseNamingDetector(cfg config.VerboseNamingConfig) *VerboseNamingDetector {
	return &VerboseNamingDetector{cfg: cfg}
}

func (d *VerboseNamingDetector) Name() string                  { return domain.DetectorVerboseNaming }
func (d *VerboseNamingDetector) Confidence() domain.Confidence { return domain.ConfidenceLow }
func (d *VerboseNamingDetector) Enabled() bool                 { return d.cfg.Enabled }

// Detect emits one signal per offending identifier
func (d *VerboseNamingDetector) Detect(in *Input) ([]domain.Signal, error) {
	var signals []domain.Signal
	for _, f := range sourceFiles(in, true) {
		if f.IdentifierLengths.Max <= d.cfg.MaxLength {
			continue
		}
		for _, id := range f.Identifiers {
			n := len(id.Name)
			if n <= d.cfg.MaxLength {
				continue
			}
			signals = append(signals, domain.Signal{
				Detector:    d.Name(),
				Confidence:  d.Confidence(),
				Severity:    float64(n - d.cfg.MaxLength),
				Description: fmt.Sprintf("%s name %q is %d characters long (limit %d)", id.Kind, id.Name, n, d.cfg.MaxLength),
				Files:       fileRef(f.Path, id.Line),
				Evidence:    domain.Measure(float64(n)),
				Threshold:   domain.Measure(float64(d.cfg.MaxLength)),
			})
		}
	}
	return signals, nil
}

// InconsistentNamingDetector flags files that mix camelCase and snake_case
// without a dominant convention
type InconsistentNamingDetector struct {
	cfg config.InconsistentNamingConfig
}

// NewInconsistentNamingDetector creates the detector from its config section
func NewInconsistentNamingDetector(cfg config.InconsistentNamingConfig) *InconsistentNamingDetector {
	return &InconsistentNamingDetector{cfg: cfg}
}

func (d *InconsistentNamingDetector) Name() string                  { return domain.DetectorInconsistentNaming }
func (d *InconsistentNamingDetector) Confidence() domain.Confidence { return domain.ConfidenceMedium }
func (d *InconsistentNamingDetector) Enabled() bool                 { return d.cfg.Enabled }

// Detect emits one signal per file whose naming tally has no dominant convention
func (d *InconsistentNamingDetector) Detect(in *Input) ([]domain.Signal, error) {
	var signals []domain.Signal
	for _, f := range sourceFiles(in, true) {
		tally := f.Naming
		if !tally.Inconsistent {
			continue
		}
		dominant := max(tally.Camel, tally.Snake, tally.Other)
		signals = append(signals, domain.Signal{
			Detector:   d.Name(),
			Confidence: d.Confidence(),
			Severity:   float64(tally.Total() - dominant),
			Description: fmt.Sprintf("naming mixes %d camelCase, %d snake_case and %d other identifiers",
				tally.Camel, tally.Snake, tally.Other),
			Files:     fileRef(f.Path, 0),
			Evidence:  domain.Measure(tally.Dominance),
			Threshold: domain.Measure(d.cfg.DominanceThreshold),
		})
	}
	return signals, nil
}
