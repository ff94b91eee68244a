package smells

import (
	"fmt"

	"github.com/ludo-technologies/vibescan/domain"
	"github.com/ludo-technologies/vibescan/internal/config"
)

// ExcessiveCommentsDetector flags files where comments outweigh the code they describe
type ExcessiveCommentsDetector struct {
	cfg config.ExcessiveCommentsConfig
}

// NewExcessiveCommentsDetector creates the detector from its config section
func NewExcessiveCommentsDetector(cfg config.ExcessiveCommentsConfig) *ExcessiveCommentsDetector {
	return &ExcessiveCommentsDetector{cfg: cfg}
}

func (d *ExcessiveCommentsDetector) Name() string                  { return domain.DetectorExcessiveComments }
func (d *ExcessiveCommentsDetector) Confidence() domain.Confidence { return domain.ConfidenceLow }
func (d *ExcessiveCommentsDetector) Enabled() bool                 { return d.cfg.Enabled }

// Detect emits one signal per file whose comment ratio is strictly above the limit.
// Files with fewer code lines than MinCodeLines are too small to judge.
func (d *ExcessiveCommentsDetector) Detect(in *Input) ([]domain.Signal, error) {
	var signals []domain.Signal
	for _, f := range sourceFiles(in, true) {
		if f.CodeLines < d.cfg.MinCodeLines || f.CommentRatio <= d.cfg.MaxRatio {
			continue
		}
		signals = append(signals, domain.Signal{
			Detector:   d.Name(),
			Confidence: d.Confidence(),
			Severity:   float64(f.CommentLines),
			Description: fmt.Sprintf("comments make up %.0f%% of non-blank lines (limit %.0f%%)",
				f.CommentRatio*100, d.cfg.MaxRatio*100),
			Files:     fileRef(f.Path, 0),
			Evidence:  domain.Measure(f.CommentRatio),
			Threshold: domain.Measure(d.cfg.MaxRatio),
		})
	}
	return signals, nil
}
