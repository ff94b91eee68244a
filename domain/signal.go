package domain

import (
	"sort"
)

// Confidence is the fixed tier a detector assigns to its signals
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Rank orders confidence tiers, higher is more certain
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	default:
		return 0
	}
}

// IsValid reports whether c is one of the known tiers
func (c Confidence) IsValid() bool {
	return c.Rank() > 0
}

// Detector names
const (
	DetectorExcessiveComments    = "excessive_comments"
	DetectorVerboseNaming        = "verbose_naming"
	DetectorBoilerplateHeavy     = "boilerplate_heavy"
	DetectorInconsistentNaming   = "inconsistent_naming"
	DetectorDeadCodeIndicators   = "dead_code_indicators"
	DetectorOverEngineering      = "over_engineering"
	DetectorMissingErrorHandling = "missing_error_handling"
	DetectorCopyPaste            = "copy_paste_artifacts"
	DetectorLongFunction         = "long_function"
	DetectorTodoMarkers          = "todo_markers"

	DetectorExactDuplicate = "exact_duplicate"
	DetectorNearDuplicate  = "near_duplicate"

	DetectorNoTests          = "no_tests_found"
	DetectorCriticalUntested = "critical_untested_module"
	DetectorLowTestRatio     = "low_test_ratio"

	DetectorUnreadableFile = "unreadable_file"
	DetectorUnavailable    = "detector_unavailable"
)

// FileRef points at a file and optionally a line within it
type FileRef struct {
	Path string `json:"path" yaml:"path"`
	Line int    `json:"line,omitempty" yaml:"line,omitempty"`
}

// Signal is a single piece of evidence produced by a detector
type Signal struct {
	Detector   string     `json:"detector" yaml:"detector"`
	Confidence Confidence `json:"confidence" yaml:"confidence"`

	// Severity is the detector-assigned impact estimate, such as untested function count
	Severity float64 `json:"severity" yaml:"severity"`

	Description string    `json:"description" yaml:"description"`
	Files       []FileRef `json:"files,omitempty" yaml:"files,omitempty"`

	// Evidence is the measured value, Threshold the bound it was compared with
	Evidence  *float64 `json:"evidence,omitempty" yaml:"evidence,omitempty"`
	Threshold *float64 `json:"threshold,omitempty" yaml:"threshold,omitempty"`
}

// PrimaryPath returns the first affected file, or "" for codebase-level signals
func (s *Signal) PrimaryPath() string {
	if len(s.Files) == 0 {
		return ""
	}
	return s.Files[0].Path
}

// PrimaryLine returns the line of the first affected file
func (s *Signal) PrimaryLine() int {
	if len(s.Files) == 0 {
		return 0
	}
	return s.Files[0].Line
}

// Measure returns a pointer to v for the optional Evidence and Threshold fields
func Measure(v float64) *float64 {
	return &v
}

// SortSignals orders signals by primary path, detector, line and description
func SortSignals(signals []Signal) {
	sort.SliceStable(signals, func(i, j int) bool {
		a, b := &signals[i], &signals[j]
		if a.PrimaryPath() != b.PrimaryPath() {
			return a.PrimaryPath() < b.PrimaryPath()
		}
		if a.Detector != b.Detector {
			return a.Detector < b.Detector
		}
		if a.PrimaryLine() != b.PrimaryLine() {
			return a.PrimaryLine() < b.PrimaryLine()
		}
		return a.Description < b.Description
	})
}

// CountByConfidence tallies signals per tier
func CountByConfidence(signals []Signal) map[Confidence]int {
	counts := map[Confidence]int{
		ConfidenceHigh:   0,
		ConfidenceMedium: 0,
		ConfidenceLow:    0,
	}
	for _, s := range signals {
		counts[s.Confidence]++
	}
	return counts
}
