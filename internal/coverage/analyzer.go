// Package coverage maps test files to the source files they exercise and
// derives test-related signals.
package coverage

import (
	"fmt"
	"sort"

	"github.com/ludo-technologies/vibescan/domain"
	"github.com/ludo-technologies/vibescan/internal/config"
)

// Options controls test mapping and its signals
type Options struct {
	MinFunctions   int
	LowRatio       float64
	FuzzyThreshold float64
}

// OptionsFromConfig derives analyzer options from the coverage section
func OptionsFromConfig(cfg config.CoverageConfig) Options {
	return Options{
		MinFunctions:   cfg.MinFunctions,
		LowRatio:       cfg.LowRatio,
		FuzzyThreshold: cfg.FuzzyThreshold,
	}
}

// Result is the outcome of a coverage analysis
type Result struct {
	SourceCodeLines int
	TestCodeLines   int

	// Ratio is test code lines over source code lines, 0 without source
	Ratio float64

	// Tests maps each source path to its mapped test paths, sorted
	Tests map[string][]string

	// StatementCoverage holds profile percentages for Go files found in the profile
	StatementCoverage map[string]float64

	Signals []domain.Signal
}

// Tested reports whether a source file has mapped tests or covered statements
func (r *Result) Tested(path string) bool {
	if len(r.Tests[path]) > 0 {
		return true
	}
	return r.StatementCoverage[path] > 0
}

// Analyzer maps tests to sources
type Analyzer struct {
	opts    Options
	profile *Profile
}

// NewAnalyzer creates an analyzer. profile may be nil.
func NewAnalyzer(opts Options, profile *Profile) *Analyzer {
	if opts.MinFunctions <= 0 {
		opts.MinFunctions = config.DefaultMinUntestedFunctions
	}
	if opts.LowRatio <= 0 {
		opts.LowRatio = config.DefaultLowTestRatio
	}
	if opts.FuzzyThreshold <= 0 {
		opts.FuzzyThreshold = config.DefaultFuzzyMatchThreshold
	}
	return &Analyzer{opts: opts, profile: profile}
}

type testStem struct {
	stem  string
	paths []string
}

// Analyze maps every code file's tests and returns the ratio and signals.
// Files that do not count as code are ignored.
func (a *Analyzer) Analyze(files []*domain.FileMetrics) *Result {
	res := &Result{
		Tests:             make(map[string][]string),
		StatementCoverage: make(map[string]float64),
	}

	var sources, tests []*domain.FileMetrics
	for _, f := range files {
		if f == nil || !f.Support.CountsAsCode() {
			continue
		}
		if f.IsTest {
			tests = append(tests, f)
			res.TestCodeLines += f.CodeLines
		} else {
			sources = append(sources, f)
			res.SourceCodeLines += f.CodeLines
		}
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i].Path < sources[j].Path })
	if res.SourceCodeLines > 0 {
		res.Ratio = float64(res.TestCodeLines) / float64(res.SourceCodeLines)
	}

	res.Tests = a.mapTests(sources, groupTestStems(tests))
	for _, src := range sources {
		if pct, ok := a.profile.Coverage(src.Path); ok {
			res.StatementCoverage[src.Path] = pct
		}
	}

	res.Signals = a.signals(res, sources, len(tests))
	return res
}

func groupTestStems(tests []*domain.FileMetrics) []testStem {
	byStem := make(map[string][]string)
	for _, t := range tests {
		stem := NormalizeStem(t.Path)
		if stem == "" {
			continue
		}
		byStem[stem] = append(byStem[stem], t.Path)
	}
	stems := make([]testStem, 0, len(byStem))
	for stem, paths := range byStem {
		sort.Strings(paths)
		stems = append(stems, testStem{stem: stem, paths: paths})
	}
	sort.Slice(stems, func(i, j int) bool { return stems[i].stem < stems[j].stem })
	return stems
}

// mapTests assigns each test stem to the sources sharing it. A test stem
// without such a source goes to its single most similar source stem, if that
// reaches the fuzzy threshold. Ties go to the lexically smallest stem.
func (a *Analyzer) mapTests(sources []*domain.FileMetrics, tests []testStem) map[string][]string {
	bySourceStem := make(map[string][]string)
	var sourceStems []string
	for _, src := range sources {
		stem := NormalizeStem(src.Path)
		if stem == "" {
			continue
		}
		if _, ok := bySourceStem[stem]; !ok {
			sourceStems = append(sourceStems, stem)
		}
		bySourceStem[stem] = append(bySourceStem[stem], src.Path)
	}
	sort.Strings(sourceStems)

	mapped := make(map[string][]string)
	for _, ts := range tests {
		target := ts.stem
		if _, ok := bySourceStem[target]; !ok {
			target = a.closestStem(ts.stem, sourceStems)
		}
		for _, p := range bySourceStem[target] {
			mapped[p] = append(mapped[p], ts.paths...)
		}
	}
	for p := range mapped {
		sort.Strings(mapped[p])
	}
	return mapped
}

func (a *Analyzer) closestStem(stem string, candidates []string) string {
	best, bestScore := "", 0.0
	for _, c := range candidates {
		score := Similarity(stem, c)
		if score >= a.opts.FuzzyThreshold && score > bestScore {
			best, bestScore = c, score
		}
	}
	return best
}

func (a *Analyzer) signals(res *Result, sources []*domain.FileMetrics, testFiles int) []domain.Signal {
	var signals []domain.Signal

	if res.SourceCodeLines > 0 && testFiles == 0 {
		signals = append(signals, domain.Signal{
			Detector:   domain.DetectorNoTests,
			Confidence: domain.ConfidenceHigh,
			Severity:   float64(len(sources)),
			Description: fmt.Sprintf("no test files found for %d source files (%d lines of code)",
				len(sources), res.SourceCodeLines),
			Evidence: domain.Measure(0),
		})
	}

	if testFiles > 0 && res.Ratio < a.opts.LowRatio {
		signals = append(signals, domain.Signal{
			Detector:   domain.DetectorLowTestRatio,
			Confidence: domain.ConfidenceMedium,
			Severity:   float64(res.SourceCodeLines - res.TestCodeLines),
			Description: fmt.Sprintf("test code is %.0f%% of source code (%d test lines for %d source lines)",
				res.Ratio*100, res.TestCodeLines, res.SourceCodeLines),
			Evidence:  domain.Measure(res.Ratio),
			Threshold: domain.Measure(a.opts.LowRatio),
		})
	}

	for _, src := range sources {
		n := len(src.Functions)
		if n < a.opts.MinFunctions || res.Tested(src.Path) {
			continue
		}
		line := 0
		if n > 0 {
			line = src.Functions[0].StartLine
		}
		signals = append(signals, domain.Signal{
			Detector:    domain.DetectorCriticalUntested,
			Confidence:  domain.ConfidenceHigh,
			Severity:    float64(n),
			Description: fmt.Sprintf("%d functions and no mapped test file", n),
			Files:       []domain.FileRef{{Path: src.Path, Line: line}},
			Evidence:    domain.Measure(float64(n)),
			Threshold:   domain.Measure(float64(a.opts.MinFunctions)),
		})
	}
	return signals
}
