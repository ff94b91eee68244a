package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/ludo-technologies/vibescan/domain"
	"github.com/ludo-technologies/vibescan/internal/config"
	"github.com/ludo-technologies/vibescan/internal/coverage"
	"github.com/ludo-technologies/vibescan/internal/duplicates"
	"github.com/ludo-technologies/vibescan/internal/logging"
	"github.com/ludo-technologies/vibescan/internal/metrics"
	"github.com/ludo-technologies/vibescan/internal/scoring"
	"github.com/ludo-technologies/vibescan/internal/smells"
	"github.com/ludo-technologies/vibescan/internal/walker"
)

// largestFunctionCount is how many functions a file summary names
const largestFunctionCount = 3

// ScanServiceImpl runs the whole signal pipeline over a repository
type ScanServiceImpl struct {
	progress domain.ProgressManager
	logger   *logging.Logger
}

// NewScanService creates a scan service without progress reporting
func NewScanService(logger *logging.Logger) *ScanServiceImpl {
	return &ScanServiceImpl{logger: logger}
}

// NewScanServiceWithProgress creates a scan service reporting stage progress to pm
func NewScanServiceWithProgress(pm domain.ProgressManager, logger *logging.Logger) *ScanServiceImpl {
	return &ScanServiceImpl{progress: pm, logger: logger}
}

// scanState carries the intermediate results of one scan
type scanState struct {
	cfg      *config.Config
	files    []domain.SourceFile
	metrics  []*domain.FileMetrics
	failures []error
	signals  []domain.Signal
	summary  domain.ScanSummary
}

// Scan walks root, extracts metrics, runs every detector and scores the result.
// ignorePatterns extend cfg.Scan.IgnorePatterns. A missing or non-directory root
// yields a *domain.PathError and an unloadable cover profile a *domain.ConfigError;
// per-file and per-detector failures become signals instead of errors.
func (s *ScanServiceImpl) Scan(ctx context.Context, root string, ignorePatterns []string, cfg *config.Config) (*domain.HealthReport, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	w, err := walker.New(root, walker.Options{
		IgnoreDirs:       cfg.Scan.IgnoreDirs,
		IgnorePatterns:   append(append([]string(nil), cfg.Scan.IgnorePatterns...), ignorePatterns...),
		RespectGitignore: cfg.Scan.RespectGitignore,
		MaxFileBytes:     cfg.Scan.MaxFileBytes,
	})
	if err != nil {
		return nil, err
	}

	var profile *coverage.Profile
	if cfg.Coverage.Profile != "" {
		profile, err = coverage.LoadProfile(cfg.Coverage.Profile)
		if err != nil {
			return nil, domain.NewConfigError("cannot use coverage profile", err)
		}
		s.logger.Debugf("loaded cover profile %s: %d files", cfg.Coverage.Profile, profile.Len())
	}

	st := &scanState{cfg: cfg}
	s.walk(w, st)
	s.logger.Debugf("walked %s: %d files, %d unreadable", w.Root(), len(st.files), st.summary.UnreadableFiles)

	executor := NewParallelExecutor(cfg.Performance.Workers())
	if s.progress != nil {
		executor = NewParallelExecutorWithProgress(cfg.Performance.Workers(), s.progress)
	}
	if err := s.extract(ctx, executor, st); err != nil {
		return nil, domain.NewAnalysisError("metric extraction", err)
	}
	analyzed := st.analyzed()

	dupDetector := duplicates.NewDetector(duplicates.OptionsFromConfig(cfg.Duplicates))
	groups := dupDetector.Detect(analyzed)
	st.signals = append(st.signals, dupDetector.Signals(groups)...)

	runner := smells.NewRunner(smells.NewDetectors(cfg.Smells), executor, s.logger)
	smellSignals := runner.Run(ctx, &smells.Input{Files: analyzed})
	st.signals = append(st.signals, suppressDuplicatedFragments(smellSignals, groups)...)

	cov := coverage.NewAnalyzer(coverage.OptionsFromConfig(cfg.Coverage), profile).Analyze(analyzed)
	st.signals = append(st.signals, cov.Signals...)
	domain.SortSignals(st.signals)

	if err := ctx.Err(); err != nil {
		return nil, domain.NewAnalysisError("scan", err)
	}

	return s.buildReport(w.Root(), st, analyzed, groups, cov), nil
}

// walk enumerates the tree, recording walk failures as unreadable files
func (s *ScanServiceImpl) walk(w *walker.Walker, st *scanState) {
	for file, err := range w.Files() {
		st.summary.TotalFiles++
		if err != nil {
			st.summary.UnreadableFiles++
			st.signals = append(st.signals, unreadable(file.RelPath, err))
			s.logger.Warnf("%v", err)
			continue
		}
		st.files = append(st.files, file)
	}
}

// extract loads and measures every walked file concurrently. Results are stored
// by index so the outcome does not depend on scheduling.
func (s *ScanServiceImpl) extract(ctx context.Context, executor *ParallelExecutorImpl, st *scanState) error {
	st.metrics = make([]*domain.FileMetrics, len(st.files))
	st.failures = make([]error, len(st.files))
	extractor := metrics.NewExtractor(metrics.OptionsFromConfig(st.cfg))

	var task domain.TaskProgress = noOpTaskProgress{}
	if s.progress != nil {
		task = s.progress.StartTask("Extracting metrics", len(st.files))
	}
	defer task.Complete()

	err := executor.ForEach(ctx, len(st.files), func(_ context.Context, i int) error {
		defer task.Increment(1)
		file := &st.files[i]
		if err := walker.Load(file); err != nil {
			st.failures[i] = err
			return nil
		}
		if !file.Binary {
			st.metrics[i] = extractor.Extract(file)
		}
		file.Content = nil
		return nil
	})
	if err != nil {
		return err
	}

	for i := range st.files {
		file := &st.files[i]
		st.summary.TotalBytes += file.SizeBytes
		switch {
		case st.failures[i] != nil:
			st.summary.UnreadableFiles++
			st.signals = append(st.signals, unreadable(file.RelPath, st.failures[i]))
			s.logger.Warnf("%v", st.failures[i])
		case file.Binary:
			st.summary.BinaryFiles++
			st.summary.BinaryBytes += file.SizeBytes
		}
	}
	return nil
}

// analyzed returns the extracted metrics in walk order
func (st *scanState) analyzed() []*domain.FileMetrics {
	out := make([]*domain.FileMetrics, 0, len(st.metrics))
	for _, m := range st.metrics {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}

func unreadable(path string, err error) domain.Signal {
	return domain.Signal{
		Detector:    domain.DetectorUnreadableFile,
		Confidence:  domain.ConfidenceLow,
		Severity:    1,
		Description: "file could not be read: " + rootCause(err).Error(),
		Files:       []domain.FileRef{{Path: path}},
	}
}

// rootCause unwraps err to its innermost cause, dropping the path context that
// *fs.PathError and the walker add
func rootCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}

// suppressDuplicatedFragments drops copy-paste signals whose files all belong to
// one duplicate group, since the group already reports that repetition
func suppressDuplicatedFragments(signals []domain.Signal, groups []domain.DuplicateGroup) []domain.Signal {
	if len(groups) == 0 {
		return signals
	}
	groupOf := make(map[string]int)
	for i, g := range groups {
		for _, m := range g.Members {
			groupOf[m.Path] = i
		}
	}

	kept := signals[:0]
	for _, sig := range signals {
		if sig.Detector == domain.DetectorCopyPaste && withinOneGroup(sig.Files, groupOf) {
			continue
		}
		kept = append(kept, sig)
	}
	return kept
}

func withinOneGroup(refs []domain.FileRef, groupOf map[string]int) bool {
	if len(refs) < 2 {
		return false
	}
	first, ok := groupOf[refs[0].Path]
	if !ok {
		return false
	}
	for _, ref := range refs[1:] {
		if g, ok := groupOf[ref.Path]; !ok || g != first {
			return false
		}
	}
	return true
}

// scoredSignals excludes detector failures, which describe the tool rather than the code
func scoredSignals(signals []domain.Signal) []domain.Signal {
	out := make([]domain.Signal, 0, len(signals))
	for _, sig := range signals {
		if sig.Detector != domain.DetectorUnavailable {
			out = append(out, sig)
		}
	}
	return out
}

func (s *ScanServiceImpl) buildReport(root string, st *scanState, analyzed []*domain.FileMetrics, groups []domain.DuplicateGroup, cov *coverage.Result) *domain.HealthReport {
	cfg := st.cfg
	summary := st.summary
	summary.AnalyzedFiles = len(analyzed)
	summary.SourceCodeLines = cov.SourceCodeLines
	summary.TestCodeLines = cov.TestCodeLines
	for _, m := range analyzed {
		switch {
		case !m.Support.CountsAsCode():
			summary.OtherFiles++
		case m.IsTest:
			summary.TestFiles++
		default:
			summary.SourceFiles++
		}
		summary.CommentLines += m.CommentLines
		summary.BlankLines += m.BlankLines
		summary.Functions += len(m.Functions)
		summary.Classes += len(m.Classes)
		summary.Todos += len(m.Todos)
	}
	counts := domain.CountByConfidence(st.signals)
	summary.HighSignals = counts[domain.ConfidenceHigh]
	summary.MediumSignals = counts[domain.ConfidenceMedium]
	summary.LowSignals = counts[domain.ConfidenceLow]

	featureCount, proxy := scoring.CountFeatures(analyzed, cfg.Features.Proxy)
	defects := scoring.EstimateDefects(cov.SourceCodeLines, cfg.Defects.BaselineRate, cfg.Defects.AIMultiplier)

	duplicated := 0
	for _, g := range groups {
		duplicated += len(g.Members)
	}
	score := scoring.NewScorer(cfg.Scoring, cfg.Coverage.TargetRatio).Score(scoring.Input{
		TestRatio:        cov.Ratio,
		SourceCodeLines:  cov.SourceCodeLines,
		Signals:          scoredSignals(st.signals),
		DuplicatedFiles:  duplicated,
		AnalyzedFiles:    len(analyzed),
		EstimatedDefects: defects.Estimate,
	})
	s.logger.Infof("scored %s: %d (%s) from %d signals", root, score.Score, score.Risk, len(st.signals))

	if groups == nil {
		groups = []domain.DuplicateGroup{}
	}
	signals := st.signals
	if signals == nil {
		signals = []domain.Signal{}
	}

	return &domain.HealthReport{
		Root:                root,
		Score:               score.Score,
		Risk:                score.Risk,
		EstimatedDefects:    defects.Count,
		DefectEstimate:      defects.Estimate,
		DefectRatePerKLOC:   defects.RatePerKLOC,
		FeatureCount:        featureCount,
		FeatureProxy:        proxy,
		FeatureInteractions: scoring.FeatureInteractions(featureCount),
		TestToCodeRatio:     cov.Ratio,
		Summary:             summary,
		ScoreBreakdown:      score.Breakdown,
		Languages:           languageStats(analyzed),
		Files:               fileSummaries(analyzed, cov),
		Duplicates:          groups,
		Signals:             signals,
	}
}

func languageStats(files []*domain.FileMetrics) []domain.LanguageStat {
	byLang := make(map[domain.Language]*domain.LanguageStat)
	for _, m := range files {
		stat, ok := byLang[m.Language]
		if !ok {
			stat = &domain.LanguageStat{Language: m.Language, Support: m.Support}
			byLang[m.Language] = stat
		}
		stat.Files++
		if m.Support.CountsAsCode() {
			stat.CodeLines += m.CodeLines
		}
	}

	stats := make([]domain.LanguageStat, 0, len(byLang))
	for _, stat := range byLang {
		stats = append(stats, *stat)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].CodeLines != stats[j].CodeLines {
			return stats[i].CodeLines > stats[j].CodeLines
		}
		return stats[i].Language < stats[j].Language
	})
	return stats
}

func fileSummaries(files []*domain.FileMetrics, cov *coverage.Result) []domain.FileSummary {
	summaries := make([]domain.FileSummary, 0, len(files))
	for _, m := range files {
		fs := domain.FileSummary{
			FileMetrics:      *m,
			LargestFunctions: largestFunctions(m.Functions, largestFunctionCount),
			Tests:            cov.Tests[m.Path],
		}
		fs.NormalizedLines = nil
		fs.CodeFragment = nil
		if pct, ok := cov.StatementCoverage[m.Path]; ok {
			fs.StatementCoverage = domain.Measure(pct)
		}
		summaries = append(summaries, fs)
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Path < summaries[j].Path })
	return summaries
}

func largestFunctions(fns []domain.FunctionSignature, n int) []string {
	if len(fns) == 0 {
		return nil
	}
	sorted := append([]domain.FunctionSignature(nil), fns...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Lines != sorted[j].Lines {
			return sorted[i].Lines > sorted[j].Lines
		}
		return sorted[i].StartLine < sorted[j].StartLine
	})
	names := make([]string, 0, n)
	for _, fn := range sorted[:min(n, len(sorted))] {
		names = append(names, fmt.Sprintf("%s (%d lines)", fn.Name, fn.Lines))
	}
	return names
}
