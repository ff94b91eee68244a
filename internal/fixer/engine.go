// Package fixer turns a health report into ranked, self-contained fix prompts.
package fixer

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/ludo-technologies/vibescan/domain"
)

// maxPromptFiles bounds the files restated in one prompt
const maxPromptFiles = 10

// Engine generates fix prompts. It never modifies source files.
type Engine struct {
	maxPrompts int
}

// NewEngine creates an engine. maxPrompts <= 0 means no limit.
func NewEngine(maxPrompts int) *Engine {
	return &Engine{maxPrompts: maxPrompts}
}

// group collects the signals of one detector for one primary file
type group struct {
	detector   string
	path       string
	confidence domain.Confidence
	impact     float64
	signals    []domain.Signal
	refs       []int
	files      []domain.PromptFile
	report     *domain.HealthReport
}

type groupKey struct {
	detector string
	path     string
}

// Generate groups the report's signals by detector and primary file and
// returns one prompt per group, ranked by confidence, impact, path and detector
func (e *Engine) Generate(report *domain.HealthReport) []domain.FixPrompt {
	if report == nil {
		return nil
	}

	groups := make(map[groupKey]*group)
	var order []*group
	for i, s := range report.Signals {
		if s.Detector == domain.DetectorUnavailable {
			continue
		}
		key := groupKey{detector: s.Detector, path: s.PrimaryPath()}
		g, ok := groups[key]
		if !ok {
			g = &group{detector: key.detector, path: key.path, confidence: s.Confidence, report: report}
			groups[key] = g
			order = append(order, g)
		}
		if s.Confidence.Rank() > g.confidence.Rank() {
			g.confidence = s.Confidence
		}
		g.impact += s.Severity
		g.signals = append(g.signals, s)
		g.refs = append(g.refs, i)
	}

	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a.confidence.Rank() != b.confidence.Rank() {
			return a.confidence.Rank() > b.confidence.Rank()
		}
		if a.impact != b.impact {
			return a.impact > b.impact
		}
		if a.path != b.path {
			return a.path < b.path
		}
		return a.detector < b.detector
	})
	if e.maxPrompts > 0 && len(order) > e.maxPrompts {
		order = order[:e.maxPrompts]
	}

	prompts := make([]domain.FixPrompt, 0, len(order))
	for i, g := range order {
		g.files = g.promptFiles()
		r := recipeFor(g.detector)
		prompts = append(prompts, domain.FixPrompt{
			Rank:         i + 1,
			Title:        r.title(g),
			Detector:     g.detector,
			Confidence:   g.confidence,
			Urgency:      domain.UrgencyFor(g.confidence),
			Impact:       g.impact,
			Files:        g.files,
			Instructions: r.steps(g),
			Verification: g.verification(),
			SignalRefs:   g.refs,
		})
	}
	return prompts
}

// promptFiles restates every referenced file with its counts. Codebase-level
// groups list the largest source modules instead.
func (g *group) promptFiles() []domain.PromptFile {
	var files []domain.PromptFile
	seen := make(map[string]bool)
	for _, s := range g.signals {
		for _, ref := range s.Files {
			if seen[ref.Path] || len(files) == maxPromptFiles {
				continue
			}
			seen[ref.Path] = true
			files = append(files, g.promptFile(ref.Path, ref.Line))
		}
	}
	if len(files) > 0 {
		return files
	}
	for _, summary := range g.largest(5) {
		files = append(files, g.promptFile(summary.Path, 0))
	}
	return files
}

func (g *group) promptFile(p string, line int) domain.PromptFile {
	pf := domain.PromptFile{Path: p, Line: line}
	if summary := g.report.FileSummaryFor(p); summary != nil {
		pf.Functions = len(summary.Functions)
		pf.Tests = len(summary.Tests)
		pf.CodeLines = summary.CodeLines
	}
	return pf
}

// largest returns source files ordered by function count, untested ones first
func (g *group) largest(n int) []domain.FileSummary {
	var sources []domain.FileSummary
	for _, f := range g.report.Files {
		if !f.IsTest && f.Support.CountsAsCode() && len(f.Functions) > 0 {
			sources = append(sources, f)
		}
	}
	sort.SliceStable(sources, func(i, j int) bool {
		a, b := sources[i], sources[j]
		if (len(a.Tests) == 0) != (len(b.Tests) == 0) {
			return len(a.Tests) == 0
		}
		if len(a.Functions) != len(b.Functions) {
			return len(a.Functions) > len(b.Functions)
		}
		return a.Path < b.Path
	})
	if len(sources) > n {
		sources = sources[:n]
	}
	return sources
}

func (g *group) largestModules(n int) string {
	largest := g.largest(n)
	if len(largest) == 0 {
		return "the main source files"
	}
	parts := make([]string, len(largest))
	for i, f := range largest {
		parts[i] = fmt.Sprintf("%s (%d functions)", f.Path, len(f.Functions))
	}
	return strings.Join(parts, ", ")
}

func (g *group) primaryFile() domain.PromptFile {
	if len(g.files) > 0 {
		return g.files[0]
	}
	return g.promptFile(g.path, 0)
}

func (g *group) fileList() string {
	paths := make([]string, len(g.files))
	for i, f := range g.files {
		paths[i] = f.Path
	}
	return strings.Join(paths, ", ")
}

func (g *group) language() domain.Language {
	if g.path != "" {
		if summary := g.report.FileSummaryFor(g.path); summary != nil {
			return summary.Language
		}
	}
	return dominantLanguage(g.report)
}

func (g *group) languageName() string {
	if lang := g.language(); lang != "" && lang != domain.LanguageUnknown {
		return string(lang)
	}
	return "language"
}

func (g *group) testCommand() string {
	return TestCommand(g.language())
}

func (g *group) verification() string {
	scope := "the codebase"
	if g.path != "" {
		scope = path.Base(g.path)
	}
	return fmt.Sprintf("Run %s, then rescan and confirm %s no longer reports %s.", g.testCommand(), scope, g.detector)
}
