package fixer

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/ludo-technologies/vibescan/domain"
)

func fileSummary(path string, lang domain.Language, codeLines, functions int, isTest bool, tests ...string) domain.FileSummary {
	fs := domain.FileSummary{
		FileMetrics: domain.FileMetrics{
			Path:      path,
			Language:  lang,
			Support:   domain.SupportPrimary,
			IsTest:    isTest,
			CodeLines: codeLines,
		},
		Tests: tests,
	}
	for i := 1; i <= functions; i++ {
		fs.Functions = append(fs.Functions, domain.FunctionSignature{Name: fmt.Sprintf("fn%d", i), File: path, StartLine: i * 10})
	}
	return fs
}

func sampleReport() *domain.HealthReport {
	return &domain.HealthReport{
		Languages: []domain.LanguageStat{
			{Language: domain.LanguagePython, Support: domain.SupportPrimary, Files: 4, CodeLines: 900},
			{Language: domain.LanguageGo, Support: domain.SupportPrimary, Files: 1, CodeLines: 100},
		},
		Files: []domain.FileSummary{
			fileSummary("src/a.py", domain.LanguagePython, 400, 6, false),
			fileSummary("src/b.py", domain.LanguagePython, 200, 3, false, "tests/test_b.py"),
			fileSummary("src/c.py", domain.LanguagePython, 200, 2, false),
			fileSummary("tools/gen.go", domain.LanguageGo, 100, 4, false),
			fileSummary("tests/test_b.py", domain.LanguagePython, 100, 5, true),
		},
		Signals: []domain.Signal{
			{Detector: domain.DetectorCriticalUntested, Confidence: domain.ConfidenceHigh, Severity: 6,
				Description: "6 functions and no mapped test file", Files: []domain.FileRef{{Path: "src/a.py", Line: 3}}},
			{Detector: domain.DetectorLongFunction, Confidence: domain.ConfidenceMedium, Severity: 90,
				Description: "function load spans 90 lines (limit 80)", Files: []domain.FileRef{{Path: "src/a.py", Line: 10}}},
			{Detector: domain.DetectorLongFunction, Confidence: domain.ConfidenceMedium, Severity: 100,
				Description: "function save spans 100 lines (limit 80)", Files: []domain.FileRef{{Path: "src/a.py", Line: 120}}},
			{Detector: domain.DetectorExactDuplicate, Confidence: domain.ConfidenceHigh, Severity: 2,
				Description: "2 files have identical content", Files: []domain.FileRef{{Path: "src/b.py"}, {Path: "src/c.py"}}},
			{Detector: domain.DetectorTodoMarkers, Confidence: domain.ConfidenceLow, Severity: 1,
				Description: "1 unfinished-work markers (TODO)", Files: []domain.FileRef{{Path: "src/c.py", Line: 7}}},
			{Detector: domain.DetectorUnavailable, Confidence: domain.ConfidenceMedium, Severity: 1,
				Description: "detector boilerplate_heavy could not run: boom"},
			{Detector: domain.DetectorLowTestRatio, Confidence: domain.ConfidenceMedium, Severity: 800,
				Description: "test code is 11% of source code (100 test lines for 900 source lines)"},
		},
	}
}

func TestGenerate_Ranking(t *testing.T) {
	prompts := NewEngine(0).Generate(sampleReport())

	want := []string{
		domain.DetectorCriticalUntested,
		domain.DetectorExactDuplicate,
		domain.DetectorLowTestRatio,
		domain.DetectorLongFunction,
		domain.DetectorTodoMarkers,
	}
	var got []string
	for _, p := range prompts {
		got = append(got, p.Detector)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Expected order %v, got %v", want, got)
	}
	for i, p := range prompts {
		if p.Rank != i+1 {
			t.Errorf("Expected rank %d, got %d", i+1, p.Rank)
		}
		if p.Urgency != domain.UrgencyFor(p.Confidence) {
			t.Errorf("Prompt %s has urgency %s for confidence %s", p.Detector, p.Urgency, p.Confidence)
		}
		if len(p.Instructions) == 0 || p.Verification == "" || p.Title == "" {
			t.Errorf("Prompt %s is not self-contained: %+v", p.Detector, p)
		}
	}
}

func TestGenerate_GroupsByDetectorAndFile(t *testing.T) {
	prompts := NewEngine(0).Generate(sampleReport())

	long := prompts[3]
	if !reflect.DeepEqual(long.SignalRefs, []int{1, 2}) {
		t.Errorf("Expected both long functions in one prompt, got refs %v", long.SignalRefs)
	}
	if long.Impact != 190 {
		t.Errorf("Expected impact to sum severities, got %f", long.Impact)
	}
	if !strings.Contains(long.Instructions[0], "load spans 90 lines (line 10)") {
		t.Errorf("Expected instructions to restate each function, got %q", long.Instructions[0])
	}
	if len(long.Files) != 1 || long.Files[0].Path != "src/a.py" {
		t.Errorf("Expected a.py to be listed once, got %+v", long.Files)
	}
}

func TestGenerate_RestatesCounts(t *testing.T) {
	prompts := NewEngine(0).Generate(sampleReport())

	critical := prompts[0]
	if critical.Title != "Add tests for src/a.py" {
		t.Errorf("Unexpected title %q", critical.Title)
	}
	f := critical.Files[0]
	if f.Functions != 6 || f.Tests != 0 || f.CodeLines != 400 || f.Line != 3 {
		t.Errorf("Unexpected file counts %+v", f)
	}
	if critical.Instructions[1] != "Cover the functions in file order: fn1, fn2, fn3, fn4, fn5, fn6." {
		t.Errorf("Expected the untested functions to be named, got %q", critical.Instructions[1])
	}
	if !strings.Contains(critical.Verification, "pytest") {
		t.Errorf("Expected a Python test command, got %q", critical.Verification)
	}

	dup := prompts[1]
	if len(dup.Files) != 2 || dup.Files[0].Tests != 1 {
		t.Errorf("Expected both duplicates with their test counts, got %+v", dup.Files)
	}

	ratio := prompts[2]
	if len(ratio.Files) == 0 || ratio.Files[0].Path != "src/a.py" {
		t.Errorf("Expected codebase-level prompt to list the largest untested modules, got %+v", ratio.Files)
	}
	for _, f := range ratio.Files {
		if f.Path == "tests/test_b.py" {
			t.Error("Expected test files to be excluded from module lists")
		}
	}
}

func TestGenerate_MaxPrompts(t *testing.T) {
	prompts := NewEngine(2).Generate(sampleReport())
	if len(prompts) != 2 || prompts[1].Detector != domain.DetectorExactDuplicate {
		t.Errorf("Expected the two highest ranked prompts, got %+v", prompts)
	}
}

func TestGenerate_TieBreaksOnPath(t *testing.T) {
	report := &domain.HealthReport{
		Signals: []domain.Signal{
			{Detector: domain.DetectorTodoMarkers, Confidence: domain.ConfidenceLow, Severity: 2, Files: []domain.FileRef{{Path: "z.py"}}},
			{Detector: domain.DetectorVerboseNaming, Confidence: domain.ConfidenceLow, Severity: 2, Files: []domain.FileRef{{Path: "a.py"}}},
			{Detector: domain.DetectorExcessiveComments, Confidence: domain.ConfidenceLow, Severity: 2, Files: []domain.FileRef{{Path: "a.py"}}},
		},
	}
	prompts := NewEngine(0).Generate(report)
	var got []string
	for _, p := range prompts {
		got = append(got, p.Files[0].Path+":"+p.Detector)
	}
	want := []string{"a.py:excessive_comments", "a.py:verbose_naming", "z.py:todo_markers"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestGenerate_Empty(t *testing.T) {
	if prompts := NewEngine(0).Generate(nil); prompts != nil {
		t.Errorf("Expected nil for a nil report, got %+v", prompts)
	}
	if prompts := NewEngine(0).Generate(&domain.HealthReport{}); len(prompts) != 0 {
		t.Errorf("Expected no prompts without signals, got %+v", prompts)
	}
}

func TestGenerate_GoVerification(t *testing.T) {
	report := sampleReport()
	report.Signals = []domain.Signal{{
		Detector: domain.DetectorMissingErrorHandling, Confidence: domain.ConfidenceMedium, Severity: 1,
		Description: "1 of 4 functions have no error handling: Render", Files: []domain.FileRef{{Path: "tools/gen.go", Line: 5}},
	}}
	prompts := NewEngine(0).Generate(report)
	if len(prompts) != 1 {
		t.Fatalf("Expected one prompt, got %d", len(prompts))
	}
	if !strings.Contains(prompts[0].Verification, "go test ./...") || !strings.Contains(prompts[0].Verification, "gen.go") {
		t.Errorf("Unexpected verification %q", prompts[0].Verification)
	}
	if !strings.HasPrefix(prompts[0].Instructions[0], "1 of 4 functions") {
		t.Errorf("Expected the finding restated first, got %q", prompts[0].Instructions[0])
	}
}

func TestTestCommand(t *testing.T) {
	if TestCommand(domain.LanguageRust) != "cargo test" {
		t.Error("Expected cargo test for Rust")
	}
	if TestCommand(domain.LanguageUnknown) != fallbackTestCommand {
		t.Error("Expected the fallback for unknown languages")
	}
}

func TestFixPromptText(t *testing.T) {
	prompts := NewEngine(1).Generate(sampleReport())
	text := prompts[0].Text()
	if !strings.HasPrefix(text, "Add tests for src/a.py\n1. ") || !strings.Contains(text, "Verify: Run pytest") {
		t.Errorf("Unexpected prompt text:\n%s", text)
	}
}
