package coverage

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/ludo-technologies/vibescan/domain"
	"github.com/ludo-technologies/vibescan/internal/testutil"
)

func code(path string, lines, functions int) *domain.FileMetrics {
	f := &domain.FileMetrics{
		Path:      path,
		Language:  domain.LanguagePython,
		Support:   domain.SupportPrimary,
		CodeLines: lines,
	}
	for i := 0; i < functions; i++ {
		f.Functions = append(f.Functions, domain.FunctionSignature{Name: fmt.Sprintf("f%d", i), StartLine: i*5 + 3, Lines: 4})
	}
	return f
}

func test(path string, lines int) *domain.FileMetrics {
	f := code(path, lines, 0)
	f.IsTest = true
	return f
}

func detectors(signals []domain.Signal) []string {
	var names []string
	for _, s := range signals {
		names = append(names, s.Detector)
	}
	return names
}

func TestAnalyze_NoTests(t *testing.T) {
	files := []*domain.FileMetrics{
		code("src/billing.py", 300, 6),
		code("src/util.py", 100, 2),
	}
	res := NewAnalyzer(Options{}, nil).Analyze(files)

	if res.Ratio != 0 || res.SourceCodeLines != 400 {
		t.Errorf("Expected ratio 0 over 400 source lines, got %f over %d", res.Ratio, res.SourceCodeLines)
	}
	want := []string{domain.DetectorNoTests, domain.DetectorCriticalUntested}
	if got := detectors(res.Signals); !reflect.DeepEqual(got, want) {
		t.Fatalf("Expected signals %v, got %v", want, got)
	}
	noTests := res.Signals[0]
	if noTests.Confidence != domain.ConfidenceHigh || len(noTests.Files) != 0 {
		t.Errorf("Expected a codebase-level high signal, got %+v", noTests)
	}
	critical := res.Signals[1]
	if critical.PrimaryPath() != "src/billing.py" || critical.Severity != 6 || critical.PrimaryLine() != 3 {
		t.Errorf("Unexpected critical signal %+v", critical)
	}
}

func TestAnalyze_EmptyInput(t *testing.T) {
	res := NewAnalyzer(Options{}, nil).Analyze(nil)
	if res.Ratio != 0 || len(res.Signals) != 0 {
		t.Errorf("Expected no signals for an empty codebase, got %+v", res.Signals)
	}
}

func TestAnalyze_Mapping(t *testing.T) {
	files := []*domain.FileMetrics{
		code("src/payment_processor.py", 200, 8),
		code("src/userrepo.py", 100, 6),
		code("src/billing.py", 100, 5),
		test("tests/test_payment_processor.py", 120),
		test("tests/test_user_repo.py", 80),
		{Path: "docs/guide.md", Support: domain.SupportUnknown, CodeLines: 500},
	}
	res := NewAnalyzer(Options{}, nil).Analyze(files)

	if got := res.Tests["src/payment_processor.py"]; !reflect.DeepEqual(got, []string{"tests/test_payment_processor.py"}) {
		t.Errorf("Expected exact stem mapping, got %v", got)
	}
	if got := res.Tests["src/userrepo.py"]; !reflect.DeepEqual(got, []string{"tests/test_user_repo.py"}) {
		t.Errorf("Expected fuzzy stem mapping, got %v", got)
	}
	if _, ok := res.Tests["src/billing.py"]; ok {
		t.Errorf("Expected billing.py to stay unmapped")
	}
	if res.SourceCodeLines != 400 || res.TestCodeLines != 200 || res.Ratio != 0.5 {
		t.Errorf("Unexpected totals: %d source, %d test, ratio %f", res.SourceCodeLines, res.TestCodeLines, res.Ratio)
	}

	want := []string{domain.DetectorCriticalUntested}
	if got := detectors(res.Signals); !reflect.DeepEqual(got, want) {
		t.Fatalf("Expected signals %v, got %v", want, got)
	}
	if res.Signals[0].PrimaryPath() != "src/billing.py" {
		t.Errorf("Expected billing.py to be flagged, got %s", res.Signals[0].PrimaryPath())
	}
}

func TestAnalyze_SiblingStemsStayUntested(t *testing.T) {
	files := []*domain.FileMetrics{
		code("src/handler_a.py", 120, 6),
		code("src/handler_b.py", 120, 6),
		test("tests/test_handler_a.py", 100),
	}
	res := NewAnalyzer(Options{}, nil).Analyze(files)

	if got := res.Tests["src/handler_a.py"]; !reflect.DeepEqual(got, []string{"tests/test_handler_a.py"}) {
		t.Errorf("Expected handler_a.py to map to its test, got %v", got)
	}
	if got, ok := res.Tests["src/handler_b.py"]; ok {
		t.Errorf("Expected handler_b.py to stay unmapped, got %v", got)
	}

	var critical []string
	for _, s := range res.Signals {
		if s.Detector == domain.DetectorCriticalUntested {
			critical = append(critical, s.PrimaryPath())
		}
	}
	if !reflect.DeepEqual(critical, []string{"src/handler_b.py"}) {
		t.Errorf("Expected handler_b.py to be flagged as untested, got %v", critical)
	}
}

func TestAnalyze_FuzzyMatchPicksClosestSource(t *testing.T) {
	files := []*domain.FileMetrics{
		code("src/userrepo.py", 100, 6),
		code("src/user_report.py", 100, 6),
		test("tests/test_user_repo.py", 80),
	}
	res := NewAnalyzer(Options{}, nil).Analyze(files)

	mapped := 0
	for _, tests := range res.Tests {
		mapped += len(tests)
	}
	if mapped != 1 {
		t.Fatalf("Expected the test to map to exactly one source, got %v", res.Tests)
	}
	if got := res.Tests["src/userrepo.py"]; !reflect.DeepEqual(got, []string{"tests/test_user_repo.py"}) {
		t.Errorf("Expected the closest stem to win, got %v", res.Tests)
	}
}

func TestAnalyze_LowRatio(t *testing.T) {
	tests := []struct {
		name      string
		testLines int
		want      bool
	}{
		{"quarter", 100, true},
		{"just below", 199, true},
		{"at limit", 200, false},
		{"healthy", 400, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files := []*domain.FileMetrics{code("src/app.py", 400, 1), test("tests/test_app.py", tt.testLines)}
			res := NewAnalyzer(Options{}, nil).Analyze(files)

			found := false
			for _, s := range res.Signals {
				if s.Detector == domain.DetectorLowTestRatio {
					found = true
					if s.Confidence != domain.ConfidenceMedium {
						t.Errorf("Expected medium confidence, got %s", s.Confidence)
					}
				}
			}
			if found != tt.want {
				t.Errorf("Expected low_test_ratio=%v at %d test lines", tt.want, tt.testLines)
			}
		})
	}
}

const profile = `mode: set
example.com/shop/pkg/calc.go:3.20,5.2 2 1
example.com/shop/pkg/calc.go:7.20,9.2 2 0
example.com/shop/pkg/empty.go:3.20,5.2 0 0
`

func TestLoadProfile(t *testing.T) {
	root := t.TempDir()
	p, err := LoadProfile(testutil.WriteFile(t, root, "cover.out", profile))
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, 2, p.Len())

	pct, ok := p.Coverage("pkg/calc.go")
	if !ok || pct != 50 {
		t.Errorf("Expected 50%% coverage, got %f (found=%v)", pct, ok)
	}
	if _, ok := p.Coverage("alc.go"); ok {
		t.Error("Expected partial segment names not to match")
	}
	if _, ok := p.Coverage("pkg/calc.py"); ok {
		t.Error("Expected non-Go files to be ignored")
	}
	if pct, ok := p.Coverage("pkg/empty.go"); !ok || pct != 0 {
		t.Errorf("Expected 0%% for a file without statements, got %f", pct)
	}

	_, err = LoadProfile(testutil.WriteFile(t, root, "bad.out", "not a profile\n"))
	testutil.AssertError(t, err)
}

func TestAnalyze_ProfileMarksTested(t *testing.T) {
	root := t.TempDir()
	p, err := LoadProfile(testutil.WriteFile(t, root, "cover.out", profile))
	testutil.AssertNoError(t, err)

	calc := code("pkg/calc.go", 120, 6)
	calc.Language = domain.LanguageGo
	res := NewAnalyzer(Options{}, p).Analyze([]*domain.FileMetrics{calc, test("pkg/other_test.go", 10)})

	if res.StatementCoverage["pkg/calc.go"] != 50 {
		t.Errorf("Expected statement coverage to be recorded, got %v", res.StatementCoverage)
	}
	for _, s := range res.Signals {
		if s.Detector == domain.DetectorCriticalUntested {
			t.Errorf("Expected covered file not to be flagged, got %+v", s)
		}
	}
}
