package domain

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
)

func TestConfidence_RankAndValidity(t *testing.T) {
	tests := []struct {
		confidence Confidence
		rank       int
		valid      bool
	}{
		{ConfidenceHigh, 3, true},
		{ConfidenceMedium, 2, true},
		{ConfidenceLow, 1, true},
		{Confidence("certain"), 0, false},
		{Confidence(""), 0, false},
	}
	for _, tt := range tests {
		if got := tt.confidence.Rank(); got != tt.rank {
			t.Errorf("Rank(%q) = %d, want %d", tt.confidence, got, tt.rank)
		}
		if got := tt.confidence.IsValid(); got != tt.valid {
			t.Errorf("IsValid(%q) = %v, want %v", tt.confidence, got, tt.valid)
		}
	}
}

func TestUrgencyFor(t *testing.T) {
	expected := map[Confidence]Urgency{
		ConfidenceHigh:   UrgencyNow,
		ConfidenceMedium: UrgencySoon,
		ConfidenceLow:    UrgencyLater,
	}
	for c, want := range expected {
		if got := UrgencyFor(c); got != want {
			t.Errorf("UrgencyFor(%s) = %s, want %s", c, got, want)
		}
	}
}

func TestSortSignals(t *testing.T) {
	signals := []Signal{
		{Detector: DetectorTodoMarkers, Files: []FileRef{{Path: "b.py", Line: 3}}},
		{Detector: DetectorLongFunction, Files: []FileRef{{Path: "b.py", Line: 9}}, Description: "z"},
		{Detector: DetectorLongFunction, Files: []FileRef{{Path: "b.py", Line: 9}}, Description: "a"},
		{Detector: DetectorNoTests},
		{Detector: DetectorLongFunction, Files: []FileRef{{Path: "a.py", Line: 40}}},
		{Detector: DetectorLongFunction, Files: []FileRef{{Path: "b.py", Line: 2}}},
	}
	SortSignals(signals)

	var got []string
	for _, s := range signals {
		got = append(got, fmt.Sprintf("%s:%s:%d:%s", s.PrimaryPath(), s.Detector, s.PrimaryLine(), s.Description))
	}
	want := []string{
		":no_tests_found:0:",
		"a.py:long_function:40:",
		"b.py:long_function:2:",
		"b.py:long_function:9:a",
		"b.py:long_function:9:z",
		"b.py:todo_markers:3:",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Unexpected order:\n got %v\nwant %v", got, want)
	}
}

func TestCountByConfidence(t *testing.T) {
	counts := CountByConfidence([]Signal{
		{Confidence: ConfidenceHigh},
		{Confidence: ConfidenceLow},
		{Confidence: ConfidenceLow},
	})
	want := map[Confidence]int{ConfidenceHigh: 1, ConfidenceMedium: 0, ConfidenceLow: 2}
	if !reflect.DeepEqual(counts, want) {
		t.Errorf("CountByConfidence = %v, want %v", counts, want)
	}
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    OutputFormat
		wantErr bool
	}{
		{"", OutputFormatText, false},
		{"TEXT", OutputFormatText, false},
		{"json", OutputFormatJSON, false},
		{"yml", OutputFormatYAML, false},
		{" md ", OutputFormatMarkdown, false},
		{"html", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOutputFormat(tt.input)
		if tt.wantErr {
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Errorf("ParseOutputFormat(%q): expected *ConfigError, got %v", tt.input, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseOutputFormat(%q) = %q, %v, want %q", tt.input, got, err, tt.want)
		}
	}

	if !OutputFormatJSON.IsMachineReadable() || !OutputFormatYAML.IsMachineReadable() {
		t.Error("Expected JSON and YAML to be machine readable")
	}
	if OutputFormatText.IsMachineReadable() || OutputFormatMarkdown.IsMachineReadable() {
		t.Error("Expected text and markdown to be for humans")
	}
}

func TestErrors(t *testing.T) {
	cause := errors.New("stat failed")

	pathErr := NewPathError("/repo", "does not exist", cause)
	if pathErr.Error() != `invalid scan root "/repo": does not exist: stat failed` {
		t.Errorf("Unexpected message %q", pathErr.Error())
	}
	if !errors.Is(pathErr, cause) {
		t.Error("Expected PathError to unwrap to its cause")
	}

	cfgErr := NewConfigError("bad weights", nil)
	if cfgErr.Error() != "bad weights" {
		t.Errorf("Unexpected message %q", cfgErr.Error())
	}

	analysisErr := NewAnalysisError("extract", cause)
	if analysisErr.Error() != "extract failed: stat failed" || !errors.Is(analysisErr, cause) {
		t.Errorf("Unexpected analysis error %v", analysisErr)
	}

	tests := []struct {
		err  error
		want bool
	}{
		{pathErr, true},
		{fmt.Errorf("scan: %w", cfgErr), true},
		{analysisErr, false},
		{cause, false},
		{nil, false},
	}
	for _, tt := range tests {
		if got := IsUserError(tt.err); got != tt.want {
			t.Errorf("IsUserError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestFixPrompt_Text(t *testing.T) {
	p := &FixPrompt{
		Title:        "Add tests for src/billing.py",
		Instructions: []string{"Create tests/test_billing.py", "Cover charge_1"},
		Verification: "Run pytest tests/test_billing.py",
	}
	want := "Add tests for src/billing.py\n1. Create tests/test_billing.py\n2. Cover charge_1\nVerify: Run pytest tests/test_billing.py\n"
	if got := p.Text(); got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}

	p.Verification = ""
	if got := p.Text(); got != "Add tests for src/billing.py\n1. Create tests/test_billing.py\n2. Cover charge_1\n" {
		t.Errorf("Expected no verification line, got %q", got)
	}
}

func TestReportHelpers(t *testing.T) {
	g := DuplicateGroup{Members: []DuplicateMember{{Path: "a.py"}, {Path: "b.py"}}}
	if !reflect.DeepEqual(g.Paths(), []string{"a.py", "b.py"}) {
		t.Errorf("Unexpected paths %v", g.Paths())
	}

	r := &HealthReport{Files: []FileSummary{{FileMetrics: FileMetrics{Path: "a.py"}}, {FileMetrics: FileMetrics{Path: "b.py"}}}}
	if fs := r.FileSummaryFor("b.py"); fs == nil || fs.Path != "b.py" {
		t.Errorf("Expected the summary of b.py, got %+v", fs)
	}
	if r.FileSummaryFor("c.py") != nil {
		t.Error("Expected nil for an unknown path")
	}

	m := &FileMetrics{Functions: []FunctionSignature{{Name: "load"}, {Name: "save"}}}
	if !reflect.DeepEqual(m.FunctionNames(), []string{"load", "save"}) {
		t.Errorf("Unexpected function names %v", m.FunctionNames())
	}

	if !SupportPrimary.CountsAsCode() || !SupportBasic.CountsAsCode() || SupportUnknown.CountsAsCode() {
		t.Error("Unexpected CountsAsCode results")
	}
	if (NamingTally{Camel: 2, Snake: 3, Other: 1}).Total() != 6 {
		t.Error("Expected Total to sum every convention")
	}
}
