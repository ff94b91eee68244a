package domain

// DuplicateKind distinguishes byte-equivalent from similar files
type DuplicateKind string

const (
	DuplicateExact DuplicateKind = "exact"
	DuplicateNear  DuplicateKind = "near"
)

// DuplicateMember is one file of a duplicate group
type DuplicateMember struct {
	Path string `json:"path" yaml:"path"`

	// Similarity is the best verified similarity to another member
	Similarity float64 `json:"similarity" yaml:"similarity"`
}

// DuplicateGroup is a set of two or more files with equivalent or similar content
type DuplicateGroup struct {
	Kind    DuplicateKind     `json:"kind" yaml:"kind"`
	Members []DuplicateMember `json:"members" yaml:"members"`

	// Similarity is the weakest verified pair similarity inside the group
	Similarity float64 `json:"similarity" yaml:"similarity"`
}

// Paths returns the member paths in order
func (g *DuplicateGroup) Paths() []string {
	paths := make([]string, 0, len(g.Members))
	for _, m := range g.Members {
		paths = append(paths, m.Path)
	}
	return paths
}

// RiskTier is the categorical band derived from the health score
type RiskTier string

const (
	RiskLow      RiskTier = "LOW"
	RiskModerate RiskTier = "MODERATE"
	RiskElevated RiskTier = "ELEVATED"
	RiskHigh     RiskTier = "HIGH"
	RiskCritical RiskTier = "CRITICAL"
)

// ScoreComponent is one weighted part of the health score
type ScoreComponent struct {
	Name   string  `json:"name" yaml:"name"`
	Weight float64 `json:"weight" yaml:"weight"`
	Points float64 `json:"points" yaml:"points"`
	Detail string  `json:"detail" yaml:"detail"`
}

// ScanSummary aggregates file and line counts for a scan
type ScanSummary struct {
	TotalFiles      int   `json:"total_files" yaml:"total_files"`
	AnalyzedFiles   int   `json:"analyzed_files" yaml:"analyzed_files"`
	SourceFiles     int   `json:"source_files" yaml:"source_files"`
	TestFiles       int   `json:"test_files" yaml:"test_files"`
	OtherFiles      int   `json:"other_files" yaml:"other_files"`
	BinaryFiles     int   `json:"binary_files" yaml:"binary_files"`
	UnreadableFiles int   `json:"unreadable_files" yaml:"unreadable_files"`
	TotalBytes      int64 `json:"total_bytes" yaml:"total_bytes"`
	BinaryBytes     int64 `json:"binary_bytes" yaml:"binary_bytes"`

	SourceCodeLines int `json:"source_code_lines" yaml:"source_code_lines"`
	TestCodeLines   int `json:"test_code_lines" yaml:"test_code_lines"`
	CommentLines    int `json:"comment_lines" yaml:"comment_lines"`
	BlankLines      int `json:"blank_lines" yaml:"blank_lines"`

	Functions int `json:"functions" yaml:"functions"`
	Classes   int `json:"classes" yaml:"classes"`
	Todos     int `json:"todos" yaml:"todos"`

	HighSignals   int `json:"high_signals" yaml:"high_signals"`
	MediumSignals int `json:"medium_signals" yaml:"medium_signals"`
	LowSignals    int `json:"low_signals" yaml:"low_signals"`
}

// LanguageStat holds per-language totals
type LanguageStat struct {
	Language  Language     `json:"language" yaml:"language"`
	Support   SupportLevel `json:"support" yaml:"support"`
	Files     int          `json:"files" yaml:"files"`
	CodeLines int          `json:"code_lines" yaml:"code_lines"`
}

// FileSummary is the per-file view kept in a health report: the full metrics
// plus what the scan learned about the file
type FileSummary struct {
	FileMetrics `yaml:",inline"`

	// LargestFunctions lists up to three of the longest functions
	LargestFunctions []string `json:"largest_functions,omitempty" yaml:"largest_functions,omitempty"`

	// Tests lists the test files mapped to this source file
	Tests []string `json:"tests,omitempty" yaml:"tests,omitempty"`

	// StatementCoverage is the percentage from a Go cover profile when one was supplied
	StatementCoverage *float64 `json:"statement_coverage,omitempty" yaml:"statement_coverage,omitempty"`
}

// HealthReport is the complete, deterministic result of a scan
type HealthReport struct {
	Root  string   `json:"root" yaml:"root"`
	Score int      `json:"score" yaml:"score"`
	Risk  RiskTier `json:"risk" yaml:"risk"`

	EstimatedDefects  int     `json:"estimated_defects" yaml:"estimated_defects"`
	DefectEstimate    float64 `json:"defect_estimate" yaml:"defect_estimate"`
	DefectRatePerKLOC float64 `json:"defect_rate_per_kloc" yaml:"defect_rate_per_kloc"`

	FeatureCount        int    `json:"feature_count" yaml:"feature_count"`
	FeatureProxy        string `json:"feature_proxy" yaml:"feature_proxy"`
	FeatureInteractions int64  `json:"feature_interactions" yaml:"feature_interactions"`

	TestToCodeRatio float64 `json:"test_to_code_ratio" yaml:"test_to_code_ratio"`

	Summary        ScanSummary      `json:"summary" yaml:"summary"`
	ScoreBreakdown []ScoreComponent `json:"score_breakdown" yaml:"score_breakdown"`
	Languages      []LanguageStat   `json:"languages" yaml:"languages"`
	Files          []FileSummary    `json:"files" yaml:"files"`
	Duplicates     []DuplicateGroup `json:"duplicates" yaml:"duplicates"`
	Signals        []Signal         `json:"signals" yaml:"signals"`
}

// FileSummaryFor returns the summary of path, or nil when the path was not analyzed
func (r *HealthReport) FileSummaryFor(path string) *FileSummary {
	for i := range r.Files {
		if r.Files[i].Path == path {
			return &r.Files[i]
		}
	}
	return nil
}
