package domain

// Language identifies the programming language of a source file
type Language string

const (
	LanguagePython     Language = "Python"
	LanguageJavaScript Language = "JavaScript"
	LanguageTypeScript Language = "TypeScript"
	LanguageGo         Language = "Go"
	LanguageRust       Language = "Rust"
	LanguageJava       Language = "Java"
	LanguageKotlin     Language = "Kotlin"
	LanguageSwift      Language = "Swift"
	LanguageCSharp     Language = "C#"
	LanguagePHP        Language = "PHP"
	LanguageRuby       Language = "Ruby"
	LanguageDart       Language = "Dart"

	// LanguageUnknown is used for text files with no recognized extension
	LanguageUnknown Language = "Unknown"
)

// SupportLevel describes how much analysis a language receives
type SupportLevel string

const (
	// SupportPrimary languages get structural patterns (functions, classes, imports)
	SupportPrimary SupportLevel = "primary"

	// SupportBasic languages get line classification only
	SupportBasic SupportLevel = "basic"

	// SupportUnknown files are counted but excluded from code totals
	SupportUnknown SupportLevel = "unknown"
)

// CountsAsCode reports whether files at this support level contribute to code totals
func (s SupportLevel) CountsAsCode() bool {
	return s == SupportPrimary || s == SupportBasic
}

// SourceFile describes a file produced by the repository walker
type SourceFile struct {
	// Path is the absolute path on disk
	Path string `json:"path" yaml:"path"`

	// RelPath is the slash-separated path relative to the scan root
	RelPath string `json:"rel_path" yaml:"rel_path"`

	Language  Language     `json:"language" yaml:"language"`
	Support   SupportLevel `json:"support" yaml:"support"`
	IsTest    bool         `json:"is_test" yaml:"is_test"`
	SizeBytes int64        `json:"size_bytes" yaml:"size_bytes"`
	Binary    bool         `json:"binary" yaml:"binary"`

	// Content is populated by the loader and released after extraction
	Content []byte `json:"-" yaml:"-"`
}

// FunctionSignature is a lexically detected function or method declaration
type FunctionSignature struct {
	Name      string `json:"name" yaml:"name"`
	File      string `json:"file" yaml:"file"`
	Params    int    `json:"params" yaml:"params"`
	StartLine int    `json:"start_line" yaml:"start_line"`
	EndLine   int    `json:"end_line" yaml:"end_line"`

	// Lines is the span length from declaration to the last non-blank line of the body
	Lines int `json:"lines" yaml:"lines"`

	IsMethod         bool `json:"is_method" yaml:"is_method"`
	HasErrorHandling bool `json:"has_error_handling" yaml:"has_error_handling"`
}

// ClassInfo is a lexically detected class or struct declaration
type ClassInfo struct {
	Name string `json:"name" yaml:"name"`
	Line int    `json:"line" yaml:"line"`
}

// IdentifierKind classifies a declared identifier
type IdentifierKind string

const (
	IdentifierFunction IdentifierKind = "function"
	IdentifierClass    IdentifierKind = "class"
	IdentifierVariable IdentifierKind = "variable"
)

// Identifier is a declared name with its location
type Identifier struct {
	Name string         `json:"name" yaml:"name"`
	Kind IdentifierKind `json:"kind" yaml:"kind"`
	Line int            `json:"line" yaml:"line"`
}

// NamingTally counts declared identifiers by naming convention
type NamingTally struct {
	Camel int `json:"camel" yaml:"camel"`
	Snake int `json:"snake" yaml:"snake"`
	Other int `json:"other" yaml:"other"`

	// Dominance is the share of the most common convention, 1 when nothing was counted
	Dominance    float64 `json:"dominance" yaml:"dominance"`
	Inconsistent bool    `json:"inconsistent" yaml:"inconsistent"`
}

// Total returns the number of classified identifiers
func (n NamingTally) Total() int {
	return n.Camel + n.Snake + n.Other
}

// LengthBucket counts identifiers of one length
type LengthBucket struct {
	Length int `json:"length" yaml:"length"`
	Count  int `json:"count" yaml:"count"`
}

// IdentifierLengths is the length distribution of declared identifiers
type IdentifierLengths struct {
	// Histogram holds one bucket per observed length, shortest first
	Histogram []LengthBucket `json:"histogram,omitempty" yaml:"histogram,omitempty"`
	Max       int            `json:"max" yaml:"max"`
	Mean      float64        `json:"mean" yaml:"mean"`
}

// StringLiteral is a long string literal found on a code line
type StringLiteral struct {
	Value string `json:"value" yaml:"value"`
	Line  int    `json:"line" yaml:"line"`
}

// TodoMarker is a TODO/FIXME/HACK/XXX/BUG comment
type TodoMarker struct {
	Tag  string `json:"tag" yaml:"tag"`
	Text string `json:"text" yaml:"text"`
	Line int    `json:"line" yaml:"line"`
}

// NumberedLine is a whitespace-normalized code line with its 1-based position
type NumberedLine struct {
	Number int
	Text   string
}

// FileMetrics holds the lexical measurements of one file
type FileMetrics struct {
	Path     string       `json:"path" yaml:"path"`
	Language Language     `json:"language" yaml:"language"`
	Support  SupportLevel `json:"support" yaml:"support"`
	IsTest   bool         `json:"is_test" yaml:"is_test"`

	TotalLines   int     `json:"total_lines" yaml:"total_lines"`
	CodeLines    int     `json:"code_lines" yaml:"code_lines"`
	CommentLines int     `json:"comment_lines" yaml:"comment_lines"`
	BlankLines   int     `json:"blank_lines" yaml:"blank_lines"`
	CommentRatio float64 `json:"comment_ratio" yaml:"comment_ratio"`

	Functions   []FunctionSignature `json:"functions,omitempty" yaml:"functions,omitempty"`
	Classes     []ClassInfo         `json:"classes,omitempty" yaml:"classes,omitempty"`
	ImportCount int                 `json:"import_count" yaml:"import_count"`

	Identifiers       []Identifier      `json:"identifiers,omitempty" yaml:"identifiers,omitempty"`
	IdentifierLengths IdentifierLengths `json:"identifier_lengths" yaml:"identifier_lengths"`
	Naming            NamingTally       `json:"naming" yaml:"naming"`

	StringLiterals   []StringLiteral `json:"string_literals,omitempty" yaml:"string_literals,omitempty"`
	Todos            []TodoMarker    `json:"todos,omitempty" yaml:"todos,omitempty"`
	HasErrorHandling bool            `json:"has_error_handling" yaml:"has_error_handling"`

	// FeatureHits counts route/endpoint pattern matches
	FeatureHits int `json:"feature_hits" yaml:"feature_hits"`

	// NormalizedLines holds every non-blank line with whitespace collapsed
	NormalizedLines []string `json:"-" yaml:"-"`

	// CodeFragment holds the normalized code lines (comments excluded) with positions
	CodeFragment []NumberedLine `json:"-" yaml:"-"`
}

// FunctionNames returns the names of all detected functions
func (m *FileMetrics) FunctionNames() []string {
	names := make([]string, 0, len(m.Functions))
	for _, fn := range m.Functions {
		names = append(names, fn.Name)
	}
	return names
}
