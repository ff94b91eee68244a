package config

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/ludo-technologies/vibescan/internal/constants"
	"github.com/spf13/viper"
)

// Default smell thresholds
const (
	DefaultMaxCommentRatio       = 0.40
	DefaultMinCommentCodeLines   = 20
	DefaultMaxIdentifierLength   = 35
	DefaultMaxImportRatio        = 3.0
	DefaultMinBoilerplateImports = 5
	DefaultNamingDominance       = 0.70
	DefaultMinNamingIdentifiers  = 5
	DefaultMaxClassRatio         = 0.02
	DefaultMinClassCodeLines     = 50
	DefaultMinErrorBodyLines     = 5
	DefaultCopyPasteWindow       = 6
	DefaultMinLiteralLength      = 20
	DefaultMinLiteralOccurrences = 5
	DefaultMaxCopyPasteFragments = 50
	DefaultMaxFunctionLines      = 80
)

// Default duplicate, coverage and scoring settings
const (
	DefaultSimilarityThreshold = 0.80
	DefaultMinDuplicateLines   = 10
	DefaultMinHashCount        = 128
	DefaultLSHBands            = 32
	DefaultLSHRows             = 4
	DefaultLSHMinFiles         = 200

	DefaultMinUntestedFunctions = 5
	DefaultTargetTestRatio      = 0.80
	DefaultLowTestRatio         = 0.50
	DefaultFuzzyMatchThreshold  = 0.92

	DefaultMaxFileBytes = 2 << 20
)

// Config represents the main configuration structure
type Config struct {
	// Scan holds repository walking options
	Scan ScanConfig `json:"scan" mapstructure:"scan" yaml:"scan" toml:"scan"`

	// Performance holds concurrency options
	Performance PerformanceConfig `json:"performance" mapstructure:"performance" yaml:"performance" toml:"performance"`

	// Smells holds per-detector thresholds
	Smells SmellsConfig `json:"smells" mapstructure:"smells" yaml:"smells" toml:"smells"`

	// Duplicates holds duplicate detection options
	Duplicates DuplicatesConfig `json:"duplicates" mapstructure:"duplicates" yaml:"duplicates" toml:"duplicates"`

	// Coverage holds test mapping options
	Coverage CoverageConfig `json:"coverage" mapstructure:"coverage" yaml:"coverage" toml:"coverage"`

	// Features selects the feature proxy
	Features FeaturesConfig `json:"features" mapstructure:"features" yaml:"features" toml:"features"`

	// Defects holds the defect density baselines
	Defects DefectsConfig `json:"defects" mapstructure:"defects" yaml:"defects" toml:"defects"`

	// Scoring holds health score weights and risk breakpoints
	Scoring ScoringConfig `json:"scoring" mapstructure:"scoring" yaml:"scoring" toml:"scoring"`

	// Output holds output options
	Output OutputConfig `json:"output" mapstructure:"output" yaml:"output" toml:"output"`

	// Logging holds logger options
	Logging LoggingConfig `json:"logging" mapstructure:"logging" yaml:"logging" toml:"logging"`
}

// ScanConfig controls which files the walker yields
type ScanConfig struct {
	// IgnoreDirs are directory names skipped in addition to the built-in list
	IgnoreDirs []string `json:"ignore_dirs" mapstructure:"ignore_dirs" yaml:"ignore_dirs" toml:"ignore_dirs"`

	// IgnorePatterns are doublestar globs matched against slash-separated relative paths
	IgnorePatterns []string `json:"ignore_patterns" mapstructure:"ignore_patterns" yaml:"ignore_patterns" toml:"ignore_patterns"`

	RespectGitignore bool  `json:"respect_gitignore" mapstructure:"respect_gitignore" yaml:"respect_gitignore" toml:"respect_gitignore"`
	MaxFileBytes     int64 `json:"max_file_bytes" mapstructure:"max_file_bytes" yaml:"max_file_bytes" toml:"max_file_bytes"`
}

// PerformanceConfig controls concurrency
type PerformanceConfig struct {
	// MaxWorkers bounds concurrent extraction, 0 means runtime.NumCPU()
	MaxWorkers int `json:"max_workers" mapstructure:"max_workers" yaml:"max_workers" toml:"max_workers"`
}

// Workers returns the effective worker count
func (p PerformanceConfig) Workers() int {
	if p.MaxWorkers > 0 {
		return p.MaxWorkers
	}
	return runtime.NumCPU()
}

// SmellsConfig holds one section per smell detector
type SmellsConfig struct {
	ExcessiveComments  ExcessiveCommentsConfig  `json:"excessive_comments" mapstructure:"excessive_comments" yaml:"excessive_comments" toml:"excessive_comments"`
	VerboseNaming      VerboseNamingConfig      `json:"verbose_naming" mapstructure:"verbose_naming" yaml:"verbose_naming" toml:"verbose_naming"`
	Boilerplate        BoilerplateConfig        `json:"boilerplate" mapstructure:"boilerplate" yaml:"boilerplate" toml:"boilerplate"`
	InconsistentNaming InconsistentNamingConfig `json:"inconsistent_naming" mapstructure:"inconsistent_naming" yaml:"inconsistent_naming" toml:"inconsistent_naming"`
	DeadCode           DeadCodeConfig           `json:"dead_code" mapstructure:"dead_code" yaml:"dead_code" toml:"dead_code"`
	OverEngineering    OverEngineeringConfig    `json:"over_engineering" mapstructure:"over_engineering" yaml:"over_engineering" toml:"over_engineering"`
	ErrorHandling      ErrorHandlingConfig      `json:"error_handling" mapstructure:"error_handling" yaml:"error_handling" toml:"error_handling"`
	CopyPaste          CopyPasteConfig          `json:"copy_paste" mapstructure:"copy_paste" yaml:"copy_paste" toml:"copy_paste"`
	LongFunctions      LongFunctionsConfig      `json:"long_functions" mapstructure:"long_functions" yaml:"long_functions" toml:"long_functions"`
	TodoMarkers        TodoMarkersConfig        `json:"todo_markers" mapstructure:"todo_markers" yaml:"todo_markers" toml:"todo_markers"`
}

// ExcessiveCommentsConfig flags files whose comment ratio exceeds MaxRatio
type ExcessiveCommentsConfig struct {
	Enabled      bool    `json:"enabled" mapstructure:"enabled" yaml:"enabled" toml:"enabled"`
	MaxRatio     float64 `json:"max_ratio" mapstructure:"max_ratio" yaml:"max_ratio" toml:"max_ratio"`
	MinCodeLines int     `json:"min_code_lines" mapstructure:"min_code_lines" yaml:"min_code_lines" toml:"min_code_lines"`
}

// VerboseNamingConfig flags identifiers longer than MaxLength
type VerboseNamingConfig struct {
	Enabled   bool `json:"enabled" mapstructure:"enabled" yaml:"enabled" toml:"enabled"`
	MaxLength int  `json:"max_length" mapstructure:"max_length" yaml:"max_length" toml:"max_length"`
}

// BoilerplateConfig flags files with many imports per function
type BoilerplateConfig struct {
	Enabled        bool    `json:"enabled" mapstructure:"enabled" yaml:"enabled" toml:"enabled"`
	MaxImportRatio float64 `json:"max_import_ratio" mapstructure:"max_import_ratio" yaml:"max_import_ratio" toml:"max_import_ratio"`
	MinImports     int     `json:"min_imports" mapstructure:"min_imports" yaml:"min_imports" toml:"min_imports"`
}

// InconsistentNamingConfig flags files without a dominant naming convention
type InconsistentNamingConfig struct {
	Enabled            bool    `json:"enabled" mapstructure:"enabled" yaml:"enabled" toml:"enabled"`
	DominanceThreshold float64 `json:"dominance_threshold" mapstructure:"dominance_threshold" yaml:"dominance_threshold" toml:"dominance_threshold"`
	MinIdentifiers     int     `json:"min_identifiers" mapstructure:"min_identifiers" yaml:"min_identifiers" toml:"min_identifiers"`
}

// DeadCodeConfig flags functions re-declared across files
type DeadCodeConfig struct {
	Enabled      bool     `json:"enabled" mapstructure:"enabled" yaml:"enabled" toml:"enabled"`
	IgnoredNames []string `json:"ignored_names" mapstructure:"ignored_names" yaml:"ignored_names" toml:"ignored_names"`
}

// OverEngineeringConfig flags files with a high class density
type OverEngineeringConfig struct {
	Enabled       bool    `json:"enabled" mapstructure:"enabled" yaml:"enabled" toml:"enabled"`
	MaxClassRatio float64 `json:"max_class_ratio" mapstructure:"max_class_ratio" yaml:"max_class_ratio" toml:"max_class_ratio"`
	MinCodeLines  int     `json:"min_code_lines" mapstructure:"min_code_lines" yaml:"min_code_lines" toml:"min_code_lines"`
}

// ErrorHandlingConfig flags functions without error-handling constructs
type ErrorHandlingConfig struct {
	Enabled      bool `json:"enabled" mapstructure:"enabled" yaml:"enabled" toml:"enabled"`
	MinBodyLines int  `json:"min_body_lines" mapstructure:"min_body_lines" yaml:"min_body_lines" toml:"min_body_lines"`
}

// CopyPasteConfig flags repeated fragments and string literals across files
type CopyPasteConfig struct {
	Enabled               bool `json:"enabled" mapstructure:"enabled" yaml:"enabled" toml:"enabled"`
	WindowLines           int  `json:"window_lines" mapstructure:"window_lines" yaml:"window_lines" toml:"window_lines"`
	MinLiteralLength      int  `json:"min_literal_length" mapstructure:"min_literal_length" yaml:"min_literal_length" toml:"min_literal_length"`
	MinLiteralOccurrences int  `json:"min_literal_occurrences" mapstructure:"min_literal_occurrences" yaml:"min_literal_occurrences" toml:"min_literal_occurrences"`
	MaxFragments          int  `json:"max_fragments" mapstructure:"max_fragments" yaml:"max_fragments" toml:"max_fragments"`
}

// LongFunctionsConfig flags functions longer than MaxLines
type LongFunctionsConfig struct {
	Enabled  bool `json:"enabled" mapstructure:"enabled" yaml:"enabled" toml:"enabled"`
	MaxLines int  `json:"max_lines" mapstructure:"max_lines" yaml:"max_lines" toml:"max_lines"`
}

// TodoMarkersConfig flags files carrying TODO-style markers
type TodoMarkersConfig struct {
	Enabled bool `json:"enabled" mapstructure:"enabled" yaml:"enabled" toml:"enabled"`
}

// DuplicatesConfig controls exact and near duplicate detection
type DuplicatesConfig struct {
	Enabled             bool    `json:"enabled" mapstructure:"enabled" yaml:"enabled" toml:"enabled"`
	SimilarityThreshold float64 `json:"similarity_threshold" mapstructure:"similarity_threshold" yaml:"similarity_threshold" toml:"similarity_threshold"`
	MinLines            int     `json:"min_lines" mapstructure:"min_lines" yaml:"min_lines" toml:"min_lines"`
	NumHashes           int     `json:"num_hashes" mapstructure:"num_hashes" yaml:"num_hashes" toml:"num_hashes"`
	LSHBands            int     `json:"lsh_bands" mapstructure:"lsh_bands" yaml:"lsh_bands" toml:"lsh_bands"`
	LSHRows             int     `json:"lsh_rows" mapstructure:"lsh_rows" yaml:"lsh_rows" toml:"lsh_rows"`

	// LSHMinFiles is the candidate count above which MinHash/LSH replaces all-pairs comparison
	LSHMinFiles int `json:"lsh_min_files" mapstructure:"lsh_min_files" yaml:"lsh_min_files" toml:"lsh_min_files"`
}

// CoverageConfig controls test-file mapping
type CoverageConfig struct {
	MinFunctions   int     `json:"min_functions" mapstructure:"min_functions" yaml:"min_functions" toml:"min_functions"`
	TargetRatio    float64 `json:"target_ratio" mapstructure:"target_ratio" yaml:"target_ratio" toml:"target_ratio"`
	LowRatio       float64 `json:"low_ratio" mapstructure:"low_ratio" yaml:"low_ratio" toml:"low_ratio"`
	FuzzyThreshold float64 `json:"fuzzy_threshold" mapstructure:"fuzzy_threshold" yaml:"fuzzy_threshold" toml:"fuzzy_threshold"`

	// Profile is an optional Go cover profile
	Profile string `json:"profile" mapstructure:"profile" yaml:"profile" toml:"profile"`
}

// FeaturesConfig selects how features are counted
type FeaturesConfig struct {
	Proxy string `json:"proxy" mapstructure:"proxy" yaml:"proxy" toml:"proxy"`
}

// DefectsConfig holds the defect density model
type DefectsConfig struct {
	BaselineRate float64 `json:"baseline_rate" mapstructure:"baseline_rate" yaml:"baseline_rate" toml:"baseline_rate"`
	AIMultiplier float64 `json:"ai_multiplier" mapstructure:"ai_multiplier" yaml:"ai_multiplier" toml:"ai_multiplier"`
}

// RatePerKLOC returns the combined defect density
func (d DefectsConfig) RatePerKLOC() float64 {
	return d.BaselineRate * d.AIMultiplier
}

// ScoringConfig holds health score weights and risk breakpoints
type ScoringConfig struct {
	Weights          ScoreWeights      `json:"weights" mapstructure:"weights" yaml:"weights" toml:"weights"`
	ConfidenceWeight ConfidenceWeights `json:"confidence_weights" mapstructure:"confidence_weights" yaml:"confidence_weights" toml:"confidence_weights"`
	SignalScale      float64           `json:"signal_scale" mapstructure:"signal_scale" yaml:"signal_scale" toml:"signal_scale"`
	DefectHalfPoint  float64           `json:"defect_half_point" mapstructure:"defect_half_point" yaml:"defect_half_point" toml:"defect_half_point"`
	Breakpoints      RiskBreakpoints   `json:"breakpoints" mapstructure:"breakpoints" yaml:"breakpoints" toml:"breakpoints"`
}

// ScoreWeights are the maximum points per score component, summing to 100
type ScoreWeights struct {
	Tests      float64 `json:"tests" mapstructure:"tests" yaml:"tests" toml:"tests"`
	Signals    float64 `json:"signals" mapstructure:"signals" yaml:"signals" toml:"signals"`
	Duplicates float64 `json:"duplicates" mapstructure:"duplicates" yaml:"duplicates" toml:"duplicates"`
	Defects    float64 `json:"defects" mapstructure:"defects" yaml:"defects" toml:"defects"`
}

// Sum returns the total of all weights
func (w ScoreWeights) Sum() float64 {
	return w.Tests + w.Signals + w.Duplicates + w.Defects
}

// ConfidenceWeights convert signal counts into a penalty
type ConfidenceWeights struct {
	High   float64 `json:"high" mapstructure:"high" yaml:"high" toml:"high"`
	Medium float64 `json:"medium" mapstructure:"medium" yaml:"medium" toml:"medium"`
	Low    float64 `json:"low" mapstructure:"low" yaml:"low" toml:"low"`
}

// RiskBreakpoints are inclusive lower bounds of each tier
type RiskBreakpoints struct {
	Low      int `json:"low" mapstructure:"low" yaml:"low" toml:"low"`
	Moderate int `json:"moderate" mapstructure:"moderate" yaml:"moderate" toml:"moderate"`
	Elevated int `json:"elevated" mapstructure:"elevated" yaml:"elevated" toml:"elevated"`
	High     int `json:"high" mapstructure:"high" yaml:"high" toml:"high"`
}

// OutputConfig holds output options
type OutputConfig struct {
	Format     string `json:"format" mapstructure:"format" yaml:"format" toml:"format"`
	MaxPrompts int    `json:"max_prompts" mapstructure:"max_prompts" yaml:"max_prompts" toml:"max_prompts"`
}

// LoggingConfig holds logger options
type LoggingConfig struct {
	Level            string `json:"level" mapstructure:"level" yaml:"level" toml:"level"`
	IncludeTimestamp bool   `json:"include_timestamp" mapstructure:"include_timestamp" yaml:"include_timestamp" toml:"include_timestamp"`
}

// DefaultDeadCodeIgnoredNames are entry points and lifecycle hooks expected in many files
var DefaultDeadCodeIgnoredNames = []string{
	"__init__", "main", "init", "setup", "teardown", "run",
	"setUp", "tearDown", "constructor", "render", "String", "Error",
	"toString", "equals", "hashCode", "handle", "handler", "index",
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Scan: ScanConfig{
			IgnoreDirs:       []string{},
			IgnorePatterns:   []string{},
			RespectGitignore: true,
			MaxFileBytes:     DefaultMaxFileBytes,
		},
		Performance: PerformanceConfig{MaxWorkers: 0},
		Smells: SmellsConfig{
			ExcessiveComments: ExcessiveCommentsConfig{
				Enabled:      true,
				MaxRatio:     DefaultMaxCommentRatio,
				MinCodeLines: DefaultMinCommentCodeLines,
			},
			VerboseNaming: VerboseNamingConfig{Enabled: true, MaxLength: DefaultMaxIdentifierLength},
			Boilerplate: BoilerplateConfig{
				Enabled:        true,
				MaxImportRatio: DefaultMaxImportRatio,
				MinImports:     DefaultMinBoilerplateImports,
			},
			InconsistentNaming: InconsistentNamingConfig{
				Enabled:            true,
				DominanceThreshold: DefaultNamingDominance,
				MinIdentifiers:     DefaultMinNamingIdentifiers,
			},
			DeadCode: DeadCodeConfig{
				Enabled:      true,
				IgnoredNames: append([]string(nil), DefaultDeadCodeIgnoredNames...),
			},
			OverEngineering: OverEngineeringConfig{
				Enabled:       true,
				MaxClassRatio: DefaultMaxClassRatio,
				MinCodeLines:  DefaultMinClassCodeLines,
			},
			ErrorHandling: ErrorHandlingConfig{Enabled: true, MinBodyLines: DefaultMinErrorBodyLines},
			CopyPaste: CopyPasteConfig{
				Enabled:               true,
				WindowLines:           DefaultCopyPasteWindow,
				MinLiteralLength:      DefaultMinLiteralLength,
				MinLiteralOccurrences: DefaultMinLiteralOccurrences,
				MaxFragments:          DefaultMaxCopyPasteFragments,
			},
			LongFunctions: LongFunctionsConfig{Enabled: true, MaxLines: DefaultMaxFunctionLines},
			TodoMarkers:   TodoMarkersConfig{Enabled: true},
		},
		Duplicates: DuplicatesConfig{
			Enabled:             true,
			SimilarityThreshold: DefaultSimilarityThreshold,
			MinLines:            DefaultMinDuplicateLines,
			NumHashes:           DefaultMinHashCount,
			LSHBands:            DefaultLSHBands,
			LSHRows:             DefaultLSHRows,
			LSHMinFiles:         DefaultLSHMinFiles,
		},
		Coverage: CoverageConfig{
			MinFunctions:   DefaultMinUntestedFunctions,
			TargetRatio:    DefaultTargetTestRatio,
			LowRatio:       DefaultLowTestRatio,
			FuzzyThreshold: DefaultFuzzyMatchThreshold,
		},
		Features: FeaturesConfig{Proxy: constants.FeatureProxyRoutes},
		Defects: DefectsConfig{
			BaselineRate: constants.DefaultBaselineDefectRate,
			AIMultiplier: constants.DefaultAIDefectMultiplier,
		},
		Scoring: ScoringConfig{
			Weights:          ScoreWeights{Tests: 35, Signals: 35, Duplicates: 15, Defects: 15},
			ConfidenceWeight: ConfidenceWeights{High: 5, Medium: 2, Low: 0.5},
			SignalScale:      20,
			DefectHalfPoint:  250,
			Breakpoints:      RiskBreakpoints{Low: 80, Moderate: 60, Elevated: 40, High: 20},
		},
		Output: OutputConfig{
			Format:     "text",
			MaxPrompts: 20,
		},
		Logging: LoggingConfig{Level: "warn"},
	}
}

// LoadConfig loads configuration from file or returns default config
func LoadConfig(configPath string) (*Config, error) {
	return LoadConfigWithTarget(configPath, "")
}

// LoadConfigWithTarget loads configuration, discovering a file upward from targetPath
// when configPath is empty
func LoadConfigWithTarget(configPath string, targetPath string) (*Config, error) {
	if configPath == "" {
		configPath = findDefaultConfig(targetPath)
	}
	return loadConfigFromFile(configPath)
}

// loadConfigFromFile reads and parses a configuration file
func loadConfigFromFile(configPath string) (*Config, error) {
	if configPath == "" {
		return DefaultConfig(), nil
	}

	// Create a new viper instance to avoid race conditions
	v := viper.New()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}
	return decode(v)
}

// LoadConfigFromReader parses configuration of the given type ("toml", "yaml", "json")
func LoadConfigFromReader(r io.Reader, configType string) (*Config, error) {
	v := viper.New()
	v.SetConfigType(configType)
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("failed to parse %s config: %w", configType, err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	config := DefaultConfig()
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// configCandidates lists discoverable file names in order of preference
var configCandidates = []string{
	constants.ConfigFileName,
	"vibescan.toml",
	"vibescan.yaml",
	"vibescan.yml",
	".vibescan.yaml",
	".vibescan.yml",
	"vibescan.json",
	".vibescan.json",
}

// searchConfigInDirectory searches for configuration files in a specific directory
func searchConfigInDirectory(dir string) string {
	for _, candidate := range configCandidates {
		path := filepath.Join(dir, candidate)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// findDefaultConfig looks for configuration files from targetPath upward, then in
// the working directory, the XDG config directory, the home directory and finally
// the VIBESCAN_CONFIG environment variable
func findDefaultConfig(targetPath string) string {
	if targetPath != "" {
		if absPath, err := filepath.Abs(targetPath); err == nil {
			if info, err := os.Stat(absPath); err == nil && !info.IsDir() {
				absPath = filepath.Dir(absPath)
			}

			volume := filepath.VolumeName(absPath)
			for dir := absPath; ; dir = filepath.Dir(dir) {
				if config := searchConfigInDirectory(dir); config != "" {
					return config
				}
				parent := filepath.Dir(dir)
				if parent == dir || dir == volume ||
					(volume != "" && dir == volume+string(filepath.Separator)) {
					break
				}
			}
		}
	}

	if config := searchConfigInDirectory("."); config != "" {
		return config
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		if config := searchConfigInDirectory(filepath.Join(xdgConfig, constants.ToolName)); config != "" {
			return config
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		if config := searchConfigInDirectory(filepath.Join(home, ".config", constants.ToolName)); config != "" {
			return config
		}
		if config := searchConfigInDirectory(home); config != "" {
			return config
		}
	}

	if envConfig := os.Getenv(constants.ConfigEnvVar); envConfig != "" {
		if _, err := os.Stat(envConfig); err == nil {
			return envConfig
		}
	}

	return ""
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	if c.Scan.MaxFileBytes < 0 {
		return fmt.Errorf("scan.max_file_bytes must be >= 0, got %d", c.Scan.MaxFileBytes)
	}
	if c.Performance.MaxWorkers < 0 {
		return fmt.Errorf("performance.max_workers must be >= 0, got %d", c.Performance.MaxWorkers)
	}

	if err := c.validateSmells(); err != nil {
		return err
	}

	d := c.Duplicates
	if d.SimilarityThreshold <= 0 || d.SimilarityThreshold > 1 {
		return fmt.Errorf("duplicates.similarity_threshold must be in (0, 1], got %g", d.SimilarityThreshold)
	}
	if d.MinLines < 1 {
		return fmt.Errorf("duplicates.min_lines must be >= 1, got %d", d.MinLines)
	}
	if d.LSHBands < 1 || d.LSHRows < 1 || d.LSHBands*d.LSHRows > d.NumHashes {
		return fmt.Errorf("duplicates.lsh_bands (%d) x lsh_rows (%d) must be positive and fit in num_hashes (%d)",
			d.LSHBands, d.LSHRows, d.NumHashes)
	}

	cv := c.Coverage
	if cv.MinFunctions < 1 {
		return fmt.Errorf("coverage.min_functions must be >= 1, got %d", cv.MinFunctions)
	}
	if cv.TargetRatio <= 0 {
		return fmt.Errorf("coverage.target_ratio must be > 0, got %g", cv.TargetRatio)
	}
	if cv.LowRatio < 0 || cv.LowRatio > cv.TargetRatio {
		return fmt.Errorf("coverage.low_ratio (%g) must be between 0 and target_ratio (%g)", cv.LowRatio, cv.TargetRatio)
	}
	if cv.FuzzyThreshold <= 0 || cv.FuzzyThreshold > 1 {
		return fmt.Errorf("coverage.fuzzy_threshold must be in (0, 1], got %g", cv.FuzzyThreshold)
	}

	switch c.Features.Proxy {
	case constants.FeatureProxyRoutes, constants.FeatureProxyModules:
	default:
		return fmt.Errorf("invalid features.proxy '%s', must be one of: %s, %s",
			c.Features.Proxy, constants.FeatureProxyRoutes, constants.FeatureProxyModules)
	}

	if c.Defects.BaselineRate <= 0 {
		return fmt.Errorf("defects.baseline_rate must be > 0, got %g", c.Defects.BaselineRate)
	}
	if c.Defects.AIMultiplier <= 0 {
		return fmt.Errorf("defects.ai_multiplier must be > 0, got %g", c.Defects.AIMultiplier)
	}

	if err := c.validateScoring(); err != nil {
		return err
	}

	validFormats := map[string]bool{"text": true, "json": true, "yaml": true, "markdown": true}
	if !validFormats[c.Output.Format] {
		return fmt.Errorf("invalid output.format '%s', must be one of: text, json, yaml, markdown", c.Output.Format)
	}
	if c.Output.MaxPrompts < 0 {
		return fmt.Errorf("output.max_prompts must be >= 0, got %d", c.Output.MaxPrompts)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid logging.level '%s', must be one of: debug, info, warn, error", c.Logging.Level)
	}

	return nil
}

func (c *Config) validateSmells() error {
	s := c.Smells
	if s.ExcessiveComments.MaxRatio <= 0 || s.ExcessiveComments.MaxRatio >= 1 {
		return fmt.Errorf("smells.excessive_comments.max_ratio must be in (0, 1), got %g", s.ExcessiveComments.MaxRatio)
	}
	if s.VerboseNaming.MaxLength < 1 {
		return fmt.Errorf("smells.verbose_naming.max_length must be >= 1, got %d", s.VerboseNaming.MaxLength)
	}
	if s.Boilerplate.MaxImportRatio <= 0 {
		return fmt.Errorf("smells.boilerplate.max_import_ratio must be > 0, got %g", s.Boilerplate.MaxImportRatio)
	}
	if s.InconsistentNaming.DominanceThreshold <= 0 || s.InconsistentNaming.DominanceThreshold > 1 {
		return fmt.Errorf("smells.inconsistent_naming.dominance_threshold must be in (0, 1], got %g",
			s.InconsistentNaming.DominanceThreshold)
	}
	if s.OverEngineering.MaxClassRatio <= 0 {
		return fmt.Errorf("smells.over_engineering.max_class_ratio must be > 0, got %g", s.OverEngineering.MaxClassRatio)
	}
	if s.CopyPaste.WindowLines < 2 {
		return fmt.Errorf("smells.copy_paste.window_lines must be >= 2, got %d", s.CopyPaste.WindowLines)
	}
	if s.CopyPaste.MinLiteralLength < 1 || s.CopyPaste.MinLiteralOccurrences < 2 {
		return fmt.Errorf("smells.copy_paste needs min_literal_length >= 1 and min_literal_occurrences >= 2")
	}
	if s.LongFunctions.MaxLines < 1 {
		return fmt.Errorf("smells.long_functions.max_lines must be >= 1, got %d", s.LongFunctions.MaxLines)
	}
	return nil
}

func (c *Config) validateScoring() error {
	sc := c.Scoring
	w := sc.Weights
	if w.Tests < 0 || w.Signals < 0 || w.Duplicates < 0 || w.Defects < 0 {
		return fmt.Errorf("scoring.weights must be non-negative")
	}
	if math.Abs(w.Sum()-100) > 1e-9 {
		return fmt.Errorf("scoring.weights must sum to 100, got %g", w.Sum())
	}
	if sc.SignalScale <= 0 || sc.DefectHalfPoint <= 0 {
		return fmt.Errorf("scoring.signal_scale and scoring.defect_half_point must be > 0")
	}
	cw := sc.ConfidenceWeight
	if cw.High < cw.Medium || cw.Medium < cw.Low || cw.Low < 0 {
		return fmt.Errorf("scoring.confidence_weights must satisfy high >= medium >= low >= 0")
	}
	b := sc.Breakpoints
	if !(100 >= b.Low && b.Low > b.Moderate && b.Moderate > b.Elevated && b.Elevated > b.High && b.High > 0) {
		return fmt.Errorf("scoring.breakpoints must be strictly descending within (0, 100]: low=%d moderate=%d elevated=%d high=%d",
			b.Low, b.Moderate, b.Elevated, b.High)
	}
	return nil
}
