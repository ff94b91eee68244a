package service

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ludo-technologies/vibescan/domain"
	"github.com/ludo-technologies/vibescan/internal/version"
)

// ScanEnvelope wraps a report and its prompts with run metadata. The report
// itself carries no timestamps so that identical trees serialize identically.
type ScanEnvelope struct {
	Version     string               `json:"version" yaml:"version"`
	GeneratedAt string               `json:"generated_at" yaml:"generated_at"`
	DurationMs  int64                `json:"duration_ms" yaml:"duration_ms"`
	Report      *domain.HealthReport `json:"report" yaml:"report"`
	Prompts     []domain.FixPrompt   `json:"prompts" yaml:"prompts"`
}

// NewScanEnvelope creates an envelope stamped with the current version
func NewScanEnvelope(report *domain.HealthReport, prompts []domain.FixPrompt, generatedAt time.Time, duration time.Duration) *ScanEnvelope {
	if prompts == nil {
		prompts = []domain.FixPrompt{}
	}
	return &ScanEnvelope{
		Version:     version.GetVersion(),
		GeneratedAt: generatedAt.UTC().Format(time.RFC3339),
		DurationMs:  duration.Milliseconds(),
		Report:      report,
		Prompts:     prompts,
	}
}

// OutputFormatterImpl renders scan envelopes
type OutputFormatterImpl struct{}

// NewOutputFormatter creates a new output formatter
func NewOutputFormatter() *OutputFormatterImpl {
	return &OutputFormatterImpl{}
}

// WriteJSON writes data as indented JSON to the writer
func WriteJSON(writer io.Writer, data interface{}) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// WriteYAML writes data as YAML to the writer
func WriteYAML(writer io.Writer, data interface{}) error {
	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return err
	}
	return encoder.Close()
}

// Write renders env in the given format
func (f *OutputFormatterImpl) Write(env *ScanEnvelope, format domain.OutputFormat, writer io.Writer) error {
	if env == nil || env.Report == nil {
		return fmt.Errorf("nothing to write: missing report")
	}
	switch format {
	case domain.OutputFormatJSON:
		return WriteJSON(writer, env)
	case domain.OutputFormatYAML:
		return WriteYAML(writer, env)
	case domain.OutputFormatMarkdown:
		return f.writeMarkdown(env, writer)
	case domain.OutputFormatText, "":
		return f.writeText(env, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// writeText writes the envelope as plain text for terminals
func (f *OutputFormatterImpl) writeText(env *ScanEnvelope, writer io.Writer) error {
	r := env.Report
	fmt.Fprintf(writer, "\n=== vibescan Health Report ===\n")
	fmt.Fprintf(writer, "Root: %s\n", r.Root)
	fmt.Fprintf(writer, "Generated: %s\n", env.GeneratedAt)
	fmt.Fprintf(writer, "Duration: %dms\n", env.DurationMs)
	fmt.Fprintf(writer, "Version: %s\n\n", env.Version)

	fmt.Fprintf(writer, "Health score: %d/100 (%s risk)\n\n", r.Score, r.Risk)

	fmt.Fprintf(writer, "Summary:\n")
	fmt.Fprintf(writer, "  Files: %d total, %d analyzed (%d source, %d test, %d other)\n",
		r.Summary.TotalFiles, r.Summary.AnalyzedFiles, r.Summary.SourceFiles, r.Summary.TestFiles, r.Summary.OtherFiles)
	if r.Summary.BinaryFiles > 0 || r.Summary.UnreadableFiles > 0 {
		fmt.Fprintf(writer, "  Skipped: %d binary, %d unreadable\n", r.Summary.BinaryFiles, r.Summary.UnreadableFiles)
	}
	fmt.Fprintf(writer, "  Code lines: %d source, %d test\n", r.Summary.SourceCodeLines, r.Summary.TestCodeLines)
	fmt.Fprintf(writer, "  Test-to-code ratio: %.2f\n", r.TestToCodeRatio)
	fmt.Fprintf(writer, "  Functions: %d, classes: %d\n", r.Summary.Functions, r.Summary.Classes)
	fmt.Fprintf(writer, "  Features (%s): %d, interactions: %d\n", r.FeatureProxy, r.FeatureCount, r.FeatureInteractions)
	fmt.Fprintf(writer, "  Estimated defects: %d (%.1f per KLOC)\n\n", r.EstimatedDefects, r.DefectRatePerKLOC)

	fmt.Fprintf(writer, "Score Breakdown:\n")
	for _, c := range r.ScoreBreakdown {
		fmt.Fprintf(writer, "  %-10s %6.2f / %-3.0f %s\n", c.Name, c.Points, c.Weight, c.Detail)
	}
	fmt.Fprintf(writer, "\n")

	if len(r.Languages) > 0 {
		fmt.Fprintf(writer, "Languages:\n")
		for _, l := range r.Languages {
			fmt.Fprintf(writer, "  %s: %d files, %d code lines [%s]\n", l.Language, l.Files, l.CodeLines, l.Support)
		}
		fmt.Fprintf(writer, "\n")
	}

	fmt.Fprintf(writer, "Signals: %d high, %d medium, %d low\n",
		r.Summary.HighSignals, r.Summary.MediumSignals, r.Summary.LowSignals)
	for _, s := range r.Signals {
		fmt.Fprintf(writer, "  [%s] %s: %s", strings.ToUpper(string(s.Confidence)), s.Detector, s.Description)
		if loc := location(s); loc != "" {
			fmt.Fprintf(writer, " (%s)", loc)
		}
		fmt.Fprintf(writer, "\n")
	}
	if len(r.Signals) == 0 {
		fmt.Fprintf(writer, "  No signals found.\n")
	}

	if len(r.Duplicates) > 0 {
		fmt.Fprintf(writer, "\nDuplicates:\n")
		for _, g := range r.Duplicates {
			fmt.Fprintf(writer, "  %s (%.0f%%): %s\n", g.Kind, g.Similarity*100, strings.Join(g.Paths(), ", "))
		}
	}

	if len(env.Prompts) > 0 {
		fmt.Fprintf(writer, "\nFix Prompts:\n")
		for _, p := range env.Prompts {
			fmt.Fprintf(writer, "\n#%d [%s] ", p.Rank, p.Urgency)
			fmt.Fprint(writer, p.Text())
		}
	}
	return nil
}

// writeMarkdown writes the envelope as a markdown document
func (f *OutputFormatterImpl) writeMarkdown(env *ScanEnvelope, writer io.Writer) error {
	r := env.Report
	fmt.Fprintf(writer, "# vibescan Health Report\n\n")
	fmt.Fprintf(writer, "**Score:** %d/100 (%s risk)  \n", r.Score, r.Risk)
	fmt.Fprintf(writer, "**Root:** `%s`  \n", r.Root)
	fmt.Fprintf(writer, "**Generated:** %s, version %s, %dms\n\n", env.GeneratedAt, env.Version, env.DurationMs)

	fmt.Fprintf(writer, "## Summary\n\n")
	fmt.Fprintf(writer, "| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(writer, "| Analyzed files | %d of %d |\n", r.Summary.AnalyzedFiles, r.Summary.TotalFiles)
	fmt.Fprintf(writer, "| Source / test files | %d / %d |\n", r.Summary.SourceFiles, r.Summary.TestFiles)
	fmt.Fprintf(writer, "| Source / test code lines | %d / %d |\n", r.Summary.SourceCodeLines, r.Summary.TestCodeLines)
	fmt.Fprintf(writer, "| Test-to-code ratio | %.2f |\n", r.TestToCodeRatio)
	fmt.Fprintf(writer, "| Features (%s) | %d |\n", r.FeatureProxy, r.FeatureCount)
	fmt.Fprintf(writer, "| Feature interactions | %d |\n", r.FeatureInteractions)
	fmt.Fprintf(writer, "| Estimated defects | %d |\n\n", r.EstimatedDefects)

	fmt.Fprintf(writer, "## Score Breakdown\n\n")
	fmt.Fprintf(writer, "| Component | Points | Weight | Detail |\n|---|---|---|---|\n")
	for _, c := range r.ScoreBreakdown {
		fmt.Fprintf(writer, "| %s | %.2f | %.0f | %s |\n", c.Name, c.Points, c.Weight, escapeCell(c.Detail))
	}
	fmt.Fprintf(writer, "\n")

	fmt.Fprintf(writer, "## Signals\n\n")
	if len(r.Signals) == 0 {
		fmt.Fprintf(writer, "No signals found.\n\n")
	} else {
		fmt.Fprintf(writer, "| Confidence | Detector | Location | Description |\n|---|---|---|---|\n")
		for _, s := range r.Signals {
			fmt.Fprintf(writer, "| %s | %s | %s | %s |\n", s.Confidence, s.Detector, escapeCell(location(s)), escapeCell(s.Description))
		}
		fmt.Fprintf(writer, "\n")
	}

	if len(r.Duplicates) > 0 {
		fmt.Fprintf(writer, "## Duplicates\n\n")
		for _, g := range r.Duplicates {
			fmt.Fprintf(writer, "- **%s** (%.0f%%): %s\n", g.Kind, g.Similarity*100, strings.Join(g.Paths(), ", "))
		}
		fmt.Fprintf(writer, "\n")
	}

	if len(env.Prompts) > 0 {
		fmt.Fprintf(writer, "## Fix Prompts\n\n")
		for _, p := range env.Prompts {
			fmt.Fprintf(writer, "### %d. %s\n\n", p.Rank, p.Title)
			fmt.Fprintf(writer, "_Urgency: %s, confidence: %s, detector: %s_\n\n", p.Urgency, p.Confidence, p.Detector)
			fmt.Fprintf(writer, "```\n%s```\n\n", p.Text())
		}
	}
	return nil
}

// location renders the affected files of a signal as path:line pairs
func location(s domain.Signal) string {
	parts := make([]string, 0, len(s.Files))
	for _, ref := range s.Files {
		if ref.Line > 0 {
			parts = append(parts, fmt.Sprintf("%s:%d", ref.Path, ref.Line))
		} else {
			parts = append(parts, ref.Path)
		}
	}
	return strings.Join(parts, ", ")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
