package domain

import (
	"fmt"
	"strings"
)

// Urgency expresses how soon a fix prompt should be acted on
type Urgency string

const (
	UrgencyNow   Urgency = "now"
	UrgencySoon  Urgency = "soon"
	UrgencyLater Urgency = "later"
)

// UrgencyFor maps a confidence tier to an urgency
func UrgencyFor(c Confidence) Urgency {
	switch c {
	case ConfidenceHigh:
		return UrgencyNow
	case ConfidenceMedium:
		return UrgencySoon
	default:
		return UrgencyLater
	}
}

// PromptFile is an affected file restated inside a fix prompt
type PromptFile struct {
	Path      string `json:"path" yaml:"path"`
	Functions int    `json:"functions" yaml:"functions"`
	Tests     int    `json:"tests" yaml:"tests"`
	CodeLines int    `json:"code_lines" yaml:"code_lines"`
	Line      int    `json:"line,omitempty" yaml:"line,omitempty"`
}

// FixPrompt is a self-contained instruction for a human or AI assistant
type FixPrompt struct {
	Rank         int          `json:"rank" yaml:"rank"`
	Title        string       `json:"title" yaml:"title"`
	Detector     string       `json:"detector" yaml:"detector"`
	Confidence   Confidence   `json:"confidence" yaml:"confidence"`
	Urgency      Urgency      `json:"urgency" yaml:"urgency"`
	Impact       float64      `json:"impact" yaml:"impact"`
	Files        []PromptFile `json:"files,omitempty" yaml:"files,omitempty"`
	Instructions []string     `json:"instructions" yaml:"instructions"`
	Verification string       `json:"verification" yaml:"verification"`

	// SignalRefs are indices into HealthReport.Signals
	SignalRefs []int `json:"signal_refs" yaml:"signal_refs"`
}

// Text renders the prompt as a single copy-pasteable block
func (p *FixPrompt) Text() string {
	var sb strings.Builder
	sb.WriteString(p.Title)
	sb.WriteString("\n")
	for i, step := range p.Instructions {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, step)
	}
	if p.Verification != "" {
		fmt.Fprintf(&sb, "Verify: %s\n", p.Verification)
	}
	return sb.String()
}
