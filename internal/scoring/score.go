package scoring

import (
	"fmt"
	"math"

	"github.com/ludo-technologies/vibescan/domain"
	"github.com/ludo-technologies/vibescan/internal/config"
)

// Score component names
const (
	ComponentTests      = "tests"
	ComponentSignals    = "signals"
	ComponentDuplicates = "duplicates"
	ComponentDefects    = "defects"
)

// Input carries the aggregate values the score is computed from
type Input struct {
	TestRatio       float64
	SourceCodeLines int

	Signals []domain.Signal

	DuplicatedFiles int
	AnalyzedFiles   int

	EstimatedDefects float64
}

// Result is a computed health score
type Result struct {
	Score     int
	Risk      domain.RiskTier
	Breakdown []domain.ScoreComponent
}

// Scorer combines test ratio, signals, duplication and defects into a 0-100 score:
//
//	tests      = Wt * min(ratio / target, 1), full when there is no source
//	signals    = Ws * S / (S + 5H + 2M + 0.5L)
//	duplicates = Wd * (1 - duplicated / analyzed)
//	defects    = Wf * D / (D + estimated defects)
//
// The weights sum to 100 and the total is rounded half up.
type Scorer struct {
	cfg         config.ScoringConfig
	targetRatio float64
}

// NewScorer creates a scorer. targetRatio is the test ratio earning full credit.
func NewScorer(cfg config.ScoringConfig, targetRatio float64) *Scorer {
	if targetRatio <= 0 {
		targetRatio = config.DefaultTargetTestRatio
	}
	return &Scorer{cfg: cfg, targetRatio: targetRatio}
}

// Score computes the score, its tier and the per-component breakdown
func (s *Scorer) Score(in Input) Result {
	w := s.cfg.Weights
	components := []domain.ScoreComponent{
		s.tests(w.Tests, in),
		s.signals(w.Signals, in.Signals),
		s.duplicates(w.Duplicates, in),
		s.defects(w.Defects, in.EstimatedDefects),
	}

	total := 0.0
	for i := range components {
		total += components[i].Points
		components[i].Points = math.Round(components[i].Points*100) / 100
	}
	score := int(math.Floor(total + 0.5))
	score = max(0, min(100, score))

	return Result{
		Score:     score,
		Risk:      RiskFor(score, s.cfg.Breakpoints),
		Breakdown: components,
	}
}

func (s *Scorer) tests(weight float64, in Input) domain.ScoreComponent {
	credit := 1.0
	detail := "no source code"
	if in.SourceCodeLines > 0 {
		credit = math.Min(in.TestRatio/s.targetRatio, 1)
		detail = fmt.Sprintf("test ratio %.2f of target %.2f", in.TestRatio, s.targetRatio)
	}
	return component(ComponentTests, weight, credit, detail)
}

func (s *Scorer) signals(weight float64, signals []domain.Signal) domain.ScoreComponent {
	counts := domain.CountByConfidence(signals)
	cw := s.cfg.ConfidenceWeight
	penalty := cw.High*float64(counts[domain.ConfidenceHigh]) +
		cw.Medium*float64(counts[domain.ConfidenceMedium]) +
		cw.Low*float64(counts[domain.ConfidenceLow])

	credit := 1.0
	if denom := s.cfg.SignalScale + penalty; denom > 0 {
		credit = s.cfg.SignalScale / denom
	}
	detail := fmt.Sprintf("%d high, %d medium, %d low signals",
		counts[domain.ConfidenceHigh], counts[domain.ConfidenceMedium], counts[domain.ConfidenceLow])
	return component(ComponentSignals, weight, credit, detail)
}

func (s *Scorer) duplicates(weight float64, in Input) domain.ScoreComponent {
	credit := 1.0
	if in.AnalyzedFiles > 0 {
		credit = 1 - float64(in.DuplicatedFiles)/float64(in.AnalyzedFiles)
	}
	detail := fmt.Sprintf("%d of %d files duplicated", in.DuplicatedFiles, in.AnalyzedFiles)
	return component(ComponentDuplicates, weight, credit, detail)
}

func (s *Scorer) defects(weight, estimated float64) domain.ScoreComponent {
	credit := 1.0
	if denom := s.cfg.DefectHalfPoint + estimated; denom > 0 {
		credit = s.cfg.DefectHalfPoint / denom
	}
	detail := fmt.Sprintf("%.1f estimated defects", estimated)
	return component(ComponentDefects, weight, credit, detail)
}

func component(name string, weight, credit float64, detail string) domain.ScoreComponent {
	credit = math.Max(0, math.Min(1, credit))
	return domain.ScoreComponent{
		Name:   name,
		Weight: weight,
		Points: weight * credit,
		Detail: detail,
	}
}
