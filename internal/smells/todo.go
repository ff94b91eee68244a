package smells

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ludo-technologies/vibescan/domain"
	"github.com/ludo-technologies/vibescan/internal/config"
)

// TodoMarkersDetector flags files carrying TODO, FIXME, HACK, XXX or BUG comments
type TodoMarkersDetector struct {
	cfg config.TodoMarkersConfig
}

// NewTodoMarkersDetector creates the detector from its config section
func NewTodoMarkersDetector(cfg config.TodoMarkersConfig) *TodoMarkersDetector {
	return &TodoMarkersDetector{cfg: cfg}
}

func (d *TodoMarkersDetector) Name() string                  { return domain.DetectorTodoMarkers }
func (d *TodoMarkersDetector) Confidence() domain.Confidence { return domain.ConfidenceLow }
func (d *TodoMarkersDetector) Enabled() bool                 { return d.cfg.Enabled }

// Detect emits one signal per file listing its distinct marker tags
func (d *TodoMarkersDetector) Detect(in *Input) ([]domain.Signal, error) {
	var signals []domain.Signal
	for _, f := range sourceFiles(in, true) {
		if len(f.Todos) == 0 {
			continue
		}
		tags := make(map[string]bool)
		for _, todo := range f.Todos {
			tags[todo.Tag] = true
		}
		names := make([]string, 0, len(tags))
		for tag := range tags {
			names = append(names, tag)
		}
		sort.Strings(names)

		signals = append(signals, domain.Signal{
			Detector:    d.Name(),
			Confidence:  d.Confidence(),
			Severity:    float64(len(f.Todos)),
			Description: fmt.Sprintf("%d unfinished-work markers (%s)", len(f.Todos), strings.Join(names, ", ")),
			Files:       fileRef(f.Path, f.Todos[0].Line),
			Evidence:    domain.Measure(float64(len(f.Todos))),
		})
	}
	return signals, nil
}
