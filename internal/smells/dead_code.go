package smells

import (
	"fmt"
	"sort"

	"github.com/ludo-technologies/vibescan/domain"
	"github.com/ludo-technologies/vibescan/internal/config"
)

// DeadCodeDetector flags functions re-declared with the same name and arity in
// several files, a sign of copies that were never consolidated
type DeadCodeDetector struct {
	cfg     config.DeadCodeConfig
	ignored map[string]bool
}

// NewDeadCodeDetector creates the detector from its config section
func NewDeadCodeDetector(cfg config.DeadCodeConfig) *DeadCodeDetector {
	ignored := make(map[string]bool, len(cfg.IgnoredNames))
	for _, name := range cfg.IgnoredNames {
		ignored[name] = true
	}
	return &DeadCodeDetector{cfg: cfg, ignored: ignored}
}

func (d *DeadCodeDetector) Name() string                  { return domain.DetectorDeadCodeIndicators }
func (d *DeadCodeDetector) Confidence() domain.Confidence { return domain.ConfidenceLow }
func (d *DeadCodeDetector) Enabled() bool                 { return d.cfg.Enabled }

type declKey struct {
	name   string
	params int
}

type declaration struct {
	path     string
	line     int
	isMethod bool
}

// Detect groups non-test functions by name and parameter count. A group is
// reported when it spans at least two files and is not made only of methods,
// since methods sharing a name usually implement a common interface.
func (d *DeadCodeDetector) Detect(in *Input) ([]domain.Signal, error) {
	groups := make(map[declKey][]declaration)
	for _, f := range sourceFiles(in, false) {
		for _, fn := range f.Functions {
			if d.ignored[fn.Name] {
				continue
			}
			key := declKey{name: fn.Name, params: fn.Params}
			groups[key] = append(groups[key], declaration{path: f.Path, line: fn.StartLine, isMethod: fn.IsMethod})
		}
	}

	keys := make([]declKey, 0, len(groups))
	for key, decls := range groups {
		if reportable(decls) {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].name != keys[j].name {
			return keys[i].name < keys[j].name
		}
		return keys[i].params < keys[j].params
	})

	signals := make([]domain.Signal, 0, len(keys))
	for _, key := range keys {
		refs := firstPerFile(groups[key])
		signals = append(signals, domain.Signal{
			Detector:    d.Name(),
			Confidence:  d.Confidence(),
			Severity:    float64(len(refs)),
			Description: fmt.Sprintf("function %s with %d parameters is declared in %d files", key.name, key.params, len(refs)),
			Files:       refs,
			Evidence:    domain.Measure(float64(len(refs))),
		})
	}
	return signals, nil
}

func reportable(decls []declaration) bool {
	files := make(map[string]bool)
	allMethods := true
	for _, decl := range decls {
		files[decl.path] = true
		if !decl.isMethod {
			allMethods = false
		}
	}
	return len(files) >= 2 && !allMethods
}

// firstPerFile keeps the earliest declaration in each file, ordered by path
func firstPerFile(decls []declaration) []domain.FileRef {
	first := make(map[string]int)
	for _, decl := range decls {
		if line, ok := first[decl.path]; !ok || decl.line < line {
			first[decl.path] = decl.line
		}
	}
	refs := make([]domain.FileRef, 0, len(first))
	for path, line := range first {
		refs = append(refs, domain.FileRef{Path: path, Line: line})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Path < refs[j].Path })
	return refs
}
