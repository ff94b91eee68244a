package coverage

import (
	"fmt"
	"path"
	"strings"

	"golang.org/x/tools/cover"
)

// Profile holds statement coverage per file from a Go cover profile
type Profile struct {
	// files maps the profile file name (an import path) to its counts
	files map[string]statementCount
}

type statementCount struct {
	covered int
	total   int
}

// LoadProfile parses a profile written by "go test -coverprofile"
func LoadProfile(filename string) (*Profile, error) {
	profiles, err := cover.ParseProfiles(filename)
	if err != nil {
		return nil, fmt.Errorf("parsing coverage profile: %w", err)
	}

	p := &Profile{files: make(map[string]statementCount, len(profiles))}
	for _, prof := range profiles {
		count := p.files[prof.FileName]
		for _, block := range prof.Blocks {
			count.total += block.NumStmt
			if block.Count > 0 {
				count.covered += block.NumStmt
			}
		}
		p.files[prof.FileName] = count
	}
	return p, nil
}

// Coverage returns the statement coverage percentage of a slash-separated
// relative path. Profile names are import paths, so the path is matched as a
// suffix on a segment boundary; the shortest match wins.
func (p *Profile) Coverage(rel string) (float64, bool) {
	if p == nil || path.Ext(rel) != ".go" {
		return 0, false
	}
	best := ""
	for name := range p.files {
		if name != rel && !strings.HasSuffix(name, "/"+rel) {
			continue
		}
		if best == "" || len(name) < len(best) || len(name) == len(best) && name < best {
			best = name
		}
	}
	if best == "" {
		return 0, false
	}
	count := p.files[best]
	if count.total == 0 {
		return 0, true
	}
	return float64(count.covered) / float64(count.total) * 100, true
}

// Len returns the number of files in the profile
func (p *Profile) Len() int {
	if p == nil {
		return 0
	}
	return len(p.files)
}
