package walker

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"
)

// DefaultIgnoreDirs are directory names never descended into, compared
// case-insensitively
var DefaultIgnoreDirs = []string{
	// Version control
	".git", ".svn", ".hg", ".bzr",
	// Dependencies
	"node_modules", "vendor", "vendors", ".vendor", "bower_components", "jspm_packages",
	// Python
	"venv", ".venv", "env", ".env", "__pycache__", ".pytest_cache", ".mypy_cache",
	".ruff_cache", "site-packages", "dist-packages", ".eggs", ".tox", ".nox",
	// Build outputs
	"build", "dist", "out", "output", "target", "bin", ".build", "_build",
	// IDE/Editor
	".idea", ".vscode", ".vs", ".eclipse", ".settings",
	// Coverage
	"coverage", ".coverage", "htmlcov", ".nyc_output",
	// Misc
	".cache", ".tmp", "tmp", "temp", ".temp", "logs", ".next", ".nuxt", ".output",
	".vercel", ".netlify", ".serverless", ".terraform", "pods", "deriveddata",
	".gradle", ".m2", ".cargo",
}

// DefaultIgnoreFileSuffixes are generated or lock files skipped entirely
var DefaultIgnoreFileSuffixes = []string{
	".min.js", ".min.css", ".bundle.js", ".chunk.js", "-lock.json", ".lock", ".map",
}

// Matcher decides which paths the walker skips
type Matcher struct {
	dirs      map[string]bool
	patterns  []string
	gitignore *ignore.GitIgnore
}

// NewMatcher builds a matcher from extra directory names and doublestar patterns.
// When gitignorePath names an existing file its rules are applied as well.
func NewMatcher(extraDirs, patterns []string, gitignorePath string) (*Matcher, error) {
	m := &Matcher{dirs: make(map[string]bool, len(DefaultIgnoreDirs)+len(extraDirs))}
	for _, d := range DefaultIgnoreDirs {
		m.dirs[d] = true
	}
	for _, d := range extraDirs {
		d = strings.ToLower(strings.Trim(filepath.ToSlash(d), "/"))
		if d != "" {
			m.dirs[d] = true
		}
	}

	for _, p := range patterns {
		p = filepath.ToSlash(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if !doublestar.ValidatePattern(p) {
			return nil, &InvalidPatternError{Pattern: p}
		}
		m.patterns = append(m.patterns, p)
	}

	if gitignorePath != "" {
		if _, err := os.Stat(gitignorePath); err == nil {
			gi, err := ignore.CompileIgnoreFile(gitignorePath)
			if err != nil {
				return nil, err
			}
			m.gitignore = gi
		}
	}
	return m, nil
}

// InvalidPatternError reports a malformed ignore glob
type InvalidPatternError struct {
	Pattern string
}

func (e *InvalidPatternError) Error() string {
	return "invalid ignore pattern: " + e.Pattern
}

// SkipDir reports whether the directory at the slash-separated relative path is ignored
func (m *Matcher) SkipDir(rel string) bool {
	name := rel
	if i := strings.LastIndex(rel, "/"); i >= 0 {
		name = rel[i+1:]
	}
	if strings.HasPrefix(name, ".") || m.dirs[strings.ToLower(name)] || m.dirs[strings.ToLower(rel)] {
		return true
	}
	if strings.HasSuffix(name, ".egg-info") {
		return true
	}
	if m.matchPatterns(rel) || m.matchPatterns(rel+"/") {
		return true
	}
	return m.gitignore != nil && m.gitignore.MatchesPath(rel+"/")
}

// SkipFile reports whether the file at the slash-separated relative path is ignored
func (m *Matcher) SkipFile(rel string) bool {
	name := rel
	if i := strings.LastIndex(rel, "/"); i >= 0 {
		name = rel[i+1:]
	}
	if strings.HasPrefix(name, ".") {
		return true
	}
	lower := strings.ToLower(name)
	for _, suffix := range DefaultIgnoreFileSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	if m.matchPatterns(rel) {
		return true
	}
	return m.gitignore != nil && m.gitignore.MatchesPath(rel)
}

func (m *Matcher) matchPatterns(rel string) bool {
	for _, p := range m.patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
		// A bare name pattern like "fixtures" or "*.gen.go" matches at any depth
		if !strings.Contains(p, "/") {
			if ok, _ := doublestar.Match("**/"+p, rel); ok {
				return true
			}
		}
	}
	return false
}
