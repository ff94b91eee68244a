// Package walker enumerates the files of a repository in deterministic order.
package walker

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	"github.com/ludo-technologies/vibescan/domain"
)

// Options controls which files are yielded
type Options struct {
	IgnoreDirs       []string
	IgnorePatterns   []string
	RespectGitignore bool

	// MaxFileBytes marks larger files as binary so they are counted but not analyzed, 0 disables the limit
	MaxFileBytes int64
}

// Walker walks a validated scan root
type Walker struct {
	root    string
	opts    Options
	matcher *Matcher
}

// New validates root and prepares the ignore rules.
// It returns a *domain.PathError when root is missing or not a directory.
func New(root string, opts Options) (*Walker, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, domain.NewPathError(root, "cannot resolve path", err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.NewPathError(root, "does not exist", nil)
		}
		return nil, domain.NewPathError(root, "cannot be accessed", err)
	}
	if !info.IsDir() {
		return nil, domain.NewPathError(root, "is not a directory", nil)
	}

	gitignorePath := ""
	if opts.RespectGitignore {
		gitignorePath = filepath.Join(absRoot, ".gitignore")
	}
	matcher, err := NewMatcher(opts.IgnoreDirs, opts.IgnorePatterns, gitignorePath)
	if err != nil {
		return nil, domain.NewConfigError("invalid ignore rules", err)
	}

	return &Walker{root: absRoot, opts: opts, matcher: matcher}, nil
}

// Root returns the absolute scan root
func (w *Walker) Root() string {
	return w.root
}

// Matcher returns the ignore rules in use
func (w *Walker) Matcher() *Matcher {
	return w.matcher
}

// Files yields every regular file not matched by an ignore rule, in lexical order.
// A non-nil error marks a path that could not be read; the walk continues past it.
func (w *Walker) Files() iter.Seq2[domain.SourceFile, error] {
	return func(yield func(domain.SourceFile, error) bool) {
		stopped := false
		_ = filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
			if stopped {
				return filepath.SkipAll
			}

			rel, relErr := filepath.Rel(w.root, path)
			if relErr != nil {
				return nil
			}
			rel = filepath.ToSlash(rel)

			if err != nil {
				if rel == "." {
					return err
				}
				if !yield(domain.SourceFile{Path: path, RelPath: rel}, fmt.Errorf("cannot read %s: %w", rel, err)) {
					stopped = true
					return filepath.SkipAll
				}
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if d.IsDir() {
				if rel != "." && w.matcher.SkipDir(rel) {
					return filepath.SkipDir
				}
				return nil
			}

			if w.matcher.SkipFile(rel) {
				return nil
			}

			info, statErr := os.Stat(path)
			if statErr != nil {
				if !yield(domain.SourceFile{Path: path, RelPath: rel}, fmt.Errorf("cannot stat %s: %w", rel, statErr)) {
					stopped = true
					return filepath.SkipAll
				}
				return nil
			}
			// Symlinks are followed only when they point at regular files
			if !info.Mode().IsRegular() {
				return nil
			}

			if !yield(w.describe(path, rel, info.Size()), nil) {
				stopped = true
				return filepath.SkipAll
			}
			return nil
		})
	}
}

func (w *Walker) describe(path, rel string, size int64) domain.SourceFile {
	lang, support := ClassifyLanguage(rel)
	return domain.SourceFile{
		Path:      path,
		RelPath:   rel,
		Language:  lang,
		Support:   support,
		IsTest:    support.CountsAsCode() && IsTestPath(rel),
		SizeBytes: size,
		Binary:    IsBinaryExtension(rel) || (w.opts.MaxFileBytes > 0 && size > w.opts.MaxFileBytes),
	}
}

// Load reads the content of file unless it is already known to be binary,
// and marks it binary when the content sniff says so
func Load(file *domain.SourceFile) error {
	if file.Binary {
		return nil
	}
	content, err := os.ReadFile(file.Path)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", file.RelPath, err)
	}
	if IsBinaryContent(content) {
		file.Binary = true
		return nil
	}
	file.Content = content
	return nil
}
