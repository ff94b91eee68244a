package smells

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
	"github.com/ludo-technologies/vibescan/domain"
	"github.com/ludo-technologies/vibescan/internal/config"
)

// minWindowChars skips windows made of braces and short statements
const minWindowChars = 40

// CopyPasteDetector flags code blocks and string literals repeated across files
type CopyPasteDetector struct {
	cfg config.CopyPasteConfig
}

// NewCopyPasteDetector creates the detector from its config section
func NewCopyPasteDetector(cfg config.CopyPasteConfig) *CopyPasteDetector {
	return &CopyPasteDetector{cfg: cfg}
}

func (d *CopyPasteDetector) Name() string                  { return domain.DetectorCopyPaste }
func (d *CopyPasteDetector) Confidence() domain.Confidence { return domain.ConfidenceMedium }
func (d *CopyPasteDetector) Enabled() bool                 { return d.cfg.Enabled }

// Detect reports repeated code windows first, then repeated string literals.
// Test files are excluded.
func (d *CopyPasteDetector) Detect(in *Input) ([]domain.Signal, error) {
	files := sourceFiles(in, false)
	signals := d.fragmentSignals(files)
	return append(signals, d.literalSignals(files)...), nil
}

// occurrence places a window in one file
type occurrence struct {
	file      int
	pos       int
	startLine int
	endLine   int
}

type window struct {
	text string
	occ  []occurrence
}

// fileSet returns the sorted distinct files of a window, keeping the first occurrence per file
func (w *window) fileSet() (string, []occurrence) {
	seen := make(map[int]bool)
	var first []occurrence
	for _, o := range w.occ {
		if !seen[o.file] {
			seen[o.file] = true
			first = append(first, o)
		}
	}
	sort.Slice(first, func(i, j int) bool { return first[i].file < first[j].file })
	ids := make([]string, len(first))
	for i, o := range first {
		ids[i] = strconv.Itoa(o.file)
	}
	return strings.Join(ids, ","), first
}

// block is a run of overlapping windows shared by the same files
type block struct {
	occ []occurrence
}

func (b *block) lines() int {
	n := 0
	for _, o := range b.occ {
		n = max(n, o.endLine-o.startLine+1)
	}
	return n
}

// extends reports whether w starts one line after the block's last window in every file
func (b *block) extends(w []occurrence) bool {
	for i, o := range w {
		if o.pos != b.occ[i].pos+1 {
			return false
		}
	}
	return true
}

func (d *CopyPasteDetector) fragmentSignals(files []*domain.FileMetrics) []domain.Signal {
	size := d.cfg.WindowLines
	if size <= 0 {
		return nil
	}

	buckets := make(map[uint64][]*window)
	var windows []*window
	for fi, f := range files {
		frag := f.CodeFragment
		for pos := 0; pos+size <= len(frag); pos++ {
			text := joinWindow(frag[pos : pos+size])
			if !substantial(text) {
				continue
			}
			o := occurrence{file: fi, pos: pos, startLine: frag[pos].Number, endLine: frag[pos+size-1].Number}
			h := xxhash.Sum64String(text)
			var target *window
			for _, w := range buckets[h] {
				if w.text == text {
					target = w
					break
				}
			}
			if target == nil {
				target = &window{text: text}
				buckets[h] = append(buckets[h], target)
				windows = append(windows, target)
			}
			target.occ = append(target.occ, o)
		}
	}

	type shared struct {
		key string
		occ []occurrence
	}
	var repeated []shared
	for _, w := range windows {
		key, occ := w.fileSet()
		if len(occ) >= 2 {
			repeated = append(repeated, shared{key: key, occ: occ})
		}
	}
	sort.Slice(repeated, func(i, j int) bool {
		if repeated[i].key != repeated[j].key {
			return repeated[i].key < repeated[j].key
		}
		return repeated[i].occ[0].pos < repeated[j].occ[0].pos
	})

	var blocks []*block
	var current *block
	currentKey := ""
	for _, r := range repeated {
		if current != nil && r.key == currentKey && current.extends(r.occ) {
			for i, o := range r.occ {
				current.occ[i].pos = o.pos
				current.occ[i].endLine = o.endLine
			}
			continue
		}
		current = &block{occ: append([]occurrence(nil), r.occ...)}
		currentKey = r.key
		blocks = append(blocks, current)
	}

	sort.SliceStable(blocks, func(i, j int) bool {
		return blocks[i].lines() > blocks[j].lines()
	})
	if d.cfg.MaxFragments > 0 && len(blocks) > d.cfg.MaxFragments {
		blocks = blocks[:d.cfg.MaxFragments]
	}

	signals := make([]domain.Signal, 0, len(blocks))
	for _, b := range blocks {
		refs := make([]domain.FileRef, len(b.occ))
		for i, o := range b.occ {
			refs[i] = domain.FileRef{Path: files[o.file].Path, Line: o.startLine}
		}
		n := b.lines()
		signals = append(signals, domain.Signal{
			Detector:    d.Name(),
			Confidence:  d.Confidence(),
			Severity:    float64(n),
			Description: fmt.Sprintf("%d-line block repeated in %d files", n, len(refs)),
			Files:       refs,
			Evidence:    domain.Measure(float64(n)),
			Threshold:   domain.Measure(float64(size)),
		})
	}
	return signals
}

type literalUse struct {
	count int
	first map[string]int
}

func (d *CopyPasteDetector) literalSignals(files []*domain.FileMetrics) []domain.Signal {
	uses := make(map[string]*literalUse)
	for _, f := range files {
		for _, lit := range f.StringLiterals {
			if len(lit.Value) < d.cfg.MinLiteralLength {
				continue
			}
			u, ok := uses[lit.Value]
			if !ok {
				u = &literalUse{first: make(map[string]int)}
				uses[lit.Value] = u
			}
			u.count++
			if _, seen := u.first[f.Path]; !seen {
				u.first[f.Path] = lit.Line
			}
		}
	}

	values := make([]string, 0, len(uses))
	for value, u := range uses {
		if u.count >= d.cfg.MinLiteralOccurrences && len(u.first) >= 2 {
			values = append(values, value)
		}
	}
	sort.Slice(values, func(i, j int) bool {
		ci, cj := uses[values[i]].count, uses[values[j]].count
		if ci != cj {
			return ci > cj
		}
		return values[i] < values[j]
	})
	if d.cfg.MaxFragments > 0 && len(values) > d.cfg.MaxFragments {
		values = values[:d.cfg.MaxFragments]
	}

	signals := make([]domain.Signal, 0, len(values))
	for _, value := range values {
		u := uses[value]
		refs := make([]domain.FileRef, 0, len(u.first))
		for path, line := range u.first {
			refs = append(refs, domain.FileRef{Path: path, Line: line})
		}
		sort.Slice(refs, func(i, j int) bool { return refs[i].Path < refs[j].Path })

		signals = append(signals, domain.Signal{
			Detector:    d.Name(),
			Confidence:  d.Confidence(),
			Severity:    float64(u.count),
			Description: fmt.Sprintf("string %q appears %d times in %d files", truncate(value, 40), u.count, len(refs)),
			Files:       refs,
			Evidence:    domain.Measure(float64(u.count)),
			Threshold:   domain.Measure(float64(d.cfg.MinLiteralOccurrences)),
		})
	}
	return signals
}

func joinWindow(lines []domain.NumberedLine) string {
	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(l.Text)
	}
	return b.String()
}

func substantial(text string) bool {
	n := 0
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			n++
			if n >= minWindowChars {
				return true
			}
		}
	}
	return false
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
