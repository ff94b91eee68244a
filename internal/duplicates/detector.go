// Package duplicates finds files with identical or near-identical content.
package duplicates

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/ludo-technologies/vibescan/domain"
	"github.com/ludo-technologies/vibescan/internal/config"
)

// Options controls duplicate detection
type Options struct {
	SimilarityThreshold float64
	MinLines            int
	NumHashes           int
	Bands               int
	Rows                int

	// LSHMinFiles is the per-language candidate count from which LSH replaces all-pairs comparison
	LSHMinFiles int
}

// OptionsFromConfig derives detector options from the duplicates section
func OptionsFromConfig(cfg config.DuplicatesConfig) Options {
	return Options{
		SimilarityThreshold: cfg.SimilarityThreshold,
		MinLines:            cfg.MinLines,
		NumHashes:           cfg.NumHashes,
		Bands:               cfg.LSHBands,
		Rows:                cfg.LSHRows,
		LSHMinFiles:         cfg.LSHMinFiles,
	}
}

// Detector groups exact and near duplicate files
type Detector struct {
	opts Options
}

// NewDetector creates a detector, filling unset options with defaults
func NewDetector(opts Options) *Detector {
	if opts.SimilarityThreshold <= 0 {
		opts.SimilarityThreshold = config.DefaultSimilarityThreshold
	}
	if opts.MinLines <= 0 {
		opts.MinLines = config.DefaultMinDuplicateLines
	}
	if opts.LSHMinFiles <= 0 {
		opts.LSHMinFiles = config.DefaultLSHMinFiles
	}
	return &Detector{opts: opts}
}

// edge is a verified similarity between two file indices
type edge struct {
	a, b       int
	similarity float64
}

// Detect returns exact groups followed by near groups. A file belongs to at most
// one group, and files in an exact group never appear in a near group.
func (d *Detector) Detect(files []*domain.FileMetrics) []domain.DuplicateGroup {
	eligible := make([]*domain.FileMetrics, 0, len(files))
	for _, f := range files {
		if f != nil && f.Support.CountsAsCode() && len(f.NormalizedLines) > 0 {
			eligible = append(eligible, f)
		}
	}
	sort.Slice(eligible, func(i, j int) bool { return eligible[i].Path < eligible[j].Path })

	exact, inExact := d.exactGroups(eligible)
	near := d.nearGroups(eligible, inExact)
	return append(exact, near...)
}

func (d *Detector) exactGroups(files []*domain.FileMetrics) ([]domain.DuplicateGroup, map[int]bool) {
	contents := make([]string, len(files))
	byHash := make(map[uint64][]int)
	for i, f := range files {
		contents[i] = strings.Join(f.NormalizedLines, "\n")
		h := xxhash.Sum64String(contents[i])
		byHash[h] = append(byHash[h], i)
	}

	ds := NewDisjointSet(len(files))
	for _, bucket := range byHash {
		for i := 1; i < len(bucket); i++ {
			for j := 0; j < i; j++ {
				// hash collisions are resolved by comparing content
				if contents[bucket[i]] == contents[bucket[j]] {
					ds.Union(bucket[i], bucket[j])
					break
				}
			}
		}
	}

	inExact := make(map[int]bool)
	var groups []domain.DuplicateGroup
	for _, members := range ds.Groups(2) {
		group := domain.DuplicateGroup{Kind: domain.DuplicateExact, Similarity: 1.0}
		for _, idx := range members {
			inExact[idx] = true
			group.Members = append(group.Members, domain.DuplicateMember{Path: files[idx].Path, Similarity: 1.0})
		}
		groups = append(groups, group)
	}
	return groups, inExact
}

func (d *Detector) nearGroups(files []*domain.FileMetrics, inExact map[int]bool) []domain.DuplicateGroup {
	byLanguage := make(map[domain.Language][]int)
	var languages []domain.Language
	for i, f := range files {
		if inExact[i] || len(f.NormalizedLines) < d.opts.MinLines {
			continue
		}
		if _, ok := byLanguage[f.Language]; !ok {
			languages = append(languages, f.Language)
		}
		byLanguage[f.Language] = append(byLanguage[f.Language], i)
	}
	sort.Slice(languages, func(i, j int) bool { return languages[i] < languages[j] })

	sets := make(map[int]map[string]struct{})
	lineSet := func(i int) map[string]struct{} {
		if s, ok := sets[i]; ok {
			return s
		}
		s := make(map[string]struct{}, len(files[i].NormalizedLines))
		for _, line := range files[i].NormalizedLines {
			s[line] = struct{}{}
		}
		sets[i] = s
		return s
	}

	var edges []edge
	for _, lang := range languages {
		for _, pair := range d.candidatePairs(files, byLanguage[lang]) {
			sim := Jaccard(lineSet(pair[0]), lineSet(pair[1]))
			if sim >= d.opts.SimilarityThreshold {
				edges = append(edges, edge{a: pair[0], b: pair[1], similarity: sim})
			}
		}
	}
	if len(edges) == 0 {
		return nil
	}

	ds := NewDisjointSet(len(files))
	for _, e := range edges {
		ds.Union(e.a, e.b)
	}

	best := make(map[int]float64)
	weakest := make(map[int]float64)
	for _, e := range edges {
		best[e.a] = math.Max(best[e.a], e.similarity)
		best[e.b] = math.Max(best[e.b], e.similarity)
		root := ds.Find(e.a)
		if w, ok := weakest[root]; !ok || e.similarity < w {
			weakest[root] = e.similarity
		}
	}

	var groups []domain.DuplicateGroup
	for _, members := range ds.Groups(2) {
		group := domain.DuplicateGroup{
			Kind:       domain.DuplicateNear,
			Similarity: round4(weakest[ds.Find(members[0])]),
		}
		for _, idx := range members {
			group.Members = append(group.Members, domain.DuplicateMember{
				Path:       files[idx].Path,
				Similarity: round4(best[idx]),
			})
		}
		groups = append(groups, group)
	}
	return groups
}

// candidatePairs returns index pairs (a < b) worth verifying. Small sets compare
// every pair; larger ones use MinHash signatures bucketed by LSH. Signatures
// too short for the band layout also fall back to every pair.
func (d *Detector) candidatePairs(files []*domain.FileMetrics, indices []int) [][2]int {
	if len(indices) < d.opts.LSHMinFiles {
		return allPairs(indices)
	}

	hasher := NewMinHasher(d.opts.NumHashes)
	index := NewLSHIndex(d.opts.Bands, d.opts.Rows)
	for _, i := range indices {
		if err := index.AddFragment(strconv.Itoa(i), hasher.ComputeSignature(files[i].NormalizedLines)); err != nil {
			return allPairs(indices)
		}
	}

	var pairs [][2]int
	seen := make(map[[2]int]bool)
	for _, i := range indices {
		for _, id := range index.FindCandidates(index.GetSignature(strconv.Itoa(i))) {
			j, err := strconv.Atoi(id)
			if err != nil || j == i {
				continue
			}
			pair := [2]int{min(i, j), max(i, j)}
			if !seen[pair] {
				seen[pair] = true
				pairs = append(pairs, pair)
			}
		}
	}
	sort.Slice(pairs, func(x, y int) bool {
		if pairs[x][0] != pairs[y][0] {
			return pairs[x][0] < pairs[y][0]
		}
		return pairs[x][1] < pairs[y][1]
	})
	return pairs
}

func allPairs(indices []int) [][2]int {
	var pairs [][2]int
	for i := 0; i < len(indices); i++ {
		for j := i + 1; j < len(indices); j++ {
			pairs = append(pairs, [2]int{indices[i], indices[j]})
		}
	}
	return pairs
}

// Jaccard returns |a ∩ b| / |a ∪ b|, 0 when both are empty
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) > len(b) {
		a, b = b, a
	}
	shared := 0
	for k := range a {
		if _, ok := b[k]; ok {
			shared++
		}
	}
	union := len(a) + len(b) - shared
	if union == 0 {
		return 0
	}
	return float64(shared) / float64(union)
}

// Signals converts groups into one signal each
func (d *Detector) Signals(groups []domain.DuplicateGroup) []domain.Signal {
	signals := make([]domain.Signal, 0, len(groups))
	for _, g := range groups {
		refs := make([]domain.FileRef, 0, len(g.Members))
		for _, m := range g.Members {
			refs = append(refs, domain.FileRef{Path: m.Path})
		}

		s := domain.Signal{
			Severity: float64(len(g.Members)),
			Files:    refs,
			Evidence: domain.Measure(g.Similarity),
		}
		switch g.Kind {
		case domain.DuplicateExact:
			s.Detector = domain.DetectorExactDuplicate
			s.Confidence = domain.ConfidenceHigh
			s.Description = fmt.Sprintf("%d files have identical content", len(g.Members))
		default:
			s.Detector = domain.DetectorNearDuplicate
			s.Confidence = domain.ConfidenceMedium
			s.Description = fmt.Sprintf("%d files are at least %.0f%% similar", len(g.Members), g.Similarity*100)
			s.Threshold = domain.Measure(d.opts.SimilarityThreshold)
		}
		signals = append(signals, s)
	}
	return signals
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
