package duplicates

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"
)

const (
	defaultBands = 32
	defaultRows  = 4
)

// LSHIndex buckets MinHash signatures by band so that similar items collide
type LSHIndex struct {
	bands      int
	rows       int
	buckets    []map[uint64][]string
	signatures map[string]*MinHashSignature
}

// NewLSHIndex creates an index with the given band layout, 32x4 when either is <= 0
func NewLSHIndex(bands, rows int) *LSHIndex {
	if bands <= 0 {
		bands = defaultBands
	}
	if rows <= 0 {
		rows = defaultRows
	}
	buckets := make([]map[uint64][]string, bands)
	for i := range buckets {
		buckets[i] = make(map[uint64][]string)
	}
	return &LSHIndex{
		bands:      bands,
		rows:       rows,
		buckets:    buckets,
		signatures: make(map[string]*MinHashSignature),
	}
}

// AddFragment indexes sig under id. Adding an id twice is a no-op.
func (idx *LSHIndex) AddFragment(id string, sig *MinHashSignature) error {
	if id == "" {
		return errors.New("lsh: empty fragment id")
	}
	if sig == nil || len(sig.values) == 0 {
		return errors.New("lsh: empty signature")
	}
	if len(sig.values) < idx.bands*idx.rows {
		return fmt.Errorf("lsh: signature has %d values, need %d", len(sig.values), idx.bands*idx.rows)
	}
	if _, exists := idx.signatures[id]; exists {
		return nil
	}

	idx.signatures[id] = sig
	for band := 0; band < idx.bands; band++ {
		key := idx.bandKey(sig, band)
		idx.buckets[band][key] = append(idx.buckets[band][key], id)
	}
	return nil
}

// FindCandidates returns the sorted ids sharing at least one band with sig
func (idx *LSHIndex) FindCandidates(sig *MinHashSignature) []string {
	if sig == nil || len(sig.values) < idx.bands*idx.rows {
		return []string{}
	}
	seen := make(map[string]struct{})
	for band := 0; band < idx.bands; band++ {
		for _, id := range idx.buckets[band][idx.bandKey(sig, band)] {
			seen[id] = struct{}{}
		}
	}
	candidates := make([]string, 0, len(seen))
	for id := range seen {
		candidates = append(candidates, id)
	}
	sort.Strings(candidates)
	return candidates
}

// GetSignature returns the signature stored for id, or nil
func (idx *LSHIndex) GetSignature(id string) *MinHashSignature {
	return idx.signatures[id]
}

func (idx *LSHIndex) bandKey(sig *MinHashSignature, band int) uint64 {
	buf := make([]byte, 8*idx.rows)
	start := band * idx.rows
	for r := 0; r < idx.rows; r++ {
		binary.LittleEndian.PutUint64(buf[8*r:], sig.values[start+r])
	}
	return xxhash.Sum64(buf)
}
