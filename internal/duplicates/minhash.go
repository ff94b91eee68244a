package duplicates

import (
	"math"

	"github.com/cespare/xxhash/v2"
)

const defaultNumHashes = 128

// MinHashSignature is the per-hash-function minimum over a feature set
type MinHashSignature struct {
	values []uint64
}

// MinHasher computes MinHash signatures with a fixed family of hash functions
type MinHasher struct {
	seeds []uint64
}

// NewMinHasher creates a hasher with numHashes functions, 128 when numHashes <= 0
func NewMinHasher(numHashes int) *MinHasher {
	if numHashes <= 0 {
		numHashes = defaultNumHashes
	}
	seeds := make([]uint64, numHashes)
	state := uint64(0x9E3779B97F4A7C15)
	for i := range seeds {
		state = splitmix64(state)
		seeds[i] = state
	}
	return &MinHasher{seeds: seeds}
}

// ComputeSignature hashes every distinct feature with each function and keeps the minimum
func (m *MinHasher) ComputeSignature(features []string) *MinHashSignature {
	values := make([]uint64, len(m.seeds))
	for i := range values {
		values[i] = math.MaxUint64
	}

	seen := make(map[string]struct{}, len(features))
	for _, f := range features {
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}

		base := hash64(f)
		for i, seed := range m.seeds {
			if h := splitmix64(base ^ seed); h < values[i] {
				values[i] = h
			}
		}
	}
	return &MinHashSignature{values: values}
}

func hash64(s string) uint64 {
	return xxhash.Sum64String(s)
}

// splitmix64 is a bijective 64-bit mixer
func splitmix64(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB
	return x ^ (x >> 31)
}
