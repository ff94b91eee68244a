package duplicates

import (
	"math"
	"testing"
)

func TestNewMinHasher(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, 128},
		{-5, 128},
		{64, 64},
	}
	for _, tt := range tests {
		if got := len(NewMinHasher(tt.in).seeds); got != tt.want {
			t.Errorf("NewMinHasher(%d) has %d seeds, want %d", tt.in, got, tt.want)
		}
	}
}

func TestComputeSignature_Shape(t *testing.T) {
	mh := NewMinHasher(128)

	empty := mh.ComputeSignature(nil)
	if len(empty.values) != 128 {
		t.Fatalf("Expected 128 values for an empty set, got %d", len(empty.values))
	}
	for _, v := range empty.values {
		if v != math.MaxUint64 {
			t.Fatal("Expected empty set signature to stay at MaxUint64")
		}
	}

	sig := mh.ComputeSignature([]string{"return nil", "if err != nil {"})
	for _, v := range sig.values {
		if v == math.MaxUint64 {
			t.Fatal("Expected every position to be hashed")
		}
	}
}

func TestComputeSignature_IgnoresRepeatsAndOrder(t *testing.T) {
	mh := NewMinHasher(64)
	a := mh.ComputeSignature([]string{"x := 1", "y := 2", "z := 3"})
	b := mh.ComputeSignature([]string{"z := 3", "x := 1", "y := 2", "x := 1"})

	if agreement(a, b) != 1.0 {
		t.Error("Expected repeated and reordered features to give the same signature")
	}
	if NewMinHasher(64).ComputeSignature([]string{"x := 1"}).values[0] !=
		NewMinHasher(64).ComputeSignature([]string{"x := 1"}).values[0] {
		t.Error("Expected signatures to be deterministic across hashers")
	}
}

// agreement is the share of equal signature positions, which estimates Jaccard similarity
func agreement(a, b *MinHashSignature) float64 {
	equal := 0
	for i := range a.values {
		if a.values[i] == b.values[i] {
			equal++
		}
	}
	return float64(equal) / float64(len(a.values))
}

func TestComputeSignature_TracksJaccard(t *testing.T) {
	mh := NewMinHasher(256)
	base := []string{"a", "b", "c", "d", "e"}

	tests := []struct {
		name     string
		other    []string
		min, max float64
	}{
		{"identical", base, 1, 1},
		{"disjoint", []string{"v", "w", "x", "y", "z"}, 0, 0.2},
		{"overlap 3/7", []string{"a", "b", "c", "x", "y"}, 0.2, 0.7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := agreement(mh.ComputeSignature(base), mh.ComputeSignature(tt.other))
			if got < tt.min || got > tt.max {
				t.Errorf("Expected agreement in [%v, %v], got %v", tt.min, tt.max, got)
			}
		})
	}
}
