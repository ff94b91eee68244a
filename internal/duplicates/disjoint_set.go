package duplicates

import "sort"

// DisjointSet is a union-find structure over the integers [0, n)
type DisjointSet struct {
	parent []int
	rank   []int
}

// NewDisjointSet creates n singleton sets
func NewDisjointSet(n int) *DisjointSet {
	ds := &DisjointSet{parent: make([]int, n), rank: make([]int, n)}
	for i := range ds.parent {
		ds.parent[i] = i
	}
	return ds
}

// Find returns the representative of x's set
func (ds *DisjointSet) Find(x int) int {
	for ds.parent[x] != x {
		ds.parent[x] = ds.parent[ds.parent[x]]
		x = ds.parent[x]
	}
	return x
}

// Union merges the sets of a and b and reports whether they were separate
func (ds *DisjointSet) Union(a, b int) bool {
	ra, rb := ds.Find(a), ds.Find(b)
	if ra == rb {
		return false
	}
	switch {
	case ds.rank[ra] < ds.rank[rb]:
		ds.parent[ra] = rb
	case ds.rank[ra] > ds.rank[rb]:
		ds.parent[rb] = ra
	default:
		ds.parent[rb] = ra
		ds.rank[ra]++
	}
	return true
}

// Groups returns every set with at least minSize members. Members are sorted
// ascending and groups are ordered by their smallest member.
func (ds *DisjointSet) Groups(minSize int) [][]int {
	byRoot := make(map[int][]int)
	for i := range ds.parent {
		root := ds.Find(i)
		byRoot[root] = append(byRoot[root], i)
	}

	groups := make([][]int, 0, len(byRoot))
	for _, members := range byRoot {
		if len(members) >= minSize {
			groups = append(groups, members)
		}
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i][0] < groups[j][0] })
	return groups
}
