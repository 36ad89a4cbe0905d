// Package match groups video hashes into duplicate clusters.
package match

import (
	"math"
	"math/bits"
	"sort"

	"github.com/lepinkainen/videodup/vhash"
)

// Options tune the comparison. Zero values are invalid; use DefaultOptions
// and override fields.
type Options struct {
	// Tau is the combined-distance threshold at or below which two hashes
	// match.
	Tau float64
	// SpatialWeight and TemporalWeight blend the two distance components.
	SpatialWeight  float64
	TemporalWeight float64
	// DurationTolerance is the maximum fractional duration difference for
	// two videos to be comparable at all.
	DurationTolerance float64
}

// DefaultOptions returns the documented defaults: tau 0.25, weights 0.7/0.3,
// duration tolerance 5%.
func DefaultOptions() Options {
	return Options{
		Tau:               0.25,
		SpatialWeight:     vhash.DefaultSpatialWeight,
		TemporalWeight:    vhash.DefaultTemporalWeight,
		DurationTolerance: 0.05,
	}
}

// MatchGroup is one cluster of duplicates. Distances[i] is the combined
// distance from Duplicates[i] to the reference.
type MatchGroup struct {
	Reference  string    `json:"reference"`
	Duplicates []string  `json:"duplicates"`
	Distances  []float64 `json:"distances"`
}

// durationsComparable applies the duration gate.
func durationsComparable(a, b int64, tolerance float64) bool {
	if a <= 0 || b <= 0 {
		return false
	}
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	return float64(hi-lo)/float64(hi) <= tolerance
}

// Distance returns the combined distance between two hashes in [0, 1], or
// +Inf when the pair fails the duration gate or the hashes are not
// comparable (different frame counts). It is symmetric and zero on
// identical fingerprints.
func Distance(a, b *vhash.VideoHash, opt Options) float64 {
	if !durationsComparable(a.DurationMS, b.DurationMS, opt.DurationTolerance) {
		return math.Inf(1)
	}
	if len(a.Spatial) != len(b.Spatial) || len(a.Spatial) == 0 {
		return math.Inf(1)
	}

	spatialBits := 0
	for i := range a.Spatial {
		spatialBits += bits.OnesCount64(a.Spatial[i] ^ b.Spatial[i])
	}
	dSpatial := float64(spatialBits) / float64(64*len(a.Spatial))
	dTemporal := float64(bits.OnesCount64(a.Temporal^b.Temporal)) / 64.0

	d := opt.SpatialWeight*dSpatial + opt.TemporalWeight*dTemporal
	if d < 0 {
		d = 0
	}
	if d > 1 {
		d = 1
	}
	return d
}

// entry pairs a hash with its index in the duration-sorted order.
type entry struct {
	hash *vhash.VideoHash
	idx  int
}

// matchedPairs finds all matching pairs using a duration-sorted sliding
// window: after sorting, a pair can only pass the gate while the longer
// duration stays within tolerance of the shorter, so most pairs are never
// compared.
func matchedPairs(hashes []*vhash.VideoHash, opt Options) (pairs [][2]int) {
	entries := make([]entry, len(hashes))
	for i, h := range hashes {
		entries[i] = entry{hash: h, idx: i}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].hash.DurationMS != entries[j].hash.DurationMS {
			return entries[i].hash.DurationMS < entries[j].hash.DurationMS
		}
		return entries[i].hash.Path < entries[j].hash.Path
	})

	for i := range entries {
		a := entries[i].hash
		for j := i + 1; j < len(entries); j++ {
			b := entries[j].hash
			if !durationsComparable(a.DurationMS, b.DurationMS, opt.DurationTolerance) {
				// Sorted durations: every later entry is further away.
				break
			}
			if Distance(a, b, opt) <= opt.Tau {
				pairs = append(pairs, [2]int{entries[i].idx, entries[j].idx})
			}
		}
	}
	return pairs
}

// unionFind is a plain disjoint-set over hash indices.
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &unionFind{parent: parent}
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[rb] = ra
	}
}

// SearchSelf partitions hashes into duplicate groups: the maximal connected
// components of the match relation, ignoring singletons. Each hash lands in
// at most one group. The group's reference is the member with the smallest
// sum of distances to the others (ties to the lexicographically first
// path); duplicates are ordered by distance to the reference, then path.
// Groups are ordered by reference path.
func SearchSelf(hashes []*vhash.VideoHash, opt Options) []MatchGroup {
	pairs := matchedPairs(hashes, opt)

	uf := newUnionFind(len(hashes))
	for _, p := range pairs {
		uf.union(p[0], p[1])
	}

	components := make(map[int][]int)
	for i := range hashes {
		root := uf.find(i)
		components[root] = append(components[root], i)
	}

	var groups []MatchGroup
	for _, members := range components {
		if len(members) < 2 {
			continue
		}
		groups = append(groups, buildGroup(hashes, members, opt))
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Reference < groups[j].Reference
	})
	return groups
}

// buildGroup picks the reference and orders the duplicates.
func buildGroup(hashes []*vhash.VideoHash, members []int, opt Options) MatchGroup {
	sort.Slice(members, func(i, j int) bool {
		return hashes[members[i]].Path < hashes[members[j]].Path
	})

	best := members[0]
	bestSum := math.Inf(1)
	for _, m := range members {
		sum := 0.0
		for _, o := range members {
			if o == m {
				continue
			}
			d := Distance(hashes[m], hashes[o], opt)
			if math.IsInf(d, 1) {
				// Transitively connected but gated pair; count it as the
				// worst finite distance so it never becomes the reference.
				d = 1
			}
			sum += d
		}
		if sum < bestSum {
			best, bestSum = m, sum
		}
	}

	ref := hashes[best]
	type dup struct {
		path string
		dist float64
	}
	dups := make([]dup, 0, len(members)-1)
	for _, m := range members {
		if m == best {
			continue
		}
		d := Distance(ref, hashes[m], opt)
		if math.IsInf(d, 1) {
			d = 1
		}
		dups = append(dups, dup{path: hashes[m].Path, dist: d})
	}
	sort.Slice(dups, func(i, j int) bool {
		if dups[i].dist != dups[j].dist {
			return dups[i].dist < dups[j].dist
		}
		return dups[i].path < dups[j].path
	})

	g := MatchGroup{Reference: ref.Path}
	for _, d := range dups {
		g.Duplicates = append(g.Duplicates, d.path)
		g.Distances = append(g.Distances, d.dist)
	}
	return g
}

// SearchWithReferences returns one group per reference that has at least one
// match among the candidates. Candidates may appear in several groups.
// Groups are ordered by reference path.
func SearchWithReferences(refs, candidates []*vhash.VideoHash, opt Options) []MatchGroup {
	sortedRefs := append([]*vhash.VideoHash(nil), refs...)
	sort.Slice(sortedRefs, func(i, j int) bool { return sortedRefs[i].Path < sortedRefs[j].Path })

	var groups []MatchGroup
	for _, ref := range sortedRefs {
		type dup struct {
			path string
			dist float64
		}
		var dups []dup
		for _, c := range candidates {
			if c.Path == ref.Path {
				continue
			}
			if d := Distance(ref, c, opt); d <= opt.Tau {
				dups = append(dups, dup{path: c.Path, dist: d})
			}
		}
		if len(dups) == 0 {
			continue
		}
		sort.Slice(dups, func(i, j int) bool {
			if dups[i].dist != dups[j].dist {
				return dups[i].dist < dups[j].dist
			}
			return dups[i].path < dups[j].path
		})

		g := MatchGroup{Reference: ref.Path}
		for _, d := range dups {
			g.Duplicates = append(g.Duplicates, d.path)
			g.Distances = append(g.Distances, d.dist)
		}
		groups = append(groups, g)
	}
	return groups
}

// SearchUnique returns the hashes that belong to no self-match group,
// ordered by path. Together with the members of SearchSelf's groups they
// partition the input.
func SearchUnique(hashes []*vhash.VideoHash, opt Options) []*vhash.VideoHash {
	grouped := make(map[string]bool)
	for _, g := range SearchSelf(hashes, opt) {
		grouped[g.Reference] = true
		for _, d := range g.Duplicates {
			grouped[d] = true
		}
	}

	var unique []*vhash.VideoHash
	for _, h := range hashes {
		if !grouped[h.Path] {
			unique = append(unique, h)
		}
	}
	sort.Slice(unique, func(i, j int) bool { return unique[i].Path < unique[j].Path })
	return unique
}
