package geo

import (
	"sort"

	"nearbot/internal/domain/entities"
)

// Candidate is anything that can be ranked by distance. StopRecord and
// ToiletRecord both satisfy it.
//
// Go Learning Note — Generics with Interface Constraints:
// Filter and TopK are generic over C so a toilet search returns
// []Scored[entities.ToiletRecord] and a truck search returns
// []Scored[entities.StopRecord]. The caller keeps the concrete record type and
// never needs a type assertion on the way out.
type Candidate interface {
	Location() entities.GeoPoint
}

// Scored pairs a candidate with its computed distance from the reference
// point. It is only ever produced by Filter and is never stored.
type Scored[C Candidate] struct {
	Candidate      C       `json:"candidate"`
	DistanceMeters float64 `json:"distance"`
}

// Filter returns the candidates whose distance from ref is strictly below
// threshold, in input order. Sorting is TopK's job.
func Filter[C Candidate](ref entities.GeoPoint, candidates []C, threshold float64, dist DistanceFunc) []Scored[C] {
	out := make([]Scored[C], 0)
	for _, c := range candidates {
		d := dist(ref, c.Location())
		if d < threshold {
			out = append(out, Scored[C]{Candidate: c, DistanceMeters: d})
		}
	}
	return out
}

// TopK returns the k nearest entries in ascending distance. Equal distances
// keep their input order. The input slice is not modified.
//
// Go Learning Note — sort.SliceStable:
// sort.Slice gives no guarantee about the relative order of equal elements.
// sort.SliceStable does, at a small cost. Ties here have no secondary key, so
// stability is the only thing that makes the output deterministic.
func TopK[C Candidate](scored []Scored[C], k int) []Scored[C] {
	if k < 0 {
		k = 0
	}
	sorted := make([]Scored[C], len(scored))
	copy(sorted, scored)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DistanceMeters < sorted[j].DistanceMeters
	})

	if len(sorted) > k {
		sorted = sorted[:k]
	}
	return sorted
}

// Nearest is Filter followed by TopK, the single-pass search used by the
// garbage-truck and home-distance features.
func Nearest[C Candidate](ref entities.GeoPoint, candidates []C, threshold float64, k int, dist DistanceFunc) []Scored[C] {
	return TopK(Filter(ref, candidates, threshold, dist), k)
}
