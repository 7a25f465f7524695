package geo

import (
	"nearbot/internal/domain/entities"
)

// SearchStatus is the terminal state of a widening search.
type SearchStatus string

const (
	StatusFound     SearchStatus = "found"
	StatusExhausted SearchStatus = "exhausted"
)

// Widening describes a bounded, growing threshold schedule. Attempt k
// (starting at 0) filters with Base + Increment*k, for k < MaxAttempts.
type Widening struct {
	Base        float64
	Increment   float64
	MaxAttempts int
}

// Threshold returns the threshold used on the given 0-based attempt.
func (w Widening) Threshold(attempt int) float64 {
	return w.Base + w.Increment*float64(attempt)
}

// Schedule lists every threshold the search may try, in order.
func (w Widening) Schedule() []float64 {
	if w.MaxAttempts <= 0 {
		return nil
	}
	out := make([]float64, w.MaxAttempts)
	for i := range out {
		out[i] = w.Threshold(i)
	}
	return out
}

// Outcome is the result of one widening search over one partition.
// Threshold is the last threshold actually tried, reported for both states.
type Outcome[C Candidate] struct {
	Status    SearchStatus
	Results   []Scored[C]
	Threshold float64
	Attempts  int
}

// Found reports whether the search produced results.
func (o Outcome[C]) Found() bool { return o.Status == StatusFound }

// Widen filters candidates with each threshold of w's schedule and stops at
// the first non-empty result. Results are in input order; rank them with TopK.
//
// When MaxAttempts is not positive no filtering happens and the outcome is
// Exhausted at the base threshold with zero attempts.
//
// Go Learning Note — No Generic Methods:
// Go methods cannot declare their own type parameters, so this is a plain
// generic function taking the Widening value instead of a method on it.
func Widen[C Candidate](w Widening, ref entities.GeoPoint, candidates []C, dist DistanceFunc) Outcome[C] {
	out := Outcome[C]{
		Status:    StatusExhausted,
		Results:   []Scored[C]{},
		Threshold: w.Base,
	}
	for attempt := 0; attempt < w.MaxAttempts; attempt++ {
		out.Threshold = w.Threshold(attempt)
		out.Attempts = attempt + 1

		if found := Filter(ref, candidates, out.Threshold, dist); len(found) > 0 {
			out.Status = StatusFound
			out.Results = found
			return out
		}
	}
	return out
}
