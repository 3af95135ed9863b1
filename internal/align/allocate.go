package align

import "github.com/normanking/cortexvoice/internal/viseme"

// Allocate divides duration evenly across the shapes, one slot each, in
// order. Slot boundaries are computed by direct multiplication so float
// error never accumulates: slot i spans (i/N)*duration to ((i+1)/N)*duration,
// and the last slot always ends exactly at duration. An empty shape
// sequence yields an empty timeline.
func Allocate(shapes []viseme.Shape, duration float64) []Interval {
	intervals := make([]Interval, 0, len(shapes))
	n := float64(len(shapes))
	for i, sh := range shapes {
		intervals = append(intervals, Interval{
			Shape: sh,
			Start: float64(i) / n * duration,
			End:   float64(i+1) / n * duration,
		})
	}
	return intervals
}
