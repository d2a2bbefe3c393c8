package sim

import "fmt"

// Interval is a half-open genomic span [Left, Right).
type Interval struct {
	Left  float64 `yaml:"left" json:"left"`
	Right float64 `yaml:"right" json:"right"`
}

// ValidateIntervals checks the keep-interval precondition: every
// interval well-formed, and the list sorted and pairwise
// non-overlapping. This runs once, before any simulation work; the
// per-call check inside clipSegment is an assertion, not error
// handling.
func ValidateIntervals(keep []Interval) error {
	for i, iv := range keep {
		if iv.Left > iv.Right {
			return &ParamError{
				Field:   "keep_intervals",
				Message: fmt.Sprintf("interval %d is inverted: [%v, %v)", i, iv.Left, iv.Right),
			}
		}
		if i > 0 && keep[i-1].Right > iv.Left {
			return &ParamError{
				Field:   "keep_intervals",
				Message: fmt.Sprintf("intervals %d and %d overlap or are unsorted", i-1, i),
			}
		}
	}
	return nil
}

// clipSegment computes the ordered overlaps of the segment [start, end)
// with the keep-intervals, each clipped to the segment bounds. The out
// slice is cleared and reused so the per-offspring loop does not
// reallocate.
//
// keep must be sorted and non-overlapping; a violation here is a caller
// bug (the driver validates once up front) and panics.
func clipSegment(start, end float64, keep []Interval, out []Interval) []Interval {
	assertSortedIntervals(keep)
	out = out[:0]
	for _, iv := range keep {
		if iv.Right <= start || end <= iv.Left {
			continue
		}
		clipped := Interval{Left: maxf(iv.Left, start), Right: minf(iv.Right, end)}
		out = append(out, clipped)
	}
	return out
}

func assertSortedIntervals(keep []Interval) {
	for i, iv := range keep {
		if iv.Left > iv.Right {
			panic(fmt.Sprintf("sim: inverted keep-interval [%v, %v)", iv.Left, iv.Right))
		}
		if i > 0 && keep[i-1].Right > iv.Left {
			panic("sim: keep-intervals unsorted or overlapping")
		}
	}
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
