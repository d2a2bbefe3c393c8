package testutil

import (
	"github.com/treeseq/forwardsim/internal/sim"
)

// WindowParams is a small, fast configuration with a single retained
// window. Suitable wherever a test needs a complete run cheaply.
func WindowParams() sim.Params {
	return sim.Params{
		SequenceLength: 10,
		PopSize:        4,
		StartTime:      3,
		SplitTime:      1,
		KeepIntervals:  []sim.Interval{{Left: 2, Right: 5}},
		Seed:           42,
	}
}

// RichParams is a larger configuration with two retained windows and
// enough generations for recombination and mutation to accumulate.
func RichParams() sim.Params {
	return sim.Params{
		SequenceLength: 100,
		PopSize:        20,
		StartTime:      10,
		SplitTime:      4,
		KeepIntervals:  []sim.Interval{{Left: 10, Right: 30}, {Left: 50, Right: 75}},
		Seed:           7,
	}
}
