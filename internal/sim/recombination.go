package sim

import (
	"math"
	"math/rand"
)

// findBreakpoint samples one recombination breakpoint uniformly from
// the open interval (0, L) in whole-tick units, where L is the genome
// length floored to ticks. Excluding both ends guarantees every
// offspring chromosome is stitched from two non-degenerate parental
// segments, so no edge ever degenerates to an empty span.
func findBreakpoint(rng *rand.Rand, seqlen float64) float64 {
	ticks := int(math.Floor(seqlen))
	return float64(1 + rng.Intn(ticks-1))
}
