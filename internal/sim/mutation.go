package sim

import (
	"math"
	"math/rand"
)

// mutationRate is the per-tick probability mass used for the placement
// draw: a sub-segment of length len receives a mutation with
// probability min(len*mutationRate, 1).
const mutationRate = 0.01

// maxDerivedOffset caps the derived-state alphabet at 'a'+45, keeping
// the code a single byte no matter how many recurrent mutations pile
// onto one position.
const maxDerivedOffset = 45

// findMutationPos samples a tick position uniformly from
// [ceil(start), floor(end)) — the whole ticks strictly inside the
// segment. The draw happens for every sub-segment, whether or not a
// mutation is finally placed, so the entropy stream is independent of
// placement outcomes.
func findMutationPos(rng *rand.Rand, start, end float64) int {
	s := int(math.Ceil(start))
	e := int(math.Floor(end))
	return s + rng.Intn(e-s)
}

// derivedState returns the one-character allelic code for the next
// mutation at pos given the per-position counters: 'a' plus the number
// of mutations already recorded there plus one, capped. The caller
// advances the counter only once a mutation is actually placed.
func derivedState(siteLastMutationOrder []int, pos int) string {
	n := siteLastMutationOrder[pos] + 1
	if n > maxDerivedOffset {
		n = maxDerivedOffset
	}
	return string([]byte{'a' + byte(n)})
}

// mutationProb returns the placement probability for a sub-segment of
// the given length.
func mutationProb(segLen float64) float64 {
	p := segLen * mutationRate
	if p > 1 {
		p = 1
	}
	return p
}
