package sim

import (
	"fmt"
	"math/rand"

	"github.com/treeseq/forwardsim/internal/tables"
)

// migrationProb is the per-draw probability that a Pop1/Pop2 child
// takes its parent from the other subpopulation (island model).
const migrationProb = 0.01

// nodePair is the two chromosome copies of one diploid individual.
type nodePair struct {
	first, second tables.NodeID
}

// findParent draws one parent chromosome pair for a child in childPop
// from the current parental generation.
//
// The parental pool is indexed so that, while the split is in effect,
// the first half belongs to Pop1 and the second half to Pop2.
// Ancestral children draw uniformly from the whole pool and never
// migrate; Pop1/Pop2 children draw from their own half, except with
// probability migrationProb from the other half. The returned
// population is the one actually drawn from.
//
// findParent is called independently once per parent, so one
// offspring's two parents can come from different migration outcomes.
func findParent(rng *rand.Rand, parents []nodePair, childPop tables.PopulationID) (nodePair, tables.PopulationID) {
	if len(parents)%2 != 0 {
		panic("sim: parental pool size must be even")
	}
	poolSize := len(parents)

	parentPop := childPop
	if childPop != popAncestral && rng.Float64() < migrationProb {
		if childPop == popSplit1 {
			parentPop = popSplit2
		} else {
			parentPop = popSplit1
		}
	}

	var parent nodePair
	switch parentPop {
	case popAncestral:
		parent = parents[rng.Intn(poolSize)]
	case popSplit1:
		parent = parents[rng.Intn(poolSize/2)]
	case popSplit2:
		parent = parents[poolSize/2+rng.Intn(poolSize/2)]
	default:
		panic(fmt.Sprintf("sim: unknown population id %d", parentPop))
	}
	return parent, parentPop
}
