package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treeseq/forwardsim/internal/tables"
)

// testPool builds a parental pool of n diploid pairs with recognisable
// node ids: pair i owns nodes 2i and 2i+1.
func testPool(n int) []nodePair {
	pool := make([]nodePair, n)
	for i := range pool {
		pool[i] = nodePair{tables.NodeID(2 * i), tables.NodeID(2*i + 1)}
	}
	return pool
}

func TestFindParent_AncestralNeverMigrates(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	pool := testPool(10)

	for i := 0; i < 10000; i++ {
		_, pop := findParent(rng, pool, popAncestral)
		require.Equal(t, popAncestral, pop)
	}
}

func TestFindParent_AncestralDrawsFromWholePool(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	pool := testPool(10)

	seen := make(map[tables.NodeID]bool)
	for i := 0; i < 10000; i++ {
		pair, _ := findParent(rng, pool, popAncestral)
		seen[pair.first] = true
	}
	assert.Len(t, seen, 10, "every pair should be drawn eventually")
}

func TestFindParent_SubpopulationDrawsMatchReturnedPop(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	pool := testPool(10) // pairs 0-4 are Pop1, pairs 5-9 are Pop2

	for i := 0; i < 10000; i++ {
		pair, pop := findParent(rng, pool, popSplit1)
		switch pop {
		case popSplit1:
			assert.Less(t, int(pair.first), 10, "Pop1 draw must come from the first half")
		case popSplit2:
			assert.GreaterOrEqual(t, int(pair.first), 10, "Pop2 draw must come from the second half")
		default:
			t.Fatalf("unexpected population %d", pop)
		}
	}
}

func TestFindParent_MigrationIsRareButPresent(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	pool := testPool(10)

	const draws = 20000
	migrations := 0
	for i := 0; i < draws; i++ {
		_, pop := findParent(rng, pool, popSplit2)
		if pop == popSplit1 {
			migrations++
		}
	}

	// Expected rate is 1%; with 20k draws anything outside [0.5%, 2%]
	// would indicate a broken draw.
	assert.Greater(t, migrations, draws/200)
	assert.Less(t, migrations, draws/50)
}

func TestFindParent_PanicsOnOddPool(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	assert.Panics(t, func() {
		findParent(rng, testPool(10)[:3], popAncestral)
	})
}
