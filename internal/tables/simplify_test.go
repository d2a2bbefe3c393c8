package tables

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addNodeT(t *testing.T, c *Collection, flags NodeFlags, time float64) NodeID {
	t.Helper()
	id, err := c.AddNode(flags, time, NullPopulation, NullIndividual)
	require.NoError(t, err)
	return id
}

func addEdgeT(t *testing.T, c *Collection, left, right float64, parent, child NodeID) {
	t.Helper()
	_, err := c.AddEdge(left, right, parent, child)
	require.NoError(t, err)
}

func TestCollection_Simplify_RejectsBadSamples(t *testing.T) {
	c, err := New(10)
	require.NoError(t, err)
	s := addNodeT(t, c, NodeIsSample, 0)

	err = c.Simplify([]NodeID{NodeID(7)})
	assert.True(t, IsTableError(err, ErrCodeBadReference))

	err = c.Simplify([]NodeID{s, s})
	assert.True(t, IsTableError(err, ErrCodeBadReference))
}

func TestCollection_Simplify_SamplesComeFirst(t *testing.T) {
	c, err := New(10)
	require.NoError(t, err)
	// Insert the parent before the samples so input ids differ from
	// output ids.
	parent := addNodeT(t, c, 0, 1)
	s1 := addNodeT(t, c, NodeIsSample, 0)
	s2 := addNodeT(t, c, NodeIsSample, 0)
	addEdgeT(t, c, 0, 10, parent, s1)
	addEdgeT(t, c, 0, 10, parent, s2)

	require.NoError(t, c.Simplify([]NodeID{s1, s2}))

	require.Equal(t, 3, c.NumNodes())
	assert.True(t, c.nodes.flags[0].IsSample())
	assert.True(t, c.nodes.flags[1].IsSample())
	assert.False(t, c.nodes.flags[2].IsSample())
	assert.Equal(t, []NodeID{2, 2}, c.edges.parent)
	assert.Equal(t, []NodeID{0, 1}, c.edges.child)
}

func TestCollection_Simplify_RemovesUnaryPassthrough(t *testing.T) {
	c, err := New(10)
	require.NoError(t, err)
	s1 := addNodeT(t, c, NodeIsSample, 0)
	s2 := addNodeT(t, c, NodeIsSample, 0)
	coal := addNodeT(t, c, 0, 1)
	unary := addNodeT(t, c, 0, 2)
	addEdgeT(t, c, 0, 10, coal, s1)
	addEdgeT(t, c, 0, 10, coal, s2)
	// A single lineage continues above the coalescence; nothing new is
	// explained by it.
	addEdgeT(t, c, 0, 10, unary, coal)

	require.NoError(t, c.Simplify([]NodeID{s1, s2}))

	assert.Equal(t, 3, c.NumNodes(), "unary ancestor should be removed")
	assert.Equal(t, 2, c.NumEdges())
}

func TestCollection_Simplify_DropsUnreachableSubtree(t *testing.T) {
	c, err := New(10)
	require.NoError(t, err)
	s1 := addNodeT(t, c, NodeIsSample, 0)
	s2 := addNodeT(t, c, NodeIsSample, 0)
	dead := addNodeT(t, c, 0, 0) // contemporary non-sample
	coal := addNodeT(t, c, 0, 1)
	addEdgeT(t, c, 0, 10, coal, s1)
	addEdgeT(t, c, 0, 10, coal, s2)
	addEdgeT(t, c, 0, 10, coal, dead)

	require.NoError(t, c.Simplify([]NodeID{s1, s2}))

	assert.Equal(t, 3, c.NumNodes())
	assert.Equal(t, 2, c.NumEdges())
}

func TestCollection_Simplify_SquashesAdjacentEdges(t *testing.T) {
	c, err := New(10)
	require.NoError(t, err)
	s1 := addNodeT(t, c, NodeIsSample, 0)
	s2 := addNodeT(t, c, NodeIsSample, 0)
	coal := addNodeT(t, c, 0, 1)
	// Same topology recorded as two abutting spans per child.
	addEdgeT(t, c, 0, 4, coal, s1)
	addEdgeT(t, c, 4, 10, coal, s1)
	addEdgeT(t, c, 0, 4, coal, s2)
	addEdgeT(t, c, 4, 10, coal, s2)

	require.NoError(t, c.Simplify([]NodeID{s1, s2}))

	require.Equal(t, 2, c.NumEdges())
	assert.Equal(t, []float64{0, 0}, c.edges.left)
	assert.Equal(t, []float64{10, 10}, c.edges.right)
}

func TestCollection_Simplify_PartialOverlapCoalescence(t *testing.T) {
	c, err := New(10)
	require.NoError(t, err)
	s1 := addNodeT(t, c, NodeIsSample, 0)
	s2 := addNodeT(t, c, NodeIsSample, 0)
	coal := addNodeT(t, c, 0, 1)
	// The children only share ancestry over [3, 7).
	addEdgeT(t, c, 0, 7, coal, s1)
	addEdgeT(t, c, 3, 10, coal, s2)

	require.NoError(t, c.Simplify([]NodeID{s1, s2}))

	require.Equal(t, 3, c.NumNodes())
	require.Equal(t, 2, c.NumEdges())
	assert.Equal(t, []float64{3, 3}, c.edges.left)
	assert.Equal(t, []float64{7, 7}, c.edges.right)
}

func TestCollection_Simplify_ReattachesMutationsOnRemovedNodes(t *testing.T) {
	c, err := New(10)
	require.NoError(t, err)
	s1 := addNodeT(t, c, NodeIsSample, 0)
	s2 := addNodeT(t, c, NodeIsSample, 0)
	coal := addNodeT(t, c, 0, 1)
	unary := addNodeT(t, c, 0, 2)
	addEdgeT(t, c, 0, 10, coal, s1)
	addEdgeT(t, c, 0, 10, coal, s2)
	addEdgeT(t, c, 0, 10, unary, coal)

	site, err := c.AddSite(5, "a")
	require.NoError(t, err)
	// Mutation on the unary ancestor: its material at position 5 is
	// carried by the coalescent node after simplification.
	_, err = c.AddMutation(site, unary, NullMutation, 2, "b")
	require.NoError(t, err)

	require.NoError(t, c.Simplify([]NodeID{s1, s2}))

	require.Equal(t, 1, c.NumMutations())
	require.Equal(t, 1, c.NumSites())
	// Output node 2 is the coalescent node (samples are 0 and 1).
	assert.Equal(t, NodeID(2), c.mutations.node[0])
	assert.Equal(t, "b", c.mutations.derivedState[0])
}

func TestCollection_Simplify_DropsMutationsOffSampleAncestry(t *testing.T) {
	c, err := New(10)
	require.NoError(t, err)
	s1 := addNodeT(t, c, NodeIsSample, 0)
	s2 := addNodeT(t, c, NodeIsSample, 0)
	dead := addNodeT(t, c, 0, 0)
	coal := addNodeT(t, c, 0, 1)
	addEdgeT(t, c, 0, 10, coal, s1)
	addEdgeT(t, c, 0, 10, coal, s2)
	addEdgeT(t, c, 0, 10, coal, dead)

	site, err := c.AddSite(5, "a")
	require.NoError(t, err)
	_, err = c.AddMutation(site, dead, NullMutation, 0, "b")
	require.NoError(t, err)

	require.NoError(t, c.Simplify([]NodeID{s1, s2}))

	assert.Equal(t, 0, c.NumMutations())
	assert.Equal(t, 0, c.NumSites(), "sites with no surviving mutations are dropped")
}

func TestCollection_Simplify_RebuildsMutationChains(t *testing.T) {
	c, err := New(10)
	require.NoError(t, err)
	s1 := addNodeT(t, c, NodeIsSample, 0)
	s2 := addNodeT(t, c, NodeIsSample, 0)
	dead := addNodeT(t, c, 0, 0)
	coal := addNodeT(t, c, 0, 1)
	addEdgeT(t, c, 0, 10, coal, s1)
	addEdgeT(t, c, 0, 10, coal, s2)
	addEdgeT(t, c, 0, 10, coal, dead)

	site, err := c.AddSite(5, "a")
	require.NoError(t, err)
	first, err := c.AddMutation(site, coal, NullMutation, 1, "b")
	require.NoError(t, err)
	// Middle link lands on the dead branch and is dropped.
	middle, err := c.AddMutation(site, dead, first, 0, "c")
	require.NoError(t, err)
	_, err = c.AddMutation(site, s1, middle, 0, "d")
	require.NoError(t, err)

	require.NoError(t, c.Simplify([]NodeID{s1, s2}))

	require.Equal(t, 2, c.NumMutations())
	assert.Equal(t, []string{"b", "d"}, c.mutations.derivedState)
	assert.Equal(t, []MutationID{NullMutation, 0}, c.mutations.parent,
		"surviving chain should skip the dropped link")
}

func TestCollection_Simplify_FiltersIndividuals(t *testing.T) {
	c, err := New(10)
	require.NoError(t, err)
	founderInd, err := c.AddIndividual(0, nil, nil)
	require.NoError(t, err)
	deadInd, err := c.AddIndividual(0, nil, nil)
	require.NoError(t, err)
	childInd, err := c.AddIndividual(0, nil, []IndividualID{founderInd, deadInd})
	require.NoError(t, err)

	founder, err := c.AddNode(0, 1, NullPopulation, founderInd)
	require.NoError(t, err)
	s1, err := c.AddNode(NodeIsSample, 0, NullPopulation, childInd)
	require.NoError(t, err)
	s2, err := c.AddNode(NodeIsSample, 0, NullPopulation, childInd)
	require.NoError(t, err)
	addEdgeT(t, c, 0, 10, founder, s1)
	addEdgeT(t, c, 0, 10, founder, s2)

	require.NoError(t, c.Simplify([]NodeID{s1, s2}))

	// childInd and founderInd survive (referenced by kept nodes);
	// deadInd is dropped and the parent link nulled.
	require.Equal(t, 2, c.NumIndividuals())
	assert.Equal(t, []IndividualID{IndividualID(1), NullIndividual}, c.individuals.parents[0])
}

func TestCollection_Simplify_PopulationsNeverFiltered(t *testing.T) {
	c, err := New(10)
	require.NoError(t, err)
	for _, name := range []string{"ancestor", "pop1", "pop2"} {
		_, err := c.AddPopulation(name)
		require.NoError(t, err)
	}
	s1 := addNodeT(t, c, NodeIsSample, 0)
	s2 := addNodeT(t, c, NodeIsSample, 0)
	coal := addNodeT(t, c, 0, 1)
	addEdgeT(t, c, 0, 10, coal, s1)
	addEdgeT(t, c, 0, 10, coal, s2)

	require.NoError(t, c.Simplify([]NodeID{s1, s2}))

	assert.Equal(t, 3, c.NumPopulations())
}

func TestCollection_Simplify_NoEdgesKeepsSamplesOnly(t *testing.T) {
	c, err := New(10)
	require.NoError(t, err)
	s1 := addNodeT(t, c, NodeIsSample, 0)
	addNodeT(t, c, 0, 1)

	require.NoError(t, c.Simplify([]NodeID{s1}))

	assert.Equal(t, 1, c.NumNodes())
	assert.Equal(t, 0, c.NumEdges())
}
