package tables

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RejectsNonPositiveLength(t *testing.T) {
	_, err := New(0)
	require.Error(t, err)
	assert.True(t, IsTableError(err, ErrCodeBadParam))

	_, err = New(-3)
	require.Error(t, err)
	assert.True(t, IsTableError(err, ErrCodeBadParam))
}

func TestCollection_AddPopulation_AssignsSequentialIDs(t *testing.T) {
	c, err := New(10)
	require.NoError(t, err)

	anc, err := c.AddPopulation("ancestor")
	require.NoError(t, err)
	p1, err := c.AddPopulation("pop1")
	require.NoError(t, err)
	p2, err := c.AddPopulation("pop2")
	require.NoError(t, err)

	assert.Equal(t, PopulationID(0), anc)
	assert.Equal(t, PopulationID(1), p1)
	assert.Equal(t, PopulationID(2), p2)
	assert.Equal(t, 3, c.NumPopulations())
}

func TestCollection_AddIndividual_ValidatesParents(t *testing.T) {
	c, err := New(10)
	require.NoError(t, err)

	founder, err := c.AddIndividual(0, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, IndividualID(0), founder)

	// Null parents are allowed.
	_, err = c.AddIndividual(0, nil, []IndividualID{NullIndividual, NullIndividual})
	require.NoError(t, err)

	// Dangling parent reference is not.
	_, err = c.AddIndividual(0, nil, []IndividualID{42})
	require.Error(t, err)
	assert.True(t, IsTableError(err, ErrCodeBadReference))
}

func TestCollection_AddNode_ValidatesReferences(t *testing.T) {
	c, err := New(10)
	require.NoError(t, err)
	pop, err := c.AddPopulation("ancestor")
	require.NoError(t, err)
	ind, err := c.AddIndividual(0, nil, nil)
	require.NoError(t, err)

	n, err := c.AddNode(NodeIsSample, 0, pop, ind)
	require.NoError(t, err)
	assert.Equal(t, NodeID(0), n)

	_, err = c.AddNode(0, 1, PopulationID(9), ind)
	assert.True(t, IsTableError(err, ErrCodeBadReference))

	_, err = c.AddNode(0, 1, pop, IndividualID(9))
	assert.True(t, IsTableError(err, ErrCodeBadReference))

	// Null references are fine.
	_, err = c.AddNode(0, 1, NullPopulation, NullIndividual)
	require.NoError(t, err)
}

func TestCollection_AddEdge_Validation(t *testing.T) {
	c, err := New(10)
	require.NoError(t, err)
	child, err := c.AddNode(NodeIsSample, 0, NullPopulation, NullIndividual)
	require.NoError(t, err)
	parent, err := c.AddNode(0, 1, NullPopulation, NullIndividual)
	require.NoError(t, err)

	_, err = c.AddEdge(0, 10, parent, child)
	require.NoError(t, err)

	tests := []struct {
		name          string
		left, right   float64
		parent, child NodeID
		code          TableErrorCode
	}{
		{"empty span", 5, 5, parent, child, ErrCodeBadInterval},
		{"inverted span", 7, 3, parent, child, ErrCodeBadInterval},
		{"negative left", -1, 5, parent, child, ErrCodeBadInterval},
		{"right past end", 0, 11, parent, child, ErrCodeBadInterval},
		{"unknown parent", 0, 10, NodeID(99), child, ErrCodeBadReference},
		{"unknown child", 0, 10, parent, NodeID(99), ErrCodeBadReference},
		{"self edge", 0, 10, parent, parent, ErrCodeBadReference},
		{"child older than parent", 0, 10, child, parent, ErrCodeBadTime},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.AddEdge(tt.left, tt.right, tt.parent, tt.child)
			require.Error(t, err)
			assert.True(t, IsTableError(err, tt.code), "got %v", err)
		})
	}
}

func TestCollection_AddSite_ValidatesPosition(t *testing.T) {
	c, err := New(10)
	require.NoError(t, err)

	s, err := c.AddSite(3, "a")
	require.NoError(t, err)
	assert.Equal(t, SiteID(0), s)

	_, err = c.AddSite(-1, "a")
	assert.True(t, IsTableError(err, ErrCodeBadPosition))

	// Positions are half-open: the sequence length itself is outside.
	_, err = c.AddSite(10, "a")
	assert.True(t, IsTableError(err, ErrCodeBadPosition))
}

func TestCollection_AddMutation_ValidatesReferences(t *testing.T) {
	c, err := New(10)
	require.NoError(t, err)
	node, err := c.AddNode(NodeIsSample, 0, NullPopulation, NullIndividual)
	require.NoError(t, err)
	site, err := c.AddSite(3, "a")
	require.NoError(t, err)

	first, err := c.AddMutation(site, node, NullMutation, 0, "b")
	require.NoError(t, err)

	// Chained recurrence.
	second, err := c.AddMutation(site, node, first, 0, "c")
	require.NoError(t, err)
	assert.Equal(t, MutationID(1), second)

	_, err = c.AddMutation(SiteID(9), node, NullMutation, 0, "b")
	assert.True(t, IsTableError(err, ErrCodeBadReference))

	_, err = c.AddMutation(site, NodeID(9), NullMutation, 0, "b")
	assert.True(t, IsTableError(err, ErrCodeBadReference))

	_, err = c.AddMutation(site, node, MutationID(9), 0, "b")
	assert.True(t, IsTableError(err, ErrCodeBadReference))
}

func TestCollection_BuildIndex_RequiresSort(t *testing.T) {
	c, err := New(10)
	require.NoError(t, err)
	child, err := c.AddNode(NodeIsSample, 0, NullPopulation, NullIndividual)
	require.NoError(t, err)
	parent, err := c.AddNode(0, 1, NullPopulation, NullIndividual)
	require.NoError(t, err)
	_, err = c.AddEdge(0, 10, parent, child)
	require.NoError(t, err)

	err = c.BuildIndex()
	assert.True(t, IsTableError(err, ErrCodeUnsorted))

	require.NoError(t, c.Sort())
	require.NoError(t, c.BuildIndex())

	// Any insertion invalidates the index again.
	_, err = c.AddNode(0, 2, NullPopulation, NullIndividual)
	require.NoError(t, err)
	err = c.BuildIndex()
	assert.True(t, IsTableError(err, ErrCodeUnsorted))
}
