package tables

// TreeSequence is the read-only, queryable form of a completed
// ancestry record. It is created from a sorted, indexed Collection and
// takes ownership of it; the caller must not mutate the collection
// afterwards.
type TreeSequence struct {
	tables      *Collection
	breakpoints []float64
}

// Row projections. Accessors return copies, never aliases into the
// underlying columns.

// Node is one haploid genome copy.
type Node struct {
	Flags      NodeFlags
	Time       float64
	Population PopulationID
	Individual IndividualID
}

// Edge records that Child inherited [Left, Right) from Parent.
type Edge struct {
	Left, Right   float64
	Parent, Child NodeID
}

// Individual is a diploid entity owning two nodes.
type Individual struct {
	Flags    uint32
	Location []float64
	Parents  []IndividualID
}

// Site is a genomic position at which a mutation has occurred.
type Site struct {
	Position       float64
	AncestralState string
}

// Mutation records a new allelic state arising on Node at Site.
type Mutation struct {
	Site         SiteID
	Node         NodeID
	Parent       MutationID
	Time         float64
	DerivedState string
}

// NewTreeSequence wraps a collection. The collection must have been
// sorted and indexed.
func NewTreeSequence(c *Collection) (*TreeSequence, error) {
	if !c.sorted {
		return nil, newTableError(ErrCodeUnsorted, "",
			"collection must be sorted before wrapping")
	}
	if !c.indexed {
		return nil, newTableError(ErrCodeUnsorted, "",
			"collection must be indexed before wrapping")
	}
	return &TreeSequence{tables: c, breakpoints: c.breakpoints()}, nil
}

// SequenceLength returns the genome length.
func (ts *TreeSequence) SequenceLength() float64 { return ts.tables.sequenceLength }

// NumNodes returns the node count.
func (ts *TreeSequence) NumNodes() int { return ts.tables.NumNodes() }

// NumEdges returns the edge count.
func (ts *TreeSequence) NumEdges() int { return ts.tables.NumEdges() }

// NumIndividuals returns the individual count.
func (ts *TreeSequence) NumIndividuals() int { return ts.tables.NumIndividuals() }

// NumPopulations returns the population count.
func (ts *TreeSequence) NumPopulations() int { return ts.tables.NumPopulations() }

// NumSites returns the site count.
func (ts *TreeSequence) NumSites() int { return ts.tables.NumSites() }

// NumMutations returns the mutation count.
func (ts *TreeSequence) NumMutations() int { return ts.tables.NumMutations() }

// NumTrees returns the number of distinct genomic spans delimited by
// edge boundaries.
func (ts *TreeSequence) NumTrees() int { return len(ts.breakpoints) - 1 }

// Breakpoints returns the positions at which the edge composition
// changes, including 0 and the sequence length.
func (ts *TreeSequence) Breakpoints() []float64 {
	return append([]float64(nil), ts.breakpoints...)
}

// Samples returns the ids of all nodes carrying the sample flag, in id
// order.
func (ts *TreeSequence) Samples() []NodeID {
	var out []NodeID
	for i, f := range ts.tables.nodes.flags {
		if f.IsSample() {
			out = append(out, NodeID(i))
		}
	}
	return out
}

// Nodes returns a copy of the node table rows.
func (ts *TreeSequence) Nodes() []Node {
	n := ts.tables.nodes
	out := make([]Node, len(n.time))
	for i := range out {
		out[i] = Node{n.flags[i], n.time[i], n.population[i], n.individual[i]}
	}
	return out
}

// Edges returns a copy of the edge table rows in sorted order.
func (ts *TreeSequence) Edges() []Edge {
	e := ts.tables.edges
	out := make([]Edge, len(e.left))
	for i := range out {
		out[i] = Edge{e.left[i], e.right[i], e.parent[i], e.child[i]}
	}
	return out
}

// Individuals returns a copy of the individual table rows.
func (ts *TreeSequence) Individuals() []Individual {
	t := ts.tables.individuals
	out := make([]Individual, len(t.flags))
	for i := range out {
		out[i] = Individual{
			Flags:    t.flags[i],
			Location: append([]float64(nil), t.location[i]...),
			Parents:  append([]IndividualID(nil), t.parents[i]...),
		}
	}
	return out
}

// Populations returns the population names in id order.
func (ts *TreeSequence) Populations() []string {
	return append([]string(nil), ts.tables.populations.name...)
}

// Sites returns a copy of the site table rows in position order.
func (ts *TreeSequence) Sites() []Site {
	t := ts.tables.sites
	out := make([]Site, len(t.position))
	for i := range out {
		out[i] = Site{t.position[i], t.ancestralState[i]}
	}
	return out
}

// Mutations returns a copy of the mutation table rows.
func (ts *TreeSequence) Mutations() []Mutation {
	t := ts.tables.mutations
	out := make([]Mutation, len(t.site))
	for i := range out {
		out[i] = Mutation{t.site[i], t.node[i], t.parent[i], t.time[i], t.derivedState[i]}
	}
	return out
}
