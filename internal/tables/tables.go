package tables

// Collection is a mutable, append-only set of ancestry tables: the
// working form of a genealogical record while a simulation (or any
// other producer) is still inserting rows.
//
// Layout is columnar: each table is a struct of parallel slices, one
// row per id, ids assigned in insertion order. Every Add* method
// validates its references against the current table contents and
// rejects malformed rows with a *TableError; a Collection therefore
// never holds a dangling reference.
//
// Collection is not safe for concurrent use. The intended ownership
// model is a single writer appending rows, then Sort, Simplify and
// BuildIndex, then a read-only TreeSequence wrap.
type Collection struct {
	sequenceLength float64

	nodes       nodeTable
	edges       edgeTable
	individuals individualTable
	populations populationTable
	sites       siteTable
	mutations   mutationTable

	sorted  bool
	indexed bool
	index   edgeIndex
}

type nodeTable struct {
	flags      []NodeFlags
	time       []float64
	population []PopulationID
	individual []IndividualID
}

type edgeTable struct {
	left   []float64
	right  []float64
	parent []NodeID
	child  []NodeID
}

type individualTable struct {
	flags    []uint32
	location [][]float64
	parents  [][]IndividualID
}

type populationTable struct {
	name []string
}

type siteTable struct {
	position       []float64
	ancestralState []string
}

type mutationTable struct {
	site         []SiteID
	node         []NodeID
	parent       []MutationID
	time         []float64
	derivedState []string
}

// New creates an empty collection covering the genome [0, sequenceLength).
func New(sequenceLength float64) (*Collection, error) {
	if !(sequenceLength > 0) {
		return nil, newTableError(ErrCodeBadParam, "",
			"sequence length must be positive, got %v", sequenceLength)
	}
	return &Collection{sequenceLength: sequenceLength}, nil
}

// SequenceLength returns the genome length the collection covers.
func (c *Collection) SequenceLength() float64 { return c.sequenceLength }

// NumNodes returns the number of node rows.
func (c *Collection) NumNodes() int { return len(c.nodes.time) }

// NumEdges returns the number of edge rows.
func (c *Collection) NumEdges() int { return len(c.edges.left) }

// NumIndividuals returns the number of individual rows.
func (c *Collection) NumIndividuals() int { return len(c.individuals.flags) }

// NumPopulations returns the number of population rows.
func (c *Collection) NumPopulations() int { return len(c.populations.name) }

// NumSites returns the number of site rows.
func (c *Collection) NumSites() int { return len(c.sites.position) }

// NumMutations returns the number of mutation rows.
func (c *Collection) NumMutations() int { return len(c.mutations.site) }

// AddPopulation appends a population row carrying a symbolic name as
// its metadata and returns its id.
func (c *Collection) AddPopulation(name string) (PopulationID, error) {
	c.populations.name = append(c.populations.name, name)
	c.invalidate()
	return PopulationID(len(c.populations.name) - 1), nil
}

// AddIndividual appends an individual row. Parent references must be
// existing individual ids or NullIndividual; location may be nil.
func (c *Collection) AddIndividual(flags uint32, location []float64, parents []IndividualID) (IndividualID, error) {
	for _, p := range parents {
		if !p.IsNull() && !c.validIndividual(p) {
			return NullIndividual, newTableError(ErrCodeBadReference, "individual",
				"parent individual %d does not exist", p)
		}
	}
	c.individuals.flags = append(c.individuals.flags, flags)
	c.individuals.location = append(c.individuals.location, append([]float64(nil), location...))
	c.individuals.parents = append(c.individuals.parents, append([]IndividualID(nil), parents...))
	c.invalidate()
	return IndividualID(len(c.individuals.flags) - 1), nil
}

// AddNode appends a node row. The population and individual references
// must exist or be null.
func (c *Collection) AddNode(flags NodeFlags, time float64, population PopulationID, individual IndividualID) (NodeID, error) {
	if !population.IsNull() && !c.validPopulation(population) {
		return NullNode, newTableError(ErrCodeBadReference, "node",
			"population %d does not exist", population)
	}
	if !individual.IsNull() && !c.validIndividual(individual) {
		return NullNode, newTableError(ErrCodeBadReference, "node",
			"individual %d does not exist", individual)
	}
	c.nodes.flags = append(c.nodes.flags, flags)
	c.nodes.time = append(c.nodes.time, time)
	c.nodes.population = append(c.nodes.population, population)
	c.nodes.individual = append(c.nodes.individual, individual)
	c.invalidate()
	return NodeID(len(c.nodes.time) - 1), nil
}

// AddEdge appends an edge recording that child inherited [left, right)
// from parent. The span must be non-empty and inside the genome, both
// nodes must exist, and the parent must be strictly older than the
// child.
func (c *Collection) AddEdge(left, right float64, parent, child NodeID) (EdgeID, error) {
	if left < 0 || right > c.sequenceLength || left >= right {
		return NullEdge, newTableError(ErrCodeBadInterval, "edge",
			"invalid span [%v, %v) for sequence length %v", left, right, c.sequenceLength)
	}
	if !c.validNode(parent) {
		return NullEdge, newTableError(ErrCodeBadReference, "edge",
			"parent node %d does not exist", parent)
	}
	if !c.validNode(child) {
		return NullEdge, newTableError(ErrCodeBadReference, "edge",
			"child node %d does not exist", child)
	}
	if parent == child {
		return NullEdge, newTableError(ErrCodeBadReference, "edge",
			"node %d cannot be its own parent", parent)
	}
	if c.nodes.time[parent] <= c.nodes.time[child] {
		return NullEdge, newTableError(ErrCodeBadTime, "edge",
			"parent %d (time %v) not older than child %d (time %v)",
			parent, c.nodes.time[parent], child, c.nodes.time[child])
	}
	c.edges.left = append(c.edges.left, left)
	c.edges.right = append(c.edges.right, right)
	c.edges.parent = append(c.edges.parent, parent)
	c.edges.child = append(c.edges.child, child)
	c.invalidate()
	return EdgeID(len(c.edges.left) - 1), nil
}

// AddSite appends a site row at a genomic position. Positions are not
// deduplicated: inserting two sites at the same position is a caller
// error that Sort will not repair.
func (c *Collection) AddSite(position float64, ancestralState string) (SiteID, error) {
	if position < 0 || position >= c.sequenceLength {
		return NullSite, newTableError(ErrCodeBadPosition, "site",
			"position %v outside [0, %v)", position, c.sequenceLength)
	}
	c.sites.position = append(c.sites.position, position)
	c.sites.ancestralState = append(c.sites.ancestralState, ancestralState)
	c.invalidate()
	return SiteID(len(c.sites.position) - 1), nil
}

// AddMutation appends a mutation row: node acquired derivedState at
// site, chained to the previous mutation at that site via parent (or
// NullMutation if first).
func (c *Collection) AddMutation(site SiteID, node NodeID, parent MutationID, time float64, derivedState string) (MutationID, error) {
	if !c.validSite(site) {
		return NullMutation, newTableError(ErrCodeBadReference, "mutation",
			"site %d does not exist", site)
	}
	if !c.validNode(node) {
		return NullMutation, newTableError(ErrCodeBadReference, "mutation",
			"node %d does not exist", node)
	}
	if !parent.IsNull() && !c.validMutation(parent) {
		return NullMutation, newTableError(ErrCodeBadReference, "mutation",
			"parent mutation %d does not exist", parent)
	}
	c.mutations.site = append(c.mutations.site, site)
	c.mutations.node = append(c.mutations.node, node)
	c.mutations.parent = append(c.mutations.parent, parent)
	c.mutations.time = append(c.mutations.time, time)
	c.mutations.derivedState = append(c.mutations.derivedState, derivedState)
	c.invalidate()
	return MutationID(len(c.mutations.site) - 1), nil
}

// NodeIndividual returns the individual a node belongs to.
func (c *Collection) NodeIndividual(id NodeID) (IndividualID, error) {
	if !c.validNode(id) {
		return NullIndividual, newTableError(ErrCodeBadReference, "node",
			"node %d does not exist", id)
	}
	return c.nodes.individual[id], nil
}

// invalidate marks derived state (sort order, index) stale after any
// row insertion.
func (c *Collection) invalidate() {
	c.sorted = false
	c.indexed = false
}

func (c *Collection) validNode(id NodeID) bool {
	return id >= 0 && int(id) < len(c.nodes.time)
}

func (c *Collection) validIndividual(id IndividualID) bool {
	return id >= 0 && int(id) < len(c.individuals.flags)
}

func (c *Collection) validPopulation(id PopulationID) bool {
	return id >= 0 && int(id) < len(c.populations.name)
}

func (c *Collection) validSite(id SiteID) bool {
	return id >= 0 && int(id) < len(c.sites.position)
}

func (c *Collection) validMutation(id MutationID) bool {
	return id >= 0 && int(id) < len(c.mutations.site)
}
