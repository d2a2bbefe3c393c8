package tables

import "sort"

// edgeIndex holds the insertion and removal orders used to sweep the
// edge table across the genome: insertion sorts edges by left
// coordinate (ties broken upward in time), removal by right coordinate
// (ties broken downward). Together they yield the distinct genomic
// spans ("trees") of the record without materializing any tree.
type edgeIndex struct {
	insertion []EdgeID
	removal   []EdgeID
}

// BuildIndex constructs the edge sweep index. The collection must be
// sorted first.
func (c *Collection) BuildIndex() error {
	if !c.sorted {
		return newTableError(ErrCodeUnsorted, "edge",
			"collection must be sorted before indexing")
	}
	n := c.NumEdges()
	ins := make([]EdgeID, n)
	rem := make([]EdgeID, n)
	for i := 0; i < n; i++ {
		ins[i] = EdgeID(i)
		rem[i] = EdgeID(i)
	}
	e := &c.edges
	sort.SliceStable(ins, func(a, b int) bool {
		i, j := ins[a], ins[b]
		if e.left[i] != e.left[j] {
			return e.left[i] < e.left[j]
		}
		ti, tj := c.nodes.time[e.parent[i]], c.nodes.time[e.parent[j]]
		if ti != tj {
			return ti < tj
		}
		return e.parent[i] < e.parent[j]
	})
	sort.SliceStable(rem, func(a, b int) bool {
		i, j := rem[a], rem[b]
		if e.right[i] != e.right[j] {
			return e.right[i] < e.right[j]
		}
		ti, tj := c.nodes.time[e.parent[i]], c.nodes.time[e.parent[j]]
		if ti != tj {
			return ti > tj
		}
		return e.parent[i] > e.parent[j]
	})
	c.index = edgeIndex{insertion: ins, removal: rem}
	c.indexed = true
	return nil
}

// breakpoints returns the sorted genomic positions at which the edge
// composition changes, always including 0 and the sequence length.
func (c *Collection) breakpoints() []float64 {
	set := map[float64]bool{0: true, c.sequenceLength: true}
	for i := range c.edges.left {
		set[c.edges.left[i]] = true
		set[c.edges.right[i]] = true
	}
	out := make([]float64, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Float64s(out)
	return out
}
