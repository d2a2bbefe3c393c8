package tables

import "sort"

// Sort rearranges the tables into canonical coordinate order:
//
//   - edges by (parent time, parent id, child id, left)
//   - sites by position
//   - mutations grouped by their site's sorted position, preserving
//     insertion order within a site so that a recurrence chain keeps
//     parents ahead of children
//
// Node, individual and population rows are never reordered; only row
// ids of sites and mutations referenced from other tables are remapped.
// Sort is required before BuildIndex and NewTreeSequence.
func (c *Collection) Sort() error {
	c.sortEdges()
	c.sortSites()
	c.sortMutations()
	c.sorted = true
	c.indexed = false
	return nil
}

func (c *Collection) sortEdges() {
	e := &c.edges
	order := make([]int, len(e.left))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		i, j := order[a], order[b]
		ti, tj := c.nodes.time[e.parent[i]], c.nodes.time[e.parent[j]]
		if ti != tj {
			return ti < tj
		}
		if e.parent[i] != e.parent[j] {
			return e.parent[i] < e.parent[j]
		}
		if e.child[i] != e.child[j] {
			return e.child[i] < e.child[j]
		}
		return e.left[i] < e.left[j]
	})
	c.edges = edgeTable{
		left:   permuteFloat64(e.left, order),
		right:  permuteFloat64(e.right, order),
		parent: permuteNodeID(e.parent, order),
		child:  permuteNodeID(e.child, order),
	}
}

func (c *Collection) sortSites() {
	s := &c.sites
	order := make([]int, len(s.position))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return s.position[order[a]] < s.position[order[b]]
	})

	// old site id -> new site id
	remap := make([]SiteID, len(order))
	for newID, oldID := range order {
		remap[oldID] = SiteID(newID)
	}

	c.sites = siteTable{
		position:       permuteFloat64(s.position, order),
		ancestralState: permuteString(s.ancestralState, order),
	}
	for i, site := range c.mutations.site {
		c.mutations.site[i] = remap[site]
	}
}

func (c *Collection) sortMutations() {
	m := &c.mutations
	order := make([]int, len(m.site))
	for i := range order {
		order[i] = i
	}
	// Stable by site: within a site, insertion order already places
	// recurrence-chain parents before children.
	sort.SliceStable(order, func(a, b int) bool {
		return m.site[order[a]] < m.site[order[b]]
	})

	remap := make([]MutationID, len(order))
	for newID, oldID := range order {
		remap[oldID] = MutationID(newID)
	}

	parent := permuteMutationID(m.parent, order)
	for i, p := range parent {
		if !p.IsNull() {
			parent[i] = remap[p]
		}
	}
	c.mutations = mutationTable{
		site:         permuteSiteID(m.site, order),
		node:         permuteNodeID(m.node, order),
		parent:       parent,
		time:         permuteFloat64(m.time, order),
		derivedState: permuteString(m.derivedState, order),
	}
}

func permuteFloat64(in []float64, order []int) []float64 {
	out := make([]float64, len(in))
	for i, j := range order {
		out[i] = in[j]
	}
	return out
}

func permuteString(in []string, order []int) []string {
	out := make([]string, len(in))
	for i, j := range order {
		out[i] = in[j]
	}
	return out
}

func permuteNodeID(in []NodeID, order []int) []NodeID {
	out := make([]NodeID, len(in))
	for i, j := range order {
		out[i] = in[j]
	}
	return out
}

func permuteSiteID(in []SiteID, order []int) []SiteID {
	out := make([]SiteID, len(in))
	for i, j := range order {
		out[i] = in[j]
	}
	return out
}

func permuteMutationID(in []MutationID, order []int) []MutationID {
	out := make([]MutationID, len(in))
	for i, j := range order {
		out[i] = in[j]
	}
	return out
}
