package tables

import "sort"

// segment records that output node node represents some input node's
// genetic material over [left, right).
type segment struct {
	left, right float64
	node        NodeID
}

// Simplify reduces the collection to the minimal set of nodes and edges
// required to explain the given samples, renumbering node ids so the
// samples come first in the order given.
//
// The reduction propagates ancestry segments from the samples upward:
// parents are processed in increasing time order, the segments their
// children carry are cut at every overlap boundary, and an output node
// is allocated for an input node only where two or more child segments
// coalesce (or the node is itself a sample). Spans where a single child
// segment passes through are forwarded without a node, which removes
// unary pass-through ancestors. Adjacent output edges with the same
// parent and child are squashed.
//
// Mutations survive iff their position on their node is ancestral to a
// sample; they are re-attached to the output node carrying that
// material and re-chained per site in their surviving order. Sites with
// no surviving mutations are dropped. Individuals referenced by no
// surviving node are dropped, with dangling parent links nulled.
// Populations are never filtered.
//
// Simplify leaves the collection sorted but unindexed.
func (c *Collection) Simplify(samples []NodeID) error {
	numInput := c.NumNodes()
	seen := make(map[NodeID]bool, len(samples))
	for _, s := range samples {
		if !c.validNode(s) {
			return newTableError(ErrCodeBadReference, "node",
				"sample node %d does not exist", s)
		}
		if seen[s] {
			return newTableError(ErrCodeBadReference, "node",
				"duplicate sample node %d", s)
		}
		seen[s] = true
	}

	out := simplifier{
		in:       c,
		nodeMap:  make([]NodeID, numInput),
		ancestry: make([][]segment, numInput),
	}
	for i := range out.nodeMap {
		out.nodeMap[i] = NullNode
	}

	// Samples anchor the propagation: each owns its whole genome.
	for _, s := range samples {
		id := out.allocNode(s)
		out.ancestry[s] = []segment{{0, c.sequenceLength, id}}
	}

	out.propagate()
	out.mapMutations()
	out.rebuildIndividuals()

	c.nodes = out.nodes
	c.edges = out.edges
	c.individuals = out.individuals
	c.sites = out.sites
	c.mutations = out.mutations

	// Renumbering invalidates the previous edge order and index.
	c.sortEdges()
	c.sortSites()
	c.sortMutations()
	c.sorted = true
	c.indexed = false
	c.index = edgeIndex{}
	return nil
}

// simplifier holds the in-flight output tables and the input-to-output
// node bookkeeping for one Simplify call.
type simplifier struct {
	in *Collection

	nodeMap  []NodeID    // input node id -> output node id (or Null)
	ancestry [][]segment // input node id -> surviving material

	nodes       nodeTable
	edges       edgeTable
	individuals individualTable
	sites       siteTable
	mutations   mutationTable
}

// allocNode copies input node u into the output node table, returning
// (and recording) its output id. The individual reference is kept as
// the input id and remapped later by rebuildIndividuals.
func (s *simplifier) allocNode(u NodeID) NodeID {
	if !s.nodeMap[u].IsNull() {
		return s.nodeMap[u]
	}
	in := &s.in.nodes
	s.nodes.flags = append(s.nodes.flags, in.flags[u])
	s.nodes.time = append(s.nodes.time, in.time[u])
	s.nodes.population = append(s.nodes.population, in.population[u])
	s.nodes.individual = append(s.nodes.individual, in.individual[u])
	id := NodeID(len(s.nodes.time) - 1)
	s.nodeMap[u] = id
	return id
}

// propagate walks every input node that appears as an edge parent, in
// increasing time order, merging the segments inherited by its
// children and emitting output edges where lineages coalesce.
func (s *simplifier) propagate() {
	in := s.in
	byParent := make(map[NodeID][]int)
	for i := range in.edges.left {
		p := in.edges.parent[i]
		byParent[p] = append(byParent[p], i)
	}
	parents := make([]NodeID, 0, len(byParent))
	for p := range byParent {
		parents = append(parents, p)
	}
	sort.Slice(parents, func(a, b int) bool {
		ta, tb := in.nodes.time[parents[a]], in.nodes.time[parents[b]]
		if ta != tb {
			return ta < tb
		}
		return parents[a] < parents[b]
	})

	for _, u := range parents {
		var segs []segment
		for _, ei := range byParent[u] {
			l, r := in.edges.left[ei], in.edges.right[ei]
			for _, x := range s.ancestry[in.edges.child[ei]] {
				lo, hi := maxf(l, x.left), minf(r, x.right)
				if lo < hi {
					segs = append(segs, segment{lo, hi, x.node})
				}
			}
		}
		if len(segs) == 0 {
			continue
		}
		merged := s.mergeSegments(u, segs)
		if !in.nodes.flags[u].IsSample() {
			// A sample keeps its whole-genome self mapping; merging
			// only emits its coalescence edges.
			s.ancestry[u] = merged
		}
	}
	s.squashEdges()
}

// mergeSegments cuts the gathered child segments of input node u at
// every boundary and resolves each elementary span: a span covered by
// one segment passes through unchanged; a span covered by two or more
// coalesces onto u's output node, emitting one edge per covered
// segment. A sample node always coalesces onto itself.
func (s *simplifier) mergeSegments(u NodeID, segs []segment) []segment {
	bounds := make([]float64, 0, 2*len(segs))
	for _, x := range segs {
		bounds = append(bounds, x.left, x.right)
	}
	sort.Float64s(bounds)
	bounds = dedupFloat64(bounds)

	isSample := s.in.nodes.flags[u].IsSample()

	var result []segment
	for i := 0; i+1 < len(bounds); i++ {
		a, b := bounds[i], bounds[i+1]
		var cover []segment
		for _, x := range segs {
			if x.left < b && x.right > a {
				cover = append(cover, x)
			}
		}
		switch {
		case len(cover) == 0:
			continue
		case len(cover) == 1 && !isSample:
			result = append(result, segment{a, b, cover[0].node})
		default:
			w := s.allocNode(u)
			for _, x := range cover {
				s.edges.left = append(s.edges.left, a)
				s.edges.right = append(s.edges.right, b)
				s.edges.parent = append(s.edges.parent, w)
				s.edges.child = append(s.edges.child, x.node)
			}
			result = append(result, segment{a, b, w})
		}
	}
	return squashSegments(result)
}

// squashEdges merges adjacent output edges that share a parent and
// child, removing the artificial cuts introduced by elementary spans.
func (s *simplifier) squashEdges() {
	e := &s.edges
	n := len(e.left)
	if n == 0 {
		return
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		i, j := order[a], order[b]
		if e.parent[i] != e.parent[j] {
			return e.parent[i] < e.parent[j]
		}
		if e.child[i] != e.child[j] {
			return e.child[i] < e.child[j]
		}
		return e.left[i] < e.left[j]
	})

	var squashed edgeTable
	for _, i := range order {
		last := len(squashed.left) - 1
		if last >= 0 &&
			squashed.parent[last] == e.parent[i] &&
			squashed.child[last] == e.child[i] &&
			squashed.right[last] == e.left[i] {
			squashed.right[last] = e.right[i]
			continue
		}
		squashed.left = append(squashed.left, e.left[i])
		squashed.right = append(squashed.right, e.right[i])
		squashed.parent = append(squashed.parent, e.parent[i])
		squashed.child = append(squashed.child, e.child[i])
	}
	s.edges = squashed
}

// mapMutations carries mutations over to the output record. A mutation
// at position p on input node u survives iff u's surviving ancestry
// covers p; it is attached to the output node carrying that span.
// Recurrence chains are rebuilt per site over the survivors, and sites
// with no survivors are dropped.
func (s *simplifier) mapMutations() {
	in := s.in
	siteMap := make([]SiteID, len(in.sites.position))
	for i := range siteMap {
		siteMap[i] = NullSite
	}
	lastAtSite := make([]MutationID, len(in.sites.position))
	for i := range lastAtSite {
		lastAtSite[i] = NullMutation
	}

	for i := range in.mutations.site {
		u := in.mutations.node[i]
		oldSite := in.mutations.site[i]
		pos := in.sites.position[oldSite]

		mapped := NullNode
		for _, x := range s.ancestry[u] {
			if x.left <= pos && pos < x.right {
				mapped = x.node
				break
			}
		}
		if mapped.IsNull() {
			continue
		}

		if siteMap[oldSite].IsNull() {
			s.sites.position = append(s.sites.position, pos)
			s.sites.ancestralState = append(s.sites.ancestralState, in.sites.ancestralState[oldSite])
			siteMap[oldSite] = SiteID(len(s.sites.position) - 1)
		}
		newSite := siteMap[oldSite]

		s.mutations.site = append(s.mutations.site, newSite)
		s.mutations.node = append(s.mutations.node, mapped)
		s.mutations.parent = append(s.mutations.parent, lastAtSite[oldSite])
		s.mutations.time = append(s.mutations.time, in.mutations.time[i])
		s.mutations.derivedState = append(s.mutations.derivedState, in.mutations.derivedState[i])
		lastAtSite[oldSite] = MutationID(len(s.mutations.site) - 1)
	}
}

// rebuildIndividuals keeps the individuals referenced by surviving
// nodes, in order of first reference, remapping node links and nulling
// parent links to dropped individuals.
func (s *simplifier) rebuildIndividuals() {
	in := s.in
	indMap := make([]IndividualID, len(in.individuals.flags))
	for i := range indMap {
		indMap[i] = NullIndividual
	}

	for ni, old := range s.nodes.individual {
		if old.IsNull() {
			continue
		}
		if indMap[old].IsNull() {
			s.individuals.flags = append(s.individuals.flags, in.individuals.flags[old])
			s.individuals.location = append(s.individuals.location, in.individuals.location[old])
			s.individuals.parents = append(s.individuals.parents,
				append([]IndividualID(nil), in.individuals.parents[old]...))
			indMap[old] = IndividualID(len(s.individuals.flags) - 1)
		}
		s.nodes.individual[ni] = indMap[old]
	}

	for _, parents := range s.individuals.parents {
		for i, p := range parents {
			if p.IsNull() {
				continue
			}
			parents[i] = indMap[p]
		}
	}
}

// squashSegments merges consecutive segments with the same output node
// and touching bounds.
func squashSegments(segs []segment) []segment {
	if len(segs) < 2 {
		return segs
	}
	out := segs[:1]
	for _, x := range segs[1:] {
		last := &out[len(out)-1]
		if last.node == x.node && last.right == x.left {
			last.right = x.right
			continue
		}
		out = append(out, x)
	}
	return out
}

func dedupFloat64(in []float64) []float64 {
	out := in[:0]
	for i, v := range in {
		if i == 0 || v != in[i-1] {
			out = append(out, v)
		}
	}
	return out
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
