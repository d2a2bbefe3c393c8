package sim

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/treeseq/forwardsim/internal/tables"
)

// Population roles. The driver creates them in this order in both
// records, so the symbolic role and the stored id coincide for the
// whole run.
const (
	popAncestral tables.PopulationID = 0
	popSplit1    tables.PopulationID = 1
	popSplit2    tables.PopulationID = 2
)

// populationNames maps role ids to the metadata names stored in the
// population tables.
var populationNames = []string{"ancestor", "pop1", "pop2"}

// Params are the inputs of one simulation run.
type Params struct {
	// SequenceLength is the genome length in continuous coordinates.
	// Breakpoints and mutation positions are drawn on whole ticks, so
	// the length must floor to at least 2.
	SequenceLength float64

	// PopSize is the number of diploid individuals per generation.
	// Must be even: while the split is in effect the first half forms
	// Pop1 and the second half Pop2.
	PopSize int

	// StartTime is the founder generation, in generations before
	// present. The loop steps t from StartTime-1 down to 0.
	StartTime int

	// SplitTime bounds the split: offspring born at t > SplitTime are
	// assigned to Pop1/Pop2, all later generations are undivided
	// Ancestral. Must be strictly less than StartTime.
	SplitTime int

	// KeepIntervals are the genomic windows retained in the truncated
	// record. Must be sorted and pairwise non-overlapping. An empty
	// list yields a truncated record with no edges at all.
	KeepIntervals []Interval

	// Seed fully determines both output records.
	Seed int64
}

// Validate checks every precondition, reporting the first violation as
// a *ParamError.
func (p Params) Validate() error {
	if math.Floor(p.SequenceLength) < 2 {
		return &ParamError{Field: "sequence_length",
			Message: fmt.Sprintf("must floor to at least 2 ticks, got %v", p.SequenceLength)}
	}
	if p.PopSize <= 0 {
		return &ParamError{Field: "pop_size",
			Message: fmt.Sprintf("must be positive, got %d", p.PopSize)}
	}
	if p.PopSize%2 != 0 {
		return &ParamError{Field: "pop_size",
			Message: fmt.Sprintf("must be even, got %d", p.PopSize)}
	}
	if p.StartTime <= 0 {
		return &ParamError{Field: "start_time",
			Message: fmt.Sprintf("must be positive, got %d", p.StartTime)}
	}
	if p.SplitTime < 0 || p.SplitTime >= p.StartTime {
		return &ParamError{Field: "split_time",
			Message: fmt.Sprintf("must satisfy 0 <= split_time < start_time, got %d", p.SplitTime)}
	}
	return ValidateIntervals(p.KeepIntervals)
}

// Simulate runs the forward-in-time simulation and returns the full
// and truncated ancestry records as read-only tree sequences.
//
// Both records are built in lock-step from one entropy stream: every
// population, individual and node insertion is mirrored, so until the
// final simplification the two records agree on every shared id. Edges
// differ only in that the truncated record stores each full-record
// edge clipped against KeepIntervals, and mutations only in that a
// truncated mutation is recorded just when its position survives the
// clipping. Simplification runs once, after the last generation, with
// the identical sample list on both records.
//
// Identical Params (including Seed) produce byte-identical records;
// compare TreeSequence.Digest.
func Simulate(p Params) (*tables.TreeSequence, *tables.TreeSequence, error) {
	if err := p.Validate(); err != nil {
		return nil, nil, err
	}

	d, err := newDriver(p)
	if err != nil {
		return nil, nil, err
	}
	if err := d.setup(); err != nil {
		return nil, nil, err
	}
	for t := p.StartTime - 1; t >= 0; t-- {
		if err := d.stepGeneration(t); err != nil {
			return nil, nil, fmt.Errorf("generation %d: %w", t, err)
		}
	}
	return d.finish()
}

// driver owns the generator and both mutable records for the duration
// of a run. Single-threaded by construction: every sampling call takes
// the driver's rng explicitly and nothing here is shared.
type driver struct {
	params Params
	rng    *rand.Rand

	full  *tables.Collection
	trunc *tables.Collection

	// Per-tick mutation bookkeeping, arena-indexed by position. The
	// recurrence counter is shared between the records; the id maps
	// are per record since sites are created lazily in each.
	siteLastMutationOrder []int
	lastMutationFull      []tables.MutationID
	lastMutationTrunc     []tables.MutationID
	siteIDFull            []tables.SiteID
	siteIDTrunc           []tables.SiteID

	parents  []nodePair
	children []nodePair
	clipBuf  []Interval
}

func newDriver(p Params) (*driver, error) {
	full, err := tables.New(p.SequenceLength)
	if err != nil {
		return nil, fmt.Errorf("full record: %w", err)
	}
	trunc, err := tables.New(p.SequenceLength)
	if err != nil {
		return nil, fmt.Errorf("truncated record: %w", err)
	}

	ticks := int(p.SequenceLength)
	d := &driver{
		params:                p,
		rng:                   rand.New(rand.NewSource(p.Seed)),
		full:                  full,
		trunc:                 trunc,
		siteLastMutationOrder: make([]int, ticks),
		lastMutationFull:      make([]tables.MutationID, ticks),
		lastMutationTrunc:     make([]tables.MutationID, ticks),
		siteIDFull:            make([]tables.SiteID, ticks),
		siteIDTrunc:           make([]tables.SiteID, ticks),
		parents:               make([]nodePair, 0, p.PopSize),
		children:              make([]nodePair, 0, p.PopSize),
	}
	for i := 0; i < ticks; i++ {
		d.lastMutationFull[i] = tables.NullMutation
		d.lastMutationTrunc[i] = tables.NullMutation
		d.siteIDFull[i] = tables.NullSite
		d.siteIDTrunc[i] = tables.NullSite
	}
	return d, nil
}

// setup creates the three populations and the founder generation,
// mirrored identically into both records.
func (d *driver) setup() error {
	for _, name := range populationNames {
		if _, err := d.full.AddPopulation(name); err != nil {
			return fmt.Errorf("add population: %w", err)
		}
		if _, err := d.trunc.AddPopulation(name); err != nil {
			return fmt.Errorf("add population: %w", err)
		}
	}

	startTime := float64(d.params.StartTime)
	for i := 0; i < d.params.PopSize; i++ {
		ind, err := d.full.AddIndividual(0, nil, nil)
		if err != nil {
			return fmt.Errorf("add founder individual: %w", err)
		}
		if _, err := d.trunc.AddIndividual(0, nil, nil); err != nil {
			return fmt.Errorf("add founder individual: %w", err)
		}

		var pair nodePair
		pair.first, err = d.full.AddNode(0, startTime, popAncestral, ind)
		if err != nil {
			return fmt.Errorf("add founder node: %w", err)
		}
		pair.second, err = d.full.AddNode(0, startTime, popAncestral, ind)
		if err != nil {
			return fmt.Errorf("add founder node: %w", err)
		}
		d.parents = append(d.parents, pair)

		if _, err := d.trunc.AddNode(0, startTime, popAncestral, ind); err != nil {
			return fmt.Errorf("add founder node: %w", err)
		}
		if _, err := d.trunc.AddNode(0, startTime, popAncestral, ind); err != nil {
			return fmt.Errorf("add founder node: %w", err)
		}
	}

	slog.Debug("simulation set up",
		"pop_size", d.params.PopSize,
		"start_time", d.params.StartTime,
		"split_time", d.params.SplitTime,
		"keep_intervals", len(d.params.KeepIntervals),
	)
	return nil
}

// stepGeneration produces the pop_size offspring of generation t and
// swaps them in as the next parental pool.
func (d *driver) stepGeneration(t int) error {
	for i := 0; i < d.params.PopSize; i++ {
		if err := d.addOffspring(t, i); err != nil {
			return fmt.Errorf("offspring %d: %w", i, err)
		}
	}
	d.parents, d.children = d.children, d.parents[:0]
	return nil
}

// addOffspring runs one full offspring cycle: breakpoints, population
// assignment, parent draws, individual and node insertion, and the
// four transmitted sub-spans.
func (d *driver) addOffspring(t, i int) error {
	seqlen := d.params.SequenceLength

	breakpoint1 := findBreakpoint(d.rng, seqlen)
	breakpoint2 := findBreakpoint(d.rng, seqlen)

	// Population structure exists only while t > split_time (further
	// in the past than the split, looking backward); at and below the
	// split the generation is undivided.
	childPop := popAncestral
	if t > d.params.SplitTime {
		if i < d.params.PopSize/2 {
			childPop = popSplit1
		} else {
			childPop = popSplit2
		}
	}

	parent1, _ := findParent(d.rng, d.parents, childPop)
	parent2, _ := findParent(d.rng, d.parents, childPop)

	childInd, err := d.addIndividual(parent1, parent2)
	if err != nil {
		return err
	}

	isSample := t == 0
	child, err := d.addNodes(isSample, float64(t), childPop, childInd)
	if err != nil {
		return err
	}

	for _, tr := range [4]transmission{
		{0, breakpoint1, parent1.first, child.first},
		{breakpoint1, seqlen, parent1.second, child.first},
		{0, breakpoint2, parent2.first, child.second},
		{breakpoint2, seqlen, parent2.second, child.second},
	} {
		if err := d.transmit(float64(t), tr); err != nil {
			return err
		}
	}

	d.children = append(d.children, child)
	return nil
}

// transmission is one inherited sub-span: child received [left, right)
// from parent.
type transmission struct {
	left, right   float64
	parent, child tables.NodeID
}

// addIndividual inserts the offspring individual into both records
// with identical parent linkage. Parent individuals are resolved
// through the full record's node table; the truncated record holds the
// same ids because every individual and node insertion is mirrored.
func (d *driver) addIndividual(parent1, parent2 nodePair) (tables.IndividualID, error) {
	ind1, err := d.full.NodeIndividual(parent1.first)
	if err != nil {
		return tables.NullIndividual, fmt.Errorf("resolve parent individual: %w", err)
	}
	ind2, err := d.full.NodeIndividual(parent2.first)
	if err != nil {
		return tables.NullIndividual, fmt.Errorf("resolve parent individual: %w", err)
	}
	parents := []tables.IndividualID{ind1, ind2}

	child, err := d.full.AddIndividual(0, nil, parents)
	if err != nil {
		return tables.NullIndividual, fmt.Errorf("add individual: %w", err)
	}
	if _, err := d.trunc.AddIndividual(0, nil, parents); err != nil {
		return tables.NullIndividual, fmt.Errorf("add individual: %w", err)
	}
	return child, nil
}

// addNodes inserts the offspring's two nodes into both records with
// identical tags.
func (d *driver) addNodes(isSample bool, time float64, pop tables.PopulationID, ind tables.IndividualID) (nodePair, error) {
	var flags tables.NodeFlags
	if isSample {
		flags = tables.NodeIsSample
	}

	var pair nodePair
	var err error
	pair.first, err = d.full.AddNode(flags, time, pop, ind)
	if err != nil {
		return pair, fmt.Errorf("add node: %w", err)
	}
	pair.second, err = d.full.AddNode(flags, time, pop, ind)
	if err != nil {
		return pair, fmt.Errorf("add node: %w", err)
	}
	if _, err := d.trunc.AddNode(flags, time, pop, ind); err != nil {
		return pair, fmt.Errorf("add node: %w", err)
	}
	if _, err := d.trunc.AddNode(flags, time, pop, ind); err != nil {
		return pair, fmt.Errorf("add node: %w", err)
	}
	return pair, nil
}

// transmit records one sub-span in the full record, probabilistically
// places a mutation on it, then mirrors the clipped pieces (and the
// mutation, when it falls inside one) into the truncated record.
func (d *driver) transmit(time float64, tr transmission) error {
	if _, err := d.full.AddEdge(tr.left, tr.right, tr.parent, tr.child); err != nil {
		return fmt.Errorf("add edge: %w", err)
	}

	// The position draw always happens, so the entropy stream does not
	// depend on placement outcomes.
	mutPos := findMutationPos(d.rng, tr.left, tr.right)
	placeMutation := d.rng.Float64() < mutationProb(tr.right-tr.left)
	derived := derivedState(d.siteLastMutationOrder, mutPos)

	if placeMutation {
		if err := d.placeFullMutation(mutPos, tr.child, time, derived); err != nil {
			return err
		}
	}

	d.clipBuf = clipSegment(tr.left, tr.right, d.params.KeepIntervals, d.clipBuf)
	for _, piece := range d.clipBuf {
		if _, err := d.trunc.AddEdge(piece.Left, piece.Right, tr.parent, tr.child); err != nil {
			return fmt.Errorf("add truncated edge: %w", err)
		}
		pos := float64(mutPos)
		if placeMutation && piece.Left <= pos && pos < piece.Right {
			if err := d.placeTruncMutation(mutPos, tr.child, time, derived); err != nil {
				return err
			}
		}
	}
	return nil
}

// placeFullMutation lazily creates the full-record site at mutPos,
// chains a mutation onto it and advances the shared recurrence
// counter.
func (d *driver) placeFullMutation(mutPos int, node tables.NodeID, time float64, derived string) error {
	if d.siteIDFull[mutPos].IsNull() {
		site, err := d.full.AddSite(float64(mutPos), "a")
		if err != nil {
			return fmt.Errorf("add site: %w", err)
		}
		d.siteIDFull[mutPos] = site
	}
	mut, err := d.full.AddMutation(d.siteIDFull[mutPos], node, d.lastMutationFull[mutPos], time, derived)
	if err != nil {
		return fmt.Errorf("add mutation: %w", err)
	}
	d.lastMutationFull[mutPos] = mut
	d.siteLastMutationOrder[mutPos]++
	return nil
}

// placeTruncMutation mirrors a placed mutation into the truncated
// record's own site and recurrence chain.
func (d *driver) placeTruncMutation(mutPos int, node tables.NodeID, time float64, derived string) error {
	if d.siteIDTrunc[mutPos].IsNull() {
		site, err := d.trunc.AddSite(float64(mutPos), "a")
		if err != nil {
			return fmt.Errorf("add truncated site: %w", err)
		}
		d.siteIDTrunc[mutPos] = site
	}
	mut, err := d.trunc.AddMutation(d.siteIDTrunc[mutPos], node, d.lastMutationTrunc[mutPos], time, derived)
	if err != nil {
		return fmt.Errorf("add truncated mutation: %w", err)
	}
	d.lastMutationTrunc[mutPos] = mut
	return nil
}

// finish sorts, simplifies and indexes both records with the identical
// sample list, then wraps them read-only. This is the only point where
// ids may be renumbered; deferring it to the very end is what keeps
// the two records' ids aligned during generation stepping.
func (d *driver) finish() (*tables.TreeSequence, *tables.TreeSequence, error) {
	samples := make([]tables.NodeID, 0, 2*len(d.parents))
	for _, pair := range d.parents {
		samples = append(samples, pair.first, pair.second)
	}

	for _, rec := range []struct {
		name string
		c    *tables.Collection
	}{
		{"full", d.full},
		{"truncated", d.trunc},
	} {
		if err := rec.c.Sort(); err != nil {
			return nil, nil, fmt.Errorf("sort %s record: %w", rec.name, err)
		}
		if err := rec.c.Simplify(samples); err != nil {
			return nil, nil, fmt.Errorf("simplify %s record: %w", rec.name, err)
		}
		if err := rec.c.BuildIndex(); err != nil {
			return nil, nil, fmt.Errorf("index %s record: %w", rec.name, err)
		}
	}

	fullTS, err := tables.NewTreeSequence(d.full)
	if err != nil {
		return nil, nil, fmt.Errorf("wrap full record: %w", err)
	}
	truncTS, err := tables.NewTreeSequence(d.trunc)
	if err != nil {
		return nil, nil, fmt.Errorf("wrap truncated record: %w", err)
	}

	slog.Debug("simulation finished",
		"full_edges", fullTS.NumEdges(),
		"truncated_edges", truncTS.NumEdges(),
		"full_mutations", fullTS.NumMutations(),
		"truncated_mutations", truncTS.NumMutations(),
	)
	return fullTS, truncTS, nil
}
