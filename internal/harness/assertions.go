package harness

import (
	"fmt"
	"strings"

	"github.com/treeseq/forwardsim/internal/sim"
	"github.com/treeseq/forwardsim/internal/tables"
)

// AssertionError is returned when a cross-record check fails. It names
// the check and states the expected and observed outcomes.
type AssertionError struct {
	Check    string
	Expected string
	Actual   string
}

func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "assertion failed: %s\n", e.Check)
	fmt.Fprintf(&buf, "  expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  actual: %s", e.Actual)
	return buf.String()
}

// Verify runs every cross-record check against a finished run and
// returns all failures. An empty slice means the run is consistent.
func Verify(res *Result) []error {
	var errs []error
	if err := assertEdgesWithinKeep(res.Truncated, res.Snapshot.KeepIntervals); err != nil {
		errs = append(errs, err)
	}
	if err := assertSitesSubset(res.Full, res.Truncated); err != nil {
		errs = append(errs, err)
	}
	if err := assertSamplesAligned(res.Full, res.Truncated); err != nil {
		errs = append(errs, err)
	}
	return errs
}

// assertEdgesWithinKeep checks that every truncated edge lies inside
// one of the retained windows. With no windows the truncated record
// must carry no edges at all.
func assertEdgesWithinKeep(trunc *tables.TreeSequence, keep []sim.Interval) error {
	edges := trunc.Edges()
	if len(keep) == 0 {
		if len(edges) != 0 {
			return &AssertionError{
				Check:    "edges_within_keep",
				Expected: "no edges when no intervals are retained",
				Actual:   fmt.Sprintf("%d edges", len(edges)),
			}
		}
		return nil
	}
	for i, e := range edges {
		if !insideAny(e.Left, e.Right, keep) {
			return &AssertionError{
				Check:    "edges_within_keep",
				Expected: fmt.Sprintf("edge inside one of %v", keep),
				Actual:   fmt.Sprintf("edge %d spans [%g, %g)", i, e.Left, e.Right),
			}
		}
	}
	return nil
}

func insideAny(left, right float64, keep []sim.Interval) bool {
	for _, iv := range keep {
		if left >= iv.Left && right <= iv.Right {
			return true
		}
	}
	return false
}

// assertSitesSubset checks that every truncated site also exists in
// the full record at the same position and that the truncated site
// carries no more mutations than its full counterpart.
func assertSitesSubset(full, trunc *tables.TreeSequence) error {
	fullSites, truncSites := full.Sites(), trunc.Sites()

	fullCounts := make(map[float64]int)
	for _, m := range full.Mutations() {
		fullCounts[fullSites[m.Site].Position]++
	}
	fullPos := make(map[float64]bool, len(fullSites))
	for _, s := range fullSites {
		fullPos[s.Position] = true
	}
	truncCounts := make(map[float64]int)
	for _, m := range trunc.Mutations() {
		truncCounts[truncSites[m.Site].Position]++
	}
	for _, s := range truncSites {
		if !fullPos[s.Position] {
			return &AssertionError{
				Check:    "sites_subset",
				Expected: fmt.Sprintf("truncated site at %g present in full record", s.Position),
				Actual:   "position absent from full record",
			}
		}
		if truncCounts[s.Position] > fullCounts[s.Position] {
			return &AssertionError{
				Check:    "sites_subset",
				Expected: fmt.Sprintf("at most %d mutations at position %g", fullCounts[s.Position], s.Position),
				Actual:   fmt.Sprintf("%d mutations", truncCounts[s.Position]),
			}
		}
	}
	return nil
}

// assertSamplesAligned checks that both records expose the same sample
// ids, at time zero, paired to the same individuals.
func assertSamplesAligned(full, trunc *tables.TreeSequence) error {
	fs, ts := full.Samples(), trunc.Samples()
	if len(fs) != len(ts) {
		return &AssertionError{
			Check:    "samples_aligned",
			Expected: fmt.Sprintf("%d samples in truncated record", len(fs)),
			Actual:   fmt.Sprintf("%d samples", len(ts)),
		}
	}
	fullNodes, truncNodes := full.Nodes(), trunc.Nodes()
	for i := range fs {
		if fs[i] != ts[i] {
			return &AssertionError{
				Check:    "samples_aligned",
				Expected: fmt.Sprintf("sample %d has id %d in both records", i, fs[i]),
				Actual:   fmt.Sprintf("id %d in truncated record", ts[i]),
			}
		}
		fn, tn := fullNodes[fs[i]], truncNodes[ts[i]]
		if fn.Time != 0 || tn.Time != 0 {
			return &AssertionError{
				Check:    "samples_aligned",
				Expected: fmt.Sprintf("sample node %d at time 0", fs[i]),
				Actual:   fmt.Sprintf("times %g (full) and %g (truncated)", fn.Time, tn.Time),
			}
		}
		if fn.Individual != tn.Individual {
			return &AssertionError{
				Check:    "samples_aligned",
				Expected: fmt.Sprintf("sample node %d paired to individual %d in both records", fs[i], fn.Individual),
				Actual:   fmt.Sprintf("individual %d in truncated record", tn.Individual),
			}
		}
	}
	return nil
}
