// Package harness runs named simulation scenarios and verifies their
// output: deterministic run snapshots for golden-file comparison and
// reusable cross-record consistency checks.
package harness

import (
	"encoding/json"
	"fmt"

	"github.com/treeseq/forwardsim/internal/scenario"
	"github.com/treeseq/forwardsim/internal/sim"
	"github.com/treeseq/forwardsim/internal/tables"
)

// RecordSnapshot summarizes one finished ancestry record.
type RecordSnapshot struct {
	Digest      string    `json:"digest"`
	Nodes       int       `json:"nodes"`
	Edges       int       `json:"edges"`
	Individuals int       `json:"individuals"`
	Populations int       `json:"populations"`
	Sites       int       `json:"sites"`
	Mutations   int       `json:"mutations"`
	Trees       int       `json:"trees"`
	Samples     int       `json:"samples"`
	Breakpoints []float64 `json:"breakpoints"`
}

// RunSnapshot captures everything a scenario run produced, in a form
// stable enough to compare byte for byte across runs and machines.
type RunSnapshot struct {
	ScenarioName  string         `json:"scenario_name"`
	Seed          int64          `json:"seed"`
	KeepIntervals []sim.Interval `json:"keep_intervals"`
	Full          RecordSnapshot `json:"full"`
	Truncated     RecordSnapshot `json:"truncated"`
}

// Result bundles the records of one scenario run with their snapshot.
type Result struct {
	Full      *tables.TreeSequence
	Truncated *tables.TreeSequence
	Snapshot  RunSnapshot
}

// Run executes a scenario and snapshots both records.
func Run(sc *scenario.Scenario) (*Result, error) {
	full, trunc, err := sim.Simulate(sc.Params())
	if err != nil {
		return nil, fmt.Errorf("run scenario %s: %w", sc.Name, err)
	}
	keep := sc.KeepIntervals
	if keep == nil {
		keep = []sim.Interval{}
	}
	return &Result{
		Full:      full,
		Truncated: trunc,
		Snapshot: RunSnapshot{
			ScenarioName:  sc.Name,
			Seed:          sc.Seed,
			KeepIntervals: keep,
			Full:          snapshotRecord(full),
			Truncated:     snapshotRecord(trunc),
		},
	}, nil
}

func snapshotRecord(ts *tables.TreeSequence) RecordSnapshot {
	return RecordSnapshot{
		Digest:      ts.Digest(),
		Nodes:       ts.NumNodes(),
		Edges:       ts.NumEdges(),
		Individuals: ts.NumIndividuals(),
		Populations: ts.NumPopulations(),
		Sites:       ts.NumSites(),
		Mutations:   ts.NumMutations(),
		Trees:       ts.NumTrees(),
		Samples:     len(ts.Samples()),
		Breakpoints: ts.Breakpoints(),
	}
}

// MarshalSnapshot renders a snapshot as indented JSON with a trailing
// newline; these are the exact bytes stored in golden files.
func MarshalSnapshot(snap RunSnapshot) ([]byte, error) {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return append(data, '\n'), nil
}
