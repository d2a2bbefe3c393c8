package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/treeseq/forwardsim/internal/sim"
	"github.com/treeseq/forwardsim/internal/tables"
)

// Record roles under which a run's two ancestry records are archived.
const (
	RecordFull      = "full"
	RecordTruncated = "truncated"
)

// SaveRun archives a finished run and returns its generated id.
// The run row and every table row of both records are written in one
// transaction, so a failed save leaves nothing behind.
func (s *Store) SaveRun(ctx context.Context, scenarioName string, params sim.Params, full, trunc *tables.TreeSequence) (string, error) {
	keepJSON, err := marshalIntervals(params.KeepIntervals)
	if err != nil {
		return "", fmt.Errorf("save run: %w", err)
	}

	runID := uuid.NewString()
	createdAt := time.Now().UTC().Format(time.RFC3339Nano)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("save run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, scenario_name, seed, sequence_length, pop_size, start_time, split_time,
		 keep_intervals, full_digest, trunc_digest, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		runID,
		scenarioName,
		params.Seed,
		params.SequenceLength,
		params.PopSize,
		params.StartTime,
		params.SplitTime,
		keepJSON,
		full.Digest(),
		trunc.Digest(),
		createdAt,
	)
	if err != nil {
		return "", fmt.Errorf("save run: insert run: %w", err)
	}

	if err := writeRecord(ctx, tx, runID, RecordFull, full); err != nil {
		return "", fmt.Errorf("save run: %w", err)
	}
	if err := writeRecord(ctx, tx, runID, RecordTruncated, trunc); err != nil {
		return "", fmt.Errorf("save run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("save run: commit: %w", err)
	}
	return runID, nil
}

// writeRecord inserts every table row of one ancestry record.
// Row ids repeat the in-memory indices so cross-table references
// (edge parent/child, mutation site) remain valid after reload.
func writeRecord(ctx context.Context, tx *sql.Tx, runID, record string, ts *tables.TreeSequence) error {
	for i, n := range ts.Nodes() {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO nodes (run_id, record, row_id, flags, time, population, individual)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, runID, record, i, uint32(n.Flags), n.Time, n.Population, n.Individual)
		if err != nil {
			return fmt.Errorf("%s node %d: %w", record, i, err)
		}
	}

	for i, e := range ts.Edges() {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO edges (run_id, record, row_id, left, right, parent, child)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, runID, record, i, e.Left, e.Right, e.Parent, e.Child)
		if err != nil {
			return fmt.Errorf("%s edge %d: %w", record, i, err)
		}
	}

	for i, ind := range ts.Individuals() {
		parentsJSON, err := marshalParents(ind.Parents)
		if err != nil {
			return fmt.Errorf("%s individual %d: %w", record, i, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO individuals (run_id, record, row_id, flags, parents)
			VALUES (?, ?, ?, ?, ?)
		`, runID, record, i, ind.Flags, parentsJSON)
		if err != nil {
			return fmt.Errorf("%s individual %d: %w", record, i, err)
		}
	}

	for i, name := range ts.Populations() {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO populations (run_id, record, row_id, name)
			VALUES (?, ?, ?, ?)
		`, runID, record, i, name)
		if err != nil {
			return fmt.Errorf("%s population %d: %w", record, i, err)
		}
	}

	for i, site := range ts.Sites() {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO sites (run_id, record, row_id, position, ancestral_state)
			VALUES (?, ?, ?, ?, ?)
		`, runID, record, i, site.Position, site.AncestralState)
		if err != nil {
			return fmt.Errorf("%s site %d: %w", record, i, err)
		}
	}

	for i, m := range ts.Mutations() {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO mutations (run_id, record, row_id, site, node, parent, time, derived_state)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, runID, record, i, m.Site, m.Node, m.Parent, m.Time, m.DerivedState)
		if err != nil {
			return fmt.Errorf("%s mutation %d: %w", record, i, err)
		}
	}

	return nil
}
