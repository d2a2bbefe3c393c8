package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/treeseq/forwardsim/internal/sim"
	"github.com/treeseq/forwardsim/internal/tables"
)

// ErrRunNotFound is returned when a run id does not exist.
var ErrRunNotFound = errors.New("run not found")

// RecordCounts holds per-table row counts for one archived record.
type RecordCounts struct {
	Nodes       int
	Edges       int
	Individuals int
	Populations int
	Sites       int
	Mutations   int
}

// RunSummary describes one archived run: its parameters, digests and
// the row counts of both records.
type RunSummary struct {
	ID              string
	ScenarioName    string
	Seed            int64
	SequenceLength  float64
	PopSize         int
	StartTime       int
	SplitTime       int
	KeepIntervals   []sim.Interval
	FullDigest      string
	TruncatedDigest string
	CreatedAt       time.Time
	Full            RecordCounts
	Truncated       RecordCounts
}

// ReadRun returns the summary of one archived run.
// Returns ErrRunNotFound if the id is unknown.
func (s *Store) ReadRun(ctx context.Context, runID string) (*RunSummary, error) {
	var (
		sum       RunSummary
		keepJSON  string
		createdAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, scenario_name, seed, sequence_length, pop_size, start_time, split_time,
		       keep_intervals, full_digest, trunc_digest, created_at
		FROM runs
		WHERE id = ?
	`, runID).Scan(
		&sum.ID, &sum.ScenarioName, &sum.Seed, &sum.SequenceLength,
		&sum.PopSize, &sum.StartTime, &sum.SplitTime,
		&keepJSON, &sum.FullDigest, &sum.TruncatedDigest, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("read run %s: %w", runID, ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read run %s: %w", runID, err)
	}

	sum.KeepIntervals, err = unmarshalIntervals(keepJSON)
	if err != nil {
		return nil, fmt.Errorf("read run %s: %w", runID, err)
	}
	sum.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("read run %s: parse created_at: %w", runID, err)
	}

	sum.Full, err = s.readCounts(ctx, runID, RecordFull)
	if err != nil {
		return nil, fmt.Errorf("read run %s: %w", runID, err)
	}
	sum.Truncated, err = s.readCounts(ctx, runID, RecordTruncated)
	if err != nil {
		return nil, fmt.Errorf("read run %s: %w", runID, err)
	}

	return &sum, nil
}

// ListRuns returns summaries of every archived run, oldest first with
// the run id as tiebreaker so the order is deterministic.
func (s *Store) ListRuns(ctx context.Context) ([]*RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM runs
		ORDER BY created_at ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}

	summaries := make([]*RunSummary, 0, len(ids))
	for _, id := range ids {
		sum, err := s.ReadRun(ctx, id)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, sum)
	}
	return summaries, nil
}

// ReadEdges returns one record's archived edges in row order.
func (s *Store) ReadEdges(ctx context.Context, runID, record string) ([]tables.Edge, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT left, right, parent, child
		FROM edges
		WHERE run_id = ? AND record = ?
		ORDER BY row_id ASC
	`, runID, record)
	if err != nil {
		return nil, fmt.Errorf("read edges: %w", err)
	}
	defer rows.Close()

	edges := []tables.Edge{}
	for rows.Next() {
		var e tables.Edge
		if err := rows.Scan(&e.Left, &e.Right, &e.Parent, &e.Child); err != nil {
			return nil, fmt.Errorf("read edges: %w", err)
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read edges: %w", err)
	}
	return edges, nil
}

func (s *Store) readCounts(ctx context.Context, runID, record string) (RecordCounts, error) {
	var counts RecordCounts
	for _, q := range []struct {
		table string
		dst   *int
	}{
		{"nodes", &counts.Nodes},
		{"edges", &counts.Edges},
		{"individuals", &counts.Individuals},
		{"populations", &counts.Populations},
		{"sites", &counts.Sites},
		{"mutations", &counts.Mutations},
	} {
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE run_id = ? AND record = ?", q.table)
		if err := s.db.QueryRowContext(ctx, query, runID, record).Scan(q.dst); err != nil {
			return RecordCounts{}, fmt.Errorf("count %s: %w", q.table, err)
		}
	}
	return counts, nil
}
