package store

import (
	"context"
	"fmt"

	"github.com/roach88/sparsesim/internal/ir"
)

// ReadRun retrieves a single run by ID.
// Returns sql.ErrNoRows (wrapped) if not found.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		WHERE id = ?
	`, id)

	return scanRun(row)
}

// ReadSnapshot returns the final-state entries of a run ordered by basis.
//
// Returns an empty slice (not nil) if the run has no entries or is unknown.
func (s *Store) ReadSnapshot(ctx context.Context, runID string) ([]ir.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT basis, re, im
		FROM amplitudes
		WHERE run_id = ?
		ORDER BY basis COLLATE BINARY ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query amplitudes: %w", err)
	}
	defer rows.Close()

	entries := []ir.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate amplitudes: %w", err)
	}
	return entries, nil
}

// ListRuns returns every recorded run, oldest first.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	return s.queryRuns(ctx, `
		SELECT `+runColumns+`
		FROM runs
		ORDER BY id COLLATE BINARY ASC
	`)
}

// ListRunsForCircuit returns the runs of one circuit hash, oldest first.
func (s *Store) ListRunsForCircuit(ctx context.Context, circuitHash string) ([]Run, error) {
	return s.queryRuns(ctx, `
		SELECT `+runColumns+`
		FROM runs
		WHERE circuit_hash = ?
		ORDER BY id COLLATE BINARY ASC
	`, circuitHash)
}

func (s *Store) queryRuns(ctx context.Context, query string, args ...any) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}
