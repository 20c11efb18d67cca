package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/sparsesim/internal/ir"
)

// ErrRunExists is returned when a run id is written twice.
var ErrRunExists = errors.New("run already recorded")

// WriteRun records a finished run and its final-state snapshot atomically.
//
// Run ids are unique: writing an id that is already present returns
// ErrRunExists and leaves the stored run untouched. A non-empty ReferenceID
// must name a run that is already recorded (foreign key constraint).
func (s *Store) WriteRun(ctx context.Context, run Run, snapshot []ir.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var refID sql.NullString
	if run.ReferenceID != "" {
		refID = sql.NullString{String: run.ReferenceID, Valid: true}
	}
	var fidelity sql.NullFloat64
	if run.FidelityError != nil {
		fidelity = sql.NullFloat64{Float64: *run.FidelityError, Valid: true}
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.CircuitName,
		run.CircuitHash,
		run.Qubits,
		run.Gates,
		run.Capacity,
		encodeSeed(run.Seed),
		run.Entries,
		run.PeakEntries,
		run.Evicted,
		run.Norm,
		run.Duration.Nanoseconds(),
		run.EngineVersion,
		run.Reference,
		refID,
		fidelity,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("write run: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("write run %s: %w", run.ID, ErrRunExists)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO amplitudes (run_id, basis, re, im)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("write run: prepare amplitudes: %w", err)
	}
	defer stmt.Close()

	for _, e := range snapshot {
		if _, err := stmt.ExecContext(ctx, run.ID, e.Basis.String(), e.Amplitude.Re, e.Amplitude.Im); err != nil {
			return fmt.Errorf("write run: amplitude %s: %w", e.Basis, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run: commit: %w", err)
	}
	return nil
}

// SetFidelity records the fidelity error of runID against referenceID.
// Returns sql.ErrNoRows if runID is not recorded.
func (s *Store) SetFidelity(ctx context.Context, runID, referenceID string, fidelityErr float64) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE runs
		SET reference_id = ?, fidelity_error = ?
		WHERE id = ?
	`, referenceID, fidelityErr, runID)
	if err != nil {
		return fmt.Errorf("set fidelity: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set fidelity: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("set fidelity for %s: %w", runID, sql.ErrNoRows)
	}
	return nil
}
