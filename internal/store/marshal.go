package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/roach88/sparsesim/internal/ir"
)

// Run is one finished simulation run as recorded in the runs table.
type Run struct {
	ID            string        `json:"id"`
	CircuitName   string        `json:"circuit_name"`
	CircuitHash   string        `json:"circuit_hash"`
	Qubits        int           `json:"qubits"`
	Gates         int           `json:"gates"`
	Capacity      int           `json:"capacity"`
	Seed          uint64        `json:"seed"`
	Entries       int           `json:"entries"`
	PeakEntries   int           `json:"peak_entries"`
	Evicted       int           `json:"evicted"`
	Norm          float64       `json:"norm"`
	Duration      time.Duration `json:"duration_ns"`
	EngineVersion string        `json:"engine_version"`

	// Reference marks an unbounded reference run. Reference runs keep
	// entries whose amplitudes cancel, so replaying one must too.
	Reference bool `json:"reference,omitempty"`

	// ReferenceID and FidelityError are set once the run has been compared
	// against an unbounded reference run.
	ReferenceID   string   `json:"reference_id,omitempty"`
	FidelityError *float64 `json:"fidelity_error,omitempty"`
}

// SQLite integers are signed; seeds round-trip through their two's
// complement bit pattern.
func encodeSeed(seed uint64) int64 {
	return int64(seed)
}

func decodeSeed(v int64) uint64 {
	return uint64(v)
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

const runColumns = `id, circuit_name, circuit_hash, qubits, gates, capacity, seed,
		entries, peak_entries, evicted, norm, duration_ns, engine_version,
		is_reference, reference_id, fidelity_error`

// scanRun scans a runs row selected with runColumns.
func scanRun(row rowScanner) (Run, error) {
	var r Run
	var seed, durationNS int64
	var refID sql.NullString
	var fidelity sql.NullFloat64

	if err := row.Scan(
		&r.ID, &r.CircuitName, &r.CircuitHash, &r.Qubits, &r.Gates, &r.Capacity, &seed,
		&r.Entries, &r.PeakEntries, &r.Evicted, &r.Norm, &durationNS, &r.EngineVersion,
		&r.Reference, &refID, &fidelity,
	); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}

	r.Seed = decodeSeed(seed)
	r.Duration = time.Duration(durationNS)
	if refID.Valid {
		r.ReferenceID = refID.String
	}
	if fidelity.Valid {
		f := fidelity.Float64
		r.FidelityError = &f
	}
	return r, nil
}

// scanEntry scans an amplitudes row (basis, re, im).
func scanEntry(row rowScanner) (ir.Entry, error) {
	var bits string
	var e ir.Entry
	if err := row.Scan(&bits, &e.Amplitude.Re, &e.Amplitude.Im); err != nil {
		return ir.Entry{}, fmt.Errorf("scan amplitude: %w", err)
	}
	b, err := ir.ParseBasis(bits)
	if err != nil {
		return ir.Entry{}, fmt.Errorf("scan amplitude: %w", err)
	}
	e.Basis = b
	return e, nil
}
