package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/sparsesim/internal/ir"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates a run with minimal required fields.
func createTestRun(id, circuitHash string, capacity int) Run {
	return Run{
		ID:            id,
		CircuitName:   "superposition",
		CircuitHash:   circuitHash,
		Qubits:        2,
		Gates:         2,
		Capacity:      capacity,
		Seed:          7,
		Entries:       2,
		PeakEntries:   4,
		Evicted:       2,
		Norm:          0.5,
		Duration:      1500 * time.Microsecond,
		EngineVersion: ir.EngineVersion,
	}
}

// createTestSnapshot returns entries in reverse basis order.
func createTestSnapshot() []ir.Entry {
	return []ir.Entry{
		{Basis: ir.MustParseBasis("11"), Amplitude: ir.Amplitude{Re: 0.5}},
		{Basis: ir.MustParseBasis("01"), Amplitude: ir.Amplitude{Re: -0.5, Im: 0.25}},
	}
}
