package state

import (
	"fmt"
	"math"
	"sort"

	"github.com/roach88/sparsesim/internal/ir"
)

// Store is the sparse state of one simulation run: the non-zero-amplitude
// basis assignments of a fixed-width register.
//
// INVARIANTS:
//   - every entry's basis has exactly Qubits() bits
//   - no two entries share a basis assignment
//
// A Store is exclusively owned by one run and is not safe for concurrent
// use. The engine may parallelize work inside a single Update call, but
// Update itself must not be called concurrently.
type Store struct {
	qubits  int
	entries []ir.Entry

	// index maps basis → position in entries. Built lazily by Lookup and
	// discarded whenever entries change.
	index map[ir.Basis]int
}

// New creates a store holding the all-zero assignment with amplitude (1, 0).
func New(qubits int) (*Store, error) {
	if qubits <= 0 {
		return nil, ir.NewPreconditionError(ir.ErrCodeInvalidQubitCount,
			"register width must be positive, got %d", qubits)
	}
	return &Store{
		qubits:  qubits,
		entries: []ir.Entry{{Basis: ir.NewBasis(qubits), Amplitude: ir.One}},
	}, nil
}

// NewFromEntries seeds a store from an explicit entry list.
//
// Every basis must have the register width and appear once, and Σ|a|² must
// be within ir.NormTolerance of 1. The entries are copied.
func NewFromEntries(qubits int, entries []ir.Entry) (*Store, error) {
	if qubits <= 0 {
		return nil, ir.NewPreconditionError(ir.ErrCodeInvalidQubitCount,
			"register width must be positive, got %d", qubits)
	}

	seen := make(map[ir.Basis]bool, len(entries))
	for i, e := range entries {
		if e.Basis.Len() != qubits {
			return nil, ir.NewPreconditionError(ir.ErrCodeBasisLengthMismatch,
				"entry %d: basis %s has %d qubits, register has %d", i, e.Basis, e.Basis.Len(), qubits)
		}
		if seen[e.Basis] {
			return nil, ir.NewPreconditionError(ir.ErrCodeDuplicateBasis,
				"entry %d: basis %s listed more than once", i, e.Basis)
		}
		seen[e.Basis] = true
	}

	if norm := ir.TotalNorm2(entries); math.Abs(norm-1) > ir.NormTolerance {
		return nil, &ir.PreconditionError{
			Code:    ir.ErrCodeUnnormalizedState,
			Message: fmt.Sprintf("squared magnitudes sum to %g, want 1", norm),
			Gate:    -1,
			Details: map[string]string{"norm": fmt.Sprintf("%g", norm)},
		}
	}

	cp := make([]ir.Entry, len(entries))
	copy(cp, entries)
	return &Store{qubits: qubits, entries: cp}, nil
}

// Qubits returns the register width.
func (s *Store) Qubits() int {
	return s.qubits
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	return len(s.entries)
}

// Norm returns Σ|a|² over all stored entries.
func (s *Store) Norm() float64 {
	return ir.TotalNorm2(s.entries)
}

// Lookup returns the amplitude stored for basis b.
func (s *Store) Lookup(b ir.Basis) (ir.Amplitude, bool) {
	if s.index == nil {
		s.index = make(map[ir.Basis]int, len(s.entries))
		for i, e := range s.entries {
			s.index[e.Basis] = i
		}
	}
	i, ok := s.index[b]
	if !ok {
		return ir.Amplitude{}, false
	}
	return s.entries[i].Amplitude, true
}

// Entries returns a copy of the stored entries in storage order.
func (s *Store) Entries() []ir.Entry {
	out := make([]ir.Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Snapshot returns a copy of the stored entries ordered by basis string
// (qubit 0 first, '0' before '1'). The order is independent of the order
// in which gates produced the entries.
func (s *Store) Snapshot() []ir.Entry {
	out := s.Entries()
	SortEntries(out)
	return out
}

// SortEntries orders entries by basis string in place.
func SortEntries(entries []ir.Entry) {
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Basis.String()
	}
	sort.Sort(byKey{entries: entries, keys: keys})
}

type byKey struct {
	entries []ir.Entry
	keys    []string
}

func (b byKey) Len() int           { return len(b.entries) }
func (b byKey) Less(i, j int) bool { return b.keys[i] < b.keys[j] }
func (b byKey) Swap(i, j int) {
	b.entries[i], b.entries[j] = b.entries[j], b.entries[i]
	b.keys[i], b.keys[j] = b.keys[j], b.keys[i]
}

// Update hands the backing entry slice to fn and stores what it returns.
//
// fn may modify entries in place or return a new slice. It must preserve
// both store invariants; Update does not re-check them (see CheckInvariants).
func (s *Store) Update(fn func(entries []ir.Entry) []ir.Entry) {
	s.entries = fn(s.entries)
	s.index = nil
}

// CheckInvariants verifies basis widths and key uniqueness.
func (s *Store) CheckInvariants() error {
	seen := make(map[ir.Basis]bool, len(s.entries))
	for i, e := range s.entries {
		if e.Basis.Len() != s.qubits {
			return ir.NewPreconditionError(ir.ErrCodeBasisLengthMismatch,
				"entry %d: basis %s has %d qubits, register has %d", i, e.Basis, e.Basis.Len(), s.qubits)
		}
		if seen[e.Basis] {
			return ir.NewPreconditionError(ir.ErrCodeDuplicateBasis,
				"entry %d: basis %s stored more than once", i, e.Basis)
		}
		seen[e.Basis] = true
	}
	return nil
}
