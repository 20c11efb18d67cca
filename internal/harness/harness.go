package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/sparsesim/internal/engine"
	"github.com/roach88/sparsesim/internal/fidelity"
	"github.com/roach88/sparsesim/internal/ir"
	"github.com/roach88/sparsesim/internal/store"
	"github.com/roach88/sparsesim/internal/testutil"
)

// Harness is the scenario execution engine.
// It records runs in its results database under sequential run IDs.
type Harness struct {
	store  *store.Store
	ids    engine.RunIDGenerator
	logger *slog.Logger
}

// New creates a harness that records runs in st.
// A nil logger discards log output.
func New(st *store.Store, ids engine.RunIDGenerator, logger *slog.Logger) *Harness {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Harness{store: st, ids: ids, logger: logger}
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Build the program from the scenario definition
// 2. Run it with the program's capacity and seed, and record the run
// 3. If requested, run it unbounded, record that run and the fidelity error
// 4. Read the bounded snapshot back and evaluate assertions on it
//
// Precondition failures (bad gates, unnormalized seeds) are returned as
// errors; assertion failures are reported in the Result.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := New(st, testutil.NewSequentialRunIDs("run"), nil)
	return h.Run(context.Background(), scenario)
}

// Run executes one scenario against the harness database.
func (h *Harness) Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	p, err := scenario.Program.Program(scenario.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to build program: %w", err)
	}

	h.logger.Debug("running scenario",
		"scenario", scenario.Name,
		"qubits", p.Qubits,
		"capacity", p.Capacity,
		"reference", scenario.Reference)

	result := NewResult()
	result.Qubits = p.Qubits

	runID, snapshot, stats, err := h.execute(ctx, p, p.Capacity, false)
	if err != nil {
		return nil, err
	}
	result.RunID = runID
	result.Stats = stats

	if scenario.Reference {
		refID, refSnapshot, _, err := h.execute(ctx, p, 0, true)
		if err != nil {
			return nil, fmt.Errorf("reference run: %w", err)
		}
		fe, err := fidelity.Error(snapshot, refSnapshot)
		if err != nil {
			return nil, fmt.Errorf("fidelity error: %w", err)
		}
		if err := h.store.SetFidelity(ctx, runID, refID, fe); err != nil {
			return nil, err
		}
		result.ReferenceID = refID
		result.FidelityError = &fe
	}

	entries, err := h.store.ReadSnapshot(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	result.Entries = entries
	result.Norm = ir.TotalNorm2(entries)

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

// execute runs p under the given capacity and records the run. A reference
// run keeps cancelled entries so fidelity can be measured against them.
func (h *Harness) execute(ctx context.Context, p *ir.Program, capacity int, reference bool) (string, []ir.Entry, engine.Stats, error) {
	opts := append(engine.ProgramOptions(p),
		engine.WithCapacity(capacity),
		engine.WithKeepCancelled(reference),
		engine.WithLogger(h.logger))
	eng, err := engine.New(opts...)
	if err != nil {
		return "", nil, engine.Stats{}, err
	}

	s, stats, err := eng.RunProgram(p)
	if err != nil {
		return "", nil, stats, err
	}

	hash, err := ir.CircuitHash(p.Circuit)
	if err != nil {
		return "", nil, stats, fmt.Errorf("failed to hash circuit: %w", err)
	}

	snapshot := s.Snapshot()
	run := store.Run{
		ID:            h.ids.Generate(),
		CircuitName:   p.Name,
		CircuitHash:   hash,
		Qubits:        p.Qubits,
		Gates:         stats.Gates,
		Capacity:      capacity,
		Seed:          p.Seed,
		Entries:       len(snapshot),
		PeakEntries:   stats.PeakEntries,
		Evicted:       stats.Evicted,
		Norm:          s.Norm(),
		EngineVersion: ir.EngineVersion,
		Reference:     reference,
	}
	if err := h.store.WriteRun(ctx, run, snapshot); err != nil {
		return "", nil, stats, err
	}
	return run.ID, snapshot, stats, nil
}
