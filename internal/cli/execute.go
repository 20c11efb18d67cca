package cli

import (
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/roach88/sparsesim/internal/engine"
	"github.com/roach88/sparsesim/internal/ir"
	"github.com/roach88/sparsesim/internal/store"
)

// execution is one finished simulation run, ready to print or record.
type execution struct {
	Run      store.Run
	Snapshot []ir.Entry
	Stats    engine.Stats
	Workers  int
}

// runSettings selects how executeProgram runs a program.
type runSettings struct {
	// Capacity is the state-drop bound; 0 runs unbounded.
	Capacity int

	// Workers is the gate worker count; 0 selects runtime.GOMAXPROCS(0).
	Workers int

	// Reference marks an unbounded reference run, which keeps entries whose
	// amplitudes cancel.
	Reference bool
}

func (rs runSettings) workers() int {
	if rs.Workers > 0 {
		return rs.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// executeProgram runs p under rs and describes the run as a store.Run with
// the given ID.
func executeProgram(p *ir.Program, rs runSettings, id string, logger *slog.Logger) (*execution, error) {
	opts := append(engine.ProgramOptions(p),
		engine.WithCapacity(rs.Capacity),
		engine.WithWorkers(rs.workers()),
		engine.WithKeepCancelled(rs.Reference),
		engine.WithLogger(logger))
	eng, err := engine.New(opts...)
	if err != nil {
		return nil, err
	}

	hash, err := ir.CircuitHash(p.Circuit)
	if err != nil {
		return nil, fmt.Errorf("failed to hash circuit: %w", err)
	}

	start := time.Now()
	s, stats, err := eng.RunProgram(p)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	snapshot := s.Snapshot()
	logger.Debug("run finished",
		"circuit", p.Name,
		"capacity", rs.Capacity,
		"workers", eng.Workers(),
		"reference", rs.Reference,
		"entries", len(snapshot),
		"evicted", stats.Evicted,
		"duration", elapsed)

	return &execution{
		Run: store.Run{
			ID:            id,
			CircuitName:   p.Name,
			CircuitHash:   hash,
			Qubits:        p.Qubits,
			Gates:         stats.Gates,
			Capacity:      rs.Capacity,
			Seed:          p.Seed,
			Entries:       len(snapshot),
			PeakEntries:   stats.PeakEntries,
			Evicted:       stats.Evicted,
			Norm:          s.Norm(),
			Duration:      elapsed,
			EngineVersion: ir.EngineVersion,
			Reference:     rs.Reference,
		},
		Snapshot: snapshot,
		Stats:    stats,
		Workers:  eng.Workers(),
	}, nil
}

// SnapshotEntry is the JSON form of one stored amplitude.
type SnapshotEntry struct {
	Basis string  `json:"basis"`
	Re    float64 `json:"re"`
	Im    float64 `json:"im"`
}

func snapshotEntries(entries []ir.Entry) []SnapshotEntry {
	out := make([]SnapshotEntry, len(entries))
	for i, e := range entries {
		out[i] = SnapshotEntry{Basis: e.Basis.String(), Re: e.Amplitude.Re, Im: e.Amplitude.Im}
	}
	return out
}
