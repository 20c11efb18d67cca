package engine

import (
	"io"
	"log/slog"
	"math/rand/v2"

	"github.com/roach88/sparsesim/internal/ir"
	"github.com/roach88/sparsesim/internal/state"
)

// DefaultParallelThreshold is the entry count above which per-entry work is
// split across workers when WithWorkers(n > 1) is set.
const DefaultParallelThreshold = 4096

// Engine applies gates to a sparse state store.
//
// Gate application is sequential: each gate, including its merge and any
// eviction, completes before the next gate starts. Within one gate the
// per-entry map may run on several workers; the collision merge that follows
// is a single ordered reduction.
//
// An Engine holds no state across runs apart from its random source, so one
// Engine may run many circuits in sequence. It is not safe for concurrent
// use; concurrent runs use one Engine and one Store each.
type Engine struct {
	capacity  int
	seed      uint64
	rng       *rand.Rand
	workers   int
	threshold int
	logger    *slog.Logger

	// keepCancelled stops Hadamard from dropping entries whose merged
	// amplitude is zero.
	keepCancelled bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithCapacity enables the state-drop variant: after every Hadamard the
// store is cut back to at most capacity entries. 0 means unbounded.
func WithCapacity(capacity int) Option {
	return func(e *Engine) {
		e.capacity = capacity
	}
}

// WithRand sets the random source used to break eviction ties.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) {
		e.rng = rng
	}
}

// WithSeed seeds the default PCG tie-break source.
// Ignored when WithRand is also given.
func WithSeed(seed uint64) Option {
	return func(e *Engine) {
		e.seed = seed
	}
}

// WithWorkers sets the number of goroutines used for the per-entry map.
// Values below 2 keep the map on the calling goroutine.
func WithWorkers(workers int) Option {
	return func(e *Engine) {
		e.workers = workers
	}
}

// WithParallelThreshold overrides DefaultParallelThreshold.
func WithParallelThreshold(entries int) Option {
	return func(e *Engine) {
		e.threshold = entries
	}
}

// WithKeepCancelled keeps entries whose amplitudes cancel to zero in a
// Hadamard merge. Reference runs set it so that every basis a bounded run of
// the same circuit can reach is also present in the reference state.
func WithKeepCancelled(keep bool) Option {
	return func(e *Engine) {
		e.keepCancelled = keep
	}
}

// WithLogger sets the logger for gate and eviction events.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewRand returns the PCG source the engine uses for a given seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// New creates an Engine. Without options it is unbounded, single-worker,
// seeded with 0 and silent.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		workers:   1,
		threshold: DefaultParallelThreshold,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.capacity < 0 {
		return nil, ir.NewPreconditionError(ir.ErrCodeInvalidCapacity,
			"capacity must not be negative, got %d", e.capacity)
	}
	if e.rng == nil {
		e.rng = NewRand(e.seed)
	}
	if e.logger == nil {
		e.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if e.threshold < 1 {
		e.threshold = 1
	}
	return e, nil
}

// Capacity returns the configured state-drop bound (0 when unbounded).
func (e *Engine) Capacity() int {
	return e.capacity
}

// Workers returns the number of goroutines used for the per-entry map.
func (e *Engine) Workers() int {
	return e.workers
}

// Stats summarizes one Run.
type Stats struct {
	// Gates is the number of gates applied.
	Gates int `json:"gates"`

	// PeakEntries is the largest entry count produced by any gate,
	// counted before eviction.
	PeakEntries int `json:"peak_entries"`

	// Evictions counts gates after which entries were dropped.
	Evictions int `json:"evictions"`

	// Evicted is the total number of entries dropped.
	Evicted int `json:"evicted"`
}

// Run validates the whole circuit against the store's register and then
// applies its gates in order. A circuit that fails validation leaves the
// store untouched.
func (e *Engine) Run(c *ir.Circuit, s *state.Store) (Stats, error) {
	stats := Stats{PeakEntries: s.Len()}
	if err := c.Validate(s.Qubits()); err != nil {
		return stats, err
	}

	e.logger.Debug("run starting",
		"gates", c.Len(),
		"qubits", s.Qubits(),
		"entries", s.Len(),
		"capacity", e.capacity)

	for i := 0; i < c.Len(); i++ {
		evicted := e.apply(i, c.Gate(i), s)

		stats.Gates++
		if n := s.Len() + evicted; n > stats.PeakEntries {
			stats.PeakEntries = n
		}
		if evicted > 0 {
			stats.Evictions++
			stats.Evicted += evicted
		}
	}

	e.logger.Debug("run finished",
		"gates", stats.Gates,
		"entries", s.Len(),
		"peak_entries", stats.PeakEntries,
		"evicted", stats.Evicted)
	return stats, nil
}

// Apply validates and applies a single gate, including eviction when the
// gate is a Hadamard and a capacity is configured.
func (e *Engine) Apply(g ir.Gate, s *state.Store) error {
	if err := g.Validate(s.Qubits()); err != nil {
		return err
	}
	e.apply(-1, g, s)
	return nil
}

// apply runs one validated gate and returns the number of evicted entries.
func (e *Engine) apply(index int, g ir.Gate, s *state.Store) int {
	s.Update(func(entries []ir.Entry) []ir.Entry {
		return e.transform(g, entries)
	})

	e.logger.Debug("gate applied",
		"gate", index,
		"kind", g.Kind.String(),
		"qubits", g.Qubits,
		"entries", s.Len())

	if !g.Kind.Grows() || e.capacity == 0 || s.Len() <= e.capacity {
		return 0
	}

	before := s.Len()
	var evicted int
	s.Update(func(entries []ir.Entry) []ir.Entry {
		var kept []ir.Entry
		kept, evicted = Evict(entries, e.capacity, e.rng)
		return kept
	})

	e.logger.Debug("evicted entries",
		"gate", index,
		"entries", before,
		"evicted", evicted,
		"capacity", e.capacity)
	return evicted
}
