package testutil

import (
	"math/rand/v2"
	"sync"
)

// CountingSource wraps a PCG source and counts the draws taken from it.
//
// Eviction draws exactly one tie-break value per stored entry, so tests can
// assert how many entries an eviction pass ranked without inspecting the
// engine.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type CountingSource struct {
	mu    sync.Mutex
	src   *rand.PCG
	draws int
}

// NewCountingSource creates a source seeded like engine.NewRand(seed).
func NewCountingSource(seed uint64) *CountingSource {
	return &CountingSource{src: rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)}
}

// Uint64 implements rand.Source.
func (c *CountingSource) Uint64() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draws++
	return c.src.Uint64()
}

// Draws returns the number of values drawn so far.
func (c *CountingSource) Draws() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draws
}

// Reset zeroes the draw counter. The underlying sequence continues.
func (c *CountingSource) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draws = 0
}

// Rand returns a *rand.Rand backed by the counting source.
func (c *CountingSource) Rand() *rand.Rand {
	return rand.New(c)
}

// SeededRand returns a deterministic *rand.Rand for tests.
func SeededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
