// Package state holds the sparse state store: the explicit list of non-zero
// amplitudes that stands in for a dense 2^n vector.
//
// The store owns the two structural invariants (fixed basis width, unique
// keys) and the seed-state preconditions. Gate semantics live in the engine
// package, which mutates a store through Update.
package state
