// Package engine implements the gate engine of the sparse simulator.
//
// The engine receives a circuit and a state store and applies the gates in
// circuit order. Each gate is one explicit pass over the stored entries:
//
//   - PauliX, PauliY, PauliZ, CNOT, CCNOT and the Invert* gates are
//     bijections on basis keys and rewrite entries in place
//   - Reset and Hadamard map entries to contributions and then fold
//     colliding keys with an ordered grouped reduction (merge)
//   - Diffusion reflects amplitudes about the sum of their group
//
// STATE-DROP:
//
// With WithCapacity(n > 0) the engine evicts the lowest-|a|² entries after
// every Hadamard until at most n remain. Ties are broken by an injected
// *rand.Rand so a fixed seed reproduces the same eviction. Survivors are
// never renormalized; the lost weight is what the fidelity package measures.
//
// DETERMINISM:
//
// Given the same circuit, seed store and seed, a run produces the same
// entries in the same storage order, with or without worker parallelism:
// the parallel map writes disjoint slots and the merge is sequential.
//
// Precondition failures (bad qubit indices, unknown gates, negative
// capacity) are returned as *ir.PreconditionError before any gate runs.
package engine
