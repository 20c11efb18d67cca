// Package harness runs YAML simulation scenarios and checks their outcome.
//
// A scenario names a program (the same fields as a CUE circuit definition),
// optionally asks for an unbounded reference run, and lists assertions over
// the final state:
//
//	name: adder-2bit
//	program:
//	  prepare:
//	    - {kind: paulix, qubits: [0]}
//	  adder: {a: [0, 1], b: [2, 3], out: [4, 5, 6], ancilla: [7, 8, 9, 10]}
//	assertions:
//	  - {type: entry_count, count: 1}
//	  - {type: register_value, qubits: [4, 5, 6], value: 1}
//
// Each scenario runs against a fresh in-memory results database with
// sequential run IDs and a discarded log, so results are reproducible.
// Assertions are evaluated on the snapshot read back from that database,
// and golden files compare the canonical JSON of the same snapshot.
package harness
