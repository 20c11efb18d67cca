// Package ir provides the foundational value types for the sparse simulator.
//
// This package contains data definitions only. All other internal packages
// import ir; ir imports nothing internal. This keeps IR the bottom layer with
// no circular dependencies.
//
// Key design constraints:
//   - Gate kinds form a closed enumeration; dispatch is an exhaustive switch
//   - Basis assignments are immutable, comparable values usable as map keys
//   - Circuits are append/prepend only and never mutated by the engine
//   - All JSON tags use snake_case
//   - Precondition failures are reported as *PreconditionError, never corrected
package ir
