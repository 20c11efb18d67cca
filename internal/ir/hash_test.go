package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitHashDeterminism(t *testing.T) {
	c := NewCircuit(NewGate(Hadamard, 0), NewGate(CNOT, 0, 1))

	h1, err := CircuitHash(c)
	require.NoError(t, err)
	h2, err := CircuitHash(NewCircuit(NewGate(Hadamard, 0), NewGate(CNOT, 0, 1)))
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64, "SHA-256 hex is 64 characters")
}

func TestCircuitHashChangesWithGates(t *testing.T) {
	base := MustCircuitHash(NewCircuit(NewGate(CNOT, 0, 1)))

	assert.NotEqual(t, base, MustCircuitHash(NewCircuit(NewGate(CNOT, 1, 0))), "qubit order matters")
	assert.NotEqual(t, base, MustCircuitHash(NewCircuit(NewGate(CCNOT, 0, 1, 2))), "kind matters")
	assert.NotEqual(t, base, MustCircuitHash(NewCircuit(NewGate(CNOT, 0, 1), NewGate(CNOT, 0, 1))), "length matters")
}

func TestCircuitHashEmpty(t *testing.T) {
	h := MustCircuitHash(NewCircuit())
	assert.Len(t, h, 64)

	canonical, err := MarshalCanonical(CanonicalCircuit(NewCircuit()))
	require.NoError(t, err)
	assert.Equal(t, `{"gates":[],"version":"1"}`, string(canonical))
}

func TestCanonicalCircuitLayout(t *testing.T) {
	canonical, err := MarshalCanonical(CanonicalCircuit(NewCircuit(NewGate(InvertAllZero, 2, 0))))
	require.NoError(t, err)
	assert.Equal(t, `{"gates":[{"kind":"invert_all_zero","qubits":[2,0]}],"version":"1"}`, string(canonical))
}

func TestHashDomainSeparation(t *testing.T) {
	data := []byte(`{"gates":[]}`)
	assert.NotEqual(t,
		hashWithDomain(DomainCircuit, data),
		hashWithDomain("sparsesim/other/v1", data))
}
