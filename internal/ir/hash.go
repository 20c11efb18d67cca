package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainCircuit prefixes circuit hashes. The version suffix allows a later
// change of the hashed layout.
const DomainCircuit = "sparsesim/circuit/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data) as lowercase hex.
// The null separator keeps domain and data boundaries unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// CanonicalCircuit returns the canonical JSON value of a circuit.
func CanonicalCircuit(c *Circuit) map[string]any {
	gates := make([]any, 0, c.Len())
	for _, g := range c.Gates() {
		gates = append(gates, map[string]any{
			"kind":   g.Kind.String(),
			"qubits": g.Qubits,
		})
	}
	return map[string]any{
		"version": IRVersion,
		"gates":   gates,
	}
}

// CircuitHash computes the content hash of a gate sequence.
// Two circuits hash equal exactly when they list the same gates in order.
func CircuitHash(c *Circuit) (string, error) {
	canonical, err := MarshalCanonical(CanonicalCircuit(c))
	if err != nil {
		return "", fmt.Errorf("CircuitHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainCircuit, canonical), nil
}

// MustCircuitHash is like CircuitHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustCircuitHash(c *Circuit) string {
	h, err := CircuitHash(c)
	if err != nil {
		panic(err)
	}
	return h
}
