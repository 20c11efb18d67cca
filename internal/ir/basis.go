package ir

import (
	"strings"
)

// Basis is a basis assignment: one bit per qubit, qubit i at index i.
//
// Bits are packed eight per byte into an immutable string, so Basis values
// are comparable and can key a map directly. Every mutator returns a new
// value.
type Basis struct {
	n    int
	bits string
}

// NewBasis returns the all-zero assignment over n qubits.
func NewBasis(n int) Basis {
	return Basis{n: n, bits: string(make([]byte, packedLen(n)))}
}

// BasisFromBits builds an assignment from one 0/1 value per qubit.
// Any non-zero value is treated as 1.
func BasisFromBits(bits []uint8) Basis {
	packed := make([]byte, packedLen(len(bits)))
	for i, b := range bits {
		if b != 0 {
			packed[i>>3] |= 1 << (i & 7)
		}
	}
	return Basis{n: len(bits), bits: string(packed)}
}

// ParseBasis parses a string of '0' and '1' characters, qubit 0 first.
func ParseBasis(s string) (Basis, error) {
	bits := make([]uint8, len(s))
	for i, c := range s {
		switch c {
		case '0':
		case '1':
			bits[i] = 1
		default:
			return Basis{}, NewPreconditionError(ErrCodeMalformedRange,
				"basis %q: character %d is %q, want '0' or '1'", s, i, c)
		}
	}
	return BasisFromBits(bits), nil
}

// MustParseBasis is like ParseBasis but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustParseBasis(s string) Basis {
	b, err := ParseBasis(s)
	if err != nil {
		panic(err)
	}
	return b
}

func packedLen(n int) int {
	return (n + 7) / 8
}

// Len returns the number of qubits the assignment covers.
func (b Basis) Len() int {
	return b.n
}

// Bit returns the value of qubit i (0 or 1).
func (b Basis) Bit(i int) uint8 {
	return (b.bits[i>>3] >> (i & 7)) & 1
}

// With returns a copy of b with qubit i set to v (0 or 1).
func (b Basis) With(i int, v uint8) Basis {
	if b.Bit(i) == v&1 {
		return b
	}
	return b.Flip(i)
}

// Flip returns a copy of b with qubit i inverted.
func (b Basis) Flip(i int) Basis {
	packed := []byte(b.bits)
	packed[i>>3] ^= 1 << (i & 7)
	return Basis{n: b.n, bits: string(packed)}
}

// Clear returns a copy of b with every listed qubit forced to 0.
func (b Basis) Clear(qubits []int) Basis {
	var packed []byte
	for _, q := range qubits {
		if b.Bit(q) == 0 {
			continue
		}
		if packed == nil {
			packed = []byte(b.bits)
		}
		packed[q>>3] &^= 1 << (q & 7)
	}
	if packed == nil {
		return b
	}
	return Basis{n: b.n, bits: string(packed)}
}

// AllZero reports whether every listed qubit is 0.
func (b Basis) AllZero(qubits []int) bool {
	for _, q := range qubits {
		if b.Bit(q) != 0 {
			return false
		}
	}
	return true
}

// AllOne reports whether every listed qubit is 1.
func (b Basis) AllOne(qubits []int) bool {
	for _, q := range qubits {
		if b.Bit(q) != 1 {
			return false
		}
	}
	return true
}

// Bits returns one 0/1 value per qubit.
func (b Basis) Bits() []uint8 {
	out := make([]uint8, b.n)
	for i := range out {
		out[i] = b.Bit(i)
	}
	return out
}

// Value reads the listed qubits as a little-endian unsigned integer:
// qubits[0] is the least significant bit. At most 64 qubits are read.
func (b Basis) Value(qubits []int) uint64 {
	var v uint64
	for i, q := range qubits {
		if i >= 64 {
			break
		}
		v |= uint64(b.Bit(q)) << i
	}
	return v
}

// String renders the assignment as '0'/'1' characters, qubit 0 first.
func (b Basis) String() string {
	var sb strings.Builder
	sb.Grow(b.n)
	for i := 0; i < b.n; i++ {
		sb.WriteByte('0' + b.Bit(i))
	}
	return sb.String()
}

// MarshalText implements encoding.TextMarshaler.
func (b Basis) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *Basis) UnmarshalText(text []byte) error {
	parsed, err := ParseBasis(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}
