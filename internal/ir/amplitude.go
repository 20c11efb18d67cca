package ir

import (
	"math"
)

// ZeroTolerance is the magnitude below which a merged amplitude is treated
// as zero and its entry dropped.
const ZeroTolerance = 1e-12

// NormTolerance bounds the accepted drift of Σ|a|² from 1 for seed states.
const NormTolerance = 1e-6

// InvSqrt2 is 1/√2, the Hadamard scaling factor.
var InvSqrt2 = 1 / math.Sqrt2

// Amplitude is a complex coefficient stored as its real and imaginary parts.
//
// Normalization is a store-level property; an Amplitude on its own carries
// no constraint.
type Amplitude struct {
	Re float64 `json:"re"`
	Im float64 `json:"im"`
}

// One is the amplitude (1, 0).
var One = Amplitude{Re: 1}

// Add returns a + b.
func (a Amplitude) Add(b Amplitude) Amplitude {
	return Amplitude{Re: a.Re + b.Re, Im: a.Im + b.Im}
}

// Sub returns a - b.
func (a Amplitude) Sub(b Amplitude) Amplitude {
	return Amplitude{Re: a.Re - b.Re, Im: a.Im - b.Im}
}

// Scale returns a multiplied by the real factor f.
func (a Amplitude) Scale(f float64) Amplitude {
	return Amplitude{Re: a.Re * f, Im: a.Im * f}
}

// Neg returns -a.
func (a Amplitude) Neg() Amplitude {
	return Amplitude{Re: -a.Re, Im: -a.Im}
}

// MulI returns i·a: (re, im) → (−im, re).
func (a Amplitude) MulI() Amplitude {
	return Amplitude{Re: -a.Im, Im: a.Re}
}

// MulNegI returns −i·a: (re, im) → (im, −re).
func (a Amplitude) MulNegI() Amplitude {
	return Amplitude{Re: a.Im, Im: -a.Re}
}

// Norm2 returns the squared magnitude re² + im².
func (a Amplitude) Norm2() float64 {
	return a.Re*a.Re + a.Im*a.Im
}

// Abs returns the magnitude.
func (a Amplitude) Abs() float64 {
	return math.Hypot(a.Re, a.Im)
}

// IsZero reports whether the magnitude is below ZeroTolerance.
func (a Amplitude) IsZero() bool {
	return a.Abs() < ZeroTolerance
}

// Entry is one exported row of a sparse state: a basis assignment and its
// amplitude.
type Entry struct {
	Basis     Basis     `json:"basis"`
	Amplitude Amplitude `json:"amplitude"`
}

// NewEntry builds an entry from a '0'/'1' basis string and amplitude parts.
func NewEntry(bits string, re, im float64) (Entry, error) {
	b, err := ParseBasis(bits)
	if err != nil {
		return Entry{}, err
	}
	return Entry{Basis: b, Amplitude: Amplitude{Re: re, Im: im}}, nil
}

// TotalNorm2 returns Σ|a|² over the entries.
func TotalNorm2(entries []Entry) float64 {
	var sum float64
	for _, e := range entries {
		sum += e.Amplitude.Norm2()
	}
	return sum
}
