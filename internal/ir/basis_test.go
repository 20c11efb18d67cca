package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBasisAllZero(t *testing.T) {
	b := NewBasis(11)
	assert.Equal(t, 11, b.Len())
	assert.Equal(t, "00000000000", b.String())
	assert.Equal(t, NewBasis(11), b, "zero bases of equal width compare equal")
}

func TestParseBasis(t *testing.T) {
	b, err := ParseBasis("1010")
	require.NoError(t, err)

	assert.Equal(t, uint8(1), b.Bit(0))
	assert.Equal(t, uint8(0), b.Bit(1))
	assert.Equal(t, uint8(1), b.Bit(2))
	assert.Equal(t, uint8(0), b.Bit(3))
	assert.Equal(t, "1010", b.String())
	assert.Equal(t, []uint8{1, 0, 1, 0}, b.Bits())
}

func TestParseBasisRejectsOtherCharacters(t *testing.T) {
	_, err := ParseBasis("01x")
	require.Error(t, err)
	assert.True(t, IsPrecondition(err))
}

func TestBasisFlipAndWith(t *testing.T) {
	b := MustParseBasis("000000000")

	flipped := b.Flip(8)
	assert.Equal(t, "000000001", flipped.String())
	assert.Equal(t, "000000000", b.String(), "Flip must not mutate the receiver")
	assert.Equal(t, b, flipped.Flip(8))

	assert.Equal(t, flipped, flipped.With(8, 1))
	assert.Equal(t, b, flipped.With(8, 0))
	assert.Equal(t, "100000001", flipped.With(0, 1).String())
}

func TestBasisComparableAsMapKey(t *testing.T) {
	m := map[Basis]int{}
	m[MustParseBasis("0110")] = 1
	m[BasisFromBits([]uint8{0, 1, 1, 0})] = 2
	m[NewBasis(4).Flip(1).Flip(2)] = 3

	require.Len(t, m, 1)
	assert.Equal(t, 3, m[MustParseBasis("0110")])
}

func TestBasisWidthDistinguishesKeys(t *testing.T) {
	assert.NotEqual(t, MustParseBasis("0"), MustParseBasis("00"))
}

func TestBasisClear(t *testing.T) {
	b := MustParseBasis("1111")
	assert.Equal(t, "1010", b.Clear([]int{1, 3}).String())
	assert.Equal(t, "1111", b.String())

	zero := MustParseBasis("0000")
	assert.Equal(t, zero, zero.Clear([]int{0, 1}))
}

func TestBasisPredicates(t *testing.T) {
	b := MustParseBasis("1100")

	assert.True(t, b.AllOne([]int{0, 1}))
	assert.False(t, b.AllOne([]int{0, 2}))
	assert.True(t, b.AllZero([]int{2, 3}))
	assert.False(t, b.AllZero([]int{1, 2}))
}

func TestBasisValue(t *testing.T) {
	b := MustParseBasis("00001000000")

	assert.Equal(t, uint64(2), b.Value([]int{3, 4, 5}))
	assert.Equal(t, uint64(1), b.Value([]int{4}))
	assert.Equal(t, uint64(0), b.Value(nil))
	assert.Equal(t, uint64(5), MustParseBasis("101").Value([]int{0, 1, 2}))
}

func TestBasisJSON(t *testing.T) {
	e := Entry{Basis: MustParseBasis("01"), Amplitude: Amplitude{Re: 0.5, Im: -0.5}}

	data, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{"basis":"01","amplitude":{"re":0.5,"im":-0.5}}`, string(data))

	var back Entry
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, e, back)
}
