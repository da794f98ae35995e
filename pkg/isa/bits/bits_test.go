package bits

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRange_SingleBit(t *testing.T) {
	r, err := ParseRange("3", 8)
	assert.NoError(t, err)
	assert.Equal(t, BitRange{Start: 3, Size: 1}, r)
	assert.Equal(t, 3, r.End())
	assert.Equal(t, uint64(0b1000), r.Mask())
}

func TestParseRange_HiLo(t *testing.T) {
	r, err := ParseRange("7:4", 8)
	assert.NoError(t, err)
	assert.Equal(t, BitRange{Start: 4, Size: 4}, r)
	assert.Equal(t, 7, r.End())
	assert.Equal(t, uint64(0xF0), r.Mask())
}

func TestParseRange_HighBelowLowFails(t *testing.T) {
	_, err := ParseRange("4:7", 8)
	assert.ErrorIs(t, err, ErrMalformedRange)
}

func TestParseRange_OutsideWordFails(t *testing.T) {
	_, err := ParseRange("8", 8)
	assert.ErrorIs(t, err, ErrMalformedRange)

	_, err = ParseRange("9:4", 8)
	assert.ErrorIs(t, err, ErrMalformedRange)
}

func TestParseRange_GarbageFails(t *testing.T) {
	_, err := ParseRange("x", 8)
	assert.ErrorIs(t, err, ErrMalformedRange)

	_, err = ParseRange("3:y", 8)
	assert.ErrorIs(t, err, ErrMalformedRange)
}

func TestParseBits(t *testing.T) {
	b, err := ParseBits("3:0 7:6", 8)
	assert.NoError(t, err)
	assert.Equal(t, 6, b.Size())

	mask, err := b.Mask()
	assert.NoError(t, err)
	assert.Equal(t, uint64(0b1100_1111), mask)
}

func TestBits_OverlapDetected(t *testing.T) {
	b, err := ParseBits("3:0 4:2", 8)
	assert.NoError(t, err)

	_, err = b.Mask()
	assert.ErrorIs(t, err, ErrOverlappingBits)
}

func TestBits_ExtractConcatenatesLowBitsFirst(t *testing.T) {
	// Value split over a low nibble and two high bits: the first range holds
	// the low bits of the assembled value
	b, err := ParseBits("3:0 7:6", 8)
	assert.NoError(t, err)

	assert.Equal(t, uint64(0b11_0101), b.Extract(0b1100_0101))
}

func TestBits_DepositInvertsExtract(t *testing.T) {
	b, err := ParseBits("3:0 7:6", 8)
	assert.NoError(t, err)

	for value := uint64(0); value < 64; value++ {
		raw := b.Deposit(value)
		assert.Equal(t, value, b.Extract(raw), "value %v", value)
	}
}

func TestBitRange_String(t *testing.T) {
	single, err := ParseRange("5", 8)
	assert.NoError(t, err)
	assert.Equal(t, "5", single.String())

	ranged, err := ParseRange("7:4", 8)
	assert.NoError(t, err)
	assert.Equal(t, "7:4", ranged.String())
}
