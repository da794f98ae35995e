package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllOnes(t *testing.T) {
	assert.Equal(t, uint64(0), AllOnes[uint64](0))
	assert.Equal(t, uint64(1), AllOnes[uint64](1))
	assert.Equal(t, uint64(0b1111), AllOnes[uint64](4))
	assert.Equal(t, uint8(0xFF), AllOnes[uint8](8))
}

func TestBits(t *testing.T) {
	assert.Equal(t, 0, Bits(0))
	assert.Equal(t, 8, Bits(1))
	assert.Equal(t, 24, Bits(3))
}

func TestBitView_Read(t *testing.T) {
	value := uint64(0b1011_0100)
	view := CreateBitView(&value)

	assert.Equal(t, uint64(0b0100), view.Read(0, 4))
	assert.Equal(t, uint64(0b1011), view.Read(4, 4))
	assert.Equal(t, uint64(0b1), view.Read(2, 1))
}

func TestBitView_Write(t *testing.T) {
	value := uint64(0)
	view := CreateBitView(&value)

	view.Write(0b1011, 4, 4)
	assert.Equal(t, uint64(0b1011_0000), value)

	// Bits above the declared width are dropped
	view.Write(0b1_0110, 0, 4)
	assert.Equal(t, uint64(0b1011_0110), value)
}

func TestByteView_Read(t *testing.T) {
	view := CreateByteView([]byte{0x12, 0xB4})

	assert.Equal(t, uint64(0x2), view.Read(0, 0, 4))
	assert.Equal(t, uint64(0x1), view.Read(0, 4, 4))
	assert.Equal(t, uint64(0xB), view.Read(1, 4, 4))
}

func TestByteView_WriteOrsDisjointRanges(t *testing.T) {
	buffer := make([]byte, 2)
	view := CreateByteView(buffer)

	view.Write(0x3, 1, 4, 4)
	view.Write(0x4, 1, 0, 4)
	view.Write(0x1, 0, 0, 8)

	assert.Equal(t, []byte{0x01, 0x34}, buffer)
}

func TestFormatUintBinary(t *testing.T) {
	assert.Equal(t, "0101", FormatUintBinary(0b101, 4))
	assert.Equal(t, "00000001", FormatUintBinary(1, 8))
}

func TestFormatUintHex(t *testing.T) {
	assert.Equal(t, "0x0f", FormatUintHex(0xF, 2))
	assert.Equal(t, "0x00ab", FormatUintHex(0xAB, 4))
}
