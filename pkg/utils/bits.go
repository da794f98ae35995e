package utils

import (
	"golang.org/x/exp/constraints"
)

const BitsPerByte = 8

// Returns the size in bits of n bytes
func Bits(bytes int) int {
	return bytes * BitsPerByte
}

// Returns an all ones bitmask of n bits of the given unsigned integer type
func AllOnes[T constraints.Unsigned](bits int) T {
	return (T(1) << bits) - T(1)
}

// Implements a read/write view over an unsigned integer, allowing manipulating individual bits easily
type BitView[T constraints.Unsigned] struct {
	Bits *T
}

// Returns the viewed unsigned int value
func (v BitView[T]) Value() T {
	return *v.Bits
}

// Extracts a range of bits given a first bit and a width
func (v BitView[T]) Read(bit int, width int) T {
	mask := AllOnes[T](width)
	return (v.Value() >> bit) & mask
}

// Copies a value into a range of bits, given the start and width of the range.
// All most significant bits of the value not fitting into the destination range are ignored.
func (v BitView[T]) Write(value T, bit int, width int) {
	clearedValue := value & AllOnes[T](width)
	*v.Bits = (*v.Bits) | (clearedValue << bit)
}

// Creates a bit view out of an unsigned int
func CreateBitView[T constraints.Unsigned](value *T) BitView[T] {
	return BitView[T]{
		Bits: value,
	}
}

// Implements a read/write view over a byte buffer, addressing bits by byte
// index plus in-byte offset. Writes OR into the buffer, so disjoint ranges
// can be written in any order.
type ByteView struct {
	Bytes []byte
}

// Extracts a range of bits from one byte of the buffer. The range must not
// cross the byte boundary.
func (v ByteView) Read(byteIndex int, bit int, width int) uint64 {
	mask := AllOnes[uint64](width)
	return (uint64(v.Bytes[byteIndex]) >> bit) & mask
}

// ORs a value into a range of bits of one byte of the buffer. Most
// significant bits of the value not fitting the range are ignored.
func (v ByteView) Write(value uint64, byteIndex int, bit int, width int) {
	clearedValue := value & AllOnes[uint64](width)
	v.Bytes[byteIndex] |= byte(clearedValue << bit)
}

// Creates a byte view out of a byte buffer
func CreateByteView(bytes []byte) ByteView {
	return ByteView{
		Bytes: bytes,
	}
}
