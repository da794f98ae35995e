// Package bits implements the bit layout model of the ISA description
// framework: contiguous bit ranges, unions of ranges, and the mask/shift
// arithmetic used to move field values in and out of raw instruction words.
package bits

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Manu343726/escarabajo/pkg/utils"
)

var (
	ErrMalformedRange  = errors.New("malformed bit range")
	ErrOverlappingBits = errors.New("overlapping bit ranges")
)

// A contiguous range of bits within a word, given as a first bit and a width
type BitRange struct {
	Start int
	Size  int
}

// The last bit covered by the range
func (r BitRange) End() int {
	return r.Start + r.Size - 1
}

// All ones mask of the range width, unshifted
func (r BitRange) SizeMask() uint64 {
	return utils.AllOnes[uint64](r.Size)
}

// Mask of the range in place within the word
func (r BitRange) Mask() uint64 {
	return r.SizeMask() << r.Start
}

func (r BitRange) String() string {
	if r.Size == 1 {
		return fmt.Sprint(r.Start)
	}

	return fmt.Sprintf("%v:%v", r.End(), r.Start)
}

// Parses a bit range spec. Accepts either "N" (a single bit) or "HI:LO" (an
// inclusive range, high bit first). Fails with ErrMalformedRange if HI < LO
// or any bit falls outside [0, wordBits).
func ParseRange(spec string, wordBits int) (BitRange, error) {
	if hi, lo, isRange := strings.Cut(spec, ":"); isRange {
		hiBit, err := strconv.Atoi(hi)

		if err != nil {
			return BitRange{}, utils.MakeError(ErrMalformedRange, "'%v': %v", spec, err)
		}

		loBit, err := strconv.Atoi(lo)

		if err != nil {
			return BitRange{}, utils.MakeError(ErrMalformedRange, "'%v': %v", spec, err)
		}

		if hiBit < loBit {
			return BitRange{}, utils.MakeError(ErrMalformedRange, "'%v': high bit %v below low bit %v", spec, hiBit, loBit)
		}

		return newRange(spec, loBit, hiBit-loBit+1, wordBits)
	}

	bit, err := strconv.Atoi(spec)

	if err != nil {
		return BitRange{}, utils.MakeError(ErrMalformedRange, "'%v': %v", spec, err)
	}

	return newRange(spec, bit, 1, wordBits)
}

func newRange(spec string, start int, size int, wordBits int) (BitRange, error) {
	if start < 0 || start+size > wordBits {
		return BitRange{}, utils.MakeError(ErrMalformedRange, "'%v': bits outside [0, %v)", spec, wordBits)
	}

	return BitRange{Start: start, Size: size}, nil
}

// An ordered collection of bit ranges within a word. The declaration order
// defines significance: the first range holds the lowest bits of the
// assembled value, the last range the highest.
type Bits struct {
	Ranges []BitRange
}

// Parses a space-separated list of bit range specs
func ParseBits(spec string, wordBits int) (Bits, error) {
	var b Bits

	for _, rangeSpec := range strings.Fields(spec) {
		r, err := ParseRange(rangeSpec, wordBits)

		if err != nil {
			return Bits{}, err
		}

		b.Ranges = append(b.Ranges, r)
	}

	return b, nil
}

// Total bits covered by all ranges
func (b Bits) Size() int {
	return utils.Accumulate(b.Ranges, func(r BitRange) int { return r.Size })
}

// Union of all range masks. Fails with ErrOverlappingBits if any two ranges
// share a bit; callers run this once at table build time, never per word.
func (b Bits) Mask() (uint64, error) {
	var union uint64
	var sum uint64

	for _, r := range b.Ranges {
		union |= r.Mask()
		sum += r.Mask()
	}

	if sum != union {
		return 0, utils.MakeError(ErrOverlappingBits, "in '%v'", b)
	}

	return union, nil
}

// Extracts the value encoded by the ranges out of a raw word, concatenating
// the range segments in declaration order, low bits first
func (b Bits) Extract(raw uint64) uint64 {
	var accum uint64
	n := 0

	for _, r := range b.Ranges {
		accum |= ((raw >> r.Start) & r.SizeMask()) << n
		n += r.Size
	}

	return accum
}

// Spreads a value out over the ranges within an otherwise zero word; the
// exact inverse of Extract
func (b Bits) Deposit(value uint64) uint64 {
	var raw uint64
	n := 0

	for _, r := range b.Ranges {
		raw |= ((value >> n) & r.SizeMask()) << r.Start
		n += r.Size
	}

	return raw
}

func (b Bits) String() string {
	return utils.FormatSlice(b.Ranges, " ")
}
