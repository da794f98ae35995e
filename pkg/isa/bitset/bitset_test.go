package bitset

import (
	"testing"

	"github.com/Manu343726/escarabajo/pkg/isa/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var zero = uint64(0)

// A two byte layout: an 8 bit payload in byte 0, a condition code and an end
// flag in byte 1 with reserved bits between them
func testSet(t *testing.T) *BitSet {
	cond, err := types.NewEnum("cond", []types.EnumElem{
		{Name: "eq", Value: 0},
		{Name: "ne", Value: 1},
		{Name: "lt", Value: 2},
	}, false, 2)
	require.NoError(t, err)

	set, err := New("test",
		[]PieceSpec{
			{Name: "payload", Byte: 0, Bits: "7:0"},
			{Name: "cond_bits", Byte: 1, Bits: "1:0"},
			{Name: "mid", Byte: 1, Bits: "6:2"},
			{Name: "end_bit", Byte: 1, Bits: "7"},
		},
		[]FieldSpec{
			{Name: "payload", Pieces: []string{"payload"}, Type: types.Uint("u8", 8)},
			{Name: "cond", Pieces: []string{"cond_bits"}, Type: types.EnumField(cond)},
			{Name: "pad", Pieces: []string{"mid"}, Type: types.Uint("u5", 5), Reserved: &zero},
			{Name: "end", Pieces: []string{"end_bit"}, Type: types.Bool()},
		})
	require.NoError(t, err)

	return set
}

func TestNew_DuplicatePieceFails(t *testing.T) {
	_, err := New("bad",
		[]PieceSpec{
			{Name: "a", Byte: 0, Bits: "3:0"},
			{Name: "a", Byte: 0, Bits: "7:4"},
		}, nil)
	assert.ErrorIs(t, err, ErrDuplicatePiece)
}

func TestNew_DuplicateFieldFails(t *testing.T) {
	_, err := New("bad",
		[]PieceSpec{
			{Name: "lo", Byte: 0, Bits: "3:0"},
			{Name: "hi", Byte: 0, Bits: "7:4"},
		},
		[]FieldSpec{
			{Name: "f", Pieces: []string{"lo"}, Type: types.Uint("u4", 4)},
			{Name: "f", Pieces: []string{"hi"}, Type: types.Uint("u4", 4)},
		})
	assert.ErrorIs(t, err, ErrDuplicateField)
}

func TestNew_UnknownPieceFails(t *testing.T) {
	_, err := New("bad",
		[]PieceSpec{
			{Name: "lo", Byte: 0, Bits: "3:0"},
		},
		[]FieldSpec{
			{Name: "f", Pieces: []string{"nope"}, Type: types.Uint("u4", 4)},
		})
	assert.ErrorIs(t, err, ErrUnknownPiece)
}

func TestNew_FieldWidthMismatchFails(t *testing.T) {
	_, err := New("bad",
		[]PieceSpec{
			{Name: "lo", Byte: 0, Bits: "3:0"},
		},
		[]FieldSpec{
			{Name: "f", Pieces: []string{"lo"}, Type: types.Uint("u8", 8)},
		})
	assert.ErrorIs(t, err, ErrFieldWidthMismatch)
}

func TestField_ExtractMultiPieceLowBitsFirst(t *testing.T) {
	set, err := New("split",
		[]PieceSpec{
			{Name: "lo", Byte: 0, Bits: "3:0"},
			{Name: "hi", Byte: 1, Bits: "1:0"},
		},
		[]FieldSpec{
			{Name: "f", Pieces: []string{"lo", "hi"}, Type: types.Uint("u6", 6)},
		})
	require.NoError(t, err)

	field, err := set.Field("f")
	require.NoError(t, err)

	// lo holds 0x5, hi holds 0b10 -> assembled value 0b10_0101
	assert.Equal(t, uint64(0b10_0101), field.Extract([]byte{0x05, 0x02}))
}

func TestNewStruct_PacksAndExtracts(t *testing.T) {
	set := testSet(t)

	s, err := NewStruct("insn", set, []FieldMapping{
		Pass("payload"),
		Pass("cond"),
		Pass("pad"),
		Pass("end"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, s.NumBytes())

	buffer, err := s.Pack(map[string]uint64{
		"payload": 0,
		"cond":    1,
		"end":     1,
	})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0b1000_0001}, buffer)

	cond, err := s.Extract("cond", buffer)
	assert.NoError(t, err)
	assert.Equal(t, uint64(1), cond)

	end, err := s.Extract("end", buffer)
	assert.NoError(t, err)
	assert.Equal(t, uint64(1), end)
}

func TestNewStruct_MissingValueFails(t *testing.T) {
	set := testSet(t)

	s, err := NewStruct("insn", set, []FieldMapping{
		Pass("payload"),
		Pass("cond"),
		Pass("pad"),
		Pass("end"),
	})
	require.NoError(t, err)

	_, err = s.Pack(map[string]uint64{"payload": 0, "cond": 1})
	assert.ErrorIs(t, err, ErrMissingValue)
}

func TestNewStruct_PackValidatesValues(t *testing.T) {
	set := testSet(t)

	s, err := NewStruct("insn", set, []FieldMapping{
		Pass("payload"),
		Pass("cond"),
		Pass("pad"),
		Pass("end"),
	})
	require.NoError(t, err)

	// 3 fits the cond width but names no element
	_, err = s.Pack(map[string]uint64{"payload": 0, "cond": 3, "end": 0})
	assert.Error(t, err)
}

func TestNewStruct_DerivesExactMaskFromPins(t *testing.T) {
	set := testSet(t)

	s, err := NewStruct("pinned", set, []FieldMapping{
		FixedUint("payload", 0xA5),
		FixedElem("cond", "lt"),
		Pass("pad"),
		Pass("end"),
	})
	require.NoError(t, err)

	// payload byte, the cond bits, and the reserved pad are all pinned
	assert.Equal(t, uint64(0b0111_1111_1111_1111), s.ExactMask())
	assert.Equal(t, uint64(0b0000_0010_1010_0101), s.ExactValue())
	assert.Equal(t, uint64(0xFFFF), s.FieldMask())
}

func TestNewStruct_ZeroValuedPinsWidenTheMask(t *testing.T) {
	set := testSet(t)

	s, err := NewStruct("pinned", set, []FieldMapping{
		FixedUint("payload", 0),
		Pass("cond"),
		Pass("pad"),
		Pass("end"),
	})
	require.NoError(t, err)

	assert.Equal(t, uint64(0b0111_1100_1111_1111), s.ExactMask())
	assert.Equal(t, uint64(0), s.ExactValue())
}

func TestNewStruct_OverlappingFieldsFail(t *testing.T) {
	set, err := New("overlap",
		[]PieceSpec{
			{Name: "all", Byte: 0, Bits: "7:0"},
			{Name: "low", Byte: 0, Bits: "3:0"},
			{Name: "high", Byte: 0, Bits: "7:4"},
		},
		[]FieldSpec{
			{Name: "whole", Pieces: []string{"all"}, Type: types.Uint("u8", 8)},
			{Name: "lo", Pieces: []string{"low"}, Type: types.Uint("u4", 4)},
			{Name: "hi", Pieces: []string{"high"}, Type: types.Uint("u4", 4)},
		})
	require.NoError(t, err)

	// lo+hi tile the byte, whole overlaps both
	_, err = NewStruct("ok", set, []FieldMapping{Pass("lo"), Pass("hi")})
	assert.NoError(t, err)

	_, err = NewStruct("bad", set, []FieldMapping{Pass("whole"), Pass("lo")})
	assert.ErrorIs(t, err, ErrFieldOverlap)
}

func TestNewStruct_MisalignedFails(t *testing.T) {
	set, err := New("misaligned",
		[]PieceSpec{
			{Name: "low", Byte: 0, Bits: "2:0"},
		},
		[]FieldSpec{
			{Name: "f", Pieces: []string{"low"}, Type: types.Uint("u3", 3)},
		})
	require.NoError(t, err)

	_, err = NewStruct("bad", set, []FieldMapping{Pass("f")})
	assert.ErrorIs(t, err, ErrNotByteAligned)
}

func TestNewStruct_ReservedRejectsLiterals(t *testing.T) {
	set := testSet(t)

	_, err := NewStruct("bad", set, []FieldMapping{
		Pass("payload"),
		Pass("cond"),
		FixedUint("pad", 1),
		Pass("end"),
	})
	assert.ErrorIs(t, err, ErrReservedConflict)
}

func TestNewStruct_LiteralKindChecked(t *testing.T) {
	set := testSet(t)

	_, err := NewStruct("bad", set, []FieldMapping{
		FixedBool("payload", true),
		Pass("cond"),
		Pass("pad"),
		Pass("end"),
	})
	assert.ErrorIs(t, err, ErrBadLiteral)
}

func TestNewStruct_UnknownElementLiteralFails(t *testing.T) {
	set := testSet(t)

	_, err := NewStruct("bad", set, []FieldMapping{
		Pass("payload"),
		FixedElem("cond", "never"),
		Pass("pad"),
		Pass("end"),
	})
	assert.ErrorIs(t, err, ErrBadLiteral)
}

func TestNewStruct_TooWideFails(t *testing.T) {
	set, err := New("wide",
		[]PieceSpec{
			{Name: "far", Byte: 8, Bits: "7:0"},
		},
		[]FieldSpec{
			{Name: "f", Pieces: []string{"far"}, Type: types.Uint("u8", 8)},
		})
	require.NoError(t, err)

	_, err = NewStruct("bad", set, []FieldMapping{Pass("f")})
	assert.ErrorIs(t, err, ErrStructTooWide)
}

func TestStructField_ValueTypeWidensSubtypes(t *testing.T) {
	parent, err := types.NewEnum("wide", []types.EnumElem{
		{Name: "a", Value: 0},
		{Name: "b", Value: 1},
		{Name: "c", Value: 2},
	}, false, 2)
	require.NoError(t, err)

	sub, err := types.NewEnumSubtype("narrow", parent, 1)
	require.NoError(t, err)

	set, err := New("s",
		[]PieceSpec{
			{Name: "bit", Byte: 0, Bits: "0"},
			{Name: "rest", Byte: 0, Bits: "7:1"},
		},
		[]FieldSpec{
			{Name: "f", Pieces: []string{"bit"}, Type: types.EnumField(sub)},
			{Name: "pad", Pieces: []string{"rest"}, Type: types.Uint("u7", 7), Reserved: &zero},
		})
	require.NoError(t, err)

	s, err := NewStruct("insn", set, []FieldMapping{Pass("f"), Pass("pad")})
	require.NoError(t, err)

	structField, err := s.StructField("f")
	require.NoError(t, err)
	assert.Equal(t, parent, structField.ValueType().Enum)
}
