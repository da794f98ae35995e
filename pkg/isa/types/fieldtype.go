// Package types implements the field type registry of the ISA description
// framework: the scalar and enumerated value types instruction fields are
// interpreted through, and the declared mappings between enum types.
package types

import (
	"errors"

	"github.com/Manu343726/escarabajo/pkg/utils"
)

var (
	ErrValueOutOfRange = errors.New("value out of range for field type")
	ErrCheckFailed     = errors.New("field value check failed")
	ErrBadTransform    = errors.New("scalar encode/decode transforms are not inverses")
)

// Kind of values a field type represents
type Kind int

const (
	Kind_Bool Kind = iota
	Kind_Uint
	Kind_Enum
)

func (k Kind) String() string {
	switch k {
	case Kind_Bool:
		return "bool"
	case Kind_Uint:
		return "uint"
	case Kind_Enum:
		return "enum"
	}

	panic("unreachable")
}

// Paired pure numeric transforms applied to scalar values when packing and
// unpacking. Both directions are declared explicitly so the decoder never has
// to re-derive the algebraic inverse of the encode expression.
type ScalarTransform struct {
	Encode func(uint64) uint64
	Decode func(uint64) uint64
}

// Interprets the raw bits of a field as a typed value
type FieldType struct {
	// Type name (for diagnostics and docs)
	Name string
	// Kind of values the type represents
	Kind Kind
	// Encoded width of the type in bits
	NumBits int
	// Width of the decoded domain when it differs from NumBits
	// (range-compressed encodings, e.g. 1-based counts packed off-by-one).
	// Zero means the decoded domain is NumBits wide too
	DecBits int
	// Decoded values are signed, using two's complement relative to the
	// decoded width
	Signed bool
	// Validity predicate run against the encoded value, nil if any value
	// fitting NumBits is legal
	Check func(uint64) error
	// Optional paired encode/decode transforms, nil for identity
	Transform *ScalarTransform
	// Enum description, for enum kinds only
	Enum *Enum
}

// Width of the decoded domain in bits
func (t *FieldType) DecodedBits() int {
	if t.DecBits != 0 {
		return t.DecBits
	}

	return t.NumBits
}

// Encodes a caller-supplied value into its packed representation: runs the
// encode transform, then the validity check, then the width range check
func (t *FieldType) EncodeValue(value uint64) (uint64, error) {
	if t.Kind == Kind_Enum {
		return t.Enum.EncodeValue(value)
	}

	if t.Transform != nil {
		value = t.Transform.Encode(value)
	}

	if t.Check != nil {
		if err := t.Check(value); err != nil {
			return 0, utils.MakeError(ErrCheckFailed, "type '%v': %v", t.Name, err)
		}
	}

	if value > utils.AllOnes[uint64](t.NumBits) {
		return 0, utils.MakeError(ErrValueOutOfRange, "type '%v': %v does not fit in %v bits", t.Name, value, t.NumBits)
	}

	return value, nil
}

// Decodes a packed representation back into the caller domain
func (t *FieldType) DecodeValue(raw uint64) uint64 {
	if t.Kind == Kind_Enum {
		return t.Enum.DecodeValue(raw)
	}

	if t.Transform != nil {
		return t.Transform.Decode(raw)
	}

	return raw
}

// Reinterprets a decoded value as signed, two's complement relative to the
// decoded width
func (t *FieldType) SignExtend(decoded uint64) int64 {
	bits := t.DecodedBits()

	if decoded&(1<<(bits-1)) != 0 {
		return int64(decoded) - (1 << bits)
	}

	return int64(decoded)
}

// The boolean field type, shared by every single-bit flag
func Bool() *FieldType {
	return boolType
}

var boolType = &FieldType{
	Name:    "bool",
	Kind:    Kind_Bool,
	NumBits: 1,
}

// An unsigned integer field type of the given encoded width
func Uint(name string, numBits int) *FieldType {
	return &FieldType{
		Name:    name,
		Kind:    Kind_Uint,
		NumBits: numBits,
	}
}
