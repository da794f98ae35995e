package types

import (
	"errors"
	"math/bits"
	"strings"

	"github.com/Manu343726/escarabajo/pkg/utils"
)

var (
	ErrInvalidEnumElement = errors.New("invalid enum element")
	ErrDuplicateElement   = errors.New("duplicate enum element")
	ErrSubtypeOfBitset    = errors.New("bitset enums cannot be truncated into subtypes")
	ErrSubtypeTooWide     = errors.New("enum subtype must be narrower than its parent")
)

// One named element of an enum type
type EnumElem struct {
	// Symbolic name, unique within the enum
	Name string
	// Numeric value packed into the field
	Value uint64
	// String rendered by the disassembler; empty for default elements that
	// are omitted from output
	Display string
}

// An enumerated value type. Regular enums map each numeric value to one
// symbolic element; bitset enums treat elements as independent one-hot bits
// whose union is a legal value.
type Enum struct {
	// Type name
	Name string
	// Elements in declaration order
	Elems []EnumElem
	// Elements are independent one-hot bits, union-combinable
	IsBitset bool
	// Encoded width in bits
	NumBits int
	// Wider enum this is a truncated view of, nil for root enums
	Parent *Enum
	// For bitset enums only: the decoded meaning of an all-zero raw value
	// ("pass zero", typically the all-lanes mask), nil if zero means the
	// empty set
	PassZero *uint64

	byName  map[string]*EnumElem
	byValue map[uint64]*EnumElem
}

// Builds an enum type. Element names and values must be unique and every
// value must fit the declared width.
func NewEnum(name string, elems []EnumElem, isBitset bool, numBits int) (*Enum, error) {
	e := &Enum{
		Name:     name,
		Elems:    elems,
		IsBitset: isBitset,
		NumBits:  numBits,
		byName:   make(map[string]*EnumElem, len(elems)),
		byValue:  make(map[uint64]*EnumElem, len(elems)),
	}

	for i := range e.Elems {
		elem := &e.Elems[i]

		if _, dup := e.byName[elem.Name]; dup {
			return nil, utils.MakeError(ErrDuplicateElement, "'%v' in enum '%v'", elem.Name, name)
		}

		if _, dup := e.byValue[elem.Value]; dup {
			return nil, utils.MakeError(ErrDuplicateElement, "value %v of '%v' in enum '%v'", elem.Value, elem.Name, name)
		}

		if elem.Value > utils.AllOnes[uint64](numBits) {
			return nil, utils.MakeError(ErrValueOutOfRange, "element '%v' of enum '%v': %v does not fit in %v bits", elem.Name, name, elem.Value, numBits)
		}

		if isBitset && elem.Value != 0 && bits.OnesCount64(elem.Value) != 1 {
			return nil, utils.MakeError(ErrInvalidEnumElement, "element '%v' of bitset enum '%v': value %v is not one-hot", elem.Name, name, elem.Value)
		}

		e.byName[elem.Name] = elem
		e.byValue[elem.Value] = elem
	}

	return e, nil
}

// Builds a truncated view of a parent enum exposing only the elements that
// fit the narrower width. Used when the same symbol space is reused at a
// smaller field width. Bitset parents cannot be truncated: dropping high
// member bits would silently drop valid combinations.
func NewEnumSubtype(name string, parent *Enum, numBits int) (*Enum, error) {
	if parent.IsBitset {
		return nil, utils.MakeError(ErrSubtypeOfBitset, "subtype '%v' of '%v'", name, parent.Name)
	}

	if numBits >= parent.NumBits {
		return nil, utils.MakeError(ErrSubtypeTooWide, "subtype '%v' is %v bits, parent '%v' is %v bits", name, numBits, parent.Name, parent.NumBits)
	}

	var elems []EnumElem
	for _, elem := range parent.Elems {
		if elem.Value <= utils.AllOnes[uint64](numBits) {
			elems = append(elems, elem)
		}
	}

	sub, err := NewEnum(name, elems, false, numBits)

	if err != nil {
		return nil, err
	}

	sub.Parent = parent
	return sub, nil
}

// The outermost parent of a subtype chain, or the enum itself for roots.
// Pass-through struct members widen back to this semantic domain.
func (e *Enum) Root() *Enum {
	if e.Parent != nil {
		return e.Parent.Root()
	}

	return e
}

// Looks an element up by symbolic name
func (e *Enum) Elem(name string) (*EnumElem, error) {
	if elem, found := e.byName[name]; found {
		return elem, nil
	}

	return nil, utils.MakeError(ErrInvalidEnumElement, "no element '%v' in enum '%v'", name, e.Name)
}

// Looks an element up by numeric value
func (e *Enum) ElemByValue(value uint64) (*EnumElem, error) {
	if elem, found := e.byValue[value]; found {
		return elem, nil
	}

	return nil, utils.MakeError(ErrInvalidEnumElement, "no element with value %v in enum '%v'", value, e.Name)
}

// Validates a value against the enum: a declared element for regular enums,
// any union of member bits for bitsets
func (e *Enum) EncodeValue(value uint64) (uint64, error) {
	if e.IsBitset {
		if value&^e.membersMask() != 0 {
			return 0, utils.MakeError(ErrInvalidEnumElement, "value %v has bits outside the members of bitset enum '%v'", value, e.Name)
		}

		return value, nil
	}

	if _, err := e.ElemByValue(value); err != nil {
		return 0, err
	}

	return value, nil
}

// Maps a raw value back to the decoded domain. For bitset enums with a
// declared pass-zero default, a raw zero decodes to the default set.
func (e *Enum) DecodeValue(raw uint64) uint64 {
	if e.IsBitset && raw == 0 && e.PassZero != nil {
		return *e.PassZero
	}

	return raw
}

func (e *Enum) membersMask() uint64 {
	var mask uint64

	for _, elem := range e.Elems {
		mask |= elem.Value
	}

	return mask
}

// Renders a decoded value symbolically: the element name for regular enums,
// a '|' separated union of set member names for bitsets
func (e *Enum) Format(decoded uint64) string {
	if !e.IsBitset {
		if elem, err := e.ElemByValue(decoded); err == nil {
			return elem.Name
		}

		return utils.FormatUintBinary(decoded, e.NumBits)
	}

	var members []string
	for _, elem := range e.Elems {
		if elem.Value != 0 && decoded&elem.Value == elem.Value {
			members = append(members, elem.Name)
		}
	}

	if len(members) == 0 {
		return "none"
	}

	return strings.Join(members, "|")
}

// Wraps an enum into a field type
func EnumField(e *Enum) *FieldType {
	return &FieldType{
		Name:    e.Name,
		Kind:    Kind_Enum,
		NumBits: e.NumBits,
		Enum:    e,
	}
}
