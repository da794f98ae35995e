package bitset

import (
	"errors"

	"github.com/Manu343726/escarabajo/pkg/isa/types"
	"github.com/Manu343726/escarabajo/pkg/utils"
)

var (
	ErrNotByteAligned   = errors.New("bit struct is not byte aligned")
	ErrFieldOverlap     = errors.New("bit struct fields overlap")
	ErrReservedConflict = errors.New("literal conflicts with the field's reserved value")
	ErrBadLiteral       = errors.New("literal is not legal for the field's type")
	ErrStructTooWide    = errors.New("bit struct exceeds the maximum instruction width")
	ErrMissingValue     = errors.New("missing value for bit struct field")

	// Instructions are matched and masked as 64 bit words, so a struct
	// cannot span more than 8 bytes
	maxStructBytes = 8
)

type literalKind int

const (
	literalBool literalKind = iota
	literalUint
	literalElem
)

type literalSpec struct {
	kind     literalKind
	boolVal  bool
	uintVal  uint64
	elemName string
}

// Selects one bit set field for inclusion in a bit struct, either passed
// through from the caller or pinned to a literal
type FieldMapping struct {
	Field string
	fixed *literalSpec
}

// Includes a field whose value is supplied by the caller at pack time
func Pass(field string) FieldMapping {
	return FieldMapping{Field: field}
}

// Includes a boolean field pinned to a constant
func FixedBool(field string, value bool) FieldMapping {
	return FieldMapping{Field: field, fixed: &literalSpec{kind: literalBool, boolVal: value}}
}

// Includes a scalar field pinned to a constant, given in the decoded domain
func FixedUint(field string, value uint64) FieldMapping {
	return FieldMapping{Field: field, fixed: &literalSpec{kind: literalUint, uintVal: value}}
}

// Includes an enum field pinned to a named element
func FixedElem(field string, elem string) FieldMapping {
	return FieldMapping{Field: field, fixed: &literalSpec{kind: literalElem, elemName: elem}}
}

// One member of a bit struct
type StructField struct {
	// The bit set field backing this member
	Field *Field
	// Encoded value the member is pinned to, nil for pass-through members
	Fixed *uint64
}

// Type the caller supplies values of. For enum fields with a parent this is
// the parent's semantic domain: narrower subtype members widen back to the
// root enum in the generated struct.
func (f *StructField) ValueType() *types.FieldType {
	if f.Field.Type.Kind == types.Kind_Enum && f.Field.Type.Enum.Parent != nil {
		return types.EnumField(f.Field.Type.Enum.Root())
	}

	return f.Field.Type
}

// A concrete, byte-aligned projection of a subset of a bit set's fields onto
// a struct layout. Built once at description time, immutable afterwards;
// generates the pack routine and the decode accessors for one encoding
// variant.
type BitStruct struct {
	// Struct name
	Name string
	// Bit set the struct projects
	Set *BitSet

	fields   []*StructField
	byName   map[string]*StructField
	numBytes int

	exactMask  uint64
	exactValue uint64
	fieldMask  uint64
}

// Builds a bit struct from an ordered field mapping list. Literals are
// validated against the field type, literal-vs-reserved conflicts, bit
// overlap between included fields and byte misalignment are all fatal
// construction errors, never silently resolved.
func NewStruct(name string, set *BitSet, mappings []FieldMapping) (*BitStruct, error) {
	s := &BitStruct{
		Name:   name,
		Set:    set,
		byName: make(map[string]*StructField, len(mappings)),
	}

	for _, mapping := range mappings {
		field, err := set.Field(mapping.Field)

		if err != nil {
			return nil, utils.MakeError(err, "bit struct '%v'", name)
		}

		structField := &StructField{Field: field}

		if mapping.fixed != nil {
			if field.Reserved != nil {
				return nil, utils.MakeError(ErrReservedConflict, "field '%v' of bit struct '%v'", field.Name, name)
			}

			fixed, err := resolveLiteral(mapping.fixed, field)

			if err != nil {
				return nil, utils.MakeError(err, "bit struct '%v'", name)
			}

			structField.Fixed = &fixed
		} else if field.Reserved != nil {
			reserved := *field.Reserved
			structField.Fixed = &reserved
		}

		s.fields = append(s.fields, structField)
		s.byName[field.Name] = structField
	}

	if err := s.checkLayout(); err != nil {
		return nil, err
	}

	s.deriveExact()

	return s, nil
}

func resolveLiteral(literal *literalSpec, field *Field) (uint64, error) {
	fieldType := field.Type

	switch literal.kind {
	case literalBool:
		if fieldType.Kind != types.Kind_Bool {
			return 0, utils.MakeError(ErrBadLiteral, "boolean literal for field '%v' of type '%v'", field.Name, fieldType.Name)
		}

		if literal.boolVal {
			return 1, nil
		}

		return 0, nil

	case literalUint:
		if fieldType.Kind == types.Kind_Bool {
			return 0, utils.MakeError(ErrBadLiteral, "integer literal for boolean field '%v'", field.Name)
		}

		encoded, err := fieldType.EncodeValue(literal.uintVal)

		if err != nil {
			return 0, utils.MakeError(ErrBadLiteral, "field '%v': %v", field.Name, err)
		}

		return encoded, nil

	case literalElem:
		if fieldType.Kind != types.Kind_Enum {
			return 0, utils.MakeError(ErrBadLiteral, "enum element literal for field '%v' of type '%v'", field.Name, fieldType.Name)
		}

		elem, err := fieldType.Enum.Elem(literal.elemName)

		if err != nil {
			return 0, utils.MakeError(ErrBadLiteral, "field '%v': %v", field.Name, err)
		}

		return elem.Value, nil
	}

	panic("unreachable")
}

func (s *BitStruct) checkLayout() error {
	totalBits := utils.Accumulate(s.fields, func(f *StructField) int { return f.Field.NumBits() })

	if totalBits%utils.BitsPerByte != 0 {
		return utils.MakeError(ErrNotByteAligned, "bit struct '%v' covers %v bits", s.Name, totalBits)
	}

	for _, field := range s.fields {
		for _, piece := range field.Field.Pieces {
			if piece.Byte+1 > s.numBytes {
				s.numBytes = piece.Byte + 1
			}
		}
	}

	if s.numBytes > maxStructBytes {
		return utils.MakeError(ErrStructTooWide, "bit struct '%v' spans %v bytes", s.Name, s.numBytes)
	}

	// Pairwise interval check over every included field's pieces
	for i, a := range s.fields {
		for _, b := range s.fields[i+1:] {
			if err := checkOverlap(a.Field, b.Field, s.Name); err != nil {
				return err
			}
		}
	}

	return nil
}

func checkOverlap(a *Field, b *Field, structName string) error {
	for _, pa := range a.Pieces {
		for _, pb := range b.Pieces {
			aFirst, aPast := pa.FirstBit(), pa.FirstBit()+pa.Range.Size
			bFirst, bPast := pb.FirstBit(), pb.FirstBit()+pb.Range.Size

			if aFirst < bPast && bFirst < aPast {
				return utils.MakeError(ErrFieldOverlap, "fields '%v' and '%v' of bit struct '%v' share bits", a.Name, b.Name, structName)
			}
		}
	}

	return nil
}

func (s *BitStruct) deriveExact() {
	for _, field := range s.fields {
		mask := fieldMask64(field.Field)
		s.fieldMask |= mask

		if field.Fixed != nil {
			s.exactMask |= mask
			s.exactValue |= depositField64(field.Field, *field.Fixed)
		}
	}
}

func fieldMask64(f *Field) uint64 {
	var mask uint64

	for _, piece := range f.Pieces {
		mask |= piece.Range.Mask() << utils.Bits(piece.Byte)
	}

	return mask
}

func depositField64(f *Field, value uint64) uint64 {
	var raw uint64
	n := 0

	for _, piece := range f.Pieces {
		raw |= ((value >> n) & piece.Range.SizeMask()) << (utils.Bits(piece.Byte) + piece.Range.Start)
		n += piece.Range.Size
	}

	return raw
}

// Struct members in mapping order
func (s *BitStruct) Fields() []*StructField {
	return s.fields
}

// Returns a struct member by field name
func (s *BitStruct) StructField(name string) (*StructField, error) {
	if field, found := s.byName[name]; found {
		return field, nil
	}

	return nil, utils.MakeError(ErrUnknownField, "'%v' in bit struct '%v'", name, s.Name)
}

// Size of the packed struct in bytes
func (s *BitStruct) NumBytes() int {
	return s.numBytes
}

// Mask of the bits pinned by literals and reserved values, as a little
// endian 64 bit word
func (s *BitStruct) ExactMask() uint64 {
	return s.exactMask
}

// Expected value under ExactMask identifying this struct in raw bits
func (s *BitStruct) ExactValue() uint64 {
	return s.exactValue
}

// Union of every included field's bits, fixed and pass-through alike
func (s *BitStruct) FieldMask() uint64 {
	return s.fieldMask
}

// Packs the supplied field values into a fresh byte buffer. Pass-through
// members take their value from the values map, keyed by field name and
// given in the decoded domain; pinned members pack their literal. Field
// application order does not matter: ranges are disjoint by construction.
func (s *BitStruct) Pack(values map[string]uint64) ([]byte, error) {
	buffer := make([]byte, s.numBytes)
	view := utils.CreateByteView(buffer)

	for _, field := range s.fields {
		var encoded uint64

		if field.Fixed != nil {
			encoded = *field.Fixed
		} else {
			value, supplied := values[field.Field.Name]

			if !supplied {
				return nil, utils.MakeError(ErrMissingValue, "field '%v' of bit struct '%v'", field.Field.Name, s.Name)
			}

			var err error
			encoded, err = field.Field.Type.EncodeValue(value)

			if err != nil {
				return nil, utils.MakeError(err, "field '%v' of bit struct '%v'", field.Field.Name, s.Name)
			}
		}

		field.Field.deposit(encoded, view)
	}

	return buffer, nil
}

// Extracts one member's bits out of a packed buffer and maps them back to
// the decoded domain
func (s *BitStruct) Extract(fieldName string, buffer []byte) (uint64, error) {
	field, err := s.StructField(fieldName)

	if err != nil {
		return 0, err
	}

	return field.Field.Type.DecodeValue(field.Field.Extract(buffer)), nil
}
