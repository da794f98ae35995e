// Package bitset implements the named bit catalogs of the ISA description
// framework: raw bit fragments (pieces) anchored to bytes of an instruction
// word, fields assembled from pieces and interpreted through a field type,
// and the byte-aligned struct projections instructions are packed through.
package bitset

import (
	"errors"

	"github.com/Manu343726/escarabajo/pkg/isa/bits"
	"github.com/Manu343726/escarabajo/pkg/isa/types"
	"github.com/Manu343726/escarabajo/pkg/utils"
)

var (
	ErrDuplicatePiece     = errors.New("duplicate piece name")
	ErrDuplicateField     = errors.New("duplicate field name")
	ErrUnknownPiece       = errors.New("unknown piece name")
	ErrUnknownField       = errors.New("unknown field name")
	ErrFieldWidthMismatch = errors.New("field piece widths do not match the field type width")
)

// A contiguous bit range anchored to a specific byte of a multi-byte
// instruction word
type Piece struct {
	// Piece name, unique within its bit set
	Name string
	// Byte index within the instruction word
	Byte int
	// Bit range within the byte
	Range bits.BitRange
}

// Absolute position of the piece's first bit within the instruction word
func (p *Piece) FirstBit() int {
	return utils.Bits(p.Byte) + p.Range.Start
}

// Declares a piece; the bit spec is "N" or "HI:LO" within one byte
type PieceSpec struct {
	Name string
	Byte int
	Bits string
}

// A named value assembled from one or more pieces, interpreted through one
// field type. Pieces are ordered low-to-high significance.
type Field struct {
	// Field name, unique within its bit set
	Name string
	// Pieces composing the field, low bits first
	Pieces []*Piece
	// Value type of the field
	Type *types.FieldType
	// Fixed value the field always carries, nil if externally supplied
	Reserved *uint64
}

// Total encoded width of the field
func (f *Field) NumBits() int {
	return utils.Accumulate(f.Pieces, func(p *Piece) int { return p.Range.Size })
}

// Extracts the raw field value out of a packed instruction buffer,
// concatenating the piece segments low bits first
func (f *Field) Extract(buffer []byte) uint64 {
	view := utils.CreateByteView(buffer)

	var accum uint64
	n := 0

	for _, piece := range f.Pieces {
		accum |= view.Read(piece.Byte, piece.Range.Start, piece.Range.Size) << n
		n += piece.Range.Size
	}

	return accum
}

// ORs an encoded field value into a packed instruction buffer, spreading it
// over the field's pieces
func (f *Field) deposit(value uint64, view utils.ByteView) {
	n := 0

	for _, piece := range f.Pieces {
		view.Write(value>>n, piece.Byte, piece.Range.Start, piece.Range.Size)
		n += piece.Range.Size
	}
}

// Declares a field over named pieces of the enclosing bit set
type FieldSpec struct {
	Name     string
	Pieces   []string
	Type     *types.FieldType
	Reserved *uint64
}

// The full catalog of pieces and fields available for one
// instruction-encoding family
type BitSet struct {
	// Bit set name
	Name string

	pieces     map[string]*Piece
	fields     map[string]*Field
	fieldOrder []*Field
}

// Builds a bit set. Piece and field names must be unique, every piece a
// field references must exist, and each field's combined piece width must
// equal its field type's width. All violations are table-authoring bugs and
// fail construction.
func New(name string, pieceSpecs []PieceSpec, fieldSpecs []FieldSpec) (*BitSet, error) {
	set := &BitSet{
		Name:   name,
		pieces: make(map[string]*Piece, len(pieceSpecs)),
		fields: make(map[string]*Field, len(fieldSpecs)),
	}

	for _, spec := range pieceSpecs {
		if _, dup := set.pieces[spec.Name]; dup {
			return nil, utils.MakeError(ErrDuplicatePiece, "'%v' in bit set '%v'", spec.Name, name)
		}

		bitRange, err := bits.ParseRange(spec.Bits, utils.BitsPerByte)

		if err != nil {
			return nil, utils.MakeError(err, "piece '%v' of bit set '%v'", spec.Name, name)
		}

		set.pieces[spec.Name] = &Piece{
			Name:  spec.Name,
			Byte:  spec.Byte,
			Range: bitRange,
		}
	}

	for _, spec := range fieldSpecs {
		if _, dup := set.fields[spec.Name]; dup {
			return nil, utils.MakeError(ErrDuplicateField, "'%v' in bit set '%v'", spec.Name, name)
		}

		field := &Field{
			Name:     spec.Name,
			Type:     spec.Type,
			Reserved: spec.Reserved,
		}

		for _, pieceName := range spec.Pieces {
			piece, found := set.pieces[pieceName]

			if !found {
				return nil, utils.MakeError(ErrUnknownPiece, "'%v' referenced by field '%v' of bit set '%v'", pieceName, spec.Name, name)
			}

			field.Pieces = append(field.Pieces, piece)
		}

		if field.NumBits() != spec.Type.NumBits {
			return nil, utils.MakeError(ErrFieldWidthMismatch, "field '%v' of bit set '%v': pieces cover %v bits, type '%v' is %v bits", spec.Name, name, field.NumBits(), spec.Type.Name, spec.Type.NumBits)
		}

		set.fields[spec.Name] = field
		set.fieldOrder = append(set.fieldOrder, field)
	}

	return set, nil
}

// Returns a field by name
func (s *BitSet) Field(name string) (*Field, error) {
	if field, found := s.fields[name]; found {
		return field, nil
	}

	return nil, utils.MakeError(ErrUnknownField, "'%v' in bit set '%v'", name, s.Name)
}

// All fields in declaration order
func (s *BitSet) Fields() []*Field {
	return s.fieldOrder
}
