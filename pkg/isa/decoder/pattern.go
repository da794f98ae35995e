package decoder

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Manu343726/escarabajo/pkg/isa/bitset"
	"github.com/Manu343726/escarabajo/pkg/isa/types"
	"github.com/Manu343726/escarabajo/pkg/utils"
)

var (
	ErrBadPattern = errors.New("invalid decode pattern")
)

// One renderable operand of a decode pattern
type Operand struct {
	// Field holding the operand value
	Field string
	// Printed before the value, e.g. "r" for registers, "#" for immediates
	Prefix string
	// When non-nil, the operand is omitted if its decoded value equals this
	Omit *uint64
}

func Reg(field string) Operand {
	return Operand{Field: field, Prefix: "r"}
}

func Imm(field string) Operand {
	return Operand{Field: field, Prefix: "#"}
}

// A modifier field of a decode pattern, omitted from the rendered text when
// its decoded value equals the default
type Mod struct {
	Field   string
	Default uint64
	// When set, boolean and enum mods render as "name" / elem name alone
	// instead of "name=value"
	Bare bool
}

func Flag(field string) Mod {
	return Mod{Field: field, Bare: true}
}

// One decodable instruction form: a bit struct giving the exact mask/value
// pair and the field layout, plus the rendering order of its operands
type Pattern struct {
	// Mnemonic of the rendered instruction
	Name string
	// Bit struct this pattern matches and extracts through
	Struct *bitset.BitStruct

	// When non-empty, the total instruction length is not Struct.NumBytes()
	// but LengthTable indexed by this field's decoded value
	LengthField string
	LengthTable []int

	Dests []Operand
	Srcs  []Operand
	Mods  []Mod
}

func (p *Pattern) validate() error {
	if p.Struct == nil {
		return utils.MakeError(ErrBadPattern, "'%v' has no bit struct", p.Name)
	}

	if p.LengthField != "" {
		if _, err := p.Struct.StructField(p.LengthField); err != nil {
			return utils.MakeError(ErrBadPattern, "'%v': %v", p.Name, err)
		}

		if len(p.LengthTable) == 0 {
			return utils.MakeError(ErrBadPattern, "'%v' has a length field but an empty length table", p.Name)
		}
	}

	for _, operand := range append(append([]Operand{}, p.Dests...), p.Srcs...) {
		if _, err := p.Struct.StructField(operand.Field); err != nil {
			return utils.MakeError(ErrBadPattern, "'%v': %v", p.Name, err)
		}
	}

	for _, mod := range p.Mods {
		if _, err := p.Struct.StructField(mod.Field); err != nil {
			return utils.MakeError(ErrBadPattern, "'%v': %v", p.Name, err)
		}
	}

	return nil
}

// Total byte count of the instruction matched at the given buffer, or an
// error if the length field decodes outside the length table
func (p *Pattern) length(buffer []byte) (int, error) {
	if p.LengthField == "" {
		return p.Struct.NumBytes(), nil
	}

	index, err := p.Struct.Extract(p.LengthField, buffer)

	if err != nil {
		return 0, err
	}

	if index >= uint64(len(p.LengthTable)) {
		return 0, utils.MakeError(ErrBadPattern, "'%v': length selector %v outside length table", p.Name, index)
	}

	return p.LengthTable[index], nil
}

// Renders the matched instruction as "mnemonic dest.., src.., mods..",
// omitting defaulted operands and modifiers
func (p *Pattern) render(buffer []byte) (string, error) {
	var parts []string

	for _, operand := range append(append([]Operand{}, p.Dests...), p.Srcs...) {
		text, omitted, err := p.renderOperand(operand, buffer)

		if err != nil {
			return "", err
		}

		if !omitted {
			parts = append(parts, text)
		}
	}

	for _, mod := range p.Mods {
		text, omitted, err := p.renderMod(mod, buffer)

		if err != nil {
			return "", err
		}

		if !omitted {
			parts = append(parts, text)
		}
	}

	if len(parts) == 0 {
		return p.Name, nil
	}

	return p.Name + " " + strings.Join(parts, ", "), nil
}

func (p *Pattern) renderOperand(operand Operand, buffer []byte) (string, bool, error) {
	structField, err := p.Struct.StructField(operand.Field)

	if err != nil {
		return "", false, err
	}

	value, err := p.Struct.Extract(operand.Field, buffer)

	if err != nil {
		return "", false, err
	}

	if operand.Omit != nil && value == *operand.Omit {
		return "", true, nil
	}

	return operand.Prefix + formatValue(structField.ValueType(), value), false, nil
}

func (p *Pattern) renderMod(mod Mod, buffer []byte) (string, bool, error) {
	structField, err := p.Struct.StructField(mod.Field)

	if err != nil {
		return "", false, err
	}

	value, err := p.Struct.Extract(mod.Field, buffer)

	if err != nil {
		return "", false, err
	}

	if value == mod.Default {
		return "", true, nil
	}

	fieldType := structField.ValueType()

	if mod.Bare {
		switch fieldType.Kind {
		case types.Kind_Bool:
			return mod.Field, false, nil
		case types.Kind_Enum:
			return fieldType.Enum.Format(value), false, nil
		}
	}

	return fmt.Sprintf("%v=%v", mod.Field, formatValue(fieldType, value)), false, nil
}

func formatValue(fieldType *types.FieldType, value uint64) string {
	switch {
	case fieldType.Kind == types.Kind_Enum:
		return fieldType.Enum.Format(value)
	case fieldType.Kind == types.Kind_Bool:
		return strconv.FormatBool(value != 0)
	case fieldType.Signed:
		return strconv.FormatInt(fieldType.SignExtend(value), 10)
	}

	return strconv.FormatUint(value, 10)
}
