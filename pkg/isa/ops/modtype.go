// Package ops implements the operation catalog of the ISA description
// framework: symbolic operations with typed operand slots, op-level and
// reference-level modifiers, and the operand references instructions carry.
package ops

import (
	"github.com/Manu343726/escarabajo/pkg/isa/types"
)

// A typed modifier attribute. The same mod type can be attached to whole
// operations (op mods) or to individual operand references (ref mods).
type ModType struct {
	// Modifier name, e.g. "sat" or "neg"
	Name string
	// Value type: bool, uint or enum
	Type *types.FieldType
	// Value the modifier holds when never set
	Default uint64
	// The modifier is cleared back to its default once a header mapping
	// consumes it, so it is not applied twice when the same instruction
	// feeds several encodings
	UnsetOnConsume bool
}

// Declares a boolean modifier defaulting to false
func BoolMod(name string) *ModType {
	return &ModType{Name: name, Type: types.Bool()}
}

// Declares an unsigned integer modifier
func UintMod(name string, fieldType *types.FieldType, defaultValue uint64) *ModType {
	return &ModType{Name: name, Type: fieldType, Default: defaultValue}
}

// Declares an enum modifier
func EnumMod(name string, enum *types.Enum, defaultElem string) (*ModType, error) {
	elem, err := enum.Elem(defaultElem)

	if err != nil {
		return nil, err
	}

	return &ModType{Name: name, Type: types.EnumField(enum), Default: elem.Value}, nil
}
