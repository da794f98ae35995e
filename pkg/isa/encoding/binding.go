// Package encoding implements the encode path of the ISA description
// framework: declarative bindings from operation state to bit struct fields,
// guarded encoding variants selected first-match, and instruction group
// mappings that bundle several operations into one instruction word.
package encoding

import (
	"errors"
	"fmt"

	"github.com/Manu343726/escarabajo/pkg/isa/ops"
	"github.com/Manu343726/escarabajo/pkg/isa/types"
	"github.com/Manu343726/escarabajo/pkg/utils"
)

var (
	ErrBadBinding    = errors.New("invalid field binding")
	ErrMissingMap    = errors.New("no enum map registered between modifier and field enums")
	ErrNullOperand   = errors.New("operand reference is null")
	ErrNoSuchOperand = errors.New("operand slot out of range")
)

// Addresses one operand slot of an instruction
type OperandSlot struct {
	IsDest bool
	Index  int
}

// The n-th destination slot
func Dest(index int) OperandSlot {
	return OperandSlot{IsDest: true, Index: index}
}

// The n-th source slot
func Src(index int) OperandSlot {
	return OperandSlot{IsDest: false, Index: index}
}

func (s OperandSlot) ref(instr *ops.Instr) (ops.Ref, error) {
	operands := instr.Srcs
	if s.IsDest {
		operands = instr.Dests
	}

	if s.Index >= len(operands) {
		return ops.Ref{}, utils.MakeError(ErrNoSuchOperand, "%v of op '%v'", s, instr.Op.Name)
	}

	return operands[s.Index], nil
}

func (s OperandSlot) String() string {
	if s.IsDest {
		return fmt.Sprintf("dest[%v]", s.Index)
	}

	return fmt.Sprintf("src[%v]", s.Index)
}

// A pure accessor deriving a field value from an operand reference, e.g.
// "is this reference null" or "the immediate value carried by the reference"
type DerivedFn func(ops.Ref) (uint64, error)

// Derives 1 when the reference is not null
func RefNotNull(ref ops.Ref) (uint64, error) {
	if ref.IsNull() {
		return 0, nil
	}

	return 1, nil
}

// Derives the raw value carried by the reference
func RefValue(ref ops.Ref) (uint64, error) {
	if ref.IsNull() {
		return 0, utils.MakeError(ErrNullOperand, "while deriving a field value")
	}

	return ref.Value, nil
}

// How several boolean op mods combine into one field
type CombineOp int

const (
	Combine_Or CombineOp = iota
	Combine_And
)

// A field binding: where one bit struct field takes its value from when an
// instruction is encoded. The set of binding shapes is closed; every shape
// is resolved and validated once at table build time so the pack path never
// dispatches on names.
type Binding interface {
	evaluate(instr *ops.Instr) (uint64, error)
}

// Pins the field to a constant in the decoded domain
type Literal struct {
	Value uint64
}

func (b Literal) evaluate(*ops.Instr) (uint64, error) {
	return b.Value, nil
}

// Takes the field value from an op-level modifier, optionally translated
// through an enum map when the modifier's semantic enum differs from the
// field's hardware enum
type FromOpMod struct {
	Mod *ops.ModType

	enumMap *types.EnumMap
}

func (b *FromOpMod) evaluate(instr *ops.Instr) (uint64, error) {
	value := instr.Mod(b.Mod)

	if b.enumMap != nil {
		return b.enumMap.Apply(value)
	}

	return value, nil
}

// Takes the field value from a reference-level modifier of one operand slot
type FromRefMod struct {
	Mod  *ops.ModType
	Slot OperandSlot

	enumMap *types.EnumMap
}

func (b *FromRefMod) evaluate(instr *ops.Instr) (uint64, error) {
	ref, err := b.Slot.ref(instr)

	if err != nil {
		return 0, err
	}

	value := ref.Mod(b.Mod)

	if b.enumMap != nil {
		return b.enumMap.Apply(value)
	}

	return value, nil
}

// Combines several boolean op mods into one boolean field
type BoolCombine struct {
	Op   CombineOp
	Mods []*ops.ModType
}

func (b *BoolCombine) evaluate(instr *ops.Instr) (uint64, error) {
	result := b.Op == Combine_And

	for _, mod := range b.Mods {
		set := instr.Mod(mod) != 0

		if b.Op == Combine_And {
			result = result && set
		} else {
			result = result || set
		}
	}

	if result {
		return 1, nil
	}

	return 0, nil
}

// Derives the field value by applying an accessor to one operand slot
type Derived struct {
	Fn   DerivedFn
	Slot OperandSlot
}

func (b *Derived) evaluate(instr *ops.Instr) (uint64, error) {
	ref, err := b.Slot.ref(instr)

	if err != nil {
		return 0, err
	}

	return b.Fn(ref)
}
