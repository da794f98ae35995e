package ops

import (
	"strings"

	"github.com/Manu343726/escarabajo/pkg/utils"
)

// One instance of an operation: the operand references and modifier values
// an encoder packs into bits
type Instr struct {
	// The operation being applied
	Op *Operation
	// Destination operand references
	Dests []Ref
	// Source operand references
	Srcs []Ref

	mods map[*ModType]uint64
}

// Builds an instruction instance, validating operand arity and that every
// reference-level modifier set on an operand is permitted on its slot
func NewInstr(op *Operation, dests []Ref, srcs []Ref) (*Instr, error) {
	if op.NumDests != VariableOperands && len(dests) != op.NumDests {
		return nil, utils.MakeError(ErrBadOperandCount, "op '%v' takes %v dests, got %v", op.Name, op.NumDests, len(dests))
	}

	if op.NumSrcs != VariableOperands && len(srcs) != op.NumSrcs {
		return nil, utils.MakeError(ErrBadOperandCount, "op '%v' takes %v srcs, got %v", op.Name, op.NumSrcs, len(srcs))
	}

	for slot, ref := range dests {
		if err := op.refModsAllowed(op.DestRefMods, slot, ref); err != nil {
			return nil, err
		}
	}

	for slot, ref := range srcs {
		if err := op.refModsAllowed(op.SrcRefMods, slot, ref); err != nil {
			return nil, err
		}
	}

	return &Instr{
		Op:    op,
		Dests: dests,
		Srcs:  srcs,
		mods:  make(map[*ModType]uint64),
	}, nil
}

// The value of an op-level modifier, or its default when never set
func (i *Instr) Mod(mod *ModType) uint64 {
	if value, set := i.mods[mod]; set {
		return value
	}

	return mod.Default
}

// Sets an op-level modifier; the modifier must be declared by the operation
func (i *Instr) SetMod(mod *ModType, value uint64) error {
	if !i.Op.HasOpMod(mod) {
		return utils.MakeError(ErrBadOpMod, "'%v' on op '%v'", mod.Name, i.Op.Name)
	}

	i.mods[mod] = value
	return nil
}

// Clears an op-level modifier back to its default. Header mappings call
// this for UnsetOnConsume modifiers once they have packed the value.
func (i *Instr) UnsetMod(mod *ModType) {
	delete(i.mods, mod)
}

func (i *Instr) String() string {
	var builder strings.Builder

	builder.WriteString(i.Op.Name)

	operands := append(append([]Ref{}, i.Dests...), i.Srcs...)

	first := true
	for _, ref := range operands {
		if ref.IsNull() {
			continue
		}

		if first {
			builder.WriteString(" ")
			first = false
		} else {
			builder.WriteString(", ")
		}

		builder.WriteString(ref.Kind.String())
	}

	return builder.String()
}
