package encoding

import (
	"fmt"

	"github.com/Manu343726/escarabajo/pkg/isa/ops"
)

// Comparison operator of a guard condition
type CmpOp int

const (
	Cmp_Eq CmpOp = iota
	Cmp_Ne
	Cmp_Le
)

func (op CmpOp) holds(left uint64, right uint64) bool {
	switch op {
	case Cmp_Eq:
		return left == right
	case Cmp_Ne:
		return left != right
	case Cmp_Le:
		return left <= right
	}

	panic("unreachable")
}

func (op CmpOp) String() string {
	switch op {
	case Cmp_Eq:
		return "=="
	case Cmp_Ne:
		return "!="
	case Cmp_Le:
		return "<="
	}

	panic("unreachable")
}

// A runtime-evaluable condition over an instruction's modifier state. All
// guards of a variant must hold for the variant to apply.
type Guard struct {
	// Modifier compared
	Mod *ops.ModType
	// Operand slot the modifier is read off, nil for op-level modifiers
	Slot *OperandSlot
	// Comparison
	Cmp CmpOp
	// Right-hand constant
	Value uint64
}

// Guards an op-level modifier being equal to a value
func ModEq(mod *ops.ModType, value uint64) Guard {
	return Guard{Mod: mod, Cmp: Cmp_Eq, Value: value}
}

// Guards an op-level modifier being unset (boolean false / zero)
func ModUnset(mod *ops.ModType) Guard {
	return Guard{Mod: mod, Cmp: Cmp_Eq, Value: 0}
}

// Guards an op-level modifier being at most a value
func ModLe(mod *ops.ModType, value uint64) Guard {
	return Guard{Mod: mod, Cmp: Cmp_Le, Value: value}
}

// Guards a reference-level modifier on one operand slot being equal to a value
func RefModEq(mod *ops.ModType, slot OperandSlot, value uint64) Guard {
	return Guard{Mod: mod, Slot: &slot, Cmp: Cmp_Eq, Value: value}
}

// Guards a reference-level modifier on one operand slot being unset
func RefModUnset(mod *ops.ModType, slot OperandSlot) Guard {
	return Guard{Mod: mod, Slot: &slot, Cmp: Cmp_Eq, Value: 0}
}

func (g Guard) holds(instr *ops.Instr) (bool, error) {
	var value uint64

	if g.Slot != nil {
		ref, err := g.Slot.ref(instr)

		if err != nil {
			return false, err
		}

		value = ref.Mod(g.Mod)
	} else {
		value = instr.Mod(g.Mod)
	}

	return g.Cmp.holds(value, g.Value), nil
}

func (g Guard) String() string {
	if g.Slot != nil {
		return fmt.Sprintf("%v@%v %v %v", g.Mod.Name, g.Slot, g.Cmp, g.Value)
	}

	return fmt.Sprintf("%v %v %v", g.Mod.Name, g.Cmp, g.Value)
}
