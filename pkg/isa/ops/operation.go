package ops

import (
	"errors"

	"github.com/Manu343726/escarabajo/pkg/utils"
)

var (
	ErrBadOperandCount = errors.New("wrong number of operands")
	ErrBadRefMod       = errors.New("modifier not permitted on this operand slot")
	ErrBadOpMod        = errors.New("modifier not declared by this operation")
)

// Operand arity marker for operations taking a caller-defined number of
// operands
const VariableOperands = -1

// A symbolic operation: name, operand arity, the op-level modifiers it
// accepts and the reference-level modifiers each operand slot accepts
type Operation struct {
	// Operation name, also its mnemonic
	Name string
	// Number of destination operands, or VariableOperands
	NumDests int
	// Number of source operands, or VariableOperands
	NumSrcs int
	// Op-level modifiers, applied once per operation
	OpMods []*ModType
	// Permissible reference-level modifiers per destination slot
	DestRefMods [][]*ModType
	// Permissible reference-level modifiers per source slot
	SrcRefMods [][]*ModType
}

// Reports whether the operation declares the given op-level modifier
func (o *Operation) HasOpMod(mod *ModType) bool {
	for _, m := range o.OpMods {
		if m == mod {
			return true
		}
	}

	return false
}

func (o *Operation) refModsAllowed(slotMods [][]*ModType, slot int, ref Ref) error {
	for _, mod := range ref.SetMods() {
		allowed := false

		if slot < len(slotMods) {
			for _, m := range slotMods[slot] {
				if m == mod {
					allowed = true
					break
				}
			}
		}

		if !allowed {
			return utils.MakeError(ErrBadRefMod, "'%v' on operand %v of op '%v'", mod.Name, slot, o.Name)
		}
	}

	return nil
}
