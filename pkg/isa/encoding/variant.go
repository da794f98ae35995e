package encoding

import (
	"errors"

	"github.com/Manu343726/escarabajo/pkg/isa/bitset"
	"github.com/Manu343726/escarabajo/pkg/isa/ops"
	"github.com/Manu343726/escarabajo/pkg/isa/types"
	"github.com/Manu343726/escarabajo/pkg/utils"
)

var (
	ErrUnboundField    = errors.New("bit struct field left unbound")
	ErrUnknownField    = errors.New("binding names a field the bit struct does not have")
	ErrDefaultGuarded  = errors.New("the default (first) variant cannot carry guards")
	ErrVariantUnguarded = errors.New("non-default variants must carry at least one guard")
	ErrNoVariants      = errors.New("an encoding needs at least one variant")
	ErrEncoding        = errors.New("encoding error")
)

// Binds one bit struct field of a variant to a value source
type FieldBinding struct {
	Field   string
	Binding Binding
}

// Declares one encoding variant: a bit struct, a binding per pass-through
// struct field, and the guard conditions under which the variant applies
type VariantSpec struct {
	Struct   *bitset.BitStruct
	Bindings []FieldBinding
	Guards   []Guard
}

type boundField struct {
	field   *bitset.StructField
	binding Binding
}

// One candidate encoding of an operation, fully resolved
type Variant struct {
	// The bit struct this variant packs through
	Struct *bitset.BitStruct
	// Guard conditions; empty only for the default variant
	Guards []Guard

	bound []boundField
}

// Evaluates every binding against an instruction and packs the variant
func (v *Variant) pack(instr *ops.Instr) ([]byte, error) {
	values := make(map[string]uint64, len(v.bound))

	for _, b := range v.bound {
		value, err := b.binding.evaluate(instr)

		if err != nil {
			return nil, utils.MakeError(err, "field '%v' of bit struct '%v'", b.field.Field.Name, v.Struct.Name)
		}

		values[b.field.Field.Name] = value
	}

	return v.Struct.Pack(values)
}

// The complete encode mapping of one operation: an ordered list of variants,
// index 0 being the guard-free default
type Encoding struct {
	// The operation this encoding covers
	Op *ops.Operation

	variants []*Variant
}

// Builds an encoding. Every pass-through field of every variant's bit struct
// must be bound exactly once; op-mod bindings must name modifiers the
// operation declares, and enum op mods feeding a differently-typed enum
// field must have an enum map registered. The first variant carries no
// guards, all the others carry at least one.
func NewEncoding(registry *types.Registry, op *ops.Operation, specs []VariantSpec) (*Encoding, error) {
	if len(specs) == 0 {
		return nil, utils.MakeError(ErrNoVariants, "op '%v'", op.Name)
	}

	e := &Encoding{Op: op}

	for i, spec := range specs {
		if i == 0 && len(spec.Guards) > 0 {
			return nil, utils.MakeError(ErrDefaultGuarded, "op '%v', bit struct '%v'", op.Name, spec.Struct.Name)
		}

		if i > 0 && len(spec.Guards) == 0 {
			return nil, utils.MakeError(ErrVariantUnguarded, "op '%v', bit struct '%v'", op.Name, spec.Struct.Name)
		}

		variant, err := resolveVariant(registry, op, spec)

		if err != nil {
			return nil, err
		}

		e.variants = append(e.variants, variant)
	}

	return e, nil
}

func resolveVariant(registry *types.Registry, op *ops.Operation, spec VariantSpec) (*Variant, error) {
	variant := &Variant{
		Struct: spec.Struct,
		Guards: spec.Guards,
	}

	bound := make(map[string]bool, len(spec.Bindings))

	for _, fieldBinding := range spec.Bindings {
		structField, err := spec.Struct.StructField(fieldBinding.Field)

		if err != nil {
			return nil, utils.MakeError(ErrUnknownField, "'%v' in encoding of op '%v': %v", fieldBinding.Field, op.Name, err)
		}

		if structField.Fixed != nil {
			return nil, utils.MakeError(ErrBadBinding, "field '%v' of bit struct '%v' is pinned, it cannot be bound", fieldBinding.Field, spec.Struct.Name)
		}

		binding, err := resolveBinding(registry, op, structField, fieldBinding.Binding)

		if err != nil {
			return nil, err
		}

		variant.bound = append(variant.bound, boundField{field: structField, binding: binding})
		bound[fieldBinding.Field] = true
	}

	for _, structField := range spec.Struct.Fields() {
		if structField.Fixed == nil && !bound[structField.Field.Name] {
			return nil, utils.MakeError(ErrUnboundField, "'%v' of bit struct '%v' in encoding of op '%v'", structField.Field.Name, spec.Struct.Name, op.Name)
		}
	}

	for _, guard := range spec.Guards {
		if guard.Slot == nil && !op.HasOpMod(guard.Mod) {
			return nil, utils.MakeError(ops.ErrBadOpMod, "guard '%v' of op '%v'", guard, op.Name)
		}
	}

	return variant, nil
}

func resolveBinding(registry *types.Registry, op *ops.Operation, structField *bitset.StructField, binding Binding) (Binding, error) {
	fieldType := structField.Field.Type

	switch b := binding.(type) {
	case *FromOpMod:
		if !op.HasOpMod(b.Mod) {
			return nil, utils.MakeError(ops.ErrBadOpMod, "binding of field '%v'", structField.Field.Name)
		}

		enumMap, err := lookupEnumMap(registry, b.Mod, fieldType, true)

		if err != nil {
			return nil, utils.MakeError(err, "binding of field '%v'", structField.Field.Name)
		}

		return &FromOpMod{Mod: b.Mod, enumMap: enumMap}, nil

	case *FromRefMod:
		// Enum maps are optional for ref mods, unlike op mods
		enumMap, err := lookupEnumMap(registry, b.Mod, fieldType, false)

		if err != nil {
			return nil, utils.MakeError(err, "binding of field '%v'", structField.Field.Name)
		}

		return &FromRefMod{Mod: b.Mod, Slot: b.Slot, enumMap: enumMap}, nil

	case *BoolCombine:
		if len(b.Mods) < 2 {
			return nil, utils.MakeError(ErrBadBinding, "boolean combination over %v modifier(s) on field '%v'", len(b.Mods), structField.Field.Name)
		}

		if fieldType.Kind != types.Kind_Bool {
			return nil, utils.MakeError(ErrBadBinding, "boolean combination bound to non-boolean field '%v'", structField.Field.Name)
		}

		for _, mod := range b.Mods {
			if mod.Type.Kind != types.Kind_Bool {
				return nil, utils.MakeError(ErrBadBinding, "non-boolean modifier '%v' in boolean combination on field '%v'", mod.Name, structField.Field.Name)
			}

			if !op.HasOpMod(mod) {
				return nil, utils.MakeError(ops.ErrBadOpMod, "modifier '%v' in boolean combination on field '%v'", mod.Name, structField.Field.Name)
			}
		}

		return b, nil

	case Literal, *Derived:
		return binding, nil
	}

	return nil, utils.MakeError(ErrBadBinding, "unknown binding shape on field '%v'", structField.Field.Name)
}

// Resolves the enum map between a modifier's enum and a field's enum.
// Identity (same enum, or the field is a subtype of the modifier's enum)
// needs no map; otherwise a registered map is required when required is set.
func lookupEnumMap(registry *types.Registry, mod *ops.ModType, fieldType *types.FieldType, required bool) (*types.EnumMap, error) {
	if fieldType.Kind != types.Kind_Enum || mod.Type.Kind != types.Kind_Enum {
		return nil, nil
	}

	modEnum := mod.Type.Enum
	fieldEnum := fieldType.Enum

	if modEnum == fieldEnum || fieldEnum.Root() == modEnum.Root() {
		return nil, nil
	}

	if enumMap, found := registry.EnumMapFor(modEnum, fieldEnum.Root()); found {
		return enumMap, nil
	}

	if required {
		return nil, utils.MakeError(ErrMissingMap, "'%v' -> '%v'", modEnum.Name, fieldEnum.Name)
	}

	return nil, nil
}

// Variants in declaration order; index 0 is the default
func (e *Encoding) Variants() []*Variant {
	return e.variants
}

// Picks the encoding variant for an instruction: guarded variants are
// evaluated in declaration order and the first whose guard conjunction holds
// wins; when none holds the default applies. Pure and total: exactly one
// outcome per instruction, no backtracking.
func (e *Encoding) Select(instr *ops.Instr) (*Variant, error) {
	for _, variant := range e.variants[1:] {
		matched := true

		for _, guard := range variant.Guards {
			holds, err := guard.holds(instr)

			if err != nil {
				return nil, err
			}

			if !holds {
				matched = false
				break
			}
		}

		if matched {
			return variant, nil
		}
	}

	return e.variants[0], nil
}

// Encodes an instruction into packed bytes through its selected variant
func (e *Encoding) Encode(instr *ops.Instr) ([]byte, error) {
	variant, err := e.Select(instr)

	if err != nil {
		return nil, utils.MakeError(ErrEncoding, "op '%v': %v", e.Op.Name, err)
	}

	buffer, err := variant.pack(instr)

	if err != nil {
		return nil, utils.MakeError(ErrEncoding, "op '%v', bit struct '%v': %v", e.Op.Name, variant.Struct.Name, err)
	}

	return buffer, nil
}
