package encoding

import (
	"errors"

	"github.com/Manu343726/escarabajo/pkg/isa/bitset"
	"github.com/Manu343726/escarabajo/pkg/isa/ops"
	"github.com/Manu343726/escarabajo/pkg/isa/types"
	"github.com/Manu343726/escarabajo/pkg/utils"
)

var (
	ErrBadPhase      = errors.New("invalid group phase")
	ErrBadLengthField = errors.New("group length field is not a pass-through header field")
)

type phaseRefKind int

const (
	phaseRefNone phaseRefKind = iota
	phaseRefDest
	phaseRefSrc
	phaseRefChannel
)

// Routes one operand of a phase operation: either taken from the group
// instruction's architectural operands or redirected to an internal
// forwarding channel between phases
type PhaseRef struct {
	kind    phaseRefKind
	index   int
	channel uint64
}

// The phase operand is the group instruction's n-th destination
func TakeDest(index int) PhaseRef {
	return PhaseRef{kind: phaseRefDest, index: index}
}

// The phase operand is the group instruction's n-th source
func TakeSrc(index int) PhaseRef {
	return PhaseRef{kind: phaseRefSrc, index: index}
}

// The phase operand is redirected to an internal forwarding channel
func Forward(channel uint64) PhaseRef {
	return PhaseRef{kind: phaseRefChannel, channel: channel}
}

// The phase operand is absent
func NoRef() PhaseRef {
	return PhaseRef{kind: phaseRefNone}
}

func (r PhaseRef) resolve(group *ops.Instr) (ops.Ref, error) {
	switch r.kind {
	case phaseRefNone:
		return ops.NullRef(), nil
	case phaseRefDest:
		return Dest(r.index).ref(group)
	case phaseRefSrc:
		return Src(r.index).ref(group)
	case phaseRefChannel:
		return ops.ChannelRef(r.channel), nil
	}

	panic("unreachable")
}

// Assigns a value to one op mod of a phase operation, copied from a group
// instruction mod or pinned to a literal
type PhaseModAssign struct {
	// Modifier on the phase operation
	Mod *ops.ModType
	// Group instruction modifier to copy, nil to use Value
	FromMod *ops.ModType
	// Literal value when FromMod is nil
	Value uint64
}

// One populated phase slot of an instruction group
type GroupPhase struct {
	// Phase name, e.g. "0", "1", "2_tst", "backend", "ctrl"
	Name string
	// Encoding of the operation filling this phase
	Encoding *Encoding
	// Operand routing for the phase op's destinations
	Dests []PhaseRef
	// Operand routing for the phase op's sources
	Srcs []PhaseRef
	// Mod assignments for the phase op
	Mods []PhaseModAssign
}

// Declares a group mapping: a header bit struct whose fields bind exactly
// like encoding variant fields, plus the per-phase operation encodings
// packed after it into one physical instruction
type GroupSpec struct {
	Header         *bitset.BitStruct
	HeaderBindings []FieldBinding
	// Header field receiving the total group byte count, set after the
	// phase layout is known; empty if the header has no length field
	LengthField string
	Phases      []GroupPhase
}

// Bundles several operations into one instruction word: a header followed
// by one encoded operation per populated phase
type GroupEncoding struct {
	// The grouped operation this mapping covers
	Op *ops.Operation
	// Header bit struct
	Header *bitset.BitStruct

	lengthField string
	bound       []boundField
	phases      []GroupPhase
}

// Builds a group mapping. Every pass-through header field except the length
// field must be bound; each phase needs an encoding and operand routing
// matching its operation's arity.
func NewGroupEncoding(registry *types.Registry, op *ops.Operation, spec GroupSpec) (*GroupEncoding, error) {
	g := &GroupEncoding{
		Op:          op,
		Header:      spec.Header,
		lengthField: spec.LengthField,
		phases:      spec.Phases,
	}

	if spec.LengthField != "" {
		lengthField, err := spec.Header.StructField(spec.LengthField)

		if err != nil || lengthField.Fixed != nil {
			return nil, utils.MakeError(ErrBadLengthField, "'%v' in group mapping of op '%v'", spec.LengthField, op.Name)
		}
	}

	bound := make(map[string]bool, len(spec.HeaderBindings))

	for _, fieldBinding := range spec.HeaderBindings {
		structField, err := spec.Header.StructField(fieldBinding.Field)

		if err != nil {
			return nil, utils.MakeError(ErrUnknownField, "'%v' in group mapping of op '%v': %v", fieldBinding.Field, op.Name, err)
		}

		if structField.Fixed != nil {
			return nil, utils.MakeError(ErrBadBinding, "header field '%v' of group mapping of op '%v' is pinned, it cannot be bound", fieldBinding.Field, op.Name)
		}

		binding, err := resolveBinding(registry, op, structField, fieldBinding.Binding)

		if err != nil {
			return nil, err
		}

		g.bound = append(g.bound, boundField{field: structField, binding: binding})
		bound[fieldBinding.Field] = true
	}

	for _, structField := range spec.Header.Fields() {
		name := structField.Field.Name

		if structField.Fixed == nil && !bound[name] && name != spec.LengthField {
			return nil, utils.MakeError(ErrUnboundField, "header field '%v' in group mapping of op '%v'", name, op.Name)
		}
	}

	if len(spec.Phases) == 0 {
		return nil, utils.MakeError(ErrBadPhase, "group mapping of op '%v' has no phases", op.Name)
	}

	return g, nil
}

// Phases in packing order
func (g *GroupEncoding) Phases() []GroupPhase {
	return g.phases
}

// Encodes a grouped instruction: evaluates the header bindings, clears
// consumed modifiers back to their defaults so the phase encodings see them
// unset, encodes every phase through its own variant selection, fills the
// header length field with the total byte count and concatenates header and
// phase bytes
func (g *GroupEncoding) Encode(instr *ops.Instr) ([]byte, error) {
	values := make(map[string]uint64, len(g.bound)+1)

	for _, b := range g.bound {
		value, err := b.binding.evaluate(instr)

		if err != nil {
			return nil, utils.MakeError(ErrEncoding, "header field '%v' of group '%v': %v", b.field.Field.Name, g.Op.Name, err)
		}

		values[b.field.Field.Name] = value
	}

	for _, b := range g.bound {
		if fromMod, isOpMod := b.binding.(*FromOpMod); isOpMod && fromMod.Mod.UnsetOnConsume {
			instr.UnsetMod(fromMod.Mod)
		}
	}

	var phaseBytes [][]byte
	total := g.Header.NumBytes()

	for _, phase := range g.phases {
		encoded, err := g.encodePhase(phase, instr)

		if err != nil {
			return nil, err
		}

		phaseBytes = append(phaseBytes, encoded)
		total += len(encoded)
	}

	if g.lengthField != "" {
		values[g.lengthField] = uint64(total)
	}

	header, err := g.Header.Pack(values)

	if err != nil {
		return nil, utils.MakeError(ErrEncoding, "header of group '%v': %v", g.Op.Name, err)
	}

	buffer := header
	for _, encoded := range phaseBytes {
		buffer = append(buffer, encoded...)
	}

	return buffer, nil
}

func (g *GroupEncoding) encodePhase(phase GroupPhase, group *ops.Instr) ([]byte, error) {
	dests, err := resolvePhaseRefs(phase.Dests, group)

	if err != nil {
		return nil, utils.MakeError(ErrBadPhase, "'%v' of group '%v': %v", phase.Name, g.Op.Name, err)
	}

	srcs, err := resolvePhaseRefs(phase.Srcs, group)

	if err != nil {
		return nil, utils.MakeError(ErrBadPhase, "'%v' of group '%v': %v", phase.Name, g.Op.Name, err)
	}

	phaseInstr, err := ops.NewInstr(phase.Encoding.Op, dests, srcs)

	if err != nil {
		return nil, utils.MakeError(ErrBadPhase, "'%v' of group '%v': %v", phase.Name, g.Op.Name, err)
	}

	for _, assign := range phase.Mods {
		value := assign.Value

		if assign.FromMod != nil {
			value = group.Mod(assign.FromMod)
		}

		if err := phaseInstr.SetMod(assign.Mod, value); err != nil {
			return nil, utils.MakeError(ErrBadPhase, "'%v' of group '%v': %v", phase.Name, g.Op.Name, err)
		}
	}

	return phase.Encoding.Encode(phaseInstr)
}

func resolvePhaseRefs(refs []PhaseRef, group *ops.Instr) ([]ops.Ref, error) {
	resolved := make([]ops.Ref, len(refs))

	for i, ref := range refs {
		r, err := ref.resolve(group)

		if err != nil {
			return nil, err
		}

		resolved[i] = r
	}

	return resolved, nil
}
