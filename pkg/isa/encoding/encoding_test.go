package encoding

import (
	"testing"

	"github.com/Manu343726/escarabajo/pkg/isa/bitset"
	"github.com/Manu343726/escarabajo/pkg/isa/ops"
	"github.com/Manu343726/escarabajo/pkg/isa/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var zero = uint64(0)

// A miniature single-op ISA: "add" with a saturate op mod and a negate ref
// mod on its source, packable through a compact one byte form or an extended
// two byte form carrying the negate bit
type fixture struct {
	registry *types.Registry

	sat *ops.ModType
	neg *ops.ModType

	add *ops.Operation

	cmp *bitset.BitStruct
	ext *bitset.BitStruct
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		registry: types.NewRegistry(),
		sat:      ops.BoolMod("sat"),
		neg:      ops.BoolMod("neg"),
	}

	f.add = &ops.Operation{
		Name:       "add",
		NumSrcs:    1,
		OpMods:     []*ops.ModType{f.sat},
		SrcRefMods: [][]*ops.ModType{{f.neg}},
	}

	set, err := bitset.New("alu",
		[]bitset.PieceSpec{
			{Name: "op_hi", Byte: 0, Bits: "7:4"},
			{Name: "f3", Byte: 0, Bits: "3"},
			{Name: "lo", Byte: 0, Bits: "2:0"},
			{Name: "x0", Byte: 1, Bits: "0"},
			{Name: "x71", Byte: 1, Bits: "7:1"},
		},
		[]bitset.FieldSpec{
			{Name: "opc", Pieces: []string{"op_hi"}, Type: types.Uint("opc", 4)},
			{Name: "sat", Pieces: []string{"f3"}, Type: types.Bool()},
			{Name: "src", Pieces: []string{"lo"}, Type: types.Uint("reg", 3)},
			{Name: "neg", Pieces: []string{"x0"}, Type: types.Bool()},
			{Name: "pad", Pieces: []string{"x71"}, Type: types.Uint("u7", 7), Reserved: &zero},
		})
	require.NoError(t, err)

	f.cmp, err = bitset.NewStruct("add_cmp", set, []bitset.FieldMapping{
		bitset.FixedUint("opc", 1),
		bitset.Pass("sat"),
		bitset.Pass("src"),
	})
	require.NoError(t, err)

	f.ext, err = bitset.NewStruct("add_ext", set, []bitset.FieldMapping{
		bitset.FixedUint("opc", 2),
		bitset.Pass("sat"),
		bitset.Pass("src"),
		bitset.Pass("neg"),
		bitset.Pass("pad"),
	})
	require.NoError(t, err)

	return f
}

func (f *fixture) encoding(t *testing.T) *Encoding {
	e, err := NewEncoding(f.registry, f.add, []VariantSpec{
		{
			Struct: f.ext,
			Bindings: []FieldBinding{
				{Field: "sat", Binding: &FromOpMod{Mod: f.sat}},
				{Field: "src", Binding: &Derived{Fn: RefValue, Slot: Src(0)}},
				{Field: "neg", Binding: &FromRefMod{Mod: f.neg, Slot: Src(0)}},
			},
		},
		{
			Struct: f.cmp,
			Bindings: []FieldBinding{
				{Field: "sat", Binding: &FromOpMod{Mod: f.sat}},
				{Field: "src", Binding: &Derived{Fn: RefValue, Slot: Src(0)}},
			},
			Guards: []Guard{RefModUnset(f.neg, Src(0))},
		},
	})
	require.NoError(t, err)

	return e
}

func TestNewEncoding_NeedsVariants(t *testing.T) {
	f := newFixture(t)

	_, err := NewEncoding(f.registry, f.add, nil)
	assert.ErrorIs(t, err, ErrNoVariants)
}

func TestNewEncoding_DefaultVariantCannotBeGuarded(t *testing.T) {
	f := newFixture(t)

	_, err := NewEncoding(f.registry, f.add, []VariantSpec{
		{
			Struct: f.cmp,
			Bindings: []FieldBinding{
				{Field: "sat", Binding: &FromOpMod{Mod: f.sat}},
				{Field: "src", Binding: &Derived{Fn: RefValue, Slot: Src(0)}},
			},
			Guards: []Guard{ModUnset(f.sat)},
		},
	})
	assert.ErrorIs(t, err, ErrDefaultGuarded)
}

func TestNewEncoding_NonDefaultVariantsNeedGuards(t *testing.T) {
	f := newFixture(t)

	bindings := []FieldBinding{
		{Field: "sat", Binding: &FromOpMod{Mod: f.sat}},
		{Field: "src", Binding: &Derived{Fn: RefValue, Slot: Src(0)}},
	}

	_, err := NewEncoding(f.registry, f.add, []VariantSpec{
		{Struct: f.cmp, Bindings: bindings},
		{Struct: f.cmp, Bindings: bindings},
	})
	assert.ErrorIs(t, err, ErrVariantUnguarded)
}

func TestNewEncoding_AllPassThroughFieldsMustBeBound(t *testing.T) {
	f := newFixture(t)

	_, err := NewEncoding(f.registry, f.add, []VariantSpec{
		{
			Struct: f.cmp,
			Bindings: []FieldBinding{
				{Field: "sat", Binding: &FromOpMod{Mod: f.sat}},
			},
		},
	})
	assert.ErrorIs(t, err, ErrUnboundField)
}

func TestNewEncoding_PinnedFieldsCannotBeBound(t *testing.T) {
	f := newFixture(t)

	_, err := NewEncoding(f.registry, f.add, []VariantSpec{
		{
			Struct: f.cmp,
			Bindings: []FieldBinding{
				{Field: "opc", Binding: Literal{Value: 3}},
				{Field: "sat", Binding: &FromOpMod{Mod: f.sat}},
				{Field: "src", Binding: &Derived{Fn: RefValue, Slot: Src(0)}},
			},
		},
	})
	assert.ErrorIs(t, err, ErrBadBinding)
}

func TestNewEncoding_UnknownFieldFails(t *testing.T) {
	f := newFixture(t)

	_, err := NewEncoding(f.registry, f.add, []VariantSpec{
		{
			Struct: f.cmp,
			Bindings: []FieldBinding{
				{Field: "nope", Binding: &FromOpMod{Mod: f.sat}},
			},
		},
	})
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestNewEncoding_OpModBindingsMustBeDeclared(t *testing.T) {
	f := newFixture(t)
	other := ops.BoolMod("other")

	_, err := NewEncoding(f.registry, f.add, []VariantSpec{
		{
			Struct: f.cmp,
			Bindings: []FieldBinding{
				{Field: "sat", Binding: &FromOpMod{Mod: other}},
				{Field: "src", Binding: &Derived{Fn: RefValue, Slot: Src(0)}},
			},
		},
	})
	assert.ErrorIs(t, err, ops.ErrBadOpMod)
}

func TestEncoding_SelectPrefersGuardedMatch(t *testing.T) {
	f := newFixture(t)
	e := f.encoding(t)

	plain, err := ops.NewInstr(f.add, nil, []ops.Ref{ops.RegRef(5)})
	require.NoError(t, err)

	variant, err := e.Select(plain)
	require.NoError(t, err)
	assert.Equal(t, f.cmp, variant.Struct)

	negated, err := ops.NewInstr(f.add, nil, []ops.Ref{ops.RegRef(5).WithFlag(f.neg)})
	require.NoError(t, err)

	variant, err = e.Select(negated)
	require.NoError(t, err)
	assert.Equal(t, f.ext, variant.Struct)
}

func TestEncoding_EncodeCompact(t *testing.T) {
	f := newFixture(t)
	e := f.encoding(t)

	instr, err := ops.NewInstr(f.add, nil, []ops.Ref{ops.RegRef(5)})
	require.NoError(t, err)
	require.NoError(t, instr.SetMod(f.sat, 1))

	buffer, err := e.Encode(instr)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x1D}, buffer)
}

func TestEncoding_EncodeExtended(t *testing.T) {
	f := newFixture(t)
	e := f.encoding(t)

	instr, err := ops.NewInstr(f.add, nil, []ops.Ref{ops.RegRef(5).WithFlag(f.neg)})
	require.NoError(t, err)
	require.NoError(t, instr.SetMod(f.sat, 1))

	buffer, err := e.Encode(instr)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x2D, 0x01}, buffer)
}

func TestEncoding_DerivedFailsOnMissingOperand(t *testing.T) {
	f := newFixture(t)
	e := f.encoding(t)

	// A null source reference cannot provide a register value
	instr, err := ops.NewInstr(f.add, nil, []ops.Ref{ops.NullRef()})
	require.NoError(t, err)

	_, err = e.Encode(instr)
	assert.ErrorIs(t, err, ErrEncoding)
}

func TestBoolCombine_RequiresTwoBooleanMods(t *testing.T) {
	f := newFixture(t)

	_, err := NewEncoding(f.registry, f.add, []VariantSpec{
		{
			Struct: f.cmp,
			Bindings: []FieldBinding{
				{Field: "sat", Binding: &BoolCombine{Op: Combine_Or, Mods: []*ops.ModType{f.sat}}},
				{Field: "src", Binding: &Derived{Fn: RefValue, Slot: Src(0)}},
			},
		},
	})
	assert.ErrorIs(t, err, ErrBadBinding)
}

func TestBoolCombine_Evaluates(t *testing.T) {
	a := ops.BoolMod("a")
	b := ops.BoolMod("b")

	op := &ops.Operation{Name: "op", OpMods: []*ops.ModType{a, b}}
	instr, err := ops.NewInstr(op, nil, nil)
	require.NoError(t, err)

	or := &BoolCombine{Op: Combine_Or, Mods: []*ops.ModType{a, b}}
	and := &BoolCombine{Op: Combine_And, Mods: []*ops.ModType{a, b}}

	value, err := or.evaluate(instr)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), value)

	require.NoError(t, instr.SetMod(a, 1))

	value, err = or.evaluate(instr)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), value)

	value, err = and.evaluate(instr)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), value)

	require.NoError(t, instr.SetMod(b, 1))

	value, err = and.evaluate(instr)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), value)
}

func TestFromOpMod_EnumMapRequired(t *testing.T) {
	registry := types.NewRegistry()

	semantic, err := registry.DefineEnum("semantic", []types.EnumElem{
		{Name: "a", Value: 0},
		{Name: "b", Value: 1},
	}, false, 1)
	require.NoError(t, err)

	hardware, err := registry.DefineEnum("hardware", []types.EnumElem{
		{Name: "h0", Value: 0},
		{Name: "h1", Value: 1},
	}, false, 1)
	require.NoError(t, err)

	mod, err := ops.EnumMod("cc", semantic, "a")
	require.NoError(t, err)

	op := &ops.Operation{Name: "nop", OpMods: []*ops.ModType{mod}}

	set, err := bitset.New("hdr",
		[]bitset.PieceSpec{
			{Name: "cc_bit", Byte: 0, Bits: "0"},
			{Name: "rest", Byte: 0, Bits: "7:1"},
		},
		[]bitset.FieldSpec{
			{Name: "cc", Pieces: []string{"cc_bit"}, Type: types.EnumField(hardware)},
			{Name: "pad", Pieces: []string{"rest"}, Type: types.Uint("u7", 7), Reserved: &zero},
		})
	require.NoError(t, err)

	hdr, err := bitset.NewStruct("hdr", set, []bitset.FieldMapping{
		bitset.Pass("cc"),
		bitset.Pass("pad"),
	})
	require.NoError(t, err)

	spec := VariantSpec{
		Struct: hdr,
		Bindings: []FieldBinding{
			{Field: "cc", Binding: &FromOpMod{Mod: mod}},
		},
	}

	// Without a registered map the binding cannot translate values
	_, err = NewEncoding(registry, op, []VariantSpec{spec})
	assert.ErrorIs(t, err, ErrMissingMap)

	_, err = registry.DefineEnumMap(semantic, hardware, [][2]string{
		{"a", "h1"},
		{"b", "h0"},
	}, nil)
	require.NoError(t, err)

	e, err := NewEncoding(registry, op, []VariantSpec{spec})
	require.NoError(t, err)

	instr, err := ops.NewInstr(op, nil, nil)
	require.NoError(t, err)

	// The default "a" maps to h1
	buffer, err := e.Encode(instr)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01}, buffer)
}
