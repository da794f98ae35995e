// Package table defines a concrete sample ISA: its value types, operation
// catalog, bit layouts, encodings, instruction-group mappings and decode
// pattern table. The whole table is built once by New and never mutated,
// so concurrent encode/decode calls over it need no synchronization.
package table

import (
	"github.com/Manu343726/escarabajo/pkg/isa/bitset"
	"github.com/Manu343726/escarabajo/pkg/isa/decoder"
	"github.com/Manu343726/escarabajo/pkg/isa/encoding"
	"github.com/Manu343726/escarabajo/pkg/isa/ops"
	"github.com/Manu343726/escarabajo/pkg/isa/types"
)

// The full ISA description: types, operations, layouts, encodings and the
// decoder built over them
type Table struct {
	Registry *types.Registry

	// Bit sets and every bit struct projected from them, in definition order
	Sets    []*bitset.BitSet
	Structs []*bitset.BitStruct

	// Operations by name
	Ops map[string]*ops.Operation
	// Op-level modifier types by name
	OpMods map[string]*ops.ModType
	// Reference-level modifier types by name
	RefMods map[string]*ops.ModType

	// Encodings by operation name
	Encodings map[string]*encoding.Encoding
	// Instruction-group mappings by name
	Groups map[string]*encoding.GroupEncoding

	Decoder *decoder.Decoder
}

// Builds the full table. Any error is a table-authoring bug: callers at
// process start should treat it as fatal.
func New() (*Table, error) {
	b := &builder{
		structs: make(map[string]*bitset.BitStruct),
		table: &Table{
			Registry:  types.NewRegistry(),
			Ops:       make(map[string]*ops.Operation),
			OpMods:    make(map[string]*ops.ModType),
			RefMods:   make(map[string]*ops.ModType),
			Encodings: make(map[string]*encoding.Encoding),
			Groups:    make(map[string]*encoding.GroupEncoding),
		},
	}

	b.defineTypes()
	b.defineOps()
	b.defineLayouts()
	b.defineEncodings()
	b.defineGroups()
	b.definePatterns()

	if b.err != nil {
		return nil, b.err
	}

	return b.table, nil
}

// Table construction helper with a sticky first error, so the definition
// code reads as declarations instead of error-handling boilerplate
type builder struct {
	table *Table
	err   error

	// value types
	cc, execCnd, regBank       *types.Enum
	tstOp, tstOpCompact        *types.Enum
	wmask, pckFmt              *types.Enum
	snglOp, beOp, opOrg, ctrlOp *types.Enum
	rptType                    *types.FieldType

	// op-level mods
	omCC, omOlchk, omEnd, omAtom             *ops.ModType
	omSat, omLp, omRpt, omTstOp              *ops.ModType
	omWmask, omFmt, omScale, omCount         *ops.ModType
	// ref-level mods
	rmNeg, rmAbs, rmFlr, rmBank *ops.ModType

	// bit sets
	alu, be, hdr *bitset.BitSet
	// bit structs by name, for encoding and pattern definitions
	structs map[string]*bitset.BitStruct
}

func (b *builder) enum(name string, elems []types.EnumElem, isBitset bool, numBits int) *types.Enum {
	if b.err != nil {
		return nil
	}

	e, err := b.table.Registry.DefineEnum(name, elems, isBitset, numBits)
	b.err = err

	return e
}

func (b *builder) subtype(name string, parent *types.Enum, numBits int) *types.Enum {
	if b.err != nil {
		return nil
	}

	e, err := b.table.Registry.DefineEnumSubtype(name, parent, numBits)
	b.err = err

	return e
}

func (b *builder) scalar(t *types.FieldType) *types.FieldType {
	if b.err != nil {
		return nil
	}

	t, err := b.table.Registry.DefineScalar(t)
	b.err = err

	return t
}

func (b *builder) enumMap(from *types.Enum, to *types.Enum, pairs [][2]string, passZero []string) {
	if b.err != nil {
		return
	}

	_, b.err = b.table.Registry.DefineEnumMap(from, to, pairs, passZero)
}

func (b *builder) enumMod(name string, enum *types.Enum, defaultElem string) *ops.ModType {
	if b.err != nil {
		return nil
	}

	mod, err := ops.EnumMod(name, enum, defaultElem)
	b.err = err

	return mod
}

func (b *builder) opMod(mod *ops.ModType) *ops.ModType {
	if mod != nil {
		b.table.OpMods[mod.Name] = mod
	}

	return mod
}

func (b *builder) refMod(mod *ops.ModType) *ops.ModType {
	if mod != nil {
		b.table.RefMods[mod.Name] = mod
	}

	return mod
}

func (b *builder) bitSet(name string, pieces []bitset.PieceSpec, fields []bitset.FieldSpec) *bitset.BitSet {
	if b.err != nil {
		return nil
	}

	set, err := bitset.New(name, pieces, fields)
	b.err = err

	if set != nil {
		b.table.Sets = append(b.table.Sets, set)
	}

	return set
}

func (b *builder) bitStruct(name string, set *bitset.BitSet, mappings []bitset.FieldMapping) *bitset.BitStruct {
	if b.err != nil {
		return nil
	}

	s, err := bitset.NewStruct(name, set, mappings)
	b.err = err

	if s != nil {
		b.table.Structs = append(b.table.Structs, s)
		b.structs[name] = s
	}

	return s
}

func (b *builder) op(o *ops.Operation) *ops.Operation {
	if b.err != nil {
		return nil
	}

	b.table.Ops[o.Name] = o

	return o
}

func (b *builder) encoding(op *ops.Operation, variants ...encoding.VariantSpec) *encoding.Encoding {
	if b.err != nil {
		return nil
	}

	e, err := encoding.NewEncoding(b.table.Registry, op, variants)
	b.err = err

	if e != nil {
		b.table.Encodings[op.Name] = e
	}

	return e
}

func (b *builder) group(name string, op *ops.Operation, spec encoding.GroupSpec) {
	if b.err != nil {
		return
	}

	g, err := encoding.NewGroupEncoding(b.table.Registry, op, spec)
	b.err = err

	if g != nil {
		b.table.Groups[name] = g
	}
}

func (b *builder) decoder(patterns ...*decoder.Pattern) {
	if b.err != nil {
		return
	}

	d, err := decoder.NewDecoder(patterns...)
	b.err = err
	b.table.Decoder = d
}
