package table

import (
	"github.com/Manu343726/escarabajo/pkg/isa/bitset"
	"github.com/Manu343726/escarabajo/pkg/isa/types"
)

// Reserved-field values
var zero = uint64(0)

func (b *builder) defineLayouts() {
	b.defineAluLayout()
	b.defineBackendLayout()
	b.defineHeaderLayout()
}

// ALU phase instructions. One opcode nibble at the top of byte 0, operand
// registers as nibbles, per-op flag bits in the remainder. Several fields
// catalog the same pieces; each struct projects a disjoint subset.
func (b *builder) defineAluLayout() {
	b.alu = b.bitSet("alu",
		[]bitset.PieceSpec{
			{Name: "op_hi", Byte: 0, Bits: "7:4"},
			{Name: "b0_lo", Byte: 0, Bits: "3:0"},
			{Name: "b0_31", Byte: 0, Bits: "3:1"},
			{Name: "b0_20", Byte: 0, Bits: "2:0"},
			{Name: "b0_21", Byte: 0, Bits: "2:1"},
			{Name: "f3", Byte: 0, Bits: "3"},
			{Name: "f2", Byte: 0, Bits: "2"},
			{Name: "f1", Byte: 0, Bits: "1"},
			{Name: "f0", Byte: 0, Bits: "0"},
			{Name: "b1_hi", Byte: 1, Bits: "7:4"},
			{Name: "b1_lo", Byte: 1, Bits: "3:0"},
			{Name: "b2_hi", Byte: 2, Bits: "7:4"},
			{Name: "b2_lo", Byte: 2, Bits: "3:0"},
			{Name: "b2_32", Byte: 2, Bits: "3:2"},
			{Name: "b2_3", Byte: 2, Bits: "3"},
			{Name: "b2_21", Byte: 2, Bits: "2:1"},
			{Name: "b2_10", Byte: 2, Bits: "1:0"},
			{Name: "b2_0", Byte: 2, Bits: "0"},
			{Name: "b2_72", Byte: 2, Bits: "7:2"},
			{Name: "x0", Byte: 3, Bits: "0"},
			{Name: "x1", Byte: 3, Bits: "1"},
			{Name: "x2", Byte: 3, Bits: "2"},
			{Name: "x3", Byte: 3, Bits: "3"},
			{Name: "x4", Byte: 3, Bits: "4"},
			{Name: "x5", Byte: 3, Bits: "5"},
			{Name: "x76", Byte: 3, Bits: "7:6"},
		},
		[]bitset.FieldSpec{
			{Name: "opc", Pieces: []string{"op_hi"}, Type: types.Uint("opc", 4)},

			{Name: "sat", Pieces: []string{"f3"}, Type: types.Bool()},
			{Name: "s0neg", Pieces: []string{"f2"}, Type: types.Bool()},
			{Name: "s0abs", Pieces: []string{"f1"}, Type: types.Bool()},
			{Name: "s0flr", Pieces: []string{"f0"}, Type: types.Bool()},

			{Name: "ext", Pieces: []string{"f3"}, Type: types.Bool()},
			{Name: "msat", Pieces: []string{"f2"}, Type: types.Bool()},
			{Name: "lp", Pieces: []string{"f1"}, Type: types.Bool()},
			{Name: "pad0", Pieces: []string{"f0"}, Type: types.Uint("pad1b", 1), Reserved: &zero},
			{Name: "pad20", Pieces: []string{"b0_20"}, Type: types.Uint("pad3b", 3), Reserved: &zero},

			{Name: "snglop", Pieces: []string{"b0_31"}, Type: types.EnumField(b.snglOp)},
			{Name: "tstopc", Pieces: []string{"b0_21"}, Type: types.EnumField(b.tstOpCompact)},
			{Name: "scale", Pieces: []string{"f3"}, Type: types.Bool()},
			{Name: "fmt", Pieces: []string{"b0_20"}, Type: types.EnumField(b.pckFmt)},
			{Name: "wmask", Pieces: []string{"b0_lo"}, Type: types.EnumField(b.wmask)},

			{Name: "s0", Pieces: []string{"b1_hi"}, Type: types.Uint("reg", 4)},
			{Name: "s1", Pieces: []string{"b1_lo"}, Type: types.Uint("reg", 4)},
			{Name: "sdst", Pieces: []string{"b1_lo"}, Type: types.Uint("reg", 4)},

			{Name: "dst", Pieces: []string{"b2_hi"}, Type: types.Uint("reg", 4)},
			{Name: "s2", Pieces: []string{"b2_hi"}, Type: types.Uint("reg", 4)},
			{Name: "mdst", Pieces: []string{"b2_lo"}, Type: types.Uint("reg", 4)},
			{Name: "s1abs", Pieces: []string{"b2_3"}, Type: types.Bool()},
			{Name: "rpt", Pieces: []string{"b2_21"}, Type: b.rptType},
			{Name: "prpt", Pieces: []string{"b2_10"}, Type: b.rptType},
			{Name: "dbank", Pieces: []string{"b2_32"}, Type: types.EnumField(b.regBank)},
			{Name: "tstop", Pieces: []string{"b2_lo"}, Type: types.EnumField(b.tstOp)},
			{Name: "pad2", Pieces: []string{"b2_0"}, Type: types.Uint("pad1b", 1), Reserved: &zero},
			{Name: "pad210", Pieces: []string{"b2_10"}, Type: types.Uint("pad2b", 2), Reserved: &zero},
			{Name: "pad274", Pieces: []string{"b2_hi"}, Type: types.Uint("pad4b", 4), Reserved: &zero},
			{Name: "pad272", Pieces: []string{"b2_72"}, Type: types.Uint("pad6b", 6), Reserved: &zero},

			{Name: "xs0neg", Pieces: []string{"x0"}, Type: types.Bool()},
			{Name: "xs0abs", Pieces: []string{"x1"}, Type: types.Bool()},
			{Name: "xs1neg", Pieces: []string{"x2"}, Type: types.Bool()},
			{Name: "xs1abs", Pieces: []string{"x3"}, Type: types.Bool()},
			{Name: "xs2neg", Pieces: []string{"x4"}, Type: types.Bool()},
			{Name: "xs2abs", Pieces: []string{"x5"}, Type: types.Bool()},
			{Name: "padx", Pieces: []string{"x76"}, Type: types.Uint("pad2b", 2), Reserved: &zero},
		})

	for _, spec := range []struct {
		name string
		opc  uint64
	}{{"fadd", opcFadd}, {"fmul", opcFmul}} {
		b.bitStruct(spec.name, b.alu, []bitset.FieldMapping{
			bitset.FixedUint("opc", spec.opc),
			bitset.Pass("sat"),
			bitset.Pass("s0neg"),
			bitset.Pass("s0abs"),
			bitset.Pass("s0flr"),
			bitset.Pass("s0"),
			bitset.Pass("s1"),
			bitset.Pass("dst"),
			bitset.Pass("s1abs"),
			bitset.Pass("rpt"),
			bitset.Pass("pad2"),
		})
	}

	for _, spec := range []struct {
		name string
		elem string
	}{{"sngl_mbyp", "mbyp"}, {"sngl_frcp", "frcp"}} {
		b.bitStruct(spec.name, b.alu, []bitset.FieldMapping{
			bitset.FixedUint("opc", opcSngl),
			bitset.FixedElem("snglop", spec.elem),
			bitset.Pass("pad0"),
			bitset.Pass("s0"),
			bitset.Pass("sdst"),
		})
	}

	// Fallback projection with the single-source op left as a field, for
	// disassembling forms without a dedicated mnemonic
	b.bitStruct("sngl", b.alu, []bitset.FieldMapping{
		bitset.FixedUint("opc", opcSngl),
		bitset.Pass("snglop"),
		bitset.Pass("pad0"),
		bitset.Pass("s0"),
		bitset.Pass("sdst"),
	})

	b.bitStruct("fmad_cmp", b.alu, []bitset.FieldMapping{
		bitset.FixedUint("opc", opcFmad),
		bitset.FixedBool("ext", false),
		bitset.Pass("msat"),
		bitset.Pass("lp"),
		bitset.Pass("pad0"),
		bitset.Pass("s0"),
		bitset.Pass("s1"),
		bitset.Pass("s2"),
		bitset.Pass("mdst"),
	})

	b.bitStruct("fmad_ext", b.alu, []bitset.FieldMapping{
		bitset.FixedUint("opc", opcFmad),
		bitset.FixedBool("ext", true),
		bitset.Pass("msat"),
		bitset.Pass("lp"),
		bitset.Pass("pad0"),
		bitset.Pass("s0"),
		bitset.Pass("s1"),
		bitset.Pass("s2"),
		bitset.Pass("mdst"),
		bitset.Pass("xs0neg"),
		bitset.Pass("xs0abs"),
		bitset.Pass("xs1neg"),
		bitset.Pass("xs1abs"),
		bitset.Pass("xs2neg"),
		bitset.Pass("xs2abs"),
		bitset.Pass("padx"),
	})

	b.bitStruct("tst_cmp", b.alu, []bitset.FieldMapping{
		bitset.FixedUint("opc", opcTst),
		bitset.FixedBool("ext", false),
		bitset.Pass("tstopc"),
		bitset.Pass("pad0"),
		bitset.Pass("s0"),
		bitset.Pass("s1"),
	})

	b.bitStruct("tst_ext", b.alu, []bitset.FieldMapping{
		bitset.FixedUint("opc", opcTst),
		bitset.FixedBool("ext", true),
		bitset.Pass("pad20"),
		bitset.Pass("s0"),
		bitset.Pass("s1"),
		bitset.Pass("tstop"),
		bitset.Pass("pad274"),
	})

	b.bitStruct("movc", b.alu, []bitset.FieldMapping{
		bitset.FixedUint("opc", opcMovc),
		bitset.Pass("wmask"),
		bitset.Pass("s0"),
		bitset.Pass("s1"),
		bitset.Pass("dst"),
		bitset.Pass("dbank"),
		bitset.Pass("pad210"),
	})

	b.bitStruct("pck", b.alu, []bitset.FieldMapping{
		bitset.FixedUint("opc", opcPck),
		bitset.Pass("scale"),
		bitset.Pass("fmt"),
		bitset.Pass("s0"),
		bitset.Pass("sdst"),
		bitset.Pass("prpt"),
		bitset.Pass("pad272"),
	})
}

// ALU opcode nibble values. Phase instructions keep bit 7 of byte 0 set
// while group headers pin it to zero, so the two spaces never alias in a
// raw byte stream.
const (
	opcFadd = 8
	opcFmul = 9
	opcSngl = 10
	opcFmad = 11
	opcTst  = 12
	opcMovc = 13
	opcPck  = 14
	opcBe   = 15
)

// Backend phase instructions. They share the opcode nibble space with the
// ALU ops (nibble 15) and discriminate on a two-bit backend op below it.
func (b *builder) defineBackendLayout() {
	b.be = b.bitSet("backend",
		[]bitset.PieceSpec{
			{Name: "be_mark", Byte: 0, Bits: "7:4"},
			{Name: "be_op", Byte: 0, Bits: "3:2"},
			{Name: "be_1", Byte: 0, Bits: "1"},
			{Name: "be_10", Byte: 0, Bits: "1:0"},
			{Name: "be_0", Byte: 0, Bits: "0"},
			{Name: "b1_hi", Byte: 1, Bits: "7:4"},
			{Name: "b1_lo", Byte: 1, Bits: "3:0"},
			{Name: "b1_7", Byte: 1, Bits: "7"},
			{Name: "b1_60", Byte: 1, Bits: "6:0"},
			{Name: "b2_hi", Byte: 2, Bits: "7:4"},
			{Name: "b2_lo", Byte: 2, Bits: "3:0"},
			{Name: "b2_40", Byte: 2, Bits: "4:0"},
			{Name: "b2_75", Byte: 2, Bits: "7:5"},
		},
		[]bitset.FieldSpec{
			{Name: "bemark", Pieces: []string{"be_mark"}, Type: types.Uint("opc", 4)},
			{Name: "beop", Pieces: []string{"be_op"}, Type: types.EnumField(b.beOp)},
			{Name: "addr", Pieces: []string{"b2_40"}, Type: types.Uint("addr", 5)},
			{Name: "ws0", Pieces: []string{"b1_hi"}, Type: types.Uint("reg", 4)},
			{Name: "bwmask", Pieces: []string{"b1_lo"}, Type: types.EnumField(b.wmask)},
			{Name: "fsat", Pieces: []string{"be_1"}, Type: types.Bool()},
			{Name: "count", Pieces: []string{"b2_lo"}, Type: types.Uint("count4", 4)},
			{Name: "drc", Pieces: []string{"b1_7"}, Type: types.Uint("drc", 1)},
			{Name: "cbase", Pieces: []string{"b1_60"}, Type: types.Uint("cbase", 7)},
			{Name: "fdst", Pieces: []string{"b2_hi"}, Type: types.Uint("reg", 4)},
			{Name: "bpad10", Pieces: []string{"be_10"}, Type: types.Uint("pad2b", 2), Reserved: &zero},
			{Name: "bpad0", Pieces: []string{"be_0"}, Type: types.Uint("pad1b", 1), Reserved: &zero},
			{Name: "bpad75", Pieces: []string{"b2_75"}, Type: types.Uint("pad3b", 3), Reserved: &zero},
		})

	b.bitStruct("uvsw_write", b.be, []bitset.FieldMapping{
		bitset.FixedUint("bemark", opcBe),
		bitset.FixedElem("beop", "uvsw_write"),
		bitset.Pass("bpad10"),
		bitset.Pass("ws0"),
		bitset.Pass("bwmask"),
		bitset.Pass("addr"),
		bitset.Pass("bpad75"),
	})

	b.bitStruct("fitr", b.be, []bitset.FieldMapping{
		bitset.FixedUint("bemark", opcBe),
		bitset.FixedElem("beop", "fitr"),
		bitset.Pass("fsat"),
		bitset.Pass("bpad0"),
		bitset.Pass("drc"),
		bitset.Pass("cbase"),
		bitset.Pass("fdst"),
		bitset.Pass("count"),
	})
}

// Instruction group headers and the control ops encoded as bare headers.
// Byte 1 bits 7:5 hold the control op for control groups and are reserved
// for every other group kind.
func (b *builder) defineHeaderLayout() {
	b.hdr = b.bitSet("header",
		[]bitset.PieceSpec{
			{Name: "h_org", Byte: 0, Bits: "2:0"},
			{Name: "h_olchk", Byte: 0, Bits: "3"},
			{Name: "h_end", Byte: 0, Bits: "4"},
			{Name: "h_cc", Byte: 0, Bits: "6:5"},
			{Name: "h_7", Byte: 0, Bits: "7"},
			{Name: "h_len", Byte: 1, Bits: "3:0"},
			{Name: "h_atom", Byte: 1, Bits: "4"},
			{Name: "h_top", Byte: 1, Bits: "7:5"},
			{Name: "h_drc", Byte: 2, Bits: "0"},
			{Name: "h_pad", Byte: 2, Bits: "7:1"},
		},
		[]bitset.FieldSpec{
			{Name: "oporg", Pieces: []string{"h_org"}, Type: types.EnumField(b.opOrg)},
			{Name: "olchk", Pieces: []string{"h_olchk"}, Type: types.Bool()},
			{Name: "end", Pieces: []string{"h_end"}, Type: types.Bool()},
			{Name: "cc", Pieces: []string{"h_cc"}, Type: types.EnumField(b.execCnd)},
			{Name: "hbit", Pieces: []string{"h_7"}, Type: types.Uint("pad1b", 1), Reserved: &zero},
			{Name: "length", Pieces: []string{"h_len"}, Type: types.Uint("length", 4)},
			{Name: "atom", Pieces: []string{"h_atom"}, Type: types.Bool()},
			{Name: "ctrlop", Pieces: []string{"h_top"}, Type: types.EnumField(b.ctrlOp)},
			{Name: "da", Pieces: []string{"h_top"}, Type: types.Uint("pad3b", 3), Reserved: &zero},
			{Name: "drcsel", Pieces: []string{"h_drc"}, Type: types.Uint("drc", 1)},
			{Name: "hpad", Pieces: []string{"h_pad"}, Type: types.Uint("pad7b", 7), Reserved: &zero},
		})

	for _, org := range []string{"p0", "p0_p1", "p0_p2", "p0_p1_p2", "be", "p0_be"} {
		b.bitStruct("hdr_"+org, b.hdr, []bitset.FieldMapping{
			bitset.FixedElem("oporg", org),
			bitset.Pass("olchk"),
			bitset.Pass("end"),
			bitset.Pass("atom"),
			bitset.Pass("cc"),
			bitset.Pass("hbit"),
			bitset.Pass("length"),
			bitset.Pass("da"),
		})
	}

	b.bitStruct("ctrl_nop", b.hdr, []bitset.FieldMapping{
		bitset.FixedElem("oporg", "ctrl"),
		bitset.FixedElem("ctrlop", "nop"),
		bitset.FixedBool("olchk", false),
		bitset.FixedBool("atom", false),
		bitset.Pass("end"),
		bitset.Pass("cc"),
		bitset.Pass("hbit"),
		bitset.FixedUint("length", 2),
	})

	b.bitStruct("ctrl_wdf", b.hdr, []bitset.FieldMapping{
		bitset.FixedElem("oporg", "ctrl"),
		bitset.FixedElem("ctrlop", "wdf"),
		bitset.FixedBool("olchk", false),
		bitset.FixedBool("atom", false),
		bitset.FixedBool("end", false),
		bitset.Pass("cc"),
		bitset.Pass("hbit"),
		bitset.FixedUint("length", 3),
		bitset.Pass("drcsel"),
		bitset.Pass("hpad"),
	})

	b.bitStruct("ctrl_wop", b.hdr, []bitset.FieldMapping{
		bitset.FixedElem("oporg", "ctrl"),
		bitset.FixedElem("ctrlop", "wop"),
		bitset.FixedBool("olchk", false),
		bitset.FixedBool("atom", false),
		bitset.FixedBool("end", true),
		bitset.FixedElem("cc", "e1_zx"),
		bitset.Pass("hbit"),
		bitset.FixedUint("length", 2),
	})
}
