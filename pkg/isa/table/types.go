package table

import (
	"github.com/Manu343726/escarabajo/pkg/isa/types"
)

// Union of every write-mask lane, the decoded meaning of an all-zero mask
const allLanes = 0b1111

func (b *builder) defineTypes() {
	// Semantic execution condition carried by instructions, and the hardware
	// field it maps to. The semantic enum is what op mods are authored
	// against; the hardware one is what the header field packs.
	b.cc = b.enum("cc", []types.EnumElem{
		{Name: "uncond", Value: 0},
		{Name: "if_p0", Value: 1, Display: "if_p0"},
		{Name: "if_not_p0", Value: 2, Display: "if_not_p0"},
	}, false, 2)

	b.execCnd = b.enum("exec_cnd", []types.EnumElem{
		{Name: "e1_zx", Value: 0},
		{Name: "e1_z1", Value: 1, Display: "e1_z1"},
		{Name: "e1_z0", Value: 2, Display: "e1_z0"},
		{Name: "ex_zx", Value: 3, Display: "ex_zx"},
	}, false, 2)

	b.enumMap(b.cc, b.execCnd, [][2]string{
		{"uncond", "e1_zx"},
		{"if_p0", "e1_z1"},
		{"if_not_p0", "e1_z0"},
	}, nil)

	b.regBank = b.enum("regbank", []types.EnumElem{
		{Name: "temp", Value: 0},
		{Name: "vtxin", Value: 1, Display: "vi"},
		{Name: "coeff", Value: 2, Display: "cf"},
		{Name: "shared", Value: 3, Display: "sh"},
	}, false, 2)

	// Test operation of tst, with a truncated compact view covering only
	// the single-source comparisons the short encoding can express
	b.tstOp = b.enum("tst_op", []types.EnumElem{
		{Name: "zero", Value: 0},
		{Name: "gzero", Value: 1, Display: "gz"},
		{Name: "gezero", Value: 2, Display: "gez"},
		{Name: "notzero", Value: 3, Display: "nz"},
		{Name: "eq", Value: 4, Display: "eq"},
		{Name: "gt", Value: 5, Display: "gt"},
		{Name: "ge", Value: 6, Display: "ge"},
		{Name: "ne", Value: 7, Display: "ne"},
		{Name: "lt", Value: 8, Display: "lt"},
		{Name: "le", Value: 9, Display: "le"},
	}, false, 4)

	b.tstOpCompact = b.subtype("tst_op_compact", b.tstOp, 2)

	// Write mask lanes. An all-zero raw mask means all lanes, not none.
	b.wmask = b.enum("wmask", []types.EnumElem{
		{Name: "x", Value: 0b0001, Display: "x"},
		{Name: "y", Value: 0b0010, Display: "y"},
		{Name: "z", Value: 0b0100, Display: "z"},
		{Name: "w", Value: 0b1000, Display: "w"},
	}, true, 4)

	if b.wmask != nil {
		passZero := uint64(allLanes)
		b.wmask.PassZero = &passZero
	}

	b.pckFmt = b.enum("pck_fmt", []types.EnumElem{
		{Name: "u8888", Value: 0},
		{Name: "s8888", Value: 1, Display: "s8888"},
		{Name: "u1616", Value: 2, Display: "u1616"},
		{Name: "s1616", Value: 3, Display: "s1616"},
		{Name: "f16f16", Value: 4, Display: "f16f16"},
		{Name: "f32", Value: 5, Display: "f32"},
	}, false, 3)

	b.snglOp = b.enum("sngl_op", []types.EnumElem{
		{Name: "mbyp", Value: 0},
		{Name: "frcp", Value: 1, Display: "frcp"},
		{Name: "frsq", Value: 2, Display: "frsq"},
		{Name: "flog", Value: 3, Display: "flog"},
		{Name: "fexp", Value: 4, Display: "fexp"},
	}, false, 3)

	b.beOp = b.enum("be_op", []types.EnumElem{
		{Name: "uvsw_write", Value: 0, Display: "uvsw.write"},
		{Name: "fitr", Value: 1, Display: "fitr"},
	}, false, 2)

	// Which phase slots an instruction group populates
	b.opOrg = b.enum("oporg", []types.EnumElem{
		{Name: "p0", Value: 0},
		{Name: "p0_p1", Value: 1, Display: "p0_p1"},
		{Name: "p0_p2", Value: 2, Display: "p0_p2"},
		{Name: "p0_p1_p2", Value: 3, Display: "p0_p1_p2"},
		{Name: "be", Value: 4, Display: "be"},
		{Name: "ctrl", Value: 5, Display: "ctrl"},
		{Name: "p0_be", Value: 6, Display: "p0_be"},
	}, false, 3)

	b.ctrlOp = b.enum("ctrl_op", []types.EnumElem{
		{Name: "nop", Value: 0},
		{Name: "wdf", Value: 1, Display: "wdf"},
		{Name: "wop", Value: 2, Display: "wop"},
	}, false, 3)

	// Repeat count, 1-based in the decoded domain and packed off-by-one
	b.rptType = b.scalar(&types.FieldType{
		Name:    "rpt",
		Kind:    types.Kind_Uint,
		NumBits: 2,
		DecBits: 3,
		Transform: &types.ScalarTransform{
			Encode: func(v uint64) uint64 { return v - 1 },
			Decode: func(v uint64) uint64 { return v + 1 },
		},
	})
}
