package table

import (
	"github.com/Manu343726/escarabajo/pkg/isa/ops"
	"github.com/Manu343726/escarabajo/pkg/isa/types"
)

func (b *builder) defineOps() {
	// Group-level mods are consumed by the header mapping and must not leak
	// into the phase encodings of the same group
	b.omCC = b.opMod(b.enumMod("cc", b.cc, "uncond"))
	b.omOlchk = b.opMod(ops.BoolMod("olchk"))
	b.omEnd = b.opMod(ops.BoolMod("end"))
	b.omAtom = b.opMod(ops.BoolMod("atom"))

	if b.err != nil {
		return
	}

	b.omCC.UnsetOnConsume = true
	b.omOlchk.UnsetOnConsume = true
	b.omEnd.UnsetOnConsume = true
	b.omAtom.UnsetOnConsume = true

	b.omSat = b.opMod(ops.BoolMod("sat"))
	b.omLp = b.opMod(ops.BoolMod("lp"))
	b.omRpt = b.opMod(ops.UintMod("rpt", b.rptType, 1))
	b.omTstOp = b.opMod(b.enumMod("tst_op", b.tstOp, "zero"))
	b.omWmask = b.opMod(b.enumMod("wmask", b.wmask, "x"))
	b.omFmt = b.opMod(b.enumMod("fmt", b.pckFmt, "u8888"))
	b.omScale = b.opMod(ops.BoolMod("scale"))
	b.omCount = b.opMod(ops.UintMod("count", types.Uint("count4", 4), 1))

	b.rmNeg = b.refMod(ops.BoolMod("neg"))
	b.rmAbs = b.refMod(ops.BoolMod("abs"))
	b.rmFlr = b.refMod(ops.BoolMod("flr"))
	b.rmBank = b.refMod(b.enumMod("bank", b.regBank, "temp"))

	if b.err != nil {
		return
	}

	if b.omWmask != nil {
		b.omWmask.Default = allLanes
	}

	b.op(&ops.Operation{
		Name:     "fadd",
		NumDests: 1,
		NumSrcs:  2,
		OpMods:   []*ops.ModType{b.omSat, b.omRpt},
		SrcRefMods: [][]*ops.ModType{
			{b.rmNeg, b.rmAbs, b.rmFlr},
			{b.rmAbs},
		},
	})

	b.op(&ops.Operation{
		Name:     "fmul",
		NumDests: 1,
		NumSrcs:  2,
		OpMods:   []*ops.ModType{b.omSat, b.omRpt},
		SrcRefMods: [][]*ops.ModType{
			{b.rmNeg, b.rmAbs, b.rmFlr},
			{b.rmAbs},
		},
	})

	b.op(&ops.Operation{
		Name:     "fmad",
		NumDests: 1,
		NumSrcs:  3,
		OpMods:   []*ops.ModType{b.omSat, b.omLp},
		SrcRefMods: [][]*ops.ModType{
			{b.rmNeg, b.rmAbs},
			{b.rmNeg, b.rmAbs},
			{b.rmNeg, b.rmAbs},
		},
	})

	b.op(&ops.Operation{Name: "frcp", NumDests: 1, NumSrcs: 1})
	b.op(&ops.Operation{Name: "mbyp", NumDests: 1, NumSrcs: 1})

	// tst writes the implicit p0 predicate, not an architectural register
	b.op(&ops.Operation{
		Name:    "tst",
		NumSrcs: 2,
		OpMods:  []*ops.ModType{b.omTstOp},
	})

	b.op(&ops.Operation{
		Name:        "movc",
		NumDests:    1,
		NumSrcs:     2,
		OpMods:      []*ops.ModType{b.omWmask},
		DestRefMods: [][]*ops.ModType{{b.rmBank}},
	})

	b.op(&ops.Operation{
		Name:     "pck",
		NumDests: 1,
		NumSrcs:  1,
		OpMods:   []*ops.ModType{b.omFmt, b.omScale, b.omRpt},
	})

	// srcs: data register, output stream address immediate
	b.op(&ops.Operation{
		Name:    "uvsw.write",
		NumSrcs: 2,
		OpMods:  []*ops.ModType{b.omWmask},
	})

	// srcs: coefficient base, drc select
	b.op(&ops.Operation{
		Name:     "fitr",
		NumDests: 1,
		NumSrcs:  2,
		OpMods:   []*ops.ModType{b.omSat, b.omCount},
	})

	b.op(&ops.Operation{
		Name:   "nop",
		OpMods: []*ops.ModType{b.omCC, b.omEnd},
	})

	b.op(&ops.Operation{
		Name:    "wdf",
		NumSrcs: 1,
		OpMods:  []*ops.ModType{b.omCC},
	})

	b.op(&ops.Operation{Name: "wop"})

	// The grouped instruction: a variable-operand carrier whose header
	// consumes the group-level mods and whose phases take the rest
	b.op(&ops.Operation{
		Name:     "igrp",
		NumDests: ops.VariableOperands,
		NumSrcs:  ops.VariableOperands,
		OpMods: []*ops.ModType{
			b.omCC, b.omOlchk, b.omEnd, b.omAtom,
			b.omSat, b.omLp, b.omRpt, b.omTstOp,
			b.omWmask, b.omFmt, b.omScale, b.omCount,
		},
		DestRefMods: [][]*ops.ModType{
			{b.rmBank},
			{b.rmBank},
		},
		SrcRefMods: [][]*ops.ModType{
			{b.rmNeg, b.rmAbs, b.rmFlr},
			{b.rmNeg, b.rmAbs},
			{b.rmNeg, b.rmAbs},
			{},
		},
	})
}
