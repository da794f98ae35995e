package table

import (
	"github.com/Manu343726/escarabajo/pkg/isa/encoding"
)

func (b *builder) defineEncodings() {
	if b.err != nil {
		return
	}

	for _, name := range []string{"fadd", "fmul"} {
		b.encoding(b.table.Ops[name], encoding.VariantSpec{
			Struct: b.structs[name],
			Bindings: []encoding.FieldBinding{
				{Field: "sat", Binding: &encoding.FromOpMod{Mod: b.omSat}},
				{Field: "rpt", Binding: &encoding.FromOpMod{Mod: b.omRpt}},
				{Field: "s0neg", Binding: &encoding.FromRefMod{Mod: b.rmNeg, Slot: encoding.Src(0)}},
				{Field: "s0abs", Binding: &encoding.FromRefMod{Mod: b.rmAbs, Slot: encoding.Src(0)}},
				{Field: "s0flr", Binding: &encoding.FromRefMod{Mod: b.rmFlr, Slot: encoding.Src(0)}},
				{Field: "s1abs", Binding: &encoding.FromRefMod{Mod: b.rmAbs, Slot: encoding.Src(1)}},
				{Field: "s0", Binding: &encoding.Derived{Fn: encoding.RefValue, Slot: encoding.Src(0)}},
				{Field: "s1", Binding: &encoding.Derived{Fn: encoding.RefValue, Slot: encoding.Src(1)}},
				{Field: "dst", Binding: &encoding.Derived{Fn: encoding.RefValue, Slot: encoding.Dest(0)}},
			},
		})
	}

	for _, spec := range []struct {
		op     string
		strct  string
	}{{"frcp", "sngl_frcp"}, {"mbyp", "sngl_mbyp"}} {
		b.encoding(b.table.Ops[spec.op], encoding.VariantSpec{
			Struct: b.structs[spec.strct],
			Bindings: []encoding.FieldBinding{
				{Field: "s0", Binding: &encoding.Derived{Fn: encoding.RefValue, Slot: encoding.Src(0)}},
				{Field: "sdst", Binding: &encoding.Derived{Fn: encoding.RefValue, Slot: encoding.Dest(0)}},
			},
		})
	}

	// The extended form is the guard-free default; the compact form is
	// picked when no source carries a sign or absolute-value modifier
	fmadCommon := []encoding.FieldBinding{
		{Field: "msat", Binding: &encoding.FromOpMod{Mod: b.omSat}},
		{Field: "lp", Binding: &encoding.FromOpMod{Mod: b.omLp}},
		{Field: "s0", Binding: &encoding.Derived{Fn: encoding.RefValue, Slot: encoding.Src(0)}},
		{Field: "s1", Binding: &encoding.Derived{Fn: encoding.RefValue, Slot: encoding.Src(1)}},
		{Field: "s2", Binding: &encoding.Derived{Fn: encoding.RefValue, Slot: encoding.Src(2)}},
		{Field: "mdst", Binding: &encoding.Derived{Fn: encoding.RefValue, Slot: encoding.Dest(0)}},
	}

	b.encoding(b.table.Ops["fmad"],
		encoding.VariantSpec{
			Struct: b.structs["fmad_ext"],
			Bindings: append([]encoding.FieldBinding{
				{Field: "xs0neg", Binding: &encoding.FromRefMod{Mod: b.rmNeg, Slot: encoding.Src(0)}},
				{Field: "xs0abs", Binding: &encoding.FromRefMod{Mod: b.rmAbs, Slot: encoding.Src(0)}},
				{Field: "xs1neg", Binding: &encoding.FromRefMod{Mod: b.rmNeg, Slot: encoding.Src(1)}},
				{Field: "xs1abs", Binding: &encoding.FromRefMod{Mod: b.rmAbs, Slot: encoding.Src(1)}},
				{Field: "xs2neg", Binding: &encoding.FromRefMod{Mod: b.rmNeg, Slot: encoding.Src(2)}},
				{Field: "xs2abs", Binding: &encoding.FromRefMod{Mod: b.rmAbs, Slot: encoding.Src(2)}},
			}, fmadCommon...),
		},
		encoding.VariantSpec{
			Struct:   b.structs["fmad_cmp"],
			Bindings: fmadCommon,
			Guards: []encoding.Guard{
				encoding.RefModUnset(b.rmNeg, encoding.Src(0)),
				encoding.RefModUnset(b.rmAbs, encoding.Src(0)),
				encoding.RefModUnset(b.rmNeg, encoding.Src(1)),
				encoding.RefModUnset(b.rmAbs, encoding.Src(1)),
				encoding.RefModUnset(b.rmNeg, encoding.Src(2)),
				encoding.RefModUnset(b.rmAbs, encoding.Src(2)),
			},
		})

	tstCommon := []encoding.FieldBinding{
		{Field: "s0", Binding: &encoding.Derived{Fn: encoding.RefValue, Slot: encoding.Src(0)}},
		{Field: "s1", Binding: &encoding.Derived{Fn: encoding.RefValue, Slot: encoding.Src(1)}},
	}

	b.encoding(b.table.Ops["tst"],
		encoding.VariantSpec{
			Struct: b.structs["tst_ext"],
			Bindings: append([]encoding.FieldBinding{
				{Field: "tstop", Binding: &encoding.FromOpMod{Mod: b.omTstOp}},
			}, tstCommon...),
		},
		encoding.VariantSpec{
			Struct: b.structs["tst_cmp"],
			Bindings: append([]encoding.FieldBinding{
				{Field: "tstopc", Binding: &encoding.FromOpMod{Mod: b.omTstOp}},
			}, tstCommon...),
			Guards: []encoding.Guard{
				encoding.ModLe(b.omTstOp, 3),
			},
		})

	b.encoding(b.table.Ops["movc"], encoding.VariantSpec{
		Struct: b.structs["movc"],
		Bindings: []encoding.FieldBinding{
			{Field: "wmask", Binding: &encoding.FromOpMod{Mod: b.omWmask}},
			{Field: "dbank", Binding: &encoding.FromRefMod{Mod: b.rmBank, Slot: encoding.Dest(0)}},
			{Field: "s0", Binding: &encoding.Derived{Fn: encoding.RefValue, Slot: encoding.Src(0)}},
			{Field: "s1", Binding: &encoding.Derived{Fn: encoding.RefValue, Slot: encoding.Src(1)}},
			{Field: "dst", Binding: &encoding.Derived{Fn: encoding.RefValue, Slot: encoding.Dest(0)}},
		},
	})

	b.encoding(b.table.Ops["pck"], encoding.VariantSpec{
		Struct: b.structs["pck"],
		Bindings: []encoding.FieldBinding{
			{Field: "scale", Binding: &encoding.FromOpMod{Mod: b.omScale}},
			{Field: "fmt", Binding: &encoding.FromOpMod{Mod: b.omFmt}},
			{Field: "prpt", Binding: &encoding.FromOpMod{Mod: b.omRpt}},
			{Field: "s0", Binding: &encoding.Derived{Fn: encoding.RefValue, Slot: encoding.Src(0)}},
			{Field: "sdst", Binding: &encoding.Derived{Fn: encoding.RefValue, Slot: encoding.Dest(0)}},
		},
	})

	b.encoding(b.table.Ops["uvsw.write"], encoding.VariantSpec{
		Struct: b.structs["uvsw_write"],
		Bindings: []encoding.FieldBinding{
			{Field: "addr", Binding: &encoding.Derived{Fn: encoding.RefValue, Slot: encoding.Src(1)}},
			{Field: "ws0", Binding: &encoding.Derived{Fn: encoding.RefValue, Slot: encoding.Src(0)}},
			{Field: "bwmask", Binding: &encoding.FromOpMod{Mod: b.omWmask}},
		},
	})

	b.encoding(b.table.Ops["fitr"], encoding.VariantSpec{
		Struct: b.structs["fitr"],
		Bindings: []encoding.FieldBinding{
			{Field: "fsat", Binding: &encoding.FromOpMod{Mod: b.omSat}},
			{Field: "count", Binding: &encoding.FromOpMod{Mod: b.omCount}},
			{Field: "drc", Binding: &encoding.Derived{Fn: encoding.RefValue, Slot: encoding.Src(1)}},
			{Field: "cbase", Binding: &encoding.Derived{Fn: encoding.RefValue, Slot: encoding.Src(0)}},
			{Field: "fdst", Binding: &encoding.Derived{Fn: encoding.RefValue, Slot: encoding.Dest(0)}},
		},
	})

	// Control ops are bare headers
	b.encoding(b.table.Ops["nop"], encoding.VariantSpec{
		Struct: b.structs["ctrl_nop"],
		Bindings: []encoding.FieldBinding{
			{Field: "end", Binding: &encoding.FromOpMod{Mod: b.omEnd}},
			{Field: "cc", Binding: &encoding.FromOpMod{Mod: b.omCC}},
		},
	})

	b.encoding(b.table.Ops["wdf"], encoding.VariantSpec{
		Struct: b.structs["ctrl_wdf"],
		Bindings: []encoding.FieldBinding{
			{Field: "cc", Binding: &encoding.FromOpMod{Mod: b.omCC}},
			{Field: "drcsel", Binding: &encoding.Derived{Fn: encoding.RefValue, Slot: encoding.Src(0)}},
		},
	})

	b.encoding(b.table.Ops["wop"], encoding.VariantSpec{
		Struct: b.structs["ctrl_wop"],
	})
}

func (b *builder) defineGroups() {
	if b.err != nil {
		return
	}

	igrp := b.table.Ops["igrp"]

	headerBindings := []encoding.FieldBinding{
		{Field: "olchk", Binding: &encoding.FromOpMod{Mod: b.omOlchk}},
		{Field: "end", Binding: &encoding.FromOpMod{Mod: b.omEnd}},
		{Field: "atom", Binding: &encoding.FromOpMod{Mod: b.omAtom}},
		{Field: "cc", Binding: &encoding.FromOpMod{Mod: b.omCC}},
	}

	// Single-phase arithmetic group: dst = fmad(s0, s1, s2)
	b.group("fmad", igrp, encoding.GroupSpec{
		Header:         b.structs["hdr_p0"],
		HeaderBindings: headerBindings,
		LengthField:    "length",
		Phases: []encoding.GroupPhase{
			{
				Name:     "0",
				Encoding: b.table.Encodings["fmad"],
				Dests:    []encoding.PhaseRef{encoding.TakeDest(0)},
				Srcs:     []encoding.PhaseRef{encoding.TakeSrc(0), encoding.TakeSrc(1), encoding.TakeSrc(2)},
				Mods: []encoding.PhaseModAssign{
					{Mod: b.omSat, FromMod: b.omSat},
					{Mod: b.omLp, FromMod: b.omLp},
				},
			},
		},
	})

	// Two-phase group forwarding the multiply result to the vertex output
	// write through internal channel 0: uvsw.write(fmul(s0, s1), s2)
	b.group("fmul_uvsw", igrp, encoding.GroupSpec{
		Header:         b.structs["hdr_p0_be"],
		HeaderBindings: headerBindings,
		LengthField:    "length",
		Phases: []encoding.GroupPhase{
			{
				Name:     "0",
				Encoding: b.table.Encodings["fmul"],
				Dests:    []encoding.PhaseRef{encoding.Forward(0)},
				Srcs:     []encoding.PhaseRef{encoding.TakeSrc(0), encoding.TakeSrc(1)},
				Mods: []encoding.PhaseModAssign{
					{Mod: b.omSat, FromMod: b.omSat},
					{Mod: b.omRpt, FromMod: b.omRpt},
				},
			},
			{
				Name:     "backend",
				Encoding: b.table.Encodings["uvsw.write"],
				Srcs:     []encoding.PhaseRef{encoding.Forward(0), encoding.TakeSrc(2)},
				Mods: []encoding.PhaseModAssign{
					{Mod: b.omWmask, FromMod: b.omWmask},
				},
			},
		},
	})
}
