package table

import (
	"github.com/Manu343726/escarabajo/pkg/isa/decoder"
)

// The decode table is ordered most-specific-first: control headers pin the
// most bits, phase instructions pin their opcode nibble plus reserved pads,
// and the weakly-pinned group headers come last as fallbacks. The order is
// curated, never sorted; reordering it changes decode results.
func (b *builder) definePatterns() {
	if b.err != nil {
		return
	}

	var patterns []*decoder.Pattern

	patterns = append(patterns,
		&decoder.Pattern{
			Name:   "nop",
			Struct: b.structs["ctrl_nop"],
			Mods: []decoder.Mod{
				{Field: "cc", Bare: true},
				decoder.Flag("end"),
			},
		},
		&decoder.Pattern{
			Name:   "wdf",
			Struct: b.structs["ctrl_wdf"],
			Srcs:   []decoder.Operand{{Field: "drcsel", Prefix: "drc"}},
			Mods:   []decoder.Mod{{Field: "cc", Bare: true}},
		},
		&decoder.Pattern{
			Name:   "wop",
			Struct: b.structs["ctrl_wop"],
		})

	for _, name := range []string{"fadd", "fmul"} {
		patterns = append(patterns, &decoder.Pattern{
			Name:   name,
			Struct: b.structs[name],
			Dests:  []decoder.Operand{decoder.Reg("dst")},
			Srcs:   []decoder.Operand{decoder.Reg("s0"), decoder.Reg("s1")},
			Mods: []decoder.Mod{
				decoder.Flag("sat"),
				decoder.Flag("s0neg"),
				decoder.Flag("s0abs"),
				decoder.Flag("s0flr"),
				decoder.Flag("s1abs"),
				{Field: "rpt", Default: 1},
			},
		})
	}

	// Dedicated single-source mnemonics before the generic sngl fallback
	for _, spec := range []struct {
		name  string
		strct string
	}{{"frcp", "sngl_frcp"}, {"mbyp", "sngl_mbyp"}} {
		patterns = append(patterns, &decoder.Pattern{
			Name:   spec.name,
			Struct: b.structs[spec.strct],
			Dests:  []decoder.Operand{decoder.Reg("sdst")},
			Srcs:   []decoder.Operand{decoder.Reg("s0")},
		})
	}

	patterns = append(patterns,
		&decoder.Pattern{
			Name:   "sngl",
			Struct: b.structs["sngl"],
			Dests:  []decoder.Operand{decoder.Reg("sdst")},
			Srcs:   []decoder.Operand{decoder.Reg("s0")},
			Mods:   []decoder.Mod{{Field: "snglop", Bare: true}},
		},
		&decoder.Pattern{
			Name:   "fmad",
			Struct: b.structs["fmad_ext"],
			Dests:  []decoder.Operand{decoder.Reg("mdst")},
			Srcs:   []decoder.Operand{decoder.Reg("s0"), decoder.Reg("s1"), decoder.Reg("s2")},
			Mods: []decoder.Mod{
				decoder.Flag("msat"),
				decoder.Flag("lp"),
				decoder.Flag("xs0neg"),
				decoder.Flag("xs0abs"),
				decoder.Flag("xs1neg"),
				decoder.Flag("xs1abs"),
				decoder.Flag("xs2neg"),
				decoder.Flag("xs2abs"),
			},
		},
		&decoder.Pattern{
			Name:   "fmad",
			Struct: b.structs["fmad_cmp"],
			Dests:  []decoder.Operand{decoder.Reg("mdst")},
			Srcs:   []decoder.Operand{decoder.Reg("s0"), decoder.Reg("s1"), decoder.Reg("s2")},
			Mods: []decoder.Mod{
				decoder.Flag("msat"),
				decoder.Flag("lp"),
			},
		},
		&decoder.Pattern{
			Name:   "tst",
			Struct: b.structs["tst_ext"],
			Srcs:   []decoder.Operand{decoder.Reg("s0"), decoder.Reg("s1")},
			Mods:   []decoder.Mod{{Field: "tstop", Bare: true}},
		},
		&decoder.Pattern{
			Name:   "tst",
			Struct: b.structs["tst_cmp"],
			Srcs:   []decoder.Operand{decoder.Reg("s0"), decoder.Reg("s1")},
			Mods:   []decoder.Mod{{Field: "tstopc", Bare: true}},
		},
		&decoder.Pattern{
			Name:   "movc",
			Struct: b.structs["movc"],
			Dests:  []decoder.Operand{decoder.Reg("dst")},
			Srcs:   []decoder.Operand{decoder.Reg("s0"), decoder.Reg("s1")},
			Mods: []decoder.Mod{
				{Field: "wmask", Default: allLanes, Bare: true},
				{Field: "dbank", Bare: true},
			},
		},
		&decoder.Pattern{
			Name:   "pck",
			Struct: b.structs["pck"],
			Dests:  []decoder.Operand{decoder.Reg("sdst")},
			Srcs:   []decoder.Operand{decoder.Reg("s0")},
			Mods: []decoder.Mod{
				{Field: "fmt", Bare: true},
				decoder.Flag("scale"),
				{Field: "prpt", Default: 1},
			},
		},
		&decoder.Pattern{
			Name:   "uvsw.write",
			Struct: b.structs["uvsw_write"],
			Srcs:   []decoder.Operand{decoder.Reg("ws0"), decoder.Imm("addr")},
			Mods:   []decoder.Mod{{Field: "bwmask", Default: allLanes, Bare: true}},
		},
		&decoder.Pattern{
			Name:   "fitr",
			Struct: b.structs["fitr"],
			Dests:  []decoder.Operand{decoder.Reg("fdst")},
			Srcs: []decoder.Operand{
				{Field: "cbase", Prefix: "cf"},
				{Field: "drc", Prefix: "drc"},
			},
			Mods: []decoder.Mod{
				decoder.Flag("fsat"),
				{Field: "count", Default: 1},
			},
		})

	// Group headers pin only the phase-layout selector, so they go last.
	// Each header consumes its own two bytes; the phase instructions that
	// follow decode through the patterns above on subsequent calls.
	for _, org := range []string{"p0", "p0_p1", "p0_p2", "p0_p1_p2", "be", "p0_be"} {
		patterns = append(patterns, &decoder.Pattern{
			Name:   "igrp." + org,
			Struct: b.structs["hdr_"+org],
			Mods: []decoder.Mod{
				{Field: "cc", Bare: true},
				decoder.Flag("olchk"),
				decoder.Flag("end"),
				decoder.Flag("atom"),
				{Field: "length"},
			},
		})
	}

	b.decoder(patterns...)
}
