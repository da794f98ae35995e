package table

import (
	"testing"

	"github.com/Manu343726/escarabajo/pkg/isa/decoder"
	"github.com/Manu343726/escarabajo/pkg/isa/ops"
	"github.com/Manu343726/escarabajo/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTable(t *testing.T) *Table {
	table, err := New()
	require.NoError(t, err)

	return table
}

// Decodes a whole buffer, resyncing on negated lengths the way a
// disassembler would
func decodeAll(t *testing.T, table *Table, buffer []byte) []string {
	var lines []string

	offset := 0
	for offset < len(buffer) {
		consumed, text, _ := table.Decoder.Decode(buffer, offset)
		require.NotZero(t, consumed)

		if consumed < 0 {
			consumed = -consumed
		}

		lines = append(lines, text)
		offset += consumed
	}

	return lines
}

func encode(t *testing.T, table *Table, op string, dests []ops.Ref, srcs []ops.Ref, mods map[string]uint64) []byte {
	instr, err := ops.NewInstr(table.Ops[op], dests, srcs)
	require.NoError(t, err)

	for name, value := range mods {
		require.NoError(t, instr.SetMod(table.OpMods[name], value))
	}

	buffer, err := table.Encodings[op].Encode(instr)
	require.NoError(t, err)

	return buffer
}

func TestNew_Builds(t *testing.T) {
	table := buildTable(t)

	assert.NotEmpty(t, table.Sets)
	assert.NotEmpty(t, table.Structs)
	assert.NotEmpty(t, table.Ops)
	assert.NotEmpty(t, table.Encodings)
	assert.NotEmpty(t, table.Groups)
	require.NotNil(t, table.Decoder)
	assert.NotEmpty(t, table.Decoder.Patterns())
}

func TestStructs_MaskInvariants(t *testing.T) {
	table := buildTable(t)

	for _, s := range table.Structs {
		assert.Greater(t, s.NumBytes(), 0, "struct %v", s.Name)
		assert.LessOrEqual(t, s.NumBytes(), 8, "struct %v", s.Name)

		// Pinned bits are field bits, and the expected value never strays
		// outside the pinned mask
		assert.Zero(t, s.ExactMask()&^s.FieldMask(), "struct %v", s.Name)
		assert.Zero(t, s.ExactValue()&^s.ExactMask(), "struct %v", s.Name)

		// Every bit of every byte is accounted for by some field; padding
		// is always an explicit reserved field, never an implicit gap
		full := utils.AllOnes[uint64](utils.Bits(s.NumBytes()))
		assert.Equal(t, full, s.FieldMask(), "struct %v", s.Name)
	}
}

func TestFadd_EncodeDecode(t *testing.T) {
	table := buildTable(t)

	buffer := encode(t, table, "fadd",
		[]ops.Ref{ops.RegRef(3)},
		[]ops.Ref{ops.RegRef(1).WithFlag(table.RefMods["neg"]), ops.RegRef(2)},
		map[string]uint64{"sat": 1, "rpt": 2})

	assert.Equal(t, []byte{0x8C, 0x12, 0x32}, buffer)
	assert.Equal(t, []string{"fadd r3, r1, r2, sat, s0neg, rpt=2"}, decodeAll(t, table, buffer))
}

func TestFadd_DefaultsRenderNothing(t *testing.T) {
	table := buildTable(t)

	buffer := encode(t, table, "fadd",
		[]ops.Ref{ops.RegRef(3)},
		[]ops.Ref{ops.RegRef(1), ops.RegRef(2)},
		nil)

	assert.Equal(t, []byte{0x80, 0x12, 0x30}, buffer)
	assert.Equal(t, []string{"fadd r3, r1, r2"}, decodeAll(t, table, buffer))
}

func TestFmad_VariantSelection(t *testing.T) {
	table := buildTable(t)

	// No source modifiers: the compact three byte form
	compact := encode(t, table, "fmad",
		[]ops.Ref{ops.RegRef(4)},
		[]ops.Ref{ops.RegRef(1), ops.RegRef(2), ops.RegRef(3)},
		nil)

	assert.Equal(t, []byte{0xB0, 0x12, 0x34}, compact)
	assert.Equal(t, []string{"fmad r4, r1, r2, r3"}, decodeAll(t, table, compact))

	// A negated source forces the extended form with the modifier byte
	extended := encode(t, table, "fmad",
		[]ops.Ref{ops.RegRef(4)},
		[]ops.Ref{ops.RegRef(1), ops.RegRef(2).WithFlag(table.RefMods["neg"]), ops.RegRef(3)},
		nil)

	assert.Equal(t, []byte{0xB8, 0x12, 0x34, 0x04}, extended)
	assert.Equal(t, []string{"fmad r4, r1, r2, r3, xs1neg"}, decodeAll(t, table, extended))
}

func TestTst_CompactCoversLowTestOps(t *testing.T) {
	table := buildTable(t)

	tstOp, found := table.Registry.Enum("tst_op")
	require.True(t, found)

	low, err := tstOp.Elem("notzero")
	require.NoError(t, err)

	compact := encode(t, table, "tst", nil,
		[]ops.Ref{ops.RegRef(1), ops.RegRef(2)},
		map[string]uint64{"tst_op": low.Value})

	assert.Equal(t, []byte{0xC6, 0x12}, compact)
	assert.Equal(t, []string{"tst r1, r2, notzero"}, decodeAll(t, table, compact))

	high, err := tstOp.Elem("ne")
	require.NoError(t, err)

	extended := encode(t, table, "tst", nil,
		[]ops.Ref{ops.RegRef(1), ops.RegRef(2)},
		map[string]uint64{"tst_op": high.Value})

	assert.Equal(t, []byte{0xC8, 0x12, 0x07}, extended)
	assert.Equal(t, []string{"tst r1, r2, ne"}, decodeAll(t, table, extended))
}

func TestSngl_DedicatedMnemonicsWinOverFallback(t *testing.T) {
	table := buildTable(t)

	frcp := encode(t, table, "frcp",
		[]ops.Ref{ops.RegRef(2)},
		[]ops.Ref{ops.RegRef(7)},
		nil)

	assert.Equal(t, []byte{0xA2, 0x72}, frcp)
	assert.Equal(t, []string{"frcp r2, r7"}, decodeAll(t, table, frcp))

	mbyp := encode(t, table, "mbyp",
		[]ops.Ref{ops.RegRef(2)},
		[]ops.Ref{ops.RegRef(7)},
		nil)

	assert.Equal(t, []byte{0xA0, 0x72}, mbyp)
	assert.Equal(t, []string{"mbyp r2, r7"}, decodeAll(t, table, mbyp))

	// No dedicated mnemonic for frsq: the generic fallback renders the op
	// as a modifier instead
	assert.Equal(t, []string{"sngl r2, r7, frsq"}, decodeAll(t, table, []byte{0xA4, 0x72}))
}

func TestMovc_WriteMaskPassZero(t *testing.T) {
	table := buildTable(t)

	masked := encode(t, table, "movc",
		[]ops.Ref{ops.RegRef(5)},
		[]ops.Ref{ops.RegRef(1), ops.RegRef(2)},
		map[string]uint64{"wmask": 0b0011})

	assert.Equal(t, []byte{0xD3, 0x12, 0x50}, masked)
	assert.Equal(t, []string{"movc r5, r1, r2, x|y"}, decodeAll(t, table, masked))

	// The defaulted mask means all lanes and is omitted from the rendering
	full := encode(t, table, "movc",
		[]ops.Ref{ops.RegRef(5)},
		[]ops.Ref{ops.RegRef(1), ops.RegRef(2)},
		nil)

	assert.Equal(t, []byte{0xDF, 0x12, 0x50}, full)
	assert.Equal(t, []string{"movc r5, r1, r2"}, decodeAll(t, table, full))

	// An all-zero raw mask decodes to all lanes too
	assert.Equal(t, []string{"movc r5, r1, r2"}, decodeAll(t, table, []byte{0xD0, 0x12, 0x50}))
}

func TestPck_EncodeDecode(t *testing.T) {
	table := buildTable(t)

	fmt, found := table.Registry.Enum("pck_fmt")
	require.True(t, found)

	f32, err := fmt.Elem("f32")
	require.NoError(t, err)

	buffer := encode(t, table, "pck",
		[]ops.Ref{ops.RegRef(3)},
		[]ops.Ref{ops.RegRef(1)},
		map[string]uint64{"fmt": f32.Value, "scale": 1})

	assert.Equal(t, []byte{0xED, 0x13, 0x00}, buffer)
	assert.Equal(t, []string{"pck r3, r1, f32, scale"}, decodeAll(t, table, buffer))
}

func TestBackend_EncodeDecode(t *testing.T) {
	table := buildTable(t)

	uvsw := encode(t, table, "uvsw.write", nil,
		[]ops.Ref{ops.RegRef(2), ops.ImmRef(6)},
		map[string]uint64{"wmask": 0b1000})

	assert.Equal(t, []byte{0xF0, 0x28, 0x06}, uvsw)
	assert.Equal(t, []string{"uvsw.write r2, #6, w"}, decodeAll(t, table, uvsw))

	fitr := encode(t, table, "fitr",
		[]ops.Ref{ops.RegRef(6)},
		[]ops.Ref{ops.ImmRef(12), ops.DrcRef(0)},
		map[string]uint64{"sat": 1, "count": 3})

	assert.Equal(t, []byte{0xF6, 0x0C, 0x63}, fitr)
	assert.Equal(t, []string{"fitr r6, cf12, drc0, fsat, count=3"}, decodeAll(t, table, fitr))
}

func TestControlOps_EncodeDecode(t *testing.T) {
	table := buildTable(t)

	nop := encode(t, table, "nop", nil, nil, nil)
	assert.Equal(t, []byte{0x05, 0x02}, nop)
	assert.Equal(t, []string{"nop"}, decodeAll(t, table, nop))

	nopEnd := encode(t, table, "nop", nil, nil, map[string]uint64{"end": 1})
	assert.Equal(t, []byte{0x15, 0x02}, nopEnd)
	assert.Equal(t, []string{"nop end"}, decodeAll(t, table, nopEnd))

	wdf := encode(t, table, "wdf", nil, []ops.Ref{ops.DrcRef(1)}, nil)
	assert.Equal(t, []byte{0x05, 0x23, 0x01}, wdf)
	assert.Equal(t, []string{"wdf drc1"}, decodeAll(t, table, wdf))

	wop := encode(t, table, "wop", nil, nil, nil)
	assert.Equal(t, []byte{0x15, 0x42}, wop)
	assert.Equal(t, []string{"wop"}, decodeAll(t, table, wop))
}

func encodeGroup(t *testing.T, table *Table, group string, dests []ops.Ref, srcs []ops.Ref, mods map[string]uint64) []byte {
	instr, err := ops.NewInstr(table.Ops["igrp"], dests, srcs)
	require.NoError(t, err)

	for name, value := range mods {
		require.NoError(t, instr.SetMod(table.OpMods[name], value))
	}

	buffer, err := table.Groups[group].Encode(instr)
	require.NoError(t, err)

	return buffer
}

func TestGroup_FmadFillsHeaderLength(t *testing.T) {
	table := buildTable(t)

	cc, found := table.Registry.Enum("cc")
	require.True(t, found)

	ifP0, err := cc.Elem("if_p0")
	require.NoError(t, err)

	buffer := encodeGroup(t, table, "fmad",
		[]ops.Ref{ops.RegRef(4)},
		[]ops.Ref{ops.RegRef(1), ops.RegRef(2), ops.RegRef(3)},
		map[string]uint64{"end": 1, "cc": ifP0.Value})

	assert.Equal(t, []byte{0x30, 0x05, 0xB0, 0x12, 0x34}, buffer)
	assert.Equal(t, []string{
		"igrp.p0 e1_z1, end, length=5",
		"fmad r4, r1, r2, r3",
	}, decodeAll(t, table, buffer))
}

func TestGroup_FmulUvswForwardsThroughChannel(t *testing.T) {
	table := buildTable(t)

	buffer := encodeGroup(t, table, "fmul_uvsw", nil,
		[]ops.Ref{ops.RegRef(1), ops.RegRef(2), ops.ImmRef(6)},
		map[string]uint64{"end": 1})

	assert.Equal(t, []byte{0x16, 0x08, 0x90, 0x12, 0x00, 0xF0, 0x0F, 0x06}, buffer)
	assert.Equal(t, []string{
		"igrp.p0_be end, length=8",
		"fmul r0, r1, r2",
		"uvsw.write r0, #6",
	}, decodeAll(t, table, buffer))
}

func TestGroup_ConsumedModsDoNotLeakIntoPhases(t *testing.T) {
	table := buildTable(t)

	instr, err := ops.NewInstr(table.Ops["igrp"],
		[]ops.Ref{ops.RegRef(4)},
		[]ops.Ref{ops.RegRef(1), ops.RegRef(2), ops.RegRef(3)})
	require.NoError(t, err)

	require.NoError(t, instr.SetMod(table.OpMods["end"], 1))

	_, err = table.Groups["fmad"].Encode(instr)
	require.NoError(t, err)

	assert.Equal(t, uint64(0), instr.Mod(table.OpMods["end"]))
}

func TestDecoder_UnknownBytesResync(t *testing.T) {
	table := buildTable(t)

	// 0x7F selects no phase opcode, no control op and no group layout
	consumed, text, warnings := table.Decoder.Decode([]byte{0x7F}, 0)
	assert.Equal(t, 1, consumed)
	assert.Equal(t, "<unknown 0x7f>", text)
	require.Len(t, warnings, 1)
	assert.Equal(t, decoder.Warning_UnknownEncoding, warnings[0].Kind)
}

func TestDecoder_HeadersNeverAliasPhaseOpcodes(t *testing.T) {
	table := buildTable(t)

	// Group headers keep bit 7 of their first byte clear, phase instructions
	// keep it set; no raw byte can match both sides of the table
	for _, s := range table.Structs {
		mask, value := s.ExactMask(), s.ExactValue()

		switch s.Set.Name {
		case "alu", "backend":
			assert.Equal(t, uint64(0x80), mask&0x80, "struct %v", s.Name)
			assert.Equal(t, uint64(0x80), value&0x80, "struct %v", s.Name)
		case "header":
			assert.Equal(t, uint64(0x80), mask&0x80, "struct %v", s.Name)
			assert.Zero(t, value&0x80, "struct %v", s.Name)
		}
	}
}
