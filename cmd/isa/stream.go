package isa

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/Manu343726/escarabajo/pkg/isa/bitset"
	"github.com/Manu343726/escarabajo/pkg/isa/decoder"
	"github.com/Manu343726/escarabajo/pkg/isa/table"
	"github.com/Manu343726/escarabajo/pkg/utils"
)

// Parses a hex-encoded instruction stream: bytes as hex digits, whitespace
// ignored, '#' starts a comment running to end of line
func parseHexStream(input string) ([]byte, error) {
	var digits strings.Builder

	for _, line := range strings.Split(input, "\n") {
		if comment := strings.IndexByte(line, '#'); comment >= 0 {
			line = line[:comment]
		}

		for _, r := range line {
			switch {
			case r == ' ' || r == '\t' || r == '\r' || r == ',':
			default:
				digits.WriteRune(r)
			}
		}
	}

	text := strings.TrimPrefix(digits.String(), "0x")

	if len(text)%2 != 0 {
		return nil, fmt.Errorf("odd number of hex digits in input")
	}

	return hex.DecodeString(text)
}

// One disassembled instruction
type decodedLine struct {
	Offset   int
	Bytes    []byte
	Text     string
	Warnings []decoder.Warning
}

// Decodes the whole stream front to back, resyncing past unknown or
// suspect words instead of stopping
func disassemble(t *table.Table, data []byte) []decodedLine {
	var lines []decodedLine
	offset := 0

	for offset < len(data) {
		consumed, text, warnings := t.Decoder.Decode(data, offset)

		length := consumed
		if length < 0 {
			length = -length
		}

		if length == 0 {
			break
		}

		if offset+length > len(data) {
			length = len(data) - offset
		}

		lines = append(lines, decodedLine{
			Offset:   offset,
			Bytes:    data[offset : offset+length],
			Text:     text,
			Warnings: warnings,
		})

		offset += length
	}

	return lines
}

// Renders the bit layout of a struct as an ascii frame, one cell per piece,
// bit 0 on the right
func structFrame(s *bitset.BitStruct, leftpad int) (string, error) {
	var fields []utils.AsciiFrameField

	for _, structField := range s.Fields() {
		for _, piece := range structField.Field.Pieces {
			fields = append(fields, utils.AsciiFrameField{
				Name:  structField.Field.Name,
				Begin: piece.FirstBit(),
				Width: piece.Range.Size,
			})
		}
	}

	sort.Slice(fields, func(i, j int) bool { return fields[i].Begin < fields[j].Begin })

	return utils.AsciiFrame(fields, utils.Bits(s.NumBytes()), "bits", utils.AsciiFrameUnitLayout_RightToLeft, leftpad)
}
