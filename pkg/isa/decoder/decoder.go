// Package decoder matches raw instruction bytes against an ordered table of
// patterns and renders the first match as text. Matching is first-match: the
// table author orders patterns so that more specific exact masks precede
// more general fallbacks, and the decoder never reorders them.
package decoder

import (
	"fmt"
	"strings"

	"github.com/Manu343726/escarabajo/pkg/utils"
)

type WarningKind int

const (
	// No pattern matched the raw bytes
	Warning_UnknownEncoding WarningKind = iota
	// A pattern matched but bits outside every field were set
	Warning_UnexpectedSetBits
	// A pattern matched but its fields could not be extracted or rendered
	Warning_RenderFailed
)

func (k WarningKind) String() string {
	switch k {
	case Warning_UnknownEncoding:
		return "unknown encoding"
	case Warning_UnexpectedSetBits:
		return "unexpected set bits"
	case Warning_RenderFailed:
		return "render failed"
	}

	return "unknown warning"
}

// A non-fatal decode diagnostic. Decoding never aborts the stream: warnings
// accompany a best-effort rendering instead.
type Warning struct {
	Kind    WarningKind
	Offset  int
	Details string
}

func (w Warning) String() string {
	return fmt.Sprintf("%v at offset %v: %v", w.Kind, w.Offset, w.Details)
}

type Decoder struct {
	patterns []*Pattern
}

// Builds a decoder over the given patterns, kept in the given order
func NewDecoder(patterns ...*Pattern) (*Decoder, error) {
	if len(patterns) == 0 {
		return nil, utils.MakeError(ErrBadPattern, "decoder has no patterns")
	}

	for _, pattern := range patterns {
		if err := pattern.validate(); err != nil {
			return nil, err
		}
	}

	return &Decoder{patterns: patterns}, nil
}

// Patterns in match order
func (d *Decoder) Patterns() []*Pattern {
	return d.patterns
}

// Returns the pattern that would match the bytes at the given offset, or
// nil when no pattern matches. Match order is the table order.
func (d *Decoder) Match(buffer []byte, offset int) *Pattern {
	if offset >= len(buffer) {
		return nil
	}

	remaining := buffer[offset:]

	for _, pattern := range d.patterns {
		numBytes := pattern.Struct.NumBytes()

		if numBytes > len(remaining) {
			continue
		}

		word := loadWord(remaining, numBytes)

		if word&pattern.Struct.ExactMask() == pattern.Struct.ExactValue() {
			return pattern
		}
	}

	return nil
}

// Decodes one instruction at the given offset. Returns the consumed byte
// count, the rendered text and any warnings. The consumed count is negated
// when the matched word carries set bits outside the documented encoding, so
// callers know the length may be wrong; it is always non-zero while bytes
// remain, letting a disassembler resync and keep scanning.
func (d *Decoder) Decode(buffer []byte, offset int) (int, string, []Warning) {
	if offset >= len(buffer) {
		return 0, "", nil
	}

	remaining := buffer[offset:]
	pattern := d.Match(buffer, offset)

	if pattern == nil {
		return unknownEncoding(remaining, offset)
	}

	word := loadWord(remaining, pattern.Struct.NumBytes())

	return d.decodeMatch(pattern, remaining, offset, word)
}

func (d *Decoder) decodeMatch(pattern *Pattern, remaining []byte, offset int, word uint64) (int, string, []Warning) {
	var warnings []Warning

	consumed, err := pattern.length(remaining)

	if err != nil || consumed > len(remaining) {
		return unknownEncoding(remaining, offset)
	}

	text, err := pattern.render(remaining)

	if err != nil {
		text = pattern.Name
		warnings = append(warnings, Warning{
			Kind:    Warning_RenderFailed,
			Offset:  offset,
			Details: err.Error(),
		})
	}

	residual := word &^ (pattern.Struct.ExactMask() | pattern.Struct.FieldMask())

	if residual != 0 {
		warnings = append(warnings, Warning{
			Kind:    Warning_UnexpectedSetBits,
			Offset:  offset,
			Details: fmt.Sprintf("raw word has undocumented bits %v set", utils.FormatUintBinary(residual, utils.Bits(pattern.Struct.NumBytes()))),
		})

		consumed = -consumed
	}

	return consumed, text, warnings
}

// Fallback when no pattern matches: consume one or two bytes so the caller
// can resync at the next word, and render the skipped bytes as raw data
func unknownEncoding(remaining []byte, offset int) (int, string, []Warning) {
	consumed := 2

	if len(remaining) < 2 {
		consumed = 1
	}

	skipped := make([]string, consumed)

	for i := 0; i < consumed; i++ {
		skipped[i] = utils.FormatUintHex(uint64(remaining[i]), 2)
	}

	text := "<unknown " + strings.Join(skipped, " ") + ">"

	return consumed, text, []Warning{{
		Kind:    Warning_UnknownEncoding,
		Offset:  offset,
		Details: text,
	}}
}

// Loads numBytes little-endian bytes into a word
func loadWord(buffer []byte, numBytes int) uint64 {
	var word uint64

	for i := 0; i < numBytes; i++ {
		word |= uint64(buffer[i]) << (i * utils.BitsPerByte)
	}

	return word
}
