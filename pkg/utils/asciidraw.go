package utils

import (
	"fmt"
	"strings"
)

type AsciiFrameField struct {
	// Name of the field
	Name string

	// Units within the frame the field begins from
	Begin int

	// Field width
	Width int
}

// The last unit within the frame used by this field
func (f *AsciiFrameField) TopUnit() int {
	return f.Begin + f.Width - 1
}

type AsciiFrameUnitLayout uint

const (
	// Units increase left to right
	AsciiFrameUnitLayout_LeftToRight AsciiFrameUnitLayout = iota
	// Units increase right to left
	AsciiFrameUnitLayout_RightToLeft
)

func centerText(text string, width int, filler string) string {
	pad := width - len(text)
	left := pad / 2
	return strings.Repeat(filler, left) + text + strings.Repeat(filler, pad-left)
}

// Inserts "(unused)" filler fields wherever the declared fields leave gaps,
// so the drawn frame always covers frameWidth units. Fields must be sorted
// by position and non-overlapping.
func fillAsciiFrameGaps(fields []AsciiFrameField, frameWidth int) ([]AsciiFrameField, error) {
	result := make([]AsciiFrameField, 0, len(fields))
	currentUnit := 0

	for _, field := range fields {
		if field.Begin < currentUnit {
			return nil, fmt.Errorf("field '%v' at unit %v overlaps the previous field; make sure fields are sorted by position and do not overlap", field.Name, field.Begin)
		}

		if field.Begin > currentUnit {
			result = append(result, AsciiFrameField{Name: "(unused)", Begin: currentUnit, Width: field.Begin - currentUnit})
		}

		result = append(result, field)
		currentUnit = field.Begin + field.Width
	}

	if currentUnit < frameWidth {
		result = append(result, AsciiFrameField{Name: "(unused)", Begin: currentUnit, Width: frameWidth - currentUnit})
	}

	return result, nil
}

// Draws an ascii diagram of a binary frame composed of contiguous fields of different unit lengths:
//
//	15          8 7           0
//	+-----------+-------------+
//	|    hi     |     lo      |
//	+-----------+-------------+
//	 <- 8 bits -> <- 8 bits ->
func AsciiFrame(fields []AsciiFrameField, frameWidth int, unit string, layout AsciiFrameUnitLayout, leftpad int) (string, error) {
	allFields, err := fillAsciiFrameGaps(fields, frameWidth)

	if err != nil {
		return "", err
	}

	if layout == AsciiFrameUnitLayout_RightToLeft {
		reversed := make([]AsciiFrameField, len(allFields))
		for i := range allFields {
			reversed[len(allFields)-i-1] = allFields[i]
		}
		allFields = reversed
	}

	pad := strings.Repeat(" ", leftpad)

	var indices, border, body, widths strings.Builder
	indices.WriteString(pad)
	border.WriteString(pad)
	body.WriteString(pad)
	widths.WriteString(pad)

	for _, field := range allFields {
		index := fmt.Sprint(field.Begin)
		if layout == AsciiFrameUnitLayout_RightToLeft {
			index = fmt.Sprint(field.TopUnit())
		}

		name := fmt.Sprintf(" %v ", field.Name)
		width := fmt.Sprintf("<- %v %v ->", field.Width, unit)
		cell := Max([]int{len(index), len(name), len(width)})

		indices.WriteString(index)
		indices.WriteString(strings.Repeat(" ", cell-len(index)+1))
		border.WriteString("+")
		border.WriteString(strings.Repeat("-", cell))
		body.WriteString("|")
		body.WriteString(centerText(name, cell, " "))
		widths.WriteString(" ")
		widths.WriteString(centerText(width, cell, " "))
	}

	if layout == AsciiFrameUnitLayout_LeftToRight {
		indices.WriteString(fmt.Sprint(frameWidth - 1))
	} else {
		indices.WriteString("0")
	}

	border.WriteString("+")
	body.WriteString("|")
	widths.WriteString(" ")

	borderRow := border.String()

	return fmt.Sprintf("%v\n%v\n%v\n%v\n%v\n", indices.String(), borderRow, body.String(), borderRow, widths.String()), nil
}
