package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAsciiFrame_NoFields(t *testing.T) {
	fields := []AsciiFrameField{}

	actual, err := AsciiFrame(fields, 16, "bits", AsciiFrameUnitLayout_RightToLeft, 0)
	assert.NoError(t, err)

	assert.Equal(t, ""+
		`15            0
+-------------+
|  (unused)   |
+-------------+
 <- 16 bits ->
`,
		actual)
}

func TestAsciiFrame_SingleField(t *testing.T) {
	fields := []AsciiFrameField{
		{
			Name:  "first field",
			Begin: 0,
			Width: 16,
		},
	}

	actual, err := AsciiFrame(fields, 16, "bits", AsciiFrameUnitLayout_RightToLeft, 0)
	assert.NoError(t, err)

	assert.Equal(t, ""+
		`15            0
+-------------+
| first field |
+-------------+
 <- 16 bits ->
`,
		actual)
}

func TestAsciiFrame_TwoFields(t *testing.T) {
	fields := []AsciiFrameField{
		{
			Name:  "lo",
			Begin: 0,
			Width: 8,
		},
		{
			Name:  "hi",
			Begin: 8,
			Width: 8,
		},
	}

	actual, err := AsciiFrame(fields, 16, "bits", AsciiFrameUnitLayout_RightToLeft, 0)
	assert.NoError(t, err)

	assert.Equal(t, ""+
		`15            7            0
+------------+------------+
|     hi     |     lo     |
+------------+------------+
 <- 8 bits ->  <- 8 bits ->
`,
		actual)
}

func TestAsciiFrame_GapsAreFilled(t *testing.T) {
	fields := []AsciiFrameField{
		{
			Name:  "flag",
			Begin: 4,
			Width: 1,
		},
	}

	actual, err := AsciiFrame(fields, 8, "bits", AsciiFrameUnitLayout_RightToLeft, 0)
	assert.NoError(t, err)

	assert.Contains(t, actual, "(unused)")
	assert.Contains(t, actual, "flag")
}

func TestAsciiFrame_OverlappingFieldsFail(t *testing.T) {
	fields := []AsciiFrameField{
		{
			Name:  "a",
			Begin: 0,
			Width: 4,
		},
		{
			Name:  "b",
			Begin: 2,
			Width: 4,
		},
	}

	_, err := AsciiFrame(fields, 8, "bits", AsciiFrameUnitLayout_RightToLeft, 0)
	assert.Error(t, err)
}
