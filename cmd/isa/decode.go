package isa

import (
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Manu343726/escarabajo/pkg/isa/table"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

var (
	decodeGolden string
	decodeColor  bool
	decodeFrame  bool
)

var (
	colorOffset  = color.New(color.FgCyan)
	colorBytes   = color.New(color.FgMagenta)
	colorInstr   = color.New(color.FgYellow)
	colorWarning = color.New(color.FgRed, color.Bold)
	colorSuccess = color.New(color.FgGreen)
)

var decodeCmd = &cobra.Command{
	Use:   "decode [file]",
	Short: "Disassemble a hex-encoded instruction stream",
	Long: `Reads hex-encoded instruction bytes from a file (or stdin when the file is
"-" or omitted) and prints one disassembled instruction per line.

Whitespace and '#' comments in the input are ignored. Unknown encodings and
words with undocumented set bits are reported as warnings; decoding resyncs
and keeps going.

With --golden, the rendered output is diffed against a YAML fixture file
instead of printed, and the command exits nonzero on any mismatch:

  - offset: 0
    text: "fmad r0, r1, r2, r3"
  - offset: 6
    text: "wop"`,
	Args: cobra.MaximumNArgs(1),
	Run:  runDecode,
}

func init() {
	IsaCmd.AddCommand(decodeCmd)
	decodeCmd.Flags().StringVarP(&decodeGolden, "golden", "g", "", "YAML fixture file to diff the output against")
	decodeCmd.Flags().BoolVarP(&decodeColor, "color", "c", false, "Colorize the output")
	decodeCmd.Flags().BoolVarP(&decodeFrame, "frame", "f", false, "Draw the bit layout of each matched instruction")
}

func runDecode(cmd *cobra.Command, args []string) {
	input, err := readInput(args)

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(2)
	}

	data, err := parseHexStream(string(input))

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing input: %v\n", err)
		os.Exit(2)
	}

	t := loadTable()
	lines := disassemble(t, data)

	slog.Debug("stream disassembled", "bytes", len(data), "instructions", len(lines))

	if decodeGolden != "" {
		if !checkGolden(decodeGolden, lines) {
			os.Exit(1)
		}

		colorSuccess.Printf("%v instruction(s) match %v\n", len(lines), decodeGolden)
		return
	}

	printLines(t, data, lines)
}

func readInput(args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(os.Stdin)
	}

	return os.ReadFile(args[0])
}

func printLines(t *table.Table, data []byte, lines []decodedLine) {
	color.NoColor = color.NoColor || !decodeColor

	for _, line := range lines {
		fmt.Printf("%v  %v  %v\n",
			colorOffset.Sprintf("%08x", line.Offset),
			colorBytes.Sprintf("%-12v", hex.EncodeToString(line.Bytes)),
			colorInstr.Sprint(line.Text))

		for _, warning := range line.Warnings {
			colorWarning.Printf("          ! %v\n", warning)
		}

		if decodeFrame {
			printFrame(t, data, line.Offset)
		}
	}
}

func printFrame(t *table.Table, data []byte, offset int) {
	pattern := t.Decoder.Match(data, offset)

	if pattern == nil {
		return
	}

	frame, err := structFrame(pattern.Struct, 10)

	if err != nil {
		slog.Debug("frame rendering failed", "struct", pattern.Struct.Name, "error", err)
		return
	}

	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 && frameWidth(frame) > width {
		slog.Debug("frame too wide for the terminal", "struct", pattern.Struct.Name)
		return
	}

	fmt.Print(frame)
}

func frameWidth(frame string) int {
	width := 0

	for _, line := range strings.Split(frame, "\n") {
		if len(line) > width {
			width = len(line)
		}
	}

	return width
}

// Golden fixture entry: the expected rendering of one instruction
type goldenEntry struct {
	Offset int    `yaml:"offset"`
	Text   string `yaml:"text"`
}

func checkGolden(path string, lines []decodedLine) bool {
	raw, err := os.ReadFile(path)

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading golden file: %v\n", err)
		return false
	}

	var expected []goldenEntry

	if err := yaml.Unmarshal(raw, &expected); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing golden file: %v\n", err)
		return false
	}

	ok := true

	for i := 0; i < len(expected) || i < len(lines); i++ {
		switch {
		case i >= len(lines):
			colorWarning.Printf("missing: expected %q at offset %v\n", expected[i].Text, expected[i].Offset)
			ok = false
		case i >= len(expected):
			colorWarning.Printf("extra: decoded %q at offset %v\n", lines[i].Text, lines[i].Offset)
			ok = false
		case lines[i].Offset != expected[i].Offset || lines[i].Text != expected[i].Text:
			colorWarning.Printf("mismatch at entry %v:\n  expected offset %v: %q\n  decoded  offset %v: %q\n",
				i, expected[i].Offset, expected[i].Text, lines[i].Offset, lines[i].Text)
			ok = false
		}
	}

	return ok
}
