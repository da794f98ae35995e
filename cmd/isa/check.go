package isa

import (
	"fmt"
	"os"

	"github.com/Manu343726/escarabajo/pkg/isa/table"
	"github.com/Manu343726/escarabajo/pkg/utils"
	"github.com/spf13/cobra"
)

var checkVerbose bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the instruction set tables",
	Long: `Rebuilds the full ISA table, running every construction-time validation:
bit overlap, byte alignment, duplicate names, literal-vs-reserved conflicts,
enum subtype rules and encode/decode transform pairing.

Exits 0 when the table is sound and 1 with a diagnostic otherwise.`,
	Run: runCheck,
}

func init() {
	IsaCmd.AddCommand(checkCmd)
	checkCmd.Flags().BoolVar(&checkVerbose, "describe", false, "Print a summary of every validated bit struct")
}

func runCheck(cmd *cobra.Command, args []string) {
	t, err := table.New()

	if err != nil {
		colorWarning.Printf("table validation failed: %v\n", err)
		os.Exit(1)
	}

	if checkVerbose {
		for _, s := range t.Structs {
			fmt.Printf("%-12v %v byte(s)  exact %v/%v  fields %v\n",
				s.Name,
				s.NumBytes(),
				utils.FormatUintHex(s.ExactMask(), 2*s.NumBytes()),
				utils.FormatUintHex(s.ExactValue(), 2*s.NumBytes()),
				len(s.Fields()))
		}
	}

	colorSuccess.Printf("table ok: %v struct(s), %v op(s), %v encoding(s), %v pattern(s)\n",
		len(t.Structs), len(t.Ops), len(t.Encodings), len(t.Decoder.Patterns()))
}
