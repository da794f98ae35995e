package isa

import (
	"log/slog"
	"os"

	"github.com/Manu343726/escarabajo/pkg/isa/table"
	"github.com/spf13/cobra"
)

var IsaCmd = &cobra.Command{
	Use:   "isa",
	Short: "Inspect, validate and decode the instruction set",
}

// Builds the ISA table, exiting on any construction error. Table errors are
// authoring bugs, not user input problems, so there is nothing to recover.
func loadTable() *table.Table {
	t, err := table.New()

	if err != nil {
		slog.Error("table construction failed", "error", err)
		os.Exit(1)
	}

	return t
}
