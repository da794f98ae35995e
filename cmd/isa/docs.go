package isa

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/Manu343726/escarabajo/pkg/isa/ops"
	"github.com/Manu343726/escarabajo/pkg/isa/table"
	"github.com/Manu343726/escarabajo/pkg/isa/types"
	"github.com/spf13/cobra"
)

var supportedSections = map[string]func(*table.Table) string{
	"ops":     opsDoc,
	"types":   typesDoc,
	"layouts": layoutsDoc,
}

var docsCmd = &cobra.Command{
	Use:   "docs section",
	Short: "Show instruction set documentation",
	Long: `Dumps one section of the instruction set catalog.
By default the tool dumps the documentation to stdout, but it can be redirected to a file using the --output flag.

Supported sections:
` + strings.Join(sectionNames(), "\n"),
	Args:      cobra.MatchAll(cobra.OnlyValidArgs, cobra.ExactArgs(1)),
	ValidArgs: sectionKeys(),
	Run: func(cmd *cobra.Command, args []string) {
		t := loadTable()
		body := supportedSections[args[0]](t)

		outputFile, _ := cmd.Flags().GetString("output")
		if outputFile != "" {
			file, err := os.Create(outputFile)
			if err != nil {
				fmt.Println("Error creating file:", err)
				os.Exit(1)
			}
			defer file.Close()
			fmt.Fprintln(file, body)
		} else {
			fmt.Println(body)
		}
	},
}

func init() {
	IsaCmd.AddCommand(docsCmd)
	docsCmd.Flags().StringP("output", "o", "", "Output file. If not specified, the documentation is dumped to stdout.")
}

func sectionKeys() []string {
	keys := make([]string, 0, len(supportedSections))

	for key := range supportedSections {
		keys = append(keys, key)
	}

	sort.Strings(keys)
	return keys
}

func sectionNames() []string {
	names := sectionKeys()

	for i, name := range names {
		names[i] = "  " + name
	}

	return names
}

func opsDoc(t *table.Table) string {
	var builder strings.Builder

	names := make([]string, 0, len(t.Ops))

	for name := range t.Ops {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		op := t.Ops[name]

		fmt.Fprintf(&builder, "%v\n", op.Name)
		fmt.Fprintf(&builder, "  dests: %v  srcs: %v\n", arityDoc(op.NumDests), arityDoc(op.NumSrcs))

		if len(op.OpMods) > 0 {
			fmt.Fprintf(&builder, "  op mods: %v\n", modListDoc(op.OpMods))
		}

		for slot, mods := range op.SrcRefMods {
			if len(mods) > 0 {
				fmt.Fprintf(&builder, "  src[%v] mods: %v\n", slot, modListDoc(mods))
			}
		}

		for slot, mods := range op.DestRefMods {
			if len(mods) > 0 {
				fmt.Fprintf(&builder, "  dest[%v] mods: %v\n", slot, modListDoc(mods))
			}
		}

		builder.WriteString("\n")
	}

	return strings.TrimRight(builder.String(), "\n")
}

func arityDoc(count int) string {
	if count == ops.VariableOperands {
		return "variable"
	}

	return fmt.Sprint(count)
}

func modListDoc(mods []*ops.ModType) string {
	names := make([]string, len(mods))

	for i, mod := range mods {
		names[i] = fmt.Sprintf("%v(%v)", mod.Name, mod.Type.Kind)
	}

	return strings.Join(names, ", ")
}

func typesDoc(t *table.Table) string {
	var builder strings.Builder

	for _, enum := range t.Registry.Enums() {
		kind := "enum"

		if enum.IsBitset {
			kind = "bitset enum"
		}

		fmt.Fprintf(&builder, "%v %v (%v bits)", kind, enum.Name, enum.NumBits)

		if enum.Parent != nil {
			fmt.Fprintf(&builder, " <= %v", enum.Parent.Name)
		}

		builder.WriteString("\n")

		for _, elem := range enum.Elems {
			fmt.Fprintf(&builder, "  %v = %v\n", elem.Name, elem.Value)
		}

		if enum.PassZero != nil {
			fmt.Fprintf(&builder, "  raw 0 decodes as %v\n", enum.Format(*enum.PassZero))
		}

		builder.WriteString("\n")
	}

	for _, scalar := range t.Registry.Scalars() {
		fmt.Fprintf(&builder, "scalar %v (%v bits", scalar.Name, scalar.NumBits)

		if decBits := scalar.DecodedBits(); decBits != scalar.NumBits {
			fmt.Fprintf(&builder, ", %v decoded", decBits)
		}

		builder.WriteString(")")

		if scalar.Kind == types.Kind_Uint && scalar.Transform != nil {
			builder.WriteString(" with paired encode/decode transform")
		}

		builder.WriteString("\n")
	}

	return strings.TrimRight(builder.String(), "\n")
}

func layoutsDoc(t *table.Table) string {
	var builder strings.Builder

	for _, s := range t.Structs {
		fmt.Fprintf(&builder, "%v (%v bytes, bit set %v)\n", s.Name, s.NumBytes(), s.Set.Name)

		frame, err := structFrame(s, 2)

		if err != nil {
			fmt.Fprintf(&builder, "  (frame unavailable: %v)\n", err)
			continue
		}

		builder.WriteString(frame)
		builder.WriteString("\n")
	}

	return strings.TrimRight(builder.String(), "\n")
}
