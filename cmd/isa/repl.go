package isa

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive decode shell",
	Long: `Starts an interactive shell that decodes every line of hex bytes you type.

Commands:
  frame on|off   toggle bit-layout frames
  quit           leave the shell`,
	Run: runRepl,
}

func init() {
	IsaCmd.AddCommand(replCmd)
}

func replHistoryPath() string {
	home, err := os.UserHomeDir()

	if err != nil {
		return ""
	}

	return filepath.Join(home, ".escarabajo_history")
}

func runRepl(cmd *cobra.Command, args []string) {
	t := loadTable()

	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)

	historyPath := replHistoryPath()

	if historyPath != "" {
		if file, err := os.Open(historyPath); err == nil {
			line.ReadHistory(file)
			file.Close()
		}
	}

	showFrames := false

	for {
		input, err := line.Prompt("isa> ")

		if err != nil {
			// Ctrl-C or EOF
			break
		}

		input = strings.TrimSpace(input)

		if input == "" {
			continue
		}

		line.AppendHistory(input)

		switch input {
		case "quit", "exit":
			saveHistory(line, historyPath)
			return
		case "frame on":
			showFrames = true
			continue
		case "frame off":
			showFrames = false
			continue
		}

		data, err := parseHexStream(input)

		if err != nil {
			colorWarning.Printf("bad input: %v\n", err)
			continue
		}

		for _, decoded := range disassemble(t, data) {
			fmt.Printf("%v  %v  %v\n",
				colorOffset.Sprintf("%08x", decoded.Offset),
				colorBytes.Sprintf("%-12v", hex.EncodeToString(decoded.Bytes)),
				colorInstr.Sprint(decoded.Text))

			for _, warning := range decoded.Warnings {
				colorWarning.Printf("          ! %v\n", warning)
			}

			if showFrames {
				printFrame(t, data, decoded.Offset)
			}
		}
	}

	saveHistory(line, historyPath)
}

func saveHistory(line *liner.State, historyPath string) {
	if historyPath == "" {
		return
	}

	if file, err := os.Create(historyPath); err == nil {
		line.WriteHistory(file)
		file.Close()
	}
}
