// Package main implements the asccli CLI: a thin cobra wrapper over
// pkg/compiler exercising its public API surface. It is not part of the
// core module's tested contract (spec.md §6 keeps the CLI out of scope);
// it exists only so the package can be driven from a terminal.
package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ascc",
	Short: "Compiler driver for the restricted JS-family WebAssembly surface language",
}

func main() {
	rootCmd.AddCommand(buildCmd)
	rootCmd.PersistentFlags().String("color", "auto", "colorize diagnostic output (auto|on|off)")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		switch mode, _ := cmd.Flags().GetString("color"); mode {
		case "on":
			color.NoColor = false
		case "off":
			color.NoColor = true
		}
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
