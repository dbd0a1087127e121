package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"ascc/pkg/ast"
	"ascc/pkg/compiler"
	"ascc/pkg/wasmir"
)

var buildCmd = &cobra.Command{
	Use:   "build <file|->",
	Short: "Compile a source file (or stdin, with -) to a WebAssembly IR module",
	Args:  cobra.ExactArgs(1),
	RunE:  runBuild,
}

func init() {
	buildCmd.Flags().Int("uintptr-size", 4, "pointer width in bytes (4 or 8)")
	buildCmd.Flags().Bool("no-lib", false, "freestanding mode: synthesize malloc/free inline instead of linking the allocator")
	buildCmd.Flags().String("config", "", "load Options from a TOML project file instead of flags")
}

func runBuild(cmd *cobra.Command, args []string) error {
	opts, err := buildOptions(cmd)
	if err != nil {
		return err
	}

	mod, err := compileTarget(args[0], hostParser{}, opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "compiled module with %d function(s), start=%q\n", len(mod.Funcs), mod.Start)
	return nil
}

func buildOptions(cmd *cobra.Command) (compiler.Options, error) {
	if cfgPath, _ := cmd.Flags().GetString("config"); cfgPath != "" {
		return compiler.LoadOptionsFile(cfgPath)
	}
	uintptrSize, err := cmd.Flags().GetInt("uintptr-size")
	if err != nil {
		return compiler.Options{}, err
	}
	noLib, err := cmd.Flags().GetBool("no-lib")
	if err != nil {
		return compiler.Options{}, err
	}
	return compiler.Options{UintptrSize: uintptrSize, NoLib: noLib}, nil
}

// hostParser is the collaborator spec.md §9 calls for: a real front end
// that turns source text into the ast.Program shape pkg/compiler consumes.
// Re-implementing one is out of this module's scope (spec.md §1); asccli
// reports that plainly instead of faking a parse.
type hostParser struct{}

func (hostParser) ParseFile(path string) (*ast.Program, error) {
	return nil, fmt.Errorf("asccli: no host parser is wired in; pkg/compiler expects an *ast.Program from an embedding caller's own front end")
}

func (hostParser) ParseString(source string) (*ast.Program, error) {
	return nil, fmt.Errorf("asccli: no host parser is wired in; pkg/compiler expects an *ast.Program from an embedding caller's own front end")
}

func compileTarget(path string, p compiler.Parser, opts compiler.Options) (*wasmir.Module, error) {
	if path == "-" {
		src, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		mod, _, err := compiler.CompileString(string(src), p, opts)
		if err != nil {
			return nil, err
		}
		if mod == nil {
			return nil, fmt.Errorf("compilation failed")
		}
		return mod, nil
	}

	mod, _, err := compiler.CompileFile(path, p, opts)
	if err != nil {
		return nil, err
	}
	if mod == nil {
		return nil, fmt.Errorf("compilation failed")
	}
	return mod, nil
}
