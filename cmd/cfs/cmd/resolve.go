package cmd

import (
	"fmt"
	"os"

	cfserrors "github.com/cwbudde/cfsc/internal/errors"
	"github.com/cwbudde/cfsc/internal/parser"
	"github.com/cwbudde/cfsc/internal/program"
	"github.com/cwbudde/cfsc/internal/resolve"
	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <file>",
	Short: "Resolve a source file and dump the inlined expression",
	Long: `Parse, build the program table, and run the inliner/resolver on a
Closed-Form Script file, printing the resulting expression before it is
lowered to the engine's arithmetic-only subset.

This is a debugging aid for the resolver; it has no effect on the default
compile invocation.`,
	Args: cobra.ExactArgs(1),
	RunE: resolveFile,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}

func resolveFile(_ *cobra.Command, args []string) error {
	filename := args[0]
	raw, err := os.ReadFile(filename)
	if err != nil {
		return cfserrors.New(cfserrors.Usage, fmt.Sprintf("cannot read %s: %v", filename, err))
	}
	source := stripCR(string(raw))

	prog, err := parser.Parse(source)
	if err != nil {
		return withSource(err, source, filename)
	}

	table, err := program.Build(prog)
	if err != nil {
		return withSource(err, source, filename)
	}

	resolved, err := resolve.Resolve(table)
	if err != nil {
		return withSource(err, source, filename)
	}

	fmt.Println(resolved.String())
	return nil
}
