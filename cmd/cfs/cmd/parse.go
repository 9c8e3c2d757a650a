package cmd

import (
	"fmt"
	"os"

	cfserrors "github.com/cwbudde/cfsc/internal/errors"
	"github.com/cwbudde/cfsc/internal/parser"
	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse a source file and dump its pre-inline AST",
	Long: `Parse a Closed-Form Script file and print every function definition as
it appeared in source, before constant binding or inlining.

This is a debugging aid for the parser; it has no effect on the default
compile invocation.`,
	Args: cobra.ExactArgs(1),
	RunE: parseFile,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func parseFile(_ *cobra.Command, args []string) error {
	filename := args[0]
	raw, err := os.ReadFile(filename)
	if err != nil {
		return cfserrors.New(cfserrors.Usage, fmt.Sprintf("cannot read %s: %v", filename, err))
	}
	source := stripCR(string(raw))

	prog, err := parser.Parse(source)
	if err != nil {
		if ce, ok := err.(*cfserrors.CompileError); ok {
			return ce.WithSource(source, filename)
		}
		return err
	}

	fmt.Print(prog.String())
	return nil
}
