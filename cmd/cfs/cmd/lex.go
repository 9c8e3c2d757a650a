package cmd

import (
	"fmt"
	"os"

	cfserrors "github.com/cwbudde/cfsc/internal/errors"
	"github.com/cwbudde/cfsc/internal/lexer"
	"github.com/spf13/cobra"
)

var lexCmd = &cobra.Command{
	Use:   "lex <file>",
	Short: "Tokenize a source file and print the resulting tokens",
	Long: `Tokenize a Closed-Form Script file and print one token per line.

This is a debugging aid for the lexer; it has no effect on the default
compile invocation.`,
	Args: cobra.ExactArgs(1),
	RunE: lexFile,
}

func init() {
	rootCmd.AddCommand(lexCmd)
}

func lexFile(_ *cobra.Command, args []string) error {
	filename := args[0]
	raw, err := os.ReadFile(filename)
	if err != nil {
		return cfserrors.New(cfserrors.Usage, fmt.Sprintf("cannot read %s: %v", filename, err))
	}

	toks, err := lexer.All(stripCR(string(raw)))
	if err != nil {
		if ce, ok := err.(*cfserrors.CompileError); ok {
			return ce.WithSource(string(raw), filename)
		}
		return err
	}

	for _, t := range toks {
		fmt.Printf("%-10s %-12q @%s\n", t.Type, t.Literal, t.Pos)
	}
	return nil
}
