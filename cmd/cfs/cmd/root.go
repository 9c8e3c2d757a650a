package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	cfserrors "github.com/cwbudde/cfsc/internal/errors"
	"github.com/cwbudde/cfsc/internal/lower"
	"github.com/cwbudde/cfsc/internal/parser"
	"github.com/cwbudde/cfsc/internal/program"
	"github.com/cwbudde/cfsc/internal/resolve"
	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "cfs <input.cfs> [output]",
	Short: "Closed-Form Script compiler",
	Long: `cfs compiles a Closed-Form Script source file into a single-line
closed-form arithmetic expression understood by the Facer watchface engine.

It runs the full pipeline - lex, parse, resolve (constant binding and
capture-free inlining starting at main), and lower (rewriting booleans,
comparisons, conditionals, exponentiation, modulo, and the degree-trig
and sign helper family into the engine's arithmetic-only subset) - and
writes the result to the given output path, or to standard output if
none is given.`,
	Version:       Version,
	Args:          cobra.RangeArgs(1, 2),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          compile,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExitCode maps a command error to its process exit code: 2 for a usage
// error, 1 for a lex/parse/program/resolve CompileError. Any error that is
// not a CompileError comes from Cobra's own argument validation (wrong
// argument count, unknown flag) and is itself a usage error.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if ce, ok := err.(*cfserrors.CompileError); ok {
		if ce.Kind == cfserrors.Usage {
			return 2
		}
		return 1
	}
	return 2
}

// Report prints err in the §7 wire format (<path>:<line>:<column>: <kind>:
// <message>) when it is a CompileError, or its plain message otherwise (a
// Cobra usage error such as a bad flag).
func Report(w io.Writer, err error) {
	if ce, ok := err.(*cfserrors.CompileError); ok {
		fmt.Fprintln(w, ce.UserFacing(ce.File))
		return
	}
	fmt.Fprintln(w, err)
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print non-fatal diagnostics to stderr")
}

func compile(_ *cobra.Command, args []string) error {
	inputPath := args[0]

	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return cfserrors.New(cfserrors.Usage, fmt.Sprintf("cannot read %s: %v", inputPath, err)).WithSource("", inputPath)
	}
	source := stripCR(string(raw))

	result, err := runPipeline(source, inputPath)
	if err != nil {
		return err
	}

	if len(args) == 2 {
		if err := os.WriteFile(args[1], []byte(result+"\n"), 0o644); err != nil {
			return cfserrors.New(cfserrors.Usage, fmt.Sprintf("cannot write %s: %v", args[1], err)).WithSource("", inputPath)
		}
		return nil
	}
	fmt.Println(result)
	return nil
}

// runPipeline runs lex (via parser.Parse) through lower and returns the
// emitted closed-form expression.
func runPipeline(source, filename string) (string, error) {
	prog, err := parser.Parse(source)
	if err != nil {
		return "", withSource(err, source, filename)
	}

	table, err := program.Build(prog)
	if err != nil {
		return "", withSource(err, source, filename)
	}

	resolved, err := resolve.Resolve(table)
	if err != nil {
		return "", withSource(err, source, filename)
	}

	var warn func(string)
	if verbose {
		warn = func(msg string) { fmt.Fprintln(os.Stderr, "warning: "+msg) }
	}

	out, err := lower.Lower(resolved, warn)
	if err != nil {
		return "", withSource(err, source, filename)
	}
	return out, nil
}

func withSource(err error, source, filename string) error {
	if ce, ok := err.(*cfserrors.CompileError); ok {
		return ce.WithSource(source, filename)
	}
	return err
}

// stripCR discards carriage returns, normalizing CRLF line endings to LF
// (spec §6: CR is discarded).
func stripCR(s string) string {
	return strings.ReplaceAll(s, "\r", "")
}
