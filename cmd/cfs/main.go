// Command cfs compiles a Closed-Form Script source file into a single-line
// closed-form arithmetic expression for the Facer watchface engine.
package main

import (
	"os"

	"github.com/cwbudde/cfsc/cmd/cfs/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		cmd.Report(os.Stderr, err)
		os.Exit(cmd.ExitCode(err))
	}
}
