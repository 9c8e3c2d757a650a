package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	cfserrors "github.com/cwbudde/cfsc/internal/errors"
	"github.com/gkampitakis/go-snaps/snaps"
)

// TestFixturesPass runs every .cfs program under testdata/fixtures/pass
// through the full pipeline and snapshots the emitted closed-form
// expression.
func TestFixturesPass(t *testing.T) {
	files, err := filepath.Glob("testdata/fixtures/pass/*.cfs")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no pass fixtures found")
	}
	for _, f := range files {
		name := strings.TrimSuffix(filepath.Base(f), ".cfs")
		t.Run(name, func(t *testing.T) {
			source, err := os.ReadFile(f)
			if err != nil {
				t.Fatalf("read %s: %v", f, err)
			}
			out, err := runPipeline(stripCR(string(source)), f)
			if err != nil {
				t.Fatalf("runPipeline(%s): unexpected error: %v", f, err)
			}
			snaps.MatchSnapshot(t, fmt.Sprintf("%s_output", name), out)
		})
	}
}

// TestFixturesFail runs every .cfs program under testdata/fixtures/fail and
// checks that it is rejected with a CompileError of the expected kind.
func TestFixturesFail(t *testing.T) {
	tests := []struct {
		file string
		kind cfserrors.Kind
	}{
		{"testdata/fixtures/fail/recursion.cfs", cfserrors.Resolve},
		{"testdata/fixtures/fail/arity.cfs", cfserrors.Resolve},
		{"testdata/fixtures/fail/helper_arity.cfs", cfserrors.Resolve},
		{"testdata/fixtures/fail/missing_main.cfs", cfserrors.Program},
	}
	for _, tt := range tests {
		t.Run(filepath.Base(tt.file), func(t *testing.T) {
			source, err := os.ReadFile(tt.file)
			if err != nil {
				t.Fatalf("read %s: %v", tt.file, err)
			}
			_, err = runPipeline(stripCR(string(source)), tt.file)
			if err == nil {
				t.Fatalf("runPipeline(%s): expected an error, got none", tt.file)
			}
			ce, ok := err.(*cfserrors.CompileError)
			if !ok {
				t.Fatalf("runPipeline(%s): error = %T, want *cfserrors.CompileError", tt.file, err)
			}
			if ce.Kind != tt.kind {
				t.Fatalf("runPipeline(%s): Kind = %s, want %s", tt.file, ce.Kind, tt.kind)
			}
		})
	}
}
