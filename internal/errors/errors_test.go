package errors

import (
	"strings"
	"testing"

	"github.com/cwbudde/cfsc/internal/token"
)

func TestUserFacingWithPosition(t *testing.T) {
	e := NewAt(Parse, token.Position{Line: 3, Column: 7}, "unexpected token \")\"")
	got := e.UserFacing("input.cfs")
	want := `input.cfs:3:7: parse error: unexpected token ")"`
	if got != want {
		t.Errorf("UserFacing() = %q, want %q", got, want)
	}
}

func TestUserFacingWithoutPosition(t *testing.T) {
	e := New(Program, "program has no main function")
	got := e.UserFacing("input.cfs")
	want := "input.cfs: program error: program has no main function"
	if got != want {
		t.Errorf("UserFacing() = %q, want %q", got, want)
	}
}

func TestKindStrings(t *testing.T) {
	tests := map[Kind]string{
		Lex:     "lex error",
		Parse:   "parse error",
		Program: "program error",
		Resolve: "resolve error",
		Usage:   "usage error",
	}
	for kind, want := range tests {
		if kind.String() != want {
			t.Errorf("Kind(%d).String() = %q, want %q", kind, kind.String(), want)
		}
	}
}

func TestFormatWithSourceShowsCaret(t *testing.T) {
	src := "main() return @"
	e := NewAt(Lex, token.Position{Line: 1, Column: 15}, "unknown punctuation '@'").WithSource(src, "input.cfs")
	got := e.Format(false)
	if !strings.Contains(got, "main() return @") {
		t.Fatalf("Format() missing source line:\n%s", got)
	}
	if !strings.Contains(got, "^") {
		t.Fatalf("Format() missing caret:\n%s", got)
	}
}

func TestErrorMatchesFormat(t *testing.T) {
	e := New(Usage, "cannot read input.cfs: no such file")
	if e.Error() != e.Format(false) {
		t.Errorf("Error() = %q, Format(false) = %q", e.Error(), e.Format(false))
	}
}
