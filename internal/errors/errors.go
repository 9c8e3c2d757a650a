// Package errors formats the compiler's fatal errors with source context,
// following the (line, column, message) carried by every pipeline stage in
// the language reference.
package errors

import (
	"fmt"
	"strings"

	"github.com/cwbudde/cfsc/internal/token"
)

// Kind identifies which pipeline stage raised a CompileError.
type Kind int

const (
	Lex Kind = iota
	Parse
	Program
	Resolve
	Usage
)

func (k Kind) String() string {
	switch k {
	case Lex:
		return "lex error"
	case Parse:
		return "parse error"
	case Program:
		return "program error"
	case Resolve:
		return "resolve error"
	case Usage:
		return "usage error"
	default:
		return "error"
	}
}

// CompileError is the single fatal error that terminates a compile. CFS has
// no error recovery (spec §7): the first CompileError raised by any stage
// aborts the pipeline and is reported; no partial output is produced.
type CompileError struct {
	Kind    Kind
	Pos     token.Position
	Message string
	Source  string
	File    string
}

// New creates a CompileError with no position, for errors that occur before
// any source has been consumed (e.g. program-table errors such as a missing
// main).
func New(kind Kind, message string) *CompileError {
	return &CompileError{Kind: kind, Message: message}
}

// NewAt creates a CompileError at a specific source position.
func NewAt(kind Kind, pos token.Position, message string) *CompileError {
	return &CompileError{Kind: kind, Pos: pos, Message: message}
}

func (e *CompileError) Error() string {
	return e.Format(false)
}

// WithSource attaches the full source text and file name so Format can
// render a caret-pointing excerpt.
func (e *CompileError) WithSource(source, file string) *CompileError {
	e.Source = source
	e.File = file
	return e
}

// Format renders the error, including a source excerpt with a caret under
// the offending column when a position and source text are both available.
func (e *CompileError) Format(color bool) string {
	var sb strings.Builder

	if e.Pos.IsValid() {
		if e.File != "" {
			fmt.Fprintf(&sb, "%s:%d:%d: ", e.File, e.Pos.Line, e.Pos.Column)
		} else {
			fmt.Fprintf(&sb, "%d:%d: ", e.Pos.Line, e.Pos.Column)
		}
	} else if e.File != "" {
		fmt.Fprintf(&sb, "%s: ", e.File)
	}

	fmt.Fprintf(&sb, "%s: %s", e.Kind, e.Message)

	if line := e.sourceLine(e.Pos.Line); line != "" && e.Pos.IsValid() {
		sb.WriteString("\n")
		lineNumStr := fmt.Sprintf("%4d | ", e.Pos.Line)
		sb.WriteString(lineNumStr)
		sb.WriteString(line)
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat(" ", len(lineNumStr)+e.Pos.Column-1))
		if color {
			sb.WriteString("\033[1;31m")
		}
		sb.WriteString("^")
		if color {
			sb.WriteString("\033[0m")
		}
	}

	return sb.String()
}

func (e *CompileError) sourceLine(n int) string {
	if e.Source == "" || n < 1 {
		return ""
	}
	lines := strings.Split(e.Source, "\n")
	if n > len(lines) {
		return ""
	}
	return lines[n-1]
}

// UserFacing renders the exact §7 wire format:
// <path>:<line>:<column>: <kind>: <message>, omitting the position segment
// when it is unavailable.
func (e *CompileError) UserFacing(path string) string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", path, e.Pos.Line, e.Pos.Column, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", path, e.Kind, e.Message)
}
