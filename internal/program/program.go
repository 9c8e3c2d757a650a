// Package program builds the function table from a parsed AST: the
// name-keyed lookup the inliner walks starting at main, plus the
// uniqueness, reserved-name, and main/0 checks from the language
// reference's Program Table component.
package program

import (
	"fmt"

	"github.com/cwbudde/cfsc/internal/ast"
	cfserrors "github.com/cwbudde/cfsc/internal/errors"
)

// HostPrimitives is the reserved host-engine symbol set (spec §6): opaque
// terminals the compiler preserves verbatim and never evaluates.
var HostPrimitives = map[string]bool{
	"sin": true, "cos": true, "tan": true,
	"asin": true, "acos": true, "atan": true,
	"exp": true, "log": true, "floor": true, "abs": true, "sqrt": true,
	"deg": true, "rad": true,
}

// ReservedConstants is the reserved identifier literal set (spec §6).
var ReservedConstants = map[string]bool{"pi": true, "e": true}

// LoweringHelpers are the derived built-in functions the lowerer expands
// through the identities in §4.5 (sign, int, the degree trig family,
// atan2). They are not literally part of §6's reserved set, but the
// lowerer recognizes them structurally, so SPEC_FULL.md §6 resolves the
// open question of whether user code may redefine them: it may not, on
// the same footing as the host primitives, since the lowerer would
// otherwise silently shadow a user's own definition of the same name.
var LoweringHelpers = map[string]bool{
	"sign": true, "signn": true, "signf": true, "int": true,
	"sind": true, "cosd": true, "tand": true,
	"asind": true, "acosd": true, "atand": true,
	"atan2": true, "atan2d": true,
}

// LoweringHelperArity gives the required argument count for each name in
// LoweringHelpers. Unlike the host primitives, these are the compiler's own
// identities (spec §4.5), so the resolver checks their arity the same way
// it checks a user function's, rather than passing a mismatched call
// through to the lowerer.
var LoweringHelperArity = map[string]int{
	"sign": 1, "signn": 1, "signf": 1, "int": 1,
	"sind": 1, "cosd": 1, "tand": 1,
	"asind": 1, "acosd": 1, "atand": 1,
	"atan2": 2, "atan2d": 2,
}

// Reserved reports whether name is part of the host-primitive or
// lowering-helper set and therefore cannot be a user function name.
func Reserved(name string) bool {
	return HostPrimitives[name] || LoweringHelpers[name]
}

// Table is the program's function table: functions keyed by name, in
// source declaration order.
type Table struct {
	Funcs map[string]*ast.FunctionDef
	Order []string
}

// Build validates and indexes prog's function definitions. It reports a
// *errors.CompileError with Kind == errors.Program on: a duplicate function
// name, a user function whose name collides with the reserved set, or a
// missing/mis-aritied main.
func Build(prog *ast.Program) (*Table, error) {
	t := &Table{Funcs: make(map[string]*ast.FunctionDef, len(prog.Funcs))}

	for _, fn := range prog.Funcs {
		if Reserved(fn.Name) {
			return nil, progErr(fn, "function %q collides with a reserved host-engine or helper name", fn.Name)
		}
		if _, dup := t.Funcs[fn.Name]; dup {
			return nil, progErr(fn, "function %q is defined more than once", fn.Name)
		}
		t.Funcs[fn.Name] = fn
		t.Order = append(t.Order, fn.Name)
	}

	main, ok := t.Funcs["main"]
	if !ok {
		return nil, cfserrors.New(cfserrors.Program, "program has no main function")
	}
	if len(main.Params) != 0 {
		return nil, progErr(main, "main must not declare parameters")
	}

	return t, nil
}

func progErr(fn *ast.FunctionDef, format string, args ...any) error {
	return cfserrors.NewAt(cfserrors.Program, fn.Pos(), fmt.Sprintf(format, args...))
}
