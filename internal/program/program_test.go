package program

import (
	"strings"
	"testing"

	"github.com/cwbudde/cfsc/internal/ast"
	"github.com/cwbudde/cfsc/internal/parser"
)

func build(t *testing.T, src string) (*Table, error) {
	t.Helper()
	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	return Build(prog)
}

func TestBuildOrdersAndIndexesFunctions(t *testing.T) {
	table, err := build(t, "f(x) return x\ng(x) return x\nmain() return f(1) + g(2)")
	if err != nil {
		t.Fatalf("Build: unexpected error: %v", err)
	}
	if len(table.Funcs) != 3 {
		t.Fatalf("got %d functions, want 3", len(table.Funcs))
	}
	want := []string{"f", "g", "main"}
	for i, name := range want {
		if table.Order[i] != name {
			t.Errorf("Order[%d] = %q, want %q", i, table.Order[i], name)
		}
	}
}

func TestBuildMissingMain(t *testing.T) {
	_, err := build(t, "f() return 1")
	if err == nil || !strings.Contains(err.Error(), "no main function") {
		t.Fatalf("err = %v, want a missing-main error", err)
	}
}

func TestBuildMainWithParamsRejectedTwice(t *testing.T) {
	// The parser already rejects this; this guards the program table's own
	// independent check in case that ever changes.
	_, err := parser.Parse("main(x) return x")
	if err == nil || !strings.Contains(err.Error(), "main must not declare parameters") {
		t.Fatalf("parser err = %v", err)
	}
	prog := &ast.Program{Funcs: []*ast.FunctionDef{
		{Name: "main", Params: []string{"x"}, Return: &ast.Ident{Name: "x"}},
	}}
	_, err = Build(prog)
	if err == nil || !strings.Contains(err.Error(), "main must not declare parameters") {
		t.Fatalf("Build err = %v", err)
	}
}

func TestBuildDuplicateFunction(t *testing.T) {
	_, err := build(t, "f() return 1\nf() return 2\nmain() return f()")
	if err == nil || !strings.Contains(err.Error(), "defined more than once") {
		t.Fatalf("err = %v, want a duplicate-function error", err)
	}
}

func TestBuildReservedNameCollision(t *testing.T) {
	for _, name := range []string{"sin", "sign", "atan2"} {
		_, err := build(t, name+"(x) return x\nmain() return "+name+"(1)")
		if err == nil || !strings.Contains(err.Error(), "reserved") {
			t.Errorf("build with function named %q: err = %v, want a reserved-name error", name, err)
		}
	}
}

func TestReservedCoversHelpersAndPrimitives(t *testing.T) {
	for _, name := range []string{"sin", "cos", "sqrt", "sign", "atan2d"} {
		if !Reserved(name) {
			t.Errorf("Reserved(%q) = false, want true", name)
		}
	}
	if Reserved("myFunc") {
		t.Error("Reserved(\"myFunc\") = true, want false")
	}
}
