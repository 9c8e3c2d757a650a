// Package resolve implements the inliner/resolver (spec §4.4): starting
// from main, it substitutes constant bindings and inlines every
// user-defined call by capture-free parameter substitution, leaving a
// single AST expression with no remaining user calls and no free
// identifiers except reserved host constants and tags.
package resolve

import (
	"fmt"

	"github.com/cwbudde/cfsc/internal/ast"
	cfserrors "github.com/cwbudde/cfsc/internal/errors"
	"github.com/cwbudde/cfsc/internal/program"
)

// frame binds a function activation's parameter and constant names to
// already-resolved expressions. Because every function body only ever
// references its own parameters and constants (CFS has no nested functions
// or closures), a single flat frame per activation is enough: there is no
// outer scope for an inner frame to shadow.
type frame map[string]ast.Expression

type resolver struct {
	table     *program.Table
	callStack []string
}

// Resolve runs the inliner starting at main and returns the fully resolved
// expression, or a *errors.CompileError with Kind == errors.Resolve.
func Resolve(table *program.Table) (ast.Expression, error) {
	r := &resolver{table: table}
	return r.expandCall("main", nil, nil)
}

// expandCall inlines a call to a user-defined function: it checks arity and
// recursion, builds the callee's frame from already-resolved arguments,
// resolves its constant bindings in declaration order, and resolves its
// return expression in that frame.
func (r *resolver) expandCall(name string, args []ast.Expression, at ast.Expression) (ast.Expression, error) {
	fn, ok := r.table.Funcs[name]
	if !ok {
		return nil, r.errAt(at, "call to unknown function %q", name)
	}
	if len(args) != len(fn.Params) {
		return nil, r.errAt(at, "%q expects %d argument(s), got %d", name, len(fn.Params), len(args))
	}
	for _, seen := range r.callStack {
		if seen == name {
			return nil, r.errAt(at, "recursive call cycle through %q", name)
		}
	}

	r.callStack = append(r.callStack, name)
	defer func() { r.callStack = r.callStack[:len(r.callStack)-1] }()

	f := frame{}
	for i, p := range fn.Params {
		f[p] = args[i]
	}
	for _, cb := range fn.Consts {
		resolved, err := r.resolveExpr(cb.Expr, f)
		if err != nil {
			return nil, err
		}
		f[cb.Name] = resolved
	}

	return r.resolveExpr(fn.Return, f)
}

func (r *resolver) resolveExpr(e ast.Expression, f frame) (ast.Expression, error) {
	switch n := e.(type) {
	case *ast.NumberLit:
		return n, nil

	case *ast.TagLit:
		return n, nil

	case *ast.Ident:
		if bound, ok := f[n.Name]; ok {
			return bound, nil
		}
		if program.ReservedConstants[n.Name] {
			return n, nil
		}
		if fn, ok := r.table.Funcs[n.Name]; ok && len(fn.Params) == 0 {
			return r.expandCall(n.Name, nil, n)
		}
		return nil, r.errAt(n, "unknown identifier %q", n.Name)

	case *ast.Call:
		args := make([]ast.Expression, len(n.Args))
		for i, a := range n.Args {
			resolved, err := r.resolveExpr(a, f)
			if err != nil {
				return nil, err
			}
			args[i] = resolved
		}
		if program.HostPrimitives[n.Callee] {
			return &ast.Call{Tok: n.Tok, Callee: n.Callee, Args: args}, nil
		}
		if program.LoweringHelpers[n.Callee] {
			if want := program.LoweringHelperArity[n.Callee]; len(args) != want {
				return nil, r.errAt(n, "%q expects %d argument(s), got %d", n.Callee, want, len(args))
			}
			return &ast.Call{Tok: n.Tok, Callee: n.Callee, Args: args}, nil
		}
		return r.expandCall(n.Callee, args, n)

	case *ast.Unary:
		x, err := r.resolveExpr(n.X, f)
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Tok: n.Tok, Op: n.Op, X: x}, nil

	case *ast.Binary:
		l, err := r.resolveExpr(n.L, f)
		if err != nil {
			return nil, err
		}
		rr, err := r.resolveExpr(n.R, f)
		if err != nil {
			return nil, err
		}
		return &ast.Binary{Tok: n.Tok, Op: n.Op, L: l, R: rr}, nil

	case *ast.If2:
		cond, err := r.resolveExpr(n.Cond, f)
		if err != nil {
			return nil, err
		}
		then, err := r.resolveExpr(n.Then, f)
		if err != nil {
			return nil, err
		}
		return &ast.If2{Tok: n.Tok, Cond: cond, Then: then}, nil

	case *ast.If3:
		cond, err := r.resolveExpr(n.Cond, f)
		if err != nil {
			return nil, err
		}
		then, err := r.resolveExpr(n.Then, f)
		if err != nil {
			return nil, err
		}
		elseExpr, err := r.resolveExpr(n.Else, f)
		if err != nil {
			return nil, err
		}
		return &ast.If3{Tok: n.Tok, Cond: cond, Then: then, Else: elseExpr}, nil

	default:
		return nil, r.errAt(nil, "internal: unresolved node type %T", e)
	}
}

func (r *resolver) errAt(at ast.Expression, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if at == nil {
		return cfserrors.New(cfserrors.Resolve, msg)
	}
	return cfserrors.NewAt(cfserrors.Resolve, at.Pos(), msg)
}
