// Package lower rewrites a resolved AST into the arithmetic subset the
// target engine accepts (spec §4.5): every non-native construct — boolean
// operators, equality/inequality, integer and float comparisons, the
// binary/ternary conditional, exponentiation, modulo, and the degree-trig /
// sign / int helper family — is replaced by its defining identity from the
// language reference, and the result is pretty-printed with minimal,
// precedence-driven parenthesization.
package lower

import (
	"fmt"
	"strings"

	"github.com/cwbudde/cfsc/internal/ast"
	cfserrors "github.com/cwbudde/cfsc/internal/errors"
	"github.com/cwbudde/cfsc/internal/program"
)

// Lowerer rewrites a resolved expression. The zero value is ready to use;
// Warn, if set, is called for non-fatal diagnostics (spec §9's flagged-but-
// not-rejected tag-in-comparison case).
type Lowerer struct {
	Warn func(msg string)
}

func (lw *Lowerer) warn(msg string) {
	if lw.Warn != nil {
		lw.Warn(msg)
	}
}

// Lower rewrites e into the closed arithmetic subset, bottom-up, and
// returns the single-line emitted expression string. It fails only on an
// unresolved node (a call to an unknown function or a free identifier),
// which indicates the resolver was skipped or violated its contract.
func Lower(e ast.Expression, warn func(string)) (string, error) {
	lw := &Lowerer{Warn: warn}
	lowered, err := lw.lower(e)
	if err != nil {
		return "", err
	}
	return emit(lowered), nil
}

func internalErr(format string, args ...any) error {
	return cfserrors.New(cfserrors.Resolve, "internal: "+fmt.Sprintf(format, args...))
}

func (lw *Lowerer) lower(e ast.Expression) (ast.Expression, error) {
	switch n := e.(type) {
	case *ast.NumberLit:
		return n, nil

	case *ast.TagLit:
		return n, nil

	case *ast.Ident:
		if program.ReservedConstants[n.Name] {
			return n, nil
		}
		return nil, internalErr("unresolved identifier %q reached the lowerer", n.Name)

	case *ast.Call:
		args := make([]ast.Expression, len(n.Args))
		for i, a := range n.Args {
			lowered, err := lw.lower(a)
			if err != nil {
				return nil, err
			}
			args[i] = lowered
		}
		return lw.lowerCall(n.Callee, args)

	case *ast.Unary:
		x, err := lw.lower(n.X)
		if err != nil {
			return nil, err
		}
		if n.Op == ast.OpNeg {
			return &ast.Unary{Op: ast.OpNeg, X: x}, nil
		}
		// !x, not x -> 1 - x
		return bin(ast.OpSub, ast.Num(1), x), nil

	case *ast.Binary:
		lw.maybeWarnTag(n.L, n.Op)
		lw.maybeWarnTag(n.R, n.Op)
		l, err := lw.lower(n.L)
		if err != nil {
			return nil, err
		}
		r, err := lw.lower(n.R)
		if err != nil {
			return nil, err
		}
		return lw.lowerBinary(n.Op, l, r), nil

	case *ast.If2:
		cond, err := lw.lower(n.Cond)
		if err != nil {
			return nil, err
		}
		then, err := lw.lower(n.Then)
		if err != nil {
			return nil, err
		}
		// if(b ? t) -> b * t
		return bin(ast.OpMul, cond, then), nil

	case *ast.If3:
		cond, err := lw.lower(n.Cond)
		if err != nil {
			return nil, err
		}
		then, err := lw.lower(n.Then)
		if err != nil {
			return nil, err
		}
		elseExpr, err := lw.lower(n.Else)
		if err != nil {
			return nil, err
		}
		// if(b ? t : f) -> b * (t - f) + f
		return bin(ast.OpAdd, bin(ast.OpMul, cond, bin(ast.OpSub, then, elseExpr)), elseExpr), nil

	default:
		return nil, internalErr("unhandled AST node %T reached the lowerer", e)
	}
}

var comparisonOps = map[string]bool{
	ast.OpLt: true, ast.OpLte: true, ast.OpGt: true, ast.OpGte: true,
	ast.OpEq: true, ast.OpNeq: true, ast.OpFLt: true, ast.OpFGt: true,
}

func (lw *Lowerer) maybeWarnTag(e ast.Expression, op string) {
	if !comparisonOps[op] {
		return
	}
	if _, ok := e.(*ast.TagLit); ok {
		lw.warn("tag used as a comparison operand; its evaluated value is treated as opaque and may fall outside the operator's domain")
	}
}

func (lw *Lowerer) lowerCall(callee string, args []ast.Expression) (ast.Expression, error) {
	if program.HostPrimitives[callee] {
		return &ast.Call{Callee: callee, Args: args}, nil
	}

	switch callee {
	case "sign":
		return signExpr(args[0]), nil
	case "signn":
		return signnExpr(args[0]), nil
	case "signf":
		return signfExpr(args[0]), nil
	case "int":
		return intExpr(args[0]), nil
	case "sind":
		return hostCall("sin", hostCall("rad", args[0])), nil
	case "cosd":
		return hostCall("cos", hostCall("rad", args[0])), nil
	case "tand":
		return hostCall("tan", hostCall("rad", args[0])), nil
	case "asind":
		return hostCall("deg", hostCall("asin", args[0])), nil
	case "acosd":
		return hostCall("deg", hostCall("acos", args[0])), nil
	case "atand":
		return hostCall("deg", hostCall("atan", args[0])), nil
	case "atan2":
		return atan2Expr(args[0], args[1]), nil
	case "atan2d":
		return hostCall("deg", atan2Expr(args[0], args[1])), nil
	default:
		return nil, internalErr("unresolved call to %q reached the lowerer", callee)
	}
}

func hostCall(name string, arg ast.Expression) ast.Expression {
	return &ast.Call{Callee: name, Args: []ast.Expression{arg}}
}

// signf(x) = abs(x) / x
func signfExpr(x ast.Expression) ast.Expression {
	return bin(ast.OpDiv, hostCall("abs", x), x)
}

// sign(i) = signf(i + 0.5)
func signExpr(i ast.Expression) ast.Expression {
	return signfExpr(bin(ast.OpAdd, i, ast.Num(0.5)))
}

// signn(i) = signf(i - 0.5)
func signnExpr(i ast.Expression) ast.Expression {
	return signfExpr(bin(ast.OpSub, i, ast.Num(0.5)))
}

// int(x) = floor(x) + (1 - sign(floor(x))) / 2
func intExpr(x ast.Expression) ast.Expression {
	floorX := hostCall("floor", x)
	return bin(ast.OpAdd, floorX, bin(ast.OpDiv, bin(ast.OpSub, ast.Num(1), signExpr(floorX)), ast.Num(2)))
}

// atan2(y, x) = atan(y / x) + (x <: 0) * signf(y) * pi
func atan2Expr(y, x ast.Expression) ast.Expression {
	atanPart := hostCall("atan", bin(ast.OpDiv, y, x))
	xNeg := lowerFloatLess(x, ast.Num(0))
	product := bin(ast.OpMul, bin(ast.OpMul, xNeg, signfExpr(y)), ast.Reserved("pi"))
	return bin(ast.OpAdd, atanPart, product)
}

func lowerFloatLess(l, r ast.Expression) ast.Expression {
	lw := &Lowerer{}
	return lw.lowerBinary(ast.OpFLt, l, r)
}

// lowerBinary applies the defining identity for op, assuming l and r are
// already lowered.
func (lw *Lowerer) lowerBinary(op string, l, r ast.Expression) ast.Expression {
	switch op {
	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv:
		return bin(op, l, r)

	case ast.OpMod:
		// x - y * floor(x / y)
		return bin(ast.OpSub, l, bin(ast.OpMul, r, hostCall("floor", bin(ast.OpDiv, l, r))))

	case ast.OpPow:
		// exp(log(x) * y)
		return hostCall("exp", bin(ast.OpMul, hostCall("log", l), r))

	case ast.OpAnd:
		return bin(ast.OpMul, l, r)

	case ast.OpOr:
		// 1 - (1 - x) * (1 - y)
		return bin(ast.OpSub, ast.Num(1), bin(ast.OpMul, bin(ast.OpSub, ast.Num(1), l), bin(ast.OpSub, ast.Num(1), r)))

	case ast.OpLt:
		// (1 - sign(x - y)) / 2
		diff := bin(ast.OpSub, l, r)
		return bin(ast.OpDiv, bin(ast.OpSub, ast.Num(1), signExpr(diff)), ast.Num(2))

	case ast.OpLte:
		// (1 - signn(x - y)) / 2
		diff := bin(ast.OpSub, l, r)
		return bin(ast.OpDiv, bin(ast.OpSub, ast.Num(1), signnExpr(diff)), ast.Num(2))

	case ast.OpGt:
		// (1 + signn(x - y)) / 2
		diff := bin(ast.OpSub, l, r)
		return bin(ast.OpDiv, bin(ast.OpAdd, ast.Num(1), signnExpr(diff)), ast.Num(2))

	case ast.OpGte:
		// (1 + sign(x - y)) / 2
		diff := bin(ast.OpSub, l, r)
		return bin(ast.OpDiv, bin(ast.OpAdd, ast.Num(1), signExpr(diff)), ast.Num(2))

	case ast.OpEq:
		// ((1 + sign(x - y)) / 2) * ((1 - signn(x - y)) / 2)
		diff1 := bin(ast.OpSub, l, r)
		diff2 := bin(ast.OpSub, l, r)
		lhs := bin(ast.OpDiv, bin(ast.OpAdd, ast.Num(1), signExpr(diff1)), ast.Num(2))
		rhs := bin(ast.OpDiv, bin(ast.OpSub, ast.Num(1), signnExpr(diff2)), ast.Num(2))
		return bin(ast.OpMul, lhs, rhs)

	case ast.OpNeq:
		// (4 - (1 + sign(x - y)) * (1 - signn(x - y))) / 4
		diff1 := bin(ast.OpSub, l, r)
		diff2 := bin(ast.OpSub, l, r)
		prod := bin(ast.OpMul, bin(ast.OpAdd, ast.Num(1), signExpr(diff1)), bin(ast.OpSub, ast.Num(1), signnExpr(diff2)))
		return bin(ast.OpDiv, bin(ast.OpSub, ast.Num(4), prod), ast.Num(4))

	case ast.OpFLt:
		// (1 - signf(x - y)) / 2
		diff := bin(ast.OpSub, l, r)
		return bin(ast.OpDiv, bin(ast.OpSub, ast.Num(1), signfExpr(diff)), ast.Num(2))

	case ast.OpFGt:
		// (1 + signf(x - y)) / 2
		diff := bin(ast.OpSub, l, r)
		return bin(ast.OpDiv, bin(ast.OpAdd, ast.Num(1), signfExpr(diff)), ast.Num(2))
	}

	panic("lower: unreachable operator " + op)
}

// bin builds a native arithmetic binary node. No constant folding is
// performed here: lowering is a straightforward rewrite into the arithmetic
// subset, not an optimizer, so `1 - (1 - 1) * (1 - 0)` is emitted exactly as
// the identities produce it rather than collapsed to `1`.
func bin(op string, l, r ast.Expression) ast.Expression {
	return &ast.Binary{Op: op, L: l, R: r}
}

// prec assigns the emitter's precedence tier: atoms highest, unary minus
// next, then * /, then + -, matching standard arithmetic precedence
// (spec §4.5: `^` > unary − > `*` `/` > `+` `-` — ^ never appears after
// lowering, since x^y is rewritten to exp(log(x) * y)).
func prec(e ast.Expression) int {
	switch n := e.(type) {
	case *ast.Binary:
		switch n.Op {
		case ast.OpAdd, ast.OpSub:
			return 1
		case ast.OpMul, ast.OpDiv:
			return 2
		}
	case *ast.Unary:
		return 3
	}
	return 4
}

var binSym = map[string]string{ast.OpAdd: "+", ast.OpSub: "-", ast.OpMul: "*", ast.OpDiv: "/"}

// emit pretty-prints a fully lowered expression with minimal, precedence-
// driven parenthesization: a child is parenthesized iff its precedence is
// strictly lower than the parent's, or equal and it is the right operand of
// a left-associative operator (spec §4.5) — which +, -, *, / all are.
func emit(e ast.Expression) string {
	switch n := e.(type) {
	case *ast.NumberLit:
		return n.Tok.Literal
	case *ast.TagLit:
		return n.Text
	case *ast.Ident:
		return n.Name
	case *ast.Call:
		parts := make([]string, len(n.Args))
		for i, a := range n.Args {
			parts[i] = emit(a)
		}
		return n.Callee + "(" + strings.Join(parts, ", ") + ")"
	case *ast.Unary:
		operand := emit(n.X)
		if prec(n.X) < 3 || strings.HasPrefix(operand, "-") {
			operand = "(" + operand + ")"
		}
		return "-" + operand
	case *ast.Binary:
		self := prec(n)
		l := emit(n.L)
		if prec(n.L) < self {
			l = "(" + l + ")"
		}
		r := emit(n.R)
		if prec(n.R) <= self {
			r = "(" + r + ")"
		}
		return l + " " + binSym[n.Op] + " " + r
	default:
		panic("lower: unhandled node in emitter")
	}
}
