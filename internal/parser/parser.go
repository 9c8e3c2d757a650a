// Package parser implements the Closed-Form Script grammar: a tolerant,
// precedence-climbing recursive descent parser producing the AST defined in
// internal/ast.
//
// Precedence (low to high), per the language reference: if-conditional;
// ||/or; &&/and; == = != <>; <= >= <: >: < >; + -; * / %; ^ (left-assoc);
// unary - ! not; primary. The grammar tolerates multiple surface forms
// (optional function/def/double keyword, comma- or whitespace-separated
// parameters, ?/: or ,/, inside if, NL or ; as statement separators) and
// normalizes all of them to one canonical AST shape.
package parser

import (
	"fmt"

	cfserrors "github.com/cwbudde/cfsc/internal/errors"
	"github.com/cwbudde/cfsc/internal/ast"
	"github.com/cwbudde/cfsc/internal/lexer"
	"github.com/cwbudde/cfsc/internal/token"
)

// Parser consumes a complete token stream and produces an *ast.Program.
type Parser struct {
	toks []token.Token
	pos  int
}

// Parse lexes and parses source in one call.
func Parse(source string) (*ast.Program, error) {
	toks, err := lexer.All(source)
	if err != nil {
		return nil, err
	}
	return New(toks).ParseProgram()
}

// New creates a Parser over an already-lexed token stream.
func New(toks []token.Token) *Parser {
	return &Parser{toks: toks}
}

func (p *Parser) cur() token.Token {
	return p.toks[p.pos]
}

func (p *Parser) peek() token.Token {
	if p.pos+1 < len(p.toks) {
		return p.toks[p.pos+1]
	}
	return p.toks[len(p.toks)-1]
}

func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) is(t token.Type) bool { return p.cur().Type == t }

func (p *Parser) skipSeparators() {
	for p.is(token.NL) || p.is(token.SEMI) {
		p.advance()
	}
}

func parseErr(tok token.Token, format string, args ...any) error {
	return cfserrors.NewAt(cfserrors.Parse, tok.Pos, fmt.Sprintf(format, args...))
}

func (p *Parser) expect(t token.Type) (token.Token, error) {
	if !p.is(t) {
		return token.Token{}, parseErr(p.cur(), "expected %s, found %s %q", t, p.cur().Type, p.cur().Literal)
	}
	return p.advance(), nil
}

// ParseProgram parses a non-empty sequence of function definitions
// terminated by end-of-input.
func (p *Parser) ParseProgram() (*ast.Program, error) {
	prog := &ast.Program{}
	p.skipSeparators()
	for !p.is(token.EOF) {
		fn, err := p.parseFunctionDef()
		if err != nil {
			return nil, err
		}
		prog.Funcs = append(prog.Funcs, fn)
		p.skipSeparators()
	}
	if len(prog.Funcs) == 0 {
		return nil, parseErr(p.cur(), "empty program: expected at least one function definition")
	}
	return prog, nil
}

func (p *Parser) parseFunctionDef() (*ast.FunctionDef, error) {
	switch p.cur().Type {
	case token.FUNCTION, token.DEF, token.DOUBLE:
		p.advance()
	}

	nameTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	fn := &ast.FunctionDef{Tok: nameTok, Name: nameTok.Literal}

	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	for !p.is(token.RPAREN) {
		paramTok, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		if seen[paramTok.Literal] {
			return nil, parseErr(paramTok, "duplicate parameter name %q in function %q", paramTok.Literal, fn.Name)
		}
		seen[paramTok.Literal] = true
		fn.Params = append(fn.Params, paramTok.Literal)
		if p.is(token.COMMA) {
			p.advance()
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	if fn.Name == "main" && len(fn.Params) > 0 {
		return nil, parseErr(nameTok, "main must not declare parameters")
	}

	p.skipSeparators()

	constNames := map[string]bool{}
	for p.is(token.IDENT) && p.peek().Type == token.ASSIGN {
		binding, err := p.parseConstBinding(fn, constNames, seen)
		if err != nil {
			return nil, err
		}
		fn.Consts = append(fn.Consts, binding)
		p.skipSeparators()
	}

	retTok, err := p.expect(token.RETURN)
	if err != nil {
		return nil, parseErr(p.cur(), "missing return statement in function %q", fn.Name)
	}
	_ = retTok
	ret, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	fn.Return = ret

	return fn, nil
}

func (p *Parser) parseConstBinding(fn *ast.FunctionDef, constNames, paramNames map[string]bool) (ast.ConstBinding, error) {
	nameTok := p.advance() // IDENT
	if paramNames[nameTok.Literal] {
		return ast.ConstBinding{}, parseErr(nameTok, "constant %q shadows a parameter in function %q", nameTok.Literal, fn.Name)
	}
	if constNames[nameTok.Literal] {
		return ast.ConstBinding{}, parseErr(nameTok, "constant %q is already bound in function %q", nameTok.Literal, fn.Name)
	}
	constNames[nameTok.Literal] = true

	if _, err := p.expect(token.ASSIGN); err != nil {
		return ast.ConstBinding{}, err
	}
	expr, err := p.parseExpression()
	if err != nil {
		return ast.ConstBinding{}, err
	}
	return ast.ConstBinding{Name: nameTok.Literal, Expr: expr, Tok: nameTok}, nil
}

// parseExpression is the grammar's lowest precedence tier: the
// if-conditional, falling through to the operator chain otherwise.
func (p *Parser) parseExpression() (ast.Expression, error) {
	if p.is(token.IF) {
		return p.parseIf()
	}
	return p.parseOr()
}

func (p *Parser) parseIf() (ast.Expression, error) {
	ifTok := p.advance() // IF
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if !p.is(token.QUESTION) && !p.is(token.COMMA) {
		return nil, parseErr(p.cur(), "expected '?' or ',' after if-condition")
	}
	p.advance()
	then, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if p.is(token.COLON) || p.is(token.COMMA) {
		p.advance()
		elseExpr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return &ast.If3{Tok: ifTok, Cond: cond, Then: then, Else: elseExpr}, nil
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return &ast.If2{Tok: ifTok, Cond: cond, Then: then}, nil
}

func (p *Parser) parseOr() (ast.Expression, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.is(token.LOR) || p.is(token.OR) {
		opTok := p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Tok: opTok, Op: ast.OpOr, L: left, R: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (ast.Expression, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.is(token.LAND) || p.is(token.AND) {
		opTok := p.advance()
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Tok: opTok, Op: ast.OpAnd, L: left, R: right}
	}
	return left, nil
}

func (p *Parser) parseEquality() (ast.Expression, error) {
	left, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for p.is(token.ASSIGN) || p.is(token.EQ) || p.is(token.NEQ) {
		opTok := p.advance()
		right, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		op := ast.OpEq
		if opTok.Type == token.NEQ {
			op = ast.OpNeq
		}
		left = &ast.Binary{Tok: opTok, Op: op, L: left, R: right}
	}
	return left, nil
}

var relOps = map[token.Type]string{
	token.LT:     ast.OpLt,
	token.LTE:    ast.OpLte,
	token.GT:     ast.OpGt,
	token.GTE:    ast.OpGte,
	token.FLT_LT: ast.OpFLt,
	token.FLT_GT: ast.OpFGt,
}

func (p *Parser) parseRelational() (ast.Expression, error) {
	left, err := p.parseAdd()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := relOps[p.cur().Type]
		if !ok {
			return left, nil
		}
		opTok := p.advance()
		right, err := p.parseAdd()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Tok: opTok, Op: op, L: left, R: right}
	}
}

func (p *Parser) parseAdd() (ast.Expression, error) {
	left, err := p.parseMul()
	if err != nil {
		return nil, err
	}
	for p.is(token.PLUS) || p.is(token.MINUS) {
		opTok := p.advance()
		right, err := p.parseMul()
		if err != nil {
			return nil, err
		}
		op := ast.OpAdd
		if opTok.Type == token.MINUS {
			op = ast.OpSub
		}
		left = &ast.Binary{Tok: opTok, Op: op, L: left, R: right}
	}
	return left, nil
}

func (p *Parser) parseMul() (ast.Expression, error) {
	left, err := p.parsePow()
	if err != nil {
		return nil, err
	}
	for p.is(token.STAR) || p.is(token.SLASH) || p.is(token.PERCENT) {
		opTok := p.advance()
		right, err := p.parsePow()
		if err != nil {
			return nil, err
		}
		op := ast.OpMul
		switch opTok.Type {
		case token.SLASH:
			op = ast.OpDiv
		case token.PERCENT:
			op = ast.OpMod
		}
		left = &ast.Binary{Tok: opTok, Op: op, L: left, R: right}
	}
	return left, nil
}

// parsePow folds consecutive '^' left-associatively. The reference once
// disallowed sequential '^'; this implementation follows the later, stricter
// grammar and accepts it silently (spec §9 Open Questions).
func (p *Parser) parsePow() (ast.Expression, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.is(token.CARET) {
		opTok := p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Tok: opTok, Op: ast.OpPow, L: left, R: right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (ast.Expression, error) {
	switch p.cur().Type {
	case token.MINUS:
		opTok := p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Tok: opTok, Op: ast.OpNeg, X: x}, nil
	case token.BANG, token.NOT:
		opTok := p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Tok: opTok, Op: ast.OpNot, X: x}, nil
	default:
		return p.parsePrimary()
	}
}

func (p *Parser) parsePrimary() (ast.Expression, error) {
	switch p.cur().Type {
	case token.NUMBER:
		tok := p.advance()
		return ast.NewNumber(tok), nil
	case token.TAG:
		tok := p.advance()
		return &ast.TagLit{Tok: tok, Text: tok.Literal}, nil
	case token.IF:
		return p.parseIf()
	case token.LPAREN:
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return expr, nil
	case token.IDENT:
		tok := p.advance()
		if p.is(token.LPAREN) {
			return p.parseCall(tok)
		}
		return &ast.Ident{Tok: tok, Name: tok.Literal}, nil
	default:
		return nil, parseErr(p.cur(), "unexpected token %q", p.cur().Literal)
	}
}

func (p *Parser) parseCall(nameTok token.Token) (ast.Expression, error) {
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	call := &ast.Call{Tok: nameTok, Callee: nameTok.Literal}
	for !p.is(token.RPAREN) {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)
		if p.is(token.COMMA) {
			p.advance()
		} else if !p.is(token.RPAREN) {
			return nil, parseErr(p.cur(), "expected ',' or ')' in call to %q", call.Callee)
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return call, nil
}
