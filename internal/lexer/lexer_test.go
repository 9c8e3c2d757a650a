package lexer

import (
	"testing"

	"github.com/cwbudde/cfsc/internal/token"
)

func TestNext(t *testing.T) {
	input := `main() return 1 + 2.5 * x % y ^ z
  // comment
  a = #tag# && b || !c
  <= >= <: >: == != <>`

	tests := []struct {
		wantType    token.Type
		wantLiteral string
	}{
		{token.IDENT, "main"},
		{token.LPAREN, "("},
		{token.RPAREN, ")"},
		{token.RETURN, "return"},
		{token.NUMBER, "1"},
		{token.PLUS, "+"},
		{token.NUMBER, "2.5"},
		{token.STAR, "*"},
		{token.IDENT, "x"},
		{token.PERCENT, "%"},
		{token.IDENT, "y"},
		{token.CARET, "^"},
		{token.IDENT, "z"},
		{token.NL, "\n"},
		{token.NL, "\n"},
		{token.IDENT, "a"},
		{token.ASSIGN, "="},
		{token.TAG, "#tag#"},
		{token.LAND, "&&"},
		{token.IDENT, "b"},
		{token.LOR, "||"},
		{token.BANG, "!"},
		{token.IDENT, "c"},
		{token.NL, "\n"},
		{token.LTE, "<="},
		{token.GTE, ">="},
		{token.FLT_LT, "<:"},
		{token.FLT_GT, ">:"},
		{token.EQ, "=="},
		{token.NEQ, "!="},
		{token.NEQ, "<>"},
		{token.EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok, err := l.Next()
		if err != nil {
			t.Fatalf("tests[%d]: unexpected error: %v", i, err)
		}
		if tok.Type != tt.wantType {
			t.Fatalf("tests[%d]: type = %s, want %s (literal %q)", i, tok.Type, tt.wantType, tok.Literal)
		}
		if tok.Literal != tt.wantLiteral {
			t.Fatalf("tests[%d]: literal = %q, want %q", i, tok.Literal, tt.wantLiteral)
		}
	}
}

func TestKeywordsCaseSensitive(t *testing.T) {
	toks, err := All("Function Return IF function return if")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []token.Type{
		token.IDENT, token.IDENT, token.IDENT,
		token.FUNCTION, token.RETURN, token.IF,
		token.EOF,
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(want))
	}
	for i, tok := range toks {
		if tok.Type != want[i] {
			t.Errorf("tok[%d] = %s, want %s", i, tok.Type, want[i])
		}
	}
}

func TestColumnsCountRunes(t *testing.T) {
	// "日本語" is 3 runes but 9 bytes; the operator after it should be at
	// column 4, not byte offset 9+1.
	toks, err := All("日本語+")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if toks[0].Pos.Column != 1 {
		t.Fatalf("first token column = %d, want 1", toks[0].Pos.Column)
	}
	if toks[1].Pos.Column != 4 {
		t.Fatalf("plus token column = %d, want 4", toks[1].Pos.Column)
	}
}

func TestUnterminatedBlockComment(t *testing.T) {
	_, err := All("main() return 1 /* never closed")
	if err == nil {
		t.Fatal("expected an error for an unterminated block comment")
	}
}

func TestUnterminatedTag(t *testing.T) {
	_, err := All("#oops")
	if err == nil {
		t.Fatal("expected an error for an unterminated tag")
	}
}

func TestNumberExponent(t *testing.T) {
	toks, err := All("1e10 2.5e-3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"1e10", "2.5e-3"}
	for i, w := range want {
		if toks[i].Literal != w {
			t.Errorf("toks[%d].Literal = %q, want %q", i, toks[i].Literal, w)
		}
	}
	// An 'e' with no exponent digits is not part of the number, and a letter
	// directly after a digit run is a lex error.
	if _, err := All("1e 2"); err == nil {
		t.Error("expected an error for an exponent marker with no digits")
	}
}

func TestBOMStripped(t *testing.T) {
	toks, err := All("\xEF\xBB\xBFmain")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if toks[0].Literal != "main" || toks[0].Pos.Column != 1 {
		t.Fatalf("BOM not stripped: %+v", toks[0])
	}
}

func TestIdentifierCannotStartWithDigit(t *testing.T) {
	_, err := All("1abc")
	if err == nil {
		t.Fatal("expected an error for a digit immediately followed by an identifier character")
	}
}

func TestUnknownPunctuation(t *testing.T) {
	_, err := All("@")
	if err == nil {
		t.Fatal("expected an error for unrecognized punctuation")
	}
}
