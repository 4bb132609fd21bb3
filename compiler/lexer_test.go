package compiler

import (
	"testing"
)

func TestLexerPunctuation(t *testing.T) {
	input := `( ) { } [ ] ; , . : ? @`
	expected := []struct {
		typ TokenType
		lit string
	}{
		{TokenLParen, "("},
		{TokenRParen, ")"},
		{TokenLBrace, "{"},
		{TokenRBrace, "}"},
		{TokenLBracket, "["},
		{TokenRBracket, "]"},
		{TokenSemicolon, ";"},
		{TokenComma, ","},
		{TokenDot, "."},
		{TokenColon, ":"},
		{TokenQuestion, "?"},
		{TokenAt, "@"},
		{TokenEOF, ""},
	}

	l := NewLexer(input)
	for i, exp := range expected {
		tok := l.NextToken()
		if tok.Type != exp.typ {
			t.Errorf("token[%d] type = %v, want %v", i, tok.Type, exp.typ)
		}
		if tok.Literal != exp.lit {
			t.Errorf("token[%d] literal = %q, want %q", i, tok.Literal, exp.lit)
		}
	}
}

func TestLexerKeywords(t *testing.T) {
	for _, kw := range []string{"class", "interface", "while", "instanceof", "int", "boolean", "true", "null", "synchronized"} {
		l := NewLexer(kw)
		tok := l.NextToken()
		if tok.Type != TokenKeyword {
			t.Errorf("Lexer(%q): type = %v, want KEYWORD", kw, tok.Type)
		}
		if tok.Literal != kw {
			t.Errorf("Lexer(%q): literal = %q", kw, tok.Literal)
		}
	}
}

func TestLexerIntegers(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"42", "42"},
		{"0", "0"},
		{"1000000", "1000000"},
		{"42L", "42"},
		{"7l", "7"},
	}

	for _, tc := range tests {
		l := NewLexer(tc.input)
		tok := l.NextToken()
		if tok.Type != TokenInt {
			t.Errorf("Lexer(%q): type = %v, want INT", tc.input, tok.Type)
		}
		if tok.Literal != tc.want {
			t.Errorf("Lexer(%q): literal = %q, want %q", tc.input, tok.Literal, tc.want)
		}
	}
}

func TestLexerFloats(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"3.14", "3.14"},
		{"0.5", "0.5"},
		{"2.5f", "2.5"},
		{"1.0F", "1.0"},
	}

	for _, tc := range tests {
		l := NewLexer(tc.input)
		tok := l.NextToken()
		if tok.Type != TokenFloat {
			t.Errorf("Lexer(%q): type = %v, want FLOAT", tc.input, tok.Type)
		}
		if tok.Literal != tc.want {
			t.Errorf("Lexer(%q): literal = %q, want %q", tc.input, tok.Literal, tc.want)
		}
	}
}

func TestLexerStrings(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`"hello"`, "hello"},
		{`""`, ""},
		{`"a\nb"`, "a\nb"},
		{`"tab\there"`, "tab\there"},
		{`"quote\"inside"`, `quote"inside`},
		{`"back\\slash"`, `back\slash`},
	}

	for _, tc := range tests {
		l := NewLexer(tc.input)
		tok := l.NextToken()
		if tok.Type != TokenString {
			t.Errorf("Lexer(%q): type = %v, want STRING", tc.input, tok.Type)
		}
		if tok.Literal != tc.want {
			t.Errorf("Lexer(%q): literal = %q, want %q", tc.input, tok.Literal, tc.want)
		}
	}
}

func TestLexerChars(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`'a'`, "a"},
		{`'\n'`, "\n"},
		{`'\''`, "'"},
	}

	for _, tc := range tests {
		l := NewLexer(tc.input)
		tok := l.NextToken()
		if tok.Type != TokenChar {
			t.Errorf("Lexer(%q): type = %v, want CHAR", tc.input, tok.Type)
		}
		if tok.Literal != tc.want {
			t.Errorf("Lexer(%q): literal = %q, want %q", tc.input, tok.Literal, tc.want)
		}
	}
}

func TestLexerOperators(t *testing.T) {
	input := `+ - * / % == != <= >= && || ++ -- += -> :: & |`
	wants := []struct {
		typ TokenType
		lit string
	}{
		{TokenOperator, "+"}, {TokenOperator, "-"}, {TokenOperator, "*"},
		{TokenOperator, "/"}, {TokenOperator, "%"}, {TokenOperator, "=="},
		{TokenOperator, "!="}, {TokenOperator, "<="}, {TokenOperator, ">="},
		{TokenOperator, "&&"}, {TokenOperator, "||"}, {TokenOperator, "++"},
		{TokenOperator, "--"}, {TokenOperator, "+="},
		{TokenArrow, "->"}, {TokenColonColon, "::"},
		{TokenOperator, "&"}, {TokenOperator, "|"},
	}

	l := NewLexer(input)
	for i, want := range wants {
		tok := l.NextToken()
		if tok.Type != want.typ || tok.Literal != want.lit {
			t.Errorf("token[%d] = %v(%q), want %v(%q)", i, tok.Type, tok.Literal, want.typ, want.lit)
		}
	}
}

func TestLexerComments(t *testing.T) {
	input := "a // line comment\nb /* block\ncomment */ c"
	var idents []string
	l := NewLexer(input)
	for {
		tok := l.NextToken()
		if tok.Type == TokenEOF {
			break
		}
		idents = append(idents, tok.Literal)
	}
	if len(idents) != 3 || idents[0] != "a" || idents[1] != "b" || idents[2] != "c" {
		t.Errorf("comments not discarded: %v", idents)
	}
}

func TestLexerPositions(t *testing.T) {
	input := "int x;\nint y;"
	l := NewLexer(input)
	tok := l.NextToken() // int
	if tok.Pos.Line != 1 {
		t.Errorf("first token line = %d, want 1", tok.Pos.Line)
	}
	for tok.Type != TokenEOF && !(tok.Type == TokenIdentifier && tok.Literal == "y") {
		tok = l.NextToken()
	}
	if tok.Pos.Line != 2 {
		t.Errorf("y line = %d, want 2", tok.Pos.Line)
	}
}

func TestLexerErrors(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`"open`, "unterminated string literal"},
		{`'a`, "unterminated char literal"},
		{"`", "unexpected character: `"},
	}

	for _, tc := range tests {
		l := NewLexer(tc.input)
		tok := l.NextToken()
		if tok.Type != TokenError {
			t.Errorf("Lexer(%q): type = %v, want ERROR", tc.input, tok.Type)
			continue
		}
		if tok.Literal != tc.want {
			t.Errorf("Lexer(%q): message = %q, want %q", tc.input, tok.Literal, tc.want)
		}
	}
}
