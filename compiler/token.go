package compiler

import "fmt"

// ---------------------------------------------------------------------------
// Token types for the Java lexer
// ---------------------------------------------------------------------------

// TokenType represents the type of a token.
type TokenType int

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenError

	// Literals
	TokenInt        // 42, 42L
	TokenFloat      // 3.14, 2.5f
	TokenString     // "hello"
	TokenChar       // 'a', '\n'
	TokenIdentifier // foo, Bar

	// Keywords
	TokenKeyword // class, if, while, ...

	// Operators and punctuation
	TokenLParen    // (
	TokenRParen    // )
	TokenLBrace    // {
	TokenRBrace    // }
	TokenLBracket  // [
	TokenRBracket  // ]
	TokenSemicolon // ;
	TokenComma     // ,
	TokenDot       // .
	TokenColon     // :
	TokenQuestion  // ?
	TokenArrow     // ->
	TokenColonColon // ::
	TokenAt        // @
	TokenOperator  // + - * / % = == != < <= > >= && || ! ++ -- += -= *= /= & |
)

var tokenNames = map[TokenType]string{
	TokenEOF:        "EOF",
	TokenError:      "ERROR",
	TokenInt:        "INT",
	TokenFloat:      "FLOAT",
	TokenString:     "STRING",
	TokenChar:       "CHAR",
	TokenIdentifier: "IDENTIFIER",
	TokenKeyword:    "KEYWORD",
	TokenLParen:     "(",
	TokenRParen:     ")",
	TokenLBrace:     "{",
	TokenRBrace:     "}",
	TokenLBracket:   "[",
	TokenRBracket:   "]",
	TokenSemicolon:  ";",
	TokenComma:      ",",
	TokenDot:        ".",
	TokenColon:      ":",
	TokenQuestion:   "?",
	TokenArrow:      "->",
	TokenColonColon: "::",
	TokenAt:         "@",
	TokenOperator:   "OPERATOR",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Token(%d)", t)
}

// Position represents a source location.
type Position struct {
	Line   int // 1-based line number
	Column int // 1-based column number
}

// Token represents a lexical token.
type Token struct {
	Type    TokenType
	Literal string // the raw text (string/char literals hold the decoded value)
	Pos     Position
}

func (t Token) String() string {
	if t.Type == TokenEOF {
		return "EOF"
	}
	if t.Type == TokenError {
		return fmt.Sprintf("ERROR(%s)", t.Literal)
	}
	if len(t.Literal) > 20 {
		return fmt.Sprintf("%s(%q...)", t.Type, t.Literal[:20])
	}
	return fmt.Sprintf("%s(%q)", t.Type, t.Literal)
}

// Is reports whether the token is a keyword or operator with the given text.
func (t Token) Is(typ TokenType, literal string) bool {
	return t.Type == typ && t.Literal == literal
}

// keywords is the fixed Java keyword set recognised by the lexer.
var keywords = map[string]bool{
	"class": true, "interface": true, "extends": true, "implements": true,
	"public": true, "private": true, "protected": true,
	"static": true, "final": true, "abstract": true, "default": true,
	"void": true, "new": true, "this": true, "super": true, "return": true,
	"if": true, "else": true, "for": true, "while": true, "do": true,
	"break": true, "continue": true, "switch": true, "case": true,
	"try": true, "catch": true, "finally": true, "throw": true, "throws": true,
	"instanceof": true, "native": true, "import": true, "package": true,
	"synchronized": true, "enum": true, "transient": true, "volatile": true,
	"int": true, "long": true, "float": true, "double": true,
	"boolean": true, "char": true, "byte": true, "short": true,
	"true": true, "false": true, "null": true,
}

// IsKeyword reports whether name is in the Java keyword set.
func IsKeyword(name string) bool {
	return keywords[name]
}

// primitiveTypes is the set of primitive type names.
var primitiveTypes = map[string]bool{
	"int": true, "long": true, "float": true, "double": true,
	"boolean": true, "char": true, "byte": true, "short": true, "void": true,
}

// IsPrimitiveType reports whether name is a primitive type name.
func IsPrimitiveType(name string) bool {
	return primitiveTypes[name]
}

// modifiers is the set of member modifier keywords the parser accepts.
var modifiers = map[string]bool{
	"public": true, "private": true, "protected": true,
	"static": true, "final": true, "abstract": true, "default": true,
	"native": true, "synchronized": true, "transient": true, "volatile": true,
}

// IsModifier reports whether name is a member modifier keyword.
func IsModifier(name string) bool {
	return modifiers[name]
}
