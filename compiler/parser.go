package compiler

import (
	"fmt"
	"strconv"
)

// ---------------------------------------------------------------------------
// Parser: Recursive descent parser for Java-8 syntax
// ---------------------------------------------------------------------------

// ParseError is a structured parse failure with its source location.
type ParseError struct {
	Message string
	Line    int
	Column  int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d:%d: %s", e.Line, e.Column, e.Message)
}

// Parser parses Java source code into an AST. The whole input is tokenized
// up front so that casts and lambdas can be disambiguated by trial parse.
type Parser struct {
	tokens []Token
	pos    int
}

// NewParser creates a new parser for the given input.
func NewParser(input string) *Parser {
	return &Parser{tokens: Tokenize(input)}
}

// Parse parses a complete compilation unit.
func Parse(input string) (prog *Program, err error) {
	p := NewParser(input)
	defer func() {
		if r := recover(); r != nil {
			if pe, ok := r.(*ParseError); ok {
				prog, err = nil, pe
				return
			}
			panic(r)
		}
	}()
	prog = p.ParseProgram()
	return prog, nil
}

// cur returns the current token.
func (p *Parser) cur() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.pos]
}

// peek returns the token n positions ahead.
func (p *Parser) peek(n int) Token {
	if p.pos+n >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.pos+n]
}

// next consumes and returns the current token.
func (p *Parser) next() Token {
	tok := p.cur()
	p.pos++
	return tok
}

// curIs checks the current token type.
func (p *Parser) curIs(t TokenType) bool {
	return p.cur().Type == t
}

// curIsKeyword checks for a specific keyword.
func (p *Parser) curIsKeyword(kw string) bool {
	return p.cur().Is(TokenKeyword, kw)
}

// curIsOp checks for a specific operator.
func (p *Parser) curIsOp(op string) bool {
	return p.cur().Is(TokenOperator, op)
}

// accept consumes the current token if it matches.
func (p *Parser) accept(t TokenType) bool {
	if p.curIs(t) {
		p.pos++
		return true
	}
	return false
}

// acceptKeyword consumes a specific keyword if present.
func (p *Parser) acceptKeyword(kw string) bool {
	if p.curIsKeyword(kw) {
		p.pos++
		return true
	}
	return false
}

// acceptOp consumes a specific operator if present.
func (p *Parser) acceptOp(op string) bool {
	if p.curIsOp(op) {
		p.pos++
		return true
	}
	return false
}

// expect consumes a token of the given type or fails.
func (p *Parser) expect(t TokenType) Token {
	if !p.curIs(t) {
		p.fail("expected %s, got %s", t, p.cur())
	}
	return p.next()
}

// expectKeyword consumes a specific keyword or fails.
func (p *Parser) expectKeyword(kw string) {
	if !p.acceptKeyword(kw) {
		p.fail("expected '%s', got %s", kw, p.cur())
	}
}

// mark returns the current position for later reset.
func (p *Parser) mark() int { return p.pos }

// reset rewinds to a marked position.
func (p *Parser) reset(m int) { p.pos = m }

// fail aborts the parse with a structured error at the current token.
func (p *Parser) fail(format string, args ...interface{}) {
	tok := p.cur()
	if tok.Type == TokenError {
		panic(&ParseError{Message: tok.Literal, Line: tok.Pos.Line, Column: tok.Pos.Column})
	}
	panic(&ParseError{
		Message: fmt.Sprintf(format, args...),
		Line:    tok.Pos.Line,
		Column:  tok.Pos.Column,
	})
}

// ---------------------------------------------------------------------------
// Top-level parsing
// ---------------------------------------------------------------------------

// ParseProgram parses all top-level declarations.
func (p *Parser) ParseProgram() *Program {
	prog := &Program{PosVal: p.cur().Pos}

	for !p.curIs(TokenEOF) {
		if p.curIs(TokenError) {
			p.fail("")
		}

		// package and import declarations are consumed and discarded
		if p.curIsKeyword("package") || p.curIsKeyword("import") {
			for !p.curIs(TokenSemicolon) && !p.curIs(TokenEOF) {
				p.next()
			}
			p.accept(TokenSemicolon)
			continue
		}

		p.skipAnnotations()
		mods := p.parseModifiers()

		switch {
		case p.curIsKeyword("class"):
			prog.Classes = append(prog.Classes, p.parseClassDecl(mods))
		case p.curIsKeyword("interface"):
			prog.Interfaces = append(prog.Interfaces, p.parseInterfaceDecl())
		case p.curIsKeyword("enum"):
			p.skipEnumDecl()
		default:
			p.fail("expected class or interface declaration, got %s", p.cur())
		}
	}

	return prog
}

// skipAnnotations consumes any @Name(...) annotations.
func (p *Parser) skipAnnotations() {
	for p.curIs(TokenAt) {
		p.next() // @
		p.expect(TokenIdentifier)
		if p.curIs(TokenLParen) {
			p.skipBalanced(TokenLParen, TokenRParen)
		}
	}
}

// skipEnumDecl brace-matches an enum declaration and discards it.
func (p *Parser) skipEnumDecl() {
	p.expectKeyword("enum")
	p.expect(TokenIdentifier)
	for !p.curIs(TokenLBrace) && !p.curIs(TokenEOF) {
		p.next()
	}
	p.skipBalanced(TokenLBrace, TokenRBrace)
}

// skipBalanced consumes from an opening delimiter to its matching close.
func (p *Parser) skipBalanced(open, close TokenType) {
	depth := 0
	for !p.curIs(TokenEOF) {
		if p.curIs(open) {
			depth++
		} else if p.curIs(close) {
			depth--
			if depth == 0 {
				p.next()
				return
			}
		}
		p.next()
	}
	p.fail("unbalanced %s", open)
}

// parseModifiers consumes a run of modifier keywords.
func (p *Parser) parseModifiers() []string {
	var mods []string
	for p.curIs(TokenKeyword) && IsModifier(p.cur().Literal) {
		// `synchronized(` begins a statement, not a modifier
		if p.cur().Literal == "synchronized" && p.peek(1).Type == TokenLParen {
			break
		}
		mods = append(mods, p.next().Literal)
	}
	return mods
}

// ---------------------------------------------------------------------------
// Class and interface declarations
// ---------------------------------------------------------------------------

func (p *Parser) parseClassDecl(mods []string) *ClassDecl {
	pos := p.cur().Pos
	p.expectKeyword("class")
	name := p.expect(TokenIdentifier).Literal
	p.skipGenericArgs()

	decl := &ClassDecl{PosVal: pos, Name: name, Modifiers: mods}

	if p.acceptKeyword("extends") {
		decl.SuperClass = p.expect(TokenIdentifier).Literal
		p.skipGenericArgs()
	}
	if p.acceptKeyword("implements") {
		for {
			decl.Interfaces = append(decl.Interfaces, p.expect(TokenIdentifier).Literal)
			p.skipGenericArgs()
			if !p.accept(TokenComma) {
				break
			}
		}
	}

	p.expect(TokenLBrace)
	for !p.curIs(TokenRBrace) && !p.curIs(TokenEOF) {
		p.parseClassMember(decl)
	}
	p.expect(TokenRBrace)

	return decl
}

// parseClassMember parses one field, method or constructor into decl.
func (p *Parser) parseClassMember(decl *ClassDecl) {
	p.skipAnnotations()
	if p.accept(TokenSemicolon) {
		return
	}
	mods := p.parseModifiers()

	// Constructor: name matches the class and is followed by (
	if p.curIs(TokenIdentifier) && p.cur().Literal == decl.Name && p.peek(1).Type == TokenLParen {
		pos := p.cur().Pos
		name := p.next().Literal
		m := &MethodDecl{
			PosVal:        pos,
			Name:          name,
			ReturnType:    &TypeNode{PosVal: pos, Name: "void"},
			Modifiers:     mods,
			IsConstructor: true,
		}
		m.Params = p.parseParams()
		p.parseThrows(m)
		m.Body = p.parseBlock()
		decl.Methods = append(decl.Methods, m)
		return
	}

	typ := p.parseType()
	pos := p.cur().Pos
	name := p.expect(TokenIdentifier).Literal

	if p.curIs(TokenLParen) {
		m := &MethodDecl{PosVal: pos, Name: name, ReturnType: typ, Modifiers: mods}
		m.Params = p.parseParams()
		p.parseThrows(m)
		if p.accept(TokenSemicolon) {
			// abstract or native method: no body
		} else {
			m.Body = p.parseBlock()
		}
		decl.Methods = append(decl.Methods, m)
		return
	}

	// Field declaration, possibly multi-variable
	for {
		f := &FieldDecl{PosVal: pos, Name: name, Type: typ, Modifiers: mods}
		if p.acceptOp("=") {
			f.Init = p.parseInitializer(typ)
		}
		decl.Fields = append(decl.Fields, f)
		if !p.accept(TokenComma) {
			break
		}
		pos = p.cur().Pos
		name = p.expect(TokenIdentifier).Literal
	}
	p.expect(TokenSemicolon)
}

func (p *Parser) parseInterfaceDecl() *InterfaceDecl {
	pos := p.cur().Pos
	p.expectKeyword("interface")
	name := p.expect(TokenIdentifier).Literal
	p.skipGenericArgs()

	decl := &InterfaceDecl{PosVal: pos, Name: name}

	if p.acceptKeyword("extends") {
		for {
			decl.Extends = append(decl.Extends, p.expect(TokenIdentifier).Literal)
			p.skipGenericArgs()
			if !p.accept(TokenComma) {
				break
			}
		}
	}

	p.expect(TokenLBrace)
	for !p.curIs(TokenRBrace) && !p.curIs(TokenEOF) {
		p.skipAnnotations()
		if p.accept(TokenSemicolon) {
			continue
		}
		mods := p.parseModifiers()
		typ := p.parseType()
		mpos := p.cur().Pos
		mname := p.expect(TokenIdentifier).Literal

		if p.curIs(TokenLParen) {
			m := &MethodDecl{PosVal: mpos, Name: mname, ReturnType: typ, Modifiers: mods}
			m.Params = p.parseParams()
			p.parseThrows(m)
			if p.accept(TokenSemicolon) {
				// signature only
			} else {
				// default method
				m.Body = p.parseBlock()
			}
			decl.Methods = append(decl.Methods, m)
			continue
		}

		f := &FieldDecl{PosVal: mpos, Name: mname, Type: typ, Modifiers: mods}
		if p.acceptOp("=") {
			f.Init = p.parseInitializer(typ)
		}
		p.expect(TokenSemicolon)
		decl.Fields = append(decl.Fields, f)
	}
	p.expect(TokenRBrace)

	return decl
}

// parseParams parses a parenthesised parameter list.
func (p *Parser) parseParams() []Param {
	p.expect(TokenLParen)
	var params []Param
	for !p.curIs(TokenRParen) && !p.curIs(TokenEOF) {
		p.skipAnnotations()
		p.acceptKeyword("final")
		typ := p.parseType()
		name := p.expect(TokenIdentifier).Literal
		// trailing [] on the name counts toward the type
		for p.curIs(TokenLBracket) && p.peek(1).Type == TokenRBracket {
			p.next()
			p.next()
			typ.Dims++
		}
		params = append(params, Param{Name: name, Type: typ})
		if !p.accept(TokenComma) {
			break
		}
	}
	p.expect(TokenRParen)
	return params
}

// parseThrows consumes an optional throws list.
func (p *Parser) parseThrows(m *MethodDecl) {
	if p.acceptKeyword("throws") {
		for {
			m.Throws = append(m.Throws, p.expect(TokenIdentifier).Literal)
			if !p.accept(TokenComma) {
				break
			}
		}
	}
}

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// parseType parses a type name with optional generic arguments (folded away)
// and array dimensions. Wildcards become the name "?".
func (p *Parser) parseType() *TypeNode {
	pos := p.cur().Pos
	var name string
	switch {
	case p.curIs(TokenKeyword) && IsPrimitiveType(p.cur().Literal):
		name = p.next().Literal
	case p.curIs(TokenIdentifier):
		name = p.next().Literal
	case p.curIsOp("?"):
		p.next()
		name = "?"
	case p.curIs(TokenQuestion):
		p.next()
		name = "?"
	default:
		p.fail("expected type name, got %s", p.cur())
	}

	p.skipGenericArgs()

	typ := &TypeNode{PosVal: pos, Name: name}
	for p.curIs(TokenLBracket) && p.peek(1).Type == TokenRBracket {
		p.next()
		p.next()
		typ.Dims++
	}
	return typ
}

// skipGenericArgs discards a balanced <...> type-argument list if present.
func (p *Parser) skipGenericArgs() {
	if !p.curIsOp("<") {
		return
	}
	depth := 0
	for !p.curIs(TokenEOF) {
		tok := p.cur()
		if tok.Is(TokenOperator, "<") {
			depth++
		} else if tok.Is(TokenOperator, ">") {
			depth--
			if depth == 0 {
				p.next()
				return
			}
		} else if tok.Is(TokenOperator, ">>") {
			depth -= 2
			if depth <= 0 {
				p.next()
				return
			}
		}
		p.next()
	}
}

// looksLikeDecl reports whether a type can be trial-parsed at the current
// position followed by an identifier (i.e. a declaration head).
func (p *Parser) looksLikeDecl() bool {
	m := p.mark()
	defer p.reset(m)

	if !(p.curIs(TokenIdentifier) || (p.curIs(TokenKeyword) && IsPrimitiveType(p.cur().Literal))) {
		return false
	}
	ok := func() (ok bool) {
		defer func() {
			if recover() != nil {
				ok = false
			}
		}()
		p.parseType()
		return p.curIs(TokenIdentifier)
	}()
	return ok
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func (p *Parser) parseBlock() *BlockStmt {
	pos := p.cur().Pos
	p.expect(TokenLBrace)
	block := &BlockStmt{PosVal: pos}
	for !p.curIs(TokenRBrace) && !p.curIs(TokenEOF) {
		block.Stmts = append(block.Stmts, p.parseStatement())
	}
	p.expect(TokenRBrace)
	return block
}

func (p *Parser) parseStatement() Stmt {
	p.skipAnnotations()
	pos := p.cur().Pos

	switch {
	case p.curIs(TokenLBrace):
		return p.parseBlock()

	case p.curIsKeyword("if"):
		return p.parseIf()

	case p.curIsKeyword("while"):
		return p.parseWhile()

	case p.curIsKeyword("do"):
		return p.parseDoWhile()

	case p.curIsKeyword("for"):
		return p.parseFor()

	case p.curIsKeyword("return"):
		p.next()
		stmt := &ReturnStmt{PosVal: pos}
		if !p.curIs(TokenSemicolon) {
			stmt.Value = p.parseExpression()
		}
		p.expect(TokenSemicolon)
		return stmt

	case p.curIsKeyword("break"):
		p.next()
		p.expect(TokenSemicolon)
		return &BreakStmt{PosVal: pos}

	case p.curIsKeyword("continue"):
		p.next()
		p.expect(TokenSemicolon)
		return &ContinueStmt{PosVal: pos}

	case p.curIsKeyword("throw"):
		p.next()
		stmt := &ThrowStmt{PosVal: pos, Value: p.parseExpression()}
		p.expect(TokenSemicolon)
		return stmt

	case p.curIsKeyword("switch"):
		return p.parseSwitch()

	case p.curIsKeyword("try"):
		return p.parseTry()

	case p.curIsKeyword("synchronized"):
		return p.parseSynchronized()

	case p.accept(TokenSemicolon):
		return &BlockStmt{PosVal: pos}

	case p.curIsKeyword("final"):
		p.next()
		return p.parseVarDecl()

	default:
		if p.looksLikeDecl() {
			return p.parseVarDecl()
		}
		expr := p.parseExpression()
		p.expect(TokenSemicolon)
		return &ExprStmt{PosVal: pos, Expr: expr}
	}
}

func (p *Parser) parseIf() Stmt {
	pos := p.cur().Pos
	p.expectKeyword("if")
	p.expect(TokenLParen)
	cond := p.parseExpression()
	p.expect(TokenRParen)
	then := p.parseStatement()
	stmt := &IfStmt{PosVal: pos, Cond: cond, Then: then}
	if p.acceptKeyword("else") {
		stmt.Else = p.parseStatement()
	}
	return stmt
}

func (p *Parser) parseWhile() Stmt {
	pos := p.cur().Pos
	p.expectKeyword("while")
	p.expect(TokenLParen)
	cond := p.parseExpression()
	p.expect(TokenRParen)
	body := p.parseStatement()
	return &WhileStmt{PosVal: pos, Cond: cond, Body: body}
}

// parseDoWhile lowers do/while to a plain while in the AST.
func (p *Parser) parseDoWhile() Stmt {
	pos := p.cur().Pos
	p.expectKeyword("do")
	body := p.parseStatement()
	p.expectKeyword("while")
	p.expect(TokenLParen)
	cond := p.parseExpression()
	p.expect(TokenRParen)
	p.expect(TokenSemicolon)
	return &WhileStmt{PosVal: pos, Cond: cond, Body: body}
}

func (p *Parser) parseFor() Stmt {
	pos := p.cur().Pos
	p.expectKeyword("for")
	p.expect(TokenLParen)

	// Enhanced for: Type Identifier : expr
	if p.isForEachHead() {
		typ := p.parseType()
		name := p.expect(TokenIdentifier).Literal
		p.expect(TokenColon)
		iterable := p.parseExpression()
		p.expect(TokenRParen)
		body := p.parseStatement()
		return &ForEachStmt{PosVal: pos, VarType: typ, VarName: name, Iterable: iterable, Body: body}
	}

	stmt := &ForStmt{PosVal: pos}
	if !p.curIs(TokenSemicolon) {
		if p.looksLikeDecl() {
			stmt.Init = p.parseVarDecl()
		} else {
			expr := p.parseExpression()
			p.expect(TokenSemicolon)
			stmt.Init = &ExprStmt{PosVal: expr.Pos(), Expr: expr}
		}
	} else {
		p.next()
	}
	if !p.curIs(TokenSemicolon) {
		stmt.Cond = p.parseExpression()
	}
	p.expect(TokenSemicolon)
	if !p.curIs(TokenRParen) {
		stmt.Update = p.parseExpression()
	}
	p.expect(TokenRParen)
	stmt.Body = p.parseStatement()
	return stmt
}

// isForEachHead looks ahead for `Type Identifier :` after the for's paren.
func (p *Parser) isForEachHead() bool {
	m := p.mark()
	defer p.reset(m)

	ok := func() (ok bool) {
		defer func() {
			if recover() != nil {
				ok = false
			}
		}()
		p.acceptKeyword("final")
		p.parseType()
		if !p.curIs(TokenIdentifier) {
			return false
		}
		p.next()
		return p.curIs(TokenColon)
	}()
	return ok
}

// parseVarDecl parses one declaration statement. Multi-variable forms
// (`int a = 1, b = 2;`) lower to a block of single declarations.
func (p *Parser) parseVarDecl() Stmt {
	pos := p.cur().Pos
	typ := p.parseType()

	var decls []Stmt
	for {
		vpos := p.cur().Pos
		name := p.expect(TokenIdentifier).Literal
		vtyp := &TypeNode{PosVal: typ.PosVal, Name: typ.Name, Dims: typ.Dims}
		for p.curIs(TokenLBracket) && p.peek(1).Type == TokenRBracket {
			p.next()
			p.next()
			vtyp.Dims++
		}
		decl := &VarDecl{PosVal: vpos, Type: vtyp, Name: name}
		if p.acceptOp("=") {
			decl.Init = p.parseInitializer(vtyp)
		}
		decls = append(decls, decl)
		if !p.accept(TokenComma) {
			break
		}
	}
	p.expect(TokenSemicolon)

	if len(decls) == 1 {
		return decls[0]
	}
	return &BlockStmt{PosVal: pos, Stmts: decls}
}

// parseInitializer parses a declaration initializer, accepting the bare
// array form {a, b, c} in addition to any expression.
func (p *Parser) parseInitializer(typ *TypeNode) Expr {
	if p.curIs(TokenLBrace) {
		return p.parseArrayInit()
	}
	return p.parseExpression()
}

func (p *Parser) parseArrayInit() Expr {
	pos := p.cur().Pos
	p.expect(TokenLBrace)
	init := &ArrayInit{PosVal: pos}
	for !p.curIs(TokenRBrace) && !p.curIs(TokenEOF) {
		if p.curIs(TokenLBrace) {
			init.Elements = append(init.Elements, p.parseArrayInit())
		} else {
			init.Elements = append(init.Elements, p.parseExpression())
		}
		if !p.accept(TokenComma) {
			break
		}
	}
	p.expect(TokenRBrace)
	return init
}

func (p *Parser) parseSwitch() Stmt {
	pos := p.cur().Pos
	p.expectKeyword("switch")
	p.expect(TokenLParen)
	subject := p.parseExpression()
	p.expect(TokenRParen)
	p.expect(TokenLBrace)

	stmt := &SwitchStmt{PosVal: pos, Subject: subject}
	for !p.curIs(TokenRBrace) && !p.curIs(TokenEOF) {
		var c SwitchCase
		if p.acceptKeyword("case") {
			c.Value = p.parseExpression()
		} else if p.acceptKeyword("default") {
			c.Value = nil
		} else {
			p.fail("expected 'case' or 'default', got %s", p.cur())
		}
		p.expect(TokenColon)
		for !p.curIsKeyword("case") && !p.curIsKeyword("default") &&
			!p.curIs(TokenRBrace) && !p.curIs(TokenEOF) {
			c.Stmts = append(c.Stmts, p.parseStatement())
		}
		stmt.Cases = append(stmt.Cases, c)
	}
	p.expect(TokenRBrace)
	return stmt
}

func (p *Parser) parseTry() Stmt {
	pos := p.cur().Pos
	p.expectKeyword("try")
	stmt := &TryStmt{PosVal: pos, Body: p.parseBlock()}

	for p.curIsKeyword("catch") {
		p.next()
		p.expect(TokenLParen)
		typ := p.parseType()
		// multi-catch: Type1 | Type2 name — extra types are folded away
		for p.curIsOp("|") {
			p.next()
			p.parseType()
		}
		name := p.expect(TokenIdentifier).Literal
		p.expect(TokenRParen)
		stmt.Catches = append(stmt.Catches, CatchClause{Type: typ, Name: name, Body: p.parseBlock()})
	}
	if p.acceptKeyword("finally") {
		stmt.Finally = p.parseBlock()
	}
	return stmt
}

// parseSynchronized parses synchronized(expr) { ... }. The lock expression
// is parsed and discarded; the body is a plain block.
func (p *Parser) parseSynchronized() Stmt {
	pos := p.cur().Pos
	p.expectKeyword("synchronized")
	p.expect(TokenLParen)
	p.parseExpression() // discarded
	p.expect(TokenRParen)
	return &SyncStmt{PosVal: pos, Body: p.parseBlock()}
}

// ---------------------------------------------------------------------------
// Expression parsing (precedence climbing)
// ---------------------------------------------------------------------------

// parseExpression parses at the lowest precedence: assignment.
func (p *Parser) parseExpression() Expr {
	return p.parseAssignment()
}

var assignOps = map[string]bool{"=": true, "+=": true, "-=": true, "*=": true, "/=": true}

// parseAssignment handles right-associative assignment and compound forms.
func (p *Parser) parseAssignment() Expr {
	left := p.parseTernary()

	if p.curIs(TokenOperator) && assignOps[p.cur().Literal] {
		op := p.next().Literal
		value := p.parseAssignment()
		switch left.(type) {
		case *Ident, *FieldAccess, *IndexAccess:
			return &Assign{PosVal: left.Pos(), Target: left, Op: op, Value: value}
		default:
			p.fail("invalid assignment target")
		}
	}
	return left
}

func (p *Parser) parseTernary() Expr {
	cond := p.parseBinary(0)
	if !p.curIs(TokenQuestion) {
		return cond
	}
	p.next()
	then := p.parseAssignment()
	p.expect(TokenColon)
	els := p.parseAssignment()
	return &Ternary{PosVal: cond.Pos(), Cond: cond, Then: then, Else: els}
}

// binaryPrecedence maps binary operators to climbing levels, low to high.
var binaryPrecedence = map[string]int{
	"||": 1,
	"&&": 2,
	"|":  3,
	"&":  4,
	"==": 5, "!=": 5,
	"<": 6, "<=": 6, ">": 6, ">=": 6,
	"+": 7, "-": 7,
	"*": 8, "/": 8, "%": 8,
}

const instanceofPrecedence = 6

// parseBinary climbs binary operators above minPrec.
func (p *Parser) parseBinary(minPrec int) Expr {
	left := p.parseUnary()

	for {
		if p.curIsKeyword("instanceof") && instanceofPrecedence > minPrec {
			p.next()
			typ := p.parseType()
			left = &InstanceOf{PosVal: left.Pos(), Value: left, Type: typ}
			continue
		}
		if !p.curIs(TokenOperator) {
			return left
		}
		prec, ok := binaryPrecedence[p.cur().Literal]
		if !ok || prec <= minPrec {
			return left
		}
		op := p.next().Literal
		right := p.parseBinary(prec)
		left = &Binary{PosVal: left.Pos(), Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseUnary() Expr {
	pos := p.cur().Pos

	if p.curIsOp("!") || p.curIsOp("-") || p.curIsOp("++") || p.curIsOp("--") {
		op := p.next().Literal
		operand := p.parseUnary()
		return &Unary{PosVal: pos, Op: op, Operand: operand}
	}

	// Cast: (Type) unary, disambiguated by trial parse
	if p.curIs(TokenLParen) {
		if cast, ok := p.tryParseCast(); ok {
			return cast
		}
	}

	return p.parsePostfix()
}

// tryParseCast attempts to parse (Type) expr, resetting on failure.
func (p *Parser) tryParseCast() (expr Expr, ok bool) {
	m := p.mark()
	defer func() {
		if r := recover(); r != nil {
			if _, isPE := r.(*ParseError); isPE {
				p.reset(m)
				expr, ok = nil, false
				return
			}
			panic(r)
		}
	}()

	pos := p.cur().Pos
	p.expect(TokenLParen)
	if !(p.curIs(TokenIdentifier) || (p.curIs(TokenKeyword) && IsPrimitiveType(p.cur().Literal))) {
		p.reset(m)
		return nil, false
	}
	typ := p.parseType()
	if !p.curIs(TokenRParen) {
		p.reset(m)
		return nil, false
	}
	p.next()

	// The cast must be followed by something that can start an operand.
	tok := p.cur()
	canFollow := tok.Type == TokenIdentifier || tok.Type == TokenInt || tok.Type == TokenFloat ||
		tok.Type == TokenString || tok.Type == TokenChar || tok.Type == TokenLParen ||
		tok.Is(TokenOperator, "!") ||
		tok.Is(TokenKeyword, "this") || tok.Is(TokenKeyword, "new") ||
		tok.Is(TokenKeyword, "true") || tok.Is(TokenKeyword, "false") || tok.Is(TokenKeyword, "null")
	if !canFollow {
		p.reset(m)
		return nil, false
	}

	value := p.parseUnary()
	return &Cast{PosVal: pos, Type: typ, Value: value}, true
}

// parsePostfix parses a primary followed by postfix operators:
// .field, [index], (args), ::method, ++, --.
func (p *Parser) parsePostfix() Expr {
	expr := p.parsePrimary()

	for {
		switch {
		case p.curIs(TokenDot):
			p.next()
			name := p.expect(TokenIdentifier).Literal
			if p.curIs(TokenLParen) {
				args := p.parseArgs()
				expr = &Call{PosVal: expr.Pos(), Receiver: expr, Method: name, Args: args}
			} else {
				expr = &FieldAccess{PosVal: expr.Pos(), Receiver: expr, Name: name}
			}

		case p.curIs(TokenLBracket):
			p.next()
			index := p.parseExpression()
			p.expect(TokenRBracket)
			expr = &IndexAccess{PosVal: expr.Pos(), Receiver: expr, Index: index}

		case p.curIs(TokenColonColon):
			p.next()
			name := p.expect(TokenIdentifier).Literal
			expr = &MethodRef{PosVal: expr.Pos(), Receiver: expr, Method: name}

		case p.curIsOp("++"), p.curIsOp("--"):
			op := p.next().Literal
			expr = &Postfix{PosVal: expr.Pos(), Op: op, Operand: expr}

		default:
			return expr
		}
	}
}

// parseArgs parses a parenthesised argument list.
func (p *Parser) parseArgs() []Expr {
	p.expect(TokenLParen)
	var args []Expr
	for !p.curIs(TokenRParen) && !p.curIs(TokenEOF) {
		args = append(args, p.parseExpression())
		if !p.accept(TokenComma) {
			break
		}
	}
	p.expect(TokenRParen)
	return args
}

// ---------------------------------------------------------------------------
// Primary expressions
// ---------------------------------------------------------------------------

func (p *Parser) parsePrimary() Expr {
	pos := p.cur().Pos

	// Lambda: Identifier -> ..., or (params) -> ...
	if p.curIs(TokenIdentifier) && p.peek(1).Type == TokenArrow {
		return p.parseLambda()
	}
	if p.curIs(TokenLParen) && p.parenClosesBeforeArrow() {
		return p.parseLambda()
	}

	switch {
	case p.curIs(TokenInt):
		tok := p.next()
		value, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			p.fail("invalid integer literal: %s", tok.Literal)
		}
		return &IntLiteral{PosVal: pos, Value: value}

	case p.curIs(TokenFloat):
		tok := p.next()
		value, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			p.fail("invalid float literal: %s", tok.Literal)
		}
		return &FloatLiteral{PosVal: pos, Value: value}

	case p.curIs(TokenString):
		return &StringLiteral{PosVal: pos, Value: p.next().Literal}

	case p.curIs(TokenChar):
		tok := p.next()
		var ch rune
		for _, r := range tok.Literal {
			ch = r
			break
		}
		return &CharLiteral{PosVal: pos, Value: ch}

	case p.curIsKeyword("true"):
		p.next()
		return &BoolLiteral{PosVal: pos, Value: true}

	case p.curIsKeyword("false"):
		p.next()
		return &BoolLiteral{PosVal: pos, Value: false}

	case p.curIsKeyword("null"):
		p.next()
		return &NullLiteral{PosVal: pos}

	case p.curIsKeyword("this"):
		p.next()
		if p.curIs(TokenLParen) {
			// this(...) constructor delegation compiles as a call
			args := p.parseArgs()
			return &Call{PosVal: pos, Receiver: &This{PosVal: pos}, Method: "<init>", Args: args}
		}
		return &This{PosVal: pos}

	case p.curIsKeyword("super"):
		p.next()
		if p.curIs(TokenLParen) {
			args := p.parseArgs()
			return &Call{PosVal: pos, Receiver: &SuperRef{PosVal: pos}, Method: "<init>", Args: args}
		}
		return &SuperRef{PosVal: pos}

	case p.curIsKeyword("new"):
		return p.parseNew()

	case p.curIs(TokenLParen):
		p.next()
		expr := p.parseExpression()
		p.expect(TokenRParen)
		return expr

	case p.curIs(TokenIdentifier):
		name := p.next().Literal
		if p.curIs(TokenLParen) {
			args := p.parseArgs()
			return &Call{PosVal: pos, Receiver: nil, Method: name, Args: args}
		}
		return &Ident{PosVal: pos, Name: name}

	default:
		p.fail("unexpected token in expression: %s", p.cur())
		return nil
	}
}

// parenClosesBeforeArrow scans ahead from an opening ( for its matching )
// and reports whether the next token after it is ->.
func (p *Parser) parenClosesBeforeArrow() bool {
	depth := 0
	for i := p.pos; i < len(p.tokens); i++ {
		switch p.tokens[i].Type {
		case TokenLParen:
			depth++
		case TokenRParen:
			depth--
			if depth == 0 {
				return i+1 < len(p.tokens) && p.tokens[i+1].Type == TokenArrow
			}
		case TokenEOF:
			return false
		}
	}
	return false
}

func (p *Parser) parseLambda() Expr {
	pos := p.cur().Pos
	lambda := &Lambda{PosVal: pos}

	if p.curIs(TokenIdentifier) {
		lambda.Params = []string{p.next().Literal}
	} else {
		p.expect(TokenLParen)
		for !p.curIs(TokenRParen) && !p.curIs(TokenEOF) {
			// typed parameters: discard the type, keep the name
			if p.looksLikeDecl() {
				p.parseType()
			}
			lambda.Params = append(lambda.Params, p.expect(TokenIdentifier).Literal)
			if !p.accept(TokenComma) {
				break
			}
		}
		p.expect(TokenRParen)
	}

	p.expect(TokenArrow)
	if p.curIs(TokenLBrace) {
		lambda.Block = p.parseBlock()
	} else {
		lambda.Body = p.parseExpression()
	}
	return lambda
}

func (p *Parser) parseNew() Expr {
	pos := p.cur().Pos
	p.expectKeyword("new")

	var name string
	if p.curIs(TokenKeyword) && IsPrimitiveType(p.cur().Literal) {
		name = p.next().Literal
	} else {
		name = p.expect(TokenIdentifier).Literal
	}
	p.skipGenericArgs()
	typ := &TypeNode{PosVal: pos, Name: name}

	if p.curIs(TokenLBracket) {
		na := &NewArray{PosVal: pos, ElemType: typ}
		// sized form: new T[e] ([e2] ...), or literal form: new T[]{...}
		for p.curIs(TokenLBracket) {
			p.next()
			if p.curIs(TokenRBracket) {
				p.next()
				typ.Dims++
				continue
			}
			na.Lengths = append(na.Lengths, p.parseExpression())
			p.expect(TokenRBracket)
		}
		if p.curIs(TokenLBrace) {
			init := p.parseArrayInit().(*ArrayInit)
			na.Init = init.Elements
		}
		return na
	}

	args := p.parseArgs()
	return &New{PosVal: pos, Type: typ, Args: args}
}
