// Package parser implements a hand-written recursive-descent parser over
// the filtered token stream produced by pkg/lexer, building the typed tree
// defined by pkg/ast.
//
// Lookahead is one token almost everywhere; a few places look past the
// current token to disambiguate a grammar alternative from its sibling:
// "new int [" vs "new Identifier (", a trailing ".length" vs ".id(" vs
// bare ".id" after a postfix dot, and (in startsLocal) a class-typed local
// declaration "Foo x;" vs a statement beginning with an identifier. Each is
// handled locally inside parseUnary/parsePostfix/startsLocal rather than by
// a general backtracking mechanism.
package parser

import (
	"fmt"

	"github.com/spf13/cast"

	"minij.dev/compiler/pkg/ast"
	"minij.dev/compiler/pkg/token"
)

// Error is a fatal syntax error: a token of an unexpected kind or lexeme
// appeared. It names the expected production, the actual token, and the
// actual token's index in the filtered stream, matching the error shape
// mandated for this stage.
type Error struct {
	Expected string
	Actual   token.Token
	Index    int
}

func (e *Error) Error() string {
	return fmt.Sprintf("syntax error at token %d: expected %s, found %s", e.Index, e.Expected, e.Actual)
}

// Parser consumes a filtered (trivia-free) token slice and produces an
// *ast.Program. It never mutates the input slice.
type Parser struct {
	tokens []token.Token
	pos    int
}

// New builds a Parser over tokens, which must already have had pkg/lexer's
// Whitespace and Comment tokens filtered out (see lexer.Filter).
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse parses the complete token stream into a Program: exactly one main
// class followed by zero or more user classes, in declaration order.
func Parse(tokens []token.Token) (*ast.Program, error) {
	return New(tokens).Parse()
}

func (p *Parser) Parse() (*ast.Program, error) {
	main, err := p.parseMain()
	if err != nil {
		return nil, err
	}

	prog := &ast.Program{Main: main}
	for !p.atEnd() {
		class, err := p.parseClass()
		if err != nil {
			return nil, err
		}
		prog.Classes = append(prog.Classes, class)
	}
	return prog, nil
}

// ---------------------------------------------------------------------------
// token stream helpers

func (p *Parser) atEnd() bool { return p.pos >= len(p.tokens) }

func (p *Parser) peek() token.Token {
	if p.atEnd() {
		return token.Token{Kind: token.Mistake, Lexeme: "<eof>", Position: -1}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peekAt(offset int) token.Token {
	idx := p.pos + offset
	if idx < 0 || idx >= len(p.tokens) {
		return token.Token{Kind: token.Mistake, Lexeme: "<eof>", Position: -1}
	}
	return p.tokens[idx]
}

func (p *Parser) advance() token.Token {
	t := p.peek()
	p.pos++
	return t
}

// is reports whether the current token has the given kind and lexeme.
func (p *Parser) is(kind token.Kind, lexeme string) bool {
	t := p.peek()
	return t.Kind == kind && t.Lexeme == lexeme
}

// expect consumes the current token if it matches kind/lexeme, else fails
// with an *Error naming what was expected.
func (p *Parser) expect(kind token.Kind, lexeme string) (token.Token, error) {
	if !p.is(kind, lexeme) {
		return token.Token{}, &Error{Expected: fmt.Sprintf("%q", lexeme), Actual: p.peek(), Index: p.pos}
	}
	return p.advance(), nil
}

// expectIdentifier consumes an Identifier token and returns its lexeme.
func (p *Parser) expectIdentifier() (string, error) {
	if p.peek().Kind != token.Identifier {
		return "", &Error{Expected: "identifier", Actual: p.peek(), Index: p.pos}
	}
	return p.advance().Lexeme, nil
}

// ---------------------------------------------------------------------------
// MAIN = "class" id "{" "public" "static" "void" "main" "(" "String" "[" "]" id ")" "{" CMD* "}" "}"

func (p *Parser) parseMain() (*ast.MainClass, error) {
	if _, err := p.expect(token.Reserved, "class"); err != nil {
		return nil, err
	}
	name, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Punct, "{"); err != nil {
		return nil, err
	}
	for _, kw := range []string{"public", "static", "void", "main"} {
		if _, err := p.expect(token.Reserved, kw); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.Punct, "("); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Reserved, "String"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Punct, "["); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Punct, "]"); err != nil {
		return nil, err
	}
	argName, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Punct, ")"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Punct, "{"); err != nil {
		return nil, err
	}

	var body []ast.Statement
	for !p.is(token.Punct, "}") {
		stmt, err := p.parseCmd()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	if _, err := p.expect(token.Punct, "}"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Punct, "}"); err != nil {
		return nil, err
	}
	return &ast.MainClass{ID: ast.NewNodeID(), Name: name, ArgName: argName, Body: body}, nil
}

// CLASSE = "class" id ("extends" id)? "{" VAR* METODO* "}"

func (p *Parser) parseClass() (*ast.Class, error) {
	if _, err := p.expect(token.Reserved, "class"); err != nil {
		return nil, err
	}
	name, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	class := ast.NewClass(name)

	if p.is(token.Reserved, "extends") {
		p.advance()
		parent, err := p.expectIdentifier()
		if err != nil {
			return nil, err
		}
		class.Parent = parent
	}

	if _, err := p.expect(token.Punct, "{"); err != nil {
		return nil, err
	}

	for p.startsVar() {
		field, err := p.parseVar()
		if err != nil {
			return nil, err
		}
		field.OwningClass = name
		class.Fields.Set(field.Name, field)
	}
	for p.is(token.Reserved, "public") {
		method, err := p.parseMethod(name)
		if err != nil {
			return nil, err
		}
		class.Methods.Set(method.Name, method)
	}

	if _, err := p.expect(token.Punct, "}"); err != nil {
		return nil, err
	}
	return class, nil
}

// startsVar reports whether the tokens at the current position can only
// begin a VAR ("TIPO id ;"), as opposed to a METODO (always starts with the
// "public" keyword) or the class's closing brace.
func (p *Parser) startsVar() bool {
	return !p.is(token.Reserved, "public") && !p.is(token.Punct, "}")
}

// VAR = TIPO id ";"

func (p *Parser) parseVar() (*ast.Field, error) {
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	name, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Punct, ";"); err != nil {
		return nil, err
	}
	return &ast.Field{ID: ast.NewNodeID(), Name: name, Type: typ}, nil
}

// TIPO = "int" ("[" "]")? | "boolean" | id

func (p *Parser) parseType() (ast.Type, error) {
	switch {
	case p.is(token.Reserved, "int"):
		p.advance()
		if p.is(token.Punct, "[") {
			p.advance()
			if _, err := p.expect(token.Punct, "]"); err != nil {
				return ast.Type{}, err
			}
			return ast.Type{Kind: ast.IntArray}, nil
		}
		return ast.Type{Kind: ast.Int}, nil
	case p.is(token.Reserved, "boolean"):
		p.advance()
		return ast.Type{Kind: ast.Boolean}, nil
	case p.peek().Kind == token.Identifier:
		name := p.advance().Lexeme
		return ast.Type{Kind: ast.Class, ClassName: name}, nil
	default:
		return ast.Type{}, &Error{Expected: "a type", Actual: p.peek(), Index: p.pos}
	}
}

// METODO = "public" TIPO id "(" PARAMS? ")" "{" VAR* CMD* "return" EXP ";" "}"

func (p *Parser) parseMethod(owner string) (*ast.Method, error) {
	if _, err := p.expect(token.Reserved, "public"); err != nil {
		return nil, err
	}
	retType, err := p.parseType()
	if err != nil {
		return nil, err
	}
	name, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}

	method := ast.NewMethod(name)
	method.ReturnType = retType
	method.OwningClass = owner

	if _, err := p.expect(token.Punct, "("); err != nil {
		return nil, err
	}
	if !p.is(token.Punct, ")") {
		if err := p.parseParams(method); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.Punct, ")"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Punct, "{"); err != nil {
		return nil, err
	}

	for p.startsLocal() {
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		localName, err := p.expectIdentifier()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Punct, ";"); err != nil {
			return nil, err
		}
		method.Locals.Set(localName, &ast.Field{ID: ast.NewNodeID(), Name: localName, Type: typ})
	}

	for !p.is(token.Reserved, "return") {
		stmt, err := p.parseCmd()
		if err != nil {
			return nil, err
		}
		method.Body = append(method.Body, stmt)
	}
	if _, err := p.expect(token.Reserved, "return"); err != nil {
		return nil, err
	}
	ret, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	method.Return = ret
	if _, err := p.expect(token.Punct, ";"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Punct, "}"); err != nil {
		return nil, err
	}
	return method, nil
}

// startsLocal distinguishes a method-local VAR declaration ("TIPO id ;")
// from the first statement of the body, using a second token of lookahead
// when the current token is an identifier: "int"/"boolean" always start a
// local; a bare identifier only starts one when followed by a second
// identifier (a class-typed local, "Foo x;"), since a statement beginning
// with an identifier is always either "id = ..." or "id [ ... ] = ...".
func (p *Parser) startsLocal() bool {
	switch {
	case p.is(token.Reserved, "int"), p.is(token.Reserved, "boolean"):
		return true
	case p.peek().Kind == token.Identifier:
		return p.peekAt(1).Kind == token.Identifier
	default:
		return false
	}
}

// PARAMS = TIPO id ("," TIPO id)*

func (p *Parser) parseParams(method *ast.Method) error {
	index := 0
	for {
		typ, err := p.parseType()
		if err != nil {
			return err
		}
		name, err := p.expectIdentifier()
		if err != nil {
			return err
		}
		method.Params.Set(name, &ast.Param{Name: name, Type: typ, Index: index})
		index++

		if !p.is(token.Punct, ",") {
			return nil
		}
		p.advance()
	}
}

// CMD = block | if | while | println | assignment | array-assignment

func (p *Parser) parseCmd() (ast.Statement, error) {
	switch {
	case p.is(token.Punct, "{"):
		return p.parseBlock()
	case p.is(token.Reserved, "if"):
		return p.parseIf()
	case p.is(token.Reserved, "while"):
		return p.parseWhile()
	case p.is(token.Reserved, "System.out.println"):
		return p.parsePrint()
	case p.peek().Kind == token.Identifier:
		return p.parseAssignLike()
	default:
		return nil, &Error{Expected: "a statement", Actual: p.peek(), Index: p.pos}
	}
}

func (p *Parser) parseBlock() (ast.Statement, error) {
	p.advance() // "{"
	var stmts []ast.Statement
	for !p.is(token.Punct, "}") {
		stmt, err := p.parseCmd()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	p.advance() // "}"
	return ast.NewBlockStmt(stmts), nil
}

func (p *Parser) parseIf() (ast.Statement, error) {
	p.advance() // "if"
	if _, err := p.expect(token.Punct, "("); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Punct, ")"); err != nil {
		return nil, err
	}
	then, err := p.parseCmd()
	if err != nil {
		return nil, err
	}
	var els ast.Statement
	if p.is(token.Reserved, "else") {
		p.advance() // "else"
		els, err = p.parseCmd()
		if err != nil {
			return nil, err
		}
	}
	return ast.NewIfStmt(cond, then, els), nil
}

func (p *Parser) parseWhile() (ast.Statement, error) {
	p.advance() // "while"
	if _, err := p.expect(token.Punct, "("); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Punct, ")"); err != nil {
		return nil, err
	}
	body, err := p.parseCmd()
	if err != nil {
		return nil, err
	}
	return ast.NewWhileStmt(cond, body), nil
}

func (p *Parser) parsePrint() (ast.Statement, error) {
	p.advance() // "System.out.println"
	if _, err := p.expect(token.Punct, "("); err != nil {
		return nil, err
	}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Punct, ")"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Punct, ";"); err != nil {
		return nil, err
	}
	return ast.NewPrintStmt(expr), nil
}

// parseAssignLike handles "id = EXP ;" and "id [ EXP ] = EXP ;".
func (p *Parser) parseAssignLike() (ast.Statement, error) {
	name := p.advance().Lexeme

	if p.is(token.Punct, "[") {
		p.advance()
		index, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Punct, "]"); err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Operator, "="); err != nil {
			return nil, err
		}
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Punct, ";"); err != nil {
			return nil, err
		}
		return ast.NewArrayAssignStmt(name, index, value), nil
	}

	if _, err := p.expect(token.Operator, "="); err != nil {
		return nil, err
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Punct, ";"); err != nil {
		return nil, err
	}
	return ast.NewAssignStmt(name, value), nil
}

// ---------------------------------------------------------------------------
// expressions, outermost (&&) to innermost (postfix)

// EXP = REXP ("&&" REXP)*
func (p *Parser) parseExpr() (ast.Expression, error) {
	left, err := p.parseRel()
	if err != nil {
		return nil, err
	}
	for p.is(token.Operator, "&&") {
		p.advance()
		right, err := p.parseRel()
		if err != nil {
			return nil, err
		}
		left = ast.NewAndExpr(left, right)
	}
	return left, nil
}

// REXP = AEXP (("<"|"=="|"!=") AEXP)*
func (p *Parser) parseRel() (ast.Expression, error) {
	left, err := p.parseArith()
	if err != nil {
		return nil, err
	}
	for {
		var op ast.BinOp
		switch {
		case p.is(token.Operator, "<"):
			op = ast.OpLt
		case p.is(token.Operator, "=="):
			op = ast.OpEq
		case p.is(token.Operator, "!="):
			op = ast.OpNeq
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseArith()
		if err != nil {
			return nil, err
		}
		left = ast.NewRelExpr(op, left, right)
	}
}

// AEXP = MEXP (("+"|"-") MEXP)*
func (p *Parser) parseArith() (ast.Expression, error) {
	left, err := p.parseMul()
	if err != nil {
		return nil, err
	}
	for {
		var op ast.BinOp
		switch {
		case p.is(token.Operator, "+"):
			op = ast.OpAdd
		case p.is(token.Operator, "-"):
			op = ast.OpSub
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseMul()
		if err != nil {
			return nil, err
		}
		left = ast.NewArithExpr(op, left, right)
	}
}

// MEXP = SEXP ("*" SEXP)*
func (p *Parser) parseMul() (ast.Expression, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.is(token.Operator, "*") {
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = ast.NewMulExpr(left, right)
	}
	return left, nil
}

// SEXP = "!" SEXP | "-" SEXP | bool-literal | number | "null"
//      | "new" "int" "[" EXP "]" | PEXP (postfix)*
func (p *Parser) parseUnary() (ast.Expression, error) {
	switch {
	case p.is(token.Operator, "!"):
		p.advance()
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewNotExpr(inner), nil
	case p.is(token.Operator, "-"):
		p.advance()
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewNegExpr(inner), nil
	case p.is(token.Reserved, "true"):
		p.advance()
		return ast.NewBoolLiteral(true), nil
	case p.is(token.Reserved, "false"):
		p.advance()
		return ast.NewBoolLiteral(false), nil
	case p.is(token.Reserved, "null"):
		p.advance()
		return ast.NewNullLiteral(), nil
	case p.peek().Kind == token.Number:
		lexeme := p.advance().Lexeme
		return ast.NewIntLiteral(cast.ToInt32(lexeme)), nil
	case p.is(token.Reserved, "new") && p.peekAt(1).Kind == token.Reserved && p.peekAt(1).Lexeme == "int":
		p.advance() // "new"
		p.advance() // "int"
		if _, err := p.expect(token.Punct, "["); err != nil {
			return nil, err
		}
		size, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Punct, "]"); err != nil {
			return nil, err
		}
		return ast.NewNewArrayExpr(size), nil
	default:
		return p.parsePostfix()
	}
}

// parsePostfix parses a PEXP base and then zero or more postfixes:
// ".length", ".id(args)" (method_call), ".id" (field access), "[idx]".
func (p *Parser) parsePostfix() (ast.Expression, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		switch {
		case p.is(token.Punct, "."):
			p.advance()
			if p.is(token.Reserved, "length") {
				p.advance()
				base = ast.NewArrayLengthExpr(base)
				continue
			}
			name, err := p.expectIdentifier()
			if err != nil {
				return nil, err
			}
			if p.is(token.Punct, "(") {
				p.advance()
				args, err := p.parseArgList()
				if err != nil {
					return nil, err
				}
				if _, err := p.expect(token.Punct, ")"); err != nil {
					return nil, err
				}
				base = ast.NewMethodCallExpr(base, name, args)
				continue
			}
			base = ast.NewFieldAccessExpr(base, name)
		case p.is(token.Punct, "["):
			p.advance()
			index, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.Punct, "]"); err != nil {
				return nil, err
			}
			base = ast.NewIndexExpr(base, index)
		default:
			return base, nil
		}
	}
}

// parseArgList parses EXPS? — zero or more comma-separated expressions,
// stopping before the closing ")".
func (p *Parser) parseArgList() ([]ast.Expression, error) {
	if p.is(token.Punct, ")") {
		return nil, nil
	}
	var args []ast.Expression
	for {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !p.is(token.Punct, ",") {
			return args, nil
		}
		p.advance()
	}
}

// PEXP base = id | "this" | "new" id "(" ")" | "(" EXP ")"
func (p *Parser) parsePrimary() (ast.Expression, error) {
	switch {
	case p.is(token.Reserved, "this"):
		p.advance()
		return ast.NewThisExpr(), nil
	case p.is(token.Reserved, "new"):
		p.advance()
		name, err := p.expectIdentifier()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Punct, "("); err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Punct, ")"); err != nil {
			return nil, err
		}
		return ast.NewNewObjectExpr(name), nil
	case p.is(token.Punct, "("):
		p.advance()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Punct, ")"); err != nil {
			return nil, err
		}
		return inner, nil
	case p.peek().Kind == token.Identifier:
		name := p.advance().Lexeme
		return ast.NewVarExpr(name), nil
	default:
		return nil, &Error{Expected: "an expression", Actual: p.peek(), Index: p.pos}
	}
}
