package parser_test

import (
	"testing"

	"minij.dev/compiler/pkg/ast"
	"minij.dev/compiler/pkg/lexer"
	"minij.dev/compiler/pkg/parser"
	"minij.dev/compiler/pkg/token"
)

func tokenize(t *testing.T, src string) []token.Token {
	t.Helper()
	tokens, err := lexer.Tokenize(src)
	if err != nil {
		t.Fatalf("unexpected lexical error: %s", err)
	}
	var significant []token.Token
	for _, tok := range tokens {
		if !tok.IsTrivia() {
			significant = append(significant, tok)
		}
	}
	return significant
}

func TestParseEmptyMain(t *testing.T) {
	src := `class Main { public static void main(String[] a){ } }`
	prog, err := parser.Parse(tokenize(t, src))
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}
	if prog.Main == nil || prog.Main.Name != "Main" {
		t.Fatalf("expected a main class named Main, got %+v", prog.Main)
	}
	if len(prog.Main.Body) != 0 {
		t.Fatalf("expected an empty main body, got %d statements", len(prog.Main.Body))
	}
	if len(prog.Classes) != 0 {
		t.Fatalf("expected no user classes, got %d", len(prog.Classes))
	}
}

func TestParseClassWithFieldsAndMethod(t *testing.T) {
	src := `
		class Main { public static void main(String[] a){ } }
		class Counter {
			int value;
			public int get() { return value; }
		}
	`
	prog, err := parser.Parse(tokenize(t, src))
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}
	class, ok := prog.ClassByName("Counter")
	if !ok {
		t.Fatal("expected to find class Counter")
	}
	if _, ok := class.Fields.Get("value"); !ok {
		t.Fatal("expected field 'value' to be present")
	}
	method, ok := class.Methods.Get("get")
	if !ok {
		t.Fatal("expected method 'get' to be present")
	}
	if _, ok := method.Return.(*ast.VarExpr); !ok {
		t.Fatalf("expected the return expression to be a bare variable, got %T", method.Return)
	}
}

func TestParseInheritance(t *testing.T) {
	src := `
		class Main { public static void main(String[] a){ } }
		class Animal { public int speak() { return 0; } }
		class Dog extends Animal { public int bark() { return 1; } }
	`
	prog, err := parser.Parse(tokenize(t, src))
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}
	dog, ok := prog.ClassByName("Dog")
	if !ok {
		t.Fatal("expected to find class Dog")
	}
	if dog.Parent != "Animal" {
		t.Fatalf("expected Dog to extend Animal, got %q", dog.Parent)
	}
}

func TestParseExpressionPrecedence(t *testing.T) {
	src := `
		class Main { public static void main(String[] a){
			System.out.println(1 + 2 * 3);
		} }
	`
	prog, err := parser.Parse(tokenize(t, src))
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}
	print, ok := prog.Main.Body[0].(*ast.PrintStmt)
	if !ok {
		t.Fatalf("expected a print statement, got %T", prog.Main.Body[0])
	}
	add, ok := print.Expr.(*ast.ArithExpr)
	if !ok || add.Op != ast.OpAdd {
		t.Fatalf("expected top-level + expression, got %+v", print.Expr)
	}
	if _, ok := add.Rhs.(*ast.MulExpr); !ok {
		t.Fatalf("expected 2 * 3 to bind tighter than +, got %T on the right", add.Rhs)
	}
}

func TestParseIfElseIsOptional(t *testing.T) {
	withElse := `
		class Main { public static void main(String[] a){
			if (true) { } else { }
		} }
	`
	prog, err := parser.Parse(tokenize(t, withElse))
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}
	ifStmt, ok := prog.Main.Body[0].(*ast.IfStmt)
	if !ok {
		t.Fatalf("expected an if statement, got %T", prog.Main.Body[0])
	}
	if ifStmt.Else == nil {
		t.Fatal("expected a written else branch to parse as non-nil")
	}

	withoutElse := `
		class Main { public static void main(String[] a){
			if (true) { }
		} }
	`
	prog, err = parser.Parse(tokenize(t, withoutElse))
	if err != nil {
		t.Fatalf("unexpected parse error for an if without an else branch: %s", err)
	}
	ifStmt, ok = prog.Main.Body[0].(*ast.IfStmt)
	if !ok {
		t.Fatalf("expected an if statement, got %T", prog.Main.Body[0])
	}
	if ifStmt.Else != nil {
		t.Fatal("expected an omitted else branch to parse as nil")
	}
}

func TestParseErrorReportsExpectedAndIndex(t *testing.T) {
	src := `class Main { public static void main(String[] a){ x = ; } }`
	_, err := parser.Parse(tokenize(t, src))
	if err == nil {
		t.Fatal("expected a syntax error")
	}
	perr, ok := err.(*parser.Error)
	if !ok {
		t.Fatalf("expected a *parser.Error, got %T", err)
	}
	if perr.Expected == "" {
		t.Fatal("expected a non-empty Expected field")
	}
}

// TestParseIsDeterministic exercises the same input twice and requires the
// same shape out both times: the parser carries no hidden state across
// Parse calls (each New/Parse call builds a fresh Parser).
func TestParseIsDeterministic(t *testing.T) {
	src := `
		class Main { public static void main(String[] a){ System.out.println(7); } }
		class Foo { public int m() { return 1; } }
	`
	first, err := parser.Parse(tokenize(t, src))
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}
	second, err := parser.Parse(tokenize(t, src))
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}
	if len(first.Classes) != len(second.Classes) {
		t.Fatalf("expected repeated parses of the same source to produce the same class count")
	}
}
