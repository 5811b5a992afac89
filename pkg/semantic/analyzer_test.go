package semantic_test

import (
	"strings"
	"testing"

	"minij.dev/compiler/pkg/ast"
	"minij.dev/compiler/pkg/lexer"
	"minij.dev/compiler/pkg/parser"
	"minij.dev/compiler/pkg/semantic"
	"minij.dev/compiler/pkg/token"
)

func parseProgram(t *testing.T, src string) *ast.Program {
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
	prog, err := parser.Parse(significant)
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}
	return prog
}

func TestTopologicalOrderPlacesParentsFirst(t *testing.T) {
	src := `
		class Main { public static void main(String[] a){ } }
		class Dog extends Animal { public int bark() { return 1; } }
		class Animal { public int speak() { return 0; } }
	`
	prog := parseProgram(t, src)
	if _, err := semantic.Analyze(prog, nil); err != nil {
		t.Fatalf("unexpected semantic error: %s", err)
	}
	animalIdx, dogIdx := -1, -1
	for i, c := range prog.Classes {
		switch c.Name {
		case "Animal":
			animalIdx = i
		case "Dog":
			dogIdx = i
		}
	}
	if animalIdx < 0 || dogIdx < 0 || animalIdx >= dogIdx {
		t.Fatalf("expected Animal before Dog after topological sort, got order %v", classNames(prog.Classes))
	}
}

func classNames(classes []*ast.Class) []string {
	names := make([]string, len(classes))
	for i, c := range classes {
		names[i] = c.Name
	}
	return names
}

func TestInheritanceCycleIsRejected(t *testing.T) {
	src := `
		class Main { public static void main(String[] a){ } }
		class A extends B { public int m() { return 0; } }
		class B extends A { public int n() { return 0; } }
	`
	prog := parseProgram(t, src)
	if _, err := semantic.Analyze(prog, nil); err == nil {
		t.Fatal("expected a cyclic-inheritance error")
	}
}

func TestUndeclaredParentIsRejected(t *testing.T) {
	src := `
		class Main { public static void main(String[] a){ } }
		class Dog extends Ghost { public int bark() { return 1; } }
	`
	prog := parseProgram(t, src)
	if _, err := semantic.Analyze(prog, nil); err == nil {
		t.Fatal("expected an undeclared-parent error")
	}
}

func TestInheritanceFlattensAncestorFields(t *testing.T) {
	src := `
		class Main { public static void main(String[] a){ } }
		class Animal { int age; public int getAge() { return age; } }
		class Dog extends Animal { public int getAgeAgain() { return age; } }
	`
	prog := parseProgram(t, src)
	if _, err := semantic.Analyze(prog, nil); err != nil {
		t.Fatalf("unexpected semantic error: %s", err)
	}
	dog, ok := prog.ClassByName("Dog")
	if !ok {
		t.Fatal("expected to find class Dog")
	}
	if _, ok := dog.Fields.Get("age"); !ok {
		t.Fatal("expected Dog to inherit the field 'age' from Animal after flattening")
	}
}

func TestUseBeforeDeclarationIsRejected(t *testing.T) {
	src := `
		class Main { public static void main(String[] a){
			System.out.println(undeclared);
		} }
	`
	prog := parseProgram(t, src)
	if _, err := semantic.Analyze(prog, nil); err == nil {
		t.Fatal("expected a use-before-declaration error for an unresolved identifier")
	}
}

func TestConstantFoldingArithmetic(t *testing.T) {
	src := `
		class Main { public static void main(String[] a){ } }
		class Calc { public int compute() { return 1 + 2 * 3; } }
	`
	prog := parseProgram(t, src)
	if _, err := semantic.Analyze(prog, nil); err != nil {
		t.Fatalf("unexpected semantic error: %s", err)
	}
	calc, _ := prog.ClassByName("Calc")
	method, _ := calc.Methods.Get("compute")
	lit, ok := method.Return.(*ast.IntLiteral)
	if !ok {
		t.Fatalf("expected the return expression to fold to a single IntLiteral, got %T", method.Return)
	}
	if lit.Value != 7 {
		t.Fatalf("expected 1 + 2 * 3 to fold to 7, got %d", lit.Value)
	}
}

func TestConstantFoldingRelational(t *testing.T) {
	src := `
		class Main { public static void main(String[] a){ } }
		class Calc { public boolean compute() { return 2 < 3; } }
	`
	prog := parseProgram(t, src)
	if _, err := semantic.Analyze(prog, nil); err != nil {
		t.Fatalf("unexpected semantic error: %s", err)
	}
	calc, _ := prog.ClassByName("Calc")
	method, _ := calc.Methods.Get("compute")
	lit, ok := method.Return.(*ast.BoolLiteral)
	if !ok {
		t.Fatalf("expected the return expression to fold to a single BoolLiteral, got %T", method.Return)
	}
	if lit.Value != true {
		t.Fatalf("expected 2 < 3 to fold to true, got %v", lit.Value)
	}
}

func TestMethodCallArityMismatchIsRejected(t *testing.T) {
	src := `
		class Main { public static void main(String[] a){ } }
		class Adder {
			public int add(int x, int y) { return x + y; }
			public int bad() { return this.add(1); }
		}
	`
	prog := parseProgram(t, src)
	if _, err := semantic.Analyze(prog, nil); err == nil {
		t.Fatal("expected an arity-mismatch error for a method call with too few arguments")
	}
}

func TestReturnTypeMismatchIsRejected(t *testing.T) {
	src := `
		class Main { public static void main(String[] a){ } }
		class Weird { public boolean test() { return 1 + 2; } }
	`
	prog := parseProgram(t, src)
	_, err := semantic.Analyze(prog, nil)
	if err == nil {
		t.Fatal("expected a return-type mismatch error (int where boolean is declared)")
	}
	if !strings.Contains(err.Error(), "Weird") {
		t.Fatalf("expected the error to mention the enclosing class, got: %s", err)
	}
}

// TestAnalyzeIsIdempotentOnAlreadyFoldedTree exercises running analysis
// twice over the same program: the second pass should not error out just
// because fields/returns were already rewritten to literals by the first.
func TestAnalyzeIsIdempotentOnAlreadyFoldedTree(t *testing.T) {
	src := `
		class Main { public static void main(String[] a){ } }
		class Calc { public int compute() { return 1 + 2; } }
	`
	prog := parseProgram(t, src)
	if _, err := semantic.Analyze(prog, nil); err != nil {
		t.Fatalf("unexpected semantic error on first pass: %s", err)
	}
	if _, err := semantic.Analyze(prog, nil); err != nil {
		t.Fatalf("unexpected semantic error on second pass over an already-folded tree: %s", err)
	}
}
