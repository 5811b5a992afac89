package codegen_test

import (
	"strings"
	"testing"

	"minij.dev/compiler/pkg/ast"
	"minij.dev/compiler/pkg/codegen"
	"minij.dev/compiler/pkg/lexer"
	"minij.dev/compiler/pkg/parser"
	"minij.dev/compiler/pkg/semantic"
	"minij.dev/compiler/pkg/token"
)

func generate(t *testing.T, src string) string {
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
	prog, err = semantic.Analyze(prog, nil)
	if err != nil {
		t.Fatalf("unexpected semantic error: %s", err)
	}
	asm, diags, err := codegen.Generate(prog, nil)
	if err != nil {
		t.Fatalf("unexpected codegen error: %s", err)
	}
	if len(diags) != 0 {
		t.Fatalf("unexpected codegen diagnostics: %v", diags)
	}
	return asm
}

func TestGenerateEmptyMainHasDataAndTextSections(t *testing.T) {
	asm := generate(t, `class P { public static void main(String[] a){ } }`)
	if !strings.Contains(asm, ".data") {
		t.Fatal("expected a .data section")
	}
	if !strings.Contains(asm, ".text") {
		t.Fatal("expected a .text section")
	}
	if !strings.Contains(asm, "main:") {
		t.Fatal("expected a main: label")
	}
}

func TestGeneratePrintLiteral(t *testing.T) {
	asm := generate(t, `class P { public static void main(String[] a){ System.out.println(42); } }`)
	if !strings.Contains(asm, "li $t0, 42") {
		t.Fatalf("expected the literal to materialize via li $t0, got:\n%s", asm)
	}
	if !strings.Contains(asm, "move $a0, $t0") {
		t.Fatalf("expected the printed value to be moved into $a0, got:\n%s", asm)
	}
	if !strings.Contains(asm, "li $v0, 1") || !strings.Contains(asm, "syscall") {
		t.Fatalf("expected the print-integer syscall sequence, got:\n%s", asm)
	}
}

func TestGenerateFieldGetsDataLabel(t *testing.T) {
	asm := generate(t, `
		class P { public static void main(String[] a){ } }
		class Counter { int value; public int get() { return value; } }
	`)
	if !strings.Contains(asm, "Counter.value: .word 0") {
		t.Fatalf("expected a Counter.value data label, got:\n%s", asm)
	}
	if !strings.Contains(asm, "Counter.get:") {
		t.Fatalf("expected a Counter.get method label, got:\n%s", asm)
	}
}

func TestGenerateInheritedMethodNotDuplicated(t *testing.T) {
	asm := generate(t, `
		class P { public static void main(String[] a){ } }
		class Animal { public int speak() { return 0; } }
		class Dog extends Animal { public int bark() { return 1; } }
	`)
	if strings.Count(asm, "Dog.speak:") != 0 {
		t.Fatalf("expected Dog to dispatch to the inherited Animal.speak label rather than duplicate it, got:\n%s", asm)
	}
	if !strings.Contains(asm, "Animal.speak:") {
		t.Fatalf("expected Animal.speak to be emitted once, got:\n%s", asm)
	}
}

func TestGenerateArrayVariableGetsDedicatedRegister(t *testing.T) {
	asm := generate(t, `
		class P { public static void main(String[] a){ } }
		class Holder { public int sum(int n) { int[] xs; xs = new int[n]; return n; } }
	`)
	found := false
	for _, reg := range []string{"$s0", "$s1", "$s2", "$s3", "$s4", "$s5", "$s6", "$s7"} {
		if strings.Contains(asm, reg) {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("expected the array-typed local to be assigned one of the $s0-$s7 registers, got:\n%s", asm)
	}
}

// TestGenerateArrayRegisterPoolExhaustionIsDiagnosed exercises the fixed
// $s0-$s7 pool's ninth allocation, which would otherwise silently wrap
// around and alias an already-assigned array variable's register.
func TestGenerateArrayRegisterPoolExhaustionIsDiagnosed(t *testing.T) {
	var fields strings.Builder
	for i := 0; i < 9; i++ {
		fields.WriteString("int[] a" + string(rune('a'+i)) + "; ")
	}
	src := `
		class P { public static void main(String[] a){ } }
		class Holder { public int sum(int n) { ` + fields.String() + ` return n; } }
	`
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
	prog, err = semantic.Analyze(prog, nil)
	if err != nil {
		t.Fatalf("unexpected semantic error: %s", err)
	}
	_, diags, err := codegen.Generate(prog, nil)
	if err != nil {
		t.Fatalf("unexpected codegen error: %s", err)
	}
	if len(diags) == 0 {
		t.Fatal("expected a diagnostic for the 9th array-typed local exhausting the $s0-$s7 pool")
	}
}

func TestGenerateEmptyProgramProducesNoDiagnostics(t *testing.T) {
	g := codegen.New(nil)
	_, diags, err := g.Generate(&ast.Program{Main: &ast.MainClass{Name: "P"}})
	if err != nil {
		t.Fatalf("codegen must never return a fatal error for a structurally valid, empty program: %s", err)
	}
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics for a trivially empty program, got %v", diags)
	}
}
