package optimizer_test

import (
	"strings"
	"testing"

	"minij.dev/compiler/pkg/optimizer"
)

func run(src string) string {
	return optimizer.Run(src, 1, nil)
}

func TestStrengthReduction(t *testing.T) {
	out := run(".text\nmain:\nmul $t0, $t1, 8\njr $ra\n")
	if !strings.Contains(out, "sll $t0, $t1, 3") {
		t.Fatalf("expected sll rewrite, got:\n%s", out)
	}
	if strings.Contains(out, "mul $t0, $t1, 8") {
		t.Fatalf("mul should have been replaced, got:\n%s", out)
	}
}

func TestStrengthReductionSkipsNonPowerOfTwo(t *testing.T) {
	out := run(".text\nmain:\nmul $t0, $t1, 6\njr $ra\n")
	if !strings.Contains(out, "mul $t0, $t1, 6") {
		t.Fatalf("6 is not a power of two, mul should survive, got:\n%s", out)
	}
}

func TestRedundantAddWithZeroLoad(t *testing.T) {
	out := run(".text\nmain:\nli $t1, 0\nlw $t2, Foo.x($zero)\nadd $t0, $t1, $t2\njr $ra\n")
	if !strings.Contains(out, "lw $t0, Foo.x($zero)") {
		t.Fatalf("expected collapsed lw, got:\n%s", out)
	}
	if strings.Contains(out, "li $t1, 0") {
		t.Fatalf("triple should have been collapsed, got:\n%s", out)
	}
}

func TestRedundantMulWithOneLoad(t *testing.T) {
	out := run(".text\nmain:\nli $t1, 1\nlw $t2, Foo.x($zero)\nmul $t0, $t2, $t1\njr $ra\n")
	if !strings.Contains(out, "lw $t0, Foo.x($zero)") {
		t.Fatalf("expected collapsed lw, got:\n%s", out)
	}
}

func TestRedundantMoveElimination(t *testing.T) {
	out := run(".text\nmain:\nmove $t0, $t0\nli $t1, 5\njr $ra\n")
	if strings.Contains(out, "move $t0, $t0") {
		t.Fatalf("self-move should have been dropped, got:\n%s", out)
	}
}

func TestNoOpElimination(t *testing.T) {
	out := run(".text\nmain:\nadd $t0, $t0, $zero\nli $t1, 5\njr $ra\n")
	if strings.Contains(out, "add $t0, $t0, $zero") {
		t.Fatalf("no-op add should have been dropped, got:\n%s", out)
	}
}

func TestDeadCodeOutsideFunctionBodyIsDropped(t *testing.T) {
	out := run(".data\nfoo: .word 0\n.text\nli $t0, 1\nmain:\nli $t1, 2\njr $ra\n")
	if strings.Contains(out, "li $t0, 1") {
		t.Fatalf("instruction outside any body should have been dropped, got:\n%s", out)
	}
	if !strings.Contains(out, "li $t1, 2") {
		t.Fatalf("instruction inside main's body should survive, got:\n%s", out)
	}
}

func TestDirectivesAndLabelsAlwaysSurvive(t *testing.T) {
	out := run(".data\nnewline: .asciiz \"\\n\"\n.text\n.globl main\nmain:\njr $ra\n")
	for _, want := range []string{".data", "newline:", ".text", ".globl main", "main:"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q to survive, got:\n%s", want, out)
		}
	}
}

func TestMaxRoundsFixedPoint(t *testing.T) {
	// A self-move followed by a no-op add: one round drops the move, revealing
	// nothing new for the add pass to chase, but this still exercises the
	// multi-round path without asserting on pass-interaction specifics.
	out := optimizer.Run(".text\nmain:\nmove $t0, $t0\nadd $t1, $t1, $zero\njr $ra\n", 3, nil)
	if strings.Contains(out, "move $t0, $t0") || strings.Contains(out, "add $t1, $t1, $zero") {
		t.Fatalf("expected both redundant instructions gone after fixed-point rounds, got:\n%s", out)
	}
}
