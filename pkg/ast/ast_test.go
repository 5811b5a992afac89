package ast_test

import (
	"testing"

	"minij.dev/compiler/pkg/ast"
)

func TestNodeIDsAreUniqueAndStable(t *testing.T) {
	a := ast.NewIntLiteral(1)
	b := ast.NewIntLiteral(1)
	if a.NodeID() == b.NodeID() {
		t.Fatal("expected two distinct node constructions to receive distinct NodeIDs")
	}
	if a.NodeID() != a.NodeID() {
		t.Fatal("expected a node's NodeID to be stable across repeated reads")
	}
}

func TestTypeEquality(t *testing.T) {
	intType := ast.Type{Kind: ast.Int}
	otherInt := ast.Type{Kind: ast.Int}
	if !intType.Equal(otherInt) {
		t.Fatal("expected two Int types to be equal")
	}

	fooClass := ast.Type{Kind: ast.Class, ClassName: "Foo"}
	barClass := ast.Type{Kind: ast.Class, ClassName: "Bar"}
	if fooClass.Equal(barClass) {
		t.Fatal("expected two class types naming different classes to be unequal")
	}

	sameClassTwice := ast.Type{Kind: ast.Class, ClassName: "Foo"}
	if !fooClass.Equal(sameClassTwice) {
		t.Fatal("expected two class types naming the same class to be equal")
	}

	if intType.Equal(ast.Type{Kind: ast.Boolean}) {
		t.Fatal("expected Int and Boolean types to be unequal")
	}
}

func TestTypeString(t *testing.T) {
	if got := (ast.Type{Kind: ast.IntArray}).String(); got != "int[]" {
		t.Fatalf("expected int[] type to stringify as int[], got %q", got)
	}
	if got := (ast.Type{Kind: ast.Class, ClassName: "Widget"}).String(); got != "Widget" {
		t.Fatalf("expected a class type to stringify as its class name, got %q", got)
	}
}

func TestClassByNameLookup(t *testing.T) {
	foo := ast.NewClass("Foo")
	bar := ast.NewClass("Bar")
	prog := &ast.Program{Classes: []*ast.Class{foo, bar}}

	found, ok := prog.ClassByName("Bar")
	if !ok || found != bar {
		t.Fatalf("expected to find class Bar, got %+v, %v", found, ok)
	}

	_, ok = prog.ClassByName("Missing")
	if ok {
		t.Fatal("expected ClassByName to report false for an undeclared class")
	}
}

func TestNewMethodStartsWithEmptyOrderedTables(t *testing.T) {
	m := ast.NewMethod("doThing")
	if m.Params.Len() != 0 || m.Locals.Len() != 0 {
		t.Fatalf("expected a freshly constructed Method to have empty Params/Locals tables, got %d/%d", m.Params.Len(), m.Locals.Len())
	}
}

func TestExpressionConstructorsPreserveOperands(t *testing.T) {
	lhs := ast.NewIntLiteral(1)
	rhs := ast.NewIntLiteral(2)
	add := ast.NewArithExpr(ast.OpAdd, lhs, rhs)
	if add.Lhs != ast.Expression(lhs) || add.Rhs != ast.Expression(rhs) {
		t.Fatal("expected NewArithExpr to preserve its operands unchanged")
	}
	if add.Op != ast.OpAdd {
		t.Fatalf("expected the operator to be OpAdd, got %q", add.Op)
	}
}
