// Package ast defines the typed abstract syntax tree produced by pkg/parser,
// mutated in place by pkg/semantic, and read by pkg/codegen.
//
// A generic node model (label, ordered children, optional type tag, stable
// identity) would fit a dynamically typed tree, but this package follows the
// base repository's idiom instead (pkg/jack/jack.go's tagged sum of concrete structs
// implementing a shared marker interface, dispatched with a Go type switch)
// since the grammar is fixed and known ahead of time: every class, method,
// field, statement and expression node still carries a NodeID for stable
// identity (Program and Param do not), with the "type tag" simply being the
// Go concrete type itself, which a type switch already distinguishes without
// a separate field. Whole-tree rewriting (topological reordering of
// Program.Classes,
// inheritance flattening, constant folding) is done by ordinary in-place
// mutation of the fields below, which is sound because Go slices/maps/struct
// fields already give every node a single, stable home to rewrite.
package ast

import (
	"sync/atomic"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// NodeID is a process-wide unique identity assigned to every node that
// carries an ID field, at construction. It plays no role in tree structure; it
// exists purely so that two syntactically identical nodes can still be told
// apart.
type NodeID uint64

var nextID atomic.Uint64

// NewNodeID returns a fresh, monotonically increasing NodeID.
func NewNodeID() NodeID { return NodeID(nextID.Add(1)) }

// TypeKind enumerates the handful of static types MiniJava programs can
// name: the two scalar types, fixed-size integer arrays, and user-defined
// class types.
type TypeKind string

const (
	Int      TypeKind = "int"
	Boolean  TypeKind = "boolean"
	IntArray TypeKind = "int[]"
	Class    TypeKind = "class"
)

// Type is the resolved static type of an expression, field, parameter or
// local. ClassName is only meaningful when Kind == Class.
type Type struct {
	Kind      TypeKind
	ClassName string
}

func (t Type) String() string {
	if t.Kind == Class {
		return t.ClassName
	}
	return string(t.Kind)
}

// Equal reports whether two Types name the same static type.
func (t Type) Equal(other Type) bool {
	return t.Kind == other.Kind && (t.Kind != Class || t.ClassName == other.ClassName)
}

// Field is a class-level variable declaration (VAR inside a CLASSE). For a
// method-local variable (also represented by Field, see Method.Locals),
// OwningClass is left empty; codegen never needs a data label for locals.
type Field struct {
	ID          NodeID
	Name        string
	Type        Type
	OwningClass string
}

// Param is a single method parameter, carrying its positional index so
// codegen can address it at a fixed offset without re-deriving it.
type Param struct {
	Name  string
	Type  Type
	Index int
}

// Method is a METODO: a typed, named procedure with parameters, locals and a
// body ending in a mandatory return expression.
type Method struct {
	ID         NodeID
	Name       string
	ReturnType Type
	Params     *orderedmap.OrderedMap[string, *Param]
	Locals     *orderedmap.OrderedMap[string, *Field]
	Body       []Statement
	Return     Expression
	// OwningClass is filled in by the parser and never changes; it names the
	// class whose CLASSE block textually declared this method (not the class
	// that may have inherited it via flattening).
	OwningClass string
}

func NewMethod(name string) *Method {
	return &Method{
		ID:     NewNodeID(),
		Name:   name,
		Params: orderedmap.New[string, *Param](),
		Locals: orderedmap.New[string, *Field](),
	}
}

// Class is a CLASSE: a name, an optional single parent, and ordered field
// and method tables. After semantic analysis's inheritance-flattening pass,
// Fields and Methods additionally hold copies of every ancestor member not
// already shadowed by one declared directly in this class.
type Class struct {
	ID      NodeID
	Name    string
	Parent  string // "" if this class does not extend anything
	Fields  *orderedmap.OrderedMap[string, *Field]
	Methods *orderedmap.OrderedMap[string, *Method]
	// Ancestors is filled in by semantic analysis: the transitive list of
	// parent classes, nearest first.
	Ancestors []string
}

func NewClass(name string) *Class {
	return &Class{
		ID:      NewNodeID(),
		Name:    name,
		Fields:  orderedmap.New[string, *Field](),
		Methods: orderedmap.New[string, *Method](),
	}
}

// MainClass is the single mandatory entry-point class (MAIN grammar rule).
type MainClass struct {
	ID      NodeID
	Name    string
	ArgName string // the "String[] a" parameter identifier, unused at codegen time
	Body    []Statement
}

// Program is the PROG root: the main class plus zero or more user classes.
// Classes preserves declaration order until semantic analysis reorders it
// topologically (parents before children); Main is not part of this slice,
// and the code generator always emits main's body first in .text.
type Program struct {
	Main    *MainClass
	Classes []*Class
}

// ClassByName looks up a declared class by name, or returns (nil, false).
func (p *Program) ClassByName(name string) (*Class, bool) {
	for _, c := range p.Classes {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}
