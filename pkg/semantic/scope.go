package semantic

import (
	"fmt"

	"minij.dev/compiler/pkg/ast"
	"minij.dev/compiler/pkg/utils"
)

// Stack is pkg/utils.Stack[T], reused as-is:
// Push appends, Iterator walks top-to-bottom so the most recently pushed
// entry is seen first. "Child wins" shadowing between a class and its
// ancestors does not come from this walk: flattenInheritance never copies
// an ancestor member whose name the child already declares, so the field
// scope holds one entry per name.
type Stack[T any] = utils.Stack[T]

// SymbolKind classifies how a name was declared.
type SymbolKind string

const (
	KindField SymbolKind = "field"
	KindLocal SymbolKind = "local"
	KindParam SymbolKind = "param"
)

// Symbol is the resolved record for one declared name, per the Symbols data
// model: name, declared type, kind, owning scope, and (for parameters) their
// positional index.
type Symbol struct {
	Name        string
	Type        ast.Type
	Kind        SymbolKind
	OwningClass string
	ParamIndex  int
}

// ScopeTable tracks the local, parameter and field scopes live while walking
// a single method body, adapted from pkg/jack/scopes.go. Static
// scope is omitted: MiniJava has no static fields.
type ScopeTable struct {
	local     Stack[Symbol]
	parameter Stack[Symbol]
	field     Stack[Symbol]
}

// NewScopeTable returns an empty table, ready for PushMethodScope.
func NewScopeTable() *ScopeTable { return &ScopeTable{} }

// PushFieldScope loads a class's flattened field set as the current field
// scope, replacing whatever was there before (class bodies never nest).
func (st *ScopeTable) PushFieldScope(class *ast.Class) {
	st.field = Stack[Symbol]{}
	for pair := class.Fields.Oldest(); pair != nil; pair = pair.Next() {
		st.field.Push(Symbol{Name: pair.Value.Name, Type: pair.Value.Type, Kind: KindField, OwningClass: pair.Value.OwningClass})
	}
}

// PushMethodScope loads a method's parameters and locals as the current
// local/parameter scopes, replacing whatever was there before (methods never
// nest either).
func (st *ScopeTable) PushMethodScope(method *ast.Method) {
	st.local, st.parameter = Stack[Symbol]{}, Stack[Symbol]{}
	for pair := method.Params.Oldest(); pair != nil; pair = pair.Next() {
		st.parameter.Push(Symbol{
			Name: pair.Value.Name, Type: pair.Value.Type, Kind: KindParam,
			OwningClass: method.OwningClass, ParamIndex: pair.Value.Index,
		})
	}
	for pair := method.Locals.Oldest(); pair != nil; pair = pair.Next() {
		st.local.Push(Symbol{Name: pair.Value.Name, Type: pair.Value.Type, Kind: KindLocal, OwningClass: method.OwningClass})
	}
}

// Resolve searches local, then parameter, then field scope (each scanned
// most-recently-pushed first) and returns the first match.
func (st *ScopeTable) Resolve(name string) (Symbol, error) {
	scopes := []*Stack[Symbol]{&st.local, &st.parameter, &st.field}
	for _, scope := range scopes {
		for sym := range scope.Iterator() {
			if sym.Name == name {
				return sym, nil
			}
		}
	}
	return Symbol{}, fmt.Errorf("identifier %q used before declaration", name)
}
