package semantic

import (
	"fmt"

	"minij.dev/compiler/pkg/ast"
)

// nullKind (wrapped as typeNull) is the sentinel static type of the "null" literal: it is
// assignable to any Class or IntArray type (both are heap references in
// this language) but to neither Int nor Boolean.
const nullKind ast.TypeKind = "null"

var typeNull = ast.Type{Kind: nullKind}

// assignable reports whether a value of type from can be used where a value
// of type to is expected.
func assignable(from, to ast.Type) bool {
	if from.Kind == nullKind {
		return to.Kind == ast.Class || to.Kind == ast.IntArray
	}
	return from.Equal(to)
}

// typeOf infers the static type of expr, resolving identifiers through
// scopes and method calls through classIndex. enclosingClass names the
// class whose method body expr appears in ("" inside main, where "this" and
// field access are not meaningful).
func (a *Analyzer) typeOf(expr ast.Expression, scopes *ScopeTable, enclosingClass string) (ast.Type, error) {
	switch e := expr.(type) {
	case *ast.IntLiteral:
		return ast.Type{Kind: ast.Int}, nil
	case *ast.BoolLiteral:
		return ast.Type{Kind: ast.Boolean}, nil
	case *ast.NullLiteral:
		return typeNull, nil
	case *ast.ThisExpr:
		if enclosingClass == "" {
			return ast.Type{}, fmt.Errorf("'this' used outside of a method body")
		}
		return ast.Type{Kind: ast.Class, ClassName: enclosingClass}, nil
	case *ast.VarExpr:
		sym, err := scopes.Resolve(e.Name)
		if err != nil {
			return ast.Type{}, err
		}
		return sym.Type, nil
	case *ast.NotExpr, *ast.AndExpr, *ast.RelExpr:
		return ast.Type{Kind: ast.Boolean}, nil
	case *ast.NegExpr, *ast.ArithExpr, *ast.MulExpr:
		return ast.Type{Kind: ast.Int}, nil
	case *ast.NewObjectExpr:
		if _, ok := a.classIndex[e.ClassName]; !ok {
			return ast.Type{}, fmt.Errorf("new %s(): undeclared class", e.ClassName)
		}
		return ast.Type{Kind: ast.Class, ClassName: e.ClassName}, nil
	case *ast.NewArrayExpr:
		return ast.Type{Kind: ast.IntArray}, nil
	case *ast.IndexExpr:
		return ast.Type{Kind: ast.Int}, nil
	case *ast.ArrayLengthExpr:
		return ast.Type{Kind: ast.Int}, nil
	case *ast.FieldAccessExpr:
		recvType, err := a.typeOf(e.Receiver, scopes, enclosingClass)
		if err != nil {
			return ast.Type{}, err
		}
		if recvType.Kind != ast.Class {
			return ast.Type{}, fmt.Errorf("field access %q on non-class type %s", e.Field, recvType)
		}
		recvClass := a.classIndex[recvType.ClassName]
		field, ok := recvClass.Fields.Get(e.Field)
		if !ok {
			return ast.Type{}, fmt.Errorf("class %s has no field %q", recvType.ClassName, e.Field)
		}
		return field.Type, nil
	case *ast.MethodCallExpr:
		method, _, err := a.resolveMethodCall(e, scopes, enclosingClass)
		if err != nil {
			return ast.Type{}, err
		}
		return method.ReturnType, nil
	default:
		return ast.Type{}, fmt.Errorf("typeOf: unhandled expression %T", expr)
	}
}

// resolveReceiverClass determines the static class of a method call's
// receiver, per the three forms named by this stage: "this" (enclosing
// class), "new C()" (C), and a bare identifier (its declared type). Any
// other receiver shape is resolved generically through typeOf.
func (a *Analyzer) resolveReceiverClass(recv ast.Expression, scopes *ScopeTable, enclosingClass string) (string, error) {
	switch r := recv.(type) {
	case *ast.ThisExpr:
		if enclosingClass == "" {
			return "", fmt.Errorf("'this' used outside of a method body")
		}
		return enclosingClass, nil
	case *ast.NewObjectExpr:
		return r.ClassName, nil
	case *ast.VarExpr:
		sym, err := scopes.Resolve(r.Name)
		if err != nil {
			return "", err
		}
		if sym.Type.Kind != ast.Class {
			return "", fmt.Errorf("%q has type %s, not a class type", r.Name, sym.Type)
		}
		return sym.Type.ClassName, nil
	default:
		t, err := a.typeOf(recv, scopes, enclosingClass)
		if err != nil {
			return "", err
		}
		if t.Kind != ast.Class {
			return "", fmt.Errorf("method call receiver has type %s, not a class type", t)
		}
		return t.ClassName, nil
	}
}

// resolveMethodCall resolves the declaring method of a call expression and
// validates its argument count and types.
func (a *Analyzer) resolveMethodCall(call *ast.MethodCallExpr, scopes *ScopeTable, enclosingClass string) (*ast.Method, string, error) {
	className, err := a.resolveReceiverClass(call.Receiver, scopes, enclosingClass)
	if err != nil {
		return nil, "", err
	}
	class, ok := a.classIndex[className]
	if !ok {
		return nil, "", fmt.Errorf("undeclared class %q", className)
	}
	// Inheritance flattening already copied ancestor methods not shadowed by
	// the child into class.Methods, so a single lookup climbs the chain.
	method, ok := class.Methods.Get(call.Method)
	if !ok {
		return nil, "", fmt.Errorf("class %s (or its ancestors) has no method %q", className, call.Method)
	}
	if method.Params.Len() != len(call.Args) {
		return nil, "", fmt.Errorf("%s.%s expects %d argument(s), got %d", className, call.Method, method.Params.Len(), len(call.Args))
	}

	i := 0
	for pair := method.Params.Oldest(); pair != nil; pair = pair.Next() {
		argType, err := a.typeOf(call.Args[i], scopes, enclosingClass)
		if err != nil {
			return nil, "", err
		}
		if !assignable(argType, pair.Value.Type) {
			return nil, "", fmt.Errorf("%s.%s argument %d: expected %s, got %s", className, call.Method, i+1, pair.Value.Type, argType)
		}
		i++
	}
	return method, className, nil
}
