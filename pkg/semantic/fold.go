package semantic

import (
	"fmt"

	"minij.dev/compiler/pkg/ast"
)

// processExpr performs, bottom-up, three of the analyzer's passes over a
// single expression in one traversal: use-before-declaration checking
// (every VarExpr must resolve in scopes), method-call validation (every
// MethodCallExpr must resolve to a declared method with matching arity and
// argument types), and constant folding (an arithmetic, relational or
// logical node whose operands are already literals is replaced by a single
// literal node). Folding runs last at each level so a node's own operands
// are already maximally folded by the time it considers folding itself.
func (a *Analyzer) processExpr(expr ast.Expression, scopes *ScopeTable, enclosingClass string) (ast.Expression, error) {
	switch e := expr.(type) {
	case *ast.IntLiteral, *ast.BoolLiteral, *ast.NullLiteral, *ast.ThisExpr:
		return expr, nil

	case *ast.VarExpr:
		if _, err := scopes.Resolve(e.Name); err != nil {
			return nil, err
		}
		return expr, nil

	case *ast.NotExpr:
		inner, err := a.processExpr(e.Expr, scopes, enclosingClass)
		if err != nil {
			return nil, err
		}
		e.Expr = inner
		if lit, ok := inner.(*ast.BoolLiteral); ok {
			return ast.NewBoolLiteral(!lit.Value), nil
		}
		return e, nil

	case *ast.NegExpr:
		inner, err := a.processExpr(e.Expr, scopes, enclosingClass)
		if err != nil {
			return nil, err
		}
		e.Expr = inner
		if lit, ok := inner.(*ast.IntLiteral); ok {
			return ast.NewIntLiteral(-lit.Value), nil
		}
		return e, nil

	case *ast.AndExpr:
		lhs, rhs, err := a.processBinary(e.Lhs, e.Rhs, scopes, enclosingClass)
		if err != nil {
			return nil, err
		}
		e.Lhs, e.Rhs = lhs, rhs
		if l, ok := lhs.(*ast.BoolLiteral); ok {
			if r, ok := rhs.(*ast.BoolLiteral); ok {
				return ast.NewBoolLiteral(l.Value && r.Value), nil
			}
		}
		return e, nil

	case *ast.RelExpr:
		lhs, rhs, err := a.processBinary(e.Lhs, e.Rhs, scopes, enclosingClass)
		if err != nil {
			return nil, err
		}
		e.Lhs, e.Rhs = lhs, rhs
		if folded, ok := foldRel(e.Op, lhs, rhs); ok {
			return folded, nil
		}
		return e, nil

	case *ast.ArithExpr:
		lhs, rhs, err := a.processBinary(e.Lhs, e.Rhs, scopes, enclosingClass)
		if err != nil {
			return nil, err
		}
		e.Lhs, e.Rhs = lhs, rhs
		if l, ok := lhs.(*ast.IntLiteral); ok {
			if r, ok := rhs.(*ast.IntLiteral); ok {
				if e.Op == ast.OpAdd {
					return ast.NewIntLiteral(l.Value + r.Value), nil
				}
				return ast.NewIntLiteral(l.Value - r.Value), nil
			}
		}
		return e, nil

	case *ast.MulExpr:
		lhs, rhs, err := a.processBinary(e.Lhs, e.Rhs, scopes, enclosingClass)
		if err != nil {
			return nil, err
		}
		e.Lhs, e.Rhs = lhs, rhs
		if l, ok := lhs.(*ast.IntLiteral); ok {
			if r, ok := rhs.(*ast.IntLiteral); ok {
				return ast.NewIntLiteral(l.Value * r.Value), nil
			}
		}
		return e, nil

	case *ast.NewObjectExpr:
		if _, ok := a.classIndex[e.ClassName]; !ok {
			return nil, fmt.Errorf("new %s(): undeclared class", e.ClassName)
		}
		return e, nil

	case *ast.NewArrayExpr:
		size, err := a.processExpr(e.Size, scopes, enclosingClass)
		if err != nil {
			return nil, err
		}
		e.Size = size
		return e, nil

	case *ast.IndexExpr:
		arr, err := a.processExpr(e.Array, scopes, enclosingClass)
		if err != nil {
			return nil, err
		}
		idx, err := a.processExpr(e.Index, scopes, enclosingClass)
		if err != nil {
			return nil, err
		}
		e.Array, e.Index = arr, idx
		return e, nil

	case *ast.ArrayLengthExpr:
		arr, err := a.processExpr(e.Array, scopes, enclosingClass)
		if err != nil {
			return nil, err
		}
		e.Array = arr
		return e, nil

	case *ast.FieldAccessExpr:
		recv, err := a.processExpr(e.Receiver, scopes, enclosingClass)
		if err != nil {
			return nil, err
		}
		e.Receiver = recv
		if _, err := a.typeOf(e, scopes, enclosingClass); err != nil {
			return nil, err
		}
		return e, nil

	case *ast.MethodCallExpr:
		recv, err := a.processExpr(e.Receiver, scopes, enclosingClass)
		if err != nil {
			return nil, err
		}
		e.Receiver = recv
		for i, arg := range e.Args {
			processed, err := a.processExpr(arg, scopes, enclosingClass)
			if err != nil {
				return nil, err
			}
			e.Args[i] = processed
		}
		if _, _, err := a.resolveMethodCall(e, scopes, enclosingClass); err != nil {
			return nil, err
		}
		return e, nil

	default:
		return nil, fmt.Errorf("constant folding: unhandled expression %T", expr)
	}
}

func (a *Analyzer) processBinary(lhs, rhs ast.Expression, scopes *ScopeTable, enclosingClass string) (ast.Expression, ast.Expression, error) {
	left, err := a.processExpr(lhs, scopes, enclosingClass)
	if err != nil {
		return nil, nil, err
	}
	right, err := a.processExpr(rhs, scopes, enclosingClass)
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

// foldRel folds a relational/equality comparison between two already-folded
// operands. "<" only applies to ints; "=="/"!=" apply bitwise to either two
// ints or two booleans, matching the signed/bitwise resolution for these
// operators.
func foldRel(op ast.BinOp, lhs, rhs ast.Expression) (ast.Expression, bool) {
	if li, lok := lhs.(*ast.IntLiteral); lok {
		if ri, rok := rhs.(*ast.IntLiteral); rok {
			switch op {
			case ast.OpLt:
				return ast.NewBoolLiteral(li.Value < ri.Value), true
			case ast.OpEq:
				return ast.NewBoolLiteral(li.Value == ri.Value), true
			case ast.OpNeq:
				return ast.NewBoolLiteral(li.Value != ri.Value), true
			}
		}
	}
	if lb, lok := lhs.(*ast.BoolLiteral); lok {
		if rb, rok := rhs.(*ast.BoolLiteral); rok {
			switch op {
			case ast.OpEq:
				return ast.NewBoolLiteral(lb.Value == rb.Value), true
			case ast.OpNeq:
				return ast.NewBoolLiteral(lb.Value != rb.Value), true
			}
		}
	}
	return nil, false
}
