package semantic

import (
	"fmt"

	"minij.dev/compiler/pkg/ast"
)

// processStmt walks a statement tree, recursing into nested statements and
// running processExpr (resolution + call validation + folding) over every
// expression it holds.
func (a *Analyzer) processStmt(stmt ast.Statement, scopes *ScopeTable, enclosingClass string) error {
	switch s := stmt.(type) {
	case *ast.BlockStmt:
		for _, inner := range s.Body {
			if err := a.processStmt(inner, scopes, enclosingClass); err != nil {
				return err
			}
		}
		return nil

	case *ast.IfStmt:
		cond, err := a.processExpr(s.Cond, scopes, enclosingClass)
		if err != nil {
			return err
		}
		s.Cond = cond
		if err := a.processStmt(s.Then, scopes, enclosingClass); err != nil {
			return err
		}
		if s.Else == nil {
			return nil
		}
		return a.processStmt(s.Else, scopes, enclosingClass)

	case *ast.WhileStmt:
		cond, err := a.processExpr(s.Cond, scopes, enclosingClass)
		if err != nil {
			return err
		}
		s.Cond = cond
		return a.processStmt(s.Body, scopes, enclosingClass)

	case *ast.PrintStmt:
		expr, err := a.processExpr(s.Expr, scopes, enclosingClass)
		if err != nil {
			return err
		}
		s.Expr = expr
		return nil

	case *ast.AssignStmt:
		target, err := scopes.Resolve(s.Name)
		if err != nil {
			return err
		}
		value, err := a.processExpr(s.Value, scopes, enclosingClass)
		if err != nil {
			return err
		}
		valueType, err := a.typeOf(value, scopes, enclosingClass)
		if err != nil {
			return err
		}
		if !assignable(valueType, target.Type) {
			return fmt.Errorf("cannot assign %s to %q of type %s", valueType, s.Name, target.Type)
		}
		s.Value = value
		return nil

	case *ast.ArrayAssignStmt:
		target, err := scopes.Resolve(s.Name)
		if err != nil {
			return err
		}
		if target.Type.Kind != ast.IntArray {
			return fmt.Errorf("%q has type %s, not an int array", s.Name, target.Type)
		}
		index, err := a.processExpr(s.Index, scopes, enclosingClass)
		if err != nil {
			return err
		}
		value, err := a.processExpr(s.Value, scopes, enclosingClass)
		if err != nil {
			return err
		}
		s.Index, s.Value = index, value
		return nil

	default:
		return fmt.Errorf("semantic analysis: unhandled statement %T", stmt)
	}
}
