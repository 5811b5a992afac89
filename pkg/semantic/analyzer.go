// Package semantic implements the six-pass semantic analyzer: class-graph
// construction and topological sort, inheritance flattening, symbol
// collection, use-before-declaration checking, method-call validation, and
// bottom-up constant folding.
//
// The scope/shadowing machinery (ScopeTable, Stack[T]) is adapted from
// pkg/jack/scopes.go and pkg/utils/stack.go; the dispatch shape (one
// HandleX-style function per AST node kind) is adapted from
// pkg/jack/typechecking.go, which in the source repository is an
// intentional stub — every method there returns "not implemented yet".
package semantic

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"minij.dev/compiler/pkg/ast"
)

// Analyzer holds the state threaded through all six passes for a single
// compilation: a shared log, and the class index built by pass 1 and
// consulted by every later pass.
type Analyzer struct {
	log        *logrus.Entry
	classIndex map[string]*ast.Class
}

// New returns an Analyzer that logs under the "semantic" stage field.
func New(log *logrus.Entry) *Analyzer {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Analyzer{log: log.WithField("stage", "semantic")}
}

// Analyze runs all six passes over prog in place and returns it (or the
// first fatal error encountered).
func Analyze(prog *ast.Program, log *logrus.Entry) (*ast.Program, error) {
	return New(log).Analyze(prog)
}

func (a *Analyzer) Analyze(prog *ast.Program) (*ast.Program, error) {
	index, err := buildClassGraph(prog)
	if err != nil {
		return nil, fmt.Errorf("class-graph construction: %w", err)
	}
	a.classIndex = index

	if err := topoSortClasses(prog, index); err != nil {
		return nil, fmt.Errorf("class-graph construction: %w", err)
	}
	a.log.WithField("classes", len(prog.Classes)).Trace("topologically sorted class graph")

	flattenInheritance(prog, index)
	a.log.Trace("inheritance flattened")

	if err := a.analyzeMain(prog.Main); err != nil {
		return nil, fmt.Errorf("in main class %q: %w", prog.Main.Name, err)
	}
	for _, class := range prog.Classes {
		if err := a.analyzeClass(class); err != nil {
			return nil, fmt.Errorf("in class %q: %w", class.Name, err)
		}
	}

	a.log.Trace("symbol collection, use-before-declare, method-call validation and constant folding complete")
	return prog, nil
}

func (a *Analyzer) analyzeMain(main *ast.MainClass) error {
	scopes := NewScopeTable()
	for _, stmt := range main.Body {
		if err := a.processStmt(stmt, scopes, ""); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) analyzeClass(class *ast.Class) error {
	for pair := class.Methods.Oldest(); pair != nil; pair = pair.Next() {
		method := pair.Value
		// A method inherited unchanged from an ancestor was already analyzed
		// (and folded) when its declaring class was processed; re-running it
		// here under the child's scope view would be redundant and, for a
		// field shadowed differently in the child, wrong.
		if method.OwningClass != class.Name {
			continue
		}
		if err := a.analyzeMethod(class, method); err != nil {
			return fmt.Errorf("in method %q: %w", method.Name, err)
		}
	}
	return nil
}

func (a *Analyzer) analyzeMethod(class *ast.Class, method *ast.Method) error {
	scopes := NewScopeTable()
	scopes.PushFieldScope(class)
	scopes.PushMethodScope(method)

	for _, stmt := range method.Body {
		if err := a.processStmt(stmt, scopes, class.Name); err != nil {
			return err
		}
	}

	ret, err := a.processExpr(method.Return, scopes, class.Name)
	if err != nil {
		return err
	}
	retType, err := a.typeOf(ret, scopes, class.Name)
	if err != nil {
		return err
	}
	if !assignable(retType, method.ReturnType) {
		return fmt.Errorf("return value has type %s, method declares %s", retType, method.ReturnType)
	}
	method.Return = ret
	return nil
}
