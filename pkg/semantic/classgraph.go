package semantic

import (
	"fmt"

	"minij.dev/compiler/pkg/ast"
)

// CycleError reports an inheritance cycle discovered during topological
// sort; Chain lists the classes visited from the point the cycle closed.
type CycleError struct{ Chain []string }

func (e *CycleError) Error() string {
	return fmt.Sprintf("cyclic inheritance detected: %v", e.Chain)
}

// buildClassGraph builds a name-indexed view of prog's classes and validates
// every "extends" edge names a declared class.
func buildClassGraph(prog *ast.Program) (map[string]*ast.Class, error) {
	index := make(map[string]*ast.Class, len(prog.Classes))
	for _, c := range prog.Classes {
		index[c.Name] = c
	}
	for _, c := range prog.Classes {
		if c.Parent != "" {
			if _, ok := index[c.Parent]; !ok {
				return nil, fmt.Errorf("class %q extends undeclared class %q", c.Name, c.Parent)
			}
		}
	}
	return index, nil
}

// topoSortClasses reorders prog.Classes in place so every class appears
// after its parent (depth-first postorder over the inheritance DAG), and
// fails if a cycle exists. MainClass is never part of this slice, so it is
// trivially "last" per the topological-order invariant.
func topoSortClasses(prog *ast.Program, index map[string]*ast.Class) error {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(prog.Classes))
	ordered := make([]*ast.Class, 0, len(prog.Classes))

	var visit func(name string, chain []string) error
	visit = func(name string, chain []string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			return &CycleError{Chain: append(chain, name)}
		}
		state[name] = visiting
		chain = append(chain, name)

		class := index[name]
		if class.Parent != "" {
			if err := visit(class.Parent, chain); err != nil {
				return err
			}
		}
		state[name] = done
		ordered = append(ordered, class)
		return nil
	}

	for _, c := range prog.Classes {
		if err := visit(c.Name, nil); err != nil {
			return err
		}
	}
	prog.Classes = ordered
	return nil
}
