package semantic

import "minij.dev/compiler/pkg/ast"

// flattenInheritance computes each class's transitive ancestor list and
// copies every ancestor field/method not already declared directly in the
// class into that class's own Fields/Methods tables, so every later pass can
// resolve a name by looking only at the class in hand.
//
// Classes must already be in topological order (parent before child) so
// that by the time a class is flattened, its parent's table already holds
// its own flattened copies — flattening composes instead of needing a
// second fixed-point pass.
func flattenInheritance(prog *ast.Program, index map[string]*ast.Class) {
	for _, class := range prog.Classes {
		if class.Parent == "" {
			continue
		}
		parent := index[class.Parent]

		class.Ancestors = append([]string{class.Parent}, parent.Ancestors...)

		for pair := parent.Fields.Oldest(); pair != nil; pair = pair.Next() {
			if _, exists := class.Fields.Get(pair.Key); !exists {
				class.Fields.Set(pair.Key, pair.Value)
			}
		}
		for pair := parent.Methods.Oldest(); pair != nil; pair = pair.Next() {
			if _, exists := class.Methods.Get(pair.Key); !exists {
				class.Methods.Set(pair.Key, pair.Value)
			}
		}
	}
}
