package codegen

import "minij.dev/compiler/pkg/ast"

// frame describes one method activation: where each parameter and local
// lives relative to $fp, and which dedicated register (if any) holds an
// array-typed variable's base pointer for the method's whole lifetime.
//
// Per the calling convention: parameters sit at positive offsets starting
// at 4($fp) (the caller pushes arguments right to left, so the first
// parameter is pushed last, at the lowest address, and ends up nearest
// $fp; 0($fp) is the word the caller reserves for the saved $fp); locals
// sit at negative offsets starting below the 12-byte saved-context block
// reserved at entry.
type frame struct {
	paramOffset map[string]int
	localOffset map[string]int
	arrayReg    map[string]string
	class       *ast.Class // nil inside main
}

func (g *Generator) buildFrame(class *ast.Class, method *ast.Method) *frame {
	fr := &frame{
		paramOffset: map[string]int{},
		localOffset: map[string]int{},
		arrayReg:    map[string]string{},
		class:       class,
	}

	for pair := method.Params.Oldest(); pair != nil; pair = pair.Next() {
		p := pair.Value
		fr.paramOffset[p.Name] = (p.Index + 1) * 4
		if p.Type.Kind == ast.IntArray {
			fr.arrayReg[p.Name] = g.nextArrayRegister()
		}
	}

	offset := -12
	for pair := method.Locals.Oldest(); pair != nil; pair = pair.Next() {
		l := pair.Value
		fr.localOffset[l.Name] = offset
		offset -= 4
		if l.Type.Kind == ast.IntArray {
			fr.arrayReg[l.Name] = g.nextArrayRegister()
		}
	}

	return fr
}

// reservedBytes is the total stack space the prologue claims up front: the
// fixed 12-byte saved-context block plus 4 bytes per declared local.
func (fr *frame) reservedBytes(method *ast.Method) int {
	return 12 + 4*method.Locals.Len()
}

// resolve looks up how to address a bare identifier: a parameter or local
// slot at fp+offset, or (if neither) a field, read through its data label.
// isParamOrLocal and isField are both false if name is in none of these,
// which the caller turns into a non-fatal codegen diagnostic rather than a
// hard abort.
func (fr *frame) resolve(name string) (offset int, isParamOrLocal bool, fieldClass string, isField bool) {
	if off, ok := fr.paramOffset[name]; ok {
		return off, true, "", false
	}
	if off, ok := fr.localOffset[name]; ok {
		return off, true, "", false
	}
	if fr.class != nil {
		if field, ok := fr.class.Fields.Get(name); ok {
			return 0, false, field.OwningClass, true
		}
	}
	return 0, false, "", false
}
