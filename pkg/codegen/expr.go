package codegen

import "minij.dev/compiler/pkg/ast"

// push/pop implement the spill slot used while evaluating a binary
// operator's left operand, exactly as described for this stage: push, then
// evaluate the right side into the accumulator, then pop the left operand
// back into a scratch register.
func (g *Generator) push(reg string) {
	g.emitf("addi %s, %s, -4", regSP, regSP)
	g.emitf("sw %s, 0(%s)", reg, regSP)
}

func (g *Generator) pop(reg string) {
	g.emitf("lw %s, 0(%s)", reg, regSP)
	g.emitf("addi %s, %s, 4", regSP, regSP)
}

// genExpr lowers expr, leaving its value in regAcc.
func (g *Generator) genExpr(expr ast.Expression, fr *frame, class string) {
	switch e := expr.(type) {
	case *ast.IntLiteral:
		g.emitf("li %s, %d", regAcc, e.Value)

	case *ast.BoolLiteral:
		if e.Value {
			g.emitf("li %s, 1", regAcc)
		} else {
			g.emitf("li %s, 0", regAcc)
		}

	case *ast.NullLiteral:
		g.emitf("li %s, 0", regAcc) // null materializes as zero

	case *ast.ThisExpr:
		g.emitf("li %s, 1", regAcc) // a non-null placeholder handle; dispatch is resolved statically, not through it

	case *ast.VarExpr:
		g.load(e.Name, fr)

	case *ast.NotExpr:
		g.genExpr(e.Expr, fr, class)
		g.emitf("seq %s, %s, %s", regAcc, regAcc, regZero)

	case *ast.NegExpr:
		g.genExpr(e.Expr, fr, class)
		g.emit("sub " + regAcc + ", " + regZero + ", " + regAcc)

	case *ast.AndExpr:
		g.genBinary(e.Lhs, e.Rhs, fr, class, "and")
	case *ast.RelExpr:
		g.genBinary(e.Lhs, e.Rhs, fr, class, relMnemonic(e.Op))
	case *ast.ArithExpr:
		g.genBinary(e.Lhs, e.Rhs, fr, class, arithMnemonic(e.Op))
	case *ast.MulExpr:
		g.genBinary(e.Lhs, e.Rhs, fr, class, "mul")

	case *ast.NewObjectExpr:
		// Fields are global per-class slots rather than per-instance state, so
		// construction needs no heap allocation: just a non-null handle, exactly
		// like "this".
		g.emitf("li %s, 1", regAcc)

	case *ast.NewArrayExpr:
		g.genNewArray(e, fr, class)

	case *ast.IndexExpr:
		g.genIndexLoad(e, fr, class)

	case *ast.ArrayLengthExpr:
		g.genArrayLength(e, fr, class)

	case *ast.FieldAccessExpr:
		g.genFieldAccess(e, fr, class)

	case *ast.MethodCallExpr:
		g.genMethodCall(e, fr, class)

	default:
		g.errorMarker("unhandled expression %T", expr)
	}
}

func relMnemonic(op ast.BinOp) string {
	switch op {
	case ast.OpLt:
		return "slt"
	case ast.OpEq:
		return "seq"
	default:
		return "sne"
	}
}

func arithMnemonic(op ast.BinOp) string {
	if op == ast.OpAdd {
		return "add"
	}
	return "sub"
}

// genBinary implements the evaluation order described for this stage:
// evaluate the left operand, push it, evaluate the right operand into the
// accumulator, pop the left operand into the scratch register, emit
// "op acc, scratch, acc" (left, then right).
func (g *Generator) genBinary(lhs, rhs ast.Expression, fr *frame, class, mnemonic string) {
	g.genExpr(lhs, fr, class)
	g.push(regAcc)
	g.genExpr(rhs, fr, class)
	g.pop(regScratch)
	g.emitf("%s %s, %s, %s", mnemonic, regAcc, regScratch, regAcc)
}

func (g *Generator) load(name string, fr *frame) {
	if reg, ok := fr.arrayReg[name]; ok {
		g.emit("move " + regAcc + ", " + reg)
		return
	}
	offset, isStack, fieldClass, isField := fr.resolve(name)
	switch {
	case isStack:
		g.emitf("lw %s, %d(%s)", regAcc, offset, regFP)
	case isField:
		g.emitf("lw %s, %s(%s)", regAcc, fieldLabel(fieldClass, name), regZero)
	default:
		g.errorMarker("variable %q not in scope", name)
	}
}

// genNewArray allocates n+1 words (length word plus n elements), stores the
// length at offset 0, and leaves the base pointer in the accumulator.
func (g *Generator) genNewArray(e *ast.NewArrayExpr, fr *frame, class string) {
	g.genExpr(e.Size, fr, class)
	g.push(regAcc) // keep n across the syscall
	g.emitf("sll %s, %s, 2", regAcc, regAcc)
	g.emitf("addi %s, %s, 4", regAcc, regAcc) // byte size = n*4 + 4
	g.emit("move " + regA0 + ", " + regAcc)
	g.emitf("li %s, 9", regV0)
	g.emit("syscall") // $v0 now holds the base pointer
	g.pop(regScratch)
	g.emitf("sw %s, 0(%s)", regScratch, regV0)
	if regAcc != regV0 {
		g.emit("move " + regAcc + ", " + regV0)
	}
}

func (g *Generator) genIndexLoad(e *ast.IndexExpr, fr *frame, class string) {
	g.genArrayElementAddress(e.Array, e.Index, fr, class)
	g.emitf("lw %s, 0(%s)", regAcc, regAcc)
}

// genArrayElementAddress leaves the address of array[index] in the
// accumulator: base + 4*index + 4 (word 0 is the length).
func (g *Generator) genArrayElementAddress(arrayExpr, indexExpr ast.Expression, fr *frame, class string) {
	g.genExpr(indexExpr, fr, class)
	g.emitf("sll %s, %s, 2", regAcc, regAcc)
	g.emitf("addi %s, %s, 4", regAcc, regAcc)
	g.push(regAcc)
	g.genExpr(arrayExpr, fr, class)
	g.pop(regScratch)
	g.emit("add " + regAcc + ", " + regAcc + ", " + regScratch)
}

func (g *Generator) genArrayLength(e *ast.ArrayLengthExpr, fr *frame, class string) {
	g.genExpr(e.Array, fr, class)
	g.emitf("lw %s, 0(%s)", regAcc, regAcc)
}

// genFieldAccess reads a.field's global data slot. The receiver expression
// is still evaluated for its side effects (e.g. a method call), but its
// value is otherwise unused: fields are per-class, not per-instance (see
// genExpr's NewObjectExpr case).
func (g *Generator) genFieldAccess(e *ast.FieldAccessExpr, fr *frame, class string) {
	g.genExpr(e.Receiver, fr, class)
	recvClass := staticReceiverClass(e.Receiver, class)
	if recvClass == "" {
		g.errorMarker("cannot resolve static type of field access receiver for %q", e.Field)
		return
	}
	owner := fieldOwner(g.classIndex[recvClass], e.Field)
	if owner == "" {
		g.errorMarker("class %s has no field %q", recvClass, e.Field)
		return
	}
	g.emitf("lw %s, %s(%s)", regAcc, fieldLabel(owner, e.Field), regZero)
}

func fieldOwner(class *ast.Class, field string) string {
	if class == nil {
		return ""
	}
	if f, ok := class.Fields.Get(field); ok {
		return f.OwningClass
	}
	return ""
}

// staticReceiverClass resolves the receiver-class forms this stage commits
// to: "this" and "new C()". Any other receiver shape (e.g. a variable) has
// already had its declared type recorded by the semantic analyzer, which
// codegen does not re-derive; callers needing that case route through a
// variable's declared type at the AST level instead.
func staticReceiverClass(recv ast.Expression, enclosing string) string {
	switch r := recv.(type) {
	case *ast.ThisExpr:
		return enclosing
	case *ast.NewObjectExpr:
		return r.ClassName
	default:
		return ""
	}
}

// genMethodCall emits the calling sequence described for this stage: save
// caller context, push arguments right-to-left, reserve one more word for
// the callee's saved $fp (so the first argument ends up at 4($fp)), jal, pop
// that word and the arguments, move the result into the accumulator.
func (g *Generator) genMethodCall(e *ast.MethodCallExpr, fr *frame, class string) {
	targetClass, method := g.resolveDispatch(e, fr, class)
	if method == nil {
		g.errorMarker("cannot resolve method %q", e.Method)
		return
	}

	g.genExpr(e.Receiver, fr, class) // evaluated for side effects; dispatch is static
	g.push(regRA)
	g.push(regFP)

	for i := len(e.Args) - 1; i >= 0; i-- {
		g.genExpr(e.Args[i], fr, class)
		g.push(regAcc)
	}
	g.emitf("addi %s, %s, -4", regSP, regSP) // slot the callee's prologue saves $fp into

	g.emitf("jal %s", methodLabel(targetClass, method.Name))

	g.emitf("addi %s, %s, 4", regSP, regSP)
	for range e.Args {
		g.emitf("addi %s, %s, 4", regSP, regSP)
	}
	g.pop(regFP)
	g.pop(regRA)
	if regAcc != regV0 {
		g.emit("move " + regAcc + ", " + regV0)
	}
}

// resolveDispatch determines the receiver's static class and looks up the
// method, climbing the inheritance chain via the already-flattened method
// table, then reports the class that textually declares it (method.OwningClass),
// matching scenario 5's "resolution climbs to the declaring class".
func (g *Generator) resolveDispatch(e *ast.MethodCallExpr, fr *frame, enclosing string) (string, *ast.Method) {
	className := staticReceiverClass(e.Receiver, enclosing)
	if className == "" {
		if v, ok := e.Receiver.(*ast.VarExpr); ok {
			className = g.declaredClassOf(v.Name, fr)
		}
	}
	class, ok := g.classIndex[className]
	if !ok {
		return "", nil
	}
	method, ok := class.Methods.Get(e.Method)
	if !ok {
		return "", nil
	}
	return method.OwningClass, method
}

// declaredClassOf looks up a field's declared class type directly off the
// frame's owning class, without re-running semantic analysis. Parameters and
// locals are not looked up: for them it returns "", so a call through a
// class-typed parameter or local does not resolve and is reported as a
// codegen diagnostic.
func (g *Generator) declaredClassOf(name string, fr *frame) string {
	if fr.class != nil {
		if field, ok := fr.class.Fields.Get(name); ok && field.Type.Kind == ast.Class {
			return field.Type.ClassName
		}
	}
	return ""
}
