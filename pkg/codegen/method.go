package codegen

import "minij.dev/compiler/pkg/ast"

// genMain emits main's body. It uses the same prologue as any method, but
// always ends with the exit syscall (10) instead of a return.
func (g *Generator) genMain(main *ast.MainClass) {
	g.emit("main:")
	g.emit("sw " + regFP + ", 0(" + regSP + ")")
	g.emit("move " + regFP + ", " + regSP)
	g.emit("sw " + regRA + ", -4(" + regFP + ")")
	g.emitf("addi %s, %s, -12", regSP, regSP)

	fr := &frame{paramOffset: map[string]int{}, localOffset: map[string]int{}, arrayReg: map[string]string{}}
	for _, stmt := range main.Body {
		g.genStmt(stmt, fr, "")
	}

	g.emitf("li %s, 10", regV0)
	g.emit("syscall")
	g.emit("")
}

// genMethod emits one method's complete body: prologue, locals reservation,
// statements, return-expression evaluation, epilogue.
func (g *Generator) genMethod(class *ast.Class, method *ast.Method) {
	g.emitf("%s:", methodLabel(class.Name, method.Name))
	g.emit("sw " + regFP + ", 0(" + regSP + ")")
	g.emit("move " + regFP + ", " + regSP)
	g.emit("sw " + regRA + ", -4(" + regFP + ")")

	fr := g.buildFrame(class, method)
	g.emitf("addi %s, %s, -%d", regSP, regSP, fr.reservedBytes(method))

	// An array-typed parameter arrives on the stack; copy it into its
	// dedicated register, where every later read and write of it looks.
	for pair := method.Params.Oldest(); pair != nil; pair = pair.Next() {
		if reg, ok := fr.arrayReg[pair.Key]; ok {
			g.emitf("lw %s, %d(%s)", reg, fr.paramOffset[pair.Key], regFP)
		}
	}

	for _, stmt := range method.Body {
		g.genStmt(stmt, fr, class.Name)
	}

	g.genExpr(method.Return, fr, class.Name)
	if regAcc != regV0 {
		g.emit("move " + regV0 + ", " + regAcc)
	}
	g.emit("lw " + regRA + ", -4(" + regFP + ")")
	g.emit("move " + regSP + ", " + regFP)
	g.emit("lw " + regFP + ", 0(" + regFP + ")")
	g.emit("jr " + regRA)
	g.emit("")
}
