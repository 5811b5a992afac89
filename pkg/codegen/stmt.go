package codegen

import "minij.dev/compiler/pkg/ast"

func (g *Generator) genStmt(stmt ast.Statement, fr *frame, class string) {
	switch s := stmt.(type) {
	case *ast.BlockStmt:
		for _, inner := range s.Body {
			g.genStmt(inner, fr, class)
		}

	case *ast.IfStmt:
		g.genIf(s, fr, class)

	case *ast.WhileStmt:
		g.genWhile(s, fr, class)

	case *ast.PrintStmt:
		g.genExpr(s.Expr, fr, class)
		g.emit("move " + regA0 + ", " + regAcc)
		g.emitf("li %s, 1", regV0)
		g.emit("syscall")
		g.emitf("li %s, 4", regV0)
		g.emitf("la %s, newline", regA0)
		g.emit("syscall")

	case *ast.AssignStmt:
		g.genExpr(s.Value, fr, class)
		g.store(s.Name, fr)

	case *ast.ArrayAssignStmt:
		g.genArrayStore(s, fr, class)

	default:
		g.errorMarker("unhandled statement %T", stmt)
	}
}

// genIf lowers both the single-branch and two-branch forms, using fresh,
// monotonically increasing label suffixes.
func (g *Generator) genIf(s *ast.IfStmt, fr *frame, class string) {
	g.genExpr(s.Cond, fr, class)

	if s.Else == nil {
		endLabel := g.newLabel("end_if")
		g.emitf("beqz %s, %s", regAcc, endLabel)
		g.genStmt(s.Then, fr, class)
		g.emitf("%s:", endLabel)
		return
	}

	falseLabel := g.newLabel("false_branch")
	endLabel := g.newLabel("end_if")
	g.emitf("beqz %s, %s", regAcc, falseLabel)
	g.genStmt(s.Then, fr, class)
	g.emitf("b %s", endLabel)
	g.emitf("%s:", falseLabel)
	g.genStmt(s.Else, fr, class)
	g.emitf("%s:", endLabel)
}

func (g *Generator) genWhile(s *ast.WhileStmt, fr *frame, class string) {
	startLabel := g.newLabel("while")
	endLabel := g.newLabel("end_while")

	g.emitf("%s:", startLabel)
	g.genExpr(s.Cond, fr, class)
	g.emitf("beqz %s, %s", regAcc, endLabel)
	g.genStmt(s.Body, fr, class)
	g.emitf("b %s", startLabel)
	g.emitf("%s:", endLabel)
}

// store writes the accumulator to the slot named, whether that is a
// parameter/local stack slot, an array variable's dedicated base register,
// or a field's data label.
func (g *Generator) store(name string, fr *frame) {
	if reg, ok := fr.arrayReg[name]; ok {
		g.emit("move " + reg + ", " + regAcc)
		return
	}
	offset, isStack, fieldClass, isField := fr.resolve(name)
	switch {
	case isStack:
		g.emitf("sw %s, %d(%s)", regAcc, offset, regFP)
	case isField:
		g.emitf("sw %s, %s(%s)", regAcc, fieldLabel(fieldClass, name), regZero)
	default:
		g.errorMarker("variable %q not in scope", name)
	}
}

// genArrayStore computes the element address (4*index + 4, added to the
// array's base register, since word 0 holds the array's length) and writes
// the right-hand side there.
func (g *Generator) genArrayStore(s *ast.ArrayAssignStmt, fr *frame, class string) {
	base, ok := fr.arrayReg[s.Name]
	if !ok {
		g.errorMarker("array variable %q not in scope", s.Name)
		return
	}

	g.genExpr(s.Index, fr, class)
	g.emitf("sll %s, %s, 2", regAcc, regAcc)
	g.emitf("addi %s, %s, 4", regAcc, regAcc)
	g.emit("add " + regAcc + ", " + regAcc + ", " + base)
	g.push(regAcc) // save the element address across evaluating the RHS

	g.genExpr(s.Value, fr, class)
	g.pop(regScratch)
	g.emitf("sw %s, 0(%s)", regAcc, regScratch)
}
