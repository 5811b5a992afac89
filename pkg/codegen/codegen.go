// Package codegen lowers a validated, folded AST to MIPS-like assembly
// text: a .data section (global field slots plus the newline constant), a
// .text section with main first, and per-class method bodies under
// ClassName.methodName labels.
//
// The dispatch shape (one genX function per AST node kind, walked
// depth-first) is adapted from pkg/jack/lowering.go
// (Lowerer.HandleClass/HandleSubroutine/HandleStatement); the monotonically
// increasing label counter is the same idea as
// l.nRandomizer, here named labelSeq.
package codegen

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"minij.dev/compiler/pkg/ast"
	"minij.dev/compiler/pkg/diagnostics"
)

const (
	regAcc     = "$t0" // the accumulator: holds the most recently computed expression's value
	regScratch = "$t1" // holds a binary operator's left operand while the right is evaluated
	regZero    = "$zero"
	regSP      = "$sp"
	regFP      = "$fp"
	regRA      = "$ra"
	regV0      = "$v0"
	regA0      = "$a0"
)

// arrayRegisterPool is the fixed bank of callee-saved registers handed out,
// one per declared array variable, in declaration order, process-wide for
// the whole compilation (mirrors a single global nRandomizer:
// this is the code generator's other piece of global, process-wide state).
var arrayRegisterPool = []string{"$s0", "$s1", "$s2", "$s3", "$s4", "$s5", "$s6", "$s7"}

// Generator lowers one Program to assembly text.
type Generator struct {
	lines      []string
	diags      diagnostics.Bag
	labelSeq   int
	arraySeq   int
	classIndex map[string]*ast.Class
	log        *logrus.Entry
}

func New(log *logrus.Entry) *Generator {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Generator{log: log.WithField("stage", "codegen")}
}

// Generate lowers prog to its complete assembly text and returns any
// non-fatal diagnostics accumulated along the way (unknown labels, variables
// out of scope at emission time): codegen never aborts, it always produces
// an artifact, flagging failures as "# CODEGEN-ERROR: ..." comment lines.
func Generate(prog *ast.Program, log *logrus.Entry) (string, []diagnostics.Diagnostic, error) {
	g := New(log)
	return g.Generate(prog)
}

func (g *Generator) Generate(prog *ast.Program) (string, []diagnostics.Diagnostic, error) {
	g.classIndex = make(map[string]*ast.Class, len(prog.Classes))
	for _, c := range prog.Classes {
		g.classIndex[c.Name] = c
	}

	g.emitDataSection(prog)
	g.emit("")
	g.emit(".text")
	g.emit(".globl main")
	g.emit("")

	g.genMain(prog.Main)
	for _, class := range prog.Classes {
		for pair := class.Methods.Oldest(); pair != nil; pair = pair.Next() {
			method := pair.Value
			// A method is emitted once, under the class that textually declares
			// it; a subclass that inherits it unchanged dispatches to that same
			// label rather than getting its own duplicate copy (scenario 5).
			if method.OwningClass != class.Name {
				continue
			}
			g.genMethod(class, method)
		}
	}

	g.log.WithField("lines", len(g.lines)).WithField("diagnostics", g.diags.Len()).Trace("assembly text generated")
	return strings.Join(g.lines, "\n") + "\n", g.diags.Items(), nil
}

func (g *Generator) emit(line string) { g.lines = append(g.lines, line) }

func (g *Generator) emitf(format string, args ...any) { g.emit(fmt.Sprintf(format, args...)) }

// emitDataSection emits one ".word 0" slot per field, per class, in
// declaration order (restated from original_source's explicit
// zero-initialization), plus the fixed "newline" string constant.
func (g *Generator) emitDataSection(prog *ast.Program) {
	g.emit(".data")
	for _, class := range prog.Classes {
		for pair := class.Fields.Oldest(); pair != nil; pair = pair.Next() {
			field := pair.Value
			if field.OwningClass != class.Name {
				continue // inherited copy; already emitted under its declaring class
			}
			g.emitf("%s: .word 0", fieldLabel(class.Name, field.Name))
		}
	}
	g.emit(`newline: .asciiz "\n"`)
}

// fieldLabel is the .data label for a field, mirroring the "ClassName.member"
// naming scenario 5 uses for method dispatch targets.
func fieldLabel(class, field string) string { return class + "." + field }

// methodLabel is the .text label a method's body is emitted under and the
// jal target used to call it.
func methodLabel(class, method string) string { return class + "." + method }

func (g *Generator) newLabel(prefix string) string {
	g.labelSeq++
	return fmt.Sprintf("%s%d", prefix, g.labelSeq)
}

func (g *Generator) nextArrayRegister() string {
	if g.arraySeq >= len(arrayRegisterPool) {
		g.errorMarker("more than %d array variables declared process-wide; %q aliases an already-assigned register",
			len(arrayRegisterPool), arrayRegisterPool[g.arraySeq%len(arrayRegisterPool)])
	}
	reg := arrayRegisterPool[g.arraySeq%len(arrayRegisterPool)]
	g.arraySeq++
	return reg
}

// errorMarker records a non-fatal diagnostic and emits the matching
// "# CODEGEN-ERROR: ..." comment line in its place, per this stage's
// non-fatal error handling: compilation continues, the failure stays
// visible in the artifact.
func (g *Generator) errorMarker(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	g.diags.Errorf("codegen", -1, "%s", msg)
	g.emit(diagnostics.Diagnostic{Severity: diagnostics.Error, Stage: "codegen", Message: msg, Line: -1}.Marker())
}
