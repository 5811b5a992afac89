// Package optimizer implements the line-oriented peephole optimizer that
// runs between code generation and assembly: a fixed sequence of passes over
// the generated assembly text, each either gating or rewriting instructions.
//
// The pass list and ordering are grounded directly on
// original_source/compiler/OtimizadorMIPS.py and
// original_source/compiler/peephole_optmizer.py; the struct shape (a type
// holding the working line slice plus metadata built by an earlier pass,
// walked by later ones) follows pkg/asm/lowering.go's Lowerer and
// pkg/hack/codegen.go CodeGenerator: one struct, one orchestrating entry
// point, several small HandleX-style helpers.
package optimizer

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// line is one line of assembly text, classified during the structure scan.
type line struct {
	text      string
	label     string // non-empty if this line is "label:", "" otherwise
	isDirect  bool   // .data / .text / .globl / .word / .asciiz
	isBlank   bool
	inBody    bool // true once the structure scan places it inside a recognized function body
	protected bool // directives, labels, call/return/syscall: dead-code elimination never drops these
}

var labelLine = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_.]*):\s*$`)

// Optimizer runs the seven ordered passes over one assembly text.
type Optimizer struct {
	log *logrus.Entry
}

func New(log *logrus.Entry) *Optimizer {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Optimizer{log: log.WithField("stage", "optimizer")}
}

// Run lowers src through every pass, in order, MaxRounds times (clamped to at
// least 1). The baseline pipeline runs each pass exactly once; MaxRounds > 1
// is an opt-in fixed-point mode, restoring OtimizadorMIPS.py's "repeat until
// no pass changes anything" semantics for
// callers that opt into it. The driver defaults MaxRounds to 1.
func Run(src string, maxRounds int, log *logrus.Entry) string {
	return New(log).Run(src, maxRounds)
}

func (o *Optimizer) Run(src string, maxRounds int) string {
	if maxRounds < 1 {
		maxRounds = 1
	}

	current := src
	for round := 0; round < maxRounds; round++ {
		next, changed := o.runOnce(current)
		current = next
		if !changed {
			break
		}
	}
	return current
}

func (o *Optimizer) runOnce(src string) (string, bool) {
	lines := scanStructure(strings.Split(src, "\n"))

	lines = eliminateDeadCode(lines)
	constants := propagateConstants(lines)
	lines = reduceStrength(lines, constants)
	lines = eliminateRedundantOps(lines)
	lines = eliminateRedundantMoves(lines)
	lines = eliminateNoOps(lines)

	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.text
	}
	result := strings.Join(out, "\n")
	o.log.WithField("lines_in", strings.Count(src, "\n")+1).WithField("lines_out", len(lines)).Trace("optimizer round complete")
	return result, result != src
}

// scanStructure is pass 1: classify every line (label, directive, blank, or
// plain instruction) and mark which lines sit inside a recognized function
// body. A body begins at a label containing "." (a method label, per
// codegen's "ClassName.methodName" naming) or at the literal "main:" label,
// and ends right after the first "jr $ra" encountered afterward.
func scanStructure(raw []string) []line {
	lines := make([]line, 0, len(raw))
	inBody := false
	dataEntry := regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*:\s*\.(word|asciiz)\b`)

	for _, text := range raw {
		l := line{text: text}
		trimmed := strings.TrimSpace(text)

		switch {
		case trimmed == "":
			l.isBlank = true
			l.protected = true

		case strings.HasPrefix(trimmed, "."), dataEntry.MatchString(trimmed):
			l.isDirect = true
			l.protected = true

		case labelLine.MatchString(trimmed):
			l.label = labelLine.FindStringSubmatch(trimmed)[1]
			l.protected = true
			if l.label == "main" || strings.Contains(l.label, ".") {
				inBody = true
			}

		default:
			l.protected = isCallReturnOrSyscall(trimmed)
		}

		l.inBody = inBody || l.protected
		lines = append(lines, l)

		if strings.HasPrefix(trimmed, "jr ") {
			inBody = false
		}
	}
	return lines
}

func isCallReturnOrSyscall(instr string) bool {
	for _, prefix := range []string{"jal ", "jr ", "syscall"} {
		if strings.HasPrefix(instr, prefix) {
			return true
		}
	}
	return false
}

// eliminateDeadCode is pass 2: drop any plain instruction line that sits
// outside a recognized function body. Directives, labels, and
// call/return/syscall instructions are always kept.
func eliminateDeadCode(lines []line) []line {
	kept := make([]line, 0, len(lines))
	for _, l := range lines {
		if l.protected || l.inBody {
			kept = append(kept, l)
		}
	}
	return kept
}

// propagateConstants is pass 3: a structural pre-pass recording, per line
// index, the constant last assigned to each register by "li reg, k" up to
// (and not including) that line, invalidated by any other write to that
// register. It records state for later passes (strength reduction); it never
// rewrites the line stream itself.
type constState map[string]int32

func propagateConstants(lines []line) []constState {
	states := make([]constState, len(lines))
	known := constState{}

	liRE := regexp.MustCompile(`^li\s+(\$\w+)\s*,\s*(-?\d+)\s*$`)
	writeRE := regexp.MustCompile(`^[a-z]+\s+(\$\w+)`)

	for i, l := range lines {
		snapshot := make(constState, len(known))
		for k, v := range known {
			snapshot[k] = v
		}
		states[i] = snapshot

		instr := strings.TrimSpace(l.text)
		if m := liRE.FindStringSubmatch(instr); m != nil {
			if n, err := strconv.ParseInt(m[2], 10, 64); err == nil {
				known[m[1]] = int32(n)
				continue
			}
		}
		if m := writeRE.FindStringSubmatch(instr); m != nil {
			delete(known, m[1])
		}
	}
	return states
}
