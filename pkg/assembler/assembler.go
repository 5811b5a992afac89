// Package assembler implements the two-pass assembler that turns optimized
// MIPS-like assembly text into a flat sequence of 32-bit big-endian machine
// words: pass 1 walks the text building a label -> word-address table, pass
// 2 tokenizes and encodes each instruction line, resolving labels and
// pseudo-instructions along the way.
//
// Grounded directly on pkg/hack/codegen.go's CodeGenerator (translation
// tables plus a per-instruction Generate dispatch) and pkg/asm/lowering.go's
// two-phase Lower -> Generate split, and on
// original_source/compiler/MIPSAssembler.py /
// original_source/compiler/mips_bin_instructions.py for the exact pass
// structure and field layouts. Operand-line parsing uses
// github.com/prataprc/goparsec (see parsing.go), the same library
// pkg/asm/parsing.go uses for the structurally identical Hack line grammar.
package assembler

import (
	"encoding/binary"
	"strings"

	"github.com/sirupsen/logrus"

	"minij.dev/compiler/pkg/diagnostics"
)

// Assembler runs the two passes over one assembly text.
type Assembler struct {
	log *logrus.Entry
}

func New(log *logrus.Entry) *Assembler {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Assembler{log: log.WithField("stage", "assembler")}
}

// Assemble lowers src to its machine-code word stream.
func Assemble(src string, log *logrus.Entry) ([]byte, []diagnostics.Diagnostic, error) {
	return New(log).Assemble(src)
}

func (a *Assembler) Assemble(src string) ([]byte, []diagnostics.Diagnostic, error) {
	rawLines := strings.Split(src, "\n")

	labels := a.scanLabels(rawLines)

	var diags diagnostics.Bag
	words := make([]uint32, 0, len(rawLines))

	for i, raw := range rawLines {
		instr, ok := stripToInstruction(raw)
		if !ok {
			continue
		}
		pc := len(words) * 4
		word, err := a.encodeLine(instr, labels, pc)
		if err != nil {
			diags.Errorf("assembler", i+1, "%s", err.Error())
			continue
		}
		words = append(words, word)
	}

	out := make([]byte, 4*len(words))
	for i, w := range words {
		binary.BigEndian.PutUint32(out[i*4:], w)
	}

	a.log.WithField("words", len(words)).WithField("diagnostics", diags.Len()).Trace("assembly complete")
	return out, diags.Items(), nil
}

// scanLabels is pass 1. The documented "advance a word counter by 4 for every
// non-directive, non-blank, non-label line; record each label line's
// current counter value" is stated for a single flat counter, but a
// ".data" entry ("name: .word 0") fuses a label declaration and the
// directive reserving its storage onto one line, in a distinct address
// space from the instruction stream. This implementation tracks two
// counters, switching on the ".data"/".text" section directives: data
// labels (and the space their .word/.asciiz entries reserve) are addressed
// from one counter, instruction/branch labels from the other — otherwise a
// field's data label would collide with unrelated instruction addresses.
func (a *Assembler) scanLabels(rawLines []string) map[string]int {
	labels := make(map[string]int)
	textAddr, dataAddr := 0, 0
	inData := false

	for _, raw := range rawLines {
		trimmed := strings.TrimSpace(stripComment(raw))
		switch {
		case trimmed == "":
		case trimmed == ".data":
			inData = true
		case trimmed == ".text":
			inData = false
		case strings.HasPrefix(trimmed, "."):
		case dataEntryRE.MatchString(trimmed):
			m := dataEntryRE.FindStringSubmatch(trimmed)
			labels[m[1]] = dataAddr
			if m[2] == "asciiz" {
				dataAddr += asciizSize(m[3])
			} else {
				dataAddr += 4
			}
		case labelLineRE.MatchString(trimmed):
			labels[labelLineRE.FindStringSubmatch(trimmed)[1]] = textAddr
		case inData:
			dataAddr += 4
		default:
			textAddr += 4
		}
	}
	return labels
}

// asciizSize is a rough storage estimate for a `.asciiz "..."` entry: the
// quoted literal's length plus the implicit NUL terminator. Nothing in this
// compiler ever addresses past the one "newline" constant by computed
// offset, so exactness beyond "reserves some non-overlapping space" isn't
// load-bearing.
func asciizSize(rest string) int {
	start := strings.IndexByte(rest, '"')
	end := strings.LastIndexByte(rest, '"')
	if start < 0 || end <= start {
		return 4
	}
	return end - start + 1
}

// stripToInstruction returns the trimmed instruction text for a line (false
// if the line is blank, a directive, or a label declaration and therefore
// carries no encodable instruction).
func stripToInstruction(raw string) (string, bool) {
	trimmed := strings.TrimSpace(stripComment(raw))
	if trimmed == "" || strings.HasPrefix(trimmed, ".") ||
		labelLineRE.MatchString(trimmed) || dataEntryRE.MatchString(trimmed) {
		return "", false
	}
	return trimmed, true
}

func stripComment(raw string) string {
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		return raw[:i]
	}
	return raw
}
