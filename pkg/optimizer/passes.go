package optimizer

import (
	"fmt"
	"math/bits"
	"regexp"
	"strconv"
	"strings"
)

var mulImmRE = regexp.MustCompile(`^mul\s+(\$\w+)\s*,\s*(\$\w+)\s*,\s*(-?\d+)\s*$`)

// reduceStrength is pass 4: rewrite "mul rd, rs, k" to "sll rd, rs, log2(k)"
// whenever k is a positive power of two. constants is accepted for
// symmetry with the pass ordering described in this stage (constant
// propagation feeds strength reduction) even though this particular
// rewrite only needs the immediate operand, which is already literal here.
func reduceStrength(lines []line, constants []constState) []line {
	for i, l := range lines {
		m := mulImmRE.FindStringSubmatch(strings.TrimSpace(l.text))
		if m == nil {
			continue
		}
		k, err := strconv.ParseInt(m[3], 10, 64)
		if err != nil || k <= 0 || k&(k-1) != 0 {
			continue
		}
		shift := bits.TrailingZeros64(uint64(k))
		lines[i].text = fmt.Sprintf("sll %s, %s, %d", m[1], m[2], shift)
	}
	return lines
}

var (
	liZeroRE = regexp.MustCompile(`^li\s+(\$\w+)\s*,\s*0\s*$`)
	liOneRE  = regexp.MustCompile(`^li\s+(\$\w+)\s*,\s*1\s*$`)
	lwRE     = regexp.MustCompile(`^lw\s+(\$\w+)\s*,\s*(.+)$`)
	addRE    = regexp.MustCompile(`^add\s+(\$\w+)\s*,\s*(\$\w+)\s*,\s*(\$\w+)\s*$`)
	mulRegRE = regexp.MustCompile(`^mul\s+(\$\w+)\s*,\s*(\$\w+)\s*,\s*(\$\w+)\s*$`)
)

// eliminateRedundantOps is pass 5: over a sliding window of three
// consecutive instruction lines, collapse
//
//	li tmp, 0  /  lw x, m  /  add dst, tmp, x  (or add dst, x, tmp)
//	li tmp, 1  /  lw x, m  /  mul dst, tmp, x  (or mul dst, x, tmp)
//
// into a single "lw dst, m" — adding zero or multiplying by one is a no-op
// once the intervening load is accounted for.
func eliminateRedundantOps(lines []line) []line {
	out := make([]line, 0, len(lines))
	i := 0
	for i < len(lines) {
		if tail, ok := tryCollapseTriple(lines, i); ok {
			out = append(out, tail)
			i += 3
			continue
		}
		out = append(out, lines[i])
		i++
	}
	return out
}

func tryCollapseTriple(lines []line, i int) (line, bool) {
	if i+2 >= len(lines) {
		return line{}, false
	}
	a, b, c := lines[i], lines[i+1], lines[i+2]
	if a.protected || b.protected || c.protected {
		return line{}, false
	}

	liZero := liZeroRE.FindStringSubmatch(strings.TrimSpace(a.text))
	liOne := liOneRE.FindStringSubmatch(strings.TrimSpace(a.text))
	ld := lwRE.FindStringSubmatch(strings.TrimSpace(b.text))
	if ld == nil {
		return line{}, false
	}
	tmpReg, x, operand := "", ld[1], ld[2]

	switch {
	case liZero != nil:
		tmpReg = liZero[1]
		if add := addRE.FindStringSubmatch(strings.TrimSpace(c.text)); add != nil {
			dst, lhs, rhs := add[1], add[2], add[3]
			if (lhs == tmpReg && rhs == x) || (lhs == x && rhs == tmpReg) {
				return line{text: fmt.Sprintf("lw %s, %s", dst, operand)}, true
			}
		}
	case liOne != nil:
		tmpReg = liOne[1]
		if mul := mulRegRE.FindStringSubmatch(strings.TrimSpace(c.text)); mul != nil {
			dst, lhs, rhs := mul[1], mul[2], mul[3]
			if (lhs == tmpReg && rhs == x) || (lhs == x && rhs == tmpReg) {
				return line{text: fmt.Sprintf("lw %s, %s", dst, operand)}, true
			}
		}
	}
	return line{}, false
}

var moveRE = regexp.MustCompile(`^move\s+(\$\w+)\s*,\s*(\$\w+)\s*$`)

// eliminateRedundantMoves is pass 6: drop "move rd, rs" when rd == rs.
func eliminateRedundantMoves(lines []line) []line {
	out := make([]line, 0, len(lines))
	for _, l := range lines {
		if m := moveRE.FindStringSubmatch(strings.TrimSpace(l.text)); m != nil && m[1] == m[2] {
			continue
		}
		out = append(out, l)
	}
	return out
}

var addSubZeroRE = regexp.MustCompile(`^(add|sub)\s+(\$\w+)\s*,\s*(\$\w+)\s*,\s*(\$\w+|\$zero)\s*$`)

// eliminateNoOps is pass 7: drop "add"/"sub" whose third operand is the
// zero register and whose destination equals the first source (adding or
// subtracting zero from a register and writing it back to itself).
func eliminateNoOps(lines []line) []line {
	out := make([]line, 0, len(lines))
	for _, l := range lines {
		if m := addSubZeroRE.FindStringSubmatch(strings.TrimSpace(l.text)); m != nil {
			dst, src, third := m[2], m[3], m[4]
			if dst == src && third == "$zero" {
				continue
			}
		}
		out = append(out, l)
	}
	return out
}
