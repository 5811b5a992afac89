package assembler

import (
	"strconv"

	pc "github.com/prataprc/goparsec"
)

func parseSigned(value string) (int32, bool) {
	n, err := strconv.ParseInt(value, 10, 32)
	if err != nil {
		return 0, false
	}
	return int32(n), true
}

// ----------------------------------------------------------------------------
// Operand-line parser combinators
//
// Grounded on pkg/asm/parsing.go's combinator style (ast.And/OrdChoice/Maybe
// over pc.Atom/pc.Token) for the structurally identical job of parsing one
// instruction line into a mnemonic plus a comma-separated operand list. The
// Hack grammar that file parses has no commas or memory operands; this one
// adds both, since this assembly dialect requires a "rt, imm(rs)" memory
// operand shape that the Hack dialect never needed.
var operandAST = pc.NewAST("operand-line", 0)

var (
	pMnemonic = pc.Token(`[A-Za-z][A-Za-z0-9]*`, "MNEMONIC")
	pRegister = pc.Token(`\$[A-Za-z0-9]+`, "REGISTER")
	pNumber   = pc.Token(`-?[0-9]+`, "NUMBER")
	// A bare label used as an immediate (the field/label memory-operand
	// extension, see DESIGN.md's "Field/label memory operands" entry) or as
	// a branch/jump target.
	pSymbol = pc.Token(`[A-Za-z_][A-Za-z0-9_.]*`, "SYMBOL")

	pImmediate = operandAST.OrdChoice("immediate", nil, pNumber, pSymbol)

	pMemOperand = operandAST.And("mem", nil,
		pImmediate, pc.Atom("(", "("), pRegister, pc.Atom(")", ")"),
	)

	pOperand = operandAST.OrdChoice("operand", nil, pMemOperand, pRegister, pImmediate)

	pCommaOperand = operandAST.And("comma-operand", nil, pc.Atom(",", ","), pOperand)

	pOperandList = operandAST.And("operand-list", nil,
		pOperand, operandAST.Kleene("rest", nil, pCommaOperand),
	)

	pLine = operandAST.And("line", nil, pMnemonic, operandAST.Maybe("maybe-operands", nil, pOperandList))
)

// operand is the parsed, structured form of one instruction operand.
type operand struct {
	register  string // "" if not a bare register
	isNumber  bool
	number    int32
	label     string // bare label (branch/jump target, or a memory-operand immediate naming a field)
	isMemory  bool
	memBase   string // the register inside "(...)" when isMemory
}

// parsedLine is one instruction line, tokenized and structurally validated,
// but not yet resolved against the label table or register indices.
type parsedLine struct {
	mnemonic string
	operands []operand
}

// parseOperandLine runs the combinator grammar over one already-trimmed
// instruction line (mnemonic plus operands, comments and labels stripped by
// the caller) and walks the resulting AST into a parsedLine.
func parseOperandLine(text string) (parsedLine, bool) {
	root, _ := operandAST.Parsewith(pLine, pc.NewScanner([]byte(text)))
	if root == nil || root.GetName() != "line" {
		return parsedLine{}, false
	}

	children := root.GetChildren()
	if len(children) == 0 {
		return parsedLine{}, false
	}
	mnemonic := children[0].GetValue()

	var operands []operand
	if len(children) > 1 && children[1].GetName() == "operand-list" {
		operands = walkOperandList(children[1])
	}

	return parsedLine{mnemonic: mnemonic, operands: operands}, true
}

func walkOperandList(list pc.Queryable) []operand {
	kids := list.GetChildren()
	operands := make([]operand, 0, len(kids))
	operands = append(operands, toOperand(kids[0]))
	if len(kids) > 1 {
		for _, rest := range kids[1].GetChildren() {
			if rest.GetName() == "operand" {
				operands = append(operands, toOperand(rest))
			} else if rest.GetName() == "comma-operand" {
				for _, c := range rest.GetChildren() {
					if c.GetName() == "operand" {
						operands = append(operands, toOperand(c))
					}
				}
			}
		}
	}
	return operands
}

func toOperand(node pc.Queryable) operand {
	switch node.GetName() {
	case "mem":
		children := node.GetChildren()
		imm := toOperand(children[0])
		base := children[2].GetValue()
		imm.isMemory = true
		imm.memBase = base
		return imm
	case "REGISTER":
		return operand{register: node.GetValue()}
	case "NUMBER":
		return numberOperand(node.GetValue())
	case "SYMBOL":
		return operand{label: node.GetValue()}
	case "operand", "immediate":
		if kids := node.GetChildren(); len(kids) > 0 {
			return toOperand(kids[0])
		}
		return numberOrLabel(node.GetValue())
	default:
		return numberOrLabel(node.GetValue())
	}
}

func numberOrLabel(value string) operand {
	if n, ok := parseSigned(value); ok {
		return operand{isNumber: true, number: n}
	}
	return operand{label: value}
}

func numberOperand(value string) operand {
	n, _ := parseSigned(value)
	return operand{isNumber: true, number: n}
}
