package assembler

import (
	"fmt"
	"regexp"
)

var labelLineRE = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_.]*):\s*$`)

// dataEntryRE matches a .data section entry line ("name: .word 0" or
// `name: .asciiz "..."`): a label declaration combined with the directive
// that reserves its storage, on one line.
var dataEntryRE = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_.]*):\s*\.(word|asciiz)\b(.*)$`)

// R-type funct codes. opcode is always 0 for these.
var rTypeFunct = map[string]uint32{
	"add": 0x20,
	"sub": 0x22,
	"and": 0x24,
	"mul": 0x18,
	"slt": 0x2a,
	// seq/sne have no real MIPS funct code (SPIM/MARS expand them to a
	// multi-instruction sequence); this dialect's codegen always emits
	// them as single three-register instructions, so they get funct
	// codes of their own, placed just past the real ones above.
	"seq": 0x2c,
	"sne": 0x2d,
}

const jrFunct = 0x08

// sllFunct is sll's funct code; shamt (not rs) carries its third operand,
// so it gets its own encoder rather than sharing encodeRType's layout.
const sllFunct = 0x00

// I-type opcodes.
const (
	opLW    = 0x23
	opSW    = 0x2b
	opBEQZ  = 0x4
	opADDI  = 0x8
	opADDIU = 0x9
)

// J-type opcodes.
const (
	opJ   = 0x2
	opJAL = 0x3
)

const syscallWord = 0x0000000c

// encodeLine resolves pseudo-instructions, then encodes the (possibly
// expanded) real instruction to one 32-bit word. pc is this instruction's
// own byte address, needed for beqz's pc-relative offset.
func (a *Assembler) encodeLine(text string, labels map[string]int, pc int) (uint32, error) {
	parsed, ok := parseOperandLine(text)
	if !ok {
		return 0, fmt.Errorf("malformed instruction %q", text)
	}

	parsed = expandPseudo(parsed)

	switch parsed.mnemonic {
	case "add", "sub", "and", "mul", "slt", "seq", "sne":
		return encodeRType(parsed)
	case "sll":
		return encodeShift(parsed)
	case "jr":
		return encodeJR(parsed)
	case "lw", "sw":
		return encodeMemory(parsed, labels)
	case "beqz":
		return encodeBranch(parsed, labels, pc)
	case "addi", "addiu":
		return encodeImmediate(parsed, labels)
	case "j", "jal":
		return encodeJump(parsed, labels)
	case "syscall":
		return syscallWord, nil
	default:
		return 0, fmt.Errorf("unknown mnemonic %q", parsed.mnemonic)
	}
}

// expandPseudo rewrites the documented pseudo-instructions into their
// real-instruction form: "li rt, imm" -> "addi rt, $zero, imm"; "la rt,
// label" -> "addi rt, $zero, label" (resolveImmediate already accepts a
// bare label as well as a literal, and every address this dialect's
// programs ever load fits the 16-bit immediate, so no lui/ori split is
// needed); "move rd, rs" -> "add rd, $zero, rs"; "b label" -> "beq $zero,
// $zero, label", folded here into "beqz $zero, label" since $zero is
// always equal to itself and encodeBranch already treats beqz as "branch
// if rs == 0".
func expandPseudo(p parsedLine) parsedLine {
	switch p.mnemonic {
	case "li", "la":
		if len(p.operands) == 2 {
			return parsedLine{mnemonic: "addi", operands: []operand{
				p.operands[0], {register: "$zero"}, p.operands[1],
			}}
		}
	case "move":
		if len(p.operands) == 2 {
			return parsedLine{mnemonic: "add", operands: []operand{
				p.operands[0], {register: "$zero"}, p.operands[1],
			}}
		}
	case "b":
		if len(p.operands) == 1 {
			return parsedLine{mnemonic: "beqz", operands: []operand{
				{register: "$zero"}, p.operands[0],
			}}
		}
	}
	return p
}

func encodeRType(p parsedLine) (uint32, error) {
	if len(p.operands) != 3 {
		return 0, fmt.Errorf("%s expects 3 operands, got %d", p.mnemonic, len(p.operands))
	}
	rd, ok1 := resolveRegister(p.operands[0].register)
	rs, ok2 := resolveRegister(p.operands[1].register)
	rt, ok3 := resolveRegister(p.operands[2].register)
	if !ok1 || !ok2 || !ok3 {
		return 0, fmt.Errorf("%s expects register operands", p.mnemonic)
	}
	funct := rTypeFunct[p.mnemonic]
	return rs<<21 | rt<<16 | rd<<11 | funct, nil
}

// encodeShift handles "sll rd, rt, shamt": rs is unused (always $zero), rt
// is the source register, shamt is a 5-bit immediate literal rather than a
// register.
func encodeShift(p parsedLine) (uint32, error) {
	if len(p.operands) != 3 {
		return 0, fmt.Errorf("sll expects 3 operands, got %d", len(p.operands))
	}
	rd, ok1 := resolveRegister(p.operands[0].register)
	rt, ok2 := resolveRegister(p.operands[1].register)
	if !ok1 || !ok2 {
		return 0, fmt.Errorf("sll expects register rd and rt operands")
	}
	if !p.operands[2].isNumber {
		return 0, fmt.Errorf("sll expects a numeric shamt operand")
	}
	shamt := uint32(p.operands[2].number) & 0x1f
	return rt<<16 | rd<<11 | shamt<<6 | sllFunct, nil
}

func encodeJR(p parsedLine) (uint32, error) {
	if len(p.operands) != 1 {
		return 0, fmt.Errorf("jr expects 1 operand, got %d", len(p.operands))
	}
	rs, ok := resolveRegister(p.operands[0].register)
	if !ok {
		return 0, fmt.Errorf("jr expects a register operand")
	}
	return rs<<21 | jrFunct, nil
}

// encodeMemory handles "rt, imm(rs)" for lw/sw. imm may be a literal or a
// bare label (the field-access extension, see DESIGN.md): a label resolves
// through the same table pass 1 built for branch/jump targets.
func encodeMemory(p parsedLine, labels map[string]int) (uint32, error) {
	if len(p.operands) != 2 || !p.operands[1].isMemory {
		return 0, fmt.Errorf("%s expects \"rt, imm(rs)\"", p.mnemonic)
	}
	rt, ok := resolveRegister(p.operands[0].register)
	if !ok {
		return 0, fmt.Errorf("%s expects a register destination", p.mnemonic)
	}
	rs, ok := resolveRegister(p.operands[1].memBase)
	if !ok {
		return 0, fmt.Errorf("%s expects a register base", p.mnemonic)
	}
	imm, err := resolveImmediate(p.operands[1], labels)
	if err != nil {
		return 0, err
	}
	opcode := uint32(opLW)
	if p.mnemonic == "sw" {
		opcode = opSW
	}
	return opcode<<26 | rs<<21 | rt<<16 | uint32(uint16(imm)), nil
}

// encodeBranch handles "beqz rs, label": opcode 0x4 (beq), rt field 0
// ($zero), the signed word offset from the instruction following the
// branch to the label.
func encodeBranch(p parsedLine, labels map[string]int, pc int) (uint32, error) {
	if len(p.operands) != 2 {
		return 0, fmt.Errorf("beqz expects \"rs, label\", got %d operands", len(p.operands))
	}
	rs, ok := resolveRegister(p.operands[0].register)
	if !ok {
		return 0, fmt.Errorf("beqz expects a register operand")
	}
	if p.operands[1].label == "" {
		return 0, fmt.Errorf("beqz expects a label operand")
	}
	target, ok := labels[p.operands[1].label]
	if !ok {
		return 0, fmt.Errorf("unknown label %q", p.operands[1].label)
	}
	offset := (target - (pc + 4)) / 4
	return uint32(opBEQZ)<<26 | rs<<21 | uint32(uint16(int16(offset))), nil
}

func encodeImmediate(p parsedLine, labels map[string]int) (uint32, error) {
	if len(p.operands) != 3 {
		return 0, fmt.Errorf("%s expects \"rt, rs, imm\", got %d operands", p.mnemonic, len(p.operands))
	}
	rt, ok := resolveRegister(p.operands[0].register)
	if !ok {
		return 0, fmt.Errorf("%s expects a register destination", p.mnemonic)
	}
	rs, ok := resolveRegister(p.operands[1].register)
	if !ok {
		return 0, fmt.Errorf("%s expects a register source", p.mnemonic)
	}
	imm, err := resolveImmediate(p.operands[2], labels)
	if err != nil {
		return 0, err
	}
	opcode := uint32(opADDI)
	if p.mnemonic == "addiu" {
		opcode = opADDIU
	}
	return opcode<<26 | rs<<21 | rt<<16 | uint32(uint16(imm)), nil
}

func encodeJump(p parsedLine, labels map[string]int) (uint32, error) {
	if len(p.operands) != 1 || p.operands[0].label == "" {
		return 0, fmt.Errorf("%s expects a single label operand", p.mnemonic)
	}
	target, ok := labels[p.operands[0].label]
	if !ok {
		return 0, fmt.Errorf("unknown label %q", p.operands[0].label)
	}
	opcode := uint32(opJ)
	if p.mnemonic == "jal" {
		opcode = opJAL
	}
	addr := uint32(target>>2) & 0x03FFFFFF
	return opcode<<26 | addr, nil
}

// resolveImmediate accepts either a literal number or a bare label
// (resolved through the label table built in pass 1) as an "imm" slot,
// covering both a numeric offset and codegen's field-access memory operand.
func resolveImmediate(op operand, labels map[string]int) (int32, error) {
	if op.isNumber {
		return op.number, nil
	}
	if op.label != "" {
		addr, ok := labels[op.label]
		if !ok {
			return 0, fmt.Errorf("unknown label %q", op.label)
		}
		return int32(addr), nil
	}
	return 0, fmt.Errorf("expected a numeric or label immediate")
}
