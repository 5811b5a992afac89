package assembler

import "strconv"

// registerTable is the fixed name -> 5-bit index table. Per the
// supplemented feature 2, this is the full alias set from
// original_source/compiler/mips_bin_instructions.py (register_to_bin),
// a superset of the "$a0 and $4 both accepted" behavior this assembler commits to
// explicitly.
var registerTable = map[string]uint32{
	"$zero": 0, "$at": 1, "$v0": 2, "$v1": 3,
	"$a0": 4, "$a1": 5, "$a2": 6, "$a3": 7,
	"$t0": 8, "$t1": 9, "$t2": 10, "$t3": 11,
	"$t4": 12, "$t5": 13, "$t6": 14, "$t7": 15,
	"$s0": 16, "$s1": 17, "$s2": 18, "$s3": 19,
	"$s4": 20, "$s5": 21, "$s6": 22, "$s7": 23,
	"$t8": 24, "$t9": 25, "$k0": 26, "$k1": 27,
	"$gp": 28, "$sp": 29, "$fp": 30, "$ra": 31,
}

// resolveRegister accepts both the symbolic form ("$a0") and the numeric
// form ("$4").
func resolveRegister(name string) (uint32, bool) {
	if idx, ok := registerTable[name]; ok {
		return idx, true
	}
	if len(name) > 1 && name[0] == '$' {
		if n, err := strconv.ParseUint(name[1:], 10, 6); err == nil && n < 32 {
			return uint32(n), true
		}
	}
	return 0, false
}
