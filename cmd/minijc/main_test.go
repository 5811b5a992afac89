package main

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func compile(t *testing.T, source string) (string, []byte) {
	t.Helper()
	dir := t.TempDir()
	input := filepath.Join(dir, "Main.java")
	if err := os.WriteFile(input, []byte(source), 0o644); err != nil {
		t.Fatalf("cannot write fixture: %s", err)
	}
	outdir := filepath.Join(dir, "out")

	status := Handler([]string{input, outdir}, map[string]string{"no-color": "true"})
	if status != 0 {
		t.Fatalf("unexpected exit status: %d", status)
	}

	machineCode, err := os.ReadFile(filepath.Join(outdir, "out.bin"))
	if err != nil {
		t.Fatalf("cannot read machine code output: %s", err)
	}
	return outdir, machineCode
}

func TestEmptyMain(t *testing.T) {
	source := `class P { public static void main(String[] a){ } }`
	_, code := compile(t, source)

	if len(code)%4 != 0 {
		t.Fatalf("expected a whole number of 32-bit words, got %d bytes", len(code))
	}
	words := len(code) / 4
	last := binary.BigEndian.Uint32(code[(words-1)*4:])
	if last != 0x0000000c {
		t.Fatalf("expected the final word to be the exit syscall 0x0000000c, got 0x%08x", last)
	}
}

func TestPrintLiteral(t *testing.T) {
	source := `class P { public static void main(String[] a){ System.out.println(42); } }`
	outdir, code := compile(t, source)

	if len(code) == 0 {
		t.Fatal("expected non-empty machine code")
	}

	assembly, err := os.ReadFile(filepath.Join(outdir, "assembly.txt"))
	if err != nil {
		t.Fatalf("cannot read assembly.txt: %s", err)
	}
	if !strings.Contains(string(assembly), "li $t0, 42") {
		t.Fatalf("expected assembly to materialize the literal 42 via li, got:\n%s", assembly)
	}
}
