// Command minijc is the compiler driver: it reads a MiniJava source file
// and an output directory and runs the full pipeline — lex, filter
// trivia, parse, analyze, generate, optimize, assemble — writing
// tokenized.txt, the two assembly .txt artifacts, and the binary
// machine-code file.
//
// Grounded on cmd/hack_assembler/main.go, cmd/vm_translator/main.go and
// cmd/jack_compiler/main.go's github.com/teris-io/cli wiring (one arg per
// positional input/output path, a single Handler function returning a
// process exit code). Adds github.com/sirupsen/logrus structured stage
// tracing and github.com/fatih/color + github.com/mattn/go-isatty for
// diagnostic coloring — both enrichments the base CLI layer never
// does (plain fmt.Printf only), pulled in from the rest of the example pack
// the way akashmaji946-go-mix's REPL colors its error output.
package main

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/teris-io/cli"

	"minij.dev/compiler/pkg/assembler"
	"minij.dev/compiler/pkg/codegen"
	"minij.dev/compiler/pkg/diagnostics"
	"minij.dev/compiler/pkg/lexer"
	"minij.dev/compiler/pkg/optimizer"
	"minij.dev/compiler/pkg/parser"
	"minij.dev/compiler/pkg/semantic"
	"minij.dev/compiler/pkg/token"
)

var Description = strings.ReplaceAll(`
The MiniJava Compiler translates whole MiniJava programs (single-inheritance
classes, typed fields and methods, arrays) ahead-of-time into MIPS-like
assembly and then into 32-bit big-endian machine words.
`, "\n", " ")

var MinijavaCompiler = cli.New(Description).
	WithArg(cli.NewArg("input", "The MiniJava (.java) source file to be compiled")).
	WithArg(cli.NewArg("outdir", "The output directory for the pipeline's artifacts")).
	WithOption(cli.NewOption("max-rounds", "Optimizer fixed-point rounds (default 1)").WithType(cli.TypeString)).
	WithOption(cli.NewOption("no-color", "Disable colored diagnostic output").WithType(cli.TypeBool)).
	WithAction(Handler)

var errColor = color.New(color.FgRed, color.Bold)
var warnColor = color.New(color.FgYellow)
var okColor = color.New(color.FgGreen)

func Handler(args []string, options map[string]string) int {
	input, outdir := args[0], args[1]

	if _, disabled := options["no-color"]; disabled || !isatty.IsTerminal(os.Stdout.Fd()) {
		color.NoColor = true
	}

	log := logrus.New()
	log.SetLevel(logrus.InfoLevel)
	entry := logrus.NewEntry(log)

	maxRounds := 1
	if v, ok := options["max-rounds"]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			maxRounds = n
		}
	}

	if err := os.MkdirAll(outdir, 0o755); err != nil {
		errColor.Fprintf(os.Stderr, "ERROR: cannot create output directory: %s\n", err)
		return 1
	}

	source, err := os.ReadFile(input)
	if err != nil {
		errColor.Fprintf(os.Stderr, "ERROR: cannot open input file: %s\n", err)
		return 1
	}

	entry.WithField("stage", "lexer").Info("tokenizing")
	tokens, err := lexer.Tokenize(string(source))
	if err != nil {
		errColor.Fprintf(os.Stderr, "ERROR: lexical error: %s\n", err)
		return 1
	}
	if err := writeTokenized(outdir, tokens); err != nil {
		errColor.Fprintf(os.Stderr, "ERROR: cannot write tokenized.txt: %s\n", err)
		return 1
	}

	significant := filterTrivia(tokens)

	entry.WithField("stage", "parser").Info("parsing")
	prog, err := parser.Parse(significant)
	if err != nil {
		errColor.Fprintf(os.Stderr, "ERROR: syntax error: %s\n", err)
		return 1
	}

	entry.WithField("stage", "semantic").Info("analyzing")
	prog, err = semantic.Analyze(prog, entry)
	if err != nil {
		errColor.Fprintf(os.Stderr, "ERROR: semantic error: %s\n", err)
		return 1
	}

	entry.WithField("stage", "codegen").Info("generating assembly")
	assembly, codegenDiags, err := codegen.Generate(prog, entry)
	if err != nil {
		errColor.Fprintf(os.Stderr, "ERROR: codegen error: %s\n", err)
		return 1
	}
	reportDiagnostics("codegen", codegenDiags)
	if err := writeText(outdir, "assembly.txt", assembly); err != nil {
		errColor.Fprintf(os.Stderr, "ERROR: cannot write assembly.txt: %s\n", err)
		return 1
	}

	entry.WithField("stage", "optimizer").WithField("rounds", maxRounds).Info("optimizing")
	optimized := optimizer.Run(assembly, maxRounds, entry)
	if err := writeText(outdir, "optimized.txt", optimized); err != nil {
		errColor.Fprintf(os.Stderr, "ERROR: cannot write optimized.txt: %s\n", err)
		return 1
	}

	entry.WithField("stage", "assembler").Info("assembling")
	machineCode, asmDiags, err := assembler.Assemble(optimized, entry)
	if err != nil {
		errColor.Fprintf(os.Stderr, "ERROR: assembler error: %s\n", err)
		return 1
	}
	reportDiagnostics("assembler", asmDiags)
	if err := os.WriteFile(filepath.Join(outdir, "out.bin"), machineCode, 0o644); err != nil {
		errColor.Fprintf(os.Stderr, "ERROR: cannot write machine code: %s\n", err)
		return 1
	}

	okColor.Fprintf(os.Stdout, "compiled %s -> %s (%d bytes)\n", input, outdir, len(machineCode))
	return 0
}

func filterTrivia(tokens []token.Token) []token.Token {
	kept := make([]token.Token, 0, len(tokens))
	for _, t := range tokens {
		if !t.IsTrivia() {
			kept = append(kept, t)
		}
	}
	return kept
}

func writeTokenized(outdir string, tokens []token.Token) error {
	var sb strings.Builder
	for _, t := range tokens {
		sb.WriteString(t.String())
		sb.WriteByte('\n')
	}
	return writeText(outdir, "tokenized.txt", sb.String())
}

func writeText(outdir, name, content string) error {
	return os.WriteFile(filepath.Join(outdir, name), []byte(content), 0o644)
}

// reportDiagnostics prints non-fatal codegen/assembler diagnostics to
// stderr; these never change the driver's exit code, they are only surfaced
// as visible markers (here, and for codegen also inline in assembly.txt;
// out.bin carries no marker for assembler diagnostics).
func reportDiagnostics(stage string, diags []diagnostics.Diagnostic) {
	for _, d := range diags {
		warnColor.Fprintf(os.Stderr, "%s: %s\n", stage, d.String())
	}
}

func main() { os.Exit(MinijavaCompiler.Run(os.Args, os.Stdout)) }
