// Package token defines the token data model produced by pkg/lexer and
// consumed by pkg/parser.
package token

import "fmt"

// Kind enumerates the lexical categories a Token can belong to. Whitespace,
// Comment and Mistake tokens are structurally present from lexing but are
// filtered before parsing (Mistake aborts the pipeline before that point).
type Kind string

const (
	Reserved   Kind = "reserved"   // closed vocabulary: class, public, if, while, ...
	Identifier Kind = "identifier" // [A-Za-z_][A-Za-z0-9_]*
	Number     Kind = "number"     // [0-9]+
	Operator   Kind = "operator"   // ==, !=, <=, >=, <, >, +, -, *, &&, !, =
	Punct      Kind = "punctuation" // ()[]{};.,
	Whitespace Kind = "whitespace"
	Comment    Kind = "comment" // // ... or /* ... */
	Mistake    Kind = "mistake" // input matched by none of the above
)

// ReservedWords is the closed vocabulary of reserved words recognized by the
// lexer, in no particular order (the lexer tries this category before
// Identifier so that e.g. "class" never lexes as an identifier).
var ReservedWords = []string{
	"class", "public", "static", "void", "main", "String", "return",
	"boolean", "int", "if", "else", "while", "System.out.println",
	"length", "true", "false", "this", "new", "null", "extends",
}

// Token is a single lexical unit: a Kind tag plus the exact source lexeme.
// Position is the 0-based byte offset into the source text at which the
// lexeme begins, used for error messages and the parser's token-index
// diagnostics.
type Token struct {
	Kind     Kind
	Lexeme   string
	Position int
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d", t.Kind, t.Lexeme, t.Position)
}

// IsTrivia reports whether the token is Whitespace or Comment, the two
// categories filtered out between lexing and parsing.
func (t Token) IsTrivia() bool { return t.Kind == Whitespace || t.Kind == Comment }
