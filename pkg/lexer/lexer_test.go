package lexer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"minij.dev/compiler/pkg/lexer"
	"minij.dev/compiler/pkg/token"
)

// tokenCase mirrors the table-driven input/expected-tokens shape
// used to exercise a hand-written lexer: one source string, one expected
// kind+lexeme sequence (trivia included, matching Tokenize's contract).
type tokenCase struct {
	Input    string
	Expected []token.Token
}

func tok(kind token.Kind, lexeme string, pos int) token.Token {
	return token.Token{Kind: kind, Lexeme: lexeme, Position: pos}
}

func TestTokenize(t *testing.T) {
	tests := []tokenCase{
		{
			Input: "class Foo{}",
			Expected: []token.Token{
				tok(token.Reserved, "class", 0),
				tok(token.Whitespace, " ", 5),
				tok(token.Identifier, "Foo", 6),
				tok(token.Punct, "{", 9),
				tok(token.Punct, "}", 10),
			},
		},
		{
			Input: "1 + 23",
			Expected: []token.Token{
				tok(token.Number, "1", 0),
				tok(token.Whitespace, " ", 1),
				tok(token.Operator, "+", 2),
				tok(token.Whitespace, " ", 3),
				tok(token.Number, "23", 4),
			},
		},
		{
			Input: "a == b != c <= d",
			Expected: []token.Token{
				tok(token.Identifier, "a", 0),
				tok(token.Whitespace, " ", 1),
				tok(token.Operator, "==", 2),
				tok(token.Whitespace, " ", 4),
				tok(token.Identifier, "b", 5),
				tok(token.Whitespace, " ", 6),
				tok(token.Operator, "!=", 7),
				tok(token.Whitespace, " ", 9),
				tok(token.Identifier, "c", 10),
				tok(token.Whitespace, " ", 11),
				tok(token.Operator, "<=", 12),
				tok(token.Whitespace, " ", 14),
				tok(token.Identifier, "d", 15),
			},
		},
		{
			Input: "int[] xs // a trailing comment",
			Expected: []token.Token{
				tok(token.Reserved, "int", 0),
				tok(token.Punct, "[", 3),
				tok(token.Punct, "]", 4),
				tok(token.Whitespace, " ", 5),
				tok(token.Identifier, "xs", 6),
				tok(token.Whitespace, " ", 8),
				tok(token.Comment, "// a trailing comment", 9),
			},
		},
	}

	for _, test := range tests {
		got, err := lexer.Tokenize(test.Input)
		if !assert.NoError(t, err, "input: %q", test.Input) {
			continue
		}
		if assert.Equal(t, len(test.Expected), len(got), "input: %q", test.Input) {
			for i, want := range test.Expected {
				assert.Equal(t, want.Kind, got[i].Kind, "token %d of %q", i, test.Input)
				assert.Equal(t, want.Lexeme, got[i].Lexeme, "token %d of %q", i, test.Input)
				assert.Equal(t, want.Position, got[i].Position, "token %d of %q", i, test.Input)
			}
		}
	}
}

// TestTokenizeRoundTrip checks the round-trip invariant directly:
// concatenating every returned lexeme, trivia included, reproduces the
// source exactly.
func TestTokenizeRoundTrip(t *testing.T) {
	sources := []string{
		`class Main { public static void main(String[] a){ System.out.println(1+2*3); } }`,
		"class A extends B {\n\tint x;\n\t// a comment\n\tpublic int get() { return x; }\n}",
		"",
	}
	for _, src := range sources {
		tokens, err := lexer.Tokenize(src)
		assert.NoError(t, err, "source: %q", src)
		var rebuilt strings.Builder
		for _, tk := range tokens {
			rebuilt.WriteString(tk.Lexeme)
		}
		assert.Equal(t, src, rebuilt.String(), "round-trip failed for %q", src)
	}
}

// TestReservedWordNotAPrefixMatch checks that a reserved word is not matched
// as a prefix of a longer identifier (e.g. "intX" lexes as one identifier).
func TestReservedWordNotAPrefixMatch(t *testing.T) {
	got, err := lexer.Tokenize("intX")
	assert.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, token.Identifier, got[0].Kind)
	assert.Equal(t, "intX", got[0].Lexeme)
}

func TestTokenizeRejectsUnrecognizedCharacter(t *testing.T) {
	_, err := lexer.Tokenize("int x @ y;")
	assert.Error(t, err)
	lexErr, ok := err.(*lexer.Error)
	if assert.True(t, ok, "expected a *lexer.Error") {
		assert.Equal(t, byte('@'), lexErr.Char)
	}
}

func TestFilterDropsTrivia(t *testing.T) {
	tokens, err := lexer.Tokenize("int x; // comment\n")
	assert.NoError(t, err)
	filtered := lexer.Filter(tokens)
	for _, tk := range filtered {
		assert.False(t, tk.IsTrivia(), "Filter must drop trivia tokens, found %v", tk)
	}
	assert.Less(t, len(filtered), len(tokens))
}
