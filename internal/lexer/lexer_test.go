package lexer

import (
	"testing"

	"github.com/cactus-lang/cactus/internal/token"
	"github.com/stretchr/testify/require"
)

func kinds(t *testing.T, src string) []token.Kind {
	t.Helper()
	l := New(src)
	toks, diag := l.Tokenize()
	require.Nil(t, diag, "unexpected lex failure: %v", diag)
	var out []token.Kind
	for _, tok := range toks {
		out = append(out, tok.Kind)
	}
	return out
}

func TestLexerBasicTokens(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []token.Kind
	}{
		{"integer", "42", []token.Kind{token.INT, token.EOF}},
		{"float", "3.14", []token.Kind{token.FLOAT, token.EOF}},
		{"member access dot not float", "x.y", []token.Kind{token.IDENT, token.DOT, token.IDENT, token.EOF}},
		{"two char ops", "== != <= >= += -= *= /= ** -> =>", []token.Kind{
			token.EQ, token.NOT_EQ, token.LT_EQ, token.GT_EQ,
			token.PLUS_EQ, token.MINUS_EQ, token.STAR_EQ, token.SLASH_EQ,
			token.POW, token.ARROW, token.FATARROW, token.EOF,
		}},
		{"keywords", "let const fn if else while for in break continue return", []token.Kind{
			token.LET, token.CONST, token.FN, token.IF, token.ELSE, token.WHILE,
			token.FOR, token.IN, token.BREAK, token.CONTINUE, token.RETURN, token.EOF,
		}},
		{"newline emitted", "let x = 1\nlet y = 2", []token.Kind{
			token.LET, token.IDENT, token.ASSIGN, token.INT, token.NEWLINE,
			token.LET, token.IDENT, token.ASSIGN, token.INT, token.EOF,
		}},
		{"line comment skipped", "1 // comment\n2", []token.Kind{token.INT, token.NEWLINE, token.INT, token.EOF}},
		{"block comment skipped", "1 /* c\nc */ 2", []token.Kind{token.INT, token.INT, token.EOF}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, kinds(t, tt.src))
		})
	}
}

func TestLexerStringEscapes(t *testing.T) {
	l := New(`"a\nb\"c" 'd\'e'`)
	toks, diag := l.Tokenize()
	require.Nil(t, diag)
	require.Equal(t, "a\nb\"c", toks[0].Payload.Str)
	require.Equal(t, "d'e", toks[1].Payload.Str)
}

func TestLexerUnterminatedString(t *testing.T) {
	l := New(`"abc`)
	_, diag := l.Tokenize()
	require.NotNil(t, diag)
	require.Equal(t, 1, diag.Pos.Line)
	require.Equal(t, 1, diag.Pos.Column)
}

func TestLexerStrayCharacter(t *testing.T) {
	l := New("let x = 1 @ 2")
	_, diag := l.Tokenize()
	require.NotNil(t, diag)
}

func TestLexerBooleanAndNonePayloads(t *testing.T) {
	l := New("true false none")
	toks, diag := l.Tokenize()
	require.Nil(t, diag)
	require.True(t, toks[0].Payload.Bool)
	require.False(t, toks[1].Payload.Bool)
	require.True(t, toks[2].Payload.IsNone)
}

func TestLexerReprintRoundTrip(t *testing.T) {
	// Lex-print round-trip on a whitespace-insensitive program: re-emit the
	// canonical literal form from tokens, then lex again — same kinds.
	src := "let  x=1+2*3"
	first := kinds(t, src)
	l := New(src)
	toks, _ := l.Tokenize()
	var sb []byte
	for _, tok := range toks {
		if tok.Kind == token.EOF {
			continue
		}
		if tok.Literal != "" {
			sb = append(sb, []byte(tok.Literal)...)
		} else {
			sb = append(sb, []byte(tok.Kind.String())...)
		}
		sb = append(sb, ' ')
	}
	second := kinds(t, string(sb))
	require.Equal(t, first, second)
}
