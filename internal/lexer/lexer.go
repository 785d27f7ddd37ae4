// Package lexer turns CactUScript source text into a token stream.
//
// The lexer is hand-written and single-pass: it never backtracks over
// already-consumed runes. Whitespace other than newline is skipped;
// newline is emitted as its own token so the parser can tolerate either
// brace- or line-delimited layout (see internal/parser).
package lexer

import (
	"strings"

	"github.com/cactus-lang/cactus/internal/errors"
	"github.com/cactus-lang/cactus/internal/token"
)

// Lexer holds the scanning position over a single source string.
type Lexer struct {
	source string
	pos    int // byte offset of the current rune
	line   int
	col    int
}

// New creates a Lexer over source, positioned before the first rune.
func New(source string) *Lexer {
	return &Lexer{source: source, pos: 0, line: 1, col: 1}
}

func (l *Lexer) peekByte() byte {
	if l.pos >= len(l.source) {
		return 0
	}
	return l.source[l.pos]
}

func (l *Lexer) peekByteAt(offset int) byte {
	if l.pos+offset >= len(l.source) {
		return 0
	}
	return l.source[l.pos+offset]
}

func (l *Lexer) advance() byte {
	ch := l.peekByte()
	l.pos++
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch
}

func (l *Lexer) here() token.Position {
	return token.Position{Line: l.line, Column: l.col}
}

// Tokenize scans the whole source and returns the token stream terminated
// by an EOF token, or the first lex failure encountered.
func (l *Lexer) Tokenize() ([]token.Token, *errors.Diagnostic) {
	var out []token.Token
	for {
		tok, diag := l.Next()
		if diag != nil {
			return nil, diag
		}
		out = append(out, tok)
		if tok.Kind == token.EOF {
			return out, nil
		}
	}
}

// Next scans and returns the next token.
func (l *Lexer) Next() (token.Token, *errors.Diagnostic) {
	l.skipWhitespaceAndComments()

	pos := l.here()
	if l.pos >= len(l.source) {
		return token.Token{Kind: token.EOF, Pos: pos}, nil
	}

	ch := l.peekByte()

	if ch == '\n' {
		l.advance()
		return token.Token{Kind: token.NEWLINE, Pos: pos}, nil
	}

	switch {
	case isDigit(ch):
		return l.lexNumber(pos), nil
	case ch == '\'' || ch == '"':
		return l.lexString(pos, ch)
	case isIdentStart(ch):
		return l.lexIdentifier(pos), nil
	}

	return l.lexOperator(pos)
}

func (l *Lexer) skipWhitespaceAndComments() {
	for l.pos < len(l.source) {
		ch := l.peekByte()
		switch {
		case ch == ' ' || ch == '\t' || ch == '\r':
			l.advance()
		case ch == '/' && l.peekByteAt(1) == '/':
			for l.pos < len(l.source) && l.peekByte() != '\n' {
				l.advance()
			}
		case ch == '/' && l.peekByteAt(1) == '*':
			l.advance()
			l.advance()
			for l.pos < len(l.source) && !(l.peekByte() == '*' && l.peekByteAt(1) == '/') {
				l.advance()
			}
			if l.pos < len(l.source) {
				l.advance()
				l.advance()
			}
		default:
			return
		}
	}
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

func (l *Lexer) lexNumber(pos token.Position) token.Token {
	start := l.pos
	for isDigit(l.peekByte()) {
		l.advance()
	}
	isFloat := false
	// A '.' only promotes to float if followed by at least one digit;
	// otherwise it belongs to member access (spec.md §4.1).
	if l.peekByte() == '.' && isDigit(l.peekByteAt(1)) {
		isFloat = true
		l.advance()
		for isDigit(l.peekByte()) {
			l.advance()
		}
	}
	literal := l.source[start:l.pos]
	if isFloat {
		f := parseFloat(literal)
		return token.Token{Kind: token.FLOAT, Literal: literal, Payload: token.Payload{Float: f}, Pos: pos}
	}
	i := parseInt(literal)
	return token.Token{Kind: token.INT, Literal: literal, Payload: token.Payload{Int: i}, Pos: pos}
}

func parseInt(s string) int64 {
	var n int64
	for _, r := range s {
		n = n*10 + int64(r-'0')
	}
	return n
}

func parseFloat(s string) float64 {
	intPart, fracPart, found := strings.Cut(s, ".")
	if !found {
		return float64(parseInt(intPart))
	}
	whole := float64(parseInt(intPart))
	frac := 0.0
	scale := 1.0
	for _, r := range fracPart {
		scale /= 10
		frac += float64(r-'0') * scale
	}
	return whole + frac
}

func (l *Lexer) lexIdentifier(pos token.Position) token.Token {
	start := l.pos
	for isIdentPart(l.peekByte()) {
		l.advance()
	}
	literal := l.source[start:l.pos]
	if kind, ok := token.Keywords[literal]; ok {
		switch kind {
		case token.TRUE:
			return token.Token{Kind: kind, Literal: literal, Payload: token.Payload{Bool: true}, Pos: pos}
		case token.FALSE:
			return token.Token{Kind: kind, Literal: literal, Payload: token.Payload{Bool: false}, Pos: pos}
		case token.NONE:
			return token.Token{Kind: kind, Literal: literal, Payload: token.Payload{IsNone: true}, Pos: pos}
		default:
			return token.Token{Kind: kind, Literal: literal, Pos: pos}
		}
	}
	return token.Token{Kind: token.IDENT, Literal: literal, Pos: pos}
}

func (l *Lexer) lexString(pos token.Position, quote byte) (token.Token, *errors.Diagnostic) {
	l.advance() // opening quote
	var sb strings.Builder
	for {
		if l.pos >= len(l.source) {
			return token.Token{}, errors.New(errors.LexError, pos, l.source, "unterminated string literal")
		}
		ch := l.peekByte()
		if ch == quote {
			l.advance()
			break
		}
		if ch == '\\' {
			l.advance()
			if l.pos >= len(l.source) {
				return token.Token{}, errors.New(errors.LexError, pos, l.source, "unterminated string literal")
			}
			esc := l.advance()
			switch esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '\\':
				sb.WriteByte('\\')
			case '"':
				sb.WriteByte('"')
			case '\'':
				sb.WriteByte('\'')
			default:
				// Any other backslash-char is copied verbatim.
				sb.WriteByte(esc)
			}
			continue
		}
		sb.WriteByte(l.advance())
	}
	s := sb.String()
	return token.Token{Kind: token.STRING, Literal: s, Payload: token.Payload{Str: s}, Pos: pos}, nil
}

// twoCharOps lists the longest-match two-character operators; they must be
// checked before falling back to the single-character table (spec.md §4.1).
var twoCharOps = map[string]token.Kind{
	"==": token.EQ, "!=": token.NOT_EQ, "<=": token.LT_EQ, ">=": token.GT_EQ,
	"+=": token.PLUS_EQ, "-=": token.MINUS_EQ, "*=": token.STAR_EQ, "/=": token.SLASH_EQ,
	"**": token.POW, "->": token.ARROW, "=>": token.FATARROW,
	"<<": token.SHL, ">>": token.SHR,
}

var oneCharOps = map[byte]token.Kind{
	'+': token.PLUS, '-': token.MINUS, '*': token.STAR, '/': token.SLASH, '%': token.PERCENT,
	'<': token.LT, '>': token.GT, '=': token.ASSIGN,
	'&': token.AMP, '|': token.PIPE, '^': token.CARET, '~': token.TILDE,
	'(': token.LPAREN, ')': token.RPAREN, '[': token.LBRACKET, ']': token.RBRACKET,
	'{': token.LBRACE, '}': token.RBRACE, ',': token.COMMA, '.': token.DOT,
	':': token.COLON, ';': token.SEMICOLON,
}

func (l *Lexer) lexOperator(pos token.Position) (token.Token, *errors.Diagnostic) {
	if l.pos+1 < len(l.source) {
		two := l.source[l.pos : l.pos+2]
		if kind, ok := twoCharOps[two]; ok {
			l.advance()
			l.advance()
			return token.Token{Kind: kind, Literal: two, Pos: pos}, nil
		}
	}
	ch := l.peekByte()
	if kind, ok := oneCharOps[ch]; ok {
		l.advance()
		return token.Token{Kind: kind, Literal: string(ch), Pos: pos}, nil
	}
	l.advance()
	return token.Token{}, errors.New(errors.LexError, pos, l.source, "unexpected character %q", ch)
}
