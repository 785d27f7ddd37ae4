// Package parser implements a recursive-descent, precedence-climbing
// parser that turns a token stream into the syntax tree defined by
// internal/ast.
package parser

import (
	"github.com/cactus-lang/cactus/internal/ast"
	"github.com/cactus-lang/cactus/internal/errors"
	"github.com/cactus-lang/cactus/internal/lexer"
	"github.com/cactus-lang/cactus/internal/token"
)

// Parser holds the full pre-lexed token stream and a read cursor. The
// grammar is permissive about newlines (spec.md §4.2): a skip is performed
// at every statement boundary so a newline is never a required terminator.
type Parser struct {
	tokens []token.Token
	pos    int
	source string
}

// New lexes source in full and returns a Parser ready to parse it, or the
// first lex failure.
func New(source string) (*Parser, *errors.Diagnostic) {
	l := lexer.New(source)
	toks, diag := l.Tokenize()
	if diag != nil {
		return nil, diag
	}
	return &Parser{tokens: toks, source: source}, nil
}

func (p *Parser) cur() token.Token  { return p.tokens[p.pos] }
func (p *Parser) peekAt(n int) token.Token {
	idx := p.pos + n
	if idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[idx]
}

func (p *Parser) advance() token.Token {
	tok := p.cur()
	if tok.Kind != token.EOF {
		p.pos++
	}
	return tok
}

func (p *Parser) check(k token.Kind) bool { return p.cur().Kind == k }

func (p *Parser) match(k token.Kind) bool {
	if p.check(k) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(k token.Kind) (token.Token, *errors.Diagnostic) {
	if p.check(k) {
		return p.advance(), nil
	}
	return token.Token{}, p.fail("expected %s, found %s", k, p.cur().Kind)
}

func (p *Parser) fail(format string, args ...any) *errors.Diagnostic {
	return errors.New(errors.ParseError, p.cur().Pos, p.source, format, args...)
}

// skipNewlines consumes zero or more NEWLINE tokens. Called before each
// statement, before each block member, after else/elif/=>, and inside
// list/map bodies (spec.md §4.2).
func (p *Parser) skipNewlines() {
	for p.check(token.NEWLINE) {
		p.advance()
	}
}

// ParseProgram parses the entire token stream into a Program.
func (p *Parser) ParseProgram() (*ast.Program, *errors.Diagnostic) {
	prog := &ast.Program{}
	p.skipNewlines()
	for !p.check(token.EOF) {
		stmt, diag := p.parseStatement()
		if diag != nil {
			return nil, diag
		}
		prog.Statements = append(prog.Statements, stmt)
		p.skipNewlines()
	}
	return prog, nil
}
