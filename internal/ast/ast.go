// Package ast defines the closed syntax-tree family produced by the parser
// and shared read-only by both execution backends.
package ast

import "github.com/cactus-lang/cactus/internal/token"

// Node is implemented by every syntax-tree node so diagnostics can always
// locate a source position.
type Node interface {
	Pos() token.Position
}

// Expression is the marker interface for the Expression sort.
type Expression interface {
	Node
	expressionNode()
}

// Statement is the marker interface for the Statement sort.
type Statement interface {
	Node
	statementNode()
}

// Program is the tree root: an ordered sequence of top-level statements.
type Program struct {
	Statements []Statement
}

func (p *Program) Pos() token.Position {
	if len(p.Statements) == 0 {
		return token.Position{Line: 1, Column: 1}
	}
	return p.Statements[0].Pos()
}

// Parameter is a function/lambda parameter: a name, an optional type
// annotation string (parsed and semantically discarded, per spec.md §1),
// and an optional default-value expression.
type Parameter struct {
	Name    string
	Type    string
	Default Expression
}

// Every concrete node embeds token.Position anonymously (field name
// "Position"). Embedding the exported token.Position type rather than a
// private wrapper lets other packages (the parser) build node literals
// with a keyed `Position: pos` field, and promotes Pos() for free via
// token.Position.Pos.
