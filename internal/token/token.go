// Package token defines the closed set of token kinds produced by the
// lexer and consumed by the parser.
package token

import "fmt"

// Kind identifies the category of a Token. The set is closed: the parser
// switches exhaustively over it and never encounters a kind it doesn't know.
type Kind int

const (
	ILLEGAL Kind = iota
	EOF
	NEWLINE

	// Literals and identifiers.
	IDENT
	INT
	FLOAT
	STRING
	TRUE
	FALSE
	NONE

	// Keywords.
	LET
	CONST
	FN
	ASYNC
	AWAIT
	IF
	ELIF
	ELSE
	WHILE
	FOR
	IN
	BREAK
	CONTINUE
	RETURN
	STRUCT
	ENUM
	CONTRACT
	EVENT
	EMIT
	IMPL
	AND
	OR
	NOT

	// Operators, longest-match first in the lexer.
	EQ     // ==
	NOT_EQ // !=
	LT_EQ  // <=
	GT_EQ  // >=
	PLUS_EQ
	MINUS_EQ
	STAR_EQ
	SLASH_EQ
	POW    // **
	ARROW  // ->
	FATARROW // =>
	SHL    // <<
	SHR    // >>

	PLUS
	MINUS
	STAR
	SLASH
	PERCENT
	LT
	GT
	ASSIGN
	AMP
	PIPE
	CARET
	TILDE

	LPAREN
	RPAREN
	LBRACKET
	RBRACKET
	LBRACE
	RBRACE
	COMMA
	DOT
	COLON
	SEMICOLON
)

var names = map[Kind]string{
	ILLEGAL: "ILLEGAL", EOF: "EOF", NEWLINE: "NEWLINE",
	IDENT: "IDENT", INT: "INT", FLOAT: "FLOAT", STRING: "STRING",
	TRUE: "TRUE", FALSE: "FALSE", NONE: "NONE",
	LET: "let", CONST: "const", FN: "fn", ASYNC: "async", AWAIT: "await",
	IF: "if", ELIF: "elif", ELSE: "else", WHILE: "while", FOR: "for", IN: "in",
	BREAK: "break", CONTINUE: "continue", RETURN: "return",
	STRUCT: "struct", ENUM: "enum", CONTRACT: "contract", EVENT: "event",
	EMIT: "emit", IMPL: "impl", AND: "and", OR: "or", NOT: "not",
	EQ: "==", NOT_EQ: "!=", LT_EQ: "<=", GT_EQ: ">=",
	PLUS_EQ: "+=", MINUS_EQ: "-=", STAR_EQ: "*=", SLASH_EQ: "/=",
	POW: "**", ARROW: "->", FATARROW: "=>", SHL: "<<", SHR: ">>",
	PLUS: "+", MINUS: "-", STAR: "*", SLASH: "/", PERCENT: "%",
	LT: "<", GT: ">", ASSIGN: "=", AMP: "&", PIPE: "|", CARET: "^", TILDE: "~",
	LPAREN: "(", RPAREN: ")", LBRACKET: "[", RBRACKET: "]",
	LBRACE: "{", RBRACE: "}", COMMA: ",", DOT: ".", COLON: ":", SEMICOLON: ";",
}

// String returns the canonical textual form of a Kind, used both for
// diagnostics and for re-emitting the longest-match keyword/operator tables.
func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Keywords maps reserved identifiers to their keyword Kind. Anything not in
// this table that matches the identifier grammar lexes as IDENT.
var Keywords = map[string]Kind{
	"let": LET, "const": CONST, "fn": FN, "async": ASYNC, "await": AWAIT,
	"if": IF, "elif": ELIF, "else": ELSE, "while": WHILE, "for": FOR, "in": IN,
	"break": BREAK, "continue": CONTINUE, "return": RETURN,
	"struct": STRUCT, "enum": ENUM, "contract": CONTRACT, "event": EVENT,
	"emit": EMIT, "impl": IMPL, "and": AND, "or": OR, "not": NOT,
	"true": TRUE, "false": FALSE, "none": NONE,
}

// Position identifies a location in source text by 1-based line and column.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Pos returns p itself, letting ast nodes satisfy the Node interface by
// embedding Position anonymously.
func (p Position) Pos() Position {
	return p
}

// Payload holds a literal's decoded value. At most one field is meaningful,
// selected by the owning Token's Kind.
type Payload struct {
	Int    int64
	Float  float64
	Str    string
	Bool   bool
	IsNone bool
}

// Token is an immutable record produced once by the lexer and never mutated
// afterward; the parser only ever reads it.
type Token struct {
	Kind    Kind
	Literal string
	Payload Payload
	Pos     Position
}

func (t Token) String() string {
	if t.Literal != "" {
		return fmt.Sprintf("%s(%q)@%s", t.Kind, t.Literal, t.Pos)
	}
	return fmt.Sprintf("%s@%s", t.Kind, t.Pos)
}
