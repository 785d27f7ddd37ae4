package ast

import "github.com/cactus-lang/cactus/internal/token"

func (*ExpressionStatement) statementNode() {}
func (*VarDecl) statementNode()             {}
func (*Assignment) statementNode()          {}
func (*Block) statementNode()               {}
func (*IfStatement) statementNode()         {}
func (*WhileStatement) statementNode()      {}
func (*ForInStatement) statementNode()      {}
func (*BreakStatement) statementNode()      {}
func (*ContinueStatement) statementNode()   {}
func (*ReturnStatement) statementNode()     {}
func (*FuncDecl) statementNode()            {}
func (*StructDecl) statementNode()          {}
func (*EnumDecl) statementNode()            {}
func (*ContractDecl) statementNode()        {}
func (*EventDecl) statementNode()           {}
func (*EmitStatement) statementNode()       {}
func (*ImplBlock) statementNode()           {}

// ExpressionStatement evaluates an expression for its value/side effects.
type ExpressionStatement struct {
	token.Position
	Value Expression
}

// VarDecl is `let`/`const name[: type] [= initializer]`.
type VarDecl struct {
	token.Position
	Name        string
	Type        string
	Initializer Expression
	Const       bool
}

// Assignment is `target op= value` where target is an identifier, index
// access, or member access (spec.md §4.2 restricts valid targets).
type Assignment struct {
	token.Position
	Target   Expression
	Operator token.Kind
	Value    Expression
}

// Block is an ordered sequence of statements that introduces a new scope.
type Block struct {
	token.Position
	Statements []Statement
}

// ElifClause is one `elif condition { body }` arm.
type ElifClause struct {
	Condition Expression
	Body      *Block
}

// IfStatement is `if cond { } elif cond { } else { }`.
type IfStatement struct {
	token.Position
	Condition Expression
	Then      *Block
	Elifs     []ElifClause
	Else      *Block
}

// WhileStatement is `while condition { body }`.
type WhileStatement struct {
	token.Position
	Condition Expression
	Body      *Block
}

// ForInStatement is `for var in iterable { body }`.
type ForInStatement struct {
	token.Position
	Variable string
	Iterable Expression
	Body     *Block
}

// BreakStatement unwinds to the innermost enclosing loop.
type BreakStatement struct {
	token.Position
}

// ContinueStatement unwinds to the innermost enclosing loop's next iteration.
type ContinueStatement struct {
	token.Position
}

// ReturnStatement unwinds to the innermost enclosing function call.
type ReturnStatement struct {
	token.Position
	Value Expression // nil when bare `return`
}

// FuncDecl is a named function declaration.
type FuncDecl struct {
	token.Position
	Name       string
	Parameters []Parameter
	ReturnType string
	Body       *Block
	Async      bool
}

// StructField is one (name, type-string) entry of a struct's field list.
type StructField struct {
	Name string
	Type string
}

// StructDecl declares a struct type with an ordered field list and any
// inline methods that follow the fields in the same body (spec.md §4.2:
// "if an fn appears inside the struct body the field list ends").
type StructDecl struct {
	token.Position
	Name    string
	Fields  []StructField
	Methods []*FuncDecl
}

// EnumDecl declares an enum type with ordered variant names.
type EnumDecl struct {
	token.Position
	Name     string
	Variants []string
}

// ContractDecl declares a `contract` block, which executes its body in a
// fresh child scope and binds a handle retaining that scope (spec.md §4.4).
type ContractDecl struct {
	token.Position
	Name string
	Body *Block
}

// EventDecl declares an event schema with an ordered field list.
type EventDecl struct {
	token.Position
	Name   string
	Fields []StructField
}

// EmitStatement appends arguments to the process-wide event log under the
// named event and produces the `[EVENT] ...` side effect (spec.md §6).
type EmitStatement struct {
	token.Position
	Event     string
	Arguments []Expression
}

// ImplBlock defines methods for a named type, registered under the mangled
// `TypeName.method` dispatch key (spec.md §4.4).
type ImplBlock struct {
	token.Position
	TypeName string
	Methods  []*FuncDecl
}
