package parser

import (
	"testing"

	"github.com/cactus-lang/cactus/internal/ast"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	p, diag := New(src)
	require.Nil(t, diag)
	prog, diag := p.ParseProgram()
	require.Nil(t, diag, "parse error: %v", diag)
	return prog
}

func exprOf(t *testing.T, prog *ast.Program) ast.Expression {
	t.Helper()
	require.Len(t, prog.Statements, 1)
	stmt, ok := prog.Statements[0].(*ast.ExpressionStatement)
	require.True(t, ok)
	return stmt.Value
}

func TestParserPrecedenceAdditiveBeforeMultiplicative(t *testing.T) {
	prog := mustParse(t, "1 + 2 * 3")
	bin := exprOf(t, prog).(*ast.BinaryOp)
	require.Equal(t, "+", bin.Operator.String())
	right := bin.Right.(*ast.BinaryOp)
	require.Equal(t, "*", right.Operator.String())
}

func TestParserPowerIsRightAssociative(t *testing.T) {
	prog := mustParse(t, "2 ** 3 ** 2")
	bin := exprOf(t, prog).(*ast.BinaryOp)
	require.Equal(t, "**", bin.Operator.String())
	_, leftIsInt := bin.Left.(*ast.IntegerLiteral)
	require.True(t, leftIsInt)
	right, ok := bin.Right.(*ast.BinaryOp)
	require.True(t, ok, "2 ** 3 ** 2 must associate to the right")
	require.Equal(t, "**", right.Operator.String())
}

func TestParserNotLooserThanComparison(t *testing.T) {
	prog := mustParse(t, "not 0 == 1")
	unary := exprOf(t, prog).(*ast.UnaryOp)
	_, ok := unary.Operand.(*ast.ComparisonOp)
	require.True(t, ok, "not should wrap the whole comparison")
}

func TestParserPostfixChainTextualOrder(t *testing.T) {
	prog := mustParse(t, "a.b[0](1)")
	call := exprOf(t, prog).(*ast.Call)
	idx := call.Callee.(*ast.IndexAccess)
	member := idx.Object.(*ast.MemberAccess)
	_, ok := member.Object.(*ast.Identifier)
	require.True(t, ok)
}

func TestParserMethodCallVsMemberAccess(t *testing.T) {
	prog := mustParse(t, "xs.sort()")
	_, ok := exprOf(t, prog).(*ast.MethodCall)
	require.True(t, ok)

	prog = mustParse(t, "xs.length")
	_, ok = exprOf(t, prog).(*ast.MemberAccess)
	require.True(t, ok)
}

func TestParserAssignmentTargets(t *testing.T) {
	for _, src := range []string{"x = 1", "xs[0] = 1", "obj.field = 1"} {
		p, diag := New(src)
		require.Nil(t, diag)
		_, diag = p.ParseProgram()
		require.Nil(t, diag, "src=%q", src)
	}
}

func TestParserInvalidAssignmentTarget(t *testing.T) {
	p, diag := New("1 + 2 = 3")
	require.Nil(t, diag)
	_, diag = p.ParseProgram()
	require.NotNil(t, diag)
}

func TestParserForRequiresIn(t *testing.T) {
	p, diag := New("for x 0 { }")
	require.Nil(t, diag)
	_, diag = p.ParseProgram()
	require.NotNil(t, diag)
}

func TestParserStructFieldsThenMethods(t *testing.T) {
	prog := mustParse(t, `struct Point {
		x: int
		y: int
		fn sum(self) { return self.x + self.y }
	}`)
	decl := prog.Statements[0].(*ast.StructDecl)
	require.Len(t, decl.Fields, 2)
	require.Len(t, decl.Methods, 1)
	require.Equal(t, "sum", decl.Methods[0].Name)
}

func TestParserEnumEventContractEmit(t *testing.T) {
	prog := mustParse(t, `
		enum Color { Red, Green, Blue }
		event Transfer(from: string, to: string, amount: int)
		contract Bank { let balance = 0 }
		emit Transfer("a", "b", 5)
	`)
	require.Len(t, prog.Statements, 4)
	enumDecl := prog.Statements[0].(*ast.EnumDecl)
	require.Equal(t, []string{"Red", "Green", "Blue"}, enumDecl.Variants)
	eventDecl := prog.Statements[1].(*ast.EventDecl)
	require.Len(t, eventDecl.Fields, 3)
	_ = prog.Statements[2].(*ast.ContractDecl)
	emit := prog.Statements[3].(*ast.EmitStatement)
	require.Equal(t, "Transfer", emit.Event)
	require.Len(t, emit.Arguments, 3)
}

func TestParserDeterminism(t *testing.T) {
	src := "let x = 1 + 2 * (3 - 4) / 5 % 6\nif x > 0 { println(x) } else { println(0) }"
	p1, _ := New(src)
	prog1, diag1 := p1.ParseProgram()
	require.Nil(t, diag1)
	p2, _ := New(src)
	prog2, diag2 := p2.ParseProgram()
	require.Nil(t, diag2)
	require.Equal(t, prog1, prog2)
}

func TestParserNewlinesAreNeverRequired(t *testing.T) {
	oneLine := mustParse(t, "let x = 1 let y = 2")
	multiLine := mustParse(t, "let x = 1\nlet y = 2\n")
	require.Len(t, oneLine.Statements, 2)
	require.Len(t, multiLine.Statements, 2)
}

func TestParserLambda(t *testing.T) {
	prog := mustParse(t, "let add = |a, b| => a + b")
	decl := prog.Statements[0].(*ast.VarDecl)
	lambda := decl.Initializer.(*ast.Lambda)
	require.Len(t, lambda.Parameters, 2)
}
