package cactus

import (
	"bytes"
	"testing"

	"github.com/cactus-lang/cactus/internal/ast"
	"github.com/cactus-lang/cactus/internal/token"
	"github.com/cactus-lang/cactus/internal/value"
	"github.com/stretchr/testify/require"
)

func TestRunScenarioPrintlnArithmetic(t *testing.T) {
	var out bytes.Buffer
	_, diag := Run("println(1 + 2 * 3)", Options{Output: &out})
	require.Nil(t, diag)
	require.Equal(t, "7\n", out.String())
}

func TestRunScenarioWhileLoop(t *testing.T) {
	var out bytes.Buffer
	src := `let x = 0; let i = 0; while i < 10 { x += i; i += 1 }; println(x)`
	_, diag := Run(src, Options{Output: &out})
	require.Nil(t, diag)
	require.Equal(t, "45\n", out.String())
}

func TestRunScenarioFibonacci(t *testing.T) {
	var out bytes.Buffer
	src := `fn fib(n) { if n < 2 { return n } return fib(n-1) + fib(n-2) } println(fib(10))`
	_, diag := Run(src, Options{Output: &out})
	require.Nil(t, diag)
	require.Equal(t, "55\n", out.String())
}

func TestRunScenarioEventEmission(t *testing.T) {
	var out bytes.Buffer
	src := `event Transfer(from, to, amount)
emit Transfer("a", "b", 5)`
	_, diag := Run(src, Options{Output: &out})
	require.Nil(t, diag)
	require.Contains(t, out.String(), "[EVENT] Transfer: ['a', 'b', 5]")
}

func TestRunScenarioConstReassignmentFails(t *testing.T) {
	_, diag := Run("const K = 3\nK = 4", Options{})
	require.NotNil(t, diag)
	require.Contains(t, diag.Message, "K")
	require.Contains(t, diag.Message, "constant")
}

func TestRunBackendEquivalence(t *testing.T) {
	src := `let xs = [1, 2, 3]
let total = 0
for x in xs {
	total = total + x
}
total`
	walked, diag := Run(src, Options{Backend: TreeWalk})
	require.Nil(t, diag)
	compiled, diag := Run(src, Options{Backend: VM})
	require.Nil(t, diag)
	require.Equal(t, walked, compiled)
	require.Equal(t, value.Integer{Value: 6}, walked)
}

func TestRunTokensAndASTHooks(t *testing.T) {
	var tokenCount, astCount int
	_, diag := Run("1 + 2", Options{
		Tokens: func(toks []token.Token) { tokenCount = len(toks) },
		AST:    func(p *ast.Program) { astCount = len(p.Statements) },
	})
	require.Nil(t, diag)
	require.Greater(t, tokenCount, 0)
	require.Equal(t, 1, astCount)
}

func TestStepPreservesEnvironmentAcrossCalls(t *testing.T) {
	state := NewReplState(TreeWalk, nil)
	_, diag, state := Step("let x = 10", state)
	require.Nil(t, diag)
	v, diag, _ := Step("x + 5", state)
	require.Nil(t, diag)
	require.Equal(t, value.Integer{Value: 15}, v)
}

func TestStepResetClearsEnvironment(t *testing.T) {
	state := NewReplState(TreeWalk, nil)
	_, diag, state := Step("let x = 10", state)
	require.Nil(t, diag)
	state.Reset()
	_, diag, _ = Step("x", state)
	require.NotNil(t, diag)
}

func TestBraceDepthTracksContinuation(t *testing.T) {
	require.Equal(t, 0, BraceDepth("1 + 2"))
	require.Equal(t, 1, BraceDepth("fn f() {"))
	require.Equal(t, 0, BraceDepth("fn f() { return 1 }"))
}

func TestDisassembleProducesText(t *testing.T) {
	text, diag := Disassemble("let x = 1 + 2")
	require.Nil(t, diag)
	require.Contains(t, text, "PUSH_CONST")
}
