package interp

import (
	"bytes"
	"testing"

	"github.com/cactus-lang/cactus/internal/parser"
	"github.com/cactus-lang/cactus/internal/value"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, src string) (string, value.Value) {
	t.Helper()
	p, diag := parser.New(src)
	require.Nil(t, diag)
	prog, diag := p.ParseProgram()
	require.Nil(t, diag)
	var out bytes.Buffer
	in := New(&out)
	result, diag := in.Run(prog, src)
	require.Nil(t, diag, "unexpected diagnostic: %v", diag)
	return out.String(), result
}

func TestFibonacciRecursion(t *testing.T) {
	src := `
fn fib(n) {
	if n < 2 {
		return n
	}
	return fib(n - 1) + fib(n - 2)
}
fib(10)
`
	_, result := run(t, src)
	require.Equal(t, value.Integer{Value: 55}, result)
}

func TestWhileLoopSum(t *testing.T) {
	src := `
let total = 0
let i = 0
while i < 10 {
	total += i
	i += 1
}
total
`
	_, result := run(t, src)
	require.Equal(t, value.Integer{Value: 45}, result)
}

func TestListSortMethod(t *testing.T) {
	src := `
let xs = [3, 1, 2]
xs.sort()
xs
`
	_, result := run(t, src)
	require.Equal(t, "[1, 2, 3]", result.String())
}

func TestEmitRecordsEvent(t *testing.T) {
	src := `
event Transfer(from, to, amount)
emit Transfer("alice", "bob", 10)
`
	out, _ := run(t, src)
	require.Contains(t, out, "[EVENT] Transfer: ['alice', 'bob', 10]")
}

func TestConstReassignmentFails(t *testing.T) {
	src := `
const K = 1
K = 2
`
	p, diag := parser.New(src)
	require.Nil(t, diag)
	prog, diag := p.ParseProgram()
	require.Nil(t, diag)
	var out bytes.Buffer
	in := New(&out)
	_, diag = in.Run(prog, src)
	require.NotNil(t, diag)
	require.Contains(t, diag.Message, "constant")
}

func TestClosureCapturesEnclosingScope(t *testing.T) {
	src := `
fn makeAdder(x) {
	return |y| => x + y
}
let addFive = makeAdder(5)
addFive(3)
`
	_, result := run(t, src)
	require.Equal(t, value.Integer{Value: 8}, result)
}

func TestForInLoopVariableDoesNotLeak(t *testing.T) {
	src := `
let total = 0
for x in [1, 2, 3] {
	total += x
}
total
`
	_, result := run(t, src)
	require.Equal(t, value.Integer{Value: 6}, result)

	leak := src + "x\n"
	p, diag := parser.New(leak)
	require.Nil(t, diag)
	prog, diag := p.ParseProgram()
	require.Nil(t, diag)
	var out bytes.Buffer
	_, diag = New(&out).Run(prog, leak)
	require.NotNil(t, diag)
	require.Contains(t, diag.Message, "undefined name: x")
}

func TestLogicalOperatorsReturnOperandValue(t *testing.T) {
	src := `0 or "fallback"`
	_, result := run(t, src)
	require.Equal(t, value.String{Value: "fallback"}, result)

	src2 := `5 and "second"`
	_, result2 := run(t, src2)
	require.Equal(t, value.String{Value: "second"}, result2)
}

func TestStructFieldAssignmentIsReferenceSemantics(t *testing.T) {
	src := `
struct Counter {
	count
}
let c = Counter(0)
c.count = c.count + 1
c.count
`
	_, result := run(t, src)
	require.Equal(t, value.Integer{Value: 1}, result)
}

func TestBreakStopsLoop(t *testing.T) {
	src := `
let total = 0
for x in [1, 2, 3, 4, 5] {
	if x == 3 {
		break
	}
	total += x
}
total
`
	_, result := run(t, src)
	require.Equal(t, value.Integer{Value: 3}, result)
}
