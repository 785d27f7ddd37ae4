package bytecode

import (
	"bytes"
	"testing"

	"github.com/cactus-lang/cactus/internal/parser"
	"github.com/cactus-lang/cactus/internal/value"
	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, src string) (string, value.Value) {
	t.Helper()
	p, diag := parser.New(src)
	require.Nil(t, diag)
	prog, diag := p.ParseProgram()
	require.Nil(t, diag)
	chunk, diag := Compile(prog, src)
	require.Nil(t, diag, "unexpected compile diagnostic: %v", diag)
	var out bytes.Buffer
	vm := New(&out)
	result, diag := vm.Run(chunk, src)
	require.Nil(t, diag, "unexpected runtime diagnostic: %v", diag)
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
let sum = 0
let i = 0
while i < 10 {
	sum = sum + i
	i = i + 1
}
sum
`
	_, result := run(t, src)
	require.Equal(t, value.Integer{Value: 45}, result)
}

func TestForInLoopVariableDoesNotLeak(t *testing.T) {
	src := `
let sum = 0
for x in [1, 2, 3] {
	sum = sum + x
}
sum
`
	_, result := run(t, src)
	require.Equal(t, value.Integer{Value: 6}, result)

	leak := src + "x\n"
	p, diag := parser.New(leak)
	require.Nil(t, diag)
	prog, diag := p.ParseProgram()
	require.Nil(t, diag)
	chunk, diag := Compile(prog, leak)
	require.Nil(t, diag)
	var out bytes.Buffer
	_, diag = New(&out).Run(chunk, leak)
	require.NotNil(t, diag)
	require.Contains(t, diag.Message, "undefined name: x")
}

func TestBreakStopsLoop(t *testing.T) {
	src := `
let sum = 0
for x in [1, 2, 3, 4, 5] {
	if x == 3 {
		break
	}
	sum = sum + x
}
sum
`
	_, result := run(t, src)
	require.Equal(t, value.Integer{Value: 3}, result)
}

func TestContinueSkipsRemainderOfIteration(t *testing.T) {
	src := `
let sum = 0
for x in [1, 2, 3, 4] {
	if x == 2 {
		continue
	}
	sum = sum + x
}
sum
`
	_, result := run(t, src)
	require.Equal(t, value.Integer{Value: 8}, result)
}

func TestLogicalOperatorsReturnOperandValue(t *testing.T) {
	_, result := run(t, `0 or "fallback"`)
	require.Equal(t, value.String{Value: "fallback"}, result)

	_, result = run(t, `5 and "second"`)
	require.Equal(t, value.String{Value: "second"}, result)
}

func TestClosureCapturesEnclosingScope(t *testing.T) {
	src := `
fn makeAdder(n) {
	fn adder(x) {
		return x + n
	}
	return adder
}
let add5 = makeAdder(5)
add5(3)
`
	_, result := run(t, src)
	require.Equal(t, value.Integer{Value: 8}, result)
}

func TestParameterDefaultEvaluatedWhenArgumentMissing(t *testing.T) {
	src := `
fn greet(name, greeting = "hello") {
	return greeting + " " + name
}
greet("world")
`
	_, result := run(t, src)
	require.Equal(t, value.String{Value: "hello world"}, result)
}

func TestListSortMethod(t *testing.T) {
	_, result := run(t, `[3, 1, 2].sort()`)
	require.Equal(t, "[1, 2, 3]", result.String())
}

func TestStructFieldAssignmentIsReferenceSemantics(t *testing.T) {
	src := `
struct Counter {
	value
}
fn increment(c) {
	c.value = c.value + 1
}
let c = Counter(0)
increment(c)
increment(c)
c.value
`
	_, result := run(t, src)
	require.Equal(t, value.Integer{Value: 2}, result)
}

func TestStructMethodDispatch(t *testing.T) {
	src := `
struct Counter {
	value

	fn increment(self) {
		self.value = self.value + 1
		return self.value
	}
}
let c = Counter(0)
c.increment()
c.increment()
`
	_, result := run(t, src)
	require.Equal(t, value.Integer{Value: 2}, result)
}

func TestEmitRecordsEvent(t *testing.T) {
	src := `
event Transfer(from, to, amount)
emit Transfer("alice", "bob", 10)
`
	out, _ := run(t, src)
	require.Contains(t, out, "Transfer")
}

func TestContractBindsMembers(t *testing.T) {
	src := `
contract Wallet {
	let balance = 100
}
Wallet.balance
`
	_, result := run(t, src)
	require.Equal(t, value.Integer{Value: 100}, result)
}

func TestConstReassignmentFails(t *testing.T) {
	src := `
const x = 1
x = 2
`
	p, diag := parser.New(src)
	require.Nil(t, diag)
	prog, diag := p.ParseProgram()
	require.Nil(t, diag)
	chunk, diag := Compile(prog, src)
	require.Nil(t, diag)
	var out bytes.Buffer
	vm := New(&out)
	_, diag = vm.Run(chunk, src)
	require.NotNil(t, diag)
	require.Contains(t, diag.Message, "constant")
}

func TestReturnOutsideFunctionFailsToCompile(t *testing.T) {
	src := `return 1`
	p, diag := parser.New(src)
	require.Nil(t, diag)
	prog, diag := p.ParseProgram()
	require.Nil(t, diag)
	_, diag = Compile(prog, src)
	require.NotNil(t, diag)
	require.Contains(t, diag.Message, "return outside of function")
}

func TestDisassembleRendersOpcodes(t *testing.T) {
	src := `let x = 1 + 2`
	p, diag := parser.New(src)
	require.Nil(t, diag)
	prog, diag := p.ParseProgram()
	require.Nil(t, diag)
	chunk, diag := Compile(prog, src)
	require.Nil(t, diag)
	text := Disassemble(chunk, "main")
	require.Contains(t, text, "PUSH_CONST")
	require.Contains(t, text, "ADD")
	require.Contains(t, text, "== main ==")
}

// TestDisassembleFibonacciSnapshot snapshots the full disassembly of a
// recursive function, including a nested MAKE_CLOSURE'd proto, the way
// the teacher snapshots fixture output via go-snaps rather than hand
// transcribing the expected instruction listing.
func TestDisassembleFibonacciSnapshot(t *testing.T) {
	src := `
fn fib(n) {
	if n < 2 {
		return n
	}
	return fib(n - 1) + fib(n - 2)
}
fib(5)
`
	p, diag := parser.New(src)
	require.Nil(t, diag)
	prog, diag := p.ParseProgram()
	require.Nil(t, diag)
	chunk, diag := Compile(prog, src)
	require.Nil(t, diag)
	snaps.MatchSnapshot(t, Disassemble(chunk, "fib"))
}
