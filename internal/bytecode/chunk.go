package bytecode

import (
	"github.com/cactus-lang/cactus/internal/token"
	"github.com/cactus-lang/cactus/internal/value"
)

// Instruction is one decoded instruction: an opcode plus up to two
// operands, meaning dependent on Op (spec.md §4.5).
type Instruction struct {
	Op Opcode
	A  int
	B  int
}

// Chunk is a compiled instruction sequence with its constant pool and a
// parallel position table used to render runtime diagnostics (spec.md
// §4.5: "program counter... final top-of-stack is the program result").
type Chunk struct {
	Code      []Instruction
	Constants []value.Value
	Protos    []*FunctionProto
	Positions []token.Position
}

func newChunk() *Chunk {
	return &Chunk{}
}

func (c *Chunk) emit(op Opcode, a, b int, pos token.Position) int {
	c.Code = append(c.Code, Instruction{Op: op, A: a, B: b})
	c.Positions = append(c.Positions, pos)
	return len(c.Code) - 1
}

func (c *Chunk) addConstant(v value.Value) int {
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1
}

func (c *Chunk) addProto(p *FunctionProto) int {
	c.Protos = append(c.Protos, p)
	return len(c.Protos) - 1
}

// FunctionParam is one compiled parameter: its name, and — when the
// parameter has a default — a tiny chunk that computes the default value
// in the function's closure scope when an argument is missing.
type FunctionParam struct {
	Name    string
	Default *Chunk
}

// FunctionProto is the unbound compiled form of a function or lambda body:
// its own chunk plus its parameter list. MAKE_CLOSURE binds one to the
// compiling frame's environment to produce a callable CompiledFunction
// (spec.md §4.5: "boxes it as a compiled-function constant").
type FunctionProto struct {
	Name       string
	Parameters []FunctionParam
	Chunk      *Chunk
}

// CompiledFunction is a FunctionProto bound to the environment live at its
// MAKE_CLOSURE site — the VM's counterpart to value.UserFunction.
type CompiledFunction struct {
	Proto   *FunctionProto
	Closure *value.Environment
}

func (CompiledFunction) Type() string     { return "FUNCTION" }
func (f CompiledFunction) String() string { return "<function " + f.Proto.Name + ">" }
