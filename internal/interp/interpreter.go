// Package interp implements the tree-walking evaluator: one of the two
// execution backends sharing the value model, environment, and builtin
// registry defined in internal/value and internal/builtins (spec.md §4.4).
package interp

import (
	"fmt"
	"io"

	"github.com/cactus-lang/cactus/internal/ast"
	"github.com/cactus-lang/cactus/internal/builtins"
	"github.com/cactus-lang/cactus/internal/errors"
	"github.com/cactus-lang/cactus/internal/token"
	"github.com/cactus-lang/cactus/internal/value"
)

// signalKind tags a non-local control-flow unwind (spec.md §9's
// {Value | Return | Break | Continue | Fail} strategy). Each statement
// executor returns a result carrying one of these tags instead of
// panicking or using Go's native control flow, so loops and calls simply
// inspect the tag.
type signalKind int

const (
	signalNone signalKind = iota
	signalReturn
	signalBreak
	signalContinue
)

// result is what every statement execution produces: a value (for
// expression statements) plus a control-flow signal the caller must
// honor before continuing.
type result struct {
	value  value.Value
	signal signalKind
}

func normal(v value.Value) result { return result{value: v, signal: signalNone} }

// Interpreter walks the syntax tree directly, carrying a current
// environment pointer (spec.md §4.4).
type Interpreter struct {
	Globals *value.Environment
	Emitter *value.Emitter
	Output  io.Writer
	source  string
}

// New creates an Interpreter with built-ins registered at global scope and
// output/event sink wired to out.
func New(out io.Writer) *Interpreter {
	globals := value.NewEnvironment()
	emitter := value.NewEmitter(out)
	builtins.Register(globals, out)
	return &Interpreter{Globals: globals, Emitter: emitter, Output: out}
}

// Run executes program's top-level statements in order, returning the
// last statement's value (or none), or the first runtime failure
// (spec.md §4.4).
func (in *Interpreter) Run(program *ast.Program, source string) (value.Value, *errors.Diagnostic) {
	in.source = source
	env := in.Globals
	var last value.Value = value.Nil
	for _, stmt := range program.Statements {
		res, diag := in.execStatement(stmt, env)
		if diag != nil {
			return nil, diag
		}
		switch res.signal {
		case signalReturn:
			return nil, in.fail(stmt.Pos(), "return outside of function")
		case signalBreak, signalContinue:
			return nil, in.fail(stmt.Pos(), "%s outside of loop", signalName(res.signal))
		}
		last = res.value
	}
	return last, nil
}

func signalName(s signalKind) string {
	if s == signalBreak {
		return "break"
	}
	return "continue"
}

func (in *Interpreter) fail(pos token.Position, format string, args ...any) *errors.Diagnostic {
	return errors.New(errors.RuntimeError, pos, in.source, format, args...)
}
