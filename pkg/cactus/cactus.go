// Package cactus is the public collaborator surface for the CactUScript
// core: a single-shot Run and an incremental REPL Step, each returning a
// value plus a diagnostic rather than a bare error (spec.md §1, §6).
package cactus

import (
	"io"

	"github.com/cactus-lang/cactus/internal/ast"
	"github.com/cactus-lang/cactus/internal/bytecode"
	"github.com/cactus-lang/cactus/internal/errors"
	"github.com/cactus-lang/cactus/internal/interp"
	"github.com/cactus-lang/cactus/internal/lexer"
	"github.com/cactus-lang/cactus/internal/parser"
	"github.com/cactus-lang/cactus/internal/token"
	"github.com/cactus-lang/cactus/internal/value"
)

// Backend selects which of the two execution engines runs the program
// (spec.md §4.5).
type Backend int

const (
	// TreeWalk is the default backend: a direct recursive evaluation of
	// the syntax tree.
	TreeWalk Backend = iota
	// VM compiles to bytecode and runs it on the stack machine.
	VM
)

// Options configures a single Run call. The zero value runs the
// tree-walk backend with output discarded.
type Options struct {
	// Backend selects the execution engine.
	Backend Backend
	// Output receives printed output and `[EVENT] ...` lines. Defaults to
	// io.Discard when nil.
	Output io.Writer
	// Tokens, when non-nil, is handed the full token stream before
	// parsing (the CLI's `--tokens` flag).
	Tokens func([]token.Token)
	// AST, when non-nil, is handed the parsed program before execution
	// (the CLI's `--ast` flag).
	AST func(*ast.Program)
	// Bytecode, when non-nil, is handed the compiled chunk before
	// execution; only meaningful with Backend == VM (the CLI's
	// `--bytecode` flag).
	Bytecode func(*bytecode.Chunk)
}

// Run lexes, parses, and executes source once, returning the last
// statement's value (spec.md §1, §6).
func Run(source string, opts Options) (value.Value, *errors.Diagnostic) {
	out := opts.Output
	if out == nil {
		out = io.Discard
	}

	if opts.Tokens != nil {
		toks, diag := lexer.New(source).Tokenize()
		if diag != nil {
			return nil, diag
		}
		opts.Tokens(toks)
	}

	p, diag := parser.New(source)
	if diag != nil {
		return nil, diag
	}
	prog, diag := p.ParseProgram()
	if diag != nil {
		return nil, diag
	}
	if opts.AST != nil {
		opts.AST(prog)
	}

	switch opts.Backend {
	case VM:
		chunk, diag := bytecode.Compile(prog, source)
		if diag != nil {
			return nil, diag
		}
		if opts.Bytecode != nil {
			opts.Bytecode(chunk)
		}
		return bytecode.New(out).Run(chunk, source)
	default:
		return interp.New(out).Run(prog, source)
	}
}

// ReplState carries what must survive between successive Step calls in an
// interactive session: the live environment/event log (so later
// statements see earlier bindings and emissions). It holds no brace-depth
// counter; the REPL prompt's choice between `>>> ` and `... ` comes from
// BraceDepth over the buffered source (spec.md §6).
type ReplState struct {
	Backend Backend
	Output  io.Writer

	interp *interp.Interpreter
	vm     *bytecode.VM
}

// NewReplState creates a fresh session: a new global environment and
// event log, with output wired to out.
func NewReplState(backend Backend, out io.Writer) *ReplState {
	if out == nil {
		out = io.Discard
	}
	return &ReplState{
		Backend: backend,
		Output:  out,
		interp:  interp.New(out),
		vm:      bytecode.New(out),
	}
}

// Reset rebuilds the session's environment and event log in place,
// implementing the REPL's `reset` meta-command (spec.md §6).
func (s *ReplState) Reset() {
	s.interp = interp.New(s.Output)
	s.vm = bytecode.New(s.Output)
}

// BraceDepth reports the unmatched `{` count in source, letting the REPL
// decide whether to keep reading continuation lines before evaluating
// (spec.md §6: prompt `... ` while the count is positive).
func BraceDepth(source string) int {
	depth := 0
	for _, r := range source {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
		}
	}
	return depth
}

// Step parses and runs one top-level chunk of source against state's live
// environment, returning the resulting value, any diagnostic, and the
// (mutated in place, also returned for convenience) state. A diagnostic
// never invalidates state: the REPL is expected to print it and continue
// the session (spec.md §7).
func Step(source string, state *ReplState) (value.Value, *errors.Diagnostic, *ReplState) {
	if state == nil {
		state = NewReplState(TreeWalk, io.Discard)
	}

	p, diag := parser.New(source)
	if diag != nil {
		return nil, diag, state
	}
	prog, diag := p.ParseProgram()
	if diag != nil {
		return nil, diag, state
	}

	if state.Backend == VM {
		chunk, diag := bytecode.Compile(prog, source)
		if diag != nil {
			return nil, diag, state
		}
		v, diag := state.vm.Run(chunk, source)
		return v, diag, state
	}
	v, diag := state.interp.Run(prog, source)
	return v, diag, state
}

// Tokenize exposes the lexer directly for the CLI's `--tokens` mode
// outside of a full Run (e.g. the REPL's `tokens` toggle inspecting a
// single line before evaluating it).
func Tokenize(source string) ([]token.Token, *errors.Diagnostic) {
	return lexer.New(source).Tokenize()
}

// Parse exposes the parser directly for the CLI's `--ast` mode.
func Parse(source string) (*ast.Program, *errors.Diagnostic) {
	p, diag := parser.New(source)
	if diag != nil {
		return nil, diag
	}
	return p.ParseProgram()
}

// Disassemble renders a VM-backend program's compiled instructions as
// text, for the CLI's `--bytecode` mode.
func Disassemble(source string) (string, *errors.Diagnostic) {
	prog, diag := Parse(source)
	if diag != nil {
		return "", diag
	}
	chunk, diag := bytecode.Compile(prog, source)
	if diag != nil {
		return "", diag
	}
	return bytecode.Disassemble(chunk, "main"), nil
}
