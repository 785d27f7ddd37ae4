// Package bytecode implements the second execution backend: a compiler
// that lowers the syntax tree to a linear instruction sequence, and a
// stack machine that executes it (spec.md §4.5). It shares the value
// model, environment, and builtin registry defined in internal/value and
// internal/builtins with the tree-walking evaluator in internal/interp.
package bytecode

// Opcode identifies one stack-machine instruction (spec.md §4.5's opcode
// list, extended per SPEC_FULL.md §9 to lower the full language rather
// than the reference's struct/enum/contract/event/impl/method-call/closure
// subset).
type Opcode int

const (
	OpNop Opcode = iota
	OpHalt

	// Stack manipulation.
	OpPushConst
	OpPop
	OpDup

	// Scope bracketing: push/pop a child environment enclosed by the
	// current frame's environment (if/while/for bodies and function
	// bodies each run inside one), matching the tree-walk evaluator's
	// NewEnclosedEnvironment-per-block discipline so a for-in loop
	// variable never leaks past the loop (spec.md §4.4).
	OpEnterScope
	OpExitScope

	// Arithmetic and bitwise, matching spec.md §4.3.
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpPow
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl
	OpShr
	OpBitNot
	OpNeg

	// Comparison and logical NOT. and/or short-circuit is implemented with
	// conditional jumps at the compiler level, not a dedicated opcode
	// (spec.md §4.5).
	OpEq
	OpNeq
	OpLt
	OpGt
	OpLe
	OpGe
	OpNot

	// Name binding.
	OpLoad       // A = const idx of name
	OpStore      // A = const idx of name
	OpDefine     // A = const idx of name; pops value, binds mutable
	OpDefineConst // A = const idx of name; pops value, binds const

	// Control flow. A = target instruction index. The reference's
	// JUMP_IF_FALSE/JUMP_IF_TRUE pop the tested value unconditionally; the
	// and/or lowering emits a matching POP only on its fall-through path
	// (SPEC_FULL.md §9, resolving the reference's open question).
	OpJump
	OpJumpIfFalse
	OpJumpIfTrue

	// Calls.
	OpCall       // A = argument count
	OpMethodCall // A = const idx of method name, B = argument count
	OpReturn

	// Aggregates.
	OpBuildList // A = element count
	OpBuildMap  // A = entry count (2*A values popped: key,value,key,value...)
	OpIndex
	OpStoreIndex

	// Attribute access on structs, enums, and contracts.
	OpGetAttr // A = const idx of name
	OpSetAttr // A = const idx of name

	// Dedicated length opcode replacing the reference's GET_ATTR
	// "__len__" lookup, which would silently return none and loop zero
	// times (spec.md §9 REDESIGN FLAG; SPEC_FULL.md §9).
	OpLen

	// Closures and contracts the reference compiler never lowers
	// (SPEC_FULL.md §9 chooses to lower these rather than restrict the VM
	// to the reference's subset). Struct/enum declarations need no
	// dedicated opcode: their descriptors are ordinary constants bound
	// with PUSH_CONST + DEFINE like any other value.
	OpMakeClosure // A = index into the chunk's proto table
	OpEnterContract
	OpExitContract // A = const idx of contract name; binds the captured scope
	OpEmit         // A = const idx of event name, B = argument count
	OpAwait
)

var opcodeNames = map[Opcode]string{
	OpNop: "NOP", OpHalt: "HALT",
	OpPushConst: "PUSH_CONST", OpPop: "POP", OpDup: "DUP",
	OpEnterScope: "ENTER_SCOPE", OpExitScope: "EXIT_SCOPE",
	OpAdd: "ADD", OpSub: "SUB", OpMul: "MUL", OpDiv: "DIV", OpMod: "MOD", OpPow: "POW",
	OpBitAnd: "BIT_AND", OpBitOr: "BIT_OR", OpBitXor: "BIT_XOR",
	OpShl: "SHL", OpShr: "SHR", OpBitNot: "BIT_NOT", OpNeg: "NEG",
	OpEq: "EQ", OpNeq: "NEQ", OpLt: "LT", OpGt: "GT", OpLe: "LE", OpGe: "GE", OpNot: "NOT",
	OpLoad: "LOAD", OpStore: "STORE", OpDefine: "DEFINE", OpDefineConst: "DEFINE_CONST",
	OpJump: "JUMP", OpJumpIfFalse: "JUMP_IF_FALSE", OpJumpIfTrue: "JUMP_IF_TRUE",
	OpCall: "CALL", OpMethodCall: "METHOD_CALL", OpReturn: "RETURN",
	OpBuildList: "BUILD_LIST", OpBuildMap: "BUILD_MAP", OpIndex: "INDEX", OpStoreIndex: "STORE_INDEX",
	OpGetAttr: "GET_ATTR", OpSetAttr: "SET_ATTR", OpLen: "LEN",
	OpMakeClosure: "MAKE_CLOSURE",
	OpEnterContract: "ENTER_CONTRACT", OpExitContract: "EXIT_CONTRACT", OpEmit: "EMIT",
	OpAwait: "AWAIT",
}

func (op Opcode) String() string {
	if s, ok := opcodeNames[op]; ok {
		return s
	}
	return "UNKNOWN"
}
