package bytecode

import (
	"io"

	"github.com/cactus-lang/cactus/internal/builtins"
	"github.com/cactus-lang/cactus/internal/errors"
	"github.com/cactus-lang/cactus/internal/token"
	"github.com/cactus-lang/cactus/internal/value"
)

// frame is one call's activation record: the chunk being executed, the
// program counter into it, and a stack of lexical scopes opened by
// ENTER_SCOPE/ENTER_CONTRACT (spec.md §4.5: "frame stack (each frame =
// name→value mapping)" — generalized to a scope stack so block scoping
// matches the tree-walk evaluator's NewEnclosedEnvironment discipline).
type frame struct {
	chunk  *Chunk
	pc     int
	scopes []*value.Environment
}

func (f *frame) env() *value.Environment { return f.scopes[len(f.scopes)-1] }

func (f *frame) pushScope() {
	f.scopes = append(f.scopes, value.NewEnclosedEnvironment(f.env()))
}

func (f *frame) popScope() *value.Environment {
	top := f.scopes[len(f.scopes)-1]
	f.scopes = f.scopes[:len(f.scopes)-1]
	return top
}

// VM is the stack machine (spec.md §4.5): an operand stack, a frame
// stack, and the globals/builtins/event-emitter contract it shares with
// the tree-walking evaluator.
type VM struct {
	Globals *value.Environment
	Emitter *value.Emitter
	Output  io.Writer
	stack   []value.Value
	frames  []*frame
	source  string
}

// New creates a VM with built-ins registered at global scope.
func New(out io.Writer) *VM {
	globals := value.NewEnvironment()
	emitter := value.NewEmitter(out)
	builtins.Register(globals, out)
	return &VM{Globals: globals, Emitter: emitter, Output: out}
}

func (vm *VM) push(v value.Value) { vm.stack = append(vm.stack, v) }

func (vm *VM) pop() value.Value {
	n := len(vm.stack)
	v := vm.stack[n-1]
	vm.stack = vm.stack[:n-1]
	return v
}

func (vm *VM) top() *frame { return vm.frames[len(vm.frames)-1] }

func (vm *VM) fail(format string, args ...any) *errors.Diagnostic {
	f := vm.top()
	pos := token.Position{Line: 1, Column: 1}
	if f.pc-1 >= 0 && f.pc-1 < len(f.chunk.Positions) {
		pos = f.chunk.Positions[f.pc-1]
	}
	return errors.New(errors.RuntimeError, pos, vm.source, format, args...)
}

// Run executes chunk to completion, returning the final top-of-stack
// value (spec.md §4.5: "the final top-of-stack is the program result").
func (vm *VM) Run(chunk *Chunk, source string) (value.Value, *errors.Diagnostic) {
	vm.source = source
	vm.stack = nil
	vm.frames = []*frame{{chunk: chunk, scopes: []*value.Environment{vm.Globals}}}

	for len(vm.frames) > 0 {
		f := vm.top()
		if f.pc >= len(f.chunk.Code) {
			vm.frames = vm.frames[:len(vm.frames)-1]
			continue
		}
		instr := f.chunk.Code[f.pc]
		f.pc++
		if diag := vm.execute(instr, f); diag != nil {
			return nil, diag
		}
	}
	if len(vm.stack) == 0 {
		return value.Nil, nil
	}
	return vm.stack[len(vm.stack)-1], nil
}

func (vm *VM) nameAt(f *frame, idx int) string {
	return f.chunk.Constants[idx].(value.String).Value
}

func (vm *VM) execute(instr Instruction, f *frame) *errors.Diagnostic {
	switch instr.Op {
	case OpNop:
	case OpHalt:
		vm.frames = nil
	case OpPushConst:
		vm.push(f.chunk.Constants[instr.A])
	case OpPop:
		vm.pop()
	case OpDup:
		vm.push(vm.stack[len(vm.stack)-1])

	case OpEnterScope:
		f.pushScope()
	case OpExitScope:
		f.popScope()

	case OpAdd, OpSub, OpMul, OpDiv, OpMod, OpPow:
		return vm.binaryArith(instr.Op)
	case OpBitAnd, OpBitOr, OpBitXor, OpShl, OpShr:
		return vm.binaryBitwise(instr.Op)
	case OpNeg:
		v, err := value.Negate(vm.pop())
		if err != nil {
			return vm.fail("%s", err)
		}
		vm.push(v)
	case OpBitNot:
		v, err := value.BitwiseNot(vm.pop())
		if err != nil {
			return vm.fail("%s", err)
		}
		vm.push(v)
	case OpNot:
		vm.push(value.Boolean{Value: !value.Truthy(vm.pop())})

	case OpEq, OpNeq, OpLt, OpGt, OpLe, OpGe:
		return vm.compare(instr.Op)

	case OpLoad:
		name := vm.nameAt(f, instr.A)
		v, ok := f.env().Get(name)
		if !ok {
			return vm.fail("undefined name: %s", name)
		}
		vm.push(v)
	case OpStore:
		name := vm.nameAt(f, instr.A)
		if err := f.env().Assign(name, vm.pop()); err != nil {
			return vm.fail("%s", err)
		}
	case OpDefine:
		f.env().Define(vm.nameAt(f, instr.A), vm.pop(), false)
	case OpDefineConst:
		f.env().Define(vm.nameAt(f, instr.A), vm.pop(), true)

	case OpJump:
		f.pc = instr.A
	case OpJumpIfFalse:
		if !value.Truthy(vm.pop()) {
			f.pc = instr.A
		}
	case OpJumpIfTrue:
		if value.Truthy(vm.pop()) {
			f.pc = instr.A
		}

	case OpCall:
		return vm.call(instr.A)
	case OpMethodCall:
		return vm.methodCall(f, instr.A, instr.B)
	case OpReturn:
		vm.frames = vm.frames[:len(vm.frames)-1]

	case OpBuildList:
		elems := make([]value.Value, instr.A)
		for i := instr.A - 1; i >= 0; i-- {
			elems[i] = vm.pop()
		}
		vm.push(value.NewList(elems))
	case OpBuildMap:
		return vm.buildMap(instr.A)
	case OpIndex:
		return vm.index()
	case OpStoreIndex:
		return vm.storeIndex()

	case OpGetAttr:
		return vm.getAttr(f, instr.A)
	case OpSetAttr:
		return vm.setAttr(f, instr.A)

	case OpLen:
		n, err := value.Len(vm.pop())
		if err != nil {
			return vm.fail("%s", err)
		}
		vm.push(value.Integer{Value: int64(n)})

	case OpMakeClosure:
		proto := f.chunk.Protos[instr.A]
		vm.push(CompiledFunction{Proto: proto, Closure: f.env()})

	case OpEnterContract:
		f.pushScope()
	case OpExitContract:
		name := vm.nameAt(f, instr.A)
		captured := f.popScope()
		f.env().Define(name, value.ContractValue{Name: name, Env: captured}, false)

	case OpEmit:
		return vm.emit(f, instr.A, instr.B)

	case OpAwait:
		v := vm.pop()
		if p, ok := v.(value.PendingResult); ok {
			vm.push(p.Resolve())
		} else {
			vm.push(v)
		}

	default:
		return vm.fail("unhandled opcode %s", instr.Op)
	}
	return nil
}

func (vm *VM) binaryArith(op Opcode) *errors.Diagnostic {
	right := vm.pop()
	left := vm.pop()
	sym := map[Opcode]string{
		OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpMod: "%", OpPow: "**",
	}[op]
	v, err := value.Arith(sym, left, right)
	if err != nil {
		return vm.fail("%s", err)
	}
	vm.push(v)
	return nil
}

func (vm *VM) binaryBitwise(op Opcode) *errors.Diagnostic {
	right := vm.pop()
	left := vm.pop()
	sym := map[Opcode]string{
		OpBitAnd: "&", OpBitOr: "|", OpBitXor: "^", OpShl: "<<", OpShr: ">>",
	}[op]
	v, err := value.Bitwise(sym, left, right)
	if err != nil {
		return vm.fail("%s", err)
	}
	vm.push(v)
	return nil
}

func (vm *VM) compare(op Opcode) *errors.Diagnostic {
	right := vm.pop()
	left := vm.pop()
	sym := map[Opcode]string{
		OpEq: "==", OpNeq: "!=", OpLt: "<", OpGt: ">", OpLe: "<=", OpGe: ">=",
	}[op]
	v, err := value.Compare(sym, left, right)
	if err != nil {
		return vm.fail("%s", err)
	}
	vm.push(v)
	return nil
}

func (vm *VM) buildMap(n int) *errors.Diagnostic {
	pairs := make([]value.Value, 2*n)
	for i := 2*n - 1; i >= 0; i-- {
		pairs[i] = vm.pop()
	}
	m := value.NewMap()
	for i := 0; i < len(pairs); i += 2 {
		key, err := value.KeyOf(pairs[i])
		if err != nil {
			return vm.fail("%s", err)
		}
		m.Set(key, pairs[i+1])
	}
	vm.push(m)
	return nil
}

func (vm *VM) index() *errors.Diagnostic {
	idx := vm.pop()
	obj := vm.pop()
	switch o := obj.(type) {
	case value.List:
		i, ok := idx.(value.Integer)
		if !ok {
			return vm.fail("list index must be an integer, got %s", idx.Type())
		}
		elems := *o.Elements
		if i.Value < 0 || int(i.Value) >= len(elems) {
			return vm.fail("list index out of bounds: %d", i.Value)
		}
		vm.push(elems[i.Value])
	case value.Map:
		key, err := value.KeyOf(idx)
		if err != nil {
			return vm.fail("%s", err)
		}
		v, ok := o.Get(key)
		if !ok {
			return vm.fail("key not found: %s", key)
		}
		vm.push(v)
	case value.String:
		i, ok := idx.(value.Integer)
		if !ok {
			return vm.fail("string index must be an integer, got %s", idx.Type())
		}
		runes := []rune(o.Value)
		if i.Value < 0 || int(i.Value) >= len(runes) {
			return vm.fail("string index out of bounds: %d", i.Value)
		}
		vm.push(value.String{Value: string(runes[i.Value])})
	default:
		return vm.fail("value of kind %s does not support indexing", obj.Type())
	}
	return nil
}

func (vm *VM) storeIndex() *errors.Diagnostic {
	idx := vm.pop()
	obj := vm.pop()
	val := vm.pop()
	switch o := obj.(type) {
	case value.List:
		i, ok := idx.(value.Integer)
		if !ok {
			return vm.fail("list index must be an integer, got %s", idx.Type())
		}
		elems := *o.Elements
		if i.Value < 0 || int(i.Value) >= len(elems) {
			return vm.fail("list index out of bounds: %d", i.Value)
		}
		elems[i.Value] = val
	case value.Map:
		key, err := value.KeyOf(idx)
		if err != nil {
			return vm.fail("%s", err)
		}
		o.Set(key, val)
	default:
		return vm.fail("value of kind %s does not support index assignment", obj.Type())
	}
	return nil
}

func (vm *VM) getAttr(f *frame, nameIdx int) *errors.Diagnostic {
	name := vm.nameAt(f, nameIdx)
	obj := vm.pop()
	switch o := obj.(type) {
	case value.StructInstance:
		if v, ok := o.Get(name); ok {
			vm.push(v)
			return nil
		}
		return vm.fail("struct %s has no member %q", o.Descriptor.Name, name)
	case value.EnumDescriptor:
		if v, ok := o.Variants[name]; ok {
			vm.push(value.String{Value: v})
			return nil
		}
		return vm.fail("enum %s has no variant %q", o.Name, name)
	case value.ContractValue:
		v, ok := o.Env.Get(name)
		if !ok {
			return vm.fail("contract %s has no member %q", o.Name, name)
		}
		vm.push(v)
		return nil
	default:
		return vm.fail("value of kind %s has no member %q", obj.Type(), name)
	}
}

func (vm *VM) setAttr(f *frame, nameIdx int) *errors.Diagnostic {
	name := vm.nameAt(f, nameIdx)
	obj := vm.pop()
	val := vm.pop()
	inst, ok := obj.(value.StructInstance)
	if !ok {
		return vm.fail("value of kind %s has no member %q", obj.Type(), name)
	}
	inst.Set(name, val)
	return nil
}

func (vm *VM) call(argc int) *errors.Diagnostic {
	args := make([]value.Value, argc)
	for i := argc - 1; i >= 0; i-- {
		args[i] = vm.pop()
	}
	callee := vm.pop()
	switch c := callee.(type) {
	case value.HostFunction:
		v, err := c.Fn(args)
		if err != nil {
			return vm.fail("%s", err)
		}
		vm.push(v)
		return nil
	case CompiledFunction:
		return vm.invoke(c, args)
	case value.StructDescriptor:
		vm.push(value.NewStructInstance(&c, args))
		return nil
	default:
		return vm.fail("value of kind %s is not callable", callee.Type())
	}
}

// invoke pushes a new frame for fn bound to args, filling any missing
// trailing argument from its parameter's default chunk evaluated in fn's
// closure scope (spec.md §4.4).
func (vm *VM) invoke(fn CompiledFunction, args []value.Value) *errors.Diagnostic {
	callEnv := value.NewEnclosedEnvironment(fn.Closure)
	for i, p := range fn.Proto.Parameters {
		if i < len(args) {
			callEnv.Define(p.Name, args[i], false)
			continue
		}
		if p.Default != nil {
			v, diag := vm.evalStandalone(p.Default, fn.Closure)
			if diag != nil {
				return diag
			}
			callEnv.Define(p.Name, v, false)
			continue
		}
		return vm.fail("function %s: missing argument %q", fn.Proto.Name, p.Name)
	}
	vm.frames = append(vm.frames, &frame{chunk: fn.Proto.Chunk, scopes: []*value.Environment{callEnv}})
	return nil
}

// evalStandalone runs a parameter-default chunk to completion in env,
// independent of the main frame stack, and returns its single result.
func (vm *VM) evalStandalone(chunk *Chunk, env *value.Environment) (value.Value, *errors.Diagnostic) {
	savedFrames, savedStack := vm.frames, vm.stack
	vm.frames = []*frame{{chunk: chunk, scopes: []*value.Environment{env}}}
	vm.stack = nil
	var result value.Value = value.Nil
	var diag *errors.Diagnostic
	for len(vm.frames) > 0 {
		f := vm.top()
		if f.pc >= len(f.chunk.Code) {
			vm.frames = vm.frames[:len(vm.frames)-1]
			continue
		}
		instr := f.chunk.Code[f.pc]
		f.pc++
		if diag = vm.execute(instr, f); diag != nil {
			break
		}
	}
	if diag == nil && len(vm.stack) > 0 {
		result = vm.stack[len(vm.stack)-1]
	}
	vm.frames, vm.stack = savedFrames, savedStack
	return result, diag
}

func (vm *VM) methodCall(f *frame, nameIdx, argc int) *errors.Diagnostic {
	name := vm.nameAt(f, nameIdx)
	args := make([]value.Value, argc)
	for i := argc - 1; i >= 0; i-- {
		args[i] = vm.pop()
	}
	receiver := vm.pop()

	if inst, ok := receiver.(value.StructInstance); ok {
		mangled := inst.Descriptor.Name + "." + name
		if fnv, ok := f.env().Get(mangled); ok {
			if fn, ok := fnv.(CompiledFunction); ok {
				callArgs := append([]value.Value{receiver}, args...)
				return vm.invoke(fn, callArgs)
			}
		}
	}

	v, ok, err := builtins.DispatchMethod(receiver, name, args)
	if err != nil {
		return vm.fail("%s", err)
	}
	if !ok {
		return vm.fail("value of kind %s has no method %q", receiver.Type(), name)
	}
	vm.push(v)
	return nil
}

func (vm *VM) emit(f *frame, nameIdx, argc int) *errors.Diagnostic {
	name := vm.nameAt(f, nameIdx)
	args := make([]value.Value, argc)
	for i := argc - 1; i >= 0; i-- {
		args[i] = vm.pop()
	}
	vm.Emitter.Emit(name, args)
	return nil
}
