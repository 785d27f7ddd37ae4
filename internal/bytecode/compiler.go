package bytecode

import (
	"github.com/cactus-lang/cactus/internal/ast"
	"github.com/cactus-lang/cactus/internal/errors"
	"github.com/cactus-lang/cactus/internal/token"
	"github.com/cactus-lang/cactus/internal/value"
)

// Compiler lowers a syntax tree to a Chunk (spec.md §4.5). One Compiler
// instance handles exactly one function body (or the top-level program);
// nested function/lambda bodies get their own Compiler over a fresh Chunk.
type Compiler struct {
	chunk      *Chunk
	source     string
	scopeDepth int
	loops      []*loopContext
	inFunction bool
}

type loopContext struct {
	baseDepth     int
	breakJumps    []int
	continueJumps []int
}

// Compile lowers prog into a top-level Chunk. Every statement pushes
// exactly one value; between statements the previous value is discarded,
// so the final top-of-stack is the program result (spec.md §4.5).
func Compile(prog *ast.Program, source string) (*Chunk, *errors.Diagnostic) {
	c := &Compiler{chunk: newChunk(), source: source}
	for i, stmt := range prog.Statements {
		if diag := c.compileStatement(stmt); diag != nil {
			return nil, diag
		}
		if i < len(prog.Statements)-1 {
			c.emit(OpPop, 0, 0, stmt.Pos())
		}
	}
	if len(prog.Statements) == 0 {
		c.emitConst(value.Nil, token.Position{Line: 1, Column: 1})
	}
	return c.chunk, nil
}

func (c *Compiler) emit(op Opcode, a, b int, pos token.Position) int {
	return c.chunk.emit(op, a, b, pos)
}

func (c *Compiler) emitConst(v value.Value, pos token.Position) int {
	idx := c.chunk.addConstant(v)
	return c.emit(OpPushConst, idx, 0, pos)
}

func (c *Compiler) nameConst(name string) int {
	return c.chunk.addConstant(value.String{Value: name})
}

func (c *Compiler) patchJump(idx int, target int) {
	c.chunk.Code[idx].A = target
}

func (c *Compiler) here() int { return len(c.chunk.Code) }

func (c *Compiler) fail(pos token.Position, format string, args ...any) *errors.Diagnostic {
	return errors.New(errors.ParseError, pos, c.source, format, args...)
}

// compileStatement compiles stmt so it pushes exactly one value, except
// break/continue/return, which transfer control and push nothing —
// callers must not compile further statements in the same sequence after
// one of those (dead code).
func (c *Compiler) compileStatement(stmt ast.Statement) *errors.Diagnostic {
	switch s := stmt.(type) {
	case *ast.ExpressionStatement:
		return c.compileExpr(s.Value)
	case *ast.VarDecl:
		return c.compileVarDecl(s)
	case *ast.Assignment:
		return c.compileAssignment(s)
	case *ast.IfStatement:
		return c.compileIf(s)
	case *ast.WhileStatement:
		return c.compileWhile(s)
	case *ast.ForInStatement:
		return c.compileForIn(s)
	case *ast.BreakStatement:
		return c.compileBreak(s)
	case *ast.ContinueStatement:
		return c.compileContinue(s)
	case *ast.ReturnStatement:
		return c.compileReturn(s)
	case *ast.FuncDecl:
		return c.compileFuncDecl(s)
	case *ast.StructDecl:
		return c.compileStructDecl(s)
	case *ast.EnumDecl:
		return c.compileEnumDecl(s)
	case *ast.ContractDecl:
		return c.compileContractDecl(s)
	case *ast.EventDecl:
		// Declarative only; nothing to emit beyond the statement's
		// obligatory result value (spec.md §4.4).
		c.emitConst(value.Nil, s.Pos())
		return nil
	case *ast.EmitStatement:
		return c.compileEmit(s)
	case *ast.ImplBlock:
		return c.compileImplBlock(s)
	default:
		return c.fail(stmt.Pos(), "unhandled statement kind %T", stmt)
	}
}

func (c *Compiler) compileVarDecl(s *ast.VarDecl) *errors.Diagnostic {
	if s.Initializer != nil {
		if diag := c.compileExpr(s.Initializer); diag != nil {
			return diag
		}
	} else {
		c.emitConst(value.Nil, s.Pos())
	}
	op := OpDefine
	if s.Const {
		op = OpDefineConst
	}
	c.emit(op, c.nameConst(s.Name), 0, s.Pos())
	c.emitConst(value.Nil, s.Pos())
	return nil
}

func (c *Compiler) compileAssignment(s *ast.Assignment) *errors.Diagnostic {
	if s.Operator != token.ASSIGN {
		if diag := c.compileLvalueLoad(s.Target); diag != nil {
			return diag
		}
		if diag := c.compileExpr(s.Value); diag != nil {
			return diag
		}
		op, ok := compoundOps[s.Operator]
		if !ok {
			return c.fail(s.Pos(), "unknown compound assignment operator %s", s.Operator)
		}
		c.emit(op, 0, 0, s.Pos())
	} else {
		if diag := c.compileExpr(s.Value); diag != nil {
			return diag
		}
	}
	c.emit(OpDup, 0, 0, s.Pos())
	if diag := c.compileStoreTo(s.Target); diag != nil {
		return diag
	}
	return nil
}

var compoundOps = map[token.Kind]Opcode{
	token.PLUS_EQ: OpAdd, token.MINUS_EQ: OpSub, token.STAR_EQ: OpMul, token.SLASH_EQ: OpDiv,
}

// compileLvalueLoad pushes the current value of an assignment target,
// used for compound assignment's `target op= value`.
func (c *Compiler) compileLvalueLoad(target ast.Expression) *errors.Diagnostic {
	return c.compileExpr(target)
}

// compileStoreTo pops one value and writes it into target (identifier,
// index access, or member access — the parser already rejects any other
// assignment target).
func (c *Compiler) compileStoreTo(target ast.Expression) *errors.Diagnostic {
	switch t := target.(type) {
	case *ast.Identifier:
		c.emit(OpStore, c.nameConst(t.Name), 0, t.Pos())
		return nil
	case *ast.IndexAccess:
		if diag := c.compileExpr(t.Object); diag != nil {
			return diag
		}
		if diag := c.compileExpr(t.Index); diag != nil {
			return diag
		}
		c.emit(OpStoreIndex, 0, 0, t.Pos())
		return nil
	case *ast.MemberAccess:
		if diag := c.compileExpr(t.Object); diag != nil {
			return diag
		}
		c.emit(OpSetAttr, c.nameConst(t.Name), 0, t.Pos())
		return nil
	default:
		return c.fail(target.Pos(), "invalid assignment target")
	}
}

// compileBlockValue compiles block so it leaves exactly one value: the
// last statement's value, or none for an empty block (matching
// interp.execBlock's default).
func (c *Compiler) compileBlockValue(block *ast.Block) *errors.Diagnostic {
	c.emit(OpEnterScope, 0, 0, block.Pos())
	c.scopeDepth++
	if len(block.Statements) == 0 {
		c.emitConst(value.Nil, block.Pos())
	} else {
		for i, stmt := range block.Statements {
			if diag := c.compileStatement(stmt); diag != nil {
				return diag
			}
			if isTerminator(stmt) {
				break
			}
			if i < len(block.Statements)-1 {
				c.emit(OpPop, 0, 0, stmt.Pos())
			}
		}
	}
	c.emit(OpExitScope, 0, 0, block.Pos())
	c.scopeDepth--
	return nil
}

// compileBlockDiscard compiles block for its side effects only (used for
// while/for-in bodies, which never propagate their last value outward —
// interp.execWhile/execForIn always yield none on normal completion).
func (c *Compiler) compileBlockDiscard(block *ast.Block) *errors.Diagnostic {
	for _, stmt := range block.Statements {
		if diag := c.compileStatement(stmt); diag != nil {
			return diag
		}
		c.emit(OpPop, 0, 0, stmt.Pos())
		if isTerminator(stmt) {
			break
		}
	}
	return nil
}

func isTerminator(stmt ast.Statement) bool {
	switch stmt.(type) {
	case *ast.BreakStatement, *ast.ContinueStatement, *ast.ReturnStatement:
		return true
	default:
		return false
	}
}

func (c *Compiler) compileIf(s *ast.IfStatement) *errors.Diagnostic {
	endJumps := []int{}

	if diag := c.compileExpr(s.Condition); diag != nil {
		return diag
	}
	nextJump := c.emit(OpJumpIfFalse, -1, 0, s.Pos())
	if diag := c.compileBlockValue(s.Then); diag != nil {
		return diag
	}
	endJumps = append(endJumps, c.emit(OpJump, -1, 0, s.Pos()))
	c.patchJump(nextJump, c.here())

	for _, elif := range s.Elifs {
		if diag := c.compileExpr(elif.Condition); diag != nil {
			return diag
		}
		nj := c.emit(OpJumpIfFalse, -1, 0, elif.Condition.Pos())
		if diag := c.compileBlockValue(elif.Body); diag != nil {
			return diag
		}
		endJumps = append(endJumps, c.emit(OpJump, -1, 0, elif.Condition.Pos()))
		c.patchJump(nj, c.here())
	}

	if s.Else != nil {
		if diag := c.compileBlockValue(s.Else); diag != nil {
			return diag
		}
	} else {
		c.emitConst(value.Nil, s.Pos())
	}

	end := c.here()
	for _, j := range endJumps {
		c.patchJump(j, end)
	}
	return nil
}

func (c *Compiler) compileWhile(s *ast.WhileStatement) *errors.Diagnostic {
	loopStart := c.here()
	if diag := c.compileExpr(s.Condition); diag != nil {
		return diag
	}
	exitJump := c.emit(OpJumpIfFalse, -1, 0, s.Pos())

	loop := &loopContext{baseDepth: c.scopeDepth}
	c.loops = append(c.loops, loop)
	if diag := c.compileBlockValueDiscarding(s.Body); diag != nil {
		return diag
	}
	c.loops = c.loops[:len(c.loops)-1]

	c.emit(OpJump, loopStart, 0, s.Pos())
	loopEnd := c.here()
	c.patchJump(exitJump, loopEnd)
	for _, j := range loop.breakJumps {
		c.patchJump(j, loopEnd)
	}
	for _, j := range loop.continueJumps {
		c.patchJump(j, loopStart)
	}
	c.emitConst(value.Nil, s.Pos())
	return nil
}

// compileBlockValueDiscarding runs block in its own scope, discarding its
// value (while-loop bodies).
func (c *Compiler) compileBlockValueDiscarding(block *ast.Block) *errors.Diagnostic {
	c.emit(OpEnterScope, 0, 0, block.Pos())
	c.scopeDepth++
	if diag := c.compileBlockDiscard(block); diag != nil {
		return diag
	}
	c.emit(OpExitScope, 0, 0, block.Pos())
	c.scopeDepth--
	return nil
}

func (c *Compiler) compileForIn(s *ast.ForInStatement) *errors.Diagnostic {
	if diag := c.compileExpr(s.Iterable); diag != nil {
		return diag
	}
	iterName := c.nameConst("__iter")
	c.emit(OpDefine, iterName, 0, s.Pos())
	c.emitConst(value.Integer{Value: 0}, s.Pos())
	idxName := c.nameConst("__idx")
	c.emit(OpDefine, idxName, 0, s.Pos())

	loopStart := c.here()
	c.emit(OpLoad, idxName, 0, s.Pos())
	c.emit(OpLoad, iterName, 0, s.Pos())
	c.emit(OpLen, 0, 0, s.Pos())
	c.emit(OpLt, 0, 0, s.Pos())
	exitJump := c.emit(OpJumpIfFalse, -1, 0, s.Pos())

	c.emit(OpEnterScope, 0, 0, s.Pos())
	c.scopeDepth++
	c.emit(OpLoad, iterName, 0, s.Pos())
	c.emit(OpLoad, idxName, 0, s.Pos())
	c.emit(OpIndex, 0, 0, s.Pos())
	c.emit(OpDefine, c.nameConst(s.Variable), 0, s.Pos())

	// break and continue land after the body's EXIT_SCOPE (loopEnd and
	// latch), so they must unwind the body scope as well.
	loop := &loopContext{baseDepth: c.scopeDepth - 1}
	c.loops = append(c.loops, loop)
	if diag := c.compileBlockDiscard(s.Body); diag != nil {
		return diag
	}
	c.loops = c.loops[:len(c.loops)-1]

	c.emit(OpExitScope, 0, 0, s.Pos())
	c.scopeDepth--

	latch := c.here()
	c.emit(OpLoad, idxName, 0, s.Pos())
	c.emitConst(value.Integer{Value: 1}, s.Pos())
	c.emit(OpAdd, 0, 0, s.Pos())
	c.emit(OpStore, idxName, 0, s.Pos())
	c.emit(OpJump, loopStart, 0, s.Pos())

	loopEnd := c.here()
	c.patchJump(exitJump, loopEnd)
	for _, j := range loop.breakJumps {
		c.patchJump(j, loopEnd)
	}
	for _, j := range loop.continueJumps {
		c.patchJump(j, latch)
	}
	c.emitConst(value.Nil, s.Pos())
	return nil
}

// exitScopesTo emits the EXIT_SCOPE instructions needed to rebalance from
// the compiler's current scope depth back down to target, used by
// break/continue which jump out of however many nested blocks they sit
// inside (if-statements inside the loop body, for instance).
func (c *Compiler) exitScopesTo(target int, pos token.Position) {
	for d := c.scopeDepth; d > target; d-- {
		c.emit(OpExitScope, 0, 0, pos)
	}
}

func (c *Compiler) compileBreak(s *ast.BreakStatement) *errors.Diagnostic {
	if len(c.loops) == 0 {
		return c.fail(s.Pos(), "break outside of loop")
	}
	loop := c.loops[len(c.loops)-1]
	c.exitScopesTo(loop.baseDepth, s.Pos())
	j := c.emit(OpJump, -1, 0, s.Pos())
	loop.breakJumps = append(loop.breakJumps, j)
	return nil
}

func (c *Compiler) compileContinue(s *ast.ContinueStatement) *errors.Diagnostic {
	if len(c.loops) == 0 {
		return c.fail(s.Pos(), "continue outside of loop")
	}
	loop := c.loops[len(c.loops)-1]
	c.exitScopesTo(loop.baseDepth, s.Pos())
	j := c.emit(OpJump, -1, 0, s.Pos())
	loop.continueJumps = append(loop.continueJumps, j)
	return nil
}

func (c *Compiler) compileReturn(s *ast.ReturnStatement) *errors.Diagnostic {
	if !c.inFunction {
		return c.fail(s.Pos(), "return outside of function")
	}
	if s.Value != nil {
		if diag := c.compileExpr(s.Value); diag != nil {
			return diag
		}
	} else {
		c.emitConst(value.Nil, s.Pos())
	}
	c.emit(OpReturn, 0, 0, s.Pos())
	return nil
}

// compileFuncDecl compiles decl's body with a fresh Compiler (own chunk),
// appends the trailing `PUSH none; RETURN` spec.md §4.5 requires for
// bodies that fall off the end, boxes it as a FunctionProto, and binds the
// resulting closure at the declaration site.
func (c *Compiler) compileFuncDecl(decl *ast.FuncDecl) *errors.Diagnostic {
	proto, diag := c.compileFunctionProto(decl.Name, decl.Parameters, decl.Body)
	if diag != nil {
		return diag
	}
	protoIdx := c.chunk.addProto(proto)
	c.emit(OpMakeClosure, protoIdx, 0, decl.Pos())
	c.emit(OpDefine, c.nameConst(decl.Name), 0, decl.Pos())
	c.emitConst(value.Nil, decl.Pos())
	return nil
}

func (c *Compiler) compileFunctionProto(name string, params []ast.Parameter, body *ast.Block) (*FunctionProto, *errors.Diagnostic) {
	sub := &Compiler{chunk: newChunk(), source: c.source, inFunction: true}
	for _, stmt := range body.Statements {
		if diag := sub.compileStatement(stmt); diag != nil {
			return nil, diag
		}
		if isTerminator(stmt) {
			break
		}
		sub.emit(OpPop, 0, 0, stmt.Pos())
	}
	sub.emitConst(value.Nil, body.Pos())
	sub.emit(OpReturn, 0, 0, body.Pos())

	compiledParams := make([]FunctionParam, len(params))
	for i, p := range params {
		cp := FunctionParam{Name: p.Name}
		if p.Default != nil {
			defChunk, diag := c.compileStandaloneExpr(p.Default)
			if diag != nil {
				return nil, diag
			}
			cp.Default = defChunk
		}
		compiledParams[i] = cp
	}
	return &FunctionProto{Name: name, Parameters: compiledParams, Chunk: sub.chunk}, nil
}

// compileStandaloneExpr compiles expr into its own chunk, for contexts
// (parameter defaults) where the VM evaluates a value.Value without
// calling through CALL/RETURN.
func (c *Compiler) compileStandaloneExpr(expr ast.Expression) (*Chunk, *errors.Diagnostic) {
	sub := &Compiler{chunk: newChunk(), source: c.source}
	if diag := sub.compileExpr(expr); diag != nil {
		return nil, diag
	}
	return sub.chunk, nil
}

func (c *Compiler) compileStructDecl(decl *ast.StructDecl) *errors.Diagnostic {
	desc := value.StructDescriptor{Name: decl.Name, Fields: decl.Fields, Methods: decl.Methods}
	c.emitConst(desc, decl.Pos())
	c.emit(OpDefine, c.nameConst(decl.Name), 0, decl.Pos())
	for _, m := range decl.Methods {
		if diag := c.compileMethod(decl.Name, m); diag != nil {
			return diag
		}
	}
	c.emitConst(value.Nil, decl.Pos())
	return nil
}

func (c *Compiler) compileMethod(typeName string, m *ast.FuncDecl) *errors.Diagnostic {
	proto, diag := c.compileFunctionProto(typeName+"."+m.Name, m.Parameters, m.Body)
	if diag != nil {
		return diag
	}
	protoIdx := c.chunk.addProto(proto)
	c.emit(OpMakeClosure, protoIdx, 0, m.Pos())
	c.emit(OpDefine, c.nameConst(typeName+"."+m.Name), 0, m.Pos())
	return nil
}

func (c *Compiler) compileEnumDecl(decl *ast.EnumDecl) *errors.Diagnostic {
	desc := value.EnumDescriptor{Name: decl.Name, Variants: map[string]string{}, Order: decl.Variants}
	for _, v := range decl.Variants {
		desc.Variants[v] = v
	}
	c.emitConst(desc, decl.Pos())
	c.emit(OpDefine, c.nameConst(decl.Name), 0, decl.Pos())
	c.emitConst(value.Nil, decl.Pos())
	return nil
}

func (c *Compiler) compileContractDecl(decl *ast.ContractDecl) *errors.Diagnostic {
	c.emit(OpEnterContract, 0, 0, decl.Pos())
	c.scopeDepth++
	if diag := c.compileBlockDiscard(decl.Body); diag != nil {
		return diag
	}
	c.scopeDepth--
	c.emit(OpExitContract, c.nameConst(decl.Name), 0, decl.Pos())
	c.emitConst(value.Nil, decl.Pos())
	return nil
}

func (c *Compiler) compileEmit(s *ast.EmitStatement) *errors.Diagnostic {
	for _, a := range s.Arguments {
		if diag := c.compileExpr(a); diag != nil {
			return diag
		}
	}
	c.emit(OpEmit, c.nameConst(s.Event), len(s.Arguments), s.Pos())
	c.emitConst(value.Nil, s.Pos())
	return nil
}

func (c *Compiler) compileImplBlock(s *ast.ImplBlock) *errors.Diagnostic {
	for _, m := range s.Methods {
		if diag := c.compileMethod(s.TypeName, m); diag != nil {
			return diag
		}
	}
	c.emitConst(value.Nil, s.Pos())
	return nil
}
