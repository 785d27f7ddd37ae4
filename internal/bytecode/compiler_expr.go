package bytecode

import (
	"github.com/cactus-lang/cactus/internal/ast"
	"github.com/cactus-lang/cactus/internal/errors"
	"github.com/cactus-lang/cactus/internal/token"
	"github.com/cactus-lang/cactus/internal/value"
)

var binaryOpcodes = map[token.Kind]Opcode{
	token.PLUS: OpAdd, token.MINUS: OpSub, token.STAR: OpMul, token.SLASH: OpDiv,
	token.PERCENT: OpMod, token.POW: OpPow,
	token.AMP: OpBitAnd, token.PIPE: OpBitOr, token.CARET: OpBitXor,
	token.SHL: OpShl, token.SHR: OpShr,
}

var comparisonOpcodes = map[token.Kind]Opcode{
	token.EQ: OpEq, token.NOT_EQ: OpNeq,
	token.LT: OpLt, token.GT: OpGt, token.LT_EQ: OpLe, token.GT_EQ: OpGe,
}

// compileExpr compiles expr so it pushes exactly one value onto the
// operand stack (spec.md §4.5).
func (c *Compiler) compileExpr(expr ast.Expression) *errors.Diagnostic {
	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		c.emitConst(value.Integer{Value: e.Value}, e.Pos())
		return nil
	case *ast.FloatLiteral:
		c.emitConst(value.Float{Value: e.Value}, e.Pos())
		return nil
	case *ast.StringLiteral:
		c.emitConst(value.String{Value: e.Value}, e.Pos())
		return nil
	case *ast.BooleanLiteral:
		c.emitConst(value.Boolean{Value: e.Value}, e.Pos())
		return nil
	case *ast.NoneLiteral:
		c.emitConst(value.Nil, e.Pos())
		return nil
	case *ast.ListLiteral:
		return c.compileListLiteral(e)
	case *ast.MapLiteral:
		return c.compileMapLiteral(e)
	case *ast.Identifier:
		c.emit(OpLoad, c.nameConst(e.Name), 0, e.Pos())
		return nil
	case *ast.MemberAccess:
		if diag := c.compileExpr(e.Object); diag != nil {
			return diag
		}
		c.emit(OpGetAttr, c.nameConst(e.Name), 0, e.Pos())
		return nil
	case *ast.IndexAccess:
		if diag := c.compileExpr(e.Object); diag != nil {
			return diag
		}
		if diag := c.compileExpr(e.Index); diag != nil {
			return diag
		}
		c.emit(OpIndex, 0, 0, e.Pos())
		return nil
	case *ast.BinaryOp:
		return c.compileBinaryOp(e)
	case *ast.UnaryOp:
		return c.compileUnaryOp(e)
	case *ast.ComparisonOp:
		return c.compileComparisonOp(e)
	case *ast.LogicalOp:
		return c.compileLogicalOp(e)
	case *ast.Call:
		return c.compileCall(e)
	case *ast.MethodCall:
		return c.compileMethodCall(e)
	case *ast.Lambda:
		return c.compileLambda(e)
	case *ast.Await:
		if diag := c.compileExpr(e.Value); diag != nil {
			return diag
		}
		c.emit(OpAwait, 0, 0, e.Pos())
		return nil
	default:
		return c.fail(expr.Pos(), "unhandled expression kind %T", expr)
	}
}

func (c *Compiler) compileListLiteral(e *ast.ListLiteral) *errors.Diagnostic {
	for _, el := range e.Elements {
		if diag := c.compileExpr(el); diag != nil {
			return diag
		}
	}
	c.emit(OpBuildList, len(e.Elements), 0, e.Pos())
	return nil
}

func (c *Compiler) compileMapLiteral(e *ast.MapLiteral) *errors.Diagnostic {
	for _, entry := range e.Entries {
		if diag := c.compileExpr(entry.Key); diag != nil {
			return diag
		}
		if diag := c.compileExpr(entry.Value); diag != nil {
			return diag
		}
	}
	c.emit(OpBuildMap, len(e.Entries), 0, e.Pos())
	return nil
}

func (c *Compiler) compileBinaryOp(e *ast.BinaryOp) *errors.Diagnostic {
	if diag := c.compileExpr(e.Left); diag != nil {
		return diag
	}
	if diag := c.compileExpr(e.Right); diag != nil {
		return diag
	}
	op, ok := binaryOpcodes[e.Operator]
	if !ok {
		return c.fail(e.Pos(), "unknown binary operator %s", e.Operator)
	}
	c.emit(op, 0, 0, e.Pos())
	return nil
}

func (c *Compiler) compileUnaryOp(e *ast.UnaryOp) *errors.Diagnostic {
	if diag := c.compileExpr(e.Operand); diag != nil {
		return diag
	}
	switch e.Operator {
	case token.MINUS:
		c.emit(OpNeg, 0, 0, e.Pos())
	case token.TILDE:
		c.emit(OpBitNot, 0, 0, e.Pos())
	case token.NOT:
		c.emit(OpNot, 0, 0, e.Pos())
	default:
		return c.fail(e.Pos(), "unknown unary operator %s", e.Operator)
	}
	return nil
}

func (c *Compiler) compileComparisonOp(e *ast.ComparisonOp) *errors.Diagnostic {
	if diag := c.compileExpr(e.Left); diag != nil {
		return diag
	}
	if diag := c.compileExpr(e.Right); diag != nil {
		return diag
	}
	op, ok := comparisonOpcodes[e.Operator]
	if !ok {
		return c.fail(e.Pos(), "unknown comparison operator %s", e.Operator)
	}
	c.emit(op, 0, 0, e.Pos())
	return nil
}

// compileLogicalOp implements and/or with conditional jumps rather than a
// dedicated opcode (spec.md §4.5). JUMP_IF_FALSE/JUMP_IF_TRUE pop the
// tested value unconditionally; the fall-through path then needs its own
// POP before evaluating the right operand, matching the reference
// compiler's lowering exactly (SPEC_FULL.md §9, resolving spec.md §9's
// open question).
func (c *Compiler) compileLogicalOp(e *ast.LogicalOp) *errors.Diagnostic {
	if diag := c.compileExpr(e.Left); diag != nil {
		return diag
	}
	c.emit(OpDup, 0, 0, e.Pos())
	var shortCircuitJump int
	switch e.Operator {
	case token.AND:
		shortCircuitJump = c.emit(OpJumpIfFalse, -1, 0, e.Pos())
	case token.OR:
		shortCircuitJump = c.emit(OpJumpIfTrue, -1, 0, e.Pos())
	default:
		return c.fail(e.Pos(), "unknown logical operator %s", e.Operator)
	}
	c.emit(OpPop, 0, 0, e.Pos())
	if diag := c.compileExpr(e.Right); diag != nil {
		return diag
	}
	// Both the short-circuit path (stack: [left]) and the fall-through
	// path (stack: [right]) converge here with exactly one value pushed.
	c.patchJump(shortCircuitJump, c.here())
	return nil
}

func (c *Compiler) compileCall(e *ast.Call) *errors.Diagnostic {
	if diag := c.compileExpr(e.Callee); diag != nil {
		return diag
	}
	for _, a := range e.Arguments {
		if diag := c.compileExpr(a); diag != nil {
			return diag
		}
	}
	c.emit(OpCall, len(e.Arguments), 0, e.Pos())
	return nil
}

func (c *Compiler) compileMethodCall(e *ast.MethodCall) *errors.Diagnostic {
	if diag := c.compileExpr(e.Object); diag != nil {
		return diag
	}
	for _, a := range e.Arguments {
		if diag := c.compileExpr(a); diag != nil {
			return diag
		}
	}
	c.emit(OpMethodCall, c.nameConst(e.Name), len(e.Arguments), e.Pos())
	return nil
}

func (c *Compiler) compileLambda(e *ast.Lambda) *errors.Diagnostic {
	body := &ast.Block{
		Position:   e.Position,
		Statements: []ast.Statement{&ast.ReturnStatement{Position: e.Position, Value: e.Body}},
	}
	proto, diag := c.compileFunctionProto("<lambda>", e.Parameters, body)
	if diag != nil {
		return diag
	}
	protoIdx := c.chunk.addProto(proto)
	c.emit(OpMakeClosure, protoIdx, 0, e.Pos())
	return nil
}
