package interp

import (
	"github.com/cactus-lang/cactus/internal/ast"
	"github.com/cactus-lang/cactus/internal/builtins"
	"github.com/cactus-lang/cactus/internal/errors"
	"github.com/cactus-lang/cactus/internal/token"
	"github.com/cactus-lang/cactus/internal/value"
)

// eval reduces an expression to a value, the tree-walk evaluator's other
// half alongside execStatement (spec.md §4.4).
func (in *Interpreter) eval(expr ast.Expression, env *value.Environment) (value.Value, *errors.Diagnostic) {
	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		return value.Integer{Value: e.Value}, nil
	case *ast.FloatLiteral:
		return value.Float{Value: e.Value}, nil
	case *ast.StringLiteral:
		return value.String{Value: e.Value}, nil
	case *ast.BooleanLiteral:
		return value.Boolean{Value: e.Value}, nil
	case *ast.NoneLiteral:
		return value.Nil, nil
	case *ast.ListLiteral:
		return in.evalListLiteral(e, env)
	case *ast.MapLiteral:
		return in.evalMapLiteral(e, env)
	case *ast.Identifier:
		v, ok := env.Get(e.Name)
		if !ok {
			return nil, in.fail(e.Pos(), "undefined name: %s", e.Name)
		}
		return v, nil
	case *ast.MemberAccess:
		return in.evalMemberAccess(e, env)
	case *ast.IndexAccess:
		return in.evalIndexAccess(e, env)
	case *ast.BinaryOp:
		return in.evalBinaryOp(e, env)
	case *ast.UnaryOp:
		return in.evalUnaryOp(e, env)
	case *ast.ComparisonOp:
		return in.evalComparisonOp(e, env)
	case *ast.LogicalOp:
		return in.evalLogicalOp(e, env)
	case *ast.Call:
		return in.evalCall(e, env)
	case *ast.MethodCall:
		return in.evalMethodCall(e, env)
	case *ast.Lambda:
		return in.evalLambda(e, env)
	case *ast.Await:
		return in.evalAwait(e, env)
	default:
		return nil, in.fail(expr.Pos(), "unhandled expression kind %T", expr)
	}
}

func (in *Interpreter) evalListLiteral(e *ast.ListLiteral, env *value.Environment) (value.Value, *errors.Diagnostic) {
	elems := make([]value.Value, len(e.Elements))
	for i, el := range e.Elements {
		v, diag := in.eval(el, env)
		if diag != nil {
			return nil, diag
		}
		elems[i] = v
	}
	return value.NewList(elems), nil
}

func (in *Interpreter) evalMapLiteral(e *ast.MapLiteral, env *value.Environment) (value.Value, *errors.Diagnostic) {
	m := value.NewMap()
	for _, entry := range e.Entries {
		kv, diag := in.eval(entry.Key, env)
		if diag != nil {
			return nil, diag
		}
		key, err := value.KeyOf(kv)
		if err != nil {
			return nil, in.fail(e.Pos(), "%s", err)
		}
		vv, diag := in.eval(entry.Value, env)
		if diag != nil {
			return nil, diag
		}
		m.Set(key, vv)
	}
	return m, nil
}

func (in *Interpreter) evalMemberAccess(e *ast.MemberAccess, env *value.Environment) (value.Value, *errors.Diagnostic) {
	obj, diag := in.eval(e.Object, env)
	if diag != nil {
		return nil, diag
	}
	switch o := obj.(type) {
	case value.StructInstance:
		if v, ok := o.Get(e.Name); ok {
			return v, nil
		}
		return nil, in.fail(e.Pos(), "struct %s has no member %q", o.Descriptor.Name, e.Name)
	case value.EnumDescriptor:
		if v, ok := o.Variants[e.Name]; ok {
			return value.String{Value: v}, nil
		}
		return nil, in.fail(e.Pos(), "enum %s has no variant %q", o.Name, e.Name)
	case value.ContractValue:
		v, ok := o.Env.Get(e.Name)
		if !ok {
			return nil, in.fail(e.Pos(), "contract %s has no member %q", o.Name, e.Name)
		}
		return v, nil
	default:
		return nil, in.fail(e.Pos(), "value of kind %s has no member %q", obj.Type(), e.Name)
	}
}

func (in *Interpreter) evalIndexAccess(e *ast.IndexAccess, env *value.Environment) (value.Value, *errors.Diagnostic) {
	obj, diag := in.eval(e.Object, env)
	if diag != nil {
		return nil, diag
	}
	idx, diag := in.eval(e.Index, env)
	if diag != nil {
		return nil, diag
	}
	switch o := obj.(type) {
	case value.List:
		i, ok := idx.(value.Integer)
		if !ok {
			return nil, in.fail(e.Pos(), "list index must be an integer, got %s", idx.Type())
		}
		elems := *o.Elements
		if i.Value < 0 || int(i.Value) >= len(elems) {
			return nil, in.fail(e.Pos(), "list index out of bounds: %d", i.Value)
		}
		return elems[i.Value], nil
	case value.Map:
		key, err := value.KeyOf(idx)
		if err != nil {
			return nil, in.fail(e.Pos(), "%s", err)
		}
		v, ok := o.Get(key)
		if !ok {
			return nil, in.fail(e.Pos(), "key not found: %s", key)
		}
		return v, nil
	case value.String:
		i, ok := idx.(value.Integer)
		if !ok {
			return nil, in.fail(e.Pos(), "string index must be an integer, got %s", idx.Type())
		}
		runes := []rune(o.Value)
		if i.Value < 0 || int(i.Value) >= len(runes) {
			return nil, in.fail(e.Pos(), "string index out of bounds: %d", i.Value)
		}
		return value.String{Value: string(runes[i.Value])}, nil
	default:
		return nil, in.fail(e.Pos(), "value of kind %s does not support indexing", obj.Type())
	}
}

var binaryOpSymbols = map[token.Kind]string{
	token.PLUS: "+", token.MINUS: "-", token.STAR: "*", token.SLASH: "/",
	token.PERCENT: "%", token.POW: "**",
	token.AMP: "&", token.PIPE: "|", token.CARET: "^", token.SHL: "<<", token.SHR: ">>",
}

var bitwiseOps = map[token.Kind]bool{
	token.AMP: true, token.PIPE: true, token.CARET: true, token.SHL: true, token.SHR: true,
}

func (in *Interpreter) evalBinaryOp(e *ast.BinaryOp, env *value.Environment) (value.Value, *errors.Diagnostic) {
	left, diag := in.eval(e.Left, env)
	if diag != nil {
		return nil, diag
	}
	right, diag := in.eval(e.Right, env)
	if diag != nil {
		return nil, diag
	}
	sym, ok := binaryOpSymbols[e.Operator]
	if !ok {
		return nil, in.fail(e.Pos(), "unknown binary operator %s", e.Operator)
	}
	var v value.Value
	var err error
	if bitwiseOps[e.Operator] {
		v, err = value.Bitwise(sym, left, right)
	} else {
		v, err = value.Arith(sym, left, right)
	}
	if err != nil {
		return nil, in.fail(e.Pos(), "%s", err)
	}
	return v, nil
}

func (in *Interpreter) evalUnaryOp(e *ast.UnaryOp, env *value.Environment) (value.Value, *errors.Diagnostic) {
	operand, diag := in.eval(e.Operand, env)
	if diag != nil {
		return nil, diag
	}
	var v value.Value
	var err error
	switch e.Operator {
	case token.MINUS:
		v, err = value.Negate(operand)
	case token.TILDE:
		v, err = value.BitwiseNot(operand)
	case token.NOT:
		return value.Boolean{Value: !value.Truthy(operand)}, nil
	default:
		return nil, in.fail(e.Pos(), "unknown unary operator %s", e.Operator)
	}
	if err != nil {
		return nil, in.fail(e.Pos(), "%s", err)
	}
	return v, nil
}

var comparisonOpSymbols = map[token.Kind]string{
	token.EQ: "==", token.NOT_EQ: "!=",
	token.LT: "<", token.GT: ">", token.LT_EQ: "<=", token.GT_EQ: ">=",
}

func (in *Interpreter) evalComparisonOp(e *ast.ComparisonOp, env *value.Environment) (value.Value, *errors.Diagnostic) {
	left, diag := in.eval(e.Left, env)
	if diag != nil {
		return nil, diag
	}
	right, diag := in.eval(e.Right, env)
	if diag != nil {
		return nil, diag
	}
	sym, ok := comparisonOpSymbols[e.Operator]
	if !ok {
		return nil, in.fail(e.Pos(), "unknown comparison operator %s", e.Operator)
	}
	v, err := value.Compare(sym, left, right)
	if err != nil {
		return nil, in.fail(e.Pos(), "%s", err)
	}
	return v, nil
}

// evalLogicalOp implements and/or short-circuit semantics, returning the
// deciding operand's actual value rather than a coerced boolean
// (spec.md §4.3) — mirroring the JUMP_IF_FALSE/JUMP_IF_TRUE pop behavior
// the bytecode VM will replicate (SPEC_FULL.md §9).
func (in *Interpreter) evalLogicalOp(e *ast.LogicalOp, env *value.Environment) (value.Value, *errors.Diagnostic) {
	left, diag := in.eval(e.Left, env)
	if diag != nil {
		return nil, diag
	}
	switch e.Operator {
	case token.AND:
		if !value.Truthy(left) {
			return left, nil
		}
		return in.eval(e.Right, env)
	case token.OR:
		if value.Truthy(left) {
			return left, nil
		}
		return in.eval(e.Right, env)
	default:
		return nil, in.fail(e.Pos(), "unknown logical operator %s", e.Operator)
	}
}

func (in *Interpreter) evalCall(e *ast.Call, env *value.Environment) (value.Value, *errors.Diagnostic) {
	callee, diag := in.eval(e.Callee, env)
	if diag != nil {
		return nil, diag
	}
	args, diag := in.evalArguments(e.Arguments, env)
	if diag != nil {
		return nil, diag
	}
	switch c := callee.(type) {
	case value.HostFunction:
		v, err := c.Fn(args)
		if err != nil {
			return nil, in.fail(e.Pos(), "%s", err)
		}
		return v, nil
	case value.UserFunction:
		return in.callUserFunction(c, args, e.Pos())
	case value.StructDescriptor:
		return value.NewStructInstance(&c, args), nil
	default:
		return nil, in.fail(e.Pos(), "value of kind %s is not callable", callee.Type())
	}
}

func (in *Interpreter) evalArguments(exprs []ast.Expression, env *value.Environment) ([]value.Value, *errors.Diagnostic) {
	args := make([]value.Value, len(exprs))
	for i, a := range exprs {
		v, diag := in.eval(a, env)
		if diag != nil {
			return nil, diag
		}
		args[i] = v
	}
	return args, nil
}

// callUserFunction binds args to decl's parameters (falling back to each
// parameter's default expression, evaluated in the closure scope, when an
// argument is missing) in a fresh scope enclosed by the function's closure,
// then runs its body (spec.md §4.4).
func (in *Interpreter) callUserFunction(fn value.UserFunction, args []value.Value, pos token.Position) (value.Value, *errors.Diagnostic) {
	callEnv := value.NewEnclosedEnvironment(fn.Closure)
	for i, p := range fn.Decl.Parameters {
		if i < len(args) {
			callEnv.Define(p.Name, args[i], false)
			continue
		}
		if p.Default != nil {
			v, diag := in.eval(p.Default, fn.Closure)
			if diag != nil {
				return nil, diag
			}
			callEnv.Define(p.Name, v, false)
			continue
		}
		return nil, in.fail(pos, "function %s: missing argument %q", fn.Decl.Name, p.Name)
	}
	res, diag := in.execBlock(fn.Decl.Body, callEnv)
	if diag != nil {
		return nil, diag
	}
	if res.signal == signalReturn {
		return res.value, nil
	}
	return value.Nil, nil
}

// evalMethodCall dispatches object.name(args): a user-defined method bound
// under the struct's mangled `<TypeName>.<method>` name takes priority,
// falling back to the fixed built-in method table (spec.md §4.4).
func (in *Interpreter) evalMethodCall(e *ast.MethodCall, env *value.Environment) (value.Value, *errors.Diagnostic) {
	obj, diag := in.eval(e.Object, env)
	if diag != nil {
		return nil, diag
	}
	args, diag := in.evalArguments(e.Arguments, env)
	if diag != nil {
		return nil, diag
	}

	if inst, ok := obj.(value.StructInstance); ok {
		mangled := inst.Descriptor.Name + "." + e.Name
		if fnv, ok := env.Get(mangled); ok {
			if fn, ok := fnv.(value.UserFunction); ok {
				callArgs := append([]value.Value{obj}, args...)
				return in.callBoundMethod(fn, callArgs, e.Pos())
			}
		}
	}

	v, ok, err := builtins.DispatchMethod(obj, e.Name, args)
	if err != nil {
		return nil, in.fail(e.Pos(), "%s", err)
	}
	if ok {
		return v, nil
	}
	return nil, in.fail(e.Pos(), "value of kind %s has no method %q", obj.Type(), e.Name)
}

// callBoundMethod invokes fn with the receiver bound to its first
// declared parameter (conventionally named `self`), per spec.md §4.2's
// method-receiver-binding rule.
func (in *Interpreter) callBoundMethod(fn value.UserFunction, args []value.Value, pos token.Position) (value.Value, *errors.Diagnostic) {
	return in.callUserFunction(fn, args, pos)
}

func (in *Interpreter) evalLambda(e *ast.Lambda, env *value.Environment) (value.Value, *errors.Diagnostic) {
	decl := &ast.FuncDecl{
		Position:   e.Position,
		Name:       "<lambda>",
		Parameters: e.Parameters,
		Body: &ast.Block{
			Position:   e.Position,
			Statements: []ast.Statement{&ast.ReturnStatement{Position: e.Position, Value: e.Body}},
		},
	}
	return value.UserFunction{Decl: decl, Closure: env}, nil
}

// evalAwait unwraps a PendingResult token, blocking until it resolves
// (spec.md §5). Any other value passes through unchanged.
func (in *Interpreter) evalAwait(e *ast.Await, env *value.Environment) (value.Value, *errors.Diagnostic) {
	v, diag := in.eval(e.Value, env)
	if diag != nil {
		return nil, diag
	}
	if p, ok := v.(value.PendingResult); ok {
		return p.Resolve(), nil
	}
	return v, nil
}
