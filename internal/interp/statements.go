package interp

import (
	"github.com/cactus-lang/cactus/internal/ast"
	"github.com/cactus-lang/cactus/internal/errors"
	"github.com/cactus-lang/cactus/internal/token"
	"github.com/cactus-lang/cactus/internal/value"
)

func (in *Interpreter) execStatement(stmt ast.Statement, env *value.Environment) (result, *errors.Diagnostic) {
	switch s := stmt.(type) {
	case *ast.ExpressionStatement:
		v, diag := in.eval(s.Value, env)
		if diag != nil {
			return result{}, diag
		}
		return normal(v), nil
	case *ast.VarDecl:
		return in.execVarDecl(s, env)
	case *ast.Assignment:
		return in.execAssignment(s, env)
	case *ast.Block:
		return in.execBlock(s, value.NewEnclosedEnvironment(env))
	case *ast.IfStatement:
		return in.execIf(s, env)
	case *ast.WhileStatement:
		return in.execWhile(s, env)
	case *ast.ForInStatement:
		return in.execForIn(s, env)
	case *ast.BreakStatement:
		return result{value: value.Nil, signal: signalBreak}, nil
	case *ast.ContinueStatement:
		return result{value: value.Nil, signal: signalContinue}, nil
	case *ast.ReturnStatement:
		return in.execReturn(s, env)
	case *ast.FuncDecl:
		fn := value.UserFunction{Decl: s, Closure: env}
		env.Define(s.Name, fn, false)
		return normal(value.Nil), nil
	case *ast.StructDecl:
		desc := &value.StructDescriptor{Name: s.Name, Fields: s.Fields, Methods: s.Methods}
		env.Define(s.Name, *desc, false)
		for _, m := range s.Methods {
			mangled := s.Name + "." + m.Name
			env.Define(mangled, value.UserFunction{Decl: m, Closure: env}, false)
		}
		return normal(value.Nil), nil
	case *ast.EnumDecl:
		desc := value.EnumDescriptor{Name: s.Name, Variants: map[string]string{}, Order: s.Variants}
		for _, v := range s.Variants {
			desc.Variants[v] = v
		}
		env.Define(s.Name, desc, false)
		return normal(value.Nil), nil
	case *ast.ContractDecl:
		return in.execContract(s, env)
	case *ast.EventDecl:
		// Event schemas are declarative only: nothing is bound at runtime,
		// and `emit` does not look the declaration up (spec.md §4.4).
		return normal(value.Nil), nil
	case *ast.EmitStatement:
		return in.execEmit(s, env)
	case *ast.ImplBlock:
		for _, m := range s.Methods {
			mangled := s.TypeName + "." + m.Name
			env.Define(mangled, value.UserFunction{Decl: m, Closure: env}, false)
		}
		return normal(value.Nil), nil
	default:
		return result{}, in.fail(stmt.Pos(), "unhandled statement kind %T", stmt)
	}
}

// execBlock runs statements in the given scope; it does not create a new
// scope itself — callers create the child scope before invoking it, since
// a for-in loop needs its own scope only for the loop variable while a
// function body creates one for parameters (spec.md §4.4).
func (in *Interpreter) execBlock(block *ast.Block, env *value.Environment) (result, *errors.Diagnostic) {
	last := normal(value.Nil)
	for _, stmt := range block.Statements {
		res, diag := in.execStatement(stmt, env)
		if diag != nil {
			return result{}, diag
		}
		if res.signal != signalNone {
			return res, nil
		}
		last = res
	}
	return last, nil
}

func (in *Interpreter) execVarDecl(s *ast.VarDecl, env *value.Environment) (result, *errors.Diagnostic) {
	v := value.Value(value.Nil)
	if s.Initializer != nil {
		var diag *errors.Diagnostic
		v, diag = in.eval(s.Initializer, env)
		if diag != nil {
			return result{}, diag
		}
	}
	env.Define(s.Name, v, s.Const)
	return normal(value.Nil), nil
}

func (in *Interpreter) execAssignment(s *ast.Assignment, env *value.Environment) (result, *errors.Diagnostic) {
	v, diag := in.eval(s.Value, env)
	if diag != nil {
		return result{}, diag
	}

	if s.Operator != tokenAssignKind() {
		current, diag := in.eval(s.Target, env)
		if diag != nil {
			return result{}, diag
		}
		combined, err := in.applyCompoundOp(s.Operator, current, v)
		if err != nil {
			return result{}, in.fail(s.Pos(), "%s", err)
		}
		v = combined
	}

	if diag := in.assignTo(s.Target, v, env); diag != nil {
		return result{}, diag
	}
	return normal(v), nil
}

func (in *Interpreter) execIf(s *ast.IfStatement, env *value.Environment) (result, *errors.Diagnostic) {
	cond, diag := in.eval(s.Condition, env)
	if diag != nil {
		return result{}, diag
	}
	if value.Truthy(cond) {
		return in.execBlock(s.Then, value.NewEnclosedEnvironment(env))
	}
	for _, elif := range s.Elifs {
		econd, diag := in.eval(elif.Condition, env)
		if diag != nil {
			return result{}, diag
		}
		if value.Truthy(econd) {
			return in.execBlock(elif.Body, value.NewEnclosedEnvironment(env))
		}
	}
	if s.Else != nil {
		return in.execBlock(s.Else, value.NewEnclosedEnvironment(env))
	}
	return normal(value.Nil), nil
}

func (in *Interpreter) execWhile(s *ast.WhileStatement, env *value.Environment) (result, *errors.Diagnostic) {
	for {
		cond, diag := in.eval(s.Condition, env)
		if diag != nil {
			return result{}, diag
		}
		if !value.Truthy(cond) {
			return normal(value.Nil), nil
		}
		res, diag := in.execBlock(s.Body, value.NewEnclosedEnvironment(env))
		if diag != nil {
			return result{}, diag
		}
		switch res.signal {
		case signalBreak:
			return normal(value.Nil), nil
		case signalReturn:
			return res, nil
		}
		// signalContinue and signalNone both fall through to re-test.
	}
}

func (in *Interpreter) execForIn(s *ast.ForInStatement, env *value.Environment) (result, *errors.Diagnostic) {
	iterable, diag := in.eval(s.Iterable, env)
	if diag != nil {
		return result{}, diag
	}
	items, diag := in.iterationItems(iterable, s.Pos())
	if diag != nil {
		return result{}, diag
	}
	for _, item := range items {
		// The loop variable lives in a fresh child scope per spec.md §4.4
		// so it never leaks past the loop.
		loopEnv := value.NewEnclosedEnvironment(env)
		loopEnv.Define(s.Variable, item, false)
		res, diag := in.execBlock(s.Body, loopEnv)
		if diag != nil {
			return result{}, diag
		}
		switch res.signal {
		case signalBreak:
			return normal(value.Nil), nil
		case signalReturn:
			return res, nil
		}
	}
	return normal(value.Nil), nil
}

// iterationItems realizes spec.md §4.4's `for var in iterable` rule: the
// iterable is evaluated once (by the caller) then iterated in order —
// list -> elements, map -> keys, string -> characters.
func (in *Interpreter) iterationItems(v value.Value, pos token.Position) ([]value.Value, *errors.Diagnostic) {
	switch t := v.(type) {
	case value.List:
		out := make([]value.Value, len(*t.Elements))
		copy(out, *t.Elements)
		return out, nil
	case value.Map:
		keys := t.Keys()
		out := make([]value.Value, len(keys))
		for i, k := range keys {
			if k.IsInt {
				out[i] = value.Integer{Value: k.Int}
			} else {
				out[i] = value.String{Value: k.Str}
			}
		}
		return out, nil
	case value.String:
		runes := []rune(t.Value)
		out := make([]value.Value, len(runes))
		for i, r := range runes {
			out[i] = value.String{Value: string(r)}
		}
		return out, nil
	default:
		return nil, in.fail(pos, "value of kind %s is not iterable", v.Type())
	}
}

func (in *Interpreter) execReturn(s *ast.ReturnStatement, env *value.Environment) (result, *errors.Diagnostic) {
	v := value.Value(value.Nil)
	if s.Value != nil {
		var diag *errors.Diagnostic
		v, diag = in.eval(s.Value, env)
		if diag != nil {
			return result{}, diag
		}
	}
	return result{value: v, signal: signalReturn}, nil
}

func (in *Interpreter) execContract(s *ast.ContractDecl, env *value.Environment) (result, *errors.Diagnostic) {
	contractEnv := value.NewEnclosedEnvironment(env)
	if _, diag := in.execBlock(s.Body, contractEnv); diag != nil {
		return result{}, diag
	}
	env.Define(s.Name, value.ContractValue{Name: s.Name, Env: contractEnv}, false)
	return normal(value.Nil), nil
}

func (in *Interpreter) execEmit(s *ast.EmitStatement, env *value.Environment) (result, *errors.Diagnostic) {
	args := make([]value.Value, len(s.Arguments))
	for i, a := range s.Arguments {
		v, diag := in.eval(a, env)
		if diag != nil {
			return result{}, diag
		}
		args[i] = v
	}
	in.Emitter.Emit(s.Event, args)
	return normal(value.Nil), nil
}
