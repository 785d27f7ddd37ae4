package interp

import (
	"fmt"

	"github.com/cactus-lang/cactus/internal/ast"
	"github.com/cactus-lang/cactus/internal/errors"
	"github.com/cactus-lang/cactus/internal/token"
	"github.com/cactus-lang/cactus/internal/value"
)

func tokenAssignKind() token.Kind { return token.ASSIGN }

// applyCompoundOp computes the new value for `target op= value` given the
// target's current value (spec.md §3's Assignment statement).
func (in *Interpreter) applyCompoundOp(op token.Kind, current, rhs value.Value) (value.Value, error) {
	switch op {
	case token.PLUS_EQ:
		return value.Arith("+", current, rhs)
	case token.MINUS_EQ:
		return value.Arith("-", current, rhs)
	case token.STAR_EQ:
		return value.Arith("*", current, rhs)
	case token.SLASH_EQ:
		return value.Arith("/", current, rhs)
	default:
		return nil, fmt.Errorf("unknown compound assignment operator %q", op)
	}
}

// assignTo writes v into target, which must be an identifier, index
// access, or member access (spec.md §4.2 restricts valid assignment
// targets; the parser already rejects anything else at parse time).
func (in *Interpreter) assignTo(target ast.Expression, v value.Value, env *value.Environment) *errors.Diagnostic {
	switch t := target.(type) {
	case *ast.Identifier:
		if err := env.Assign(t.Name, v); err != nil {
			return in.fail(t.Pos(), "%s", err)
		}
		return nil
	case *ast.IndexAccess:
		return in.assignIndex(t, v, env)
	case *ast.MemberAccess:
		return in.assignMember(t, v, env)
	default:
		return in.fail(target.Pos(), "invalid assignment target")
	}
}

func (in *Interpreter) assignIndex(t *ast.IndexAccess, v value.Value, env *value.Environment) *errors.Diagnostic {
	obj, diag := in.eval(t.Object, env)
	if diag != nil {
		return diag
	}
	idx, diag := in.eval(t.Index, env)
	if diag != nil {
		return diag
	}
	switch o := obj.(type) {
	case value.List:
		i, ok := idx.(value.Integer)
		if !ok {
			return in.fail(t.Pos(), "list index must be an integer, got %s", idx.Type())
		}
		elems := *o.Elements
		if i.Value < 0 || int(i.Value) >= len(elems) {
			return in.fail(t.Pos(), "list index out of bounds: %d", i.Value)
		}
		elems[i.Value] = v
		return nil
	case value.Map:
		key, err := value.KeyOf(idx)
		if err != nil {
			return in.fail(t.Pos(), "%s", err)
		}
		o.Set(key, v)
		return nil
	default:
		return in.fail(t.Pos(), "value of kind %s does not support index assignment", obj.Type())
	}
}

func (in *Interpreter) assignMember(t *ast.MemberAccess, v value.Value, env *value.Environment) *errors.Diagnostic {
	obj, diag := in.eval(t.Object, env)
	if diag != nil {
		return diag
	}
	inst, ok := obj.(value.StructInstance)
	if !ok {
		return in.fail(t.Pos(), "value of kind %s has no member %q", obj.Type(), t.Name)
	}
	inst.Set(t.Name, v)
	return nil
}
