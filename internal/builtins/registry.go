// Package builtins provides the host function registry and the
// list/string/map built-in method tables shared by the tree-walk
// evaluator and the bytecode VM (spec.md §9: "a small registry
// (name -> host function) installed into the root environment at
// program start").
package builtins

import (
	"fmt"
	"io"
	"strconv"

	"github.com/cactus-lang/cactus/internal/value"
)

// Register installs every host function at global scope in env, writing
// println/print output to out.
func Register(env *value.Environment, out io.Writer) {
	for name, fn := range hostFunctions(out) {
		env.Define(name, value.HostFunction{Name: name, Fn: fn}, true)
	}
}

func hostFunctions(out io.Writer) map[string]func([]value.Value) (value.Value, error) {
	return map[string]func([]value.Value) (value.Value, error){
		"println": func(args []value.Value) (value.Value, error) {
			fmt.Fprintln(out, joinArgs(args))
			return value.Nil, nil
		},
		"print": func(args []value.Value) (value.Value, error) {
			fmt.Fprint(out, joinArgs(args))
			return value.Nil, nil
		},
		"len": func(args []value.Value) (value.Value, error) {
			if err := arity("len", args, 1); err != nil {
				return nil, err
			}
			n, err := value.Len(args[0])
			if err != nil {
				return nil, err
			}
			return value.Integer{Value: int64(n)}, nil
		},
		"str": func(args []value.Value) (value.Value, error) {
			if err := arity("str", args, 1); err != nil {
				return nil, err
			}
			return value.String{Value: args[0].String()}, nil
		},
		"int": func(args []value.Value) (value.Value, error) {
			if err := arity("int", args, 1); err != nil {
				return nil, err
			}
			return toInt(args[0])
		},
		"float": func(args []value.Value) (value.Value, error) {
			if err := arity("float", args, 1); err != nil {
				return nil, err
			}
			return toFloat(args[0])
		},
		"type": func(args []value.Value) (value.Value, error) {
			if err := arity("type", args, 1); err != nil {
				return nil, err
			}
			return value.String{Value: args[0].Type()}, nil
		},
		"keys": func(args []value.Value) (value.Value, error) {
			if err := arity("keys", args, 1); err != nil {
				return nil, err
			}
			return mapKeysOf(args[0])
		},
	}
}

func joinArgs(args []value.Value) string {
	out := ""
	for i, a := range args {
		if i > 0 {
			out += " "
		}
		out += a.String()
	}
	return out
}

func arity(name string, args []value.Value, n int) error {
	if len(args) != n {
		return fmt.Errorf("%s: expected %d argument(s), got %d", name, n, len(args))
	}
	return nil
}

func toInt(v value.Value) (value.Value, error) {
	switch t := v.(type) {
	case value.Integer:
		return t, nil
	case value.Float:
		return value.Integer{Value: int64(t.Value)}, nil
	case value.String:
		n, err := strconv.ParseInt(t.Value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("int: cannot convert %q to INTEGER", t.Value)
		}
		return value.Integer{Value: n}, nil
	case value.Boolean:
		if t.Value {
			return value.Integer{Value: 1}, nil
		}
		return value.Integer{Value: 0}, nil
	default:
		return nil, fmt.Errorf("int: cannot convert %s to INTEGER", v.Type())
	}
}

func toFloat(v value.Value) (value.Value, error) {
	switch t := v.(type) {
	case value.Float:
		return t, nil
	case value.Integer:
		return value.Float{Value: float64(t.Value)}, nil
	case value.String:
		f, err := strconv.ParseFloat(t.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("float: cannot convert %q to FLOAT", t.Value)
		}
		return value.Float{Value: f}, nil
	default:
		return nil, fmt.Errorf("float: cannot convert %s to FLOAT", v.Type())
	}
}

func mapKeysOf(v value.Value) (value.Value, error) {
	m, ok := v.(value.Map)
	if !ok {
		return nil, fmt.Errorf("keys: expected MAP, got %s", v.Type())
	}
	keys := m.Keys()
	out := make([]value.Value, len(keys))
	for i, k := range keys {
		if k.IsInt {
			out[i] = value.Integer{Value: k.Int}
		} else {
			out[i] = value.String{Value: k.Str}
		}
	}
	return value.NewList(out), nil
}
