package builtins

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cactus-lang/cactus/internal/value"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// upperCaser/lowerCaser perform locale-correct case conversion
// (SPEC_FULL.md §4.1d), grounded on the teacher's own use of
// golang.org/x/text for the same purpose in its string helpers.
func upperCaser() cases.Caser { return cases.Upper(language.Und) }
func lowerCaser() cases.Caser { return cases.Lower(language.Und) }

// DispatchMethod resolves and invokes a built-in method on a list, string,
// or map receiver (spec.md §4.4's fixed built-in method table). It returns
// (value, true, nil) on a successful dispatch, or (nil, false, nil) when
// name isn't a built-in method for receiver's kind (callers then try
// user-defined `<TypeName>.<method>` dispatch).
func DispatchMethod(receiver value.Value, name string, args []value.Value) (value.Value, bool, error) {
	switch r := receiver.(type) {
	case value.List:
		v, ok, err := listMethod(r, name, args)
		return v, ok, err
	case value.String:
		v, ok, err := stringMethod(r, name, args)
		return v, ok, err
	case value.Map:
		v, ok, err := mapMethod(r, name, args)
		return v, ok, err
	default:
		return nil, false, nil
	}
}

func listMethod(l value.List, name string, args []value.Value) (value.Value, bool, error) {
	switch name {
	case "append":
		*l.Elements = append(*l.Elements, args...)
		return l, true, nil
	case "pop":
		n := len(*l.Elements)
		if n == 0 {
			return nil, true, fmt.Errorf("pop: list is empty")
		}
		last := (*l.Elements)[n-1]
		*l.Elements = (*l.Elements)[:n-1]
		return last, true, nil
	case "length":
		return value.Integer{Value: int64(len(*l.Elements))}, true, nil
	case "reverse":
		elems := *l.Elements
		for i, j := 0, len(elems)-1; i < j; i, j = i+1, j-1 {
			elems[i], elems[j] = elems[j], elems[i]
		}
		return l, true, nil
	case "sort":
		elems := *l.Elements
		cp := make([]value.Value, len(elems))
		copy(cp, elems)
		sorted, err := sortValues(cp)
		if err != nil {
			return nil, true, err
		}
		copy(elems, sorted)
		return l, true, nil
	default:
		return nil, false, nil
	}
}

func sortValues(elems []value.Value) ([]value.Value, error) {
	var sortErr error
	sort.SliceStable(elems, func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		lt, err := value.Compare("<", elems[i], elems[j])
		if err != nil {
			sortErr = err
			return false
		}
		return value.Truthy(lt)
	})
	return elems, sortErr
}

func stringMethod(s value.String, name string, args []value.Value) (value.Value, bool, error) {
	switch name {
	case "upper":
		return value.String{Value: upperCaser().String(s.Value)}, true, nil
	case "lower":
		return value.String{Value: lowerCaser().String(s.Value)}, true, nil
	case "split":
		sep := " "
		if len(args) > 0 {
			if as, ok := args[0].(value.String); ok {
				sep = as.Value
			}
		}
		parts := strings.Split(s.Value, sep)
		out := make([]value.Value, len(parts))
		for i, p := range parts {
			out[i] = value.String{Value: p}
		}
		return value.NewList(out), true, nil
	case "strip":
		return value.String{Value: strings.TrimSpace(s.Value)}, true, nil
	case "replace":
		if len(args) != 2 {
			return nil, true, fmt.Errorf("replace: expected 2 arguments, got %d", len(args))
		}
		old, ok1 := args[0].(value.String)
		repl, ok2 := args[1].(value.String)
		if !ok1 || !ok2 {
			return nil, true, fmt.Errorf("replace: expected STRING arguments")
		}
		return value.String{Value: strings.ReplaceAll(s.Value, old.Value, repl.Value)}, true, nil
	case "contains":
		if len(args) != 1 {
			return nil, true, fmt.Errorf("contains: expected 1 argument, got %d", len(args))
		}
		needle, ok := args[0].(value.String)
		if !ok {
			return nil, true, fmt.Errorf("contains: expected STRING argument")
		}
		return value.Boolean{Value: strings.Contains(s.Value, needle.Value)}, true, nil
	case "length":
		return value.Integer{Value: int64(len([]rune(s.Value)))}, true, nil
	default:
		return nil, false, nil
	}
}

func mapMethod(m value.Map, name string, args []value.Value) (value.Value, bool, error) {
	switch name {
	case "get":
		if len(args) < 1 {
			return nil, true, fmt.Errorf("get: expected at least 1 argument")
		}
		key, err := value.KeyOf(args[0])
		if err != nil {
			return nil, true, err
		}
		if v, ok := m.Get(key); ok {
			return v, true, nil
		}
		if len(args) > 1 {
			return args[1], true, nil
		}
		return value.Nil, true, nil
	case "keys":
		keys := m.Keys()
		out := make([]value.Value, len(keys))
		for i, k := range keys {
			if k.IsInt {
				out[i] = value.Integer{Value: k.Int}
			} else {
				out[i] = value.String{Value: k.Str}
			}
		}
		return value.NewList(out), true, nil
	case "values":
		keys := m.Keys()
		out := make([]value.Value, len(keys))
		for i, k := range keys {
			v, _ := m.Get(k)
			out[i] = v
		}
		return value.NewList(out), true, nil
	case "contains":
		if len(args) != 1 {
			return nil, true, fmt.Errorf("contains: expected 1 argument, got %d", len(args))
		}
		key, err := value.KeyOf(args[0])
		if err != nil {
			return nil, true, err
		}
		_, ok := m.Get(key)
		return value.Boolean{Value: ok}, true, nil
	case "length":
		return value.Integer{Value: int64(m.Len())}, true, nil
	default:
		return nil, false, nil
	}
}
