// Package value defines the runtime value model shared by the tree-walk
// evaluator and the bytecode VM, plus the environment and event-log types
// both backends are built against (spec.md §3).
package value

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Value is implemented by every runtime value. It deliberately avoids a
// bare interface{} carrier so both backends dispatch through the same
// narrow, type-safe surface (CWBudde-go-dws's internal/interp.Value
// follows the same discipline).
type Value interface {
	Type() string
	String() string
}

// Integer is a signed 64-bit integer value.
type Integer struct{ Value int64 }

func (Integer) Type() string        { return "INTEGER" }
func (i Integer) String() string    { return strconv.FormatInt(i.Value, 10) }

// Float is a 64-bit floating-point value.
type Float struct{ Value float64 }

func (Float) Type() string     { return "FLOAT" }
func (f Float) String() string { return strconv.FormatFloat(f.Value, 'g', -1, 64) }

// String is a text value.
type String struct{ Value string }

func (String) Type() string     { return "STRING" }
func (s String) String() string { return s.Value }

// Boolean is a true/false value.
type Boolean struct{ Value bool }

func (Boolean) Type() string     { return "BOOLEAN" }
func (b Boolean) String() string { return strconv.FormatBool(b.Value) }

// None is the singleton null value.
type None struct{}

func (None) Type() string   { return "NONE" }
func (None) String() string { return "none" }

// Nil is the canonical None instance; callers should prefer it over
// constructing a new None{} so identity-sensitive code stays simple.
var Nil = None{}

// List is an ordered, mutable, reference-semantics sequence
// (spec.md §3: "List/map values have reference semantics").
type List struct {
	Elements *[]Value
}

// NewList allocates a fresh List wrapping elems (elems is taken by
// reference, not copied).
func NewList(elems []Value) List {
	return List{Elements: &elems}
}

func (List) Type() string { return "LIST" }

func (l List) String() string {
	parts := make([]string, len(*l.Elements))
	for i, e := range *l.Elements {
		parts[i] = elementRepr(e)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// elementRepr quotes strings when they appear nested inside a list/map
// representation, matching the `['a', 'b', 5]` form spec.md §8 requires.
func elementRepr(v Value) string {
	if s, ok := v.(String); ok {
		return "'" + s.Value + "'"
	}
	return v.String()
}

// MapKey is a string-or-integer map key (spec.md §3).
type MapKey struct {
	IsInt bool
	Int   int64
	Str   string
}

func (k MapKey) String() string {
	if k.IsInt {
		return strconv.FormatInt(k.Int, 10)
	}
	return k.Str
}

// KeyOf converts a runtime Value into a MapKey, failing for kinds that
// cannot serve as a key.
func KeyOf(v Value) (MapKey, error) {
	switch t := v.(type) {
	case Integer:
		return MapKey{IsInt: true, Int: t.Value}, nil
	case String:
		return MapKey{Str: t.Value}, nil
	default:
		return MapKey{}, fmt.Errorf("unsupported map key kind: %s", v.Type())
	}
}

// Map is an ordered, mutable, reference-semantics mapping. Insertion order
// is preserved for iteration (spec.md §3).
type Map struct {
	data *mapData
}

type mapData struct {
	order []MapKey
	items map[MapKey]Value
}

// NewMap allocates a fresh, empty Map.
func NewMap() Map {
	return Map{data: &mapData{items: make(map[MapKey]Value)}}
}

func (Map) Type() string { return "MAP" }

func (m Map) String() string {
	parts := make([]string, 0, len(m.data.order))
	for _, k := range m.data.order {
		parts = append(parts, fmt.Sprintf("%s: %s", formatKey(k), elementRepr(m.data.items[k])))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func formatKey(k MapKey) string {
	if k.IsInt {
		return k.String()
	}
	return "'" + k.Str + "'"
}

// Get looks up key, returning (value, true) if present.
func (m Map) Get(key MapKey) (Value, bool) {
	v, ok := m.data.items[key]
	return v, ok
}

// Set inserts or updates key, preserving first-insertion order.
func (m Map) Set(key MapKey, v Value) {
	if _, exists := m.data.items[key]; !exists {
		m.data.order = append(m.data.order, key)
	}
	m.data.items[key] = v
}

// Keys returns keys in insertion order.
func (m Map) Keys() []MapKey {
	out := make([]MapKey, len(m.data.order))
	copy(out, m.data.order)
	return out
}

// Len returns the number of entries.
func (m Map) Len() int { return len(m.data.order) }

// SortedKeysForDisplay returns the keys ordered by their string form rather
// than by insertion; normal iteration uses insertion order per spec.md §3.
func (m Map) SortedKeysForDisplay() []MapKey {
	keys := m.Keys()
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}

// HostFunction wraps a Go function bound at global scope (spec.md §3, §9:
// "Built-in functions bound by name").
type HostFunction struct {
	Name string
	Fn   func(args []Value) (Value, error)
}

func (h HostFunction) Type() string     { return "FUNCTION" }
func (h HostFunction) String() string   { return "<builtin " + h.Name + ">" }

// PendingResult is the opaque async token named in spec.md §5; `await`
// is the only operator that observes it.
type PendingResult struct {
	Ready  bool
	Result Value
	Recv   <-chan Value
}

func (PendingResult) Type() string   { return "PENDING" }
func (PendingResult) String() string { return "<pending>" }

// Resolve blocks until the pending result is available, matching
// spec.md §5's "the evaluator blocks the current execution until the
// result is available".
func (p PendingResult) Resolve() Value {
	if p.Ready {
		return p.Result
	}
	return <-p.Recv
}

// Truthy implements spec.md §4.3's truthiness table.
func Truthy(v Value) bool {
	switch t := v.(type) {
	case None:
		return false
	case Boolean:
		return t.Value
	case Integer:
		return t.Value != 0
	case Float:
		return t.Value != 0
	case String:
		return t.Value != ""
	case List:
		return len(*t.Elements) != 0
	case Map:
		return t.Len() != 0
	default:
		return true
	}
}
