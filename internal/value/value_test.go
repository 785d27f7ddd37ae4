package value

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTruthiness(t *testing.T) {
	falsy := []Value{
		Nil, Boolean{Value: false}, Integer{Value: 0}, Float{Value: 0},
		String{Value: ""}, NewList(nil), NewMap(),
	}
	for _, v := range falsy {
		require.False(t, Truthy(v), "%v should be falsy", v)
	}
	truthy := []Value{
		Boolean{Value: true}, Integer{Value: 1}, Float{Value: 0.1},
		String{Value: "x"}, NewList([]Value{Integer{Value: 1}}),
	}
	for _, v := range truthy {
		require.True(t, Truthy(v), "%v should be truthy", v)
	}
}

func TestListReferenceSemantics(t *testing.T) {
	l := NewList([]Value{Integer{Value: 1}})
	alias := l
	*alias.Elements = append(*alias.Elements, Integer{Value: 2})
	require.Len(t, *l.Elements, 2, "mutating through an alias must be observable through all aliases")
}

func TestMapInsertionOrderPreserved(t *testing.T) {
	m := NewMap()
	m.Set(MapKey{Str: "b"}, Integer{Value: 2})
	m.Set(MapKey{Str: "a"}, Integer{Value: 1})
	keys := m.Keys()
	require.Equal(t, []MapKey{{Str: "b"}, {Str: "a"}}, keys)
}

func TestEnvironmentConstReassignmentFails(t *testing.T) {
	env := NewEnvironment()
	env.Define("K", Integer{Value: 3}, true)
	err := env.Assign("K", Integer{Value: 4})
	require.Error(t, err)
	require.Contains(t, err.Error(), "K")
	require.Contains(t, err.Error(), "constant")
}

func TestEnvironmentScopeChain(t *testing.T) {
	outer := NewEnvironment()
	outer.Define("x", Integer{Value: 1}, false)
	inner := NewEnclosedEnvironment(outer)
	inner.Define("y", Integer{Value: 2}, false)

	v, ok := inner.Get("x")
	require.True(t, ok)
	require.Equal(t, Integer{Value: 1}, v)

	_, ok = outer.Get("y")
	require.False(t, ok, "inner-scope names must not leak to outer scope")
}

func TestEnvironmentAssignUnboundFails(t *testing.T) {
	env := NewEnvironment()
	err := env.Assign("missing", Integer{Value: 1})
	require.Error(t, err)
}

func TestArithIntegerPower(t *testing.T) {
	// 2 ** 3 ** 2 == 512 is a parser-level associativity law; here we check
	// the operator itself computes integer powers correctly.
	result, err := Arith("**", Integer{Value: 3}, Integer{Value: 2})
	require.NoError(t, err)
	require.Equal(t, Integer{Value: 9}, result)
}

func TestArithDivisionAlwaysFloat(t *testing.T) {
	result, err := Arith("/", Integer{Value: 7}, Integer{Value: 2})
	require.NoError(t, err)
	require.IsType(t, Float{}, result)
}

func TestArithModuloFollowsDivisorSign(t *testing.T) {
	result, err := Arith("%", Integer{Value: -7}, Integer{Value: 3})
	require.NoError(t, err)
	require.Equal(t, Integer{Value: 2}, result)
}

func TestArithListPlusListFails(t *testing.T) {
	_, err := Arith("+", NewList(nil), NewList(nil))
	require.Error(t, err)
}

func TestCompareDistinctKindsNeverThrows(t *testing.T) {
	result, err := Compare("==", Integer{Value: 1}, String{Value: "1"})
	require.NoError(t, err)
	require.Equal(t, Boolean{Value: false}, result)
}
