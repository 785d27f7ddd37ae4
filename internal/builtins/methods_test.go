package builtins

import (
	"testing"

	"github.com/cactus-lang/cactus/internal/value"
	"github.com/stretchr/testify/require"
)

func TestListSort(t *testing.T) {
	l := value.NewList([]value.Value{
		value.Integer{Value: 3}, value.Integer{Value: 1}, value.Integer{Value: 2},
	})
	v, ok, err := DispatchMethod(l, "sort", nil)
	require.True(t, ok)
	require.NoError(t, err)
	require.Equal(t, "[1, 2, 3]", v.String())
}

func TestListAppendMutatesInPlace(t *testing.T) {
	l := value.NewList([]value.Value{value.Integer{Value: 1}})
	alias := l
	_, ok, err := DispatchMethod(l, "append", []value.Value{value.Integer{Value: 2}})
	require.True(t, ok)
	require.NoError(t, err)
	require.Len(t, *alias.Elements, 2)
}

func TestStringUpperLower(t *testing.T) {
	v, ok, err := DispatchMethod(value.String{Value: "Hello"}, "upper", nil)
	require.True(t, ok)
	require.NoError(t, err)
	require.Equal(t, "HELLO", v.String())

	v, ok, err = DispatchMethod(value.String{Value: "Hello"}, "lower", nil)
	require.True(t, ok)
	require.NoError(t, err)
	require.Equal(t, "hello", v.String())
}

func TestStringSplitAndContains(t *testing.T) {
	v, ok, _ := DispatchMethod(value.String{Value: "a,b,c"}, "split", []value.Value{value.String{Value: ","}})
	require.True(t, ok)
	require.Equal(t, "['a', 'b', 'c']", v.String())

	v, ok, _ = DispatchMethod(value.String{Value: "hello"}, "contains", []value.Value{value.String{Value: "ell"}})
	require.True(t, ok)
	require.Equal(t, value.Boolean{Value: true}, v)
}

func TestMapGetKeysValuesContains(t *testing.T) {
	m := value.NewMap()
	m.Set(value.MapKey{Str: "a"}, value.Integer{Value: 1})

	v, ok, err := DispatchMethod(m, "get", []value.Value{value.String{Value: "a"}})
	require.True(t, ok)
	require.NoError(t, err)
	require.Equal(t, value.Integer{Value: 1}, v)

	v, ok, err = DispatchMethod(m, "get", []value.Value{value.String{Value: "missing"}, value.Integer{Value: -1}})
	require.True(t, ok)
	require.NoError(t, err)
	require.Equal(t, value.Integer{Value: -1}, v)

	v, ok, _ = DispatchMethod(m, "contains", []value.Value{value.String{Value: "a"}})
	require.True(t, ok)
	require.Equal(t, value.Boolean{Value: true}, v)
}

func TestUnknownMethodDoesNotDispatch(t *testing.T) {
	_, ok, err := DispatchMethod(value.Integer{Value: 1}, "upper", nil)
	require.False(t, ok)
	require.NoError(t, err)
}
