package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/95jonpet/pjsh/core/ast"
)

func TestVarShadowing(t *testing.T) {
	ctx := NewContext(NewHost())
	ctx.SetVar("a", Word("outer"))

	ctx.Push("inner")
	ctx.SetVar("a", Word("inner"))

	v, ok := ctx.Var("a")
	require.True(t, ok)
	assert.Equal(t, Word("inner"), v)

	ctx.Pop()

	v, ok = ctx.Var("a")
	require.True(t, ok)
	assert.Equal(t, Word("outer"), v)
}

func TestUpdateVarWritesOwningFrame(t *testing.T) {
	ctx := NewContext(NewHost())
	ctx.SetVar("a", Word("outer"))

	ctx.Push("inner")
	ctx.UpdateVar("a", Word("updated"))
	ctx.UpdateVar("b", Word("new"))
	ctx.Pop()

	v, ok := ctx.Var("a")
	require.True(t, ok)
	assert.Equal(t, Word("updated"), v)

	// b belonged to no frame, so it landed in the popped inner frame.
	_, ok = ctx.Var("b")
	assert.False(t, ok)
}

func TestUnsetVarRemovesInnermostDefinition(t *testing.T) {
	ctx := NewContext(NewHost())
	ctx.SetVar("a", Word("outer"))
	ctx.Push("inner")
	ctx.SetVar("a", Word("inner"))

	ctx.UnsetVar("a")

	v, ok := ctx.Var("a")
	require.True(t, ok)
	assert.Equal(t, Word("outer"), v)
}

func TestExportAndEnviron(t *testing.T) {
	ctx := NewContext(NewHost())
	ctx.SetVar("B", Word("2"))
	ctx.SetVar("A", Word("1"))
	ctx.SetVar("hidden", Word("3"))

	require.NoError(t, ctx.Export("A"))
	require.NoError(t, ctx.Export("B"))

	assert.Equal(t, []string{"A=1", "B=2"}, ctx.Environ())
}

func TestExportUnknownVariable(t *testing.T) {
	ctx := NewContext(NewHost())

	err := ctx.Export("missing")

	assert.EqualError(t, err, "unknown variable: missing")
}

func TestEnvironReflectsShadowedValue(t *testing.T) {
	ctx := NewContext(NewHost())
	ctx.SetVar("A", Word("outer"))
	require.NoError(t, ctx.Export("A"))

	ctx.Push("inner")
	ctx.SetVar("A", Word("inner"))

	assert.Equal(t, []string{"A=inner"}, ctx.Environ())
}

func TestPopOutermostFramePanics(t *testing.T) {
	ctx := NewContext(NewHost())

	assert.Panics(t, func() { ctx.Pop() })
}

func TestArgsInheritance(t *testing.T) {
	ctx := NewContext(NewHost())
	ctx.SetArgs([]string{"pjsh", "one"})

	ctx.Push("block")
	assert.Equal(t, []string{"pjsh", "one"}, ctx.Args())

	ctx.PushFunction("f", []string{"f", "x"}, nil)
	assert.Equal(t, []string{"f", "x"}, ctx.Args())

	ctx.Pop()
	ctx.Pop()
	assert.Equal(t, []string{"pjsh", "one"}, ctx.Args())
}

func TestPushFunctionBindsParameters(t *testing.T) {
	ctx := NewContext(NewHost())

	ctx.PushFunction("greet", []string{"greet", "world"}, map[string]Value{
		"target": Word("world"),
	})

	v, ok := ctx.Var("target")
	require.True(t, ok)
	assert.Equal(t, Word("world"), v)

	ctx.Pop()
	_, ok = ctx.Var("target")
	assert.False(t, ok)
}

func TestForkIsolatesScope(t *testing.T) {
	ctx := NewContext(NewHost())
	ctx.SetVar("a", Word("original"))

	forked := ctx.Fork("subshell")
	forked.SetVar("a", Word("changed"))
	forked.SetVar("b", Word("new"))

	v, ok := ctx.Var("a")
	require.True(t, ok)
	assert.Equal(t, Word("original"), v)
	_, ok = ctx.Var("b")
	assert.False(t, ok)

	// The host registry stays shared.
	assert.Same(t, ctx.Host(), forked.Host())
}

func TestFunctionVisibility(t *testing.T) {
	ctx := NewContext(NewHost())

	ctx.Push("inner")
	ctx.DefineFunction(ast.Function{Name: "f"})

	fn, ok := ctx.Function("f")
	require.True(t, ok)
	assert.Equal(t, "f", fn.Name)

	ctx.Pop()
	_, ok = ctx.Function("f")
	assert.False(t, ok)
}

func TestAliases(t *testing.T) {
	ctx := NewContext(NewHost())
	ctx.SetAlias("ll", "ls -l")

	v, ok := ctx.Alias("ll")
	require.True(t, ok)
	assert.Equal(t, "ls -l", v)

	ctx.UnsetAlias("ll")
	_, ok = ctx.Alias("ll")
	assert.False(t, ok)
}

func TestLastExit(t *testing.T) {
	ctx := NewContext(NewHost())
	assert.Equal(t, 0, ctx.LastExit())

	ctx.SetLastExit(42)
	assert.Equal(t, 42, ctx.LastExit())
}
