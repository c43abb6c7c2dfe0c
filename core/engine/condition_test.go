package engine

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/95jonpet/pjsh/core/ast"
	"github.com/95jonpet/pjsh/core/state"
)

func TestEvalCondition(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.fs.MkdirAll("/dir", 0o755))
	require.NoError(t, afero.WriteFile(f.fs, "/dir/file.txt", []byte("x"), 0o644))
	f.ctx.SetVar("set", state.Word("value"))
	f.ctx.SetVar("blank", state.Word(""))

	cases := []struct {
		name     string
		cond     ast.Condition
		expected bool
	}{
		{"is-directory on a directory", ast.IsDirectory{Path: ast.Literal("/dir")}, true},
		{"is-directory on a file", ast.IsDirectory{Path: ast.Literal("/dir/file.txt")}, false},
		{"is-directory on a missing path", ast.IsDirectory{Path: ast.Literal("/nope")}, false},
		{"is-file on a file", ast.IsFile{Path: ast.Literal("/dir/file.txt")}, true},
		{"is-file on a directory", ast.IsFile{Path: ast.Literal("/dir")}, false},
		{"is-path on a directory", ast.IsPath{Path: ast.Literal("/dir")}, true},
		{"is-path on a file", ast.IsPath{Path: ast.Literal("/dir/file.txt")}, true},
		{"is-path on a missing path", ast.IsPath{Path: ast.Literal("/nope")}, false},
		{"empty on an empty word", ast.Empty{Word: ast.Variable("blank")}, true},
		{"empty on a set word", ast.Empty{Word: ast.Variable("set")}, false},
		{"not-empty on a set word", ast.NotEmpty{Word: ast.Variable("set")}, true},
		{"equal words", ast.Equal{A: ast.Literal("a"), B: ast.Literal("a")}, true},
		{"unequal words", ast.Equal{A: ast.Literal("a"), B: ast.Literal("b")}, false},
		{"not-equal words", ast.NotEqual{A: ast.Literal("a"), B: ast.Literal("b")}, true},
		{"equal after expansion", ast.Equal{A: ast.Variable("set"), B: ast.Literal("value")}, true},
		{"invert", ast.Invert{Condition: ast.Equal{A: ast.Literal("a"), B: ast.Literal("a")}}, false},
		{
			"double invert",
			ast.Invert{Condition: ast.Invert{Condition: ast.IsPath{Path: ast.Literal("/dir")}}},
			true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := f.executor.EvalCondition(tc.cond, f.ctx)

			require.NoError(t, err)
			assert.Equal(t, tc.expected, actual)
		})
	}
}

func TestConditionPathsResolveAgainstWorkingDirectory(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.fs.MkdirAll("/work/sub", 0o755))
	f.ctx.SetVar("PWD", state.Word("/work"))

	ok, err := f.executor.EvalCondition(ast.IsDirectory{Path: ast.Literal("sub")}, f.ctx)

	require.NoError(t, err)
	assert.True(t, ok)
}

func TestConditionExpansionFailure(t *testing.T) {
	f := newFixture(t)

	_, err := f.executor.EvalCondition(ast.Equal{
		A: ast.Variable("missing"),
		B: ast.Literal("x"),
	}, f.ctx)

	var undefined *UndefinedVariableError
	assert.ErrorAs(t, err, &undefined)
}
