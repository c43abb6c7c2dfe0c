package engine

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/95jonpet/pjsh/core/ast"
	"github.com/95jonpet/pjsh/core/state"
)

// upperBuiltin copies stdin to stdout, uppercased.
func upperBuiltin() state.Command {
	return fakeBuiltin{
		name: "upper",
		run: func(_ []string, _ *state.Context, cio *state.IO) state.CommandResult {
			data, err := io.ReadAll(cio.Stdin)
			if err != nil {
				return state.Code(state.ExitGeneralError)
			}
			_, _ = cio.Stdout.Write(bytes.ToUpper(data))
			return state.Code(state.ExitSuccess)
		},
	}
}

func TestPipelineConnectsSegments(t *testing.T) {
	f := newFixture(t)
	f.ctx.RegisterBuiltin(upperBuiltin())

	err := f.executor.Execute(program(ast.Pipeline{Segments: []ast.Segment{
		ast.Command{Args: []ast.Word{ast.Literal("echo"), ast.Literal("hello")}},
		ast.Command{Args: []ast.Word{ast.Literal("upper")}},
	}}), f.ctx)

	require.NoError(t, err)
	assert.Equal(t, "HELLO\n", f.stdout.String())
}

func TestPipelineLastSegmentStatusWins(t *testing.T) {
	cases := []struct {
		name     string
		segments []string
		status   int
	}{
		{"failure then success", []string{"false", "true"}, state.ExitSuccess},
		{"success then failure", []string{"true", "false"}, state.ExitGeneralError},
		{"all success", []string{"true", "true", "true"}, state.ExitSuccess},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)

			segments := make([]ast.Segment, len(tc.segments))
			for i, name := range tc.segments {
				segments[i] = ast.Command{Args: []ast.Word{ast.Literal(name)}}
			}

			err := f.executor.Execute(program(ast.Pipeline{Segments: segments}), f.ctx)

			require.NoError(t, err)
			assert.Equal(t, tc.status, f.ctx.LastExit())
		})
	}
}

func TestPipelineFirstSegmentReadsCallerStdin(t *testing.T) {
	fs := afero.NewMemMapFs()
	stdout := &bytes.Buffer{}
	ctx := state.NewContext(state.NewHost())
	ctx.RegisterBuiltin(upperBuiltin())
	executor := New(fs, strings.NewReader("piped in"), stdout, io.Discard)

	err := executor.Execute(program(command("upper")), ctx)

	require.NoError(t, err)
	assert.Equal(t, "PIPED IN", stdout.String())
}

func TestUnknownCommandFailsSegmentOnly(t *testing.T) {
	f := newFixture(t)

	err := f.executor.Execute(program(ast.Pipeline{Segments: []ast.Segment{
		ast.Command{Args: []ast.Word{ast.Literal("no-such-command")}},
		ast.Command{Args: []ast.Word{ast.Literal("true")}},
	}}), f.ctx)

	require.NoError(t, err)
	assert.Equal(t, state.ExitSuccess, f.ctx.LastExit())
	assert.Contains(t, f.stderr.String(), "unknown command: no-such-command")
}

func TestUnknownCommandStatus(t *testing.T) {
	f := newFixture(t)

	err := f.executor.Execute(program(command("no-such-command")), f.ctx)

	require.NoError(t, err)
	assert.Equal(t, state.ExitNotFound, f.ctx.LastExit())
}

func TestRedirectStdoutToFile(t *testing.T) {
	f := newFixture(t)

	err := f.executor.Execute(program(ast.Pipeline{Segments: []ast.Segment{
		ast.Command{
			Args: []ast.Word{ast.Literal("echo"), ast.Literal("to file")},
			Redirects: []ast.Redirect{{
				Source:     state.FdStdout,
				Mode:       ast.RedirectWrite,
				TargetPath: ast.Literal("/out.txt"),
			}},
		},
	}}), f.ctx)

	require.NoError(t, err)
	assert.Empty(t, f.stdout.String())

	data, err := afero.ReadFile(f.fs, "/out.txt")
	require.NoError(t, err)
	assert.Equal(t, "to file\n", string(data))
}

func TestRedirectAppendsToFile(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, afero.WriteFile(f.fs, "/log", []byte("old\n"), 0o644))

	err := f.executor.Execute(program(ast.Pipeline{Segments: []ast.Segment{
		ast.Command{
			Args: []ast.Word{ast.Literal("echo"), ast.Literal("new")},
			Redirects: []ast.Redirect{{
				Source:     state.FdStdout,
				Mode:       ast.RedirectAppend,
				TargetPath: ast.Literal("/log"),
			}},
		},
	}}), f.ctx)

	require.NoError(t, err)
	data, err := afero.ReadFile(f.fs, "/log")
	require.NoError(t, err)
	assert.Equal(t, "old\nnew\n", string(data))
}

func TestRedirectStdinFromFile(t *testing.T) {
	f := newFixture(t)
	f.ctx.RegisterBuiltin(upperBuiltin())
	require.NoError(t, afero.WriteFile(f.fs, "/in.txt", []byte("file input"), 0o644))

	err := f.executor.Execute(program(ast.Pipeline{Segments: []ast.Segment{
		ast.Command{
			Args: []ast.Word{ast.Literal("upper")},
			Redirects: []ast.Redirect{{
				Source:     state.FdStdin,
				Mode:       ast.RedirectRead,
				TargetPath: ast.Literal("/in.txt"),
			}},
		},
	}}), f.ctx)

	require.NoError(t, err)
	assert.Equal(t, "FILE INPUT", f.stdout.String())
}

func TestRedirectDuplicatesDescriptor(t *testing.T) {
	f := newFixture(t)

	// 2>&1 moves the unknown-command message onto stdout.
	err := f.executor.Execute(program(ast.Pipeline{Segments: []ast.Segment{
		ast.Command{
			Args: []ast.Word{ast.Literal("no-such-command")},
			Redirects: []ast.Redirect{{
				Source:   state.FdStderr,
				TargetFd: state.FdStdout,
			}},
		},
	}}), f.ctx)

	require.NoError(t, err)
	assert.Contains(t, f.stdout.String(), "unknown command: no-such-command")
	assert.Empty(t, f.stderr.String())
}

func TestRedirectMissingInputAbortsPipeline(t *testing.T) {
	f := newFixture(t)

	err := f.executor.Execute(program(ast.Pipeline{Segments: []ast.Segment{
		ast.Command{
			Args: []ast.Word{ast.Literal("echo"), ast.Literal("never")},
			Redirects: []ast.Redirect{{
				Source:     state.FdStdin,
				Mode:       ast.RedirectRead,
				TargetPath: ast.Literal("/missing.txt"),
			}},
		},
		ast.Command{Args: []ast.Word{ast.Literal("echo"), ast.Literal("also never")}},
	}}), f.ctx)

	require.Error(t, err)
	assert.Empty(t, f.stdout.String())
	assert.Equal(t, state.ExitGeneralError, f.ctx.LastExit())
}

func TestRedirectUnknownDescriptor(t *testing.T) {
	f := newFixture(t)

	err := f.executor.Execute(program(ast.Pipeline{Segments: []ast.Segment{
		ast.Command{
			Args:      []ast.Word{ast.Literal("echo")},
			Redirects: []ast.Redirect{{Source: 5, TargetFd: 9}},
		},
	}}), f.ctx)

	var unknown *state.UnknownFdError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, 9, unknown.Fd)
}

func TestSpawnFailureSurfaces(t *testing.T) {
	f := newFixture(t)

	// The program resolves through the shell's filesystem view but does not
	// exist for the OS, so process creation fails after resolution.
	require.NoError(t, afero.WriteFile(f.fs, "/fake/prog", []byte("#!/bin/sh\n"), 0o755))
	require.NoError(t, f.fs.Chmod("/fake/prog", 0o755))
	f.ctx.SetVar("PATH", state.Word("/fake"))

	err := f.executor.Execute(program(command("prog")), f.ctx)

	var spawn *SpawnError
	require.ErrorAs(t, err, &spawn)
	assert.Equal(t, "/fake/prog", spawn.Path)
	assert.Equal(t, state.ExitGeneralError, f.ctx.LastExit())
}

func TestConditionSegmentStatus(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name   string
		cond   ast.Condition
		status int
	}{
		{"holds", ast.Equal{A: ast.Literal("x"), B: ast.Literal("x")}, state.ExitSuccess},
		{"fails", ast.Equal{A: ast.Literal("x"), B: ast.Literal("y")}, state.ExitGeneralError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := f.executor.Execute(program(ast.Pipeline{Segments: []ast.Segment{
				ast.ConditionSegment{Condition: tc.cond},
			}}), f.ctx)

			require.NoError(t, err)
			assert.Equal(t, tc.status, f.ctx.LastExit())
		})
	}
}

func TestAliasExpansion(t *testing.T) {
	f := newFixture(t)
	f.ctx.SetAlias("greet", "echo hello")

	err := f.executor.Execute(program(command("greet", "world")), f.ctx)

	require.NoError(t, err)
	assert.Equal(t, "hello world\n", f.stdout.String())
}

func TestAliasDoesNotExpandQuotedWord(t *testing.T) {
	f := newFixture(t)
	f.ctx.SetAlias("echo", "echo aliased")

	err := f.executor.Execute(program(ast.Pipeline{Segments: []ast.Segment{
		ast.Command{Args: []ast.Word{ast.Quoted("echo"), ast.Literal("plain")}},
	}}), f.ctx)

	require.NoError(t, err)
	assert.Equal(t, "plain\n", f.stdout.String())
}

func TestAsyncPipelineReturnsImmediately(t *testing.T) {
	f := newFixture(t)

	var mu sync.Mutex
	ran := false
	release := make(chan struct{})
	f.ctx.RegisterBuiltin(fakeBuiltin{
		name: "slow",
		run: func([]string, *state.Context, *state.IO) state.CommandResult {
			<-release
			mu.Lock()
			ran = true
			mu.Unlock()
			return state.Code(state.ExitSuccess)
		},
	})

	err := f.executor.Execute(program(ast.Pipeline{
		IsAsync:  true,
		Segments: []ast.Segment{ast.Command{Args: []ast.Word{ast.Literal("slow")}}},
	}), f.ctx)

	require.NoError(t, err)
	assert.Equal(t, state.ExitSuccess, f.ctx.LastExit())

	mu.Lock()
	assert.False(t, ran)
	mu.Unlock()

	close(release)
	f.ctx.Host().JoinAll()

	mu.Lock()
	assert.True(t, ran)
	mu.Unlock()
}

func TestAsyncSegmentScopeIsIsolated(t *testing.T) {
	f := newFixture(t)
	f.ctx.SetVar("a", state.Word("original"))
	f.ctx.RegisterBuiltin(fakeBuiltin{
		name: "mutate",
		run: func(_ []string, ctx *state.Context, _ *state.IO) state.CommandResult {
			ctx.UpdateVar("a", state.Word("mutated"))
			return state.Code(state.ExitSuccess)
		},
	})

	err := f.executor.Execute(program(ast.Pipeline{
		IsAsync:  true,
		Segments: []ast.Segment{ast.Command{Args: []ast.Word{ast.Literal("mutate")}}},
	}), f.ctx)

	require.NoError(t, err)
	f.ctx.Host().JoinAll()

	v, _ := f.ctx.Var("a")
	assert.Equal(t, state.Word("original"), v)
}

func TestBuiltinShadowsFunction(t *testing.T) {
	f := newFixture(t)
	f.ctx.DefineFunction(ast.Function{
		Name: "echo",
		Body: program(command("true")),
	})

	err := f.executor.Execute(program(command("echo", "builtin wins")), f.ctx)

	require.NoError(t, err)
	assert.Equal(t, "builtin wins\n", f.stdout.String())
}
