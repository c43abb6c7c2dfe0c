package engine

import (
	"bytes"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/95jonpet/pjsh/core/ast"
	"github.com/95jonpet/pjsh/core/state"
)

// osFixture runs the executor against the real filesystem so pipelines can
// spawn actual programs.
type osFixture struct {
	executor *Executor
	ctx      *state.Context
	stdout   *bytes.Buffer
	stderr   *bytes.Buffer
}

func newOsFixture(t *testing.T, programs ...string) *osFixture {
	t.Helper()

	searchPath := ""
	for _, name := range programs {
		path, err := exec.LookPath(name)
		if err != nil {
			t.Skipf("%s is not available: %v", name, err)
		}
		dir := filepath.Dir(path)
		if !strings.Contains(searchPath, dir) {
			if searchPath != "" {
				searchPath += ":"
			}
			searchPath += dir
		}
	}

	f := &osFixture{
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
	f.executor = New(afero.NewOsFs(), strings.NewReader(""), f.stdout, f.stderr)
	f.ctx = state.NewContext(state.NewHost())
	f.ctx.SetVar("PWD", state.Word("/"))
	f.ctx.SetVar("PATH", state.Word(searchPath))
	t.Cleanup(func() {
		f.ctx.Host().KillAll()
		f.ctx.Host().JoinAll()
	})

	return f
}

func TestPipelineSpawnsConcurrentProcesses(t *testing.T) {
	f := newOsFixture(t, "printf", "sort")

	code, err := f.executor.Run(program(ast.Pipeline{Segments: []ast.Segment{
		ast.Command{Args: []ast.Word{ast.Literal("printf"), ast.Literal("b\nc\na\n")}},
		ast.Command{Args: []ast.Word{ast.Literal("sort")}},
	}}), f.ctx)

	require.NoError(t, err)
	assert.Equal(t, state.ExitSuccess, code)
	assert.Equal(t, "a\nb\nc\n", f.stdout.String())
}

func TestPipelineLastExternalStatusWins(t *testing.T) {
	f := newOsFixture(t, "printf", "sort")

	// The final sort fails on a missing input file; its status is the
	// pipeline's even though the first segment succeeds.
	code, err := f.executor.Run(program(ast.Pipeline{Segments: []ast.Segment{
		ast.Command{Args: []ast.Word{ast.Literal("printf"), ast.Literal("x\n")}},
		ast.Command{Args: []ast.Word{ast.Literal("sort"), ast.Literal("/this/file/does/not-exist")}},
	}}), f.ctx)

	require.NoError(t, err)
	assert.NotEqual(t, state.ExitSuccess, code)
}

func TestPipelineExternalIntoBuiltin(t *testing.T) {
	f := newOsFixture(t, "printf")
	f.ctx.RegisterBuiltin(upperBuiltin())

	code, err := f.executor.Run(program(ast.Pipeline{Segments: []ast.Segment{
		ast.Command{Args: []ast.Word{ast.Literal("printf"), ast.Literal("mixed\n")}},
		ast.Command{Args: []ast.Word{ast.Literal("upper")}},
	}}), f.ctx)

	require.NoError(t, err)
	assert.Equal(t, state.ExitSuccess, code)
	assert.Equal(t, "MIXED\n", f.stdout.String())
}

func TestAsyncPipelineRegistersChild(t *testing.T) {
	f := newOsFixture(t, "true")

	code, err := f.executor.Run(program(ast.Pipeline{
		IsAsync:  true,
		Segments: []ast.Segment{ast.Command{Args: []ast.Word{ast.Literal("true")}}},
	}), f.ctx)

	require.NoError(t, err)
	assert.Equal(t, state.ExitSuccess, code)
	assert.Contains(t, f.stderr.String(), "started")

	var exited []int
	assert.Eventually(t, func() bool {
		exited = append(exited, f.ctx.Host().TakeExited()...)
		return len(exited) == 1
	}, 5*time.Second, 10*time.Millisecond)
}
