package engine

import (
	"io/fs"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/95jonpet/pjsh/core/ast"
	"github.com/95jonpet/pjsh/core/state"
)

func writeExecutable(t *testing.T, afs afero.Fs, path string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(afs, path, []byte("#!/bin/sh\n"), 0o755))
	require.NoError(t, afs.Chmod(path, 0o755))
}

func TestLookPathSearchesInOrder(t *testing.T) {
	f := newFixture(t)
	writeExecutable(t, f.fs, "/first/tool")
	writeExecutable(t, f.fs, "/second/tool")
	f.ctx.SetVar("PATH", state.Word("/first:/second"))

	path, err := f.executor.LookPath("tool", f.ctx)

	require.NoError(t, err)
	assert.Equal(t, "/first/tool", path)
}

func TestLookPathSkipsNonExecutable(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, afero.WriteFile(f.fs, "/first/tool", []byte("data"), 0o644))
	require.NoError(t, f.fs.Chmod("/first/tool", 0o644))
	writeExecutable(t, f.fs, "/second/tool")
	f.ctx.SetVar("PATH", state.Word("/first:/second"))

	path, err := f.executor.LookPath("tool", f.ctx)

	require.NoError(t, err)
	assert.Equal(t, "/second/tool", path)
}

func TestLookPathNotFound(t *testing.T) {
	f := newFixture(t)
	f.ctx.SetVar("PATH", state.Word("/empty"))

	_, err := f.executor.LookPath("tool", f.ctx)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLookPathSlashBypassesSearch(t *testing.T) {
	f := newFixture(t)
	writeExecutable(t, f.fs, "/opt/tool")
	f.ctx.SetVar("PATH", state.Word("/elsewhere"))

	path, err := f.executor.LookPath("/opt/tool", f.ctx)

	require.NoError(t, err)
	assert.Equal(t, "/opt/tool", path)
}

func TestLookPathRelativeSlashUsesWorkingDirectory(t *testing.T) {
	f := newFixture(t)
	writeExecutable(t, f.fs, "/work/bin/tool")
	f.ctx.SetVar("PWD", state.Word("/work"))

	path, err := f.executor.LookPath("bin/tool", f.ctx)

	require.NoError(t, err)
	assert.Equal(t, "/work/bin/tool", path)
}

func TestLookPathNonExecutableSlashPath(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, afero.WriteFile(f.fs, "/opt/data", []byte("data"), 0o644))
	require.NoError(t, f.fs.Chmod("/opt/data", 0o644))

	_, err := f.executor.LookPath("/opt/data", f.ctx)

	assert.ErrorIs(t, err, fs.ErrPermission)
}

func TestResolveOrder(t *testing.T) {
	f := newFixture(t)
	writeExecutable(t, f.fs, "/bin/tool")
	f.ctx.SetVar("PATH", state.Word("/bin"))

	// External program only.
	resolved := f.executor.Resolve("tool", f.ctx)
	assert.Equal(t, KindProgram, resolved.Kind)
	assert.Equal(t, "/bin/tool", resolved.Path)

	// A function shadows the program.
	f.ctx.DefineFunction(ast.Function{Name: "tool"})
	resolved = f.executor.Resolve("tool", f.ctx)
	assert.Equal(t, KindFunction, resolved.Kind)

	// A builtin shadows both.
	f.ctx.RegisterBuiltin(statusBuiltin("tool", 0))
	resolved = f.executor.Resolve("tool", f.ctx)
	assert.Equal(t, KindBuiltin, resolved.Kind)
}

func TestResolveUnknown(t *testing.T) {
	f := newFixture(t)

	resolved := f.executor.Resolve("nothing", f.ctx)

	assert.Equal(t, KindUnknown, resolved.Kind)
}
