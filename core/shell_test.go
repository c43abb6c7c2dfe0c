package core

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/95jonpet/pjsh/core/config"
	"github.com/95jonpet/pjsh/core/state"
)

func newTestShell(t *testing.T) (*Shell, *bytes.Buffer) {
	t.Helper()

	out := &bytes.Buffer{}
	cfg := config.Default()
	shell, err := NewShell(afero.NewMemMapFs(), cfg, strings.NewReader(""), out, out)
	require.NoError(t, err)
	shell.SetDir("/")
	t.Cleanup(func() { _ = shell.Close() })

	return shell, out
}

func TestRunCommand(t *testing.T) {
	shell, out := newTestShell(t)

	code, err := shell.RunCommand("echo hello")

	require.NoError(t, err)
	assert.Equal(t, state.ExitSuccess, code)
	assert.Equal(t, "hello\n", out.String())
}

func TestRunCommandParseError(t *testing.T) {
	shell, _ := newTestShell(t)

	code, err := shell.RunCommand("echo >")

	assert.Error(t, err)
	assert.Equal(t, state.ExitUsageError, code)
}

func TestRunCommandExit(t *testing.T) {
	shell, _ := newTestShell(t)

	code, err := shell.RunCommand("exit 3")

	require.NoError(t, err)
	assert.Equal(t, 3, code)
}

func TestRunScript(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/script.pjsh", []byte("a := scripted\necho $a\n"), 0o644))

	out := &bytes.Buffer{}
	shell, err := NewShell(fs, config.Default(), strings.NewReader(""), out, out)
	require.NoError(t, err)
	shell.SetDir("/")

	code, err := shell.RunScript("/script.pjsh", []string{"one", "two"})

	require.NoError(t, err)
	assert.Equal(t, state.ExitSuccess, code)
	assert.Equal(t, "scripted\n", out.String())
	assert.Equal(t, []string{"one", "two"}, shell.Context().Args())
}

func TestRunScriptMissingFile(t *testing.T) {
	shell, _ := newTestShell(t)

	code, err := shell.RunScript("/nope.pjsh", nil)

	assert.Error(t, err)
	assert.Equal(t, state.ExitGeneralError, code)
}

func TestSetEnviron(t *testing.T) {
	shell, _ := newTestShell(t)

	shell.SetEnviron([]string{"LANG=C", "EMPTY=", "malformed"})

	assert.Contains(t, shell.Context().Environ(), "LANG=C")
	assert.Contains(t, shell.Context().Environ(), "EMPTY=")
}

func TestSetEnvironSeedsShellBinary(t *testing.T) {
	shell, _ := newTestShell(t)

	shell.SetEnviron([]string{"SHELL=/bin/zsh"})

	exe, err := os.Executable()
	require.NoError(t, err)
	v, ok := shell.Context().Var("SHELL")
	require.True(t, ok)
	assert.Equal(t, state.Word(exe), v)
}

func TestExpandPrompt(t *testing.T) {
	shell, _ := newTestShell(t)
	shell.SetDir("/work")
	shell.Context().SetLastExit(4)

	assert.Equal(t, "/work [4] ", shell.expandPrompt("$PWD [$?] "))
	assert.Equal(t, "", shell.expandPrompt("$UNDEFINED"))
}

func TestScripts(t *testing.T) {
	scripts := map[string]string{
		"features": `greeting := hello
echo $greeting world
echo ${greeting|upper}

fn greet(name) {
  echo "Hi, $name!"
}
greet pjsh

if [[ $greeting == hello ]] {
  echo english
} else {
  echo unknown
}

letters := "a b c"
echo ${letters|split " "|len}

flag := on
while [[ $flag == on ]] {
  echo looped
  flag := off
}

false
status
echo done
`,
		"aliases": `alias hi='echo hello'
hi there
`,
		"unknown_command": `missing_cmd
status
echo after
`,
	}

	g := goldie.New(
		t,
		goldie.WithFixtureDir(filepath.Join("testdata", "golden")),
		goldie.WithDiffEngine(goldie.ColoredDiff),
		goldie.WithTestNameForDir(true),
	)

	for tn, src := range scripts {
		t.Run(tn, func(t *testing.T) {
			shell, out := newTestShell(t)

			_, err := shell.RunCommand(src)
			require.NoError(t, err)

			g.Assert(t, tn, out.Bytes())
		})
	}
}
