package engine

import (
	"errors"
	"io/fs"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/95jonpet/pjsh/core/ast"
	"github.com/95jonpet/pjsh/core/state"
)

// ErrNotFound is the error resulting if a path search failed to find an
// executable file.
var ErrNotFound = exec.ErrNotFound

// CommandKind classifies a resolved command name.
type CommandKind int

const (
	// KindUnknown means resolution failed.
	KindUnknown CommandKind = iota
	// KindBuiltin is a registered builtin command.
	KindBuiltin
	// KindFunction is a user-defined function.
	KindFunction
	// KindProgram is an external program on the search path.
	KindProgram
)

// ResolvedCommand is the transient classification of a command name. It is
// computed once per invocation and not persisted.
type ResolvedCommand struct {
	Kind     CommandKind
	Builtin  state.Command
	Function ast.Function
	Path     string
}

// Resolve classifies a command name against the current context.
//
// The order is fixed: builtins shadow functions, which shadow external
// programs. This lets users override external tools with functions while the
// shell keeps builtins it cannot allow to be redefined, such as exit.
// Resolution has no side effects.
func (e *Executor) Resolve(name string, ctx *state.Context) ResolvedCommand {
	if builtin, ok := ctx.Builtin(name); ok {
		return ResolvedCommand{Kind: KindBuiltin, Builtin: builtin}
	}
	if fn, ok := ctx.Function(name); ok {
		return ResolvedCommand{Kind: KindFunction, Function: fn}
	}
	if path, err := e.LookPath(name, ctx); err == nil {
		return ResolvedCommand{Kind: KindProgram, Path: path}
	}
	return ResolvedCommand{Kind: KindUnknown}
}

// LookPath searches for an executable named file in the directories named by
// the PATH variable. If file contains a slash, it is tried directly and the
// PATH is not consulted.
func (e *Executor) LookPath(file string, ctx *state.Context) (string, error) {
	if strings.Contains(file, "/") {
		path := resolvePath(ctx, file)
		if err := e.findExecutable(path); err != nil {
			return "", err
		}
		return path, nil
	}

	path, _ := ctx.Var("PATH")
	for _, dir := range filepath.SplitList(state.ValueString(path)) {
		if dir == "" {
			// Unix shell semantics: path element "" means ".".
			dir = "."
		}
		path := filepath.Join(dir, file)
		if err := e.findExecutable(path); err == nil {
			return path, nil
		}
	}
	return "", ErrNotFound
}

func (e *Executor) findExecutable(file string) error {
	d, err := e.fs.Stat(file)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ErrNotFound
	case err != nil:
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0111 != 0 {
		return nil
	}
	return fs.ErrPermission
}

// resolvePath resolves a possibly relative path against the context's
// working directory.
func resolvePath(ctx *state.Context, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	pwd, _ := ctx.Var("PWD")
	return filepath.Clean(filepath.Join(state.ValueString(pwd), path))
}
