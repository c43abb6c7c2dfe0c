// Package engine executes parsed shell programs: it expands words, resolves
// commands, wires file descriptors, spawns and interprets pipeline segments,
// applies control flow, and propagates exit statuses.
package engine

import (
	"errors"
	"io"

	"github.com/spf13/afero"

	"github.com/95jonpet/pjsh/core/ast"
	"github.com/95jonpet/pjsh/core/state"
)

// Executor walks a program tree and executes its statements against a
// context. Statements execute strictly in sequence: no statement begins
// before the previous one, including all its waits, completes.
type Executor struct {
	fs  afero.Fs
	fds *state.FileDescriptors
}

// New constructs an executor whose descriptors 0, 1 and 2 are bound to the
// given standard streams. All filesystem access, such as condition tests and
// redirection targets, goes through fs.
func New(fs afero.Fs, stdin io.Reader, stdout, stderr io.Writer) *Executor {
	return &Executor{
		fs:  fs,
		fds: state.NewFileDescriptors(stdin, stdout, stderr),
	}
}

// withFds derives an executor sharing the same filesystem but using a
// different base descriptor table.
func (e *Executor) withFds(fds *state.FileDescriptors) *Executor {
	return &Executor{fs: e.fs, fds: fds}
}

// Run executes a program and returns the shell's resulting exit status. An
// explicit exit request is consumed here; any other error is returned with
// the last exit status.
func (e *Executor) Run(program ast.Program, ctx *state.Context) (int, error) {
	err := e.Execute(program, ctx)

	var exit *ExitRequest
	if errors.As(err, &exit) {
		return exit.Code, nil
	}
	return ctx.LastExit(), err
}

// Execute executes a program's statements in sequence. The first failing
// statement aborts the remaining ones; the context's last exit status is
// updated before returning.
func (e *Executor) Execute(program ast.Program, ctx *state.Context) error {
	for _, statement := range program.Statements {
		if err := e.executeStatement(statement, ctx); err != nil {
			return err
		}
	}
	return nil
}

func (e *Executor) executeStatement(statement ast.Statement, ctx *state.Context) error {
	switch s := statement.(type) {
	case ast.Assignment:
		return e.executeAssignment(s, ctx)
	case ast.Pipeline:
		code, err := e.executePipeline(s, ctx)
		if err != nil {
			ctx.SetLastExit(state.ExitGeneralError)
			return err
		}
		ctx.SetLastExit(code)
		return nil
	case ast.ConditionalChain:
		return e.executeConditionalChain(s, ctx)
	case ast.ConditionalLoop:
		return e.executeConditionalLoop(s, ctx)
	case ast.FunctionDef:
		ctx.DefineFunction(s.Function)
		ctx.SetLastExit(state.ExitSuccess)
		return nil
	default:
		return nil
	}
}

// executeAssignment expands the right-hand word, applies any filters, and
// writes the result into the variable's owning frame, defaulting to the
// innermost frame.
func (e *Executor) executeAssignment(assignment ast.Assignment, ctx *state.Context) error {
	key, err := e.InterpolateWord(assignment.Key, ctx)
	if err != nil {
		ctx.SetLastExit(state.ExitGeneralError)
		return err
	}

	expanded, err := e.InterpolateWord(assignment.Value, ctx)
	if err != nil {
		ctx.SetLastExit(state.ExitGeneralError)
		return err
	}

	value, err := e.ApplyFilters(assignment.Filters, state.Word(expanded), ctx)
	if err != nil {
		ctx.SetLastExit(state.ExitGeneralError)
		return err
	}

	ctx.UpdateVar(key, value)
	ctx.SetLastExit(state.ExitSuccess)
	return nil
}

// executeConditionalChain evaluates conditions in order and executes the
// branch of the first condition that holds, inside a fresh scope frame. The
// trailing else branch, if present, runs when no condition holds. When no
// branch runs at all, the last evaluated condition's status remains as the
// statement's exit status.
func (e *Executor) executeConditionalChain(chain ast.ConditionalChain, ctx *state.Context) error {
	for i, cond := range chain.Conditions {
		ok, err := e.EvalCondition(cond, ctx)
		if err != nil {
			ctx.SetLastExit(state.ExitGeneralError)
			return err
		}
		if !ok {
			ctx.SetLastExit(state.ExitGeneralError)
			continue
		}

		ctx.SetLastExit(state.ExitSuccess)
		return e.executeBranch(chain.Branches[i], "if", ctx)
	}

	if len(chain.Branches) > len(chain.Conditions) {
		return e.executeBranch(chain.Branches[len(chain.Branches)-1], "else", ctx)
	}
	return nil
}

// executeConditionalLoop re-evaluates the condition before every iteration
// and never after, so a zero-iteration execution is valid and leaves the
// scope unmodified.
func (e *Executor) executeConditionalLoop(loop ast.ConditionalLoop, ctx *state.Context) error {
	for {
		ok, err := e.EvalCondition(loop.Condition, ctx)
		if err != nil {
			ctx.SetLastExit(state.ExitGeneralError)
			return err
		}
		if !ok {
			return nil
		}

		if err := e.executeBranch(loop.Body, "while", ctx); err != nil {
			return err
		}
	}
}

// executeBranch runs a program inside a freshly pushed scope frame. The
// frame pops even when the branch fails so that exit requests unwind
// cleanly.
func (e *Executor) executeBranch(branch ast.Program, name string, ctx *state.Context) error {
	ctx.Push(name)
	defer ctx.Pop()
	return e.Execute(branch, ctx)
}

// applyActions performs the shell-level side effects requested by a
// command's result. Actions apply immediately after the command completes
// and before the next statement begins.
func (e *Executor) applyActions(actions []state.Action, ctx *state.Context) error {
	for _, action := range actions {
		switch a := action.(type) {
		case state.ExitShell:
			return &ExitRequest{Code: a.Code}
		case state.SetVariable:
			ctx.UpdateVar(a.Name, a.Value)
			if a.Export {
				_ = ctx.Export(a.Name)
			}
		}
	}
	return nil
}
