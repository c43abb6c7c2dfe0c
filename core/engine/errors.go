package engine

import (
	"fmt"
	"strings"
)

// ExitRequest unwinds all pending loops and branches and makes the shell
// return the requested code to its top-level caller. It is propagated as an
// error but does not indicate failure.
type ExitRequest struct {
	Code int
}

func (e *ExitRequest) Error() string {
	return fmt.Sprintf("exit %d", e.Code)
}

// UnknownCommandError indicates that a command name resolved to neither a
// builtin, a function, nor an external program.
type UnknownCommandError struct {
	Name string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command: %s", e.Name)
}

// SpawnError indicates that the OS could not create a child process.
type SpawnError struct {
	Path string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to spawn child process %q: %v", e.Path, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// InvalidProgramPathError indicates that a resolved program path is unusable.
type InvalidProgramPathError struct {
	Path string
}

func (e *InvalidProgramPathError) Error() string {
	return fmt.Sprintf("invalid program path: %s", e.Path)
}

// UndefinedVariableError indicates an expansion referencing an unset
// variable.
type UndefinedVariableError struct {
	Name string
}

func (e *UndefinedVariableError) Error() string {
	return fmt.Sprintf("undefined variable: %s", e.Name)
}

// ListInterpolationError indicates an attempt to interpolate a list value
// where a single word is required.
type ListInterpolationError struct {
	Name string
}

func (e *ListInterpolationError) Error() string {
	return fmt.Sprintf("cannot interpolate list: %s", e.Name)
}

// MissingFunctionArgumentError indicates a function call with too few
// positional arguments.
type MissingFunctionArgumentError struct {
	Function string
	Params   []string
}

func (e *MissingFunctionArgumentError) Error() string {
	return fmt.Sprintf(
		"missing arguments for function %s: %s",
		e.Function, strings.Join(e.Params, ", "),
	)
}

// UnboundFunctionArgumentError indicates a function call with more
// positional arguments than declared parameters.
type UnboundFunctionArgumentError struct {
	Function string
	Args     []string
}

func (e *UnboundFunctionArgumentError) Error() string {
	return fmt.Sprintf(
		"unbound arguments for function %s: %s",
		e.Function, strings.Join(e.Args, ", "),
	)
}

// UnknownFilterError indicates a value pipeline referencing an unregistered
// filter.
type UnknownFilterError struct {
	Name string
}

func (e *UnknownFilterError) Error() string {
	return fmt.Sprintf("unknown filter: %s", e.Name)
}
