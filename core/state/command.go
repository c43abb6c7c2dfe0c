package state

import "io"

// IO exposes the byte streams a command may read and write.
type IO struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Command is a builtin shell command.
//
// Builtins execute in-process and receive the shell's context directly. The
// registry of builtins is open ended: new builtins are added by composition,
// not by the execution core.
type Command interface {
	// Name returns the name the command is invoked by.
	Name() string

	// Run executes the command. The args slice includes the command name as
	// args[0]. Shell-level side effects are requested through the returned
	// result's actions.
	Run(args []string, ctx *Context, io *IO) CommandResult
}

// CommandResult is the outcome of one command invocation: an exit code plus
// any shell-level side effects the command requests. It is consumed by the
// executor immediately after the command completes.
type CommandResult struct {
	// Code is the exit code. Zero is success by convention.
	Code int

	// Actions the shell applies after the command completes.
	Actions []Action
}

// Code constructs a result without actions.
func Code(code int) CommandResult {
	return CommandResult{Code: code}
}

// WithActions constructs a result carrying actions.
func WithActions(code int, actions ...Action) CommandResult {
	return CommandResult{Code: code, Actions: actions}
}

// Action is a shell-level side effect that a command requests but cannot
// perform itself.
//
// The concrete types are ExitShell and SetVariable.
type Action interface {
	action()
}

// ExitShell makes the shell exit with the given code, unwinding any pending
// loops and branches.
type ExitShell struct {
	Code int
}

// SetVariable writes a variable into the appropriate scope frame.
type SetVariable struct {
	Name  string
	Value Value
	// Export marks the variable for inclusion in child process environments.
	Export bool
}

func (ExitShell) action()   {}
func (SetVariable) action() {}
