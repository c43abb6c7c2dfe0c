// Package builtins provides the shell commands that execute in-process.
//
// Builtins receive the shell's context directly and request shell-level side
// effects, such as exiting or exporting variables, through actions instead
// of performing them, so the executor can apply them at a safe point.
package builtins

import (
	"fmt"
	"io"

	getopt "github.com/pborman/getopt/v2"
	"github.com/spf13/afero"

	"github.com/95jonpet/pjsh/core/state"
)

// BuiltinFunc is the signature shared by all builtin implementations.
type BuiltinFunc func(args []string, ctx *state.Context, io *state.IO) state.CommandResult

type builtin struct {
	name string
	fn   BuiltinFunc
}

func (b builtin) Name() string { return b.name }

func (b builtin) Run(args []string, ctx *state.Context, io *state.IO) state.CommandResult {
	return b.fn(args, ctx, io)
}

// New wraps a function as a named builtin command.
func New(name string, fn BuiltinFunc) state.Command {
	return builtin{name: name, fn: fn}
}

// All returns every builtin that ships with the shell. Builtins that touch
// the filesystem go through fs.
func All(fs afero.Fs) []state.Command {
	return []state.Command{
		New("alias", Alias),
		New("cd", Cd(fs)),
		New("echo", Echo),
		New("exit", Exit),
		New("export", Export),
		New("false", False),
		New("pwd", Pwd),
		New("sleep", Sleep),
		New("source", Source(fs)),
		New("status", Status),
		New("true", True),
		New("type", Type(fs)),
		New("unalias", Unalias),
		New("unset", Unset),
		New("which", Which(fs)),
	}
}

// SimpleCommand bundles the shared option-parsing and help behavior of a
// builtin.
type SimpleCommand struct {
	// Use holds a one line usage string.
	Use string
	// Short holds a one line description of the command.
	Short string

	flags *getopt.Set
}

// Flags gets the command's flag set.
func (s *SimpleCommand) Flags() *getopt.Set {
	if s.flags == nil {
		s.flags = getopt.New()
	}
	return s.flags
}

// PrintHelp writes help for the command to the given writer.
func (s *SimpleCommand) PrintHelp(w io.Writer) {
	fmt.Fprint(w, "usage: ")
	fmt.Fprintln(w, s.Use)
	fmt.Fprintln(w, s.Short)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	s.Flags().PrintOptions(w)
}

// Run parses options and, on success, invokes the callback with the
// remaining positional arguments.
func (s *SimpleCommand) Run(args []string, io *state.IO, callback func(args []string) state.CommandResult) state.CommandResult {
	opts := s.Flags()
	showHelp := opts.BoolLong("help", 'h', "show this help and exit")

	if err := opts.Getopt(args, nil); err != nil {
		fmt.Fprintf(io.Stderr, "error: %s\n\n", err)
		s.PrintHelp(io.Stderr)
		return state.Code(state.ExitUsageError)
	}

	if *showHelp {
		s.PrintHelp(io.Stdout)
		return state.Code(state.ExitSuccess)
	}

	return callback(opts.Args())
}
