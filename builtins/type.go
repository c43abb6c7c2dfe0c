package builtins

import (
	"fmt"

	"github.com/spf13/afero"

	"github.com/95jonpet/pjsh/core/engine"
	"github.com/95jonpet/pjsh/core/state"
)

// Type reports how each name would be resolved: alias, builtin, function, or
// external program.
func Type(fs afero.Fs) BuiltinFunc {
	return func(args []string, ctx *state.Context, io *state.IO) state.CommandResult {
		cmd := &SimpleCommand{
			Use:   "type NAME...",
			Short: "Display how a command name resolves.",
		}

		return cmd.Run(args, io, func(args []string) state.CommandResult {
			resolver := engine.New(fs, io.Stdin, io.Stdout, io.Stderr)

			status := state.ExitSuccess
			for _, name := range args {
				if value, ok := ctx.Alias(name); ok {
					fmt.Fprintf(io.Stdout, "%s is aliased to '%s'\n", name, value)
					continue
				}

				switch resolved := resolver.Resolve(name, ctx); resolved.Kind {
				case engine.KindBuiltin:
					fmt.Fprintf(io.Stdout, "%s is a shell builtin\n", name)
				case engine.KindFunction:
					fmt.Fprintf(io.Stdout, "%s is a function\n", name)
				case engine.KindProgram:
					fmt.Fprintf(io.Stdout, "%s is %s\n", name, resolved.Path)
				default:
					fmt.Fprintf(io.Stderr, "type: %s: not found\n", name)
					status = state.ExitGeneralError
				}
			}
			return state.Code(status)
		})
	}
}

// Which locates external programs on the search path.
func Which(fs afero.Fs) BuiltinFunc {
	return func(args []string, ctx *state.Context, io *state.IO) state.CommandResult {
		cmd := &SimpleCommand{
			Use:   "which NAME...",
			Short: "Locate a program on the search path.",
		}

		return cmd.Run(args, io, func(args []string) state.CommandResult {
			resolver := engine.New(fs, io.Stdin, io.Stdout, io.Stderr)

			status := state.ExitSuccess
			for _, name := range args {
				path, err := resolver.LookPath(name, ctx)
				if err != nil {
					status = state.ExitGeneralError
					continue
				}
				fmt.Fprintln(io.Stdout, path)
			}
			return state.Code(status)
		})
	}
}
