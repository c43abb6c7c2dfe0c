package builtins

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/95jonpet/pjsh/core/engine"
	"github.com/95jonpet/pjsh/core/parse"
	"github.com/95jonpet/pjsh/core/state"
)

// Source parses and executes a script file in the calling scope, so its
// assignments, aliases, and function definitions persist.
func Source(fs afero.Fs) BuiltinFunc {
	return func(args []string, ctx *state.Context, io *state.IO) state.CommandResult {
		cmd := &SimpleCommand{
			Use:   "source FILE",
			Short: "Execute a script file in the current scope.",
		}

		return cmd.Run(args, io, func(args []string) state.CommandResult {
			if len(args) != 1 {
				fmt.Fprintln(io.Stderr, "source: expected exactly one file")
				return state.Code(state.ExitUsageError)
			}

			path := args[0]
			if !filepath.IsAbs(path) {
				path = filepath.Join(varString(ctx, "PWD"), path)
			}

			script, err := afero.ReadFile(fs, path)
			if err != nil {
				fmt.Fprintf(io.Stderr, "source: cannot read %s: %v\n", args[0], err)
				return state.Code(state.ExitGeneralError)
			}

			program, err := parse.Parse(string(script))
			if err != nil {
				fmt.Fprintf(io.Stderr, "source: %s: %v\n", args[0], err)
				return state.Code(state.ExitGeneralError)
			}

			executor := engine.New(fs, io.Stdin, io.Stdout, io.Stderr)
			if err := executor.Execute(program, ctx); err != nil {
				var exit *engine.ExitRequest
				if errors.As(err, &exit) {
					return state.WithActions(exit.Code, state.ExitShell{Code: exit.Code})
				}
				fmt.Fprintf(io.Stderr, "source: %v\n", err)
				return state.Code(state.ExitGeneralError)
			}
			return state.Code(ctx.LastExit())
		})
	}
}
