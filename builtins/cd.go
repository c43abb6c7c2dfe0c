package builtins

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/95jonpet/pjsh/core/state"
)

// Cd changes the shell's working directory.
//
// The working directory lives in the PWD variable, so the change is
// requested through an action and takes effect in the calling scope. cd -
// returns to the previous directory recorded in OLDPWD.
func Cd(fs afero.Fs) BuiltinFunc {
	return func(args []string, ctx *state.Context, io *state.IO) state.CommandResult {
		cmd := &SimpleCommand{
			Use:   "cd [DIR]",
			Short: "Change the working directory.",
		}

		return cmd.Run(args, io, func(args []string) state.CommandResult {
			if len(args) > 1 {
				fmt.Fprintln(io.Stderr, "cd: too many arguments")
				return state.Code(state.ExitUsageError)
			}

			pwd := varString(ctx, "PWD")
			target := ""
			announce := false
			switch {
			case len(args) == 0:
				target = varString(ctx, "HOME")
				if target == "" {
					fmt.Fprintln(io.Stderr, "cd: HOME not set")
					return state.Code(state.ExitGeneralError)
				}
			case args[0] == "-":
				target = varString(ctx, "OLDPWD")
				if target == "" {
					fmt.Fprintln(io.Stderr, "cd: OLDPWD not set")
					return state.Code(state.ExitGeneralError)
				}
				announce = true
			default:
				target = args[0]
			}

			if !filepath.IsAbs(target) {
				target = filepath.Join(pwd, target)
			}
			target = filepath.Clean(target)

			info, err := fs.Stat(target)
			if err != nil {
				fmt.Fprintf(io.Stderr, "cd: no such directory: %s\n", target)
				return state.Code(state.ExitGeneralError)
			}
			if !info.IsDir() {
				fmt.Fprintf(io.Stderr, "cd: not a directory: %s\n", target)
				return state.Code(state.ExitGeneralError)
			}

			if announce {
				fmt.Fprintln(io.Stdout, target)
			}
			return state.WithActions(state.ExitSuccess,
				state.SetVariable{Name: "OLDPWD", Value: state.Word(pwd), Export: true},
				state.SetVariable{Name: "PWD", Value: state.Word(target), Export: true},
			)
		})
	}
}

// varString reads a variable as a plain string, empty when unset.
func varString(ctx *state.Context, name string) string {
	v, ok := ctx.Var(name)
	if !ok {
		return ""
	}
	return state.ValueString(v)
}
