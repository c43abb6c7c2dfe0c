package builtins

import (
	"fmt"

	"github.com/95jonpet/pjsh/core/state"
)

// True succeeds.
func True([]string, *state.Context, *state.IO) state.CommandResult {
	return state.Code(state.ExitSuccess)
}

// False fails.
func False([]string, *state.Context, *state.IO) state.CommandResult {
	return state.Code(state.ExitGeneralError)
}

// Status prints the previous statement's exit status and propagates it as
// its own.
func Status(args []string, ctx *state.Context, io *state.IO) state.CommandResult {
	cmd := &SimpleCommand{
		Use:   "status",
		Short: "Display the exit status of the previous statement.",
	}

	return cmd.Run(args, io, func([]string) state.CommandResult {
		code := ctx.LastExit()
		fmt.Fprintln(io.Stdout, code)
		return state.Code(code)
	})
}

// Pwd prints the shell's working directory.
func Pwd(args []string, ctx *state.Context, io *state.IO) state.CommandResult {
	cmd := &SimpleCommand{
		Use:   "pwd",
		Short: "Print the name of the current working directory.",
	}

	return cmd.Run(args, io, func([]string) state.CommandResult {
		fmt.Fprintln(io.Stdout, varString(ctx, "PWD"))
		return state.Code(state.ExitSuccess)
	})
}
