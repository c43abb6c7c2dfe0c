package builtins

import (
	"fmt"
	"strconv"

	"github.com/95jonpet/pjsh/core/state"
)

// Exit requests shell termination through an action, unwinding any pending
// loops and branches. Codes that cannot be represented in the low 8 bits
// clamp to the documented sentinel instead of failing.
func Exit(args []string, ctx *state.Context, io *state.IO) state.CommandResult {
	cmd := &SimpleCommand{
		Use:   "exit [CODE]",
		Short: "Exit the shell.",
	}

	return cmd.Run(args, io, func(args []string) state.CommandResult {
		code := ctx.LastExit()
		switch {
		case len(args) > 1:
			fmt.Fprintln(io.Stderr, "exit: too many arguments")
			return state.Code(state.ExitUsageError)
		case len(args) == 1:
			parsed, err := strconv.Atoi(args[0])
			if err != nil || parsed < 0 || parsed > 255 {
				code = state.ExitInvalidCode
			} else {
				code = parsed
			}
		}
		return state.WithActions(code, state.ExitShell{Code: code})
	})
}
