package builtins

import (
	"fmt"

	"github.com/95jonpet/pjsh/core/state"
)

// Unset removes variables from the scope.
func Unset(args []string, ctx *state.Context, io *state.IO) state.CommandResult {
	cmd := &SimpleCommand{
		Use:   "unset NAME...",
		Short: "Remove variables.",
	}

	return cmd.Run(args, io, func(args []string) state.CommandResult {
		for _, name := range args {
			ctx.UnsetVar(name)
		}
		return state.Code(state.ExitSuccess)
	})
}

// Unalias removes aliases. With -a every alias is removed.
func Unalias(args []string, ctx *state.Context, io *state.IO) state.CommandResult {
	cmd := &SimpleCommand{
		Use:   "unalias [-a] [NAME]...",
		Short: "Remove aliases.",
	}

	all := cmd.Flags().Bool('a', "remove all aliases")

	return cmd.Run(args, io, func(args []string) state.CommandResult {
		if *all {
			for name := range ctx.Aliases() {
				ctx.UnsetAlias(name)
			}
			return state.Code(state.ExitSuccess)
		}

		status := state.ExitSuccess
		for _, name := range args {
			if _, ok := ctx.Alias(name); !ok {
				fmt.Fprintf(io.Stderr, "unalias: %s: not found\n", name)
				status = state.ExitGeneralError
				continue
			}
			ctx.UnsetAlias(name)
		}
		return state.Code(status)
	})
}
