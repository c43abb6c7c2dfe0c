package builtins

import (
	"fmt"
	"strings"

	"github.com/95jonpet/pjsh/core/state"
)

// Echo writes its arguments to stdout separated by spaces.
func Echo(args []string, _ *state.Context, io *state.IO) state.CommandResult {
	cmd := &SimpleCommand{
		Use:   "echo [-n] [ARG]...",
		Short: "Display a line of text.",
	}

	noNewline := cmd.Flags().Bool('n', "do not output the trailing newline")

	return cmd.Run(args, io, func(args []string) state.CommandResult {
		fmt.Fprint(io.Stdout, strings.Join(args, " "))
		if !*noNewline {
			fmt.Fprintln(io.Stdout)
		}
		return state.Code(state.ExitSuccess)
	})
}
