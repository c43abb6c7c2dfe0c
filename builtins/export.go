package builtins

import (
	"fmt"

	"github.com/95jonpet/pjsh/core/state"
)

// Export marks variables for inclusion in child process environments,
// optionally assigning them first with the NAME=VALUE form.
func Export(args []string, ctx *state.Context, io *state.IO) state.CommandResult {
	cmd := &SimpleCommand{
		Use:   "export NAME[=VALUE]...",
		Short: "Export variables to child process environments.",
	}

	return cmd.Run(args, io, func(args []string) state.CommandResult {
		if len(args) == 0 {
			for _, kv := range ctx.Environ() {
				fmt.Fprintf(io.Stdout, "export %s\n", kv)
			}
			return state.Code(state.ExitSuccess)
		}

		var actions []state.Action
		status := state.ExitSuccess
		for _, arg := range args {
			if name, value, ok := splitAssign(arg); ok {
				actions = append(actions, state.SetVariable{
					Name:   name,
					Value:  state.Word(value),
					Export: true,
				})
				continue
			}
			if err := ctx.Export(arg); err != nil {
				fmt.Fprintf(io.Stderr, "export: %v\n", err)
				status = state.ExitGeneralError
			}
		}
		return state.WithActions(status, actions...)
	})
}
