package builtins

import (
	"fmt"
	"sort"
	"strings"

	"github.com/95jonpet/pjsh/core/state"
)

// Alias defines or lists command aliases.
//
// Definitions use the name=value form. Without arguments every alias is
// printed, sorted by name.
func Alias(args []string, ctx *state.Context, io *state.IO) state.CommandResult {
	cmd := &SimpleCommand{
		Use:   "alias [NAME=VALUE]...",
		Short: "Define or display aliases.",
	}

	return cmd.Run(args, io, func(args []string) state.CommandResult {
		if len(args) == 0 {
			printAliases(ctx, io)
			return state.Code(state.ExitSuccess)
		}

		status := state.ExitSuccess
		for _, arg := range args {
			name, value, ok := splitAssign(arg)
			if ok {
				ctx.SetAlias(name, value)
				continue
			}
			if value, defined := ctx.Alias(arg); defined {
				fmt.Fprintf(io.Stdout, "alias %s='%s'\n", arg, value)
				continue
			}
			fmt.Fprintf(io.Stderr, "alias: %s: not found\n", arg)
			status = state.ExitGeneralError
		}
		return state.Code(status)
	})
}

func printAliases(ctx *state.Context, io *state.IO) {
	aliases := ctx.Aliases()
	names := make([]string, 0, len(aliases))
	for name := range aliases {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(io.Stdout, "alias %s='%s'\n", name, aliases[name])
	}
}

// splitAssign splits a name=value argument. Arguments without = or with an
// empty name are not assignments.
func splitAssign(arg string) (string, string, bool) {
	i := strings.IndexByte(arg, '=')
	if i <= 0 {
		return "", "", false
	}
	return arg[:i], arg[i+1:], true
}
