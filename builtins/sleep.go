package builtins

import (
	"fmt"
	"strconv"
	"time"

	"github.com/95jonpet/pjsh/core/state"
)

// Sleep pauses for a number of seconds, fractions allowed.
func Sleep(args []string, _ *state.Context, io *state.IO) state.CommandResult {
	cmd := &SimpleCommand{
		Use:   "sleep SECONDS",
		Short: "Pause for a number of seconds.",
	}

	return cmd.Run(args, io, func(args []string) state.CommandResult {
		if len(args) != 1 {
			fmt.Fprintln(io.Stderr, "sleep: expected exactly one duration")
			return state.Code(state.ExitUsageError)
		}

		seconds, err := strconv.ParseFloat(args[0], 64)
		if err != nil || seconds < 0 {
			fmt.Fprintf(io.Stderr, "sleep: invalid duration: %s\n", args[0])
			return state.Code(state.ExitUsageError)
		}

		time.Sleep(time.Duration(seconds * float64(time.Second)))
		return state.Code(state.ExitSuccess)
	})
}
