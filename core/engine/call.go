package engine

import (
	"github.com/95jonpet/pjsh/core/ast"
	"github.com/95jonpet/pjsh/core/state"
)

// callFunction invokes a user-defined function with args[0] as the function
// name and the remaining args bound to the declared parameters, one each.
// The body runs inside a new scope frame against the caller's descriptor
// table; the call's status is the body's final exit status.
//
// Argument count must match the parameter list exactly. Too few arguments
// fail the call before the body runs; so do too many, since a parameter to
// absorb the rest does not exist.
func (e *Executor) callFunction(fn ast.Function, args []string, fds *state.FileDescriptors, ctx *state.Context) (int, error) {
	positional := args[1:]
	if len(positional) < len(fn.Params) {
		return state.ExitGeneralError, &MissingFunctionArgumentError{
			Function: fn.Name,
			Params:   fn.Params[len(positional):],
		}
	}
	if len(positional) > len(fn.Params) {
		return state.ExitGeneralError, &UnboundFunctionArgumentError{
			Function: fn.Name,
			Args:     positional[len(fn.Params):],
		}
	}

	vars := make(map[string]state.Value, len(fn.Params))
	for i, param := range fn.Params {
		vars[param] = state.Word(positional[i])
	}

	ctx.PushFunction(fn.Name, args, vars)
	defer ctx.Pop()

	if err := e.withFds(fds).Execute(fn.Body, ctx); err != nil {
		return ctx.LastExit(), err
	}
	return ctx.LastExit(), nil
}
