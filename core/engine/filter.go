package engine

import (
	"fmt"

	"github.com/95jonpet/pjsh/core/ast"
	"github.com/95jonpet/pjsh/core/state"
)

// ApplyFilters applies a filter chain to a value, left to right. The filters
// receive the value's current word or list form plus their own expanded
// arguments. A failure short-circuits the remaining filters.
func (e *Executor) ApplyFilters(calls []ast.FilterCall, value state.Value, ctx *state.Context) (state.Value, error) {
	for _, call := range calls {
		filter, ok := ctx.Filter(call.Name)
		if !ok {
			return nil, &UnknownFilterError{Name: call.Name}
		}

		args, err := e.ExpandWords(call.Args, ctx)
		if err != nil {
			return nil, err
		}

		var out state.Value
		switch v := value.(type) {
		case state.Word:
			out, err = filter.FilterWord(string(v), args)
		case state.List:
			out, err = filter.FilterList([]string(v), args)
		default:
			err = fmt.Errorf("unsupported value type")
		}
		if err != nil {
			return nil, fmt.Errorf("filter %s: %w", call.Name, err)
		}
		value = out
	}
	return value, nil
}
