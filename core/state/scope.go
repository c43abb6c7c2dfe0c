package state

import "github.com/95jonpet/pjsh/core/ast"

// frame is one layer of nested bindings. Lookups walk from the innermost
// frame outward; writes default to the innermost frame.
type frame struct {
	name string

	// args are the positional arguments visible in the frame. A nil slice
	// means the frame inherits the enclosing frame's arguments.
	args []string

	vars     map[string]Value
	funcs    map[string]ast.Function
	aliases  map[string]string
	builtins map[string]Command
	filters  map[string]Filter

	// exported names the variables included in child process environments.
	exported map[string]struct{}
}

func newFrame(name string) *frame {
	return &frame{
		name:     name,
		vars:     make(map[string]Value),
		funcs:    make(map[string]ast.Function),
		aliases:  make(map[string]string),
		builtins: make(map[string]Command),
		filters:  make(map[string]Filter),
		exported: make(map[string]struct{}),
	}
}

func (f *frame) clone() *frame {
	out := newFrame(f.name)
	out.args = append([]string(nil), f.args...)
	if f.args == nil {
		out.args = nil
	}
	for k, v := range f.vars {
		out.vars[k] = v
	}
	for k, v := range f.funcs {
		out.funcs[k] = v
	}
	for k, v := range f.aliases {
		out.aliases[k] = v
	}
	for k, v := range f.builtins {
		out.builtins[k] = v
	}
	for k, v := range f.filters {
		out.filters[k] = v
	}
	for k := range f.exported {
		out.exported[k] = struct{}{}
	}
	return out
}
