package state

import (
	"fmt"
	"sort"
	"sync"

	"github.com/95jonpet/pjsh/core/ast"
)

// Context is the execution context of one shell: a stack of scope frames
// plus a handle to the host.
//
// The context is shared by the executor and every command it invokes, and
// background threads may observe or mutate it concurrently. All state access
// is mutually exclusive; critical sections are short and never span a
// blocking wait.
type Context struct {
	mu       sync.Mutex
	frames   []*frame
	host     *Host
	lastExit int
}

// NewContext constructs a context with a single root frame attached to host.
func NewContext(host *Host) *Context {
	return &Context{
		frames: []*frame{newFrame("global")},
		host:   host,
	}
}

// Host returns the context's host.
func (c *Context) Host() *Host {
	return c.host
}

// Name reports the name of the innermost scope frame.
func (c *Context) Name() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frames[len(c.frames)-1].name
}

// Fork deep-copies the context's frames into a new context that shares the
// same host. Used for subshells and background in-process segments so that
// their scope mutations stay private.
func (c *Context) Fork(name string) *Context {
	c.mu.Lock()
	defer c.mu.Unlock()

	frames := make([]*frame, 0, len(c.frames)+1)
	for _, f := range c.frames {
		frames = append(frames, f.clone())
	}
	frames = append(frames, newFrame(name))

	return &Context{
		frames:   frames,
		host:     c.host,
		lastExit: c.lastExit,
	}
}

// Push appends a fresh innermost scope frame.
func (c *Context) Push(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, newFrame(name))
}

// PushFunction appends a scope frame seeded with a function's positional
// arguments and named parameter bindings.
func (c *Context) PushFunction(name string, args []string, vars map[string]Value) {
	c.mu.Lock()
	defer c.mu.Unlock()

	f := newFrame(name)
	f.args = args
	for k, v := range vars {
		f.vars[k] = v
	}
	c.frames = append(c.frames, f)
}

// Pop removes the innermost scope frame.
//
// The outermost frame never pops; losing it is an invariant violation, not a
// recoverable user error.
func (c *Context) Pop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.frames) == 1 {
		panic("state: popped the outermost scope frame")
	}
	c.frames = c.frames[:len(c.frames)-1]
}

// Depth reports the number of scope frames.
func (c *Context) Depth() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}

// Var returns the value of a variable, walking frames innermost first.
func (c *Context) Var(name string) (Value, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := len(c.frames) - 1; i >= 0; i-- {
		if v, ok := c.frames[i].vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// SetVar writes a variable into the innermost frame, replacing any previous
// value there.
func (c *Context) SetVar(name string, value Value) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames[len(c.frames)-1].vars[name] = value
}

// UpdateVar writes a variable into its existing owning frame if one is
// found, and into the innermost frame otherwise. This is the
// environment-style assignment used for exported variables.
func (c *Context) UpdateVar(name string, value Value) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := len(c.frames) - 1; i >= 0; i-- {
		if _, ok := c.frames[i].vars[name]; ok {
			c.frames[i].vars[name] = value
			return
		}
	}
	c.frames[len(c.frames)-1].vars[name] = value
}

// UnsetVar removes a variable from the innermost frame that defines it.
func (c *Context) UnsetVar(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := len(c.frames) - 1; i >= 0; i-- {
		if _, ok := c.frames[i].vars[name]; ok {
			delete(c.frames[i].vars, name)
			return
		}
	}
}

// Export marks a variable for inclusion in child process environments. The
// variable must already be defined.
func (c *Context) Export(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := len(c.frames) - 1; i >= 0; i-- {
		if _, ok := c.frames[i].vars[name]; ok {
			c.frames[i].exported[name] = struct{}{}
			return nil
		}
	}
	return fmt.Errorf("unknown variable: %s", name)
}

// Environ renders all exported variables in "key=value" form, sorted by key,
// suitable for seeding a child process environment.
func (c *Context) Environ() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[string]struct{})
	var env []string
	for i := len(c.frames) - 1; i >= 0; i-- {
		for name := range c.frames[i].exported {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			if v, ok := c.lookupVar(name); ok {
				env = append(env, name+"="+ValueString(v))
			}
		}
	}
	sort.Strings(env)
	return env
}

// lookupVar walks frames without locking. Callers hold c.mu.
func (c *Context) lookupVar(name string) (Value, bool) {
	for i := len(c.frames) - 1; i >= 0; i-- {
		if v, ok := c.frames[i].vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Function returns a function definition visible from the innermost frame.
func (c *Context) Function(name string) (ast.Function, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := len(c.frames) - 1; i >= 0; i-- {
		if fn, ok := c.frames[i].funcs[name]; ok {
			return fn, true
		}
	}
	return ast.Function{}, false
}

// DefineFunction registers a function in the innermost frame.
func (c *Context) DefineFunction(fn ast.Function) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames[len(c.frames)-1].funcs[fn.Name] = fn
}

// Alias returns an alias value visible from the innermost frame.
func (c *Context) Alias(name string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := len(c.frames) - 1; i >= 0; i-- {
		if v, ok := c.frames[i].aliases[name]; ok {
			return v, true
		}
	}
	return "", false
}

// SetAlias writes an alias into the innermost frame.
func (c *Context) SetAlias(name, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames[len(c.frames)-1].aliases[name] = value
}

// UnsetAlias removes an alias from the innermost frame that defines it.
func (c *Context) UnsetAlias(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := len(c.frames) - 1; i >= 0; i-- {
		if _, ok := c.frames[i].aliases[name]; ok {
			delete(c.frames[i].aliases, name)
			return
		}
	}
}

// Aliases returns all visible aliases, innermost definitions winning.
func (c *Context) Aliases() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]string)
	for _, f := range c.frames {
		for k, v := range f.aliases {
			out[k] = v
		}
	}
	return out
}

// Builtin returns a registered builtin command visible from the innermost
// frame.
func (c *Context) Builtin(name string) (Command, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := len(c.frames) - 1; i >= 0; i-- {
		if cmd, ok := c.frames[i].builtins[name]; ok {
			return cmd, true
		}
	}
	return nil, false
}

// RegisterBuiltin registers a builtin command in the innermost frame.
func (c *Context) RegisterBuiltin(cmd Command) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames[len(c.frames)-1].builtins[cmd.Name()] = cmd
}

// Filter returns a registered value filter visible from the innermost frame.
func (c *Context) Filter(name string) (Filter, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := len(c.frames) - 1; i >= 0; i-- {
		if f, ok := c.frames[i].filters[name]; ok {
			return f, true
		}
	}
	return nil, false
}

// RegisterFilter registers a value filter in the innermost frame.
func (c *Context) RegisterFilter(f Filter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames[len(c.frames)-1].filters[f.Name()] = f
}

// Args returns the positional arguments visible from the innermost frame.
func (c *Context) Args() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := len(c.frames) - 1; i >= 0; i-- {
		if c.frames[i].args != nil {
			return c.frames[i].args
		}
	}
	return nil
}

// SetArgs replaces the innermost frame's positional arguments.
func (c *Context) SetArgs(args []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames[len(c.frames)-1].args = args
}

// LastExit reports the exit status of the most recently completed statement.
func (c *Context) LastExit() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastExit
}

// SetLastExit records the exit status of a completed statement.
func (c *Context) SetLastExit(code int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastExit = code
}
