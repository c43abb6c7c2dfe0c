package core

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/abiosoft/readline"
	"github.com/fatih/color"
	"github.com/spf13/afero"

	"github.com/95jonpet/pjsh/builtins"
	"github.com/95jonpet/pjsh/core/config"
	"github.com/95jonpet/pjsh/core/engine"
	"github.com/95jonpet/pjsh/core/parse"
	"github.com/95jonpet/pjsh/core/state"
	"github.com/95jonpet/pjsh/filters"
)

const (
	EnvHome = "HOME"
	EnvPWD  = "PWD"
	EnvPath = "PATH"
)

var envRegex = regexp.MustCompile(`(\$\$|\$\?|\$\w+)`)

var errorColor = color.New(color.FgRed)

// Shell ties the parser, the executor, and a session's I/O together.
type Shell struct {
	// IsTerminal and Width feed readline's terminal detection. Both may
	// be replaced before Interactive is called, for example when the
	// shell serves a remote session.
	IsTerminal func() bool
	Width      func() int

	fs     afero.Fs
	cfg    *config.Configuration
	ctx    *state.Context
	exec   *engine.Executor
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// NewShell creates a shell session on the given streams. The outermost
// scope is seeded from the configuration, and all builtins and filters
// are registered.
func NewShell(fs afero.Fs, cfg *config.Configuration, stdin io.Reader, stdout, stderr io.Writer) (*Shell, error) {
	ctx := state.NewContext(state.NewHost())
	if err := cfg.Apply(ctx); err != nil {
		return nil, err
	}
	for _, builtin := range builtins.All(fs) {
		ctx.RegisterBuiltin(builtin)
	}
	for _, filter := range filters.All() {
		ctx.RegisterFilter(filter)
	}
	if _, ok := ctx.Var("SHELL"); !ok {
		ctx.SetVar("SHELL", state.Word("pjsh"))
		_ = ctx.Export("SHELL")
	}

	return &Shell{
		IsTerminal: func() bool { return false },
		Width:      func() int { return 80 },
		fs:         fs,
		cfg:        cfg,
		ctx:        ctx,
		exec:       engine.New(fs, stdin, stdout, stderr),
		stdin:      stdin,
		stdout:     stdout,
		stderr:     stderr,
	}, nil
}

// Context returns the shell's outermost execution context.
func (s *Shell) Context() *state.Context {
	return s.ctx
}

// SetEnviron imports NAME=value pairs as exported variables,
// overriding any configured value of the same name. SHELL is then
// re-seeded with the running binary's path, so an inherited value
// never names the parent shell.
func (s *Shell) SetEnviron(environ []string) {
	for _, pair := range environ {
		name, value, found := strings.Cut(pair, "=")
		if !found || name == "" {
			continue
		}
		s.ctx.SetVar(name, state.Word(value))
		_ = s.ctx.Export(name)
	}
	if exe, err := os.Executable(); err == nil {
		s.ctx.SetVar("SHELL", state.Word(exe))
		_ = s.ctx.Export("SHELL")
	}
}

// SetDir sets the shell's working directory.
func (s *Shell) SetDir(dir string) {
	s.ctx.SetVar(EnvPWD, state.Word(dir))
	_ = s.ctx.Export(EnvPWD)
}

// RunCommand parses and executes a command string, returning the
// shell's exit code.
func (s *Shell) RunCommand(src string) (int, error) {
	program, err := parse.Parse(src)
	if err != nil {
		return state.ExitUsageError, err
	}
	return s.exec.Run(program, s.ctx)
}

// RunScript executes a script file with the given positional arguments
// bound in the outermost scope.
func (s *Shell) RunScript(path string, args []string) (int, error) {
	script, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return state.ExitGeneralError, err
	}
	program, err := parse.Parse(string(script))
	if err != nil {
		return state.ExitUsageError, err
	}
	s.ctx.SetArgs(args)
	return s.exec.Run(program, s.ctx)
}

// Interactive reads and executes statements until the input closes or
// an exit is requested. Incomplete lines continue onto the next read.
func (s *Shell) Interactive() (int, error) {
	cfg := &readline.Config{
		Stdin:          readline.NewCancelableStdin(s.stdin),
		Stdout:         s.stdout,
		Stderr:         s.stderr,
		FuncGetWidth:   s.Width,
		FuncIsTerminal: s.IsTerminal,
	}
	if err := cfg.Init(); err != nil {
		return state.ExitGeneralError, err
	}
	rl, err := readline.NewEx(cfg)
	if err != nil {
		return state.ExitGeneralError, err
	}
	defer rl.Close()

	buffered := ""
	for {
		s.notifyExited()
		if buffered == "" {
			rl.SetPrompt(s.expandPrompt(s.cfg.Prompt))
		} else {
			rl.SetPrompt(s.expandPrompt(s.cfg.ContinuationPrompt))
		}

		line, err := rl.Readline()
		switch {
		case err == io.EOF:
			return s.ctx.LastExit(), nil
		case err == readline.ErrInterrupt:
			buffered = ""
			continue
		case err != nil:
			return state.ExitGeneralError, err
		}

		src := line
		if buffered != "" {
			src = buffered + "\n" + line
		}
		if strings.TrimSpace(src) == "" {
			continue
		}

		program, err := parse.Parse(src)
		if parse.IsIncomplete(err) {
			buffered = src
			continue
		}
		buffered = ""
		if err != nil {
			errorColor.Fprintf(s.stderr, "pjsh: %v\n", err)
			s.ctx.SetLastExit(state.ExitUsageError)
			continue
		}

		if err := s.exec.Execute(program, s.ctx); err != nil {
			var exit *engine.ExitRequest
			if errors.As(err, &exit) {
				return exit.Code, nil
			}
			errorColor.Fprintf(s.stderr, "pjsh: %v\n", err)
			s.ctx.SetLastExit(state.ExitGeneralError)
		}
	}
}

// Close reaps every process and thread still registered on the host.
func (s *Shell) Close() error {
	s.ctx.Host().KillAll()
	s.ctx.Host().JoinAll()
	return nil
}

// notifyExited reports asynchronous children that finished since the
// previous prompt.
func (s *Shell) notifyExited() {
	for _, pid := range s.ctx.Host().TakeExited() {
		fmt.Fprintf(s.stderr, "pjsh: PID %d exited\n", pid)
	}
}

// expandPrompt substitutes $name, $? and $$ references in a prompt
// template. Unknown variables expand to nothing.
func (s *Shell) expandPrompt(prompt string) string {
	return envRegex.ReplaceAllStringFunc(prompt, func(match string) string {
		switch match {
		case "$$":
			return strconv.Itoa(s.ctx.Host().Pid())
		case "$?":
			return strconv.Itoa(s.ctx.LastExit())
		}
		value, ok := s.ctx.Var(strings.TrimPrefix(match, "$"))
		if !ok {
			return ""
		}
		return state.ValueString(value)
	})
}
