package engine

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/anmitsu/go-shlex"

	"github.com/95jonpet/pjsh/core/ast"
	"github.com/95jonpet/pjsh/core/state"
)

// ExpandWords expands a sequence of words into concrete strings. Any
// expansion failure aborts the whole sequence.
func (e *Executor) ExpandWords(words []ast.Word, ctx *state.Context) ([]string, error) {
	out := make([]string, 0, len(words))
	for _, word := range words {
		expanded, err := e.InterpolateWord(word, ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, expanded)
	}
	return out, nil
}

// InterpolateWord expands a single word into a concrete string.
func (e *Executor) InterpolateWord(word ast.Word, ctx *state.Context) (string, error) {
	switch w := word.(type) {
	case ast.Literal:
		return string(w), nil
	case ast.Quoted:
		return string(w), nil
	case ast.Variable:
		return e.lookupVariable(string(w), ctx)
	case ast.Subshell:
		return e.captureSubshell(w.Program, ctx)
	case ast.Interpolation:
		return e.interpolateUnits(w.Units, ctx)
	case ast.ValuePipeline:
		value, err := e.expandValuePipeline(w, ctx)
		if err != nil {
			return "", err
		}
		word, ok := value.(state.Word)
		if !ok {
			return "", &ListInterpolationError{Name: w.Base}
		}
		return string(word), nil
	default:
		return "", nil
	}
}

func (e *Executor) interpolateUnits(units []ast.InterpolationUnit, ctx *state.Context) (string, error) {
	var out strings.Builder
	for _, unit := range units {
		switch u := unit.(type) {
		case ast.UnitLiteral:
			out.WriteString(string(u))
		case ast.UnitUnicode:
			out.WriteRune(rune(u))
		case ast.UnitVariable:
			value, err := e.lookupVariable(string(u), ctx)
			if err != nil {
				return "", err
			}
			out.WriteString(value)
		case ast.UnitSubshell:
			value, err := e.captureSubshell(u.Program, ctx)
			if err != nil {
				return "", err
			}
			out.WriteString(value)
		}
	}
	return out.String(), nil
}

// expandValuePipeline resolves a variable and applies its filter chain.
func (e *Executor) expandValuePipeline(pipeline ast.ValuePipeline, ctx *state.Context) (state.Value, error) {
	value, ok := ctx.Var(pipeline.Base)
	if !ok {
		return nil, &UndefinedVariableError{Name: pipeline.Base}
	}
	return e.ApplyFilters(pipeline.Filters, value, ctx)
}

// lookupVariable resolves a variable reference, including the special
// variables $? (last exit status) and $$ (shell pid).
func (e *Executor) lookupVariable(name string, ctx *state.Context) (string, error) {
	switch name {
	case "$":
		return strconv.Itoa(ctx.Host().Pid()), nil
	case "?":
		return strconv.Itoa(ctx.LastExit()), nil
	}

	value, ok := ctx.Var(name)
	if !ok {
		return "", &UndefinedVariableError{Name: name}
	}
	word, ok := value.(state.Word)
	if !ok {
		return "", &ListInterpolationError{Name: name}
	}
	return string(word), nil
}

// captureSubshell executes a program on a forked context with its stdout
// captured, returning the output with one trailing newline trimmed.
func (e *Executor) captureSubshell(program ast.Program, ctx *state.Context) (string, error) {
	sub := ctx.Fork("subshell")

	var buf bytes.Buffer
	fds := e.fds.Clone()
	fds.Bind(state.FdStdout, state.Output(&buf))

	if err := e.withFds(fds).Execute(program, sub); err != nil {
		return "", err
	}

	out := buf.String()
	out = strings.TrimSuffix(out, "\n")
	out = strings.TrimSuffix(out, "\r")
	return out, nil
}

// expandAlias substitutes the first argument of a command when it names an
// alias. The alias value is tokenized like regular input. A single
// substitution is performed per command; alias recursion is not followed.
func expandAlias(args []string, ctx *state.Context) []string {
	value, ok := ctx.Alias(args[0])
	if !ok {
		return args
	}
	tokens, err := shlex.Split(value, true)
	if err != nil || len(tokens) == 0 {
		return args
	}
	return append(tokens, args[1:]...)
}
