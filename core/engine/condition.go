package engine

import (
	"io/fs"

	"github.com/95jonpet/pjsh/core/ast"
	"github.com/95jonpet/pjsh/core/state"
)

// EvalCondition evaluates a boolean condition within a context.
//
// Conditions never mutate the context. Filesystem tests resolve their word
// against the working directory and fail safe to false on I/O errors: a
// missing or unreadable path is simply not a directory or file. Errors are
// only reported for failed word expansions.
func (e *Executor) EvalCondition(cond ast.Condition, ctx *state.Context) (bool, error) {
	switch c := cond.(type) {
	case ast.IsDirectory:
		return e.statCondition(c.Path, ctx, func(info fs.FileInfo) bool { return info.IsDir() })
	case ast.IsFile:
		return e.statCondition(c.Path, ctx, func(info fs.FileInfo) bool { return info.Mode().IsRegular() })
	case ast.IsPath:
		return e.statCondition(c.Path, ctx, func(fs.FileInfo) bool { return true })
	case ast.Empty:
		word, err := e.InterpolateWord(c.Word, ctx)
		return len(word) == 0, err
	case ast.NotEmpty:
		word, err := e.InterpolateWord(c.Word, ctx)
		return len(word) != 0, err
	case ast.Equal:
		return e.compareWords(c.A, c.B, ctx, true)
	case ast.NotEqual:
		return e.compareWords(c.A, c.B, ctx, false)
	case ast.Invert:
		ok, err := e.EvalCondition(c.Condition, ctx)
		return !ok, err
	default:
		return false, nil
	}
}

// compareWords compares two expanded words as raw strings without locale
// folding.
func (e *Executor) compareWords(a, b ast.Word, ctx *state.Context, wantEqual bool) (bool, error) {
	left, err := e.InterpolateWord(a, ctx)
	if err != nil {
		return false, err
	}
	right, err := e.InterpolateWord(b, ctx)
	if err != nil {
		return false, err
	}
	return (left == right) == wantEqual, nil
}

func (e *Executor) statCondition(word ast.Word, ctx *state.Context, test func(fs.FileInfo) bool) (bool, error) {
	path, err := e.InterpolateWord(word, ctx)
	if err != nil {
		return false, err
	}

	info, statErr := e.fs.Stat(resolvePath(ctx, path))
	if statErr != nil {
		return false, nil
	}
	return test(info), nil
}
