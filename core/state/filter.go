package state

import (
	"errors"
	"fmt"
)

// Filter transforms a string or list value. Filters are registered per scope
// frame and applied left to right after word expansion.
type Filter interface {
	// Name returns the name the filter is invoked by.
	Name() string

	// FilterWord applies the filter to a single word.
	FilterWord(word string, args []string) (Value, error)

	// FilterList applies the filter to a list of words.
	FilterList(list []string, args []string) (Value, error)
}

// Filter errors.
var (
	ErrFilterOnWord    = errors.New("the filter cannot be applied to words")
	ErrFilterOnList    = errors.New("the filter cannot be applied to lists")
	ErrNoArgsAllowed   = errors.New("the filter takes no arguments")
	ErrTooManyArgs     = errors.New("too many arguments")
	ErrIndexOutOfRange = errors.New("index out of range")
)

// MissingArgError indicates that a filter invocation lacks a required
// argument.
type MissingArgError struct {
	Arg string
}

func (e *MissingArgError) Error() string {
	return fmt.Sprintf("missing required argument %q", e.Arg)
}

// WordFilter is an embeddable base for filters that only operate on words.
type WordFilter struct{}

// FilterList implements Filter.FilterList.
func (WordFilter) FilterList([]string, []string) (Value, error) {
	return nil, ErrFilterOnList
}

// ListFilter is an embeddable base for filters that only operate on lists.
type ListFilter struct{}

// FilterWord implements Filter.FilterWord.
func (ListFilter) FilterWord(string, []string) (Value, error) {
	return nil, ErrFilterOnWord
}
