// Package filters provides the value filters that ship with the shell.
//
// A filter transforms a word or a list of words, for example when expanding
// ${var|split ,|sort}. Filters are registered in the root scope frame at
// shell startup.
package filters

import (
	"sort"
	"strconv"
	"strings"

	"github.com/95jonpet/pjsh/core/state"
)

// All returns every filter that ships with the shell.
func All() []state.Filter {
	return []state.Filter{
		FirstFilter{},
		JoinFilter{},
		LastFilter{},
		LenFilter{},
		LinesFilter{},
		LowercaseFilter{},
		NthFilter{},
		ReplaceFilter{},
		ReverseFilter{},
		SortFilter{},
		SplitFilter{},
		UcfirstFilter{},
		UniqueFilter{},
		UppercaseFilter{},
		WordsFilter{},
	}
}

// JoinFilter joins a list into a word using a separator.
type JoinFilter struct{ state.ListFilter }

func (JoinFilter) Name() string { return "join" }

func (JoinFilter) FilterList(list []string, args []string) (state.Value, error) {
	switch len(args) {
	case 0:
		return nil, &state.MissingArgError{Arg: "separator"}
	case 1:
		return state.Word(strings.Join(list, args[0])), nil
	default:
		return nil, state.ErrTooManyArgs
	}
}

// SplitFilter splits a word into a list using a separator.
type SplitFilter struct{ state.WordFilter }

func (SplitFilter) Name() string { return "split" }

func (SplitFilter) FilterWord(word string, args []string) (state.Value, error) {
	switch len(args) {
	case 0:
		return nil, &state.MissingArgError{Arg: "separator"}
	case 1:
		return state.List(strings.Split(word, args[0])), nil
	default:
		return nil, state.ErrTooManyArgs
	}
}

// LenFilter reports the number of items in a list or the number of bytes in
// a word.
type LenFilter struct{}

func (LenFilter) Name() string { return "len" }

func (LenFilter) FilterList(list []string, args []string) (state.Value, error) {
	if len(args) != 0 {
		return nil, state.ErrNoArgsAllowed
	}
	return state.Word(strconv.Itoa(len(list))), nil
}

func (LenFilter) FilterWord(word string, args []string) (state.Value, error) {
	if len(args) != 0 {
		return nil, state.ErrNoArgsAllowed
	}
	return state.Word(strconv.Itoa(len(word))), nil
}

// LowercaseFilter lowercases a word.
type LowercaseFilter struct{ state.WordFilter }

func (LowercaseFilter) Name() string { return "lower" }

func (LowercaseFilter) FilterWord(word string, args []string) (state.Value, error) {
	if len(args) != 0 {
		return nil, state.ErrNoArgsAllowed
	}
	return state.Word(strings.ToLower(word)), nil
}

// UppercaseFilter uppercases a word.
type UppercaseFilter struct{ state.WordFilter }

func (UppercaseFilter) Name() string { return "upper" }

func (UppercaseFilter) FilterWord(word string, args []string) (state.Value, error) {
	if len(args) != 0 {
		return nil, state.ErrNoArgsAllowed
	}
	return state.Word(strings.ToUpper(word)), nil
}

// UcfirstFilter uppercases the first character of a word.
type UcfirstFilter struct{ state.WordFilter }

func (UcfirstFilter) Name() string { return "ucfirst" }

func (UcfirstFilter) FilterWord(word string, args []string) (state.Value, error) {
	if len(args) != 0 {
		return nil, state.ErrNoArgsAllowed
	}
	if word == "" {
		return state.Word(""), nil
	}
	runes := []rune(word)
	return state.Word(strings.ToUpper(string(runes[0])) + string(runes[1:])), nil
}

// ReverseFilter reverses the order of a list.
type ReverseFilter struct{ state.ListFilter }

func (ReverseFilter) Name() string { return "reverse" }

func (ReverseFilter) FilterList(list []string, args []string) (state.Value, error) {
	if len(args) != 0 {
		return nil, state.ErrNoArgsAllowed
	}
	out := make(state.List, 0, len(list))
	for i := len(list) - 1; i >= 0; i-- {
		out = append(out, list[i])
	}
	return out, nil
}

// SortFilter sorts a list lexicographically.
type SortFilter struct{ state.ListFilter }

func (SortFilter) Name() string { return "sort" }

func (SortFilter) FilterList(list []string, args []string) (state.Value, error) {
	if len(args) != 0 {
		return nil, state.ErrNoArgsAllowed
	}
	out := append(state.List(nil), list...)
	sort.Strings(out)
	return out, nil
}

// UniqueFilter removes duplicate items from a list, keeping first
// occurrences in order.
type UniqueFilter struct{ state.ListFilter }

func (UniqueFilter) Name() string { return "unique" }

func (UniqueFilter) FilterList(list []string, args []string) (state.Value, error) {
	if len(args) != 0 {
		return nil, state.ErrNoArgsAllowed
	}
	seen := make(map[string]struct{}, len(list))
	out := make(state.List, 0, len(list))
	for _, item := range list {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out, nil
}

// FirstFilter returns the first item of a list.
type FirstFilter struct{ state.ListFilter }

func (FirstFilter) Name() string { return "first" }

func (FirstFilter) FilterList(list []string, args []string) (state.Value, error) {
	if len(args) != 0 {
		return nil, state.ErrNoArgsAllowed
	}
	if len(list) == 0 {
		return nil, state.ErrIndexOutOfRange
	}
	return state.Word(list[0]), nil
}

// LastFilter returns the last item of a list.
type LastFilter struct{ state.ListFilter }

func (LastFilter) Name() string { return "last" }

func (LastFilter) FilterList(list []string, args []string) (state.Value, error) {
	if len(args) != 0 {
		return nil, state.ErrNoArgsAllowed
	}
	if len(list) == 0 {
		return nil, state.ErrIndexOutOfRange
	}
	return state.Word(list[len(list)-1]), nil
}

// NthFilter returns the item at a zero-based index in a list.
type NthFilter struct{ state.ListFilter }

func (NthFilter) Name() string { return "nth" }

func (NthFilter) FilterList(list []string, args []string) (state.Value, error) {
	switch len(args) {
	case 0:
		return nil, &state.MissingArgError{Arg: "index"}
	case 1:
		index, err := strconv.Atoi(args[0])
		if err != nil || index < 0 || index >= len(list) {
			return nil, state.ErrIndexOutOfRange
		}
		return state.Word(list[index]), nil
	default:
		return nil, state.ErrTooManyArgs
	}
}

// ReplaceFilter replaces substrings in a word, or whole items in a list.
type ReplaceFilter struct{}

func (ReplaceFilter) Name() string { return "replace" }

func (ReplaceFilter) FilterWord(word string, args []string) (state.Value, error) {
	from, to, err := replaceArgs(args)
	if err != nil {
		return nil, err
	}
	return state.Word(strings.ReplaceAll(word, from, to)), nil
}

func (ReplaceFilter) FilterList(list []string, args []string) (state.Value, error) {
	from, to, err := replaceArgs(args)
	if err != nil {
		return nil, err
	}
	out := make(state.List, 0, len(list))
	for _, item := range list {
		if item == from {
			item = to
		}
		out = append(out, item)
	}
	return out, nil
}

func replaceArgs(args []string) (string, string, error) {
	switch len(args) {
	case 0:
		return "", "", &state.MissingArgError{Arg: "from"}
	case 1:
		return "", "", &state.MissingArgError{Arg: "to"}
	case 2:
		return args[0], args[1], nil
	default:
		return "", "", state.ErrTooManyArgs
	}
}

// LinesFilter splits a word into a list of lines.
type LinesFilter struct{ state.WordFilter }

func (LinesFilter) Name() string { return "lines" }

func (LinesFilter) FilterWord(word string, args []string) (state.Value, error) {
	if len(args) != 0 {
		return nil, state.ErrNoArgsAllowed
	}
	word = strings.ReplaceAll(word, "\r\n", "\n")
	return state.List(strings.Split(word, "\n")), nil
}

// WordsFilter splits a word into a list of whitespace-separated words.
type WordsFilter struct{ state.WordFilter }

func (WordsFilter) Name() string { return "words" }

func (WordsFilter) FilterWord(word string, args []string) (state.Value, error) {
	if len(args) != 0 {
		return nil, state.ErrNoArgsAllowed
	}
	return state.List(strings.Fields(word)), nil
}
