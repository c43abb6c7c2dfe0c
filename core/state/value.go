// Package state holds the mutable execution state of a shell: nested scope
// frames, the process/thread host registry, file descriptor tables, and the
// contracts for builtin commands and value filters.
package state

import "strings"

// Value is a shell value: a single word or a list of words.
//
// The concrete types are Word and List.
type Value interface {
	value()
}

// Word is a single string value.
type Word string

// List is an ordered list of string values.
type List []string

func (Word) value() {}
func (List) value() {}

// ValueString renders a value as a single string. Lists are joined by a
// single space, matching how they are exported to process environments.
func ValueString(v Value) string {
	switch value := v.(type) {
	case Word:
		return string(value)
	case List:
		return strings.Join(value, " ")
	default:
		return ""
	}
}
