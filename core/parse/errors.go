package parse

import "errors"

// Error is a parse failure. No partially built tree accompanies it.
type Error struct {
	// Input is the full text being parsed.
	Input string
	// Pos is the byte offset the failure was detected at.
	Pos     int
	Message string

	incomplete bool
}

func (e *Error) Error() string {
	return "parse error: " + e.Message
}

// IsIncomplete reports whether err indicates input that is well formed so
// far but cut short, such as an unclosed block or quote. Interactive callers
// use this to prompt for continuation lines instead of failing.
func IsIncomplete(err error) bool {
	var parseErr *Error
	return errors.As(err, &parseErr) && parseErr.incomplete
}

func (l *lexer) syntaxError(message string) error {
	return &Error{Input: l.input, Pos: l.pos, Message: message}
}

func (l *lexer) incompleteError(message string) error {
	return &Error{Input: l.input, Pos: l.pos, Message: message, incomplete: true}
}
