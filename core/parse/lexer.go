package parse

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/95jonpet/pjsh/core/ast"
)

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenNewline
	tokenWord
	tokenAssign
	tokenPipe
	tokenAmp
	tokenRedirectOut
	tokenRedirectAppend
	tokenRedirectIn
	tokenRedirectDup
	tokenCondOpen
	tokenCondClose
	tokenBraceOpen
	tokenBraceClose
	tokenParenOpen
	tokenParenClose
)

type token struct {
	kind tokenKind
	word ast.Word
	// fd is the explicit source descriptor of a redirect token, or -1.
	fd  int
	pos int
}

// lexer splits input into tokens. Words are scanned into their structured
// form directly, so quoting, escapes, variable references, subshells, and
// value pipelines never reach the parser as raw text.
type lexer struct {
	input string
	pos   int
}

func newLexer(input string) *lexer {
	return &lexer{input: input}
}

func (l *lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *lexer) peekAt(offset int) byte {
	if l.pos+offset >= len(l.input) {
		return 0
	}
	return l.input[l.pos+offset]
}

// next returns the next token.
func (l *lexer) next() (token, error) {
	l.skipBlank()

	start := l.pos
	if l.pos >= len(l.input) {
		return token{kind: tokenEOF, fd: -1, pos: start}, nil
	}

	emit := func(kind tokenKind, width int) (token, error) {
		l.pos += width
		return token{kind: kind, fd: -1, pos: start}, nil
	}

	switch c := l.input[l.pos]; {
	case c == '\n' || c == ';':
		return emit(tokenNewline, 1)
	case c == '|':
		return emit(tokenPipe, 1)
	case c == '&':
		return emit(tokenAmp, 1)
	case c == '{':
		return emit(tokenBraceOpen, 1)
	case c == '}':
		return emit(tokenBraceClose, 1)
	case c == '(':
		return emit(tokenParenOpen, 1)
	case c == ')':
		return emit(tokenParenClose, 1)
	case c == '[' && l.peekAt(1) == '[':
		return emit(tokenCondOpen, 2)
	case c == ']' && l.peekAt(1) == ']':
		return emit(tokenCondClose, 2)
	case c == ':' && l.peekAt(1) == '=':
		return emit(tokenAssign, 2)
	case c == '<':
		return emit(tokenRedirectIn, 1)
	case c == '>':
		if l.peekAt(1) == '>' {
			return emit(tokenRedirectAppend, 2)
		}
		if l.peekAt(1) == '&' {
			return emit(tokenRedirectDup, 2)
		}
		return emit(tokenRedirectOut, 1)
	case c >= '0' && c <= '9':
		if t, ok := l.scanFdRedirect(start); ok {
			return t, nil
		}
	}

	word, err := l.scanWord()
	if err != nil {
		return token{}, err
	}
	return token{kind: tokenWord, word: word, fd: -1, pos: start}, nil
}

func (l *lexer) skipBlank() {
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case ' ', '\t', '\r':
			l.pos++
		case '#':
			for l.pos < len(l.input) && l.input[l.pos] != '\n' {
				l.pos++
			}
		default:
			return
		}
	}
}

// scanFdRedirect recognizes a digit run immediately followed by a redirect
// operator, as in 2>&1 or 2>err.log. A digit run followed by anything else
// is an ordinary word.
func (l *lexer) scanFdRedirect(start int) (token, bool) {
	end := l.pos
	for end < len(l.input) && l.input[end] >= '0' && l.input[end] <= '9' {
		end++
	}
	if end >= len(l.input) {
		return token{}, false
	}

	fd, err := strconv.Atoi(l.input[l.pos:end])
	if err != nil {
		return token{}, false
	}

	switch l.input[end] {
	case '<':
		l.pos = end + 1
		return token{kind: tokenRedirectIn, fd: fd, pos: start}, true
	case '>':
		kind := tokenRedirectOut
		width := 1
		if end+1 < len(l.input) {
			switch l.input[end+1] {
			case '>':
				kind = tokenRedirectAppend
				width = 2
			case '&':
				kind = tokenRedirectDup
				width = 2
			}
		}
		l.pos = end + width
		return token{kind: kind, fd: fd, pos: start}, true
	}
	return token{}, false
}

// isWordTerminator reports whether a byte ends a bare word.
func (l *lexer) isWordTerminator(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', ';', '|', '&', '<', '>', ')', '}', '(', '#':
		return true
	case '[':
		return l.peekAt(1) == '['
	case ']':
		return l.peekAt(1) == ']'
	}
	return false
}

// scanWord scans one word: a run of bare text, quoted strings, variable
// references, subshells, and value pipelines without intervening blanks.
func (l *lexer) scanWord() (ast.Word, error) {
	var units []ast.InterpolationUnit
	var text strings.Builder
	quoted := false
	// single tracks the last single-unit form so that plain words keep
	// their precise type instead of a one-element interpolation.
	var single ast.Word
	parts := 0

	flushText := func() {
		if text.Len() > 0 {
			units = append(units, ast.UnitLiteral(text.String()))
			text.Reset()
		}
	}
	addUnit := func(u ast.InterpolationUnit, w ast.Word) {
		flushText()
		units = append(units, u)
		single = w
		parts++
	}

	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if l.isWordTerminator(c) {
			break
		}

		switch c {
		case '\\':
			if l.pos+1 >= len(l.input) {
				return nil, l.incompleteError("trailing escape character")
			}
			r, width := utf8.DecodeRuneInString(l.input[l.pos+1:])
			text.WriteRune(r)
			l.pos += 1 + width
			parts++
			single = nil
		case '\'':
			raw, err := l.scanRawString()
			if err != nil {
				return nil, err
			}
			text.WriteString(raw)
			quoted = true
			parts++
			single = nil
		case '"':
			qunits, err := l.scanQuotedString()
			if err != nil {
				return nil, err
			}
			flushText()
			units = append(units, qunits...)
			quoted = true
			parts++
			single = nil
		case '$':
			unit, word, err := l.scanDollar()
			if err != nil {
				return nil, err
			}
			if unit == nil {
				// Filtered references may produce lists, so they cannot be
				// merged into surrounding word text.
				atEnd := l.pos >= len(l.input) || l.isWordTerminator(l.input[l.pos])
				if parts != 0 || text.Len() > 0 || !atEnd {
					return nil, l.syntaxError("a filtered reference must stand alone")
				}
				return word, nil
			}
			addUnit(unit, word)
		default:
			_, width := utf8.DecodeRuneInString(l.input[l.pos:])
			text.WriteString(l.input[l.pos : l.pos+width])
			l.pos += width
			parts++
			single = nil
		}
	}

	// A word made of exactly one structured unit keeps its own form.
	if parts == 1 && single != nil && text.Len() == 0 {
		return single, nil
	}

	flushText()
	if len(units) == 1 {
		if lit, ok := units[0].(ast.UnitLiteral); ok {
			if quoted {
				return ast.Quoted(lit), nil
			}
			return ast.Literal(lit), nil
		}
	}
	if len(units) == 0 {
		if quoted {
			return ast.Quoted(""), nil
		}
		return ast.Literal(""), nil
	}
	return ast.Interpolation{Units: units}, nil
}

// scanRawString consumes a single-quoted string without escape processing.
func (l *lexer) scanRawString() (string, error) {
	l.pos++ // opening quote
	start := l.pos
	for l.pos < len(l.input) {
		if l.input[l.pos] == '\'' {
			raw := l.input[start:l.pos]
			l.pos++
			return raw, nil
		}
		l.pos++
	}
	return "", l.incompleteError("unterminated single-quoted string")
}

// scanQuotedString consumes a double-quoted string, processing escapes and
// embedded variable references and subshells.
func (l *lexer) scanQuotedString() ([]ast.InterpolationUnit, error) {
	l.pos++ // opening quote

	var units []ast.InterpolationUnit
	var text strings.Builder
	flushText := func() {
		if text.Len() > 0 {
			units = append(units, ast.UnitLiteral(text.String()))
			text.Reset()
		}
	}

	for l.pos < len(l.input) {
		switch c := l.input[l.pos]; c {
		case '"':
			l.pos++
			flushText()
			if len(units) == 0 {
				units = append(units, ast.UnitLiteral(""))
			}
			return units, nil
		case '\\':
			unit, err := l.scanQuotedEscape()
			if err != nil {
				return nil, err
			}
			if lit, ok := unit.(ast.UnitLiteral); ok {
				text.WriteString(string(lit))
			} else {
				flushText()
				units = append(units, unit)
			}
		case '$':
			unit, _, err := l.scanDollar()
			if err != nil {
				return nil, err
			}
			if unit == nil {
				return nil, l.syntaxError("a filtered reference must stand alone")
			}
			flushText()
			units = append(units, unit)
		default:
			_, width := utf8.DecodeRuneInString(l.input[l.pos:])
			text.WriteString(l.input[l.pos : l.pos+width])
			l.pos += width
		}
	}
	return nil, l.incompleteError("unterminated double-quoted string")
}

// scanQuotedEscape consumes one backslash escape inside double quotes.
func (l *lexer) scanQuotedEscape() (ast.InterpolationUnit, error) {
	if l.pos+1 >= len(l.input) {
		return nil, l.incompleteError("trailing escape character")
	}

	c := l.input[l.pos+1]
	l.pos += 2
	switch c {
	case 'n':
		return ast.UnitLiteral("\n"), nil
	case 't':
		return ast.UnitLiteral("\t"), nil
	case 'r':
		return ast.UnitLiteral("\r"), nil
	case 'u':
		return l.scanUnicodeEscape()
	default:
		return ast.UnitLiteral(string(c)), nil
	}
}

// scanUnicodeEscape consumes the {hex} part of a \u{hex} escape.
func (l *lexer) scanUnicodeEscape() (ast.InterpolationUnit, error) {
	if l.peek() != '{' {
		return nil, l.syntaxError("expected { after \\u")
	}
	l.pos++
	start := l.pos
	for l.pos < len(l.input) && l.input[l.pos] != '}' {
		l.pos++
	}
	if l.pos >= len(l.input) {
		return nil, l.incompleteError("unterminated unicode escape")
	}
	code, err := strconv.ParseUint(l.input[start:l.pos], 16, 32)
	if err != nil {
		return nil, l.syntaxError("invalid unicode escape: " + l.input[start:l.pos])
	}
	l.pos++
	return ast.UnitUnicode(rune(code)), nil
}

// scanDollar consumes a $ construct: $name, $?, $$, $(program) or
// ${var|filter}. It returns both the interpolation-unit form and the
// standalone word form.
func (l *lexer) scanDollar() (ast.InterpolationUnit, ast.Word, error) {
	l.pos++ // $

	switch l.peek() {
	case '(':
		program, err := l.scanSubshell()
		if err != nil {
			return nil, nil, err
		}
		return ast.UnitSubshell{Program: program}, ast.Subshell{Program: program}, nil
	case '{':
		word, err := l.scanValuePipeline()
		if err != nil {
			return nil, nil, err
		}
		if v, ok := word.(ast.Variable); ok {
			return ast.UnitVariable(v), word, nil
		}
		// A filtered reference has no unit form; it only appears as a
		// standalone word.
		return nil, word, nil
	case '?', '$':
		name := string(l.peek())
		l.pos++
		return ast.UnitVariable(name), ast.Variable(name), nil
	}

	start := l.pos
	for l.pos < len(l.input) && isIdentByte(l.input[l.pos]) {
		l.pos++
	}
	if l.pos == start {
		return nil, nil, l.syntaxError("empty variable reference")
	}
	name := l.input[start:l.pos]
	return ast.UnitVariable(name), ast.Variable(name), nil
}

func isIdentByte(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

// scanSubshell consumes a balanced $(...) and parses its body as a nested
// program.
func (l *lexer) scanSubshell() (ast.Program, error) {
	l.pos++ // (
	start := l.pos
	depth := 1

	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case '\\':
			l.pos++
		case '\'':
			if _, err := l.scanRawString(); err != nil {
				return ast.Program{}, err
			}
			continue
		case '"':
			l.pos++
			for l.pos < len(l.input) && l.input[l.pos] != '"' {
				if l.input[l.pos] == '\\' {
					l.pos++
				}
				l.pos++
			}
			if l.pos >= len(l.input) {
				return ast.Program{}, l.incompleteError("unterminated double-quoted string")
			}
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				body := l.input[start:l.pos]
				l.pos++
				return Parse(body)
			}
		}
		l.pos++
	}
	return ast.Program{}, l.incompleteError("unterminated subshell")
}

// scanValuePipeline consumes ${name} or ${name|filter args|filter}. Pipes
// and the closing brace only count outside quoted filter arguments.
func (l *lexer) scanValuePipeline() (ast.Word, error) {
	l.pos++ // {

	var segments []string
	var current strings.Builder
	closed := false
	for !closed {
		if l.pos >= len(l.input) {
			return nil, l.incompleteError("unterminated variable reference")
		}
		switch c := l.input[l.pos]; c {
		case '}':
			l.pos++
			closed = true
		case '|':
			l.pos++
			segments = append(segments, current.String())
			current.Reset()
		case '\'', '"':
			if err := l.copyString(&current, c); err != nil {
				return nil, err
			}
		default:
			current.WriteByte(c)
			l.pos++
		}
	}
	segments = append(segments, current.String())

	name := strings.TrimSpace(segments[0])
	if name == "" {
		return nil, l.syntaxError("empty variable reference")
	}
	if len(segments) == 1 {
		return ast.Variable(name), nil
	}

	filters := make([]ast.FilterCall, 0, len(segments)-1)
	for _, segment := range segments[1:] {
		call, err := parseFilterCall(segment)
		if err != nil {
			return nil, err
		}
		filters = append(filters, call)
	}
	return ast.ValuePipeline{Base: name, Filters: filters}, nil
}

// parseFilterCall parses one "name arg arg" filter segment. Arguments go
// through the word scanner so quoting and variable references work.
func parseFilterCall(segment string) (ast.FilterCall, error) {
	sub := newLexer(segment)
	sub.skipBlank()
	if sub.pos >= len(sub.input) {
		return ast.FilterCall{}, sub.syntaxError("empty filter invocation")
	}

	var words []ast.Word
	for {
		sub.skipBlank()
		if sub.pos >= len(sub.input) {
			break
		}
		word, err := sub.scanWord()
		if err != nil {
			return ast.FilterCall{}, err
		}
		words = append(words, word)
	}

	name, ok := words[0].(ast.Literal)
	if !ok {
		return ast.FilterCall{}, sub.syntaxError("filter name must be a plain word")
	}
	var args []ast.Word
	if len(words) > 1 {
		args = words[1:]
	}
	return ast.FilterCall{Name: string(name), Args: args}, nil
}

// copyString copies a quoted string, quotes included, into out. Escape
// sequences inside double quotes keep their backslash so the word scanner
// can interpret them later.
func (l *lexer) copyString(out *strings.Builder, quote byte) error {
	out.WriteByte(quote)
	l.pos++
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if quote == '"' && c == '\\' && l.pos+1 < len(l.input) {
			out.WriteByte(c)
			out.WriteByte(l.input[l.pos+1])
			l.pos += 2
			continue
		}
		out.WriteByte(c)
		l.pos++
		if c == quote {
			return nil
		}
	}
	return l.incompleteError("unterminated string")
}
