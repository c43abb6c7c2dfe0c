// Package parse turns shell input into an executable program tree.
//
// The surface syntax is deliberately small: assignments, pipelines with
// redirections, bracketed conditions, if/else chains, while loops, and
// function definitions. Malformed input yields an *Error and never a
// partially built tree; input that is merely cut short is reported as
// incomplete so interactive callers can read continuation lines.
package parse

import (
	"strconv"

	"github.com/95jonpet/pjsh/core/ast"
)

// Parse parses input into a program.
func Parse(input string) (ast.Program, error) {
	l := newLexer(input)
	var tokens []token
	for {
		t, err := l.next()
		if err != nil {
			return ast.Program{}, err
		}
		tokens = append(tokens, t)
		if t.kind == tokenEOF {
			break
		}
	}

	p := &parser{input: input, tokens: tokens}
	program, err := p.parseProgram(tokenEOF)
	if err != nil {
		return ast.Program{}, err
	}
	return program, nil
}

type parser struct {
	input  string
	tokens []token
	pos    int
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) advance() token {
	t := p.tokens[p.pos]
	if t.kind != tokenEOF {
		p.pos++
	}
	return t
}

func (p *parser) skipNewlines() {
	for p.peek().kind == tokenNewline {
		p.advance()
	}
}

func (p *parser) errorAt(t token, message string) error {
	return &Error{Input: p.input, Pos: t.pos, Message: message}
}

func (p *parser) incompleteAt(t token, message string) error {
	return &Error{Input: p.input, Pos: t.pos, Message: message, incomplete: true}
}

// failAt reports an incomplete error when the offending token is the end of
// input and a syntax error otherwise.
func (p *parser) failAt(t token, message string) error {
	if t.kind == tokenEOF {
		return p.incompleteAt(t, message)
	}
	return p.errorAt(t, message)
}

func (p *parser) parseProgram(end tokenKind) (ast.Program, error) {
	var program ast.Program
	for {
		p.skipNewlines()
		if p.peek().kind == end {
			return program, nil
		}
		if p.peek().kind == tokenEOF {
			return ast.Program{}, p.incompleteAt(p.peek(), "unexpected end of input")
		}

		statement, err := p.parseStatement()
		if err != nil {
			return ast.Program{}, err
		}
		program.Statements = append(program.Statements, statement)
	}
}

func (p *parser) parseStatement() (ast.Statement, error) {
	t := p.peek()
	if t.kind == tokenWord {
		if lit, ok := t.word.(ast.Literal); ok {
			switch string(lit) {
			case "if":
				return p.parseIfChain()
			case "while":
				return p.parseWhileLoop()
			case "fn":
				return p.parseFunctionDef()
			}
		}
		if p.tokens[p.pos+1].kind == tokenAssign {
			return p.parseAssignment()
		}
	}
	return p.parsePipeline()
}

func (p *parser) parseAssignment() (ast.Statement, error) {
	key := p.advance().word
	p.advance() // :=

	value := p.advance()
	if value.kind != tokenWord {
		return nil, p.failAt(value, "expected a value after :=")
	}

	var filters []ast.FilterCall
	for p.peek().kind == tokenPipe {
		p.advance()
		call, err := p.parseInlineFilterCall()
		if err != nil {
			return nil, err
		}
		filters = append(filters, call)
	}

	if err := p.expectStatementEnd(); err != nil {
		return nil, err
	}
	return ast.Assignment{Key: key, Value: value.word, Filters: filters}, nil
}

// parseInlineFilterCall parses one filter invocation in an assignment's
// filter chain.
func (p *parser) parseInlineFilterCall() (ast.FilterCall, error) {
	var words []ast.Word
	for p.peek().kind == tokenWord {
		words = append(words, p.advance().word)
	}
	if len(words) == 0 {
		return ast.FilterCall{}, p.failAt(p.peek(), "expected a filter name after |")
	}
	name, ok := words[0].(ast.Literal)
	if !ok {
		return ast.FilterCall{}, p.errorAt(p.peek(), "filter name must be a plain word")
	}
	return ast.FilterCall{Name: string(name), Args: words[1:]}, nil
}

func (p *parser) parsePipeline() (ast.Statement, error) {
	var segments []ast.Segment
	for {
		segment, err := p.parseSegment()
		if err != nil {
			return nil, err
		}
		segments = append(segments, segment)

		if p.peek().kind != tokenPipe {
			break
		}
		p.advance()
		// A pipe may be followed by a line break before its next segment.
		p.skipNewlines()
	}

	isAsync := false
	if p.peek().kind == tokenAmp {
		p.advance()
		isAsync = true
	}

	if err := p.expectStatementEnd(); err != nil {
		return nil, err
	}
	return ast.Pipeline{IsAsync: isAsync, Segments: segments}, nil
}

func (p *parser) parseSegment() (ast.Segment, error) {
	if p.peek().kind == tokenCondOpen {
		cond, err := p.parseBracketCondition()
		if err != nil {
			return nil, err
		}
		return ast.ConditionSegment{Condition: cond}, nil
	}

	var command ast.Command
	for {
		t := p.peek()
		switch t.kind {
		case tokenWord:
			command.Args = append(command.Args, p.advance().word)
		case tokenRedirectOut, tokenRedirectAppend, tokenRedirectIn, tokenRedirectDup:
			redirect, err := p.parseRedirect()
			if err != nil {
				return nil, err
			}
			command.Redirects = append(command.Redirects, redirect)
		default:
			if len(command.Args) == 0 {
				return nil, p.failAt(t, "expected a command")
			}
			return command, nil
		}
	}
}

func (p *parser) parseRedirect() (ast.Redirect, error) {
	t := p.advance()

	var mode ast.RedirectMode
	source := t.fd
	switch t.kind {
	case tokenRedirectIn:
		mode = ast.RedirectRead
		if source < 0 {
			source = 0
		}
	case tokenRedirectAppend:
		mode = ast.RedirectAppend
		if source < 0 {
			source = 1
		}
	default:
		mode = ast.RedirectWrite
		if source < 0 {
			source = 1
		}
	}

	target := p.advance()
	if target.kind != tokenWord {
		return ast.Redirect{}, p.failAt(target, "expected a redirect target")
	}

	if t.kind == tokenRedirectDup {
		lit, ok := target.word.(ast.Literal)
		if !ok {
			return ast.Redirect{}, p.errorAt(target, "expected a file descriptor number")
		}
		fd, err := strconv.Atoi(string(lit))
		if err != nil || fd < 0 {
			return ast.Redirect{}, p.errorAt(target, "expected a file descriptor number")
		}
		return ast.Redirect{Source: source, TargetFd: fd}, nil
	}

	return ast.Redirect{Source: source, Mode: mode, TargetPath: target.word}, nil
}

func (p *parser) parseIfChain() (ast.Statement, error) {
	p.advance() // if

	chain := ast.ConditionalChain{}
	cond, err := p.parseBracketCondition()
	if err != nil {
		return nil, err
	}
	branch, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	chain.Conditions = append(chain.Conditions, cond)
	chain.Branches = append(chain.Branches, branch)

	for {
		save := p.pos
		p.skipNewlines()
		t := p.peek()
		lit, ok := t.word.(ast.Literal)
		if t.kind != tokenWord || !ok || string(lit) != "else" {
			p.pos = save
			break
		}
		p.advance() // else

		t = p.peek()
		if lit, ok := t.word.(ast.Literal); t.kind == tokenWord && ok && string(lit) == "if" {
			p.advance()
			cond, err := p.parseBracketCondition()
			if err != nil {
				return nil, err
			}
			branch, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			chain.Conditions = append(chain.Conditions, cond)
			chain.Branches = append(chain.Branches, branch)
			continue
		}

		branch, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		chain.Branches = append(chain.Branches, branch)
		break
	}

	if err := p.expectStatementEnd(); err != nil {
		return nil, err
	}
	return chain, nil
}

func (p *parser) parseWhileLoop() (ast.Statement, error) {
	p.advance() // while

	cond, err := p.parseBracketCondition()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	if err := p.expectStatementEnd(); err != nil {
		return nil, err
	}
	return ast.ConditionalLoop{Condition: cond, Body: body}, nil
}

func (p *parser) parseFunctionDef() (ast.Statement, error) {
	p.advance() // fn

	nameTok := p.advance()
	name, ok := nameTok.word.(ast.Literal)
	if nameTok.kind != tokenWord || !ok {
		return nil, p.failAt(nameTok, "expected a function name")
	}

	if t := p.advance(); t.kind != tokenParenOpen {
		return nil, p.failAt(t, "expected ( after the function name")
	}

	var params []string
	for p.peek().kind == tokenWord {
		t := p.advance()
		param, ok := t.word.(ast.Literal)
		if !ok {
			return nil, p.errorAt(t, "function parameters must be plain words")
		}
		params = append(params, string(param))
	}
	if t := p.advance(); t.kind != tokenParenClose {
		return nil, p.failAt(t, "expected ) after the parameter list")
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	if err := p.expectStatementEnd(); err != nil {
		return nil, err
	}
	return ast.FunctionDef{Function: ast.Function{
		Name:   string(name),
		Params: params,
		Body:   body,
	}}, nil
}

// parseBracketCondition parses a [[ condition ]] group.
func (p *parser) parseBracketCondition() (ast.Condition, error) {
	if t := p.advance(); t.kind != tokenCondOpen {
		return nil, p.failAt(t, "expected [[")
	}

	var words []ast.Word
	for p.peek().kind == tokenWord {
		words = append(words, p.advance().word)
	}

	cond, err := p.buildCondition(words)
	if err != nil {
		return nil, err
	}

	if t := p.advance(); t.kind != tokenCondClose {
		return nil, p.failAt(t, "expected ]]")
	}
	return cond, nil
}

// buildCondition shapes the words between [[ and ]] into a condition.
func (p *parser) buildCondition(words []ast.Word) (ast.Condition, error) {
	if len(words) == 0 {
		return nil, p.failAt(p.peek(), "empty condition")
	}

	if lit, ok := words[0].(ast.Literal); ok && string(lit) == "!" {
		inner, err := p.buildCondition(words[1:])
		if err != nil {
			return nil, err
		}
		return ast.Invert{Condition: inner}, nil
	}

	if len(words) == 2 {
		op, ok := words[0].(ast.Literal)
		if !ok {
			return nil, p.errorAt(p.peek(), "malformed condition")
		}
		operand := words[1]
		switch string(op) {
		case "-d":
			return ast.IsDirectory{Path: operand}, nil
		case "-f":
			return ast.IsFile{Path: operand}, nil
		case "-e":
			return ast.IsPath{Path: operand}, nil
		case "-z":
			return ast.Empty{Word: operand}, nil
		case "-n":
			return ast.NotEmpty{Word: operand}, nil
		}
		return nil, p.errorAt(p.peek(), "unknown condition operator: "+string(op))
	}

	if len(words) == 3 {
		op, ok := words[1].(ast.Literal)
		if !ok {
			return nil, p.errorAt(p.peek(), "malformed condition")
		}
		switch string(op) {
		case "==":
			return ast.Equal{A: words[0], B: words[2]}, nil
		case "!=":
			return ast.NotEqual{A: words[0], B: words[2]}, nil
		}
		return nil, p.errorAt(p.peek(), "unknown condition operator: "+string(op))
	}

	if len(words) == 1 {
		return ast.NotEmpty{Word: words[0]}, nil
	}
	return nil, p.errorAt(p.peek(), "malformed condition")
}

// parseBlock parses a braced statement group.
func (p *parser) parseBlock() (ast.Program, error) {
	p.skipNewlines()
	if t := p.advance(); t.kind != tokenBraceOpen {
		return ast.Program{}, p.failAt(t, "expected {")
	}

	program, err := p.parseProgram(tokenBraceClose)
	if err != nil {
		return ast.Program{}, err
	}
	p.advance() // }
	return program, nil
}

// expectStatementEnd requires the next token to terminate a statement. The
// closing brace of an enclosing block is left for the block parser.
func (p *parser) expectStatementEnd() error {
	switch t := p.peek(); t.kind {
	case tokenEOF, tokenBraceClose:
		return nil
	case tokenNewline:
		p.advance()
		return nil
	default:
		return p.errorAt(t, "unexpected trailing input after statement")
	}
}
