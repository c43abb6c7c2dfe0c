// Package ast defines the program tree that the shell executes.
//
// A program is an ordered sequence of statements. Statements are closed
// variants: the executor switches over the concrete types defined here and
// nothing outside this package may add new ones.
package ast

// Program is an ordered sequence of statements.
type Program struct {
	Statements []Statement
}

// Statement is a single executable shell statement.
//
// The concrete types are Assignment, Pipeline, ConditionalChain,
// ConditionalLoop and FunctionDef.
type Statement interface {
	statement()
}

// Assignment binds the expanded value of a word to a variable name.
type Assignment struct {
	// Key is the variable name.
	Key Word
	// Value is expanded when the assignment executes.
	Value Word
	// Filters are applied to the expanded value, left to right.
	Filters []FilterCall
}

// Pipeline is an ordered sequence of segments where each segment's output
// feeds the next segment's input.
//
// A pipeline with zero segments is invalid.
type Pipeline struct {
	// IsAsync pipelines are not waited for when executed.
	IsAsync bool

	// Segments are arranged such that the n-th segment writes its output to
	// the input of the (n+1)-th segment. The first segment reads the caller's
	// stdin and the last segment writes to the caller's stdout.
	Segments []Segment
}

// Segment is one pipeline stage: a command invocation or a condition.
type Segment interface {
	segment()
}

// Command invokes a builtin, function, or external program.
type Command struct {
	// Args holds the command name followed by its arguments.
	Args []Word
	// Redirects apply before pipeline wiring.
	Redirects []Redirect
}

// ConditionSegment evaluates a condition as a pipeline stage.
//
// The condition's boolean result is rendered as exit status 0 or 1 and the
// segment produces no meaningful stdout.
type ConditionSegment struct {
	Condition Condition
}

// ConditionalChain is a sequence of conditions with matching branches plus an
// optional trailing else branch. There is exactly one branch per condition,
// so len(Branches) is len(Conditions) or len(Conditions)+1.
type ConditionalChain struct {
	Conditions []Condition
	Branches   []Program
}

// ConditionalLoop executes its body for as long as the condition holds.
//
// The condition is evaluated before every iteration and never after, so a
// zero-iteration execution is valid.
type ConditionalLoop struct {
	Condition Condition
	Body      Program
}

// FunctionDef registers a function in the current scope.
type FunctionDef struct {
	Function Function
}

// Function is a user-defined command with named positional parameters.
type Function struct {
	Name   string
	Params []string
	Body   Program
}

func (Assignment) statement()       {}
func (Pipeline) statement()         {}
func (ConditionalChain) statement() {}
func (ConditionalLoop) statement()  {}
func (FunctionDef) statement()      {}

func (Command) segment()          {}
func (ConditionSegment) segment() {}
