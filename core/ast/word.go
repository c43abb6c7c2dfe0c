package ast

// Word is a unit of input that must be expanded to a concrete string before
// use. Words name variables, programs, and program arguments.
//
// The concrete types are Literal, Quoted, Variable, Subshell, Interpolation
// and ValuePipeline.
type Word interface {
	word()
}

// Literal is a bare, whitespace-delimited word.
type Literal string

// Quoted is a quoted word. Its content is used verbatim.
type Quoted string

// Variable names a value that is resolved at expansion time.
type Variable string

// Subshell substitutes the word with the captured stdout of a program.
type Subshell struct {
	Program Program
}

// Interpolation is a compound word of interpolable sub-units.
type Interpolation struct {
	Units []InterpolationUnit
}

// ValuePipeline applies a chain of filters to a variable's value.
type ValuePipeline struct {
	// Base is the variable name providing the initial value.
	Base string
	// Filters are applied left to right.
	Filters []FilterCall
}

// InterpolationUnit is a sub-unit of an Interpolation word.
//
// The concrete types are UnitLiteral, UnitUnicode, UnitVariable and
// UnitSubshell.
type InterpolationUnit interface {
	interpolationUnit()
}

// UnitLiteral is a literal interpolation unit.
type UnitLiteral string

// UnitUnicode is a single unicode character, typically from an escape.
type UnitUnicode rune

// UnitVariable names a value that is resolved at expansion time.
type UnitVariable string

// UnitSubshell substitutes the captured stdout of a program.
type UnitSubshell struct {
	Program Program
}

// FilterCall names a filter together with its literal arguments.
type FilterCall struct {
	Name string
	Args []Word
}

func (Literal) word()       {}
func (Quoted) word()        {}
func (Variable) word()      {}
func (Subshell) word()      {}
func (Interpolation) word() {}
func (ValuePipeline) word() {}

func (UnitLiteral) interpolationUnit()  {}
func (UnitUnicode) interpolationUnit()  {}
func (UnitVariable) interpolationUnit() {}
func (UnitSubshell) interpolationUnit() {}
