package state

// Exit status conventions. Only the low 8 bits are externally visible.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0

	// ExitGeneralError is the catch-all status for general errors.
	ExitGeneralError = 1

	// ExitUsageError indicates a builtin was invoked incorrectly.
	ExitUsageError = 2

	// ExitNotExecutable indicates a command was found but is not executable.
	ExitNotExecutable = 126

	// ExitNotFound indicates a command could not be found.
	ExitNotFound = 127

	// ExitInvalidCode is the sentinel used when an explicitly requested exit
	// code cannot be represented in the low 8 bits.
	ExitInvalidCode = 255
)
