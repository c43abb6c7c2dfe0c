package ast

// RedirectMode selects how a redirection target is opened.
type RedirectMode int

const (
	// RedirectRead opens the target for reading.
	RedirectRead RedirectMode = iota
	// RedirectWrite opens the target for writing, truncating it.
	RedirectWrite
	// RedirectAppend opens the target for writing, appending to it.
	RedirectAppend
)

// Redirect rebinds one of a command's file descriptors.
type Redirect struct {
	// Source is the descriptor being rebound.
	Source int
	Mode   RedirectMode
	// TargetPath is the file to open, if the target is a path.
	TargetPath Word
	// TargetFd is the descriptor to duplicate when TargetPath is nil.
	TargetFd int
}
