package ast

// Condition is a boolean test used by if and while constructs.
//
// The concrete types are IsDirectory, IsFile, IsPath, Empty, NotEmpty,
// Equal, NotEqual and Invert.
type Condition interface {
	condition()
}

// IsDirectory is true if the word resolves to an existing directory.
type IsDirectory struct{ Path Word }

// IsFile is true if the word resolves to an existing regular file.
type IsFile struct{ Path Word }

// IsPath is true if the word resolves to an existing file or directory.
type IsPath struct{ Path Word }

// Empty is true if the expanded word has length zero.
type Empty struct{ Word Word }

// NotEmpty is true if the expanded word has nonzero length.
type NotEmpty struct{ Word Word }

// Equal is true if both expanded words are byte-equal.
type Equal struct{ A, B Word }

// NotEqual is true if the expanded words differ.
type NotEqual struct{ A, B Word }

// Invert flips the result of the wrapped condition. Inverting twice
// reproduces the original result.
type Invert struct{ Condition Condition }

func (IsDirectory) condition() {}
func (IsFile) condition()      {}
func (IsPath) condition()      {}
func (Empty) condition()       {}
func (NotEmpty) condition()    {}
func (Equal) condition()       {}
func (NotEqual) condition()    {}
func (Invert) condition()      {}
