package state

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
)

// Well-known descriptor numbers.
const (
	FdStdin  = 0
	FdStdout = 1
	FdStderr = 2
)

// Descriptor errors.
var (
	ErrUnusableForInput  = errors.New("file descriptor cannot be used for input")
	ErrUnusableForOutput = errors.New("file descriptor cannot be used for output")
)

// UnknownFdError indicates a lookup of an unbound descriptor number.
type UnknownFdError struct {
	Fd int
}

func (e *UnknownFdError) Error() string {
	return fmt.Sprintf("unknown file descriptor: %d", e.Fd)
}

// FileDescriptor is an endpoint for IO operations and redirections: an
// inherited standard stream, one end of a pipe, a file target opened on
// first use, or a null sink.
type FileDescriptor struct {
	reader io.Reader
	writer io.Writer

	// File targets are opened lazily through fs.
	fs         afero.Fs
	path       string
	appendMode bool
	file       afero.File
}

// Input constructs a read-only descriptor around r.
func Input(r io.Reader) *FileDescriptor {
	return &FileDescriptor{reader: r}
}

// Output constructs a write-only descriptor around w.
func Output(w io.Writer) *FileDescriptor {
	return &FileDescriptor{writer: w}
}

// FileTarget constructs a descriptor that opens the file at path on first
// use. Writing truncates unless appendMode is set.
func FileTarget(fs afero.Fs, path string, appendMode bool) *FileDescriptor {
	return &FileDescriptor{fs: fs, path: path, appendMode: appendMode}
}

// Null constructs a descriptor that reads nothing and discards writes.
func Null() *FileDescriptor {
	return &FileDescriptor{reader: eofReader{}, writer: io.Discard}
}

type eofReader struct{}

func (eofReader) Read([]byte) (int, error) { return 0, io.EOF }

// Reader returns the descriptor's readable end, opening file targets on
// first use.
func (d *FileDescriptor) Reader() (io.Reader, error) {
	if d.reader != nil {
		return d.reader, nil
	}
	if d.fs != nil {
		if d.file == nil {
			file, err := d.fs.Open(d.path)
			if err != nil {
				return nil, fmt.Errorf("file %q is not readable: %w", d.path, err)
			}
			d.file = file
		}
		return d.file, nil
	}
	return nil, ErrUnusableForInput
}

// Writer returns the descriptor's writable end, opening file targets on
// first use.
func (d *FileDescriptor) Writer() (io.Writer, error) {
	if d.writer != nil {
		return d.writer, nil
	}
	if d.fs != nil {
		if d.file == nil {
			flag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
			if d.appendMode {
				flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
			}
			file, err := d.fs.OpenFile(d.path, flag, 0o644)
			if err != nil {
				return nil, fmt.Errorf("file %q is not writable: %w", d.path, err)
			}
			d.file = file
		}
		return d.file, nil
	}
	return nil, ErrUnusableForOutput
}

// Close releases any endpoint the descriptor owns: opened file targets and
// pipe ends. Inherited streams are left open.
func (d *FileDescriptor) Close() error {
	if d.file != nil {
		err := d.file.Close()
		d.file = nil
		return err
	}
	var err error
	if c, ok := d.reader.(*os.File); ok {
		err = c.Close()
	}
	if c, ok := d.writer.(*os.File); ok {
		err = c.Close()
	}
	return err
}

// FileDescriptors maps small non-negative descriptor numbers to endpoints.
// Descriptors 0, 1 and 2 are pre-bound to the inherited standard streams
// unless overridden by redirection or pipe wiring.
type FileDescriptors struct {
	fds  map[int]*FileDescriptor
	next int
}

// NewFileDescriptors constructs a table with 0, 1 and 2 bound to the given
// standard streams.
func NewFileDescriptors(stdin io.Reader, stdout, stderr io.Writer) *FileDescriptors {
	t := &FileDescriptors{
		fds:  make(map[int]*FileDescriptor),
		next: 3,
	}
	t.Bind(FdStdin, Input(stdin))
	t.Bind(FdStdout, Output(stdout))
	t.Bind(FdStderr, Output(stderr))
	return t
}

// Bind maps fd to a descriptor, overwriting any existing binding.
func (t *FileDescriptors) Bind(fd int, d *FileDescriptor) {
	t.fds[fd] = d
	if fd >= t.next {
		t.next = fd + 1
	}
}

// Get returns the descriptor bound to fd.
func (t *FileDescriptors) Get(fd int) (*FileDescriptor, error) {
	d, ok := t.fds[fd]
	if !ok {
		return nil, &UnknownFdError{Fd: fd}
	}
	return d, nil
}

// Pipe allocates a connected OS pipe pair and registers both ends under
// fresh synthetic descriptor numbers, returned as (readFd, writeFd).
func (t *FileDescriptors) Pipe() (int, int, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create pipe: %w", err)
	}

	readFd := t.next
	t.next++
	writeFd := t.next
	t.next++

	t.fds[readFd] = Input(r)
	t.fds[writeFd] = Output(w)
	return readFd, writeFd, nil
}

// Clone copies the table's bindings into a new table. The descriptors
// themselves are shared.
func (t *FileDescriptors) Clone() *FileDescriptors {
	out := &FileDescriptors{
		fds:  make(map[int]*FileDescriptor, len(t.fds)),
		next: t.next,
	}
	for fd, d := range t.fds {
		out.fds[fd] = d
	}
	return out
}
