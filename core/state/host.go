package state

import (
	"os"
	"os/exec"
	"sync"
)

// Host owns OS-level state that outlives any single scope: the child
// processes and background threads spawned by one shell instance.
//
// Registrations are keyed by a stable id. Every registered process and
// thread must be reaped (waited on, joined, or killed) before shell exit.
// The registries are guarded by a mutex since background threads and the
// executor register and reap entries concurrently; no waiting method is ever
// invoked while holding a Context's lock.
type Host struct {
	mu     sync.Mutex
	nextID int

	children map[int]*child
	threads  map[int]*Thread
}

// child wraps a started process together with its reaper.
type child struct {
	cmd  *exec.Cmd
	pid  int
	done chan struct{}
	code int
}

// Thread is a handle for a background goroutine that yields an exit code.
type Thread struct {
	id   int
	done chan struct{}
	code int
}

// Join waits for the thread to finish and returns its exit code.
func (t *Thread) Join() int {
	<-t.done
	return t.code
}

// NewHost constructs an empty host registry.
func NewHost() *Host {
	return &Host{
		children: make(map[int]*child),
		threads:  make(map[int]*Thread),
	}
}

// Pid reports the OS process id of the shell itself.
func (h *Host) Pid() int {
	return os.Getpid()
}

// AddChild registers a started child process and returns its registry id.
//
// A single reaper goroutine waits on the process so that its exit status can
// be collected exactly once, either through WaitChild or TakeExited.
func (h *Host) AddChild(cmd *exec.Cmd) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID

	c := &child{
		cmd:  cmd,
		pid:  cmd.Process.Pid,
		done: make(chan struct{}),
	}
	h.children[id] = c

	go func() {
		err := cmd.Wait()
		c.code = exitCode(cmd, err)
		close(c.done)
	}()

	return id
}

// WaitChild blocks until the identified child exits, removes it from the
// registry, and returns its exit code. Unknown ids report 127.
func (h *Host) WaitChild(id int) int {
	h.mu.Lock()
	c, ok := h.children[id]
	h.mu.Unlock()
	if !ok {
		return 127
	}

	<-c.done

	h.mu.Lock()
	delete(h.children, id)
	h.mu.Unlock()

	return c.code
}

// TakeExited removes all tracked children that have exited and returns their
// OS process ids.
func (h *Host) TakeExited() []int {
	h.mu.Lock()
	defer h.mu.Unlock()

	var exited []int
	for id, c := range h.children {
		select {
		case <-c.done:
			exited = append(exited, c.pid)
			delete(h.children, id)
		default:
		}
	}

	return exited
}

// KillAll kills every tracked child process. Used for best-effort cleanup at
// shell shutdown.
func (h *Host) KillAll() {
	h.mu.Lock()
	children := make([]*child, 0, len(h.children))
	for id, c := range h.children {
		children = append(children, c)
		delete(h.children, id)
	}
	h.mu.Unlock()

	for _, c := range children {
		if c.cmd.Process != nil {
			_ = c.cmd.Process.Kill()
		}
		<-c.done
	}
}

// AddThread starts fn on a new background goroutine, registers it, and
// returns its handle. The goroutine's return value becomes the thread's exit
// code, retrievable after Join.
func (h *Host) AddThread(fn func() int) *Thread {
	h.mu.Lock()
	h.nextID++
	t := &Thread{
		id:   h.nextID,
		done: make(chan struct{}),
	}
	h.threads[t.id] = t
	h.mu.Unlock()

	go func() {
		t.code = fn()
		close(t.done)
	}()

	return t
}

// JoinAll joins every tracked background thread, removing them from the
// registry.
func (h *Host) JoinAll() {
	h.mu.Lock()
	threads := make([]*Thread, 0, len(h.threads))
	for id, t := range h.threads {
		threads = append(threads, t)
		delete(h.threads, id)
	}
	h.mu.Unlock()

	for _, t := range threads {
		<-t.done
	}
}

// exitCode extracts a child's exit code after Wait. Processes terminated
// without a code, for example by a signal, report 127.
func exitCode(cmd *exec.Cmd, err error) int {
	if cmd.ProcessState != nil {
		if code := cmd.ProcessState.ExitCode(); code >= 0 {
			return code
		}
		return 127
	}
	if err != nil {
		return 127
	}
	return 0
}
