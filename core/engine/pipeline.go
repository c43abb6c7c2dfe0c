package engine

import (
	"errors"
	"fmt"
	"os/exec"

	"github.com/95jonpet/pjsh/core/ast"
	"github.com/95jonpet/pjsh/core/state"
)

// preparedSegment is one pipeline stage after word expansion, redirection,
// and pipe wiring. Preparation is separated from execution so that a bad
// segment can fail the whole pipeline before any process exists.
type preparedSegment struct {
	fds *state.FileDescriptors

	isCondition bool
	condition   ast.Condition

	args     []string
	resolved ResolvedCommand

	// owned descriptors are the pipe ends and redirection targets created
	// for this segment. They are closed as soon as the segment no longer
	// needs them so downstream readers observe end of input.
	owned []*state.FileDescriptor

	child   int
	pid     int
	thread  *state.Thread
	code    int
	actions []state.Action
}

func (s *preparedSegment) closeOwned() {
	for _, d := range s.owned {
		_ = d.Close()
	}
	s.owned = nil
}

// executePipeline runs one pipeline and returns its exit status.
//
// External processes are all started, in segment order, before anything is
// waited on, so they run concurrently and coordinate through OS pipe
// buffering. In-process segments of a synchronous pipeline then run
// sequentially on the invoking goroutine; the pipeline's status is the last
// segment's. Asynchronous pipelines return status 0 immediately and leave
// their processes and threads registered with the host for later reaping.
func (e *Executor) executePipeline(pipeline ast.Pipeline, ctx *state.Context) (int, error) {
	segments, err := e.prepareSegments(pipeline, ctx)
	if err != nil {
		return state.ExitGeneralError, err
	}

	host := ctx.Host()

	for i, seg := range segments {
		if seg.isCondition || seg.resolved.Kind != KindProgram {
			continue
		}
		if err := e.startProgram(seg, ctx); err != nil {
			for _, started := range segments[:i] {
				if started.child != 0 {
					host.WaitChild(started.child)
				}
			}
			for _, remaining := range segments {
				remaining.closeOwned()
			}
			return state.ExitGeneralError, err
		}
	}

	if pipeline.IsAsync {
		for _, seg := range segments {
			seg := seg
			if seg.child != 0 {
				e.notifyStarted(seg.pid)
				continue
			}
			forked := ctx.Fork("async")
			seg.thread = host.AddThread(func() int {
				code, _ := e.runSegment(seg, forked)
				return code
			})
		}
		return state.ExitSuccess, nil
	}

	for _, seg := range segments {
		if seg.child == 0 {
			seg.code, seg.actions = e.runSegment(seg, ctx)
		}
	}

	last := state.ExitSuccess
	for _, seg := range segments {
		if seg.child != 0 {
			seg.code = host.WaitChild(seg.child)
		}
		last = seg.code
	}

	for _, seg := range segments {
		if err := e.applyActions(seg.actions, ctx); err != nil {
			return last, err
		}
	}
	return last, nil
}

// prepareSegments expands, resolves, redirects, and pipe-wires every segment.
// Any failure closes whatever was opened and aborts the whole pipeline; no
// process has started at this point.
func (e *Executor) prepareSegments(pipeline ast.Pipeline, ctx *state.Context) ([]*preparedSegment, error) {
	segments := make([]*preparedSegment, 0, len(pipeline.Segments))
	fail := func(err error) ([]*preparedSegment, error) {
		for _, seg := range segments {
			seg.closeOwned()
		}
		return nil, err
	}

	for _, raw := range pipeline.Segments {
		seg := &preparedSegment{fds: e.fds.Clone()}
		switch s := raw.(type) {
		case ast.Command:
			args, err := e.ExpandWords(s.Args, ctx)
			if err != nil {
				return fail(err)
			}
			if _, literal := s.Args[0].(ast.Literal); literal {
				args = expandAlias(args, ctx)
			}
			for _, redirect := range s.Redirects {
				if err := e.applyRedirect(seg, redirect, ctx); err != nil {
					return fail(err)
				}
			}
			seg.args = args
			if len(args) > 0 {
				seg.resolved = e.Resolve(args[0], ctx)
			}
		case ast.ConditionSegment:
			seg.isCondition = true
			seg.condition = s.Condition
		}
		segments = append(segments, seg)
	}

	// Interior pipes override stdout and stdin of adjacent segments. Edge
	// segments keep the caller's streams unless redirected above.
	for i := 0; i < len(segments)-1; i++ {
		left, right := segments[i], segments[i+1]
		readFd, writeFd, err := left.fds.Pipe()
		if err != nil {
			return fail(err)
		}
		readEnd, _ := left.fds.Get(readFd)
		writeEnd, _ := left.fds.Get(writeFd)
		left.fds.Bind(state.FdStdout, writeEnd)
		right.fds.Bind(state.FdStdin, readEnd)
		left.owned = append(left.owned, writeEnd)
		right.owned = append(right.owned, readEnd)
	}

	return segments, nil
}

// applyRedirect rebinds one descriptor of a segment. Path targets are opened
// eagerly so a failing target aborts the pipeline before any process starts.
func (e *Executor) applyRedirect(seg *preparedSegment, redirect ast.Redirect, ctx *state.Context) error {
	if redirect.TargetPath == nil {
		d, err := seg.fds.Get(redirect.TargetFd)
		if err != nil {
			return err
		}
		seg.fds.Bind(redirect.Source, d)
		return nil
	}

	path, err := e.InterpolateWord(redirect.TargetPath, ctx)
	if err != nil {
		return err
	}

	d := state.FileTarget(e.fs, resolvePath(ctx, path), redirect.Mode == ast.RedirectAppend)
	if redirect.Mode == ast.RedirectRead {
		_, err = d.Reader()
	} else {
		_, err = d.Writer()
	}
	if err != nil {
		return err
	}

	seg.fds.Bind(redirect.Source, d)
	seg.owned = append(seg.owned, d)
	return nil
}

// startProgram spawns a segment's external process and registers it with the
// host. The segment's owned descriptors are closed once the child holds its
// own copies; interior pipe readers would otherwise never see end of input.
func (e *Executor) startProgram(seg *preparedSegment, ctx *state.Context) error {
	io, err := segmentIO(seg.fds)
	if err != nil {
		return err
	}

	cmd := &exec.Cmd{
		Path:   seg.resolved.Path,
		Args:   seg.args,
		Env:    ctx.Environ(),
		Dir:    workingDir(ctx),
		Stdin:  io.Stdin,
		Stdout: io.Stdout,
		Stderr: io.Stderr,
	}
	if err := cmd.Start(); err != nil {
		seg.closeOwned()
		return &SpawnError{Path: seg.resolved.Path, Err: err}
	}

	seg.pid = cmd.Process.Pid
	seg.child = ctx.Host().AddChild(cmd)
	seg.closeOwned()
	return nil
}

// runSegment executes an in-process segment: a condition, builtin, function,
// or unresolvable command. It never returns an error; failures surface as a
// nonzero exit code plus a message on the segment's error stream.
func (e *Executor) runSegment(seg *preparedSegment, ctx *state.Context) (int, []state.Action) {
	defer seg.closeOwned()

	if seg.isCondition {
		ok, err := e.EvalCondition(seg.condition, ctx)
		if err != nil {
			e.reportSegmentError(seg, err)
			return state.ExitGeneralError, nil
		}
		if ok {
			return state.ExitSuccess, nil
		}
		return state.ExitGeneralError, nil
	}

	if len(seg.args) == 0 {
		return state.ExitSuccess, nil
	}

	switch seg.resolved.Kind {
	case KindBuiltin:
		io, err := segmentIO(seg.fds)
		if err != nil {
			e.reportSegmentError(seg, err)
			return state.ExitGeneralError, nil
		}
		result := seg.resolved.Builtin.Run(seg.args, ctx, io)
		return result.Code, result.Actions

	case KindFunction:
		code, err := e.callFunction(seg.resolved.Function, seg.args, seg.fds, ctx)
		if err != nil {
			var exit *ExitRequest
			if errors.As(err, &exit) {
				return exit.Code, []state.Action{state.ExitShell{Code: exit.Code}}
			}
			e.reportSegmentError(seg, err)
			return state.ExitGeneralError, nil
		}
		return code, nil

	default:
		e.reportSegmentError(seg, &UnknownCommandError{Name: seg.args[0]})
		return state.ExitNotFound, nil
	}
}

// segmentIO materializes a descriptor table's standard streams.
func segmentIO(fds *state.FileDescriptors) (*state.IO, error) {
	stdinFd, err := fds.Get(state.FdStdin)
	if err != nil {
		return nil, err
	}
	stdin, err := stdinFd.Reader()
	if err != nil {
		return nil, err
	}

	stdoutFd, err := fds.Get(state.FdStdout)
	if err != nil {
		return nil, err
	}
	stdout, err := stdoutFd.Writer()
	if err != nil {
		return nil, err
	}

	stderrFd, err := fds.Get(state.FdStderr)
	if err != nil {
		return nil, err
	}
	stderr, err := stderrFd.Writer()
	if err != nil {
		return nil, err
	}

	return &state.IO{Stdin: stdin, Stdout: stdout, Stderr: stderr}, nil
}

// reportSegmentError prints an error on the segment's error stream. Segment
// failures never abort sibling segments, so the message is the only trace.
func (e *Executor) reportSegmentError(seg *preparedSegment, err error) {
	if d, derr := seg.fds.Get(state.FdStderr); derr == nil {
		if w, werr := d.Writer(); werr == nil {
			fmt.Fprintf(w, "pjsh: %v\n", err)
		}
	}
}

// notifyStarted announces a background process on the shell's error stream.
func (e *Executor) notifyStarted(pid int) {
	if d, err := e.fds.Get(state.FdStderr); err == nil {
		if w, werr := d.Writer(); werr == nil {
			fmt.Fprintf(w, "pjsh: PID %d started\n", pid)
		}
	}
}

// workingDir reads the shell's working directory from the scope. External
// processes inherit it as their OS working directory.
func workingDir(ctx *state.Context) string {
	pwd, ok := ctx.Var("PWD")
	if !ok {
		return ""
	}
	return state.ValueString(pwd)
}
