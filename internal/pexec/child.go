package pexec

import (
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/dsv-cli/dsv/internal/dsverr"
	"github.com/dsv-cli/dsv/internal/nbio"
	"github.com/pkg/errors"
)

// Child tracks one running subprocess: its argv, input row, pipes and
// lifecycle state. The parent's ends of stdin/stdout/stderr are
// non-blocking; the child's ends are ordinary blocking fds, so the
// child process itself sees nothing unusual.
type Child struct {
	Argv []string
	Row  []string
	Tag  string // rendered tag prefix: the row's fields joined by single spaces
	Index int   // dispatch order, used for rainbow hue

	cmd *exec.Cmd

	stdinW  *os.File // parent writes here (non-blocking)
	stdoutR *os.File // parent reads here (non-blocking)
	stderrR *os.File // parent reads here (non-blocking)

	payload    []byte
	payloadPos int
	stdinDone  bool

	stdoutBuf []byte
	stderrBuf []byte
	stdoutEOF bool
	stderrEOF bool

	state     ChildState
	startedAt time.Time
	exitErr   error

	exitNotifyR *os.File // readable once the wait goroutine has Wait()ed
	exitNotifyW *os.File

	// waitMu guards waitDone/waitErr/runtime: written by the Wait()
	// goroutine below, read by Reap() on the event-loop goroutine. The
	// exitNotify pipe signals readiness but a pipe write/read isn't a
	// Go memory-model happens-before edge for plain fields, so these
	// need their own lock.
	waitMu   sync.Mutex
	waitDone bool
	waitErr  error
	runtime  time.Duration
}

// Start launches argv with an optional stdin payload, wiring three
// pipes in non-blocking mode on the parent side.
func Start(argv []string, payload []byte) (*Child, error) {
	if len(argv) == 0 {
		return nil, dsverr.NewUsageError("pexec: empty argv")
	}

	stdinR, stdinW, err := os.Pipe()
	if err != nil {
		return nil, errors.Wrap(err, "pexec: stdin pipe")
	}
	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		return nil, errors.Wrap(err, "pexec: stdout pipe")
	}
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		return nil, errors.Wrap(err, "pexec: stderr pipe")
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = stdinR
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW

	if err := cmd.Start(); err != nil {
		stdinR.Close()
		stdinW.Close()
		stdoutR.Close()
		stdoutW.Close()
		stderrR.Close()
		stderrW.Close()
		return nil, &dsverr.ChildProcessError{Argv: argv, Err: err}
	}

	// The child now holds its own copies of the read/write ends it
	// needs; close the parent's unused copies so EOF propagates and
	// fds don't leak.
	stdinR.Close()
	stdoutW.Close()
	stderrW.Close()

	for _, f := range []*os.File{stdinW, stdoutR, stderrR} {
		if err := nbio.SetNonblock(f); err != nil {
			return nil, err
		}
	}

	exitR, exitW, err := nbio.Pipe()
	if err != nil {
		return nil, err
	}

	c := &Child{
		Argv:        argv,
		cmd:         cmd,
		stdinW:      stdinW,
		stdoutR:     stdoutR,
		stderrR:     stderrR,
		payload:     payload,
		state:       StateStarting,
		startedAt:   time.Now(),
		exitNotifyR: exitR,
		exitNotifyW: exitW,
	}
	if len(payload) == 0 {
		c.stdinW.Close()
		c.stdinDone = true
	}
	c.state = StateRunning

	// Wait() blocks on a dedicated goroutine; the event loop learns
	// the child exited by polling exitNotifyR's readability, never by
	// calling a blocking waitpid itself.
	go func() {
		waitErr := cmd.Wait()
		runtime := time.Since(c.startedAt)
		c.waitMu.Lock()
		c.waitErr = waitErr
		c.runtime = runtime
		c.waitDone = true
		c.waitMu.Unlock()
		c.exitNotifyW.Write([]byte{1})
		c.exitNotifyW.Close()
	}()

	return c, nil
}

// ExitNotifyFd is the fd the event loop polls for readability to
// learn the child has exited.
func (c *Child) ExitNotifyFd() int { return int(c.exitNotifyR.Fd()) }

// WantWrite reports whether the child's stdin still has unwritten
// payload.
func (c *Child) WantWrite() bool { return !c.stdinDone }

// FlushStdin writes as much of the pending payload as the pipe will
// currently accept, closing stdin once drained.
func (c *Child) FlushStdin() error {
	if c.stdinDone {
		return nil
	}
	n, err := c.stdinW.Write(c.payload[c.payloadPos:])
	c.payloadPos += n
	if err != nil && !nbio.IsWouldBlock(err) {
		return err
	}
	if c.payloadPos >= len(c.payload) {
		c.stdinW.Close()
		c.stdinDone = true
	}
	return nil
}

// ReadStdout drains whatever is currently available on stdout into
// the child's buffer and returns complete lines split on irs,
// leaving any trailing partial line buffered.
func (c *Child) ReadStdout(irs []byte) ([][]byte, error) {
	return c.drain(c.stdoutR, &c.stdoutBuf, &c.stdoutEOF, irs)
}

// ReadStderr is ReadStdout's stderr counterpart.
func (c *Child) ReadStderr(irs []byte) ([][]byte, error) {
	return c.drain(c.stderrR, &c.stderrBuf, &c.stderrEOF, irs)
}

func (c *Child) drain(f *os.File, buf *[]byte, eof *bool, irs []byte) ([][]byte, error) {
	if *eof {
		return nil, nil
	}
	tmp := make([]byte, 64*1024)
	n, err := f.Read(tmp)
	if n > 0 {
		*buf = append(*buf, tmp[:n]...)
	}
	if err != nil {
		if nbio.IsWouldBlock(err) {
			return splitComplete(buf, irs), nil
		}
		*eof = true
		return splitComplete(buf, irs), nil
	}
	return splitComplete(buf, irs), nil
}

func splitComplete(buf *[]byte, irs []byte) [][]byte {
	var lines [][]byte
	for {
		idx := indexOf(*buf, irs)
		if idx < 0 {
			break
		}
		lines = append(lines, append([]byte(nil), (*buf)[:idx]...))
		*buf = (*buf)[idx+len(irs):]
	}
	return lines
}

func indexOf(haystack, needle []byte) int {
	if len(needle) == 0 {
		return -1
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

// StdoutFd / StderrFd expose the parent-side fds for the poller.
func (c *Child) StdoutFd() int { return int(c.stdoutR.Fd()) }
func (c *Child) StderrFd() int { return int(c.stderrR.Fd()) }
func (c *Child) StdinFd() int  { return int(c.stdinW.Fd()) }

// StdoutDone / StderrDone report whether that stream has hit EOF.
func (c *Child) StdoutDone() bool { return c.stdoutEOF }
func (c *Child) StderrDone() bool { return c.stderrEOF }

// FinalStdout / FinalStderr return any final partial line left in the
// buffer once the stream has hit EOF, per spec.md's "drain any final
// partial lines" on exit.
func (c *Child) FinalStdout() []byte { return c.drainFinal(&c.stdoutBuf) }
func (c *Child) FinalStderr() []byte { return c.drainFinal(&c.stderrBuf) }

func (c *Child) drainFinal(buf *[]byte) []byte {
	if len(*buf) == 0 {
		return nil
	}
	out := *buf
	*buf = nil
	return out
}

// Reap collects the already-completed Wait() result (the exit-notify
// fd having signaled readability) and closes the remaining
// parent-side fds, transitioning to Reaped.
func (c *Child) Reap() (succeeded bool, runtime time.Duration, err error) {
	c.waitMu.Lock()
	waitErr := c.waitErr
	runtime = c.runtime
	c.waitMu.Unlock()

	c.exitErr = waitErr
	c.stdoutR.Close()
	c.stderrR.Close()
	c.exitNotifyR.Close()
	if !c.stdinDone {
		c.stdinW.Close()
	}
	c.state = StateReaped
	if waitErr != nil {
		if _, ok := waitErr.(*exec.ExitError); ok {
			return false, runtime, nil
		}
		return false, runtime, &dsverr.ChildProcessError{Argv: c.Argv, Err: waitErr}
	}
	return true, runtime, nil
}

// Signal forwards a signal to the child (SIGTERM/SIGKILL on
// cancellation).
func (c *Child) Signal(sig os.Signal) error {
	if c.cmd.Process == nil {
		return nil
	}
	return c.cmd.Process.Signal(sig)
}
