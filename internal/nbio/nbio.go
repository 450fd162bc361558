// Package nbio provides the non-blocking pipe and poll primitives that
// internal/pexec's single-threaded event loop is built on. Grounded on
// the teacher's sole runtime dependency, golang.org/x/sys, generalized
// from its cpu-feature-detection use (teacher's parse.go consulted
// golang.org/x/sys/cpu for AVX2 support) to the unix subpackage's
// poll/pipe/nonblocking-fd syscalls, per original_source/src/xargs.rs's
// poll-driven child I/O loop.
package nbio

import (
	"os"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// SetNonblock puts f's file descriptor into non-blocking mode so Reads
// and Writes against it return immediately instead of stalling the
// single event-loop goroutine.
func SetNonblock(f *os.File) error {
	if err := unix.SetNonblock(int(f.Fd()), true); err != nil {
		return errors.Wrapf(err, "nbio: setnonblock fd %d", f.Fd())
	}
	return nil
}

// Event describes a readiness result for one polled fd.
type Event struct {
	Fd       int
	Readable bool
	Writable bool
	HangUp   bool
	Err      error
}

// Poller multiplexes readiness across a set of file descriptors using
// poll(2), rebuilt fresh on every Wait call since the pexec event loop
// adds and removes children's pipes constantly.
type Poller struct {
	watch map[int]*watched
}

type watched struct {
	write bool
}

// NewPoller returns an empty Poller.
func NewPoller() *Poller {
	return &Poller{watch: make(map[int]*watched)}
}

// Add registers fd for readability (and, if write is true, writability)
// notifications on the next Wait call.
func (p *Poller) Add(fd int, write bool) {
	p.watch[fd] = &watched{write: write}
}

// Remove stops watching fd.
func (p *Poller) Remove(fd int) {
	delete(p.watch, fd)
}

// Len reports how many fds are currently registered.
func (p *Poller) Len() int { return len(p.watch) }

// Wait blocks up to timeoutMillis (negative blocks indefinitely, 0
// returns immediately) and reports readiness events for every watched
// fd that became ready, in no particular order.
func (p *Poller) Wait(timeoutMillis int) ([]Event, error) {
	if len(p.watch) == 0 {
		return nil, nil
	}
	fds := make([]unix.PollFd, 0, len(p.watch))
	order := make([]int, 0, len(p.watch))
	for fd, w := range p.watch {
		var events int16 = unix.POLLIN
		if w.write {
			events |= unix.POLLOUT
		}
		fds = append(fds, unix.PollFd{Fd: int32(fd), Events: events})
		order = append(order, fd)
	}

	n, err := unix.Poll(fds, timeoutMillis)
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "nbio: poll")
	}
	if n == 0 {
		return nil, nil
	}

	events := make([]Event, 0, n)
	for i, pf := range fds {
		if pf.Revents == 0 {
			continue
		}
		ev := Event{Fd: order[i]}
		if pf.Revents&unix.POLLIN != 0 {
			ev.Readable = true
		}
		if pf.Revents&unix.POLLOUT != 0 {
			ev.Writable = true
		}
		if pf.Revents&(unix.POLLHUP|unix.POLLERR) != 0 {
			ev.HangUp = true
		}
		events = append(events, ev)
	}
	return events, nil
}

// IsWouldBlock reports whether err is the non-blocking "try again"
// sentinel, which the event loop treats as "no data yet", not a
// failure.
func IsWouldBlock(err error) bool {
	return errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EWOULDBLOCK)
}

// Pipe creates a non-blocking pipe pair, ready for immediate use in
// the event loop without a separate SetNonblock call on each end.
func Pipe() (r, w *os.File, err error) {
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_NONBLOCK); err != nil {
		return nil, nil, errors.Wrap(err, "nbio: pipe2")
	}
	r = os.NewFile(uintptr(fds[0]), "|0")
	w = os.NewFile(uintptr(fds[1]), "|1")
	return r, w, nil
}
