package pexec

import (
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/olekukonko/ts"
	"golang.org/x/term"

	"github.com/dsv-cli/dsv/internal/nbio"
)

// Config configures one Engine run.
type Config struct {
	Templates   []*Template // compiled argv template
	StdinTemplate *Template // nil if no --stdin-template given
	HeaderIdx   map[string]int
	JobLimit    string // "4" or "50%", resolved against NumCPU
	Tag         bool
	Rainbow     bool
	Verbose     int
	DryRun      bool
	IRS         []byte // child output line separator
}

// Row is one input row handed to the engine for dispatch.
type Row struct {
	Fields []string
}

// Output is one line of child output (or a final status line) the
// engine hands back to the caller for writing.
type Output struct {
	Tag      string
	Line     []byte
	IsStderr bool
	Index    int // dispatch order, for rainbow hue
}

// Engine runs ParallelExec's event loop: a FIFO queue of pending rows,
// a job-limited set of running children, one poll() per tick.
type Engine struct {
	cfg    Config
	Stats  *Stats
	limit  int
	poller *nbio.Poller

	queue   []Row
	running map[int]*Child // keyed by dispatch index
	nextIdx int

	progressEnabled bool
	vteVersion      int
	lastRender      time.Time
	renderedOnce    bool
}

// New constructs an Engine, resolving the job limit ("N" or "N%") now
// so the whole run uses a stable cap. Progress rendering (RenderBar +
// FormatETA, optionally OSC 9;4) is enabled only when Config.Verbose
// is positive and stderr is a terminal.
func New(cfg Config) *Engine {
	vteVersion, _ := strconv.Atoi(os.Getenv("VTE_VERSION"))
	return &Engine{
		cfg:             cfg,
		Stats:           NewStats(),
		limit:           resolveJobLimit(cfg.JobLimit),
		poller:          nbio.NewPoller(),
		running:         make(map[int]*Child),
		progressEnabled: cfg.Verbose > 0 && term.IsTerminal(int(os.Stderr.Fd())),
		vteVersion:      vteVersion,
	}
}

func resolveJobLimit(spec string) int {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return runtime.NumCPU()
	}
	if strings.HasSuffix(spec, "%") {
		pct, err := strconv.Atoi(strings.TrimSuffix(spec, "%"))
		if err != nil || pct <= 0 {
			return runtime.NumCPU()
		}
		n := runtime.NumCPU() * pct / 100
		if n < 1 {
			n = 1
		}
		return n
	}
	n, err := strconv.Atoi(spec)
	if err != nil || n < 1 {
		return runtime.NumCPU()
	}
	return n
}

// Run consumes rows from in until it is closed, dispatching children
// up to the job limit and streaming their output through emit. It
// blocks until every queued and running child has been reaped or
// SIGINT cancels the run.
func (e *Engine) Run(in <-chan Row, emit func(Output) error) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT)
	defer signal.Stop(sigCh)

	inOpen := true
	for {
		select {
		case <-sigCh:
			e.cancelAll()
			e.clearProgress()
			return nil
		case row, ok := <-in:
			if !ok {
				inOpen = false
				in = nil
				break
			}
			e.queue = append(e.queue, row)
			e.Stats.Enqueue()
		default:
		}

		e.dispatchReady()

		if err := e.tick(emit); err != nil {
			return err
		}
		e.renderProgress()

		if !inOpen && len(e.queue) == 0 && len(e.running) == 0 {
			e.clearProgress()
			return nil
		}
		if len(e.running) == 0 && len(e.queue) == 0 && inOpen {
			// Nothing to poll yet; wait for the next row without
			// busy-spinning.
			select {
			case <-sigCh:
				e.cancelAll()
				e.clearProgress()
				return nil
			case row, ok := <-in:
				if !ok {
					inOpen = false
					in = nil
					continue
				}
				e.queue = append(e.queue, row)
				e.Stats.Enqueue()
			}
		}
	}
}

// dispatchReady starts new children while under the job limit and
// the queue is non-empty.
func (e *Engine) dispatchReady() {
	for len(e.running) < e.limit && len(e.queue) > 0 {
		row := e.queue[0]
		e.queue = e.queue[1:]

		argv, err := RenderArgv(e.cfg.Templates, row.Fields, e.cfg.HeaderIdx)
		if err != nil {
			e.Stats.Dispatch()
			e.Stats.Finish(false, 0)
			continue
		}
		argv, _ = BashDashC(argv)

		var payload []byte
		if e.cfg.StdinTemplate != nil {
			s, err := e.cfg.StdinTemplate.Render(WholeRowLookup(row.Fields, e.cfg.HeaderIdx))
			if err == nil {
				payload = []byte(s)
			}
		}

		if e.cfg.DryRun {
			e.Stats.Dispatch()
			e.Stats.Finish(true, 0)
			continue
		}

		child, err := Start(argv, payload)
		if err != nil {
			e.Stats.Dispatch()
			e.Stats.Finish(false, 0)
			continue
		}
		child.Row = row.Fields
		child.Index = e.nextIdx
		if e.cfg.Tag {
			child.Tag = strings.Join(row.Fields, " ")
		}
		e.nextIdx++
		e.Stats.Dispatch()
		e.running[child.Index] = child
	}
}

// tick polls every running child's pipes once and processes whatever
// became ready, the event loop's single suspension point.
func (e *Engine) tick(emit func(Output) error) error {
	if len(e.running) == 0 {
		return nil
	}
	e.poller = nbio.NewPoller()
	for _, c := range e.running {
		if c.WantWrite() {
			e.poller.Add(c.StdinFd(), true)
		}
		if !c.StdoutDone() {
			e.poller.Add(c.StdoutFd(), false)
		}
		if !c.StderrDone() {
			e.poller.Add(c.StderrFd(), false)
		}
		e.poller.Add(c.ExitNotifyFd(), false)
	}

	events, err := e.poller.Wait(50)
	if err != nil {
		return err
	}

	fdOwner := make(map[int]*Child, len(e.running)*4)
	for _, c := range e.running {
		fdOwner[c.StdinFd()] = c
		fdOwner[c.StdoutFd()] = c
		fdOwner[c.StderrFd()] = c
		fdOwner[c.ExitNotifyFd()] = c
	}

	exited := make(map[int]bool)
	for _, ev := range events {
		c, ok := fdOwner[ev.Fd]
		if !ok {
			continue
		}
		switch {
		case ev.Fd == c.ExitNotifyFd():
			exited[c.Index] = true
		case ev.Fd == c.StdinFd() && ev.Writable:
			_ = c.FlushStdin()
		case ev.Fd == c.StdoutFd() && ev.Readable:
			lines, _ := c.ReadStdout(e.cfg.IRS)
			for _, line := range lines {
				if err := emit(Output{Tag: c.Tag, Line: line, Index: c.Index}); err != nil {
					return err
				}
			}
		case ev.Fd == c.StderrFd() && ev.Readable:
			lines, _ := c.ReadStderr(e.cfg.IRS)
			for _, line := range lines {
				if err := emit(Output{Tag: c.Tag, Line: line, IsStderr: true, Index: c.Index}); err != nil {
					return err
				}
			}
		}
	}

	for idx := range exited {
		c := e.running[idx]
		if err := e.drainRemaining(c, emit); err != nil {
			return err
		}
		ok, runtimeDur, _ := c.Reap()
		e.Stats.Finish(ok, runtimeDur)
		delete(e.running, idx)
	}
	return nil
}

// drainRemaining flushes any pending stdout/stderr and final partial
// lines before a child is reaped, stopping as soon as emit fails (the
// downstream sink is gone, e.g. a broken pipe) instead of continuing
// to read from an exited child nobody wants output from anymore.
func (e *Engine) drainRemaining(c *Child, emit func(Output) error) error {
	for !c.StdoutDone() {
		lines, _ := c.ReadStdout(e.cfg.IRS)
		if len(lines) == 0 {
			break
		}
		for _, line := range lines {
			if err := emit(Output{Tag: c.Tag, Line: line, Index: c.Index}); err != nil {
				return err
			}
		}
	}
	for !c.StderrDone() {
		lines, _ := c.ReadStderr(e.cfg.IRS)
		if len(lines) == 0 {
			break
		}
		for _, line := range lines {
			if err := emit(Output{Tag: c.Tag, Line: line, IsStderr: true, Index: c.Index}); err != nil {
				return err
			}
		}
	}
	if final := c.FinalStdout(); len(final) > 0 {
		if err := emit(Output{Tag: c.Tag, Line: final, Index: c.Index}); err != nil {
			return err
		}
	}
	if final := c.FinalStderr(); len(final) > 0 {
		if err := emit(Output{Tag: c.Tag, Line: final, IsStderr: true, Index: c.Index}); err != nil {
			return err
		}
	}
	return nil
}

// renderProgress draws the bar/ETA line to stderr, throttled to avoid
// flooding a fast terminal. Disabled entirely unless stderr is a tty
// and Config.Verbose is positive.
func (e *Engine) renderProgress() {
	if !e.progressEnabled {
		return
	}
	if !e.lastRender.IsZero() && time.Since(e.lastRender) < 150*time.Millisecond {
		return
	}
	e.lastRender = time.Now()
	e.renderedOnce = true

	queued, running, succeeded, failed := e.Stats.Snapshot()
	bar := RenderBarWidth(e.barWidth(), succeeded, failed, running, queued)
	eta := FormatETA(e.Stats.MeanRuntime(), e.Stats.MaxRuntime(), running, queued, e.limit)
	total := succeeded + failed + running + queued
	fmt.Fprintf(os.Stderr, "\r[%s] %d/%d ok, %d failed, eta %s ", bar, succeeded, total, failed, eta)

	if SupportsOSC9(e.vteVersion) && total > 0 {
		percent := (succeeded + failed) * 100 / total
		fmt.Fprint(os.Stderr, OSC9Progress(percent))
	}
}

// barWidth sizes the bar against the terminal's column count when
// available, falling back to progressBarWidth.
func (e *Engine) barWidth() int {
	size, err := ts.GetSize()
	if err != nil || size.Col() <= 0 {
		return progressBarWidth
	}
	w := size.Col() - 40
	if w < 10 {
		w = 10
	}
	if w > progressBarWidth {
		w = progressBarWidth
	}
	return w
}

// clearProgress erases the last rendered progress line, if any.
func (e *Engine) clearProgress() {
	if !e.renderedOnce {
		return
	}
	fmt.Fprint(os.Stderr, "\r\x1b[2K")
	if SupportsOSC9(e.vteVersion) {
		fmt.Fprint(os.Stderr, OSC9Clear())
	}
}

// cancelAll SIGTERMs (then, after a grace period, SIGKILLs) every
// running child and discards the pending queue, per spec.md's SIGINT
// cancellation policy.
func (e *Engine) cancelAll() {
	e.queue = nil
	for _, c := range e.running {
		_ = c.Signal(syscall.SIGTERM)
	}
	time.Sleep(200 * time.Millisecond)
	for _, c := range e.running {
		_ = c.Signal(syscall.SIGKILL)
	}
	for _, c := range e.running {
		c.Reap()
	}
}
