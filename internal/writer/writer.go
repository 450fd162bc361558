// Package writer implements the PrettyFormatter/Writer: the state
// machine that either streams rows immediately or accumulates them to
// compute column widths and then emits an aligned, colored,
// header-banded table, optionally piped through a pager.
//
// Grounded on the teacher's writer.go (buffered bufio.Writer,
// fieldNeedsQuotes/writeQuotedField skeleton, Flush/Error accessor
// pair) for the quoting and flush mechanics; the gathering/pretty
// layer, rainbow coloring and pager piping are new, grounded on
// original_source/src/writer.rs's semantics.
package writer

import (
	"bufio"
	"io"
	"os"

	"github.com/dsv-cli/dsv/internal/bus"
	"github.com/dsv-cli/dsv/internal/record"
)

// Config configures a Writer. It is resolved once from bus.Options;
// afterward only OFS changes, through OnOfs.
type Config struct {
	ORS             []byte
	OFS             record.OFS
	QuoteOutput     bool
	ColourEnabled   bool
	RainbowColumns  bool
	HeaderBgColour  int // 256-color palette index; 0 disables background
	NumberedColumns bool
	Trailer         bus.TrailerMode
	TerminalRows    int // 0 == unknown; gates --trailer=auto
	DropHeader      bool
}

type bufferedItem struct {
	isSeparator bool
	row         record.Row
}

// Writer consumes Header/Row/Separator/Eof/Raw/Ofs messages on
// behalf of one pipeline's terminal bus and renders formatted output
// to its sink.
type Writer struct {
	cfg Config

	sink      *bufio.Writer
	closeSink func() error

	header    record.Row
	haveHeader bool

	gathering bool
	buffered  []bufferedItem

	err error
}

// New constructs a Writer writing to w (typically stdout or a pager's
// stdin), per cfg.
func New(w io.Writer, cfg Config) *Writer {
	return &Writer{
		cfg:       cfg,
		sink:      bufio.NewWriter(w),
		gathering: cfg.OFS.IsPretty(),
	}
}

// NewStdoutOrPager resolves the Writer's sink: a spawned `less -RX`
// (with --header=1 when a header will be emitted) if page is
// requested, else stdout directly.
func NewStdoutOrPager(page bool, willEmitHeader bool, cfg Config) (*Writer, error) {
	if !page {
		w := New(os.Stdout, cfg)
		w.closeSink = func() error { return nil }
		return w, nil
	}
	pg, err := startPager(willEmitHeader)
	if err != nil {
		return nil, err
	}
	w := New(pg.stdin, cfg)
	w.closeSink = pg.close
	return w, nil
}

// OnHeader records the Header message. Streaming mode emits it
// immediately (unless --drop-header); gathering mode buffers it for
// width computation at Eof.
func (w *Writer) OnHeader(row record.Row) error {
	if w.err != nil {
		return w.err
	}
	w.header = row
	w.haveHeader = true
	if w.cfg.DropHeader {
		return nil
	}
	if w.gathering {
		return nil
	}
	return w.emitStreamingRow(row, true)
}

// OnRow formats and emits (or buffers) a Row message.
func (w *Writer) OnRow(row record.Row) error {
	if w.err != nil {
		return w.err
	}
	if w.gathering {
		w.buffered = append(w.buffered, bufferedItem{row: row})
		return nil
	}
	return w.emitStreamingRow(row, false)
}

// OnSeparator renders (streaming) or buffers (gathering) a dim
// horizontal rule marker.
func (w *Writer) OnSeparator() error {
	if w.err != nil {
		return w.err
	}
	if w.gathering {
		w.buffered = append(w.buffered, bufferedItem{isSeparator: true})
		return nil
	}
	return w.emitSeparatorRule(0)
}

// OnRaw writes pre-formatted bytes, bypassing row formatting.
func (w *Writer) OnRaw(data []byte, appendORS, clearLine bool) error {
	if w.err != nil {
		return w.err
	}
	if clearLine {
		if _, err := w.sink.WriteString("\r\x1b[2K"); err != nil {
			w.err = err
			return err
		}
	}
	if _, err := w.sink.Write(data); err != nil {
		w.err = err
		return err
	}
	if appendORS {
		if _, err := w.sink.Write(w.cfg.ORS); err != nil {
			w.err = err
			return err
		}
	}
	return nil
}

// OnOfs applies a mid-stream OFS change (a subcommand may rewrite the
// separator, e.g. `pretty`).
func (w *Writer) OnOfs(ofs record.OFS) error {
	w.cfg.OFS = ofs
	w.gathering = ofs.IsPretty() && len(w.buffered) == 0 && !w.haveHeader
	return nil
}

// OnEof finalizes the stream: gathering mode computes widths and
// emits everything buffered plus an optional trailer; streaming mode
// simply flushes. A Writer that has received only Separator messages
// (no Header, no Row) emits nothing at all, per spec.md's invariant.
func (w *Writer) OnEof() error {
	if w.err != nil {
		return w.err
	}
	if w.gathering {
		if err := w.flushGathered(); err != nil {
			w.err = err
			return err
		}
	}
	if err := w.sink.Flush(); err != nil {
		w.err = err
		return err
	}
	return nil
}

// Close flushes and releases the sink (waiting on a pager process, if
// any).
func (w *Writer) Close() error {
	if err := w.sink.Flush(); err != nil {
		return err
	}
	if w.closeSink != nil {
		return w.closeSink()
	}
	return nil
}

// Err reports any error encountered during a previous On* call.
func (w *Writer) Err() error { return w.err }
