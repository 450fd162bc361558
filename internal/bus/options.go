package bus

import (
	"os"

	"github.com/dsv-cli/dsv/internal/record"
	"golang.org/x/term"
)

// TrailerMode controls whether the gathering writer repeats the
// header at the bottom of tall output.
type TrailerMode int

const (
	TrailerAuto TrailerMode = iota
	TrailerNever
	TrailerAlways
)

// ColourMode controls ANSI coloring policy.
type ColourMode int

const (
	ColourAuto ColourMode = iota
	ColourAlways
	ColourNever
)

// Options holds the global CLI surface (spec.md §6), parsed once and
// post-processed (tty detection, default fills) before the pipeline
// starts. Every stage's ProcessingBase holds the same *Options, so
// mutation after PostProcess is forbidden.
type Options struct {
	HeaderMode record.HeaderMode
	DropHeader bool
	Trailer    TrailerMode

	NumberedColumns      bool
	numberedColumnsAuto  bool // true if --numbered-columns was left at its tty-gated default
	ExplicitIFS          string
	PlainIFS             bool
	OFS                  string
	IRS                  string
	ORS                  string
	CSV, TSV, SSV        bool
	CombineTrailing      bool
	Pretty               bool
	Page                 bool
	Colour               ColourMode
	HeaderColour         string
	HeaderBgColour       string
	RainbowColumns       bool
	NoQuoting            bool
	NoQuoteOutput        bool
	Jobs                 string
	ReplaceStr           string
	LogLevel             string

	// resolved after PostProcess
	stdoutIsTTY bool
	postDone    bool
}

// Clone returns an independent copy, safe to hand to a subcommand.
func (o Options) Clone() Options { return o }

// PostProcess fills tty-dependent defaults exactly once. Calling it
// more than once is a programming error (options must not mutate
// after the pipeline starts running).
func (o *Options) PostProcess() {
	if o.postDone {
		return
	}
	o.postDone = true
	o.stdoutIsTTY = term.IsTerminal(int(os.Stdout.Fd()))

	if o.numberedColumnsDefaultRequested() {
		o.NumberedColumns = o.stdoutIsTTY
	}
	if os.Getenv("NO_COLOR") != "" {
		o.Colour = ColourNever
	}
	if o.IRS == "" {
		o.IRS = "\n"
	}
	if o.ORS == "" {
		o.ORS = "\n"
	}
}

// RequestNumberedColumnsDefault marks --numbered-columns as left at
// its tty-gated default (on for a tty, off otherwise) rather than
// explicitly set by the user.
func (o *Options) RequestNumberedColumnsDefault() { o.numberedColumnsAuto = true }

func (o *Options) numberedColumnsDefaultRequested() bool { return o.numberedColumnsAuto }

// StdoutIsTTY reports the tty detection result from PostProcess.
func (o Options) StdoutIsTTY() bool { return o.stdoutIsTTY }

// ColourEnabled resolves the final coloring decision for a given
// stream (writer passes its own sink tty-ness; NO_COLOR always wins).
func (o Options) ColourEnabled(sinkIsTTY bool) bool {
	switch o.Colour {
	case ColourAlways:
		return true
	case ColourNever:
		return false
	default:
		return sinkIsTTY
	}
}

// ResolvedOFS turns the parsed OFS/--pretty flags into a record.OFS.
func (o Options) ResolvedOFS() record.OFS {
	if o.Pretty {
		return record.OFSPretty()
	}
	if o.OFS != "" {
		return record.OFSLiteral([]byte(o.OFS))
	}
	return record.OFSLiteral([]byte{'\t'})
}
