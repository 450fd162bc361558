package bus

import "github.com/dsv-cli/dsv/internal/record"

// ProcessingBase is the state shared by every subcommand: the
// (immutable, post-processed) Options, the current IFS/IRS for this
// stream segment, the header length once classified, and the outbound
// Bus every Header/Row/Separator/Raw/Eof/Stderr/Ofs message flows
// through.
//
// Only Opts and Out cross thread boundaries as shared references;
// IFS/IRS/HeaderLen are per-stage mutable state, cloned via Clone so
// no subcommand can observe another's parsing state.
type ProcessingBase struct {
	Opts      *Options
	IFS       record.IFS
	IRS       []byte
	HeaderLen int
	Out       *Bus
}

// NewProcessingBase constructs the root ProcessingBase for the first
// stage of a pipeline, reading directly off stdin.
func NewProcessingBase(opts *Options, out *Bus) *ProcessingBase {
	return &ProcessingBase{Opts: opts, IRS: []byte(opts.IRS), Out: out}
}

// Clone copies per-stage mutable state for the next pipeline stage,
// pointing it at a new outbound Bus. Opts is shared (read-only after
// PostProcess); IRS is copied defensively since it's a byte slice.
func (b *ProcessingBase) Clone(out *Bus) *ProcessingBase {
	irs := make([]byte, len(b.IRS))
	copy(irs, b.IRS)
	return &ProcessingBase{Opts: b.Opts, IFS: b.IFS, IRS: irs, HeaderLen: b.HeaderLen, Out: out}
}

// SetHeaderLen records the header's field count once classified, used
// by the parser's combine-trailing-columns policy.
func (b *ProcessingBase) SetHeaderLen(n int) { b.HeaderLen = n }

// SendHeader forwards a Header message downstream. A bus segment may
// carry at most one Header; the Driver classifies only the first
// parsed row as a Header, and SendHeader itself does not check for a
// second one.
func (b *ProcessingBase) SendHeader(row record.Row) error { return b.Out.Send(HeaderMsg(row)) }

// SendRow forwards a Row message downstream.
func (b *ProcessingBase) SendRow(row record.Row) error { return b.Out.Send(RowMsg(row)) }

// SendSeparator forwards a Separator marker downstream.
func (b *ProcessingBase) SendSeparator() error { return b.Out.Send(SeparatorMsg()) }

// SendEof forwards the terminal Eof message downstream.
func (b *ProcessingBase) SendEof() error { return b.Out.Send(EofMsg()) }

// SendStderr forwards a Stderr-tagged row downstream (used by
// ParallelExec and pipe-like subcommands to report child diagnostics
// without corrupting the main Row stream).
func (b *ProcessingBase) SendStderr(row record.Row) error { return b.Out.Send(StderrMsg(row)) }

// SendOfs forwards an OFS-change notification downstream.
func (b *ProcessingBase) SendOfs(ofs record.OFS) error { return b.Out.Send(OfsMsg(ofs)) }

// SendRaw forwards pre-formatted bytes downstream, bypassing row
// formatting (used for passthrough subcommands like `page`).
func (b *ProcessingBase) SendRaw(data []byte, appendORS, clearLine bool) error {
	return b.Out.Send(RawMsg(data, appendORS, clearLine))
}
