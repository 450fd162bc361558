// Package bus implements the typed producer/consumer contract — the
// MessageBus — that lets any subcommand forward to the next, the
// composition primitive behind pipelining ("cmd1 ! cmd2 ! cmd3").
package bus

import "github.com/dsv-cli/dsv/internal/record"

// Kind tags the variant carried by a Message.
type Kind int

const (
	Header Kind = iota
	Row
	Separator
	Eof
	Raw
	RawStderr
	Ofs
	Stderr
)

func (k Kind) String() string {
	switch k {
	case Header:
		return "Header"
	case Row:
		return "Row"
	case Separator:
		return "Separator"
	case Eof:
		return "Eof"
	case Raw:
		return "Raw"
	case RawStderr:
		return "RawStderr"
	case Ofs:
		return "Ofs"
	case Stderr:
		return "Stderr"
	default:
		return "Unknown"
	}
}

// Message is the tagged union passed between pipeline stages:
// Header(Row) | Row(Row) | Separator | Eof | Raw(bytes, appendORS,
// clearLine) | RawStderr(...) | Ofs(OFS) | Stderr(Row).
type Message struct {
	Kind      Kind
	Row       record.Row
	Raw       []byte
	AppendORS bool
	ClearLine bool
	Ofs       record.OFS
}

func HeaderMsg(row record.Row) Message { return Message{Kind: Header, Row: row} }
func RowMsg(row record.Row) Message    { return Message{Kind: Row, Row: row} }
func SeparatorMsg() Message            { return Message{Kind: Separator} }
func EofMsg() Message                  { return Message{Kind: Eof} }
func StderrMsg(row record.Row) Message { return Message{Kind: Stderr, Row: row} }
func OfsMsg(ofs record.OFS) Message    { return Message{Kind: Ofs, Ofs: ofs} }

func RawMsg(b []byte, appendORS, clearLine bool) Message {
	return Message{Kind: Raw, Raw: b, AppendORS: appendORS, ClearLine: clearLine}
}

func RawStderrMsg(b []byte, appendORS, clearLine bool) Message {
	return Message{Kind: RawStderr, Raw: b, AppendORS: appendORS, ClearLine: clearLine}
}
