// Package subcommand implements the per-operation pipeline stages
// (cat, cut, grep, join, ...), each driven by the same
// parse-dispatch-forward loop described in SPEC_FULL.md §4.5.
// Grounded on original_source/src/subcommands/*.rs for per-command
// semantics and on the teacher's config/state split (generalized in
// internal/bus) for the forwarding skeleton.
package subcommand

import (
	"github.com/dsv-cli/dsv/internal/bus"
	"github.com/dsv-cli/dsv/internal/dsverr"
	"github.com/dsv-cli/dsv/internal/record"
)

// Signal reports whether the driver should keep reading rows after a
// callback (Continue), stop early without error (Break), or the
// callback already reported an error through its own return value.
type Signal int

const (
	SigContinue Signal = iota
	SigBreak
)

// Subcommand is one pipeline stage. OnHeader/OnRow may emit zero or
// more rows downstream themselves (via the embedded ProcessingBase)
// before returning; the driver does not forward the row on their
// behalf.
type Subcommand interface {
	OnStart() error
	OnHeader(row record.Row) (Signal, error)
	OnRow(row record.Row) (Signal, error)
	OnEof() error
	OnOfs(ofs record.OFS) error
}

// Base implements the default pass-through behavior: forward
// unchanged to the outbound bus. Concrete subcommands embed Base and
// override only the methods whose semantics differ.
type Base struct {
	*bus.ProcessingBase
}

// NewBase wraps a ProcessingBase so a concrete subcommand can embed
// Base and inherit pass-through forwarding.
func NewBase(pb *bus.ProcessingBase) Base { return Base{pb} }

func (b Base) OnStart() error { return nil }

func (b Base) OnHeader(row record.Row) (Signal, error) {
	if err := b.SendHeader(row); err != nil {
		return SigBreak, err
	}
	return SigContinue, nil
}

func (b Base) OnRow(row record.Row) (Signal, error) {
	if err := b.SendRow(row); err != nil {
		return SigBreak, err
	}
	return SigContinue, nil
}

func (b Base) OnEof() error { return b.SendEof() }

func (b Base) OnOfs(ofs record.OFS) error { return b.SendOfs(ofs) }

// Driver pumps a parser and a Subcommand: reads lines from the parser
// one at a time, classifies the first row as a header per the
// configured HeaderMode, and dispatches OnHeader/OnRow/OnEof.
type Driver struct {
	Parser     *record.Parser
	HeaderMode record.HeaderMode
	Sub        Subcommand
}

// Run drives lines (already split by BytesLineReader) through the
// parser and subcommand until lines is exhausted or the subcommand
// signals SigBreak.
func (d *Driver) Run(lines <-chan []byte) error {
	if err := d.Sub.OnStart(); err != nil {
		return err
	}

	first := true
	for line := range lines {
		row, isTail, err := d.Parser.Parse(line)
		if err != nil {
			return err
		}
		if isTail {
			continue
		}

		if first {
			first = false
			isHeader := record.ClassifyFirstRow(row, d.HeaderMode)
			if isHeader {
				d.Parser.SetHeaderLen(len(row))
				sig, err := d.Sub.OnHeader(row)
				if err != nil {
					if dsverr.IsUpstreamClosed(err) {
						break
					}
					return err
				}
				if sig == SigBreak {
					break
				}
				continue
			}
		}

		sig, err := d.Sub.OnRow(row)
		if err != nil {
			if dsverr.IsUpstreamClosed(err) {
				break
			}
			return err
		}
		if sig == SigBreak {
			break
		}
	}
	if err := d.Sub.OnEof(); err != nil && !dsverr.IsUpstreamClosed(err) {
		return err
	}
	return nil
}
