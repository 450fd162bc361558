package subcommand

import (
	"io"
	"os"

	"github.com/dsv-cli/dsv/internal/record"
)

// childReader pulls rows from one side file for Paste, reading
// synchronously on the caller's goroutine.
type childReader struct {
	parser *record.Parser
	lines  *record.LineReader
	done   bool
}

func newChildReader(path string, ifs record.IFS) (*childReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	lr := record.NewLineReader(f, []byte("\n"))
	p := &record.Parser{IFS: ifs}
	return &childReader{parser: p, lines: lr}, nil
}

func (c *childReader) next() (record.Row, error) {
	if c.done {
		return nil, nil
	}
	for {
		line, _, err := c.lines.ReadLine()
		if err == io.EOF {
			c.done = true
			return nil, nil
		}
		if err != nil {
			c.done = true
			return nil, err
		}
		row, incomplete, perr := c.parser.Parse(line)
		if perr != nil {
			c.done = true
			return nil, perr
		}
		if incomplete {
			continue
		}
		return row, nil
	}
}

// Paste spawns one childReader per extra file and, on each row from
// the main input, appends one row from each child — grounded on
// original_source/src/subcommands/paste.rs.
type Paste struct {
	Base
	children []*childReader
}

func NewPaste(b Base, paths []string, ifs record.IFS) (*Paste, error) {
	p := &Paste{Base: b}
	for _, path := range paths {
		c, err := newChildReader(path, ifs)
		if err != nil {
			return nil, err
		}
		p.children = append(p.children, c)
	}
	return p, nil
}

func (p *Paste) appendChildren(row record.Row) (record.Row, error) {
	out := row
	for _, c := range p.children {
		extra, err := c.next()
		if err != nil {
			return nil, err
		}
		out = append(out, extra...)
	}
	return out, nil
}

func (p *Paste) OnHeader(row record.Row) (Signal, error) {
	merged, err := p.appendChildren(row)
	if err != nil {
		return SigBreak, err
	}
	if err := p.SendHeader(merged); err != nil {
		return SigBreak, err
	}
	return SigContinue, nil
}

func (p *Paste) OnRow(row record.Row) (Signal, error) {
	merged, err := p.appendChildren(row)
	if err != nil {
		return SigBreak, err
	}
	if err := p.SendRow(merged); err != nil {
		return SigBreak, err
	}
	return SigContinue, nil
}
