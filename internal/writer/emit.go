package writer

import (
	"bytes"

	"github.com/dsv-cli/dsv/internal/record"
)

// emitStreamingRow renders and writes a single row immediately
// (streaming mode, OFS literal).
func (w *Writer) emitStreamingRow(row record.Row, isHeader bool) error {
	sep := w.cfg.OFS.Literal
	if w.cfg.OFS.Pretty {
		sep = []byte("  ")
	}
	cells := make([][]byte, len(row))
	for i, f := range row {
		cell := f
		if isHeader && w.cfg.NumberedColumns {
			cell = numberHeaderCell(i+1, cell)
		}
		cell = w.formatField(cell)
		if isHeader {
			cell = w.styleHeaderCell(cell)
		} else {
			cell = w.styleRainbowCell(cell, i)
		}
		cells[i] = cell
	}
	line := bytes.Join(cells, sep)
	if _, err := w.sink.Write(line); err != nil {
		w.err = err
		return err
	}
	if _, err := w.sink.Write(w.cfg.ORS); err != nil {
		w.err = err
		return err
	}
	return nil
}

// emitSeparatorRule writes a dim horizontal rule. width is the
// table's total rendered width if known (gathering mode), or 0 to use
// a fixed default (streaming mode, where no width is known yet).
func (w *Writer) emitSeparatorRule(width int) error {
	if width <= 0 {
		width = 40
	}
	rule := make([]byte, width)
	for i := range rule {
		rule[i] = '-'
	}
	styled := w.styleSeparatorRule(string(rule))
	if _, err := w.sink.WriteString(styled); err != nil {
		w.err = err
		return err
	}
	if _, err := w.sink.Write(w.cfg.ORS); err != nil {
		w.err = err
		return err
	}
	return nil
}
