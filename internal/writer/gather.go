package writer

import (
	"bytes"

	"github.com/dsv-cli/dsv/internal/bus"
	"github.com/dsv-cli/dsv/internal/record"
)

// flushGathered computes column widths across the buffered header and
// rows, then emits everything pretty-aligned with a 2-space gap
// between columns, per original_source/src/writer.rs's gathering
// pass. A Writer that never saw a Header or Row (separator-only
// traffic) emits nothing.
func (w *Writer) flushGathered() error {
	haveHeader := w.haveHeader && !w.cfg.DropHeader
	if !haveHeader && len(w.buffered) == 0 {
		return nil
	}

	numCols := 0
	if haveHeader {
		numCols = len(w.header)
	}
	for _, item := range w.buffered {
		if item.isSeparator {
			continue
		}
		if len(item.row) > numCols {
			numCols = len(item.row)
		}
	}
	if numCols == 0 {
		return nil
	}

	plainHeader := make(record.Row, 0)
	if haveHeader {
		plainHeader = w.plainRow(w.header, true, numCols)
	}
	plainRows := make([]record.Row, len(w.buffered))
	for i, item := range w.buffered {
		if item.isSeparator {
			continue
		}
		plainRows[i] = w.plainRow(item.row, false, numCols)
	}

	widths := make([]int, numCols)
	updateWidths := func(row record.Row) {
		for i, cell := range row {
			if w := displayWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	if haveHeader {
		updateWidths(plainHeader)
	}
	for _, row := range plainRows {
		if row != nil {
			updateWidths(row)
		}
	}

	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < numCols-1 {
			totalWidth += 2
		}
	}

	rowCount := 0
	for _, item := range w.buffered {
		if !item.isSeparator {
			rowCount++
		}
	}

	if haveHeader {
		if err := w.emitPaddedRow(plainHeader, widths, true); err != nil {
			return err
		}
	}
	for i, item := range w.buffered {
		if item.isSeparator {
			if err := w.emitSeparatorRule(totalWidth); err != nil {
				return err
			}
			continue
		}
		if err := w.emitPaddedRow(plainRows[i], widths, false); err != nil {
			return err
		}
	}
	if haveHeader && w.shouldEmitTrailer(rowCount) {
		if err := w.emitPaddedRow(plainHeader, widths, true); err != nil {
			return err
		}
	}
	return nil
}

// plainRow applies numbering and quoting (but not color) to a row,
// padding short rows to numCols with empty cells so width computation
// and padding stay aligned across ragged input.
func (w *Writer) plainRow(row record.Row, isHeader bool, numCols int) record.Row {
	out := make(record.Row, numCols)
	for i := 0; i < numCols; i++ {
		var cell []byte
		if i < len(row) {
			cell = row[i]
		}
		if isHeader && w.cfg.NumberedColumns {
			cell = numberHeaderCell(i+1, cell)
		}
		out[i] = w.formatField(cell)
	}
	return out
}

// emitPaddedRow writes cells padded to widths (all but the last
// column), styling each cell (header or rainbow) after padding is
// computed so ANSI escapes never affect alignment.
func (w *Writer) emitPaddedRow(cells record.Row, widths []int, isHeader bool) error {
	var line bytes.Buffer
	for i, cell := range cells {
		pad := widths[i] - displayWidth(cell)
		styled := cell
		if isHeader {
			styled = w.styleHeaderCell(cell)
		} else {
			styled = w.styleRainbowCell(cell, i)
		}
		line.Write(styled)
		if i < len(cells)-1 {
			for p := 0; p < pad; p++ {
				line.WriteByte(' ')
			}
			line.WriteString("  ")
		}
	}
	if _, err := w.sink.Write(line.Bytes()); err != nil {
		w.err = err
		return err
	}
	if _, err := w.sink.Write(w.cfg.ORS); err != nil {
		w.err = err
		return err
	}
	return nil
}

// shouldEmitTrailer decides whether the header is repeated at the end
// of a pretty table: never for TrailerNever, always for TrailerAlways,
// and for TrailerAuto only when the table is at least as tall as the
// terminal (so a long table scrolled past its header gets a reminder).
func (w *Writer) shouldEmitTrailer(rowCount int) bool {
	switch w.cfg.Trailer {
	case bus.TrailerAlways:
		return true
	case bus.TrailerNever:
		return false
	default:
		return w.cfg.TerminalRows > 0 && rowCount >= w.cfg.TerminalRows
	}
}
