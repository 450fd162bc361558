package subcommand

import "github.com/dsv-cli/dsv/internal/record"

// Flip transposes the whole table: buffers header and rows, then at
// EOF emits one output row per original column.
type Flip struct {
	Base
	header record.Row
	rows   []record.Row
}

func NewFlip(b Base) *Flip { return &Flip{Base: b} }

func (f *Flip) OnHeader(row record.Row) (Signal, error) {
	f.header = row.Clone()
	return SigContinue, nil
}

func (f *Flip) OnRow(row record.Row) (Signal, error) {
	f.rows = append(f.rows, row.Clone())
	return SigContinue, nil
}

func (f *Flip) OnEof() error {
	all := f.rows
	if f.header != nil {
		all = append([]record.Row{f.header}, f.rows...)
	}
	if len(all) == 0 {
		return f.SendEof()
	}
	numCols := 0
	for _, row := range all {
		if len(row) > numCols {
			numCols = len(row)
		}
	}
	for col := 0; col < numCols; col++ {
		out := make(record.Row, len(all))
		for i, row := range all {
			if col < len(row) {
				out[i] = row[col]
			} else {
				out[i] = []byte{}
			}
		}
		if err := f.SendRow(out); err != nil {
			return err
		}
	}
	return f.SendEof()
}
