package subcommand

import "github.com/dsv-cli/dsv/internal/record"

// Tac buffers every row and emits them in reverse order at EOF.
type Tac struct {
	Base
	buf []record.Row
}

func NewTac(b Base) *Tac { return &Tac{Base: b} }

func (t *Tac) OnRow(row record.Row) (Signal, error) {
	t.buf = append(t.buf, row.Clone())
	return SigContinue, nil
}

func (t *Tac) OnEof() error {
	for i := len(t.buf) - 1; i >= 0; i-- {
		if err := t.SendRow(t.buf[i]); err != nil {
			return err
		}
	}
	return t.SendEof()
}
