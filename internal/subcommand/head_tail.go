package subcommand

import "github.com/dsv-cli/dsv/internal/record"

// Head emits only the first N rows, then breaks the driver loop early
// instead of waiting on EOF. Supplemented from original_source (the
// distilled spec omitted head/tail/tac; see SPEC_FULL.md).
type Head struct {
	Base
	N     int
	count int
}

func NewHead(b Base, n int) *Head { return &Head{Base: b, N: n} }

func (h *Head) OnRow(row record.Row) (Signal, error) {
	if h.count >= h.N {
		return SigBreak, nil
	}
	h.count++
	if err := h.SendRow(row); err != nil {
		return SigBreak, err
	}
	if h.count >= h.N {
		return SigBreak, nil
	}
	return SigContinue, nil
}

// Tail buffers the last N rows (a ring buffer) and emits them at EOF,
// since they cannot be known until input ends.
type Tail struct {
	Base
	N   int
	buf []record.Row
}

func NewTail(b Base, n int) *Tail { return &Tail{Base: b, N: n} }

func (t *Tail) OnRow(row record.Row) (Signal, error) {
	t.buf = append(t.buf, row.Clone())
	if len(t.buf) > t.N {
		t.buf = t.buf[len(t.buf)-t.N:]
	}
	return SigContinue, nil
}

func (t *Tail) OnEof() error {
	for _, row := range t.buf {
		if err := t.SendRow(row); err != nil {
			return err
		}
	}
	return t.SendEof()
}
