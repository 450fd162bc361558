package subcommand

import (
	"strconv"

	"github.com/dsv-cli/dsv/internal/expr"
	"github.com/dsv-cli/dsv/internal/record"
)

// Eval appends one computed column per row using a compiled
// expression, via the internal/expr Engine capability (replacing the
// original's embedded scripting runtime — see Design Notes/DESIGN.md).
type Eval struct {
	Base
	Compiled  expr.Compiled
	headerIdx map[string]int
}

func NewEval(b Base, compiled expr.Compiled) *Eval {
	return &Eval{Base: b, Compiled: compiled}
}

func (e *Eval) OnHeader(row record.Row) (Signal, error) {
	e.headerIdx = headerIndex(row)
	out := append(row.Clone(), []byte("eval"))
	if err := e.SendHeader(out); err != nil {
		return SigBreak, err
	}
	return SigContinue, nil
}

func (e *Eval) OnRow(row record.Row) (Signal, error) {
	val, err := e.Compiled.EvalRow(expr.Row{Fields: row.Strings(), HeaderIdx: e.headerIdx})
	if err != nil {
		return SigBreak, err
	}
	out := append(row.Clone(), []byte(val))
	if err := e.SendRow(out); err != nil {
		return SigBreak, err
	}
	return SigContinue, nil
}

func headerIndex(row record.Row) map[string]int {
	idx := make(map[string]int, len(row))
	for i, f := range row {
		idx[string(f)] = i
	}
	return idx
}

// EvalFilter drops rows whose expression evaluates to a falsy string
// (expr.Truthy).
type EvalFilter struct {
	Base
	Compiled  expr.Compiled
	headerIdx map[string]int
}

func NewEvalFilter(b Base, compiled expr.Compiled) *EvalFilter {
	return &EvalFilter{Base: b, Compiled: compiled}
}

func (e *EvalFilter) OnHeader(row record.Row) (Signal, error) {
	e.headerIdx = headerIndex(row)
	if err := e.SendHeader(row); err != nil {
		return SigBreak, err
	}
	return SigContinue, nil
}

func (e *EvalFilter) OnRow(row record.Row) (Signal, error) {
	val, err := e.Compiled.EvalRow(expr.Row{Fields: row.Strings(), HeaderIdx: e.headerIdx})
	if err != nil {
		return SigBreak, err
	}
	if !expr.Truthy(val) {
		return SigContinue, nil
	}
	if err := e.SendRow(row); err != nil {
		return SigBreak, err
	}
	return SigContinue, nil
}

// EvalGroupby groups rows by a key expression and emits one row per
// group: the key followed by the group's row count. The expression
// only computes the key; no other per-group aggregate is emitted.
type EvalGroupby struct {
	Base
	Compiled   expr.Compiled
	headerIdx  map[string]int
	order      []string
	counts     map[string]int
}

func NewEvalGroupby(b Base, compiled expr.Compiled) *EvalGroupby {
	return &EvalGroupby{Base: b, Compiled: compiled, counts: make(map[string]int)}
}

func (e *EvalGroupby) OnHeader(row record.Row) (Signal, error) {
	e.headerIdx = headerIndex(row)
	return SigContinue, nil
}

func (e *EvalGroupby) OnRow(row record.Row) (Signal, error) {
	key, err := e.Compiled.EvalRow(expr.Row{Fields: row.Strings(), HeaderIdx: e.headerIdx})
	if err != nil {
		return SigBreak, err
	}
	if _, ok := e.counts[key]; !ok {
		e.order = append(e.order, key)
	}
	e.counts[key]++
	return SigContinue, nil
}

func (e *EvalGroupby) OnEof() error {
	if err := e.SendHeader(record.RowFromStrings("key", "count")); err != nil {
		return err
	}
	for _, key := range e.order {
		row := record.RowFromStrings(key, strconv.Itoa(e.counts[key]))
		if err := e.SendRow(row); err != nil {
			return err
		}
	}
	return e.SendEof()
}
