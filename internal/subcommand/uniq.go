package subcommand

import (
	"bytes"
	"strconv"

	"github.com/dsv-cli/dsv/internal/record"
)

// Uniq drops consecutive duplicate rows (like its namesake shell
// tool), optionally restricted to a subset of field indices and
// optionally prefixing each surviving row with its repeat count.
type Uniq struct {
	Base
	FieldIndices []int
	WithCount    bool

	havePrev bool
	prevKey  [][]byte
	prevRow  record.Row
	runCount int
}

func NewUniq(b Base, fields []int, withCount bool) *Uniq {
	return &Uniq{Base: b, FieldIndices: fields, WithCount: withCount}
}

func (u *Uniq) key(row record.Row) [][]byte {
	if len(u.FieldIndices) == 0 {
		return row
	}
	key := make([][]byte, 0, len(u.FieldIndices))
	for _, i := range u.FieldIndices {
		if i >= 0 && i < len(row) {
			key = append(key, row[i])
		}
	}
	return key
}

func keysEqual(a, b [][]byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !bytes.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func (u *Uniq) OnRow(row record.Row) (Signal, error) {
	k := u.key(row)
	if u.havePrev && keysEqual(k, u.prevKey) {
		u.runCount++
		return SigContinue, nil
	}
	if err := u.flush(); err != nil {
		return SigBreak, err
	}
	u.havePrev = true
	u.prevKey = k
	u.prevRow = row.Clone()
	u.runCount = 1
	return SigContinue, nil
}

func (u *Uniq) flush() error {
	if !u.havePrev {
		return nil
	}
	row := u.prevRow
	if u.WithCount {
		row = append(record.Row{[]byte(strconv.Itoa(u.runCount))}, row...)
	}
	return u.SendRow(row)
}

func (u *Uniq) OnEof() error {
	if err := u.flush(); err != nil {
		return err
	}
	return u.SendEof()
}
