package subcommand

import (
	"strconv"

	"github.com/dsv-cli/dsv/internal/record"
)

// ReshapeLong melts every non-id column into key/value row pairs:
// one output row per (id columns..., column name, column value).
// Supplemented from original_source (reshape_long.rs).
type ReshapeLong struct {
	Base
	IDIndices []int
	header    record.Row
}

func NewReshapeLong(b Base, idIndices []int) *ReshapeLong {
	return &ReshapeLong{Base: b, IDIndices: idIndices}
}

func (r *ReshapeLong) OnHeader(row record.Row) (Signal, error) {
	r.header = row.Clone()
	out := make(record.Row, 0, len(r.IDIndices)+2)
	for _, i := range r.IDIndices {
		if i >= 0 && i < len(row) {
			out = append(out, row[i])
		}
	}
	out = append(out, []byte("key"), []byte("value"))
	if err := r.SendHeader(out); err != nil {
		return SigBreak, err
	}
	return SigContinue, nil
}

func (r *ReshapeLong) isID(i int) bool {
	for _, id := range r.IDIndices {
		if id == i {
			return true
		}
	}
	return false
}

func (r *ReshapeLong) OnRow(row record.Row) (Signal, error) {
	idVals := make(record.Row, 0, len(r.IDIndices))
	for _, i := range r.IDIndices {
		if i >= 0 && i < len(row) {
			idVals = append(idVals, row[i])
		}
	}
	for i, f := range row {
		if r.isID(i) {
			continue
		}
		key := []byte(indexName(i))
		if r.header != nil && i < len(r.header) {
			key = r.header[i]
		}
		out := append(append(record.Row{}, idVals...), key, f)
		if err := r.SendRow(out); err != nil {
			return SigBreak, err
		}
	}
	return SigContinue, nil
}

func indexName(i int) string {
	return strconv.Itoa(i)
}

// ReshapeWide is the inverse of ReshapeLong: it pivots (id columns...,
// key, value) rows back into one row per distinct id-group with one
// column per distinct key, buffering the whole table since the final
// column set isn't known until EOF.
type ReshapeWide struct {
	Base
	IDIndices  int // number of leading id columns
	keyCol     int
	valueCol   int
	keys       []string
	keySeen    map[string]bool
	groups     []string
	groupOrder []string
	groupIdx   map[string]int
	cells      map[string]map[string]string // group -> key -> value
}

func NewReshapeWide(b Base, idCount, keyCol, valueCol int) *ReshapeWide {
	return &ReshapeWide{
		Base:     b,
		IDIndices: idCount,
		keyCol:   keyCol,
		valueCol: valueCol,
		keySeen:  make(map[string]bool),
		groupIdx: make(map[string]int),
		cells:    make(map[string]map[string]string),
	}
}

// OnHeader swallows the input header: the real header isn't known
// until EOF, once every distinct key has been seen (see OnEof).
func (w *ReshapeWide) OnHeader(row record.Row) (Signal, error) {
	return SigContinue, nil
}

func (w *ReshapeWide) OnRow(row record.Row) (Signal, error) {
	if w.keyCol >= len(row) || w.valueCol >= len(row) || w.IDIndices > len(row) {
		return SigContinue, nil
	}
	group := ""
	for i := 0; i < w.IDIndices; i++ {
		group += string(row[i]) + "\x00"
	}
	key := string(row[w.keyCol])
	value := string(row[w.valueCol])

	if !w.keySeen[key] {
		w.keySeen[key] = true
		w.keys = append(w.keys, key)
	}
	if _, ok := w.groupIdx[group]; !ok {
		w.groupIdx[group] = len(w.groupOrder)
		w.groupOrder = append(w.groupOrder, group)
		w.cells[group] = make(map[string]string)
	}
	w.cells[group][key] = value
	return SigContinue, nil
}

func (w *ReshapeWide) OnEof() error {
	header := append(record.Row{}, record.RowFromStrings(idColumnNames(w.IDIndices)...)...)
	for _, key := range w.keys {
		header = append(header, []byte(key))
	}
	if err := w.SendHeader(header); err != nil {
		return err
	}
	for _, group := range w.groupOrder {
		row := make(record.Row, 0, w.IDIndices+len(w.keys))
		for _, part := range splitGroup(group, w.IDIndices) {
			row = append(row, []byte(part))
		}
		for _, key := range w.keys {
			row = append(row, []byte(w.cells[group][key]))
		}
		if err := w.SendRow(row); err != nil {
			return err
		}
	}
	return w.SendEof()
}

func idColumnNames(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "id" + indexName(i+1)
	}
	return out
}

func splitGroup(group string, n int) []string {
	out := make([]string, 0, n)
	start := 0
	for i := 0; i < len(group) && len(out) < n; i++ {
		if group[i] == 0 {
			out = append(out, group[start:i])
			start = i + 1
		}
	}
	return out
}
