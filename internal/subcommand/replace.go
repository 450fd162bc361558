package subcommand

import (
	"regexp"

	"github.com/dsv-cli/dsv/internal/record"
)

// Replace applies a regex substitution to every field (or a subset of
// field indices).
type Replace struct {
	Base
	Pattern      *regexp.Regexp
	Replacement  []byte
	FieldIndices []int // empty means every field
}

func NewReplace(b Base, pattern *regexp.Regexp, replacement []byte, fields []int) *Replace {
	return &Replace{Base: b, Pattern: pattern, Replacement: replacement, FieldIndices: fields}
}

func (r *Replace) transform(row record.Row) record.Row {
	if len(r.FieldIndices) == 0 {
		out := make(record.Row, len(row))
		for i, f := range row {
			out[i] = r.Pattern.ReplaceAll(f, r.Replacement)
		}
		return out
	}
	out := row.Clone()
	for _, i := range r.FieldIndices {
		if i >= 0 && i < len(out) {
			out[i] = r.Pattern.ReplaceAll(out[i], r.Replacement)
		}
	}
	return out
}

func (r *Replace) OnRow(row record.Row) (Signal, error) {
	if err := r.SendRow(r.transform(row)); err != nil {
		return SigBreak, err
	}
	return SigContinue, nil
}
