package subcommand

import (
	"strconv"

	"github.com/dsv-cli/dsv/internal/record"
)

// Summary computes per-column count/min/max/mean (numeric columns
// only) across the whole table and emits one summary row per column
// at EOF. Supplemented from original_source (summary.rs) — the
// distilled spec's Non-goals exclude a full statistics engine, but a
// single-pass per-column summary fits this pipeline's streaming model
// and was present in the original.
type Summary struct {
	Base
	header record.Row
	cols   []colStats
}

type colStats struct {
	count       int
	numericSeen int
	sum, min, max float64
}

func NewSummary(b Base) *Summary { return &Summary{Base: b} }

func (s *Summary) OnHeader(row record.Row) (Signal, error) {
	s.header = row.Clone()
	s.cols = make([]colStats, len(row))
	return SigContinue, nil
}

func (s *Summary) OnRow(row record.Row) (Signal, error) {
	if len(s.cols) < len(row) {
		grown := make([]colStats, len(row))
		copy(grown, s.cols)
		s.cols = grown
	}
	for i, f := range row {
		s.cols[i].count++
		if v, err := strconv.ParseFloat(string(f), 64); err == nil {
			if s.cols[i].numericSeen == 0 || v < s.cols[i].min {
				s.cols[i].min = v
			}
			if s.cols[i].numericSeen == 0 || v > s.cols[i].max {
				s.cols[i].max = v
			}
			s.cols[i].sum += v
			s.cols[i].numericSeen++
		}
	}
	return SigContinue, nil
}

func (s *Summary) OnEof() error {
	headers := record.RowFromStrings("column", "count", "min", "max", "mean")
	if err := s.SendHeader(headers); err != nil {
		return err
	}
	for i, c := range s.cols {
		name := strconv.Itoa(i + 1)
		if s.header != nil && i < len(s.header) {
			name = string(s.header[i])
		}
		mean := ""
		min := ""
		max := ""
		if c.numericSeen > 0 {
			mean = strconv.FormatFloat(c.sum/float64(c.numericSeen), 'g', -1, 64)
			min = strconv.FormatFloat(c.min, 'g', -1, 64)
			max = strconv.FormatFloat(c.max, 'g', -1, 64)
		}
		row := record.RowFromStrings(name, strconv.Itoa(c.count), min, max, mean)
		if err := s.SendRow(row); err != nil {
			return err
		}
	}
	return s.SendEof()
}
