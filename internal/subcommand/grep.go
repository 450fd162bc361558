package subcommand

import (
	"regexp"
	"strconv"

	"github.com/dsv-cli/dsv/internal/record"
)

// Grep filters rows against a combined pattern, with before/after
// context kept in ring buffers, optional invert/count/field-restrict
// modes, grounded on original_source/src/subcommands/grep.rs.
type Grep struct {
	Base

	Pattern       *regexp.Regexp
	Invert        bool
	CountOnly     bool
	FieldIndices  []int // empty means search every field
	Before, After int

	ring      []record.Row
	afterLeft int
	count     int
}

func NewGrep(b Base, pattern *regexp.Regexp, invert, countOnly bool, fields []int, before, after int) *Grep {
	return &Grep{Base: b, Pattern: pattern, Invert: invert, CountOnly: countOnly, FieldIndices: fields, Before: before, After: after}
}

func (g *Grep) rowMatches(row record.Row) bool {
	fields := row
	if len(g.FieldIndices) > 0 {
		fields = make(record.Row, 0, len(g.FieldIndices))
		for _, i := range g.FieldIndices {
			if i >= 0 && i < len(row) {
				fields = append(fields, row[i])
			}
		}
	}
	for _, f := range fields {
		if g.Pattern.Match(f) {
			return true
		}
	}
	return false
}

func (g *Grep) OnRow(row record.Row) (Signal, error) {
	matched := g.rowMatches(row)
	if g.Invert {
		matched = !matched
	}

	if g.CountOnly {
		if matched {
			g.count++
		}
		return SigContinue, nil
	}

	if matched {
		g.count++
		for _, ctx := range g.ring {
			if err := g.SendRow(ctx); err != nil {
				return SigBreak, err
			}
		}
		g.ring = g.ring[:0]
		if err := g.SendRow(row); err != nil {
			return SigBreak, err
		}
		g.afterLeft = g.After
		return SigContinue, nil
	}

	if g.afterLeft > 0 {
		g.afterLeft--
		if err := g.SendRow(row); err != nil {
			return SigBreak, err
		}
		return SigContinue, nil
	}

	if g.Before > 0 {
		g.ring = append(g.ring, row.Clone())
		if len(g.ring) > g.Before {
			g.ring = g.ring[len(g.ring)-g.Before:]
		}
	}
	return SigContinue, nil
}

func (g *Grep) OnEof() error {
	if g.CountOnly {
		countRow := record.RowFromStrings(strconv.Itoa(g.count))
		if err := g.SendRow(countRow); err != nil {
			return err
		}
	}
	return g.SendEof()
}
