package subcommand

import (
	"github.com/dsv-cli/dsv/internal/record"
	"github.com/dsv-cli/dsv/internal/selector"
)

// Cut slices every row through a ColumnSelector, grounded on
// original_source/src/subcommands/cut.rs and internal/selector
// (itself grounded on column_slicer.rs).
type Cut struct {
	Base
	Sel        *selector.Selector
	Complement bool
	AllowEmpty bool
	Filler     selector.DefaultFiller
}

func NewCut(b Base, sel *selector.Selector, complement, allowEmpty bool, filler selector.DefaultFiller) *Cut {
	return &Cut{Base: b, Sel: sel, Complement: complement, AllowEmpty: allowEmpty, Filler: filler}
}

func (c *Cut) OnHeader(row record.Row) (Signal, error) {
	c.Sel.SetHeader(row)
	sliced := c.Sel.Slice(row, c.Complement, c.AllowEmpty, c.Filler)
	if err := c.SendHeader(sliced); err != nil {
		return SigBreak, err
	}
	return SigContinue, nil
}

func (c *Cut) OnRow(row record.Row) (Signal, error) {
	sliced := c.Sel.Slice(row, c.Complement, c.AllowEmpty, c.Filler)
	if err := c.SendRow(sliced); err != nil {
		return SigBreak, err
	}
	return SigContinue, nil
}
