package subcommand

// Cat forwards every row unchanged; its only purpose is exercising
// the shared driver/bus plumbing with no transformation, grounded on
// original_source/src/subcommands/cat.rs.
type Cat struct {
	Base
}

func NewCat(b Base) *Cat { return &Cat{Base: b} }
