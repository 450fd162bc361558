package subcommand

import "github.com/dsv-cli/dsv/internal/record"

// SetHeader overrides the header row with a caller-supplied one,
// forcing downstream stages to see Names instead of whatever (or
// nothing) arrived on the input. If the input had no header, Names
// is injected before the first row.
type SetHeader struct {
	Base
	Names   record.Row
	injected bool
}

func NewSetHeader(b Base, names record.Row) *SetHeader {
	return &SetHeader{Base: b, Names: names}
}

func (s *SetHeader) OnHeader(row record.Row) (Signal, error) {
	s.injected = true
	if err := s.SendHeader(s.Names); err != nil {
		return SigBreak, err
	}
	return SigContinue, nil
}

func (s *SetHeader) OnRow(row record.Row) (Signal, error) {
	if !s.injected {
		s.injected = true
		if err := s.SendHeader(s.Names); err != nil {
			return SigBreak, err
		}
	}
	if err := s.SendRow(row); err != nil {
		return SigBreak, err
	}
	return SigContinue, nil
}
