// Package selector compiles user field expressions — indices, ranges,
// names, regexes — into a stable column projection consumed by most
// subcommands (cut, grep --fields, join's key columns, pipe's selected
// fields, and so on).
//
// Grounded on original_source/src/column_slicer.rs, re-expressed in
// Go idiom: a compiled []field slice plus a lazily-populated header
// index map, exactly mirroring the teacher's config-struct-plus-
// lazily-filled-map shape (Reader's public fields vs. internal state).
package selector

import (
	"math"
	"regexp"
	"strconv"

	"github.com/dsv-cli/dsv/internal/dsverr"
	"github.com/dsv-cli/dsv/internal/record"
)

type kind int

const (
	kindRange kind = iota
	kindIndex
	kindRegex
	kindName
)

type field struct {
	kind  kind
	start int // 0-based, inclusive
	end   int // 0-based, exclusive
	index int // 0-based
	regex *regexp.Regexp
	name  string
}

var rangeRE = regexp.MustCompile(`^(\d+)?-(\d+)?$`)

// Selector is an ordered list of field predicates compiled from user
// expressions, plus the header→index map established once the header
// arrives.
type Selector struct {
	fields    []field
	header    record.Row
	headerIdx map[string]int
}

// Compile parses field expressions (indices, ranges, names, or — when
// regex is true — regexes) into a Selector. Until SetHeader is called,
// a Selector built only from Name/Regex predicates yields empty rows.
func Compile(exprs []string, regexMode bool) (*Selector, error) {
	fields := make([]field, 0, len(exprs))
	for _, expr := range exprs {
		f, err := compileOne(expr, regexMode)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return &Selector{fields: fields}, nil
}

func compileOne(expr string, regexMode bool) (field, error) {
	if m := rangeRE.FindStringSubmatch(expr); m != nil && expr != "" {
		start := 0
		if m[1] != "" {
			n, _ := strconv.Atoi(m[1])
			start = n - 1
		}
		end := math.MaxInt32
		if m[2] != "" {
			n, _ := strconv.Atoi(m[2])
			end = n
		}
		if start < 0 {
			start = 0
		}
		return field{kind: kindRange, start: start, end: end}, nil
	}
	if n, err := strconv.Atoi(expr); err == nil {
		if n <= 0 {
			return field{}, dsverr.NewUsageError("field index must be >= 1, got %q", expr)
		}
		return field{kind: kindIndex, index: n - 1}, nil
	}
	if regexMode {
		re, err := regexp.Compile(expr)
		if err != nil {
			return field{}, dsverr.NewUsageError("invalid field regex %q: %v", expr, err)
		}
		return field{kind: kindRegex, regex: re}, nil
	}
	return field{kind: kindName, name: expr}, nil
}

// SetHeader establishes the header→index map used by Name and Regex
// predicates. Must be called once the stream's Header message arrives.
func (s *Selector) SetHeader(header record.Row) {
	s.header = header
	s.headerIdx = make(map[string]int, len(header))
	for i, cell := range header {
		s.headerIdx[string(cell)] = i
	}
}

// HasHeader reports whether SetHeader has been called.
func (s *Selector) HasHeader() bool { return s.headerIdx != nil }

func clampRange(start, end, n int) (int, int) {
	if start > n {
		start = n
	}
	if end > n {
		end = n
	}
	if start < 0 {
		start = 0
	}
	if start > end {
		start = end
	}
	return start, end
}

// matchedIndices returns the row indices selected by f against a row
// of length n, in ascending order. Name/Regex predicates need a
// header; they contribute nothing until one is set.
func (s *Selector) matchedIndices(f field, n int) []int {
	switch f.kind {
	case kindRange:
		start, end := clampRange(f.start, f.end, n)
		out := make([]int, 0, end-start)
		for i := start; i < end; i++ {
			out = append(out, i)
		}
		return out
	case kindIndex:
		if f.index < n {
			return []int{f.index}
		}
		return nil
	case kindRegex:
		if !s.HasHeader() {
			return nil
		}
		var out []int
		for i, cell := range s.header {
			if i < n && f.regex.Match(cell) {
				out = append(out, i)
			}
		}
		return out
	case kindName:
		if !s.HasHeader() {
			return nil
		}
		if i, ok := s.headerIdx[f.name]; ok && i < n {
			return []int{i}
		}
		return nil
	default:
		return nil
	}
}

// missingIndex reports, for Index/Name predicates that fell outside
// the row, the index a default filler should be emitted for.
// allowEmpty callers use this to pad rows that are shorter than
// expected rather than silently dropping the column.
func (s *Selector) missingIndex(f field, n int) (int, bool) {
	switch f.kind {
	case kindIndex:
		if f.index >= n {
			return f.index, true
		}
	case kindName:
		if i, ok := s.headerIdx[f.name]; ok && i >= n {
			return i, true
		}
	}
	return 0, false
}

// DefaultFiller produces the filler bytes for a missing column when
// allowEmpty is set and no caller-provided default function applies.
type DefaultFiller func(index int) []byte

// Slice projects row through the compiled predicates.
//
// complement=false (include mode): emits columns in the order the
// predicates were specified, possibly repeating; an Index/Name
// predicate that misses the row is omitted unless allowEmpty is set,
// in which case filler (or "" if filler is nil) is emitted instead.
//
// complement=true (exclude mode): emits every row column whose
// position is not selected by any predicate, preserving original
// order. allowEmpty/filler are not used in this mode.
func (s *Selector) Slice(row record.Row, complement bool, allowEmpty bool, filler DefaultFiller) record.Row {
	if len(s.fields) == 0 {
		return record.Row{}
	}

	n := len(row)

	if complement {
		excluded := make([]bool, n)
		for _, f := range s.fields {
			for _, idx := range s.matchedIndices(f, n) {
				excluded[idx] = true
			}
		}
		out := make(record.Row, 0, n)
		for i, cell := range row {
			if !excluded[i] {
				out = append(out, cell)
			}
		}
		return out
	}

	var out record.Row
	for _, f := range s.fields {
		matched := s.matchedIndices(f, n)
		if len(matched) == 0 && allowEmpty {
			if idx, missing := s.missingIndex(f, n); missing {
				out = append(out, fillerOrEmpty(filler, idx))
				continue
			}
		}
		for _, idx := range matched {
			out = append(out, row[idx])
		}
	}
	return out
}

func fillerOrEmpty(filler DefaultFiller, idx int) []byte {
	if filler == nil {
		return []byte{}
	}
	return filler(idx)
}
