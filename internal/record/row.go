// Package record implements the ingest side of the pipeline: chunked
// line extraction (BytesLineReader), delimiter autodetection
// (DelimiterInference), and quoted-cell record parsing (RecordParser).
//
// Rows are never assumed to be valid UTF-8: every cell is an opaque
// byte string, sliced from (or copied out of) the line buffer.
package record

// Row is an ordered sequence of opaque byte-string fields. Rows are
// never assumed valid UTF-8.
type Row [][]byte

// Header is a Row with semantic meaning: the first row classified as
// a header for a stream segment.
type Header Row

// Clone returns a deep copy of the row, safe to retain past the next
// read (the line reader reuses its buffer between calls).
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for i, f := range r {
		cp := make([]byte, len(f))
		copy(cp, f)
		out[i] = cp
	}
	return out
}

// Strings renders the row as a []string, for subcommands and tests
// that prefer string comparisons.
func (r Row) Strings() []string {
	out := make([]string, len(r))
	for i, f := range r {
		out[i] = string(f)
	}
	return out
}

// RowFromStrings builds a Row from plain strings, for tests and for
// subcommands that synthesize rows (summary, set-header, reshape).
func RowFromStrings(fields ...string) Row {
	out := make(Row, len(fields))
	for i, f := range fields {
		out[i] = []byte(f)
	}
	return out
}
