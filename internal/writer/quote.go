package writer

import "bytes"

// needsQuote reports whether field must be quoted: it contains the
// separator, the record separator, or a double quote. Pretty mode
// additionally quotes empty fields (an unquoted empty cell would be
// invisible against its padding).
func needsQuote(field []byte, ofs []byte, ors []byte, pretty bool) bool {
	if pretty && len(field) == 0 {
		return true
	}
	if len(ofs) > 0 && bytes.Contains(field, ofs) {
		return true
	}
	if len(ors) > 0 && bytes.Contains(field, ors) {
		return true
	}
	return bytes.IndexByte(field, '"') >= 0
}

// quoteField doubles embedded quotes and wraps the field in quotes.
func quoteField(field []byte) []byte {
	out := make([]byte, 0, len(field)+2)
	out = append(out, '"')
	for _, b := range field {
		if b == '"' {
			out = append(out, '"', '"')
			continue
		}
		out = append(out, b)
	}
	out = append(out, '"')
	return out
}

// formatField applies the writer's quoting policy to a single field.
func (w *Writer) formatField(field []byte) []byte {
	sep := w.cfg.OFS.Literal
	if w.cfg.OFS.Pretty {
		sep = []byte("  ")
	}
	if w.cfg.QuoteOutput && needsQuote(field, sep, w.cfg.ORS, w.cfg.OFS.Pretty) {
		return quoteField(field)
	}
	return field
}
