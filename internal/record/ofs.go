package record

// OFS (output field separator) is either literal bytes or the
// "pretty" sentinel requesting width-aligned output.
type OFS struct {
	Pretty  bool
	Literal []byte
}

// OFSLiteral builds a literal-bytes OFS.
func OFSLiteral(b []byte) OFS { return OFS{Literal: b} }

// OFSPretty builds the pretty-alignment sentinel OFS.
func OFSPretty() OFS { return OFS{Pretty: true} }

// IsPretty reports whether ofs requests gathering-mode pretty output.
func (o OFS) IsPretty() bool { return o.Pretty }
