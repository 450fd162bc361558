package record

import (
	"bytes"
	"io"
)

const defaultChunkSize = 64 * 1024

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// LineReader is a buffered, delimiter-agnostic line extractor. It reads
// the input in growable chunks and yields (line, isTail) pairs against
// an arbitrary IRS byte sequence.
//
// A single-byte IRS uses a fast byte scan (bytes.IndexByte); a
// multi-byte IRS uses a substring search over the accumulated buffer.
// A trailing '\r' is stripped whenever IRS is "\n". On EOF with
// non-empty residue, the residue is emitted as a final, isTail line. A
// leading UTF-8 BOM on the very first line is removed.
type LineReader struct {
	src       io.Reader
	irs       []byte
	buf       []byte
	start     int
	end       int
	sawEOF    bool
	firstLine bool
}

// NewLineReader wraps r, splitting on irs (defaulting to "\n" if empty).
func NewLineReader(r io.Reader, irs []byte) *LineReader {
	if len(irs) == 0 {
		irs = []byte{'\n'}
	}
	return &LineReader{
		src:       r,
		irs:       irs,
		buf:       make([]byte, 0, defaultChunkSize),
		firstLine: true,
	}
}

// ReadLine returns the next line and whether it is the final, non-IRS-
// terminated residue at EOF. It returns io.EOF once no further line
// remains.
func (lr *LineReader) ReadLine() (line []byte, isTail bool, err error) {
	for {
		if idx, width := lr.findDelimiter(); idx >= 0 {
			line = lr.buf[lr.start:idx]
			lr.start = idx + width
			line = lr.stripCR(line)
			line = lr.stripBOM(line)
			return line, false, nil
		}

		if lr.sawEOF {
			if lr.start < lr.end {
				line = lr.buf[lr.start:lr.end]
				lr.start = lr.end
				line = lr.stripCR(line)
				line = lr.stripBOM(line)
				return line, true, nil
			}
			return nil, false, io.EOF
		}

		if err := lr.fill(); err != nil && err != io.EOF {
			return nil, false, err
		}
	}
}

// findDelimiter searches the unconsumed buffer for the IRS, returning
// its index and byte width, or (-1, 0) if not present yet.
func (lr *LineReader) findDelimiter() (int, int) {
	window := lr.buf[lr.start:lr.end]
	if len(lr.irs) == 1 {
		if i := bytes.IndexByte(window, lr.irs[0]); i >= 0 {
			return lr.start + i, 1
		}
		return -1, 0
	}
	if i := bytes.Index(window, lr.irs); i >= 0 {
		return lr.start + i, len(lr.irs)
	}
	return -1, 0
}

func (lr *LineReader) stripCR(line []byte) []byte {
	if len(lr.irs) == 1 && lr.irs[0] == '\n' && len(line) > 0 && line[len(line)-1] == '\r' {
		return line[:len(line)-1]
	}
	return line
}

func (lr *LineReader) stripBOM(line []byte) []byte {
	if !lr.firstLine {
		return line
	}
	lr.firstLine = false
	if bytes.HasPrefix(line, utf8BOM) {
		return line[len(utf8BOM):]
	}
	return line
}

// fill reads more data into the buffer, compacting consumed bytes and
// growing capacity on demand.
func (lr *LineReader) fill() error {
	if lr.start > 0 {
		n := copy(lr.buf, lr.buf[lr.start:lr.end])
		lr.end = n
		lr.start = 0
	}
	if lr.end == cap(lr.buf) {
		grown := make([]byte, lr.end, max(cap(lr.buf)*2, defaultChunkSize))
		copy(grown, lr.buf[:lr.end])
		lr.buf = grown
	}
	lr.buf = lr.buf[:cap(lr.buf)]
	n, err := lr.src.Read(lr.buf[lr.end:])
	lr.end += n
	lr.buf = lr.buf[:lr.end]
	if err != nil {
		if err == io.EOF {
			lr.sawEOF = true
			return nil
		}
		return err
	}
	if n == 0 {
		lr.sawEOF = true
	}
	return nil
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
