package record

import (
	"bytes"
	"regexp"
)

var (
	whitespaceRunRE = regexp.MustCompile(`[ \t]+`)
	prettyRunRE     = regexp.MustCompile(`  +`)
)

// Parser converts raw lines into Rows, honoring optional double-quoted
// cells (escape = doubled quote) and the stream's IFS. It supports
// multi-line quoted cells: when a quote is left open at end-of-line,
// Parse returns (partialRow, incomplete=true) and the caller re-invokes
// Parse with the next raw line, which extends the last column.
type Parser struct {
	IFS                    IFS
	QuotingEnabled         bool
	CombineTrailingColumns bool
	HeaderLen              int // 0 == unknown; set via SetHeaderLen once classified

	continuing     bool
	pendingFields  Row
	pendingPartial []byte
}

// SetHeaderLen records the header's field count, enabling
// combine-trailing-columns once it is known.
func (p *Parser) SetHeaderLen(n int) { p.HeaderLen = n }

// Parse converts one raw line into a Row (or a continuation thereof).
func (p *Parser) Parse(line []byte) (Row, bool, error) {
	if p.continuing {
		return p.continueQuoted(line)
	}
	if len(line) == 0 {
		return Row{[]byte{}}, false, nil
	}
	return p.parseFrom(nil, line, 0)
}

func (p *Parser) maxFields() int {
	if p.CombineTrailingColumns && p.HeaderLen > 0 {
		return p.HeaderLen
	}
	return -1
}

func (p *Parser) parseFrom(fields Row, line []byte, pos int) (Row, bool, error) {
	n := len(line)
	limit := p.maxFields()

	for {
		if limit > 0 && len(fields) == limit-1 {
			fields = append(fields, cloneBytes(line[pos:]))
			break
		}

		if p.QuotingEnabled && pos < n && line[pos] == '"' {
			content, endPos, closed := scanQuoted(line, pos+1)
			if !closed {
				p.continuing = true
				p.pendingFields = fields
				p.pendingPartial = content
				out := append(cloneRow(fields), cloneBytes(content))
				return out, true, nil
			}
			fields = append(fields, content)
			pos = endPos
			if pos >= n {
				break
			}
			if sep := p.ifsLenAt(line, pos); sep > 0 {
				pos += sep
				if pos == n {
					fields = append(fields, []byte{})
					break
				}
			}
			continue
		}

		rest := line[pos:]
		idx, sepLen := p.findSep(rest)
		if idx < 0 {
			fields = append(fields, cloneBytes(rest))
			break
		}
		fields = append(fields, cloneBytes(rest[:idx]))
		pos += idx + sepLen
		if pos == n {
			fields = append(fields, []byte{})
			break
		}
	}
	return fields, false, nil
}

func (p *Parser) continueQuoted(line []byte) (Row, bool, error) {
	content, endPos, closed := scanQuotedContinue(p.pendingPartial, line)
	if !closed {
		p.pendingPartial = content
		out := append(cloneRow(p.pendingFields), cloneBytes(content))
		return out, true, nil
	}
	fields := append(cloneRow(p.pendingFields), content)
	p.continuing = false
	p.pendingFields = nil
	p.pendingPartial = nil

	pos := endPos
	if pos < len(line) {
		if sep := p.ifsLenAt(line, pos); sep > 0 {
			pos += sep
		}
	}
	return p.parseFrom(fields, line, pos)
}

// scanQuoted scans a quoted cell starting right after its opening
// quote, unescaping doubled quotes. It returns the closing-quote's
// position just past it and whether the quote was actually closed
// within this line.
func scanQuoted(line []byte, start int) ([]byte, int, bool) {
	var buf []byte
	i := start
	for i < len(line) {
		if line[i] == '"' {
			if i+1 < len(line) && line[i+1] == '"' {
				buf = append(buf, '"')
				i += 2
				continue
			}
			return buf, i + 1, true
		}
		buf = append(buf, line[i])
		i++
	}
	return buf, i, false
}

// scanQuotedContinue resumes a quoted cell left open at the end of a
// previous line: the swallowed record separator becomes an embedded
// newline in the cell's content.
func scanQuotedContinue(accum []byte, line []byte) ([]byte, int, bool) {
	buf := append(append([]byte{}, accum...), '\n')
	i := 0
	for i < len(line) {
		if line[i] == '"' {
			if i+1 < len(line) && line[i+1] == '"' {
				buf = append(buf, '"')
				i += 2
				continue
			}
			return buf, i + 1, true
		}
		buf = append(buf, line[i])
		i++
	}
	return buf, i, false
}

// findSep searches rest for the next IFS match, returning its offset
// and byte width, or (-1, 0) if absent.
func (p *Parser) findSep(rest []byte) (int, int) {
	switch p.IFS.Kind {
	case KindLiteral:
		idx := bytes.Index(rest, p.IFS.Literal)
		if idx < 0 {
			return -1, 0
		}
		return idx, len(p.IFS.Literal)
	case KindRegex:
		loc := p.IFS.Regex.FindIndex(rest)
		if loc == nil {
			return -1, 0
		}
		return loc[0], loc[1] - loc[0]
	case KindWhitespace:
		loc := whitespaceRunRE.FindIndex(rest)
		if loc == nil {
			return -1, 0
		}
		return loc[0], loc[1] - loc[0]
	case KindPretty:
		loc := prettyRunRE.FindIndex(rest)
		if loc == nil {
			return -1, 0
		}
		return loc[0], loc[1] - loc[0]
	default:
		return -1, 0
	}
}

// ifsLenAt reports the width of an IFS match anchored exactly at pos,
// or 0 if none starts there.
func (p *Parser) ifsLenAt(line []byte, pos int) int {
	idx, width := p.findSep(line[pos:])
	if idx != 0 {
		return 0
	}
	return width
}

func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func cloneRow(r Row) Row {
	out := make(Row, len(r))
	copy(out, r)
	return out
}
