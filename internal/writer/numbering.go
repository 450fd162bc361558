package writer

import (
	"bytes"
	"fmt"
)

// numberHeaderCell prefixes cell with its 1-based column index,
// replacing any leading spaces. If the cell already starts with a
// number followed by a space, it is left alone — dsv's original
// numbered-columns behavior does not rewrite numbers already present
// (see DESIGN.md's Open Question decisions).
func numberHeaderCell(n int, cell []byte) []byte {
	if alreadyNumbered(cell) {
		return cell
	}
	trimmed := bytes.TrimLeft(cell, " ")
	prefix := fmt.Sprintf("%d ", n)
	out := make([]byte, 0, len(prefix)+len(trimmed))
	out = append(out, prefix...)
	out = append(out, trimmed...)
	return out
}

func alreadyNumbered(cell []byte) bool {
	i := 0
	for i < len(cell) && cell[i] >= '0' && cell[i] <= '9' {
		i++
	}
	return i > 0 && i < len(cell) && cell[i] == ' '
}
