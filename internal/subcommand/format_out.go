package subcommand

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/dsv-cli/dsv/internal/record"
)

// ToCSV and ToTSV simply fix the pipeline's OFS/quoting policy;
// the Writer does the actual formatting.
type ToCSV struct{ Base }

func NewToCSV(b Base) *ToCSV { return &ToCSV{Base: b} }

func (t *ToCSV) OnStart() error {
	return t.SendOfs(record.OFSLiteral([]byte{','}))
}

type ToTSV struct{ Base }

func NewToTSV(b Base) *ToTSV { return &ToTSV{Base: b} }

func (t *ToTSV) OnStart() error {
	return t.SendOfs(record.OFSLiteral([]byte{'\t'}))
}

// ToMarkdown buffers the whole table and emits a GitHub-flavored
// markdown table as raw lines at EOF, bypassing the Writer's normal
// per-row formatting entirely.
type ToMarkdown struct {
	Base
	header record.Row
	rows   []record.Row
}

func NewToMarkdown(b Base) *ToMarkdown { return &ToMarkdown{Base: b} }

func (m *ToMarkdown) OnHeader(row record.Row) (Signal, error) {
	m.header = row.Clone()
	return SigContinue, nil
}

func (m *ToMarkdown) OnRow(row record.Row) (Signal, error) {
	m.rows = append(m.rows, row.Clone())
	return SigContinue, nil
}

func (m *ToMarkdown) OnEof() error {
	if m.header != nil {
		if err := m.emitLine(markdownRow(m.header)); err != nil {
			return err
		}
		rule := make([]string, len(m.header))
		for i := range rule {
			rule[i] = "---"
		}
		if err := m.emitLine("| " + strings.Join(rule, " | ") + " |"); err != nil {
			return err
		}
	}
	for _, row := range m.rows {
		if err := m.emitLine(markdownRow(row)); err != nil {
			return err
		}
	}
	return m.SendEof()
}

func (m *ToMarkdown) emitLine(line string) error {
	return m.SendRaw([]byte(line), true, false)
}

func markdownRow(row record.Row) string {
	cells := make([]string, len(row))
	for i, f := range row {
		cells[i] = strings.ReplaceAll(string(f), "|", `\|`)
	}
	return "| " + strings.Join(cells, " | ") + " |"
}

// ToJSON buffers the whole table and emits one JSON array of objects
// (using the header as keys, or 1-based indices without a header) as
// a single raw payload at EOF.
type ToJSON struct {
	Base
	header record.Row
	rows   []record.Row
}

func NewToJSON(b Base) *ToJSON { return &ToJSON{Base: b} }

func (j *ToJSON) OnHeader(row record.Row) (Signal, error) {
	j.header = row.Clone()
	return SigContinue, nil
}

func (j *ToJSON) OnRow(row record.Row) (Signal, error) {
	j.rows = append(j.rows, row.Clone())
	return SigContinue, nil
}

// OnEof writes each row's key/value pairs by hand in column order
// rather than marshalling a map, since encoding/json's map output would sort keys
// alphabetically and lose the table's column order.
func (j *ToJSON) OnEof() error {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, row := range j.rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for col, f := range row {
			if col > 0 {
				buf.WriteByte(',')
			}
			key := strconv.Itoa(col + 1)
			if j.header != nil && col < len(j.header) {
				key = string(j.header[col])
			}
			writeJSONField(&buf, key, string(f))
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	if err := j.SendRaw(buf.Bytes(), true, false); err != nil {
		return err
	}
	return j.SendEof()
}

func writeJSONField(buf *bytes.Buffer, key, value string) {
	keyJSON, _ := json.Marshal(key)
	valJSON, _ := json.Marshal(value)
	buf.Write(keyJSON)
	buf.WriteByte(':')
	buf.Write(valJSON)
}

// NotImplemented is a placeholder Subcommand for input-format
// converters (fromjson, frommarkdown, fromhtml) that parse an
// upstream format this pipeline does not read; SPEC_FULL.md carries
// them as named stubs rather than silently dropping the operation.
type NotImplemented struct {
	Base
	Name string
}

func NewNotImplemented(b Base, name string) *NotImplemented {
	return &NotImplemented{Base: b, Name: name}
}

func (n *NotImplemented) OnStart() error {
	return fmt.Errorf("subcommand %q is not implemented", n.Name)
}
