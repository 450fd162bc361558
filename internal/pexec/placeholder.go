// Package pexec implements ParallelExec: the xargs-like engine that
// runs a command template against every row of a pipeline, a bounded
// number of children at a time, driven by a single-threaded
// cooperative event loop. Grounded on original_source/src/xargs.rs's
// scheduling/placeholder/state-machine semantics, rebuilt around
// golang.org/x/sys/unix via internal/nbio in place of the teacher's
// AVX-only runtime dependency.
package pexec

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/dsv-cli/dsv/internal/dsverr"
)

// Template is a compiled command-line or stdin template: a sequence
// of literal and placeholder segments, resolved per row at dispatch
// time.
type Template struct {
	raw      string
	segments []segment
	hasPlaceholder bool
}

type segment struct {
	literal   bool
	text      string
	field     string // name or numeric index, "" means whole-row "{}"
	transform string // "", ".", "/", "//", "/."
	spec      string
}

// CompileTemplate parses one argv word (or the stdin template) for
// placeholders, using delim as the `{`/`}` pair (default "{}", may be
// two distinct characters per spec.md's replacement-string option).
func CompileTemplate(raw string, delim string) (*Template, error) {
	open, close := "{", "}"
	if len(delim) == 2 {
		open, close = string(delim[0]), string(delim[1])
	} else if len(delim) == 1 {
		open, close = string(delim[0]), string(delim[0])
	}

	t := &Template{raw: raw}
	re := placeholderPattern(open, close)
	i := 0
	for i < len(raw) {
		// doubled delimiter escape
		if strings.HasPrefix(raw[i:], open+open) {
			t.segments = append(t.segments, segment{literal: true, text: open})
			i += 2 * len(open)
			continue
		}
		if strings.HasPrefix(raw[i:], close+close) {
			t.segments = append(t.segments, segment{literal: true, text: close})
			i += 2 * len(close)
			continue
		}
		loc := re.FindStringSubmatchIndex(raw[i:])
		if loc == nil {
			t.segments = append(t.segments, segment{literal: true, text: raw[i:]})
			break
		}
		if loc[0] > 0 {
			t.segments = append(t.segments, segment{literal: true, text: raw[i : i+loc[0]]})
		}
		m := re.FindStringSubmatch(raw[i:])
		t.segments = append(t.segments, segment{
			field:     m[1],
			transform: m[2],
			spec:      m[4],
		})
		t.hasPlaceholder = true
		i += loc[1]
	}
	return t, nil
}

func placeholderPattern(open, close string) *regexp.Regexp {
	o, c := regexp.QuoteMeta(open), regexp.QuoteMeta(close)
	return regexp.MustCompile(o + `([a-zA-Z0-9_]*)(/\.|//|/|\.)?(:([^` + c + `]*))?` + c)
}

// HasPlaceholder reports whether the compiled template contains at
// least one `{...}` reference.
func (t *Template) HasPlaceholder() bool { return t.hasPlaceholder }

// FieldLookup resolves a placeholder's field name/index against a
// row, given an optional header name->index map. "" (bare `{}`) means
// the whole row joined by a single space.
type FieldLookup func(field string) (string, bool)

// Render substitutes every placeholder in the template using lookup,
// applying any path transform and format spec, and returns the
// resulting string.
func (t *Template) Render(lookup FieldLookup) (string, error) {
	var out strings.Builder
	for _, s := range t.segments {
		if s.literal {
			out.WriteString(s.text)
			continue
		}
		val, ok := lookup(s.field)
		if !ok {
			return "", dsverr.NewUsageError("pexec: no such field %q", s.field)
		}
		val = applyTransform(val, s.transform)
		formatted, err := applySpec(val, s.spec)
		if err != nil {
			return "", err
		}
		out.WriteString(formatted)
	}
	return out.String(), nil
}

func applyTransform(val, transform string) string {
	switch transform {
	case ".":
		ext := filepath.Ext(val)
		return strings.TrimSuffix(val, ext)
	case "/":
		return filepath.Base(val)
	case "//":
		return filepath.Dir(val)
	case "/.":
		base := filepath.Base(val)
		return strings.TrimSuffix(base, filepath.Ext(base))
	default:
		return val
	}
}

// specRE parses `[-]?\d*(\.\d+)?[fiqs]?`.
var specRE = regexp.MustCompile(`^(-)?(\d*)(\.(\d+))?([fiqs])?$`)

func applySpec(val, spec string) (string, error) {
	if spec == "" {
		return val, nil
	}
	m := specRE.FindStringSubmatch(spec)
	if m == nil {
		return "", dsverr.NewUsageError("pexec: invalid format spec %q", spec)
	}
	leftAlign := m[1] == "-"
	widthStr := m[2]
	precStr := m[4]
	kind := m[5]

	if precStr != "" {
		if prec, err := strconv.Atoi(precStr); err == nil && prec < len(val) {
			val = val[:prec]
		}
	}
	if widthStr != "" {
		width, _ := strconv.Atoi(widthStr)
		if len(val) < width {
			padChar := " "
			if kind == "i" && !leftAlign {
				padChar = "0"
			}
			pad := strings.Repeat(padChar, width-len(val))
			if leftAlign {
				val = val + pad
			} else {
				val = pad + val
			}
		}
	}
	if kind == "q" {
		val = shellQuote(val)
	}
	return val, nil
}

// shellQuote wraps a string in single quotes, shell-escaping any
// embedded single quote, for the `q` format spec.
func shellQuote(val string) string {
	if val == "" {
		return "''"
	}
	return "'" + strings.ReplaceAll(val, "'", `'\''`) + "'"
}

// WholeRowLookup builds a FieldLookup over a row's fields and an
// optional header name->index map. The bare "" field joins all fields
// with a single space.
func WholeRowLookup(fields []string, headerIdx map[string]int) FieldLookup {
	return func(field string) (string, bool) {
		if field == "" {
			return strings.Join(fields, " "), true
		}
		if idx, ok := headerIdx[field]; ok && idx >= 0 && idx < len(fields) {
			return fields[idx], true
		}
		if n, err := strconv.Atoi(field); err == nil {
			i := n - 1
			if i >= 0 && i < len(fields) {
				return fields[i], true
			}
		}
		return "", false
	}
}

// RenderArgv renders every word of an argv template against one row,
// falling back to appending the row's fields as extra positional args
// when the template contains no placeholder anywhere.
func RenderArgv(templates []*Template, fields []string, headerIdx map[string]int) ([]string, error) {
	lookup := WholeRowLookup(fields, headerIdx)
	anyPlaceholder := false
	for _, tmpl := range templates {
		if tmpl.HasPlaceholder() {
			anyPlaceholder = true
			break
		}
	}
	out := make([]string, 0, len(templates)+len(fields))
	for _, tmpl := range templates {
		rendered, err := tmpl.Render(lookup)
		if err != nil {
			return nil, err
		}
		out = append(out, rendered)
	}
	if !anyPlaceholder {
		out = append(out, fields...)
	}
	return out, nil
}

// BashDashC reports whether argv should be interpreted as a single
// `bash -c <script>` invocation: exactly one word containing a space.
func BashDashC(argv []string) ([]string, bool) {
	if len(argv) == 1 && strings.Contains(argv[0], " ") {
		return []string{"bash", "-c", argv[0]}, true
	}
	return argv, false
}
