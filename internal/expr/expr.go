// Package expr defines the pluggable expression-engine capability
// that the eval/eval-filter/eval-groupby subcommands compile against,
// per SPEC_FULL.md's re-architecture of the original's embedded
// scripting runtime into a Go interface (see DESIGN.md's
// internal/expr entry). No library in the example pack offers an
// embeddable row-expression evaluator, so the default Engine
// implementation here is intentionally small and stdlib-only; a
// fuller engine (e.g. backed by an actual scripting language) can
// satisfy the same interface without touching callers.
package expr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dsv-cli/dsv/internal/dsverr"
)

// Row is the binding environment an expression evaluates against: the
// current record's fields, addressable by header name or by position
// ("$1", "$2", ...), plus the whole line as "$0".
type Row struct {
	Fields    []string
	HeaderIdx map[string]int
}

// Lookup resolves one identifier: a header name, "$N" positional
// reference, or "$0" for the whole row joined by a single space.
func (r Row) Lookup(name string) (string, bool) {
	if name == "$0" {
		return strings.Join(r.Fields, " "), true
	}
	if strings.HasPrefix(name, "$") {
		rest := name[1:]
		if n, err := strconv.Atoi(rest); err == nil {
			i := n - 1
			if i >= 0 && i < len(r.Fields) {
				return r.Fields[i], true
			}
			return "", false
		}
		name = rest
	}
	if idx, ok := r.HeaderIdx[name]; ok && idx >= 0 && idx < len(r.Fields) {
		return r.Fields[idx], true
	}
	return "", false
}

// Compiled is a parsed, reusable expression.
type Compiled interface {
	// EvalRow evaluates the expression against a single row, returning
	// its string result (for eval) or truthiness (for eval-filter,
	// where "" and "0" are false, anything else true).
	EvalRow(row Row) (string, error)
}

// Engine compiles expression source into reusable Compiled values.
// Subcommands depend only on this interface, never on a concrete
// expression language, so a different engine can be swapped in
// without touching internal/subcommand.
type Engine interface {
	Compile(source string) (Compiled, error)
}

// NewDefaultEngine returns the built-in stdlib-only engine: a tiny
// template-substitution language ("$1 is $2", "${name}") with no
// arithmetic or control flow, sufficient for simple eval pipelines.
// It is not a general scripting runtime and does not attempt to be
// one; see DESIGN.md for why no ecosystem library fills this gap.
func NewDefaultEngine() Engine { return defaultEngine{} }

type defaultEngine struct{}

func (defaultEngine) Compile(source string) (Compiled, error) {
	return compileTemplate(source)
}

type compiledTemplate struct {
	parts []templatePart
}

type templatePart struct {
	literal bool
	text    string
	ref     string
}

func compileTemplate(source string) (*compiledTemplate, error) {
	t := &compiledTemplate{}
	i := 0
	for i < len(source) {
		start := strings.IndexAny(source[i:], "$")
		if start < 0 {
			t.parts = append(t.parts, templatePart{literal: true, text: source[i:]})
			break
		}
		if start > 0 {
			t.parts = append(t.parts, templatePart{literal: true, text: source[i : i+start]})
		}
		i += start
		ref, n, err := scanRef(source[i:])
		if err != nil {
			return nil, err
		}
		t.parts = append(t.parts, templatePart{ref: ref})
		i += n
	}
	return t, nil
}

func scanRef(s string) (ref string, consumed int, err error) {
	if strings.HasPrefix(s, "${") {
		end := strings.IndexByte(s, '}')
		if end < 0 {
			return "", 0, dsverr.NewUsageError("expr: unterminated ${...} in %q", s)
		}
		return "$" + s[2:end], end + 1, nil
	}
	j := 1
	for j < len(s) && isIdentByte(s[j]) {
		j++
	}
	if j == 1 {
		return "", 0, dsverr.NewUsageError("expr: bare %q with no identifier", s[:1])
	}
	return s[:j], j, nil
}

func isIdentByte(b byte) bool {
	return b == '_' ||
		(b >= '0' && b <= '9') ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z')
}

func (c *compiledTemplate) EvalRow(row Row) (string, error) {
	var out strings.Builder
	for _, p := range c.parts {
		if p.literal {
			out.WriteString(p.text)
			continue
		}
		val, ok := row.Lookup(p.ref)
		if !ok {
			return "", dsverr.NewUsageError("expr: unknown reference %q", p.ref)
		}
		out.WriteString(val)
	}
	return out.String(), nil
}

// Truthy applies eval-filter's truthiness rule: empty string and
// literal "0" are false, everything else is true.
func Truthy(s string) bool {
	return s != "" && s != "0"
}

var _ fmt.Stringer = (*compiledTemplate)(nil)

func (c *compiledTemplate) String() string {
	var b strings.Builder
	for _, p := range c.parts {
		if p.literal {
			b.WriteString(p.text)
		} else {
			b.WriteString(p.ref)
		}
	}
	return b.String()
}
