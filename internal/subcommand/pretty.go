package subcommand

import "github.com/dsv-cli/dsv/internal/record"

// Pretty rewrites the pipeline's OFS to pretty mode, switching the
// Writer into gathering/alignment mode (see internal/writer), and
// forwards every row unchanged otherwise.
type Pretty struct {
	Base
}

func NewPretty(b Base) *Pretty { return &Pretty{Base: b} }

func (p *Pretty) OnStart() error {
	return p.SendOfs(record.OFSPretty())
}

// Page behaves exactly like Pretty but also requests that the final
// Writer pipe its output through a pager; the pager itself is wired
// up in cmd/dsv since it depends on the whole pipeline's terminal
// writer, not on any one subcommand.
type Page struct {
	Pretty
}

func NewPage(b Base) *Page { return &Page{Pretty: Pretty{Base: b}} }
