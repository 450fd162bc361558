package subcommand

import (
	"github.com/dsv-cli/dsv/internal/pexec"
	"github.com/dsv-cli/dsv/internal/record"
)

// Xargs is ParallelExec's pipeline-facing wrapper: it feeds every row
// to internal/pexec.Engine and streams children's stdout/stderr back
// as rows. OnEof drives the engine to completion (closing the row
// channel signals no more input) and, when NoTag is false, each
// emitted row carries its originating input row as a leading tag
// field.
type Xargs struct {
	Base
	Engine *pexec.Engine
	NoTag  bool

	rowCh chan pexec.Row
	errCh chan error
}

func NewXargs(b Base, engine *pexec.Engine, noTag bool) *Xargs {
	return &Xargs{Base: b, Engine: engine, NoTag: noTag}
}

func (x *Xargs) OnStart() error {
	x.rowCh = make(chan pexec.Row, 64)
	x.errCh = make(chan error, 1)
	go func() {
		x.errCh <- x.Engine.Run(x.rowCh, func(out pexec.Output) error {
			fields := make(record.Row, 0, 2)
			if !x.NoTag && out.Tag != "" {
				fields = append(fields, []byte(out.Tag))
			}
			fields = append(fields, out.Line)
			if out.IsStderr {
				return x.SendStderr(fields)
			}
			return x.SendRow(fields)
		})
	}()
	return nil
}

func (x *Xargs) OnHeader(row record.Row) (Signal, error) {
	return x.OnRow(row)
}

func (x *Xargs) OnRow(row record.Row) (Signal, error) {
	x.rowCh <- pexec.Row{Fields: row.Strings()}
	return SigContinue, nil
}

func (x *Xargs) OnEof() error {
	close(x.rowCh)
	if err := <-x.errCh; err != nil {
		return err
	}
	return x.SendEof()
}
