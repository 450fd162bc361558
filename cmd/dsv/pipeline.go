package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/dsv-cli/dsv/internal/bus"
	"github.com/dsv-cli/dsv/internal/dsverr"
	"github.com/dsv-cli/dsv/internal/record"
	"github.com/dsv-cli/dsv/internal/subcommand"
	"github.com/dsv-cli/dsv/internal/writer"
)

// pumpMessages drives one non-first pipeline stage: it receives
// already-parsed Messages from in (the previous stage's outbound
// Bus) and dispatches them to sub. Subcommand has no hook for
// Separator or Raw, so those are forwarded unchanged to the next
// stage; Stderr rows are printed to os.Stderr here, not forwarded.
func pumpMessages(in *bus.Bus, pb *bus.ProcessingBase, sub subcommand.Subcommand) error {
	// Always cancel the upstream producer on the way out, whether this
	// stage drained to a real Eof or stopped early (SigBreak, a
	// forwarding error): an upstream Send blocked on this bus must
	// unblock as dsverr.UpstreamClosed instead of hanging forever.
	defer in.CancelConsumer()

	if err := sub.OnStart(); err != nil {
		return err
	}
	for {
		msg, ok := in.Recv()
		if !ok {
			break
		}
		var err error
		var sig subcommand.Signal
		switch msg.Kind {
		case bus.Header:
			sig, err = sub.OnHeader(msg.Row)
		case bus.Row:
			sig, err = sub.OnRow(msg.Row)
		case bus.Ofs:
			err = sub.OnOfs(msg.Ofs)
		case bus.Separator:
			err = pb.SendSeparator()
		case bus.Raw:
			err = pb.SendRaw(msg.Raw, msg.AppendORS, msg.ClearLine)
		case bus.Stderr:
			_, err = fmt.Fprintln(os.Stderr, joinRow(msg.Row))
		case bus.Eof:
			goto eof
		}
		if err != nil {
			if dsverr.IsUpstreamClosed(err) {
				break
			}
			return err
		}
		if sig == subcommand.SigBreak {
			break
		}
	}
eof:
	if err := sub.OnEof(); err != nil && !dsverr.IsUpstreamClosed(err) {
		return err
	}
	return nil
}

// pumpToWriter drains the terminal Bus into w, the final consumer of
// the pipeline.
func pumpToWriter(in *bus.Bus, w *writer.Writer) error {
	defer in.CancelConsumer()
	for {
		msg, ok := in.Recv()
		if !ok {
			break
		}
		var err error
		switch msg.Kind {
		case bus.Header:
			err = w.OnHeader(msg.Row)
		case bus.Row:
			err = w.OnRow(msg.Row)
		case bus.Separator:
			err = w.OnSeparator()
		case bus.Raw:
			err = w.OnRaw(msg.Raw, msg.AppendORS, msg.ClearLine)
		case bus.Ofs:
			err = w.OnOfs(msg.Ofs)
		case bus.Stderr:
			_, err = fmt.Fprintln(os.Stderr, joinRow(msg.Row))
		case bus.Eof:
			return w.OnEof()
		}
		if err != nil {
			return err
		}
	}
	return w.OnEof()
}

func joinRow(row record.Row) string {
	return strings.Join(row.Strings(), "\t")
}
