// Command dsv runs the streaming, column-oriented text-table pipeline:
// a root set of global options (§6) followed by one or more `!`-delimited
// subcommand segments, each parsing its own local flags independently.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/olekukonko/ts"
	"github.com/spf13/cobra"

	"github.com/dsv-cli/dsv/internal/bus"
	"github.com/dsv-cli/dsv/internal/dsverr"
	"github.com/dsv-cli/dsv/internal/dsvlog"
	"github.com/dsv-cli/dsv/internal/record"
	"github.com/dsv-cli/dsv/internal/subcommand"
	"github.com/dsv-cli/dsv/internal/writer"
)

var opts = &bus.Options{}

var rootCmd = &cobra.Command{
	Use:           "dsv ! SUBCOMMAND [ARGS...] [! SUBCOMMAND [ARGS...] ...]",
	Short:         "dsv — a streaming, column-oriented text-table pipeline",
	SilenceUsage:  true,
	SilenceErrors: true,
	Long: `dsv reads delimited text from stdin, runs it through one or more
pipeline stages joined by a bare "!", and writes the result to stdout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPipeline(args)
	},
}

func init() {
	rootCmd.Flags().SetInterspersed(false)
	bindGlobalFlags(rootCmd.Flags(), opts)
}

func main() {
	os.Exit(Execute())
}

// Execute parses global flags, runs the pipeline, and maps the result
// to a process exit code per spec.md §6: 0 success, 1 generic
// failure, min(101, failed-count) when a ParallelExec stage ran.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		if xc, ok := err.(exitCoder); ok {
			return xc.ExitCode()
		}
		fmt.Fprintln(os.Stderr, "dsv:", err)
		return 1
	}
	return lastExitCode
}

// exitCoder lets a stage (ParallelExec) report a specific exit code
// instead of the generic 1.
type exitCoder interface {
	ExitCode() int
}

var lastExitCode int

func runPipeline(args []string) error {
	runPostParseHooks()
	opts.PostProcess()
	if err := dsvlog.SetLevel(opts.LogLevel); err != nil {
		return dsverr.NewUsageError("bad --log-level: %v", err)
	}

	segments := splitPipeline(args)
	if len(segments) == 0 {
		return dsverr.NewUsageError("no subcommand given; expected `! SUB ARGS ...`")
	}

	irs := []byte(opts.IRS)
	lr := record.NewLineReader(os.Stdin, irs)
	firstLine, _, firstErr := lr.ReadLine()
	haveFirstLine := firstErr == nil
	if firstErr != nil && firstErr != io.EOF {
		return dsverr.Wrap(firstErr, "reading stdin")
	}

	ifs, err := resolveIFS(opts)
	if err != nil {
		return err
	}
	if ifs == nil {
		var resolved record.IFS
		if haveFirstLine {
			resolved, _ = record.InferIFS(firstLine)
		} else {
			resolved = record.Tab()
		}
		ifs = &resolved
	}
	// Whitespace-run and pretty IFS kinds always combine trailing
	// columns into the last field, per original_source/src/base.rs:
	// "if matches!(base.ifs, Ifs::Space | Ifs::Pretty) { combine_trailing_columns = true }".
	combineTrailing := opts.CombineTrailing
	if ifs.Kind == record.KindWhitespace || ifs.Kind == record.KindPretty {
		combineTrailing = true
	}

	n := len(segments)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	busOut := make([]*bus.Bus, n)
	for i := range busOut {
		busOut[i] = bus.New(ctx, 1)
	}

	pbs := make([]*bus.ProcessingBase, n)
	pbs[0] = bus.NewProcessingBase(opts, busOut[0])
	pbs[0].IFS = *ifs
	for i := 1; i < n; i++ {
		pbs[i] = pbs[i-1].Clone(busOut[i])
	}

	subs := make([]subcommand.Subcommand, n)
	for i, seg := range segments {
		sub, err := buildSubcommand(seg, pbs[i])
		if err != nil {
			return err
		}
		subs[i] = sub
	}

	lines0 := make(chan []byte, 64)
	go pumpStdin(ctx, lr, firstLine, haveFirstLine, lines0)

	parser := &record.Parser{
		IFS:                    *ifs,
		QuotingEnabled:         !opts.NoQuoting,
		CombineTrailingColumns: combineTrailing,
	}
	driver := &subcommand.Driver{Parser: parser, HeaderMode: opts.HeaderMode, Sub: subs[0]}

	errCh := make(chan error, n)
	go func() { errCh <- driver.Run(lines0) }()
	for i := 1; i < n; i++ {
		i := i
		go func() { errCh <- pumpMessages(busOut[i-1], pbs[i], subs[i]) }()
	}

	willEmitHeader := !opts.DropHeader && opts.HeaderMode != record.HeaderForceOff
	page := opts.Page
	for _, sub := range subs {
		if _, ok := sub.(*subcommand.Page); ok {
			page = true
		}
	}
	w, err := writer.NewStdoutOrPager(page, willEmitHeader, writerConfig())
	if err != nil {
		return err
	}

	writerErr := pumpToWriter(busOut[n-1], w)
	closeErr := w.Close()

	var stageErr error
	for i := 0; i < n; i++ {
		if e := <-errCh; e != nil && stageErr == nil {
			stageErr = e
		}
	}

	switch {
	case stageErr != nil:
		return stageErr
	case writerErr != nil:
		return writerErr
	case closeErr != nil:
		return closeErr
	}

	for _, sub := range subs {
		if x, ok := sub.(*subcommand.Xargs); ok {
			if code := x.Engine.Stats.ExitCode(); code > lastExitCode {
				lastExitCode = code
			}
		}
	}
	return nil
}

func writerConfig() writer.Config {
	rows := 0
	if size, err := ts.GetSize(); err == nil {
		rows = size.Row()
	}
	sinkIsTTY := opts.StdoutIsTTY() && !opts.Page
	return writer.Config{
		ORS:             []byte(opts.ORS),
		OFS:             opts.ResolvedOFS(),
		QuoteOutput:     !opts.NoQuoting && !opts.NoQuoteOutput,
		ColourEnabled:   opts.ColourEnabled(sinkIsTTY),
		RainbowColumns:  opts.RainbowColumns,
		HeaderBgColour:  237, // grayscale
		NumberedColumns: opts.NumberedColumns,
		Trailer:         opts.Trailer,
		TerminalRows:    rows,
		DropHeader:      opts.DropHeader,
	}
}

// pumpStdin feeds raw lines to the first pipeline stage. If a line was
// already consumed while autodetecting the IFS, it is sent first.
func pumpStdin(ctx context.Context, lr *record.LineReader, pending []byte, havePending bool, lines chan<- []byte) {
	defer close(lines)
	if havePending {
		select {
		case lines <- pending:
		case <-ctx.Done():
			return
		}
	}
	for {
		line, _, err := lr.ReadLine()
		if err != nil {
			return
		}
		select {
		case lines <- line:
		case <-ctx.Done():
			return
		}
	}
}
