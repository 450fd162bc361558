package writer

import (
	"bytes"
	"testing"

	"github.com/dsv-cli/dsv/internal/bus"
	"github.com/dsv-cli/dsv/internal/record"
)

func rowOf(fields ...string) record.Row {
	return record.RowFromStrings(fields...)
}

func TestWriterPrettyAlignment(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf, Config{
		ORS: []byte("\n"),
		OFS: record.OFSPretty(),
	})
	if err := w.OnRow(rowOf("a", "bb")); err != nil {
		t.Fatal(err)
	}
	if err := w.OnRow(rowOf("ccc", "d")); err != nil {
		t.Fatal(err)
	}
	if err := w.OnEof(); err != nil {
		t.Fatal(err)
	}
	got := buf.String()
	want := "a    bb\nccc  d\n"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestWriterPrettyWithHeader(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf, Config{
		ORS: []byte("\n"),
		OFS: record.OFSPretty(),
	})
	if err := w.OnHeader(rowOf("name", "n")); err != nil {
		t.Fatal(err)
	}
	if err := w.OnRow(rowOf("alice", "1")); err != nil {
		t.Fatal(err)
	}
	if err := w.OnEof(); err != nil {
		t.Fatal(err)
	}
	got := buf.String()
	want := "name   n\nalice  1\n"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestWriterStreamingTSV(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf, Config{
		ORS: []byte("\n"),
		OFS: record.OFSLiteral([]byte{'\t'}),
	})
	if err := w.OnHeader(rowOf("a", "b")); err != nil {
		t.Fatal(err)
	}
	if err := w.OnRow(rowOf("1", "2")); err != nil {
		t.Fatal(err)
	}
	if err := w.OnEof(); err != nil {
		t.Fatal(err)
	}
	want := "a\tb\n1\t2\n"
	if buf.String() != want {
		t.Fatalf("got %q want %q", buf.String(), want)
	}
}

func TestWriterQuotesEmbeddedSeparator(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf, Config{
		ORS:         []byte("\n"),
		OFS:         record.OFSLiteral([]byte{','}),
		QuoteOutput: true,
	})
	if err := w.OnRow(rowOf("a,b", "c")); err != nil {
		t.Fatal(err)
	}
	if err := w.OnEof(); err != nil {
		t.Fatal(err)
	}
	want := "\"a,b\",c\n"
	if buf.String() != want {
		t.Fatalf("got %q want %q", buf.String(), want)
	}
}

func TestWriterSeparatorOnlyEmitsNothing(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf, Config{
		ORS: []byte("\n"),
		OFS: record.OFSPretty(),
	})
	if err := w.OnSeparator(); err != nil {
		t.Fatal(err)
	}
	if err := w.OnEof(); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestWriterTrailerAlways(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf, Config{
		ORS:     []byte("\n"),
		OFS:     record.OFSPretty(),
		Trailer: bus.TrailerAlways,
	})
	if err := w.OnHeader(rowOf("h")); err != nil {
		t.Fatal(err)
	}
	if err := w.OnRow(rowOf("1")); err != nil {
		t.Fatal(err)
	}
	if err := w.OnEof(); err != nil {
		t.Fatal(err)
	}
	want := "h\n1\nh\n"
	if buf.String() != want {
		t.Fatalf("got %q want %q", buf.String(), want)
	}
}

func TestWriterNumberedColumns(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf, Config{
		ORS:             []byte("\n"),
		OFS:             record.OFSLiteral([]byte{'\t'}),
		NumberedColumns: true,
	})
	if err := w.OnHeader(rowOf("name", "age")); err != nil {
		t.Fatal(err)
	}
	if err := w.OnEof(); err != nil {
		t.Fatal(err)
	}
	want := "1 name\t2 age\n"
	if buf.String() != want {
		t.Fatalf("got %q want %q", buf.String(), want)
	}
}

func TestWriterDropHeader(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf, Config{
		ORS:        []byte("\n"),
		OFS:        record.OFSLiteral([]byte{'\t'}),
		DropHeader: true,
	})
	if err := w.OnHeader(rowOf("a", "b")); err != nil {
		t.Fatal(err)
	}
	if err := w.OnRow(rowOf("1", "2")); err != nil {
		t.Fatal(err)
	}
	if err := w.OnEof(); err != nil {
		t.Fatal(err)
	}
	want := "1\t2\n"
	if buf.String() != want {
		t.Fatalf("got %q want %q", buf.String(), want)
	}
}
