package pexec

import (
	"testing"
)

func TestEngineRunsEchoPerRow(t *testing.T) {
	tmpl, err := CompileTemplate("{}", "{}")
	if err != nil {
		t.Fatal(err)
	}
	echoTmpl, err := CompileTemplate("echo", "{}")
	if err != nil {
		t.Fatal(err)
	}

	e := New(Config{
		Templates: []*Template{echoTmpl, tmpl},
		JobLimit:  "2",
		Tag:       false,
		IRS:       []byte("\n"),
	})

	rows := make(chan Row, 3)
	rows <- Row{Fields: []string{"one"}}
	rows <- Row{Fields: []string{"two"}}
	rows <- Row{Fields: []string{"three"}}
	close(rows)

	var lines []string
	err = e.Run(rows, func(out Output) error {
		if !out.IsStderr {
			lines = append(lines, string(out.Line))
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(lines) != 3 {
		t.Fatalf("got %d lines: %v", len(lines), lines)
	}
	seen := map[string]bool{}
	for _, l := range lines {
		seen[l] = true
	}
	for _, want := range []string{"one", "two", "three"} {
		if !seen[want] {
			t.Fatalf("missing output line %q in %v", want, lines)
		}
	}

	_, running, succeeded, failed := e.Stats.Snapshot()
	if running != 0 {
		t.Fatalf("expected no running children left, got %d", running)
	}
	if succeeded != 3 || failed != 0 {
		t.Fatalf("got succeeded=%d failed=%d", succeeded, failed)
	}
}

func TestEngineCountsFailures(t *testing.T) {
	falseTmpl, err := CompileTemplate("false", "{}")
	if err != nil {
		t.Fatal(err)
	}
	e := New(Config{
		Templates: []*Template{falseTmpl},
		JobLimit:  "1",
		IRS:       []byte("\n"),
	})

	rows := make(chan Row, 1)
	rows <- Row{Fields: []string{"x"}}
	close(rows)

	if err := e.Run(rows, func(Output) error { return nil }); err != nil {
		t.Fatal(err)
	}

	if code := e.Stats.ExitCode(); code != 1 {
		t.Fatalf("got exit code %d want 1", code)
	}
}
