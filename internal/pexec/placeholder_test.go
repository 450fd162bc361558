package pexec

import "testing"

func renderOne(t *testing.T, raw string, fields []string, headerIdx map[string]int) string {
	t.Helper()
	tmpl, err := CompileTemplate(raw, "{}")
	if err != nil {
		t.Fatal(err)
	}
	got, err := tmpl.Render(WholeRowLookup(fields, headerIdx))
	if err != nil {
		t.Fatal(err)
	}
	return got
}

func TestPlaceholderWholeRow(t *testing.T) {
	got := renderOne(t, "{}", []string{"a", "b"}, nil)
	if got != "a b" {
		t.Fatalf("got %q", got)
	}
}

func TestPlaceholderByName(t *testing.T) {
	got := renderOne(t, "{name}", []string{"alice", "30"}, map[string]int{"name": 0, "age": 1})
	if got != "alice" {
		t.Fatalf("got %q", got)
	}
}

func TestPlaceholderByIndex(t *testing.T) {
	got := renderOne(t, "{2}", []string{"alice", "30"}, nil)
	if got != "30" {
		t.Fatalf("got %q", got)
	}
}

func TestPlaceholderPathTransforms(t *testing.T) {
	fields := []string{"/tmp/dir/file.txt"}
	cases := map[string]string{
		"{1.}":  "/tmp/dir/file",
		"{1/}":  "file.txt",
		"{1//}": "/tmp/dir",
		"{1/.}": "file",
	}
	for raw, want := range cases {
		got := renderOne(t, raw, fields, nil)
		if got != want {
			t.Fatalf("%s: got %q want %q", raw, got, want)
		}
	}
}

func TestPlaceholderAlignmentSpec(t *testing.T) {
	got := renderOne(t, "{1:5}", []string{"ab"}, nil)
	if got != "   ab" {
		t.Fatalf("got %q", got)
	}
	got = renderOne(t, "{1:-5}", []string{"ab"}, nil)
	if got != "ab   " {
		t.Fatalf("got %q", got)
	}
}

func TestPlaceholderQuoteSpec(t *testing.T) {
	got := renderOne(t, "{1:q}", []string{"it's"}, nil)
	if got != `'it'\''s'` {
		t.Fatalf("got %q", got)
	}
}

func TestDoubledDelimiterEscapes(t *testing.T) {
	got := renderOne(t, "{{{1}}}", []string{"x"}, nil)
	if got != "{x}" {
		t.Fatalf("got %q", got)
	}
}

func TestRenderArgvAppendsFieldsWhenNoPlaceholder(t *testing.T) {
	tmpl, err := CompileTemplate("echo", "{}")
	if err != nil {
		t.Fatal(err)
	}
	argv, err := RenderArgv([]*Template{tmpl}, []string{"a", "b"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"echo", "a", "b"}
	if len(argv) != len(want) {
		t.Fatalf("got %v", argv)
	}
	for i := range want {
		if argv[i] != want[i] {
			t.Fatalf("got %v want %v", argv, want)
		}
	}
}

func TestBashDashC(t *testing.T) {
	argv, ok := BashDashC([]string{"echo hi"})
	if !ok {
		t.Fatal("expected bash -c detection")
	}
	if len(argv) != 3 || argv[0] != "bash" || argv[1] != "-c" || argv[2] != "echo hi" {
		t.Fatalf("got %v", argv)
	}

	argv, ok = BashDashC([]string{"echo", "hi"})
	if ok {
		t.Fatalf("expected no bash -c detection, got %v", argv)
	}
}
