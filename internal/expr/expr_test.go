package expr

import "testing"

func TestTemplateEvalByHeaderName(t *testing.T) {
	eng := NewDefaultEngine()
	c, err := eng.Compile("hello $name, age $age")
	if err != nil {
		t.Fatal(err)
	}
	row := Row{Fields: []string{"alice", "30"}, HeaderIdx: map[string]int{"name": 0, "age": 1}}
	got, err := c.EvalRow(row)
	if err != nil {
		t.Fatal(err)
	}
	if got != "hello alice, age 30" {
		t.Fatalf("got %q", got)
	}
}

func TestTemplateEvalByPosition(t *testing.T) {
	eng := NewDefaultEngine()
	c, err := eng.Compile("$1-$2")
	if err != nil {
		t.Fatal(err)
	}
	got, err := c.EvalRow(Row{Fields: []string{"x", "y"}})
	if err != nil {
		t.Fatal(err)
	}
	if got != "x-y" {
		t.Fatalf("got %q", got)
	}
}

func TestTemplateEvalBraced(t *testing.T) {
	eng := NewDefaultEngine()
	c, err := eng.Compile("${full name}")
	if err != nil {
		t.Fatal(err)
	}
	got, err := c.EvalRow(Row{Fields: []string{"Alice Smith"}, HeaderIdx: map[string]int{"full name": 0}})
	if err != nil {
		t.Fatal(err)
	}
	if got != "Alice Smith" {
		t.Fatalf("got %q", got)
	}
}

func TestTruthy(t *testing.T) {
	if Truthy("") || Truthy("0") {
		t.Fatal("expected empty and \"0\" to be falsy")
	}
	if !Truthy("1") || !Truthy("false") {
		t.Fatal("expected any other string to be truthy")
	}
}
