package selector

import (
	"testing"

	"github.com/dsv-cli/dsv/internal/record"
)

func TestSliceIncludeIndices(t *testing.T) {
	sel, err := Compile([]string{"2", "1"}, false)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	row := record.RowFromStrings("a", "b", "c")
	got := sel.Slice(row, false, false, nil).Strings()
	want := []string{"b", "a"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestSliceRangeOpenEnds(t *testing.T) {
	sel, err := Compile([]string{"2-"}, false)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	row := record.RowFromStrings("a", "b", "c", "d")
	got := sel.Slice(row, false, false, nil).Strings()
	want := []string{"b", "c", "d"}
	if len(got) != 3 {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestSliceIdentity(t *testing.T) {
	sel, err := Compile([]string{"1-"}, false)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	row := record.RowFromStrings("a", "b", "c")
	got := sel.Slice(row, false, false, nil).Strings()
	for i, v := range row.Strings() {
		if got[i] != v {
			t.Fatalf("cut --fields=1- is not identity: got %v, want %v", got, row.Strings())
		}
	}
}

func TestSliceComplement(t *testing.T) {
	sel, err := Compile([]string{"2"}, false)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	row := record.RowFromStrings("a", "b", "c")
	got := sel.Slice(row, true, false, nil).Strings()
	want := []string{"a", "c"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestSliceByName(t *testing.T) {
	sel, err := Compile([]string{"beta"}, false)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	header := record.RowFromStrings("alpha", "beta", "gamma")
	sel.SetHeader(header)
	row := record.RowFromStrings("1", "2", "3")
	got := sel.Slice(row, false, false, nil).Strings()
	if len(got) != 1 || got[0] != "2" {
		t.Fatalf("got %v", got)
	}
}

func TestSliceByNameWithoutHeaderYieldsEmpty(t *testing.T) {
	sel, err := Compile([]string{"beta"}, false)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	row := record.RowFromStrings("1", "2", "3")
	got := sel.Slice(row, false, false, nil)
	if len(got) != 0 {
		t.Fatalf("expected empty slice before header arrives, got %v", got)
	}
}

func TestSliceByRegex(t *testing.T) {
	sel, err := Compile([]string{"^b.*"}, true)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	header := record.RowFromStrings("alpha", "beta", "bravo")
	sel.SetHeader(header)
	row := record.RowFromStrings("1", "2", "3")
	got := sel.Slice(row, false, false, nil).Strings()
	if len(got) != 2 || got[0] != "2" || got[1] != "3" {
		t.Fatalf("got %v", got)
	}
}

func TestSliceMissingIndexAllowEmpty(t *testing.T) {
	sel, err := Compile([]string{"5"}, false)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	row := record.RowFromStrings("a", "b")
	got := sel.Slice(row, false, true, nil)
	if len(got) != 1 || string(got[0]) != "" {
		t.Fatalf("got %v", got)
	}
}

func TestSliceMissingIndexNoAllowEmptyIsOmitted(t *testing.T) {
	sel, err := Compile([]string{"5"}, false)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	row := record.RowFromStrings("a", "b")
	got := sel.Slice(row, false, false, nil)
	if len(got) != 0 {
		t.Fatalf("got %v, want empty", got)
	}
}
