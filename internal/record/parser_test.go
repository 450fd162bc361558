package record

import (
	"regexp"
	"testing"
)

// =============================================================================
// Autodetect + basic split tests
// =============================================================================

func TestInferIFS(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		wantKind Kind
	}{
		{"tsv", "a\tb\tc", KindLiteral},
		{"csv", "a,b,c", KindLiteral},
		{"pipe", "a|b|c", KindLiteral},
		{"semicolon", "a;b;c", KindLiteral},
		{"single field no delimiter", "justoneword", KindLiteral},
		{"pretty two-space table", "a    bb\nccc  d", KindPretty},
		{"single-space words", "a b c d e", KindWhitespace},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := InferIFS([]byte(tt.line))
			if got.Kind != tt.wantKind {
				t.Errorf("InferIFS(%q).Kind = %v, want %v", tt.line, got.Kind, tt.wantKind)
			}
		})
	}
}

func TestInferIFSFallsBackToTab(t *testing.T) {
	ifs, combine := InferIFS([]byte("onefield"))
	if ifs.Kind != KindLiteral || string(ifs.Literal) != "\t" {
		t.Fatalf("expected TAB fallback, got %+v", ifs)
	}
	if combine {
		t.Fatalf("literal TAB fallback should not force combine-trailing-columns")
	}
}

// =============================================================================
// Parser: scenario 1 — autodetect TSV
// =============================================================================

func TestParserTSV(t *testing.T) {
	p := &Parser{IFS: Tab(), QuotingEnabled: true}
	row, incomplete, err := p.Parse([]byte("a\tb"))
	if err != nil || incomplete {
		t.Fatalf("unexpected: %v %v", incomplete, err)
	}
	if got := row.Strings(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("got %v", got)
	}
}

// =============================================================================
// Parser: scenario 3 — quoted multi-line CSV
// =============================================================================

func TestParserQuotedMultiLine(t *testing.T) {
	p := &Parser{IFS: Comma(), QuotingEnabled: true}

	row, incomplete, err := p.Parse([]byte(`"ab`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !incomplete {
		t.Fatalf("expected incomplete row for unterminated quote")
	}

	row, incomplete, err = p.Parse([]byte(`cd","ef"`))
	if err != nil || incomplete {
		t.Fatalf("unexpected: %v %v", incomplete, err)
	}
	got := row.Strings()
	if len(got) != 2 || got[0] != "ab\ncd" || got[1] != "ef" {
		t.Fatalf("got %v", got)
	}
}

// =============================================================================
// Parser: scenario 4 — combine trailing columns on SSV
// =============================================================================

func TestParserCombineTrailingColumns(t *testing.T) {
	p := &Parser{
		IFS:                    Whitespace(),
		QuotingEnabled:         true,
		CombineTrailingColumns: true,
		HeaderLen:              2,
	}
	row, incomplete, err := p.Parse([]byte("x  y  z  w"))
	if err != nil || incomplete {
		t.Fatalf("unexpected: %v %v", incomplete, err)
	}
	got := row.Strings()
	if len(got) != 2 || got[0] != "x" || got[1] != "y  z  w" {
		t.Fatalf("got %v", got)
	}
}

func TestParserTrailingIFSProducesEmptyField(t *testing.T) {
	p := &Parser{IFS: Comma(), QuotingEnabled: true}
	row, _, err := p.Parse([]byte("a,b,"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := row.Strings()
	if len(got) != 3 || got[2] != "" {
		t.Fatalf("got %v, want trailing empty field", got)
	}
}

func TestParserDoubledQuoteEscape(t *testing.T) {
	p := &Parser{IFS: Comma(), QuotingEnabled: true}
	row, _, err := p.Parse([]byte(`"he said ""hi"""`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := row.Strings(); len(got) != 1 || got[0] != `he said "hi"` {
		t.Fatalf("got %v", got)
	}
}

func TestParserRegexIFS(t *testing.T) {
	p := &Parser{IFS: CompiledRegex(regexp.MustCompile(`\s*,\s*`)), QuotingEnabled: false}
	row, _, err := p.Parse([]byte("a , b ,c"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := row.Strings(); len(got) != 3 || got[1] != "b" {
		t.Fatalf("got %v", got)
	}
}

// =============================================================================
// Header classification
// =============================================================================

func TestClassifyFirstRow(t *testing.T) {
	header := RowFromStrings("name", "_id", "age")
	if !ClassifyFirstRow(header, HeaderAuto) {
		t.Fatalf("expected header classification")
	}
	notHeader := RowFromStrings("1", "2", "3")
	if ClassifyFirstRow(notHeader, HeaderAuto) {
		t.Fatalf("expected non-header classification")
	}
	if !ClassifyFirstRow(notHeader, HeaderForceOn) {
		t.Fatalf("HeaderForceOn should always classify as header")
	}
	if ClassifyFirstRow(header, HeaderForceOff) {
		t.Fatalf("HeaderForceOff should never classify as header")
	}
}
