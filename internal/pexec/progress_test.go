package pexec

import "testing"

func TestProportionalWidthsSumsToWidth(t *testing.T) {
	widths := proportionalWidths(40, 7, 1, 2, 3)
	sum := 0
	for _, w := range widths {
		sum += w
	}
	if sum != 40 {
		t.Fatalf("widths %v sum to %d, want 40", widths, sum)
	}
}

func TestProportionalWidthsAllZero(t *testing.T) {
	widths := proportionalWidths(40, 0, 0, 0, 0)
	for _, w := range widths {
		if w != 0 {
			t.Fatalf("expected all zero, got %v", widths)
		}
	}
}

func TestRenderBarEmptyIsBlank(t *testing.T) {
	bar := RenderBar(0, 0, 0, 0)
	if len(bar) != progressBarWidth {
		t.Fatalf("got length %d want %d", len(bar), progressBarWidth)
	}
}

func TestFormatETAUnknownWhenNoHistory(t *testing.T) {
	got := FormatETA(0, 0, 2, 0, 4)
	if got != "??:??" {
		t.Fatalf("got %q", got)
	}
}

func TestSupportsOSC9Threshold(t *testing.T) {
	if SupportsOSC9(7899) {
		t.Fatal("expected false below threshold")
	}
	if !SupportsOSC9(7900) {
		t.Fatal("expected true at threshold")
	}
}
