package writer

import (
	"fmt"
	"math"
	"regexp"

	"github.com/fatih/color"
)

var ansiSequenceRE = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// displayWidth is the ANSI-stripped byte length used for pretty
// alignment; this package does not attempt Unicode-aware column
// widths beyond stripping escape sequences, per spec.md's Non-goals.
func displayWidth(field []byte) int {
	return len(ansiSequenceRE.ReplaceAll(field, nil))
}

// rainbowColor computes a deterministic HSV→RGB color for a column
// index: hue steps by 0.647 (golden-angle-ish spacing so adjacent
// columns never look similar), saturation 0.3, value 1.0.
func rainbowColor(index int) (r, g, b int) {
	h := math.Mod(float64(index)*0.647, 1.0)
	return hsvToRGB(h, 0.3, 1.0)
}

func hsvToRGB(h, s, v float64) (int, int, int) {
	i := math.Floor(h * 6)
	f := h*6 - i
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)

	var r, g, b float64
	switch int(i) % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}
	return int(r * 255), int(g * 255), int(b * 255)
}

// styleRainbow wraps cell in a 24-bit ANSI color keyed on colIndex.
// dark, when true, scales each channel to two thirds; styleRainbowCell
// always passes false.
func styleRainbow(cell []byte, colIndex int, dark bool) []byte {
	r, g, b := rainbowColor(colIndex)
	if dark {
		r, g, b = r*2/3, g*2/3, b*2/3
	}
	return []byte(fmt.Sprintf("\x1b[38;2;%d;%d;%dm%s\x1b[0m", r, g, b, cell))
}

func (w *Writer) styleRainbowCell(cell []byte, colIndex int) []byte {
	if !w.cfg.ColourEnabled || !w.cfg.RainbowColumns {
		return cell
	}
	return styleRainbow(cell, colIndex, false)
}

// styleHeaderCell applies the default bold+underline header styling,
// plus an optional 256-color background (default grayscale 237).
func (w *Writer) styleHeaderCell(cell []byte) []byte {
	if !w.cfg.ColourEnabled {
		return cell
	}
	styled := color.New(color.Bold, color.Underline).Sprint(string(cell))
	if w.cfg.HeaderBgColour > 0 {
		styled = fmt.Sprintf("\x1b[48;5;%dm%s\x1b[0m", w.cfg.HeaderBgColour, styled)
	}
	return []byte(styled)
}

// styleSeparatorRule dims a horizontal rule line.
func (w *Writer) styleSeparatorRule(line string) string {
	if !w.cfg.ColourEnabled {
		return line
	}
	return color.New(color.Faint).Sprint(line)
}

const defaultHeaderBgColour = 237
