package pexec

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
)

const progressBarWidth = 40

// minVTEVersionForOSC9 gates OSC 9;4 progress reporting to terminals
// new enough to support it (VTE-based terminals report their version
// via $VTE_VERSION).
const minVTEVersionForOSC9 = 7900

// RenderBar composes succeeded/failed/running/queued into a
// fixed-width colored bar. Each segment's width is rounded from its
// proportion of total, then the rounding error is corrected onto the
// largest segment so the bar always sums to exactly progressBarWidth.
func RenderBar(succeeded, failed, running, queued int) string {
	return RenderBarWidth(progressBarWidth, succeeded, failed, running, queued)
}

// RenderBarWidth is RenderBar with an explicit bar width, used when the
// caller has sized the bar against the terminal's actual column count
// (see Engine.renderProgress, which queries github.com/olekukonko/ts).
func RenderBarWidth(width, succeeded, failed, running, queued int) string {
	if width <= 0 {
		width = progressBarWidth
	}
	total := succeeded + failed + running + queued
	if total == 0 {
		return strings.Repeat(" ", width)
	}

	widths := proportionalWidths(width, succeeded, failed, running, queued)

	var b strings.Builder
	b.WriteString(color.New(color.FgGreen).Sprint(strings.Repeat("=", widths[0])))
	b.WriteString(color.New(color.FgRed).Sprint(strings.Repeat("=", widths[1])))
	b.WriteString(color.New(color.FgYellow).Sprint(strings.Repeat("=", widths[2])))
	b.WriteString(strings.Repeat(" ", widths[3]))
	return b.String()
}

// proportionalWidths rounds each count's share of width and then
// corrects the remainder onto the segment with the largest count, so
// the returned widths always sum to exactly width.
func proportionalWidths(width int, counts ...int) []int {
	total := 0
	for _, c := range counts {
		total += c
	}
	widths := make([]int, len(counts))
	if total == 0 {
		return widths
	}
	sum := 0
	maxIdx := 0
	for i, c := range counts {
		widths[i] = (c*width + total/2) / total
		sum += widths[i]
		if c > counts[maxIdx] {
			maxIdx = i
		}
	}
	widths[maxIdx] += width - sum
	if widths[maxIdx] < 0 {
		widths[maxIdx] = 0
	}
	return widths
}

// FormatETA estimates remaining time from mean child runtime, the
// job limit, and how many rows remain (running + queued). "??:??" is
// reported whenever nothing is queued, some job is running and a
// max runtime has been observed; the running jobs' elapsed time is
// not compared with that max. It is also reported while the mean
// runtime or the job limit is not positive.
func FormatETA(mean, max time.Duration, running, queued, jobLimit int) string {
	if queued == 0 && running > 0 && max > 0 {
		return "??:??"
	}
	if mean <= 0 || jobLimit <= 0 {
		return "??:??"
	}
	remaining := running + queued
	batches := (remaining + jobLimit - 1) / jobLimit
	eta := mean * time.Duration(batches)
	return formatDuration(eta)
}

func formatDuration(d time.Duration) string {
	total := int(d.Seconds())
	mins := total / 60
	secs := total % 60
	return fmt.Sprintf("%02d:%02d", mins, secs)
}

// OSC9Progress formats an OSC 9;4 progress escape sequence: state 1
// with a percentage for in-progress, state 0 to clear.
func OSC9Progress(percent int) string {
	return fmt.Sprintf("\x1b]9;4;1;%d\x1b\\", percent)
}

// OSC9Clear clears any previously emitted OSC 9;4 progress indicator.
func OSC9Clear() string {
	return "\x1b]9;4;0;0\x1b\\"
}

// SupportsOSC9 reports whether vteVersion (parsed from $VTE_VERSION,
// 0 if unset/unparseable) is new enough to support OSC 9;4.
func SupportsOSC9(vteVersion int) bool {
	return vteVersion >= minVTEVersionForOSC9
}
