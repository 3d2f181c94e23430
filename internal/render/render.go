// Package render formats captured context segments for a terminal pane.
//
// Width is always measured in display cells: wide runes count as two
// cells, zero-width runes as none, and SGR escape sequences as none.
package render

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Control sequences bundled with emitted content.
const (
	// ClearScreen erases the pane and homes the cursor before a repaint.
	ClearScreen = "\x1b[2J\x1b[H"
	// HideCursor suppresses the cursor in panes that only display replays.
	HideCursor = "\x1b[?25l"
)

// DefaultTabStop is the conventional terminal tab stop width.
const DefaultTabStop = 8

// ExpandTabs replaces each tab in line with spaces up to the next
// multiple-of-stop column. The column position is tracked in display
// cells so tabs after wide runes or SGR sequences land correctly.
func ExpandTabs(line string, stop int) string {
	if stop <= 0 {
		stop = DefaultTabStop
	}
	if !strings.ContainsRune(line, '\t') {
		return line
	}
	var b strings.Builder
	col := 0
	start := 0
	for i := 0; i < len(line); i++ {
		if line[i] != '\t' {
			continue
		}
		seg := line[start:i]
		b.WriteString(seg)
		col += ansi.StringWidth(seg)
		pad := stop - col%stop
		b.WriteString(strings.Repeat(" ", pad))
		col += pad
		start = i + 1
	}
	b.WriteString(line[start:])
	return b.String()
}

// Line expands tabs in line and truncates it to columns cells. Lines are
// never wrapped. A non-positive columns leaves the expanded line untouched.
func Line(line string, columns, stop int) string {
	expanded := ExpandTabs(line, stop)
	if columns <= 0 {
		return expanded
	}
	return ansi.Truncate(expanded, columns, "")
}

// Segment renders a captured segment for a pane of the given width: every
// line is tab-expanded and truncated, and the result carries a
// clear-screen plus hide-cursor prefix so the pane repaints in place.
func Segment(content string, columns, stop int) string {
	lines := strings.Split(content, "\n")
	for i, l := range lines {
		lines[i] = Line(strings.TrimSuffix(l, "\r"), columns, stop)
	}
	return ClearScreen + HideCursor + strings.Join(lines, "\r\n")
}
