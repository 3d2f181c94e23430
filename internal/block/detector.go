// Package block detects debugger context blocks in a raw terminal stream
// and splits completed blocks into per-view sections.
package block

import (
	"regexp"
	"strings"
)

// startPattern opens a block: a line beginning with the word "legend:",
// allowing the single leading space and the "[ " prefix GEF and pwndbg
// variously print at the top of a context dump. The matched text itself
// is discarded.
var startPattern = regexp.MustCompile(`(?im)^ ?(?:\[ )?legend:`)

// endPattern closes a block: a line consisting solely of box-drawing
// rule characters, optionally wrapped in SGR sequences, ending in a
// line break.
var endPattern = regexp.MustCompile(`(?m)^(?:\x1b\[[0-9;]*m)*─+(?:\x1b\[[0-9;]*m)*\r?\n`)

// startPrefixes are the literal forms a start marker can take, used to
// hold back a chunk tail that might be a marker split across deliveries.
var startPrefixes = []string{" [ legend:", "[ legend:", " legend:", "legend:"}

type state int

const (
	idle state = iota
	accumulating
)

// Result is the outcome of feeding one chunk to a Detector. Passthrough
// and Rest are the portions of the stream the caller should still
// deliver downstream unchanged, in that order; Body is the completed
// block, present only when Complete is true.
type Result struct {
	Passthrough string
	Body        string
	Rest        string
	Complete    bool
}

// Detector is a two-state scanner over an ordered sequence of stream
// chunks. It is not safe for concurrent use; the caller must feed chunks
// from a single goroutine in arrival order.
//
// While a block is open every chunk is absorbed into the buffer and
// nothing is passed through; a block whose end marker never arrives
// therefore suppresses downstream output until the process ends.
type Detector struct {
	st      state
	buf     strings.Builder // block text accumulated since the start marker
	pend    string          // held-back tail that may be a partial start marker
	midline bool            // last delivered character was not a newline
}

// Feed consumes one chunk. Marker matching operates on cumulative state,
// so markers split across chunk boundaries are detected exactly as if
// the stream had arrived in one piece, and a marker-like fragment that
// does not begin a line never triggers.
func (d *Detector) Feed(chunk string) Result {
	if d.st == accumulating {
		d.buf.WriteString(chunk)
		return d.finish(d.tryClose(""))
	}

	data := d.pend + chunk
	d.pend = ""

	loc := d.findStart(data)
	if loc == nil {
		emit, held := splitHoldback(data, d.midline)
		d.pend = held
		return d.finish(Result{Passthrough: emit})
	}

	prefix := data[:loc[0]]
	d.st = accumulating
	d.buf.WriteString(data[loc[1]:])
	return d.finish(d.tryClose(prefix))
}

// Flush returns any held-back tail. Call it when the stream ends so a
// final fragment that looked like a partial start marker is not lost.
func (d *Detector) Flush() string {
	out := d.pend
	d.pend = ""
	return out
}

// Open reports whether a start marker has been seen without a matching
// end marker yet.
func (d *Detector) Open() bool { return d.st == accumulating }

// findStart locates an admissible start marker in data. A match at
// offset 0 only counts when the stream position is a line start; ^ in
// the pattern cannot know that a previous chunk ended mid-line.
func (d *Detector) findStart(data string) []int {
	for _, loc := range startPattern.FindAllStringIndex(data, -1) {
		if loc[0] == 0 && d.midline {
			continue
		}
		return loc
	}
	return nil
}

// tryClose searches the accumulated buffer for an end marker. If found,
// the block body is everything before it and the remainder after it
// resumes pass-through delivery.
func (d *Detector) tryClose(prefix string) Result {
	buffered := d.buf.String()
	loc := endPattern.FindStringIndex(buffered)
	if loc == nil {
		return Result{Passthrough: prefix}
	}
	d.st = idle
	d.buf.Reset()
	return Result{
		Passthrough: prefix,
		Body:        buffered[:loc[0]],
		Rest:        buffered[loc[1]:],
		Complete:    true,
	}
}

// finish records whether the last delivered character leaves the stream
// mid-line. The end marker consumes its own newline, so an empty Rest on
// a completed block still resets to a line start.
func (d *Detector) finish(r Result) Result {
	switch {
	case r.Rest != "":
		d.midline = r.Rest[len(r.Rest)-1] != '\n'
	case r.Complete:
		d.midline = false
	case r.Passthrough != "":
		d.midline = r.Passthrough[len(r.Passthrough)-1] != '\n'
	}
	return r
}

// splitHoldback splits data into an emittable prefix and a tail that
// must be retained because it could be the beginning of a start marker
// delivered across a chunk boundary. Only a tail sitting at a line start
// is held.
func splitHoldback(data string, midline bool) (emit, held string) {
	for _, marker := range startPrefixes {
		max := len(marker) - 1
		if max > len(data) {
			max = len(data)
		}
		for n := max; n > 0; n-- {
			tail := data[len(data)-n:]
			if !strings.EqualFold(tail, marker[:n]) {
				continue
			}
			cut := len(data) - n
			if cut == 0 && midline {
				continue
			}
			if cut == 0 || data[cut-1] == '\n' {
				return data[:cut], data[cut:]
			}
		}
	}
	return data, ""
}
