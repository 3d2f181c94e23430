// Package engine wires the block detector, splitter, registry, history
// store and renderer into one event-driven pipeline.
//
// The engine is deliberately single-threaded: the host must serialize
// OnAnnouncement, OnData, OnResize and OnNavigate onto one goroutine and
// let each call run to completion. Under that discipline no internal
// locking is needed. The only concurrency the engine introduces itself
// is the fire-and-forget layout request.
//
// The pipeline fails open. Malformed blocks buffer silently, segments
// that match no registered view rejoin the stream verbatim, and
// navigation on diverged histories does nothing; suppressing live
// debugger output would be worse than imperfect annotation.
package engine

import (
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/pwnmux/pwnmux/internal/block"
	"github.com/pwnmux/pwnmux/internal/history"
	"github.com/pwnmux/pwnmux/internal/registry"
	"github.com/pwnmux/pwnmux/internal/render"
)

// Direction selects a replay navigation move.
type Direction int

const (
	Previous Direction = iota
	Next
	Last
)

// Sink receives rendered replay output for a session's pane.
type Sink interface {
	WriteSession(id string, data string)
}

// LayoutRequester is asked, at most once per session, to install and
// activate a named pane layout when a supported debugger is recognized
// in the stream. Implementations must tolerate being called from a
// separate goroutine and must not fail loudly.
type LayoutRequester interface {
	RequestLayout(name string)
}

// layoutTriggers maps a literal banner substring, searched for in
// style-stripped pass-through output, to the layout it activates.
var layoutTriggers = []struct {
	marker string
	layout string
}{
	{"GEF for linux ready", "gef"},
	{"pwndbg: loaded", "pwndbg"},
}

// Options configures a new Engine. Sink is required; Layouts may be nil
// to disable automatic layout activation.
type Options struct {
	Sink         Sink
	Layouts      LayoutRequester
	HistoryLimit int
	TabStop      int
	// DefaultColumns is the width used for sessions that have not
	// reported a resize yet.
	DefaultColumns int
}

// Engine owns all mutable pipeline state: one detector per source
// stream, the view registry, and the history store with its shared
// cursor.
type Engine struct {
	sink      Sink
	layouts   LayoutRequester
	tabStop   int
	defCols   int
	registry  *registry.Registry
	store     *history.Store
	detectors map[string]*block.Detector
	columns   map[string]int
	triggered map[string]bool
}

// New constructs an engine. Each test or host gets its own instance;
// nothing is shared at package level.
func New(opts Options) *Engine {
	cols := opts.DefaultColumns
	if cols <= 0 {
		cols = 80
	}
	stop := opts.TabStop
	if stop <= 0 {
		stop = render.DefaultTabStop
	}
	return &Engine{
		sink:      opts.Sink,
		layouts:   opts.Layouts,
		tabStop:   stop,
		defCols:   cols,
		registry:  registry.New(),
		store:     history.NewStore(opts.HistoryLimit),
		detectors: make(map[string]*block.Detector),
		columns:   make(map[string]int),
		triggered: make(map[string]bool),
	}
}

// OnAnnouncement tests text for the view registration line. On a match
// the session's view name is recorded, history tracking begins, and
// rewritten replaces everything up to and including the announcement
// with a cursor-hide sequence so the claim line never reaches the pane.
// rest is the text after the announcement; the host should feed it to
// OnData. ok is false when text is not an announcement, in which case
// the whole chunk belongs to OnData.
func (e *Engine) OnAnnouncement(id, text string) (rewritten, rest string, ok bool) {
	_, start, end, ok := e.registry.Register(id, text)
	if !ok {
		return "", "", false
	}
	e.store.Track(id)
	return text[:start] + render.HideCursor, text[end:], true
}

// OnData consumes one chunk of a session's raw stream, in arrival order,
// and returns the text the host should deliver downstream instead. The
// return is empty while a block is accumulating; completed blocks are
// split, attributed and appended to history, after which every session's
// pane is repainted with its newest segment.
func (e *Engine) OnData(id string, chunk string) string {
	det := e.detectors[id]
	if det == nil {
		det = &block.Detector{}
		e.detectors[id] = det
	}

	res := det.Feed(chunk)
	out := res.Passthrough
	if res.Complete {
		leading, pairs := block.Split(res.Body)
		out += leading
		appended := false
		for _, p := range pairs {
			sid, matched := e.registry.Resolve(p.Header)
			if !matched {
				out += p.Header + p.Content
				continue
			}
			e.store.Append(sid, block.TrimBorder(p.Content))
			appended = true
		}
		out += res.Rest
		if appended {
			e.emitLatest()
		}
	}

	e.checkLayoutTrigger(id, out)
	return out
}

// Flush releases the session's held-back stream tail. Hosts call it
// when a source reaches end of stream so a final fragment that looked
// like a partial start marker is still delivered. A session inside an
// unterminated block stays suppressed.
func (e *Engine) Flush(id string) string {
	det := e.detectors[id]
	if det == nil {
		return ""
	}
	return det.Flush()
}

// OnResize records a session's new width and repaints that session at
// the current cursor. Sessions with no captured history stay silent.
func (e *Engine) OnResize(id string, columns int) {
	if columns > 0 {
		e.columns[id] = columns
	}
	e.emitAt(id)
}

// OnNavigate moves the shared cursor and, when it actually moved,
// repaints every tracked session at the new position. Diverged
// histories and out-of-range moves are silent no-ops.
func (e *Engine) OnNavigate(d Direction) {
	var moved bool
	switch d {
	case Previous:
		moved = e.store.Prev()
	case Next:
		moved = e.store.Next()
	case Last:
		moved = e.store.Last()
	}
	if !moved {
		return
	}
	for _, id := range e.store.Sessions() {
		e.emitAt(id)
	}
}

// ViewName exposes a session's declared view name to the host, which
// owns all visual chrome built from it.
func (e *Engine) ViewName(id string) (string, bool) {
	return e.registry.ViewName(id)
}

// Cursor returns the shared replay cursor, -1 before the first capture.
func (e *Engine) Cursor() int { return e.store.Cursor() }

// HistoryLen returns one session's history length.
func (e *Engine) HistoryLen(id string) int { return e.store.Len(id) }

// Sessions returns the tracked session ids in registration order.
func (e *Engine) Sessions() []string { return e.store.Sessions() }

// emitLatest repaints every tracked session with its newest segment, so
// all panes show the freshest snapshot the instant a block lands.
func (e *Engine) emitLatest() {
	for _, id := range e.store.Sessions() {
		content, ok := e.store.Latest(id)
		if !ok {
			continue
		}
		e.emit(id, content)
	}
}

// emitAt repaints one session at the shared cursor, silently doing
// nothing when that session has nothing there.
func (e *Engine) emitAt(id string) {
	content, ok := e.store.At(id)
	if !ok {
		return
	}
	e.emit(id, content)
}

func (e *Engine) emit(id, content string) {
	cols, ok := e.columns[id]
	if !ok {
		cols = e.defCols
	}
	e.sink.WriteSession(id, render.Segment(content, cols, e.tabStop))
}

// checkLayoutTrigger scans style-stripped pass-through output for a
// debugger banner and dispatches the matching layout request without
// waiting for it. Each session triggers at most once.
func (e *Engine) checkLayoutTrigger(id, out string) {
	if e.layouts == nil || e.triggered[id] || out == "" {
		return
	}
	clean := ansi.Strip(out)
	for _, t := range layoutTriggers {
		if strings.Contains(clean, t.marker) {
			e.triggered[id] = true
			go e.layouts.RequestLayout(t.layout)
			return
		}
	}
}
