// Package registry tracks which terminal session has claimed which
// debugger view name.
package registry

import (
	"regexp"
	"strings"
)

// announcePattern matches the one-time line a pane prints to claim a
// view: a single leading space, the literal word "hyperpwn", the view
// name, and a trailing blank line.
var announcePattern = regexp.MustCompile(`(?m)^ hyperpwn ([\w-]+)\r?\n\r?\n`)

// Registry is a lookup table from session id to declared view name. It
// preserves the order in which sessions announced themselves so that
// attribution is deterministic.
type Registry struct {
	names map[string]string
	order []string
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{names: make(map[string]string)}
}

// Register searches text for a view announcement. On a match it records
// the captured view name for the session and returns the name, the span
// [start, end) of the matched text within text, and true. A session's
// first announcement wins; repeat announcements still match (so the
// caller can suppress the line) but do not change the stored name.
func (r *Registry) Register(sessionID, text string) (name string, start, end int, ok bool) {
	loc := announcePattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return "", 0, 0, false
	}
	name = text[loc[2]:loc[3]]
	if _, seen := r.names[sessionID]; !seen {
		r.names[sessionID] = name
		r.order = append(r.order, sessionID)
	}
	return r.names[sessionID], loc[0], loc[1], true
}

// ViewName returns the declared view name for a session, if any.
func (r *Registry) ViewName(sessionID string) (string, bool) {
	name, ok := r.names[sessionID]
	return name, ok
}

// Sessions returns all registered session ids in registration order.
func (r *Registry) Sessions() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Resolve returns the first registered session, in registration order,
// whose declared view name appears as a substring of header.
func (r *Registry) Resolve(header string) (sessionID string, ok bool) {
	for _, id := range r.order {
		if strings.Contains(header, r.names[id]) {
			return id, true
		}
	}
	return "", false
}

// Len reports how many sessions have registered.
func (r *Registry) Len() int { return len(r.order) }
