// Package history keeps per-session replay histories and the single
// cursor shared across all of them.
package history

// Diverged is the sentinel LengthAgreement returns when tracked sessions
// disagree on history length (or nothing is tracked yet). Navigation
// treats it as "do nothing", not as an error.
const Diverged = -1

// Segment is one captured snapshot in a session's history.
type Segment struct {
	SessionID string
	Content   string
	Index     int
}

// Store maps session ids to append-only segment sequences. A single
// cursor indexes all sequences at once; it is only meaningful while
// every tracked session has the same history length.
//
// Store is not safe for concurrent use. The event loop that owns it is
// its only writer.
type Store struct {
	limit    int
	segments map[string][]Segment
	order    []string
	cursor   int
}

// NewStore returns an empty store. A positive limit caps each session's
// history, evicting the oldest segment on overflow; zero means
// unbounded.
func NewStore(limit int) *Store {
	return &Store{
		limit:    limit,
		segments: make(map[string][]Segment),
		cursor:   -1,
	}
}

// Track begins an empty history for a session. Tracking an already
// tracked session is a no-op.
func (s *Store) Track(sessionID string) {
	if _, ok := s.segments[sessionID]; ok {
		return
	}
	s.segments[sessionID] = nil
	s.order = append(s.order, sessionID)
}

// Append pushes content onto a session's history and jumps the shared
// cursor to that session's new last index, so every append lands the
// user on "latest" regardless of what the other sessions hold.
func (s *Store) Append(sessionID, content string) Segment {
	s.Track(sessionID)
	seq := s.segments[sessionID]
	seg := Segment{SessionID: sessionID, Content: content, Index: len(seq)}
	seq = append(seq, seg)
	if s.limit > 0 && len(seq) > s.limit {
		seq = seq[1:]
		for i := range seq {
			seq[i].Index = i
		}
		seg = seq[len(seq)-1]
	}
	s.segments[sessionID] = seq
	s.cursor = len(seq) - 1
	return seg
}

// LengthAgreement returns the common history length when every tracked
// session agrees, else Diverged.
func (s *Store) LengthAgreement() int {
	if len(s.order) == 0 {
		return Diverged
	}
	n := len(s.segments[s.order[0]])
	for _, id := range s.order[1:] {
		if len(s.segments[id]) != n {
			return Diverged
		}
	}
	return n
}

// Prev moves the cursor one step back. It reports whether the cursor
// moved; at index 0, or whenever histories have diverged, it does not.
func (s *Store) Prev() bool {
	if s.LengthAgreement() == Diverged || s.cursor <= 0 {
		return false
	}
	s.cursor--
	return true
}

// Next moves the cursor one step forward, refusing at the last index or
// on diverged histories.
func (s *Store) Next() bool {
	n := s.LengthAgreement()
	if n == Diverged || s.cursor < 0 || s.cursor >= n-1 {
		return false
	}
	s.cursor++
	return true
}

// Last jumps the cursor to the newest index. It reports whether the
// cursor moved.
func (s *Store) Last() bool {
	n := s.LengthAgreement()
	if n == Diverged || n == 0 || s.cursor == n-1 {
		return false
	}
	s.cursor = n - 1
	return true
}

// Cursor returns the shared cursor, -1 before the first append.
func (s *Store) Cursor() int { return s.cursor }

// At returns a session's segment content at the shared cursor. It
// reports false for untracked sessions, an unset cursor, or a cursor
// beyond that session's history.
func (s *Store) At(sessionID string) (string, bool) {
	seq, ok := s.segments[sessionID]
	if !ok || s.cursor < 0 || s.cursor >= len(seq) {
		return "", false
	}
	return seq[s.cursor].Content, true
}

// Latest returns a session's newest segment content, if it has any.
func (s *Store) Latest(sessionID string) (string, bool) {
	seq := s.segments[sessionID]
	if len(seq) == 0 {
		return "", false
	}
	return seq[len(seq)-1].Content, true
}

// Len returns the history length of one session.
func (s *Store) Len(sessionID string) int { return len(s.segments[sessionID]) }

// Sessions returns all tracked session ids in tracking order.
func (s *Store) Sessions() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
