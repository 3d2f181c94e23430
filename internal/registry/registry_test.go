package registry

import "testing"

func TestRegisterAnnouncement(t *testing.T) {
	r := New()
	name, start, end, ok := r.Register("s1", " hyperpwn regs\n\n")
	if !ok {
		t.Fatal("announcement line should register")
	}
	if name != "regs" {
		t.Errorf("name = %q, want %q", name, "regs")
	}
	if start != 0 || end != len(" hyperpwn regs\n\n") {
		t.Errorf("span = [%d,%d), want the whole announcement", start, end)
	}
	if got, ok := r.ViewName("s1"); !ok || got != "regs" {
		t.Errorf("ViewName = %q, %v", got, ok)
	}
}

func TestRegisterRejections(t *testing.T) {
	r := New()
	for _, text := range []string{
		"hyperpwn regs\n\n",   // no leading space
		" hyperpwn regs\n",    // no trailing blank line
		" hyperpwn \n\n",      // no name
		"plain output\n",      // unrelated
		" hyperpwner regs\n",  // wrong word
	} {
		if _, _, _, ok := r.Register("s1", text); ok {
			t.Errorf("Register(%q) matched, want rejection", text)
		}
	}
	if r.Len() != 0 {
		t.Errorf("registry length = %d, want 0", r.Len())
	}
}

func TestRegisterEmbeddedInChunk(t *testing.T) {
	r := New()
	text := "noise before\n hyperpwn stack\n\nnoise after"
	name, start, end, ok := r.Register("s1", text)
	if !ok || name != "stack" {
		t.Fatalf("Register = %q, %v", name, ok)
	}
	if text[:start] != "noise before\n" || text[end:] != "noise after" {
		t.Errorf("span [%d,%d) does not isolate the announcement", start, end)
	}
}

func TestFirstAnnouncementWins(t *testing.T) {
	r := New()
	r.Register("s1", " hyperpwn regs\n\n")
	name, _, _, ok := r.Register("s1", " hyperpwn stack\n\n")
	if !ok {
		t.Fatal("repeat announcement should still match for suppression")
	}
	if name != "regs" {
		t.Errorf("name = %q, want the first declaration to stick", name)
	}
}

func TestResolvePreservesRegistrationOrder(t *testing.T) {
	r := New()
	r.Register("s1", " hyperpwn reg\n\n")
	r.Register("s2", " hyperpwn registers\n\n")

	// Both names are substrings of this header; the earlier
	// registration must win deterministically.
	id, ok := r.Resolve("───[ registers ]───")
	if !ok || id != "s1" {
		t.Errorf("Resolve = %q, %v, want s1 (registered first)", id, ok)
	}

	if _, ok := r.Resolve("───[ stack ]───"); ok {
		t.Error("Resolve should fail for a header matching no view")
	}
}

func TestSessionsOrder(t *testing.T) {
	r := New()
	r.Register("b", " hyperpwn two\n\n")
	r.Register("a", " hyperpwn one\n\n")
	got := r.Sessions()
	if len(got) != 2 || got[0] != "b" || got[1] != "a" {
		t.Errorf("Sessions = %v, want registration order [b a]", got)
	}
}
