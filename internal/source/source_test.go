package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// recv waits for one chunk with a deadline so a broken tailer fails the
// test instead of hanging it.
func recv(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case data, ok := <-ch:
		if !ok {
			t.Fatal("chunk channel closed unexpectedly")
		}
		return data
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a chunk")
		return ""
	}
}

// collect drains chunks until the accumulated text contains want.
func collect(t *testing.T, ch <-chan string, want string) string {
	t.Helper()
	var got strings.Builder
	for !strings.Contains(got.String(), want) {
		got.WriteString(recv(t, ch))
	}
	return got.String()
}

func TestTailerFromStartReplaysExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gdb.log")
	if err := os.WriteFile(path, []byte("existing content\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	tl, err := NewTailer(path, true)
	if err != nil {
		t.Fatalf("NewTailer: %v", err)
	}
	defer tl.Close()

	if got := collect(t, tl.Chunks(), "existing content\n"); !strings.HasPrefix(got, "existing") {
		t.Errorf("replayed = %q", got)
	}
}

func TestTailerFollowsAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gdb.log")
	if err := os.WriteFile(path, []byte("old\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	tl, err := NewTailer(path, false)
	if err != nil {
		t.Fatalf("NewTailer: %v", err)
	}
	defer tl.Close()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("fresh line\n"); err != nil {
		t.Fatal(err)
	}
	f.Close()

	got := collect(t, tl.Chunks(), "fresh line\n")
	if strings.Contains(got, "old") {
		t.Errorf("tailer without fromStart replayed old content: %q", got)
	}
}

func TestTailerFollowsRecreatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gdb.log")
	if err := os.WriteFile(path, []byte("first run\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	tl, err := NewTailer(path, true)
	if err != nil {
		t.Fatalf("NewTailer: %v", err)
	}
	defer tl.Close()
	collect(t, tl.Chunks(), "first run\n")

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("second run\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got := collect(t, tl.Chunks(), "second run\n")
	if !strings.Contains(got, "second run\n") {
		t.Errorf("rotated file not followed: %q", got)
	}
}

func TestTailerCloseStopsChannel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gdb.log")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	tl, err := NewTailer(path, false)
	if err != nil {
		t.Fatalf("NewTailer: %v", err)
	}
	tl.Close()

	select {
	case _, ok := <-tl.Chunks():
		if ok {
			t.Error("expected channel close after Close")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("channel did not close")
	}
}

func TestTailerMissingFile(t *testing.T) {
	_, err := NewTailer(filepath.Join(t.TempDir(), "absent.log"), false)
	if err == nil {
		t.Fatal("expected error for a missing transcript")
	}
}

func TestReadChunksDeliversEverything(t *testing.T) {
	ch := ReadChunks(strings.NewReader("some piped data"))
	var got strings.Builder
	for chunk := range ch {
		got.WriteString(chunk)
	}
	if got.String() != "some piped data" {
		t.Errorf("got %q", got.String())
	}
}
