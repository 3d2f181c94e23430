// Package source feeds raw stream chunks from transcript files or pipes.
//
// Chunks carry no framing guarantees: a read may split a line, an escape
// sequence, or a block marker anywhere. The downstream detector is built
// to tolerate that.
package source

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

const readSize = 32 * 1024

// Tailer follows appends to a transcript file, like tail -f, delivering
// each read as one chunk. It watches the parent directory and reopens
// the path when a new file appears there, so a transcript recreated by
// rotation is followed from its beginning. The file must exist when the
// tailer starts.
type Tailer struct {
	path    string
	watcher *fsnotify.Watcher
	chunks  chan string
	done    chan struct{}

	mu sync.Mutex // guards f against Close racing the read loop
	f  *os.File
}

// NewTailer opens path and starts following it. With fromStart the
// existing content is replayed first; otherwise reading begins at the
// current end of file.
func NewTailer(path string, fromStart bool) (*Tailer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening transcript: %w", err)
	}
	if !fromStart {
		if _, err := f.Seek(0, io.SeekEnd); err != nil {
			f.Close()
			return nil, fmt.Errorf("seeking transcript: %w", err)
		}
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		f.Close()
		return nil, err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		f.Close()
		return nil, fmt.Errorf("watching transcript directory: %w", err)
	}
	t := &Tailer{
		path:    path,
		f:       f,
		watcher: w,
		chunks:  make(chan string, 8),
		done:    make(chan struct{}),
	}
	go t.loop()
	return t, nil
}

// Chunks returns the channel of appended data. It is closed when the
// tailer stops.
func (t *Tailer) Chunks() <-chan string { return t.chunks }

// Close stops the tailer and releases the file and watcher.
func (t *Tailer) Close() error {
	close(t.done)
	err := t.watcher.Close()
	t.mu.Lock()
	cerr := t.f.Close()
	t.mu.Unlock()
	if err == nil {
		err = cerr
	}
	return err
}

func (t *Tailer) loop() {
	defer close(t.chunks)
	if !t.drain() {
		return
	}
	for {
		select {
		case <-t.done:
			return
		case ev, ok := <-t.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != filepath.Base(t.path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if ev.Op&fsnotify.Create != 0 {
				t.reopen()
			}
			if !t.drain() {
				return
			}
		case _, ok := <-t.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// reopen switches to a freshly created file at the watched path, as
// after rotation, and reads it from its beginning. Failure to open
// leaves the current handle in place.
func (t *Tailer) reopen() {
	f, err := os.Open(t.path)
	if err != nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	select {
	case <-t.done:
		f.Close()
		return
	default:
	}
	t.f.Close()
	t.f = f
}

// drain reads everything currently available and reports whether the
// tailer should keep running.
func (t *Tailer) drain() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	buf := make([]byte, readSize)
	for {
		n, err := t.f.Read(buf)
		if n > 0 {
			select {
			case t.chunks <- string(buf[:n]):
			case <-t.done:
				return false
			}
		}
		if err == io.EOF {
			return true
		}
		if err != nil {
			return false
		}
	}
}

// ReadChunks reads r until EOF, delivering each read as one chunk. It is
// the pipe-mode counterpart of Tailer.
func ReadChunks(r io.Reader) <-chan string {
	ch := make(chan string, 8)
	go func() {
		defer close(ch)
		buf := make([]byte, readSize)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				ch <- string(buf[:n])
			}
			if err != nil {
				return
			}
		}
	}()
	return ch
}
