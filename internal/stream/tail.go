package stream

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultPollInterval backstops fsnotify on filesystems that drop or batch
// write events (network mounts, some container overlays).
const DefaultPollInterval = 200 * time.Millisecond

// Tail follows a file and writes appended data to a Stream. It is used to
// turn a tmux pipe-pane output file into a live command stream.
type Tail struct {
	path    string
	dst     *Stream
	watcher *fsnotify.Watcher
	poll    time.Duration

	mu     sync.Mutex
	offset int64

	stop     chan struct{}
	stopOnce sync.Once
	finished chan struct{}
}

// FollowInterval starts tailing path into dst with the given poll backstop
// interval. The file does not need to exist yet; the parent directory is
// watched and data is picked up on creation.
func FollowInterval(path string, dst *Stream, poll time.Duration) (*Tail, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving tail path: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	// Watch the directory: the file may not exist yet, and some editors
	// replace files instead of appending.
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	t := &Tail{
		path:     abs,
		dst:      dst,
		watcher:  w,
		poll:     poll,
		stop:     make(chan struct{}),
		finished: make(chan struct{}),
	}
	go t.loop()
	return t, nil
}

func (t *Tail) loop() {
	defer close(t.finished)
	defer t.watcher.Close()

	ticker := time.NewTicker(t.poll)
	defer ticker.Stop()

	t.drain()
	for {
		select {
		case <-t.stop:
			t.drain()
			return
		case ev, ok := <-t.watcher.Events:
			if !ok {
				return
			}
			if ev.Name == t.path && (ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create)) {
				t.drain()
			}
		case _, ok := <-t.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors degrade to polling.
		case <-ticker.C:
			t.drain()
		}
	}
}

// drain reads from the current offset to EOF and forwards the data.
func (t *Tail) drain() {
	t.mu.Lock()
	defer t.mu.Unlock()

	f, err := os.Open(t.path)
	if err != nil {
		return
	}
	defer f.Close()

	if _, err := f.Seek(t.offset, io.SeekStart); err != nil {
		return
	}
	data, err := io.ReadAll(f)
	if err != nil || len(data) == 0 {
		return
	}
	if _, err := t.dst.Write(data); err != nil {
		return
	}
	t.offset += int64(len(data))
}

// Stop performs a final drain and releases the watcher. It does not close
// the destination stream; ownership of the stream stays with the caller.
func (t *Tail) Stop() {
	t.stopOnce.Do(func() { close(t.stop) })
	<-t.finished
}
