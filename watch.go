package crumbshare

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// StoreChange reports that a watched cookie store was written.
type StoreChange struct {
	Path string
	At   time.Time
}

// StoreWatcher watches one browser cookie store for writes so callers can
// re-run drift checks. Browsers write the SQLite file and its -wal/-shm
// sidecars in bursts, so changes are debounced into a single event.
type StoreWatcher struct {
	fsWatcher *fsnotify.Watcher
	storePath string
	debounce  time.Duration

	events chan StoreChange
	errors chan error
	done   chan struct{}
	wg     sync.WaitGroup
}

// NewStoreWatcher prepares a watcher for the store at path. A zero
// debounce defaults to one second.
func NewStoreWatcher(path string, debounce time.Duration) (*StoreWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = time.Second
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &StoreWatcher{
		fsWatcher: fsWatcher,
		storePath: abs,
		debounce:  debounce,
		events:    make(chan StoreChange, 16),
		errors:    make(chan error, 4),
		done:      make(chan struct{}),
	}, nil
}

// Events returns the channel of debounced store changes.
func (w *StoreWatcher) Events() <-chan StoreChange {
	return w.events
}

// Errors returns the channel of watcher errors.
func (w *StoreWatcher) Errors() <-chan error {
	return w.errors
}

// Start begins watching. The store's directory is watched rather than the
// file itself: browsers replace the file on compaction, which would drop
// a direct file watch.
func (w *StoreWatcher) Start() error {
	if err := w.fsWatcher.Add(filepath.Dir(w.storePath)); err != nil {
		return err
	}
	w.wg.Add(1)
	go w.loop()
	return nil
}

// Stop shuts the watcher down and closes both channels.
func (w *StoreWatcher) Stop() error {
	close(w.done)
	err := w.fsWatcher.Close()
	w.wg.Wait()
	close(w.events)
	close(w.errors)
	return err
}

func (w *StoreWatcher) loop() {
	defer w.wg.Done()

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return

		case ev, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !w.tracksFile(ev.Name) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
				continue
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)

		case <-timerC:
			timer = nil
			timerC = nil
			select {
			case w.events <- StoreChange{Path: w.storePath, At: timeNow()}:
			default:
				// Receiver is behind; the next write re-arms the timer.
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			if errors.Is(err, fsnotify.ErrClosed) {
				return
			}
			select {
			case w.errors <- err:
			default:
			}
		}
	}
}

func (w *StoreWatcher) tracksFile(name string) bool {
	base := filepath.Base(name)
	want := filepath.Base(w.storePath)
	switch base {
	case want, want + "-wal", want + "-shm", want + "-journal":
		return true
	}
	return false
}
