// Package watch notices edits made to the data file outside the server, such
// as a hand edit or a cron job running dashctl, and reports them.
package watch

import (
	"crypto/sha256"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/andocmdo/eink-display-control-panel/log"
)

var logger = log.GetLogger("Watch")

// ChangeHandler is called after the watched file settles with new content
type ChangeHandler func(path string)

// Watcher watches a single file through its parent directory, so atomic
// rename-over saves are seen
type Watcher struct {
	path      string
	watcher   *fsnotify.Watcher
	debouncer *debouncer
	onChange  ChangeHandler

	mu      sync.Mutex
	lastSum [sha256.Size]byte

	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewWatcher creates a watcher for path
func NewWatcher(path string, delay time.Duration) *Watcher {
	if delay <= 0 {
		delay = DefaultDebounceDelay
	}
	w := &Watcher{
		path:     filepath.Clean(path),
		stopChan: make(chan struct{}),
	}
	w.debouncer = newDebouncer(delay, w.process)
	return w
}

// SetChangeHandler sets the callback for content changes
func (w *Watcher) SetChangeHandler(handler ChangeHandler) {
	w.onChange = handler
}

// Start begins watching. The parent directory must exist.
func (w *Watcher) Start() error {
	var err error
	w.watcher, err = fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		w.watcher.Close()
		return err
	}

	// Baseline so the first event only counts if content differs
	w.changed()

	w.wg.Add(1)
	go w.eventLoop()

	logger.Info().Str("path", w.path).Msg("watching data file")
	return nil
}

// Stop stops watching and waits for the event loop to exit
func (w *Watcher) Stop() {
	w.debouncer.Stop()
	close(w.stopChan)
	if w.watcher != nil {
		w.watcher.Close()
	}
	w.wg.Wait()
}

func (w *Watcher) eventLoop() {
	defer w.wg.Done()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Error().Err(err).Msg("watcher error")

		case <-w.stopChan:
			return
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
		return
	}
	w.debouncer.Queue(w.path)
}

func (w *Watcher) process(path string) {
	if !w.changed() {
		return
	}
	logger.Debug().Str("path", path).Msg("data file changed")
	if w.onChange != nil {
		w.onChange(path)
	}
}

// changed reports whether the file content differs from the last check. A
// missing file hashes as empty.
func (w *Watcher) changed() bool {
	data, err := os.ReadFile(w.path)
	if err != nil && !os.IsNotExist(err) {
		logger.Warn().Err(err).Str("path", w.path).Msg("failed to read data file")
		return false
	}
	sum := sha256.Sum256(data)

	w.mu.Lock()
	defer w.mu.Unlock()
	if sum == w.lastSum {
		return false
	}
	w.lastSum = sum
	return true
}
