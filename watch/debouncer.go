package watch

import (
	"sync"
	"sync/atomic"
	"time"
)

// DefaultDebounceDelay coalesces the burst of events an editor or an atomic
// rename produces for one save
const DefaultDebounceDelay = 150 * time.Millisecond

// debouncer runs onFire once per path after delay passes with no new events
// for that path
type debouncer struct {
	mu       sync.Mutex
	pending  map[string]*time.Timer
	delay    time.Duration
	onFire   func(path string)
	stopping atomic.Bool
}

func newDebouncer(delay time.Duration, onFire func(path string)) *debouncer {
	return &debouncer{
		pending: make(map[string]*time.Timer),
		delay:   delay,
		onFire:  onFire,
	}
}

// Queue schedules path, resetting the timer if it is already pending.
// Returns false once the debouncer is stopping.
func (d *debouncer) Queue(path string) bool {
	if d.stopping.Load() {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopping.Load() {
		return false
	}

	if t, ok := d.pending[path]; ok && t.Reset(d.delay) {
		return true
	}

	// Timer absent or already fired
	d.pending[path] = time.AfterFunc(d.delay, func() {
		d.fire(path)
	})
	return true
}

func (d *debouncer) fire(path string) {
	d.mu.Lock()
	_, ok := d.pending[path]
	delete(d.pending, path)
	d.mu.Unlock()

	if ok && !d.stopping.Load() {
		d.onFire(path)
	}
}

// Stop cancels pending timers. No callback runs after Stop returns, except
// one that had already started.
func (d *debouncer) Stop() {
	d.stopping.Store(true)

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, t := range d.pending {
		t.Stop()
	}
	d.pending = make(map[string]*time.Timer)
}

// PendingCount returns the number of queued paths (for testing)
func (d *debouncer) PendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
