package watch

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerCoalesces(t *testing.T) {
	var fired atomic.Int32
	d := newDebouncer(30*time.Millisecond, func(string) { fired.Add(1) })

	for i := 0; i < 5; i++ {
		d.Queue("data.json")
		time.Sleep(5 * time.Millisecond)
	}
	if d.PendingCount() != 1 {
		t.Errorf("expected one pending path, got %d", d.PendingCount())
	}

	time.Sleep(150 * time.Millisecond)
	if n := fired.Load(); n != 1 {
		t.Errorf("expected a single callback, got %d", n)
	}
}

func TestDebouncerStop(t *testing.T) {
	var fired atomic.Int32
	d := newDebouncer(20*time.Millisecond, func(string) { fired.Add(1) })

	d.Queue("data.json")
	d.Stop()
	if d.Queue("data.json") {
		t.Error("Queue should refuse events after Stop")
	}

	time.Sleep(80 * time.Millisecond)
	if n := fired.Load(); n != 0 {
		t.Errorf("expected no callback after Stop, got %d", n)
	}
}

func TestWatcherReportsContentChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")
	if err := os.WriteFile(path, []byte(`{"weather":[],"stocks":[],"todos":[]}`), 0644); err != nil {
		t.Fatal(err)
	}

	changes := make(chan string, 10)
	w := NewWatcher(path, 20*time.Millisecond)
	w.SetChangeHandler(func(p string) { changes <- p })
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	// Unrelated files in the directory are ignored
	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	// Replace the file the way the store does
	tmp := filepath.Join(dir, ".data.json.tmp")
	if err := os.WriteFile(tmp, []byte(`{"weather":[],"stocks":[],"todos":[{"id":"a","text":""}]}`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-changes:
		if got != path {
			t.Errorf("change reported for %q, want %q", got, path)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}

	// Rewriting identical content is not a change
	data, _ := os.ReadFile(path)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	select {
	case got := <-changes:
		t.Errorf("unexpected change for identical content: %q", got)
	case <-time.After(200 * time.Millisecond):
	}
}
