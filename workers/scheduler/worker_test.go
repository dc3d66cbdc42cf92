package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/andocmdo/eink-display-control-panel/display"
	"github.com/andocmdo/eink-display-control-panel/refresh"
)

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (c *countingRefresher) RefreshAll(ctx context.Context) (*refresh.Result, *refresh.Result, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, nil, c.err
	}
	return &refresh.Result{Updated: 1}, &refresh.Result{Updated: 2}, nil
}

type countingSyncer struct {
	calls atomic.Int32
}

func (c *countingSyncer) Sync(ctx context.Context) (*display.Outcome, error) {
	c.calls.Add(1)
	return nil, &display.SyncError{Stage: display.StageNotConfigured, Err: errors.New("no device")}
}

func TestWorkerRunsEnabledJobs(t *testing.T) {
	r := &countingRefresher{}
	s := &countingSyncer{}
	w := NewWorker(Config{RefreshInterval: 10 * time.Millisecond}, r, s)

	w.Start()
	time.Sleep(65 * time.Millisecond)
	w.Stop()

	if n := r.calls.Load(); n < 2 {
		t.Errorf("expected several refresh ticks, got %d", n)
	}
	if n := s.calls.Load(); n != 0 {
		t.Errorf("sync is disabled, got %d calls", n)
	}
}

func TestWorkerKeepsTickingAfterFailures(t *testing.T) {
	r := &countingRefresher{err: errors.New("provider down")}
	s := &countingSyncer{}
	w := NewWorker(Config{RefreshInterval: 10 * time.Millisecond, SyncInterval: 10 * time.Millisecond}, r, s)

	w.Start()
	time.Sleep(65 * time.Millisecond)
	w.Stop()

	if r.calls.Load() < 2 || s.calls.Load() < 2 {
		t.Errorf("failed ticks should not stop the schedule: refresh=%d sync=%d", r.calls.Load(), s.calls.Load())
	}
}

func TestWorkerDisabled(t *testing.T) {
	r := &countingRefresher{}
	w := NewWorker(Config{}, r, &countingSyncer{})
	if w.Enabled() {
		t.Fatal("zero intervals should disable the worker")
	}

	w.Start()
	time.Sleep(20 * time.Millisecond)
	w.Stop()

	if n := r.calls.Load(); n != 0 {
		t.Errorf("expected no calls, got %d", n)
	}
}

func TestWorkerStopIsPrompt(t *testing.T) {
	w := NewWorker(Config{RefreshInterval: time.Hour}, &countingRefresher{}, nil)
	w.Start()

	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return")
	}
}
