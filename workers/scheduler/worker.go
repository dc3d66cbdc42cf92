// Package scheduler triggers value refreshes and display syncs on a fixed
// interval, for deployments without an external cron.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/andocmdo/eink-display-control-panel/display"
	"github.com/andocmdo/eink-display-control-panel/log"
	"github.com/andocmdo/eink-display-control-panel/refresh"
)

var logger = log.GetLogger("Scheduler")

// Refresher refreshes all tracked values
type Refresher interface {
	RefreshAll(ctx context.Context) (stocks, weather *refresh.Result, err error)
}

// Syncer pushes the dashboard to the device
type Syncer interface {
	Sync(ctx context.Context) (*display.Outcome, error)
}

// Config holds the tick intervals. Zero disables a job.
type Config struct {
	RefreshInterval time.Duration
	SyncInterval    time.Duration
}

// Worker runs each enabled job on its own ticker. A failed tick is logged
// and not retried until the next one.
type Worker struct {
	cfg       Config
	refresher Refresher
	syncer    Syncer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWorker creates a scheduler worker
func NewWorker(cfg Config, refresher Refresher, syncer Syncer) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		cfg:       cfg,
		refresher: refresher,
		syncer:    syncer,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Enabled reports whether any job is scheduled
func (w *Worker) Enabled() bool {
	return w.cfg.RefreshInterval > 0 || w.cfg.SyncInterval > 0
}

// Start launches the enabled jobs and returns immediately
func (w *Worker) Start() {
	if !w.Enabled() {
		logger.Info().Msg("scheduler disabled")
		return
	}

	if w.cfg.RefreshInterval > 0 && w.refresher != nil {
		w.run("refresh", w.cfg.RefreshInterval, w.refresh)
	}
	if w.cfg.SyncInterval > 0 && w.syncer != nil {
		w.run("sync", w.cfg.SyncInterval, w.sync)
	}

	logger.Info().
		Dur("refreshInterval", w.cfg.RefreshInterval).
		Dur("syncInterval", w.cfg.SyncInterval).
		Msg("scheduler started")
}

// Stop cancels in-flight jobs and waits for them to return
func (w *Worker) Stop() {
	w.cancel()
	w.wg.Wait()
	logger.Info().Msg("scheduler stopped")
}

func (w *Worker) run(name string, interval time.Duration, job func(context.Context)) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				logger.Debug().Str("job", name).Msg("tick")
				job(w.ctx)
			case <-w.ctx.Done():
				return
			}
		}
	}()
}

func (w *Worker) refresh(ctx context.Context) {
	stocks, weather, err := w.refresher.RefreshAll(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("scheduled refresh failed")
		return
	}
	logger.Info().
		Int("stocks", stocks.Updated).
		Int("weather", weather.Updated).
		Int("weatherFailed", len(weather.Failed)).
		Msg("scheduled refresh done")
}

func (w *Worker) sync(ctx context.Context) {
	// the pipeline logs its own outcome
	_, _ = w.syncer.Sync(ctx)
}
