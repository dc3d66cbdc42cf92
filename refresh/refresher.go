// Package refresh fetches current weather and stock values for the tracked
// keys of the snapshot and writes them back.
package refresh

import (
	"context"
	"fmt"
	"time"

	"github.com/andocmdo/eink-display-control-panel/log"
	"github.com/andocmdo/eink-display-control-panel/models"
	"github.com/andocmdo/eink-display-control-panel/notifications"
	"github.com/andocmdo/eink-display-control-panel/store"
)

var logger = log.GetLogger("Refresh")

// PriceSource returns current prices for a batch of tickers. Tickers it has
// no price for are simply absent from the result.
type PriceSource interface {
	Prices(ctx context.Context, tickers []string) (map[string]string, error)
}

// WeatherSource returns the current temperature for one location
type WeatherSource interface {
	Temperature(ctx context.Context, location string) (string, error)
}

// Notifier is told which section of the dashboard changed
type Notifier interface {
	NotifyDashboardChanged(section string)
}

// LookupError reports a failed lookup for a single key. It is logged and
// counted, never returned from a batch.
type LookupError struct {
	Key string
	Err error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("lookup %q failed: %v", e.Key, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

// Result summarizes one refresh
type Result struct {
	Updated int                   `json:"updated"`
	Failed  []string              `json:"failed,omitempty"`
	Stocks  []models.StockEntry   `json:"stocks,omitempty"`
	Weather []models.WeatherEntry `json:"weather,omitempty"`
}

// Refresher updates snapshot values from external sources
type Refresher struct {
	store    store.Store
	prices   PriceSource
	weather  WeatherSource
	timeout  time.Duration
	notifier Notifier
}

// NewRefresher creates a refresher. timeout bounds each outbound lookup;
// zero disables the per-call deadline.
func NewRefresher(st store.Store, prices PriceSource, weather WeatherSource, timeout time.Duration) *Refresher {
	return &Refresher{
		store:   st,
		prices:  prices,
		weather: weather,
		timeout: timeout,
	}
}

// SetNotifier registers a change notifier
func (r *Refresher) SetNotifier(n Notifier) {
	r.notifier = n
}

// Load returns the current snapshot from the store
func (r *Refresher) Load(ctx context.Context) (*models.Snapshot, error) {
	return r.store.Load(ctx)
}

// RefreshStocks fetches prices for all tracked tickers in one batch and saves
// the snapshot. An empty ticker list returns immediately without a lookup.
// Tickers missing from the lookup result keep their previous price.
func (r *Refresher) RefreshStocks(ctx context.Context, snap *models.Snapshot) (*Result, error) {
	if len(snap.Stocks) == 0 {
		return &Result{Stocks: snap.Stocks}, nil
	}

	tickers := snap.Tickers()

	lookupCtx, cancel := r.lookupContext(ctx)
	prices, err := r.prices.Prices(lookupCtx, tickers)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("price lookup failed: %w", err)
	}

	updated := 0
	for i := range snap.Stocks {
		price, ok := prices[snap.Stocks[i].Ticker]
		if !ok {
			logger.Debug().Str("ticker", snap.Stocks[i].Ticker).Msg("no price returned")
			continue
		}
		snap.Stocks[i].Price = models.StringPtr(price)
		updated++
	}

	if err := r.store.Save(ctx, snap); err != nil {
		return nil, err
	}
	r.notify(notifications.SectionStocks)

	logger.Info().Int("tickers", len(tickers)).Int("updated", updated).Msg("stocks refreshed")
	return &Result{Updated: updated, Stocks: snap.Stocks}, nil
}

// RefreshWeather looks up each tracked location in turn and saves the
// snapshot. A failed lookup keeps that location's previous temperature and
// does not stop the remaining lookups.
func (r *Refresher) RefreshWeather(ctx context.Context, snap *models.Snapshot) (*Result, error) {
	if len(snap.Weather) == 0 {
		return &Result{Weather: snap.Weather}, nil
	}

	result := &Result{}
	for i := range snap.Weather {
		// A cancelled request stops the batch; individual failures do not
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		location := snap.Weather[i].Location
		lookupCtx, cancel := r.lookupContext(ctx)
		temp, err := r.weather.Temperature(lookupCtx, location)
		cancel()
		if err != nil {
			lerr := &LookupError{Key: location, Err: err}
			logger.Warn().Err(lerr).Str("location", location).Msg("weather lookup failed")
			result.Failed = append(result.Failed, location)
			continue
		}

		snap.Weather[i].Temperature = models.StringPtr(temp)
		result.Updated++
	}

	if err := r.store.Save(ctx, snap); err != nil {
		return nil, err
	}
	r.notify(notifications.SectionWeather)

	logger.Info().
		Int("locations", len(snap.Weather)).
		Int("updated", result.Updated).
		Int("failed", len(result.Failed)).
		Msg("weather refreshed")

	result.Weather = snap.Weather
	return result, nil
}

// RefreshAll runs the stock and weather refreshes, each as its own
// load/save cycle. The first error is returned after both have run.
func (r *Refresher) RefreshAll(ctx context.Context) (stocks, weather *Result, err error) {
	snap, err := r.store.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	stocks, stocksErr := r.RefreshStocks(ctx, snap)
	if stocksErr != nil {
		logger.Error().Err(stocksErr).Msg("stock refresh failed")
	}

	snap, err = r.store.Load(ctx)
	if err != nil {
		return stocks, nil, err
	}
	weather, weatherErr := r.RefreshWeather(ctx, snap)
	if weatherErr != nil {
		logger.Error().Err(weatherErr).Msg("weather refresh failed")
	}

	if stocksErr != nil {
		return stocks, weather, stocksErr
	}
	return stocks, weather, weatherErr
}

func (r *Refresher) lookupContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *Refresher) notify(section string) {
	if r.notifier != nil {
		r.notifier.NotifyDashboardChanged(section)
	}
}
