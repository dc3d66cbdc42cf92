// Package dashboard implements the user-facing edits of the dashboard: the
// ordered todo list and the tracked weather locations and stock tickers.
//
// Each operation loads the snapshot, mutates it and saves it back. Nothing is
// cached between calls.
package dashboard

import (
	"context"

	"github.com/andocmdo/eink-display-control-panel/log"
	"github.com/andocmdo/eink-display-control-panel/models"
	"github.com/andocmdo/eink-display-control-panel/notifications"
	"github.com/andocmdo/eink-display-control-panel/reconcile"
	"github.com/andocmdo/eink-display-control-panel/store"
	"github.com/google/uuid"
)

var logger = log.GetLogger("Dashboard")

// Limits bounds the tracked lists. Submissions beyond the limit are truncated
// to the first N distinct keys; zero means unbounded.
type Limits struct {
	Weather int
	Stocks  int
}

// DefaultLimits matches the slot counts of the dashboard form
func DefaultLimits() Limits {
	return Limits{Weather: 3, Stocks: 10}
}

// Notifier is told which section of the dashboard changed
type Notifier interface {
	NotifyDashboardChanged(section string)
}

// Service applies edits to the persisted snapshot
type Service struct {
	store    store.Store
	limits   Limits
	newID    func() string
	notifier Notifier
}

// Option configures a Service
type Option func(*Service)

// WithIDGenerator overrides how todo ids are generated
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) { s.newID = gen }
}

// WithNotifier registers a change notifier
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// NewService creates a dashboard service over a snapshot store
func NewService(st store.Store, limits Limits, opts ...Option) *Service {
	s := &Service{
		store:  st,
		limits: limits,
		newID: func() string {
			return uuid.Must(uuid.NewV7()).String()
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Limits returns the configured tracked list bounds
func (s *Service) Limits() Limits {
	return s.limits
}

// Snapshot returns the current persisted snapshot
func (s *Service) Snapshot(ctx context.Context) (*models.Snapshot, error) {
	return s.store.Load(ctx)
}

// ListTodos returns the todos in display order
func (s *Service) ListTodos(ctx context.Context) ([]models.TodoItem, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Todos, nil
}

// AddTodo appends an empty todo with a fresh id and returns the full list
func (s *Service) AddTodo(ctx context.Context) ([]models.TodoItem, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	item := models.TodoItem{ID: s.newID(), Text: ""}
	snap.Todos = append(snap.Todos, item)

	if err := s.save(ctx, snap, notifications.SectionTodos); err != nil {
		return nil, err
	}
	logger.Debug().Str("id", item.ID).Int("count", len(snap.Todos)).Msg("todo added")
	return snap.Todos, nil
}

// RemoveTodo deletes the todo with id. Unknown ids are ignored.
func (s *Service) RemoveTodo(ctx context.Context, id string) ([]models.TodoItem, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	todos, removed := removeTodo(snap.Todos, id)
	if !removed {
		return snap.Todos, nil
	}
	snap.Todos = todos

	if err := s.save(ctx, snap, notifications.SectionTodos); err != nil {
		return nil, err
	}
	logger.Debug().Str("id", id).Msg("todo removed")
	return snap.Todos, nil
}

// UpdateTodoText sets the text of the todo with id. Unknown ids are ignored.
func (s *Service) UpdateTodoText(ctx context.Context, id, text string) error {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return err
	}

	if !setTodoText(snap.Todos, id, text) {
		return nil
	}
	return s.save(ctx, snap, notifications.SectionTodos)
}

// MoveTodo swaps the todo with its neighbour in the given direction. Moves
// past either end and unknown ids leave the list unchanged.
func (s *Service) MoveTodo(ctx context.Context, id string, dir Direction) ([]models.TodoItem, error) {
	if dir != Up && dir != Down {
		return nil, ErrInvalidDirection
	}

	snap, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	if !moveTodo(snap.Todos, id, dir) {
		return snap.Todos, nil
	}

	if err := s.save(ctx, snap, notifications.SectionTodos); err != nil {
		return nil, err
	}
	return snap.Todos, nil
}

// SetWeatherLocations replaces the tracked locations, keeping the fetched
// temperature of locations that remain
func (s *Service) SetWeatherLocations(ctx context.Context, locations []string) ([]models.WeatherEntry, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	snap.Weather = s.reconcileWeather(snap.Weather, locations)

	if err := s.save(ctx, snap, notifications.SectionWeather); err != nil {
		return nil, err
	}
	return snap.Weather, nil
}

// SetStockTickers replaces the tracked tickers, keeping the fetched price of
// tickers that remain
func (s *Service) SetStockTickers(ctx context.Context, tickers []string) ([]models.StockEntry, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	snap.Stocks = s.reconcileStocks(snap.Stocks, tickers)

	if err := s.save(ctx, snap, notifications.SectionStocks); err != nil {
		return nil, err
	}
	return snap.Stocks, nil
}

// SetTrackedLists replaces both tracked lists in a single save, as submitted
// by the dashboard form
func (s *Service) SetTrackedLists(ctx context.Context, locations, tickers []string) (*models.Snapshot, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	snap.Weather = s.reconcileWeather(snap.Weather, locations)
	snap.Stocks = s.reconcileStocks(snap.Stocks, tickers)

	if err := s.store.Save(ctx, snap); err != nil {
		return nil, err
	}
	s.notify(notifications.SectionWeather)
	s.notify(notifications.SectionStocks)
	return snap, nil
}

func (s *Service) reconcileWeather(existing []models.WeatherEntry, locations []string) []models.WeatherEntry {
	return reconcile.Reconcile(existing, locations, s.limits.Weather,
		func(e models.WeatherEntry) string { return e.Location },
		func(loc string) models.WeatherEntry { return models.WeatherEntry{Location: loc} },
	)
}

func (s *Service) reconcileStocks(existing []models.StockEntry, tickers []string) []models.StockEntry {
	return reconcile.Reconcile(existing, tickers, s.limits.Stocks,
		func(e models.StockEntry) string { return e.Ticker },
		func(ticker string) models.StockEntry { return models.StockEntry{Ticker: ticker} },
	)
}

func (s *Service) save(ctx context.Context, snap *models.Snapshot, section string) error {
	if err := s.store.Save(ctx, snap); err != nil {
		return err
	}
	s.notify(section)
	return nil
}

func (s *Service) notify(section string) {
	if s.notifier != nil {
		s.notifier.NotifyDashboardChanged(section)
	}
}
