package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/andocmdo/eink-display-control-panel/models"
	"github.com/andocmdo/eink-display-control-panel/reconcile"
	"github.com/google/uuid"
)

// Slot counts of the older form-based dashboard, used when converting its
// documents
const (
	legacyWeatherSlots = 3
	legacyStockSlots   = 10
)

// legacyDocument is the shape written by the form-based dashboard: fixed
// slots of plain strings, blanks for unused slots.
type legacyDocument struct {
	WeatherLocations []string `json:"weather_locations"`
	TodoItems        []string `json:"todo_items"`
	StockTickers     []string `json:"stock_tickers"`
}

// Encode serializes a snapshot as indented JSON with a trailing newline.
// Encoding a decoded document reproduces it byte for byte.
func Encode(snap *models.Snapshot) ([]byte, error) {
	snap.Normalize()
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Decode parses and validates a persisted snapshot. Documents in the legacy
// slot format are converted. source names the document in errors.
func Decode(data []byte, source string) (*models.Snapshot, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, &CorruptError{Source: source, Err: err}
	}

	if isLegacy(fields) {
		snap, err := decodeLegacy(data)
		if err != nil {
			return nil, &CorruptError{Source: source, Err: err}
		}
		return snap, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var snap models.Snapshot
	if err := dec.Decode(&snap); err != nil {
		return nil, &CorruptError{Source: source, Err: err}
	}
	snap.Normalize()

	if err := Validate(&snap); err != nil {
		return nil, &CorruptError{Source: source, Err: err}
	}
	return &snap, nil
}

// Validate checks that every location, ticker and todo id is present and unique
func Validate(snap *models.Snapshot) error {
	locations := make(map[string]bool, len(snap.Weather))
	for i, e := range snap.Weather {
		if err := validKey(e.Location); err != nil {
			return fmt.Errorf("weather[%d]: %w", i, err)
		}
		if locations[e.Location] {
			return fmt.Errorf("weather[%d]: duplicate location %q", i, e.Location)
		}
		locations[e.Location] = true
	}

	tickers := make(map[string]bool, len(snap.Stocks))
	for i, e := range snap.Stocks {
		if err := validKey(e.Ticker); err != nil {
			return fmt.Errorf("stocks[%d]: %w", i, err)
		}
		if tickers[e.Ticker] {
			return fmt.Errorf("stocks[%d]: duplicate ticker %q", i, e.Ticker)
		}
		tickers[e.Ticker] = true
	}

	ids := make(map[string]bool, len(snap.Todos))
	for i, item := range snap.Todos {
		if item.ID == "" {
			return fmt.Errorf("todos[%d]: missing id", i)
		}
		if ids[item.ID] {
			return fmt.Errorf("todos[%d]: duplicate id %q", i, item.ID)
		}
		ids[item.ID] = true
	}
	return nil
}

func validKey(key string) error {
	if key == "" {
		return errors.New("empty key")
	}
	if strings.TrimSpace(key) != key {
		return fmt.Errorf("key %q has surrounding whitespace", key)
	}
	return nil
}

func isLegacy(fields map[string]json.RawMessage) bool {
	for _, k := range []string{"weather", "stocks", "todos"} {
		if _, ok := fields[k]; ok {
			return false
		}
	}
	for _, k := range []string{"weather_locations", "todo_items", "stock_tickers"} {
		if _, ok := fields[k]; ok {
			return true
		}
	}
	return false
}

func decodeLegacy(data []byte) (*models.Snapshot, error) {
	var doc legacyDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("legacy document: %w", err)
	}

	snap := models.NewSnapshot()
	for _, loc := range reconcile.Keys(doc.WeatherLocations, legacyWeatherSlots) {
		snap.Weather = append(snap.Weather, models.WeatherEntry{Location: loc})
	}
	for _, ticker := range reconcile.Keys(doc.StockTickers, legacyStockSlots) {
		snap.Stocks = append(snap.Stocks, models.StockEntry{Ticker: ticker})
	}
	for _, text := range doc.TodoItems {
		if strings.TrimSpace(text) == "" {
			continue
		}
		snap.Todos = append(snap.Todos, models.TodoItem{
			ID:   uuid.Must(uuid.NewV7()).String(),
			Text: text,
		})
	}
	return snap, nil
}
