package models

// Snapshot is the persisted root of the dashboard. Weather holds at most one
// entry per location and Stocks at most one entry per ticker.
type Snapshot struct {
	Weather []WeatherEntry `json:"weather"`
	Stocks  []StockEntry   `json:"stocks"`
	Todos   []TodoItem     `json:"todos"`
}

// WeatherEntry is a tracked location and its last fetched temperature
type WeatherEntry struct {
	Location    string  `json:"location"`
	Temperature *string `json:"temperature,omitempty"` // nil until a refresh succeeds
}

// StockEntry is a tracked ticker and its last fetched price
type StockEntry struct {
	Ticker string  `json:"ticker"`
	Price  *string `json:"price,omitempty"` // nil until a refresh succeeds
}

// TodoItem is a single todo. ID is assigned once at creation.
type TodoItem struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// NewSnapshot returns a snapshot with all sequences empty
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Weather: []WeatherEntry{},
		Stocks:  []StockEntry{},
		Todos:   []TodoItem{},
	}
}

// Normalize replaces nil sequences with empty ones so the document always
// serializes as arrays
func (s *Snapshot) Normalize() {
	if s.Weather == nil {
		s.Weather = []WeatherEntry{}
	}
	if s.Stocks == nil {
		s.Stocks = []StockEntry{}
	}
	if s.Todos == nil {
		s.Todos = []TodoItem{}
	}
}

// Tickers returns the tracked tickers in display order
func (s *Snapshot) Tickers() []string {
	tickers := make([]string, len(s.Stocks))
	for i, e := range s.Stocks {
		tickers[i] = e.Ticker
	}
	return tickers
}

// Locations returns the tracked locations in display order
func (s *Snapshot) Locations() []string {
	locations := make([]string, len(s.Weather))
	for i, e := range s.Weather {
		locations[i] = e.Location
	}
	return locations
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}

// Deref returns the pointed-to string, or fallback when nil
func Deref(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
