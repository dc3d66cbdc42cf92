package api

import (
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/andocmdo/eink-display-control-panel/display"
	"github.com/andocmdo/eink-display-control-panel/models"
)

// slot is one input row of the dashboard form
type slot struct {
	Key   string
	Value string
}

// Index handles GET /
func (h *Handlers) Index(c *gin.Context) {
	svc := h.server.Dashboard()
	snap, err := svc.Snapshot(c.Request.Context())
	if err != nil {
		respondStorageError(c, err, "Failed to load dashboard")
		return
	}

	limits := svc.Limits()
	weather := make([]slot, 0, len(snap.Weather))
	for _, e := range snap.Weather {
		weather = append(weather, slot{Key: e.Location, Value: models.Deref(e.Temperature, display.Absent)})
	}
	stocks := make([]slot, 0, len(snap.Stocks))
	for _, e := range snap.Stocks {
		stocks = append(stocks, slot{Key: e.Ticker, Value: models.Deref(e.Price, display.Absent)})
	}

	c.HTML(http.StatusOK, "index", gin.H{
		"Weather": padSlots(weather, limits.Weather),
		"Stocks":  padSlots(stocks, limits.Stocks),
		"Todos":   snap.Todos,
	})
}

// padSlots fills the form up to limit empty inputs. Unbounded lists get one
// spare input.
func padSlots(slots []slot, limit int) []slot {
	n := limit
	if n <= 0 {
		n = len(slots) + 1
	}
	for len(slots) < n {
		slots = append(slots, slot{})
	}
	return slots
}

// SaveTrackedLists handles POST / (form fields weather_N and stock_N)
func (h *Handlers) SaveTrackedLists(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		RespondBadRequest(c, "Invalid form")
		return
	}

	locations := indexedValues(c.Request.PostForm, "weather_")
	tickers := indexedValues(c.Request.PostForm, "stock_")

	if _, err := h.server.Dashboard().SetTrackedLists(c.Request.Context(), locations, tickers); err != nil {
		respondStorageError(c, err, "Failed to save dashboard")
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// indexedValues returns the values of fields prefix0, prefix1, ... ordered by
// index. Gaps are allowed.
func indexedValues(form url.Values, prefix string) []string {
	type field struct {
		index int
		value string
	}
	var fields []field
	for key, values := range form {
		suffix, ok := strings.CutPrefix(key, prefix)
		if !ok || len(values) == 0 {
			continue
		}
		i, err := strconv.Atoi(suffix)
		if err != nil || i < 0 {
			continue
		}
		fields = append(fields, field{index: i, value: values[0]})
	}
	sort.Slice(fields, func(a, b int) bool { return fields[a].index < fields[b].index })

	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.value
	}
	return out
}

// SetWeatherLocations handles POST /weather (form field "location", repeated)
func (h *Handlers) SetWeatherLocations(c *gin.Context) {
	weather, err := h.server.Dashboard().SetWeatherLocations(c.Request.Context(), c.PostFormArray("location"))
	if err != nil {
		respondStorageError(c, err, "Failed to save weather locations")
		return
	}
	RespondData(c, weather)
}

// SetStockTickers handles POST /stocks (form field "ticker", repeated)
func (h *Handlers) SetStockTickers(c *gin.Context) {
	stocks, err := h.server.Dashboard().SetStockTickers(c.Request.Context(), c.PostFormArray("ticker"))
	if err != nil {
		respondStorageError(c, err, "Failed to save stock tickers")
		return
	}
	RespondData(c, stocks)
}

// GetDashboard handles GET /api/dashboard
func (h *Handlers) GetDashboard(c *gin.Context) {
	snap, err := h.server.Dashboard().Snapshot(c.Request.Context())
	if err != nil {
		respondStorageError(c, err, "Failed to load dashboard")
		return
	}
	RespondData(c, snap)
}

// Health handles GET /healthz
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
