package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andocmdo/eink-display-control-panel/display"
	"github.com/andocmdo/eink-display-control-panel/models"
)

// UpdateStocks handles GET /update/stocks
func (h *Handlers) UpdateStocks(c *gin.Context) {
	ctx := c.Request.Context()
	refresher := h.server.Refresher()

	snap, err := refresher.Load(ctx)
	if err != nil {
		respondStorageError(c, err, "Failed to load dashboard")
		return
	}

	result, err := refresher.RefreshStocks(ctx, snap)
	if err != nil {
		logger.Error().Err(err).Msg("stock refresh failed")
		RespondStatus(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	stocks := result.Stocks
	if stocks == nil {
		stocks = []models.StockEntry{}
	}
	RespondStatus(c, http.StatusOK, fmt.Sprintf("Updated %d stock prices", result.Updated), gin.H{
		"updated": result.Updated,
		"stocks":  stocks,
	})
}

// UpdateWeather handles GET /update/weather
func (h *Handlers) UpdateWeather(c *gin.Context) {
	ctx := c.Request.Context()
	refresher := h.server.Refresher()

	snap, err := refresher.Load(ctx)
	if err != nil {
		respondStorageError(c, err, "Failed to load dashboard")
		return
	}

	result, err := refresher.RefreshWeather(ctx, snap)
	if err != nil {
		logger.Error().Err(err).Msg("weather refresh failed")
		RespondStatus(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	weather := result.Weather
	if weather == nil {
		weather = []models.WeatherEntry{}
	}
	fields := gin.H{
		"updated": result.Updated,
		"weather": weather,
	}
	if len(result.Failed) > 0 {
		fields["failed"] = result.Failed
	}
	RespondStatus(c, http.StatusOK, fmt.Sprintf("Updated %d weather locations", result.Updated), fields)
}

// UpdateDisplay handles GET /update/display
func (h *Handlers) UpdateDisplay(c *gin.Context) {
	outcome, err := h.server.Display().Sync(c.Request.Context())
	if err != nil {
		stage := display.StageFailed
		var syncErr *display.SyncError
		if errors.As(err, &syncErr) {
			stage = syncErr.Stage
		}
		RespondStatus(c, http.StatusInternalServerError, err.Error(), gin.H{"stage": stage})
		return
	}

	fields := gin.H{"screen_id": outcome.ScreenID}
	if outcome.ServerResponse != nil {
		fields["server_response"] = outcome.ServerResponse
	}
	RespondStatus(c, http.StatusOK, fmt.Sprintf("Screen %s updated", outcome.ScreenID), fields)
}

// PreviewDisplay handles GET /api/display/preview. ?format=markdown returns
// the intermediate markdown.
func (h *Handlers) PreviewDisplay(c *gin.Context) {
	content, err := h.server.Display().Preview(c.Request.Context())
	if err != nil {
		respondStorageError(c, err, "Failed to load dashboard")
		return
	}

	if c.Query("format") == "markdown" {
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(content.Markdown))
		return
	}
	page := "<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>Display preview</title></head>\n<body>\n" +
		content.HTML + "</body></html>\n"
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}
