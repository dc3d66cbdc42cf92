package server

import (
	"fmt"

	"github.com/andocmdo/eink-display-control-panel/config"
	"github.com/andocmdo/eink-display-control-panel/dashboard"
	"github.com/andocmdo/eink-display-control-panel/db"
	"github.com/andocmdo/eink-display-control-panel/display"
	"github.com/andocmdo/eink-display-control-panel/refresh"
	"github.com/andocmdo/eink-display-control-panel/vendors"
	"github.com/andocmdo/eink-display-control-panel/workers/scheduler"
)

// Config holds server configuration
type Config struct {
	*config.Config
}

// NewConfig wraps the application configuration
func NewConfig(cfg *config.Config) *Config {
	return &Config{Config: cfg}
}

// ToDBConfig converts to the SQLite connection configuration
func (c *Config) ToDBConfig() db.Config {
	return db.Config{
		Path: c.DatabasePath,
	}
}

// ToLimits returns the tracked list bounds
func (c *Config) ToLimits() dashboard.Limits {
	return dashboard.Limits{
		Weather: c.MaxWeatherLocations,
		Stocks:  c.MaxStockTickers,
	}
}

// ToDeviceConfig returns the display device settings
func (c *Config) ToDeviceConfig() display.DeviceConfig {
	d := c.Device
	return display.DeviceConfig{
		BaseURL:   d.BaseURL,
		Username:  d.Username,
		Password:  d.Password,
		ScreenID:  d.ScreenID,
		Label:     d.Label,
		Name:      d.Name,
		ModelID:   d.ModelID,
		TokenPath: d.TokenPath,
		Timeout:   d.Timeout,
	}
}

// ToSchedulerConfig returns the scheduler intervals
func (c *Config) ToSchedulerConfig() scheduler.Config {
	return scheduler.Config{
		RefreshInterval: c.RefreshInterval,
		SyncInterval:    c.SyncInterval,
	}
}

// WeatherSource builds the configured weather provider
func (c *Config) WeatherSource() (refresh.WeatherSource, error) {
	switch c.WeatherProvider {
	case "", "placeholder":
		return vendors.PlaceholderWeather{}, nil
	case "openmeteo":
		return vendors.NewOpenMeteo(c.WeatherUnit), nil
	}
	return nil, fmt.Errorf("unknown weather provider %q", c.WeatherProvider)
}

// PriceSource builds the configured stock price provider
func (c *Config) PriceSource() (refresh.PriceSource, error) {
	switch c.StockProvider {
	case "", "placeholder":
		return vendors.PlaceholderPrices{Currency: c.StockCurrency}, nil
	case "eodhd":
		if c.EODHDAPIKey == "" {
			return nil, fmt.Errorf("stock provider eodhd: %w", vendors.ErrMissingAPIKey)
		}
		return vendors.NewEODHD(c.EODHDAPIKey, c.EODHDExchange, c.StockCurrency), nil
	}
	return nil, fmt.Errorf("unknown stock provider %q", c.StockProvider)
}
