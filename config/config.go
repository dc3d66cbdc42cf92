package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port     int    `yaml:"port"`
	Host     string `yaml:"host"`
	Env      string `yaml:"env"` // "development" or "production"
	LogLevel string `yaml:"logLevel"`

	// Storage
	StoreBackend  string `yaml:"storeBackend"` // "file" or "sqlite"
	DataFile      string `yaml:"dataFile"`
	DatabasePath  string `yaml:"databasePath"`
	WatchDataFile bool   `yaml:"watchDataFile"`

	// Tracked list bounds
	MaxWeatherLocations int `yaml:"maxWeatherLocations"`
	MaxStockTickers     int `yaml:"maxStockTickers"`

	// Value sources
	WeatherProvider string        `yaml:"weatherProvider"` // "placeholder" or "openmeteo"
	WeatherUnit     string        `yaml:"weatherUnit"`     // "celsius" or "fahrenheit"
	StockProvider   string        `yaml:"stockProvider"`   // "placeholder" or "eodhd"
	EODHDAPIKey     string        `yaml:"eodhdApiKey"`
	EODHDExchange   string        `yaml:"eodhdExchange"`
	StockCurrency   string        `yaml:"stockCurrency"`
	LookupTimeout   time.Duration `yaml:"lookupTimeout"`

	// Display device
	Device Device `yaml:"device"`

	// Built-in scheduler, zero disables
	RefreshInterval time.Duration `yaml:"refreshInterval"`
	SyncInterval    time.Duration `yaml:"syncInterval"`
}

// Device holds the e-ink display backend credentials and screen options
type Device struct {
	BaseURL   string        `yaml:"baseUrl"`
	Username  string        `yaml:"username"`
	Password  string        `yaml:"password"`
	ScreenID  string        `yaml:"screenId"`
	Label     string        `yaml:"label"`
	Name      string        `yaml:"name"`
	ModelID   string        `yaml:"modelId"`
	TokenPath string        `yaml:"tokenPath"`
	Timeout   time.Duration `yaml:"timeout"`
}

// Defaults returns the configuration used when nothing is set
func Defaults() *Config {
	return &Config{
		Port:                12345,
		Host:                "0.0.0.0",
		Env:                 "development",
		LogLevel:            "info",
		StoreBackend:        "file",
		DataFile:            "data.json",
		DatabasePath:        "data.sqlite",
		WatchDataFile:       true,
		MaxWeatherLocations: 3,
		MaxStockTickers:     10,
		WeatherProvider:     "placeholder",
		WeatherUnit:         "celsius",
		StockProvider:       "placeholder",
		EODHDExchange:       "US",
		StockCurrency:       "USD",
		LookupTimeout:       10 * time.Second,
		Device: Device{
			TokenPath: "$.access_token",
			Timeout:   15 * time.Second,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file named by
// CONFIG_FILE, and environment variables, in that order of precedence.
func Load() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	cfg.mergeEnv()
	return cfg, nil
}

// mergeFile overlays values present in a YAML file
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// mergeEnv overlays values present in the environment
func (c *Config) mergeEnv() {
	// Server
	c.Port = getEnvInt("PORT", c.Port)
	c.Host = getEnv("HOST", c.Host)
	c.Env = getEnv("ENV", c.Env)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	// Storage
	c.StoreBackend = getEnv("STORE_BACKEND", c.StoreBackend)
	c.DataFile = getEnv("DATA_FILE", c.DataFile)
	c.DatabasePath = getEnv("DATABASE_PATH", c.DatabasePath)
	c.WatchDataFile = getEnvBool("WATCH_DATA_FILE", c.WatchDataFile)

	c.MaxWeatherLocations = getEnvInt("MAX_WEATHER_LOCATIONS", c.MaxWeatherLocations)
	c.MaxStockTickers = getEnvInt("MAX_STOCK_TICKERS", c.MaxStockTickers)

	// Value sources
	c.WeatherProvider = getEnv("WEATHER_PROVIDER", c.WeatherProvider)
	c.WeatherUnit = getEnv("WEATHER_UNIT", c.WeatherUnit)
	c.StockProvider = getEnv("STOCK_PROVIDER", c.StockProvider)
	c.EODHDAPIKey = getEnv("EODHD_API_KEY", c.EODHDAPIKey)
	c.EODHDExchange = getEnv("EODHD_EXCHANGE", c.EODHDExchange)
	c.StockCurrency = getEnv("STOCK_CURRENCY", c.StockCurrency)
	c.LookupTimeout = getEnvDuration("LOOKUP_TIMEOUT", c.LookupTimeout)

	// Device
	c.Device.BaseURL = getEnv("DEVICE_BASE_URL", c.Device.BaseURL)
	c.Device.Username = getEnv("DEVICE_USERNAME", c.Device.Username)
	c.Device.Password = getEnv("DEVICE_PASSWORD", c.Device.Password)
	c.Device.ScreenID = getEnv("DEVICE_SCREEN_ID", c.Device.ScreenID)
	c.Device.Label = getEnv("DEVICE_LABEL", c.Device.Label)
	c.Device.Name = getEnv("DEVICE_NAME", c.Device.Name)
	c.Device.ModelID = getEnv("DEVICE_MODEL_ID", c.Device.ModelID)
	c.Device.TokenPath = getEnv("DEVICE_TOKEN_PATH", c.Device.TokenPath)
	c.Device.Timeout = getEnvDuration("DEVICE_TIMEOUT", c.Device.Timeout)

	// Scheduler
	c.RefreshInterval = getEnvDuration("REFRESH_INTERVAL", c.RefreshInterval)
	c.SyncInterval = getEnvDuration("SYNC_INTERVAL", c.SyncInterval)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env != "production"
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("90s") or plain seconds ("90")
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
