package vendors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"
)

const (
	defaultGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"
	defaultForecastURL  = "https://api.open-meteo.com/v1/forecast"
)

// ErrLocationNotFound is returned when geocoding yields no match
var ErrLocationNotFound = errors.New("location not found")

// OpenMeteo looks up the current temperature of a place name through the
// Open-Meteo geocoding and forecast APIs. No API key is required.
type OpenMeteo struct {
	GeocodingURL string
	ForecastURL  string
	// Unit is "celsius" or "fahrenheit"
	Unit   string
	Client *http.Client
}

// NewOpenMeteo creates a source against the public endpoints
func NewOpenMeteo(unit string) *OpenMeteo {
	if unit == "" {
		unit = "celsius"
	}
	return &OpenMeteo{
		GeocodingURL: defaultGeocodingURL,
		ForecastURL:  defaultForecastURL,
		Unit:         unit,
		Client:       http.DefaultClient,
	}
}

type geocodingResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"results"`
}

type forecastResponse struct {
	Current struct {
		Temperature *decimal.Decimal `json:"temperature_2m"`
	} `json:"current"`
	CurrentUnits struct {
		Temperature string `json:"temperature_2m"`
	} `json:"current_units"`
}

// Temperature implements refresh.WeatherSource
func (o *OpenMeteo) Temperature(ctx context.Context, location string) (string, error) {
	q := url.Values{}
	q.Set("name", location)
	q.Set("count", "1")
	q.Set("format", "json")

	var geo geocodingResponse
	if err := getJSON(ctx, o.Client, o.GeocodingURL+"?"+q.Encode(), &geo); err != nil {
		return "", fmt.Errorf("geocoding %q: %w", location, err)
	}
	if len(geo.Results) == 0 {
		return "", fmt.Errorf("%w: %q", ErrLocationNotFound, location)
	}
	place := geo.Results[0]

	q = url.Values{}
	q.Set("latitude", strconv.FormatFloat(place.Latitude, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(place.Longitude, 'f', 4, 64))
	q.Set("current", "temperature_2m")
	q.Set("temperature_unit", o.Unit)

	var forecast forecastResponse
	if err := getJSON(ctx, o.Client, o.ForecastURL+"?"+q.Encode(), &forecast); err != nil {
		return "", fmt.Errorf("forecast for %q: %w", location, err)
	}
	if forecast.Current.Temperature == nil {
		return "", fmt.Errorf("forecast for %q has no current temperature", location)
	}

	unit := forecast.CurrentUnits.Temperature
	if unit == "" {
		unit = "°C"
	}
	return forecast.Current.Temperature.Round(0).String() + unit, nil
}
