package vendors

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/shopspring/decimal"
)

// PlaceholderWeather returns a random temperature for any location. It is the
// default source when no weather provider is configured.
type PlaceholderWeather struct{}

// Temperature implements refresh.WeatherSource
func (PlaceholderWeather) Temperature(ctx context.Context, location string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return fmt.Sprintf("%d°F", 40+rand.IntN(51)), nil
}

// PlaceholderPrices returns a random price for every ticker
type PlaceholderPrices struct {
	Currency string
}

// Prices implements refresh.PriceSource
func (p PlaceholderPrices) Prices(ctx context.Context, tickers []string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	currency := p.Currency
	if currency == "" {
		currency = "USD"
	}

	out := make(map[string]string, len(tickers))
	for _, ticker := range tickers {
		// cents between 10.00 and 500.00
		cents := decimal.NewFromInt(int64(1000 + rand.IntN(49001)))
		out[ticker] = FormatPrice(cents.Shift(-2), currency)
	}
	return out, nil
}
