package vendors

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

const defaultEODHDURL = "https://eodhd.com/api/real-time"

// ErrMissingAPIKey is returned when EODHD is used without a key
var ErrMissingAPIKey = errors.New("eodhd api key is not set")

// EODHD fetches delayed real-time quotes for a batch of tickers in a single
// request.
type EODHD struct {
	APIKey string
	// Exchange is appended to tickers without an exchange suffix, e.g. "US"
	Exchange string
	Currency string
	BaseURL  string
	Client   *http.Client
}

// NewEODHD creates a source against the public endpoint
func NewEODHD(apiKey, exchange, currency string) *EODHD {
	return &EODHD{
		APIKey:   apiKey,
		Exchange: exchange,
		Currency: currency,
		BaseURL:  defaultEODHDURL,
		Client:   http.DefaultClient,
	}
}

// quote is one element of the real-time response. close is a number, or the
// string "NA" when the exchange has no data.
type quote struct {
	Code  string          `json:"code"`
	Close json.RawMessage `json:"close"`
}

// Prices implements refresh.PriceSource
func (e *EODHD) Prices(ctx context.Context, tickers []string) (map[string]string, error) {
	if e.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if len(tickers) == 0 {
		return map[string]string{}, nil
	}

	// EODHD codes back to the tracked ticker
	codes := make(map[string]string, len(tickers))
	symbols := make([]string, 0, len(tickers))
	for _, ticker := range tickers {
		code := e.symbol(ticker)
		codes[strings.ToUpper(code)] = ticker
		symbols = append(symbols, code)
	}

	// https://eodhd.com/api/real-time/AAPL.US?s=MSFT.US,VTI.US&api_token=demo&fmt=json
	q := url.Values{}
	if len(symbols) > 1 {
		q.Set("s", strings.Join(symbols[1:], ","))
	}
	q.Set("api_token", e.APIKey)
	q.Set("fmt", "json")
	addr := fmt.Sprintf("%s/%s?%s", strings.TrimRight(e.BaseURL, "/"), url.PathEscape(symbols[0]), q.Encode())

	var raw json.RawMessage
	if err := getJSON(ctx, e.Client, addr, &raw); err != nil {
		return nil, err
	}

	quotes, err := decodeQuotes(raw)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(quotes))
	for _, qt := range quotes {
		ticker, ok := codes[strings.ToUpper(qt.Code)]
		if !ok {
			continue
		}
		price, ok := parseClose(qt.Close)
		if !ok {
			logger.Debug().Str("code", qt.Code).Msg("no close price")
			continue
		}
		out[ticker] = FormatPrice(price, e.Currency)
	}
	return out, nil
}

func (e *EODHD) symbol(ticker string) string {
	if e.Exchange == "" || strings.Contains(ticker, ".") {
		return ticker
	}
	return ticker + "." + e.Exchange
}

// decodeQuotes accepts both shapes of the response: a single object for one
// ticker, an array for several
func decodeQuotes(raw json.RawMessage) ([]quote, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var quotes []quote
		if err := json.Unmarshal(raw, &quotes); err != nil {
			return nil, fmt.Errorf("failed to decode quotes: %w", err)
		}
		return quotes, nil
	}

	var single quote
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, fmt.Errorf("failed to decode quote: %w", err)
	}
	return []quote{single}, nil
}

func parseClose(raw json.RawMessage) (decimal.Decimal, bool) {
	s := strings.Trim(string(bytes.TrimSpace(raw)), `"`)
	if s == "" || s == "NA" || s == "null" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}
