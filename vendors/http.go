// Package vendors provides the external value sources consumed by the
// refresher: placeholder generators plus Open-Meteo weather and EODHD quotes.
package vendors

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/andocmdo/eink-display-control-panel/log"
)

var logger = log.GetLogger("Vendors")

// maxBodySize caps how much of a vendor response is read
const maxBodySize = 1 << 20

// getJSON performs a GET request and decodes the JSON body into data
func getJSON(ctx context.Context, client *http.Client, addr string, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("failed to read response from %s: %w", req.URL.Host, err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cannot http GET %v%v: %v", req.URL.Host, req.URL.Path, resp.Status)
	}

	logger.Debug().Str("host", req.URL.Host).Str("path", req.URL.Path).Int("bytes", len(body)).Msg("vendor response")
	return json.Unmarshal(body, data)
}
