// Package rates provides the exchange-rate source used for cross-currency
// settlements, backed by an HTTP rate provider with an optional cache layer.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client fetches exchange rates from the rate provider's /latest endpoint.
type Client struct {
	httpClient HTTPClient
	baseURL    string
	apiKey     string
	log        zerolog.Logger
}

// NewClient creates a new exchange-rate client.
func NewClient(httpClient HTTPClient, baseURL, apiKey string, log zerolog.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		log:        log,
	}
}

type latestResponse struct {
	Success bool                   `json:"success"`
	Rates   map[string]json.Number `json:"rates"`
}

// Rate returns the multiplier converting one unit of from into to. The
// provider quotes all rates against a common base, so the pair rate is
// rates[to]/rates[from].
func (c *Client) Rate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	u := fmt.Sprintf("%s/latest?access_key=%s&symbols=%s",
		c.baseURL, url.QueryEscape(c.apiKey), url.QueryEscape(from+","+to))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("build rate request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("fetch rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("rate provider returned status %d", resp.StatusCode)
	}

	var body latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, fmt.Errorf("decode rate response: %w", err)
	}

	fromRate, err := pairRate(body.Rates, from)
	if err != nil {
		return decimal.Zero, err
	}
	toRate, err := pairRate(body.Rates, to)
	if err != nil {
		return decimal.Zero, err
	}
	if fromRate.IsZero() {
		return decimal.Zero, fmt.Errorf("zero base rate for %s", from)
	}

	return toRate.Div(fromRate), nil
}

func pairRate(quoted map[string]json.Number, symbol string) (decimal.Decimal, error) {
	raw, ok := quoted[symbol]
	if !ok {
		return decimal.Zero, fmt.Errorf("rate provider missing symbol %s", symbol)
	}
	rate, err := decimal.NewFromString(raw.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse rate for %s: %w", symbol, err)
	}
	return rate, nil
}
