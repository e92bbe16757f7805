// Package paystack implements the typed gateway query client the settlement
// engine uses for authoritative transfer-status lookups.
package paystack

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"crowdfund-ledger/internal/core/ports"

	"github.com/rs/zerolog"
)

// DefaultBaseURL is the gateway's public API root.
const DefaultBaseURL = "https://api.paystack.co"

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client implements ports.GatewayClient. The API secret is read from platform
// settings per call, so key rotation takes effect without a restart.
type Client struct {
	httpClient HTTPClient
	baseURL    string
	settings   ports.SettingsRepository
	log        zerolog.Logger
}

// NewClient creates a new gateway client.
func NewClient(httpClient HTTPClient, baseURL string, settings ports.SettingsRepository, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		settings:   settings,
		log:        log,
	}
}

type transferEnvelope struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		FeeCharged int64 `json:"fee_charged"`
		Recipient  struct {
			Type string `json:"type"`
		} `json:"recipient"`
	} `json:"data"`
}

// GetTransfer fetches a transfer's authoritative state by gateway id.
func (c *Client) GetTransfer(ctx context.Context, gatewayID int64) (*ports.GatewayTransfer, error) {
	settings, err := c.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch gateway credentials: %w", err)
	}

	u := fmt.Sprintf("%s/transfer/%d", c.baseURL, gatewayID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build transfer request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+settings.GatewaySecretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch transfer %d: %w", gatewayID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway returned status %d for transfer %d", resp.StatusCode, gatewayID)
	}

	var body transferEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode transfer response: %w", err)
	}
	if !body.Status {
		return nil, fmt.Errorf("gateway rejected transfer lookup: %s", body.Message)
	}

	return &ports.GatewayTransfer{
		FeeChargedMinor: body.Data.FeeCharged,
		RecipientType:   body.Data.Recipient.Type,
	}, nil
}
