// Package payouts is the eligibility precondition provider: the acceptance
// path consults it before touching the remote delivery store.
package payouts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fabio1974/courier-offer-engine/internal/apperr"
)

// Provider answers whether a courier may accept deliveries.
type Provider interface {
	HasActivePayoutAccount(ctx context.Context, courierID string) (bool, error)
}

// Client talks to the payout service over its REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a payouts client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type accountResponse struct {
	Active bool `json:"active"`
}

// HasActivePayoutAccount reports whether the courier has an active payout
// account. Unknown couriers read as inactive.
func (c *Client) HasActivePayoutAccount(ctx context.Context, courierID string) (bool, error) {
	url := fmt.Sprintf("%s/api/couriers/%s/payout-account", c.baseURL, courierID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("payouts: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("payouts: %w: %w", apperr.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode != http.StatusOK:
		return false, fmt.Errorf("payouts: status %d: %w", resp.StatusCode, apperr.ErrUnavailable)
	}

	var out accountResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("payouts: decode response: %w", err)
	}
	return out.Active, nil
}

var _ Provider = (*Client)(nil)
