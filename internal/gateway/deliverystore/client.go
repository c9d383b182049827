package deliverystore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fabio1974/courier-offer-engine/internal/apperr"
	"github.com/fabio1974/courier-offer-engine/internal/domain"
)

// Client talks to the remote delivery store over its REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a delivery store client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ListPending returns PENDING deliveries, most recently updated first.
func (c *Client) ListPending(ctx context.Context, limit int) ([]domain.Delivery, error) {
	url := fmt.Sprintf("%s/api/deliveries?status=PENDING&sort=updated_desc&limit=%d", c.baseURL, limit)
	var out []domain.Delivery
	if err := c.doJSON(ctx, http.MethodGet, url, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetActive returns the courier's non-terminal deliveries.
func (c *Client) GetActive(ctx context.Context, courierID string) ([]domain.Delivery, error) {
	url := fmt.Sprintf("%s/api/couriers/%s/deliveries/active", c.baseURL, courierID)
	var out []domain.Delivery
	if err := c.doJSON(ctx, http.MethodGet, url, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetCompleted returns the courier's delivery history.
func (c *Client) GetCompleted(ctx context.Context, courierID string) ([]domain.Delivery, error) {
	url := fmt.Sprintf("%s/api/couriers/%s/deliveries/completed", c.baseURL, courierID)
	var out []domain.Delivery
	if err := c.doJSON(ctx, http.MethodGet, url, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type acceptRequest struct {
	CourierID string `json:"courier_id"`
}

// Accept claims a pending delivery for the courier.
func (c *Client) Accept(ctx context.Context, deliveryID int64, courierID string) (*domain.Delivery, error) {
	url := fmt.Sprintf("%s/api/deliveries/%d/accept", c.baseURL, deliveryID)
	var out domain.Delivery
	if err := c.doJSON(ctx, http.MethodPost, url, acceptRequest{CourierID: courierID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type rejectRequest struct {
	CourierID string `json:"courier_id"`
	Reason    string `json:"reason,omitempty"`
}

// Reject notifies the store that the courier declined the delivery.
func (c *Client) Reject(ctx context.Context, deliveryID int64, courierID, reason string) error {
	url := fmt.Sprintf("%s/api/deliveries/%d/reject", c.baseURL, deliveryID)
	return c.doJSON(ctx, http.MethodPost, url, rejectRequest{CourierID: courierID, Reason: reason}, nil)
}

type transitionRequest struct {
	CourierID string `json:"courier_id"`
	Kind      string `json:"kind"`
	Reason    string `json:"reason,omitempty"`
}

// Transition applies a status transition and returns the authoritative delivery.
func (c *Client) Transition(ctx context.Context, deliveryID int64, courierID string, kind domain.TransitionKind, reason string) (*domain.Delivery, error) {
	url := fmt.Sprintf("%s/api/deliveries/%d/transition", c.baseURL, deliveryID)
	body := transitionRequest{CourierID: courierID, Kind: string(kind), Reason: reason}
	var out domain.Delivery
	if err := c.doJSON(ctx, http.MethodPost, url, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) doJSON(ctx context.Context, method, url string, in, out any) error {
	var body *bytes.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("delivery store: marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("delivery store: create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delivery store: %s %s: %w: %w", method, url, apperr.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp.StatusCode); err != nil {
		return fmt.Errorf("delivery store: %s %s: status %d: %w", method, url, resp.StatusCode, err)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("delivery store: decode response: %w", err)
	}
	return nil
}

// classifyStatus maps remote status codes onto the apperr taxonomy.
func classifyStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusConflict:
		return apperr.ErrConflict
	case code == http.StatusNotFound:
		return apperr.ErrNotFound
	case code == http.StatusBadRequest || code == http.StatusUnprocessableEntity:
		return apperr.ErrInvalid
	case code == http.StatusTooManyRequests || code >= 500:
		return apperr.ErrUnavailable
	default:
		return fmt.Errorf("unexpected status %d", code)
	}
}
