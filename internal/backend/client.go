// Package backend is the typed HTTP client for the costume rental
// REST backend. It covers the full API surface the mobile clients use:
// auth, costumes, and reservations.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/attireworks/wardrobe/internal/rental"
)

// Config holds client settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// Token preloads a bearer token, skipping Login.
	Token string
}

// Client talks to the rental backend. Safe for concurrent use; the
// token is guarded because Login can race an in-flight fetch.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger

	mu    sync.RWMutex
	token string
}

// New creates a backend client.
func New(cfg Config, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		logger:     logger,
		token:      cfg.Token,
	}
}

// Login authenticates and stores the bearer token for subsequent calls.
func (c *Client) Login(ctx context.Context, params LoginParams) (*Session, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid login params: %w", err)
	}

	var data loginData
	if err := c.do(ctx, http.MethodPost, "/login", params, &data); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.token = data.Token
	c.mu.Unlock()

	c.logger.Info("authenticated with rental backend",
		zap.Int64("user_id", data.User.ID),
		zap.String("role", data.User.Role),
	)

	return &Session{User: data.User, Token: data.Token}, nil
}

// Costumes fetches the full costume catalog.
func (c *Client) Costumes(ctx context.Context) ([]rental.Costume, error) {
	var costumes []rental.Costume
	if err := c.do(ctx, http.MethodGet, "/costumes", nil, &costumes); err != nil {
		return nil, err
	}
	return costumes, nil
}

// AddCostume creates a costume (admin only).
func (c *Client) AddCostume(ctx context.Context, params AddCostumeParams) (*rental.Costume, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid costume params: %w", err)
	}
	var costume rental.Costume
	if err := c.do(ctx, http.MethodPost, "/costumes", params, &costume); err != nil {
		return nil, err
	}
	return &costume, nil
}

// DeleteCostume removes a costume (admin only).
func (c *Client) DeleteCostume(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/costumes/%d", id), nil, nil)
}

// CreateReservation places a reservation for the current user.
func (c *Client) CreateReservation(ctx context.Context, params CreateReservationParams) (*rental.Reservation, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid reservation params: %w", err)
	}
	var res rental.Reservation
	if err := c.do(ctx, http.MethodPost, "/reservations", params, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// MyReservations fetches reservations belonging to the current user.
func (c *Client) MyReservations(ctx context.Context) ([]rental.Reservation, error) {
	var reservations []rental.Reservation
	if err := c.do(ctx, http.MethodGet, "/reservations/my", nil, &reservations); err != nil {
		return nil, err
	}
	return reservations, nil
}

// AllReservations fetches every reservation (admin only).
func (c *Client) AllReservations(ctx context.Context) ([]rental.Reservation, error) {
	var reservations []rental.Reservation
	if err := c.do(ctx, http.MethodGet, "/reservations", nil, &reservations); err != nil {
		return nil, err
	}
	return reservations, nil
}

// ApproveReservation approves a pending reservation (admin only).
func (c *Client) ApproveReservation(ctx context.Context, id int64) (*rental.Reservation, error) {
	var res rental.Reservation
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/reservations/%d/approve", id), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// RejectReservation rejects a pending reservation (admin only).
func (c *Client) RejectReservation(ctx context.Context, id int64) (*rental.Reservation, error) {
	var res rental.Reservation
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/reservations/%d/reject", id), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// do issues one request and decodes the backend envelope into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug("backend request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &APIError{StatusCode: resp.StatusCode}
		}
		return fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.Success {
		return &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode response data: %w", err)
		}
	}

	return nil
}
