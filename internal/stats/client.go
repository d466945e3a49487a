// Package stats talks to the downstream training-stats service. Every call
// fails open: when the service is unreachable or misbehaves, callers get
// empty stats and the request proceeds.
package stats

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/nursultanq/gymapp/pkg/logger"
)

// CorrelationIDHeader carries the request correlation id to the downstream
// service so both sides log the same id.
const CorrelationIDHeader = "gym-app-correlation-id"

const defaultTimeout = 5 * time.Second

// TokenSource supplies a bearer token for outbound stats calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TrainingEvent notifies the stats service about a recorded or removed
// training session.
type TrainingEvent struct {
	TrainerUsername string    `json:"trainer_username"`
	TrainerFirst    string    `json:"trainer_first_name"`
	TrainerLast     string    `json:"trainer_last_name"`
	IsActive        bool      `json:"is_active"`
	Date            time.Time `json:"date"`
	DurationMinutes int       `json:"duration_minutes"`
	Delete          bool      `json:"delete"`
}

// MonthlyStats maps year -> month -> total training minutes.
type MonthlyStats map[string]map[string]int

// Config holds the client settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client is the HTTP client for the training-stats service.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	log     *zap.Logger
}

// NewClient builds a stats client. The token source may be nil, in which
// case calls go out unauthenticated.
func NewClient(cfg Config, tokens TokenSource) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("stats client: base url is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("stats client: invalid base url: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		log:     logger.WithModule("stats.client"),
	}, nil
}

// NotifyTraining pushes a training event to the stats service. The event is
// advisory; a delivery failure is logged and swallowed.
func (c *Client) NotifyTraining(ctx context.Context, correlationID string, event TrainingEvent) {
	body, err := json.Marshal(event)
	if err != nil {
		c.log.Error("encode training event", zap.Error(err))
		return
	}

	resp, err := c.do(ctx, http.MethodPost, "/stats-api/v1/trainer-stats-update", correlationID, bytes.NewReader(body))
	if err != nil {
		c.log.Warn("stats update skipped, service unavailable", zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		c.log.Warn("stats update rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("trainer", event.TrainerUsername))
	}
}

// MonthlyDuration fetches the trainer's training minutes for the given year
// and month. Returns zero when the service is unavailable.
func (c *Client) MonthlyDuration(ctx context.Context, correlationID, trainerUsername string, year int, month time.Month) int {
	path := fmt.Sprintf("/stats-api/v1/trainer-monthly-stats?username=%s&year=%d&month=%d",
		url.QueryEscape(trainerUsername), year, int(month))

	resp, err := c.do(ctx, http.MethodGet, path, correlationID, nil)
	if err != nil {
		c.log.Warn("monthly stats unavailable, returning zero", zap.Error(err))
		return 0
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn("monthly stats rejected", zap.Int("status", resp.StatusCode))
		return 0
	}

	var payload struct {
		DurationMinutes int `json:"duration_minutes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.log.Warn("monthly stats payload malformed", zap.Error(err))
		return 0
	}
	return payload.DurationMinutes
}

// FullStats fetches the trainer's complete per-month totals. Returns an
// empty map when the service is unavailable.
func (c *Client) FullStats(ctx context.Context, correlationID, trainerUsername string) MonthlyStats {
	path := "/stats-api/v1/trainer-full-stats?username=" + url.QueryEscape(trainerUsername)

	resp, err := c.do(ctx, http.MethodGet, path, correlationID, nil)
	if err != nil {
		c.log.Warn("full stats unavailable, returning empty", zap.Error(err))
		return MonthlyStats{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn("full stats rejected", zap.Int("status", resp.StatusCode))
		return MonthlyStats{}
	}

	var payload MonthlyStats
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.log.Warn("full stats payload malformed", zap.Error(err))
		return MonthlyStats{}
	}
	if payload == nil {
		return MonthlyStats{}
	}
	return payload
}

func (c *Client) do(ctx context.Context, method, path, correlationID string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if correlationID != "" {
		req.Header.Set(CorrelationIDHeader, correlationID)
	}

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			c.log.Debug("no stats token available", zap.Error(err))
		} else if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	return c.http.Do(req)
}
