package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"webcorp/telemetry-bridge/internal/models"
	"webcorp/telemetry-bridge/internal/observability"

	"go.uber.org/zap"
)

// Client posts finished payloads to the downstream provider. It makes
// a single attempt per payload: no retry, backoff or circuit breaking.
type Client struct {
	url        string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new downstream delivery client
func NewClient(url, token string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		url:   url,
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Result is a successful downstream response
type Result struct {
	StatusCode int
	Body       json.RawMessage
}

// Deliver issues one POST of the payload with token authorization.
// On failure the error carries the downstream detail; the caller
// decides what to report.
func (c *Client) Deliver(ctx context.Context, payload *models.OutgoingPayload) (*Result, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+c.token)

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(startTime)
	observability.DeliveryLatency.Observe(duration.Seconds())

	if err != nil {
		c.logger.Error("Downstream delivery failed",
			zap.Error(err),
			zap.String("imei", payload.IMEI),
			zap.Duration("duration", duration),
		)
		return nil, fmt.Errorf("delivery request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		c.logger.Info("Payload delivered downstream",
			zap.String("imei", payload.IMEI),
			zap.Int("items", len(payload.Items)),
			zap.Int("status_code", resp.StatusCode),
			zap.Duration("duration", duration),
		)
		return &Result{
			StatusCode: resp.StatusCode,
			Body:       json.RawMessage(body),
		}, nil
	}

	c.logger.Error("Downstream rejected payload",
		zap.String("imei", payload.IMEI),
		zap.Int("status_code", resp.StatusCode),
		zap.String("response", string(body)),
	)
	return nil, &DeliveryError{
		Message:    fmt.Sprintf("downstream returned status %d: %s", resp.StatusCode, string(body)),
		StatusCode: resp.StatusCode,
	}
}

// DeliveryError reports a downstream HTTP rejection
type DeliveryError struct {
	Message    string
	StatusCode int
}

func (e *DeliveryError) Error() string {
	return e.Message
}
