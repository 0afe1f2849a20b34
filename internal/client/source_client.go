package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"webcorp/telemetry-bridge/internal/models"

	"go.uber.org/zap"
)

// SourceClient handles communication with the source tracking platform
type SourceClient struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewSourceClient creates a new source platform client
func NewSourceClient(baseURL, username, password string, timeout time.Duration, logger *zap.Logger) *SourceClient {
	return &SourceClient{
		baseURL:  baseURL,
		username: username,
		password: password,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// FetchDevices retrieves the full device list from the source platform
func (c *SourceClient) FetchDevices(ctx context.Context) ([]models.Device, error) {
	var devices []models.Device
	if err := c.get(ctx, "/devices", &devices); err != nil {
		return nil, err
	}

	c.logger.Debug("Devices fetched",
		zap.Int("count", len(devices)),
	)
	return devices, nil
}

// FetchPositions retrieves the current position snapshot from the source platform
func (c *SourceClient) FetchPositions(ctx context.Context) ([]models.PositionRecord, error) {
	var positions []models.PositionRecord
	if err := c.get(ctx, "/positions", &positions); err != nil {
		return nil, err
	}

	c.logger.Debug("Positions fetched",
		zap.Int("count", len(positions)),
	)
	return positions, nil
}

func (c *SourceClient) get(ctx context.Context, path string, out interface{}) error {
	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(startTime)

	if err != nil {
		c.logger.Error("Source request failed",
			zap.Error(err),
			zap.String("path", path),
			zap.Duration("duration", duration),
		)
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		c.logger.Error("Source authentication failed",
			zap.Int("status_code", resp.StatusCode),
			zap.String("path", path),
		)
		return &AuthError{
			Message:    fmt.Sprintf("source returned status %d: %s", resp.StatusCode, string(body)),
			StatusCode: resp.StatusCode,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("Source error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("path", path),
			zap.String("response", string(body)),
		)
		return &SourceError{
			Message:    fmt.Sprintf("source returned status %d: %s", resp.StatusCode, string(body)),
			StatusCode: resp.StatusCode,
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// Error types
type AuthError struct {
	Message    string
	StatusCode int
}

func (e *AuthError) Error() string {
	return e.Message
}

type SourceError struct {
	Message    string
	StatusCode int
}

func (e *SourceError) Error() string {
	return e.Message
}
