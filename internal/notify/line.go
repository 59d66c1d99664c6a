package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	defaultEndpoint = "https://api.line.me"
	pushPath        = "/v2/bot/message/push"
	defaultTimeout  = 15 * time.Second
	defaultRetries  = 3

	// diagnosticLimit caps the failure message pushed on a fatal run error.
	diagnosticLimit = 100
)

// Sink delivers one formatted status message to the chat channel.
type Sink interface {
	Push(ctx context.Context, text string) error
}

// LineClient pushes messages through the LINE Messaging API.
type LineClient struct {
	endpoint    string
	accessToken string
	userID      string
	httpClient  *http.Client
	logger      *zap.Logger
}

type pushRequest struct {
	To       string        `json:"to"`
	Messages []textMessage `json:"messages"`
}

type textMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// NewLineClient creates a new LINE push client
func NewLineClient(endpoint, accessToken, userID string, logger *zap.Logger) *LineClient {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}

	return &LineClient{
		endpoint:    endpoint,
		accessToken: accessToken,
		userID:      userID,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

// Push sends one text message to the configured recipient
func (c *LineClient) Push(ctx context.Context, text string) error {
	body, err := json.Marshal(pushRequest{
		To:       c.userID,
		Messages: []textMessage{{Type: "text", Text: text}},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal push request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= defaultRetries; attempt++ {
		err := c.pushOnce(ctx, body)
		if err == nil {
			c.logger.Info("Notification delivered",
				zap.Int("length", len(text)),
				zap.Int("attempt", attempt))
			return nil
		}

		lastErr = err
		c.logger.Warn("Notification push failed, retrying",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", defaultRetries),
			zap.Error(err))

		if attempt < defaultRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second * time.Duration(attempt)):
			}
		}
	}

	return fmt.Errorf("notification push failed after %d attempts: %w", defaultRetries, lastErr)
}

func (c *LineClient) pushOnce(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.endpoint+pushPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("LINE API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

// FailureMessage formats a fatal run error as a short diagnostic push,
// truncated so a long stack of wrapped errors does not flood the channel.
func FailureMessage(err error) string {
	return "❌ บอททำงานผิดพลาด: " + truncate(err.Error(), diagnosticLimit)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
