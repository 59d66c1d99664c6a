package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/neoleocvxs-lang/attendance-bot/pkg/dateutil"
	"go.uber.org/zap"
)

const (
	defaultTimeout = 30 * time.Second
	defaultRetries = 3
)

// Client implements Source against the Biosoft terminal's JSON endpoints.
type Client struct {
	baseURL    string
	session    *SessionManager
	httpClient *http.Client
	logger     *zap.Logger
}

type weekLabelResponse struct {
	Label string `json:"label"`
}

type dayShiftResponse struct {
	Shift string `json:"shift"`
}

type navigateRequest struct {
	Direction string `json:"direction"`
}

type scanRow struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

type overtimeRow struct {
	WorkDate string `json:"workDate"`
	Row      string `json:"row"`
}

// NewClient creates a new terminal client
func NewClient(baseURL string, session *SessionManager, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		session: session,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

// WeekLabel returns the currently displayed week's free-text label
func (c *Client) WeekLabel(ctx context.Context) (string, error) {
	var resp weekLabelResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/schedule/week", nil, &resp); err != nil {
		return "", fmt.Errorf("failed to fetch week label: %w", err)
	}
	return resp.Label, nil
}

// Navigate moves the schedule view one week forward or backward
func (c *Client) Navigate(ctx context.Context, dir Direction) error {
	req := navigateRequest{Direction: dir.String()}
	if err := c.doRequest(ctx, http.MethodPost, "/api/schedule/week/navigate", req, nil); err != nil {
		return fmt.Errorf("failed to navigate week %s: %w", dir, err)
	}

	c.logger.Debug("Navigated schedule week", zap.String("direction", dir.String()))
	return nil
}

// DayShiftText returns the raw shift descriptor for a weekday of the
// displayed week
func (c *Client) DayShiftText(ctx context.Context, weekday time.Weekday) (string, error) {
	path := "/api/schedule/week/day?weekday=" + url.QueryEscape(dateutil.WeekdayAbbr(weekday))

	var resp dayShiftResponse
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return "", fmt.Errorf("failed to fetch shift for %s: %w", weekday, err)
	}
	return resp.Shift, nil
}

// ScanRecords returns punch events for the inclusive date interval
func (c *Client) ScanRecords(ctx context.Context, from, to time.Time) ([]ScanRecord, error) {
	path := fmt.Sprintf("/api/timecheck/scans?from=%s&to=%s",
		url.QueryEscape(dateutil.FormatLabel(from)),
		url.QueryEscape(dateutil.FormatLabel(to)))

	var rows []scanRow
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &rows); err != nil {
		return nil, fmt.Errorf("failed to fetch scan records: %w", err)
	}

	records := make([]ScanRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, ScanRecord{DateLabel: row.Date, Time: row.Time})
	}

	c.logger.Info("Scan records fetched",
		zap.String("from", dateutil.FormatLabel(from)),
		zap.String("to", dateutil.FormatLabel(to)),
		zap.Int("count", len(records)))

	return records, nil
}

// OvertimeRecords returns overtime-request rows for the inclusive date interval
func (c *Client) OvertimeRecords(ctx context.Context, from, to time.Time) ([]OvertimeRecord, error) {
	path := fmt.Sprintf("/api/overtime/requests?from=%s&to=%s",
		url.QueryEscape(dateutil.FormatLabel(from)),
		url.QueryEscape(dateutil.FormatLabel(to)))

	var rows []overtimeRow
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &rows); err != nil {
		return nil, fmt.Errorf("failed to fetch overtime records: %w", err)
	}

	records := make([]OvertimeRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, OvertimeRecord{WorkDate: row.WorkDate, Row: row.Row})
	}

	c.logger.Info("Overtime records fetched",
		zap.String("from", dateutil.FormatLabel(from)),
		zap.String("to", dateutil.FormatLabel(to)),
		zap.Int("count", len(records)))

	return records, nil
}

// doRequest performs an authenticated request with retries
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var jsonData []byte
	if body != nil {
		var err error
		jsonData, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	fullURL := c.baseURL + path

	var lastErr error
	for attempt := 1; attempt <= defaultRetries; attempt++ {
		var bodyReader io.Reader
		if jsonData != nil {
			bodyReader = bytes.NewReader(jsonData)
		}

		err := c.doRequestOnce(ctx, method, fullURL, bodyReader, result)
		if err == nil {
			return nil
		}

		lastErr = err
		c.logger.Warn("Terminal request failed, retrying",
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

	return fmt.Errorf("terminal request failed after %d attempts: %w", defaultRetries, lastErr)
}

// doRequestOnce performs a single authenticated HTTP request
func (c *Client) doRequestOnce(ctx context.Context, method, url string, body io.Reader, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	token, err := c.session.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to get session token: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		// Session expired server-side; next attempt logs in again
		c.session.Invalidate()
		return fmt.Errorf("session rejected by terminal: %s", string(respBody))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("terminal request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}
