package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"Mansoor88-6/activity-agent/internal/models"

	"go.uber.org/zap"
)

// Bucket is the daemon's description of one event container
type Bucket struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Client   string `json:"client"`
	Hostname string `json:"hostname"`
	Created  string `json:"created,omitempty"`
}

// DaemonClient talks to the local activity-tracking daemon
type DaemonClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewDaemonClient creates a new daemon client
func NewDaemonClient(baseURL string, timeout time.Duration, logger *zap.Logger) *DaemonClient {
	return &DaemonClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// ListBuckets returns every bucket the daemon knows, keyed by bucket id
func (c *DaemonClient) ListBuckets(ctx context.Context) (map[string]Bucket, error) {
	var buckets map[string]Bucket
	if err := c.getJSON(ctx, "/api/0/buckets/", nil, &buckets); err != nil {
		return nil, fmt.Errorf("list buckets: %w", err)
	}
	return buckets, nil
}

// GetEvents fetches the raw events of a bucket for the inclusive range
func (c *DaemonClient) GetEvents(ctx context.Context, bucketID string, dateRange models.DateRange) ([]models.RawEvent, error) {
	query := url.Values{}
	query.Set("start", dateRange.Start.UTC().Format(time.RFC3339Nano))
	query.Set("end", dateRange.End.UTC().Format(time.RFC3339Nano))

	var events []models.RawEvent
	path := "/api/0/buckets/" + url.PathEscape(bucketID) + "/events"
	if err := c.getJSON(ctx, path, query, &events); err != nil {
		return nil, fmt.Errorf("get events from %s: %w", bucketID, err)
	}
	if events == nil {
		events = []models.RawEvent{}
	}
	return events, nil
}

// Ping checks that the daemon answers a bucket listing
func (c *DaemonClient) Ping(ctx context.Context) error {
	_, err := c.ListBuckets(ctx)
	return err
}

func (c *DaemonClient) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(startTime)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("Daemon request completed",
		zap.String("path", path),
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("duration", duration),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError("daemon", resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
