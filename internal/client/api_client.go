package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"Mansoor88-6/activity-agent/internal/models"

	"go.uber.org/zap"
)

// timeSlotRelations are loaded with every time slot fetched for review
var timeSlotRelations = []string{"screenshots", "timeLogs", "employee.user"}

// APIClient handles communication with the backend API
type APIClient struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
	logger     *zap.Logger
}

// NewAPIClient creates a new API client
func NewAPIClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		timeout: timeout,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// SendBatch uploads a batch of collection results to the backend
func (c *APIClient) SendBatch(ctx context.Context, deviceID string, results []models.CollectionResult) error {
	if len(results) == 0 {
		return fmt.Errorf("cannot send empty batch")
	}

	batch := models.ActivityBatchRequest{
		DeviceID:       deviceID,
		Results:        results,
		BatchTimestamp: time.Now().UnixMilli(),
	}

	jsonData, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("failed to marshal batch: %w", err)
	}

	startTime := time.Now()
	_, err = c.do(ctx, http.MethodPost, "/api/v1/activities/batch", nil, jsonData)
	duration := time.Since(startTime)
	if err != nil {
		c.logger.Error("Failed to send batch",
			zap.Error(err),
			zap.Int("result_count", len(results)),
			zap.Duration("duration", duration),
		)
		return err
	}

	c.logger.Info("Batch sent successfully",
		zap.Int("result_count", len(results)),
		zap.Duration("duration", duration),
	)
	return nil
}

// FetchTimeSlots loads the time slots of a review range with their
// screenshots, time logs and employee user
func (c *APIClient) FetchTimeSlots(ctx context.Context, q models.TimeSlotQuery) ([]models.TimeSlot, error) {
	params := url.Values{}
	for i, relation := range timeSlotRelations {
		params.Set("relations["+strconv.Itoa(i)+"]", relation)
	}
	if q.OrganizationID != "" {
		params.Set("organizationId", q.OrganizationID)
	}
	for i, id := range q.EmployeeIDs {
		params.Set("employeeIds["+strconv.Itoa(i)+"]", id)
	}
	if !q.Start.IsZero() {
		params.Set("startDate", q.Start.UTC().Format(time.RFC3339))
	}
	if !q.End.IsZero() {
		params.Set("endDate", q.End.UTC().Format(time.RFC3339))
	}

	body, err := c.do(ctx, http.MethodGet, "/api/timesheet/time-slot", params, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch time slots: %w", err)
	}

	var slots []models.TimeSlot
	if err := json.Unmarshal(body, &slots); err != nil {
		return nil, fmt.Errorf("failed to parse time slots: %w", err)
	}
	return slots, nil
}

// DeleteTimeSlots removes the given time slots of an organization
func (c *APIClient) DeleteTimeSlots(ctx context.Context, ids []string, organizationID string) error {
	if len(ids) == 0 {
		return fmt.Errorf("no time slot ids to delete")
	}

	params := url.Values{}
	for i, id := range ids {
		params.Set("ids["+strconv.Itoa(i)+"]", id)
	}
	params.Set("organizationId", organizationID)

	if _, err := c.do(ctx, http.MethodDelete, "/api/timesheet/time-slot", params, nil); err != nil {
		return fmt.Errorf("delete time slots: %w", err)
	}

	c.logger.Info("Time slots deleted",
		zap.Int("count", len(ids)),
		zap.String("organization_id", organizationID),
	)
	return nil
}

// HealthCheck checks if the backend is reachable
func (c *APIClient) HealthCheck(ctx context.Context) error {
	if _, err := c.do(ctx, http.MethodGet, "/health", nil, nil); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}

func (c *APIClient) do(ctx context.Context, method, path string, params url.Values, payload []byte) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewBuffer(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}

	err = statusError("backend", resp.StatusCode, body)
	switch err.(type) {
	case *RateLimitError:
		c.logger.Warn("Rate limited",
			zap.String("path", path),
			zap.Int("status_code", resp.StatusCode),
		)
	default:
		c.logger.Error("Backend request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status_code", resp.StatusCode),
			zap.String("response", string(body)),
		)
	}
	return nil, err
}
