package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ActivityKind identifies one source of workstation activity
type ActivityKind string

const (
	KindAFK     ActivityKind = "afk"
	KindWindow  ActivityKind = "window"
	KindChrome  ActivityKind = "url-chrome"
	KindFirefox ActivityKind = "url-firefox"
	KindEdge    ActivityKind = "url-edge"
)

// AllKinds lists every activity kind in dispatch order
var AllKinds = []ActivityKind{KindAFK, KindWindow, KindChrome, KindFirefox, KindEdge}

// ParseActivityKind converts a string into a known ActivityKind
func ParseActivityKind(s string) (ActivityKind, error) {
	kind := ActivityKind(strings.ToLower(strings.TrimSpace(s)))
	for _, k := range AllKinds {
		if k == kind {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown activity kind: %q", s)
}

// RequestChannel returns the inbound channel name for the kind
func (k ActivityKind) RequestChannel() string {
	switch k {
	case KindAFK:
		return "collect_afk"
	case KindWindow:
		return "collect_window"
	case KindChrome:
		return "collect_chrome_activities"
	case KindFirefox:
		return "collect_firefox_activities"
	case KindEdge:
		return "collect_edge_activities"
	}
	return "collect_" + string(k)
}

// ResultChannel returns the outbound channel name for the kind
func (k ActivityKind) ResultChannel() string {
	return "push_" + strings.TrimPrefix(k.RequestChannel(), "collect_")
}

// DateRange is an inclusive collection window
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Validate checks that the range is well formed
func (r DateRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return fmt.Errorf("date range bounds must be set")
	}
	if r.End.Before(r.Start) {
		return fmt.Errorf("date range end %s is before start %s",
			r.End.Format(time.RFC3339), r.Start.Format(time.RFC3339))
	}
	return nil
}

// RawEvent is a daemon event passed through untouched
type RawEvent = json.RawMessage

// CollectionRequest asks for one kind of activity on behalf of a timer session
type CollectionRequest struct {
	TimerID   string    `json:"timerId"`
	DateRange DateRange `json:"dateRange"`
}

// CollectionResult carries the events collected for a request
type CollectionResult struct {
	TimerID string       `json:"timerId"`
	Kind    ActivityKind `json:"kind"`
	Events  []RawEvent   `json:"events"`
}

// ActivityBatchRequest is the upload payload sent to the backend
type ActivityBatchRequest struct {
	DeviceID       string             `json:"deviceId"`
	Results        []CollectionResult `json:"results"`
	BatchTimestamp int64              `json:"batchTimestamp"` // Unix timestamp in milliseconds
}
