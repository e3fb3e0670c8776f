package collector

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"Mansoor88-6/activity-agent/internal/client"
	"Mansoor88-6/activity-agent/internal/models"

	"go.uber.org/zap"
)

// ErrNoBucket is reported by the resolver when a kind has no daemon bucket
var ErrNoBucket = errors.New("daemon bucket not found")

// BucketLister lists the daemon's buckets
type BucketLister interface {
	ListBuckets(ctx context.Context) (map[string]client.Bucket, error)
}

// EventFetcher reads raw events from one daemon bucket
type EventFetcher interface {
	GetEvents(ctx context.Context, bucketID string, dateRange models.DateRange) ([]models.RawEvent, error)
}

// Daemon is the part of the daemon API used for collection
type Daemon interface {
	BucketLister
	EventFetcher
}

// Collector fetches the raw events of one activity kind
type Collector interface {
	Collect(ctx context.Context, dateRange models.DateRange) ([]models.RawEvent, error)
}

// BucketResolver maps a configured bucket name to the daemon's bucket id.
// Nothing is cached: every call lists the buckets again.
type BucketResolver struct {
	daemon BucketLister
	logger *zap.Logger
}

// NewBucketResolver creates a new bucket resolver
func NewBucketResolver(daemon BucketLister, logger *zap.Logger) *BucketResolver {
	return &BucketResolver{daemon: daemon, logger: logger}
}

// Resolve returns the bucket id for name, or ErrNoBucket when the listing
// fails or holds no matching bucket
func (r *BucketResolver) Resolve(ctx context.Context, name string) (string, error) {
	buckets, err := r.daemon.ListBuckets(ctx)
	if err != nil {
		r.logger.Warn("Failed to list daemon buckets",
			zap.String("bucket", name),
			zap.Error(err),
		)
		return "", fmt.Errorf("%w: %s: %v", ErrNoBucket, name, err)
	}

	if _, ok := buckets[name]; ok {
		return name, nil
	}

	// browser watchers suffix their bucket with the host name
	ids := make([]string, 0, len(buckets))
	for id := range buckets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if strings.HasPrefix(id, name+"_") {
			return id, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrNoBucket, name)
}

// SourceCollector collects events of a single activity kind
type SourceCollector struct {
	kind       models.ActivityKind
	bucketName string
	resolver   *BucketResolver
	daemon     EventFetcher
	logger     *zap.Logger
}

// NewSourceCollector creates a collector for one kind
func NewSourceCollector(
	kind models.ActivityKind,
	bucketName string,
	resolver *BucketResolver,
	daemon EventFetcher,
	logger *zap.Logger,
) *SourceCollector {
	return &SourceCollector{
		kind:       kind,
		bucketName: bucketName,
		resolver:   resolver,
		daemon:     daemon,
		logger:     logger.With(zap.String("kind", string(kind))),
	}
}

// NewSourceCollectors builds one collector per configured kind
func NewSourceCollectors(
	daemon Daemon,
	bucketNames map[models.ActivityKind]string,
	logger *zap.Logger,
) map[models.ActivityKind]Collector {
	resolver := NewBucketResolver(daemon, logger)
	collectors := make(map[models.ActivityKind]Collector, len(bucketNames))
	for kind, name := range bucketNames {
		collectors[kind] = NewSourceCollector(kind, name, resolver, daemon, logger)
	}
	return collectors
}

// Kind returns the activity kind served by the collector
func (sc *SourceCollector) Kind() models.ActivityKind {
	return sc.kind
}

// Collect resolves the bucket and fetches its events for the range.
// A missing bucket yields an empty list; a failed fetch is returned.
func (sc *SourceCollector) Collect(ctx context.Context, dateRange models.DateRange) ([]models.RawEvent, error) {
	bucketID, err := sc.resolver.Resolve(ctx, sc.bucketName)
	if err != nil {
		sc.logger.Debug("No bucket for kind, returning empty events",
			zap.String("bucket", sc.bucketName),
			zap.Error(err),
		)
		return []models.RawEvent{}, nil
	}

	events, err := sc.daemon.GetEvents(ctx, bucketID, dateRange)
	if err != nil {
		return nil, fmt.Errorf("collect %s: %w", sc.kind, err)
	}

	sc.logger.Debug("Collected events",
		zap.String("bucket", bucketID),
		zap.Int("count", len(events)),
	)
	return events, nil
}
