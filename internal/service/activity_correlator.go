package service

import (
	"context"
	"fmt"
	"sync"

	"Mansoor88-6/activity-agent/internal/collector"
	"Mansoor88-6/activity-agent/internal/models"

	"go.uber.org/zap"
)

// Transport delivers collection requests and accepts results
type Transport interface {
	Listen(kind models.ActivityKind, handler func(models.CollectionRequest))
	Publish(ctx context.Context, result models.CollectionResult) error
}

// ActivityCorrelator answers collection requests per activity kind and
// republishes the events tagged with the requesting timer id
type ActivityCorrelator struct {
	transport  Transport
	collectors map[models.ActivityKind]collector.Collector
	logger     *zap.Logger

	mu    sync.Mutex
	armed bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewActivityCorrelator creates a new correlator
func NewActivityCorrelator(
	transport Transport,
	collectors map[models.ActivityKind]collector.Collector,
	logger *zap.Logger,
) *ActivityCorrelator {
	ctx, cancel := context.WithCancel(context.Background())
	return &ActivityCorrelator{
		transport:  transport,
		collectors: collectors,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Setup registers one listener per activity kind. Only the first call
// has any effect; it reports whether listeners were armed by this call.
func (c *ActivityCorrelator) Setup() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.armed {
		c.logger.Debug("Activity listeners already registered")
		return false
	}
	c.armed = true

	for _, kind := range models.AllKinds {
		col, ok := c.collectors[kind]
		if !ok {
			c.logger.Warn("No collector configured for kind", zap.String("kind", string(kind)))
			continue
		}

		kind := kind
		c.transport.Listen(kind, func(req models.CollectionRequest) {
			c.dispatch(kind, col, req)
		})
	}

	c.logger.Info("Activity listeners registered", zap.Int("kinds", len(c.collectors)))
	return true
}

// Stop cancels in-flight collections and waits for them to return
func (c *ActivityCorrelator) Stop() {
	c.mu.Lock()
	c.cancel()
	c.mu.Unlock()

	c.wg.Wait()
	c.logger.Info("Activity correlator stopped")
}

// dispatch runs one collection without blocking the listener loop.
// Requests that arrive after Stop are dropped.
func (c *ActivityCorrelator) dispatch(kind models.ActivityKind, col collector.Collector, req models.CollectionRequest) {
	c.mu.Lock()
	if c.ctx.Err() != nil {
		c.mu.Unlock()
		c.logger.Debug("Correlator stopped, ignoring request",
			zap.String("kind", string(kind)),
			zap.String("timer_id", req.TimerID),
		)
		return
	}
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()

		result, err := c.collect(kind, col, req)
		if err != nil {
			c.logger.Warn("Collection dropped",
				zap.String("kind", string(kind)),
				zap.String("timer_id", req.TimerID),
				zap.Error(err),
			)
			return
		}

		if err := c.transport.Publish(c.ctx, result); err != nil {
			c.logger.Warn("Failed to publish collection result",
				zap.String("channel", kind.ResultChannel()),
				zap.String("timer_id", req.TimerID),
				zap.Error(err),
			)
		}
	}()
}

func (c *ActivityCorrelator) collect(kind models.ActivityKind, col collector.Collector, req models.CollectionRequest) (result models.CollectionResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("collector panic: %v", r)
		}
	}()

	if err := req.DateRange.Validate(); err != nil {
		return result, err
	}

	events, err := col.Collect(c.ctx, req.DateRange)
	if err != nil {
		return result, err
	}

	return models.CollectionResult{
		TimerID: req.TimerID,
		Kind:    kind,
		Events:  events,
	}, nil
}
