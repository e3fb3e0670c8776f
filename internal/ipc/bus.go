package ipc

import (
	"context"
	"errors"
	"sync"

	"Mansoor88-6/activity-agent/internal/models"

	"go.uber.org/zap"
)

// ErrClosed is returned once the bus has been closed
var ErrClosed = errors.New("ipc bus closed")

// Bus carries collection requests and results between the timer, the
// correlator and the uploader. Each activity kind has its own request
// channel and its own result channel, so a stalled kind never holds up
// another.
type Bus struct {
	requests map[models.ActivityKind]chan models.CollectionRequest
	results  map[models.ActivityKind]chan models.CollectionResult
	logger   *zap.Logger

	closeOnce sync.Once
	stopChan  chan struct{}
	wg        sync.WaitGroup
}

// NewBus creates a bus with the given per-channel buffer size
func NewBus(buffer int, logger *zap.Logger) *Bus {
	b := &Bus{
		requests: make(map[models.ActivityKind]chan models.CollectionRequest, len(models.AllKinds)),
		results:  make(map[models.ActivityKind]chan models.CollectionResult, len(models.AllKinds)),
		logger:   logger,
		stopChan: make(chan struct{}),
	}
	for _, kind := range models.AllKinds {
		b.requests[kind] = make(chan models.CollectionRequest, buffer)
		b.results[kind] = make(chan models.CollectionResult, buffer)
	}
	return b
}

// Request emits a collection request on the kind's inbound channel
func (b *Bus) Request(ctx context.Context, kind models.ActivityKind, req models.CollectionRequest) error {
	if b.isClosed() {
		return ErrClosed
	}

	ch, ok := b.requests[kind]
	if !ok {
		return errors.New("no request channel for kind " + string(kind))
	}

	select {
	case ch <- req:
		b.logger.Debug("Collection request emitted",
			zap.String("channel", kind.RequestChannel()),
			zap.String("timer_id", req.TimerID),
		)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-b.stopChan:
		return ErrClosed
	}
}

// Listen arms a loop delivering every request of kind to handler.
// Each call arms another loop.
func (b *Bus) Listen(kind models.ActivityKind, handler func(models.CollectionRequest)) {
	ch := b.requests[kind]
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for {
			select {
			case req := <-ch:
				handler(req)
			case <-b.stopChan:
				return
			}
		}
	}()

	b.logger.Debug("Listener armed", zap.String("channel", kind.RequestChannel()))
}

// Publish pushes a result on the result channel of its kind
func (b *Bus) Publish(ctx context.Context, result models.CollectionResult) error {
	if b.isClosed() {
		return ErrClosed
	}

	ch, ok := b.results[result.Kind]
	if !ok {
		return errors.New("no result channel for kind " + string(result.Kind))
	}

	select {
	case ch <- result:
		b.logger.Debug("Collection result published",
			zap.String("channel", result.Kind.ResultChannel()),
			zap.String("timer_id", result.TimerID),
			zap.Int("event_count", len(result.Events)),
		)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-b.stopChan:
		return ErrClosed
	}
}

// Results is the outbound result channel of kind, or nil for an unknown kind
func (b *Bus) Results(kind models.ActivityKind) <-chan models.CollectionResult {
	ch, ok := b.results[kind]
	if !ok {
		return nil
	}
	return ch
}

// Done is closed when the bus shuts down
func (b *Bus) Done() <-chan struct{} {
	return b.stopChan
}

// Close stops all listener loops; pending requests are dropped
func (b *Bus) Close() {
	closed := false
	b.closeOnce.Do(func() {
		close(b.stopChan)
		closed = true
	})
	if !closed {
		return
	}

	b.wg.Wait()
	b.logger.Info("IPC bus closed")
}

func (b *Bus) isClosed() bool {
	select {
	case <-b.stopChan:
		return true
	default:
		return false
	}
}
