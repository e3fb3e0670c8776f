package service

import (
	"context"
	"sync"
	"time"

	"Mansoor88-6/activity-agent/internal/collector"
	"Mansoor88-6/activity-agent/internal/models"

	"go.uber.org/zap"
)

const (
	retryBatchLimit   = 100
	staleResultAge    = 7 * 24 * time.Hour
	staleResultTries  = 10
	shutdownFlushWait = 2 * time.Second
)

// ResultSource streams collection results, one channel per activity kind
type ResultSource interface {
	Results(kind models.ActivityKind) <-chan models.CollectionResult
}

// BatchSender uploads collection results to the backend
type BatchSender interface {
	SendBatch(ctx context.Context, deviceID string, results []models.CollectionResult) error
}

// Outbox stores results the backend did not accept
type Outbox interface {
	Enqueue(ctx context.Context, deviceID string, results []models.CollectionResult) error
	Dequeue(ctx context.Context, deviceID string, limit int) ([]models.CollectionResult, []int64, error)
	Remove(ctx context.Context, ids []int64) error
	IncrementRetry(ctx context.Context, ids []int64) error
	PendingCount(ctx context.Context, deviceID string) (int, error)
	CleanupOld(ctx context.Context, olderThan time.Duration, maxRetries int) (int64, error)
}

// UploadService forwards collection results to the backend, parking them
// in the outbox while the backend is unreachable
type UploadService struct {
	source        ResultSource
	batcher       *collector.Batcher
	sender        BatchSender
	outbox        Outbox
	deviceID      string
	retryInterval time.Duration
	logger        *zap.Logger

	ctx      context.Context
	cancel   context.CancelFunc
	stopChan chan struct{}
	mu       sync.Mutex
	wg       sync.WaitGroup
}

// NewUploadService creates a new upload service
func NewUploadService(
	source ResultSource,
	batcher *collector.Batcher,
	sender BatchSender,
	outbox Outbox,
	deviceID string,
	retryInterval time.Duration,
	logger *zap.Logger,
) *UploadService {
	ctx, cancel := context.WithCancel(context.Background())
	return &UploadService{
		source:        source,
		batcher:       batcher,
		sender:        sender,
		outbox:        outbox,
		deviceID:      deviceID,
		retryInterval: retryInterval,
		logger:        logger,
		ctx:           ctx,
		cancel:        cancel,
		stopChan:      make(chan struct{}),
	}
}

// Start begins consuming results and the outbox retry loop
func (us *UploadService) Start() {
	us.logger.Info("Starting upload service", zap.String("device_id", us.deviceID))

	us.batcher.Start(us.onBatchReady)

	for _, kind := range models.AllKinds {
		results := us.source.Results(kind)
		if results == nil {
			continue
		}
		us.wg.Add(1)
		go us.consume(results)
	}

	us.wg.Add(1)
	go us.queueProcessor()
}

// Stop drains the batcher and stops the background loops
func (us *UploadService) Stop() {
	us.mu.Lock()
	select {
	case <-us.stopChan:
		us.mu.Unlock()
		return
	default:
		close(us.stopChan)
	}
	us.mu.Unlock()

	done := make(chan struct{})
	go func() {
		us.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(shutdownFlushWait):
		us.logger.Warn("Some goroutines did not stop within timeout")
	}

	// flushes through onBatchReady, which still has a live context
	us.batcher.Stop()
	us.cancel()

	cleanupCtx, cancel := context.WithTimeout(context.Background(), shutdownFlushWait)
	defer cancel()
	if _, err := us.outbox.CleanupOld(cleanupCtx, staleResultAge, staleResultTries); err != nil {
		us.logger.Error("Failed to cleanup old results", zap.Error(err))
	}

	us.logger.Info("Upload service stopped")
}

// PendingCount reports results waiting in the batcher and the outbox
func (us *UploadService) PendingCount(ctx context.Context) (batched int, queued int, err error) {
	queued, err = us.outbox.PendingCount(ctx, us.deviceID)
	return us.batcher.PendingCount(), queued, err
}

func (us *UploadService) consume(results <-chan models.CollectionResult) {
	defer us.wg.Done()

	for {
		select {
		case result := <-results:
			us.batcher.Add(result)
		case <-us.stopChan:
			return
		}
	}
}

// onBatchReady tries the backend first and queues locally on failure
func (us *UploadService) onBatchReady(results []models.CollectionResult) {
	if len(results) == 0 {
		return
	}

	us.logger.Debug("Batch ready to send", zap.Int("result_count", len(results)))

	if err := us.sender.SendBatch(us.ctx, us.deviceID, results); err != nil {
		us.logger.Warn("Failed to send batch, queuing locally",
			zap.Error(err),
			zap.Int("result_count", len(results)),
		)

		// the service context may be cancelled already on shutdown
		if queueErr := us.outbox.Enqueue(context.Background(), us.deviceID, results); queueErr != nil {
			us.logger.Error("Failed to queue results", zap.Error(queueErr))
		}
	}
}

func (us *UploadService) queueProcessor() {
	defer us.wg.Done()

	ticker := time.NewTicker(us.retryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			us.processQueue()
		case <-us.stopChan:
			return
		}
	}
}

// processQueue attempts to send one batch of queued results
func (us *UploadService) processQueue() {
	ctx := us.ctx

	pendingCount, err := us.outbox.PendingCount(ctx, us.deviceID)
	if err != nil {
		us.logger.Error("Failed to get pending count", zap.Error(err))
		return
	}
	if pendingCount == 0 {
		return
	}

	us.logger.Debug("Processing queued results", zap.Int("pending_count", pendingCount))

	results, ids, err := us.outbox.Dequeue(ctx, us.deviceID, retryBatchLimit)
	if err != nil {
		us.logger.Error("Failed to dequeue results", zap.Error(err))
		return
	}
	if len(results) == 0 {
		return
	}

	if err := us.sender.SendBatch(ctx, us.deviceID, results); err != nil {
		us.logger.Warn("Failed to send queued batch",
			zap.Error(err),
			zap.Int("result_count", len(results)),
		)
		if retryErr := us.outbox.IncrementRetry(ctx, ids); retryErr != nil {
			us.logger.Error("Failed to increment retry count", zap.Error(retryErr))
		}
		return
	}

	if err := us.outbox.Remove(ctx, ids); err != nil {
		us.logger.Error("Failed to remove sent results from queue", zap.Error(err))
		return
	}
	us.logger.Info("Successfully sent queued results", zap.Int("result_count", len(results)))
}
