package collector

import (
	"sync"
	"time"

	"Mansoor88-6/activity-agent/internal/models"

	"go.uber.org/zap"
)

// Batcher collects and batches collection results for upload
type Batcher struct {
	results       []models.CollectionResult
	batchSize     int
	flushInterval time.Duration
	onBatchReady  func([]models.CollectionResult)
	logger        *zap.Logger
	mu            sync.Mutex
	flushTicker   *time.Ticker
	stopChan      chan struct{}
	wg            sync.WaitGroup
}

// NewBatcher creates a new batcher
func NewBatcher(
	batchSize int,
	flushInterval time.Duration,
	logger *zap.Logger,
) *Batcher {
	return &Batcher{
		batchSize:     batchSize,
		flushInterval: flushInterval,
		logger:        logger,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the batcher with auto-flush
func (b *Batcher) Start(onBatchReady func([]models.CollectionResult)) {
	b.onBatchReady = onBatchReady
	b.flushTicker = time.NewTicker(b.flushInterval)

	b.wg.Add(1)
	go b.autoFlushLoop()

	b.logger.Info("Result batcher started",
		zap.Int("batch_size", b.batchSize),
		zap.Duration("flush_interval", b.flushInterval),
	)
}

// Stop stops the auto-flush loop and flushes what is left
func (b *Batcher) Stop() {
	b.mu.Lock()
	select {
	case <-b.stopChan:
		b.mu.Unlock()
		return
	default:
		close(b.stopChan)
	}
	b.mu.Unlock()

	b.wg.Wait()
	if b.flushTicker != nil {
		b.flushTicker.Stop()
	}

	b.Flush()
	b.logger.Info("Result batcher stopped")
}

// Add queues a result, flushing when the batch size is reached
func (b *Batcher) Add(result models.CollectionResult) {
	b.mu.Lock()
	b.results = append(b.results, result)
	var batch []models.CollectionResult
	if len(b.results) >= b.batchSize {
		batch = b.drainLocked()
	}
	b.mu.Unlock()

	if batch != nil {
		b.logger.Debug("Batch size reached, flushing results",
			zap.Int("count", len(batch)),
		)
		b.deliver(batch)
	}
}

// Flush delivers all pending results
func (b *Batcher) Flush() {
	b.mu.Lock()
	batch := b.drainLocked()
	b.mu.Unlock()

	if batch == nil {
		return
	}
	b.logger.Debug("Flushing pending results", zap.Int("count", len(batch)))
	b.deliver(batch)
}

// PendingCount returns the number of results waiting for a flush
func (b *Batcher) PendingCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.results)
}

func (b *Batcher) drainLocked() []models.CollectionResult {
	if len(b.results) == 0 {
		return nil
	}
	batch := make([]models.CollectionResult, len(b.results))
	copy(batch, b.results)
	b.results = b.results[:0]
	return batch
}

func (b *Batcher) deliver(batch []models.CollectionResult) {
	if b.onBatchReady != nil {
		b.onBatchReady(batch)
	}
}

func (b *Batcher) autoFlushLoop() {
	defer b.wg.Done()

	for {
		select {
		case <-b.flushTicker.C:
			b.Flush()
		case <-b.stopChan:
			return
		}
	}
}
