package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"Mansoor88-6/activity-agent/internal/collector"
	"Mansoor88-6/activity-agent/internal/database"
	"Mansoor88-6/activity-agent/internal/models"
	"Mansoor88-6/activity-agent/internal/queue"
)

type kindSource map[models.ActivityKind]chan models.CollectionResult

func newKindSource(buffer int) kindSource {
	source := kindSource{}
	for _, kind := range models.AllKinds {
		source[kind] = make(chan models.CollectionResult, buffer)
	}
	return source
}

func (s kindSource) Results(kind models.ActivityKind) <-chan models.CollectionResult {
	return s[kind]
}

func (s kindSource) push(result models.CollectionResult) {
	s[result.Kind] <- result
}

type fakeSender struct {
	mu      sync.Mutex
	fail    bool
	batches [][]models.CollectionResult
}

func (f *fakeSender) SendBatch(ctx context.Context, deviceID string, results []models.CollectionResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("backend unavailable")
	}
	f.batches = append(f.batches, results)
	return nil
}

func (f *fakeSender) setFail(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = v
}

func (f *fakeSender) sent() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, b := range f.batches {
		n += len(b)
	}
	return n
}

func newTestOutbox(t *testing.T) *queue.ResultQueue {
	t.Helper()
	db, err := database.New(":memory:", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return queue.NewResultQueue(db.DB, zap.NewNop())
}

func TestUploadServiceSendsBatches(t *testing.T) {
	source := newKindSource(4)
	sender := &fakeSender{}
	us := NewUploadService(source, collector.NewBatcher(2, time.Hour, zap.NewNop()),
		sender, newTestOutbox(t), "dev", time.Hour, zap.NewNop())
	us.Start()

	source.push(models.CollectionResult{TimerID: "t", Kind: models.KindAFK})
	source.push(models.CollectionResult{TimerID: "t", Kind: models.KindWindow})

	assert.Eventually(t, func() bool { return sender.sent() == 2 }, 2*time.Second, 10*time.Millisecond)
	us.Stop()
}

func TestUploadServiceQueuesOnFailureAndRetries(t *testing.T) {
	source := newKindSource(4)
	sender := &fakeSender{fail: true}
	outbox := newTestOutbox(t)
	us := NewUploadService(source, collector.NewBatcher(1, time.Hour, zap.NewNop()),
		sender, outbox, "dev", 20*time.Millisecond, zap.NewNop())
	us.Start()
	defer us.Stop()

	source.push(models.CollectionResult{TimerID: "t", Kind: models.KindChrome})

	assert.Eventually(t, func() bool {
		_, queued, err := us.PendingCount(context.Background())
		return err == nil && queued == 1
	}, 2*time.Second, 10*time.Millisecond)

	sender.setFail(false)

	assert.Eventually(t, func() bool {
		_, queued, err := us.PendingCount(context.Background())
		return err == nil && queued == 0 && sender.sent() == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestUploadServiceStopFlushesPending(t *testing.T) {
	source := newKindSource(4)
	sender := &fakeSender{}
	batcher := collector.NewBatcher(10, time.Hour, zap.NewNop())
	us := NewUploadService(source, batcher, sender, newTestOutbox(t), "dev", time.Hour, zap.NewNop())
	us.Start()

	source.push(models.CollectionResult{TimerID: "t", Kind: models.KindEdge})
	assert.Eventually(t, func() bool { return batcher.PendingCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	us.Stop()
	assert.Equal(t, 1, sender.sent())
}

func TestUploadServiceConsumesEveryKind(t *testing.T) {
	source := newKindSource(1)
	sender := &fakeSender{}
	us := NewUploadService(source, collector.NewBatcher(len(models.AllKinds), time.Hour, zap.NewNop()),
		sender, newTestOutbox(t), "dev", time.Hour, zap.NewNop())
	us.Start()
	defer us.Stop()

	for _, kind := range models.AllKinds {
		source.push(models.CollectionResult{TimerID: "t", Kind: kind})
	}

	assert.Eventually(t, func() bool { return sender.sent() == len(models.AllKinds) }, 2*time.Second, 10*time.Millisecond)
}
