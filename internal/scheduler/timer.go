package scheduler

import (
	"context"
	"sync"
	"time"

	"Mansoor88-6/activity-agent/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// slotLength is the width of one backend time slot; a collection window
// restarts at every slot boundary
const slotLength = 10 * time.Minute

// Requester emits collection requests
type Requester interface {
	Request(ctx context.Context, kind models.ActivityKind, req models.CollectionRequest) error
}

// HealthChecker re-probes the daemon and reports enabled && connected
type HealthChecker interface {
	Check(ctx context.Context) bool
}

// HealthCheckFunc adapts a function to HealthChecker
type HealthCheckFunc func(ctx context.Context) bool

func (f HealthCheckFunc) Check(ctx context.Context) bool { return f(ctx) }

// Timer runs one timer session. Every interval it asks each activity kind
// for the events since the current slot started, tagged with the session id.
type Timer struct {
	requester Requester
	health    HealthChecker
	kinds     []models.ActivityKind
	interval  time.Duration
	logger    *zap.Logger
	now       func() time.Time

	mu        sync.Mutex
	timerID   string
	slotStart time.Time
	running   bool
	stopChan  chan struct{}
	wg        sync.WaitGroup
}

// NewTimer creates a stopped timer
func NewTimer(requester Requester, health HealthChecker, kinds []models.ActivityKind, interval time.Duration, logger *zap.Logger) *Timer {
	return &Timer{
		requester: requester,
		health:    health,
		kinds:     kinds,
		interval:  interval,
		logger:    logger,
		now:       time.Now,
	}
}

// Start opens a new session and returns its id. Starting a running timer
// returns the current id.
func (t *Timer) Start() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return t.timerID
	}

	t.timerID = uuid.New().String()
	t.slotStart = t.now().UTC()
	t.running = true
	t.stopChan = make(chan struct{})

	t.wg.Add(1)
	go t.loop(t.stopChan)

	t.logger.Info("Timer started",
		zap.String("timer_id", t.timerID),
		zap.Duration("interval", t.interval),
	)
	return t.timerID
}

// Stop ends the session
func (t *Timer) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	close(t.stopChan)
	timerID := t.timerID
	t.mu.Unlock()

	t.wg.Wait()
	t.logger.Info("Timer stopped", zap.String("timer_id", timerID))
}

// TimerID returns the id of the running session, or "" when stopped
func (t *Timer) TimerID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return ""
	}
	return t.timerID
}

func (t *Timer) loop(stop <-chan struct{}) {
	defer t.wg.Done()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-stop
		cancel()
	}()

	for {
		select {
		case <-ticker.C:
			t.Tick(ctx)
		case <-stop:
			return
		}
	}
}

// Tick issues one round of collection requests when the daemon is
// connected. It reports how many requests were emitted.
func (t *Timer) Tick(ctx context.Context) int {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return 0
	}
	timerID := t.timerID
	now := t.now().UTC()
	dateRange := models.DateRange{Start: t.slotStart, End: now}
	if now.Sub(t.slotStart) >= slotLength {
		t.slotStart = now
	}
	t.mu.Unlock()

	if !t.health.Check(ctx) {
		t.logger.Debug("Daemon not connected, skipping collection", zap.String("timer_id", timerID))
		return 0
	}

	emitted := 0
	for _, kind := range t.kinds {
		req := models.CollectionRequest{TimerID: timerID, DateRange: dateRange}
		if err := t.requester.Request(ctx, kind, req); err != nil {
			t.logger.Warn("Failed to emit collection request",
				zap.String("channel", kind.RequestChannel()),
				zap.String("timer_id", timerID),
				zap.Error(err),
			)
			continue
		}
		emitted++
	}
	return emitted
}
