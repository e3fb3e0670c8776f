package ipc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"Mansoor88-6/activity-agent/internal/models"
)

func TestBusDeliversRequestsPerKind(t *testing.T) {
	bus := NewBus(2, zap.NewNop())
	defer bus.Close()

	got := make(chan models.CollectionRequest, 2)
	bus.Listen(models.KindWindow, func(req models.CollectionRequest) { got <- req })

	require.NoError(t, bus.Request(context.Background(), models.KindWindow, models.CollectionRequest{TimerID: "w"}))
	require.NoError(t, bus.Request(context.Background(), models.KindAFK, models.CollectionRequest{TimerID: "a"}))

	select {
	case req := <-got:
		assert.Equal(t, "w", req.TimerID)
	case <-time.After(time.Second):
		t.Fatal("window request not delivered")
	}

	select {
	case req := <-got:
		t.Fatalf("afk request leaked to window listener: %+v", req)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBusPublishAndResults(t *testing.T) {
	bus := NewBus(1, zap.NewNop())
	defer bus.Close()

	result := models.CollectionResult{TimerID: "t", Kind: models.KindFirefox}
	require.NoError(t, bus.Publish(context.Background(), result))
	assert.Equal(t, result, <-bus.Results(models.KindFirefox))

	select {
	case res := <-bus.Results(models.KindChrome):
		t.Fatalf("firefox result leaked to chrome channel: %+v", res)
	default:
	}
	assert.Nil(t, bus.Results(models.ActivityKind("keyboard")))
}

func TestBusFullKindDoesNotBlockOthers(t *testing.T) {
	bus := NewBus(1, zap.NewNop())
	defer bus.Close()

	chrome := models.CollectionResult{TimerID: "t", Kind: models.KindChrome}
	require.NoError(t, bus.Publish(context.Background(), chrome))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, bus.Publish(ctx, chrome), context.DeadlineExceeded)

	afk := models.CollectionResult{TimerID: "t", Kind: models.KindAFK}
	done := make(chan error, 1)
	go func() { done <- bus.Publish(context.Background(), afk) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("afk publish blocked behind a full chrome channel")
	}
	assert.Equal(t, afk, <-bus.Results(models.KindAFK))
	assert.Equal(t, chrome, <-bus.Results(models.KindChrome))
}

func TestBusRequestRespectsContext(t *testing.T) {
	bus := NewBus(0, zap.NewNop())
	defer bus.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := bus.Request(ctx, models.KindEdge, models.CollectionRequest{TimerID: "t"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBusClose(t *testing.T) {
	bus := NewBus(1, zap.NewNop())
	bus.Listen(models.KindAFK, func(models.CollectionRequest) {})

	bus.Close()
	bus.Close()

	select {
	case <-bus.Done():
	default:
		t.Fatal("done channel not closed")
	}

	assert.ErrorIs(t, bus.Request(context.Background(), models.KindAFK, models.CollectionRequest{}), ErrClosed)
	assert.ErrorIs(t, bus.Publish(context.Background(), models.CollectionResult{}), ErrClosed)
}

func TestBusUnknownKind(t *testing.T) {
	bus := NewBus(1, zap.NewNop())
	defer bus.Close()

	err := bus.Request(context.Background(), models.ActivityKind("keyboard"), models.CollectionRequest{})
	assert.Error(t, err)

	err = bus.Publish(context.Background(), models.CollectionResult{Kind: models.ActivityKind("keyboard")})
	assert.Error(t, err)
}
