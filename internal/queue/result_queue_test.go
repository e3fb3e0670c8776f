package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"Mansoor88-6/activity-agent/internal/database"
	"Mansoor88-6/activity-agent/internal/models"
)

func openTestQueue(t *testing.T) (*ResultQueue, *database.DB) {
	t.Helper()
	db, err := database.New(":memory:", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewResultQueue(db.DB, zap.NewNop()), db
}

func result(timerID string, kind models.ActivityKind) models.CollectionResult {
	return models.CollectionResult{
		TimerID: timerID,
		Kind:    kind,
		Events:  []models.RawEvent{models.RawEvent(`{"timestamp":"2024-03-01T09:00:00Z","duration":5}`)},
	}
}

func TestEnqueueDequeueRemove(t *testing.T) {
	q, _ := openTestQueue(t)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, "dev-1", []models.CollectionResult{
		result("t1", models.KindAFK),
		result("t1", models.KindWindow),
	}))
	require.NoError(t, q.Enqueue(ctx, "dev-2", []models.CollectionResult{result("t9", models.KindEdge)}))

	count, err := q.PendingCount(ctx, "dev-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	results, ids, err := q.Dequeue(ctx, "dev-1", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Len(t, ids, 2)
	assert.Equal(t, models.KindAFK, results[0].Kind)
	assert.Equal(t, "t1", results[0].TimerID)
	assert.JSONEq(t, `{"timestamp":"2024-03-01T09:00:00Z","duration":5}`, string(results[0].Events[0]))

	// dequeue does not remove
	count, err = q.PendingCount(ctx, "dev-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, q.Remove(ctx, ids))
	count, err = q.PendingCount(ctx, "dev-1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	count, err = q.PendingCount(ctx, "dev-2")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDequeueRespectsLimit(t *testing.T) {
	q, _ := openTestQueue(t)
	ctx := context.Background()

	for _, kind := range models.AllKinds {
		require.NoError(t, q.Enqueue(ctx, "dev", []models.CollectionResult{result("t", kind)}))
	}

	results, _, err := q.Dequeue(ctx, "dev", 3)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestDequeueDropsCorruptedRows(t *testing.T) {
	q, db := openTestQueue(t)
	ctx := context.Background()

	_, err := db.Exec(`INSERT INTO pending_results (timer_id, kind, result_data, device_id) VALUES ('t', 'afk', 'not-json', 'dev')`)
	require.NoError(t, err)
	require.NoError(t, q.Enqueue(ctx, "dev", []models.CollectionResult{result("t", models.KindWindow)}))

	results, ids, err := q.Dequeue(ctx, "dev", 10)
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Len(t, ids, 1)

	count, err := q.PendingCount(ctx, "dev")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestIncrementRetryAndCleanup(t *testing.T) {
	q, db := openTestQueue(t)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, "dev", []models.CollectionResult{result("t", models.KindAFK), result("t", models.KindChrome)}))
	_, ids, err := q.Dequeue(ctx, "dev", 10)
	require.NoError(t, err)
	require.Len(t, ids, 2)

	for i := 0; i < 11; i++ {
		require.NoError(t, q.IncrementRetry(ctx, ids[:1]))
	}

	var retries int
	require.NoError(t, db.QueryRow(`SELECT retry_count FROM pending_results WHERE id = ?`, ids[0]).Scan(&retries))
	assert.Equal(t, 11, retries)

	// a negative age puts the cutoff in the future so both rows are old enough
	removed, err := q.CleanupOld(ctx, -time.Hour, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	count, err := q.PendingCount(ctx, "dev")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
