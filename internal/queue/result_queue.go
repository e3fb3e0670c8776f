package queue

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"Mansoor88-6/activity-agent/internal/models"

	"go.uber.org/zap"
)

// ResultQueue keeps collection results that could not be uploaded yet
type ResultQueue struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewResultQueue creates a new result queue
func NewResultQueue(db *sql.DB, logger *zap.Logger) *ResultQueue {
	return &ResultQueue{
		db:     db,
		logger: logger,
	}
}

// Enqueue adds results to the queue
func (q *ResultQueue) Enqueue(ctx context.Context, deviceID string, results []models.CollectionResult) error {
	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO pending_results (timer_id, kind, result_data, device_id, created_at, retry_count)
		VALUES (?, ?, ?, ?, ?, 0)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, result := range results {
		data, err := json.Marshal(result)
		if err != nil {
			q.logger.Error("Failed to marshal result", zap.Error(err))
			continue
		}

		if _, err := stmt.ExecContext(ctx, result.TimerID, string(result.Kind), string(data), deviceID, time.Now().UTC()); err != nil {
			q.logger.Error("Failed to enqueue result",
				zap.String("timer_id", result.TimerID),
				zap.Error(err),
			)
			continue
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	q.logger.Debug("Results enqueued",
		zap.Int("count", len(results)),
		zap.String("device_id", deviceID),
	)
	return nil
}

// Dequeue reads up to limit of the oldest results without removing them
func (q *ResultQueue) Dequeue(ctx context.Context, deviceID string, limit int) ([]models.CollectionResult, []int64, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, result_data
		FROM pending_results
		WHERE device_id = ?
		ORDER BY created_at ASC, id ASC
		LIMIT ?
	`, deviceID, limit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query pending results: %w", err)
	}

	var results []models.CollectionResult
	var ids []int64
	var corrupted []int64

	for rows.Next() {
		var id int64
		var data string
		if err := rows.Scan(&id, &data); err != nil {
			q.logger.Error("Failed to scan row", zap.Error(err))
			continue
		}

		var result models.CollectionResult
		if err := json.Unmarshal([]byte(data), &result); err != nil {
			q.logger.Error("Failed to unmarshal result", zap.Error(err), zap.Int64("id", id))
			corrupted = append(corrupted, id)
			continue
		}

		results = append(results, result)
		ids = append(ids, id)
	}
	rowsErr := rows.Err()
	rows.Close()
	if rowsErr != nil {
		return nil, nil, fmt.Errorf("error iterating rows: %w", rowsErr)
	}

	if len(corrupted) > 0 {
		if err := q.Remove(ctx, corrupted); err != nil {
			q.logger.Error("Failed to remove corrupted results", zap.Error(err))
		}
	}

	return results, ids, nil
}

// Remove removes results from the queue by their IDs
func (q *ResultQueue) Remove(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	query := "DELETE FROM pending_results WHERE id IN (" + placeholders(len(ids)) + ")"
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	result, err := q.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to remove results: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	q.logger.Debug("Results removed from queue", zap.Int64("count", rowsAffected))
	return nil
}

// IncrementRetry increments the retry count of the given results
func (q *ResultQueue) IncrementRetry(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	query := "UPDATE pending_results SET retry_count = retry_count + 1, last_attempt = ? WHERE id IN (" + placeholders(len(ids)) + ")"
	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, time.Now().UTC())
	for _, id := range ids {
		args = append(args, id)
	}

	if _, err := q.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to increment retry: %w", err)
	}
	return nil
}

// PendingCount returns the number of queued results for a device
func (q *ResultQueue) PendingCount(ctx context.Context, deviceID string) (int, error) {
	var count int
	err := q.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM pending_results WHERE device_id = ?
	`, deviceID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get pending count: %w", err)
	}
	return count, nil
}

// CleanupOld removes results older than olderThan that exceeded maxRetries
func (q *ResultQueue) CleanupOld(ctx context.Context, olderThan time.Duration, maxRetries int) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	result, err := q.db.ExecContext(ctx, `
		DELETE FROM pending_results
		WHERE created_at < ? AND retry_count > ?
	`, cutoff, maxRetries)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup old results: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected > 0 {
		q.logger.Info("Cleaned up old results", zap.Int64("count", rowsAffected))
	}
	return rowsAffected, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
