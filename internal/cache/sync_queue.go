package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sujittra/Uni-Exam/internal/config"
	"github.com/sujittra/Uni-Exam/internal/model"
)

// SyncQueue feeds progress snapshots to the background sync worker over a
// Redis list. It satisfies store.Queue.
type SyncQueue struct {
	rdb *redis.Client
}

// NewSyncQueue creates a new SyncQueue.
func NewSyncQueue(rdb *redis.Client) *SyncQueue {
	return &SyncQueue{rdb: rdb}
}

// Enqueue pushes a full snapshot onto the queue. Snapshots are idempotent
// upserts, so duplicates from retries are harmless.
func (q *SyncQueue) Enqueue(ctx context.Context, rec *model.ProgressRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := q.rdb.RPush(ctx, config.WorkerKey.SyncProgressQueue, raw).Err(); err != nil {
		return fmt.Errorf("enqueue snapshot: %w", err)
	}
	return nil
}
