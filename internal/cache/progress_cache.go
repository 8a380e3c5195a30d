package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sujittra/Uni-Exam/internal/config"
	"github.com/sujittra/Uni-Exam/internal/model"
	"github.com/sujittra/Uni-Exam/internal/store"
)

// ProgressCache is the Redis copy of progress records: one key per
// (student, exam) pair holding the full JSON record. It satisfies
// store.Local. Entries have no TTL — an attempt must survive arbitrarily
// long disconnects until it completes.
type ProgressCache struct {
	rdb *redis.Client
}

// NewProgressCache creates a new ProgressCache.
func NewProgressCache(rdb *redis.Client) *ProgressCache {
	return &ProgressCache{rdb: rdb}
}

// Read fetches and decodes the cached record.
func (c *ProgressCache) Read(ctx context.Context, studentID string, examID uuid.UUID) (*model.ProgressRecord, error) {
	key := config.CacheKey.ProgressKey(studentID, examID.String())
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("cache read: %w", err)
	}

	rec := &model.ProgressRecord{}
	if err := json.Unmarshal(raw, rec); err != nil {
		return nil, fmt.Errorf("decode cached progress: %w", err)
	}
	return rec, nil
}

// Write overwrites the cached record. Last write wins; writes from the same
// client are serialized upstream, so there is no local race to guard.
func (c *ProgressCache) Write(ctx context.Context, rec *model.ProgressRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode progress: %w", err)
	}

	key := config.CacheKey.ProgressKey(rec.StudentID, rec.ExamID.String())
	if err := c.rdb.Set(ctx, key, raw, 0).Err(); err != nil {
		return fmt.Errorf("cache write: %w", err)
	}
	return nil
}
