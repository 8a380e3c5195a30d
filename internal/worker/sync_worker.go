package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sujittra/Uni-Exam/internal/config"
	"github.com/sujittra/Uni-Exam/internal/model"
	"github.com/sujittra/Uni-Exam/internal/repository"
)

// SyncWorker consumes sync_progress_queue and upserts progress snapshots to
// PostgreSQL. The upsert's own ordering guard makes replayed or reordered
// snapshots harmless.
type SyncWorker struct {
	progress *repository.ProgressRepository
	rdb      *redis.Client
	log      zerolog.Logger
}

// NewSyncWorker creates a new SyncWorker.
func NewSyncWorker(progress *repository.ProgressRepository, rdb *redis.Client, log zerolog.Logger) *SyncWorker {
	return &SyncWorker{
		progress: progress,
		rdb:      rdb,
		log:      log.With().Str("component", "sync_worker").Logger(),
	}
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *SyncWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			// Drain remaining items before exit.
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *SyncWorker) processNext(ctx context.Context) {
	// BLPop blocks until an item is available or timeout (1 second).
	result, err := w.rdb.BLPop(ctx, time.Second, config.WorkerKey.SyncProgressQueue).Result()
	if err != nil {
		if err != redis.Nil && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
		}
		return
	}

	if len(result) < 2 {
		return
	}

	var rec model.ProgressRecord
	if err := json.Unmarshal([]byte(result[1]), &rec); err != nil {
		w.log.Error().Err(err).Msg("Unmarshal error")
		return
	}

	if err := w.progress.Upsert(ctx, &rec); err != nil {
		w.log.Error().Err(err).
			Str("student_id", rec.StudentID).
			Str("exam_id", rec.ExamID.String()).
			Msg("Persist error, retrying in 5s")
		// Push back to queue for retry.
		w.rdb.RPush(ctx, config.WorkerKey.SyncProgressQueue, result[1])
		time.Sleep(5 * time.Second)
	}
}

// drain processes all remaining items in the queue before shutdown.
func (w *SyncWorker) drain(ctx context.Context) {
	drained := 0
	for {
		result, err := w.rdb.LPop(ctx, config.WorkerKey.SyncProgressQueue).Result()
		if err != nil {
			break
		}

		var rec model.ProgressRecord
		if err := json.Unmarshal([]byte(result), &rec); err != nil {
			w.log.Error().Err(err).Msg("Drain unmarshal error")
			continue
		}

		if err := w.progress.Upsert(ctx, &rec); err != nil {
			w.log.Error().Err(err).Msg("Drain persist error")
			w.rdb.RPush(ctx, config.WorkerKey.SyncProgressQueue, result)
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}
