package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sujittra/Uni-Exam/internal/model"
)

// Adapter reads and writes one progress record to the local cache and,
// independently, to the remote store. Each target succeeds or fails on its
// own; the adapter never merges the two.
type Adapter struct {
	local  Local
	remote Remote
	queue  Queue
	log    zerolog.Logger
}

// NewAdapter creates a new Adapter.
func NewAdapter(local Local, remote Remote, queue Queue, log zerolog.Logger) *Adapter {
	return &Adapter{
		local:  local,
		remote: remote,
		queue:  queue,
		log:    log.With().Str("component", "progress_store").Logger(),
	}
}

// ReadBoth fetches both copies for a pair. A failed read on one side is
// logged and reported as absent so the other copy can still drive a resume
// (e.g. reload while the network is down). Only both sides failing is an
// error, because then there is no way to know whether an attempt exists.
func (a *Adapter) ReadBoth(ctx context.Context, studentID string, examID uuid.UUID) (local, remote *model.ProgressRecord, err error) {
	var localErr, remoteErr error

	local, localErr = a.local.Read(ctx, studentID, examID)
	if localErr != nil && !errors.Is(localErr, ErrNotFound) {
		a.log.Warn().Err(localErr).Str("student_id", studentID).
			Str("exam_id", examID.String()).Msg("Local read failed")
		local = nil
	}

	remote, remoteErr = a.remote.Read(ctx, studentID, examID)
	if remoteErr != nil && !errors.Is(remoteErr, ErrNotFound) {
		a.log.Warn().Err(remoteErr).Str("student_id", studentID).
			Str("exam_id", examID.String()).Msg("Remote read failed")
		remote = nil
	}

	localDown := localErr != nil && !errors.Is(localErr, ErrNotFound)
	remoteDown := remoteErr != nil && !errors.Is(remoteErr, ErrNotFound)
	if localDown && remoteDown {
		return nil, nil, fmt.Errorf("both progress stores unavailable: %w", remoteErr)
	}
	return local, remote, nil
}

// WriteLocal persists to the cache. Awaited on the hot path.
func (a *Adapter) WriteLocal(ctx context.Context, rec *model.ProgressRecord) error {
	return a.local.Write(ctx, rec)
}

// UpsertRemote persists to the store of record and waits for the outcome.
// Used for final submission and manual resync, where failure must surface.
func (a *Adapter) UpsertRemote(ctx context.Context, rec *model.ProgressRecord) error {
	return a.remote.Upsert(ctx, rec)
}

// QueueRemote hands a snapshot to the background sync worker. Best-effort:
// a queue failure is logged and swallowed, the next sync tick retries.
func (a *Adapter) QueueRemote(ctx context.Context, rec *model.ProgressRecord) {
	if err := a.queue.Enqueue(ctx, rec.Clone()); err != nil {
		a.log.Warn().Err(err).Str("student_id", rec.StudentID).
			Str("exam_id", rec.ExamID.String()).Msg("Queue remote sync failed")
	}
}

// Propagate executes a reconciliation fill push: copies the winning record
// onto the side that lacks it. Best-effort and observable in the logs.
func (a *Adapter) Propagate(ctx context.Context, rec *model.ProgressRecord, toLocal bool) {
	var err error
	if toLocal {
		err = a.local.Write(ctx, rec)
	} else {
		err = a.remote.Upsert(ctx, rec)
	}
	if err != nil {
		a.log.Warn().Err(err).Bool("to_local", toLocal).
			Str("student_id", rec.StudentID).
			Str("exam_id", rec.ExamID.String()).Msg("Reconcile propagation failed")
	}
}
