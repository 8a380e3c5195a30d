// Package reconcile selects the authoritative progress record between the
// two independently written copies (Redis cache and Postgres store of
// record). Whole-record selection only — fields are never merged.
package reconcile

import (
	"github.com/sujittra/Uni-Exam/internal/model"
)

// Pushback tells the caller which side, if any, should receive a copy of
// the winning record. Executing the push is the caller's job; Reconcile
// itself performs no writes.
type Pushback int

const (
	PushNone Pushback = iota
	// PushLocal: the cache is missing or stale and should be overwritten.
	PushLocal
	// PushRemote: the store of record is missing or stale and should be
	// upserted (best-effort, non-blocking).
	PushRemote
)

// Reconcile picks the current record for one (student, exam) pair.
// Rules, in order:
//  1. one side absent → the present side wins and is propagated to fill
//     the absent side
//  2. COMPLETED beats any non-COMPLETED record regardless of timestamps —
//     completion is terminal and must never be reverted; the stale side is
//     asked to be overwritten so completion stays durable everywhere
//  3. otherwise last-write-wins on LastUpdated
//  4. ties prefer the remote record (system of record across devices)
//
// Both absent means a fresh start: (nil, PushNone).
func Reconcile(local, remote *model.ProgressRecord) (*model.ProgressRecord, Pushback) {
	switch {
	case local == nil && remote == nil:
		return nil, PushNone
	case local == nil:
		return remote, PushLocal
	case remote == nil:
		return local, PushRemote
	}

	localDone := local.Status == model.ProgressCompleted
	remoteDone := remote.Status == model.ProgressCompleted

	if localDone != remoteDone {
		if localDone {
			return local, PushRemote
		}
		return remote, PushLocal
	}

	// Same terminality on both sides: latest write wins, remote on ties.
	// No propagation here — both sides already hold a live record.
	if local.LastUpdated.After(remote.LastUpdated) {
		return local, PushNone
	}
	return remote, PushNone
}
