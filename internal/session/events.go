package session

import (
	"github.com/sujittra/Uni-Exam/internal/model"
)

// EventType tags session stream events.
type EventType string

const (
	EventTick      EventType = "tick"
	EventCompleted EventType = "completed"
	EventSyncError EventType = "sync_error"
)

// Event is a point-in-time notification pushed to the session stream.
type Event struct {
	Type             EventType            `json:"type"`
	RemainingSeconds int64                `json:"remaining_seconds"`
	Status           model.ProgressStatus `json:"status"`
	Forced           bool                 `json:"forced,omitempty"`
	Score            float64              `json:"score,omitempty"`
	MaxScore         float64              `json:"max_score,omitempty"`
}

// Subscribe registers a listener for session events. The returned channel
// is buffered; slow listeners miss events rather than block the ticker.
func (s *Session) Subscribe() chan Event {
	ch := make(chan Event, 16)
	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener and closes its channel.
func (s *Session) Unsubscribe(ch chan Event) {
	s.mu.Lock()
	if _, ok := s.subscribers[ch]; ok {
		delete(s.subscribers, ch)
		close(ch)
	}
	s.mu.Unlock()
}

// emitLocked broadcasts without blocking. Callers hold s.mu.
func (s *Session) emitLocked(ev Event) {
	for ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
		}
	}
}
