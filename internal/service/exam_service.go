package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sujittra/Uni-Exam/internal/config"
	"github.com/sujittra/Uni-Exam/internal/model"
	"github.com/sujittra/Uni-Exam/internal/repository"
	"github.com/sujittra/Uni-Exam/internal/session"
)

// examPayloadTTL bounds how stale a cached student payload can get after an
// exam definition edit.
const examPayloadTTL = 5 * time.Minute

// LobbyEntry is one exam row on the student lobby, labeled with the
// reconciled attempt state so the client can render Start / Resume / Done.
type LobbyEntry struct {
	ExamID          uuid.UUID            `json:"exam_id"`
	Title           string               `json:"title"`
	Description     string               `json:"description"`
	DurationMinutes int                  `json:"duration_minutes"`
	QuestionCount   int                  `json:"question_count"`
	Status          model.ProgressStatus `json:"status"`
	Score           *float64             `json:"score,omitempty"`
	MaxScore        *float64             `json:"max_score,omitempty"`
}

// ExamService serves the student lobby, exam payloads, and teacher results.
type ExamService struct {
	exams    *repository.ExamRepository
	progress *repository.ProgressRepository
	sessions *session.Controller
	rdb      *redis.Client
	log      zerolog.Logger
}

// NewExamService creates a new ExamService.
func NewExamService(exams *repository.ExamRepository, progress *repository.ProgressRepository, sessions *session.Controller, rdb *redis.Client, log zerolog.Logger) *ExamService {
	return &ExamService{
		exams:    exams,
		progress: progress,
		sessions: sessions,
		rdb:      rdb,
		log:      log.With().Str("component", "exam_service").Logger(),
	}
}

// Lobby lists every active exam assigned to the student's section, each
// labeled with the reconciled attempt state. Completed attempts also expose
// the recorded score.
func (s *ExamService) Lobby(ctx context.Context, student *model.Student) ([]LobbyEntry, error) {
	exams, err := s.exams.ListForSection(ctx, student.Section)
	if err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}

	entries := make([]LobbyEntry, 0, len(exams))
	for i := range exams {
		exam := &exams[i]
		entry := LobbyEntry{
			ExamID:          exam.ID,
			Title:           exam.Title,
			Description:     exam.Description,
			DurationMinutes: exam.DurationMinutes,
			QuestionCount:   len(exam.Questions),
			Status:          model.ProgressNotStarted,
		}

		rec, err := s.sessions.Reconciled(ctx, student.ID, exam.ID)
		if err != nil {
			// The lobby stays usable when one pair cannot be read; the
			// attempt itself re-reconciles at open.
			s.log.Warn().Err(err).
				Str("student_id", student.ID).
				Str("exam_id", exam.ID.String()).
				Msg("Lobby reconcile failed, showing NOT_STARTED")
		} else if rec != nil {
			entry.Status = rec.Status
			if rec.Status == model.ProgressCompleted {
				score, maxScore := rec.Score, rec.MaxScore
				entry.Score = &score
				entry.MaxScore = &maxScore
			}
		}

		entries = append(entries, entry)
	}
	return entries, nil
}

// StudentPayload returns the grading-stripped exam snapshot, cached in Redis
// so every student opening the same exam does not refetch the definition.
func (s *ExamService) StudentPayload(ctx context.Context, examID uuid.UUID) (*model.ExamPayload, error) {
	key := config.CacheKey.ExamPayloadKey(examID.String())

	if raw, err := s.rdb.Get(ctx, key).Result(); err == nil {
		payload := &model.ExamPayload{}
		if err := json.Unmarshal([]byte(raw), payload); err == nil {
			return payload, nil
		}
		// Corrupt cache entry: fall through and rebuild.
		s.rdb.Del(ctx, key)
	} else if err != redis.Nil {
		s.log.Warn().Err(err).Msg("Payload cache read failed")
	}

	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		return nil, err
	}

	payload := exam.PayloadForStudent()
	if raw, err := json.Marshal(payload); err == nil {
		if err := s.rdb.Set(ctx, key, raw, examPayloadTTL).Err(); err != nil {
			s.log.Warn().Err(err).Msg("Payload cache write failed")
		}
	}
	return payload, nil
}

// Results lists every attempt recorded for an exam, roster-joined, for the
// teacher dashboard.
func (s *ExamService) Results(ctx context.Context, examID uuid.UUID) (*model.Exam, []repository.ExamResult, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		return nil, nil, err
	}
	results, err := s.progress.ListByExam(ctx, examID)
	if err != nil {
		return nil, nil, err
	}
	return exam, results, nil
}
