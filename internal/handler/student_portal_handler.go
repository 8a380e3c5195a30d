package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sujittra/Uni-Exam/internal/middleware"
	"github.com/sujittra/Uni-Exam/internal/model"
	"github.com/sujittra/Uni-Exam/internal/repository"
	"github.com/sujittra/Uni-Exam/internal/response"
	"github.com/sujittra/Uni-Exam/internal/service"
	"github.com/sujittra/Uni-Exam/internal/session"
	"github.com/sujittra/Uni-Exam/internal/validator"
)

// StudentPortalHandler serves the student lobby and the exam-taking surface.
type StudentPortalHandler struct {
	examService *service.ExamService
	sessions    *session.Controller
	log         zerolog.Logger
}

// NewStudentPortalHandler creates a new StudentPortalHandler.
func NewStudentPortalHandler(examService *service.ExamService, sessions *session.Controller, log zerolog.Logger) *StudentPortalHandler {
	return &StudentPortalHandler{
		examService: examService,
		sessions:    sessions,
		log:         log.With().Str("component", "student_portal_handler").Logger(),
	}
}

// ListExams godoc
// GET /api/v1/student/exams
// Lists the student's assigned exams with reconciled attempt status.
func (h *StudentPortalHandler) ListExams(c *gin.Context) {
	student := studentFromClaims(c)
	if student == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	entries, err := h.examService.Lobby(c.Request.Context(), student)
	if err != nil {
		h.log.Error().Err(err).Str("student_id", student.ID).Msg("Lobby error")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exams": entries})
}

// OpenExam godoc
// POST /api/v1/student/exams/:exam_id/open
// Starts or resumes the attempt and returns the exam payload plus state.
func (h *StudentPortalHandler) OpenExam(c *gin.Context) {
	student, examID, ok := h.studentAndExam(c)
	if !ok {
		return
	}

	sess, err := h.sessions.Open(c.Request.Context(), student, examID)
	if err != nil {
		h.failSessionError(c, err)
		return
	}

	payload, err := h.examService.StudentPayload(c.Request.Context(), examID)
	if err != nil {
		h.log.Error().Err(err).Str("exam_id", examID.String()).Msg("Payload error")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"exam":              payload,
		"progress":          sess.Snapshot(),
		"remaining_seconds": int64(sess.Remaining().Seconds()),
	})
}

// GetState godoc
// GET /api/v1/student/exams/:exam_id/state
// Returns the current progress snapshot and computed remaining time.
func (h *StudentPortalHandler) GetState(c *gin.Context) {
	sess, ok := h.liveSession(c)
	if !ok {
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"progress":          sess.Snapshot(),
		"remaining_seconds": int64(sess.Remaining().Seconds()),
	})
}

// SaveAnswer godoc
// PUT /api/v1/student/exams/:exam_id/answer
// Records or replaces one answer.
func (h *StudentPortalHandler) SaveAnswer(c *gin.Context) {
	sess, ok := h.liveSession(c)
	if !ok {
		return
	}

	var req model.AnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := sess.Answer(c.Request.Context(), req.QuestionID, req.Answer); err != nil {
		h.failSessionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": "saved"})
}

// Navigate godoc
// PUT /api/v1/student/exams/:exam_id/position
// Moves the current question index.
func (h *StudentPortalHandler) Navigate(c *gin.Context) {
	sess, ok := h.liveSession(c)
	if !ok {
		return
	}

	var req model.NavigateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := sess.Navigate(c.Request.Context(), *req.Index); err != nil {
		h.failSessionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": "saved"})
}

// RunCode godoc
// POST /api/v1/student/exams/:exam_id/run
// Executes a code question's source against its test cases.
func (h *StudentPortalHandler) RunCode(c *gin.Context) {
	sess, ok := h.liveSession(c)
	if !ok {
		return
	}

	var req model.RunCodeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := sess.RunCode(c.Request.Context(), req.QuestionID, req.Source)
	if err != nil {
		h.failSessionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"passed": result.Passed,
		"report": result.Report,
	})
}

// Submit godoc
// POST /api/v1/student/exams/:exam_id/submit
// Completes the attempt. A second submit returns the recorded score.
func (h *StudentPortalHandler) Submit(c *gin.Context) {
	sess, ok := h.liveSession(c)
	if !ok {
		return
	}

	result, err := sess.Submit(c.Request.Context())
	if err != nil {
		if errors.Is(err, session.ErrFinalSync) {
			// Completed locally, remote push failed. The client must see the
			// score AND the failure so it can offer the resync action.
			response.FailWithData(c, http.StatusBadGateway, response.ErrSubmitSyncFailed, gin.H{
				"status":    model.ProgressCompleted,
				"score":     result.Total,
				"max_score": result.Max,
			})
			return
		}
		h.failSessionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"status":    model.ProgressCompleted,
		"score":     result.Total,
		"max_score": result.Max,
	})
}

// Resync godoc
// POST /api/v1/student/exams/:exam_id/resync
// Re-pushes the authoritative record to the remote store.
func (h *StudentPortalHandler) Resync(c *gin.Context) {
	student, examID, ok := h.studentAndExam(c)
	if !ok {
		return
	}

	if err := h.sessions.Resync(c.Request.Context(), student.ID, examID); err != nil {
		if errors.Is(err, session.ErrNoSession) {
			response.Fail(c, http.StatusNotFound, response.ErrNoActiveSession)
			return
		}
		h.log.Error().Err(err).Str("student_id", student.ID).Msg("Resync error")
		response.Fail(c, http.StatusBadGateway, response.ErrSubmitSyncFailed)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": "synced"})
}

// studentAndExam resolves the authenticated student and the exam_id param.
func (h *StudentPortalHandler) studentAndExam(c *gin.Context) (*model.Student, uuid.UUID, bool) {
	student := studentFromClaims(c)
	if student == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return nil, uuid.Nil, false
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return nil, uuid.Nil, false
	}
	return student, examID, true
}

// liveSession resolves the live session for the request's (student, exam).
func (h *StudentPortalHandler) liveSession(c *gin.Context) (*session.Session, bool) {
	student, examID, ok := h.studentAndExam(c)
	if !ok {
		return nil, false
	}

	sess, ok := h.sessions.Get(student.ID, examID)
	if !ok {
		response.Fail(c, http.StatusNotFound, response.ErrNoActiveSession)
		return nil, false
	}
	return sess, true
}

// failSessionError maps session package errors to API error codes.
func (h *StudentPortalHandler) failSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrCompleted):
		response.Fail(c, http.StatusConflict, response.ErrAttemptCompleted)
	case errors.Is(err, session.ErrExamInactive), errors.Is(err, repository.ErrExamNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrExamNotAvailable)
	case errors.Is(err, session.ErrNotEligible):
		response.Fail(c, http.StatusForbidden, response.ErrNotEligible)
	case errors.Is(err, session.ErrUnknownQuestion):
		response.Fail(c, http.StatusNotFound, response.ErrUnknownQuestion)
	case errors.Is(err, session.ErrKindMismatch):
		response.Fail(c, http.StatusBadRequest, response.ErrAnswerKindInvalid)
	case errors.Is(err, session.ErrIndexOutOfRange):
		response.Fail(c, http.StatusBadRequest, response.ErrIndexOutOfRange)
	case errors.Is(err, session.ErrNoSession):
		response.Fail(c, http.StatusNotFound, response.ErrNoActiveSession)
	default:
		h.log.Error().Err(err).Msg("Session operation error")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// studentFromClaims builds the roster identity carried by the JWT.
func studentFromClaims(c *gin.Context) *model.Student {
	claims := middleware.GetClaims(c)
	if claims == nil || claims.StudentID == "" {
		return nil
	}
	return &model.Student{ID: claims.StudentID, Section: claims.Section}
}
