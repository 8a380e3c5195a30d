package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sujittra/Uni-Exam/internal/repository"
	"github.com/sujittra/Uni-Exam/internal/response"
	"github.com/sujittra/Uni-Exam/internal/service"
)

// TeacherHandler serves the teacher results dashboard.
type TeacherHandler struct {
	examService *service.ExamService
	log         zerolog.Logger
}

// NewTeacherHandler creates a new TeacherHandler.
func NewTeacherHandler(examService *service.ExamService, log zerolog.Logger) *TeacherHandler {
	return &TeacherHandler{
		examService: examService,
		log:         log.With().Str("component", "teacher_handler").Logger(),
	}
}

// ExamResults godoc
// GET /api/v1/teacher/exams/:exam_id/results
// Lists every recorded attempt for an exam, roster-joined.
func (h *TeacherHandler) ExamResults(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	exam, results, err := h.examService.Results(c.Request.Context(), examID)
	if err != nil {
		if errors.Is(err, repository.ErrExamNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		h.log.Error().Err(err).Str("exam_id", examID.String()).Msg("Results error")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if results == nil {
		results = []repository.ExamResult{}
	}

	response.Success(c, http.StatusOK, gin.H{
		"exam": gin.H{
			"id":               exam.ID,
			"title":            exam.Title,
			"duration_minutes": exam.DurationMinutes,
			"question_count":   len(exam.Questions),
		},
		"results": results,
	})
}
