package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sujittra/Uni-Exam/internal/model"
	"github.com/sujittra/Uni-Exam/internal/response"
	"github.com/sujittra/Uni-Exam/internal/service"
	"github.com/sujittra/Uni-Exam/internal/validator"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// StudentLogin godoc
// POST /api/v1/auth/student/login
// Issues a student JWT for a roster-listed student id.
func (h *AuthHandler) StudentLogin(c *gin.Context) {
	var req model.StudentLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	token, student, err := h.authService.LoginStudent(c.Request.Context(), req.StudentID)
	if err != nil {
		if errors.Is(err, service.ErrUnknownStudent) {
			response.Fail(c, http.StatusUnauthorized, response.ErrUnknownStudent)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"token": token,
		"student": gin.H{
			"id":      student.ID,
			"name":    student.Name,
			"section": student.Section,
		},
	})
}

// TeacherLogin godoc
// POST /api/v1/auth/teacher/login
// Issues a teacher JWT for a name and password.
func (h *AuthHandler) TeacherLogin(c *gin.Context) {
	var req model.TeacherLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	token, teacher, err := h.authService.LoginTeacher(c.Request.Context(), req.Name, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"token": token,
		"teacher": gin.H{
			"id":   teacher.ID,
			"name": teacher.Name,
		},
	})
}
