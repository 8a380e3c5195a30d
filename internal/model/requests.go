package model

import "github.com/google/uuid"

// AnswerRequest is the payload for recording or replacing one answer.
type AnswerRequest struct {
	QuestionID uuid.UUID `json:"question_id" binding:"required"`
	Answer     Answer    `json:"answer" binding:"required"`
}

// NavigateRequest is the payload for moving to another question.
type NavigateRequest struct {
	Index *int `json:"index" binding:"required,min=0"`
}

// RunCodeRequest is the payload for executing a code question's source.
type RunCodeRequest struct {
	QuestionID uuid.UUID `json:"question_id" binding:"required"`
	Source     string    `json:"source" binding:"required,max=65536"`
}
