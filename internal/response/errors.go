package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// Authentication
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrUnknownStudent     ErrCode = "UNKNOWN_STUDENT"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"

	// Authorization
	ErrStudentAccessOnly ErrCode = "STUDENT_ACCESS_ONLY"
	ErrTeacherAccessOnly ErrCode = "TEACHER_ACCESS_ONLY"

	// Validation
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// Resources
	ErrNotFound ErrCode = "NOT_FOUND"

	// Attempt lifecycle
	ErrExamNotAvailable  ErrCode = "EXAM_NOT_AVAILABLE"
	ErrNotEligible       ErrCode = "NOT_ELIGIBLE"
	ErrAttemptCompleted  ErrCode = "ATTEMPT_COMPLETED"
	ErrNoActiveSession   ErrCode = "NO_ACTIVE_SESSION"
	ErrUnknownQuestion   ErrCode = "UNKNOWN_QUESTION"
	ErrAnswerKindInvalid ErrCode = "ANSWER_KIND_INVALID"
	ErrIndexOutOfRange   ErrCode = "QUESTION_INDEX_OUT_OF_RANGE"
	ErrSubmitSyncFailed  ErrCode = "SUBMIT_SYNC_FAILED"
	ErrCodeRunFailed     ErrCode = "CODE_RUN_FAILED"

	// Server
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrInvalidCredentials:
		return "Invalid name or password."
	case ErrUnknownStudent:
		return "This student ID is not on the roster."
	case ErrSessionInvalidated:
		return "Your session has ended. Please log in again."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid."

	case ErrStudentAccessOnly:
		return "This resource is restricted to students."
	case ErrTeacherAccessOnly:
		return "This resource is restricted to teachers."

	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	case ErrNotFound:
		return "Resource not found."

	case ErrExamNotAvailable:
		return "This exam is not available right now."
	case ErrNotEligible:
		return "This exam is not assigned to your section."
	case ErrAttemptCompleted:
		return "This exam attempt has already been completed."
	case ErrNoActiveSession:
		return "No active exam session. Open the exam first."
	case ErrUnknownQuestion:
		return "This question is not part of the exam."
	case ErrAnswerKindInvalid:
		return "The answer type does not match the question type."
	case ErrIndexOutOfRange:
		return "The question index is out of range."
	case ErrSubmitSyncFailed:
		return "Your submission was recorded on this device but could not reach the server. Use resync to retry."
	case ErrCodeRunFailed:
		return "The code execution service could not be reached."

	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
