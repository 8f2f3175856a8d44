package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials  ErrCode = "INVALID_CREDENTIALS"
	ErrTooManyLoginAttempt ErrCode = "TOO_MANY_LOGIN_ATTEMPTS"
	ErrTokenRequired       ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid        ErrCode = "TOKEN_INVALID"
	ErrAdminAccessOnly     ErrCode = "ADMIN_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Question bank ─────────────────────────────────────────────────
	ErrInvalidVersion      ErrCode = "INVALID_VERSION"
	ErrQuestionTooShort    ErrCode = "QUESTION_TOO_SHORT"
	ErrInsufficientOptions ErrCode = "INSUFFICIENT_OPTIONS"
	ErrCorrectNotInOptions ErrCode = "CORRECT_NOT_IN_OPTIONS"
	ErrDuplicateQuestion   ErrCode = "DUPLICATE_QUESTION"
	ErrQuestionNotFound    ErrCode = "QUESTION_NOT_FOUND"

	// ─── Exam-specific ─────────────────────────────────────────────────
	ErrSessionRequired ErrCode = "SESSION_REQUIRED"
	ErrSessionNotFound ErrCode = "SESSION_NOT_FOUND"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrStoreUnavailable ErrCode = "STORE_UNAVAILABLE"
	ErrInternal         ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrInvalidCredentials:
		return "Invalid credentials."
	case ErrTooManyLoginAttempt:
		return "Too many login attempts. Try again later."
	case ErrTokenRequired:
		return "Authentication token is required."
	case ErrTokenInvalid:
		return "Authentication token is invalid or expired."
	case ErrAdminAccessOnly:
		return "This resource is restricted to administrators."

	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidPayload:
		return "Invalid request payload."

	case ErrInvalidVersion:
		return "Please select a valid version."
	case ErrQuestionTooShort:
		return "Please provide a longer question text."
	case ErrInsufficientOptions:
		return "Please provide at least two non-empty options."
	case ErrCorrectNotInOptions:
		return "The correct option must match one of the provided options."
	case ErrDuplicateQuestion:
		return "A question with the same text already exists for this version."
	case ErrQuestionNotFound:
		return "Question not found."

	case ErrSessionRequired:
		return "An exam session token is required."
	case ErrSessionNotFound:
		return "No active exam session. Start a new exam."

	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	case ErrStoreUnavailable:
		return "The question store is temporarily unavailable. Please try again."
	case ErrInternal:
		return "Internal server error."
	default:
		return "Unexpected error."
	}
}
