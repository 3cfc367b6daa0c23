package apperr

import "fmt"

type Kind string

const (
	KindValidation    Kind = "validation"
	KindNotFound      Kind = "not_found"
	KindStateConflict Kind = "state_conflict"
	KindDependency    Kind = "dependency"
)

// Reason codes surfaced to callers. State conflicts and validation failures
// always carry one of these, never a generic message.
const (
	CodeMissingUserID           = "MISSING_USER_ID"
	CodeMissingAssessmentID     = "MISSING_ASSESSMENT_ID"
	CodeMalformedRequest        = "MALFORMED_REQUEST"
	CodeInvalidToken            = "INVALID_TOKEN"
	CodeHierarchyNotFound       = "HIERARCHY_NOT_FOUND"
	CodeSessionNotFound         = "SESSION_NOT_FOUND"
	CodeSavePointNotFound       = "SAVE_POINT_NOT_FOUND"
	CodeRetakeLimitExceeded     = "RETAKE_LIMIT_EXCEEDED"
	CodeSubmissionWindowExpired = "SUBMISSION_WINDOW_EXPIRED"
	CodeQuestionSetMismatch     = "QUESTION_SET_MISMATCH"
	CodeSessionNotActive        = "SESSION_NOT_ACTIVE"
	CodeStoreFailure            = "STORE_FAILURE"
	CodeCacheFailure            = "CACHE_FAILURE"
)

type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(code, msg string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: msg}
}

func NotFound(code, msg string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: msg}
}

func StateConflict(code, msg string) *Error {
	return &Error{Kind: KindStateConflict, Code: code, Message: msg}
}

func Dependency(code, msg string, err error) *Error {
	return &Error{Kind: KindDependency, Code: code, Message: msg, Err: err}
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}

// CodeOf returns the reason code of err, or "" when err is not an *Error.
func CodeOf(err error) string {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return ""
}
