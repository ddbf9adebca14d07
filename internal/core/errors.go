package core

// Error codes for domain errors.
const (
	ErrCodeBadRequest = "bad_request"
	ErrCodeNotInRoom  = "not_in_room"
)

// CoreError wraps a code and human-readable message. Domain errors are
// delivered to the offending sender only and never abort the dispatch loop.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
