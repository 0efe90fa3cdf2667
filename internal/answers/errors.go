package answers

import "errors"

// Validation errors. They indicate caller mistakes: never retried and
// never accompanied by a state change.
var (
	ErrInvalidAnswerValue   = errors.New("invalid answer value")
	ErrQuestionNotInSession = errors.New("question not in session")
	ErrSessionPaused        = errors.New("session is paused")
	ErrSessionCompleted     = errors.New("session is completed")
)

// IsValidation reports whether err is one of the recorder's validation errors.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidAnswerValue) ||
		errors.Is(err, ErrQuestionNotInSession) ||
		errors.Is(err, ErrSessionPaused) ||
		errors.Is(err, ErrSessionCompleted)
}
