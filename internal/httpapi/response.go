package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/marcoskids/marcos/internal/answers"
	"github.com/marcoskids/marcos/internal/content"
	"github.com/marcoskids/marcos/internal/engine"
	"github.com/marcoskids/marcos/internal/store"
	"github.com/marcoskids/marcos/internal/sweep"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// respondErr maps domain errors to HTTP statuses and error codes.
func respondErr(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, answers.ErrInvalidAnswerValue):
		RespondError(c, http.StatusUnprocessableEntity, "invalid_answer_value", err)
	case errors.Is(err, answers.ErrQuestionNotInSession):
		RespondError(c, http.StatusUnprocessableEntity, "question_not_in_session", err)
	case errors.Is(err, answers.ErrSessionPaused):
		RespondError(c, http.StatusUnprocessableEntity, "session_paused", err)
	case errors.Is(err, answers.ErrSessionCompleted):
		RespondError(c, http.StatusUnprocessableEntity, "session_completed", err)
	case errors.Is(err, content.ErrContentUnavailable):
		RespondError(c, http.StatusNotFound, "content_unavailable", err)
	case errors.Is(err, store.ErrNotFound):
		RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, engine.ErrInvalidChild),
		errors.Is(err, engine.ErrInvalidBirthDate),
		errors.Is(err, sweep.ErrInvalidTarget):
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
	case store.IsTransient(err),
		errors.Is(err, context.DeadlineExceeded):
		c.Header("Retry-After", "1")
		RespondError(c, http.StatusServiceUnavailable, "retryable", err)
	default:
		RespondError(c, http.StatusInternalServerError, "internal", errors.New("internal error"))
	}
}
