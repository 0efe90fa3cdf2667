package answers

import (
	"fmt"
	"strings"
	"time"

	"github.com/marcoskids/marcos/internal/content"
	"github.com/marcoskids/marcos/internal/session"
)

// DefaultFeedback is used whenever the question has no text for the given
// answer value. It is the single fallback for every answer value.
const DefaultFeedback = "Continue estimulando!"

// Response is one answer within a session. At most one Response exists per
// (session, question); a re-answer replaces the earlier one.
type Response struct {
	ID           string
	SessionID    string
	ChildID      string
	QuestionID   string
	Dimension    content.Dimension
	Answer       Value
	Feedback     string
	MissingAlert string
	Activity     string
	RespondedAt  time.Time
}

// Record validates an answer against the session and builds the Response
// to upsert. It has no side effects; the caller persists the Response and
// advances the session in the same transaction.
func Record(s session.Session, q content.Question, v Value, responseID string, now time.Time) (Response, error) {
	if !v.Valid() {
		return Response{}, fmt.Errorf("%w: %d", ErrInvalidAnswerValue, int(v))
	}
	switch s.Status {
	case session.StatusPaused:
		return Response{}, fmt.Errorf("%w: %s", ErrSessionPaused, s.ID)
	case session.StatusCompleted:
		return Response{}, fmt.Errorf("%w: %s", ErrSessionCompleted, s.ID)
	}
	if !s.Contains(q.ID) {
		return Response{}, fmt.Errorf("%w: %q not in session %s", ErrQuestionNotInSession, q.ID, s.ID)
	}

	r := Response{
		ID:          responseID,
		SessionID:   s.ID,
		ChildID:     s.ChildID,
		QuestionID:  q.ID,
		Dimension:   q.Dimension,
		Answer:      v,
		Feedback:    FeedbackFor(q, v),
		Activity:    q.Activity,
		RespondedAt: now,
	}
	if v == No {
		r.MissingAlert = q.MissingAlert
	}
	return r, nil
}

// FeedbackFor resolves the canned feedback for v, falling back to DefaultFeedback.
func FeedbackFor(q content.Question, v Value) string {
	if fb := strings.TrimSpace(q.Feedback.Slot(int(v))); fb != "" {
		return fb
	}
	return DefaultFeedback
}
