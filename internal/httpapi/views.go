package httpapi

import (
	"time"

	"github.com/marcoskids/marcos/internal/answers"
	"github.com/marcoskids/marcos/internal/badges"
	"github.com/marcoskids/marcos/internal/content"
	"github.com/marcoskids/marcos/internal/engine"
	"github.com/marcoskids/marcos/internal/session"
)

type questionView struct {
	ID        string            `json:"id"`
	BandID    string            `json:"band"`
	Dimension content.Dimension `json:"dimension"`
	Order     int               `json:"order"`
	Text      string            `json:"text"`
}

func newQuestionView(q content.Question) *questionView {
	return &questionView{ID: q.ID, BandID: q.BandID, Dimension: q.Dimension, Order: q.OrderIndex, Text: q.Text}
}

type sessionView struct {
	ID                string            `json:"id"`
	UserID            string            `json:"user_id"`
	ChildID           string            `json:"child_id"`
	BandID            string            `json:"band"`
	ContentVersion    string            `json:"content_version"`
	Status            session.Status    `json:"status"`
	AnsweredQuestions int               `json:"answered_questions"`
	TotalQuestions    int               `json:"total_questions"`
	CurrentDimension  content.Dimension `json:"current_dimension,omitempty"`
	Remaining         []string          `json:"remaining"`
	StartedAt         time.Time         `json:"started_at"`
	CompletedAt       *time.Time        `json:"completed_at,omitempty"`
	CurrentQuestion   *questionView     `json:"current_question,omitempty"`
}

func newSessionView(e *engine.Engine, sess session.Session) sessionView {
	v := sessionView{
		ID:                sess.ID,
		UserID:            sess.UserID,
		ChildID:           sess.ChildID,
		BandID:            sess.BandID,
		ContentVersion:    sess.ContentVersion,
		Status:            sess.Status,
		AnsweredQuestions: sess.AnsweredCount,
		TotalQuestions:    sess.TotalQuestions,
		CurrentDimension:  sess.CurrentDimension,
		Remaining:         sess.Remaining(),
		StartedAt:         sess.StartedAt,
		CompletedAt:       sess.CompletedAt,
	}
	if v.Remaining == nil {
		v.Remaining = []string{}
	}
	if q, ok := e.CurrentQuestion(sess); ok {
		v.CurrentQuestion = newQuestionView(q)
	}
	return v
}

type responseView struct {
	ID           string            `json:"id"`
	QuestionID   string            `json:"question_id"`
	Dimension    content.Dimension `json:"dimension"`
	Answer       int               `json:"answer"`
	AnswerLabel  string            `json:"answer_label"`
	Feedback     string            `json:"feedback"`
	MissingAlert string            `json:"missing_alert,omitempty"`
	Activity     string            `json:"activity,omitempty"`
	RespondedAt  time.Time         `json:"responded_at"`
}

func newResponseView(r answers.Response) responseView {
	return responseView{
		ID:           r.ID,
		QuestionID:   r.QuestionID,
		Dimension:    r.Dimension,
		Answer:       int(r.Answer),
		AnswerLabel:  r.Answer.String(),
		Feedback:     r.Feedback,
		MissingAlert: r.MissingAlert,
		Activity:     r.Activity,
		RespondedAt:  r.RespondedAt,
	}
}

type badgeView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	UnlockedAt  time.Time `json:"unlocked_at"`
}

func newBadgeViews(list []badges.UnlockedBadge) []badgeView {
	out := make([]badgeView, 0, len(list))
	for _, u := range list {
		v := badgeView{ID: u.BadgeID, UnlockedAt: u.UnlockedAt}
		if b, ok := badges.Get(u.BadgeID); ok {
			v.Name = b.Name
			v.Description = b.Description
			v.Icon = b.Icon()
		}
		out = append(out, v)
	}
	return out
}
