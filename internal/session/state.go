package session

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/marcoskids/marcos/internal/content"
)

// Status is the lifecycle state of a session.
type Status string

const (
	StatusActive    Status = "active"    // Accepting answers
	StatusPaused    Status = "paused"    // Interrupted, resumable
	StatusCompleted Status = "completed" // Terminal, immutable history
)

// Open reports whether the session can still be resumed or answered.
func (s Status) Open() bool {
	return s == StatusActive || s == StatusPaused
}

// Slot is one entry of the session plan: a question in resolution order.
type Slot struct {
	QuestionID string            `json:"question_id"`
	Dimension  content.Dimension `json:"dimension"`
}

// Session is one assessment run for a (user, child) pair. Values are
// treated as immutable: every transition returns a new Session.
type Session struct {
	ID             string
	UserID         string
	ChildID        string
	BandID         string
	ContentVersion string

	// Plan is the resolved question set in resolution order.
	Plan []Slot

	// Answered is the set of question IDs answered at least once in this session.
	Answered map[string]bool

	AnsweredCount  int
	TotalQuestions int

	// Cursor indexes Plan at the first unanswered question; equals
	// len(Plan) once every question is answered.
	Cursor           int
	CurrentDimension content.Dimension

	Status      Status
	StartedAt   time.Time
	CompletedAt *time.Time
	UpdatedAt   time.Time
}

// New creates an active session over the resolved question set.
func New(id, userID, childID string, res content.Resolution, contentVersion string, now time.Time) Session {
	plan := make([]Slot, len(res.Questions))
	for i, q := range res.Questions {
		plan[i] = Slot{QuestionID: q.ID, Dimension: q.Dimension}
	}

	s := Session{
		ID:             id,
		UserID:         userID,
		ChildID:        childID,
		BandID:         res.Band.ID,
		ContentVersion: contentVersion,
		Plan:           plan,
		Answered:       make(map[string]bool),
		TotalQuestions: len(plan),
		Status:         StatusActive,
		StartedAt:      now,
		UpdatedAt:      now,
	}
	s.moveCursor()
	return s
}

// clone returns a deep copy so transitions never alias the caller's maps.
func (s Session) clone() Session {
	c := s
	c.Plan = slices.Clone(s.Plan)
	c.Answered = maps.Clone(s.Answered)
	if c.Answered == nil {
		c.Answered = make(map[string]bool)
	}
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		c.CompletedAt = &t
	}
	return c
}

// Contains reports whether the question belongs to the session's resolved set.
func (s Session) Contains(questionID string) bool {
	return slices.ContainsFunc(s.Plan, func(sl Slot) bool { return sl.QuestionID == questionID })
}

// CurrentQuestionID returns the question at the cursor, if any remain.
func (s Session) CurrentQuestionID() (string, bool) {
	if s.Cursor < 0 || s.Cursor >= len(s.Plan) {
		return "", false
	}
	return s.Plan[s.Cursor].QuestionID, true
}

// Remaining returns the unanswered question IDs in resolution order.
func (s Session) Remaining() []string {
	var out []string
	for _, sl := range s.Plan {
		if !s.Answered[sl.QuestionID] {
			out = append(out, sl.QuestionID)
		}
	}
	return out
}

// moveCursor places the cursor on the first unanswered slot.
func (s *Session) moveCursor() {
	for i, sl := range s.Plan {
		if !s.Answered[sl.QuestionID] {
			s.Cursor = i
			s.CurrentDimension = sl.Dimension
			return
		}
	}
	s.Cursor = len(s.Plan)
	s.CurrentDimension = ""
}

// Advance records that questionID was answered.
//
// The counter only grows on the first answer of a question, so re-answers
// never inflate it. When the last unanswered question is answered the
// session becomes completed and CompletedAt is stamped. Sessions that are
// not active, and questions outside the plan, leave the session unchanged.
func Advance(s Session, questionID string, now time.Time) Session {
	if s.Status != StatusActive || !s.Contains(questionID) {
		return s
	}

	next := s.clone()
	if !next.Answered[questionID] {
		next.Answered[questionID] = true
		next.AnsweredCount++
	}
	next.moveCursor()
	next.UpdatedAt = now

	if next.AnsweredCount >= next.TotalQuestions {
		next.Status = StatusCompleted
		t := now
		next.CompletedAt = &t
	}
	return next
}

// Pause moves an active session to paused. Any other state is returned unchanged.
func Pause(s Session, now time.Time) Session {
	if s.Status != StatusActive {
		return s
	}
	next := s.clone()
	next.Status = StatusPaused
	next.UpdatedAt = now
	return next
}

// Resume moves a paused session back to active. Any other state is returned unchanged.
func Resume(s Session, now time.Time) Session {
	if s.Status != StatusPaused {
		return s
	}
	next := s.clone()
	next.Status = StatusActive
	next.UpdatedAt = now
	return next
}

// Validate checks the session invariants.
func Validate(s Session) error {
	var errs []error
	if s.TotalQuestions != len(s.Plan) {
		errs = append(errs, fmt.Errorf("total_questions %d does not match plan size %d", s.TotalQuestions, len(s.Plan)))
	}
	if s.AnsweredCount < 0 || s.AnsweredCount > s.TotalQuestions {
		errs = append(errs, fmt.Errorf("answered_questions %d outside [0, %d]", s.AnsweredCount, s.TotalQuestions))
	}
	if s.AnsweredCount != len(s.Answered) {
		errs = append(errs, fmt.Errorf("answered_questions %d does not match answered set size %d", s.AnsweredCount, len(s.Answered)))
	}
	done := s.AnsweredCount == s.TotalQuestions && s.CompletedAt != nil
	if (s.Status == StatusCompleted) != done {
		errs = append(errs, fmt.Errorf("status %q inconsistent with %d/%d answered (completed_at set: %t)",
			s.Status, s.AnsweredCount, s.TotalQuestions, s.CompletedAt != nil))
	}
	switch s.Status {
	case StatusActive, StatusPaused, StatusCompleted:
	default:
		errs = append(errs, fmt.Errorf("unknown status %q", s.Status))
	}
	return errors.Join(errs...)
}
