package session

import (
	"testing"
	"time"

	"github.com/marcoskids/marcos/internal/content"
)

var t0 = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func testResolution() content.Resolution {
	return content.Resolution{
		Band: content.WeeksBand("w0", 0, 8),
		Questions: []content.Question{
			{ID: "q1", BandID: "w0", Dimension: content.DimGrossMotor, OrderIndex: 1},
			{ID: "q2", BandID: "w0", Dimension: content.DimLanguage, OrderIndex: 2},
			{ID: "q3", BandID: "w0", Dimension: content.DimSocial, OrderIndex: 3},
		},
	}
}

func testSession() Session {
	return New("sess-1", "user-1", "child-1", testResolution(), "1.0.0", t0)
}

func TestNew(t *testing.T) {
	s := testSession()

	if s.Status != StatusActive {
		t.Errorf("Status = %q, want %q", s.Status, StatusActive)
	}
	if s.TotalQuestions != 3 {
		t.Errorf("TotalQuestions = %d, want 3", s.TotalQuestions)
	}
	if s.AnsweredCount != 0 {
		t.Errorf("AnsweredCount = %d, want 0", s.AnsweredCount)
	}
	if s.CurrentDimension != content.DimGrossMotor {
		t.Errorf("CurrentDimension = %q, want %q", s.CurrentDimension, content.DimGrossMotor)
	}
	if err := Validate(s); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestAdvance_MovesCursorAndCounts(t *testing.T) {
	s := testSession()

	s = Advance(s, "q1", t0.Add(time.Minute))
	if s.AnsweredCount != 1 {
		t.Errorf("AnsweredCount = %d, want 1", s.AnsweredCount)
	}
	if id, _ := s.CurrentQuestionID(); id != "q2" {
		t.Errorf("cursor at %q, want q2", id)
	}
	if s.CurrentDimension != content.DimLanguage {
		t.Errorf("CurrentDimension = %q, want %q", s.CurrentDimension, content.DimLanguage)
	}
}

func TestAdvance_ReanswerDoesNotInflate(t *testing.T) {
	s := testSession()
	s = Advance(s, "q1", t0)
	s = Advance(s, "q1", t0)
	s = Advance(s, "q1", t0)

	if s.AnsweredCount != 1 {
		t.Errorf("AnsweredCount = %d, want 1", s.AnsweredCount)
	}
	if err := Validate(s); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestAdvance_OutOfOrderKeepsCursorOnFirstGap(t *testing.T) {
	s := testSession()
	s = Advance(s, "q3", t0)

	if id, _ := s.CurrentQuestionID(); id != "q1" {
		t.Errorf("cursor at %q, want q1", id)
	}
	if got := s.Remaining(); len(got) != 2 || got[0] != "q1" || got[1] != "q2" {
		t.Errorf("Remaining = %v, want [q1 q2]", got)
	}
}

func TestAdvance_CompletesWhenExhausted(t *testing.T) {
	s := testSession()
	done := t0.Add(5 * time.Minute)

	s = Advance(s, "q1", t0)
	s = Advance(s, "q2", t0)
	s = Advance(s, "q3", done)

	if s.Status != StatusCompleted {
		t.Fatalf("Status = %q, want %q", s.Status, StatusCompleted)
	}
	if s.CompletedAt == nil || !s.CompletedAt.Equal(done) {
		t.Errorf("CompletedAt = %v, want %v", s.CompletedAt, done)
	}
	if _, ok := s.CurrentQuestionID(); ok {
		t.Error("expected no current question after completion")
	}
	if err := Validate(s); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestCompletedSessionIsImmutable(t *testing.T) {
	s := testSession()
	for _, id := range []string{"q1", "q2", "q3"} {
		s = Advance(s, id, t0)
	}
	completedAt := *s.CompletedAt

	later := t0.Add(time.Hour)
	for _, next := range []Session{
		Advance(s, "q1", later),
		Pause(s, later),
		Resume(s, later),
	} {
		if next.Status != StatusCompleted {
			t.Errorf("Status = %q, want completed", next.Status)
		}
		if !next.CompletedAt.Equal(completedAt) {
			t.Errorf("CompletedAt changed to %v", next.CompletedAt)
		}
		if !next.UpdatedAt.Equal(s.UpdatedAt) {
			t.Errorf("UpdatedAt changed to %v", next.UpdatedAt)
		}
	}
}

func TestPauseResume(t *testing.T) {
	s := Advance(testSession(), "q1", t0)

	paused := Pause(s, t0.Add(time.Minute))
	if paused.Status != StatusPaused {
		t.Fatalf("Status = %q, want paused", paused.Status)
	}
	if paused.AnsweredCount != s.AnsweredCount || paused.Cursor != s.Cursor {
		t.Error("pause must not change counters or cursor")
	}

	// Answers are not applied while paused.
	if got := Advance(paused, "q2", t0); got.AnsweredCount != 1 {
		t.Errorf("AnsweredCount = %d after advance on paused, want 1", got.AnsweredCount)
	}

	resumed := Resume(paused, t0.Add(2*time.Minute))
	if resumed.Status != StatusActive {
		t.Errorf("Status = %q, want active", resumed.Status)
	}

	// Resume on an active session is a no-op.
	if again := Resume(resumed, t0.Add(3*time.Minute)); !again.UpdatedAt.Equal(resumed.UpdatedAt) {
		t.Error("resume on active session should not touch UpdatedAt")
	}
}

func TestAdvance_DoesNotAliasInput(t *testing.T) {
	s := testSession()
	_ = Advance(s, "q1", t0)
	if s.Answered["q1"] {
		t.Error("Advance mutated the input session's answered set")
	}
}

func TestAdvance_UnknownQuestionIgnored(t *testing.T) {
	s := Advance(testSession(), "nope", t0)
	if s.AnsweredCount != 0 {
		t.Errorf("AnsweredCount = %d, want 0", s.AnsweredCount)
	}
}

func TestValidate_DetectsBrokenInvariants(t *testing.T) {
	s := testSession()
	s.Status = StatusCompleted
	if err := Validate(s); err == nil {
		t.Error("expected error for completed session with unanswered questions")
	}

	s = testSession()
	s.AnsweredCount = 5
	if err := Validate(s); err == nil {
		t.Error("expected error for answered > total")
	}
}

func TestBuildSummary(t *testing.T) {
	s := testSession()
	s = Advance(s, "q1", t0)
	s = Advance(s, "q2", t0)

	sum := BuildSummary(s, t0.Add(10*time.Minute))
	if sum.Answered != 2 || sum.TotalQuestions != 3 {
		t.Errorf("Answered/Total = %d/%d, want 2/3", sum.Answered, sum.TotalQuestions)
	}
	if sum.Duration != 10*time.Minute {
		t.Errorf("Duration = %v, want 10m", sum.Duration)
	}
	if dc := sum.ByDimension[content.DimLanguage]; dc.Answered != 1 || dc.Total != 1 {
		t.Errorf("language tally = %+v, want 1/1", dc)
	}
	if dc := sum.ByDimension[content.DimSocial]; dc.Answered != 0 {
		t.Errorf("social answered = %d, want 0", dc.Answered)
	}
}
