package answers

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcoskids/marcos/internal/content"
	"github.com/marcoskids/marcos/internal/session"
)

var now = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

var q1 = content.Question{
	ID:           "q1",
	BandID:       "w0",
	Dimension:    content.DimLanguage,
	OrderIndex:   1,
	Text:         "Faz sons?",
	Feedback:     content.Feedback{Yes: "Ótimo!", No: "Converse mais."},
	MissingAlert: "Procure o pediatra.",
	Activity:     "Cante.",
}

func testSession() session.Session {
	res := content.Resolution{
		Band:      content.WeeksBand("w0", 0, 8),
		Questions: []content.Question{q1, {ID: "q2", BandID: "w0", Dimension: content.DimCognitive, OrderIndex: 2}},
	}
	return session.New("s1", "u1", "c1", res, "1.0.0", now)
}

func TestRecord_Valid(t *testing.T) {
	r, err := Record(testSession(), q1, Yes, "r1", now)
	require.NoError(t, err)

	assert.Equal(t, "s1", r.SessionID)
	assert.Equal(t, "c1", r.ChildID)
	assert.Equal(t, content.DimLanguage, r.Dimension)
	assert.Equal(t, "Ótimo!", r.Feedback)
	assert.Empty(t, r.MissingAlert, "alert only applies to No answers")
	assert.Equal(t, "Cante.", r.Activity)
}

func TestRecord_NoCarriesMissingAlert(t *testing.T) {
	r, err := Record(testSession(), q1, No, "r1", now)
	require.NoError(t, err)
	assert.Equal(t, "Converse mais.", r.Feedback)
	assert.Equal(t, "Procure o pediatra.", r.MissingAlert)
}

func TestRecord_BlankSlotFallsBackToDefault(t *testing.T) {
	r, err := Record(testSession(), q1, Unknown, "r1", now)
	require.NoError(t, err)
	assert.Equal(t, DefaultFeedback, r.Feedback)
}

func TestRecord_Errors(t *testing.T) {
	completed := testSession()
	completed = session.Advance(completed, "q1", now)
	completed = session.Advance(completed, "q2", now)

	tests := []struct {
		name string
		s    session.Session
		q    content.Question
		v    Value
		want error
	}{
		{"zero value", testSession(), q1, 0, ErrInvalidAnswerValue},
		{"out of range", testSession(), q1, 4, ErrInvalidAnswerValue},
		{"foreign question", testSession(), content.Question{ID: "other"}, Yes, ErrQuestionNotInSession},
		{"paused", session.Pause(testSession(), now), q1, Yes, ErrSessionPaused},
		{"completed", completed, q1, Yes, ErrSessionCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Record(tt.s, tt.q, tt.v, "r", now)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.True(t, IsValidation(err))
		})
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want Value
		err  bool
	}{
		{"1", Yes, false},
		{"sim", Yes, false},
		{"2", No, false},
		{"NO", No, false},
		{"3", Unknown, false},
		{"nao_sei", Unknown, false},
		{"4", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseValue(tt.in)
		if tt.err {
			if !errors.Is(err, ErrInvalidAnswerValue) {
				t.Errorf("ParseValue(%q) err = %v, want ErrInvalidAnswerValue", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseValue(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}
