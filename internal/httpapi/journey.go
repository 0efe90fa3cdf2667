package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/marcoskids/marcos/internal/answers"
	"github.com/marcoskids/marcos/internal/engine"
	"github.com/marcoskids/marcos/internal/session"
)

type JourneyHandler struct {
	engine *engine.Engine
}

func NewJourneyHandler(e *engine.Engine) *JourneyHandler {
	return &JourneyHandler{engine: e}
}

type startJourneyRequest struct {
	UserID string `json:"user_id"`
}

// POST /v1/children/:childID/journey
func (h *JourneyHandler) StartOrResume(c *gin.Context) {
	var req startJourneyRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
	}

	res, err := h.engine.StartOrResume(c.Request.Context(), req.UserID, c.Param("childID"))
	if engine.IsContentGap(err) {
		RespondOK(c, gin.H{"content_available": false})
		return
	}
	if err != nil {
		respondErr(c, err)
		return
	}

	status := http.StatusCreated
	if res.Resumed {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{
		"content_available": true,
		"resumed":           res.Resumed,
		"session":           newSessionView(h.engine, res.Session),
	})
}

// GET /v1/sessions/:sessionID
func (h *JourneyHandler) Get(c *gin.Context) {
	s, err := h.engine.Session(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		respondErr(c, err)
		return
	}
	RespondOK(c, gin.H{"session": newSessionView(h.engine, s)})
}

type summaryView struct {
	SessionID      string                       `json:"session_id"`
	Status         session.Status               `json:"status"`
	Answered       int                          `json:"answered"`
	TotalQuestions int                          `json:"total_questions"`
	Percent        float64                      `json:"percent"`
	DurationSec    int64                        `json:"duration_sec"`
	ByDimension    map[string]dimensionTallyDTO `json:"by_dimension"`
}

type dimensionTallyDTO struct {
	Answered int `json:"answered"`
	Total    int `json:"total"`
}

// GET /v1/sessions/:sessionID/summary
func (h *JourneyHandler) Summary(c *gin.Context) {
	s, err := h.engine.Session(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		respondErr(c, err)
		return
	}
	sum := session.BuildSummary(s, h.engine.Now())
	out := summaryView{
		SessionID:      sum.SessionID,
		Status:         sum.Status,
		Answered:       sum.Answered,
		TotalQuestions: sum.TotalQuestions,
		Percent:        sum.Percent,
		DurationSec:    int64(sum.Duration / time.Second),
		ByDimension:    make(map[string]dimensionTallyDTO, len(sum.ByDimension)),
	}
	for d, n := range sum.ByDimension {
		out.ByDimension[string(d)] = dimensionTallyDTO{Answered: n.Answered, Total: n.Total}
	}
	RespondOK(c, gin.H{"summary": out})
}

// POST /v1/sessions/:sessionID/pause
func (h *JourneyHandler) Pause(c *gin.Context) {
	s, err := h.engine.Pause(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		respondErr(c, err)
		return
	}
	RespondOK(c, gin.H{"session": newSessionView(h.engine, s)})
}

// POST /v1/sessions/:sessionID/resume
func (h *JourneyHandler) Resume(c *gin.Context) {
	s, err := h.engine.Resume(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		respondErr(c, err)
		return
	}
	RespondOK(c, gin.H{"session": newSessionView(h.engine, s)})
}

type answerRequest struct {
	QuestionID string          `json:"question_id" binding:"required"`
	Answer     json.RawMessage `json:"answer" binding:"required"`
}

// parseAnswer accepts 1, "1" or "yes"/"sim" style names.
func parseAnswer(raw json.RawMessage) (answers.Value, error) {
	raw = bytes.TrimSpace(raw)
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return answers.Value(n), nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return answers.ParseValue(s)
	}
	return 0, fmt.Errorf("%w: %s", answers.ErrInvalidAnswerValue, string(raw))
}

// POST /v1/sessions/:sessionID/answers
func (h *JourneyHandler) Answer(c *gin.Context) {
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	v, err := parseAnswer(req.Answer)
	if err != nil {
		respondErr(c, err)
		return
	}

	res, err := h.engine.RecordAnswer(c.Request.Context(), c.Param("sessionID"), req.QuestionID, v)
	if err != nil {
		respondErr(c, err)
		return
	}
	RespondOK(c, gin.H{
		"response":   newResponseView(res.Response),
		"session":    newSessionView(h.engine, res.Session),
		"progress":   res.Progress,
		"new_badges": newBadgeViews(res.NewBadges),
	})
}
