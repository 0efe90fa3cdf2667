package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/marcoskids/marcos/internal/sweep"
)

type RecomputeHandler struct {
	sweeper *sweep.Sweeper
	opts    sweep.Options
}

func NewRecomputeHandler(s *sweep.Sweeper, opts sweep.Options) *RecomputeHandler {
	return &RecomputeHandler{sweeper: s, opts: opts}
}

type recomputeRequest struct {
	sweep.Target
	After string `json:"after,omitempty"`
}

// POST /v1/recompute
func (h *RecomputeHandler) Recompute(c *gin.Context) {
	var req recomputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	opts := h.opts
	opts.After = req.After
	report, err := h.sweeper.Run(c.Request.Context(), req.Target, opts)
	if err != nil {
		respondErr(c, err)
		return
	}
	if report.Results == nil {
		report.Results = []sweep.Result{}
	}
	RespondOK(c, gin.H{"report": report})
}
