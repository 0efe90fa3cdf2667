package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/marcoskids/marcos/internal/engine"
)

const (
	defaultNotificationLimit = 50
	maxNotificationLimit     = 500
)

type ProgressHandler struct {
	engine *engine.Engine
}

func NewProgressHandler(e *engine.Engine) *ProgressHandler {
	return &ProgressHandler{engine: e}
}

// GET /v1/children/:childID/progress
func (h *ProgressHandler) Progress(c *gin.Context) {
	childID := c.Param("childID")
	ctx := c.Request.Context()

	if c.Query("cached") == "true" {
		agg, err := h.engine.CachedProgress(ctx, childID)
		if err != nil {
			respondErr(c, err)
			return
		}
		RespondOK(c, gin.H{"progress": agg, "cached": true})
		return
	}

	agg, err := h.engine.Progress(ctx, childID)
	if err != nil {
		respondErr(c, err)
		return
	}
	RespondOK(c, gin.H{"progress": agg, "cached": false})
}

// GET /v1/children/:childID/badges
func (h *ProgressHandler) Badges(c *gin.Context) {
	list, err := h.engine.Badges(c.Request.Context(), c.Param("childID"))
	if err != nil {
		respondErr(c, err)
		return
	}
	RespondOK(c, gin.H{"badges": newBadgeViews(list)})
}

// GET /v1/children/:childID/notifications?after=&limit=
func (h *ProgressHandler) Notifications(c *gin.Context) {
	after, err := queryInt64(c, "after", 0)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	limit, err := queryInt64(c, "limit", defaultNotificationLimit)
	if err != nil || limit <= 0 {
		RespondError(c, http.StatusBadRequest, "invalid_request", fmt.Errorf("limit must be a positive integer"))
		return
	}
	if limit > maxNotificationLimit {
		limit = maxNotificationLimit
	}

	events, err := h.engine.Notifications(c.Request.Context(), c.Param("childID"), after, int(limit))
	if err != nil {
		respondErr(c, err)
		return
	}
	next := after
	if len(events) > 0 {
		next = events[len(events)-1].Seq
	}
	RespondOK(c, gin.H{"notifications": events, "next_after": next})
}

func queryInt64(c *gin.Context, key string, def int64) (int64, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return v, nil
}
