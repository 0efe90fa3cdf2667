package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/marcoskids/marcos/internal/engine"
)

type ChildHandler struct {
	engine *engine.Engine
}

func NewChildHandler(e *engine.Engine) *ChildHandler {
	return &ChildHandler{engine: e}
}

type registerChildRequest struct {
	UserID    string `json:"user_id" binding:"required"`
	Name      string `json:"name" binding:"required"`
	BirthDate string `json:"birth_date" binding:"required"`
}

// POST /v1/children
func (h *ChildHandler) Register(c *gin.Context) {
	var req registerChildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	birth, err := time.Parse(time.DateOnly, req.BirthDate)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_birth_date", fmt.Errorf("birth_date must be YYYY-MM-DD: %w", err))
		return
	}

	child, err := h.engine.RegisterChild(c.Request.Context(), req.UserID, req.Name, birth)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"child": child})
}

// GET /v1/children/:childID
func (h *ChildHandler) Get(c *gin.Context) {
	child, err := h.engine.Child(c.Request.Context(), c.Param("childID"))
	if err != nil {
		respondErr(c, err)
		return
	}
	age := h.engine.AgeOf(child)
	RespondOK(c, gin.H{
		"child": child,
		"age": gin.H{
			"months": age.Months,
			"weeks":  age.Weeks,
		},
	})
}

// GET /v1/children?user_id=
func (h *ChildHandler) List(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		RespondError(c, http.StatusBadRequest, "invalid_request", fmt.Errorf("user_id is required"))
		return
	}
	children, err := h.engine.Children(c.Request.Context(), userID)
	if err != nil {
		respondErr(c, err)
		return
	}
	RespondOK(c, gin.H{"children": children})
}
