package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"assessment-service/internal/middleware"
	"assessment-service/internal/models"
	"assessment-service/internal/service"

	"github.com/gin-gonic/gin"
)

type AttemptHandler struct {
	Service *service.AttemptService
}

func NewAttemptHandler(s *service.AttemptService) *AttemptHandler {
	return &AttemptHandler{Service: s}
}

// StartAttempt opens (or idempotently re-opens) an attempt for the caller.
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	var req struct {
		QuizID string `json:"quiz_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}
	actor := middleware.ActorFrom(c)
	if !actor.IsStudent() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only students can start attempts"})
		return
	}

	sub, resumed, err := h.Service.Start(c.Request.Context(), req.QuizID, actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusCreated
	if resumed {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"submission": sub, "resumed": resumed})
}

// RecordEvent ingests a proctoring signal for an in-progress attempt.
func (h *AttemptHandler) RecordEvent(c *gin.Context) {
	var req struct {
		Kind string `json:"kind" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}
	if err := h.Service.RecordEvent(c.Request.Context(), c.Param("id"), req.Kind); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recorded": true})
}

// SubmitAttempt grades and finalizes the caller's attempt.
func (h *AttemptHandler) SubmitAttempt(c *gin.Context) {
	var req struct {
		Answers         []models.Answer `json:"answers"`
		TabSwitches     int             `json:"tab_switches"`
		FullscreenExits int             `json:"fullscreen_exits"`
		TimedOut        bool            `json:"timed_out"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}
	actor := middleware.ActorFrom(c)

	sub, showResults, err := h.Service.Submit(c.Request.Context(), c.Param("id"), actor.ID, req.Answers, models.ProctoringSummary{
		TabSwitches:     req.TabSwitches,
		FullscreenExits: req.FullscreenExits,
		TimedOut:        req.TimedOut,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if !showResults {
		c.JSON(http.StatusOK, gin.H{
			"submission":   sub.Summarize(),
			"show_results": false,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"submission":   sub,
		"show_results": true,
	})
}

// ResumeAttempt reopens a submission on teacher/admin authority.
func (h *AttemptHandler) ResumeAttempt(c *gin.Context) {
	var req struct {
		Reason        string `json:"reason"`
		ExtendMinutes int    `json:"extend_minutes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}
	actor := middleware.ActorFrom(c)

	sub, err := h.Service.Resume(c.Request.Context(), c.Param("id"), actor, req.Reason, req.ExtendMinutes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"submission": sub})
}

func (h *AttemptHandler) GetAttempt(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	sub, err := h.Service.Get(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

func (h *AttemptHandler) ListAttempts(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	offset, _ := strconv.ParseInt(c.DefaultQuery("offset", "0"), 10, 64)

	subs, err := h.Service.List(c.Request.Context(), actor, models.AttemptListOpts{
		QuizID:    c.Query("quiz_id"),
		StudentID: c.Query("student_id"),
		Status:    c.Query("status"),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"submissions": subs})
}

// respondError maps the service failure taxonomy onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrAttemptLimitExceeded):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrQuizUnavailable):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
