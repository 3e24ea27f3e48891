package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/SOMET1010/africa-suite-pulse-sub010/internal/application/port"
	"github.com/SOMET1010/africa-suite-pulse-sub010/internal/application/service"
	"github.com/SOMET1010/africa-suite-pulse-sub010/internal/domain/audit"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler exposes the night-audit operations over HTTP
type Handler struct {
	audits service.AuditService
	logger *zap.Logger
}

// NewHandler creates a new API handler
func NewHandler(audits service.AuditService, logger *zap.Logger) *Handler {
	return &Handler{audits: audits, logger: logger}
}

// RegisterRoutes mounts the night-audit API
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	v1 := r.Group("/api/v1/night-audit")
	{
		v1.POST("/sessions", h.startAudit)
		v1.GET("/sessions", h.listSessions)
		v1.GET("/sessions/:id", h.getSession)
		v1.GET("/sessions/:id/summary", h.getSummary)
		v1.POST("/sessions/:id/complete", h.completeAudit)
		v1.POST("/sessions/:id/fail", h.failAudit)
		v1.POST("/checkpoints/:id/:action", h.advanceCheckpoint)
	}
}

type startAuditRequest struct {
	HotelID   string `json:"hotel_id" binding:"required"`
	AuditDate string `json:"audit_date" binding:"required"`
}

func (h *Handler) startAudit(c *gin.Context) {
	var req startAuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.audits.StartAudit(c.Request.Context(), req.HotelID, req.AuditDate)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"session":     result.Session,
		"checkpoints": result.Checkpoints,
		"summary":     result.Summary,
	})
}

func (h *Handler) listSessions(c *gin.Context) {
	hotelID := c.Query("hotel_id")
	if hotelID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "hotel_id is required"})
		return
	}

	limit := intQuery(c, "limit", 20)
	offset := intQuery(c, "offset", 0)

	sessions, err := h.audits.ListSessions(c.Request.Context(), hotelID, limit, offset)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

func (h *Handler) getSession(c *gin.Context) {
	session, err := h.audits.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

func (h *Handler) getSummary(c *gin.Context) {
	summary, err := h.audits.GetSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"summary":      summary,
		"can_complete": summary.CanComplete(),
	})
}

type completeAuditRequest struct {
	HotelDateAfter string `json:"hotel_date_after"`
}

func (h *Handler) completeAudit(c *gin.Context) {
	var req completeAuditRequest
	_ = c.ShouldBindJSON(&req) // body optional; the rollover date defaults to the next day

	session, err := h.audits.CompleteAudit(c.Request.Context(), c.Param("id"), req.HotelDateAfter)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"session": session})
}

type failAuditRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (h *Handler) failAudit(c *gin.Context) {
	var req failAuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.audits.FailAudit(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"session": session})
}

type advanceRequest struct {
	Data         map[string]interface{} `json:"data"`
	ErrorMessage string                 `json:"error_message"`
}

func (h *Handler) advanceCheckpoint(c *gin.Context) {
	action := service.AdvanceAction(c.Param("action"))
	switch action {
	case service.ActionStart, service.ActionComplete, service.ActionFail, service.ActionSkip:
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown checkpoint action"})
		return
	}

	var req advanceRequest
	_ = c.ShouldBindJSON(&req) // body optional for start/skip

	result, err := h.audits.AdvanceCheckpoint(c.Request.Context(), c.Param("id"), action, service.AdvanceParams{
		Data:         req.Data,
		ErrorMessage: req.ErrorMessage,
	})
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"checkpoint": result.Checkpoint,
		"summary":    result.Summary,
	})
}

// renderError maps domain errors to HTTP responses. Gating failures
// return the full list of blocking reasons so the client can display
// them individually.
func (h *Handler) renderError(c *gin.Context, err error) {
	var gating *audit.GatingError
	switch {
	case errors.As(err, &gating):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":            gating.Error(),
			"reasons":          gating.Reasons(),
			"critical_pending": gating.CriticalPending,
			"failed":           gating.Failed,
			"completed":        gating.Completed,
		})
	case errors.Is(err, audit.ErrSessionAlreadyActive),
		errors.Is(err, audit.ErrInvalidTransition),
		errors.Is(err, audit.ErrCriticalCheckpointSkip),
		errors.Is(err, service.ErrOutOfOrder):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, port.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "retryable": true})
	case errors.Is(err, port.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.logger.Error("Request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func intQuery(c *gin.Context, name string, fallback int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
