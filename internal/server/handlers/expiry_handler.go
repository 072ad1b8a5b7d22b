package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/pantry/internal/domain/models"
)

// ExpiryService is what the notification routes need. *expiry.Service satisfies it.
type ExpiryService interface {
	Notifications(ctx context.Context) (*models.NotificationList, error)
	MarkRead(ctx context.Context, id string) (*models.Notification, error)
	RunSweep(ctx context.Context) (*models.SweepReport, error)
	WeeklySummary(ctx context.Context) (string, error)
}

// ExpiryHandler serves the notification inbox and the expiry jobs.
type ExpiryHandler struct {
	svc    ExpiryService
	logger *zap.Logger
}

// NewExpiryHandler constructs the HTTP handler adapter.
func NewExpiryHandler(svc ExpiryService, logger *zap.Logger) *ExpiryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExpiryHandler{svc: svc, logger: logger}
}

// ListNotifications handles GET /notifications.
func (h *ExpiryHandler) ListNotifications(c *gin.Context) {
	list, err := h.svc.Notifications(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "list notifications failed", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// MarkRead handles POST /notifications/:id/read.
func (h *ExpiryHandler) MarkRead(c *gin.Context) {
	n, err := h.svc.MarkRead(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "mark notification read failed", err)
		return
	}
	c.JSON(http.StatusOK, n)
}

// RunSweep handles POST /expiry/sweep, running the daily sweep on demand.
func (h *ExpiryHandler) RunSweep(c *gin.Context) {
	report, err := h.svc.RunSweep(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "expiry sweep failed", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Summary handles GET /expiry/summary.
func (h *ExpiryHandler) Summary(c *gin.Context) {
	summary, err := h.svc.WeeklySummary(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "weekly summary failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}
