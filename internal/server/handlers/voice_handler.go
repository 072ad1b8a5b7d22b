package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/pantry/internal/server/middleware"
	"github.com/mamadbah2/pantry/internal/service/whatsapp"
)

// VoiceHandler serves spoken pantry commands from the app.
type VoiceHandler struct {
	svc    whatsapp.VoiceHandler
	logger *zap.Logger
}

// NewVoiceHandler constructs the HTTP handler adapter.
func NewVoiceHandler(svc whatsapp.VoiceHandler, logger *zap.Logger) *VoiceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VoiceHandler{svc: svc, logger: logger}
}

type transcriptBody struct {
	Text string `json:"text" binding:"required"`
}

// Command handles POST /voice.
func (h *VoiceHandler) Command(c *gin.Context) {
	var body transcriptBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "text is required")
		return
	}

	out, err := h.svc.Handle(c.Request.Context(), middleware.UserID(c), body.Text)
	if err != nil {
		if out.Applied() {
			h.logger.Warn("voice command partly applied", zap.Error(err))
			c.JSON(statusFor(err), gin.H{"error": "command partly applied", "outcome": out})
			return
		}
		respondError(c, h.logger, "voice command failed", err)
		return
	}
	c.JSON(http.StatusOK, out)
}

type choiceBody struct {
	ID string `json:"id" binding:"required"`
}

// Choice handles POST /voice/choice, resolving an ambiguous remove.
func (h *VoiceHandler) Choice(c *gin.Context) {
	var body choiceBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "id is required")
		return
	}

	out, err := h.svc.HandleChoice(c.Request.Context(), middleware.UserID(c), body.ID)
	if err != nil {
		respondError(c, h.logger, "voice choice failed", err)
		return
	}
	c.JSON(http.StatusOK, out)
}
