package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/pantry/internal/domain/reconcile"
	"github.com/mamadbah2/pantry/internal/service/expiry"
	"github.com/mamadbah2/pantry/internal/service/pantry"
	"github.com/mamadbah2/pantry/internal/service/voice"
	"github.com/mamadbah2/pantry/pkg/clients/pantryapi"
)

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	var apiErr *pantryapi.APIError

	switch {
	case errors.Is(err, reconcile.ErrNotVisible):
		return http.StatusConflict
	case errors.Is(err, pantry.ErrInvalidArguments),
		errors.Is(err, pantry.ErrEmptySelection),
		errors.Is(err, voice.ErrInvalidChoice):
		return http.StatusBadRequest
	case errors.Is(err, pantry.ErrNoView), errors.Is(err, expiry.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &apiErr):
		switch apiErr.StatusCode {
		case http.StatusNotFound:
			return http.StatusNotFound
		case http.StatusBadRequest:
			return http.StatusBadRequest
		default:
			return http.StatusBadGateway
		}
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, logger *zap.Logger, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error(msg, zap.Error(err))
	} else {
		logger.Debug(msg, zap.Error(err), zap.Int("status", status))
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}
