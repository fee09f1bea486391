package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"todo-sentiment/internal/auth"
	"todo-sentiment/internal/service"
)

// fail maps a service error onto a response. Only validation messages reach
// the client; anything unexpected becomes a generic 400 and is logged.
func (h *Handler) fail(c *gin.Context, err error) {
	entry := h.logger.WithError(err).WithField("path", c.Request.URL.Path)

	switch {
	case errors.Is(err, service.ErrNotFound):
		entry.Debug("not found")
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found"})
	case errors.Is(err, service.ErrEmailTaken):
		entry.Debug("duplicate email")
		c.JSON(http.StatusForbidden, gin.H{"detail": "Email already exists"})
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		entry.Debug("unauthorized")
		abortUnauthorized(c, "Incorrect email or password")
	case errors.Is(err, service.ErrStorageDisabled):
		entry.Warn("export requested without storage")
		c.JSON(http.StatusServiceUnavailable, gin.H{"detail": "Export storage is not configured"})
	case errors.Is(err, service.ErrInvalidInput):
		entry.Debug("invalid input")
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
	default:
		entry.Error("request failed")
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Bad Request"})
	}
}

func (h *Handler) badRequest(c *gin.Context, err error) {
	h.logger.WithError(err).WithField("path", c.Request.URL.Path).Debug("malformed request")
	c.JSON(http.StatusBadRequest, gin.H{"detail": "Bad Request"})
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid id"})
		return 0, false
	}
	return id, true
}
