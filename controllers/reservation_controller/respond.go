package reservation_controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joy095/workspace/logger"
)

var errorKinds = []struct {
	err    error
	code   string
	status int
}{
	{ErrInvalidInterval, "INVALID_INTERVAL", http.StatusBadRequest},
	{ErrNotFound, "NOT_FOUND", http.StatusNotFound},
	{ErrOutsideOpeningHours, "OUTSIDE_OPENING_HOURS", http.StatusUnprocessableEntity},
	{ErrSlotConflict, "SLOT_CONFLICT", http.StatusConflict},
	{ErrDuplicatePendingRequest, "DUPLICATE_PENDING_REQUEST", http.StatusConflict},
	{ErrAlreadyResolved, "ALREADY_RESOLVED", http.StatusConflict},
	{ErrInvalidTransition, "INVALID_TRANSITION", http.StatusConflict},
	{ErrBusy, "TRY_AGAIN", http.StatusServiceUnavailable},
}

// StatusFor maps an operation error to its response code and HTTP status.
func StatusFor(err error) (string, int) {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.code, k.status
		}
	}
	return "INTERNAL_ERROR", http.StatusInternalServerError
}

// RespondError writes err as {"code", "error"}. Unknown errors are logged and hidden.
func RespondError(c *gin.Context, err error) {
	code, status := StatusFor(err)
	if status == http.StatusInternalServerError {
		logger.ErrorLogger.Errorf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(status, gin.H{"code": code, "error": "Internal server error"})
		return
	}
	logger.WarnLogger.Warnf("%s %s rejected: %v", c.Request.Method, c.FullPath(), err)
	c.JSON(status, gin.H{"code": code, "error": err.Error()})
}

// RespondBadRequest writes a 400 for malformed input.
func RespondBadRequest(c *gin.Context, message string, err error) {
	logger.WarnLogger.Warnf("%s %s: %s: %v", c.Request.Method, c.FullPath(), message, err)
	c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "error": message + ": " + err.Error()})
}
