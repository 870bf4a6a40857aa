package utils

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joy095/workspace/logger"
)

// ContextUserIDKey is where the identity middleware stores the selected user's id.
const ContextUserIDKey = "user_id"

// GetUserIDFromContext returns the id of the identified user. The middleware stores it
// as a string; a uuid.UUID is accepted too.
func GetUserIDFromContext(c *gin.Context) (uuid.UUID, error) {
	raw, exists := c.Get(ContextUserIDKey)
	if !exists {
		logger.WarnLogger.Warn("User ID not found in context")
		return uuid.Nil, ErrUserIDNotFound
	}

	switch v := raw.(type) {
	case uuid.UUID:
		return v, nil
	case string:
		id, err := uuid.Parse(v)
		if err != nil {
			logger.ErrorLogger.Errorf("Failed to parse user ID string '%s' to UUID: %v", v, err)
			return uuid.Nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
		}
		return id, nil
	default:
		logger.ErrorLogger.Errorf("User ID in context has unexpected type %T", raw)
		return uuid.Nil, ErrUnauthorized
	}
}
