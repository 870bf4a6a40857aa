package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joy095/workspace/logger"
	"github.com/joy095/workspace/models/user_models"
	"github.com/joy095/workspace/store"
	"github.com/joy095/workspace/utils"
	"github.com/joy095/workspace/utils/jwt_parse"
)

// ContextUserKey holds the *user_models.User resolved from the token.
const ContextUserKey = "authenticated_user"

// IdentityMiddleware resolves the bearer token to a selected user. The token must be
// valid and the user must still exist.
func IdentityMiddleware(signer *jwt_parse.Signer, s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !signer.Authenticate(c) {
			return
		}

		userID, err := utils.GetUserIDFromContext(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "error": "Unauthorized: Missing user identification from token."})
			return
		}

		var user *user_models.User
		err = s.InTx(c.Request.Context(), func(ctx context.Context, tx store.Tx) error {
			user, err = tx.GetUser(ctx, userID, "")
			return err
		})
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				logger.WarnLogger.Warnf("User %s from token no longer exists", userID)
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "USER_TOKEN_INVALID", "error": "User associated with token not found."})
				return
			}
			logger.ErrorLogger.Errorf("Failed to load user %s for token: %v", userID, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"code": "INTERNAL_ERROR", "error": "Internal server error"})
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the user stored by IdentityMiddleware.
func CurrentUser(c *gin.Context) (*user_models.User, bool) {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*user_models.User)
	return user, ok && user != nil && user.ID != uuid.Nil
}
