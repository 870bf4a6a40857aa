package user_controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joy095/workspace/controllers/reservation_controller"
	"github.com/joy095/workspace/logger"
	"github.com/joy095/workspace/models/user_models"
	"github.com/joy095/workspace/store"
	"github.com/joy095/workspace/utils/jwt_parse"
)

// LoginRequest selects an identity by email or id.
type LoginRequest struct {
	Email  string     `json:"email"`
	UserID *uuid.UUID `json:"userId"`
}

// UserController handles user-related requests
type UserController struct {
	Store  store.Store
	Signer *jwt_parse.Signer
	Now    func() time.Time
}

// NewUserController creates a new UserController
func NewUserController(s store.Store, signer *jwt_parse.Signer) *UserController {
	return &UserController{Store: s, Signer: signer, Now: time.Now}
}

// ListUsers handles GET /users.
func (uc *UserController) ListUsers(c *gin.Context) {
	var users []user_models.User
	err := uc.Store.InTx(c.Request.Context(), func(ctx context.Context, tx store.Tx) error {
		var err error
		users, err = tx.ListUsers(ctx)
		return err
	})
	if err != nil {
		reservation_controller.RespondError(c, err)
		return
	}
	if users == nil {
		users = []user_models.User{}
	}
	c.JSON(http.StatusOK, users)
}

// Login handles POST /login. It selects an existing user and issues a bearer token.
func (uc *UserController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		reservation_controller.RespondBadRequest(c, "Invalid request body", err)
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" && (req.UserID == nil || *req.UserID == uuid.Nil) {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "error": "Email or user id is required"})
		return
	}

	id := uuid.Nil
	if req.UserID != nil {
		id = *req.UserID
	}

	var user *user_models.User
	err := uc.Store.InTx(c.Request.Context(), func(ctx context.Context, tx store.Tx) error {
		var err error
		user, err = tx.GetUser(ctx, id, email)
		return err
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			logger.WarnLogger.Warnf("Login for unknown user (id=%s email=%q)", id, email)
			c.JSON(http.StatusNotFound, gin.H{"code": "NOT_FOUND", "error": "User not found"})
			return
		}
		reservation_controller.RespondError(c, err)
		return
	}

	token, expires, err := uc.Signer.Issue(user.ID, uc.Now())
	if err != nil {
		reservation_controller.RespondError(c, err)
		return
	}

	logger.InfoLogger.Infof("User %s selected", user.ID)
	c.JSON(http.StatusOK, gin.H{
		"user":      user,
		"token":     token,
		"expiresAt": expires,
	})
}
