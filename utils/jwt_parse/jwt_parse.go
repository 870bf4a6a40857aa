package jwt_parse

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/joy095/workspace/logger"
	"github.com/joy095/workspace/utils"
)

var (
	ErrNoToken        = errors.New("no authorization token")
	ErrInvalidFormat  = errors.New("invalid authorization format")
	ErrInvalidToken   = errors.New("invalid token")
	ErrMissingSubject = errors.New("token does not contain user_id")
)

// Claims carries the selected identity.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Signer issues and verifies HS256 identity tokens.
type Signer struct {
	secret []byte
	ttl    time.Duration
}

func NewSigner(secret string, ttl time.Duration) *Signer {
	return &Signer{secret: []byte(secret), ttl: ttl}
}

// Issue returns a signed token for userID expiring after the signer's TTL.
func (s *Signer) Issue(userID uuid.UUID, now time.Time) (string, time.Time, error) {
	expires := now.Add(s.ttl)
	claims := Claims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expires, nil
}

// Parse validates tokenString and returns the user id it carries.
func (s *Signer) Parse(tokenString string) (uuid.UUID, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	raw := claims.UserID
	if raw == "" {
		raw = claims.Subject
	}
	if raw == "" {
		return uuid.Nil, ErrMissingSubject
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return id, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", ErrNoToken
	}
	if len(authHeader) > 7 && strings.ToLower(authHeader[:7]) == "bearer " {
		return strings.TrimSpace(authHeader[7:]), nil
	}
	return "", ErrInvalidFormat
}

// Authenticate validates the bearer token and stores its user id in the context.
// It aborts with 401 and returns false when the token is missing or invalid. It does
// not advance the handler chain.
func (s *Signer) Authenticate(c *gin.Context) bool {
	tokenString, err := BearerToken(c)
	if err != nil {
		logger.WarnLogger.Warnf("Rejected request to %s: %v", c.FullPath(), err)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "error": err.Error()})
		return false
	}

	userID, err := s.Parse(tokenString)
	if err != nil {
		logger.WarnLogger.Warnf("Failed to parse JWT token: %v", err)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "INVALID_TOKEN", "error": "Invalid token"})
		return false
	}

	c.Set(utils.ContextUserIDKey, userID.String())
	logger.DebugLogger.Debugf("Parsed JWT token for user: %s", userID)
	return true
}

// ParseJWTToken wraps Authenticate as middleware.
func (s *Signer) ParseJWTToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.Authenticate(c) {
			return
		}
		c.Next()
	}
}
