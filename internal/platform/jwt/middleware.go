package jwtmw

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"chat_backend/internal/feature/auth/domain"
	"chat_backend/internal/feature/auth/domain/entity"
	"chat_backend/internal/feature/auth/usecase"
)

// ContextUser is the gin context key holding the authenticated *entity.User.
const ContextUser = "user"

// unauthorizedMessage is the body message for every rejected session.
const unauthorizedMessage = "Não autorizado"

// TokenParser verifies a session token and returns its subject.
type TokenParser interface {
	ParseToken(token string) (string, error)
}

// UserLoader resolves the user a token was issued for.
type UserLoader interface {
	CurrentUser(ctx context.Context, userID string) (*entity.User, error)
}

// AuthRequired returns a Gin middleware function that validates the session
// cookie and attaches the matching user to the request context.
func AuthRequired(cookieName string, parser TokenParser, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Read the session cookie
		tokenStr, err := c.Cookie(cookieName)
		if err != nil || tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": unauthorizedMessage})
			return
		}

		// 2. Verify signature and expiry
		userID, err := parser.ParseToken(tokenStr)
		if err != nil {
			slog.Warn("session token rejected", "error", err, "remote_addr", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": unauthorizedMessage})
			return
		}

		// 3. Load the user the token was issued for
		user, err := users.CurrentUser(c.Request.Context(), userID)
		if errors.Is(err, usecase.ErrUserNotFound) {
			slog.Warn("session user not found", "user_id", userID, "remote_addr", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": unauthorizedMessage})
			return
		}
		if err != nil {
			slog.Error("session user lookup failed", "error", err, "user_id", userID)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
			return
		}

		// 4. Pass control to the next handler
		SetCurrentUser(c, user)
		c.Next()
	}
}

// SetCurrentUser attaches user to the request context.
func SetCurrentUser(c *gin.Context, user *entity.User) {
	c.Set(ContextUser, user)
}

// CurrentUser returns the user attached by AuthRequired, or
// domain.ErrUnauthenticated when none is present.
func CurrentUser(c *gin.Context) (*entity.User, error) {
	v, ok := c.Get(ContextUser)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	user, ok := v.(*entity.User)
	if !ok || user == nil {
		return nil, domain.ErrUnauthenticated
	}
	return user, nil
}
