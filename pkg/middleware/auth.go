package middleware

import (
	"context"
	"strings"

	"intelligent-chatbot/backend/pkg/errors"
	"intelligent-chatbot/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
)

// bearerToken extracts the token from the Authorization header, or ""
// when no bearer token is present.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return token
}

// RequireAuth returns a middleware that rejects requests without a
// valid bearer token and stores the caller's user ID in the context.
func RequireAuth(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Error(errors.NewUnauthorizedError(errors.CodeUnauthorized, "Authorization header is required"))
			c.Abort()
			return
		}

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			c.Error(errors.NewUnauthorizedError(errors.CodeUnauthorized, "Invalid or expired token"))
			c.Abort()
			return
		}

		setIdentity(c, claims.UserID)
		c.Next()
	}
}

// OptionalAuth returns a middleware that stores the caller's user ID
// when a valid bearer token is present and otherwise leaves the request
// anonymous. An invalid token is treated as anonymous, not as an error.
func OptionalAuth(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if claims, err := jwtService.ValidateToken(token); err == nil {
				setIdentity(c, claims.UserID)
			}
		}
		c.Next()
	}
}

func setIdentity(c *gin.Context, userID string) {
	c.Set("userID", userID)
	ctx := context.WithValue(c.Request.Context(), UserIDKey, userID)
	c.Request = c.Request.WithContext(ctx)
}

// AuthenticatedUser returns the user ID set by the auth middleware, or
// "" for anonymous requests.
func AuthenticatedUser(c *gin.Context) string {
	return c.GetString("userID")
}
