package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Andessonreis/corre-aqui-dash/internal/apperr"
	"github.com/Andessonreis/corre-aqui-dash/internal/utils"
)

const (
	ctxUserID  = "user_id"
	ctxRole    = "role"
	ctxStoreID = "store_id"
)

// bearerToken extracts the token from "Bearer <token>". ok is false when the
// header is absent.
func bearerToken(c *gin.Context) (token string, ok bool, err error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false, nil
	}

	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", true, apperr.Unauthorized("invalid authorization format")
	}
	return parts[1], true, nil
}

// requestClaims validates the Bearer token, falling back to the session cookie
func requestClaims(c *gin.Context, tokens *utils.TokenIssuer, sessions *SessionManager) (*utils.Claims, error) {
	token, ok, err := bearerToken(c)
	if err != nil {
		return nil, err
	}
	if !ok && sessions != nil {
		token = sessions.Token(c)
	}
	if token == "" {
		return nil, apperr.Unauthorized("authentication required")
	}

	claims, err := tokens.Validate(token)
	if err != nil {
		return nil, apperr.Unauthorized("invalid or expired token")
	}
	return claims, nil
}

// AuthMiddleware validates the JWT and injects the user into the context
func AuthMiddleware(tokens *utils.TokenIssuer, sessions *SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := requestClaims(c, tokens, sessions)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxRole, claims.Role)

		c.Next()
	}
}

// RequireRole rejects tokens issued for any other role. Must run after AuthMiddleware.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if got, _ := Role(c); got != role {
			AbortWithError(c, apperr.Forbidden("access restricted to "+role+" accounts"))
			return
		}
		c.Next()
	}
}

// Role returns the role claim set by AuthMiddleware
func Role(c *gin.Context) (string, bool) {
	role := c.GetString(ctxRole)
	return role, role != ""
}

// UserID returns the authenticated user set by AuthMiddleware
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ctxUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// StoreID returns the store resolved by StoreMiddleware
func StoreID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ctxStoreID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
