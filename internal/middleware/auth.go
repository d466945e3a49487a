package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/nursultanq/gymapp/internal/auth"
	"github.com/nursultanq/gymapp/internal/models"
	"github.com/nursultanq/gymapp/pkg/errors"
	"github.com/nursultanq/gymapp/pkg/response"
)

const (
	CtxClaimsKey   = "authClaims"
	CtxUsernameKey = "username"
	CtxRoleKey     = "role"
	CtxTokenKey    = "bearerToken"
)

// Auth enforces bearer-token authentication. Validation goes through the
// token service so revoked tokens are rejected even while their signature is
// still valid. On success the request carries an explicit principal in the
// gin context.
func Auth(tokens *iauth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if len(authz) < 8 || !strings.EqualFold(authz[:7], "Bearer ") {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		token := strings.TrimSpace(authz[7:])
		claims, err := tokens.Authenticate(c.Request.Context(), token)
		if err != nil {
			// Normalise all validation failures to 401
			c.Header("WWW-Authenticate", "Bearer")
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		c.Set(CtxClaimsKey, claims)
		c.Set(CtxUsernameKey, claims.Username())
		c.Set(CtxRoleKey, claims.Role)
		c.Set(CtxTokenKey, token)

		c.Next()
	}
}

// RequireRole rejects requests whose authenticated principal does not carry
// the given role. Must run after Auth.
func RequireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, ok := c.Get(CtxRoleKey)
		if !ok || value.(models.Role) != role {
			response.Error(c, errors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
