package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/nursultanq/gymapp/internal/middleware"
	"github.com/nursultanq/gymapp/internal/models"
	"github.com/nursultanq/gymapp/pkg/errors"
	"github.com/nursultanq/gymapp/pkg/response"
)

// principal returns the authenticated username from the request context,
// writing a 401 when the auth middleware did not run.
func principal(c *gin.Context) (string, bool) {
	username := c.GetString(middleware.CtxUsernameKey)
	if username == "" {
		response.Error(c, errors.ErrUnauthorized)
		return "", false
	}
	return username, true
}

// requireOwnership verifies the target username equals the authenticated
// principal. A mismatch is a 403, not a 404, the resource may well exist.
func requireOwnership(c *gin.Context, target string) bool {
	username, ok := principal(c)
	if !ok {
		return false
	}
	if username != target {
		response.Error(c, errors.ErrForbidden)
		return false
	}
	return true
}

func principalRole(c *gin.Context) models.Role {
	value, ok := c.Get(middleware.CtxRoleKey)
	if !ok {
		return ""
	}
	role, _ := value.(models.Role)
	return role
}

func bearerToken(c *gin.Context) string {
	return c.GetString(middleware.CtxTokenKey)
}
