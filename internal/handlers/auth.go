package handlers

import (
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	iauth "github.com/nursultanq/gymapp/internal/auth"
	"github.com/nursultanq/gymapp/internal/services"
	"github.com/nursultanq/gymapp/pkg/errors"
	"github.com/nursultanq/gymapp/pkg/logger"
	"github.com/nursultanq/gymapp/pkg/response"
)

// AuthHandler serves login, logout, password change, and cross-service
// token validation.
type AuthHandler struct {
	guard  *iauth.Guard
	tokens *iauth.TokenService
	audit  *services.AuditService
	log    *zap.Logger
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type changePasswordRequest struct {
	Username    string `json:"username" validate:"required"`
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

type validateTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(guard *iauth.Guard, tokens *iauth.TokenService, audit *services.AuditService) (*AuthHandler, error) {
	if guard == nil || tokens == nil || audit == nil {
		return nil, stderrors.New("auth handler: missing dependency")
	}
	return &AuthHandler{
		guard:  guard,
		tokens: tokens,
		audit:  audit,
		log:    logger.WithModule("handlers.auth"),
	}, nil
}

// POST /api/public/login
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if !bindAndValidate(c, &body) {
		return
	}
	ctx := c.Request.Context()

	account, err := h.guard.Validate(ctx, body.Username, body.Password)
	if err != nil {
		h.auditLogin(c, body.Username, err)
		response.Error(c, err)
		return
	}

	token, err := h.tokens.Issue(ctx, account)
	if err != nil {
		h.log.Error("issue token", zap.Error(err))
		response.Error(c, errors.ErrInternalServer)
		return
	}

	h.auditLogin(c, body.Username, nil)
	response.Success(c, http.StatusOK, gin.H{
		"token":    token,
		"username": account.Username(),
		"role":     account.Role,
	})
}

// POST /api/user/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	username, ok := principal(c)
	if !ok {
		return
	}

	if err := h.tokens.Revoke(c.Request.Context(), bearerToken(c)); err != nil {
		// The middleware already validated this token; a missing row
		// here means it raced another logout.
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	_ = h.audit.Log(c.Request.Context(), services.AuditEntry{
		Username:  username,
		Action:    services.AuditActionLogout,
		Result:    services.AuditResultSuccess,
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	response.NoContent(c)
}

// PUT /api/user/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var body changePasswordRequest
	if !bindAndValidate(c, &body) {
		return
	}
	if !requireOwnership(c, body.Username) {
		return
	}

	err := h.guard.ChangePassword(c.Request.Context(), body.Username, body.OldPassword, body.NewPassword)
	result := services.AuditResultSuccess
	if err != nil {
		result = services.AuditResultFailure
	}
	_ = h.audit.Log(c.Request.Context(), services.AuditEntry{
		Username:  body.Username,
		Action:    services.AuditActionPasswordChange,
		Result:    result,
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// POST /api/public/token/validate
//
// Cross-service validation for the stats service. Reports validity only; it
// never turns a bad token into an anonymous pass.
func (h *AuthHandler) ValidateToken(c *gin.Context) {
	var body validateTokenRequest
	if !bindAndValidate(c, &body) {
		return
	}

	valid, err := h.tokens.IsValid(c.Request.Context(), body.Token)
	if err != nil {
		// Malformed or badly signed tokens are rejected outright.
		response.Error(c, errors.ErrUnauthorized)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"valid": valid})
}

// GET /api/user/audit
//
// The principal's own security trail: logins, logouts, password changes.
func (h *AuthHandler) AuditTrail(c *gin.Context) {
	username, ok := principal(c)
	if !ok {
		return
	}

	page, pageSize, ok := parsePagination(c)
	if !ok {
		return
	}

	entries, total, err := h.audit.List(c.Request.Context(), services.AuditListOptions{
		Page:     page,
		PageSize: pageSize,
		Filters: services.AuditFilters{
			Username: username,
			Action:   c.Query("action"),
			Result:   c.Query("result"),
		},
	})
	if err != nil {
		h.log.Error("list audit trail", zap.Error(err))
		response.Error(c, errors.ErrInternalServer)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"entries": entries,
		"total":   total,
		"page":    page,
	})
}

func parsePagination(c *gin.Context) (page, pageSize int, ok bool) {
	page, pageOK := parsePositiveInt(c.DefaultQuery("page", "1"))
	size, sizeOK := parsePositiveInt(c.DefaultQuery("page_size", "50"))
	if !pageOK || !sizeOK {
		response.Error(c, errors.NewBadRequest("page and page_size must be positive integers"))
		return 0, 0, false
	}
	return page, size, true
}

func parsePositiveInt(value string) (int, bool) {
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

func (h *AuthHandler) auditLogin(c *gin.Context, username string, err error) {
	result := services.AuditResultSuccess
	switch {
	case err == nil:
	case errors.FromError(err) == errors.ErrUserBlocked:
		result = services.AuditResultBlocked
	default:
		result = services.AuditResultFailure
	}

	if auditErr := h.audit.Log(c.Request.Context(), services.AuditEntry{
		Username:  username,
		Action:    services.AuditActionLogin,
		Result:    result,
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}); auditErr != nil {
		h.log.Warn("audit login", zap.Error(auditErr))
	}
}
