package user

import (
	"errors"
	"net/http"

	"friendlink/internal/auth"
	"friendlink/internal/constants"
	"friendlink/internal/response"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Handler 账户相关 HTTP 接口
type Handler struct {
	accounts *AccountService
	tokens   *auth.TokenIssuer
}

// NewHandler 创建账户接口
func NewHandler(accounts *AccountService, tokens *auth.TokenIssuer) *Handler {
	return &Handler{accounts: accounts, tokens: tokens}
}

// Login 处理用户登录
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Validation(c, err)
		return
	}

	pair, err := h.accounts.Login(c.Request.Context(), &req)
	if errors.Is(err, ErrInvalidCredentials) {
		response.Error(c, http.StatusBadRequest, constants.ErrInvalidCredentials)
		return
	}
	if err != nil {
		response.Internal(c, err)
		return
	}

	c.JSON(http.StatusOK, pair)
}

// SignUp 处理用户注册
func (h *Handler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Validation(c, err)
		return
	}

	_, err := h.accounts.SignUp(c.Request.Context(), &req)
	switch {
	case err == nil:
		response.Message(c, http.StatusOK, constants.MsgAccountCreated)
	case errors.Is(err, ErrInvalidEmail):
		c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"email": constants.ErrInvalidEmail}})
	case errors.Is(err, ErrDuplicateEmail):
		c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"email": constants.ErrEmailExists}})
	case errors.Is(err, ErrPasswordLong):
		c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"password": constants.ErrPasswordTooLong}})
	case errors.Is(err, ErrEmptyField):
		c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"non_field_errors": "This field may not be blank."}})
	default:
		response.Internal(c, err)
	}
}

// Refresh 用 refresh token 换新的令牌对
func (h *Handler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Validation(c, err)
		return
	}

	pair, err := h.tokens.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		h.tokenError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

// Logout 注销 refresh token
func (h *Handler) Logout(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Validation(c, err)
		return
	}

	if err := h.tokens.Revoke(c.Request.Context(), req.Refresh); err != nil {
		h.tokenError(c, err)
		return
	}
	response.Message(c, http.StatusOK, constants.MsgLoggedOut)
}

func (h *Handler) tokenError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrTokenRevoked):
		response.Error(c, http.StatusUnauthorized, constants.ErrTokenBlacklisted)
	case errors.Is(err, auth.ErrTokenInvalid), errors.Is(err, auth.ErrWrongTokenType):
		response.Error(c, http.StatusUnauthorized, constants.ErrTokenInvalid)
	default:
		response.Internal(c, err)
	}
}

// SearchUsers 搜索用户，排除调用者
func (h *Handler) SearchUsers(c *gin.Context) {
	callerID, ok := auth.CurrentUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, constants.ErrAuthHeaderMissing)
		return
	}

	query := c.Query("q")
	users, err := h.accounts.SearchUsers(c.Request.Context(), query, callerID)
	if err != nil {
		response.Internal(c, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"callerID": callerID,
		"count":    len(users),
	}).Debug("用户搜索完成")
	c.JSON(http.StatusOK, Briefs(users))
}
