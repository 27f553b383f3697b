// Package http 封装了 REST 接口的 Gin 处理逻辑。
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/noteable-io/minor-illusion/internal/dto"
	"github.com/noteable-io/minor-illusion/internal/service"
)

// AuthHandler 封装了与用户认证相关的 HTTP 处理逻辑。
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler 创建 AuthHandler 实例。
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	if authService == nil {
		panic("AuthService cannot be nil for AuthHandler")
	}
	return &AuthHandler{authService: authService}
}

// LoginRequest 是登录请求的表单体 (OAuth2 password 风格的 form 编码)。
type LoginRequest struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// Login 处理 POST /auth/login。
// 成功返回 {access_token, token_type}；用户不存在 401，密码不符 403。
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		logrus.WithError(err).Warn("Handler.Login: Invalid form body")
		Detail(c, http.StatusUnprocessableEntity, "username and password are required")
		return
	}

	token, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}
