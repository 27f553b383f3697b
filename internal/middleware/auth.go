// Package middleware 提供 Gin 中间件。
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/noteable-io/minor-illusion/internal/domain"
)

// userContextKey 是认证后的用户在 Gin 上下文中的键。
const userContextKey = "current_user"

// ErrMissingAuthHeader 表示请求缺少 Authorization 头。
var ErrMissingAuthHeader = errors.New("missing Authorization header")

// TokenResolver 把 bearer 凭证解析为用户。由 service.AuthService 实现，
// 抽成接口便于在测试中替换。
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (*domain.User, error)
}

// Auth 返回认证门中间件：提取 bearer 凭证，解析为用户，
// 把请求作用域的用户上下文交给后续 handler。
// 任何失败都以 401 拒绝，并带上 WWW-Authenticate 质询头。
func Auth(resolver TokenResolver) gin.HandlerFunc {
	if resolver == nil {
		panic("TokenResolver cannot be nil for Auth middleware")
	}

	return func(c *gin.Context) {
		tokenStr, err := extractToken(c)
		if err != nil {
			logrus.WithError(err).Warn("Auth middleware: Could not extract bearer token")
			rejectUnauthorized(c)
			return
		}

		user, err := resolver.ResolveToken(c.Request.Context(), tokenStr)
		if err != nil {
			// 凭证无效与解析出错对客户端无差别，细节只进日志
			logrus.WithError(err).Warn("Auth middleware: Token did not resolve to a user")
			rejectUnauthorized(c)
			return
		}

		c.Set(userContextKey, user)
		logrus.WithField("username", user.Name).Debug("Auth middleware: User authenticated")
		c.Next()
	}
}

// CurrentUser 从 Gin 上下文取出认证门放入的用户。
// 只在 Auth 中间件之后的 handler 里调用才有值。
func CurrentUser(c *gin.Context) (*domain.User, bool) {
	value, exists := c.Get(userContextKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*domain.User)
	return user, ok
}

// rejectUnauthorized 以统一的 401 响应终止请求链。
func rejectUnauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Could not validate credentials"})
}

// extractToken 从 Authorization 头提取 Bearer Token。
func extractToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", ErrMissingAuthHeader
	}
	// 格式应为 "Bearer <token>"，忽略 scheme 的大小写
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("malformed Authorization header")
	}
	return parts[1], nil
}
