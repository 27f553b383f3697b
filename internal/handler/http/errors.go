package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/noteable-io/minor-illusion/internal/service"
)

// HandleServiceError 把服务层的业务错误统一翻译成 HTTP 响应。
// 错误分类与状态码的对应关系是接口契约的一部分：
// 未知用户 401、密码不符 403、实体缺失 404、凭证无效 401 (带质询头)。
func HandleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		Detail(c, http.StatusUnauthorized, "User not found")
	case errors.Is(err, service.ErrIncorrectPassword):
		Detail(c, http.StatusForbidden, "Incorrect password")
	case errors.Is(err, service.ErrTodoNotFound):
		Detail(c, http.StatusNotFound, "Todo not found")
	case errors.Is(err, service.ErrInvalidCredentials):
		c.Header("WWW-Authenticate", "Bearer")
		Detail(c, http.StatusUnauthorized, "Could not validate credentials")
	default:
		logrus.WithError(err).Error("Unhandled internal server error")
		Detail(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
