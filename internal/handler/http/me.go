package http

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/noteable-io/minor-illusion/internal/dto"
	"github.com/noteable-io/minor-illusion/internal/middleware"
)

// Me 处理 GET /me，返回认证门解析出的当前用户的公开字段。
func Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		// 路由配置错误才会走到这里 (handler 挂在了认证门外面)
		Detail(c, http.StatusUnauthorized, "Could not validate credentials")
		return
	}
	c.JSON(http.StatusOK, dto.NewUserOut(user))
}

// Host 处理 GET /host，返回当前实例的主机名。
// 多副本跑在负载均衡后面时用来确认连到了哪个后端。
func Host(c *gin.Context) {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	c.JSON(http.StatusOK, hostname)
}
