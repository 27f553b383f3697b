package http

import "github.com/gin-gonic/gin"

// Detail 以 {"detail": message} 的形式返回错误响应体。
// 响应键沿用对外已发布的接口契约，不要改成 "error"。
func Detail(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"detail": message})
}
