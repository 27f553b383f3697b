// Package dto 定义了 HTTP 和 WebSocket 接口的请求/响应结构。
package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/noteable-io/minor-illusion/internal/domain"
)

// UserOut 是 User 的对外表示，不包含密码。
type UserOut struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Name      string    `json:"name"`
}

// NewUserOut 从领域模型构造响应结构。
func NewUserOut(user *domain.User) UserOut {
	return UserOut{
		ID:        user.ID,
		CreatedAt: user.CreatedAt,
		Name:      user.Name,
	}
}

// TokenResponse 是登录成功的响应体。
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
