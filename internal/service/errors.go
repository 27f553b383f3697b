package service

import "errors"

var (
	// ErrUserNotFound: 登录时用户名不存在 (HTTP 401)。
	ErrUserNotFound = errors.New("user not found")
	// ErrIncorrectPassword: 用户存在但密码不匹配 (HTTP 403)。
	ErrIncorrectPassword = errors.New("incorrect password")
	// ErrInvalidCredentials: Bearer 凭证缺失、无法解码或无法解析到用户 (HTTP 401 + 质询头)。
	ErrInvalidCredentials = errors.New("could not validate credentials")
	// ErrTodoNotFound: 请求的 Todo 不存在 (HTTP 404)。
	ErrTodoNotFound = errors.New("todo not found")
	// ErrInternalServer: 未预期的基础设施错误。
	ErrInternalServer = errors.New("internal server error")
)
