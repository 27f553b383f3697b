package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"

	"github.com/noteable-io/minor-illusion/internal/domain"
	"github.com/noteable-io/minor-illusion/internal/repository"
)

// userClaim 是 JWT 中携带主体标识 (用户名) 的声明键。
const userClaim = "user"

// AuthService 负责登录签发 token 和把 bearer 凭证解析回用户。
type AuthService struct {
	users     repository.UserRepository
	uow       repository.UnitOfWork
	jwtSecret []byte
	jwtExpiry time.Duration
}

// NewAuthService 创建 AuthService 实例。
// jwtSecretKey 应从安全配置中获取。jwtExpiryHours 定义 token 过期的小时数。
func NewAuthService(users repository.UserRepository, uow repository.UnitOfWork, jwtSecretKey string, jwtExpiryHours int) (*AuthService, error) {
	if users == nil {
		panic("UserRepository cannot be nil for AuthService")
	}
	if uow == nil {
		panic("UnitOfWork cannot be nil for AuthService")
	}
	if jwtSecretKey == "" {
		return nil, fmt.Errorf("JWT secret key cannot be empty")
	}
	if jwtExpiryHours <= 0 {
		jwtExpiryHours = 24 // 默认 24 小时
	}
	return &AuthService{
		users:     users,
		uow:       uow,
		jwtSecret: []byte(jwtSecretKey),
		jwtExpiry: time.Duration(jwtExpiryHours) * time.Hour,
	}, nil
}

// Login 校验用户名/密码并签发 token。
// 用户不存在与密码错误是两个不同的业务错误，上层分别映射为 401 和 403。
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	logCtx := logrus.WithField("username", username)

	var user *domain.User
	err := s.uow.Run(ctx, func(ctx context.Context) error {
		var findErr error
		user, findErr = s.users.FindByName(ctx, username)
		return findErr
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logCtx.Warn("Login attempt failed: User not found")
			return "", ErrUserNotFound
		}
		logCtx.WithError(err).Error("Login attempt failed: Error finding user")
		return "", ErrInternalServer
	}

	// 明文精确比较是被保留的演示用缺陷 (见 DESIGN.md)；
	// subtle.ConstantTimeCompare 只是避免时序侧信道，语义仍是逐字节相等。
	if subtle.ConstantTimeCompare([]byte(user.Password), []byte(password)) != 1 {
		logCtx.Warn("Login attempt failed: Incorrect password")
		return "", ErrIncorrectPassword
	}

	token, err := s.CreateToken(user.Name)
	if err != nil {
		logCtx.WithError(err).Error("Failed to generate JWT token during login")
		return "", ErrInternalServer
	}

	logCtx.WithField("user_id", user.ID).Info("User logged in successfully")
	return token, nil
}

// CreateToken 为指定用户名签发 HS256 token。
// 单独拆出来部分是为了让测试能直接构造合法凭证。
func (s *AuthService) CreateToken(username string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		userClaim: username,
		"iat":     now.Unix(),
		"exp":     now.Add(s.jwtExpiry).Unix(),
	})
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ResolveToken 验证 bearer 凭证并解析出对应用户。
// 主体缺失、解码失败、用户不存在统一折叠为 ErrInvalidCredentials，
// 不向调用方泄露失败的具体原因。
func (s *AuthService) ResolveToken(ctx context.Context, tokenStr string) (*domain.User, error) {
	claims, err := s.parseToken(tokenStr)
	if err != nil {
		logrus.WithError(err).Warn("Token validation failed")
		return nil, ErrInvalidCredentials
	}

	username, ok := claims[userClaim].(string)
	if !ok || username == "" {
		logrus.Warn("Token is missing the user claim")
		return nil, ErrInvalidCredentials
	}

	var user *domain.User
	err = s.uow.Run(ctx, func(ctx context.Context) error {
		var findErr error
		user, findErr = s.users.FindByName(ctx, username)
		return findErr
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logrus.WithField("username", username).Warn("Token subject does not resolve to a user")
			return nil, ErrInvalidCredentials
		}
		logrus.WithError(err).Error("Error resolving token subject")
		return nil, ErrInternalServer
	}
	return user, nil
}

// parseToken 解析并验证 JWT token 字符串。
func (s *AuthService) parseToken(tokenStr string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		// 只接受 HMAC 签名，拒绝算法混淆
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token or claims type")
}
