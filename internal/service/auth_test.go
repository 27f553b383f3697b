package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noteable-io/minor-illusion/internal/domain"
	"github.com/noteable-io/minor-illusion/internal/infra/persistence/memory"
	"github.com/noteable-io/minor-illusion/internal/repository"
	"github.com/noteable-io/minor-illusion/internal/repository/mocks"
	"github.com/noteable-io/minor-illusion/internal/service"
)

// newAuthService 用 mock 仓库构造被测服务。
func newAuthService(t *testing.T, users repository.UserRepository) *service.AuthService {
	t.Helper()
	authService, err := service.NewAuthService(users, memory.UnitOfWork{}, "test-secret", 24)
	require.NoError(t, err, "创建 AuthService 不应失败")
	return authService
}

// --- 测试 Login 方法 ---

func TestAuthService_Login_Success(t *testing.T) {
	// Arrange
	mockUserRepo := new(mocks.UserRepository)
	authService := newAuthService(t, mockUserRepo)
	ctx := context.Background()
	username := "alice"
	password := "pw1"
	userInDb := &domain.User{Name: username, Password: password}
	userInDb.EnsureDefaults(time.Now().UTC())

	// 设置 Mock 预期: FindByName 成功找到用户
	mockUserRepo.On("FindByName", ctx, username).Return(userInDb, nil).Once()

	// Act
	token, err := authService.Login(ctx, username, password)

	// Assert
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	// Verify
	mockUserRepo.AssertExpectations(t)
}

func TestAuthService_Login_UserNotFound(t *testing.T) {
	// Arrange
	mockUserRepo := new(mocks.UserRepository)
	authService := newAuthService(t, mockUserRepo)
	ctx := context.Background()

	// 设置 Mock 预期: FindByName 找不到用户
	mockUserRepo.On("FindByName", ctx, "nonexistent").Return(nil, repository.ErrNotFound).Once()

	// Act
	token, err := authService.Login(ctx, "nonexistent", "password")

	// Assert
	require.Error(t, err)
	assert.Empty(t, token)
	assert.True(t, errors.Is(err, service.ErrUserNotFound), "未知用户应返回 ErrUserNotFound")

	// Verify
	mockUserRepo.AssertExpectations(t)
}

func TestAuthService_Login_IncorrectPassword(t *testing.T) {
	// Arrange
	mockUserRepo := new(mocks.UserRepository)
	authService := newAuthService(t, mockUserRepo)
	ctx := context.Background()
	username := "alice"
	userInDb := &domain.User{Name: username, Password: "correct"}

	mockUserRepo.On("FindByName", ctx, username).Return(userInDb, nil).Once()

	// Act
	token, err := authService.Login(ctx, username, "wrong")

	// Assert
	require.Error(t, err)
	assert.Empty(t, token)
	assert.True(t, errors.Is(err, service.ErrIncorrectPassword), "密码不符应返回 ErrIncorrectPassword")

	// Verify
	mockUserRepo.AssertExpectations(t)
}

// --- 测试 ResolveToken 方法 ---

func TestAuthService_ResolveToken_RoundTrip(t *testing.T) {
	// Arrange: 用同一个服务签发再解析，主体应解析回同一个用户
	mockUserRepo := new(mocks.UserRepository)
	authService := newAuthService(t, mockUserRepo)
	ctx := context.Background()
	username := "alice"
	userInDb := &domain.User{Name: username, Password: "pw1"}

	token, err := authService.CreateToken(username)
	require.NoError(t, err)

	mockUserRepo.On("FindByName", ctx, username).Return(userInDb, nil).Once()

	// Act
	resolved, err := authService.ResolveToken(ctx, token)

	// Assert
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, username, resolved.Name)

	// Verify
	mockUserRepo.AssertExpectations(t)
}

func TestAuthService_ResolveToken_Garbage(t *testing.T) {
	// Arrange
	mockUserRepo := new(mocks.UserRepository)
	authService := newAuthService(t, mockUserRepo)

	// Act
	resolved, err := authService.ResolveToken(context.Background(), "not-a-token")

	// Assert
	require.Error(t, err)
	assert.Nil(t, resolved)
	assert.True(t, errors.Is(err, service.ErrInvalidCredentials))

	// Verify: 解码失败时不应触达仓库
	mockUserRepo.AssertNotCalled(t, "FindByName")
}

func TestAuthService_ResolveToken_UnknownSubject(t *testing.T) {
	// Arrange: token 合法但主体已不存在
	mockUserRepo := new(mocks.UserRepository)
	authService := newAuthService(t, mockUserRepo)
	ctx := context.Background()

	token, err := authService.CreateToken("ghost")
	require.NoError(t, err)

	mockUserRepo.On("FindByName", ctx, "ghost").Return(nil, repository.ErrNotFound).Once()

	// Act
	resolved, err := authService.ResolveToken(ctx, token)

	// Assert
	require.Error(t, err)
	assert.Nil(t, resolved)
	assert.True(t, errors.Is(err, service.ErrInvalidCredentials))

	// Verify
	mockUserRepo.AssertExpectations(t)
}

func TestAuthService_ResolveToken_WrongSecret(t *testing.T) {
	// Arrange: 用另一把密钥签发的 token 必须被拒绝
	mockUserRepo := new(mocks.UserRepository)
	otherService, err := service.NewAuthService(mockUserRepo, memory.UnitOfWork{}, "other-secret", 24)
	require.NoError(t, err)
	authService := newAuthService(t, mockUserRepo)

	token, err := otherService.CreateToken("alice")
	require.NoError(t, err)

	// Act
	resolved, err := authService.ResolveToken(context.Background(), token)

	// Assert
	require.Error(t, err)
	assert.Nil(t, resolved)
	assert.True(t, errors.Is(err, service.ErrInvalidCredentials))
}
