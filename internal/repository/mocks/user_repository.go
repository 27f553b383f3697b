// Package mocks 提供 repository 接口的 testify mock 实现，供 service 层测试使用。
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/noteable-io/minor-illusion/internal/domain"
)

// UserRepository 是 repository.UserRepository 的 mock。
type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepository) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	var user *domain.User
	if v := args.Get(0); v != nil {
		user = v.(*domain.User)
	}
	return user, args.Error(1)
}

func (m *UserRepository) GetAll(ctx context.Context) ([]*domain.User, error) {
	args := m.Called(ctx)
	var users []*domain.User
	if v := args.Get(0); v != nil {
		users = v.([]*domain.User)
	}
	return users, args.Error(1)
}

func (m *UserRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]any) (*domain.User, error) {
	args := m.Called(ctx, id, fields)
	var user *domain.User
	if v := args.Get(0); v != nil {
		user = v.(*domain.User)
	}
	return user, args.Error(1)
}

func (m *UserRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *UserRepository) FindByName(ctx context.Context, name string) (*domain.User, error) {
	args := m.Called(ctx, name)
	var user *domain.User
	if v := args.Get(0); v != nil {
		user = v.(*domain.User)
	}
	return user, args.Error(1)
}
