package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/noteable-io/minor-illusion/internal/domain"
	"github.com/noteable-io/minor-illusion/internal/repository"
)

// GormUserRepository 是 UserRepository 接口的 GORM 实现。
type GormUserRepository struct {
	*CrudRepository[domain.User]
}

// NewGormUserRepository 创建 GormUserRepository 实例。
// db 通过依赖注入传入。
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{CrudRepository: NewCrudRepository[domain.User](db)}
}

// FindByName 实现根据用户名查找用户。
func (r *GormUserRepository) FindByName(ctx context.Context, name string) (*domain.User, error) {
	var user domain.User
	err := sessionFrom(ctx, r.db).Where("name = ?", name).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 映射为定义的仓库层哨兵错误
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("gorm: find user by name %q: %w", name, err)
	}
	return &user, nil
}
