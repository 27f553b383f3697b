package gormpersistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/noteable-io/minor-illusion/internal/domain"
)

// GormTodoRepository 是 TodoRepository 接口的 GORM 实现。
type GormTodoRepository struct {
	*CrudRepository[domain.Todo]
}

// NewGormTodoRepository 创建 GormTodoRepository 实例。
func NewGormTodoRepository(db *gorm.DB) *GormTodoRepository {
	return &GormTodoRepository{CrudRepository: NewCrudRepository[domain.Todo](db)}
}

// FindByOwnerName 通过属主关联查询返回指定用户名的全部 Todo。
// 这是系统里仅有的两个非通用查询之一 (另一个是 FindByName)。
func (r *GormTodoRepository) FindByOwnerName(ctx context.Context, name string) ([]*domain.Todo, error) {
	var todos []*domain.Todo
	err := sessionFrom(ctx, r.db).
		Joins("JOIN users ON users.id = todos.user_id").
		Where("users.name = ?", name).
		Find(&todos).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: find todos by owner name %q: %w", name, err)
	}
	return todos, nil
}
