package gormpersistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/noteable-io/minor-illusion/internal/repository"
)

// CrudRepository 是 repository.CrudRepository 的 GORM 实现。
// 实体专属的仓库 (UserRepository, TodoRepository) 通过嵌入它获得通用操作。
type CrudRepository[T any] struct {
	db *gorm.DB
}

// NewCrudRepository 创建指定实体类型的通用仓库。
func NewCrudRepository[T any](db *gorm.DB) *CrudRepository[T] {
	if db == nil {
		panic("database connection cannot be nil for CrudRepository")
	}
	return &CrudRepository[T]{db: db}
}

// Create 持久化一个新实体。
// ID 和 CreatedAt 的默认值由 domain.Base 的 BeforeCreate 钩子填充。
func (r *CrudRepository[T]) Create(ctx context.Context, entity *T) error {
	err := sessionFrom(ctx, r.db).Create(entity).Error
	if err != nil {
		if isDuplicateEntryError(err) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: create %T: %w", entity, err)
	}
	return nil
}

// Get 根据 ID 查找实体，不存在时返回 repository.ErrNotFound 哨兵。
func (r *CrudRepository[T]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	var entity T
	err := sessionFrom(ctx, r.db).First(&entity, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("gorm: get %T by id %s: %w", &entity, id, err)
	}
	return &entity, nil
}

// GetAll 返回该类型的全部实体。不保证顺序。
func (r *CrudRepository[T]) GetAll(ctx context.Context) ([]*T, error) {
	var entities []*T
	err := sessionFrom(ctx, r.db).Find(&entities).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: get all %T: %w", entities, err)
	}
	return entities, nil
}

// Update 只应用 fields 中出现的列，其余列保持不变。
// GORM 的 Updates(map) 天然只生成出现的列，且会把新值写回 entity。
func (r *CrudRepository[T]) Update(ctx context.Context, id uuid.UUID, fields map[string]any) (*T, error) {
	session := sessionFrom(ctx, r.db)

	var entity T
	err := session.First(&entity, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("gorm: update %T by id %s: %w", &entity, id, err)
	}

	if len(fields) == 0 {
		return &entity, nil
	}

	if err := session.Model(&entity).Updates(fields).Error; err != nil {
		return nil, fmt.Errorf("gorm: update %T by id %s: %w", &entity, id, err)
	}
	return &entity, nil
}

// Delete 删除实体并返回受影响的行数。删除不存在的 ID 返回 0，不报错。
func (r *CrudRepository[T]) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result := sessionFrom(ctx, r.db).Delete(new(T), "id = ?", id)
	if result.Error != nil {
		return 0, fmt.Errorf("gorm: delete by id %s: %w", id, result.Error)
	}
	return result.RowsAffected, nil
}

// isDuplicateEntryError 检查常见的唯一约束错误字符串。
// TODO: 替换为特定数据库驱动的错误码检查 (MySQL 1062)。
func isDuplicateEntryError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || // MySQL
		strings.Contains(msg, "UNIQUE constraint failed") || // SQLite
		strings.Contains(msg, "duplicate key value violates unique constraint") // PostgreSQL
}
