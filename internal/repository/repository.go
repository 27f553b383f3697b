// Package repository 定义了数据存储层的接口契约。
// 具体实现见 internal/infra/persistence 下的 gorm (生产) 和 memory (测试) 两套适配器。
package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/noteable-io/minor-illusion/internal/domain"
)

// CrudRepository 为任意实体类型提供统一的增删改查语义，
// 避免每个实体重复样板代码。类型参数 T 的指针类型需满足 domain.Entity。
type CrudRepository[T any] interface {
	// Create 持久化一个新实体。缺失的 ID 和 CreatedAt 会在入库前填充默认值，
	// 调用方传入的实体在返回后即为完整状态。
	Create(ctx context.Context, entity *T) error

	// Get 根据 ID 查找实体。
	// 实体不存在时返回 ErrNotFound 哨兵，不视为异常路径。
	Get(ctx context.Context, id uuid.UUID) (*T, error)

	// GetAll 返回该类型的全部实体。顺序不是契约的一部分，调用方不得依赖。
	GetAll(ctx context.Context) ([]*T, error)

	// Update 只应用 fields 中出现的字段，其余字段保持不变。
	// 键使用数据库列名。实体不存在时返回 ErrNotFound。
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) (*T, error)

	// Delete 删除实体并返回受影响的行数 (0 或 1)。
	// 删除不存在的 ID 不是错误，返回 0。
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

// UserRepository 在通用契约之上增加按唯一用户名的查找。
type UserRepository interface {
	CrudRepository[domain.User]

	// FindByName 根据用户名查找用户。不存在时返回 ErrNotFound。
	FindByName(ctx context.Context, name string) (*domain.User, error)
}

// TodoRepository 在通用契约之上增加按属主用户名的关联查询。
type TodoRepository interface {
	CrudRepository[domain.Todo]

	// FindByOwnerName 返回属于指定用户名的全部 Todo，不包含其他用户的记录。
	FindByOwnerName(ctx context.Context, name string) ([]*domain.Todo, error)
}

// UnitOfWork 把一次逻辑操作限定在一个工作单元内：
// 进入时获取事务，fn 正常返回时提交，返回错误或 panic 时回滚，所有路径都释放连接。
// 并发操作之间绝不共享同一个工作单元。
type UnitOfWork interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
}
