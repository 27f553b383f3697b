// Package memory 提供 repository 接口的进程内实现，供测试使用。
// 它是真实的适配器而不是 mock：每个测试构造全新的 store，
// 隔离靠实例生命周期保证，不依赖任何基于会话身份的键。
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noteable-io/minor-illusion/internal/domain"
	"github.com/noteable-io/minor-illusion/internal/repository"
)

// entityPtr 约束 *T 必须实现 domain.Entity。
type entityPtr[T any] interface {
	*T
	domain.Entity
}

// CrudStore 是 repository.CrudRepository 的内存实现。
// 按值存储实体并在读写时复制，调用方拿到的引用不会与存储产生别名。
type CrudStore[T any, PT entityPtr[T]] struct {
	mu    sync.Mutex
	items map[uuid.UUID]T
}

// NewCrudStore 创建一个空的内存仓库。
func NewCrudStore[T any, PT entityPtr[T]]() *CrudStore[T, PT] {
	return &CrudStore[T, PT]{items: make(map[uuid.UUID]T)}
}

// Create 填充缺省的 ID/CreatedAt 并存入实体。
func (s *CrudStore[T, PT]) Create(ctx context.Context, entity *T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	PT(entity).EnsureDefaults(time.Now().UTC())
	s.items[PT(entity).PrimaryID()] = *entity
	return nil
}

// Get 根据 ID 查找实体，不存在时返回 repository.ErrNotFound。
func (s *CrudStore[T, PT]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &item, nil
}

// GetAll 返回全部实体。map 迭代顺序本身即不确定，与契约一致。
func (s *CrudStore[T, PT]) GetAll(ctx context.Context) ([]*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]*T, 0, len(s.items))
	for _, item := range s.items {
		item := item
		items = append(items, &item)
	}
	return items, nil
}

// Update 只应用 fields 中出现的字段。
func (s *CrudStore[T, PT]) Update(ctx context.Context, id uuid.UUID, fields map[string]any) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	PT(&item).ApplyFields(fields)
	s.items[id] = item
	return &item, nil
}

// Delete 删除实体并返回受影响的条数 (0 或 1)。
func (s *CrudStore[T, PT]) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return 0, nil
	}
	delete(s.items, id)
	return 1, nil
}

// UserStore 是 UserRepository 的内存实现。
type UserStore struct {
	*CrudStore[domain.User, *domain.User]
}

// NewUserStore 创建空的内存用户仓库。
func NewUserStore() *UserStore {
	return &UserStore{CrudStore: NewCrudStore[domain.User, *domain.User]()}
}

// FindByName 线性扫描查找用户名匹配的用户。
func (s *UserStore) FindByName(ctx context.Context, name string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.items {
		if user.Name == name {
			user := user
			return &user, nil
		}
	}
	return nil, repository.ErrNotFound
}

// TodoStore 是 TodoRepository 的内存实现。
// 属主关联查询通过引用同一个 UserStore 解析用户名。
type TodoStore struct {
	*CrudStore[domain.Todo, *domain.Todo]
	users *UserStore
}

// NewTodoStore 创建空的内存 Todo 仓库。
func NewTodoStore(users *UserStore) *TodoStore {
	if users == nil {
		panic("UserStore cannot be nil for TodoStore")
	}
	return &TodoStore{CrudStore: NewCrudStore[domain.Todo, *domain.Todo](), users: users}
}

// FindByOwnerName 返回属于指定用户名的全部 Todo。
func (s *TodoStore) FindByOwnerName(ctx context.Context, name string) ([]*domain.Todo, error) {
	owner, err := s.users.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var todos []*domain.Todo
	for _, todo := range s.items {
		if todo.UserID == owner.ID {
			todo := todo
			todos = append(todos, &todo)
		}
	}
	return todos, nil
}

// UnitOfWork 是 repository.UnitOfWork 的内存实现。
// 内存仓库没有事务语义，直接执行闭包即可。
type UnitOfWork struct{}

// Run 直接执行 fn。
func (UnitOfWork) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
