package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/noteable-io/minor-illusion/internal/domain"
	"github.com/noteable-io/minor-illusion/internal/repository"
)

// TodoService 负责 Todo 的业务逻辑。
// 每个方法对应一次逻辑操作，在自己的工作单元内执行仓库调用。
type TodoService struct {
	todos repository.TodoRepository
	uow   repository.UnitOfWork
	// scopeToOwner 控制列表接口的归属范围：
	// true 时只返回调用者自己的 Todo，false 时返回全部 (见 DESIGN.md 的开放问题决定)。
	scopeToOwner bool
}

// NewTodoService 创建 TodoService 实例。
func NewTodoService(todos repository.TodoRepository, uow repository.UnitOfWork, scopeToOwner bool) *TodoService {
	if todos == nil {
		panic("TodoRepository cannot be nil for TodoService")
	}
	if uow == nil {
		panic("UnitOfWork cannot be nil for TodoService")
	}
	return &TodoService{todos: todos, uow: uow, scopeToOwner: scopeToOwner}
}

// Create 为指定用户创建一条 Todo。
func (s *TodoService) Create(ctx context.Context, owner *domain.User, title, content string) (*domain.Todo, error) {
	todo := &domain.Todo{
		Title:   title,
		Content: content,
		UserID:  owner.ID,
	}
	err := s.uow.Run(ctx, func(ctx context.Context) error {
		return s.todos.Create(ctx, todo)
	})
	if err != nil {
		logrus.WithError(err).WithField("user_id", owner.ID).Error("Failed to create todo")
		return nil, ErrInternalServer
	}
	logrus.WithFields(logrus.Fields{"todo_id": todo.ID, "user_id": owner.ID}).Info("Todo created")
	return todo, nil
}

// Get 根据 ID 返回一条 Todo，不存在时返回 ErrTodoNotFound。
func (s *TodoService) Get(ctx context.Context, id uuid.UUID) (*domain.Todo, error) {
	var todo *domain.Todo
	err := s.uow.Run(ctx, func(ctx context.Context) error {
		var getErr error
		todo, getErr = s.todos.Get(ctx, id)
		return getErr
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTodoNotFound
		}
		logrus.WithError(err).WithField("todo_id", id).Error("Failed to get todo")
		return nil, ErrInternalServer
	}
	return todo, nil
}

// List 返回 Todo 列表。归属范围由 scopeToOwner 配置决定。
func (s *TodoService) List(ctx context.Context, caller *domain.User) ([]*domain.Todo, error) {
	var todos []*domain.Todo
	err := s.uow.Run(ctx, func(ctx context.Context) error {
		var listErr error
		if s.scopeToOwner {
			todos, listErr = s.todos.FindByOwnerName(ctx, caller.Name)
		} else {
			todos, listErr = s.todos.GetAll(ctx)
		}
		return listErr
	})
	if err != nil {
		logrus.WithError(err).WithField("user_id", caller.ID).Error("Failed to list todos")
		return nil, ErrInternalServer
	}
	return todos, nil
}

// Update 对一条 Todo 应用部分字段更新，缺省字段保持不变。
func (s *TodoService) Update(ctx context.Context, id uuid.UUID, fields map[string]any) (*domain.Todo, error) {
	var todo *domain.Todo
	err := s.uow.Run(ctx, func(ctx context.Context) error {
		var updateErr error
		todo, updateErr = s.todos.Update(ctx, id, fields)
		return updateErr
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTodoNotFound
		}
		logrus.WithError(err).WithField("todo_id", id).Error("Failed to update todo")
		return nil, ErrInternalServer
	}
	logrus.WithField("todo_id", id).Info("Todo updated")
	return todo, nil
}

// Delete 删除一条 Todo。ID 不存在时返回 ErrTodoNotFound，
// 由 HTTP 层翻译为 404 (仓库层的删除本身对 no-op 不报错)。
func (s *TodoService) Delete(ctx context.Context, id uuid.UUID) error {
	var rows int64
	err := s.uow.Run(ctx, func(ctx context.Context) error {
		var delErr error
		rows, delErr = s.todos.Delete(ctx, id)
		return delErr
	})
	if err != nil {
		logrus.WithError(err).WithField("todo_id", id).Error("Failed to delete todo")
		return ErrInternalServer
	}
	if rows == 0 {
		return ErrTodoNotFound
	}
	logrus.WithField("todo_id", id).Info("Todo deleted")
	return nil
}
