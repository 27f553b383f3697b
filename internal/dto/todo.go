package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/noteable-io/minor-illusion/internal/domain"
)

// TodoOut 是 Todo 的对外表示。
type TodoOut struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
}

// NewTodoOut 从领域模型构造响应结构。
func NewTodoOut(todo *domain.Todo) TodoOut {
	return TodoOut{
		ID:        todo.ID,
		CreatedAt: todo.CreatedAt,
		Title:     todo.Title,
		Content:   todo.Content,
	}
}

// NewTodoList 批量转换，保证空列表编码为 [] 而不是 null。
func NewTodoList(todos []*domain.Todo) []TodoOut {
	out := make([]TodoOut, 0, len(todos))
	for _, todo := range todos {
		out = append(out, NewTodoOut(todo))
	}
	return out
}

// CreateTodoRequest 是 POST /todo/ 的请求体，两个字段都必填。
type CreateTodoRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// UpdateTodoRequest 是 PUT /todo/:id 的请求体。
// 指针字段区分 "未提供" 与 "空字符串"，只有提供的字段会被更新。
type UpdateTodoRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// Fields 把提供的字段转成列名映射，供仓库的部分更新使用。
func (r UpdateTodoRequest) Fields() map[string]any {
	fields := make(map[string]any)
	if r.Title != nil {
		fields["title"] = *r.Title
	}
	if r.Content != nil {
		fields["content"] = *r.Content
	}
	return fields
}
