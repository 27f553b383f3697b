package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noteable-io/minor-illusion/internal/domain"
	"github.com/noteable-io/minor-illusion/internal/infra/persistence/memory"
	"github.com/noteable-io/minor-illusion/internal/repository"
)

// 每个测试构造全新的 store，隔离靠实例生命周期保证。

func TestCrudStore_CreateThenGet(t *testing.T) {
	// Arrange
	users := memory.NewUserStore()
	todos := memory.NewTodoStore(users)
	ctx := context.Background()

	todo := &domain.Todo{Title: "t1", Content: "c1", UserID: uuid.New()}

	// Act
	require.NoError(t, todos.Create(ctx, todo))
	got, err := todos.Get(ctx, todo.ID)

	// Assert: 创建后按 ID 读回，所有字段一致
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, todo.ID, "创建时应填充 ID")
	assert.False(t, todo.CreatedAt.IsZero(), "创建时应填充 CreatedAt")
	assert.Equal(t, *todo, *got)
}

func TestCrudStore_CreatePreservesProvidedID(t *testing.T) {
	// Arrange: 已有 ID 和 CreatedAt 的实体不会被覆盖
	users := memory.NewUserStore()
	ctx := context.Background()

	user := &domain.User{Name: "alice", Password: "pw1"}
	id := uuid.New()
	user.ID = id

	// Act
	require.NoError(t, users.Create(ctx, user))

	// Assert
	assert.Equal(t, id, user.ID)
}

func TestCrudStore_GetMissingReturnsNotFound(t *testing.T) {
	users := memory.NewUserStore()

	got, err := users.Get(context.Background(), uuid.New())

	assert.Nil(t, got)
	assert.True(t, errors.Is(err, repository.ErrNotFound))
}

func TestCrudStore_DeleteIsIdempotentInEffect(t *testing.T) {
	// Arrange
	users := memory.NewUserStore()
	todos := memory.NewTodoStore(users)
	ctx := context.Background()

	todo := &domain.Todo{Title: "t1", Content: "c1"}
	require.NoError(t, todos.Create(ctx, todo))

	// Act & Assert: 第一次删除计数 1，第二次计数 0，之后 Get 返回哨兵
	count, err := todos.Delete(ctx, todo.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = todos.Delete(ctx, todo.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count, "删除不存在的 ID 不是错误，返回 0")

	_, err = todos.Get(ctx, todo.ID)
	assert.True(t, errors.Is(err, repository.ErrNotFound))
}

func TestCrudStore_PartialUpdateLeavesOtherFieldsUntouched(t *testing.T) {
	// Arrange
	users := memory.NewUserStore()
	todos := memory.NewTodoStore(users)
	ctx := context.Background()

	todo := &domain.Todo{Title: "old title", Content: "old content"}
	require.NoError(t, todos.Create(ctx, todo))

	// Act: 只提供 title
	updated, err := todos.Update(ctx, todo.ID, map[string]any{"title": "x"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "x", updated.Title)
	assert.Equal(t, "old content", updated.Content, "缺省字段必须保持不变")

	// 再读一次，确认持久化状态一致
	got, err := todos.Get(ctx, todo.ID)
	require.NoError(t, err)
	assert.Equal(t, "x", got.Title)
	assert.Equal(t, "old content", got.Content)
}

func TestCrudStore_UpdateMissingReturnsNotFound(t *testing.T) {
	users := memory.NewUserStore()
	todos := memory.NewTodoStore(users)

	_, err := todos.Update(context.Background(), uuid.New(), map[string]any{"title": "x"})

	assert.True(t, errors.Is(err, repository.ErrNotFound))
}

func TestUserStore_FindByName(t *testing.T) {
	// Arrange
	users := memory.NewUserStore()
	ctx := context.Background()
	require.NoError(t, users.Create(ctx, &domain.User{Name: "alice", Password: "pw1"}))
	require.NoError(t, users.Create(ctx, &domain.User{Name: "bob", Password: "pw2"}))

	// Act
	alice, err := users.FindByName(ctx, "alice")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "alice", alice.Name)

	_, err = users.FindByName(ctx, "carol")
	assert.True(t, errors.Is(err, repository.ErrNotFound))
}

func TestTodoStore_FindByOwnerName(t *testing.T) {
	// Arrange: 两个属主，各自有自己的 Todo
	users := memory.NewUserStore()
	todos := memory.NewTodoStore(users)
	ctx := context.Background()

	alice := &domain.User{Name: "alice", Password: "pw1"}
	bob := &domain.User{Name: "bob", Password: "pw2"}
	require.NoError(t, users.Create(ctx, alice))
	require.NoError(t, users.Create(ctx, bob))

	require.NoError(t, todos.Create(ctx, &domain.Todo{Title: "a1", Content: "x", UserID: alice.ID}))
	require.NoError(t, todos.Create(ctx, &domain.Todo{Title: "a2", Content: "y", UserID: alice.ID}))
	require.NoError(t, todos.Create(ctx, &domain.Todo{Title: "b1", Content: "z", UserID: bob.ID}))

	// Act
	aliceTodos, err := todos.FindByOwnerName(ctx, "alice")

	// Assert: 只包含 alice 的记录，不包含其他属主的
	require.NoError(t, err)
	require.Len(t, aliceTodos, 2)
	for _, todo := range aliceTodos {
		assert.Equal(t, alice.ID, todo.UserID)
	}

	bobTodos, err := todos.FindByOwnerName(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, bobTodos, 1)
	assert.Equal(t, "b1", bobTodos[0].Title)

	// 未知属主返回空列表
	none, err := todos.FindByOwnerName(ctx, "carol")
	require.NoError(t, err)
	assert.Empty(t, none)
}
