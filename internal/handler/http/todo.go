package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/noteable-io/minor-illusion/internal/dto"
	"github.com/noteable-io/minor-illusion/internal/middleware"
	"github.com/noteable-io/minor-illusion/internal/service"
)

// TodoHandler 封装了 Todo CRUD 的 HTTP 处理逻辑。
// 所有路由都挂在认证门之后，handler 总能取到当前用户。
type TodoHandler struct {
	todoService *service.TodoService
}

// NewTodoHandler 创建 TodoHandler 实例。
func NewTodoHandler(todoService *service.TodoService) *TodoHandler {
	if todoService == nil {
		panic("TodoService cannot be nil for TodoHandler")
	}
	return &TodoHandler{todoService: todoService}
}

// Create 处理 POST /todo/。缺失必填字段返回 422。
func (h *TodoHandler) Create(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		Detail(c, http.StatusUnauthorized, "Could not validate credentials")
		return
	}

	var req dto.CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.CreateTodo: Invalid request body")
		Detail(c, http.StatusUnprocessableEntity, "title and content are required")
		return
	}

	todo, err := h.todoService.Create(c.Request.Context(), user, req.Title, req.Content)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTodoOut(todo))
}

// List 处理 GET /todo/。
func (h *TodoHandler) List(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		Detail(c, http.StatusUnauthorized, "Could not validate credentials")
		return
	}

	todos, err := h.todoService.List(c.Request.Context(), user)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTodoList(todos))
}

// Get 处理 GET /todo/:id。
func (h *TodoHandler) Get(c *gin.Context) {
	id, ok := todoID(c)
	if !ok {
		return
	}

	todo, err := h.todoService.Get(c.Request.Context(), id)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTodoOut(todo))
}

// Update 处理 PUT /todo/:id，只覆盖请求体中出现的字段。
func (h *TodoHandler) Update(c *gin.Context) {
	id, ok := todoID(c)
	if !ok {
		return
	}

	var req dto.UpdateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.UpdateTodo: Invalid request body")
		Detail(c, http.StatusUnprocessableEntity, "invalid request body")
		return
	}

	todo, err := h.todoService.Update(c.Request.Context(), id, req.Fields())
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTodoOut(todo))
}

// Delete 处理 DELETE /todo/:id，成功返回空对象。
func (h *TodoHandler) Delete(c *gin.Context) {
	id, ok := todoID(c)
	if !ok {
		return
	}

	if err := h.todoService.Delete(c.Request.Context(), id); err != nil {
		HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// todoID 解析路径参数中的 UUID；格式非法时直接回 422 并终止。
func todoID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		logrus.WithError(err).Warnf("Invalid todo id: %s", c.Param("id"))
		Detail(c, http.StatusUnprocessableEntity, "invalid todo id")
		return uuid.Nil, false
	}
	return id, true
}
