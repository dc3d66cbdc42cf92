package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andocmdo/eink-display-control-panel/dashboard"
	"github.com/andocmdo/eink-display-control-panel/models"
)

// renderTodos answers with the todo list fragment
func renderTodos(c *gin.Context, todos []models.TodoItem) {
	c.HTML(http.StatusOK, "todos", gin.H{"Todos": todos})
}

// ListTodos handles GET /todos
func (h *Handlers) ListTodos(c *gin.Context) {
	todos, err := h.server.Dashboard().ListTodos(c.Request.Context())
	if err != nil {
		respondStorageError(c, err, "Failed to load todos")
		return
	}
	renderTodos(c, todos)
}

// AddTodo handles POST /todos/add
func (h *Handlers) AddTodo(c *gin.Context) {
	todos, err := h.server.Dashboard().AddTodo(c.Request.Context())
	if err != nil {
		respondStorageError(c, err, "Failed to add todo")
		return
	}
	renderTodos(c, todos)
}

// RemoveTodo handles DELETE /todos/:id/remove
func (h *Handlers) RemoveTodo(c *gin.Context) {
	todos, err := h.server.Dashboard().RemoveTodo(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondStorageError(c, err, "Failed to remove todo")
		return
	}
	renderTodos(c, todos)
}

// UpdateTodo handles POST /todos/:id/update (form field "text")
func (h *Handlers) UpdateTodo(c *gin.Context) {
	if err := h.server.Dashboard().UpdateTodoText(c.Request.Context(), c.Param("id"), c.PostForm("text")); err != nil {
		respondStorageError(c, err, "Failed to update todo")
		return
	}
	c.Status(http.StatusOK)
}

// MoveTodo handles POST /todos/:id/move/:direction
func (h *Handlers) MoveTodo(c *gin.Context) {
	dir, err := dashboard.ParseDirection(c.Param("direction"))
	if err != nil {
		RespondBadRequest(c, "Direction must be up or down")
		return
	}

	todos, err := h.server.Dashboard().MoveTodo(c.Request.Context(), c.Param("id"), dir)
	if err != nil {
		respondStorageError(c, err, "Failed to move todo")
		return
	}
	renderTodos(c, todos)
}
