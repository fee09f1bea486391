package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"todo-sentiment/internal/domain"
	"todo-sentiment/internal/service"
	"todo-sentiment/internal/storage"
)

// jsonTime accepts RFC 3339 timestamps as well as zone-less date-times and
// plain dates, which are read as UTC.
type jsonTime struct {
	time.Time
}

var jsonTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (t *jsonTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("deadline must be a string: %w", err)
	}
	raw = strings.TrimSpace(raw)
	for _, layout := range jsonTimeLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("unrecognised time %q", raw)
}

func (t *jsonTime) ptr() *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	v := t.Time
	return &v
}

type todoFilterRequest struct {
	SortOrder string `json:"sort_order"`
	Category  string `json:"category"`
	Status    string `json:"status"`
	Sentiment string `json:"sentiment"`
}

type createTodoRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description" binding:"required"`
	Deadline    *jsonTime `json:"deadline"`
	Category    string    `json:"category"`
	Status      string    `json:"status" binding:"required,oneof=pending completed"`
	Color       string    `json:"color"`
}

// updateTodoRequest only carries the fields the client sent; sentiment is
// never accepted from the client.
type updateTodoRequest struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Deadline    *jsonTime `json:"deadline"`
	Category    *string   `json:"category"`
	Status      *string   `json:"status"`
	Color       *string   `json:"color"`
}

func (r updateTodoRequest) patch() domain.TodoPatch {
	p := domain.TodoPatch{
		Name:        r.Name,
		Description: r.Description,
		Category:    r.Category,
		Color:       r.Color,
		Deadline:    r.Deadline.ptr(),
	}
	if r.Status != nil {
		s := domain.TodoStatus(*r.Status)
		p.Status = &s
	}
	return p
}

type markAsDoneRequest struct {
	IDs []int64 `json:"ids" binding:"required"`
}

type TodoResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	UserID      int64   `json:"userId"`
	Description string  `json:"description"`
	Deadline    *string `json:"deadline"`
	Category    string  `json:"category"`
	Status      string  `json:"status"`
	Color       string  `json:"color"`
	Sentiment   string  `json:"sentiment"`
	Confidence  float64 `json:"confidence"`
	AddedOn     *string `json:"added_on"`
	UpdatedOn   *string `json:"updated_on"`
}

type ExportResponse struct {
	Key      string `json:"key"`
	Location string `json:"location"`
	URL      string `json:"url"`
	Count    int    `json:"count"`
}

type StorageObjectResponse struct {
	Key          string  `json:"key"`
	Size         int64   `json:"size"`
	LastModified *string `json:"last_modified,omitempty"`
}

func todoToResponse(todo domain.Todo) TodoResponse {
	return TodoResponse{
		ID:          todo.ID,
		Name:        todo.Name,
		UserID:      todo.UserID,
		Description: todo.Description,
		Deadline:    formatTimePtr(todo.Deadline),
		Category:    todo.Category,
		Status:      string(todo.Status),
		Color:       todo.Color,
		Sentiment:   string(todo.Sentiment),
		Confidence:  todo.Confidence,
		AddedOn:     formatTimePtr(todo.AddedOn),
		UpdatedOn:   formatTimePtr(todo.UpdatedOn),
	}
}

func todosToResponse(todos []domain.Todo) []TodoResponse {
	resp := make([]TodoResponse, len(todos))
	for i := range todos {
		resp[i] = todoToResponse(todos[i])
	}
	return resp
}

func objectToResponse(obj storage.ObjectInfo) StorageObjectResponse {
	resp := StorageObjectResponse{
		Key:  obj.Key,
		Size: obj.Size,
	}
	if obj.LastModified != nil && !obj.LastModified.IsZero() {
		v := formatTime(*obj.LastModified)
		resp.LastModified = &v
	}
	return resp
}

func (h *Handler) listTodos(c *gin.Context) {
	var req todoFilterRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.badRequest(c, err)
			return
		}
	}

	todos, err := h.todos.List(c.Request.Context(), mustIdentity(c), domain.TodoFilter{
		Category:  req.Category,
		Status:    req.Status,
		Sentiment: req.Sentiment,
		SortOrder: domain.SortOrder(req.SortOrder),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, todosToResponse(todos))
}

func (h *Handler) createTodo(c *gin.Context) {
	var req createTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	all, err := h.todos.Create(c.Request.Context(), mustIdentity(c), service.CreateTodoInput{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Color:       req.Color,
		Status:      domain.TodoStatus(req.Status),
		Deadline:    req.Deadline.ptr(),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, todosToResponse(all))
}

func (h *Handler) updateTodo(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req updateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	if _, err := h.todos.Update(c.Request.Context(), mustIdentity(c), id, req.patch()); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, "successfully updated the todo data")
}

func (h *Handler) deleteTodo(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.todos.Delete(c.Request.Context(), mustIdentity(c), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, "Successfully deleted todo")
}

func (h *Handler) deleteAllTodos(c *gin.Context) {
	n, err := h.todos.DeleteAll(c.Request.Context(), mustIdentity(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.logger.WithField("deleted", n).Info("flushed all todos")
	c.JSON(http.StatusAccepted, "Successfully flushed all the todos")
}

func (h *Handler) markAsDone(c *gin.Context) {
	var req markAsDoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	ids, err := h.todos.MarkAsDone(c.Request.Context(), mustIdentity(c), req.IDs)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Tasks with IDs %s marked as completed.", formatIDs(ids)),
	})
}

func (h *Handler) exportTodos(c *gin.Context) {
	exp, err := h.exports.Export(c.Request.Context(), mustIdentity(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, ExportResponse{
		Key:      exp.Key,
		Location: exp.Location,
		URL:      exp.URL,
		Count:    exp.Count,
	})
}

func (h *Handler) listExports(c *gin.Context) {
	objects, err := h.exports.List(c.Request.Context(), mustIdentity(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := make([]StorageObjectResponse, len(objects))
	for i := range objects {
		resp[i] = objectToResponse(objects[i])
	}
	c.JSON(http.StatusOK, resp)
}

// formatIDs renders ids as "[1, 2, 3]".
func formatIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
