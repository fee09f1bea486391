package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"todo-sentiment/internal/auth"
	"todo-sentiment/internal/service"
)

// TokenService issues and decodes bearer tokens.
type TokenService interface {
	Issue(userID int64) (string, time.Time, error)
	Decode(token string) (*auth.Claims, error)
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	users   service.UserService
	todos   service.TodoService
	exports service.ExportService
	tokens  TokenService
	logger  *logrus.Logger
}

func NewHandler(users service.UserService, todos service.TodoService, exports service.ExportService, tokens TokenService, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		users:   users,
		todos:   todos,
		exports: exports,
		tokens:  tokens,
		logger:  logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(requestLogger(h.logger), corsMiddleware())

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, "Hello from todo-sentiment")
	})

	guard := h.requireAuth()

	api := router.Group("/api/v1")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})
		handle(api, http.MethodPost, "/login", h.login)
	}

	users := api.Group("/users")
	{
		handle(users, http.MethodGet, "", guard, h.listUsers)
		handle(users, http.MethodPost, "", h.createUser)
		handle(users, http.MethodDelete, "", guard, h.deleteAllUsers)
		handle(users, http.MethodGet, "/:id", guard, h.getUser)
		handle(users, http.MethodPut, "/:id", guard, h.updateUser)
		handle(users, http.MethodDelete, "/:id", guard, h.deleteUser)
	}

	todos := api.Group("/todo", guard)
	{
		handle(todos, http.MethodPost, "/getAllTodos", h.listTodos)
		handle(todos, http.MethodPost, "", h.createTodo)
		handle(todos, http.MethodDelete, "", h.deleteAllTodos)
		handle(todos, http.MethodPost, "/markAsDone", h.markAsDone)
		handle(todos, http.MethodPost, "/export", h.exportTodos)
		handle(todos, http.MethodGet, "/exports", h.listExports)
		handle(todos, http.MethodPut, "/:id", h.updateTodo)
		handle(todos, http.MethodDelete, "/:id", h.deleteTodo)
	}
}

// handle registers a route both with and without a trailing slash.
func handle(r gin.IRoutes, method, path string, handlers ...gin.HandlerFunc) {
	trimmed := strings.TrimSuffix(path, "/")
	r.Handle(method, trimmed, handlers...)
	r.Handle(method, trimmed+"/", handlers...)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		entry := logger.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  status,
			"latency": time.Since(start).String(),
		})
		if who, ok := identityFrom(c); ok {
			entry = entry.WithField("user_id", who.UserID)
		}

		switch {
		case status >= http.StatusInternalServerError:
			entry.Error("request failed")
		case status >= http.StatusBadRequest:
			entry.Warn("request rejected")
		default:
			entry.Info("request served")
		}
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil || t.IsZero() {
		return nil
	}
	v := formatTime(*t)
	return &v
}
