package http

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"

	middleware "todo-list.com/todo-list/internal/http/middlewares"
)

func Register(e *echo.Echo, h *Handler, logger *log.Logger, rateLimitPerMinute int) {
	e.Use(middleware.RequestLogger(logger))
	e.Use(middleware.RateLimiter(rateLimitPerMinute, time.Minute))

	e.GET("/tasks", h.ListTasks)
	e.POST("/tasks", h.CreateTask)
	e.GET("/tasks/:id", h.GetTask)
	e.PUT("/tasks/:id", h.UpdateTask)
	e.POST("/tasks/:id/toggle", h.ToggleTask)
	e.DELETE("/tasks/:id", h.DeleteTask)
}
