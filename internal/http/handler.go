package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"

	dto "todo-list.com/todo-list/internal/data_models"
	apperrors "todo-list.com/todo-list/internal/errors"
	"todo-list.com/todo-list/internal/http/validators"
	model "todo-list.com/todo-list/internal/models"
	"todo-list.com/todo-list/internal/services"
	"todo-list.com/todo-list/internal/storage"
)

// Handler serves the task API. Every request hydrates its own TaskList from
// the store, the way each page load did in the browser.
type Handler struct {
	store  storage.Store
	logger *log.Logger
	opts   []services.Option
}

func NewHandler(store storage.Store, logger *log.Logger, opts ...services.Option) *Handler {
	return &Handler{
		store:  store,
		logger: logger,
		opts:   append([]services.Option{services.WithLogger(logger)}, opts...),
	}
}

func (h *Handler) openList(ctx context.Context) (*services.TaskList, error) {
	list, err := services.NewTaskList(ctx, h.store, h.opts...)
	if err != nil {
		var readErr *apperrors.StorageReadError
		if errors.As(err, &readErr) {
			return list, nil
		}
		return nil, err
	}
	return list, nil
}

func (h *Handler) ListTasks(c echo.Context) error {
	var q dto.ListTasksQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}

	list, err := h.openList(c.Request().Context())
	if err != nil {
		return h.fail(err, "failed to list tasks")
	}

	filtered := list.GetFilteredTasks(services.Filter(q.Filter))
	tasks := list.GetSortedTasks(filtered, services.SortBy(q.Sort))

	return c.JSON(http.StatusOK, dto.TaskListResponse{
		Count: len(tasks),
		Tasks: tasks,
	})
}

func (h *Handler) CreateTask(c echo.Context) error {
	var req dto.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return h.fail(apperrors.ErrInvalidJSON, "")
	}
	if err := validators.ValidateTaskRequest(&req); err != nil {
		return h.fail(err, "")
	}

	ctx := c.Request().Context()
	list, err := h.openList(ctx)
	if err != nil {
		return h.fail(err, "failed to create task")
	}

	task := model.NewTask(req.Title, req.Description)
	if err := list.AddTask(ctx, task); err != nil {
		return h.fail(err, "failed to create task")
	}

	return c.JSON(http.StatusCreated, task)
}

func (h *Handler) GetTask(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return h.fail(apperrors.ErrTaskIDRequired, "")
	}

	list, err := h.openList(c.Request().Context())
	if err != nil {
		return h.fail(err, "failed to load task")
	}

	task, ok := list.GetTaskByID(id)
	if !ok {
		return h.fail(apperrors.ErrTaskNotFound, "")
	}

	return c.JSON(http.StatusOK, task)
}

func (h *Handler) UpdateTask(c echo.Context) error {
	var req dto.UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return h.fail(apperrors.ErrInvalidJSON, "")
	}
	if req.ID == "" {
		return h.fail(apperrors.ErrTaskIDRequired, "")
	}

	ctx := c.Request().Context()
	list, err := h.openList(ctx)
	if err != nil {
		return h.fail(err, "failed to update task")
	}

	if _, ok := list.GetTaskByID(req.ID); !ok {
		return h.fail(apperrors.ErrTaskNotFound, "")
	}
	if err := validators.ValidateTaskRequest(&req.TaskRequestData); err != nil {
		return h.fail(err, "")
	}

	if err := list.UpdateTask(ctx, req.ID, req.Title, req.Description); err != nil {
		return h.fail(err, "failed to update task")
	}

	task, _ := list.GetTaskByID(req.ID)
	return c.JSON(http.StatusOK, task)
}

// ToggleTask flips completion. Unknown ids are accepted so retries stay idempotent.
func (h *Handler) ToggleTask(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return h.fail(apperrors.ErrTaskIDRequired, "")
	}

	ctx := c.Request().Context()
	list, err := h.openList(ctx)
	if err != nil {
		return h.fail(err, "failed to toggle task")
	}

	if err := list.ToggleTaskCompleted(ctx, id); err != nil {
		return h.fail(err, "failed to toggle task")
	}

	task, ok := list.GetTaskByID(id)
	if !ok {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, task)
}

func (h *Handler) DeleteTask(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return h.fail(apperrors.ErrTaskIDRequired, "")
	}

	ctx := c.Request().Context()
	list, err := h.openList(ctx)
	if err != nil {
		return h.fail(err, "failed to delete task")
	}

	if err := list.RemoveTask(ctx, id); err != nil {
		return h.fail(err, "failed to delete task")
	}

	return c.NoContent(http.StatusNoContent)
}

// fail maps err to an HTTP error. Exceptions keep their own message; anything
// else is logged and reported with fallback.
func (h *Handler) fail(err error, fallback string) error {
	var appErr *apperrors.Exception
	if errors.As(err, &appErr) {
		return echo.NewHTTPError(appErr.StatusCode, appErr.Message)
	}

	h.logger.Error(fallback, "err", err)
	return echo.NewHTTPError(apperrors.StatusCode(err), fallback)
}
