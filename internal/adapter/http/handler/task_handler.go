package handler

import (
	"net/http"
	"strconv"

	. "todoapi/internal/adapter/http/helper"
	"todoapi/internal/adapter/http/middleware"
	. "todoapi/internal/adapter/http/validation"
	"todoapi/internal/core/model/request"
	"todoapi/internal/core/model/response"
	"todoapi/internal/core/port"
	"todoapi/pkg/config"
	. "todoapi/pkg/tracing"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const NextCursorHeader = "X-Next-Cursor"

type TaskHandler struct {
	svc    port.TaskService
	Logger *config.LokiLogger
}

func NewTaskHandler(svc port.TaskService, logger *config.LokiLogger) *TaskHandler {
	return &TaskHandler{
		svc:    svc,
		Logger: logger,
	}
}

func (t *TaskHandler) GetTasks(c *gin.Context) {
	ctx, span := Tracer().Start(c.Request.Context(), "handler.task.GetTasks")
	defer span.End()

	user, _ := middleware.CurrentUser(c)

	limit := 0

	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)

		if err != nil || parsed <= 0 {
			SendBadRequestError(c, "limit", "limit must be a positive integer")
			return
		}

		limit = parsed
	}

	cursor := c.Query("cursor")

	span.SetAttributes(
		attribute.Int("user.id", user.ID),
		attribute.Int("task.limit", limit),
		attribute.Bool("task.has_cursor", cursor != ""),
	)

	tasks, next, err := t.svc.GetTasks(ctx, user.ID, limit, cursor)

	if err != nil {
		AddSpanError(span, err)

		if SendServiceError(c, err) {
			t.Logger.ErrorWithTrace(ctx, "Failed to get tasks",
				zap.Error(err),
				zap.Int("user_id", user.ID))
		}
		return
	}

	if next != "" {
		c.Header(NextCursorHeader, next)
	}

	c.JSON(http.StatusOK, response.NewTaskListResponse(tasks))
}

func (t *TaskHandler) GetTaskByID(c *gin.Context) {
	ctx := c.Request.Context()
	user, _ := middleware.CurrentUser(c)

	taskID, ok := PositiveIntParam(c, "id")

	if !ok {
		SendBadRequestError(c, "id", "id must be a positive integer")
		return
	}

	task, err := t.svc.GetTaskByID(ctx, user.ID, taskID)

	if err != nil {
		t.fail(c, "Failed to get task", err, user.ID)
		return
	}

	c.JSON(http.StatusOK, response.NewTaskResponse(task))
}

func (t *TaskHandler) CreateTask(c *gin.Context) {
	ctx := c.Request.Context()
	user, _ := middleware.CurrentUser(c)

	params, err := BindJSON[request.CreateTaskRequest](c)

	if err != nil {
		SendBadRequestError(c, "request", "Invalid request parameters")
		return
	}

	if err := Validator.Struct(params); err != nil {
		SendValidationError(c, err)
		return
	}

	task, err := t.svc.CreateTask(ctx, user.ID, &params)

	if err != nil {
		t.fail(c, "Failed to create task", err, user.ID)
		return
	}

	c.JSON(http.StatusCreated, response.NewTaskResponse(task))
}

func (t *TaskHandler) UpdateTaskByID(c *gin.Context) {
	ctx := c.Request.Context()
	user, _ := middleware.CurrentUser(c)

	taskID, ok := PositiveIntParam(c, "id")

	if !ok {
		SendBadRequestError(c, "id", "id must be a positive integer")
		return
	}

	params, err := BindJSON[request.UpdateTaskRequest](c)

	if err != nil {
		SendBadRequestError(c, "request", "Invalid request parameters")
		return
	}

	if err := Validator.Struct(params); err != nil {
		SendValidationError(c, err)
		return
	}

	task, err := t.svc.UpdateTaskByID(ctx, user.ID, taskID, &params)

	if err != nil {
		t.fail(c, "Failed to update task", err, user.ID)
		return
	}

	c.JSON(http.StatusOK, response.NewTaskResponse(task))
}

func (t *TaskHandler) DeleteTaskByID(c *gin.Context) {
	ctx := c.Request.Context()
	user, _ := middleware.CurrentUser(c)

	taskID, ok := PositiveIntParam(c, "id")

	if !ok {
		SendBadRequestError(c, "id", "id must be a positive integer")
		return
	}

	if err := t.svc.DeleteTaskByID(ctx, user.ID, taskID); err != nil {
		t.fail(c, "Failed to delete task", err, user.ID)
		return
	}

	c.Status(http.StatusNoContent)
}

func (t *TaskHandler) fail(c *gin.Context, msg string, err error, userID int) {
	if SendServiceError(c, err) {
		t.Logger.ErrorWithTrace(c.Request.Context(), msg,
			zap.Error(err),
			zap.Int("user_id", userID),
			zap.String("task_id", c.Param("id")))
	}
}
