package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"todoapi/internal/core/domain"
	"todoapi/internal/core/model/request"
	"todoapi/internal/core/port"
	tel "todoapi/internal/core/telemetry"
	"todoapi/pkg/db/cursor"
)

type TaskService struct {
	repo      port.TaskRepository
	cursors   *cursor.Codec
	telemetry port.Telemetry
}

func NewTaskService(repo port.TaskRepository, cursors *cursor.Codec, telemetry port.Telemetry) *TaskService {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &TaskService{
		repo:      repo,
		cursors:   cursors,
		telemetry: telemetry,
	}
}

// GetTasks lists the user's tasks in insertion order. With limit > 0 the
// result is a page and nextCursor is set when more tasks follow.
func (ts *TaskService) GetTasks(ctx context.Context, userId int, limit int, cursorToken string) (tasks []domain.Task, nextCursor string, err error) {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, "task", "list", userId, map[string]interface{}{
		"pagination.limit": limit,
	})
	defer span.End()

	startTime := time.Now()

	defer func() {
		ts.telemetry.RecordServiceOperation(ctx, "task", "list", userId, time.Since(startTime), err)
	}()

	afterId := 0

	if cursorToken != "" {
		afterId, err = ts.cursors.Decode(cursorToken)

		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", domain.ErrInvalidCursor, err)
		}
	}

	tasks, hasNext, err := ts.repo.GetAllByUser(ctx, userId, afterId, limit)

	if err != nil {
		return nil, "", err
	}

	if hasNext && len(tasks) > 0 {
		nextCursor = ts.cursors.Encode(tasks[len(tasks)-1].ID)
	}

	return tasks, nextCursor, nil
}

func (ts *TaskService) GetTaskByID(ctx context.Context, userId int, taskId int) (task domain.Task, err error) {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, "task", "get", userId, map[string]interface{}{
		"task.id": taskId,
	})
	defer span.End()

	startTime := time.Now()

	defer func() {
		ts.telemetry.RecordServiceOperation(ctx, "task", "get", userId, time.Since(startTime), err)
	}()

	return ts.repo.GetByID(ctx, userId, taskId)
}

// CreateTask always assigns the task to userId.
func (ts *TaskService) CreateTask(ctx context.Context, userId int, req *request.CreateTaskRequest) (task domain.Task, err error) {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, "task", "create", userId, nil)
	defer span.End()

	startTime := time.Now()

	defer func() {
		ts.telemetry.RecordServiceOperation(ctx, "task", "create", userId, time.Since(startTime), err)
	}()

	now := time.Now().UTC()

	task, err = ts.repo.Create(ctx, domain.Task{
		Title:       req.Title,
		Description: req.Description,
		UserID:      userId,
		CreatedAt:   now,
		UpdatedAt:   now,
	})

	if err != nil {
		return domain.Task{}, err
	}

	ts.telemetry.RecordBusinessEvent(ctx, "task.created", "task", strconv.Itoa(task.ID), userId, nil)

	return task, nil
}

// UpdateTaskByID replaces the title. The description is replaced only when
// the request carries one.
func (ts *TaskService) UpdateTaskByID(ctx context.Context, userId int, taskId int, req *request.UpdateTaskRequest) (task domain.Task, err error) {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, "task", "update", userId, map[string]interface{}{
		"task.id": taskId,
	})
	defer span.End()

	startTime := time.Now()

	defer func() {
		ts.telemetry.RecordServiceOperation(ctx, "task", "update", userId, time.Since(startTime), err)
	}()

	existing, err := ts.repo.GetByID(ctx, userId, taskId)

	if err != nil {
		return domain.Task{}, err
	}

	existing.Title = req.Title

	if req.Description != nil {
		existing.Description = req.Description
	}

	existing.UpdatedAt = time.Now().UTC()

	task, err = ts.repo.UpdateByID(ctx, userId, existing)

	if err != nil {
		return domain.Task{}, err
	}

	ts.telemetry.RecordBusinessEvent(ctx, "task.updated", "task", strconv.Itoa(task.ID), userId, nil)

	return task, nil
}

func (ts *TaskService) DeleteTaskByID(ctx context.Context, userId int, taskId int) (err error) {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, "task", "delete", userId, map[string]interface{}{
		"task.id": taskId,
	})
	defer span.End()

	startTime := time.Now()

	defer func() {
		ts.telemetry.RecordServiceOperation(ctx, "task", "delete", userId, time.Since(startTime), err)
	}()

	if err = ts.repo.DeleteByID(ctx, userId, taskId); err != nil {
		return err
	}

	ts.telemetry.RecordBusinessEvent(ctx, "task.deleted", "task", strconv.Itoa(taskId), userId, nil)

	return nil
}
