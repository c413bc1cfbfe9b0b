package port

import (
	"context"

	"todoapi/internal/core/domain"
	"todoapi/internal/core/model/request"
)

// TaskRepository scopes every query by owner. A task that exists but belongs
// to someone else is reported as domain.ErrNotFound.
type TaskRepository interface {
	GetAllByUser(ctx context.Context, userId int, afterId int, limit int) ([]domain.Task, bool, error)
	GetByID(ctx context.Context, userId int, taskId int) (domain.Task, error)
	Create(ctx context.Context, task domain.Task) (domain.Task, error)
	UpdateByID(ctx context.Context, userId int, task domain.Task) (domain.Task, error)
	DeleteByID(ctx context.Context, userId int, taskId int) error
}

type TaskService interface {
	GetTasks(ctx context.Context, userId int, limit int, cursor string) ([]domain.Task, string, error)
	GetTaskByID(ctx context.Context, userId int, taskId int) (domain.Task, error)
	CreateTask(ctx context.Context, userId int, req *request.CreateTaskRequest) (domain.Task, error)
	UpdateTaskByID(ctx context.Context, userId int, taskId int, req *request.UpdateTaskRequest) (domain.Task, error)
	DeleteTaskByID(ctx context.Context, userId int, taskId int) error
}
