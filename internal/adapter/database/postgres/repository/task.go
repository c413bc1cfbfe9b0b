package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	database "todoapi/internal/adapter/database/postgres"
	"todoapi/internal/core/domain"
	"todoapi/internal/core/port"
	tel "todoapi/internal/core/telemetry"
)

const taskReturning = "RETURNING id, title, description, user_id, created_at, updated_at"

var taskColumns = []string{"id", "title", "description", "user_id", "created_at", "updated_at"}

type TaskRepository struct {
	db        *database.DB
	telemetry port.Telemetry
}

func NewTaskRepository(db *database.DB, telemetry port.Telemetry) port.TaskRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &TaskRepository{db: db, telemetry: telemetry}
}

func scanTask(row pgx.Row) (domain.Task, error) {
	var data domain.Task

	err := row.Scan(
		&data.ID,
		&data.Title,
		&data.Description,
		&data.UserID,
		&data.CreatedAt,
		&data.UpdatedAt,
	)

	if err != nil {
		return domain.Task{}, notFound(err)
	}

	return data, nil
}

func (tr *TaskRepository) GetAllByUser(ctx context.Context, userId int, afterId int, limit int) (tasks []domain.Task, hasNext bool, err error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "GetAllByUser", "task", map[string]interface{}{
		"db.system":        "postgresql",
		"db.table":         "tasks",
		"user.id":          userId,
		"pagination.after": afterId,
		"pagination.limit": limit,
	})
	defer span.End()

	startTime := time.Now()

	defer func() {
		tr.telemetry.RecordRepositoryOperation(ctx, "GetAllByUser", "task", time.Since(startTime), err)
	}()

	query := tr.db.QueryBuilder.Select(taskColumns...).
		From("tasks").
		Where(sq.Eq{"user_id": userId}).
		OrderBy("id ASC")

	if afterId > 0 {
		query = query.Where(sq.Gt{"id": afterId})
	}

	if limit > 0 {
		query = query.Limit(uint64(limit + 1))
	}

	sql, args, err := query.ToSql()

	if err != nil {
		return nil, false, err
	}

	rows, err := tr.db.Query(ctx, sql, args...)

	if err != nil {
		return nil, false, err
	}

	defer rows.Close()

	tasks = []domain.Task{}

	for rows.Next() {
		task, err := scanTask(rows)

		if err != nil {
			return nil, false, err
		}

		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, false, err
	}

	if limit > 0 && len(tasks) > limit {
		tasks = tasks[:limit]
		hasNext = true
	}

	span.SetAttributes(map[string]interface{}{
		"db.rows_returned": len(tasks),
		"db.has_next":      hasNext,
	})

	return tasks, hasNext, nil
}

func (tr *TaskRepository) GetByID(ctx context.Context, userId int, taskId int) (task domain.Task, err error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "GetByID", "task", map[string]interface{}{
		"db.system": "postgresql",
		"db.table":  "tasks",
		"user.id":   userId,
		"task.id":   taskId,
	})
	defer span.End()

	startTime := time.Now()

	defer func() {
		tr.telemetry.RecordRepositoryOperation(ctx, "GetByID", "task", time.Since(startTime), observed(err))
	}()

	sql, args, err := tr.db.QueryBuilder.Select(taskColumns...).
		From("tasks").
		Where(sq.Eq{"id": taskId, "user_id": userId}).
		Limit(1).
		ToSql()

	if err != nil {
		return domain.Task{}, err
	}

	return scanTask(tr.db.QueryRow(ctx, sql, args...))
}

func (tr *TaskRepository) Create(ctx context.Context, task domain.Task) (saved domain.Task, err error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "Create", "task", map[string]interface{}{
		"db.system":    "postgresql",
		"db.table":     "tasks",
		"db.operation": "INSERT",
		"user.id":      task.UserID,
	})
	defer span.End()

	startTime := time.Now()

	defer func() {
		tr.telemetry.RecordRepositoryOperation(ctx, "Create", "task", time.Since(startTime), err)
	}()

	now := time.Now().UTC()

	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}

	if task.UpdatedAt.IsZero() {
		task.UpdatedAt = now
	}

	sql, args, err := tr.db.QueryBuilder.Insert("tasks").
		Columns("title", "description", "user_id", "created_at", "updated_at").
		Values(task.Title, task.Description, task.UserID, task.CreatedAt, task.UpdatedAt).
		Suffix(taskReturning).
		ToSql()

	if err != nil {
		return domain.Task{}, err
	}

	return scanTask(tr.db.QueryRow(ctx, sql, args...))
}

func (tr *TaskRepository) UpdateByID(ctx context.Context, userId int, task domain.Task) (saved domain.Task, err error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "UpdateByID", "task", map[string]interface{}{
		"db.system":    "postgresql",
		"db.table":     "tasks",
		"db.operation": "UPDATE",
		"user.id":      userId,
		"task.id":      task.ID,
	})
	defer span.End()

	startTime := time.Now()

	defer func() {
		tr.telemetry.RecordRepositoryOperation(ctx, "UpdateByID", "task", time.Since(startTime), observed(err))
	}()

	if task.UpdatedAt.IsZero() {
		task.UpdatedAt = time.Now().UTC()
	}

	sql, args, err := tr.db.QueryBuilder.Update("tasks").
		SetMap(task.ToMap()).
		Where(sq.Eq{"id": task.ID, "user_id": userId}).
		Suffix(taskReturning).
		ToSql()

	if err != nil {
		return domain.Task{}, err
	}

	return scanTask(tr.db.QueryRow(ctx, sql, args...))
}

func (tr *TaskRepository) DeleteByID(ctx context.Context, userId int, taskId int) (err error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "DeleteByID", "task", map[string]interface{}{
		"db.system":    "postgresql",
		"db.table":     "tasks",
		"db.operation": "DELETE",
		"user.id":      userId,
		"task.id":      taskId,
	})
	defer span.End()

	startTime := time.Now()

	defer func() {
		tr.telemetry.RecordRepositoryOperation(ctx, "DeleteByID", "task", time.Since(startTime), observed(err))
	}()

	sql, args, err := tr.db.QueryBuilder.Delete("tasks").
		Where(sq.Eq{"id": taskId, "user_id": userId}).
		ToSql()

	if err != nil {
		return err
	}

	tag, err := tr.db.Exec(ctx, sql, args...)

	if err != nil {
		return err
	}

	return requireAffected(tag)
}
