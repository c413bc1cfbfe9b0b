package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"

	"todoapi/internal/adapter/database/sqlite"
	"todoapi/internal/core/domain"
	"todoapi/internal/core/port"
	tel "todoapi/internal/core/telemetry"
)

var taskColumns = []string{"id", "title", "description", "user_id", "created_at", "updated_at"}

type TaskRepository struct {
	db        *sqlite.DB
	telemetry port.Telemetry
}

func NewTaskRepository(db *sqlite.DB, telemetry port.Telemetry) port.TaskRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &TaskRepository{
		db:        db,
		telemetry: telemetry,
	}
}

func scanTask(row rowScanner) (domain.Task, error) {
	var task domain.Task
	var description sql.NullString

	err := row.Scan(&task.ID, &task.Title, &description, &task.UserID, &task.CreatedAt, &task.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return domain.Task{}, domain.ErrNotFound
	}

	if err != nil {
		return domain.Task{}, err
	}

	if description.Valid {
		task.Description = &description.String
	}

	return task, nil
}

// GetAllByUser returns the user's tasks in id order, starting after afterId.
// A limit of zero or less means no limit.
func (tr *TaskRepository) GetAllByUser(ctx context.Context, userId int, afterId int, limit int) (tasks []domain.Task, hasNext bool, err error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "GetAllByUser", "task", map[string]interface{}{
		"db.system":        "sqlite",
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

	stmt, args, err := query.ToSql()

	if err != nil {
		return nil, false, err
	}

	rows, err := tr.db.QueryContext(ctx, stmt, args...)

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
		"db.system": "sqlite",
		"db.table":  "tasks",
		"user.id":   userId,
		"task.id":   taskId,
	})
	defer span.End()

	startTime := time.Now()

	defer func() {
		tr.telemetry.RecordRepositoryOperation(ctx, "GetByID", "task", time.Since(startTime), observed(err))
	}()

	return tr.getByID(ctx, tr.db, userId, taskId)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (tr *TaskRepository) getByID(ctx context.Context, q queryRower, userId int, taskId int) (domain.Task, error) {
	stmt, args, err := tr.db.QueryBuilder.Select(taskColumns...).
		From("tasks").
		Where(sq.Eq{"id": taskId, "user_id": userId}).
		Limit(1).
		ToSql()

	if err != nil {
		return domain.Task{}, err
	}

	return scanTask(q.QueryRowContext(ctx, stmt, args...))
}

func (tr *TaskRepository) Create(ctx context.Context, task domain.Task) (saved domain.Task, err error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "Create", "task", map[string]interface{}{
		"db.system":    "sqlite",
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

	tx, err := tr.db.BeginTx(ctx, nil)

	if err != nil {
		return domain.Task{}, err
	}

	defer tx.Rollback()

	stmt, args, err := tr.db.QueryBuilder.Insert("tasks").
		Columns("title", "description", "user_id", "created_at", "updated_at").
		Values(task.Title, task.Description, task.UserID, task.CreatedAt, task.UpdatedAt).
		ToSql()

	if err != nil {
		return domain.Task{}, err
	}

	result, err := tx.ExecContext(ctx, stmt, args...)

	if err != nil {
		return domain.Task{}, err
	}

	id, err := result.LastInsertId()

	if err != nil {
		return domain.Task{}, err
	}

	saved, err = tr.getByID(ctx, tx, task.UserID, int(id))

	if err != nil {
		return domain.Task{}, err
	}

	span.SetAttributes(map[string]interface{}{"task.id": saved.ID})

	return saved, tx.Commit()
}

// UpdateByID only touches a row owned by userId. A task owned by someone else
// is reported exactly like a missing one.
func (tr *TaskRepository) UpdateByID(ctx context.Context, userId int, task domain.Task) (saved domain.Task, err error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "UpdateByID", "task", map[string]interface{}{
		"db.system":    "sqlite",
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

	tx, err := tr.db.BeginTx(ctx, nil)

	if err != nil {
		return domain.Task{}, err
	}

	defer tx.Rollback()

	stmt, args, err := tr.db.QueryBuilder.Update("tasks").
		SetMap(task.ToMap()).
		Where(sq.Eq{"id": task.ID, "user_id": userId}).
		ToSql()

	if err != nil {
		return domain.Task{}, err
	}

	result, err := tx.ExecContext(ctx, stmt, args...)

	if err != nil {
		return domain.Task{}, err
	}

	if err := requireAffected(result); err != nil {
		return domain.Task{}, err
	}

	saved, err = tr.getByID(ctx, tx, userId, task.ID)

	if err != nil {
		return domain.Task{}, err
	}

	return saved, tx.Commit()
}

func (tr *TaskRepository) DeleteByID(ctx context.Context, userId int, taskId int) (err error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "DeleteByID", "task", map[string]interface{}{
		"db.system":    "sqlite",
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

	stmt, args, err := tr.db.QueryBuilder.Delete("tasks").
		Where(sq.Eq{"id": taskId, "user_id": userId}).
		ToSql()

	if err != nil {
		return err
	}

	result, err := tr.db.ExecContext(ctx, stmt, args...)

	if err != nil {
		return err
	}

	return requireAffected(result)
}
