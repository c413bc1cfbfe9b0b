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

const userReturning = "RETURNING id, email, hashed_password, nick_name, created_at, updated_at"

var userColumns = []string{"id", "email", "hashed_password", "nick_name", "created_at", "updated_at"}

type UserRepository struct {
	db        *database.DB
	telemetry port.Telemetry
}

func NewUserRepository(db *database.DB, telemetry port.Telemetry) port.UserRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &UserRepository{db: db, telemetry: telemetry}
}

func scanUser(row pgx.Row) (domain.User, error) {
	var data domain.User

	err := row.Scan(
		&data.ID,
		&data.Email,
		&data.HashedPassword,
		&data.NickName,
		&data.CreatedAt,
		&data.UpdatedAt,
	)

	if err != nil {
		return domain.User{}, notFound(err)
	}

	return data, nil
}

func (ur *UserRepository) GetByID(ctx context.Context, id int) (user domain.User, err error) {
	ctx, span := ur.telemetry.StartRepositorySpan(ctx, "GetByID", "user", map[string]interface{}{
		"db.system": "postgresql",
		"db.table":  "users",
		"user.id":   id,
	})
	defer span.End()

	startTime := time.Now()

	defer func() {
		ur.telemetry.RecordRepositoryOperation(ctx, "GetByID", "user", time.Since(startTime), observed(err))
	}()

	sql, args, err := ur.db.QueryBuilder.Select(userColumns...).
		From("users").
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()

	if err != nil {
		return domain.User{}, err
	}

	return scanUser(ur.db.QueryRow(ctx, sql, args...))
}

func (ur *UserRepository) GetByEmail(ctx context.Context, email string) (user domain.User, err error) {
	ctx, span := ur.telemetry.StartRepositorySpan(ctx, "GetByEmail", "user", map[string]interface{}{
		"db.system": "postgresql",
		"db.table":  "users",
	})
	defer span.End()

	startTime := time.Now()

	defer func() {
		ur.telemetry.RecordRepositoryOperation(ctx, "GetByEmail", "user", time.Since(startTime), observed(err))
	}()

	sql, args, err := ur.db.QueryBuilder.Select(userColumns...).
		From("users").
		Where(sq.Eq{"email": email}).
		Limit(1).
		ToSql()

	if err != nil {
		return domain.User{}, err
	}

	return scanUser(ur.db.QueryRow(ctx, sql, args...))
}

func (ur *UserRepository) Create(ctx context.Context, user domain.User) (saved domain.User, err error) {
	ctx, span := ur.telemetry.StartRepositorySpan(ctx, "Create", "user", map[string]interface{}{
		"db.system":    "postgresql",
		"db.table":     "users",
		"db.operation": "INSERT",
	})
	defer span.End()

	startTime := time.Now()

	defer func() {
		ur.telemetry.RecordRepositoryOperation(ctx, "Create", "user", time.Since(startTime), observed(err))
	}()

	now := time.Now().UTC()

	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}

	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}

	sql, args, err := ur.db.QueryBuilder.Insert("users").
		Columns("email", "hashed_password", "nick_name", "created_at", "updated_at").
		Values(user.Email, user.HashedPassword, user.NickName, user.CreatedAt, user.UpdatedAt).
		Suffix(userReturning).
		ToSql()

	if err != nil {
		return domain.User{}, err
	}

	saved, err = scanUser(ur.db.QueryRow(ctx, sql, args...))

	if database.IsUniqueViolation(err) {
		return domain.User{}, domain.ErrConflict
	}

	return saved, err
}

func (ur *UserRepository) UpdateByID(ctx context.Context, user domain.User) (saved domain.User, err error) {
	ctx, span := ur.telemetry.StartRepositorySpan(ctx, "UpdateByID", "user", map[string]interface{}{
		"db.system":    "postgresql",
		"db.table":     "users",
		"db.operation": "UPDATE",
		"user.id":      user.ID,
	})
	defer span.End()

	startTime := time.Now()

	defer func() {
		ur.telemetry.RecordRepositoryOperation(ctx, "UpdateByID", "user", time.Since(startTime), observed(err))
	}()

	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = time.Now().UTC()
	}

	sql, args, err := ur.db.QueryBuilder.Update("users").
		Set("nick_name", user.NickName).
		Set("updated_at", user.UpdatedAt).
		Where(sq.Eq{"id": user.ID}).
		Suffix(userReturning).
		ToSql()

	if err != nil {
		return domain.User{}, err
	}

	return scanUser(ur.db.QueryRow(ctx, sql, args...))
}

func (ur *UserRepository) DeleteByID(ctx context.Context, id int) (err error) {
	ctx, span := ur.telemetry.StartRepositorySpan(ctx, "DeleteByID", "user", map[string]interface{}{
		"db.system":    "postgresql",
		"db.table":     "users",
		"db.operation": "DELETE",
		"user.id":      id,
	})
	defer span.End()

	startTime := time.Now()

	defer func() {
		ur.telemetry.RecordRepositoryOperation(ctx, "DeleteByID", "user", time.Since(startTime), observed(err))
	}()

	sql, args, err := ur.db.QueryBuilder.Delete("users").
		Where(sq.Eq{"id": id}).
		ToSql()

	if err != nil {
		return err
	}

	tag, err := ur.db.Exec(ctx, sql, args...)

	if err != nil {
		return err
	}

	return requireAffected(tag)
}
