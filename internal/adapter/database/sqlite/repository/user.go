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

var userColumns = []string{"id", "email", "hashed_password", "nick_name", "created_at", "updated_at"}

type UserRepository struct {
	db        *sqlite.DB
	telemetry port.Telemetry
}

func NewUserRepository(db *sqlite.DB, telemetry port.Telemetry) port.UserRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &UserRepository{
		db:        db,
		telemetry: telemetry,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var user domain.User
	var nickName sql.NullString

	err := row.Scan(&user.ID, &user.Email, &user.HashedPassword, &nickName, &user.CreatedAt, &user.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrNotFound
	}

	if err != nil {
		return domain.User{}, err
	}

	if nickName.Valid {
		user.NickName = &nickName.String
	}

	return user, nil
}

func (ur *UserRepository) GetByID(ctx context.Context, id int) (user domain.User, err error) {
	ctx, span := ur.telemetry.StartRepositorySpan(ctx, "GetByID", "user", map[string]interface{}{
		"db.system": "sqlite",
		"db.table":  "users",
		"user.id":   id,
	})
	defer span.End()

	startTime := time.Now()

	defer func() {
		ur.telemetry.RecordRepositoryOperation(ctx, "GetByID", "user", time.Since(startTime), observed(err))
	}()

	query, args, err := ur.db.QueryBuilder.Select(userColumns...).
		From("users").
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()

	if err != nil {
		return domain.User{}, err
	}

	return scanUser(ur.db.QueryRowContext(ctx, query, args...))
}

func (ur *UserRepository) GetByEmail(ctx context.Context, email string) (user domain.User, err error) {
	ctx, span := ur.telemetry.StartRepositorySpan(ctx, "GetByEmail", "user", map[string]interface{}{
		"db.system": "sqlite",
		"db.table":  "users",
	})
	defer span.End()

	startTime := time.Now()

	defer func() {
		ur.telemetry.RecordRepositoryOperation(ctx, "GetByEmail", "user", time.Since(startTime), observed(err))
	}()

	query, args, err := ur.db.QueryBuilder.Select(userColumns...).
		From("users").
		Where(sq.Eq{"email": email}).
		Limit(1).
		ToSql()

	if err != nil {
		return domain.User{}, err
	}

	return scanUser(ur.db.QueryRowContext(ctx, query, args...))
}

func (ur *UserRepository) getByIDTx(ctx context.Context, tx *sql.Tx, id int) (domain.User, error) {
	query, args, err := ur.db.QueryBuilder.Select(userColumns...).
		From("users").
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()

	if err != nil {
		return domain.User{}, err
	}

	return scanUser(tx.QueryRowContext(ctx, query, args...))
}

// Create maps a duplicate email to domain.ErrConflict, which covers two
// signups racing past the service level existence check.
func (ur *UserRepository) Create(ctx context.Context, user domain.User) (saved domain.User, err error) {
	ctx, span := ur.telemetry.StartRepositorySpan(ctx, "Create", "user", map[string]interface{}{
		"db.system":    "sqlite",
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

	tx, err := ur.db.BeginTx(ctx, nil)

	if err != nil {
		return domain.User{}, err
	}

	defer tx.Rollback()

	stmt, args, err := ur.db.QueryBuilder.Insert("users").
		Columns("email", "hashed_password", "nick_name", "created_at", "updated_at").
		Values(user.Email, user.HashedPassword, user.NickName, user.CreatedAt, user.UpdatedAt).
		ToSql()

	if err != nil {
		return domain.User{}, err
	}

	result, err := tx.ExecContext(ctx, stmt, args...)

	if err != nil {
		if sqlite.IsUniqueViolation(err) {
			return domain.User{}, domain.ErrConflict
		}

		return domain.User{}, err
	}

	id, err := result.LastInsertId()

	if err != nil {
		return domain.User{}, err
	}

	saved, err = ur.getByIDTx(ctx, tx, int(id))

	if err != nil {
		return domain.User{}, err
	}

	span.SetAttributes(map[string]interface{}{"user.id": saved.ID})

	return saved, tx.Commit()
}

// UpdateByID writes the mutable profile fields (nick name and updated_at).
func (ur *UserRepository) UpdateByID(ctx context.Context, user domain.User) (saved domain.User, err error) {
	ctx, span := ur.telemetry.StartRepositorySpan(ctx, "UpdateByID", "user", map[string]interface{}{
		"db.system":    "sqlite",
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

	tx, err := ur.db.BeginTx(ctx, nil)

	if err != nil {
		return domain.User{}, err
	}

	defer tx.Rollback()

	stmt, args, err := ur.db.QueryBuilder.Update("users").
		Set("nick_name", user.NickName).
		Set("updated_at", user.UpdatedAt).
		Where(sq.Eq{"id": user.ID}).
		ToSql()

	if err != nil {
		return domain.User{}, err
	}

	result, err := tx.ExecContext(ctx, stmt, args...)

	if err != nil {
		return domain.User{}, err
	}

	if err := requireAffected(result); err != nil {
		return domain.User{}, err
	}

	saved, err = ur.getByIDTx(ctx, tx, user.ID)

	if err != nil {
		return domain.User{}, err
	}

	return saved, tx.Commit()
}

// DeleteByID removes the user and, through the foreign key, all of their tasks.
func (ur *UserRepository) DeleteByID(ctx context.Context, id int) (err error) {
	ctx, span := ur.telemetry.StartRepositorySpan(ctx, "DeleteByID", "user", map[string]interface{}{
		"db.system":    "sqlite",
		"db.table":     "users",
		"db.operation": "DELETE",
		"user.id":      id,
	})
	defer span.End()

	startTime := time.Now()

	defer func() {
		ur.telemetry.RecordRepositoryOperation(ctx, "DeleteByID", "user", time.Since(startTime), observed(err))
	}()

	stmt, args, err := ur.db.QueryBuilder.Delete("users").
		Where(sq.Eq{"id": id}).
		ToSql()

	if err != nil {
		return err
	}

	result, err := ur.db.ExecContext(ctx, stmt, args...)

	if err != nil {
		return err
	}

	return requireAffected(result)
}

func requireAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()

	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// observed hides expected outcomes from the error telemetry.
func observed(err error) error {
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrConflict) {
		return nil
	}

	return err
}
