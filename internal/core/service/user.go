package service

import (
	"context"
	"strconv"
	"time"

	"todoapi/internal/core/domain"
	"todoapi/internal/core/model/request"
	"todoapi/internal/core/port"
	tel "todoapi/internal/core/telemetry"
)

type UserService struct {
	repo      port.UserRepository
	telemetry port.Telemetry
}

func NewUserService(repo port.UserRepository, telemetry port.Telemetry) *UserService {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &UserService{repo: repo, telemetry: telemetry}
}

func (us *UserService) GetUserByID(ctx context.Context, id int) (user domain.User, err error) {
	ctx, span := us.telemetry.StartServiceSpan(ctx, "user", "get", id, nil)
	defer span.End()

	startTime := time.Now()

	defer func() {
		us.telemetry.RecordServiceOperation(ctx, "user", "get", id, time.Since(startTime), err)
	}()

	return us.repo.GetByID(ctx, id)
}

// UpdateUser only changes the nick name. Email and password are not
// reachable from here.
func (us *UserService) UpdateUser(ctx context.Context, userId int, req *request.UpdateUserRequest) (user domain.User, err error) {
	ctx, span := us.telemetry.StartServiceSpan(ctx, "user", "update", userId, nil)
	defer span.End()

	startTime := time.Now()

	defer func() {
		us.telemetry.RecordServiceOperation(ctx, "user", "update", userId, time.Since(startTime), err)
	}()

	existing, err := us.repo.GetByID(ctx, userId)

	if err != nil {
		return domain.User{}, err
	}

	if req.NickName != nil {
		existing.NickName = req.NickName
	}

	existing.UpdatedAt = time.Now().UTC()

	user, err = us.repo.UpdateByID(ctx, existing)

	if err != nil {
		return domain.User{}, err
	}

	us.telemetry.RecordBusinessEvent(ctx, "user.updated", "user", strconv.Itoa(userId), userId, nil)

	return user, nil
}
