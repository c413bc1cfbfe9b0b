package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"todoapi/internal/core/domain"
	"todoapi/internal/core/model/request"
	"todoapi/internal/core/port"
	tel "todoapi/internal/core/telemetry"
)

type AuthService struct {
	repo      port.UserRepository
	hasher    port.PasswordHasher
	tokens    port.TokenIssuer
	telemetry port.Telemetry

	// dummyHash is verified against when the email is unknown, so both
	// failure paths cost one bcrypt comparison.
	dummyHash string
}

func NewAuthService(repo port.UserRepository, hasher port.PasswordHasher, tokens port.TokenIssuer, telemetry port.Telemetry) (*AuthService, error) {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	dummyHash, err := hasher.Hash("dummy-password-for-timing")

	if err != nil {
		return nil, fmt.Errorf("hash timing password: %w", err)
	}

	return &AuthService{
		repo:      repo,
		hasher:    hasher,
		tokens:    tokens,
		telemetry: telemetry,
		dummyHash: dummyHash,
	}, nil
}

func (as *AuthService) SignUp(ctx context.Context, req *request.SignUpRequest) (user *domain.User, err error) {
	ctx, span := as.telemetry.StartServiceSpan(ctx, "auth", "signup", 0, nil)
	defer span.End()

	startTime := time.Now()

	defer func() {
		as.telemetry.RecordServiceOperation(ctx, "auth", "signup", 0, time.Since(startTime), err)
	}()

	_, err = as.repo.GetByEmail(ctx, req.Email)

	if err == nil {
		return nil, domain.ErrConflict
	}

	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hashed, err := as.hasher.Hash(req.Password)

	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	saved, err := as.repo.Create(ctx, domain.User{
		Email:          req.Email,
		HashedPassword: hashed,
		CreatedAt:      now,
		UpdatedAt:      now,
	})

	if err != nil {
		return nil, err
	}

	as.telemetry.RecordBusinessEvent(ctx, "auth.signup", "auth", strconv.Itoa(saved.ID), saved.ID, nil)

	return &saved, nil
}

// Login returns domain.ErrUnauthorized for an unknown email and for a wrong
// password alike.
func (as *AuthService) Login(ctx context.Context, req *request.LoginRequest) (token string, err error) {
	ctx, span := as.telemetry.StartServiceSpan(ctx, "auth", "login", 0, nil)
	defer span.End()

	startTime := time.Now()

	defer func() {
		as.telemetry.RecordServiceOperation(ctx, "auth", "login", 0, time.Since(startTime), err)
	}()

	user, err := as.repo.GetByEmail(ctx, req.Email)

	if errors.Is(err, domain.ErrNotFound) {
		as.hasher.Verify(req.Password, as.dummyHash)
		as.telemetry.RecordBusinessEvent(ctx, "auth.login_failed", "auth", "", 0, nil)

		return "", domain.ErrUnauthorized
	}

	if err != nil {
		return "", err
	}

	if !as.hasher.Verify(req.Password, user.HashedPassword) {
		as.telemetry.RecordBusinessEvent(ctx, "auth.login_failed", "auth", "", 0, nil)

		return "", domain.ErrUnauthorized
	}

	token, err = as.tokens.Issue(user.ID)

	if err != nil {
		return "", err
	}

	span.SetAttributes(map[string]interface{}{"user.id": user.ID})
	as.telemetry.RecordBusinessEvent(ctx, "auth.login_succeeded", "auth", strconv.Itoa(user.ID), user.ID, nil)

	return token, nil
}
