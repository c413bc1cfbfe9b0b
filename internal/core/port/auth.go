package port

import (
	"context"

	"todoapi/internal/core/domain"
	"todoapi/internal/core/model/request"
)

type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Verify never returns an error: a mismatch and an unusable stored hash
	// both report false.
	Verify(plaintext, storedHash string) bool
}

type TokenVerifier interface {
	Verify(token string) (int, error)
}

type TokenIssuer interface {
	TokenVerifier
	Issue(userID int) (string, error)
}

type AuthService interface {
	SignUp(ctx context.Context, req *request.SignUpRequest) (*domain.User, error)
	Login(ctx context.Context, req *request.LoginRequest) (string, error)
}
