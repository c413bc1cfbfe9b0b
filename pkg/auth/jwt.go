package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"todoapi/internal/core/domain"
)

// JWT issues and verifies HS256 access tokens. The secret and TTL are fixed
// for the lifetime of the process.
type JWT struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type JWTOption func(*JWT)

// WithClock replaces time.Now for both issuing and verifying.
func WithClock(now func() time.Time) JWTOption {
	return func(j *JWT) {
		j.now = now
	}
}

func NewJWT(secret []byte, ttl time.Duration, opts ...JWTOption) *JWT {
	j := &JWT{
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(j)
	}

	return j
}

func (j *JWT) Issue(userId int) (string, error) {
	now := j.now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   strconv.Itoa(userId),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		ID:        uuid.NewString(),
	})

	signed, err := token.SignedString(j.secret)

	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// Verify returns the user id carried in the subject. Only the subject is
// trusted; every other claim is used for validation only.
func (j *JWT) Verify(tokenString string) (int, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(j.now),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, domain.ErrTokenExpired
		}

		return 0, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}

	if !token.Valid {
		return 0, domain.ErrInvalidToken
	}

	userId, err := strconv.Atoi(claims.Subject)

	if err != nil || userId <= 0 {
		return 0, fmt.Errorf("%w: bad subject", domain.ErrInvalidToken)
	}

	return userId, nil
}
