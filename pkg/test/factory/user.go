package factory

import (
	"maps"
	"sync"
	"time"

	fab "github.com/Goldziher/fabricator"
	"golang.org/x/crypto/bcrypt"

	"todoapi/internal/core/domain"
)

var (
	hashOnce    sync.Once
	defaultHash string
)

// DefaultHashedPassword is the bcrypt hash of test.TestPassword.
func DefaultHashedPassword() string {
	hashOnce.Do(func() {
		hashed, _ := bcrypt.GenerateFromPassword([]byte("password1"), bcrypt.MinCost)
		defaultHash = string(hashed)
	})

	return defaultHash
}

func NewUser(customData ...map[string]any) domain.User {
	now := time.Now().UTC()

	factory := fab.New(domain.User{}, fab.Options[domain.User]{
		Defaults: map[string]any{
			"ID":             0,
			"HashedPassword": DefaultHashedPassword(),
			"NickName":       (*string)(nil),
			"CreatedAt":      now,
			"UpdatedAt":      now,
		},
	})

	return factory.Build(overrides(customData))
}

// overrides folds every custom map into one, later maps winning.
// Build only reads its first argument.
func overrides(customData []map[string]any) map[string]any {
	merged := map[string]any{}
	for _, data := range customData {
		maps.Copy(merged, data)
	}

	return merged
}
