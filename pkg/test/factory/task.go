package factory

import (
	"time"

	fab "github.com/Goldziher/fabricator"

	"todoapi/internal/core/domain"
)

// NewTask needs a "UserID" entry pointing at an existing user before the
// result can be stored.
func NewTask(customData ...map[string]any) domain.Task {
	now := time.Now().UTC()

	factory := fab.New(domain.Task{}, fab.Options[domain.Task]{
		Defaults: map[string]any{
			"ID":          0,
			"Description": (*string)(nil),
			"CreatedAt":   now,
			"UpdatedAt":   now,
		},
	})

	return factory.Build(overrides(customData))
}
