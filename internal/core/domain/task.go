package domain

import "time"

type Task struct {
	ID          int
	Title       string  `validate:"required,max=255"`
	Description *string `validate:"omitempty,max=1000"`
	UserID      int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (t *Task) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"title":       t.Title,
		"description": t.Description,
		"updated_at":  t.UpdatedAt,
	}
}
