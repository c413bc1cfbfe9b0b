package request

type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=5,maxbytes=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=5,maxbytes=72"`
}

// CreateTaskRequest has no owner field: the owner is always the caller.
type CreateTaskRequest struct {
	Title       string  `json:"title" validate:"required,notblank,max=255"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
}

type UpdateTaskRequest struct {
	Title       string  `json:"title" validate:"required,notblank,max=255"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
}

type UpdateUserRequest struct {
	NickName *string `json:"nickName" validate:"omitempty,max=100"`
}
