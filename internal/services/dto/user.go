package dto

type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,min=6,max=255"`
	Nickname string `json:"nickname" validate:"omitempty,max=50"`
	Bio      string `json:"bio" validate:"omitempty,max=1000"`
	Avatar   string `json:"avatar" validate:"omitempty,url"`
	Role     string `json:"role" validate:"omitempty,is-user-role"`
}

// UpdateUserRequest - частичное обновление, nil поля не меняются
type UpdateUserRequest struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=50"`
	Email    *string `json:"email" validate:"omitempty,email,max=100"`
	Password *string `json:"password" validate:"omitempty,min=6,max=255"`
	Nickname *string `json:"nickname" validate:"omitempty,max=50"`
	Bio      *string `json:"bio" validate:"omitempty,max=1000"`
	Avatar   *string `json:"avatar" validate:"omitempty,url"`
	Role     *string `json:"role" validate:"omitempty,is-user-role"`
	IsActive *bool   `json:"is_active"`
}

type UserListQuery struct {
	ListQuery
	Role     string `form:"role" validate:"omitempty,is-user-role"`
	IsActive *bool  `form:"is_active"`
}
