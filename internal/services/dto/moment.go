package dto

type CreateMomentRequest struct {
	Content    string   `json:"content" validate:"required,max=5000"`
	Images     []string `json:"images" validate:"omitempty,max=9,dive,required"`
	Location   string   `json:"location" validate:"omitempty,max=100"`
	Visibility string   `json:"visibility" validate:"omitempty,is-visibility"`
}

type UpdateMomentRequest struct {
	Content    *string   `json:"content" validate:"omitempty,min=1,max=5000"`
	Images     *[]string `json:"images" validate:"omitempty,max=9,dive,required"`
	Location   *string   `json:"location" validate:"omitempty,max=100"`
	Visibility *string   `json:"visibility" validate:"omitempty,is-visibility"`
}

type MomentListQuery struct {
	ListQuery
	Location   string `form:"location" validate:"omitempty,max=100"`
	Visibility string `form:"visibility" validate:"omitempty,is-visibility"`
}
