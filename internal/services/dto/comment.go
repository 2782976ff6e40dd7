package dto

type CreateCommentRequest struct {
	Content      string  `json:"content" validate:"required,max=2000"`
	TargetType   string  `json:"target_type" validate:"required,is-target-type"`
	TargetID     string  `json:"target_id" validate:"required"`
	ParentID     *string `json:"parent_id" validate:"omitempty,uuid"`
	GuestName    string  `json:"guest_name" validate:"omitempty,max=50"`
	GuestEmail   string  `json:"guest_email" validate:"omitempty,email,max=100"`
	GuestWebsite string  `json:"guest_website" validate:"omitempty,url"`
}

type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

type UpdateCommentStatusRequest struct {
	Status string `json:"status" validate:"required,is-comment-status"`
}

type CommentListQuery struct {
	ListQuery
	Status     string `form:"status" validate:"omitempty,is-comment-status"`
	TargetType string `form:"target_type" validate:"omitempty,is-target-type"`
	TargetID   string `form:"target_id"`
}
