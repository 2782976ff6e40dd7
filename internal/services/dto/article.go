package dto

type CreateArticleRequest struct {
	Title         string   `json:"title" validate:"required,max=200"`
	Summary       string   `json:"summary"`
	Content       string   `json:"content" validate:"required"`
	Cover         string   `json:"cover"`
	Tags          []string `json:"tags" validate:"omitempty,dive,required,max=50"`
	Status        string   `json:"status" validate:"omitempty,is-content-status"`
	IsRecommended bool     `json:"is_recommended"`
	IsTop         bool     `json:"is_top"`
	SortOrder     int      `json:"sort_order"`
	CategoryID    *string  `json:"category_id" validate:"omitempty,uuid"`
}

type UpdateArticleRequest struct {
	Title         *string   `json:"title" validate:"omitempty,max=200"`
	Summary       *string   `json:"summary"`
	Content       *string   `json:"content" validate:"omitempty,min=1"`
	Cover         *string   `json:"cover"`
	Tags          *[]string `json:"tags" validate:"omitempty,dive,required,max=50"`
	Status        *string   `json:"status" validate:"omitempty,is-content-status"`
	IsRecommended *bool     `json:"is_recommended"`
	IsTop         *bool     `json:"is_top"`
	SortOrder     *int      `json:"sort_order"`
	CategoryID    *string   `json:"category_id" validate:"omitempty,uuid"`
}

type ArticleListQuery struct {
	ListQuery
	CategoryID string `form:"category_id" validate:"omitempty,uuid"`
	Tag        string `form:"tag" validate:"omitempty,max=50"`
	Status     string `form:"status" validate:"omitempty,is-content-status"`
	AuthorID   string `form:"author_id" validate:"omitempty,uuid"`
}
