package dto

type CreateWorkRequest struct {
	Title        string   `json:"title" validate:"required,max=200"`
	Description  string   `json:"description"`
	Cover        string   `json:"cover"`
	Images       []string `json:"images" validate:"omitempty,dive,required"`
	DemoURL      string   `json:"demo_url" validate:"omitempty,url"`
	SourceURL    string   `json:"source_url" validate:"omitempty,url"`
	Technologies []string `json:"technologies" validate:"omitempty,dive,required,max=50"`
	Category     string   `json:"category" validate:"required,is-work-category"`
	Status       string   `json:"status" validate:"omitempty,is-content-status"`
	IsFeatured   bool     `json:"is_featured"`
	SortOrder    int      `json:"sort_order"`
}

type UpdateWorkRequest struct {
	Title        *string   `json:"title" validate:"omitempty,max=200"`
	Description  *string   `json:"description"`
	Cover        *string   `json:"cover"`
	Images       *[]string `json:"images" validate:"omitempty,dive,required"`
	DemoURL      *string   `json:"demo_url" validate:"omitempty,url"`
	SourceURL    *string   `json:"source_url" validate:"omitempty,url"`
	Technologies *[]string `json:"technologies" validate:"omitempty,dive,required,max=50"`
	Category     *string   `json:"category" validate:"omitempty,is-work-category"`
	Status       *string   `json:"status" validate:"omitempty,is-content-status"`
	IsFeatured   *bool     `json:"is_featured"`
	SortOrder    *int      `json:"sort_order"`
}

type WorkListQuery struct {
	ListQuery
	Category   string `form:"category" validate:"omitempty,is-work-category"`
	Technology string `form:"technology" validate:"omitempty,max=50"`
	Status     string `form:"status" validate:"omitempty,is-content-status"`
	IsFeatured *bool  `form:"is_featured"`
}
