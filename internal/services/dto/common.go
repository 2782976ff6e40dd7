package dto

import "miaoyou_backend/internal/repositories"

// ListQuery - общие query-параметры списков
type ListQuery struct {
	Page      int    `form:"page" validate:"omitempty,min=1"`
	Limit     int    `form:"limit" validate:"omitempty,min=1"`
	Search    string `form:"search" validate:"omitempty,max=100"`
	SortBy    string `form:"sort_by" validate:"omitempty,max=50"`
	SortOrder string `form:"sort_order" validate:"omitempty,oneof=ASC DESC asc desc"`
}

// Params переводит запрос в параметры репозитория (limit > 100 урезается).
func (q ListQuery) Params() repositories.ListParams {
	return repositories.ListParams{
		Page:      q.Page,
		Limit:     q.Limit,
		Search:    q.Search,
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
	}.Normalize()
}

// ListResponse - постраничный ответ
type ListResponse[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

func NewListResponse[T any](data []T, total int64, p repositories.ListParams) *ListResponse[T] {
	if data == nil {
		data = []T{}
	}
	return &ListResponse[T]{
		Data:       data,
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: CalculateTotalPages(total, p.Limit),
	}
}

func CalculateTotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// CounterResponse - ответ на view/like
type CounterResponse struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
