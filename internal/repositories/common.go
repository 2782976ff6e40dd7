package repositories

import (
	"strings"

	"gorm.io/gorm"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ListParams - общие параметры постраничных списков.
type ListParams struct {
	Page      int
	Limit     int
	Search    string
	SortBy    string
	SortOrder string // ASC | DESC
}

func (p ListParams) Normalize() ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	if strings.EqualFold(p.SortOrder, "asc") {
		p.SortOrder = "ASC"
	} else {
		p.SortOrder = "DESC"
	}
	return p
}

func (p ListParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// paginate применяет сортировку и лимиты. sortable - белый список
// "имя из запроса" -> "колонка"; неизвестное имя заменяется на defaultSort.
func paginate(q *gorm.DB, p ListParams, sortable map[string]string, defaultSort string) *gorm.DB {
	col, ok := sortable[p.SortBy]
	if !ok {
		col = defaultSort
	}
	return q.Order(col + " " + p.SortOrder).Offset(p.Offset()).Limit(p.Limit)
}

// searchLike добавляет регистронезависимый поиск по колонкам.
func searchLike(q *gorm.DB, search string, columns ...string) *gorm.DB {
	search = strings.TrimSpace(search)
	if search == "" || len(columns) == 0 {
		return q
	}
	pattern := "%" + strings.ToLower(search) + "%"
	conds := make([]string, 0, len(columns))
	args := make([]any, 0, len(columns))
	for _, c := range columns {
		conds = append(conds, "LOWER("+c+") LIKE ?")
		args = append(args, pattern)
	}
	return q.Where("("+strings.Join(conds, " OR ")+")", args...)
}

// CountByValue - строка результата GROUP BY.
type CountByValue struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}
