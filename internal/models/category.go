package models

type Category struct {
	BaseModel
	Name        string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Cover       string `json:"cover"`
	SortOrder   int    `gorm:"default:0" json:"sort_order"`
	IsActive    bool   `gorm:"not null;default:true" json:"is_active"`

	ArticleCount int64 `gorm:"-" json:"article_count,omitempty"`
}
