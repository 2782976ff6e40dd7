package models

import (
	"time"

	"gorm.io/datatypes"
)

type Work struct {
	BaseModel
	Title        string                      `gorm:"type:varchar(200);not null" json:"title"`
	Description  string                      `gorm:"type:text" json:"description"`
	Cover        string                      `json:"cover"`
	Images       datatypes.JSONSlice[string] `json:"images"`
	DemoURL      string                      `json:"demo_url"`
	SourceURL    string                      `json:"source_url"`
	Technologies datatypes.JSONSlice[string] `json:"technologies"`
	Category     WorkCategory                `gorm:"type:varchar(20);not null;default:'web';index" json:"category"`
	Status       ArticleStatus               `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	IsFeatured   bool                        `gorm:"default:false" json:"is_featured"`
	ViewCount    int                         `gorm:"default:0" json:"view_count"`
	LikeCount    int                         `gorm:"default:0" json:"like_count"`
	CommentCount int                         `gorm:"default:0" json:"comment_count"`
	SortOrder    int                         `gorm:"default:0" json:"sort_order"`
	PublishedAt  *time.Time                  `json:"published_at"`

	AuthorID string `gorm:"type:varchar(36);not null;index" json:"author_id"`
	Author   *User  `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}
