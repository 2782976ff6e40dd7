package models

import (
	"time"

	"gorm.io/datatypes"
)

type Article struct {
	BaseModel
	Title         string                      `gorm:"type:varchar(200);not null" json:"title"`
	Summary       string                      `gorm:"type:text" json:"summary"`
	Content       string                      `gorm:"type:text;not null" json:"content,omitempty"`
	Cover         string                      `json:"cover"`
	Tags          datatypes.JSONSlice[string] `json:"tags"`
	Status        ArticleStatus               `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	IsRecommended bool                        `gorm:"default:false" json:"is_recommended"`
	IsTop         bool                        `gorm:"default:false" json:"is_top"`
	ViewCount     int                         `gorm:"default:0" json:"view_count"`
	LikeCount     int                         `gorm:"default:0" json:"like_count"`
	CommentCount  int                         `gorm:"default:0" json:"comment_count"`
	SortOrder     int                         `gorm:"default:0" json:"sort_order"`
	PublishedAt   *time.Time                  `json:"published_at"`

	AuthorID   string  `gorm:"type:varchar(36);not null;index" json:"author_id"`
	CategoryID *string `gorm:"type:varchar(36);index" json:"category_id"`

	// Relations
	Author   *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

func (a *Article) IsPublished() bool {
	return a.Status == ArticleStatusPublished
}
