package models

import "gorm.io/datatypes"

type Moment struct {
	BaseModel
	Content      string                      `gorm:"type:text;not null" json:"content"`
	Images       datatypes.JSONSlice[string] `json:"images"`
	Location     string                      `gorm:"type:varchar(100);index" json:"location"`
	Visibility   Visibility                  `gorm:"type:varchar(20);not null;default:'public'" json:"visibility"`
	IsActive     bool                        `gorm:"not null;default:true" json:"is_active"`
	LikeCount    int                         `gorm:"default:0" json:"like_count"`
	CommentCount int                         `gorm:"default:0" json:"comment_count"`
	ViewCount    int                         `gorm:"default:0" json:"view_count"`

	AuthorID string `gorm:"type:varchar(36);not null;index" json:"author_id"`
	Author   *User  `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}
