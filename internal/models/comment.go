package models

type Comment struct {
	BaseModel
	Content      string        `gorm:"type:text;not null" json:"content"`
	GuestName    string        `gorm:"type:varchar(50)" json:"guest_name,omitempty"`
	GuestEmail   string        `gorm:"type:varchar(100)" json:"-"`
	GuestWebsite string        `json:"guest_website,omitempty"`
	IPAddress    string        `gorm:"type:varchar(64)" json:"-"`
	UserAgent    string        `gorm:"type:text" json:"-"`
	Status       CommentStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	TargetType   TargetType    `gorm:"type:varchar(20);not null;index:idx_comment_target" json:"target_type"`
	TargetID     string        `gorm:"type:varchar(36);not null;index:idx_comment_target" json:"target_id"`
	LikeCount    int           `gorm:"default:0" json:"like_count"`
	AuthorID     *string       `gorm:"type:varchar(36);index" json:"author_id"`
	ParentID     *string       `gorm:"type:varchar(36);index" json:"parent_id"`

	// Relations
	Author  *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Replies []Comment `gorm:"foreignKey:ParentID" json:"replies,omitempty"`
}

func (c *Comment) IsOwnedBy(userID string) bool {
	return c.AuthorID != nil && *c.AuthorID == userID
}
