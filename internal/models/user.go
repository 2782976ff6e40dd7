package models

type User struct {
	BaseModel
	Username string   `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Email    string   `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`
	Password string   `gorm:"not null" json:"-"`
	Nickname string   `gorm:"type:varchar(100)" json:"nickname"`
	Bio      string   `gorm:"type:text" json:"bio"`
	Avatar   string   `json:"avatar"`
	Role     UserRole `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	IsActive bool     `gorm:"not null;default:true" json:"is_active"`
}

func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}
