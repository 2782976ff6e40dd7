package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel - общие поля. ID генерируется на стороне приложения, чтобы
// схема работала и на postgres, и на mysql.
type BaseModel struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// All возвращает все сущности для AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&Category{},
		&Article{},
		&Comment{},
		&Moment{},
		&Work{},
		&AnalyticsRecord{},
		&DailyStats{},
	}
}
