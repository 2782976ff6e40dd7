package models

import "gorm.io/datatypes"

// AnalyticsRecord - одна строка на исходное поведенческое событие.
// Создается пачками при агрегации, не обновляется. CreatedAt = время события.
type AnalyticsRecord struct {
	BaseModel
	Date        string         `gorm:"type:varchar(10);not null;index:idx_analytics_date_type" json:"date"`
	Type        string         `gorm:"type:varchar(32);not null;index:idx_analytics_date_type" json:"type"`
	TargetID    string         `gorm:"type:varchar(64);index" json:"target_id"`
	TargetTitle string         `gorm:"type:varchar(255)" json:"target_title"`
	SessionID   string         `gorm:"type:varchar(64)" json:"session_id"`
	UserID      string         `gorm:"type:varchar(36)" json:"user_id"`
	IPAddress   string         `gorm:"type:varchar(64)" json:"ip_address"`
	UserAgent   string         `gorm:"type:text" json:"user_agent"`
	Referer     string         `gorm:"type:text" json:"referer"`
	Country     string         `gorm:"type:varchar(64)" json:"country"`
	City        string         `gorm:"type:varchar(64)" json:"city"`
	Device      string         `gorm:"type:varchar(32)" json:"device"`
	Browser     string         `gorm:"type:varchar(64)" json:"browser"`
	OS          string         `gorm:"type:varchar(64)" json:"os"`
	Extra       datatypes.JSON `json:"extra,omitempty"`
}

func (AnalyticsRecord) TableName() string { return "analytics" }

// DailyStats - сводка за календарный день, уникальна по date.
type DailyStats struct {
	BaseModel
	Date           string `gorm:"type:varchar(10);uniqueIndex;not null" json:"date"`
	TotalViews     int    `gorm:"not null;default:0" json:"total_views"`
	UniqueVisitors int    `gorm:"not null;default:0" json:"unique_visitors"`
	ArticleViews   int    `gorm:"not null;default:0" json:"article_views"`
	MomentViews    int    `gorm:"not null;default:0" json:"moment_views"`
	WorkViews      int    `gorm:"not null;default:0" json:"work_views"`
	NewComments    int    `gorm:"not null;default:0" json:"new_comments"`
	NewLikes       int    `gorm:"not null;default:0" json:"new_likes"`
}

func (DailyStats) TableName() string { return "daily_stats" }
