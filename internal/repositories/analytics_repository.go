package repositories

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"miaoyou_backend/internal/models"
)

type DailyStatsSummary struct {
	Days             int64   `json:"days"`
	TotalViews       int64   `json:"total_views"`
	UniqueVisitors   int64   `json:"unique_visitors"`
	ArticleViews     int64   `json:"article_views"`
	MomentViews      int64   `json:"moment_views"`
	WorkViews        int64   `json:"work_views"`
	NewComments      int64   `json:"new_comments"`
	NewLikes         int64   `json:"new_likes"`
	AvgDailyVisitors float64 `json:"avg_daily_visitors"`
	AvgDailyViews    float64 `json:"avg_daily_views"`
}

type TopContent struct {
	TargetID    string `json:"target_id"`
	TargetTitle string `json:"target_title"`
	Views       int64  `json:"views"`
}

type AnalyticsRepository interface {
	// Запись агрегатов
	CreateRecords(db *gorm.DB, records []models.AnalyticsRecord) error
	UpsertDailyStats(db *gorm.DB, row *models.DailyStats) error

	// Очистка
	DeleteRecordsBefore(db *gorm.DB, cutoff time.Time) (int64, error)
	DeleteDailyStatsBefore(db *gorm.DB, cutoff time.Time) (int64, error)

	// Чтение
	FindDailyStats(db *gorm.DB, startDate, endDate string, limit int) ([]models.DailyStats, error)
	GetSummary(db *gorm.DB, startDate, endDate string) (*DailyStatsSummary, error)
	FindTopContent(db *gorm.DB, date, eventType string, limit int) ([]TopContent, error)
}

type AnalyticsRepositoryImpl struct{}

func NewAnalyticsRepository() AnalyticsRepository {
	return &AnalyticsRepositoryImpl{}
}

func (r *AnalyticsRepositoryImpl) CreateRecords(db *gorm.DB, records []models.AnalyticsRecord) error {
	if len(records) == 0 {
		return nil
	}
	return db.Create(&records).Error
}

// UpsertDailyStats вставляет строку или перезаписывает счетчики существующей по date.
func (r *AnalyticsRepositoryImpl) UpsertDailyStats(db *gorm.DB, row *models.DailyStats) error {
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_views",
			"unique_visitors",
			"article_views",
			"moment_views",
			"work_views",
			"new_comments",
			"new_likes",
			"updated_at",
		}),
	}).Create(row).Error
}

func (r *AnalyticsRepositoryImpl) DeleteRecordsBefore(db *gorm.DB, cutoff time.Time) (int64, error) {
	result := db.Where("created_at < ?", cutoff).Delete(&models.AnalyticsRecord{})
	return result.RowsAffected, result.Error
}

func (r *AnalyticsRepositoryImpl) DeleteDailyStatsBefore(db *gorm.DB, cutoff time.Time) (int64, error) {
	result := db.Where("created_at < ?", cutoff).Delete(&models.DailyStats{})
	return result.RowsAffected, result.Error
}

func dateRange(q *gorm.DB, startDate, endDate string) *gorm.DB {
	if startDate != "" {
		q = q.Where("date >= ?", startDate)
	}
	if endDate != "" {
		q = q.Where("date <= ?", endDate)
	}
	return q
}

func (r *AnalyticsRepositoryImpl) FindDailyStats(db *gorm.DB, startDate, endDate string, limit int) ([]models.DailyStats, error) {
	var rows []models.DailyStats
	q := dateRange(db.Model(&models.DailyStats{}), startDate, endDate).Order("date DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&rows).Error
	return rows, err
}

func (r *AnalyticsRepositoryImpl) GetSummary(db *gorm.DB, startDate, endDate string) (*DailyStatsSummary, error) {
	var s DailyStatsSummary
	err := dateRange(db.Model(&models.DailyStats{}), startDate, endDate).
		Select(`COUNT(*) AS days,
			COALESCE(SUM(total_views), 0) AS total_views,
			COALESCE(SUM(unique_visitors), 0) AS unique_visitors,
			COALESCE(SUM(article_views), 0) AS article_views,
			COALESCE(SUM(moment_views), 0) AS moment_views,
			COALESCE(SUM(work_views), 0) AS work_views,
			COALESCE(SUM(new_comments), 0) AS new_comments,
			COALESCE(SUM(new_likes), 0) AS new_likes`).
		Scan(&s).Error
	if err != nil {
		return nil, err
	}
	if s.Days > 0 {
		s.AvgDailyVisitors = float64(s.UniqueVisitors) / float64(s.Days)
		s.AvgDailyViews = float64(s.TotalViews) / float64(s.Days)
	}
	return &s, nil
}

func (r *AnalyticsRepositoryImpl) FindTopContent(db *gorm.DB, date, eventType string, limit int) ([]TopContent, error) {
	var rows []TopContent
	err := db.Model(&models.AnalyticsRecord{}).
		Select("target_id, MAX(target_title) AS target_title, COUNT(*) AS views").
		Where("date = ? AND type = ? AND target_id <> ''", date, eventType).
		Group("target_id").
		Order("views DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
