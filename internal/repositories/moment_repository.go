package repositories

import (
	"errors"

	"gorm.io/gorm"

	"miaoyou_backend/internal/models"
)

var ErrMomentNotFound = errors.New("moment not found")

type MomentFilter struct {
	ListParams
	Visibility models.Visibility
	ActiveOnly bool
	Location   string
	AuthorID   string
}

type MomentStats struct {
	Total      int64 `json:"total"`
	Public     int64 `json:"public"`
	Private    int64 `json:"private"`
	Inactive   int64 `json:"inactive"`
	TotalViews int64 `json:"total_views"`
	TotalLikes int64 `json:"total_likes"`
}

type MomentRepository interface {
	CreateMoment(db *gorm.DB, moment *models.Moment) error
	FindByID(db *gorm.DB, id string) (*models.Moment, error)
	UpdateMoment(db *gorm.DB, moment *models.Moment) error
	DeleteMoment(db *gorm.DB, id string) error
	FindMoments(db *gorm.DB, filter MomentFilter) ([]models.Moment, int64, error)
	FindPopular(db *gorm.DB, limit int) ([]models.Moment, error)
	FindRecent(db *gorm.DB, limit int) ([]models.Moment, error)
	FindLocations(db *gorm.DB, publicOnly bool) ([]CountByValue, error)
	IncrementCounter(db *gorm.DB, id string, counter Counter, delta int) error
	GetStats(db *gorm.DB) (*MomentStats, error)
}

type MomentRepositoryImpl struct{}

func NewMomentRepository() MomentRepository {
	return &MomentRepositoryImpl{}
}

func (r *MomentRepositoryImpl) CreateMoment(db *gorm.DB, moment *models.Moment) error {
	return db.Create(moment).Error
}

func (r *MomentRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Moment, error) {
	var moment models.Moment
	if err := db.Preload("Author").Where("id = ?", id).First(&moment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMomentNotFound
		}
		return nil, err
	}
	return &moment, nil
}

func (r *MomentRepositoryImpl) UpdateMoment(db *gorm.DB, moment *models.Moment) error {
	result := db.Model(moment).Select("*").Omit("created_at", "Author").Updates(moment)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMomentNotFound
	}
	return nil
}

func (r *MomentRepositoryImpl) DeleteMoment(db *gorm.DB, id string) error {
	result := db.Where("id = ?", id).Delete(&models.Moment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMomentNotFound
	}
	return nil
}

func publicMoments(db *gorm.DB) *gorm.DB {
	return db.Where("visibility = ? AND is_active = ?", models.VisibilityPublic, true)
}

func (r *MomentRepositoryImpl) FindMoments(db *gorm.DB, filter MomentFilter) ([]models.Moment, int64, error) {
	p := filter.Normalize()

	q := db.Model(&models.Moment{})
	q = searchLike(q, p.Search, "content", "location")
	if filter.Visibility != "" {
		q = q.Where("visibility = ?", filter.Visibility)
	}
	if filter.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	if filter.Location != "" {
		q = q.Where("location = ?", filter.Location)
	}
	if filter.AuthorID != "" {
		q = q.Where("author_id = ?", filter.AuthorID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortable := map[string]string{
		"created_at": "created_at",
		"view_count": "view_count",
		"like_count": "like_count",
	}
	var moments []models.Moment
	if err := paginate(q, p, sortable, "created_at").Preload("Author").Find(&moments).Error; err != nil {
		return nil, 0, err
	}
	return moments, total, nil
}

func (r *MomentRepositoryImpl) FindPopular(db *gorm.DB, limit int) ([]models.Moment, error) {
	var moments []models.Moment
	err := publicMoments(db).
		Order("like_count DESC").Order("view_count DESC").
		Limit(limit).Preload("Author").
		Find(&moments).Error
	return moments, err
}

func (r *MomentRepositoryImpl) FindRecent(db *gorm.DB, limit int) ([]models.Moment, error) {
	var moments []models.Moment
	err := publicMoments(db).Order("created_at DESC").Limit(limit).Preload("Author").Find(&moments).Error
	return moments, err
}

func (r *MomentRepositoryImpl) FindLocations(db *gorm.DB, publicOnly bool) ([]CountByValue, error) {
	q := db.Model(&models.Moment{})
	if publicOnly {
		q = publicMoments(q)
	}
	var rows []CountByValue
	err := q.Select("location AS value, COUNT(*) AS count").
		Where("location <> ''").
		Group("location").
		Order("count DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *MomentRepositoryImpl) IncrementCounter(db *gorm.DB, id string, counter Counter, delta int) error {
	n, err := incrementCounter(db, &models.Moment{}, id, counter, delta)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrMomentNotFound
	}
	return nil
}

func (r *MomentRepositoryImpl) GetStats(db *gorm.DB) (*MomentStats, error) {
	stats := &MomentStats{}
	m := func() *gorm.DB { return db.Model(&models.Moment{}) }

	if err := m().Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := m().Where("visibility = ?", models.VisibilityPublic).Count(&stats.Public).Error; err != nil {
		return nil, err
	}
	if err := m().Where("is_active = ?", false).Count(&stats.Inactive).Error; err != nil {
		return nil, err
	}
	stats.Private = stats.Total - stats.Public

	var sums struct {
		Views int64
		Likes int64
	}
	if err := m().Select("COALESCE(SUM(view_count), 0) AS views, COALESCE(SUM(like_count), 0) AS likes").
		Scan(&sums).Error; err != nil {
		return nil, err
	}
	stats.TotalViews = sums.Views
	stats.TotalLikes = sums.Likes
	return stats, nil
}
