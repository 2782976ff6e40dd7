package repositories

import (
	"errors"
	"sort"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"miaoyou_backend/internal/models"
)

var ErrWorkNotFound = errors.New("work not found")

type WorkFilter struct {
	ListParams
	Status     models.ArticleStatus
	Category   models.WorkCategory
	Technology string
	IsFeatured *bool
}

type WorkStats struct {
	Total      int64            `json:"total"`
	Published  int64            `json:"published"`
	Featured   int64            `json:"featured"`
	TotalViews int64            `json:"total_views"`
	TotalLikes int64            `json:"total_likes"`
	ByCategory map[string]int64 `json:"by_category"`
}

type WorkRepository interface {
	CreateWork(db *gorm.DB, work *models.Work) error
	FindByID(db *gorm.DB, id string) (*models.Work, error)
	UpdateWork(db *gorm.DB, work *models.Work) error
	DeleteWork(db *gorm.DB, id string) error
	FindWorks(db *gorm.DB, filter WorkFilter) ([]models.Work, int64, error)
	FindFeatured(db *gorm.DB, limit int) ([]models.Work, error)
	FindPopular(db *gorm.DB, limit int) ([]models.Work, error)
	FindRecent(db *gorm.DB, limit int) ([]models.Work, error)
	CountByCategory(db *gorm.DB, publishedOnly bool) ([]CountByValue, error)
	FindTechnologies(db *gorm.DB, publishedOnly bool) ([]CountByValue, error)
	IncrementCounter(db *gorm.DB, id string, counter Counter, delta int) error
	GetStats(db *gorm.DB) (*WorkStats, error)
}

type WorkRepositoryImpl struct{}

func NewWorkRepository() WorkRepository {
	return &WorkRepositoryImpl{}
}

func (r *WorkRepositoryImpl) CreateWork(db *gorm.DB, work *models.Work) error {
	return db.Create(work).Error
}

func (r *WorkRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Work, error) {
	var work models.Work
	if err := db.Preload("Author").Where("id = ?", id).First(&work).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkNotFound
		}
		return nil, err
	}
	return &work, nil
}

func (r *WorkRepositoryImpl) UpdateWork(db *gorm.DB, work *models.Work) error {
	result := db.Model(work).Select("*").Omit("created_at", "Author").Updates(work)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrWorkNotFound
	}
	return nil
}

func (r *WorkRepositoryImpl) DeleteWork(db *gorm.DB, id string) error {
	result := db.Where("id = ?", id).Delete(&models.Work{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrWorkNotFound
	}
	return nil
}

func publishedWorks(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", models.ArticleStatusPublished)
}

func (r *WorkRepositoryImpl) FindWorks(db *gorm.DB, filter WorkFilter) ([]models.Work, int64, error) {
	p := filter.Normalize()

	q := db.Model(&models.Work{})
	q = searchLike(q, p.Search, "title", "description")
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.IsFeatured != nil {
		q = q.Where("is_featured = ?", *filter.IsFeatured)
	}
	if filter.Technology != "" {
		q = q.Where(datatypes.JSONArrayQuery("technologies").Contains(filter.Technology))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortable := map[string]string{
		"created_at":   "created_at",
		"published_at": "published_at",
		"view_count":   "view_count",
		"like_count":   "like_count",
		"sort_order":   "sort_order",
		"title":        "title",
	}
	var works []models.Work
	if err := paginate(q, p, sortable, "sort_order").Preload("Author").Find(&works).Error; err != nil {
		return nil, 0, err
	}
	return works, total, nil
}

func (r *WorkRepositoryImpl) FindFeatured(db *gorm.DB, limit int) ([]models.Work, error) {
	var works []models.Work
	err := publishedWorks(db).Where("is_featured = ?", true).
		Order("sort_order DESC").Order("published_at DESC").
		Limit(limit).Find(&works).Error
	return works, err
}

func (r *WorkRepositoryImpl) FindPopular(db *gorm.DB, limit int) ([]models.Work, error) {
	var works []models.Work
	err := publishedWorks(db).Order("view_count DESC").Order("like_count DESC").Limit(limit).Find(&works).Error
	return works, err
}

func (r *WorkRepositoryImpl) FindRecent(db *gorm.DB, limit int) ([]models.Work, error) {
	var works []models.Work
	err := publishedWorks(db).Order("published_at DESC").Limit(limit).Find(&works).Error
	return works, err
}

func (r *WorkRepositoryImpl) CountByCategory(db *gorm.DB, publishedOnly bool) ([]CountByValue, error) {
	q := db.Model(&models.Work{})
	if publishedOnly {
		q = publishedWorks(q)
	}
	var rows []CountByValue
	err := q.Select("category AS value, COUNT(*) AS count").Group("category").Order("count DESC").Scan(&rows).Error
	return rows, err
}

// FindTechnologies считает технологии в приложении, как и теги статей.
func (r *WorkRepositoryImpl) FindTechnologies(db *gorm.DB, publishedOnly bool) ([]CountByValue, error) {
	q := db.Model(&models.Work{}).Select("technologies")
	if publishedOnly {
		q = publishedWorks(q)
	}
	var works []models.Work
	if err := q.Find(&works).Error; err != nil {
		return nil, err
	}

	counts := map[string]int64{}
	for _, w := range works {
		for _, tech := range w.Technologies {
			if tech != "" {
				counts[tech]++
			}
		}
	}
	rows := make([]CountByValue, 0, len(counts))
	for tech, n := range counts {
		rows = append(rows, CountByValue{Value: tech, Count: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Value < rows[j].Value
	})
	return rows, nil
}

func (r *WorkRepositoryImpl) IncrementCounter(db *gorm.DB, id string, counter Counter, delta int) error {
	n, err := incrementCounter(db, &models.Work{}, id, counter, delta)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrWorkNotFound
	}
	return nil
}

func (r *WorkRepositoryImpl) GetStats(db *gorm.DB) (*WorkStats, error) {
	stats := &WorkStats{ByCategory: map[string]int64{}}
	m := func() *gorm.DB { return db.Model(&models.Work{}) }

	if err := m().Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := publishedWorks(m()).Count(&stats.Published).Error; err != nil {
		return nil, err
	}
	if err := m().Where("is_featured = ?", true).Count(&stats.Featured).Error; err != nil {
		return nil, err
	}

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

	byCategory, err := r.CountByCategory(db, false)
	if err != nil {
		return nil, err
	}
	for _, row := range byCategory {
		stats.ByCategory[row.Value] = row.Count
	}
	return stats, nil
}
