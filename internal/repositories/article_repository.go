package repositories

import (
	"errors"
	"sort"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"miaoyou_backend/internal/models"
)

var ErrArticleNotFound = errors.New("article not found")

type ArticleFilter struct {
	ListParams
	Status        models.ArticleStatus
	CategoryID    string
	Tag           string
	AuthorID      string
	IsRecommended *bool
}

type ArticleStats struct {
	Total       int64 `json:"total"`
	Published   int64 `json:"published"`
	Drafts      int64 `json:"drafts"`
	Archived    int64 `json:"archived"`
	TotalViews  int64 `json:"total_views"`
	TotalLikes  int64 `json:"total_likes"`
	Recommended int64 `json:"recommended"`
}

type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

type ArticleRepository interface {
	CreateArticle(db *gorm.DB, article *models.Article) error
	FindByID(db *gorm.DB, id string) (*models.Article, error)
	UpdateArticle(db *gorm.DB, article *models.Article) error
	DeleteArticle(db *gorm.DB, id string) error
	FindArticles(db *gorm.DB, filter ArticleFilter) ([]models.Article, int64, error)
	FindRecommended(db *gorm.DB, limit int) ([]models.Article, error)
	FindPopular(db *gorm.DB, limit int) ([]models.Article, error)
	FindTags(db *gorm.DB, publishedOnly bool) ([]TagCount, error)
	IncrementCounter(db *gorm.DB, id string, counter Counter, delta int) error
	GetStats(db *gorm.DB) (*ArticleStats, error)
}

type ArticleRepositoryImpl struct{}

func NewArticleRepository() ArticleRepository {
	return &ArticleRepositoryImpl{}
}

func (r *ArticleRepositoryImpl) CreateArticle(db *gorm.DB, article *models.Article) error {
	return db.Create(article).Error
}

func (r *ArticleRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Article, error) {
	var article models.Article
	err := db.Preload("Author").Preload("Category").Where("id = ?", id).First(&article).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}
	return &article, nil
}

func (r *ArticleRepositoryImpl) UpdateArticle(db *gorm.DB, article *models.Article) error {
	result := db.Model(article).Select("*").Omit("created_at", "Author", "Category").Updates(article)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrArticleNotFound
	}
	return nil
}

func (r *ArticleRepositoryImpl) DeleteArticle(db *gorm.DB, id string) error {
	result := db.Where("id = ?", id).Delete(&models.Article{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrArticleNotFound
	}
	return nil
}

func (r *ArticleRepositoryImpl) FindArticles(db *gorm.DB, filter ArticleFilter) ([]models.Article, int64, error) {
	p := filter.Normalize()

	q := db.Model(&models.Article{})
	q = searchLike(q, p.Search, "title", "summary")
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.CategoryID != "" {
		q = q.Where("category_id = ?", filter.CategoryID)
	}
	if filter.AuthorID != "" {
		q = q.Where("author_id = ?", filter.AuthorID)
	}
	if filter.IsRecommended != nil {
		q = q.Where("is_recommended = ?", *filter.IsRecommended)
	}
	if filter.Tag != "" {
		q = q.Where(datatypes.JSONArrayQuery("tags").Contains(filter.Tag))
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
		"title":        "title",
		"sort_order":   "sort_order",
	}

	var articles []models.Article
	err := paginate(q.Order("is_top DESC"), p, sortable, "created_at").
		Omit("content").
		Preload("Author").Preload("Category").
		Find(&articles).Error
	if err != nil {
		return nil, 0, err
	}
	return articles, total, nil
}

func (r *ArticleRepositoryImpl) FindRecommended(db *gorm.DB, limit int) ([]models.Article, error) {
	var articles []models.Article
	err := db.Where("status = ? AND is_recommended = ?", models.ArticleStatusPublished, true).
		Omit("content").
		Order("sort_order DESC").Order("published_at DESC").
		Limit(limit).
		Find(&articles).Error
	return articles, err
}

func (r *ArticleRepositoryImpl) FindPopular(db *gorm.DB, limit int) ([]models.Article, error) {
	var articles []models.Article
	err := db.Where("status = ?", models.ArticleStatusPublished).
		Omit("content").
		Order("view_count DESC").Order("like_count DESC").
		Limit(limit).
		Find(&articles).Error
	return articles, err
}

// FindTags собирает теги в приложении: разбор JSON-массивов в SQL у postgres и mysql разный.
func (r *ArticleRepositoryImpl) FindTags(db *gorm.DB, publishedOnly bool) ([]TagCount, error) {
	q := db.Model(&models.Article{}).Select("tags")
	if publishedOnly {
		q = q.Where("status = ?", models.ArticleStatusPublished)
	}

	var rows []models.Article
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	counts := map[string]int{}
	for _, a := range rows {
		for _, tag := range a.Tags {
			if tag != "" {
				counts[tag]++
			}
		}
	}

	tags := make([]TagCount, 0, len(counts))
	for tag, n := range counts {
		tags = append(tags, TagCount{Tag: tag, Count: n})
	}
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].Count != tags[j].Count {
			return tags[i].Count > tags[j].Count
		}
		return tags[i].Tag < tags[j].Tag
	})
	return tags, nil
}

func (r *ArticleRepositoryImpl) IncrementCounter(db *gorm.DB, id string, counter Counter, delta int) error {
	n, err := incrementCounter(db, &models.Article{}, id, counter, delta)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrArticleNotFound
	}
	return nil
}

func (r *ArticleRepositoryImpl) GetStats(db *gorm.DB) (*ArticleStats, error) {
	stats := &ArticleStats{}
	m := func() *gorm.DB { return db.Model(&models.Article{}) }

	if err := m().Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := m().Where("status = ?", models.ArticleStatusPublished).Count(&stats.Published).Error; err != nil {
		return nil, err
	}
	if err := m().Where("status = ?", models.ArticleStatusDraft).Count(&stats.Drafts).Error; err != nil {
		return nil, err
	}
	if err := m().Where("status = ?", models.ArticleStatusArchived).Count(&stats.Archived).Error; err != nil {
		return nil, err
	}
	if err := m().Where("is_recommended = ?", true).Count(&stats.Recommended).Error; err != nil {
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
	return stats, nil
}
