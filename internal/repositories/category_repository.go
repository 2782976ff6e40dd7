package repositories

import (
	"errors"

	"gorm.io/gorm"

	"miaoyou_backend/internal/models"
)

var (
	ErrCategoryNotFound      = errors.New("category not found")
	ErrCategoryAlreadyExists = errors.New("category with this name already exists")
)

type CategoryRepository interface {
	CreateCategory(db *gorm.DB, category *models.Category) error
	FindByID(db *gorm.DB, id string) (*models.Category, error)
	ExistsByName(db *gorm.DB, name, excludeID string) (bool, error)
	FindCategories(db *gorm.DB, activeOnly bool) ([]models.Category, error)
	FindCategoriesWithCount(db *gorm.DB, activeOnly bool) ([]models.Category, error)
	UpdateCategory(db *gorm.DB, category *models.Category) error
	DeleteCategory(db *gorm.DB, id string) error
	CountArticles(db *gorm.DB, categoryID string) (int64, error)
}

type CategoryRepositoryImpl struct{}

func NewCategoryRepository() CategoryRepository {
	return &CategoryRepositoryImpl{}
}

func (r *CategoryRepositoryImpl) CreateCategory(db *gorm.DB, category *models.Category) error {
	exists, err := r.ExistsByName(db, category.Name, "")
	if err != nil {
		return err
	}
	if exists {
		return ErrCategoryAlreadyExists
	}
	return db.Create(category).Error
}

func (r *CategoryRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Category, error) {
	var category models.Category
	if err := db.Where("id = ?", id).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (r *CategoryRepositoryImpl) ExistsByName(db *gorm.DB, name, excludeID string) (bool, error) {
	var count int64
	q := db.Model(&models.Category{}).Where("name = ?", name)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *CategoryRepositoryImpl) FindCategories(db *gorm.DB, activeOnly bool) ([]models.Category, error) {
	var categories []models.Category
	q := db.Model(&models.Category{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	err := q.Order("sort_order ASC").Order("created_at ASC").Find(&categories).Error
	return categories, err
}

// FindCategoriesWithCount дополняет категории числом опубликованных статей.
func (r *CategoryRepositoryImpl) FindCategoriesWithCount(db *gorm.DB, activeOnly bool) ([]models.Category, error) {
	categories, err := r.FindCategories(db, activeOnly)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		CategoryID string
		Count      int64
	}
	if err := db.Model(&models.Article{}).
		Select("category_id, COUNT(*) AS count").
		Where("status = ? AND category_id IS NOT NULL", models.ArticleStatusPublished).
		Group("category_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.CategoryID] = row.Count
	}
	for i := range categories {
		categories[i].ArticleCount = counts[categories[i].ID]
	}
	return categories, nil
}

func (r *CategoryRepositoryImpl) UpdateCategory(db *gorm.DB, category *models.Category) error {
	result := db.Model(category).Select("*").Omit("created_at").Updates(category)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (r *CategoryRepositoryImpl) DeleteCategory(db *gorm.DB, id string) error {
	result := db.Where("id = ?", id).Delete(&models.Category{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (r *CategoryRepositoryImpl) CountArticles(db *gorm.DB, categoryID string) (int64, error) {
	var count int64
	err := db.Model(&models.Article{}).Where("category_id = ?", categoryID).Count(&count).Error
	return count, err
}
