package services

import (
	"gorm.io/gorm"

	"miaoyou_backend/internal/models"
	"miaoyou_backend/internal/repositories"
	"miaoyou_backend/internal/services/dto"
	"miaoyou_backend/pkg/apperrors"
)

type CategoryService interface {
	ListCategories(db *gorm.DB, activeOnly bool) ([]models.Category, error)
	ListWithArticleCount(db *gorm.DB, activeOnly bool) ([]models.Category, error)
	GetCategory(db *gorm.DB, id string, activeOnly bool) (*models.Category, error)
	CreateCategory(db *gorm.DB, req *dto.CreateCategoryRequest) (*models.Category, error)
	UpdateCategory(db *gorm.DB, id string, req *dto.UpdateCategoryRequest) (*models.Category, error)
	DeleteCategory(db *gorm.DB, id string) error
	ToggleStatus(db *gorm.DB, id string) (*models.Category, error)
}

type categoryService struct {
	categoryRepo repositories.CategoryRepository
}

func NewCategoryService(categoryRepo repositories.CategoryRepository) CategoryService {
	return &categoryService{categoryRepo: categoryRepo}
}

func (s *categoryService) ListCategories(db *gorm.DB, activeOnly bool) ([]models.Category, error) {
	categories, err := s.categoryRepo.FindCategories(db, activeOnly)
	if err != nil {
		return nil, handleRepoError(err)
	}
	return categories, nil
}

func (s *categoryService) ListWithArticleCount(db *gorm.DB, activeOnly bool) ([]models.Category, error) {
	categories, err := s.categoryRepo.FindCategoriesWithCount(db, activeOnly)
	if err != nil {
		return nil, handleRepoError(err)
	}
	return categories, nil
}

// GetCategory; при activeOnly выключенная категория считается несуществующей.
func (s *categoryService) GetCategory(db *gorm.DB, id string, activeOnly bool) (*models.Category, error) {
	category, err := s.categoryRepo.FindByID(db, id)
	if err != nil {
		return nil, handleRepoError(err)
	}
	if activeOnly && !category.IsActive {
		return nil, apperrors.ErrNotFound(repositories.ErrCategoryNotFound)
	}
	return category, nil
}

func (s *categoryService) CreateCategory(db *gorm.DB, req *dto.CreateCategoryRequest) (*models.Category, error) {
	category := &models.Category{
		Name:        req.Name,
		Description: req.Description,
		Cover:       req.Cover,
		SortOrder:   req.SortOrder,
		IsActive:    true,
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	if err := s.categoryRepo.CreateCategory(db, category); err != nil {
		return nil, handleRepoError(err)
	}
	return category, nil
}

func (s *categoryService) UpdateCategory(db *gorm.DB, id string, req *dto.UpdateCategoryRequest) (*models.Category, error) {
	tx, err := beginTx(db)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	category, err := s.categoryRepo.FindByID(tx, id)
	if err != nil {
		return nil, handleRepoError(err)
	}

	if req.Name != nil && *req.Name != category.Name {
		exists, err := s.categoryRepo.ExistsByName(tx, *req.Name, id)
		if err != nil {
			return nil, handleRepoError(err)
		}
		if exists {
			return nil, apperrors.ErrAlreadyExists(repositories.ErrCategoryAlreadyExists)
		}
		category.Name = *req.Name
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	if req.Cover != nil {
		category.Cover = *req.Cover
	}
	if req.SortOrder != nil {
		category.SortOrder = *req.SortOrder
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	if err := s.categoryRepo.UpdateCategory(tx, category); err != nil {
		return nil, handleRepoError(err)
	}
	if err := commitTx(tx); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory запрещено, пока к категории привязаны статьи.
func (s *categoryService) DeleteCategory(db *gorm.DB, id string) error {
	tx, err := beginTx(db)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	count, err := s.categoryRepo.CountArticles(tx, id)
	if err != nil {
		return handleRepoError(err)
	}
	if count > 0 {
		return apperrors.ErrCategoryInUse.WithDetails(map[string]int64{"articles": count})
	}
	if err := s.categoryRepo.DeleteCategory(tx, id); err != nil {
		return handleRepoError(err)
	}
	return commitTx(tx)
}

func (s *categoryService) ToggleStatus(db *gorm.DB, id string) (*models.Category, error) {
	category, err := s.categoryRepo.FindByID(db, id)
	if err != nil {
		return nil, handleRepoError(err)
	}
	category.IsActive = !category.IsActive
	if err := s.categoryRepo.UpdateCategory(db, category); err != nil {
		return nil, handleRepoError(err)
	}
	return category, nil
}
