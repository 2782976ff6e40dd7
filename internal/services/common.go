package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"miaoyou_backend/internal/auth"
	"miaoyou_backend/internal/models"
	"miaoyou_backend/internal/repositories"
	"miaoyou_backend/pkg/apperrors"
)

// handleRepoError переводит sentinel-ошибки репозиториев в AppError.
func handleRepoError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperrors.AsAppError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, repositories.ErrUserNotFound),
		errors.Is(err, repositories.ErrCategoryNotFound),
		errors.Is(err, repositories.ErrArticleNotFound),
		errors.Is(err, repositories.ErrCommentNotFound),
		errors.Is(err, repositories.ErrMomentNotFound),
		errors.Is(err, repositories.ErrWorkNotFound):
		return apperrors.ErrNotFound(err)
	case errors.Is(err, repositories.ErrUserAlreadyExists),
		errors.Is(err, repositories.ErrCategoryAlreadyExists):
		return apperrors.ErrAlreadyExists(err)
	}
	return apperrors.InternalError(err)
}

func beginTx(db *gorm.DB) (*gorm.DB, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	return tx, nil
}

func commitTx(tx *gorm.DB) error {
	if err := tx.Commit().Error; err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

// publishedAt выставляет дату публикации при первом переходе в published.
func publishedAt(current *time.Time, status models.ArticleStatus, now time.Time) *time.Time {
	if status == models.ArticleStatusPublished && current == nil {
		return &now
	}
	return current
}

func checkOwner(ownerID, userID, role string) error {
	if !auth.CanModify(ownerID, userID, role) {
		return apperrors.ErrNotOwner
	}
	return nil
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
