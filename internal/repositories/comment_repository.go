package repositories

import (
	"errors"

	"gorm.io/gorm"

	"miaoyou_backend/internal/models"
)

var ErrCommentNotFound = errors.New("comment not found")

type CommentFilter struct {
	ListParams
	Status     models.CommentStatus
	TargetType models.TargetType
	TargetID   string
}

type CommentStats struct {
	Total    int64            `json:"total"`
	Pending  int64            `json:"pending"`
	Approved int64            `json:"approved"`
	Rejected int64            `json:"rejected"`
	ByTarget map[string]int64 `json:"by_target"`
}

type CommentRepository interface {
	CreateComment(db *gorm.DB, comment *models.Comment) error
	FindByID(db *gorm.DB, id string) (*models.Comment, error)
	UpdateComment(db *gorm.DB, comment *models.Comment) error
	DeleteComment(db *gorm.DB, id string) (int64, error)
	DeleteByTarget(db *gorm.DB, targetType models.TargetType, targetID string) error
	FindByTarget(db *gorm.DB, targetType models.TargetType, targetID string, p ListParams) ([]models.Comment, int64, error)
	FindComments(db *gorm.DB, filter CommentFilter) ([]models.Comment, int64, error)
	IncrementLikes(db *gorm.DB, id string) error
	GetStats(db *gorm.DB) (*CommentStats, error)
}

type CommentRepositoryImpl struct{}

func NewCommentRepository() CommentRepository {
	return &CommentRepositoryImpl{}
}

func (r *CommentRepositoryImpl) CreateComment(db *gorm.DB, comment *models.Comment) error {
	return db.Create(comment).Error
}

func (r *CommentRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Comment, error) {
	var comment models.Comment
	if err := db.Preload("Author").Where("id = ?", id).First(&comment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return &comment, nil
}

func (r *CommentRepositoryImpl) UpdateComment(db *gorm.DB, comment *models.Comment) error {
	result := db.Model(comment).Select("*").Omit("created_at", "Author", "Replies").Updates(comment)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCommentNotFound
	}
	return nil
}

// DeleteComment удаляет комментарий вместе с ответами и возвращает число
// удаленных одобренных комментариев.
func (r *CommentRepositoryImpl) DeleteComment(db *gorm.DB, id string) (int64, error) {
	var approved int64
	if err := db.Model(&models.Comment{}).
		Where("(id = ? OR parent_id = ?) AND status = ?", id, id, models.CommentStatusApproved).
		Count(&approved).Error; err != nil {
		return 0, err
	}

	if err := db.Where("parent_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
		return 0, err
	}
	result := db.Where("id = ?", id).Delete(&models.Comment{})
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, ErrCommentNotFound
	}
	return approved, nil
}

// DeleteByTarget удаляет все комментарии сущности (при удалении самой сущности).
func (r *CommentRepositoryImpl) DeleteByTarget(db *gorm.DB, targetType models.TargetType, targetID string) error {
	return db.Where("target_type = ? AND target_id = ?", targetType, targetID).Delete(&models.Comment{}).Error
}

// FindByTarget возвращает одобренные комментарии верхнего уровня с одобренными ответами.
func (r *CommentRepositoryImpl) FindByTarget(db *gorm.DB, targetType models.TargetType, targetID string, p ListParams) ([]models.Comment, int64, error) {
	p = p.Normalize()

	q := db.Model(&models.Comment{}).
		Where("target_type = ? AND target_id = ? AND status = ? AND parent_id IS NULL",
			targetType, targetID, models.CommentStatusApproved)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []models.Comment
	err := paginate(q, p, map[string]string{"created_at": "created_at", "like_count": "like_count"}, "created_at").
		Preload("Author").
		Preload("Replies", func(db *gorm.DB) *gorm.DB {
			return db.Where("status = ?", models.CommentStatusApproved).Order("created_at ASC")
		}).
		Preload("Replies.Author").
		Find(&comments).Error
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

func (r *CommentRepositoryImpl) FindComments(db *gorm.DB, filter CommentFilter) ([]models.Comment, int64, error) {
	p := filter.Normalize()

	q := db.Model(&models.Comment{})
	q = searchLike(q, p.Search, "content", "guest_name")
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.TargetType != "" {
		q = q.Where("target_type = ?", filter.TargetType)
	}
	if filter.TargetID != "" {
		q = q.Where("target_id = ?", filter.TargetID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []models.Comment
	err := paginate(q, p, map[string]string{"created_at": "created_at", "like_count": "like_count"}, "created_at").
		Preload("Author").
		Find(&comments).Error
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

func (r *CommentRepositoryImpl) IncrementLikes(db *gorm.DB, id string) error {
	n, err := incrementCounter(db, &models.Comment{}, id, CounterLikes, 1)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCommentNotFound
	}
	return nil
}

func (r *CommentRepositoryImpl) GetStats(db *gorm.DB) (*CommentStats, error) {
	stats := &CommentStats{ByTarget: map[string]int64{}}

	var byStatus []CountByValue
	if err := db.Model(&models.Comment{}).
		Select("status AS value, COUNT(*) AS count").
		Group("status").
		Scan(&byStatus).Error; err != nil {
		return nil, err
	}
	for _, row := range byStatus {
		stats.Total += row.Count
		switch models.CommentStatus(row.Value) {
		case models.CommentStatusPending:
			stats.Pending = row.Count
		case models.CommentStatusApproved:
			stats.Approved = row.Count
		case models.CommentStatusRejected:
			stats.Rejected = row.Count
		}
	}

	var byTarget []CountByValue
	if err := db.Model(&models.Comment{}).
		Select("target_type AS value, COUNT(*) AS count").
		Group("target_type").
		Scan(&byTarget).Error; err != nil {
		return nil, err
	}
	for _, row := range byTarget {
		stats.ByTarget[row.Value] = row.Count
	}
	return stats, nil
}
