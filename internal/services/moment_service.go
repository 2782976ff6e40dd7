package services

import (
	"gorm.io/gorm"

	"miaoyou_backend/internal/models"
	"miaoyou_backend/internal/repositories"
	"miaoyou_backend/internal/services/dto"
	"miaoyou_backend/pkg/apperrors"
)

type MomentService interface {
	ListPublic(db *gorm.DB, query *dto.MomentListQuery) (*dto.ListResponse[models.Moment], error)
	GetRecent(db *gorm.DB, limit int) ([]models.Moment, error)
	GetPopular(db *gorm.DB, limit int) ([]models.Moment, error)
	GetLocations(db *gorm.DB) ([]repositories.CountByValue, error)
	GetMoment(db *gorm.DB, id string, publicOnly bool) (*models.Moment, error)
	RecordView(db *gorm.DB, id string) (*models.Moment, error)
	Like(db *gorm.DB, id string) (*dto.CounterResponse, error)

	ListAll(db *gorm.DB, query *dto.MomentListQuery) (*dto.ListResponse[models.Moment], error)
	CreateMoment(db *gorm.DB, authorID string, req *dto.CreateMomentRequest) (*models.Moment, error)
	UpdateMoment(db *gorm.DB, userID, role, id string, req *dto.UpdateMomentRequest) (*models.Moment, error)
	DeleteMoment(db *gorm.DB, userID, role, id string) error
	ToggleStatus(db *gorm.DB, id string) (*models.Moment, error)
	GetStats(db *gorm.DB) (*repositories.MomentStats, error)
}

type momentService struct {
	momentRepo  repositories.MomentRepository
	commentRepo repositories.CommentRepository
}

func NewMomentService(momentRepo repositories.MomentRepository, commentRepo repositories.CommentRepository) MomentService {
	return &momentService{
		momentRepo:  momentRepo,
		commentRepo: commentRepo,
	}
}

func (s *momentService) ListPublic(db *gorm.DB, query *dto.MomentListQuery) (*dto.ListResponse[models.Moment], error) {
	return s.list(db, repositories.MomentFilter{
		ListParams: query.Params(),
		Visibility: models.VisibilityPublic,
		ActiveOnly: true,
		Location:   query.Location,
	})
}

func (s *momentService) ListAll(db *gorm.DB, query *dto.MomentListQuery) (*dto.ListResponse[models.Moment], error) {
	return s.list(db, repositories.MomentFilter{
		ListParams: query.Params(),
		Visibility: models.Visibility(query.Visibility),
		Location:   query.Location,
	})
}

func (s *momentService) list(db *gorm.DB, filter repositories.MomentFilter) (*dto.ListResponse[models.Moment], error) {
	moments, total, err := s.momentRepo.FindMoments(db, filter)
	if err != nil {
		return nil, handleRepoError(err)
	}
	return dto.NewListResponse(moments, total, filter.ListParams), nil
}

func (s *momentService) GetRecent(db *gorm.DB, limit int) ([]models.Moment, error) {
	moments, err := s.momentRepo.FindRecent(db, clampLimit(limit, defaultFeedLimit, maxFeedLimit))
	if err != nil {
		return nil, handleRepoError(err)
	}
	return moments, nil
}

func (s *momentService) GetPopular(db *gorm.DB, limit int) ([]models.Moment, error) {
	moments, err := s.momentRepo.FindPopular(db, clampLimit(limit, defaultFeedLimit, maxFeedLimit))
	if err != nil {
		return nil, handleRepoError(err)
	}
	return moments, nil
}

func (s *momentService) GetLocations(db *gorm.DB) ([]repositories.CountByValue, error) {
	rows, err := s.momentRepo.FindLocations(db, true)
	if err != nil {
		return nil, handleRepoError(err)
	}
	return rows, nil
}

// GetMoment; publicOnly скрывает приватные и выключенные записи.
func (s *momentService) GetMoment(db *gorm.DB, id string, publicOnly bool) (*models.Moment, error) {
	moment, err := s.momentRepo.FindByID(db, id)
	if err != nil {
		return nil, handleRepoError(err)
	}
	if publicOnly && (moment.Visibility != models.VisibilityPublic || !moment.IsActive) {
		return nil, apperrors.ErrNotFound(repositories.ErrMomentNotFound)
	}
	return moment, nil
}

func (s *momentService) RecordView(db *gorm.DB, id string) (*models.Moment, error) {
	moment, err := s.GetMoment(db, id, true)
	if err != nil {
		return nil, err
	}
	if err := s.momentRepo.IncrementCounter(db, id, repositories.CounterViews, 1); err != nil {
		return nil, handleRepoError(err)
	}
	moment.ViewCount++
	return moment, nil
}

func (s *momentService) Like(db *gorm.DB, id string) (*dto.CounterResponse, error) {
	moment, err := s.GetMoment(db, id, true)
	if err != nil {
		return nil, err
	}
	if err := s.momentRepo.IncrementCounter(db, id, repositories.CounterLikes, 1); err != nil {
		return nil, handleRepoError(err)
	}
	return &dto.CounterResponse{ID: id, Count: moment.LikeCount + 1}, nil
}

func (s *momentService) CreateMoment(db *gorm.DB, authorID string, req *dto.CreateMomentRequest) (*models.Moment, error) {
	visibility := models.Visibility(req.Visibility)
	if visibility == "" {
		visibility = models.VisibilityPublic
	}

	moment := &models.Moment{
		Content:    req.Content,
		Images:     orEmpty(req.Images),
		Location:   req.Location,
		Visibility: visibility,
		IsActive:   true,
		AuthorID:   authorID,
	}
	if err := s.momentRepo.CreateMoment(db, moment); err != nil {
		return nil, handleRepoError(err)
	}
	return moment, nil
}

func (s *momentService) UpdateMoment(db *gorm.DB, userID, role, id string, req *dto.UpdateMomentRequest) (*models.Moment, error) {
	tx, err := beginTx(db)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	moment, err := s.momentRepo.FindByID(tx, id)
	if err != nil {
		return nil, handleRepoError(err)
	}
	if err := checkOwner(moment.AuthorID, userID, role); err != nil {
		return nil, err
	}

	if req.Content != nil {
		moment.Content = *req.Content
	}
	if req.Images != nil {
		moment.Images = orEmpty(*req.Images)
	}
	if req.Location != nil {
		moment.Location = *req.Location
	}
	if req.Visibility != nil {
		moment.Visibility = models.Visibility(*req.Visibility)
	}

	if err := s.momentRepo.UpdateMoment(tx, moment); err != nil {
		return nil, handleRepoError(err)
	}
	if err := commitTx(tx); err != nil {
		return nil, err
	}
	return moment, nil
}

func (s *momentService) DeleteMoment(db *gorm.DB, userID, role, id string) error {
	tx, err := beginTx(db)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	moment, err := s.momentRepo.FindByID(tx, id)
	if err != nil {
		return handleRepoError(err)
	}
	if err := checkOwner(moment.AuthorID, userID, role); err != nil {
		return err
	}

	if err := s.commentRepo.DeleteByTarget(tx, models.TargetMoment, id); err != nil {
		return handleRepoError(err)
	}
	if err := s.momentRepo.DeleteMoment(tx, id); err != nil {
		return handleRepoError(err)
	}
	return commitTx(tx)
}

func (s *momentService) ToggleStatus(db *gorm.DB, id string) (*models.Moment, error) {
	moment, err := s.momentRepo.FindByID(db, id)
	if err != nil {
		return nil, handleRepoError(err)
	}
	moment.IsActive = !moment.IsActive
	if err := s.momentRepo.UpdateMoment(db, moment); err != nil {
		return nil, handleRepoError(err)
	}
	return moment, nil
}

func (s *momentService) GetStats(db *gorm.DB) (*repositories.MomentStats, error) {
	stats, err := s.momentRepo.GetStats(db)
	if err != nil {
		return nil, handleRepoError(err)
	}
	return stats, nil
}
