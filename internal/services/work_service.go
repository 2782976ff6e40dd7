package services

import (
	"time"

	"gorm.io/gorm"

	"miaoyou_backend/internal/models"
	"miaoyou_backend/internal/repositories"
	"miaoyou_backend/internal/services/dto"
	"miaoyou_backend/pkg/apperrors"
)

type WorkService interface {
	ListPublished(db *gorm.DB, query *dto.WorkListQuery) (*dto.ListResponse[models.Work], error)
	GetFeatured(db *gorm.DB, limit int) ([]models.Work, error)
	GetPopular(db *gorm.DB, limit int) ([]models.Work, error)
	GetRecent(db *gorm.DB, limit int) ([]models.Work, error)
	GetCategories(db *gorm.DB) ([]repositories.CountByValue, error)
	GetTechnologies(db *gorm.DB) ([]repositories.CountByValue, error)
	GetWork(db *gorm.DB, id string, publicOnly bool) (*models.Work, error)
	RecordView(db *gorm.DB, id string) (*models.Work, error)
	Like(db *gorm.DB, id string) (*dto.CounterResponse, error)

	ListAll(db *gorm.DB, query *dto.WorkListQuery) (*dto.ListResponse[models.Work], error)
	CreateWork(db *gorm.DB, authorID string, req *dto.CreateWorkRequest) (*models.Work, error)
	UpdateWork(db *gorm.DB, userID, role, id string, req *dto.UpdateWorkRequest) (*models.Work, error)
	DeleteWork(db *gorm.DB, userID, role, id string) error
	ToggleFeatured(db *gorm.DB, id string) (*models.Work, error)
	GetStats(db *gorm.DB) (*repositories.WorkStats, error)
}

type workService struct {
	workRepo    repositories.WorkRepository
	commentRepo repositories.CommentRepository
	now         func() time.Time
}

func NewWorkService(workRepo repositories.WorkRepository, commentRepo repositories.CommentRepository) WorkService {
	return &workService{
		workRepo:    workRepo,
		commentRepo: commentRepo,
		now:         time.Now,
	}
}

func (s *workService) ListPublished(db *gorm.DB, query *dto.WorkListQuery) (*dto.ListResponse[models.Work], error) {
	filter := s.filter(query)
	filter.Status = models.ArticleStatusPublished
	return s.list(db, filter)
}

func (s *workService) ListAll(db *gorm.DB, query *dto.WorkListQuery) (*dto.ListResponse[models.Work], error) {
	return s.list(db, s.filter(query))
}

func (s *workService) filter(query *dto.WorkListQuery) repositories.WorkFilter {
	return repositories.WorkFilter{
		ListParams: query.Params(),
		Status:     models.ArticleStatus(query.Status),
		Category:   models.WorkCategory(query.Category),
		Technology: query.Technology,
		IsFeatured: query.IsFeatured,
	}
}

func (s *workService) list(db *gorm.DB, filter repositories.WorkFilter) (*dto.ListResponse[models.Work], error) {
	works, total, err := s.workRepo.FindWorks(db, filter)
	if err != nil {
		return nil, handleRepoError(err)
	}
	return dto.NewListResponse(works, total, filter.ListParams), nil
}

func (s *workService) GetFeatured(db *gorm.DB, limit int) ([]models.Work, error) {
	works, err := s.workRepo.FindFeatured(db, clampLimit(limit, defaultFeedLimit, maxFeedLimit))
	if err != nil {
		return nil, handleRepoError(err)
	}
	return works, nil
}

func (s *workService) GetPopular(db *gorm.DB, limit int) ([]models.Work, error) {
	works, err := s.workRepo.FindPopular(db, clampLimit(limit, defaultFeedLimit, maxFeedLimit))
	if err != nil {
		return nil, handleRepoError(err)
	}
	return works, nil
}

func (s *workService) GetRecent(db *gorm.DB, limit int) ([]models.Work, error) {
	works, err := s.workRepo.FindRecent(db, clampLimit(limit, defaultFeedLimit, maxFeedLimit))
	if err != nil {
		return nil, handleRepoError(err)
	}
	return works, nil
}

// GetCategories возвращает все категории работ, включая пустые.
func (s *workService) GetCategories(db *gorm.DB) ([]repositories.CountByValue, error) {
	rows, err := s.workRepo.CountByCategory(db, true)
	if err != nil {
		return nil, handleRepoError(err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Value] = row.Count
	}
	result := make([]repositories.CountByValue, 0, len(models.WorkCategories()))
	for _, c := range models.WorkCategories() {
		result = append(result, repositories.CountByValue{Value: string(c), Count: counts[string(c)]})
	}
	return result, nil
}

func (s *workService) GetTechnologies(db *gorm.DB) ([]repositories.CountByValue, error) {
	rows, err := s.workRepo.FindTechnologies(db, true)
	if err != nil {
		return nil, handleRepoError(err)
	}
	return rows, nil
}

func (s *workService) GetWork(db *gorm.DB, id string, publicOnly bool) (*models.Work, error) {
	work, err := s.workRepo.FindByID(db, id)
	if err != nil {
		return nil, handleRepoError(err)
	}
	if publicOnly && work.Status != models.ArticleStatusPublished {
		return nil, apperrors.ErrNotFound(repositories.ErrWorkNotFound)
	}
	return work, nil
}

func (s *workService) RecordView(db *gorm.DB, id string) (*models.Work, error) {
	work, err := s.GetWork(db, id, true)
	if err != nil {
		return nil, err
	}
	if err := s.workRepo.IncrementCounter(db, id, repositories.CounterViews, 1); err != nil {
		return nil, handleRepoError(err)
	}
	work.ViewCount++
	return work, nil
}

func (s *workService) Like(db *gorm.DB, id string) (*dto.CounterResponse, error) {
	work, err := s.GetWork(db, id, true)
	if err != nil {
		return nil, err
	}
	if err := s.workRepo.IncrementCounter(db, id, repositories.CounterLikes, 1); err != nil {
		return nil, handleRepoError(err)
	}
	return &dto.CounterResponse{ID: id, Count: work.LikeCount + 1}, nil
}

func (s *workService) CreateWork(db *gorm.DB, authorID string, req *dto.CreateWorkRequest) (*models.Work, error) {
	status := models.ArticleStatus(req.Status)
	if status == "" {
		status = models.ArticleStatusDraft
	}

	work := &models.Work{
		Title:        req.Title,
		Description:  req.Description,
		Cover:        req.Cover,
		Images:       orEmpty(req.Images),
		DemoURL:      req.DemoURL,
		SourceURL:    req.SourceURL,
		Technologies: orEmpty(req.Technologies),
		Category:     models.WorkCategory(req.Category),
		Status:       status,
		IsFeatured:   req.IsFeatured,
		SortOrder:    req.SortOrder,
		PublishedAt:  publishedAt(nil, status, s.now()),
		AuthorID:     authorID,
	}
	if err := s.workRepo.CreateWork(db, work); err != nil {
		return nil, handleRepoError(err)
	}
	return work, nil
}

func (s *workService) UpdateWork(db *gorm.DB, userID, role, id string, req *dto.UpdateWorkRequest) (*models.Work, error) {
	tx, err := beginTx(db)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	work, err := s.workRepo.FindByID(tx, id)
	if err != nil {
		return nil, handleRepoError(err)
	}
	if err := checkOwner(work.AuthorID, userID, role); err != nil {
		return nil, err
	}

	if req.Title != nil {
		work.Title = *req.Title
	}
	if req.Description != nil {
		work.Description = *req.Description
	}
	if req.Cover != nil {
		work.Cover = *req.Cover
	}
	if req.Images != nil {
		work.Images = orEmpty(*req.Images)
	}
	if req.DemoURL != nil {
		work.DemoURL = *req.DemoURL
	}
	if req.SourceURL != nil {
		work.SourceURL = *req.SourceURL
	}
	if req.Technologies != nil {
		work.Technologies = orEmpty(*req.Technologies)
	}
	if req.Category != nil {
		work.Category = models.WorkCategory(*req.Category)
	}
	if req.Status != nil {
		work.Status = models.ArticleStatus(*req.Status)
		work.PublishedAt = publishedAt(work.PublishedAt, work.Status, s.now())
	}
	if req.IsFeatured != nil {
		work.IsFeatured = *req.IsFeatured
	}
	if req.SortOrder != nil {
		work.SortOrder = *req.SortOrder
	}

	if err := s.workRepo.UpdateWork(tx, work); err != nil {
		return nil, handleRepoError(err)
	}
	if err := commitTx(tx); err != nil {
		return nil, err
	}
	return work, nil
}

func (s *workService) DeleteWork(db *gorm.DB, userID, role, id string) error {
	tx, err := beginTx(db)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	work, err := s.workRepo.FindByID(tx, id)
	if err != nil {
		return handleRepoError(err)
	}
	if err := checkOwner(work.AuthorID, userID, role); err != nil {
		return err
	}

	if err := s.commentRepo.DeleteByTarget(tx, models.TargetWork, id); err != nil {
		return handleRepoError(err)
	}
	if err := s.workRepo.DeleteWork(tx, id); err != nil {
		return handleRepoError(err)
	}
	return commitTx(tx)
}

func (s *workService) ToggleFeatured(db *gorm.DB, id string) (*models.Work, error) {
	work, err := s.workRepo.FindByID(db, id)
	if err != nil {
		return nil, handleRepoError(err)
	}
	work.IsFeatured = !work.IsFeatured
	if err := s.workRepo.UpdateWork(db, work); err != nil {
		return nil, handleRepoError(err)
	}
	return work, nil
}

func (s *workService) GetStats(db *gorm.DB) (*repositories.WorkStats, error) {
	stats, err := s.workRepo.GetStats(db)
	if err != nil {
		return nil, handleRepoError(err)
	}
	return stats, nil
}
