package services

import (
	"time"

	"gorm.io/gorm"

	"miaoyou_backend/internal/models"
	"miaoyou_backend/internal/repositories"
	"miaoyou_backend/internal/services/dto"
	"miaoyou_backend/pkg/apperrors"
)

const (
	defaultFeedLimit = 10
	maxFeedLimit     = 50
)

type ArticleService interface {
	// Public
	ListPublished(db *gorm.DB, query *dto.ArticleListQuery) (*dto.ListResponse[models.Article], error)
	GetRecommended(db *gorm.DB, limit int) ([]models.Article, error)
	GetPopular(db *gorm.DB, limit int) ([]models.Article, error)
	GetTags(db *gorm.DB) ([]repositories.TagCount, error)
	GetArticle(db *gorm.DB, id string, publicOnly bool) (*models.Article, error)
	RecordView(db *gorm.DB, id string) (*models.Article, error)
	Like(db *gorm.DB, id string) (*dto.CounterResponse, error)

	// Admin / author
	ListAll(db *gorm.DB, query *dto.ArticleListQuery) (*dto.ListResponse[models.Article], error)
	CreateArticle(db *gorm.DB, authorID string, req *dto.CreateArticleRequest) (*models.Article, error)
	UpdateArticle(db *gorm.DB, userID, role, id string, req *dto.UpdateArticleRequest) (*models.Article, error)
	DeleteArticle(db *gorm.DB, userID, role, id string) error
	GetStats(db *gorm.DB) (*repositories.ArticleStats, error)
}

type articleService struct {
	articleRepo  repositories.ArticleRepository
	categoryRepo repositories.CategoryRepository
	commentRepo  repositories.CommentRepository
	now          func() time.Time
}

func NewArticleService(
	articleRepo repositories.ArticleRepository,
	categoryRepo repositories.CategoryRepository,
	commentRepo repositories.CommentRepository,
) ArticleService {
	return &articleService{
		articleRepo:  articleRepo,
		categoryRepo: categoryRepo,
		commentRepo:  commentRepo,
		now:          time.Now,
	}
}

// ---------------- Public ----------------

func (s *articleService) ListPublished(db *gorm.DB, query *dto.ArticleListQuery) (*dto.ListResponse[models.Article], error) {
	filter := s.filter(query)
	filter.Status = models.ArticleStatusPublished
	filter.AuthorID = ""
	return s.list(db, filter)
}

func (s *articleService) GetRecommended(db *gorm.DB, limit int) ([]models.Article, error) {
	articles, err := s.articleRepo.FindRecommended(db, clampLimit(limit, defaultFeedLimit, maxFeedLimit))
	if err != nil {
		return nil, handleRepoError(err)
	}
	return articles, nil
}

func (s *articleService) GetPopular(db *gorm.DB, limit int) ([]models.Article, error) {
	articles, err := s.articleRepo.FindPopular(db, clampLimit(limit, defaultFeedLimit, maxFeedLimit))
	if err != nil {
		return nil, handleRepoError(err)
	}
	return articles, nil
}

func (s *articleService) GetTags(db *gorm.DB) ([]repositories.TagCount, error) {
	tags, err := s.articleRepo.FindTags(db, true)
	if err != nil {
		return nil, handleRepoError(err)
	}
	return tags, nil
}

// GetArticle; publicOnly скрывает неопубликованные статьи как несуществующие.
func (s *articleService) GetArticle(db *gorm.DB, id string, publicOnly bool) (*models.Article, error) {
	article, err := s.articleRepo.FindByID(db, id)
	if err != nil {
		return nil, handleRepoError(err)
	}
	if publicOnly && !article.IsPublished() {
		return nil, apperrors.ErrNotFound(repositories.ErrArticleNotFound)
	}
	return article, nil
}

// RecordView увеличивает view_count опубликованной статьи и возвращает ее.
func (s *articleService) RecordView(db *gorm.DB, id string) (*models.Article, error) {
	article, err := s.GetArticle(db, id, true)
	if err != nil {
		return nil, err
	}
	if err := s.articleRepo.IncrementCounter(db, id, repositories.CounterViews, 1); err != nil {
		return nil, handleRepoError(err)
	}
	article.ViewCount++
	return article, nil
}

func (s *articleService) Like(db *gorm.DB, id string) (*dto.CounterResponse, error) {
	article, err := s.GetArticle(db, id, true)
	if err != nil {
		return nil, err
	}
	if err := s.articleRepo.IncrementCounter(db, id, repositories.CounterLikes, 1); err != nil {
		return nil, handleRepoError(err)
	}
	return &dto.CounterResponse{ID: id, Count: article.LikeCount + 1}, nil
}

// ---------------- Admin ----------------

func (s *articleService) ListAll(db *gorm.DB, query *dto.ArticleListQuery) (*dto.ListResponse[models.Article], error) {
	return s.list(db, s.filter(query))
}

func (s *articleService) CreateArticle(db *gorm.DB, authorID string, req *dto.CreateArticleRequest) (*models.Article, error) {
	status := models.ArticleStatus(req.Status)
	if status == "" {
		status = models.ArticleStatusDraft
	}

	article := &models.Article{
		Title:         req.Title,
		Summary:       req.Summary,
		Content:       req.Content,
		Cover:         req.Cover,
		Tags:          orEmpty(req.Tags),
		Status:        status,
		IsRecommended: req.IsRecommended,
		IsTop:         req.IsTop,
		SortOrder:     req.SortOrder,
		AuthorID:      authorID,
		CategoryID:    req.CategoryID,
	}
	article.PublishedAt = publishedAt(nil, status, s.now())

	tx, err := beginTx(db)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.checkCategory(tx, article.CategoryID); err != nil {
		return nil, err
	}
	if err := s.articleRepo.CreateArticle(tx, article); err != nil {
		return nil, handleRepoError(err)
	}
	if err := commitTx(tx); err != nil {
		return nil, err
	}
	return article, nil
}

func (s *articleService) UpdateArticle(db *gorm.DB, userID, role, id string, req *dto.UpdateArticleRequest) (*models.Article, error) {
	tx, err := beginTx(db)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	article, err := s.articleRepo.FindByID(tx, id)
	if err != nil {
		return nil, handleRepoError(err)
	}
	if err := checkOwner(article.AuthorID, userID, role); err != nil {
		return nil, err
	}

	if req.Title != nil {
		article.Title = *req.Title
	}
	if req.Summary != nil {
		article.Summary = *req.Summary
	}
	if req.Content != nil {
		article.Content = *req.Content
	}
	if req.Cover != nil {
		article.Cover = *req.Cover
	}
	if req.Tags != nil {
		article.Tags = orEmpty(*req.Tags)
	}
	if req.Status != nil {
		article.Status = models.ArticleStatus(*req.Status)
		article.PublishedAt = publishedAt(article.PublishedAt, article.Status, s.now())
	}
	if req.IsRecommended != nil {
		article.IsRecommended = *req.IsRecommended
	}
	if req.IsTop != nil {
		article.IsTop = *req.IsTop
	}
	if req.SortOrder != nil {
		article.SortOrder = *req.SortOrder
	}
	if req.CategoryID != nil {
		if *req.CategoryID == "" {
			article.CategoryID = nil
		} else {
			article.CategoryID = req.CategoryID
		}
		article.Category = nil
		if err := s.checkCategory(tx, article.CategoryID); err != nil {
			return nil, err
		}
	}

	if err := s.articleRepo.UpdateArticle(tx, article); err != nil {
		return nil, handleRepoError(err)
	}
	if err := commitTx(tx); err != nil {
		return nil, err
	}
	return article, nil
}

func (s *articleService) DeleteArticle(db *gorm.DB, userID, role, id string) error {
	tx, err := beginTx(db)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	article, err := s.articleRepo.FindByID(tx, id)
	if err != nil {
		return handleRepoError(err)
	}
	if err := checkOwner(article.AuthorID, userID, role); err != nil {
		return err
	}

	if err := s.commentRepo.DeleteByTarget(tx, models.TargetArticle, id); err != nil {
		return handleRepoError(err)
	}
	if err := s.articleRepo.DeleteArticle(tx, id); err != nil {
		return handleRepoError(err)
	}
	return commitTx(tx)
}

func (s *articleService) GetStats(db *gorm.DB) (*repositories.ArticleStats, error) {
	stats, err := s.articleRepo.GetStats(db)
	if err != nil {
		return nil, handleRepoError(err)
	}
	return stats, nil
}

// ---------------- helpers ----------------

func (s *articleService) filter(query *dto.ArticleListQuery) repositories.ArticleFilter {
	return repositories.ArticleFilter{
		ListParams: query.Params(),
		Status:     models.ArticleStatus(query.Status),
		CategoryID: query.CategoryID,
		Tag:        query.Tag,
		AuthorID:   query.AuthorID,
	}
}

func (s *articleService) list(db *gorm.DB, filter repositories.ArticleFilter) (*dto.ListResponse[models.Article], error) {
	articles, total, err := s.articleRepo.FindArticles(db, filter)
	if err != nil {
		return nil, handleRepoError(err)
	}
	return dto.NewListResponse(articles, total, filter.ListParams), nil
}

func (s *articleService) checkCategory(db *gorm.DB, categoryID *string) error {
	if categoryID == nil {
		return nil
	}
	if _, err := s.categoryRepo.FindByID(db, *categoryID); err != nil {
		if apperrors.Is(err, repositories.ErrCategoryNotFound) {
			return apperrors.NewBadRequestError("Category does not exist")
		}
		return handleRepoError(err)
	}
	return nil
}
