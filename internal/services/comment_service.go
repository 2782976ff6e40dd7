package services

import (
	"gorm.io/gorm"

	"miaoyou_backend/internal/models"
	"miaoyou_backend/internal/repositories"
	"miaoyou_backend/internal/services/dto"
	"miaoyou_backend/pkg/apperrors"
)

// ClientMeta - данные клиента, сохраняемые вместе с комментарием
type ClientMeta struct {
	IPAddress string
	UserAgent string
}

// CommentNotifier получает гостевые комментарии, ушедшие на модерацию.
type CommentNotifier interface {
	PendingComment(comment *models.Comment)
}

type CommentService interface {
	ListByTarget(db *gorm.DB, targetType, targetID string, query *dto.ListQuery) (*dto.ListResponse[models.Comment], error)
	CreateComment(db *gorm.DB, userID string, req *dto.CreateCommentRequest, meta ClientMeta) (*models.Comment, error)
	UpdateComment(db *gorm.DB, userID, role, id string, req *dto.UpdateCommentRequest) (*models.Comment, error)
	DeleteComment(db *gorm.DB, userID, role, id string) error
	Like(db *gorm.DB, id string) (*dto.CounterResponse, error)

	ListAll(db *gorm.DB, query *dto.CommentListQuery) (*dto.ListResponse[models.Comment], error)
	GetStats(db *gorm.DB) (*repositories.CommentStats, error)
	SetStatus(db *gorm.DB, id, status string) (*models.Comment, error)
}

type commentService struct {
	commentRepo repositories.CommentRepository
	articleRepo repositories.ArticleRepository
	momentRepo  repositories.MomentRepository
	workRepo    repositories.WorkRepository
	notifier    CommentNotifier
}

func NewCommentService(
	commentRepo repositories.CommentRepository,
	articleRepo repositories.ArticleRepository,
	momentRepo repositories.MomentRepository,
	workRepo repositories.WorkRepository,
	notifier CommentNotifier,
) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		articleRepo: articleRepo,
		momentRepo:  momentRepo,
		workRepo:    workRepo,
		notifier:    notifier,
	}
}

func (s *commentService) ListByTarget(db *gorm.DB, targetType, targetID string, query *dto.ListQuery) (*dto.ListResponse[models.Comment], error) {
	t := models.TargetType(targetType)
	if !t.IsValid() {
		return nil, apperrors.NewBadRequestError("Unknown comment target type: " + targetType)
	}

	params := query.Params()
	comments, total, err := s.commentRepo.FindByTarget(db, t, targetID, params)
	if err != nil {
		return nil, handleRepoError(err)
	}
	return dto.NewListResponse(comments, total, params), nil
}

// CreateComment: комментарии гостей уходят на модерацию, авторизованных
// пользователей публикуются сразу и увеличивают comment_count цели.
func (s *commentService) CreateComment(db *gorm.DB, userID string, req *dto.CreateCommentRequest, meta ClientMeta) (*models.Comment, error) {
	if userID == "" && req.GuestName == "" {
		return nil, apperrors.ValidationError(map[string]string{"guest_name": "This field is required for anonymous comments"})
	}

	targetType := models.TargetType(req.TargetType)
	comment := &models.Comment{
		Content:    req.Content,
		TargetType: targetType,
		TargetID:   req.TargetID,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
		Status:     models.CommentStatusPending,
	}
	if userID != "" {
		comment.AuthorID = &userID
		comment.Status = models.CommentStatusApproved
	} else {
		comment.GuestName = req.GuestName
		comment.GuestEmail = req.GuestEmail
		comment.GuestWebsite = req.GuestWebsite
	}

	tx, err := beginTx(db)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.checkTarget(tx, targetType, req.TargetID); err != nil {
		return nil, err
	}

	if req.ParentID != nil {
		parent, err := s.commentRepo.FindByID(tx, *req.ParentID)
		if err != nil {
			return nil, handleRepoError(err)
		}
		if parent.TargetType != targetType || parent.TargetID != req.TargetID {
			return nil, apperrors.NewBadRequestError("Parent comment belongs to another target")
		}
		// ответы хранятся одним уровнем под корневым комментарием
		rootID := parent.ID
		if parent.ParentID != nil {
			rootID = *parent.ParentID
		}
		comment.ParentID = &rootID
	}

	if err := s.commentRepo.CreateComment(tx, comment); err != nil {
		return nil, handleRepoError(err)
	}
	if comment.Status == models.CommentStatusApproved {
		if err := s.adjustCount(tx, targetType, req.TargetID, 1); err != nil {
			return nil, err
		}
	}
	if err := commitTx(tx); err != nil {
		return nil, err
	}

	if comment.Status == models.CommentStatusPending && s.notifier != nil {
		s.notifier.PendingComment(comment)
	}
	return comment, nil
}

func (s *commentService) UpdateComment(db *gorm.DB, userID, role, id string, req *dto.UpdateCommentRequest) (*models.Comment, error) {
	comment, err := s.commentRepo.FindByID(db, id)
	if err != nil {
		return nil, handleRepoError(err)
	}
	if err := checkOwner(authorOf(comment), userID, role); err != nil {
		return nil, err
	}

	comment.Content = req.Content
	if err := s.commentRepo.UpdateComment(db, comment); err != nil {
		return nil, handleRepoError(err)
	}
	return comment, nil
}

func (s *commentService) DeleteComment(db *gorm.DB, userID, role, id string) error {
	tx, err := beginTx(db)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	comment, err := s.commentRepo.FindByID(tx, id)
	if err != nil {
		return handleRepoError(err)
	}
	if err := checkOwner(authorOf(comment), userID, role); err != nil {
		return err
	}

	removed, err := s.commentRepo.DeleteComment(tx, id)
	if err != nil {
		return handleRepoError(err)
	}
	if err := s.adjustCount(tx, comment.TargetType, comment.TargetID, -int(removed)); err != nil {
		return err
	}
	return commitTx(tx)
}

func (s *commentService) Like(db *gorm.DB, id string) (*dto.CounterResponse, error) {
	comment, err := s.commentRepo.FindByID(db, id)
	if err != nil {
		return nil, handleRepoError(err)
	}
	if comment.Status != models.CommentStatusApproved {
		return nil, apperrors.ErrNotFound(repositories.ErrCommentNotFound)
	}
	if err := s.commentRepo.IncrementLikes(db, id); err != nil {
		return nil, handleRepoError(err)
	}
	return &dto.CounterResponse{ID: id, Count: comment.LikeCount + 1}, nil
}

func (s *commentService) ListAll(db *gorm.DB, query *dto.CommentListQuery) (*dto.ListResponse[models.Comment], error) {
	params := query.Params()
	comments, total, err := s.commentRepo.FindComments(db, repositories.CommentFilter{
		ListParams: params,
		Status:     models.CommentStatus(query.Status),
		TargetType: models.TargetType(query.TargetType),
		TargetID:   query.TargetID,
	})
	if err != nil {
		return nil, handleRepoError(err)
	}
	return dto.NewListResponse(comments, total, params), nil
}

func (s *commentService) GetStats(db *gorm.DB) (*repositories.CommentStats, error) {
	stats, err := s.commentRepo.GetStats(db)
	if err != nil {
		return nil, handleRepoError(err)
	}
	return stats, nil
}

// SetStatus модерирует комментарий; переход в approved и из него
// меняет comment_count цели.
func (s *commentService) SetStatus(db *gorm.DB, id, status string) (*models.Comment, error) {
	next := models.CommentStatus(status)
	if !next.IsValid() {
		return nil, apperrors.ErrInvalidStatus("comment", "Unknown comment status: "+status)
	}

	tx, err := beginTx(db)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	comment, err := s.commentRepo.FindByID(tx, id)
	if err != nil {
		return nil, handleRepoError(err)
	}

	delta := 0
	switch {
	case comment.Status == next:
		return comment, nil
	case next == models.CommentStatusApproved:
		delta = 1
	case comment.Status == models.CommentStatusApproved:
		delta = -1
	}

	comment.Status = next
	if err := s.commentRepo.UpdateComment(tx, comment); err != nil {
		return nil, handleRepoError(err)
	}
	if err := s.adjustCount(tx, comment.TargetType, comment.TargetID, delta); err != nil {
		return nil, err
	}
	if err := commitTx(tx); err != nil {
		return nil, err
	}
	return comment, nil
}

// checkTarget проверяет, что цель существует и видна публично.
func (s *commentService) checkTarget(db *gorm.DB, targetType models.TargetType, targetID string) error {
	switch targetType {
	case models.TargetArticle:
		article, err := s.articleRepo.FindByID(db, targetID)
		if err != nil {
			return handleRepoError(err)
		}
		if !article.IsPublished() {
			return apperrors.ErrNotFound(repositories.ErrArticleNotFound)
		}
	case models.TargetMoment:
		moment, err := s.momentRepo.FindByID(db, targetID)
		if err != nil {
			return handleRepoError(err)
		}
		if moment.Visibility != models.VisibilityPublic || !moment.IsActive {
			return apperrors.ErrNotFound(repositories.ErrMomentNotFound)
		}
	case models.TargetWork:
		work, err := s.workRepo.FindByID(db, targetID)
		if err != nil {
			return handleRepoError(err)
		}
		if work.Status != models.ArticleStatusPublished {
			return apperrors.ErrNotFound(repositories.ErrWorkNotFound)
		}
	default:
		return apperrors.NewBadRequestError("Unknown comment target type: " + string(targetType))
	}
	return nil
}

func (s *commentService) adjustCount(db *gorm.DB, targetType models.TargetType, targetID string, delta int) error {
	if delta == 0 {
		return nil
	}

	var err error
	switch targetType {
	case models.TargetArticle:
		err = s.articleRepo.IncrementCounter(db, targetID, repositories.CounterComments, delta)
	case models.TargetMoment:
		err = s.momentRepo.IncrementCounter(db, targetID, repositories.CounterComments, delta)
	case models.TargetWork:
		err = s.workRepo.IncrementCounter(db, targetID, repositories.CounterComments, delta)
	}
	if err != nil {
		// цель могла быть удалена раньше комментария
		if apperrors.Is(err, repositories.ErrArticleNotFound) ||
			apperrors.Is(err, repositories.ErrMomentNotFound) ||
			apperrors.Is(err, repositories.ErrWorkNotFound) {
			return nil
		}
		return handleRepoError(err)
	}
	return nil
}

func authorOf(c *models.Comment) string {
	if c.AuthorID == nil {
		return ""
	}
	return *c.AuthorID
}
