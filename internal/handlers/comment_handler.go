package handlers

import (
	"net/http"

	"miaoyou_backend/internal/models"
	"miaoyou_backend/internal/services"
	"miaoyou_backend/internal/services/dto"
	"miaoyou_backend/internal/tracker"
	"miaoyou_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	*BaseHandler
	commentService services.CommentService
}

func NewCommentHandler(base *BaseHandler, commentService services.CommentService) *CommentHandler {
	return &CommentHandler{
		BaseHandler:    base,
		commentService: commentService,
	}
}

func (h *CommentHandler) RegisterRoutes(g RouteGroups) {
	// Гости и авторизованные пользователи
	public := g.Public.Group("/comments")
	{
		public.GET("/:targetType/:targetId", h.ListByTarget)
		public.POST("", h.CreateComment)
		public.POST("/:id/like", h.Like)
	}

	authed := g.Auth.Group("/comments")
	{
		authed.PUT("/:id", h.UpdateComment)
		authed.DELETE("/:id", h.DeleteComment)
	}

	admin := g.Admin.Group("/comments")
	{
		admin.GET("", h.ListAll)
		admin.GET("/stats", h.GetStats)
		admin.PUT("/:id/status", h.SetStatus)
		admin.DELETE("/:id", h.DeleteComment)
	}
}

// ListByTarget godoc
// @Summary Одобренные комментарии к статье, моменту или работе
// @Description Ответы вложены в корневой комментарий
// @Tags comments
// @Produce json
// @Param targetType path string true "article | moment | work"
// @Param targetId path string true "ID объекта"
// @Success 200 {object} dto.ListResponse[models.Comment]
// @Router /api/comments/{targetType}/{targetId} [get]
func (h *CommentHandler) ListByTarget(c *gin.Context) {
	targetType := c.Param("targetType")
	if !models.TargetType(targetType).IsValid() {
		h.HandleServiceError(c, apperrors.NewBadRequestError("Unknown target type: "+targetType))
		return
	}

	var query dto.ListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	comments, err := h.commentService.ListByTarget(h.GetDB(c), targetType, c.Param("targetId"), &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// CreateComment godoc
// @Summary Оставить комментарий
// @Description Комментарии гостей уходят на модерацию, комментарии пользователей публикуются сразу
// @Tags comments
// @Accept json
// @Produce json
// @Param comment body dto.CreateCommentRequest true "Комментарий"
// @Success 201 {object} models.Comment
// @Router /api/comments [post]
func (h *CommentHandler) CreateComment(c *gin.Context) {
	var req dto.CreateCommentRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	userID, _ := h.currentUser(c)
	meta := services.ClientMeta{
		IPAddress: tracker.ClientIP(c.Request),
		UserAgent: c.Request.UserAgent(),
	}

	comment, err := h.commentService.CreateComment(h.GetDB(c), userID, &req, meta)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.tracker.TrackCommentCreate(c.Request, req.TargetType, req.TargetID, userID)

	c.JSON(http.StatusCreated, comment)
}

func (h *CommentHandler) Like(c *gin.Context) {
	counter, err := h.commentService.Like(h.GetDB(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	userID, _ := h.currentUser(c)
	h.tracker.TrackLikeAction(c.Request, "comment", counter.ID, "like", userID)

	c.JSON(http.StatusOK, counter)
}

func (h *CommentHandler) UpdateComment(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateCommentRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	_, role := h.currentUser(c)
	comment, err := h.commentService.UpdateComment(h.GetDB(c), userID, role, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

// DeleteComment обслуживает и автора, и админа: права проверяет сервис.
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	_, role := h.currentUser(c)
	if err := h.commentService.DeleteComment(h.GetDB(c), userID, role, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Comment deleted"})
}

// --- Admin ---

func (h *CommentHandler) ListAll(c *gin.Context) {
	var query dto.CommentListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	comments, err := h.commentService.ListAll(h.GetDB(c), &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (h *CommentHandler) GetStats(c *gin.Context) {
	stats, err := h.commentService.GetStats(h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *CommentHandler) SetStatus(c *gin.Context) {
	var req dto.UpdateCommentStatusRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	comment, err := h.commentService.SetStatus(h.GetDB(c), c.Param("id"), req.Status)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}
