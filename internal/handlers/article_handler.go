package handlers

import (
	"net/http"

	"miaoyou_backend/internal/models"
	"miaoyou_backend/internal/services"
	"miaoyou_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type ArticleHandler struct {
	*BaseHandler
	articleService services.ArticleService
}

func NewArticleHandler(base *BaseHandler, articleService services.ArticleService) *ArticleHandler {
	return &ArticleHandler{
		BaseHandler:    base,
		articleService: articleService,
	}
}

func (h *ArticleHandler) RegisterRoutes(g RouteGroups) {
	public := g.Public.Group("/articles")
	{
		public.GET("", h.ListPublished)
		public.GET("/recommended", h.GetRecommended)
		public.GET("/popular", h.GetPopular)
		public.GET("/tags", h.GetTags)
		public.GET("/category/:categoryId", h.ListByCategory)
		public.GET("/tag/:tag", h.ListByTag)
		public.GET("/:id", h.GetArticle)
		public.POST("/:id/view", h.RecordView)
		public.POST("/:id/like", h.Like)
	}

	admin := g.Admin.Group("/articles")
	{
		admin.GET("", h.ListAll)
		admin.GET("/stats", h.GetStats)
		admin.GET("/:id", h.GetAnyArticle)
		admin.POST("", h.CreateArticle)
		admin.PUT("/:id", h.UpdateArticle)
		admin.DELETE("/:id", h.DeleteArticle)
	}
}

// --- Public ---

// ListPublished godoc
// @Summary Список опубликованных статей
// @Tags articles
// @Produce json
// @Param page query int false "Страница"
// @Param limit query int false "Размер страницы (макс. 100)"
// @Param search query string false "Поиск по заголовку и описанию"
// @Param category_id query string false "Категория"
// @Param tag query string false "Тег"
// @Success 200 {object} dto.ListResponse[models.Article]
// @Router /api/articles [get]
func (h *ArticleHandler) ListPublished(c *gin.Context) {
	var query dto.ArticleListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}
	h.listPublished(c, &query)
}

func (h *ArticleHandler) ListByCategory(c *gin.Context) {
	var query dto.ArticleListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}
	query.CategoryID = c.Param("categoryId")
	h.listPublished(c, &query)
}

func (h *ArticleHandler) ListByTag(c *gin.Context) {
	var query dto.ArticleListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}
	query.Tag = c.Param("tag")
	h.listPublished(c, &query)
}

func (h *ArticleHandler) listPublished(c *gin.Context, query *dto.ArticleListQuery) {
	articles, err := h.articleService.ListPublished(h.GetDB(c), query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, articles)
}

func (h *ArticleHandler) GetRecommended(c *gin.Context) {
	articles, err := h.articleService.GetRecommended(h.GetDB(c), ParseQueryInt(c, "limit", 0))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": articles})
}

func (h *ArticleHandler) GetPopular(c *gin.Context) {
	articles, err := h.articleService.GetPopular(h.GetDB(c), ParseQueryInt(c, "limit", 0))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": articles})
}

func (h *ArticleHandler) GetTags(c *gin.Context) {
	tags, err := h.articleService.GetTags(h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": tags})
}

func (h *ArticleHandler) GetArticle(c *gin.Context) {
	article, err := h.articleService.GetArticle(h.GetDB(c), c.Param("id"), true)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

// RecordView godoc
// @Summary Засчитать просмотр статьи
// @Description Увеличивает view_count и пишет событие article_view с заголовком статьи
// @Tags articles
// @Produce json
// @Param id path string true "ID статьи"
// @Success 200 {object} dto.CounterResponse
// @Failure 404 {object} apperrors.AppError
// @Router /api/articles/{id}/view [post]
func (h *ArticleHandler) RecordView(c *gin.Context) {
	article, err := h.articleService.RecordView(h.GetDB(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	userID, _ := h.currentUser(c)
	h.tracker.TrackArticleView(c.Request, article.ID, article.Title, userID)

	c.JSON(http.StatusOK, dto.CounterResponse{ID: article.ID, Count: article.ViewCount})
}

func (h *ArticleHandler) Like(c *gin.Context) {
	counter, err := h.articleService.Like(h.GetDB(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	userID, _ := h.currentUser(c)
	h.tracker.TrackLikeAction(c.Request, string(models.TargetArticle), counter.ID, "like", userID)

	c.JSON(http.StatusOK, counter)
}

// --- Admin ---

func (h *ArticleHandler) ListAll(c *gin.Context) {
	var query dto.ArticleListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	articles, err := h.articleService.ListAll(h.GetDB(c), &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, articles)
}

func (h *ArticleHandler) GetStats(c *gin.Context) {
	stats, err := h.articleService.GetStats(h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *ArticleHandler) GetAnyArticle(c *gin.Context) {
	article, err := h.articleService.GetArticle(h.GetDB(c), c.Param("id"), false)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

func (h *ArticleHandler) CreateArticle(c *gin.Context) {
	authorID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateArticleRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	article, err := h.articleService.CreateArticle(h.GetDB(c), authorID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, article)
}

func (h *ArticleHandler) UpdateArticle(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateArticleRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	_, role := h.currentUser(c)
	article, err := h.articleService.UpdateArticle(h.GetDB(c), userID, role, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

func (h *ArticleHandler) DeleteArticle(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	_, role := h.currentUser(c)
	if err := h.articleService.DeleteArticle(h.GetDB(c), userID, role, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Article deleted"})
}
