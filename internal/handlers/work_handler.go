package handlers

import (
	"net/http"

	"miaoyou_backend/internal/models"
	"miaoyou_backend/internal/services"
	"miaoyou_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type WorkHandler struct {
	*BaseHandler
	workService services.WorkService
}

func NewWorkHandler(base *BaseHandler, workService services.WorkService) *WorkHandler {
	return &WorkHandler{
		BaseHandler: base,
		workService: workService,
	}
}

func (h *WorkHandler) RegisterRoutes(g RouteGroups) {
	public := g.Public.Group("/works")
	{
		public.GET("", h.ListPublished)
		public.GET("/featured", h.GetFeatured)
		public.GET("/popular", h.GetPopular)
		public.GET("/recent", h.GetRecent)
		public.GET("/categories", h.GetCategories)
		public.GET("/technologies", h.GetTechnologies)
		public.GET("/category/:category", h.ListByCategory)
		public.GET("/:id", h.GetWork)
		public.POST("/:id/view", h.RecordView)
		public.POST("/:id/like", h.Like)
	}

	admin := g.Admin.Group("/works")
	{
		admin.GET("", h.ListAll)
		admin.GET("/stats", h.GetStats)
		admin.GET("/:id", h.GetAnyWork)
		admin.POST("", h.CreateWork)
		admin.PUT("/:id", h.UpdateWork)
		admin.DELETE("/:id", h.DeleteWork)
		admin.PATCH("/:id/toggle-featured", h.ToggleFeatured)
	}
}

// --- Public ---

func (h *WorkHandler) ListPublished(c *gin.Context) {
	var query dto.WorkListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}
	h.listPublished(c, &query)
}

func (h *WorkHandler) ListByCategory(c *gin.Context) {
	var query dto.WorkListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}
	query.Category = c.Param("category")
	if !h.validate(c, &query, "path") {
		return
	}
	h.listPublished(c, &query)
}

func (h *WorkHandler) listPublished(c *gin.Context, query *dto.WorkListQuery) {
	works, err := h.workService.ListPublished(h.GetDB(c), query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, works)
}

func (h *WorkHandler) GetFeatured(c *gin.Context) {
	h.feed(c, h.workService.GetFeatured)
}

func (h *WorkHandler) GetPopular(c *gin.Context) {
	h.feed(c, h.workService.GetPopular)
}

func (h *WorkHandler) GetRecent(c *gin.Context) {
	h.feed(c, h.workService.GetRecent)
}

func (h *WorkHandler) feed(c *gin.Context, load func(db *gorm.DB, limit int) ([]models.Work, error)) {
	works, err := load(h.GetDB(c), ParseQueryInt(c, "limit", 0))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": works})
}

func (h *WorkHandler) GetCategories(c *gin.Context) {
	categories, err := h.workService.GetCategories(h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": categories})
}

func (h *WorkHandler) GetTechnologies(c *gin.Context) {
	technologies, err := h.workService.GetTechnologies(h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": technologies})
}

func (h *WorkHandler) GetWork(c *gin.Context) {
	work, err := h.workService.GetWork(h.GetDB(c), c.Param("id"), true)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, work)
}

func (h *WorkHandler) RecordView(c *gin.Context) {
	work, err := h.workService.RecordView(h.GetDB(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	userID, _ := h.currentUser(c)
	h.tracker.TrackWorkView(c.Request, work.ID, work.Title, userID)

	c.JSON(http.StatusOK, dto.CounterResponse{ID: work.ID, Count: work.ViewCount})
}

func (h *WorkHandler) Like(c *gin.Context) {
	counter, err := h.workService.Like(h.GetDB(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	userID, _ := h.currentUser(c)
	h.tracker.TrackLikeAction(c.Request, string(models.TargetWork), counter.ID, "like", userID)

	c.JSON(http.StatusOK, counter)
}

// --- Admin ---

func (h *WorkHandler) ListAll(c *gin.Context) {
	var query dto.WorkListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	works, err := h.workService.ListAll(h.GetDB(c), &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, works)
}

func (h *WorkHandler) GetStats(c *gin.Context) {
	stats, err := h.workService.GetStats(h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *WorkHandler) GetAnyWork(c *gin.Context) {
	work, err := h.workService.GetWork(h.GetDB(c), c.Param("id"), false)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, work)
}

func (h *WorkHandler) CreateWork(c *gin.Context) {
	authorID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateWorkRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	work, err := h.workService.CreateWork(h.GetDB(c), authorID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, work)
}

func (h *WorkHandler) UpdateWork(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateWorkRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	_, role := h.currentUser(c)
	work, err := h.workService.UpdateWork(h.GetDB(c), userID, role, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, work)
}

func (h *WorkHandler) DeleteWork(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	_, role := h.currentUser(c)
	if err := h.workService.DeleteWork(h.GetDB(c), userID, role, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Work deleted"})
}

func (h *WorkHandler) ToggleFeatured(c *gin.Context) {
	work, err := h.workService.ToggleFeatured(h.GetDB(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, work)
}
