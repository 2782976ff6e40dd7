package handlers

import (
	"net/http"

	"miaoyou_backend/internal/models"
	"miaoyou_backend/internal/services"
	"miaoyou_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type MomentHandler struct {
	*BaseHandler
	momentService services.MomentService
}

func NewMomentHandler(base *BaseHandler, momentService services.MomentService) *MomentHandler {
	return &MomentHandler{
		BaseHandler:   base,
		momentService: momentService,
	}
}

func (h *MomentHandler) RegisterRoutes(g RouteGroups) {
	public := g.Public.Group("/moments")
	{
		public.GET("", h.ListPublic)
		public.GET("/recent", h.GetRecent)
		public.GET("/popular", h.GetPopular)
		public.GET("/locations", h.GetLocations)
		public.GET("/location/:location", h.ListByLocation)
		public.GET("/:id", h.GetMoment)
		public.POST("/:id/view", h.RecordView)
		public.POST("/:id/like", h.Like)
	}

	// Свои моменты может вести любой авторизованный пользователь
	authed := g.Auth.Group("/moments")
	{
		authed.POST("", h.CreateMoment)
		authed.PUT("/:id", h.UpdateMoment)
		authed.DELETE("/:id", h.DeleteMoment)
	}

	admin := g.Admin.Group("/moments")
	{
		admin.GET("", h.ListAll)
		admin.GET("/stats", h.GetStats)
		admin.PATCH("/:id/toggle-status", h.ToggleStatus)
	}
}

// --- Public ---

func (h *MomentHandler) ListPublic(c *gin.Context) {
	var query dto.MomentListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}
	h.listPublic(c, &query)
}

func (h *MomentHandler) ListByLocation(c *gin.Context) {
	var query dto.MomentListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}
	query.Location = c.Param("location")
	h.listPublic(c, &query)
}

func (h *MomentHandler) listPublic(c *gin.Context, query *dto.MomentListQuery) {
	moments, err := h.momentService.ListPublic(h.GetDB(c), query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, moments)
}

func (h *MomentHandler) GetRecent(c *gin.Context) {
	moments, err := h.momentService.GetRecent(h.GetDB(c), ParseQueryInt(c, "limit", 0))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": moments})
}

func (h *MomentHandler) GetPopular(c *gin.Context) {
	moments, err := h.momentService.GetPopular(h.GetDB(c), ParseQueryInt(c, "limit", 0))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": moments})
}

func (h *MomentHandler) GetLocations(c *gin.Context) {
	locations, err := h.momentService.GetLocations(h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": locations})
}

func (h *MomentHandler) GetMoment(c *gin.Context) {
	moment, err := h.momentService.GetMoment(h.GetDB(c), c.Param("id"), true)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, moment)
}

func (h *MomentHandler) RecordView(c *gin.Context) {
	moment, err := h.momentService.RecordView(h.GetDB(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	userID, _ := h.currentUser(c)
	h.tracker.TrackMomentView(c.Request, moment.ID, userID)

	c.JSON(http.StatusOK, dto.CounterResponse{ID: moment.ID, Count: moment.ViewCount})
}

func (h *MomentHandler) Like(c *gin.Context) {
	counter, err := h.momentService.Like(h.GetDB(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	userID, _ := h.currentUser(c)
	h.tracker.TrackLikeAction(c.Request, string(models.TargetMoment), counter.ID, "like", userID)

	c.JSON(http.StatusOK, counter)
}

// --- Author ---

func (h *MomentHandler) CreateMoment(c *gin.Context) {
	authorID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateMomentRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	moment, err := h.momentService.CreateMoment(h.GetDB(c), authorID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, moment)
}

func (h *MomentHandler) UpdateMoment(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateMomentRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	_, role := h.currentUser(c)
	moment, err := h.momentService.UpdateMoment(h.GetDB(c), userID, role, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, moment)
}

func (h *MomentHandler) DeleteMoment(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	_, role := h.currentUser(c)
	if err := h.momentService.DeleteMoment(h.GetDB(c), userID, role, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Moment deleted"})
}

// --- Admin ---

func (h *MomentHandler) ListAll(c *gin.Context) {
	var query dto.MomentListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	moments, err := h.momentService.ListAll(h.GetDB(c), &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, moments)
}

func (h *MomentHandler) GetStats(c *gin.Context) {
	stats, err := h.momentService.GetStats(h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *MomentHandler) ToggleStatus(c *gin.Context) {
	moment, err := h.momentService.ToggleStatus(h.GetDB(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, moment)
}
