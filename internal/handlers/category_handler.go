package handlers

import (
	"net/http"

	"miaoyou_backend/internal/services"
	"miaoyou_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	*BaseHandler
	categoryService services.CategoryService
}

func NewCategoryHandler(base *BaseHandler, categoryService services.CategoryService) *CategoryHandler {
	return &CategoryHandler{
		BaseHandler:     base,
		categoryService: categoryService,
	}
}

func (h *CategoryHandler) RegisterRoutes(g RouteGroups) {
	public := g.Public.Group("/categories")
	{
		public.GET("", h.ListActive)
		public.GET("/with-count", h.ListWithCount)
		public.GET("/:id", h.GetCategory)
	}

	admin := g.Admin.Group("/categories")
	{
		admin.GET("", h.ListAll)
		admin.POST("", h.CreateCategory)
		admin.PUT("/:id", h.UpdateCategory)
		admin.DELETE("/:id", h.DeleteCategory)
		admin.PATCH("/:id/toggle-status", h.ToggleStatus)
	}
}

// --- Public ---

func (h *CategoryHandler) ListActive(c *gin.Context) {
	categories, err := h.categoryService.ListCategories(h.GetDB(c), true)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": categories})
}

func (h *CategoryHandler) ListWithCount(c *gin.Context) {
	categories, err := h.categoryService.ListWithArticleCount(h.GetDB(c), true)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": categories})
}

func (h *CategoryHandler) GetCategory(c *gin.Context) {
	category, err := h.categoryService.GetCategory(h.GetDB(c), c.Param("id"), true)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// --- Admin ---

func (h *CategoryHandler) ListAll(c *gin.Context) {
	categories, err := h.categoryService.ListWithArticleCount(h.GetDB(c), false)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": categories})
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	category, err := h.categoryService.CreateCategory(h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	var req dto.UpdateCategoryRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	category, err := h.categoryService.UpdateCategory(h.GetDB(c), c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	if err := h.categoryService.DeleteCategory(h.GetDB(c), c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Category deleted"})
}

func (h *CategoryHandler) ToggleStatus(c *gin.Context) {
	category, err := h.categoryService.ToggleStatus(h.GetDB(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}
