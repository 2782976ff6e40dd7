package handlers

import (
	"net/http"

	"miaoyou_backend/internal/services"
	"miaoyou_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	*BaseHandler
	analyticsService services.AnalyticsService
}

func NewAnalyticsHandler(base *BaseHandler, analyticsService services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		BaseHandler:      base,
		analyticsService: analyticsService,
	}
}

// RegisterRoutes - все маршруты под /api/admin/analytics.
func (h *AnalyticsHandler) RegisterRoutes(g RouteGroups) {
	analytics := g.Admin.Group("/analytics")
	{
		// Чтение агрегатов
		analytics.GET("/daily-stats", h.GetDailyStats)
		analytics.GET("/summary", h.GetSummary)
		analytics.GET("/top-content", h.GetTopContent)
		analytics.GET("/realtime", h.GetRealtime)
		analytics.GET("/logs/dates", h.ListLogDates)

		// Задачи планировщика
		analytics.GET("/tasks", h.TaskStatus)
		analytics.POST("/tasks/run-yesterday", h.RunYesterday)
		analytics.POST("/tasks/run", h.RunForDate)
		analytics.POST("/tasks/:name/restart", h.RestartTask)

		// Ручная очистка
		analytics.POST("/cleanup/logs", h.CleanupLogs)
		analytics.POST("/cleanup/analytics", h.CleanupAnalytics)
	}
}

// --- Read ---

// GetDailyStats godoc
// @Summary Дневная статистика
// @Description По умолчанию последние 30 записей, от новых к старым
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param start_date query string false "YYYY-MM-DD"
// @Param end_date query string false "YYYY-MM-DD"
// @Param limit query int false "Количество записей"
// @Success 200 {object} dto.DailyStatsResponse
// @Router /api/admin/analytics/daily-stats [get]
func (h *AnalyticsHandler) GetDailyStats(c *gin.Context) {
	var query dto.DailyStatsQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	stats, err := h.analyticsService.GetDailyStats(h.GetDB(c), &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *AnalyticsHandler) GetSummary(c *gin.Context) {
	var query dto.SummaryQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	summary, err := h.analyticsService.GetSummary(h.GetDB(c), &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetTopContent godoc
// @Summary Самый популярный контент за день
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param date query string false "YYYY-MM-DD, по умолчанию вчера"
// @Param type query string false "Тип события, по умолчанию article_view"
// @Param limit query int false "Количество"
// @Success 200 {object} dto.TopContentResponse
// @Router /api/admin/analytics/top-content [get]
func (h *AnalyticsHandler) GetTopContent(c *gin.Context) {
	var query dto.TopContentQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	top, err := h.analyticsService.GetTopContent(h.GetDB(c), &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, top)
}

func (h *AnalyticsHandler) GetRealtime(c *gin.Context) {
	var query struct {
		Date string `form:"date" validate:"omitempty,is-date"`
	}
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	stats, err := h.analyticsService.GetRealtime(query.Date)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.RealtimeResponse{Statistics: *stats})
}

func (h *AnalyticsHandler) ListLogDates(c *gin.Context) {
	dates, err := h.analyticsService.ListLogDates(c.Query("kind"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dates)
}

// --- Tasks ---

func (h *AnalyticsHandler) TaskStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tasks": h.analyticsService.TaskStatus()})
}

func (h *AnalyticsHandler) RestartTask(c *gin.Context) {
	name := c.Param("name")
	if err := h.analyticsService.RestartTask(name); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Task " + name + " restarted"})
}

// RunYesterday godoc
// @Summary Пересчитать вчерашний день
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.RunAnalyticsResponse
// @Failure 409 {object} apperrors.AppError "Задача уже выполняется"
// @Router /api/admin/analytics/tasks/run-yesterday [post]
func (h *AnalyticsHandler) RunYesterday(c *gin.Context) {
	result, err := h.analyticsService.RunYesterday(c.Request.Context())
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AnalyticsHandler) RunForDate(c *gin.Context) {
	var query struct {
		Date string `form:"date" validate:"required,is-date"`
	}
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	result, err := h.analyticsService.RunForDate(c.Request.Context(), query.Date)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// --- Cleanup ---

func (h *AnalyticsHandler) CleanupLogs(c *gin.Context) {
	days, err := ParseDays(c)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	result, err := h.analyticsService.CleanupLogs(c.Request.Context(), days)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AnalyticsHandler) CleanupAnalytics(c *gin.Context) {
	days, err := ParseDays(c)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	result, err := h.analyticsService.CleanupAnalytics(c.Request.Context(), days)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
