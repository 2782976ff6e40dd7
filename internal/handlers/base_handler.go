package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"miaoyou_backend/internal/logger"
	"miaoyou_backend/internal/middleware"
	"miaoyou_backend/internal/tracker"
	"miaoyou_backend/internal/validator"
	"miaoyou_backend/pkg/apperrors"
	"miaoyou_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ============================================================================
// 1. Базовая структура обработчика
// ============================================================================

type BaseHandler struct {
	validator *validator.Validator
	tracker   *tracker.Tracker
}

func NewBaseHandler(v *validator.Validator, t *tracker.Tracker) *BaseHandler {
	return &BaseHandler{
		validator: v,
		tracker:   t,
	}
}

// RouteGroups - группы маршрутов с уже подключенными middleware.
type RouteGroups struct {
	Public *gin.RouterGroup // /api, авторизация опциональна
	Auth   *gin.RouterGroup // /api, нужен валидный токен
	Admin  *gin.RouterGroup // /api/admin, роль admin
}

// ============================================================================
// 2. DB из контекста
// ============================================================================

// GetDB извлекает *gorm.DB, который положил DBMiddleware.
func (h *BaseHandler) GetDB(c *gin.Context) *gorm.DB {
	dbKey := string(contextkeys.DBContextKey)

	val, ok := c.Get(dbKey)
	if !ok {
		logger.CtxError(c.Request.Context(), "critical error: db key not found in context", "key", dbKey)
		panic("critical error: DBMiddleware did not set the db key")
	}

	db, ok := val.(*gorm.DB)
	if !ok {
		logger.CtxError(c.Request.Context(), "critical error: db in context is not *gorm.DB", "key", dbKey, "type", fmt.Sprintf("%T", val))
		panic("critical error: db in context has incorrect type")
	}

	return db
}

// ============================================================================
// 3. Привязка и валидация
// ============================================================================

func (h *BaseHandler) BindAndValidate_JSON(c *gin.Context, obj interface{}) bool {
	return h.bindAndValidate(c, obj, "body", c.ShouldBindJSON)
}

func (h *BaseHandler) BindAndValidate_Query(c *gin.Context, obj interface{}) bool {
	return h.bindAndValidate(c, obj, "query", c.ShouldBindQuery)
}

func (h *BaseHandler) bindAndValidate(c *gin.Context, obj interface{}, source string, bind func(any) error) bool {
	ctx := c.Request.Context()
	path := c.Request.URL.Path

	if err := bind(obj); err != nil {
		logger.CtxWarn(ctx, "Failed to bind request", "source", source, "error", err.Error(), "path", path)
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid request "+source+": "+err.Error()))
		return false
	}
	return h.validate(c, obj, source)
}

// validate проверяет уже заполненный obj (например, параметры пути).
func (h *BaseHandler) validate(c *gin.Context, obj interface{}, source string) bool {
	ctx := c.Request.Context()
	path := c.Request.URL.Path

	err := h.validator.Validate(obj)
	if err == nil {
		return true
	}

	var vErr *validator.ValidationError
	if errors.As(err, &vErr) {
		logger.CtxWarn(ctx, "Validation failed", "source", source, "errors", vErr.Errors, "path", path)
		apperrors.HandleError(c, apperrors.ValidationError(vErr.Errors))
	} else {
		logger.CtxWithError(ctx, "Internal validator error", err, "source", source, "path", path)
		apperrors.HandleError(c, apperrors.InternalError(err))
	}
	return false
}

// ============================================================================
// 4. Ошибки сервисов
// ============================================================================

func (h *BaseHandler) HandleServiceError(c *gin.Context, err error) {
	ctx := c.Request.Context()

	var appErr *apperrors.AppError
	if apperrors.As(err, &appErr) {
		logger.CtxWarn(ctx, "Service error",
			"error", appErr.Message,
			"details", appErr.Details,
			"path", c.Request.URL.Path,
		)
		apperrors.HandleError(c, appErr)
	} else {
		logger.CtxWithError(ctx, "Internal server error", err, "path", c.Request.URL.Path)
		apperrors.HandleError(c, apperrors.InternalError(err))
	}
}

// ============================================================================
// 5. Пользователь из контекста
// ============================================================================

func (h *BaseHandler) GetAndAuthorizeUserID(c *gin.Context) (string, bool) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		logger.CtxWarn(c.Request.Context(), "Unauthorized access: userID not found in context",
			"path", c.Request.URL.Path,
			"ip", c.ClientIP(),
		)
		apperrors.HandleError(c, apperrors.NewUnauthorizedError("User not authenticated"))
		return "", false
	}
	return userID, true
}

// currentUser - id и роль, если запрос авторизован (иначе пустые строки).
func (h *BaseHandler) currentUser(c *gin.Context) (string, string) {
	return middleware.GetUserID(c), middleware.GetUserRole(c)
}

// ============================================================================
// 6. Парсинг
// ============================================================================

func ParseQueryInt(c *gin.Context, key string, defaultValue int) int {
	valueStr := c.Query(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// ParseDays читает ?days=N; отсутствие дает 0 (значение по умолчанию сервиса).
func ParseDays(c *gin.Context) (int, error) {
	valueStr := c.Query("days")
	if valueStr == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil || value <= 0 {
		return 0, apperrors.NewBadRequestError("Invalid query parameter: days must be a positive integer")
	}
	return value, nil
}
