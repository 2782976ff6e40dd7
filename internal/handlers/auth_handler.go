package handlers

import (
	"net/http"

	"miaoyou_backend/internal/auth"
	"miaoyou_backend/internal/services"
	"miaoyou_backend/internal/services/dto"
	"miaoyou_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	*BaseHandler
	authService services.AuthService
}

func NewAuthHandler(base *BaseHandler, authService services.AuthService) *AuthHandler {
	return &AuthHandler{
		BaseHandler: base,
		authService: authService,
	}
}

// RegisterRoutes регистрирует маршруты аутентификации.
// refresh лежит в публичной группе: он принимает недавно истекший токен.
func (h *AuthHandler) RegisterRoutes(g RouteGroups) {
	public := g.Public.Group("/auth")
	{
		public.POST("/login", h.Login)
		public.POST("/register", h.Register)
		public.POST("/refresh", h.RefreshToken)
	}

	authed := g.Auth.Group("/auth")
	{
		authed.GET("/profile", h.GetProfile)
	}
}

// Login godoc
// @Summary Вход по имени пользователя или email
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body dto.LoginRequest true "Учетные данные"
// @Success 200 {object} dto.AuthResponse
// @Failure 401 {object} apperrors.AppError
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.authService.Login(h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Register godoc
// @Summary Регистрация пользователя
// @Tags auth
// @Accept json
// @Produce json
// @Param user body dto.RegisterRequest true "Данные пользователя"
// @Success 201 {object} dto.AuthResponse
// @Failure 409 {object} apperrors.AppError
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.authService.Register(h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetProfile godoc
// @Summary Профиль текущего пользователя
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UserResponse
// @Router /api/auth/profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	profile, err := h.authService.GetProfile(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// RefreshToken godoc
// @Summary Обновить access token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.AuthResponse
// @Failure 401 {object} apperrors.AppError
// @Router /api/auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	token, err := auth.ExtractTokenFromBearer(c.GetHeader("Authorization"))
	if err != nil {
		h.HandleServiceError(c, apperrors.NewUnauthorizedError("Authorization header is required"))
		return
	}

	resp, err := h.authService.RefreshToken(h.GetDB(c), token)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
