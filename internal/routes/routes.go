package routes

import (
	"net/http"
	"time"

	"miaoyou_backend/internal/auth"
	"miaoyou_backend/internal/handlers"
	"miaoyou_backend/internal/logger"
	"miaoyou_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes регистрирует все HTTP маршруты.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	jwtManager *auth.JWTManager,
) {
	ginRouter.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().Format(time.RFC3339)})
	})
	ginRouter.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	public := ginRouter.Group("/api")
	public.Use(middleware.OptionalAuthMiddleware(jwtManager))

	authed := ginRouter.Group("/api")
	authed.Use(middleware.AuthMiddleware(jwtManager))

	admin := ginRouter.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRoles(auth.RoleAdmin))

	appHandlers.RegisterRoutes(handlers.RouteGroups{
		Public: public,
		Auth:   authed,
		Admin:  admin,
	})

	logger.Info("HTTP routes registered", "routes", len(ginRouter.Routes()))
}
