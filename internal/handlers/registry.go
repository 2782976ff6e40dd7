package handlers

// AppHandlers содержит все хэндлеры приложения.
type AppHandlers struct {
	AuthHandler      *AuthHandler
	UserHandler      *UserHandler
	CategoryHandler  *CategoryHandler
	ArticleHandler   *ArticleHandler
	CommentHandler   *CommentHandler
	MomentHandler    *MomentHandler
	WorkHandler      *WorkHandler
	AnalyticsHandler *AnalyticsHandler
}

// RegisterRoutes отдает каждому хэндлеру его группы маршрутов.
func (a *AppHandlers) RegisterRoutes(g RouteGroups) {
	a.AuthHandler.RegisterRoutes(g)
	a.UserHandler.RegisterRoutes(g)
	a.CategoryHandler.RegisterRoutes(g)
	a.ArticleHandler.RegisterRoutes(g)
	a.CommentHandler.RegisterRoutes(g)
	a.MomentHandler.RegisterRoutes(g)
	a.WorkHandler.RegisterRoutes(g)
	a.AnalyticsHandler.RegisterRoutes(g)
}
