package services

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	AuthService      AuthService
	UserService      UserService
	CategoryService  CategoryService
	ArticleService   ArticleService
	CommentService   CommentService
	MomentService    MomentService
	WorkService      WorkService
	AnalyticsService AnalyticsService
}
