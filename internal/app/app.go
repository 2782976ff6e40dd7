package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"miaoyou_backend/database"
	"miaoyou_backend/internal/analytics"
	"miaoyou_backend/internal/auth"
	"miaoyou_backend/internal/config"
	"miaoyou_backend/internal/email"
	"miaoyou_backend/internal/eventlog"
	"miaoyou_backend/internal/handlers"
	"miaoyou_backend/internal/logger"
	"miaoyou_backend/internal/middleware"
	"miaoyou_backend/internal/repositories"
	"miaoyou_backend/internal/routes"
	"miaoyou_backend/internal/services"
	"miaoyou_backend/internal/tracker"
	"miaoyou_backend/internal/validator"
	"miaoyou_backend/internal/workers"
	"miaoyou_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const shutdownTimeout = 30 * time.Second

// App - собранное приложение: роутер и фоновые компоненты.
type App struct {
	Router    *gin.Engine
	Services  *services.ServiceContainer
	Store     *eventlog.Store
	Scheduler *workers.Scheduler
	Tracker   *tracker.Tracker
}

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig

	logger.Init(logger.Options{
		Env:        cfg.Server.Env,
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
	logger.Info("Logger initialized", "env", cfg.Server.Env)
	apperrors.Debug = cfg.IsDevelopment()
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("Connecting to database...", "driver", cfg.Database.Driver)
	gormDB, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer database.Close(gormDB)
	logger.Info("Database connected")

	if err := database.AutoMigrate(gormDB); err != nil {
		logger.Fatal("Failed to migrate database", "error", err)
	}

	application, err := New(cfg, gormDB)
	if err != nil {
		logger.Fatal("Failed to build application", "error", err)
	}

	if err := seedFirstAdmin(gormDB, application.Services.AuthService, cfg); err != nil {
		logger.Fatal("Failed to seed first admin user", "error", err)
	}

	if err := application.Scheduler.StartAllTasks(); err != nil {
		logger.Fatal("Failed to start scheduler", "error", err)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      application.Router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server startup error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received")

	// сначала ждем текущие задачи, потом закрываем HTTP
	application.Scheduler.StopAllTasks()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
	logger.Info("Server stopped")
}

// New собирает журнал событий, трекер, движок агрегации, планировщик,
// сервисы, хэндлеры и роутер. Планировщик не запускается.
func New(cfg *config.Config, gormDB *gorm.DB) (*App, error) {
	loc, err := cfg.Analytics.Location()
	if err != nil {
		return nil, err
	}

	store := eventlog.NewStore(cfg.Analytics.LogDir, loc)
	behaviorTracker := tracker.New(store,
		tracker.WithUAParser(tracker.NewUAParser()),
		tracker.WithSessionCookie(cfg.Analytics.SessionCookie),
	)

	analyticsRepo := repositories.NewAnalyticsRepository()
	engine := analytics.NewEngine(gormDB, store, analyticsRepo,
		analytics.WithBatchSize(cfg.Analytics.BatchSize),
		analytics.WithTopN(cfg.Analytics.TopN),
	)
	scheduler := workers.NewScheduler(engine, store, store, workers.SchedulerConfig{
		Location:               loc,
		LogRetentionDays:       cfg.Analytics.LogRetentionDays,
		AnalyticsRetentionDays: cfg.Analytics.AnalyticsRetentionDays,
	})

	jwtManager := auth.NewJWTManager(
		cfg.JWT.Secret,
		time.Duration(cfg.JWT.TTL)*time.Minute,
		time.Duration(cfg.JWT.RefreshWindow)*time.Minute,
	)

	notifier, err := initializeNotifier(cfg)
	if err != nil {
		return nil, err
	}

	serviceContainer := initializeServices(cfg, jwtManager, notifier, analyticsRepo, store, engine, scheduler)
	appHandlers := initializeHandlers(serviceContainer, behaviorTracker)

	router := initializeGinRouter(cfg, gormDB, store, behaviorTracker)
	routes.RegisterRoutes(router, appHandlers, jwtManager)

	return &App{
		Router:    router,
		Services:  serviceContainer,
		Store:     store,
		Scheduler: scheduler,
		Tracker:   behaviorTracker,
	}, nil
}

func initializeServices(
	cfg *config.Config,
	jwtManager *auth.JWTManager,
	notifier services.CommentNotifier,
	analyticsRepo repositories.AnalyticsRepository,
	store *eventlog.Store,
	engine *analytics.Engine,
	scheduler *workers.Scheduler,
) *services.ServiceContainer {
	userRepo := repositories.NewUserRepository()
	categoryRepo := repositories.NewCategoryRepository()
	articleRepo := repositories.NewArticleRepository()
	commentRepo := repositories.NewCommentRepository()
	momentRepo := repositories.NewMomentRepository()
	workRepo := repositories.NewWorkRepository()

	return &services.ServiceContainer{
		AuthService:     services.NewAuthService(userRepo, jwtManager),
		UserService:     services.NewUserService(userRepo),
		CategoryService: services.NewCategoryService(categoryRepo),
		ArticleService:  services.NewArticleService(articleRepo, categoryRepo, commentRepo),
		CommentService:  services.NewCommentService(commentRepo, articleRepo, momentRepo, workRepo, notifier),
		MomentService:   services.NewMomentService(momentRepo, commentRepo),
		WorkService:     services.NewWorkService(workRepo, commentRepo),
		AnalyticsService: services.NewAnalyticsService(analyticsRepo, store, engine, scheduler, services.RetentionDefaults{
			LogDays:       cfg.Analytics.LogRetentionDays,
			AnalyticsDays: cfg.Analytics.AnalyticsRetentionDays,
		}),
	}
}

// initializeNotifier возвращает nil, если почта не настроена.
func initializeNotifier(cfg *config.Config) (services.CommentNotifier, error) {
	emailCfg := email.Config{
		SMTPHost:   cfg.Email.SMTPHost,
		SMTPPort:   cfg.Email.SMTPPort,
		Username:   cfg.Email.SMTPUser,
		Password:   cfg.Email.SMTPPassword,
		FromEmail:  cfg.Email.FromEmail,
		FromName:   cfg.Email.FromName,
		Moderators: cfg.Email.Moderators,
		AdminURL:   cfg.Email.AdminURL,
	}
	if !emailCfg.Enabled() {
		logger.Info("Moderation emails disabled")
		return nil, nil
	}

	sender, err := email.NewSMTPSender(emailCfg)
	if err != nil {
		return nil, err
	}
	notifier, err := email.NewNotifier(emailCfg, sender)
	if err != nil {
		return nil, err
	}
	logger.Info("Moderation emails enabled", "moderators", len(emailCfg.Moderators))
	return notifier, nil
}

func initializeHandlers(s *services.ServiceContainer, behaviorTracker *tracker.Tracker) *handlers.AppHandlers {
	baseHandler := handlers.NewBaseHandler(validator.New(), behaviorTracker)

	return &handlers.AppHandlers{
		AuthHandler:      handlers.NewAuthHandler(baseHandler, s.AuthService),
		UserHandler:      handlers.NewUserHandler(baseHandler, s.UserService),
		CategoryHandler:  handlers.NewCategoryHandler(baseHandler, s.CategoryService),
		ArticleHandler:   handlers.NewArticleHandler(baseHandler, s.ArticleService),
		CommentHandler:   handlers.NewCommentHandler(baseHandler, s.CommentService),
		MomentHandler:    handlers.NewMomentHandler(baseHandler, s.MomentService),
		WorkHandler:      handlers.NewWorkHandler(baseHandler, s.WorkService),
		AnalyticsHandler: handlers.NewAnalyticsHandler(baseHandler, s.AnalyticsService),
	}
}

func initializeGinRouter(cfg *config.Config, db *gorm.DB, store *eventlog.Store, behaviorTracker *tracker.Tracker) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.Recovery(store, behaviorTracker))
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.Server.FrontendURL))
	router.Use(middleware.DBMiddleware(db))
	router.Use(middleware.BehaviorTracking(behaviorTracker))
	return router
}

func seedFirstAdmin(db *gorm.DB, authService services.AuthService, cfg *config.Config) error {
	return authService.EnsureAdmin(db, services.AdminSeed{
		Email:    cfg.Admin.Email,
		Username: cfg.Admin.Username,
		Password: cfg.Admin.Password,
	})
}
