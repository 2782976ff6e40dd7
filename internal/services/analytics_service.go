package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"miaoyou_backend/internal/analytics"
	"miaoyou_backend/internal/eventlog"
	"miaoyou_backend/internal/models"
	"miaoyou_backend/internal/repositories"
	"miaoyou_backend/internal/services/dto"
	"miaoyou_backend/internal/workers"
	"miaoyou_backend/pkg/apperrors"
)

const (
	defaultDailyStatsLimit = 30
	defaultTopContentType  = string(eventlog.ArticleView)
)

// EventLogReader - то, что сервису нужно от журнала событий (eventlog.Store).
type EventLogReader interface {
	Today() string
	ParseDate(date string) (time.Time, error)
	ListDates(kind eventlog.Kind) ([]string, error)
}

// StatisticsComputer считает статистику дня без сохранения (analytics.Engine).
type StatisticsComputer interface {
	ComputeForDate(date string) (*analytics.DailyStatistics, error)
}

// TaskRunner - управление фоновыми задачами (workers.Scheduler).
type TaskRunner interface {
	Yesterday() string
	TaskStatus() []workers.TaskStatus
	RestartTask(name string) error
	RunAnalyticsForDate(ctx context.Context, date string) (*analytics.DailyStatistics, error)
	RunLogCleanup(ctx context.Context, days int) (int, error)
	RunAnalyticsCleanup(ctx context.Context, days int) (records, daily int64, err error)
}

// RetentionDefaults - сроки хранения по умолчанию для ручной очистки
type RetentionDefaults struct {
	LogDays       int
	AnalyticsDays int
}

type AnalyticsService interface {
	GetDailyStats(db *gorm.DB, query *dto.DailyStatsQuery) (*dto.DailyStatsResponse, error)
	GetSummary(db *gorm.DB, query *dto.SummaryQuery) (*repositories.DailyStatsSummary, error)
	GetTopContent(db *gorm.DB, query *dto.TopContentQuery) (*dto.TopContentResponse, error)
	GetRealtime(date string) (*analytics.DailyStatistics, error)
	ListLogDates(kind string) (*dto.LogDatesResponse, error)

	TaskStatus() []workers.TaskStatus
	RestartTask(name string) error
	RunYesterday(ctx context.Context) (*dto.RunAnalyticsResponse, error)
	RunForDate(ctx context.Context, date string) (*dto.RunAnalyticsResponse, error)
	CleanupLogs(ctx context.Context, days int) (*dto.CleanupResponse, error)
	CleanupAnalytics(ctx context.Context, days int) (*dto.CleanupResponse, error)
}

type analyticsService struct {
	repo      repositories.AnalyticsRepository
	events    EventLogReader
	stats     StatisticsComputer
	tasks     TaskRunner
	retention RetentionDefaults
}

func NewAnalyticsService(
	repo repositories.AnalyticsRepository,
	events EventLogReader,
	stats StatisticsComputer,
	tasks TaskRunner,
	retention RetentionDefaults,
) AnalyticsService {
	return &analyticsService{
		repo:      repo,
		events:    events,
		stats:     stats,
		tasks:     tasks,
		retention: retention,
	}
}

// ---------------- Read API ----------------

func (s *analyticsService) GetDailyStats(db *gorm.DB, query *dto.DailyStatsQuery) (*dto.DailyStatsResponse, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = defaultDailyStatsLimit
	}
	rows, err := s.repo.FindDailyStats(db, query.StartDate, query.EndDate, limit)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if rows == nil {
		rows = []models.DailyStats{}
	}
	return &dto.DailyStatsResponse{Data: rows}, nil
}

func (s *analyticsService) GetSummary(db *gorm.DB, query *dto.SummaryQuery) (*repositories.DailyStatsSummary, error) {
	summary, err := s.repo.GetSummary(db, query.StartDate, query.EndDate)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return summary, nil
}

// GetTopContent; по умолчанию вчерашний день (последний агрегированный) и article_view.
func (s *analyticsService) GetTopContent(db *gorm.DB, query *dto.TopContentQuery) (*dto.TopContentResponse, error) {
	date := query.Date
	if date == "" {
		date = s.tasks.Yesterday()
	}
	eventType := query.Type
	if eventType == "" {
		eventType = defaultTopContentType
	}
	if !eventlog.BehaviorType(eventType).Valid() {
		return nil, apperrors.NewBadRequestError("Unknown event type: " + eventType)
	}

	items, err := s.repo.FindTopContent(db, date, eventType, clampLimit(query.Limit, analytics.DefaultTopN, 100))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if items == nil {
		items = []repositories.TopContent{}
	}
	return &dto.TopContentResponse{Date: date, Type: eventType, Items: items}, nil
}

// GetRealtime считает статистику по текущему журналу (по умолчанию за сегодня).
func (s *analyticsService) GetRealtime(date string) (*analytics.DailyStatistics, error) {
	if date == "" {
		date = s.events.Today()
	}
	stats, err := s.stats.ComputeForDate(date)
	if err != nil {
		return nil, mapAnalyticsError(err)
	}
	return stats, nil
}

func (s *analyticsService) ListLogDates(kind string) (*dto.LogDatesResponse, error) {
	k := eventlog.Kind(kind)
	if kind == "" {
		k = eventlog.KindBehavior
	}
	if !k.Valid() {
		return nil, apperrors.NewBadRequestError("Unknown log kind: " + kind)
	}

	dates, err := s.events.ListDates(k)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.LogDatesResponse{Kind: string(k), Dates: orEmpty(dates)}, nil
}

// ---------------- Operator API ----------------

func (s *analyticsService) TaskStatus() []workers.TaskStatus {
	return s.tasks.TaskStatus()
}

func (s *analyticsService) RestartTask(name string) error {
	if err := s.tasks.RestartTask(name); err != nil {
		return mapAnalyticsError(err)
	}
	return nil
}

func (s *analyticsService) RunYesterday(ctx context.Context) (*dto.RunAnalyticsResponse, error) {
	return s.RunForDate(ctx, s.tasks.Yesterday())
}

// RunForDate агрегирует произвольный день; пустой журнал - не ошибка.
func (s *analyticsService) RunForDate(ctx context.Context, date string) (*dto.RunAnalyticsResponse, error) {
	if _, err := s.events.ParseDate(date); err != nil {
		return nil, mapAnalyticsError(err)
	}

	stats, err := s.tasks.RunAnalyticsForDate(ctx, date)
	if err != nil {
		return nil, mapAnalyticsError(err)
	}
	return &dto.RunAnalyticsResponse{Date: date, Processed: stats != nil, Statistics: stats}, nil
}

func (s *analyticsService) CleanupLogs(ctx context.Context, days int) (*dto.CleanupResponse, error) {
	if days <= 0 {
		days = s.retention.LogDays
	}
	removed, err := s.tasks.RunLogCleanup(ctx, days)
	if err != nil {
		return nil, mapAnalyticsError(err)
	}
	return &dto.CleanupResponse{RetentionDays: days, DeletedFiles: removed}, nil
}

func (s *analyticsService) CleanupAnalytics(ctx context.Context, days int) (*dto.CleanupResponse, error) {
	if days <= 0 {
		days = s.retention.AnalyticsDays
	}
	records, daily, err := s.tasks.RunAnalyticsCleanup(ctx, days)
	if err != nil {
		return nil, mapAnalyticsError(err)
	}
	return &dto.CleanupResponse{RetentionDays: days, DeletedRecords: records, DeletedDaily: daily}, nil
}

func mapAnalyticsError(err error) error {
	switch {
	case errors.Is(err, eventlog.ErrInvalidDate):
		return apperrors.NewBadRequestError(err.Error())
	case errors.Is(err, workers.ErrTaskRunning):
		return apperrors.ErrTaskBusy.WithError(err)
	case errors.Is(err, workers.ErrUnknownTask):
		return apperrors.ErrUnknownTask.WithError(err)
	}
	return apperrors.InternalError(err)
}
