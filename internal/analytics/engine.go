package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"miaoyou_backend/internal/eventlog"
	"miaoyou_backend/internal/logger"
	"miaoyou_backend/internal/models"
)

const DefaultBatchSize = 1000

// EventSource - источник событий за день (eventlog.Store).
type EventSource interface {
	ReadBehavior(date string) ([]eventlog.BehaviorEvent, error)
	ParseDate(date string) (time.Time, error)
}

// Repository - запись агрегатов. Совпадает с частью repositories.AnalyticsRepository.
type Repository interface {
	CreateRecords(db *gorm.DB, records []models.AnalyticsRecord) error
	UpsertDailyStats(db *gorm.DB, row *models.DailyStats) error
	DeleteRecordsBefore(db *gorm.DB, cutoff time.Time) (int64, error)
	DeleteDailyStatsBefore(db *gorm.DB, cutoff time.Time) (int64, error)
}

// Engine агрегирует поведенческие события за день и сохраняет результат.
type Engine struct {
	db        *gorm.DB
	events    EventSource
	repo      Repository
	batchSize int
	topN      int
	now       func() time.Time
}

type Option func(*Engine)

func WithBatchSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.batchSize = n
		}
	}
}

func WithTopN(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.topN = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func NewEngine(db *gorm.DB, events EventSource, repo Repository, opts ...Option) *Engine {
	e := &Engine{
		db:        db,
		events:    events,
		repo:      repo,
		batchSize: DefaultBatchSize,
		topN:      DefaultTopN,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ComputeForDate считает статистику по журналу без записи в БД.
func (e *Engine) ComputeForDate(date string) (*DailyStatistics, error) {
	if _, err := e.events.ParseDate(date); err != nil {
		return nil, err
	}
	events, err := e.events.ReadBehavior(date)
	if err != nil {
		return nil, fmt.Errorf("read behavior log %s: %w", date, err)
	}
	stats := ComputeStatistics(date, events, e.topN)
	return &stats, nil
}

// ProcessDailyLogs агрегирует события за date: пишет по одной AnalyticsRecord
// на событие (пачками) и upsert-ит строку DailyStats.
// День без событий - no-op, возвращается nil статистика.
// Повторный запуск добавляет записи AnalyticsRecord заново, а DailyStats перезаписывает.
func (e *Engine) ProcessDailyLogs(ctx context.Context, date string) (*DailyStatistics, error) {
	if _, err := e.events.ParseDate(date); err != nil {
		return nil, err
	}

	events, err := e.events.ReadBehavior(date)
	if err != nil {
		return nil, fmt.Errorf("read behavior log %s: %w", date, err)
	}
	if len(events) == 0 {
		logger.Info("analytics: no behavior events, skipping", "date", date)
		return nil, nil
	}

	stats := ComputeStatistics(date, events, e.topN)

	var errs []error
	if err := e.saveRecords(ctx, date, events); err != nil {
		errs = append(errs, err)
	}

	if err := ctx.Err(); err != nil {
		return &stats, errors.Join(append(errs, err)...)
	}

	row := toDailyStats(stats)
	if err := e.repo.UpsertDailyStats(e.dbCtx(ctx), row); err != nil {
		logger.Error("analytics: save daily stats failed", "date", date, "error", err)
		errs = append(errs, fmt.Errorf("save daily stats %s: %w", date, err))
	}

	logger.Info("analytics: daily logs processed",
		"date", date,
		"events", len(events),
		"unique_visitors", stats.UniqueVisitors,
		"total_views", stats.TotalViews,
	)
	return &stats, errors.Join(errs...)
}

// saveRecords пишет AnalyticsRecord пачками по batchSize. Ошибка пачки
// логируется, остальные пачки продолжают записываться.
func (e *Engine) saveRecords(ctx context.Context, date string, events []eventlog.BehaviorEvent) error {
	var errs []error
	for start := 0; start < len(events); start += e.batchSize {
		if err := ctx.Err(); err != nil {
			return errors.Join(append(errs, err)...)
		}

		end := min(start+e.batchSize, len(events))
		batch := make([]models.AnalyticsRecord, 0, end-start)
		for _, ev := range events[start:end] {
			batch = append(batch, toRecord(date, ev))
		}

		if err := e.repo.CreateRecords(e.dbCtx(ctx), batch); err != nil {
			logger.Error("analytics: save records batch failed",
				"date", date, "from", start, "to", end, "error", err)
			errs = append(errs, fmt.Errorf("save analytics batch %d-%d: %w", start, end, err))
		}
	}
	return errors.Join(errs...)
}

// CleanupOldAnalytics удаляет AnalyticsRecord и DailyStats, созданные раньше
// now - retentionDays.
func (e *Engine) CleanupOldAnalytics(ctx context.Context, retentionDays int) (records, daily int64, err error) {
	cutoff := e.now().AddDate(0, 0, -retentionDays)
	db := e.dbCtx(ctx)

	records, err = e.repo.DeleteRecordsBefore(db, cutoff)
	if err != nil {
		return 0, 0, fmt.Errorf("delete analytics records: %w", err)
	}
	daily, err = e.repo.DeleteDailyStatsBefore(db, cutoff)
	if err != nil {
		return records, 0, fmt.Errorf("delete daily stats: %w", err)
	}

	logger.Info("analytics: old data removed",
		"cutoff", cutoff.Format(time.RFC3339), "records", records, "daily_stats", daily)
	return records, daily, nil
}

func (e *Engine) dbCtx(ctx context.Context) *gorm.DB {
	if e.db == nil {
		return nil
	}
	return e.db.WithContext(ctx)
}

func toRecord(date string, ev eventlog.BehaviorEvent) models.AnalyticsRecord {
	rec := models.AnalyticsRecord{
		Date:        date,
		Type:        string(ev.Type),
		TargetID:    ev.TargetID,
		TargetTitle: ev.TargetTitle,
		SessionID:   ev.SessionID,
		UserID:      ev.UserID,
		IPAddress:   ev.IPAddress,
		UserAgent:   ev.UserAgent,
		Referer:     ev.Referer,
		Country:     ev.Country,
		City:        ev.City,
		Device:      ev.Device,
		Browser:     ev.Browser,
		OS:          ev.OS,
	}
	rec.CreatedAt = ev.Timestamp
	if len(ev.Extra) > 0 {
		if raw, err := json.Marshal(ev.Extra); err == nil {
			rec.Extra = datatypes.JSON(raw)
		}
	}
	return rec
}

func toDailyStats(s DailyStatistics) *models.DailyStats {
	return &models.DailyStats{
		Date:           s.Date,
		TotalViews:     s.TotalViews,
		UniqueVisitors: s.UniqueVisitors,
		ArticleViews:   s.ArticleViews,
		MomentViews:    s.MomentViews,
		WorkViews:      s.WorkViews,
		NewComments:    s.NewComments,
		NewLikes:       s.NewLikes,
	}
}
