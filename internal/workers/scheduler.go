package workers

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"miaoyou_backend/internal/analytics"
	"miaoyou_backend/internal/eventlog"
	"miaoyou_backend/internal/logger"
)

const (
	TaskDailyAnalytics   = "daily-analytics"
	TaskLogCleanup       = "log-cleanup"
	TaskAnalyticsCleanup = "analytics-cleanup"
)

var (
	ErrTaskRunning = errors.New("task is already running")
	ErrUnknownTask = errors.New("unknown task")
)

type TaskState string

const (
	TaskStopped   TaskState = "stopped"
	TaskScheduled TaskState = "scheduled"
)

// AnalyticsProcessor - агрегация и очистка агрегатов (analytics.Engine).
type AnalyticsProcessor interface {
	ProcessDailyLogs(ctx context.Context, date string) (*analytics.DailyStatistics, error)
	CleanupOldAnalytics(ctx context.Context, retentionDays int) (records, daily int64, err error)
}

// LogCleaner - очистка файлов журнала событий (eventlog.Store).
type LogCleaner interface {
	CleanupAll(retentionDays int) (int, error)
}

// ErrorRecorder пишет сбои задач в журнал ошибок (eventlog.Store).
type ErrorRecorder interface {
	AppendError(ev eventlog.ErrorEvent)
}

type SchedulerConfig struct {
	Location               *time.Location
	LogRetentionDays       int
	AnalyticsRetentionDays int
}

type TaskStatus struct {
	Name         string     `json:"name"`
	Schedule     string     `json:"schedule"`
	State        TaskState  `json:"state"`
	Running      bool       `json:"running"`
	NextRun      *time.Time `json:"next_run,omitempty"`
	LastRun      *time.Time `json:"last_run,omitempty"`
	LastDuration string     `json:"last_duration,omitempty"`
	LastError    string     `json:"last_error,omitempty"`
}

type task struct {
	name string
	spec string
	run  func(ctx context.Context) error

	entryID   cron.EntryID
	scheduled bool

	// running не дает запустить задачу повторно, пока предыдущий запуск не закончился
	running sync.Mutex
	busy    bool

	lastRun      time.Time
	lastDuration time.Duration
	lastErr      error
}

// Scheduler запускает агрегацию и очистку по расписанию cron в заданной таймзоне.
type Scheduler struct {
	cron      *cron.Cron
	loc       *time.Location
	now       func() time.Time
	processor AnalyticsProcessor
	cleaner   LogCleaner
	recorder  ErrorRecorder
	cfg       SchedulerConfig

	mu      sync.Mutex
	tasks   map[string]*task
	order   []string
	started bool
}

type SchedulerOption func(*Scheduler)

func WithClock(now func() time.Time) SchedulerOption {
	return func(s *Scheduler) { s.now = now }
}

func NewScheduler(processor AnalyticsProcessor, cleaner LogCleaner, recorder ErrorRecorder, cfg SchedulerConfig, opts ...SchedulerOption) *Scheduler {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.LogRetentionDays <= 0 {
		cfg.LogRetentionDays = 30
	}
	if cfg.AnalyticsRetentionDays <= 0 {
		cfg.AnalyticsRetentionDays = 90
	}

	cl := cronLogger{}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(cfg.Location),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl)),
		),
		loc:       cfg.Location,
		now:       time.Now,
		processor: processor,
		cleaner:   cleaner,
		recorder:  recorder,
		cfg:       cfg,
		tasks:     make(map[string]*task),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.register(TaskDailyAnalytics, "0 0 * * *", s.dailyAnalytics)
	s.register(TaskLogCleanup, "0 2 * * 0", s.logCleanup)
	s.register(TaskAnalyticsCleanup, "0 3 1 * *", s.analyticsCleanup)
	return s
}

func (s *Scheduler) register(name, spec string, run func(ctx context.Context) error) {
	s.tasks[name] = &task{name: name, spec: spec, run: run}
	s.order = append(s.order, name)
}

// ============================================
// Тела задач
// ============================================

func (s *Scheduler) dailyAnalytics(ctx context.Context) error {
	_, err := s.processor.ProcessDailyLogs(ctx, s.Yesterday())
	return err
}

func (s *Scheduler) logCleanup(ctx context.Context) error {
	_, err := s.cleaner.CleanupAll(s.cfg.LogRetentionDays)
	return err
}

func (s *Scheduler) analyticsCleanup(ctx context.Context) error {
	_, _, err := s.processor.CleanupOldAnalytics(ctx, s.cfg.AnalyticsRetentionDays)
	return err
}

// Yesterday - вчерашняя дата в таймзоне планировщика.
func (s *Scheduler) Yesterday() string {
	return s.now().In(s.loc).AddDate(0, 0, -1).Format(eventlog.DateLayout)
}

// ============================================
// Управление задачами
// ============================================

func (s *Scheduler) StartAllTasks() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, name := range s.order {
		if err := s.startLocked(s.tasks[name]); err != nil {
			return err
		}
	}
	s.ensureCronLocked()
	logger.Info("scheduler: all tasks started", "timezone", s.loc.String())
	return nil
}

// StopAllTasks снимает задачи с расписания и ждет завершения уже запущенных.
func (s *Scheduler) StopAllTasks() {
	s.mu.Lock()
	for _, name := range s.order {
		s.stopLocked(s.tasks[name])
	}
	var done context.Context
	if s.started {
		done = s.cron.Stop()
		s.started = false
	}
	s.mu.Unlock()

	if done != nil {
		<-done.Done()
	}
	logger.Info("scheduler: all tasks stopped")
}

// RestartTask снимает задачу с расписания и ставит заново.
func (s *Scheduler) RestartTask(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[name]
	if !ok {
		logger.Warn("scheduler: restart of unknown task", "task", name)
		return fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}

	s.stopLocked(t)
	if err := s.startLocked(t); err != nil {
		logger.Error("scheduler: restart failed", "task", name, "error", err)
		return err
	}
	s.ensureCronLocked()
	logger.Info("scheduler: task restarted", "task", name)
	return nil
}

func (s *Scheduler) startLocked(t *task) error {
	if t.scheduled {
		return nil
	}
	id, err := s.cron.AddFunc(t.spec, func() {
		_ = s.execute(context.Background(), t, t.run)
	})
	if err != nil {
		return fmt.Errorf("schedule %s (%s): %w", t.name, t.spec, err)
	}
	t.entryID = id
	t.scheduled = true
	return nil
}

func (s *Scheduler) stopLocked(t *task) {
	if !t.scheduled {
		return
	}
	s.cron.Remove(t.entryID)
	t.entryID = 0
	t.scheduled = false
}

func (s *Scheduler) ensureCronLocked() {
	if !s.started {
		s.cron.Start()
		s.started = true
	}
}

// TaskStatus возвращает состояние задач в порядке регистрации.
func (s *Scheduler) TaskStatus() []TaskStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]TaskStatus, 0, len(s.order))
	for _, name := range s.order {
		t := s.tasks[name]
		st := TaskStatus{
			Name:     t.name,
			Schedule: t.spec,
			State:    TaskStopped,
			Running:  t.busy,
		}
		if t.scheduled {
			st.State = TaskScheduled
			if next := s.cron.Entry(t.entryID).Next; !next.IsZero() {
				st.NextRun = &next
			}
		}
		if !t.lastRun.IsZero() {
			last := t.lastRun
			st.LastRun = &last
			st.LastDuration = t.lastDuration.String()
		}
		if t.lastErr != nil {
			st.LastError = t.lastErr.Error()
		}
		out = append(out, st)
	}
	return out
}

// ============================================
// Ручной запуск
// ============================================

// RunAnalyticsForDate агрегирует произвольную дату вне расписания.
// Делит защиту от параллельного запуска с daily-analytics.
func (s *Scheduler) RunAnalyticsForDate(ctx context.Context, date string) (*analytics.DailyStatistics, error) {
	var stats *analytics.DailyStatistics
	err := s.execute(ctx, s.tasks[TaskDailyAnalytics], func(ctx context.Context) error {
		var err error
		stats, err = s.processor.ProcessDailyLogs(ctx, date)
		return err
	})
	return stats, err
}

func (s *Scheduler) RunYesterdayAnalytics(ctx context.Context) (*analytics.DailyStatistics, error) {
	return s.RunAnalyticsForDate(ctx, s.Yesterday())
}

// RunLogCleanup удаляет файлы журнала старше days (0 - значение из конфига).
func (s *Scheduler) RunLogCleanup(ctx context.Context, days int) (int, error) {
	if days <= 0 {
		days = s.cfg.LogRetentionDays
	}
	var removed int
	err := s.execute(ctx, s.tasks[TaskLogCleanup], func(context.Context) error {
		var err error
		removed, err = s.cleaner.CleanupAll(days)
		return err
	})
	return removed, err
}

// RunAnalyticsCleanup удаляет агрегаты старше days (0 - значение из конфига).
func (s *Scheduler) RunAnalyticsCleanup(ctx context.Context, days int) (records, daily int64, err error) {
	if days <= 0 {
		days = s.cfg.AnalyticsRetentionDays
	}
	err = s.execute(ctx, s.tasks[TaskAnalyticsCleanup], func(ctx context.Context) error {
		var err error
		records, daily, err = s.processor.CleanupOldAnalytics(ctx, days)
		return err
	})
	return records, daily, err
}

// execute выполняет fn под защитой задачи t. Ошибки и паники логируются и
// пишутся в журнал ошибок, планировщик продолжает работать.
func (s *Scheduler) execute(ctx context.Context, t *task, fn func(ctx context.Context) error) (err error) {
	if !t.running.TryLock() {
		logger.Warn("scheduler: task is still running, skipping", "task", t.name)
		return ErrTaskRunning
	}
	defer t.running.Unlock()

	s.setBusy(t, true)
	started := s.now()
	var stack string

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
			stack = string(debug.Stack())
		}

		s.finish(t, started, err)
		logger.WorkerLog(t.name, "run", err)
		if err != nil {
			s.recordFailure(t.name, err, stack)
		}
	}()

	return fn(ctx)
}

func (s *Scheduler) setBusy(t *task, busy bool) {
	s.mu.Lock()
	t.busy = busy
	s.mu.Unlock()
}

func (s *Scheduler) finish(t *task, started time.Time, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.busy = false
	t.lastRun = started
	t.lastDuration = s.now().Sub(started)
	t.lastErr = err
}

func (s *Scheduler) recordFailure(taskName string, err error, stack string) {
	if s.recorder == nil {
		return
	}
	s.recorder.AppendError(eventlog.ErrorEvent{
		Level:   eventlog.LevelError,
		Message: fmt.Sprintf("Scheduled task %s failed: %v", taskName, err),
		Stack:   stack,
		Extra:   map[string]any{"taskName": taskName},
	})
}

// cronLogger направляет логи robfig/cron в slog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error("cron: "+msg, append([]any{"error", err}, keysAndValues...)...)
}
