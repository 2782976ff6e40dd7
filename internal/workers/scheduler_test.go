package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"miaoyou_backend/internal/analytics"
	"miaoyou_backend/internal/eventlog"
)

type fakeProcessor struct {
	mu       sync.Mutex
	dates    []string
	days     []int
	err      error
	panicMsg string
	block    chan struct{}
	entered  chan struct{}
}

func (f *fakeProcessor) ProcessDailyLogs(ctx context.Context, date string) (*analytics.DailyStatistics, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	f.mu.Lock()
	f.dates = append(f.dates, date)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &analytics.DailyStatistics{Date: date}, nil
}

func (f *fakeProcessor) CleanupOldAnalytics(ctx context.Context, days int) (int64, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.days = append(f.days, days)
	return 3, 1, nil
}

type fakeCleaner struct{ days []int }

func (f *fakeCleaner) CleanupAll(days int) (int, error) {
	f.days = append(f.days, days)
	return 2, nil
}

type fakeRecorder struct {
	mu     sync.Mutex
	events []eventlog.ErrorEvent
}

func (f *fakeRecorder) AppendError(ev eventlog.ErrorEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
}

func newTestScheduler(t *testing.T, p *fakeProcessor, now time.Time) (*Scheduler, *fakeCleaner, *fakeRecorder) {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Shanghai")
	require.NoError(t, err)

	cleaner := &fakeCleaner{}
	recorder := &fakeRecorder{}
	s := NewScheduler(p, cleaner, recorder, SchedulerConfig{
		Location:               loc,
		LogRetentionDays:       30,
		AnalyticsRetentionDays: 90,
	}, WithClock(func() time.Time { return now }))
	return s, cleaner, recorder
}

func statusByName(s *Scheduler) map[string]TaskStatus {
	out := map[string]TaskStatus{}
	for _, st := range s.TaskStatus() {
		out[st.Name] = st
	}
	return out
}

func TestScheduler_StartStopTransitions(t *testing.T) {
	s, _, _ := newTestScheduler(t, &fakeProcessor{}, time.Now())

	for _, st := range s.TaskStatus() {
		assert.Equal(t, TaskStopped, st.State, st.Name)
	}

	require.NoError(t, s.StartAllTasks())
	statuses := s.TaskStatus()
	require.Len(t, statuses, 3)
	assert.Equal(t, TaskDailyAnalytics, statuses[0].Name)
	assert.Equal(t, "0 0 * * *", statuses[0].Schedule)
	assert.Equal(t, "0 2 * * 0", statuses[1].Schedule)
	assert.Equal(t, "0 3 1 * *", statuses[2].Schedule)
	for _, st := range statuses {
		assert.Equal(t, TaskScheduled, st.State, st.Name)
	}

	s.StopAllTasks()
	for _, st := range s.TaskStatus() {
		assert.Equal(t, TaskStopped, st.State, st.Name)
		assert.Nil(t, st.NextRun)
	}
}

func TestScheduler_RestartTask(t *testing.T) {
	s, _, _ := newTestScheduler(t, &fakeProcessor{}, time.Now())
	defer s.StopAllTasks()

	assert.ErrorIs(t, s.RestartTask("no-such-task"), ErrUnknownTask)

	require.NoError(t, s.StartAllTasks())
	require.NoError(t, s.RestartTask(TaskLogCleanup))
	assert.Equal(t, TaskScheduled, statusByName(s)[TaskLogCleanup].State)
	assert.Len(t, s.cron.Entries(), 3)
}

func TestScheduler_YesterdayUsesSchedulerTimezone(t *testing.T) {
	// 2024-03-01 17:00 UTC = 2024-03-02 01:00 в Шанхае
	now := time.Date(2024, 3, 1, 17, 0, 0, 0, time.UTC)
	p := &fakeProcessor{}
	s, _, _ := newTestScheduler(t, p, now)

	assert.Equal(t, "2024-03-01", s.Yesterday())

	stats, err := s.RunYesterdayAnalytics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", stats.Date)
	assert.Equal(t, []string{"2024-03-01"}, p.dates)
}

func TestScheduler_FailureIsRecordedAndDoesNotBreakScheduler(t *testing.T) {
	p := &fakeProcessor{err: errors.New("db is down")}
	s, _, recorder := newTestScheduler(t, p, time.Now())

	err := s.dailyAnalyticsViaTask()
	require.Error(t, err)

	require.Len(t, recorder.events, 1)
	ev := recorder.events[0]
	assert.Equal(t, eventlog.LevelError, ev.Level)
	assert.Contains(t, ev.Message, "db is down")
	assert.Equal(t, TaskDailyAnalytics, ev.Extra["taskName"])
	assert.Equal(t, "db is down", statusByName(s)[TaskDailyAnalytics].LastError)

	// следующий запуск проходит
	p.err = nil
	assert.NoError(t, s.dailyAnalyticsViaTask())
	assert.Empty(t, statusByName(s)[TaskDailyAnalytics].LastError)
}

func TestScheduler_PanicIsRecovered(t *testing.T) {
	p := &fakeProcessor{panicMsg: "nil map"}
	s, _, recorder := newTestScheduler(t, p, time.Now())

	var err error
	assert.NotPanics(t, func() {
		_, err = s.RunAnalyticsForDate(context.Background(), "2024-01-01")
	})
	require.Error(t, err)
	require.Len(t, recorder.events, 1)
	assert.NotEmpty(t, recorder.events[0].Stack)
}

func TestScheduler_OverlapGuard(t *testing.T) {
	p := &fakeProcessor{block: make(chan struct{}), entered: make(chan struct{}, 1)}
	s, _, _ := newTestScheduler(t, p, time.Now())

	done := make(chan error, 1)
	go func() {
		_, err := s.RunAnalyticsForDate(context.Background(), "2024-01-01")
		done <- err
	}()
	<-p.entered

	assert.True(t, statusByName(s)[TaskDailyAnalytics].Running)

	_, err := s.RunAnalyticsForDate(context.Background(), "2024-01-01")
	assert.ErrorIs(t, err, ErrTaskRunning)

	// другие задачи не блокируются
	_, err = s.RunLogCleanup(context.Background(), 0)
	assert.NoError(t, err)

	close(p.block)
	require.NoError(t, <-done)
	assert.Equal(t, []string{"2024-01-01"}, p.dates)
	assert.False(t, statusByName(s)[TaskDailyAnalytics].Running)
}

func TestScheduler_ManualCleanupUsesConfiguredRetention(t *testing.T) {
	p := &fakeProcessor{}
	s, cleaner, _ := newTestScheduler(t, p, time.Now())

	removed, err := s.RunLogCleanup(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	records, daily, err := s.RunAnalyticsCleanup(context.Background(), 0)
	require.NoError(t, err)
	assert.EqualValues(t, 3, records)
	assert.EqualValues(t, 1, daily)

	_, err = s.RunLogCleanup(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, []int{30, 7}, cleaner.days)
	assert.Equal(t, []int{90}, p.days)
}

// dailyAnalyticsViaTask выполняет тело задачи так же, как это делает cron.
func (s *Scheduler) dailyAnalyticsViaTask() error {
	t := s.tasks[TaskDailyAnalytics]
	return s.execute(context.Background(), t, t.run)
}
