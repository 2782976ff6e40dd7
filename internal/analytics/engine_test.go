package analytics

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"miaoyou_backend/internal/eventlog"
	"miaoyou_backend/internal/models"
)

// fakeRepo хранит записи в памяти и повторяет семантику upsert по date.
type fakeRepo struct {
	mu          sync.Mutex
	records     []models.AnalyticsRecord
	daily       map[string]models.DailyStats
	batches     []int
	upserts     int
	failBatch   int // номер пачки (с 1), которая падает; 0 - без ошибок
	cutoffs     []time.Time
	createCalls int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{daily: map[string]models.DailyStats{}}
}

func (f *fakeRepo) CreateRecords(_ *gorm.DB, records []models.AnalyticsRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.failBatch == f.createCalls {
		return errors.New("insert failed")
	}
	f.batches = append(f.batches, len(records))
	f.records = append(f.records, records...)
	return nil
}

func (f *fakeRepo) UpsertDailyStats(_ *gorm.DB, row *models.DailyStats) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	f.daily[row.Date] = *row
	return nil
}

func (f *fakeRepo) DeleteRecordsBefore(_ *gorm.DB, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cutoffs = append(f.cutoffs, cutoff)
	kept := f.records[:0]
	var n int64
	for _, r := range f.records {
		if r.CreatedAt.Before(cutoff) {
			n++
			continue
		}
		kept = append(kept, r)
	}
	f.records = kept
	return n, nil
}

func (f *fakeRepo) DeleteDailyStatsBefore(_ *gorm.DB, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for date, row := range f.daily {
		if row.CreatedAt.Before(cutoff) {
			delete(f.daily, date)
			n++
		}
	}
	return n, nil
}

func writeLog(t *testing.T, dir, date, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "behavior-"+date+".log"), []byte(content), 0o644))
}

const scenarioLog = `{"timestamp":"2024-01-01T10:00:00+08:00","type":"page_view","sessionId":"a","referer":"/home"}
{"timestamp":"2024-01-01T10:05:00+08:00","type":"page_view","sessionId":"a","referer":"/home"}
{"timestamp":"2024-01-01T11:00:00+08:00","type":"article_view","sessionId":"b","targetId":"art1","targetTitle":"Hello","extra":{"source":"feed"}}
`

func newEngine(t *testing.T, repo *fakeRepo, opts ...Option) (*Engine, string) {
	t.Helper()
	dir := t.TempDir()
	store := eventlog.NewStore(dir, time.FixedZone("CST", 8*3600))
	return NewEngine(nil, store, repo, opts...), dir
}

func TestProcessDailyLogs_Scenario(t *testing.T) {
	repo := newFakeRepo()
	engine, dir := newEngine(t, repo)
	writeLog(t, dir, "2024-01-01", scenarioLog)

	stats, err := engine.ProcessDailyLogs(context.Background(), "2024-01-01")
	require.NoError(t, err)
	require.NotNil(t, stats)

	assert.Equal(t, 2, stats.UniqueVisitors)
	assert.Equal(t, 3, stats.TotalViews)
	assert.Equal(t, []PageStat{{Path: "/home", Views: 2}}, stats.TopPages)

	require.Len(t, repo.records, 3)
	assert.Equal(t, "2024-01-01", repo.records[0].Date)
	assert.Equal(t, "page_view", repo.records[0].Type)
	assert.True(t, repo.records[0].CreatedAt.Equal(time.Date(2024, 1, 1, 2, 0, 0, 0, time.UTC)))
	assert.JSONEq(t, `{"source":"feed"}`, string(repo.records[2].Extra))

	row := repo.daily["2024-01-01"]
	assert.Equal(t, 3, row.TotalViews)
	assert.Equal(t, 2, row.UniqueVisitors)
	assert.Equal(t, 1, row.ArticleViews)
}

func TestProcessDailyLogs_RerunDuplicatesRecordsButOverwritesSummary(t *testing.T) {
	repo := newFakeRepo()
	engine, dir := newEngine(t, repo)
	writeLog(t, dir, "2024-01-01", scenarioLog)

	_, err := engine.ProcessDailyLogs(context.Background(), "2024-01-01")
	require.NoError(t, err)

	// за день дописалось еще одно событие
	f, err := os.OpenFile(filepath.Join(dir, "behavior-2024-01-01.log"), os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(`{"timestamp":"2024-01-01T12:00:00+08:00","type":"moment_view","sessionId":"c"}` + "\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = engine.ProcessDailyLogs(context.Background(), "2024-01-01")
	require.NoError(t, err)

	assert.Len(t, repo.records, 3+4)
	assert.Len(t, repo.daily, 1)
	assert.Equal(t, 2, repo.upserts)
	assert.Equal(t, 4, repo.daily["2024-01-01"].TotalViews)
	assert.Equal(t, 3, repo.daily["2024-01-01"].UniqueVisitors)
	assert.Equal(t, 1, repo.daily["2024-01-01"].MomentViews)
}

func TestProcessDailyLogs_EmptyDayWritesNothing(t *testing.T) {
	repo := newFakeRepo()
	engine, dir := newEngine(t, repo)

	stats, err := engine.ProcessDailyLogs(context.Background(), "2024-01-02")
	require.NoError(t, err)
	assert.Nil(t, stats)

	writeLog(t, dir, "2024-01-03", "")
	stats, err = engine.ProcessDailyLogs(context.Background(), "2024-01-03")
	require.NoError(t, err)
	assert.Nil(t, stats)

	assert.Zero(t, repo.createCalls)
	assert.Zero(t, repo.upserts)
}

func TestProcessDailyLogs_TruncatedLineDoesNotDropPrecedingEvents(t *testing.T) {
	repo := newFakeRepo()
	engine, dir := newEngine(t, repo)
	writeLog(t, dir, "2024-01-01", scenarioLog+`{"timestamp":"2024-01-01T12:00:00+08:00","type":"page_vi`)

	stats, err := engine.ProcessDailyLogs(context.Background(), "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalViews)
	assert.Len(t, repo.records, 3)
}

func TestProcessDailyLogs_BatchesAndContinuesAfterFailedBatch(t *testing.T) {
	repo := newFakeRepo()
	repo.failBatch = 2
	engine, dir := newEngine(t, repo, WithBatchSize(2))

	content := ""
	for i := 0; i < 5; i++ {
		content += `{"timestamp":"2024-01-01T10:00:00+08:00","type":"page_view","sessionId":"a"}` + "\n"
	}
	writeLog(t, dir, "2024-01-01", content)

	stats, err := engine.ProcessDailyLogs(context.Background(), "2024-01-01")
	require.Error(t, err)
	require.NotNil(t, stats)

	assert.Equal(t, 3, repo.createCalls)
	assert.Equal(t, []int{2, 1}, repo.batches)
	assert.Equal(t, 1, repo.upserts)
	assert.Equal(t, 5, repo.daily["2024-01-01"].TotalViews)
}

func TestProcessDailyLogs_InvalidDate(t *testing.T) {
	repo := newFakeRepo()
	engine, _ := newEngine(t, repo)

	_, err := engine.ProcessDailyLogs(context.Background(), "2024/01/01")
	assert.ErrorIs(t, err, eventlog.ErrInvalidDate)
}

func TestCleanupOldAnalytics_UsesRetentionCutoff(t *testing.T) {
	now := time.Date(2024, 6, 1, 3, 0, 0, 0, time.UTC)
	repo := newFakeRepo()
	engine, _ := newEngine(t, repo, WithClock(func() time.Time { return now }))

	old := models.AnalyticsRecord{Date: "2024-02-01"}
	old.CreatedAt = now.AddDate(0, 0, -91)
	boundary := models.AnalyticsRecord{Date: "2024-03-03"}
	boundary.CreatedAt = now.AddDate(0, 0, -90)
	repo.records = []models.AnalyticsRecord{old, boundary}

	oldRow := models.DailyStats{Date: "2024-02-01"}
	oldRow.CreatedAt = now.AddDate(0, 0, -100)
	freshRow := models.DailyStats{Date: "2024-05-31"}
	freshRow.CreatedAt = now.AddDate(0, 0, -1)
	repo.daily["2024-02-01"] = oldRow
	repo.daily["2024-05-31"] = freshRow

	records, daily, err := engine.CleanupOldAnalytics(context.Background(), 90)
	require.NoError(t, err)
	assert.EqualValues(t, 1, records)
	assert.EqualValues(t, 1, daily)
	assert.Equal(t, now.AddDate(0, 0, -90), repo.cutoffs[0])
	require.Len(t, repo.records, 1)
	assert.Equal(t, "2024-03-03", repo.records[0].Date)
	assert.Contains(t, repo.daily, "2024-05-31")
}

func TestComputeForDate_DoesNotPersist(t *testing.T) {
	repo := newFakeRepo()
	engine, dir := newEngine(t, repo)
	writeLog(t, dir, "2024-01-01", scenarioLog)

	stats, err := engine.ComputeForDate("2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalViews)
	assert.Zero(t, repo.createCalls)
}
